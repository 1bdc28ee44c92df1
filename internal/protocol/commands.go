package protocol

// Client -> Server
// game.pause:  {}
// game.resume: {}

const (
	CmdPause  = "game.pause"
	CmdResume = "game.resume"
)

// Command is an outbound control message. Fire-and-forget: the transport
// drops it when no connection is up.
type Command struct {
	Type string `json:"type"`
}

package reducer

import (
	"time"

	"github.com/VCnoC/ai-werewolf/internal/protocol"
)

type Phase string

const (
	PhaseGameStart Phase = "GAME_START"
	PhaseNight     Phase = "NIGHT"
	PhaseDay       Phase = "DAY"
	PhaseGameEnd   Phase = "GAME_END"
)

// Actor is one seat in the watched game. IDs are small integers assigned
// once by the engine and never reused within a session.
type Actor struct {
	Role        string `json:"role"`
	Faction     string `json:"faction"`
	Alive       bool   `json:"alive"`
	IsSheriff   bool   `json:"is_sheriff"`
	ProviderRef string `json:"provider_ref,omitempty"`
}

// LogEntry wraps a received event with a locally assigned sequence number.
// Seq carries no ordering authority beyond arrival order; it exists so
// downstream lists have stable keys.
type LogEntry struct {
	Seq        int            `json:"seq"`
	Event      protocol.Event `json:"event"`
	ReceivedAt time.Time      `json:"received_at"`
}

// Snapshot is the reduced view of one watched game. It is owned by a single
// goroutine; Apply mutates it in place and Clone hands out copies.
type Snapshot struct {
	Phase     Phase         `json:"phase"`
	Round     int           `json:"round"`
	Winner    string        `json:"winner,omitempty"`
	Paused    bool          `json:"paused"`
	Pending   map[int]bool  `json:"pending"`
	Actors    map[int]Actor `json:"actors"`
	SheriffID int           `json:"sheriff_id"` // 0 = no holder
	LastError string        `json:"last_error,omitempty"`
	Log       []LogEntry    `json:"log"`
}

func NewSnapshot() *Snapshot {
	return &Snapshot{
		Phase:   PhaseGameStart,
		Pending: map[int]bool{},
		Actors:  map[int]Actor{},
	}
}

// Clone returns a deep copy safe to hand to another goroutine.
func (s *Snapshot) Clone() Snapshot {
	out := *s
	out.Pending = make(map[int]bool, len(s.Pending))
	for id := range s.Pending {
		out.Pending[id] = true
	}
	out.Actors = make(map[int]Actor, len(s.Actors))
	for id, a := range s.Actors {
		out.Actors[id] = a
	}
	out.Log = make([]LogEntry, len(s.Log))
	copy(out.Log, s.Log)
	return out
}

// PendingIDs returns the pending set as a slice, order unspecified.
func (s *Snapshot) PendingIDs() []int {
	ids := make([]int, 0, len(s.Pending))
	for id := range s.Pending {
		ids = append(ids, id)
	}
	return ids
}

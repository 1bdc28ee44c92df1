package protocol

import "encoding/json"

// Event is the wire envelope pushed by the game engine. Data stays raw
// until the consumer asks for a typed payload, so an unknown Type never
// fails decoding.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	TypePhaseChange     = "game.phase_change"
	TypeNightAction     = "game.night_action"
	TypeWolfDiscussion  = "game.wolf_discussion"
	TypeSpeech          = "game.speech"
	TypeVote            = "game.vote"
	TypeVoteCast        = "game.vote_cast"
	TypeDeath           = "game.death"
	TypeAIThinking      = "game.ai_thinking"
	TypeEnd             = "game.end"
	TypeControl         = "game.control"
	TypeError           = "game.error"
	TypeJudgeNarration  = "game.judge_narration"
	TypeSheriffElection = "game.sheriff_election"
)

// Coarse game phases as the engine spells them in phase_change payloads.
const (
	PhaseGameStart = "GAME_START"
	PhaseNight     = "NIGHT_PHASE"
	PhaseDay       = "DAY_PHASE"
	PhaseGameEnd   = "GAME_END"
)

// ai_thinking phase tags. Only the wolf deliberation runs actors in
// parallel; every other tag is one actor at a time.
const (
	ThinkingWolf = "wolf"
)

// Sheriff election sub-phases.
const (
	SheriffStart            = "start"
	SheriffRegisterDecision = "register_decision"
	SheriffCandidates       = "candidates"
	SheriffElected          = "elected"
	SheriffVoteCast         = "vote_cast"
	SheriffVoteResult       = "vote_result"
	SheriffBadgeTransferred = "badge_transferred"
	SheriffBadgeDestroyed   = "badge_destroyed"
)

type PhaseChange struct {
	Phase string `json:"phase"`
	Round *int   `json:"round,omitempty"`
}

type NightAction struct {
	Channel   string `json:"channel"`
	PlayerID  *int   `json:"player_id,omitempty"`
	PlayerIDs []int  `json:"player_ids,omitempty"`
	Action    string `json:"action,omitempty"`
	Target    *int   `json:"target,omitempty"`
}

type WolfDiscussion struct {
	WolfID          int    `json:"wolf_id"`
	Target          *int   `json:"target,omitempty"`
	DiscussionRound int    `json:"discussion_round"`
	Speech          string `json:"speech"`
}

type Speech struct {
	PlayerID    int    `json:"player_id"`
	Content     string `json:"content"`
	IsLastWords bool   `json:"is_last_words,omitempty"`
	IsExplode   bool   `json:"is_explode,omitempty"`
}

type Vote struct {
	Votes  map[string]int `json:"votes"`
	Counts map[string]int `json:"counts"`
}

type VoteCast struct {
	VoterID int  `json:"voter_id"`
	Target  *int `json:"target"` // nil on abstention
}

type Death struct {
	PlayerID int    `json:"player_id"`
	Cause    string `json:"cause"`
	Round    *int   `json:"round,omitempty"`
}

type AIThinking struct {
	PlayerID  *int   `json:"player_id,omitempty"`
	PlayerIDs []int  `json:"player_ids,omitempty"`
	Phase     string `json:"phase"`
}

type End struct {
	Winner string `json:"winner"`
	Round  int    `json:"round"`
}

type Control struct {
	Action string `json:"action"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type JudgeNarration struct {
	Text string `json:"text"`
}

type SheriffElection struct {
	Phase         string `json:"phase"`
	PlayerID      *int   `json:"player_id,omitempty"`
	RunForSheriff bool   `json:"run_for_sheriff,omitempty"`
	Candidates    []int  `json:"candidates,omitempty"`
	SheriffID     *int   `json:"sheriff_id,omitempty"`
	VoterID       *int   `json:"voter_id,omitempty"`
	Target        *int   `json:"target,omitempty"`
	From          *int   `json:"from,omitempty"`
	To            *int   `json:"to,omitempty"`
	Text          string `json:"text,omitempty"`
}

// Decode unmarshals the raw payload into v.
func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

// Actors returns the actor IDs an ai_thinking event applies to, whether the
// engine sent a single player_id or a player_ids list.
func (t AIThinking) Actors() []int {
	if len(t.PlayerIDs) > 0 {
		return t.PlayerIDs
	}
	if t.PlayerID != nil {
		return []int{*t.PlayerID}
	}
	return nil
}

// Parallel reports whether this thinking phase runs its actors
// concurrently, which unions into the pending set instead of replacing it.
func (t AIThinking) Parallel() bool {
	return t.Phase == ThinkingWolf
}

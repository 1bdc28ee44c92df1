package reducer

import (
	"time"

	"github.com/VCnoC/ai-werewolf/internal/protocol"
)

// Effects tells the caller which indicator timers to arm or disarm after a
// transition. Keeping timer scheduling out of Apply keeps the transition
// itself a plain data transform.
type Effects struct {
	Armed    []int
	Disarmed []int
}

// Apply appends the event to the log and runs its typed transition.
// It is total: unknown event types still append, then leave the snapshot
// untouched. Events referencing unknown actor IDs skip just that mutation.
func Apply(s *Snapshot, e protocol.Event, at time.Time) Effects {
	s.Log = append(s.Log, LogEntry{Seq: len(s.Log), Event: e, ReceivedAt: at})

	var fx Effects
	switch e.Type {
	case protocol.TypePhaseChange:
		var p protocol.PhaseChange
		if e.Decode(&p) != nil {
			return fx
		}
		switch p.Phase {
		case protocol.PhaseGameStart:
			s.Phase = PhaseGameStart
		case protocol.PhaseNight:
			s.Phase = PhaseNight
			// Defensive reset at the phase boundary: nobody carries a
			// thinking indicator across into a new night.
			fx.Disarmed = append(fx.Disarmed, s.PendingIDs()...)
			clear(s.Pending)
		case protocol.PhaseDay:
			s.Phase = PhaseDay
		case protocol.PhaseGameEnd:
			s.Phase = PhaseGameEnd
		}
		if p.Round != nil && *p.Round > s.Round {
			s.Round = *p.Round
		}

	case protocol.TypeAIThinking:
		var t protocol.AIThinking
		if e.Decode(&t) != nil {
			return fx
		}
		actors := t.Actors()
		if len(actors) == 0 {
			return fx
		}
		if !t.Parallel() {
			// Sequential turn: a new thinker means the previous turn is
			// over even if no outcome event ever said so.
			for id := range s.Pending {
				fx.Disarmed = append(fx.Disarmed, id)
			}
			clear(s.Pending)
		}
		for _, id := range actors {
			s.Pending[id] = true
			fx.Armed = append(fx.Armed, id)
		}

	case protocol.TypeNightAction:
		var a protocol.NightAction
		if e.Decode(&a) != nil {
			return fx
		}
		if a.PlayerID != nil {
			fx.Disarmed = disarm(s, fx.Disarmed, *a.PlayerID)
		}
		for _, id := range a.PlayerIDs {
			fx.Disarmed = disarm(s, fx.Disarmed, id)
		}

	case protocol.TypeWolfDiscussion:
		var w protocol.WolfDiscussion
		if e.Decode(&w) != nil {
			return fx
		}
		fx.Disarmed = disarm(s, fx.Disarmed, w.WolfID)

	case protocol.TypeSpeech:
		var sp protocol.Speech
		if e.Decode(&sp) != nil {
			return fx
		}
		fx.Disarmed = disarm(s, fx.Disarmed, sp.PlayerID)

	case protocol.TypeVoteCast:
		var v protocol.VoteCast
		if e.Decode(&v) != nil {
			return fx
		}
		fx.Disarmed = disarm(s, fx.Disarmed, v.VoterID)

	case protocol.TypeDeath:
		var d protocol.Death
		if e.Decode(&d) != nil {
			return fx
		}
		if a, ok := s.Actors[d.PlayerID]; ok {
			a.Alive = false
			s.Actors[d.PlayerID] = a
		}
		// Covers chained reveals: a shot target may have an action in
		// flight when the death lands.
		fx.Disarmed = disarm(s, fx.Disarmed, d.PlayerID)

	case protocol.TypeEnd:
		var end protocol.End
		if e.Decode(&end) != nil {
			return fx
		}
		if s.Winner == "" {
			s.Winner = end.Winner
		}
		s.Phase = PhaseGameEnd
		if end.Round > s.Round {
			s.Round = end.Round
		}

	case protocol.TypeControl:
		var c protocol.Control
		if e.Decode(&c) != nil {
			return fx
		}
		switch c.Action {
		case "paused":
			s.Paused = true
		case "resumed":
			s.Paused = false
		}

	case protocol.TypeError:
		var p protocol.ErrorPayload
		if e.Decode(&p) != nil {
			return fx
		}
		s.LastError = p.Message

	case protocol.TypeSheriffElection:
		var el protocol.SheriffElection
		if e.Decode(&el) != nil {
			return fx
		}
		fx = applySheriff(s, el, fx)
	}
	return fx
}

func applySheriff(s *Snapshot, el protocol.SheriffElection, fx Effects) Effects {
	switch el.Phase {
	case protocol.SheriffRegisterDecision:
		if el.PlayerID != nil {
			fx.Disarmed = disarm(s, fx.Disarmed, *el.PlayerID)
		}
	case protocol.SheriffVoteCast:
		if el.VoterID != nil {
			fx.Disarmed = disarm(s, fx.Disarmed, *el.VoterID)
		}
	case protocol.SheriffElected:
		// Election done: whoever was still registered as thinking is done.
		fx.Disarmed = append(fx.Disarmed, s.PendingIDs()...)
		clear(s.Pending)
		if el.SheriffID != nil {
			setSheriff(s, *el.SheriffID)
		}
	case protocol.SheriffBadgeTransferred:
		if el.To != nil {
			setSheriff(s, *el.To)
		}
	case protocol.SheriffBadgeDestroyed:
		setSheriff(s, 0)
	}
	return fx
}

// setSheriff maintains the at-most-one-holder invariant: always clear every
// badge first, then set the new holder if it names a known actor. id 0
// clears without setting.
func setSheriff(s *Snapshot, id int) {
	for aid, a := range s.Actors {
		if a.IsSheriff {
			a.IsSheriff = false
			s.Actors[aid] = a
		}
	}
	s.SheriffID = 0
	a, ok := s.Actors[id]
	if !ok {
		return
	}
	a.IsSheriff = true
	s.Actors[id] = a
	s.SheriffID = id
}

// disarm removes id from the pending set. Removing an absent actor is a
// no-op so the timeout path and the event path can both fire.
func disarm(s *Snapshot, acc []int, id int) []int {
	if !s.Pending[id] {
		return acc
	}
	delete(s.Pending, id)
	return append(acc, id)
}

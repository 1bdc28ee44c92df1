package timeline

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/VCnoC/ai-werewolf/internal/protocol"
	"github.com/VCnoC/ai-werewolf/internal/reducer"
)

func entry(t *testing.T, seq int, typ string, data any) reducer.LogEntry {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return reducer.LogEntry{Seq: seq, Event: protocol.Event{Type: typ, Data: raw}}
}

func phaseChange(t *testing.T, seq int, phase string, round int) reducer.LogEntry {
	return entry(t, seq, protocol.TypePhaseChange, map[string]any{"phase": phase, "round": round})
}

func seqs(entries []reducer.LogEntry) []int {
	out := []int{}
	for _, e := range entries {
		out = append(out, e.Seq)
	}
	return out
}

func basicLog(t *testing.T) []reducer.LogEntry {
	return []reducer.LogEntry{
		phaseChange(t, 0, "NIGHT_PHASE", 1),
		entry(t, 1, protocol.TypeNightAction, map[string]any{"channel": "seer", "player_id": 8}),
		phaseChange(t, 2, "DAY_PHASE", 1),
		entry(t, 3, protocol.TypeSpeech, map[string]any{"player_id": 3, "content": "..."}),
		phaseChange(t, 4, "NIGHT_PHASE", 2),
		entry(t, 5, protocol.TypeNightAction, map[string]any{"channel": "guard", "player_id": 2}),
	}
}

func TestSegments_BasicRounds(t *testing.T) {
	got := Segments(basicLog(t))

	if len(got) != 2 {
		t.Fatalf("segments = %d, want 2", len(got))
	}
	if got[0].Round != 1 || got[1].Round != 2 {
		t.Fatalf("rounds = %d,%d want 1,2", got[0].Round, got[1].Round)
	}
	if !reflect.DeepEqual(seqs(got[0].Night), []int{0, 1}) {
		t.Fatalf("round 1 night = %v, want [0 1]", seqs(got[0].Night))
	}
	if !reflect.DeepEqual(seqs(got[0].Day), []int{2, 3}) {
		t.Fatalf("round 1 day = %v, want [2 3]", seqs(got[0].Day))
	}
	if !reflect.DeepEqual(seqs(got[1].Night), []int{4, 5}) {
		t.Fatalf("round 2 night = %v, want [4 5]", seqs(got[1].Night))
	}
	if len(got[1].Day) != 0 {
		t.Fatalf("round 2 day = %v, want empty", seqs(got[1].Day))
	}
}

func TestSegments_Idempotent(t *testing.T) {
	log := basicLog(t)
	first := Segments(log)
	second := Segments(log)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("two runs over the same log differ")
	}
}

func TestSegments_PreGameBucketsIntoRoundZeroDay(t *testing.T) {
	log := []reducer.LogEntry{
		phaseChange(t, 0, "GAME_START", 0),
		entry(t, 1, protocol.TypeJudgeNarration, map[string]any{"text": "welcome"}),
		phaseChange(t, 2, "NIGHT_PHASE", 1),
	}
	got := Segments(log)
	if len(got) != 2 {
		t.Fatalf("segments = %d, want 2", len(got))
	}
	if got[0].Round != 0 || !reflect.DeepEqual(seqs(got[0].Day), []int{0, 1}) {
		t.Fatalf("pre-game segment wrong: round=%d day=%v", got[0].Round, seqs(got[0].Day))
	}
	if got[1].Round != 1 || !reflect.DeepEqual(seqs(got[1].Night), []int{2}) {
		t.Fatalf("round 1 segment wrong: round=%d night=%v", got[1].Round, seqs(got[1].Night))
	}
}

func TestSegments_RoundsNonDecreasingFromZero(t *testing.T) {
	log := []reducer.LogEntry{
		entry(t, 0, protocol.TypeJudgeNarration, map[string]any{"text": "a"}),
		phaseChange(t, 1, "NIGHT_PHASE", 1),
		phaseChange(t, 2, "DAY_PHASE", 1),
		phaseChange(t, 3, "NIGHT_PHASE", 2),
		phaseChange(t, 4, "NIGHT_PHASE", 3),
	}
	got := Segments(log)
	prev := -1
	for _, seg := range got {
		if seg.Round < prev {
			t.Fatalf("round sequence decreases: %d after %d", seg.Round, prev)
		}
		prev = seg.Round
	}
	if got[0].Round != 0 {
		t.Fatalf("first segment round = %d, want 0", got[0].Round)
	}
}

func TestSegments_MissingRoundNumberUsesCursorPlusOne(t *testing.T) {
	log := []reducer.LogEntry{
		entry(t, 0, protocol.TypePhaseChange, map[string]any{"phase": "NIGHT_PHASE"}),
		entry(t, 1, protocol.TypePhaseChange, map[string]any{"phase": "DAY_PHASE"}),
		entry(t, 2, protocol.TypePhaseChange, map[string]any{"phase": "NIGHT_PHASE"}),
	}
	got := Segments(log)
	if len(got) != 2 || got[0].Round != 1 || got[1].Round != 2 {
		t.Fatalf("rounds without payload numbers wrong: %+v", got)
	}
}

func TestSegments_EndEventStaysInLastSegment(t *testing.T) {
	log := []reducer.LogEntry{
		phaseChange(t, 0, "NIGHT_PHASE", 1),
		phaseChange(t, 1, "DAY_PHASE", 1),
		entry(t, 2, protocol.TypeDeath, map[string]any{"player_id": 4, "cause": "vote_exile"}),
		entry(t, 3, protocol.TypeEnd, map[string]any{"winner": "wolf", "round": 1}),
	}
	got := Segments(log)
	if len(got) != 1 {
		t.Fatalf("game end opened a synthetic segment: %d segments", len(got))
	}
	if !reflect.DeepEqual(seqs(got[0].Day), []int{1, 2, 3}) {
		t.Fatalf("end event not in day bucket: %v", seqs(got[0].Day))
	}
}

func TestSegments_GameEndPhaseChangeBucketsByCursor(t *testing.T) {
	log := []reducer.LogEntry{
		phaseChange(t, 0, "NIGHT_PHASE", 1),
		phaseChange(t, 1, "GAME_END", 1),
	}
	got := Segments(log)
	if len(got) != 1 {
		t.Fatalf("segments = %d, want 1", len(got))
	}
	if !reflect.DeepEqual(seqs(got[0].Night), []int{0, 1}) {
		t.Fatalf("GAME_END phase change should stay in night bucket: %v", seqs(got[0].Night))
	}
}

func TestSegments_EmptyLog(t *testing.T) {
	if got := Segments(nil); len(got) != 0 {
		t.Fatalf("empty log produced %d segments", len(got))
	}
}

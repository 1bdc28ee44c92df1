// Package timeline derives per-round night/day segments from the raw event
// log. Segments are always recomputed from scratch rather than patched;
// callers memoize on log length.
package timeline

import (
	"github.com/VCnoC/ai-werewolf/internal/protocol"
	"github.com/VCnoC/ai-werewolf/internal/reducer"
)

// Segment holds the events of one round, split by sub-phase. Round 0 is the
// pre-game buffer.
type Segment struct {
	Round int                `json:"round"`
	Night []reducer.LogEntry `json:"night"`
	Day   []reducer.LogEntry `json:"day"`
}

func (s Segment) empty() bool {
	return len(s.Night) == 0 && len(s.Day) == 0
}

// Segments partitions the log into ordered round segments. Pure and
// re-entrant: calling it twice on the same log yields identical output.
//
// A night phase_change opens a new segment (taking its round number from
// the payload when present, else cursor+1) and lands in that segment's
// night bucket. A day phase_change switches the cursor to day within the
// same segment. Everything else, game end included, falls into whichever
// bucket the cursor points at.
func Segments(log []reducer.LogEntry) []Segment {
	var out []Segment
	cur := Segment{Round: 0}
	night := false

	for _, entry := range log {
		if entry.Event.Type == protocol.TypePhaseChange {
			var p protocol.PhaseChange
			if err := entry.Event.Decode(&p); err == nil {
				switch p.Phase {
				case protocol.PhaseNight:
					if !cur.empty() {
						out = append(out, cur)
					}
					round := cur.Round + 1
					if p.Round != nil {
						round = *p.Round
					}
					cur = Segment{Round: round}
					night = true
				case protocol.PhaseDay:
					night = false
				}
			}
		}
		if night {
			cur.Night = append(cur.Night, entry)
		} else {
			cur.Day = append(cur.Day, entry)
		}
	}

	if !cur.empty() {
		out = append(out, cur)
	}
	return out
}

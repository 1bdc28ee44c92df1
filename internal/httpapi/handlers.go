package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/VCnoC/ai-werewolf/internal/reducer"
	"github.com/VCnoC/ai-werewolf/internal/session"
)

func getView(s *session.Session) session.View {
	reply := make(chan session.View, 1)
	s.Inbox() <- session.GetState{Reply: reply}
	return <-reply
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// State returns the reduced snapshot plus connection status.
func State(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v := getView(s)
		writeJSON(w, struct {
			Status string           `json:"status"`
			State  reducer.Snapshot `json:"state"`
		}{
			Status: string(v.Status),
			State:  v.State,
		})
	}
}

// Timeline returns the per-round night/day segments.
func Timeline(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, getView(s).Timeline)
	}
}

// Pause and Resume forward control commands to the engine. Fire-and-forget:
// accepted even while the transport is between connections.
func Pause(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Pause()
		w.WriteHeader(http.StatusAccepted)
	}
}

func Resume(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Resume()
		w.WriteHeader(http.StatusAccepted)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

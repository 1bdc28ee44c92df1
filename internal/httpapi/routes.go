package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/VCnoC/ai-werewolf/internal/session"
)

// SetupRoutes builds the viewer gateway: a read surface over the reduced
// state plus pause/resume passthrough.
func SetupRoutes(s *session.Session) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/state", State(s))
	r.Get("/timeline", Timeline(s))
	r.Post("/pause", Pause(s))
	r.Post("/resume", Resume(s))
	return r
}

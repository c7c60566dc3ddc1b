// internal/app/features/session/routes.go
package session

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/me", h.HandleMe)
	r.Post("/refresh", h.HandleRefresh)
	r.Post("/heartbeat", h.HandleHeartbeat)
	return r
}

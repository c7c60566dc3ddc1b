// internal/app/features/dashboard/routes.go
package dashboard

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/url", h.HandleURL)
	return r
}

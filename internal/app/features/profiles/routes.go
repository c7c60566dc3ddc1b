// internal/app/features/profiles/routes.go
package profiles

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleGet)
	r.Put("/", h.HandleUpdate)
	r.Get("/completeness", h.HandleCompleteness)
	return r
}

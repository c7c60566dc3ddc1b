// internal/app/features/applications/routes.go
package applications

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the application endpoints. Students apply and list
// their own; the organization side goes through the supplied gate.
func Routes(h *Handler, requireStudent, requireOrganization func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(g chi.Router) {
		g.Use(requireStudent)
		g.Post("/", h.HandleApply)
		g.Get("/", h.HandleMine)
	})
	r.Group(func(g chi.Router) {
		g.Use(requireOrganization)
		g.Get("/listing/{ref}", h.HandleForListing)
		g.Post("/{ref}/status", h.HandleSetStatus)
	})
	return r
}

// internal/app/features/listings/routes.go
package listings

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the listing endpoints. Browsing is public; posting and
// closing go through the supplied organization gate.
func Routes(h *Handler, requireOrganization func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleBrowse)
	r.Get("/{ref}", h.HandleGet)
	r.Group(func(g chi.Router) {
		g.Use(requireOrganization)
		g.Get("/mine", h.HandleMine)
		g.Post("/", h.HandleCreate)
		g.Post("/{ref}/close", h.HandleClose)
	})
	return r
}

// internal/app/features/dashboard/handler.go
package dashboard

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/praxishq/praxis/internal/app/system/auth"
	"github.com/praxishq/praxis/internal/app/system/httpjson"
	"github.com/praxishq/praxis/internal/app/system/identity"
)

type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

type urlResponse struct {
	URL string `json:"url"`
}

// HandleURL handles GET /dashboard/url: the landing path for the
// reconciled user type. Anonymous and unresolved users land on the
// home page.
func (h *Handler) HandleURL(w http.ResponseWriter, r *http.Request) {
	snap, _ := auth.Identity(r)
	httpjson.Write(w, http.StatusOK, urlResponse{
		URL: identity.DashboardURLFor(snap.UserType),
	})
}

// internal/app/features/logout/handler.go
package logout

import (
	"context"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/praxishq/praxis/internal/app/store/sessions"
	"github.com/praxishq/praxis/internal/app/system/auth"
	"github.com/praxishq/praxis/internal/app/system/httpjson"
	"github.com/praxishq/praxis/internal/app/system/providerauth"
	"github.com/praxishq/praxis/internal/app/system/timeouts"
)

type Handler struct {
	Sessions   *sessions.Store
	Provider   *providerauth.Client
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
}

func NewHandler(
	sessStore *sessions.Store,
	provider *providerauth.Client,
	sessionMgr *auth.SessionManager,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Sessions:   sessStore,
		Provider:   provider,
		SessionMgr: sessionMgr,
		Log:        logger,
	}
}

// HandleLogout handles POST /auth/logout. Signing out an already
// signed-out client succeeds quietly.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	snap, _ := auth.Identity(r)

	if snap.User != nil {
		if userID, err := primitive.ObjectIDFromHex(snap.User.ID); err == nil {
			ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
			defer cancel()
			if _, err := h.Sessions.CloseByUser(ctx, userID, sessions.EndedByLogout); err != nil {
				h.Log.Warn("failed to close activity sessions", zap.Error(err))
			}
		}
	}

	// Revoke the upstream session before clearing local state, so a
	// captured token does not outlive the logout.
	if token := bearerToken(r); token != "" {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
		defer cancel()
		if err := h.Provider.SignOut(ctx, token); err != nil {
			h.Log.Warn("provider sign-out failed; clearing local state anyway",
				zap.Error(err))
		}
	}

	// Sign-out reaches other in-process subscribers immediately; this
	// client's next request reconciles against the cleared cookie.
	h.Provider.Announce(nil)

	if err := h.SessionMgr.Clear(w, r); err != nil {
		h.Log.Warn("failed to clear session cookie", zap.Error(err))
	}

	httpjson.Write(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}

// Package session wires the identity reconciler into the request
// cycle. The middleware rehydrates each client's reconciler state from
// the cookie session, feeds it the request's bearer token as a
// session-change observation, and persists the state back, so token
// dedup and switch detection survive across stateless requests.
package session

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/praxishq/praxis/internal/app/store/sessions"
	"github.com/praxishq/praxis/internal/app/system/apperror"
	"github.com/praxishq/praxis/internal/app/system/auth"
	"github.com/praxishq/praxis/internal/app/system/httpjson"
	"github.com/praxishq/praxis/internal/app/system/identity"
	"github.com/praxishq/praxis/internal/app/system/providerauth"
	"github.com/praxishq/praxis/internal/app/system/timeouts"
)

type Handler struct {
	Provider   *providerauth.Client
	Roles      identity.RoleStore
	SessionMgr *auth.SessionManager
	Sessions   *sessions.Store // nil disables heartbeat bookkeeping
	TokenTTL   time.Duration
	Log        *zap.Logger
}

func NewHandler(
	provider *providerauth.Client,
	roles identity.RoleStore,
	sessionMgr *auth.SessionManager,
	sessStore *sessions.Store,
	tokenTTL time.Duration,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Provider:   provider,
		Roles:      roles,
		SessionMgr: sessionMgr,
		Sessions:   sessStore,
		TokenTTL:   tokenTTL,
		Log:        logger,
	}
}

// Reconcile is the per-request identity middleware. Every request runs
// one reconciliation step: the first request a client makes is its
// initial load; later requests are session-change notifications. A
// request that trips the switch violation gets a 409 and the revoked
// session never reaches the handler.
func (h *Handler) Reconcile(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st := h.SessionMgr.LoadState(r)
		rec := identity.Restore(h.Provider, h.Roles, st, h.Log)

		bearer := bearerToken(r)
		sess := h.sessionFromToken(bearer)

		if !st.InitDone {
			rec.OnInitialLoad(r.Context(), sess)
		} else {
			rec.OnSessionChanged(r.Context(), sess)
		}

		if err := h.SessionMgr.SaveState(w, r, rec.State()); err != nil {
			h.Log.Warn("failed to persist identity state", zap.Error(err))
		}

		snap := rec.Snapshot()
		if snap.Violation != "" && bearer != "" {
			httpjson.WriteError(w, h.Log, apperror.Conflict(snap.Violation))
			return
		}

		next.ServeHTTP(w, auth.WithIdentity(r, snap))
	})
}

// sessionFromToken verifies raw and converts it to a provider session.
// Missing or invalid tokens are treated as signed out, not as errors:
// the reconciler will clear identity the same way the provider would
// on revocation.
func (h *Handler) sessionFromToken(raw string) *identity.Session {
	if raw == "" {
		return nil
	}
	sess, err := h.Provider.VerifyToken(raw)
	if err != nil {
		h.Log.Debug("rejecting unverifiable bearer token", zap.Error(err))
		return nil
	}
	return sess
}

type meResponse struct {
	User         *identity.User `json:"user"`
	UserType     string         `json:"user_type"`
	IsLoading    bool           `json:"is_loading"`
	DashboardURL string         `json:"dashboard_url"`
	Violation    string         `json:"violation,omitempty"`
}

// HandleMe handles GET /session/me: the reconciled identity for this
// client, signed in or not.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	snap, _ := auth.Identity(r)
	httpjson.Write(w, http.StatusOK, meResponse{
		User:         snap.User,
		UserType:     string(snap.UserType),
		IsLoading:    snap.IsLoading,
		DashboardURL: identity.DashboardURLFor(snap.UserType),
		Violation:    snap.Violation,
	})
}

type refreshResponse struct {
	Token string `json:"token"`
}

// HandleRefresh handles POST /session/refresh: reissues a token for
// the reconciled user before the current one expires.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	snap, _ := auth.Identity(r)
	if snap.User == nil {
		httpjson.WriteError(w, h.Log, apperror.Unauthorized("sign in required"))
		return
	}

	raw, _, err := h.Provider.IssueToken(snap.User.ID, snap.User.Email, string(snap.UserType), h.TokenTTL)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	h.Provider.Announce(&identity.Session{
		AccessToken:  raw,
		UserID:       snap.User.ID,
		Email:        snap.User.Email,
		UserTypeHint: string(snap.UserType),
	})

	httpjson.Write(w, http.StatusOK, refreshResponse{Token: raw})
}

// HandleHeartbeat handles POST /session/heartbeat: bumps last-active
// on the caller's open activity sessions so the inactivity sweep
// leaves them alone.
func (h *Handler) HandleHeartbeat(w http.ResponseWriter, r *http.Request) {
	snap, _ := auth.Identity(r)
	if snap.User == nil {
		httpjson.WriteError(w, h.Log, apperror.Unauthorized("sign in required"))
		return
	}
	if h.Sessions == nil {
		httpjson.Write(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	userID, err := primitive.ObjectIDFromHex(snap.User.ID)
	if err != nil {
		httpjson.WriteError(w, h.Log, apperror.Unauthorized("sign in required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	open, err := h.Sessions.GetActiveByUser(ctx, userID)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	for _, s := range open {
		if _, err := h.Sessions.UpdateLastActive(ctx, s.ID); err != nil {
			h.Log.Warn("heartbeat update failed",
				zap.String("session_id", s.ID.Hex()), zap.Error(err))
		}
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "ok"})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}

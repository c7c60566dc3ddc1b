// Package auth manages the cookie session and request identity. The
// cookie round-trips the identity reconciler's state between requests;
// the middleware here gates routes on the reconciled identity placed in
// the request context.
package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/praxishq/praxis/internal/app/system/apperror"
	"github.com/praxishq/praxis/internal/app/system/httpjson"
	"github.com/praxishq/praxis/internal/app/system/identity"
)

// Session value keys. Kept as individual scalars so the cookie stays
// small and survives securecookie's gob round-trip without type
// registration.
const (
	userIDKey    = "user_id"
	userEmailKey = "user_email"
	userHintKey  = "user_hint"
	userTypeKey  = "user_type"
	lastTokenKey = "last_token"
	lastUserKey  = "last_user_id"
	initDoneKey  = "init_done"
	violationKey = "violation"
)

// SessionManager owns the cookie store for reconciler state.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
	log   *zap.Logger
}

// NewSessionManager builds the cookie store. secure controls the
// Secure flag and SameSite mode: production wants Secure + None for
// cross-site use over HTTPS, local dev wants Lax over plain http.
func NewSessionManager(sessionKey, name, domain string, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// LoadState rehydrates reconciler state from the request's cookie.
// A missing or undecodable cookie yields the zero state (fresh client).
func (m *SessionManager) LoadState(r *http.Request) identity.State {
	sess, _ := m.store.Get(r, m.name)

	st := identity.State{
		UserType:   identity.UserType(getString(sess, userTypeKey)),
		LastToken:  getString(sess, lastTokenKey),
		LastUserID: getString(sess, lastUserKey),
		Violation:  getString(sess, violationKey),
	}
	if done, _ := sess.Values[initDoneKey].(bool); done {
		st.InitDone = true
	} else {
		st.IsLoading = true
	}
	if id := getString(sess, userIDKey); id != "" {
		st.CurrentUser = &identity.User{
			ID:           id,
			Email:        getString(sess, userEmailKey),
			UserTypeHint: getString(sess, userHintKey),
		}
	}
	return st
}

// SaveState writes reconciler state back to the cookie. Must run before
// the handler writes the response body.
func (m *SessionManager) SaveState(w http.ResponseWriter, r *http.Request, st identity.State) error {
	sess, _ := m.store.Get(r, m.name)

	sess.Values[userTypeKey] = string(st.UserType)
	sess.Values[lastTokenKey] = st.LastToken
	sess.Values[lastUserKey] = st.LastUserID
	sess.Values[initDoneKey] = st.InitDone
	sess.Values[violationKey] = st.Violation
	if st.CurrentUser != nil {
		sess.Values[userIDKey] = st.CurrentUser.ID
		sess.Values[userEmailKey] = st.CurrentUser.Email
		sess.Values[userHintKey] = st.CurrentUser.UserTypeHint
	} else {
		delete(sess.Values, userIDKey)
		delete(sess.Values, userEmailKey)
		delete(sess.Values, userHintKey)
	}

	return sess.Save(r, w)
}

// Clear expires the cookie session.
func (m *SessionManager) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, m.name)
	sess.Options.MaxAge = -1
	sess.Values = map[any]any{}
	return sess.Save(r, w)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Request identity                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

type ctxKey string

const identityKey ctxKey = "identity"

// WithIdentity returns r with the reconciled identity attached.
func WithIdentity(r *http.Request, snap identity.Snapshot) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), identityKey, snap))
}

// Identity returns the reconciled identity set by the session
// middleware, and whether one is present.
func Identity(r *http.Request) (identity.Snapshot, bool) {
	snap, ok := r.Context().Value(identityKey).(identity.Snapshot)
	return snap, ok
}

// RequireSignedIn rejects requests without a reconciled user.
func RequireSignedIn(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap, ok := Identity(r)
			if !ok || snap.User == nil {
				httpjson.WriteError(w, log, apperror.Unauthorized("sign in required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUserType rejects requests whose reconciled type is not in
// allowed. Unauthenticated requests get 401, wrong-type requests 403.
func RequireUserType(log *zap.Logger, allowed ...identity.UserType) func(http.Handler) http.Handler {
	set := make(map[identity.UserType]struct{}, len(allowed))
	for _, t := range allowed {
		set[t] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap, ok := Identity(r)
			if !ok || snap.User == nil {
				httpjson.WriteError(w, log, apperror.Unauthorized("sign in required"))
				return
			}
			if _, has := set[snap.UserType]; !has {
				httpjson.WriteError(w, log, apperror.Forbidden("not permitted for this account type"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

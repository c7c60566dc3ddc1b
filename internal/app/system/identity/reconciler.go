// internal/app/system/identity/reconciler.go
package identity

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// SwitchViolationMessage is surfaced to the user when a role switch is
// detected mid-session. The session has already been revoked when the
// caller sees it.
const SwitchViolationMessage = "Your account resolved to a different role during this session. " +
	"Simultaneous multi-role sessions are not permitted; please sign in again."

// State is the reconciler's owned, persistable state. The HTTP layer
// round-trips it through the cookie session so dedup survives across
// requests; tests construct it directly.
type State struct {
	CurrentUser *User
	UserType    UserType // "" means no role committed
	IsLoading   bool
	LastToken   string
	LastUserID  string
	InitDone    bool
	Violation   string // non-empty after an identity-switch rejection
}

// Snapshot is the read view handed to callers.
type Snapshot struct {
	User      *User
	UserType  UserType
	IsLoading bool
	Violation string
}

// Reconciler owns one client's reconciled identity. It is the single
// writer of its State; readers go through Snapshot. All mutating
// entry points are serialized by the mutex, which is what makes the
// init/dedup guards hold even when the provider's callbacks race the
// initial load.
type Reconciler struct {
	provider AuthProvider
	roles    RoleStore
	log      *zap.Logger

	mu     sync.Mutex
	st     State
	closed bool
}

// New returns a reconciler in the loading state: nothing is
// authoritative until OnInitialLoad has run.
func New(provider AuthProvider, roles RoleStore, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		provider: provider,
		roles:    roles,
		log:      logger,
		st:       State{IsLoading: true},
	}
}

// Restore rehydrates a reconciler from previously persisted state.
// Used by the HTTP layer to continue a client's stream across requests.
func Restore(provider AuthProvider, roles RoleStore, st State, logger *zap.Logger) *Reconciler {
	r := New(provider, roles, logger)
	r.st = st
	return r
}

// State returns a copy of the current state for persistence.
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st
}

// Snapshot returns the current reconciled identity.
func (r *Reconciler) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{
		User:      r.st.CurrentUser,
		UserType:  r.st.UserType,
		IsLoading: r.st.IsLoading,
		Violation: r.st.Violation,
	}
}

// Subscribe registers this reconciler as the consumer of the provider's
// session-change stream. The returned func unsubscribes; events that
// arrive after it runs are dropped rather than mutating dead state.
func (r *Reconciler) Subscribe() (unsubscribe func()) {
	unsub := r.provider.OnSessionChange(func(s *Session) {
		r.OnSessionChanged(context.Background(), s)
	})
	return func() {
		r.mu.Lock()
		r.closed = true
		r.mu.Unlock()
		unsub()
	}
}

// OnInitialLoad processes the one-shot initial session lookup. It runs
// at most once per reconciler; repeat calls are no-ops. IsLoading drops
// to false exactly once here, whether or not role resolution succeeds.
func (r *Reconciler) OnInitialLoad(ctx context.Context, sess *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.st.InitDone || r.closed {
		return
	}
	defer func() {
		r.st.InitDone = true
		r.st.IsLoading = false
	}()

	r.st.LastToken = sessionToken(sess)
	if sess == nil || sess.UserID == "" {
		r.st.CurrentUser = nil
		return
	}

	r.st.CurrentUser = userFromSession(sess)
	r.st.LastUserID = sess.UserID
	r.resolveRole(ctx, r.st.CurrentUser)
}

// OnSessionChanged handles one provider notification. Guards, in order:
//
//  1. dropped until OnInitialLoad has completed, so an early event
//     never races the initial resolution;
//  2. dropped when the token matches the last one seen (redundant
//     resend of the same session);
//  3. role re-resolution is skipped when the session changed but the
//     underlying user did not.
func (r *Reconciler) OnSessionChanged(ctx context.Context, sess *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.st.InitDone || r.closed {
		return
	}
	tok := sessionToken(sess)
	if tok == r.st.LastToken {
		return
	}
	r.st.LastToken = tok

	if sess == nil || sess.UserID == "" {
		// Signed out upstream.
		r.st.CurrentUser = nil
		r.st.UserType = ""
		r.st.LastUserID = ""
		r.st.IsLoading = false
		return
	}

	r.st.CurrentUser = userFromSession(sess)
	r.st.Violation = "" // a fresh session clears any prior rejection
	if sess.UserID != r.st.LastUserID {
		r.st.LastUserID = sess.UserID
		r.resolveRole(ctx, r.st.CurrentUser)
	}
	r.st.IsLoading = false
}

// SignOut revokes the provider session and clears local identity.
// Local state is cleared even when the provider call fails; the failure
// is logged, never returned.
func (r *Reconciler) SignOut(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signOutLocked(ctx)
}

func (r *Reconciler) signOutLocked(ctx context.Context) {
	if err := r.provider.SignOut(ctx, r.st.LastToken); err != nil {
		r.log.Warn("provider sign-out failed; clearing local identity anyway",
			zap.Error(err))
	}
	r.st.CurrentUser = nil
	r.st.UserType = ""
	// The processed-user marker must go too, or a later session for the
	// same user would skip role resolution and sign in with no role.
	r.st.LastUserID = ""
}

// resolveRole resolves and commits the user's role. Callers hold r.mu.
//
// Failure policy:
//   - policy-recursion errors degrade to the session's type hint, or
//     student when no hint is present;
//   - any other lookup error leaves the role unset (nil) and stops;
//   - a resolved role that contradicts a previously committed role is a
//     security violation: the session is revoked and identity cleared
//     before the new role would have been committed.
func (r *Reconciler) resolveRole(ctx context.Context, u *User) {
	var next UserType

	rec, err := r.roles.GetRoleRecord(ctx, u.ID)
	switch {
	case err != nil && errors.Is(err, ErrPolicyRecursion):
		next = hintedType(u)
		r.log.Warn("role lookup hit policy recursion; using hint fallback",
			zap.String("user_id", u.ID),
			zap.String("user_type", string(next)))
	case err != nil:
		r.log.Error("role lookup failed",
			zap.String("user_id", u.ID),
			zap.Error(err))
		r.st.UserType = ""
		return
	case rec == nil:
		// No stored record behaves like the degrade path: trust the
		// hint, default student.
		next = hintedType(u)
	default:
		next = rec.UserType
	}

	if r.st.UserType != "" && next != r.st.UserType {
		r.log.Warn("identity switch detected; revoking session",
			zap.String("user_id", u.ID),
			zap.String("committed", string(r.st.UserType)),
			zap.String("resolved", string(next)))
		r.signOutLocked(ctx)
		r.st.Violation = SwitchViolationMessage
		return
	}
	r.st.UserType = next
}

func hintedType(u *User) UserType {
	switch UserType(u.UserTypeHint) {
	case UserTypeStudent, UserTypeOrganization:
		return UserType(u.UserTypeHint)
	default:
		return UserTypeStudent
	}
}

func userFromSession(s *Session) *User {
	return &User{
		ID:           s.UserID,
		Email:        s.Email,
		UserTypeHint: s.UserTypeHint,
	}
}

func sessionToken(s *Session) string {
	if s == nil {
		return ""
	}
	return s.AccessToken
}

// Package identity reconciles the upstream auth provider's session
// stream into a single authoritative (user, user type) pair per client,
// deduplicating redundant notifications and detecting mid-session role
// switches.
package identity

import (
	"context"
	"errors"
)

// UserType is the stored account type for a user.
type UserType string

const (
	UserTypeStudent      UserType = "student"
	UserTypeOrganization UserType = "organization"
)

// Dashboard paths by user type.
const (
	studentDashboardPath      = "/dashboard"
	organizationDashboardPath = "/dashboard-overview"
)

// ErrPolicyRecursion marks a role lookup that failed because evaluating
// the access policy guarding role records required the very role being
// resolved. Callers treat it as a recognized degrade path (fall back to
// the session's type hint, default student), not a hard failure.
var ErrPolicyRecursion = errors.New("identity: recursive policy evaluation")

// Session is the opaque authenticated-principal bundle observed from
// the auth provider. It is never mutated here.
type Session struct {
	AccessToken  string
	UserID       string
	Email        string
	UserTypeHint string // optional metadata hint, e.g. "student"
}

// User is the reconciled current user.
type User struct {
	ID           string
	Email        string
	UserTypeHint string
}

// RoleRecord maps a user id to its stored account type.
type RoleRecord struct {
	UserID   string
	UserType UserType
}

// AuthProvider is the slice of the upstream auth service the reconciler
// needs: a session-change stream and the ability to revoke a session.
type AuthProvider interface {
	// OnSessionChange registers fn for session-change notifications and
	// returns an unsubscribe func. Notifications may repeat the same
	// session; the reconciler deduplicates.
	OnSessionChange(fn func(*Session)) (unsubscribe func())

	// SignOut revokes the session identified by accessToken.
	SignOut(ctx context.Context, accessToken string) error
}

// RoleStore resolves role records from the backing store.
type RoleStore interface {
	// GetRoleRecord returns the role record for userID, or (nil, nil)
	// when no record exists. Lookups that trip policy recursion return
	// an error satisfying errors.Is(err, ErrPolicyRecursion).
	GetRoleRecord(ctx context.Context, userID string) (*RoleRecord, error)
}

// DashboardURLFor returns the landing path for a user type.
// Unknown or empty types land on the home page.
func DashboardURLFor(t UserType) string {
	switch t {
	case UserTypeStudent:
		return studentDashboardPath
	case UserTypeOrganization:
		return organizationDashboardPath
	default:
		return "/"
	}
}

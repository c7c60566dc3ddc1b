package testutil

import (
	"net/http"
	"net/http/httptest"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/praxishq/praxis/internal/app/system/auth"
	"github.com/praxishq/praxis/internal/app/system/identity"
)

// StudentIdentity returns a reconciled student snapshot with a fresh id.
func StudentIdentity() identity.Snapshot {
	return identity.Snapshot{
		User: &identity.User{
			ID:           primitive.NewObjectID().Hex(),
			Email:        "student@test.example",
			UserTypeHint: "student",
		},
		UserType: identity.UserTypeStudent,
	}
}

// OrganizationIdentity returns a reconciled organization snapshot with
// a fresh id.
func OrganizationIdentity() identity.Snapshot {
	return identity.Snapshot{
		User: &identity.User{
			ID:           primitive.NewObjectID().Hex(),
			Email:        "org@test.example",
			UserTypeHint: "organization",
		},
		UserType: identity.UserTypeOrganization,
	}
}

// NewAuthenticatedRequest creates a request with a reconciled identity
// already in context, bypassing the session middleware.
func NewAuthenticatedRequest(method, target string, snap identity.Snapshot) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return auth.WithIdentity(req, snap)
}

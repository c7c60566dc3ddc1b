// Package rolestore resolves role records for the identity reconciler
// from the users collection.
package rolestore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/praxishq/praxis/internal/app/system/identity"
)

// PolicyGuard runs before each lookup. A guard that detects recursive
// policy evaluation returns an error satisfying
// errors.Is(err, identity.ErrPolicyRecursion); the reconciler then
// degrades to its hint fallback instead of failing the lookup.
type PolicyGuard func(ctx context.Context, userID string) error

type Store struct {
	c     *mongo.Collection
	guard PolicyGuard
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// WithPolicyGuard installs g and returns the store for chaining.
func (s *Store) WithPolicyGuard(g PolicyGuard) *Store {
	s.guard = g
	return s
}

// GetRoleRecord resolves the stored account type for userID.
//
// Returns (nil, nil) when the id is not a valid ObjectID, when no user
// document exists, or when the stored role has no reconciler mapping
// (admins are out of band for dashboard routing). The reconciler treats
// all of these as "no record": hint fallback, default student.
func (s *Store) GetRoleRecord(ctx context.Context, userID string) (*identity.RoleRecord, error) {
	if s.guard != nil {
		if err := s.guard(ctx, userID); err != nil {
			return nil, err
		}
	}

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, nil
	}

	var doc struct {
		Role string `bson:"role"`
	}
	err = s.c.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var t identity.UserType
	switch doc.Role {
	case "student":
		t = identity.UserTypeStudent
	case "organization":
		t = identity.UserTypeOrganization
	default:
		return nil, nil
	}
	return &identity.RoleRecord{UserID: userID, UserType: t}, nil
}

var _ identity.RoleStore = (*Store)(nil)

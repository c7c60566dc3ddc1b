package userstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/praxishq/praxis/internal/app/system/normalize"
	"github.com/praxishq/praxis/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// EnsureIndexes creates the unique email index and the Google subject
// lookup index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_users_email"),
		},
		{
			Keys: bson.D{{Key: "google_id", Value: 1}},
			Options: options.Index().SetName("idx_users_google").
				SetPartialFilterExpression(bson.M{"google_id": bson.M{"$exists": true}}),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	errBadRole        = errors.New(`role must be "student"|"organization"|"admin"`)
	errBadStatus      = errors.New(`status must be "active"|"disabled"`)
)

// Create inserts a new user after normalizing & validating fields.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Email = normalize.Email(u.Email)
	u.Role = normalize.Role(u.Role)
	if u.Status == "" {
		u.Status = "active"
	}

	switch u.Role {
	case "student", "organization", "admin":
		// ok
	default:
		return models.User{}, errBadRole
	}

	switch u.Status {
	case "active", "disabled":
		// ok
	default:
		return models.User{}, errBadStatus
	}

	// Organization users sign up before their company record exists;
	// OrganizationID is attached later via SetOrganizationID.

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByGoogleID looks up a user by Google account subject.
func (s *Store) GetByGoogleID(ctx context.Context, sub string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"google_id": sub}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// SetOrganizationID scopes a user to an organization. Used when an
// organization account finishes creating its company record.
func (s *Store) SetOrganizationID(ctx context.Context, id, orgID primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"organization_id": orgID,
		"updated_at":      time.Now().UTC(),
	}})
	return err
}

// SetStatus updates a user's status.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	status = normalize.Status(status)
	switch status {
	case "active", "disabled":
		// ok
	default:
		return errBadStatus
	}
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

// SetRole updates a user's role.
func (s *Store) SetRole(ctx context.Context, id primitive.ObjectID, role string) error {
	role = normalize.Role(role)
	switch role {
	case "student", "organization", "admin":
		// ok
	default:
		return errBadRole
	}
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"role":       role,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

// LinkGoogleID attaches a Google subject to an existing user, used when
// a password account signs in with Google for the first time.
func (s *Store) LinkGoogleID(ctx context.Context, id primitive.ObjectID, sub string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"google_id":  sub,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

// EmailExistsForOther checks if an email already exists for a user other than the given ID.
func (s *Store) EmailExistsForOther(ctx context.Context, email string, excludeID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"email": normalize.Email(email),
		"_id":   bson.M{"$ne": excludeID},
	}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

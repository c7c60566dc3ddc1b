// internal/app/store/organizations/organizationstore.go
package organizationstore

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

	"github.com/praxishq/praxis/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

var ErrDuplicateOrganization = errors.New("an organization with this name already exists")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("organizations")}
}

// EnsureIndexes creates the unique case-insensitive name index and the
// owner lookup index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_orgs_name_ci"),
		},
		{
			Keys:    bson.D{{Key: "owner_user_id", Value: 1}},
			Options: options.Index().SetName("idx_orgs_owner"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

func (s *Store) Create(ctx context.Context, org models.Organization) (models.Organization, error) {
	now := time.Now().UTC()
	org.ID = primitive.NewObjectID()
	org.NameCI = text.Fold(org.Name)
	org.LocationCI = text.Fold(org.Location)
	if org.Status == "" {
		org.Status = "active"
	}
	org.CreatedAt = now
	org.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, org)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Organization{}, ErrDuplicateOrganization
		}
		return models.Organization{}, err
	}
	return org, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Organization, error) {
	var org models.Organization
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&org)
	if err != nil {
		return models.Organization{}, err
	}
	return org, nil
}

// GetByOwner loads the organization owned by userID.
func (s *Store) GetByOwner(ctx context.Context, userID primitive.ObjectID) (models.Organization, error) {
	var org models.Organization
	err := s.c.FindOne(ctx, bson.M{"owner_user_id": userID}).Decode(&org)
	if err != nil {
		return models.Organization{}, err
	}
	return org, nil
}

// Update modifies an organization's mutable fields and refreshes UpdatedAt.
// Empty fields are left untouched so partial updates never blank data.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, org models.Organization) error {
	set := bson.M{
		"updated_at": time.Now().UTC(),
	}
	if org.Name != "" {
		set["name"] = org.Name
		set["name_ci"] = text.Fold(org.Name)
	}
	if org.Description != "" {
		set["description"] = org.Description
	}
	if org.Industry != "" {
		set["industry"] = org.Industry
	}
	if org.Location != "" {
		set["location"] = org.Location
		set["location_ci"] = text.Fold(org.Location)
	}
	if org.Website != "" {
		set["website"] = org.Website
	}
	if org.ContactEmail != "" {
		set["contact_email"] = org.ContactEmail
	}
	if org.ContactPhone != "" {
		set["contact_phone"] = org.ContactPhone
	}
	if org.Status != "" {
		set["status"] = org.Status
	}
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateOrganization
		}
		return err
	}
	return nil
}

// ExistsByNameCI checks if an organization with the given case-insensitive name exists.
func (s *Store) ExistsByNameCI(ctx context.Context, nameCI string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"name_ci": nameCI}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Find returns organizations matching the given filter with optional find options.
// The caller is responsible for building the filter and options (pagination, sorting, projection).
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Organization, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var orgs []models.Organization
	if err := cur.All(ctx, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

// Count returns the number of organizations matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}

package listingstore

import (
	"context"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/praxishq/praxis/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("listings")}
}

// EnsureIndexes creates the unique ref index, the organization lookup
// index, and the browse index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ref", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_listings_ref"),
		},
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_listings_org"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_listings_browse"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create inserts the listing with a fresh external ref and open status.
func (s *Store) Create(ctx context.Context, l models.Listing) (models.Listing, error) {
	now := time.Now().UTC()
	l.ID = primitive.NewObjectID()
	l.Ref = uuid.NewString()
	l.TitleCI = text.Fold(l.Title)
	l.LocationCI = text.Fold(l.Location)
	if l.Status == "" {
		l.Status = models.ListingOpen
	}
	l.CreatedAt = now
	l.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, l); err != nil {
		return models.Listing{}, err
	}
	return l, nil
}

// GetByRef loads a listing by its external ref.
func (s *Store) GetByRef(ctx context.Context, ref string) (models.Listing, error) {
	var l models.Listing
	err := s.c.FindOne(ctx, bson.M{"ref": ref}).Decode(&l)
	if err != nil {
		return models.Listing{}, err
	}
	return l, nil
}

// ListOpen returns open listings, newest first.
func (s *Store) ListOpen(ctx context.Context, limit int64) ([]models.Listing, error) {
	return s.find(ctx, bson.M{"status": models.ListingOpen}, limit)
}

// ListByOrganization returns all of an organization's listings, newest
// first, regardless of status.
func (s *Store) ListByOrganization(ctx context.Context, orgID primitive.ObjectID, limit int64) ([]models.Listing, error) {
	return s.find(ctx, bson.M{"organization_id": orgID}, limit)
}

// SetStatus transitions a listing between open and closed.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

func (s *Store) find(ctx context.Context, filter bson.M, limit int64) ([]models.Listing, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var listings []models.Listing
	if err := cur.All(ctx, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

package applicationstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/praxishq/praxis/internal/domain/models"
)

// ErrAlreadyApplied is returned when a student applies to the same
// listing twice. Backed by the unique listing_id+student_id index.
var ErrAlreadyApplied = errors.New("student has already applied to this listing")

var errBadStatus = errors.New(`status must be "submitted"|"reviewing"|"accepted"|"rejected"`)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("applications")}
}

// EnsureIndexes creates the one-application-per-listing-per-student
// unique index plus the lookup indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "listing_id", Value: 1}, {Key: "student_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_apps_listing_student"),
		},
		{
			Keys:    bson.D{{Key: "ref", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_apps_ref"),
		},
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_apps_student"),
		},
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_apps_org"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create submits an application. Returns ErrAlreadyApplied when the
// student has an application for the listing already.
func (s *Store) Create(ctx context.Context, a models.Application) (models.Application, error) {
	now := time.Now().UTC()
	a.ID = primitive.NewObjectID()
	a.Ref = uuid.NewString()
	if a.Status == "" {
		a.Status = models.ApplicationSubmitted
	}
	a.CreatedAt = now
	a.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Application{}, ErrAlreadyApplied
		}
		return models.Application{}, err
	}
	return a, nil
}

// GetByRef loads an application by its external ref.
func (s *Store) GetByRef(ctx context.Context, ref string) (models.Application, error) {
	var a models.Application
	err := s.c.FindOne(ctx, bson.M{"ref": ref}).Decode(&a)
	if err != nil {
		return models.Application{}, err
	}
	return a, nil
}

// ListByStudent returns a student's applications, newest first.
func (s *Store) ListByStudent(ctx context.Context, studentID primitive.ObjectID, limit int64) ([]models.Application, error) {
	return s.find(ctx, bson.M{"student_id": studentID}, limit)
}

// ListByListing returns the applications submitted to one listing,
// newest first.
func (s *Store) ListByListing(ctx context.Context, listingID primitive.ObjectID, limit int64) ([]models.Application, error) {
	return s.find(ctx, bson.M{"listing_id": listingID}, limit)
}

// SetStatus moves an application through the review pipeline.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	switch status {
	case models.ApplicationSubmitted, models.ApplicationReviewing,
		models.ApplicationAccepted, models.ApplicationRejected:
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

func (s *Store) find(ctx context.Context, filter bson.M, limit int64) ([]models.Application, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var apps []models.Application
	if err := cur.All(ctx, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// Package profilestore persists student profiles, one document per
// user. Writes are upserts: the profile is created lazily on first
// save and every field stays optional.
package profilestore

import (
	"context"
	"time"

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
	return &Store{c: db.Collection("student_profiles")}
}

// EnsureIndexes creates the unique user_id index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("idx_profiles_user"),
	})
	return err
}

// GetByUser loads the profile for userID. Returns (nil, nil) when the
// student has never saved a profile; completeness evaluation treats
// that as everything missing.
func (s *Store) GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.StudentProfile, error) {
	var p models.StudentProfile
	err := s.c.FindOne(ctx, bson.M{"user_id": userID}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert saves the profile for userID, creating the document on first
// save. The stored document is replaced wholesale except for identity
// and creation fields.
func (s *Store) Upsert(ctx context.Context, userID primitive.ObjectID, p models.StudentProfile) (models.StudentProfile, error) {
	now := time.Now().UTC()

	set := bson.M{
		"avatar_url": p.AvatarURL,
		"photo_url":  p.PhotoURL,
		"phone":      p.Phone,
		"bio":        p.Bio,
		"skills":     p.Skills,
		"education":  p.Education,
		"experience": p.Experience,
		"updated_at": now,
	}
	setOnInsert := bson.M{
		"_id":        primitive.NewObjectID(),
		"user_id":    userID,
		"created_at": now,
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var saved models.StudentProfile
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": set, "$setOnInsert": setOnInsert},
		opts,
	).Decode(&saved)
	if err != nil {
		return models.StudentProfile{}, err
	}
	return saved, nil
}

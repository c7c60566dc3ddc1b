// internal/app/store/sessions/store.go
package sessions

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Session end reasons.
const (
	EndedByLogout   = "logout"
	EndedByRevoke   = "revoked" // forced sign-out (identity switch)
	EndedByInactive = "inactive"
)

// Session tracks one issued access token for activity monitoring and
// revocation audits. TokenID is the token's jti claim, never the token
// itself.
type Session struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty"`
	UserID         primitive.ObjectID  `bson:"user_id"`
	OrganizationID *primitive.ObjectID `bson:"organization_id,omitempty"`
	TokenID        string              `bson:"token_id,omitempty"`

	LoginAt      time.Time  `bson:"login_at"`
	LogoutAt     *time.Time `bson:"logout_at,omitempty"`
	LastActiveAt time.Time  `bson:"last_active_at"`

	EndReason string `bson:"end_reason,omitempty"`

	IP        string `bson:"ip"`
	UserAgent string `bson:"user_agent,omitempty"`

	// Computed on session close.
	DurationSecs int64 `bson:"duration_secs,omitempty"`
}

// Store manages user activity sessions.
type Store struct {
	c *mongo.Collection
}

// New creates a new sessions Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("sessions")}
}

// EnsureIndexes creates necessary indexes for efficient querying.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// Active sessions query (for "who's online")
		{
			Keys:    bson.D{{Key: "logout_at", Value: 1}, {Key: "last_active_at", Value: -1}},
			Options: options.Index().SetName("idx_sessions_active"),
		},
		// User session history
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "login_at", Value: -1}},
			Options: options.Index().SetName("idx_sessions_user"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create starts a new session for a user. Any still-open sessions for
// the same user are closed as inactive first.
func (s *Store) Create(ctx context.Context, userID primitive.ObjectID, orgID *primitive.ObjectID, tokenID, ip, userAgent string) (Session, error) {
	now := time.Now().UTC()

	_, _ = s.c.UpdateMany(ctx,
		bson.M{
			"user_id":   userID,
			"logout_at": nil,
		},
		bson.M{
			"$set": bson.M{
				"logout_at":  now,
				"end_reason": EndedByInactive,
			},
		},
	)

	sess := Session{
		ID:             primitive.NewObjectID(),
		UserID:         userID,
		OrganizationID: orgID,
		TokenID:        tokenID,
		LoginAt:        now,
		LastActiveAt:   now,
		IP:             ip,
		UserAgent:      userAgent,
	}

	if _, err := s.c.InsertOne(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Close ends a session with the given reason and calculates duration.
func (s *Store) Close(ctx context.Context, sessionID primitive.ObjectID, reason string) error {
	now := time.Now().UTC()

	var sess Session
	if err := s.c.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&sess); err != nil {
		return err
	}

	duration := int64(now.Sub(sess.LoginAt).Seconds())

	_, err := s.c.UpdateOne(ctx, bson.M{"_id": sessionID}, bson.M{
		"$set": bson.M{
			"logout_at":     now,
			"end_reason":    reason,
			"duration_secs": duration,
		},
	})
	return err
}

// CloseByUser closes every open session for a user. Used when a forced
// sign-out revokes the user's access rather than one request's token.
func (s *Store) CloseByUser(ctx context.Context, userID primitive.ObjectID, reason string) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{
			"user_id":   userID,
			"logout_at": nil,
		},
		bson.M{
			"$set": bson.M{
				"logout_at":  time.Now().UTC(),
				"end_reason": reason,
			},
		},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// UpdateLastActive bumps the last-active timestamp for heartbeat
// tracking. Closed sessions are left alone; returns whether an open
// session was updated.
func (s *Store) UpdateLastActive(ctx context.Context, sessionID primitive.ObjectID) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id":       sessionID,
			"logout_at": nil,
		},
		bson.M{"$set": bson.M{"last_active_at": time.Now().UTC()}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// GetActiveByUser returns active (not logged out) sessions for a user.
func (s *Store) GetActiveByUser(ctx context.Context, userID primitive.ObjectID) ([]Session, error) {
	cur, err := s.c.Find(ctx, bson.M{
		"user_id":   userID,
		"logout_at": nil,
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var sessions []Session
	if err := cur.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// CloseInactive closes sessions without activity since the threshold.
// Typically called by a background job.
func (s *Store) CloseInactive(ctx context.Context, inactiveThreshold time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-inactiveThreshold)
	now := time.Now().UTC()

	result, err := s.c.UpdateMany(ctx,
		bson.M{
			"logout_at":      nil,
			"last_active_at": bson.M{"$lt": cutoff},
		},
		bson.M{
			"$set": bson.M{
				"logout_at":  now,
				"end_reason": EndedByInactive,
			},
		},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

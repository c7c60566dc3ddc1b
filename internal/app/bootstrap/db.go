// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	applicationstore "github.com/praxishq/praxis/internal/app/store/applications"
	listingstore "github.com/praxishq/praxis/internal/app/store/listings"
	"github.com/praxishq/praxis/internal/app/store/oauthstate"
	organizationstore "github.com/praxishq/praxis/internal/app/store/organizations"
	profilestore "github.com/praxishq/praxis/internal/app/store/profiles"
	"github.com/praxishq/praxis/internal/app/store/sessions"
	userstore "github.com/praxishq/praxis/internal/app/store/users"
	"github.com/praxishq/praxis/internal/app/system/timeouts"
)

// ConnectDB opens the MongoDB client and verifies the connection before
// the rest of startup proceeds.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase))

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}, nil
}

// EnsureSchema creates the indexes every store depends on. Index
// creation is idempotent, so this runs on every startup.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	ensure := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"users", userstore.New(db).EnsureIndexes},
		{"organizations", organizationstore.New(db).EnsureIndexes},
		{"student_profiles", profilestore.New(db).EnsureIndexes},
		{"listings", listingstore.New(db).EnsureIndexes},
		{"applications", applicationstore.New(db).EnsureIndexes},
		{"sessions", sessions.New(db).EnsureIndexes},
		{"oauth_states", oauthstate.New(db).EnsureIndexes},
	}
	for _, e := range ensure {
		if err := e.fn(ctx); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", e.name, err)
		}
	}

	logger.Info("database indexes ensured")
	return nil
}

// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/praxishq/praxis/internal/app/store/oauthstate"
	"github.com/praxishq/praxis/internal/app/store/sessions"
	userstore "github.com/praxishq/praxis/internal/app/store/users"
	"github.com/praxishq/praxis/internal/domain/models"
)

// sweepInterval is how often the inactivity sweep runs. The idle
// threshold itself comes from config.
const sweepInterval = 5 * time.Minute

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.AdminEmail != "" {
		if err := ensureAdmin(ctx, deps, appCfg.AdminEmail, logger); err != nil {
			return fmt.Errorf("ensure admin: %w", err)
		}
	}

	// OAuth state rows carry a TTL index, but clear leftovers at boot so
	// a long downtime does not leave a backlog.
	if n, err := oauthstate.New(deps.MongoDatabase).CleanupExpired(ctx); err != nil {
		logger.Warn("oauth state cleanup failed", zap.Error(err))
	} else if n > 0 {
		logger.Info("removed expired oauth state", zap.Int64("count", n))
	}

	if appCfg.SessionInactiveAfter > 0 {
		go sweepInactiveSessions(sessions.New(deps.MongoDatabase), appCfg.SessionInactiveAfter, logger)
	}

	return nil
}

// ensureAdmin promotes the configured email to admin, creating the
// account if it does not exist yet. The created account has no
// password; it signs in with Google.
func ensureAdmin(ctx context.Context, deps DBDeps, email string, logger *zap.Logger) error {
	users := userstore.New(deps.MongoDatabase)

	existing, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role == "admin" {
			return nil
		}
		if err := users.SetRole(ctx, existing.ID, "admin"); err != nil {
			return err
		}
		logger.Info("promoted existing user to admin", zap.String("email", email))
		return nil

	case errors.Is(err, mongo.ErrNoDocuments):
		_, err := users.Create(ctx, models.User{
			FullName:   "Administrator",
			Email:      email,
			Role:       "admin",
			AuthMethod: "google",
		})
		if err != nil {
			return err
		}
		logger.Info("created admin user", zap.String("email", email))
		return nil

	default:
		return err
	}
}

// sweepInactiveSessions closes activity sessions whose last activity is
// older than the idle threshold. It runs for the life of the process.
func sweepInactiveSessions(store *sessions.Store, idleAfter time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		closed, err := store.CloseInactive(ctx, idleAfter)
		cancel()
		if err != nil {
			logger.Warn("inactive session sweep failed", zap.Error(err))
			continue
		}
		if closed > 0 {
			logger.Info("closed inactive sessions", zap.Int64("count", closed))
		}
	}
}

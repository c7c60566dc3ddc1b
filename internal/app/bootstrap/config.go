// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for Praxis.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: PRAXIS_MONGO_URI, PRAXIS_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "praxis", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "praxis-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	{Name: "token_secret", Default: "dev-only-token-secret-0123456789ABCDEF", Desc: "HS256 signing key for access tokens (must be strong in production)"},
	{Name: "token_issuer", Default: "praxis", Desc: "Issuer claim stamped into access tokens"},
	{Name: "token_ttl", Default: "24h", Desc: "Access token lifetime (e.g., 24h, 8h, 30m)"},

	{Name: "provider_base_url", Default: "", Desc: "Upstream auth provider base URL notified on sign-out (blank: local only)"},

	// Google OAuth configuration
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},

	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for OAuth redirects"},

	// Admin bootstrap
	{Name: "admin_email", Default: "", Desc: "Email of the admin user (promotes/creates on startup)"},

	// Activity session bookkeeping
	{Name: "session_inactive_after", Default: "30m", Desc: "Idle time before an open activity session is closed (0 disables the sweep)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config
// files, environment variables (WAFFLE_* for core, PRAXIS_* for app),
// and command-line flags, merged with precedence:
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "PRAXIS", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),

		TokenSecret: appValues.String("token_secret"),
		TokenIssuer: appValues.String("token_issuer"),
		TokenTTL:    appValues.Duration("token_ttl", 24*time.Hour),

		ProviderBaseURL: appValues.String("provider_base_url"),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),

		BaseURL: appValues.String("base_url"),

		AdminEmail:           appValues.String("admin_email"),
		SessionInactiveAfter: appValues.Duration("session_inactive_after", 30*time.Minute),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Praxis validates the MongoDB URI format to catch configuration errors
// early, and refuses to start in prod with the dev signing keys.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if coreCfg.Env == "prod" {
		if appCfg.SessionKey == "dev-only-change-me-please-0123456789ABCDEF" {
			return fmt.Errorf("session_key must be set in production")
		}
		if appCfg.TokenSecret == "dev-only-token-secret-0123456789ABCDEF" {
			return fmt.Errorf("token_secret must be set in production")
		}
	}

	return nil
}

// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging, CORS); AppConfig is everything specific to Praxis. The
// struct is passed to most lifecycle hooks, so any configuration needed
// during startup, request handling, or shutdown lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session cookie configuration. The cookie carries the reconciled
	// identity state between requests.
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: praxis-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Access token configuration
	TokenSecret string        // HS256 signing key for access tokens
	TokenIssuer string        // Issuer claim stamped into tokens
	TokenTTL    time.Duration // Access token lifetime

	// ProviderBaseURL is the upstream auth provider to notify on
	// sign-out. Blank means sign-out is local only.
	ProviderBaseURL string

	// Google OAuth configuration
	GoogleClientID     string
	GoogleClientSecret string

	// Base URL for OAuth redirects (e.g., "https://praxis.example")
	BaseURL string

	// Activity session bookkeeping
	AdminEmail           string        // Email promoted/created as admin on startup (blank disables)
	SessionInactiveAfter time.Duration // Idle time before an open activity session is closed
}

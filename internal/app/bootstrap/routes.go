// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	applicationsfeature "github.com/praxishq/praxis/internal/app/features/applications"
	authgooglefeature "github.com/praxishq/praxis/internal/app/features/authgoogle"
	dashboardfeature "github.com/praxishq/praxis/internal/app/features/dashboard"
	healthfeature "github.com/praxishq/praxis/internal/app/features/health"
	listingsfeature "github.com/praxishq/praxis/internal/app/features/listings"
	loginfeature "github.com/praxishq/praxis/internal/app/features/login"
	logoutfeature "github.com/praxishq/praxis/internal/app/features/logout"
	organizationsfeature "github.com/praxishq/praxis/internal/app/features/organizations"
	profilesfeature "github.com/praxishq/praxis/internal/app/features/profiles"
	sessionfeature "github.com/praxishq/praxis/internal/app/features/session"
	applicationstore "github.com/praxishq/praxis/internal/app/store/applications"
	listingstore "github.com/praxishq/praxis/internal/app/store/listings"
	"github.com/praxishq/praxis/internal/app/store/oauthstate"
	organizationstore "github.com/praxishq/praxis/internal/app/store/organizations"
	profilestore "github.com/praxishq/praxis/internal/app/store/profiles"
	rolestore "github.com/praxishq/praxis/internal/app/store/roles"
	"github.com/praxishq/praxis/internal/app/store/sessions"
	userstore "github.com/praxishq/praxis/internal/app/store/users"
	"github.com/praxishq/praxis/internal/app/system/auth"
	"github.com/praxishq/praxis/internal/app/system/identity"
	"github.com/praxishq/praxis/internal/app/system/providerauth"
)

// BuildHandler constructs the root HTTP handler (router) for this
// WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and any Startup hooks have completed. Praxis wires the stores, the
// auth provider client, and the per-request identity reconciliation
// middleware, then mounts the feature routers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase
	users := userstore.New(db)
	orgs := organizationstore.New(db)
	profiles := profilestore.New(db)
	listings := listingstore.New(db)
	apps := applicationstore.New(db)
	activity := sessions.New(db)
	states := oauthstate.New(db)
	roles := rolestore.New(db)

	provider := providerauth.NewClient([]byte(appCfg.TokenSecret), appCfg.TokenIssuer, appCfg.ProviderBaseURL, logger)

	sessionHandler := sessionfeature.NewHandler(provider, roles, sessionMgr, activity, appCfg.TokenTTL, logger)

	requireStudent := auth.RequireUserType(logger, identity.UserTypeStudent)
	requireOrganization := auth.RequireUserType(logger, identity.UserTypeOrganization)

	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators.
	// Mounted before the identity middleware so probes stay cheap.
	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(deps.MongoClient, logger)))

	r.Group(func(g chi.Router) {
		// Every request below runs one identity reconciliation step.
		g.Use(sessionHandler.Reconcile)

		// Authentication
		g.Mount("/auth", loginfeature.Routes(loginfeature.NewHandler(users, activity, provider, appCfg.TokenTTL, logger)))
		g.Mount("/auth/google", authgooglefeature.Routes(authgooglefeature.NewHandler(
			users, activity, states, provider, appCfg.TokenTTL,
			appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)))
		g.Mount("/auth/logout", logoutfeature.Routes(logoutfeature.NewHandler(activity, provider, sessionMgr, logger)))

		// Reconciled session introspection
		g.Mount("/session", sessionfeature.Routes(sessionHandler))
		g.Mount("/dashboard", dashboardfeature.Routes(dashboardfeature.NewHandler(logger)))

		// Student profile
		g.Group(func(sg chi.Router) {
			sg.Use(requireStudent)
			sg.Mount("/profile", profilesfeature.Routes(profilesfeature.NewHandler(profiles, logger)))
		})

		// Organization company record
		g.Group(func(og chi.Router) {
			og.Use(requireOrganization)
			og.Mount("/organization", organizationsfeature.Routes(organizationsfeature.NewHandler(orgs, users, logger)))
		})

		// Listings and applications
		g.Mount("/listings", listingsfeature.Routes(listingsfeature.NewHandler(listings, orgs, logger), requireOrganization))
		g.Mount("/applications", applicationsfeature.Routes(
			applicationsfeature.NewHandler(apps, listings, orgs, profiles, logger),
			requireStudent, requireOrganization))
	})

	return r, nil
}

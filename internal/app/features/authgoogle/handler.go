// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/praxishq/praxis/internal/app/store/oauthstate"
	"github.com/praxishq/praxis/internal/app/store/sessions"
	userstore "github.com/praxishq/praxis/internal/app/store/users"
	"github.com/praxishq/praxis/internal/app/system/identity"
	"github.com/praxishq/praxis/internal/app/system/normalize"
	"github.com/praxishq/praxis/internal/app/system/providerauth"
	"github.com/praxishq/praxis/internal/app/system/timeouts"
	"github.com/praxishq/praxis/internal/domain/models"
)

// Handler handles Google OAuth authentication.
type Handler struct {
	Users      *userstore.Store
	Sessions   *sessions.Store
	StateStore *oauthstate.Store
	Provider   *providerauth.Client
	TokenTTL   time.Duration
	Log        *zap.Logger

	// OAuth configuration
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g., "https://praxis.example/auth/google/callback"
}

// NewHandler creates a new Google OAuth handler.
func NewHandler(
	users *userstore.Store,
	sessStore *sessions.Store,
	stateStore *oauthstate.Store,
	provider *providerauth.Client,
	tokenTTL time.Duration,
	clientID, clientSecret, baseURL string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:        users,
		Sessions:     sessStore,
		StateStore:   stateStore,
		Provider:     provider,
		TokenTTL:     tokenTTL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/google/callback",
		Log:          logger,
	}
}

// oauth2Config returns the Google OAuth2 configuration.
func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

// ServeStart handles GET /auth/google: redirects to Google's consent
// screen. The optional user_type query parameter ("student" or
// "organization") is remembered for account creation on callback.
func (h *Handler) ServeStart(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		http.Redirect(w, r, "/login?error=google_not_configured", http.StatusSeeOther)
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("failed to generate OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	returnURL := query.Get(r, "return")
	userType := normalize.Role(query.Get(r, "user_type"))
	switch userType {
	case "student", "organization":
		// ok
	default:
		userType = ""
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	expiresAt := time.Now().UTC().Add(10 * time.Minute)
	if err := h.StateStore.Save(ctx, state, returnURL, userType, expiresAt); err != nil {
		h.Log.Error("failed to save OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, h.oauth2Config().AuthCodeURL(state, oauth2.AccessTypeOffline), http.StatusTemporaryRedirect)
}

// ServeCallback handles GET /auth/google/callback: validates state,
// exchanges the code, finds or creates the user, and redirects to the
// destination with a fresh access token.
func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		http.Redirect(w, r, "/login?error=google_denied", http.StatusSeeOther)
		return
	}

	state := r.URL.Query().Get("state")
	if state == "" {
		h.Log.Warn("missing OAuth state parameter")
		http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
		return
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	returnURL, userType, valid, err := h.StateStore.Validate(ctxTimeout, state)
	if err != nil {
		h.Log.Error("failed to validate OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}
	if !valid {
		h.Log.Warn("invalid or expired OAuth state")
		http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.Log.Warn("missing OAuth code parameter")
		http.Redirect(w, r, "/login?error=invalid_code", http.StatusSeeOther)
		return
	}

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		http.Redirect(w, r, "/login?error=token_exchange", http.StatusSeeOther)
		return
	}

	googleUser, err := fetchGoogleUserInfo(ctx, token)
	if err != nil {
		h.Log.Error("failed to fetch Google user info", zap.Error(err))
		http.Redirect(w, r, "/login?error=user_info", http.StatusSeeOther)
		return
	}

	user, err := h.findOrCreateUser(ctx, googleUser, userType)
	if err != nil {
		if err == errUserDisabled {
			http.Redirect(w, r, "/login?error=account_disabled", http.StatusSeeOther)
			return
		}
		h.Log.Error("failed to resolve Google user", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	h.issueAndRedirect(w, r, user, returnURL)
}

var errUserDisabled = fmt.Errorf("user disabled")

// googleUserInfo represents user info returned from Google.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// fetchGoogleUserInfo retrieves user information from Google's userinfo endpoint.
func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	return &info, nil
}

// findOrCreateUser resolves the Google account to a local user:
// by Google subject first, then by email (linking the subject), and
// finally by creating a fresh account with the remembered user type
// (default student).
func (h *Handler) findOrCreateUser(ctx context.Context, g *googleUserInfo, userType string) (*models.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	u, err := h.Users.GetByGoogleID(ctxTimeout, g.ID)
	if err == nil {
		if normalize.Status(u.Status) == "disabled" {
			return nil, errUserDisabled
		}
		return u, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	u, err = h.Users.GetByEmail(ctxTimeout, g.Email)
	if err == nil {
		if normalize.Status(u.Status) == "disabled" {
			return nil, errUserDisabled
		}
		if u.GoogleID == nil || *u.GoogleID == "" {
			if linkErr := h.Users.LinkGoogleID(ctxTimeout, u.ID, g.ID); linkErr != nil {
				h.Log.Warn("failed to link google subject",
					zap.Error(linkErr),
					zap.String("user_id", u.ID.Hex()))
			}
		}
		return u, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	if userType == "" {
		userType = "student"
	}
	created, err := h.Users.Create(ctxTimeout, models.User{
		FullName:   g.Name,
		Email:      g.Email,
		AuthMethod: "google",
		Role:       userType,
		GoogleID:   &g.ID,
	})
	if err != nil {
		return nil, err
	}
	h.Log.Info("created user via Google OAuth",
		zap.String("user_id", created.ID.Hex()),
		zap.String("user_type", userType))
	return &created, nil
}

// issueAndRedirect mints an access token, records the activity
// session, and redirects to the destination with the token attached.
func (h *Handler) issueAndRedirect(w http.ResponseWriter, r *http.Request, u *models.User, returnURL string) {
	raw, tokenID, err := h.Provider.IssueToken(u.ID.Hex(), u.Email, u.Role, h.TokenTTL)
	if err != nil {
		h.Log.Error("failed to issue token", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	if _, err := h.Sessions.Create(ctx, u.ID, u.OrganizationID, tokenID, extractIP(r), r.UserAgent()); err != nil {
		h.Log.Warn("failed to create activity session", zap.Error(err))
	}

	h.Provider.Announce(&identity.Session{
		AccessToken:  raw,
		UserID:       u.ID.Hex(),
		Email:        u.Email,
		UserTypeHint: u.Role,
	})

	dest := urlutil.SafeReturn(returnURL, "", identity.DashboardURLFor(identity.UserType(u.Role)))
	sep := "?"
	if strings.Contains(dest, "?") {
		sep = "&"
	}
	http.Redirect(w, r, dest+sep+"token="+url.QueryEscape(raw), http.StatusSeeOther)
}

// generateState creates a cryptographically secure random state string.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// extractIP extracts the client IP address from the request.
func extractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

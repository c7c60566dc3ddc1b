// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/praxishq/praxis/internal/app/store/sessions"
	userstore "github.com/praxishq/praxis/internal/app/store/users"
	"github.com/praxishq/praxis/internal/app/system/apperror"
	"github.com/praxishq/praxis/internal/app/system/authutil"
	"github.com/praxishq/praxis/internal/app/system/httpjson"
	"github.com/praxishq/praxis/internal/app/system/identity"
	"github.com/praxishq/praxis/internal/app/system/normalize"
	"github.com/praxishq/praxis/internal/app/system/providerauth"
	"github.com/praxishq/praxis/internal/app/system/timeouts"
	"github.com/praxishq/praxis/internal/domain/models"
)

type Handler struct {
	Users    *userstore.Store
	Sessions *sessions.Store
	Provider *providerauth.Client
	TokenTTL time.Duration
	Log      *zap.Logger
}

func NewHandler(
	users *userstore.Store,
	sessStore *sessions.Store,
	provider *providerauth.Client,
	tokenTTL time.Duration,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:    users,
		Sessions: sessStore,
		Provider: provider,
		TokenTTL: tokenTTL,
		Log:      logger,
	}
}

type signupRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"user_type"` // student | organization
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token        string `json:"token"`
	UserID       string `json:"user_id"`
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	UserType     string `json:"user_type"`
	DashboardURL string `json:"dashboard_url"`
}

// HandleSignup handles POST /auth/signup.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	if normalize.Name(req.FullName) == "" {
		httpjson.WriteError(w, h.Log, apperror.Validation("full_name", "full name is required"))
		return
	}
	if normalize.Email(req.Email) == "" {
		httpjson.WriteError(w, h.Log, apperror.Validation("email", "email is required"))
		return
	}
	if err := authutil.ValidatePassword(req.Password); err != nil {
		httpjson.WriteError(w, h.Log, apperror.Validation("password", err.Error()))
		return
	}
	userType := normalize.Role(req.UserType)
	switch userType {
	case "":
		userType = "student"
	case "student", "organization":
		// ok
	default:
		httpjson.WriteError(w, h.Log, apperror.Validation("user_type", `user_type must be "student" or "organization"`))
		return
	}

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := h.Users.Create(ctx, models.User{
		FullName:     req.FullName,
		Email:        req.Email,
		AuthMethod:   "password",
		Role:         userType,
		PasswordHash: &hash,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			httpjson.WriteError(w, h.Log, apperror.Conflict(err.Error()))
			return
		}
		httpjson.WriteError(w, h.Log, err)
		return
	}

	h.respondAuthenticated(w, r, &user, http.StatusCreated)
}

// HandleLogin handles POST /auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err == mongo.ErrNoDocuments {
		httpjson.WriteError(w, h.Log, apperror.Unauthorized("invalid email or password"))
		return
	}
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	if user.Status == "disabled" {
		httpjson.WriteError(w, h.Log, apperror.Forbidden("this account is disabled"))
		return
	}
	if user.PasswordHash == nil || !authutil.CheckPassword(req.Password, *user.PasswordHash) {
		httpjson.WriteError(w, h.Log, apperror.Unauthorized("invalid email or password"))
		return
	}

	h.respondAuthenticated(w, r, user, http.StatusOK)
}

// respondAuthenticated issues a token, records the activity session,
// announces the new session on the provider stream, and writes the
// auth payload.
func (h *Handler) respondAuthenticated(w http.ResponseWriter, r *http.Request, user *models.User, status int) {
	raw, tokenID, err := h.Provider.IssueToken(user.ID.Hex(), user.Email, user.Role, h.TokenTTL)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.Sessions.Create(ctx, user.ID, user.OrganizationID, tokenID, clientIP(r), r.UserAgent()); err != nil {
		// Activity tracking must not block sign-in.
		h.Log.Warn("activity session create failed", zap.Error(err))
	}

	sess := &identity.Session{
		AccessToken:  raw,
		UserID:       user.ID.Hex(),
		Email:        user.Email,
		UserTypeHint: user.Role,
	}
	h.Provider.Announce(sess)

	httpjson.Write(w, status, authResponse{
		Token:        raw,
		UserID:       user.ID.Hex(),
		FullName:     user.FullName,
		Email:        user.Email,
		UserType:     user.Role,
		DashboardURL: identity.DashboardURLFor(identity.UserType(user.Role)),
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}

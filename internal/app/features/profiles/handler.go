// internal/app/features/profiles/handler.go
package profiles

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	profilestore "github.com/praxishq/praxis/internal/app/store/profiles"
	"github.com/praxishq/praxis/internal/app/system/apperror"
	"github.com/praxishq/praxis/internal/app/system/auth"
	"github.com/praxishq/praxis/internal/app/system/completeness"
	"github.com/praxishq/praxis/internal/app/system/htmlsanitize"
	"github.com/praxishq/praxis/internal/app/system/httpjson"
	"github.com/praxishq/praxis/internal/app/system/normalize"
	"github.com/praxishq/praxis/internal/app/system/timeouts"
	"github.com/praxishq/praxis/internal/domain/models"
)

type Handler struct {
	Profiles *profilestore.Store
	Log      *zap.Logger
}

func NewHandler(profiles *profilestore.Store, logger *zap.Logger) *Handler {
	return &Handler{Profiles: profiles, Log: logger}
}

// HandleGet handles GET /profile: the signed-in student's profile.
// A student who never saved one gets an empty profile, not a 404.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		httpjson.WriteError(w, h.Log, apperror.Unauthorized("sign in required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	profile, err := h.Profiles.GetByUser(ctx, userID)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if profile == nil {
		profile = &models.StudentProfile{UserID: userID}
	}
	httpjson.Write(w, http.StatusOK, profile)
}

type updateRequest struct {
	AvatarURL  string                   `json:"avatar_url"`
	PhotoURL   string                   `json:"photo_url"`
	Phone      string                   `json:"phone"`
	Bio        string                   `json:"bio"`
	Skills     []string                 `json:"skills"`
	Education  []models.EducationEntry  `json:"education"`
	Experience []models.ExperienceEntry `json:"experience"`
}

// HandleUpdate handles PUT /profile. Every field is optional; saving a
// sparse profile is always allowed, completeness is advisory only.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		httpjson.WriteError(w, h.Log, apperror.Unauthorized("sign in required"))
		return
	}

	var req updateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	saved, err := h.Profiles.Upsert(ctx, userID, models.StudentProfile{
		AvatarURL:  req.AvatarURL,
		PhotoURL:   req.PhotoURL,
		Phone:      normalize.Phone(req.Phone),
		Bio:        htmlsanitize.PlainText(req.Bio),
		Skills:     req.Skills,
		Education:  req.Education,
		Experience: req.Experience,
	})
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, saved)
}

type completenessResponse struct {
	IsComplete bool                 `json:"is_complete"`
	Missing    []completeness.Field `json:"missing_fields"`
	Percentage int                  `json:"percentage"`
}

// HandleCompleteness handles GET /profile/completeness.
func (h *Handler) HandleCompleteness(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		httpjson.WriteError(w, h.Log, apperror.Unauthorized("sign in required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	profile, err := h.Profiles.GetByUser(ctx, userID)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	v := completeness.Evaluate(profile)
	httpjson.Write(w, http.StatusOK, completenessResponse{
		IsComplete: v.IsComplete,
		Missing:    v.Missing,
		Percentage: completeness.Percentage(v, completeness.StudentTrackedFields),
	})
}

func requestUserID(r *http.Request) (primitive.ObjectID, bool) {
	snap, ok := auth.Identity(r)
	if !ok || snap.User == nil {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(snap.User.ID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

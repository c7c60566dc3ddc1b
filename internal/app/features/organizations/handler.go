// internal/app/features/organizations/handler.go
package organizations

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	organizationstore "github.com/praxishq/praxis/internal/app/store/organizations"
	userstore "github.com/praxishq/praxis/internal/app/store/users"
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
	Organizations *organizationstore.Store
	Users         *userstore.Store
	Log           *zap.Logger
}

func NewHandler(orgs *organizationstore.Store, users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Organizations: orgs, Users: users, Log: logger}
}

// HandleGet handles GET /organization: the signed-in owner's company
// record. 404 until the owner has saved one.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerID(r)
	if !ok {
		httpjson.WriteError(w, h.Log, apperror.Unauthorized("sign in required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	org, err := h.Organizations.GetByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.WriteError(w, h.Log, apperror.NotFound("organization", ownerID.Hex()))
			return
		}
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, org)
}

type updateRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Industry     string `json:"industry"`
	Location     string `json:"location"`
	Website      string `json:"website"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
}

// HandleUpdate handles PUT /organization. The first save creates the
// company record and scopes the owner's user to it; later saves are
// partial updates.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerID(r)
	if !ok {
		httpjson.WriteError(w, h.Log, apperror.Unauthorized("sign in required"))
		return
	}

	var req updateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	fields := models.Organization{
		Name:         normalize.Name(req.Name),
		Description:  htmlsanitize.RichText(req.Description),
		Industry:     strings.TrimSpace(req.Industry),
		Location:     strings.TrimSpace(req.Location),
		Website:      strings.TrimSpace(req.Website),
		ContactEmail: normalize.Email(req.ContactEmail),
		ContactPhone: normalize.Phone(req.ContactPhone),
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	existing, err := h.Organizations.GetByOwner(ctx, ownerID)
	switch {
	case err == nil:
		if err := h.Organizations.Update(ctx, existing.ID, fields); err != nil {
			h.writeSaveError(w, err)
			return
		}
		saved, err := h.Organizations.GetByID(ctx, existing.ID)
		if err != nil {
			httpjson.WriteError(w, h.Log, err)
			return
		}
		httpjson.Write(w, http.StatusOK, saved)

	case errors.Is(err, mongo.ErrNoDocuments):
		if fields.Name == "" {
			httpjson.WriteError(w, h.Log, apperror.Validation("name", "company name is required"))
			return
		}
		fields.OwnerUserID = ownerID
		created, err := h.Organizations.Create(ctx, fields)
		if err != nil {
			h.writeSaveError(w, err)
			return
		}
		if err := h.Users.SetOrganizationID(ctx, ownerID, created.ID); err != nil {
			h.Log.Warn("failed to scope owner to new organization",
				zap.String("user_id", ownerID.Hex()),
				zap.String("organization_id", created.ID.Hex()),
				zap.Error(err))
		}
		httpjson.Write(w, http.StatusCreated, created)

	default:
		httpjson.WriteError(w, h.Log, err)
	}
}

type completenessResponse struct {
	IsComplete bool                 `json:"is_complete"`
	Missing    []completeness.Field `json:"missing_fields"`
	Percentage int                  `json:"percentage"`
}

// HandleCompleteness handles GET /organization/completeness.
func (h *Handler) HandleCompleteness(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerID(r)
	if !ok {
		httpjson.WriteError(w, h.Log, apperror.Unauthorized("sign in required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var org *models.Organization
	found, err := h.Organizations.GetByOwner(ctx, ownerID)
	switch {
	case err == nil:
		org = &found
	case errors.Is(err, mongo.ErrNoDocuments):
		// leave nil: evaluated as not-loaded
	default:
		httpjson.WriteError(w, h.Log, err)
		return
	}

	v := completeness.EvaluateOrganization(org)
	httpjson.Write(w, http.StatusOK, completenessResponse{
		IsComplete: v.IsComplete,
		Missing:    v.Missing,
		Percentage: completeness.Percentage(v, completeness.OrganizationTrackedFields),
	})
}

func (h *Handler) writeSaveError(w http.ResponseWriter, err error) {
	if errors.Is(err, organizationstore.ErrDuplicateOrganization) {
		httpjson.WriteError(w, h.Log, apperror.Conflict("an organization with that name already exists"))
		return
	}
	httpjson.WriteError(w, h.Log, err)
}

func ownerID(r *http.Request) (primitive.ObjectID, bool) {
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

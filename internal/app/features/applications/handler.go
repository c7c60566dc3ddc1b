// internal/app/features/applications/handler.go
package applications

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	applicationstore "github.com/praxishq/praxis/internal/app/store/applications"
	listingstore "github.com/praxishq/praxis/internal/app/store/listings"
	organizationstore "github.com/praxishq/praxis/internal/app/store/organizations"
	profilestore "github.com/praxishq/praxis/internal/app/store/profiles"
	"github.com/praxishq/praxis/internal/app/system/apperror"
	"github.com/praxishq/praxis/internal/app/system/appnotes"
	"github.com/praxishq/praxis/internal/app/system/auth"
	"github.com/praxishq/praxis/internal/app/system/completeness"
	"github.com/praxishq/praxis/internal/app/system/htmlsanitize"
	"github.com/praxishq/praxis/internal/app/system/httpjson"
	"github.com/praxishq/praxis/internal/app/system/timeouts"
	"github.com/praxishq/praxis/internal/domain/models"
)

const listLimit = 200

type Handler struct {
	Applications  *applicationstore.Store
	Listings      *listingstore.Store
	Organizations *organizationstore.Store
	Profiles      *profilestore.Store
	Log           *zap.Logger
}

func NewHandler(apps *applicationstore.Store, listings *listingstore.Store, orgs *organizationstore.Store, profiles *profilestore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Applications:  apps,
		Listings:      listings,
		Organizations: orgs,
		Profiles:      profiles,
		Log:           logger,
	}
}

type applyRequest struct {
	ListingRef string `json:"listing_ref"`
	Notes      string `json:"notes"`
}

// HandleApply handles POST /applications. Applying is gated on a
// complete student profile, and the target listing must still be open.
// The structured details are extracted from the notes once, at
// submission time, and stored with the application.
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	studentID, ok := requestUserID(r)
	if !ok {
		httpjson.WriteError(w, h.Log, apperror.Unauthorized("sign in required"))
		return
	}

	var req applyRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if strings.TrimSpace(req.ListingRef) == "" {
		httpjson.WriteError(w, h.Log, apperror.Validation("listing_ref", "listing_ref is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	profile, err := h.Profiles.GetByUser(ctx, studentID)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if v := completeness.Evaluate(profile); !v.IsComplete {
		httpjson.WriteError(w, h.Log, apperror.Forbidden("complete your profile before applying"))
		return
	}

	listing, err := h.Listings.GetByRef(ctx, req.ListingRef)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.WriteError(w, h.Log, apperror.NotFound("listing", req.ListingRef))
			return
		}
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if listing.Status != models.ListingOpen {
		httpjson.WriteError(w, h.Log, apperror.Conflict("listing is no longer accepting applications"))
		return
	}

	notes := htmlsanitize.PlainText(req.Notes)
	app := models.Application{
		ListingID:      listing.ID,
		OrganizationID: listing.OrganizationID,
		StudentID:      studentID,
		Notes:          notes,
	}
	if details := appnotes.Parse(notes); details != (models.ApplicationDetails{}) {
		app.Details = &details
	}

	created, err := h.Applications.Create(ctx, app)
	if err != nil {
		if errors.Is(err, applicationstore.ErrAlreadyApplied) {
			httpjson.WriteError(w, h.Log, apperror.Conflict("you have already applied to this listing"))
			return
		}
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, created)
}

// HandleMine handles GET /applications: the student's own
// applications, newest first.
func (h *Handler) HandleMine(w http.ResponseWriter, r *http.Request) {
	studentID, ok := requestUserID(r)
	if !ok {
		httpjson.WriteError(w, h.Log, apperror.Unauthorized("sign in required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	items, err := h.Applications.ListByStudent(ctx, studentID, listLimit)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"applications": items})
}

// HandleForListing handles GET /applications/listing/{ref}: every
// application to one of the signed-in organization's listings.
func (h *Handler) HandleForListing(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	org, ok := h.ownedOrganization(ctx, w, r)
	if !ok {
		return
	}
	listing, err := h.Listings.GetByRef(ctx, ref)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.WriteError(w, h.Log, apperror.NotFound("listing", ref))
			return
		}
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if listing.OrganizationID != org.ID {
		httpjson.WriteError(w, h.Log, apperror.Forbidden("listing belongs to another organization"))
		return
	}

	items, err := h.Applications.ListByListing(ctx, listing.ID, listLimit)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"applications": items})
}

type statusRequest struct {
	Status string `json:"status"`
}

var allowedTransitions = map[string]bool{
	models.ApplicationReviewing: true,
	models.ApplicationAccepted:  true,
	models.ApplicationRejected:  true,
}

// HandleSetStatus handles POST /applications/{ref}/status. Only the
// organization that owns the listing may move an application, and it
// can never move one back to submitted.
func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")

	var req statusRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if !allowedTransitions[status] {
		httpjson.WriteError(w, h.Log, apperror.Validation("status", `status must be "reviewing", "accepted", or "rejected"`))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	org, ok := h.ownedOrganization(ctx, w, r)
	if !ok {
		return
	}
	app, err := h.Applications.GetByRef(ctx, ref)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.WriteError(w, h.Log, apperror.NotFound("application", ref))
			return
		}
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if app.OrganizationID != org.ID {
		httpjson.WriteError(w, h.Log, apperror.Forbidden("application belongs to another organization"))
		return
	}

	if err := h.Applications.SetStatus(ctx, app.ID, status); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"ref": ref, "status": status})
}

func (h *Handler) ownedOrganization(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Organization, bool) {
	ownerID, ok := requestUserID(r)
	if !ok {
		httpjson.WriteError(w, h.Log, apperror.Unauthorized("sign in required"))
		return models.Organization{}, false
	}
	org, err := h.Organizations.GetByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.WriteError(w, h.Log, apperror.Forbidden("create your organization profile first"))
			return models.Organization{}, false
		}
		httpjson.WriteError(w, h.Log, err)
		return models.Organization{}, false
	}
	return org, true
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

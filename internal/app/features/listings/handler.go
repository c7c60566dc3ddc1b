// internal/app/features/listings/handler.go
package listings

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	listingstore "github.com/praxishq/praxis/internal/app/store/listings"
	organizationstore "github.com/praxishq/praxis/internal/app/store/organizations"
	"github.com/praxishq/praxis/internal/app/system/apperror"
	"github.com/praxishq/praxis/internal/app/system/auth"
	"github.com/praxishq/praxis/internal/app/system/completeness"
	"github.com/praxishq/praxis/internal/app/system/htmlsanitize"
	"github.com/praxishq/praxis/internal/app/system/httpjson"
	"github.com/praxishq/praxis/internal/app/system/timeouts"
	"github.com/praxishq/praxis/internal/domain/models"
)

// browseLimit caps public listing pages.
const browseLimit = 100

type Handler struct {
	Listings      *listingstore.Store
	Organizations *organizationstore.Store
	Log           *zap.Logger
}

func NewHandler(listings *listingstore.Store, orgs *organizationstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Listings: listings, Organizations: orgs, Log: logger}
}

// HandleBrowse handles GET /listings: all open listings, newest first.
// Public, no sign-in needed.
func (h *Handler) HandleBrowse(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	items, err := h.Listings.ListOpen(ctx, browseLimit)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"listings": items})
}

// HandleGet handles GET /listings/{ref}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	listing, err := h.Listings.GetByRef(ctx, ref)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.WriteError(w, h.Log, apperror.NotFound("listing", ref))
			return
		}
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, listing)
}

// HandleMine handles GET /listings/mine: the signed-in organization's
// own listings, open and closed.
func (h *Handler) HandleMine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	org, ok := h.ownedOrganization(ctx, w, r)
	if !ok {
		return
	}
	items, err := h.Listings.ListByOrganization(ctx, org.ID, browseLimit)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"listings": items})
}

type createRequest struct {
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Remote      bool   `json:"remote"`
	Duration    string `json:"duration"`
	Paid        bool   `json:"paid"`
}

// HandleCreate handles POST /listings. Posting is gated on a complete
// company record so students never see half-filled organizations.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		httpjson.WriteError(w, h.Log, apperror.Validation("title", "title is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	org, ok := h.ownedOrganization(ctx, w, r)
	if !ok {
		return
	}
	if v := completeness.EvaluateOrganization(&org); !v.IsComplete {
		httpjson.WriteError(w, h.Log, apperror.Forbidden("complete your organization profile before posting listings"))
		return
	}

	created, err := h.Listings.Create(ctx, models.Listing{
		OrganizationID: org.ID,
		Title:          strings.TrimSpace(req.Title),
		Summary:        htmlsanitize.PlainText(req.Summary),
		Description:    htmlsanitize.RichText(req.Description),
		Location:       strings.TrimSpace(req.Location),
		Remote:         req.Remote,
		Duration:       strings.TrimSpace(req.Duration),
		Paid:           req.Paid,
	})
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, created)
}

// HandleClose handles POST /listings/{ref}/close. Only the owning
// organization may close its listing; closing is idempotent.
func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
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
	if listing.Status != models.ListingClosed {
		if err := h.Listings.SetStatus(ctx, listing.ID, models.ListingClosed); err != nil {
			httpjson.WriteError(w, h.Log, err)
			return
		}
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"ref": ref, "status": models.ListingClosed})
}

// ownedOrganization resolves the signed-in user's company record,
// writing the error response itself on failure.
func (h *Handler) ownedOrganization(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Organization, bool) {
	snap, ok := auth.Identity(r)
	if !ok || snap.User == nil {
		httpjson.WriteError(w, h.Log, apperror.Unauthorized("sign in required"))
		return models.Organization{}, false
	}
	ownerID, err := primitive.ObjectIDFromHex(snap.User.ID)
	if err != nil {
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

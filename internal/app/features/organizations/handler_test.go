// internal/app/features/organizations/handler_test.go
package organizations

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	organizationstore "github.com/praxishq/praxis/internal/app/store/organizations"
	userstore "github.com/praxishq/praxis/internal/app/store/users"
	"github.com/praxishq/praxis/internal/app/system/auth"
	"github.com/praxishq/praxis/internal/app/system/identity"
	"github.com/praxishq/praxis/internal/domain/models"
	"github.com/praxishq/praxis/internal/testutil"
)

func newTestHandler(t *testing.T) (*Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	h := NewHandler(organizationstore.New(db), userstore.New(db), zap.NewNop())
	return h, testutil.NewFixtures(t, db)
}

func ownerRequest(method, target, userID string, body []byte) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return auth.WithIdentity(req, identity.Snapshot{
		User:     &identity.User{ID: userID, Email: "owner@test.example", UserTypeHint: "organization"},
		UserType: identity.UserTypeOrganization,
	})
}

func TestHandler_Get_NotCreatedYet(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	owner := f.CreateOrganizationOwner(ctx, "New Owner", "newowner@test.example")

	rec := httptest.NewRecorder()
	h.HandleGet(rec, ownerRequest(http.MethodGet, "/organization", owner.ID.Hex(), nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandler_Update_CreatesAndScopesOwner(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	owner := f.CreateOrganizationOwner(ctx, "Acme Owner", "acmeowner@test.example")

	body, _ := json.Marshal(map[string]any{
		"name":          "Acme Robotics",
		"description":   "<p>We build robots</p><script>alert(1)</script>",
		"industry":      "Robotics",
		"contact_email": "Jobs@Acme.Example",
	})

	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, ownerRequest(http.MethodPut, "/organization", owner.ID.Hex(), body))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var got models.Organization
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Name != "Acme Robotics" {
		t.Errorf("Name = %q", got.Name)
	}
	if got.Description != "<p>We build robots</p>" {
		t.Errorf("Description = %q, script should be stripped", got.Description)
	}
	if got.ContactEmail != "jobs@acme.example" {
		t.Errorf("ContactEmail = %q, want lowercased", got.ContactEmail)
	}

	user, err := userstore.New(f.DB()).GetByID(ctx, owner.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if user.OrganizationID == nil || *user.OrganizationID != got.ID {
		t.Errorf("owner not scoped to new organization: %v", user.OrganizationID)
	}
}

func TestHandler_Update_CreateRequiresName(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	owner := f.CreateOrganizationOwner(ctx, "Anon Owner", "anonowner@test.example")

	body, _ := json.Marshal(map[string]any{"industry": "Retail"})

	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, ownerRequest(http.MethodPut, "/organization", owner.ID.Hex(), body))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandler_Update_PartialLeavesFields(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	owner := f.CreateOrganizationOwner(ctx, "Patch Owner", "patchowner@test.example")
	org := f.CreateOrganization(ctx, "Patch Industries", owner.ID)

	body, _ := json.Marshal(map[string]any{"location": "Lisbon"})

	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, ownerRequest(http.MethodPut, "/organization", owner.ID.Hex(), body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var got models.Organization
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != org.ID {
		t.Fatalf("updated a different record: %s", got.ID.Hex())
	}
	if got.Location != "Lisbon" {
		t.Errorf("Location = %q", got.Location)
	}
	if got.Name != org.Name {
		t.Errorf("Name = %q, partial update should not blank it", got.Name)
	}
	if got.ContactEmail != org.ContactEmail {
		t.Errorf("ContactEmail = %q, partial update should not blank it", got.ContactEmail)
	}
}

func TestHandler_Completeness(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	bare := f.CreateOrganizationOwner(ctx, "Bare Owner", "bareowner@test.example")
	done := f.CreateOrganizationOwner(ctx, "Done Owner", "doneowner@test.example")
	f.CreateOrganization(ctx, "Done Industries", done.ID)

	tests := []struct {
		name         string
		userID       string
		wantComplete bool
	}{
		{name: "no record yet", userID: bare.ID.Hex(), wantComplete: false},
		{name: "fully populated", userID: done.ID.Hex(), wantComplete: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.HandleCompleteness(rec, ownerRequest(http.MethodGet, "/organization/completeness", tc.userID, nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
			}
			var got completenessResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if got.IsComplete != tc.wantComplete {
				t.Errorf("is_complete = %v, want %v", got.IsComplete, tc.wantComplete)
			}
			if tc.wantComplete && got.Percentage != 100 {
				t.Errorf("percentage = %d, want 100", got.Percentage)
			}
		})
	}
}

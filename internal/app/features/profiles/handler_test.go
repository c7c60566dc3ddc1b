// internal/app/features/profiles/handler_test.go
package profiles

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	profilestore "github.com/praxishq/praxis/internal/app/store/profiles"
	"github.com/praxishq/praxis/internal/app/system/auth"
	"github.com/praxishq/praxis/internal/app/system/identity"
	"github.com/praxishq/praxis/internal/domain/models"
	"github.com/praxishq/praxis/internal/testutil"
)

func newTestHandler(t *testing.T) (*Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return NewHandler(profilestore.New(db), zap.NewNop()), testutil.NewFixtures(t, db)
}

func studentRequest(method, target, userID string, body []byte) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return auth.WithIdentity(req, identity.Snapshot{
		User:     &identity.User{ID: userID, Email: "student@test.example", UserTypeHint: "student"},
		UserType: identity.UserTypeStudent,
	})
}

func TestHandler_Get_NeverSaved(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	student := f.CreateStudent(ctx, "Nadia Student", "nadia@test.example")

	rec := httptest.NewRecorder()
	h.HandleGet(rec, studentRequest(http.MethodGet, "/profile", student.ID.Hex(), nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got models.StudentProfile
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.UserID != student.ID {
		t.Errorf("UserID = %s, want %s", got.UserID.Hex(), student.ID.Hex())
	}
	if got.Bio != "" || len(got.Skills) != 0 {
		t.Errorf("expected empty profile, got bio %q skills %v", got.Bio, got.Skills)
	}
}

func TestHandler_Get_Unauthenticated(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.HandleGet(rec, httptest.NewRequest(http.MethodGet, "/profile", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestHandler_Update_SanitizesAndPersists(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	student := f.CreateStudent(ctx, "Omar Student", "omar@test.example")

	body, err := json.Marshal(map[string]any{
		"avatar_url": "https://cdn.test.example/omar.png",
		"phone":      "  +1 555 0123  ",
		"bio":        "Backend fan <b>bold</b>",
		"skills":     []string{"Go", "MongoDB"},
	})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}

	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, studentRequest(http.MethodPut, "/profile", student.ID.Hex(), body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var got models.StudentProfile
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Phone != "+1 555 0123" {
		t.Errorf("Phone = %q, want trimmed", got.Phone)
	}
	if got.Bio != "Backend fan bold" {
		t.Errorf("Bio = %q, markup should be stripped", got.Bio)
	}

	saved, err := profilestore.New(f.DB()).GetByUser(ctx, student.ID)
	if err != nil {
		t.Fatalf("GetByUser: %v", err)
	}
	if saved == nil || saved.Bio != "Backend fan bold" {
		t.Fatalf("profile not persisted: %+v", saved)
	}
}

func TestHandler_Completeness(t *testing.T) {
	h, f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sparse := f.CreateStudent(ctx, "Sparse Student", "sparse@test.example")
	full := f.CreateStudent(ctx, "Full Student", "full@test.example")
	f.CreateStudentProfile(ctx, full.ID)

	tests := []struct {
		name         string
		userID       string
		wantComplete bool
		wantPct      int
	}{
		{name: "never saved", userID: sparse.ID.Hex(), wantComplete: false, wantPct: 83},
		{name: "fully populated", userID: full.ID.Hex(), wantComplete: true, wantPct: 100},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.HandleCompleteness(rec, studentRequest(http.MethodGet, "/profile/completeness", tc.userID, nil))

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
			if got.Percentage != tc.wantPct {
				t.Errorf("percentage = %d, want %d", got.Percentage, tc.wantPct)
			}
			if tc.wantComplete && len(got.Missing) != 0 {
				t.Errorf("missing = %v, want none", got.Missing)
			}
			if !tc.wantComplete && len(got.Missing) == 0 {
				t.Error("expected missing fields for a never-saved profile")
			}
		})
	}
}

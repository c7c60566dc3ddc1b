package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/praxishq/praxis/internal/app/system/identity"
)

const testSessionKey = "0123456789abcdef0123456789abcdef"

func testManager(t *testing.T) *SessionManager {
	t.Helper()
	m, err := NewSessionManager(testSessionKey, "praxis-test", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	return m
}

func TestNewSessionManagerRejectsEmptyKey(t *testing.T) {
	if _, err := NewSessionManager("", "praxis-test", "", false, zap.NewNop()); err == nil {
		t.Error("empty session key should be rejected")
	}
}

func TestStateRoundTrip(t *testing.T) {
	m := testManager(t)

	want := identity.State{
		CurrentUser: &identity.User{ID: "u1", Email: "ada@example.com", UserTypeHint: "student"},
		UserType:    identity.UserTypeStudent,
		LastToken:   "tok-1",
		LastUserID:  "u1",
		InitDone:    true,
		Violation:   "",
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if err := m.SaveState(rec, req, want); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req2.AddCookie(c)
	}
	got := m.LoadState(req2)

	if got.CurrentUser == nil || got.CurrentUser.ID != "u1" {
		t.Fatalf("CurrentUser = %+v, want ID u1", got.CurrentUser)
	}
	if got.CurrentUser.Email != "ada@example.com" || got.CurrentUser.UserTypeHint != "student" {
		t.Errorf("CurrentUser = %+v", got.CurrentUser)
	}
	if got.UserType != identity.UserTypeStudent {
		t.Errorf("UserType = %q", got.UserType)
	}
	if got.LastToken != "tok-1" || got.LastUserID != "u1" {
		t.Errorf("dedup keys = (%q, %q)", got.LastToken, got.LastUserID)
	}
	if !got.InitDone || got.IsLoading {
		t.Errorf("InitDone=%v IsLoading=%v, want true/false", got.InitDone, got.IsLoading)
	}
}

func TestLoadStateFreshClient(t *testing.T) {
	m := testManager(t)

	got := m.LoadState(httptest.NewRequest(http.MethodGet, "/", nil))
	if got.InitDone {
		t.Error("fresh client should not be InitDone")
	}
	if !got.IsLoading {
		t.Error("fresh client should be loading")
	}
	if got.CurrentUser != nil {
		t.Errorf("fresh client CurrentUser = %+v, want nil", got.CurrentUser)
	}
}

func TestSaveStateSignedOutClearsUserKeys(t *testing.T) {
	m := testManager(t)

	// Signed in, then signed out on a later request.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	signedIn := identity.State{
		CurrentUser: &identity.User{ID: "u1"},
		UserType:    identity.UserTypeStudent,
		InitDone:    true,
	}
	if err := m.SaveState(rec, req, signedIn); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req2.AddCookie(c)
	}
	rec2 := httptest.NewRecorder()
	signedOut := identity.State{InitDone: true}
	if err := m.SaveState(rec2, req2, signedOut); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	req3 := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec2.Result().Cookies() {
		req3.AddCookie(c)
	}
	got := m.LoadState(req3)
	if got.CurrentUser != nil {
		t.Errorf("CurrentUser = %+v, want nil after sign-out", got.CurrentUser)
	}
	if !got.InitDone {
		t.Error("InitDone should survive sign-out")
	}
}

func TestRequireSignedIn(t *testing.T) {
	mw := RequireSignedIn(zap.NewNop())
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("anonymous", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("signed in", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = WithIdentity(req, identity.Snapshot{
			User:     &identity.User{ID: "u1"},
			UserType: identity.UserTypeStudent,
		})
		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})
}

func TestRequireUserType(t *testing.T) {
	mw := RequireUserType(zap.NewNop(), identity.UserTypeOrganization)
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	cases := []struct {
		name string
		snap *identity.Snapshot
		want int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"wrong type", &identity.Snapshot{User: &identity.User{ID: "u1"}, UserType: identity.UserTypeStudent}, http.StatusForbidden},
		{"allowed", &identity.Snapshot{User: &identity.User{ID: "u2"}, UserType: identity.UserTypeOrganization}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.snap != nil {
				req = WithIdentity(req, *tc.snap)
			}
			rec := httptest.NewRecorder()
			mw(next).ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

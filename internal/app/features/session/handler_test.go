package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/praxishq/praxis/internal/app/features/session"
	"github.com/praxishq/praxis/internal/app/system/auth"
	"github.com/praxishq/praxis/internal/app/system/identity"
	"github.com/praxishq/praxis/internal/app/system/providerauth"
)

// fakeRoles is a scriptable RoleStore: results are returned in order,
// the last one repeating.
type fakeRoles struct {
	results []*identity.RoleRecord
	errs    []error
	calls   int
}

func (f *fakeRoles) GetRoleRecord(_ context.Context, userID string) (*identity.RoleRecord, error) {
	i := f.calls
	f.calls++
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	if i < 0 {
		return nil, nil
	}
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	rec := f.results[i]
	if rec != nil {
		rec = &identity.RoleRecord{UserID: userID, UserType: rec.UserType}
	}
	return rec, err
}

type client struct {
	t       *testing.T
	handler http.Handler
	h       *session.Handler
	cookies []*http.Cookie
}

func newClient(t *testing.T, roles identity.RoleStore) *client {
	t.Helper()
	provider := providerauth.NewClient([]byte("test-secret-0123456789"), "praxis-test", "", zap.NewNop())
	mgr, err := auth.NewSessionManager("0123456789abcdef0123456789abcdef", "praxis-test", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	h := session.NewHandler(provider, roles, mgr, nil, time.Hour, zap.NewNop())
	return &client{
		t:       t,
		handler: h.Reconcile(http.HandlerFunc(h.HandleMe)),
		h:       h,
	}
}

func (c *client) token(userID, email, hint string) string {
	c.t.Helper()
	raw, _, err := c.h.Provider.IssueToken(userID, email, hint, time.Hour)
	if err != nil {
		c.t.Fatalf("IssueToken: %v", err)
	}
	return raw
}

// me performs one GET /session/me with the given bearer token,
// carrying cookies across calls like a browser would.
func (c *client) me(bearer string) (*httptest.ResponseRecorder, meBody) {
	c.t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/session/me", nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)

	if got := rec.Result().Cookies(); len(got) > 0 {
		c.cookies = got
	}

	var body meBody
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

type meBody struct {
	User *struct {
		ID string `json:"ID"`
	} `json:"user"`
	UserType     string `json:"user_type"`
	IsLoading    bool   `json:"is_loading"`
	DashboardURL string `json:"dashboard_url"`
	Violation    string `json:"violation"`
}

func TestReconcile_AnonymousFirstRequest(t *testing.T) {
	roles := &fakeRoles{}
	c := newClient(t, roles)

	rec, body := c.me("")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body.User != nil {
		t.Errorf("user = %+v, want nil", body.User)
	}
	if body.IsLoading {
		t.Error("loading should have completed")
	}
	if body.DashboardURL != "/" {
		t.Errorf("dashboard_url = %q, want /", body.DashboardURL)
	}
	if roles.calls != 0 {
		t.Errorf("role lookups = %d, want 0", roles.calls)
	}
}

func TestReconcile_SignedInThenDedupAcrossRequests(t *testing.T) {
	roles := &fakeRoles{results: []*identity.RoleRecord{{UserType: identity.UserTypeStudent}}}
	c := newClient(t, roles)
	tok := c.token("u1", "ada@example.com", "student")

	_, body := c.me(tok)
	if body.User == nil || body.User.ID != "u1" {
		t.Fatalf("user = %+v, want u1", body.User)
	}
	if body.UserType != "student" {
		t.Errorf("user_type = %q", body.UserType)
	}
	if body.DashboardURL != "/dashboard" {
		t.Errorf("dashboard_url = %q", body.DashboardURL)
	}
	if roles.calls != 1 {
		t.Fatalf("role lookups = %d, want 1", roles.calls)
	}

	// Same token again: no new role lookup.
	_, body = c.me(tok)
	if body.User == nil || body.UserType != "student" {
		t.Fatalf("second request lost identity: %+v", body)
	}
	if roles.calls != 1 {
		t.Errorf("role lookups after resend = %d, want 1", roles.calls)
	}

	// New token, same user: still no new lookup.
	tok2 := c.token("u1", "ada@example.com", "student")
	_, _ = c.me(tok2)
	if roles.calls != 1 {
		t.Errorf("role lookups after token rotation = %d, want 1", roles.calls)
	}
}

func TestReconcile_SignOutClearsIdentity(t *testing.T) {
	roles := &fakeRoles{results: []*identity.RoleRecord{{UserType: identity.UserTypeStudent}}}
	c := newClient(t, roles)

	_, body := c.me(c.token("u1", "ada@example.com", "student"))
	if body.User == nil {
		t.Fatal("expected signed-in user")
	}

	_, body = c.me("")
	if body.User != nil {
		t.Errorf("user = %+v after sign-out, want nil", body.User)
	}
	if body.UserType != "" {
		t.Errorf("user_type = %q after sign-out, want empty", body.UserType)
	}
}

func TestReconcile_IdentitySwitchRejectedWith409(t *testing.T) {
	roles := &fakeRoles{results: []*identity.RoleRecord{
		{UserType: identity.UserTypeStudent},
		{UserType: identity.UserTypeOrganization},
	}}
	c := newClient(t, roles)

	_, body := c.me(c.token("u1", "ada@example.com", "student"))
	if body.UserType != "student" {
		t.Fatalf("setup: user_type = %q", body.UserType)
	}

	// A different user whose stored role contradicts the committed one.
	rec, _ := c.me(c.token("u2", "org@example.com", "organization"))
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}

	// The revoked session is gone: the next check shows no user.
	_, body = c.me("")
	if body.User != nil {
		t.Errorf("user = %+v after revocation, want nil", body.User)
	}
}

func TestReconcile_PolicyRecursionFallsBackToHint(t *testing.T) {
	roles := &fakeRoles{
		results: []*identity.RoleRecord{nil},
		errs:    []error{identity.ErrPolicyRecursion},
	}
	c := newClient(t, roles)

	_, body := c.me(c.token("u1", "org@example.com", "organization"))
	if body.User == nil {
		t.Fatal("expected signed-in user")
	}
	if body.UserType != "organization" {
		t.Errorf("user_type = %q, want organization (hint fallback)", body.UserType)
	}
	if body.DashboardURL != "/dashboard-overview" {
		t.Errorf("dashboard_url = %q", body.DashboardURL)
	}
}

func TestReconcile_GarbageTokenIsAnonymous(t *testing.T) {
	roles := &fakeRoles{results: []*identity.RoleRecord{{UserType: identity.UserTypeStudent}}}
	c := newClient(t, roles)

	rec, body := c.me("not-a-real-token")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body.User != nil {
		t.Errorf("user = %+v, want nil", body.User)
	}
	if roles.calls != 0 {
		t.Errorf("role lookups = %d, want 0", roles.calls)
	}
}

func TestHandleRefresh(t *testing.T) {
	roles := &fakeRoles{results: []*identity.RoleRecord{{UserType: identity.UserTypeStudent}}}
	c := newClient(t, roles)
	refresh := c.h.Reconcile(http.HandlerFunc(c.h.HandleRefresh))

	// Unauthenticated refresh is rejected.
	req := httptest.NewRequest(http.MethodPost, "/session/refresh", nil)
	rec := httptest.NewRecorder()
	refresh.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous refresh status = %d, want 401", rec.Code)
	}

	// Authenticated refresh issues a fresh verifiable token.
	tok := c.token("u1", "ada@example.com", "student")
	req = httptest.NewRequest(http.MethodPost, "/session/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	refresh.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	sess, err := c.h.Provider.VerifyToken(resp.Token)
	if err != nil {
		t.Fatalf("refreshed token does not verify: %v", err)
	}
	if sess.UserID != "u1" {
		t.Errorf("refreshed token user = %q, want u1", sess.UserID)
	}
}

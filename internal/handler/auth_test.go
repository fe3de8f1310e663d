package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/forgo/manifestor/api/internal/middleware"
	"github.com/forgo/manifestor/api/internal/model"
	"github.com/forgo/manifestor/api/internal/service"
)

// ============================================================================
// Mock Identity
// ============================================================================

type mockIdentity struct {
	registerFunc       func(ctx context.Context, req service.RegisterRequest) (*service.SignInResult, error)
	signInFunc         func(ctx context.Context, email, password string) (*service.SignInResult, error)
	reauthenticateFunc func(ctx context.Context, principal *model.Principal, password string) (*model.Principal, error)
	signOutFunc        func(ctx context.Context, principal *model.Principal) error
}

func (m *mockIdentity) Register(ctx context.Context, req service.RegisterRequest) (*service.SignInResult, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, req)
	}
	return newTestSignInResult(), nil
}

func (m *mockIdentity) SignIn(ctx context.Context, email, password string) (*service.SignInResult, error) {
	if m.signInFunc != nil {
		return m.signInFunc(ctx, email, password)
	}
	return newTestSignInResult(), nil
}

func (m *mockIdentity) Reauthenticate(ctx context.Context, principal *model.Principal, password string) (*model.Principal, error) {
	if m.reauthenticateFunc != nil {
		return m.reauthenticateFunc(ctx, principal, password)
	}
	return principal, nil
}

func (m *mockIdentity) SignOut(ctx context.Context, principal *model.Principal) error {
	if m.signOutFunc != nil {
		return m.signOutFunc(ctx, principal)
	}
	return nil
}

// ============================================================================
// Test Helpers
// ============================================================================

var testNow = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

func newTestPrincipal() *model.Principal {
	return &model.Principal{
		ID:              "account:ada",
		Email:           "ada@example.com",
		DisplayName:     "Ada",
		SessionID:       "session-1",
		AuthenticatedAt: testNow,
	}
}

func newTestSignInResult() *service.SignInResult {
	return &service.SignInResult{
		Principal:   newTestPrincipal(),
		AccessToken: "test-access-token",
		TokenType:   "Bearer",
		ExpiresAt:   testNow.Add(time.Hour),
	}
}

func makeJSONRequest(method, path string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func makeRawRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withPrincipal(req *http.Request) *http.Request {
	return req.WithContext(middleware.WithPrincipal(req.Context(), newTestPrincipal()))
}

func parseErrorResponse(t *testing.T, body []byte) *model.ProblemDetails {
	t.Helper()
	var problem model.ProblemDetails
	if err := json.Unmarshal(body, &problem); err != nil {
		t.Fatalf("failed to parse error response: %v", err)
	}
	return &problem
}

// parseData decodes {"data": ...} into v
func parseData(t *testing.T, body []byte, v any) map[string]string {
	t.Helper()
	var resp struct {
		Data  json.RawMessage   `json:"data"`
		Links map[string]string `json:"_links"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("failed to parse data response: %v", err)
	}
	if err := json.Unmarshal(resp.Data, v); err != nil {
		t.Fatalf("failed to parse data: %v", err)
	}
	return resp.Links
}

// ============================================================================
// Register Tests
// ============================================================================

func TestRegister_ValidInput_ReturnsCreated(t *testing.T) {
	t.Parallel()

	var got service.RegisterRequest
	h := NewAuthHandler(&mockIdentity{
		registerFunc: func(ctx context.Context, req service.RegisterRequest) (*service.SignInResult, error) {
			got = req
			return newTestSignInResult(), nil
		},
	})

	rr := httptest.NewRecorder()
	h.Register(rr, makeJSONRequest(http.MethodPost, "/v1/auth/register", RegisterRequest{
		Email:       "ada@example.com",
		Password:    "password123",
		DisplayName: "Ada",
	}))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, rr.Code)
	}
	if got.Email != "ada@example.com" || got.DisplayName != "Ada" {
		t.Errorf("service got %+v", got)
	}

	var resp signInResponse
	links := parseData(t, rr.Body.Bytes(), &resp)
	if resp.Token.AccessToken != "test-access-token" || resp.Token.TokenType != "Bearer" {
		t.Errorf("token = %+v", resp.Token)
	}
	if resp.Principal.ID != "account:ada" {
		t.Errorf("principal = %+v", resp.Principal)
	}
	if links["profile"] != "/v1/profile" {
		t.Errorf("links = %v", links)
	}
}

func TestRegister_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"malformed json", `{"email":`, nil, http.StatusBadRequest},
		{"unknown field", `{"email":"a@b.co","password":"password123","role":"admin"}`, nil, http.StatusBadRequest},
		{"duplicate email", `{"email":"a@b.co","password":"password123"}`, service.ErrEmailAlreadyExists, http.StatusConflict},
		{"weak password", `{"email":"a@b.co","password":"short"}`, &service.ValidationError{Field: "password", Message: "too short"}, http.StatusUnprocessableEntity},
		{"store down", `{"email":"a@b.co","password":"password123"}`, &service.StoreError{Op: "create account", Err: context.DeadlineExceeded}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := NewAuthHandler(&mockIdentity{
				registerFunc: func(ctx context.Context, req service.RegisterRequest) (*service.SignInResult, error) {
					return nil, tt.err
				},
			})

			rr := httptest.NewRecorder()
			h.Register(rr, makeRawRequest(http.MethodPost, "/v1/auth/register", tt.body))

			if rr.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rr.Code)
			}
		})
	}
}

// ============================================================================
// Login Tests
// ============================================================================

func TestLogin_ValidCredentials_ReturnsToken(t *testing.T) {
	t.Parallel()

	var gotEmail, gotPassword string
	h := NewAuthHandler(&mockIdentity{
		signInFunc: func(ctx context.Context, email, password string) (*service.SignInResult, error) {
			gotEmail, gotPassword = email, password
			return newTestSignInResult(), nil
		},
	})

	rr := httptest.NewRecorder()
	h.Login(rr, makeJSONRequest(http.MethodPost, "/v1/auth/login", LoginRequest{Email: "ada@example.com", Password: "password123"}))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if gotEmail != "ada@example.com" || gotPassword != "password123" {
		t.Errorf("service got %q / %q", gotEmail, gotPassword)
	}
}

func TestLogin_InvalidCredentials_Returns401(t *testing.T) {
	t.Parallel()

	h := NewAuthHandler(&mockIdentity{
		signInFunc: func(ctx context.Context, email, password string) (*service.SignInResult, error) {
			return nil, &service.IdentityError{Op: "sign in", Err: service.ErrInvalidCredentials}
		},
	})

	rr := httptest.NewRecorder()
	h.Login(rr, makeJSONRequest(http.MethodPost, "/v1/auth/login", LoginRequest{Email: "ada@example.com", Password: "nope"}))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	problem := parseErrorResponse(t, rr.Body.Bytes())
	if problem.Detail != service.ErrInvalidCredentials.Error() {
		t.Errorf("detail = %q", problem.Detail)
	}
}

// ============================================================================
// Protected Auth Endpoint Tests
// ============================================================================

func TestProtectedAuthEndpoints_RequirePrincipal(t *testing.T) {
	t.Parallel()

	h := NewAuthHandler(&mockIdentity{})
	endpoints := map[string]http.HandlerFunc{
		"reauthenticate": h.Reauthenticate,
		"logout":         h.Logout,
		"me":             h.Me,
	}

	for name, fn := range endpoints {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			rr := httptest.NewRecorder()
			fn(rr, makeJSONRequest(http.MethodPost, "/v1/auth/"+name, nil))
			if rr.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rr.Code)
			}
		})
	}
}

func TestReauthenticate_ReturnsFreshPrincipal(t *testing.T) {
	t.Parallel()

	fresh := newTestPrincipal()
	fresh.AuthenticatedAt = testNow.Add(10 * time.Minute)
	h := NewAuthHandler(&mockIdentity{
		reauthenticateFunc: func(ctx context.Context, principal *model.Principal, password string) (*model.Principal, error) {
			if password != "password123" || principal.ID != "account:ada" {
				t.Errorf("unexpected call: %s %q", principal.ID, password)
			}
			return fresh, nil
		},
	})

	rr := httptest.NewRecorder()
	h.Reauthenticate(rr, withPrincipal(makeJSONRequest(http.MethodPost, "/v1/auth/reauthenticate", ReauthenticateRequest{Password: "password123"})))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp PrincipalResponse
	parseData(t, rr.Body.Bytes(), &resp)
	if resp.AuthenticatedAt != fresh.AuthenticatedAt.Format(time.RFC3339) {
		t.Errorf("authenticated_at = %q", resp.AuthenticatedAt)
	}
}

func TestLogout_ReturnsNoContent(t *testing.T) {
	t.Parallel()

	called := false
	h := NewAuthHandler(&mockIdentity{
		signOutFunc: func(ctx context.Context, principal *model.Principal) error {
			called = principal.SessionID == "session-1"
			return nil
		},
	})

	rr := httptest.NewRecorder()
	h.Logout(rr, withPrincipal(httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)))

	if rr.Code != http.StatusNoContent || !called {
		t.Errorf("status %d, called %v", rr.Code, called)
	}
}

func TestMe_ReturnsPrincipal(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	NewAuthHandler(&mockIdentity{}).Me(rr, withPrincipal(httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp PrincipalResponse
	parseData(t, rr.Body.Bytes(), &resp)
	if resp.Email != "ada@example.com" || resp.DisplayName != "Ada" {
		t.Errorf("me = %+v", resp)
	}
}

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/forgo/manifestor/api/internal/model"
	"github.com/forgo/manifestor/api/internal/service"
)

// Identity is the part of the identity provider the auth endpoints drive
type Identity interface {
	Register(ctx context.Context, req service.RegisterRequest) (*service.SignInResult, error)
	SignIn(ctx context.Context, email, password string) (*service.SignInResult, error)
	Reauthenticate(ctx context.Context, principal *model.Principal, password string) (*model.Principal, error)
	SignOut(ctx context.Context, principal *model.Principal) error
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	identity Identity
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(identity Identity) *AuthHandler {
	return &AuthHandler{identity: identity}
}

// RegisterRequest represents the register endpoint request body
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

// LoginRequest represents the login endpoint request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ReauthenticateRequest carries the password to confirm
type ReauthenticateRequest struct {
	Password string `json:"password"`
}

// PrincipalResponse represents the signed-in user in API responses
type PrincipalResponse struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	DisplayName     string `json:"display_name,omitempty"`
	PhotoURL        string `json:"photo_url,omitempty"`
	AuthenticatedAt string `json:"authenticated_at"`
}

// TokenResponse represents a token response
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   string `json:"expires_at"`
}

type signInResponse struct {
	Principal PrincipalResponse `json:"principal"`
	Token     TokenResponse     `json:"token"`
}

// Register handles POST /v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	result, err := h.identity.Register(r.Context(), service.RegisterRequest{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteData(w, http.StatusCreated, toSignInResponse(result), map[string]string{
		"self":    "/v1/auth/me",
		"profile": "/v1/profile",
	})
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	result, err := h.identity.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteData(w, http.StatusOK, toSignInResponse(result), map[string]string{
		"self": "/v1/auth/me",
	})
}

// Reauthenticate handles POST /v1/auth/reauthenticate. A fresh session is
// required before the account can be deleted.
func (h *AuthHandler) Reauthenticate(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req ReauthenticateRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	fresh, err := h.identity.Reauthenticate(r.Context(), principal, req.Password)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteData(w, http.StatusOK, toPrincipalResponse(fresh), map[string]string{
		"delete_account": "/v1/account",
	})
}

// Logout handles POST /v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	if err := h.identity.SignOut(r.Context(), principal); err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteNoContent(w)
}

// Me handles GET /v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	WriteData(w, http.StatusOK, toPrincipalResponse(principal), map[string]string{
		"self":    "/v1/auth/me",
		"profile": "/v1/profile",
	})
}

func toPrincipalResponse(p *model.Principal) PrincipalResponse {
	return PrincipalResponse{
		ID:              p.ID,
		Email:           p.Email,
		DisplayName:     p.DisplayName,
		PhotoURL:        p.PhotoURL,
		AuthenticatedAt: p.AuthenticatedAt.Format(time.RFC3339),
	}
}

func toSignInResponse(result *service.SignInResult) signInResponse {
	return signInResponse{
		Principal: toPrincipalResponse(result.Principal),
		Token: TokenResponse{
			AccessToken: result.AccessToken,
			TokenType:   result.TokenType,
			ExpiresAt:   result.ExpiresAt.Format(time.RFC3339),
		},
	}
}

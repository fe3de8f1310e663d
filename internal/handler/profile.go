package handler

import (
	"context"
	"net/http"

	"github.com/forgo/manifestor/api/internal/model"
)

// Profiles is the profile service as seen by the profile endpoints
type Profiles interface {
	GetProfile(ctx context.Context, principal *model.Principal) (*model.Profile, error)
	UpdateDisplayName(ctx context.Context, principal *model.Principal, req model.UpdateProfileRequest) (*model.Profile, error)
}

// ProfileHandler handles profile endpoints
type ProfileHandler struct {
	profiles Profiles
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profiles Profiles) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Get handles GET /v1/profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	profile, err := h.profiles.GetProfile(r.Context(), principal)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteData(w, http.StatusOK, profile, map[string]string{"self": "/v1/profile"})
}

// Update handles PATCH /v1/profile. The response is the stored profile so
// clients merge it instead of reloading.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req model.UpdateProfileRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	profile, err := h.profiles.UpdateDisplayName(r.Context(), principal, req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteData(w, http.StatusOK, profile, map[string]string{"self": "/v1/profile"})
}

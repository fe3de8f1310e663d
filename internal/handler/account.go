package handler

import (
	"context"
	"net/http"

	"github.com/forgo/manifestor/api/internal/model"
)

// AccountLifecycle runs account deletion
type AccountLifecycle interface {
	DeleteAccount(ctx context.Context, principal *model.Principal) error
	RetryIdentityDeletion(ctx context.Context, principal *model.Principal) error
}

// DataEraser erases everything stored for a principal
type DataEraser interface {
	EraseUserData(ctx context.Context, principal *model.Principal) error
}

// AccountHandler handles account deletion and data erasure
type AccountHandler struct {
	lifecycle AccountLifecycle
	eraser    DataEraser
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(lifecycle AccountLifecycle, eraser DataEraser) *AccountHandler {
	return &AccountHandler{lifecycle: lifecycle, eraser: eraser}
}

// Delete handles DELETE /v1/account. A stale session gets 403 and must
// reauthenticate; a 409 with stage data_erased_identity_intact means only
// the identity step is left.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	if err := h.lifecycle.DeleteAccount(r.Context(), principal); err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteNoContent(w)
}

// RetryIdentity handles POST /v1/account/identity:retry
func (h *AccountHandler) RetryIdentity(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	if err := h.lifecycle.RetryIdentityDeletion(r.Context(), principal); err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteNoContent(w)
}

// EraseData handles POST /v1/account/data:erase. It is idempotent and
// leaves the identity in place.
func (h *AccountHandler) EraseData(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	if err := h.eraser.EraseUserData(r.Context(), principal); err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteNoContent(w)
}

package handler

import (
	"context"
	"net/http"

	"github.com/forgo/manifestor/api/internal/model"
)

// Reminders reads and writes the reminder preference
type Reminders interface {
	GetReminder(ctx context.Context, principal *model.Principal) (*model.ReminderPreference, error)
	SetReminder(ctx context.Context, principal *model.Principal, pref model.ReminderPreference) (*model.ReminderPreference, error)
}

// PreferenceHandler handles preference endpoints
type PreferenceHandler struct {
	reminders Reminders
}

// NewPreferenceHandler creates a new preference handler
func NewPreferenceHandler(reminders Reminders) *PreferenceHandler {
	return &PreferenceHandler{reminders: reminders}
}

// GetReminder handles GET /v1/preferences/reminder
func (h *PreferenceHandler) GetReminder(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	pref, err := h.reminders.GetReminder(r.Context(), principal)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteData(w, http.StatusOK, pref, nil)
}

// SetReminder handles PUT /v1/preferences/reminder
func (h *PreferenceHandler) SetReminder(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req model.ReminderPreference
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	pref, err := h.reminders.SetReminder(r.Context(), principal, req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteData(w, http.StatusOK, pref, nil)
}

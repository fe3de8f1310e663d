package service

import (
	"context"

	"github.com/forgo/manifestor/api/internal/model"
)

// PreferenceStore defines the interface for local preference storage
type PreferenceStore interface {
	GetReminderTime(ctx context.Context, ownerID string) (string, error)
	SetReminderTime(ctx context.Context, ownerID, hhmm string) error
}

// PreferenceService reads and writes the reminder preference
type PreferenceService struct {
	store  PreferenceStore
	writes StoreWriteObserver
}

// NewPreferenceService creates a new preference service. writes may be nil.
func NewPreferenceService(store PreferenceStore, writes StoreWriteObserver) *PreferenceService {
	return &PreferenceService{store: store, writes: writes}
}

// GetReminder returns the principal's reminder time, defaulting to 19:00
func (s *PreferenceService) GetReminder(ctx context.Context, principal *model.Principal) (*model.ReminderPreference, error) {
	value, err := s.store.GetReminderTime(ctx, principal.ID)
	if err != nil {
		return nil, &StoreError{Op: "get reminder", Err: err}
	}
	return &model.ReminderPreference{Time: value}, nil
}

// SetReminder stores the principal's reminder time after a format check
func (s *PreferenceService) SetReminder(ctx context.Context, principal *model.Principal, pref model.ReminderPreference) (*model.ReminderPreference, error) {
	if err := firstValidationError(pref.Validate()); err != nil {
		return nil, err
	}
	if err := s.store.SetReminderTime(ctx, principal.ID, pref.Time); err != nil {
		return nil, &StoreError{Op: "set reminder", Err: err}
	}
	if s.writes != nil {
		s.writes.DataWritten(principal.ID)
	}
	return &pref, nil
}

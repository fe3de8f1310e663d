package service

import (
	"context"
	"log/slog"

	"github.com/forgo/manifestor/api/internal/model"
)

// OwnerDataEraser deletes an owner's document store data
type OwnerDataEraser interface {
	EraseOwner(ctx context.Context, ownerID string) error
}

// PreferenceEraser deletes an owner's local preferences
type PreferenceEraser interface {
	DeleteOwner(ctx context.Context, ownerID string) error
}

// ErasureService erases all data of the calling principal. Every step
// deletes by owner, so running it again on erased data is a no-op.
type ErasureService struct {
	store       OwnerDataEraser
	preferences PreferenceEraser
}

// ErasureServiceConfig holds configuration for the erasure service
type ErasureServiceConfig struct {
	Store       OwnerDataEraser
	Preferences PreferenceEraser // optional
}

// NewErasureService creates a new erasure service
func NewErasureService(cfg ErasureServiceConfig) *ErasureService {
	return &ErasureService{
		store:       cfg.Store,
		preferences: cfg.Preferences,
	}
}

// EraseUserData removes the principal's dreams, profile and preferences
func (s *ErasureService) EraseUserData(ctx context.Context, principal *model.Principal) error {
	if err := s.store.EraseOwner(ctx, principal.ID); err != nil {
		return &StoreError{Op: "erase user data", Err: err}
	}
	if s.preferences != nil {
		if err := s.preferences.DeleteOwner(ctx, principal.ID); err != nil {
			return &StoreError{Op: "erase preferences", Err: err}
		}
	}

	slog.Info("user data erased", "owner_id", principal.ID)
	return nil
}

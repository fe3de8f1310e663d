package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/forgo/manifestor/api/internal/model"
)

// ProfileRepository defines the interface for profile storage
type ProfileRepository interface {
	Upsert(ctx context.Context, profile *model.Profile) (*model.Profile, error)
	GetByOwner(ctx context.Context, ownerID string) (*model.Profile, error)
}

// DisplayNameUpdater changes the display name on the identity record
type DisplayNameUpdater interface {
	UpdateDisplayName(ctx context.Context, principal *model.Principal, displayName string) error
}

// ProfileService manages the per-user profile document
type ProfileService struct {
	repo     ProfileRepository
	identity DisplayNameUpdater
	writes   StoreWriteObserver
}

// ProfileServiceConfig holds configuration for the profile service
type ProfileServiceConfig struct {
	ProfileRepo ProfileRepository
	Identity    DisplayNameUpdater
	Writes      StoreWriteObserver // optional
}

// NewProfileService creates a new profile service
func NewProfileService(cfg ProfileServiceConfig) *ProfileService {
	return &ProfileService{
		repo:     cfg.ProfileRepo,
		identity: cfg.Identity,
		writes:   cfg.Writes,
	}
}

// EnsureProfile upserts the profile from the principal with merge
// semantics. Repeating it with the same values changes nothing.
func (s *ProfileService) EnsureProfile(ctx context.Context, principal *model.Principal) (*model.Profile, error) {
	profile, err := s.repo.Upsert(ctx, &model.Profile{
		OwnerID:     principal.ID,
		DisplayName: principal.DisplayName,
		Email:       principal.Email,
		PhotoURL:    principal.PhotoURL,
	})
	if err != nil {
		return nil, &StoreError{Op: "upsert profile", Err: err}
	}
	s.written(principal.ID)
	return profile, nil
}

// OnAuthStateChange keeps the profile in step with sign-ins. Failures are
// logged; the sign-in itself has already succeeded.
func (s *ProfileService) OnAuthStateChange(ctx context.Context, change AuthStateChange) {
	if change.Event != AuthSignedIn || change.Principal == nil {
		return
	}
	if _, err := s.EnsureProfile(ctx, change.Principal); err != nil {
		slog.Error("failed to upsert profile on sign-in",
			"owner_id", change.Principal.ID,
			"error", err,
		)
	}
}

// GetProfile returns the principal's profile
func (s *ProfileService) GetProfile(ctx context.Context, principal *model.Principal) (*model.Profile, error) {
	profile, err := s.repo.GetByOwner(ctx, principal.ID)
	if err != nil {
		return nil, &StoreError{Op: "get profile", Err: err}
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// UpdateDisplayName changes the display name on the identity and the
// profile, and returns the stored profile for the caller to merge.
func (s *ProfileService) UpdateDisplayName(ctx context.Context, principal *model.Principal, req model.UpdateProfileRequest) (*model.Profile, error) {
	if err := firstValidationError(req.Validate()); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(*req.DisplayName)

	if s.identity != nil {
		if err := s.identity.UpdateDisplayName(ctx, principal, name); err != nil {
			return nil, err
		}
	}

	profile, err := s.repo.Upsert(ctx, &model.Profile{OwnerID: principal.ID, DisplayName: name})
	if err != nil {
		return nil, &StoreError{Op: "update profile", Err: err}
	}
	s.written(principal.ID)
	return profile, nil
}

func (s *ProfileService) written(ownerID string) {
	if s.writes != nil {
		s.writes.DataWritten(ownerID)
	}
}

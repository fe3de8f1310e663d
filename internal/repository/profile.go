package repository

import (
	"context"
	"errors"

	"github.com/forgo/manifestor/api/internal/database"
	"github.com/forgo/manifestor/api/internal/model"
)

// ProfileRepository handles profile document access
type ProfileRepository struct {
	db database.Database
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db database.Database) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Upsert merges the profile into the owner's document. Missing documents
// are created. Existing fields are only overwritten by non-empty values and
// created_at is never changed.
func (r *ProfileRepository) Upsert(ctx context.Context, profile *model.Profile) (*model.Profile, error) {
	query := `
		LET $existing = SELECT * FROM profile WHERE owner_id = $owner_id;
		IF array::len($existing) = 0 {
			CREATE profile SET
				owner_id = $owner_id,
				display_name = $display_name,
				email = $email,
				photo_url = $photo_url,
				created_at = time::now()
		} ELSE {
			UPDATE profile SET
				display_name = $display_name ?? display_name,
				email = $email ?? email,
				photo_url = $photo_url ?? photo_url
			WHERE owner_id = $owner_id
		}
	`
	vars := map[string]interface{}{
		"owner_id":     profile.OwnerID,
		"display_name": nilIfEmpty(profile.DisplayName),
		"email":        nilIfEmpty(profile.Email),
		"photo_url":    nilIfEmpty(profile.PhotoURL),
	}

	if err := r.db.Execute(ctx, query, vars); err != nil {
		return nil, err
	}

	stored, err := r.GetByOwner(ctx, profile.OwnerID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, database.ErrNotFound
	}
	return stored, nil
}

// GetByOwner retrieves the owner's profile, nil when absent
func (r *ProfileRepository) GetByOwner(ctx context.Context, ownerID string) (*model.Profile, error) {
	query := `SELECT * FROM profile WHERE owner_id = $owner_id LIMIT 1`
	vars := map[string]interface{}{"owner_id": ownerID}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var profile model.Profile
	if err := decodeRecord(result, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

const deleteProfileByOwnerQuery = `DELETE profile WHERE owner_id = $owner_id`

package repository

import (
	"context"

	"github.com/forgo/manifestor/api/internal/database"
)

// ErasureRepository removes all store-side data of an owner
type ErasureRepository struct {
	db database.Database
}

// NewErasureRepository creates a new erasure repository
func NewErasureRepository(db database.Database) *ErasureRepository {
	return &ErasureRepository{db: db}
}

// EraseOwner deletes the owner's dreams and profile in one transaction.
// Deleting nothing is not an error, so repeated calls converge.
func (r *ErasureRepository) EraseOwner(ctx context.Context, ownerID string) error {
	vars := map[string]interface{}{"owner_id": ownerID}
	return database.NewAtomicBatch().
		Add(deleteDreamsByOwnerQuery, vars).
		Add(deleteProfileByOwnerQuery, vars).
		Execute(ctx, r.db)
}

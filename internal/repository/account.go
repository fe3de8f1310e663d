package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgo/manifestor/api/internal/database"
	"github.com/forgo/manifestor/api/internal/model"
)

// AccountRepository handles identity account data access
type AccountRepository struct {
	db database.Database
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db database.Database) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create creates a new account
func (r *AccountRepository) Create(ctx context.Context, account *model.Account) error {
	query := `
		CREATE account CONTENT {
			email: $email,
			hash: IF $hash IS NOT NULL THEN $hash ELSE NONE END,
			display_name: IF $display_name IS NOT NULL THEN $display_name ELSE NONE END,
			photo_url: IF $photo_url IS NOT NULL THEN $photo_url ELSE NONE END,
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"email":        account.Email,
		"hash":         ptrToNone(account.Hash),
		"display_name": ptrToNone(account.DisplayName),
		"photo_url":    ptrToNone(account.PhotoURL),
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: email already exists", database.ErrDuplicate)
		}
		return err
	}

	created, err := database.FirstRecord(result)
	if err != nil {
		return fmt.Errorf("account not returned after create: %w", err)
	}
	stored, err := parseAccountResult(created)
	if err != nil {
		return err
	}

	account.ID = stored.ID
	account.CreatedOn = stored.CreatedOn
	account.UpdatedOn = stored.UpdatedOn
	return nil
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*model.Account, error) {
	query := `SELECT * FROM type::record($id)`
	return r.getOne(ctx, query, map[string]interface{}{"id": id})
}

// GetByEmail retrieves an account by email
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	query := `SELECT * FROM account WHERE email = $email LIMIT 1`
	return r.getOne(ctx, query, map[string]interface{}{"email": email})
}

func (r *AccountRepository) getOne(ctx context.Context, query string, vars map[string]interface{}) (*model.Account, error) {
	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return parseAccountResult(result)
}

// UpdateDisplayName updates an account's display name
func (r *AccountRepository) UpdateDisplayName(ctx context.Context, id, displayName string) error {
	query := `UPDATE type::record($id) SET display_name = $display_name, updated_on = time::now()`
	vars := map[string]interface{}{
		"id":           id,
		"display_name": displayName,
	}
	return r.db.Execute(ctx, query, vars)
}

// Delete deletes an account and its sessions in one transaction
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	vars := map[string]interface{}{"id": id}
	return database.NewAtomicBatch().
		Add(`DELETE session WHERE account_id = $id`, vars).
		Add(`DELETE type::record($id)`, vars).
		Execute(ctx, r.db)
}

// accountRecord exposes the hash, which model.Account hides from JSON
type accountRecord struct {
	model.Account
	Hash *string `json:"hash,omitempty"`
}

func parseAccountResult(result interface{}) (*model.Account, error) {
	if result == nil {
		return nil, database.ErrNotFound
	}
	var rec accountRecord
	if err := decodeRecord(result, &rec); err != nil {
		return nil, err
	}
	account := rec.Account
	account.Hash = rec.Hash
	return &account, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/forgo/manifestor/api/internal/database"
	"github.com/forgo/manifestor/api/internal/model"
)

// SessionRepository handles sign-in session data access
type SessionRepository struct {
	db database.Database
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db database.Database) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create stores a session under its pre-assigned ID
func (r *SessionRepository) Create(ctx context.Context, session *model.Session) error {
	query := `
		CREATE type::thing('session', $session_id) CONTENT {
			account_id: $account_id,
			authenticated_at: <datetime>$authenticated_at,
			expires_at: <datetime>$expires_at
		}
	`
	vars := map[string]interface{}{
		"session_id":       session.ID,
		"account_id":       session.AccountID,
		"authenticated_at": formatTime(session.AuthenticatedAt),
		"expires_at":       formatTime(session.ExpiresAt),
	}

	if err := r.db.Execute(ctx, query, vars); err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: session already exists", database.ErrDuplicate)
		}
		return err
	}
	return nil
}

// GetByID retrieves a session, nil when absent
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*model.Session, error) {
	query := `SELECT * FROM type::thing('session', $session_id)`
	vars := map[string]interface{}{"session_id": id}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var session model.Session
	if err := decodeRecord(result, &session); err != nil {
		return nil, err
	}
	session.ID = id
	return &session, nil
}

// MarkAuthenticated records a fresh credential check on the session
func (r *SessionRepository) MarkAuthenticated(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE type::thing('session', $session_id) SET authenticated_at = <datetime>$authenticated_at`
	vars := map[string]interface{}{
		"session_id":       id,
		"authenticated_at": formatTime(at),
	}
	return r.db.Execute(ctx, query, vars)
}

// Delete removes a session
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE type::thing('session', $session_id)`
	return r.db.Execute(ctx, query, map[string]interface{}{"session_id": id})
}

// DeleteExpired removes sessions past their expiry
func (r *SessionRepository) DeleteExpired(ctx context.Context) error {
	query := `DELETE session WHERE expires_at < time::now()`
	return r.db.Execute(ctx, query, nil)
}

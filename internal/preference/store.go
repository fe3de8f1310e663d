// Package preference keeps per-user local preferences in SQLite.
//
// The only preference today is the daily reminder time, a 24-hour "HH:MM"
// string. Values are checked for format and nothing else.
package preference

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/forgo/manifestor/api/internal/model"
	"github.com/forgo/manifestor/api/internal/preference/migrations"
	_ "modernc.org/sqlite"
)

// ErrInvalidReminderTime is returned for values not in HH:MM form
var ErrInvalidReminderTime = errors.New("reminder time must be HH:MM in 24-hour form")

// Store persists preferences in SQLite
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the SQLite file at path and applies migrations.
// ":memory:" is accepted for tests.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("preference store path is required")
	}

	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the SQLite handle
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks the SQLite handle
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetReminderTime returns the owner's reminder time, or the default
func (s *Store) GetReminderTime(ctx context.Context, ownerID string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM preferences WHERE owner_id = ? AND key = ?`,
		ownerID, model.PreferenceDailyReminderTime,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultReminderTime, nil
	}
	if err != nil {
		return "", fmt.Errorf("get reminder time: %w", err)
	}
	return value, nil
}

// SetReminderTime stores the owner's reminder time
func (s *Store) SetReminderTime(ctx context.Context, ownerID, hhmm string) error {
	if !model.IsValidReminderTime(hhmm) {
		return ErrInvalidReminderTime
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO preferences (owner_id, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (owner_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		ownerID, model.PreferenceDailyReminderTime, hhmm, s.now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("set reminder time: %w", err)
	}
	return nil
}

// OwnersWithReminderAt lists owners whose stored reminder time is hhmm
func (s *Store) OwnersWithReminderAt(ctx context.Context, hhmm string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT owner_id FROM preferences WHERE key = ? AND value = ? ORDER BY owner_id`,
		model.PreferenceDailyReminderTime, hhmm,
	)
	if err != nil {
		return nil, fmt.Errorf("list reminder owners: %w", err)
	}
	defer rows.Close()

	var owners []string
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, fmt.Errorf("scan reminder owner: %w", err)
		}
		owners = append(owners, owner)
	}
	return owners, rows.Err()
}

// DeleteOwner removes every preference of the owner
func (s *Store) DeleteOwner(ctx context.Context, ownerID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM preferences WHERE owner_id = ?`, ownerID); err != nil {
		return fmt.Errorf("delete preferences: %w", err)
	}
	return nil
}

// Package database provides the document store abstraction for Manifestor.
//
// The Database interface hides SurrealDB behind three query methods so that
// repositories can be exercised against an in-memory fake in tests:
//   - Query: returns the raw statement results
//   - QueryOne: returns the first record of the first statement
//   - Execute: runs a mutation and discards the result
//
// Multi-statement writes that must land together go through AtomicBatch
// (see transaction.go), which wraps them in BEGIN/COMMIT TRANSACTION and
// sends them as one request.
//
// # Error Handling
//
// Use errors.Is() with the sentinel errors below:
//
//	if errors.Is(err, database.ErrNotFound) {
//	    // Handle missing record
//	}
package database

import (
	"context"
	"errors"
)

// Standard errors for database operations.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate indicates a unique constraint violation (e.g., duplicate email).
	ErrDuplicate = errors.New("duplicate record")

	// ErrConnection indicates a failure to connect to or communicate with the database.
	ErrConnection = errors.New("database connection error")

	// ErrQuery indicates a query execution failure (syntax error, permission, etc.).
	ErrQuery = errors.New("query error")
)

// Database defines the interface for database operations
type Database interface {
	Connect(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error

	// Query executes a query and returns one {status, result} map per statement
	Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error)

	// QueryOne executes a query and returns the first record of the first statement
	QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error)

	// Execute runs a query without returning results (for mutations)
	Execute(ctx context.Context, query string, vars map[string]interface{}) error
}

// Config holds database configuration
type Config struct {
	Scheme    string // ws or wss
	Host      string
	Port      string
	User      string
	Password  string
	Namespace string
	Database  string
}

package testdb

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/forgo/manifestor/api/internal/database"
)

// TestDB is a database connection bound to a throwaway namespace
type TestDB struct {
	DB        *database.SurrealDB
	Namespace string
	t         *testing.T
}

var (
	counterMu sync.Mutex
	counter   int64
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func uniqueNamespace() string {
	counterMu.Lock()
	defer counterMu.Unlock()
	counter++
	return fmt.Sprintf("test_%d_%d", time.Now().UnixNano(), counter)
}

// New connects to the test database, or skips the test when TEST_DB_HOST
// is not set
func New(t *testing.T) *TestDB {
	t.Helper()

	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping SurrealDB integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	namespace := uniqueNamespace()
	db := database.NewSurrealDB(database.Config{
		Scheme:    getenv("TEST_DB_SCHEME", "ws"),
		Host:      host,
		Port:      getenv("TEST_DB_PORT", "8000"),
		User:      getenv("TEST_DB_USER", "root"),
		Password:  getenv("TEST_DB_PASSWORD", "root"),
		Namespace: namespace,
		Database:  "test",
	})
	if err := db.Connect(ctx); err != nil {
		t.Fatalf("testdb: failed to connect: %v", err)
	}
	if err := database.ApplySchema(ctx, db); err != nil {
		_ = db.Close()
		t.Fatalf("testdb: failed to apply schema: %v", err)
	}

	tdb := &TestDB{DB: db, Namespace: namespace, t: t}
	t.Cleanup(tdb.close)
	return tdb
}

func (tdb *TestDB) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = tdb.DB.Execute(ctx, fmt.Sprintf("REMOVE NAMESPACE %s", tdb.Namespace), nil)
	_ = tdb.DB.Close()
}

// Ctx returns a context bounded to the test's lifetime
func (tdb *TestDB) Ctx() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	tdb.t.Cleanup(cancel)
	return ctx
}

// MustExec executes a query and fails the test on error
func (tdb *TestDB) MustExec(query string, vars map[string]interface{}) {
	tdb.t.Helper()
	if err := tdb.DB.Execute(tdb.Ctx(), query, vars); err != nil {
		tdb.t.Fatalf("testdb: exec failed: %v\nQuery: %s", err, query)
	}
}

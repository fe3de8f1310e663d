package database

// Atomic multi-statement writes.
//
// SurrealDB has no connection-level transaction over the RPC client, so
// statements are accumulated and sent as a single
// BEGIN TRANSACTION ... COMMIT TRANSACTION request:
//
//	batch := NewAtomicBatch()
//	batch.Add("DELETE dream WHERE owner_id = $owner_id", vars)
//	batch.Add("DELETE profile WHERE owner_id = $owner_id", vars)
//	batch.Execute(ctx, db) // all or nothing
//
// Variables are namespaced per statement ($owner_id -> $v1_owner_id) so
// statements built independently cannot collide.

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// TxBuilder builds atomic transaction queries with automatic variable namespacing
type TxBuilder struct {
	statements []string
	vars       map[string]interface{}
	varCounter int
}

// NewTxBuilder creates a new transaction builder
func NewTxBuilder() *TxBuilder {
	return &TxBuilder{
		statements: make([]string, 0),
		vars:       make(map[string]interface{}),
	}
}

// Add adds a statement, namespacing its variables. Longer names are
// replaced first so $owner does not clobber $owner_id.
func (tb *TxBuilder) Add(query string, vars map[string]interface{}) {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })

	newQuery := query
	for _, name := range names {
		tb.varCounter++
		newName := fmt.Sprintf("v%d_%s", tb.varCounter, name)
		newQuery = strings.ReplaceAll(newQuery, "$"+name, "$"+newName)
		tb.vars[newName] = vars[name]
	}

	tb.statements = append(tb.statements, newQuery)
}

// Build returns the complete transaction query and merged variables
func (tb *TxBuilder) Build() (string, map[string]interface{}) {
	if len(tb.statements) == 0 {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("BEGIN TRANSACTION;\n")
	for _, stmt := range tb.statements {
		sb.WriteString(strings.TrimSpace(stmt))
		if !strings.HasSuffix(strings.TrimSpace(stmt), ";") {
			sb.WriteString(";")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("COMMIT TRANSACTION;")

	return sb.String(), tb.vars
}

// AtomicBatch is the fluent front-end over TxBuilder
type AtomicBatch struct {
	builder *TxBuilder
	count   int
}

// NewAtomicBatch creates a new atomic batch
func NewAtomicBatch() *AtomicBatch {
	return &AtomicBatch{builder: NewTxBuilder()}
}

// Add adds a query to the batch
func (ab *AtomicBatch) Add(query string, vars map[string]interface{}) *AtomicBatch {
	ab.builder.Add(query, vars)
	ab.count++
	return ab
}

// Execute runs all queries as a single transaction
func (ab *AtomicBatch) Execute(ctx context.Context, db Database) error {
	if ab.count == 0 {
		return nil
	}
	query, vars := ab.builder.Build()
	return db.Execute(ctx, query, vars)
}

// Len returns the number of queries in the batch
func (ab *AtomicBatch) Len() int {
	return ab.count
}

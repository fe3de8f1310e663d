package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed schema/*.surql
var schemaFS embed.FS

// SchemaFiles returns the embedded schema statements in name order
func SchemaFiles() ([]string, error) {
	entries, err := fs.ReadDir(schemaFS, "schema")
	if err != nil {
		return nil, fmt.Errorf("read schema dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".surql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	files := make([]string, 0, len(names))
	for _, name := range names {
		content, err := fs.ReadFile(schemaFS, "schema/"+name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		files = append(files, string(content))
	}
	return files, nil
}

// ApplySchema defines the tables and indexes the repositories rely on.
// Every statement is IF NOT EXISTS, so it runs on each start.
func ApplySchema(ctx context.Context, db Database) error {
	files, err := SchemaFiles()
	if err != nil {
		return err
	}
	for i, stmt := range files {
		if err := db.Execute(ctx, stmt, nil); err != nil {
			return fmt.Errorf("%w: schema file %d: %v", ErrQuery, i+1, err)
		}
	}
	return nil
}

package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// isUniqueConstraintError checks if an error is a unique constraint violation
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "unique") ||
		strings.Contains(errStr, "duplicate") ||
		strings.Contains(errStr, "already exists") ||
		strings.Contains(errStr, "already contains")
}

// convertSurrealID converts a SurrealDB record ID to its "table:id" string form
func convertSurrealID(id interface{}) string {
	switch v := id.(type) {
	case string:
		return v
	case models.RecordID:
		return fmt.Sprintf("%s:%v", v.Table, v.ID)
	case *models.RecordID:
		if v != nil {
			return fmt.Sprintf("%s:%v", v.Table, v.ID)
		}
	case map[string]interface{}:
		for _, tbKey := range []string{"tb", "Table"} {
			if tb, ok := v[tbKey].(string); ok {
				for _, idKey := range []string{"id", "ID"} {
					if idVal, ok := v[idKey]; ok {
						return fmt.Sprintf("%s:%v", tb, idVal)
					}
				}
			}
		}
	}
	return fmt.Sprintf("%v", id)
}

// parseTime parses time from the formats SurrealDB hands back
func parseTime(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
	case models.CustomDateTime:
		return t.Time
	case *models.CustomDateTime:
		if t != nil {
			return t.Time
		}
	}
	return time.Time{}
}

// normalizeValue rewrites driver-specific values (record IDs, datetimes)
// into JSON-friendly strings, recursing into maps and slices.
func normalizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case models.RecordID, *models.RecordID:
		return convertSurrealID(t)
	case models.CustomDateTime, *models.CustomDateTime, time.Time:
		parsed := parseTime(t)
		if parsed.IsZero() {
			return nil
		}
		return parsed.UTC().Format(time.RFC3339Nano)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			if k == "id" {
				out[k] = convertSurrealID(val)
				continue
			}
			out[k] = normalizeValue(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = normalizeValue(val)
		}
		return out
	}
	return v
}

// decodeRecord converts a raw record map into dst via a JSON round trip
func decodeRecord(record interface{}, dst interface{}) error {
	data, ok := record.(map[string]interface{})
	if !ok {
		return errors.New("unexpected result format")
	}

	jsonBytes, err := json.Marshal(normalizeValue(data))
	if err != nil {
		return err
	}
	return json.Unmarshal(jsonBytes, dst)
}

// extractRecords returns the records of the first statement result
func extractRecords(results []interface{}) []interface{} {
	for _, result := range results {
		if resp, ok := result.(map[string]interface{}); ok {
			if status, ok := resp["status"].(string); ok && status == "OK" {
				if resultData, ok := resp["result"].([]interface{}); ok {
					return resultData
				}
				return nil
			}
		}
	}
	return nil
}

// nilIfEmpty maps "" to NONE in SurrealQL
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// ptrToNone maps a nil pointer to NONE in SurrealQL
func ptrToNone(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

// formatTime renders a timestamp for a <datetime> cast
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

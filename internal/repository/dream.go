package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/forgo/manifestor/api/internal/database"
	"github.com/forgo/manifestor/api/internal/model"
)

// DreamRepository handles dream data access
type DreamRepository struct {
	db database.Database
}

// NewDreamRepository creates a new dream repository
func NewDreamRepository(db database.Database) *DreamRepository {
	return &DreamRepository{db: db}
}

// Create persists a validated dream and fills in its ID and CreatedAt
func (r *DreamRepository) Create(ctx context.Context, dream *model.Dream) error {
	query := `
		CREATE dream CONTENT {
			owner_id: $owner_id,
			title: $title,
			type: $type,
			category: IF $category IS NOT NULL THEN $category ELSE NONE END,
			description: IF $description IS NOT NULL THEN $description ELSE NONE END,
			start_date: <datetime>$start_date,
			end_date: <datetime>$end_date,
			checklist: $checklist,
			progress: $progress,
			created_at: time::now()
		}
	`

	vars := map[string]interface{}{
		"owner_id":    dream.OwnerID,
		"title":       dream.Title,
		"type":        string(dream.Type),
		"category":    ptrToNone(dream.Category),
		"description": ptrToNone(dream.Description),
		"start_date":  formatTime(dream.StartDate),
		"end_date":    formatTime(dream.EndDate),
		"checklist":   checklistVars(dream.Checklist),
		"progress":    dream.Progress,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	created, err := database.FirstRecord(result)
	if err != nil {
		return fmt.Errorf("dream not returned after create: %w", err)
	}
	stored, err := parseDreamResult(created)
	if err != nil {
		return err
	}

	dream.ID = stored.ID
	dream.CreatedAt = stored.CreatedAt
	return nil
}

// ListByOwner returns every dream of the owner, newest first
func (r *DreamRepository) ListByOwner(ctx context.Context, ownerID string) ([]*model.Dream, error) {
	query := `SELECT * FROM dream WHERE owner_id = $owner_id ORDER BY created_at DESC`
	vars := map[string]interface{}{"owner_id": ownerID}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	records := extractRecords(result)
	dreams := make([]*model.Dream, 0, len(records))
	for _, rec := range records {
		dream, err := parseDreamResult(rec)
		if err != nil {
			return nil, err
		}
		dreams = append(dreams, dream)
	}
	return dreams, nil
}

// GetByID retrieves a dream by ID. Dreams of other owners and IDs outside
// the dream table are not found.
func (r *DreamRepository) GetByID(ctx context.Context, ownerID, id string) (*model.Dream, error) {
	key, ok := model.DreamKey(id)
	if !ok {
		return nil, nil
	}

	query := `SELECT * FROM type::thing('dream', $key) WHERE owner_id = $owner_id`
	vars := map[string]interface{}{
		"key":      key,
		"owner_id": ownerID,
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return parseDreamResult(result)
}

// UpdateChecklist replaces the checklist and its cached progress
func (r *DreamRepository) UpdateChecklist(ctx context.Context, ownerID, id string, checklist []model.ChecklistItem, progress int) (*model.Dream, error) {
	key, ok := model.DreamKey(id)
	if !ok {
		return nil, nil
	}

	query := `
		UPDATE type::thing('dream', $key) SET
			checklist = $checklist,
			progress = $progress
		WHERE owner_id = $owner_id
		RETURN AFTER
	`
	vars := map[string]interface{}{
		"key":       key,
		"owner_id":  ownerID,
		"checklist": checklistVars(checklist),
		"progress":  progress,
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return parseDreamResult(result)
}

const deleteDreamsByOwnerQuery = `DELETE dream WHERE owner_id = $owner_id`

func checklistVars(items []model.ChecklistItem) []interface{} {
	out := make([]interface{}, 0, len(items))
	for _, item := range items {
		m := map[string]interface{}{
			"text": item.Text,
			"done": item.Done,
		}
		if item.CompletedAt != nil {
			m["completed_at"] = item.CompletedAt.UTC().Format(time.RFC3339Nano)
		}
		out = append(out, m)
	}
	return out
}

func parseDreamResult(result interface{}) (*model.Dream, error) {
	var dream model.Dream
	if err := decodeRecord(result, &dream); err != nil {
		return nil, err
	}
	if dream.Checklist == nil {
		dream.Checklist = []model.ChecklistItem{}
	}
	return &dream, nil
}

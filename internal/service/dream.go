package service

import (
	"context"
	"fmt"
	"time"

	"github.com/forgo/manifestor/api/internal/model"
)

// Default horizons for drafts that omit an end date
const (
	DefaultShortTermHorizon = 30 * 24 * time.Hour
	DefaultLongTermHorizon  = 365 * 24 * time.Hour
)

// DreamRepository defines the interface for dream persistence
type DreamRepository interface {
	Create(ctx context.Context, dream *model.Dream) error
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Dream, error)
	GetByID(ctx context.Context, ownerID, id string) (*model.Dream, error)
	UpdateChecklist(ctx context.Context, ownerID, id string, checklist []model.ChecklistItem, progress int) (*model.Dream, error)
}

// UserEventSender delivers events to a user's connected clients
type UserEventSender interface {
	SendToUser(userID string, event Event)
}

// DreamService owns the dream lifecycle: validation, persistence and
// notifying the owner's clients of every stored record.
type DreamService struct {
	repo   DreamRepository
	events UserEventSender
	writes StoreWriteObserver
	now    func() time.Time
}

// DreamServiceConfig holds configuration for the dream service
type DreamServiceConfig struct {
	DreamRepo DreamRepository
	Events    UserEventSender    // optional
	Writes    StoreWriteObserver // optional
	Now       func() time.Time // optional, defaults to time.Now
}

// NewDreamService creates a new dream service
func NewDreamService(cfg DreamServiceConfig) *DreamService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &DreamService{
		repo:   cfg.DreamRepo,
		events: cfg.Events,
		writes: cfg.Writes,
		now:    now,
	}
}

// Create validates the draft and stores it. Invalid drafts return a
// *ValidationError naming the first violated field and are never written.
func (s *DreamService) Create(ctx context.Context, ownerID string, draft model.DreamDraft) (*model.Dream, error) {
	if err := firstValidationError(draft.Validate()); err != nil {
		return nil, err
	}
	draft.Normalize()

	now := s.now().UTC()
	start := draft.StartDate
	if start.IsZero() {
		start = now
	}
	end := draft.EndDate
	if end.IsZero() {
		horizon := DefaultShortTermHorizon
		if draft.Type == model.DreamTypeLongTerm {
			horizon = DefaultLongTermHorizon
		}
		end = start.Add(horizon)
	}
	if end.Before(start) {
		return nil, &ValidationError{Field: "end_date", Message: "end_date must not be before start_date"}
	}

	checklist := make([]model.ChecklistItem, len(draft.Checklist))
	for i, item := range draft.Checklist {
		checklist[i] = model.ChecklistItem{Text: item.Text, Done: item.Done}
		if item.Done {
			completedAt := now
			if item.CompletedAt != nil {
				completedAt = item.CompletedAt.UTC()
			}
			checklist[i].CompletedAt = &completedAt
		}
	}

	dream := &model.Dream{
		OwnerID:     ownerID,
		Title:       draft.Title,
		Type:        draft.Type,
		Category:    optionalString(draft.Category),
		Description: optionalString(draft.Description),
		StartDate:   start,
		EndDate:     end,
		Checklist:   checklist,
	}
	dream.Progress = DreamProgress(dream)

	if err := s.repo.Create(ctx, dream); err != nil {
		return nil, &StoreError{Op: "create dream", Err: err}
	}
	if s.writes != nil {
		s.writes.DataWritten(ownerID)
	}

	s.publish(dream)
	return dream, nil
}

// List returns all dreams of the owner. Callers must not rely on order.
func (s *DreamService) List(ctx context.Context, ownerID string) ([]*model.Dream, error) {
	dreams, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, &StoreError{Op: "list dreams", Err: err}
	}
	for _, dream := range dreams {
		dream.Progress = DreamProgress(dream)
	}
	return dreams, nil
}

// Get returns one dream of the owner
func (s *DreamService) Get(ctx context.Context, ownerID, id string) (*model.Dream, error) {
	if _, ok := model.DreamKey(id); !ok {
		return nil, ErrDreamNotFound
	}
	dream, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, &StoreError{Op: "get dream", Err: err}
	}
	if dream == nil {
		return nil, ErrDreamNotFound
	}
	dream.Progress = DreamProgress(dream)
	return dream, nil
}

// SetItemDone toggles one checklist item and returns the stored dream.
// Item text is never touched, so the non-empty checklist invariant holds.
func (s *DreamService) SetItemDone(ctx context.Context, ownerID, id string, index int, done bool) (*model.Dream, error) {
	dream, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(dream.Checklist) {
		return nil, &ValidationError{
			Field:   "index",
			Message: fmt.Sprintf("index must be between 0 and %d", len(dream.Checklist)-1),
		}
	}

	checklist := append([]model.ChecklistItem(nil), dream.Checklist...)
	item := &checklist[index]
	if item.Done != done {
		item.Done = done
		if done {
			completedAt := s.now().UTC()
			item.CompletedAt = &completedAt
		} else {
			item.CompletedAt = nil
		}
	}
	progress := model.PercentOf((&model.Dream{Checklist: checklist}).TaskCounts())

	updated, err := s.repo.UpdateChecklist(ctx, ownerID, id, checklist, progress)
	if err != nil {
		return nil, &StoreError{Op: "update checklist", Err: err}
	}
	if updated == nil {
		return nil, ErrDreamNotFound
	}

	s.publish(updated)
	return updated, nil
}

// Query lists the owner's dreams matching term and selector
func (s *DreamService) Query(ctx context.Context, ownerID, term string, selector model.TypeSelector) ([]*model.Dream, error) {
	dreams, err := s.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return Query(dreams, term, selector), nil
}

// Categories lists the owner's distinct categories with counts
func (s *DreamService) Categories(ctx context.Context, ownerID string) ([]model.CategoryCount, error) {
	dreams, err := s.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return DistinctCategories(dreams), nil
}

func (s *DreamService) publish(dream *model.Dream) {
	if s.events == nil {
		return
	}
	s.events.SendToUser(dream.OwnerID, Event{Type: EventDreamUpserted, Data: dream})
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

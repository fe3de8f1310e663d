package service

import (
	"context"
	"time"

	"github.com/forgo/manifestor/api/internal/model"
)

// activeDreamLimit is how many dreams the dashboard highlights
const activeDreamLimit = 3

// DreamLister lists an owner's dreams
type DreamLister interface {
	List(ctx context.Context, ownerID string) ([]*model.Dream, error)
}

// DreamSummary is a dream with its derived metrics
type DreamSummary struct {
	*model.Dream
	CompletedTasks int  `json:"completed_tasks"`
	TotalTasks     int  `json:"total_tasks"`
	DaysRemaining  int  `json:"days_remaining"`
	Overdue        bool `json:"overdue"`
}

// Dashboard is the overview of an owner's dreams
type Dashboard struct {
	TotalDreams     int             `json:"total_dreams"`
	AverageProgress int             `json:"average_progress"`
	Streak          int             `json:"streak"`
	ActiveDreams    []*DreamSummary `json:"active_dreams"`
}

// ManifestLog is the filtered dream log with collection-wide counts
type ManifestLog struct {
	Dreams     []*DreamSummary       `json:"dreams"`
	Total      int                   `json:"total"`
	ShortTerm  int                   `json:"short_term"`
	LongTerm   int                   `json:"long_term"`
	Categories []model.CategoryCount `json:"categories"`
}

// DashboardService builds read-only summaries over an owner's dreams
type DashboardService struct {
	dreams   DreamLister
	location *time.Location
}

// DashboardServiceConfig holds configuration for the dashboard service
type DashboardServiceConfig struct {
	Dreams   DreamLister
	Location *time.Location // calendar for streaks, defaults to UTC
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(cfg DashboardServiceConfig) *DashboardService {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{
		dreams:   cfg.Dreams,
		location: loc,
	}
}

// Dashboard returns totals, average progress, streak and the first few
// dreams as listed
func (s *DashboardService) Dashboard(ctx context.Context, principal *model.Principal, now time.Time) (*Dashboard, error) {
	dreams, err := s.dreams.List(ctx, principal.ID)
	if err != nil {
		return nil, err
	}

	active := dreams
	if len(active) > activeDreamLimit {
		active = active[:activeDreamLimit]
	}

	return &Dashboard{
		TotalDreams:     len(dreams),
		AverageProgress: CollectionAverageProgress(dreams),
		Streak:          CurrentStreak(dreams, now, s.location),
		ActiveDreams:    summarize(active, now),
	}, nil
}

// ManifestLog filters the owner's dreams by term and selector. Counts and
// categories cover the whole collection, not just the matches.
func (s *DashboardService) ManifestLog(ctx context.Context, principal *model.Principal, term string, selector model.TypeSelector, now time.Time) (*ManifestLog, error) {
	dreams, err := s.dreams.List(ctx, principal.ID)
	if err != nil {
		return nil, err
	}

	log := &ManifestLog{
		Dreams:     summarize(Query(dreams, term, selector), now),
		Total:      len(dreams),
		Categories: DistinctCategories(dreams),
	}
	for _, dream := range dreams {
		switch dream.Type {
		case model.DreamTypeShortTerm:
			log.ShortTerm++
		case model.DreamTypeLongTerm:
			log.LongTerm++
		}
	}
	return log, nil
}

func summarize(dreams []*model.Dream, now time.Time) []*DreamSummary {
	out := make([]*DreamSummary, 0, len(dreams))
	for _, dream := range dreams {
		done, total := TaskCounts(dream)
		out = append(out, &DreamSummary{
			Dream:          dream,
			CompletedTasks: done,
			TotalTasks:     total,
			DaysRemaining:  DaysRemaining(dream, now),
			Overdue:        IsOverdue(dream, now),
		})
	}
	return out
}

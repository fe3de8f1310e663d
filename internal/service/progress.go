package service

import (
	"math"
	"time"

	"github.com/forgo/manifestor/api/internal/model"
)

// Progress and date metrics derived from checklist state. Everything here is
// pure; nil dreams and empty checklists are handled as zero progress.

// DreamProgress returns round(done/total*100), 0 for an empty checklist
func DreamProgress(dream *model.Dream) int {
	if dream == nil {
		return 0
	}
	return model.PercentOf(dream.TaskCounts())
}

// TaskCounts returns the done and total checklist counts of a dream
func TaskCounts(dream *model.Dream) (done, total int) {
	if dream == nil {
		return 0, 0
	}
	return dream.TaskCounts()
}

// CollectionAverageProgress averages completion ratios over all dreams.
// A dream without a checklist contributes 0 but still counts in the divisor.
func CollectionAverageProgress(dreams []*model.Dream) int {
	if len(dreams) == 0 {
		return 0
	}

	var sum float64
	for _, dream := range dreams {
		done, total := TaskCounts(dream)
		if total > 0 {
			sum += float64(done) / float64(total)
		}
	}
	return int(math.Round(sum * 100 / float64(len(dreams))))
}

// DaysRemaining returns ceil((end-now)/24h). Negative means overdue.
func DaysRemaining(dream *model.Dream, now time.Time) int {
	return int(math.Ceil(float64(dream.EndDate.Sub(now)) / float64(24*time.Hour)))
}

// IsOverdue reports whether DaysRemaining is negative. A dream less than a
// day past its end date still has 0 days remaining and is not overdue yet.
func IsOverdue(dream *model.Dream, now time.Time) bool {
	return DaysRemaining(dream, now) < 0
}

// CurrentStreak counts consecutive calendar days in loc with at least one
// checklist completion. The run ends today, or yesterday when nothing has
// been completed yet today.
func CurrentStreak(dreams []*model.Dream, now time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}

	days := make(map[string]struct{})
	for _, dream := range dreams {
		if dream == nil {
			continue
		}
		for _, item := range dream.Checklist {
			if item.Done && item.CompletedAt != nil {
				days[dayKey(*item.CompletedAt, loc)] = struct{}{}
			}
		}
	}
	if len(days) == 0 {
		return 0
	}

	day := now.In(loc)
	if _, ok := days[dayKey(day, loc)]; !ok {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for {
		if _, ok := days[dayKey(day, loc)]; !ok {
			return streak
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
}

func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.DateOnly)
}

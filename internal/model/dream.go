package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DreamType distinguishes short horizon goals from long horizon ones
type DreamType string

const (
	DreamTypeShortTerm DreamType = "short-term"
	DreamTypeLongTerm  DreamType = "long-term"
)

// IsValid returns true if the type is one of the known dream types
func (t DreamType) IsValid() bool {
	switch t {
	case DreamTypeShortTerm, DreamTypeLongTerm:
		return true
	default:
		return false
	}
}

// TypeSelector filters a dream collection by type
type TypeSelector string

const (
	SelectAll       TypeSelector = "all"
	SelectShortTerm TypeSelector = TypeSelector(DreamTypeShortTerm)
	SelectLongTerm  TypeSelector = TypeSelector(DreamTypeLongTerm)
)

// ParseTypeSelector maps a query value to a selector. Empty means all.
func ParseTypeSelector(s string) (TypeSelector, bool) {
	switch TypeSelector(strings.TrimSpace(s)) {
	case "", SelectAll:
		return SelectAll, true
	case SelectShortTerm:
		return SelectShortTerm, true
	case SelectLongTerm:
		return SelectLongTerm, true
	default:
		return "", false
	}
}

// DreamTable is the store table holding dreams; dream IDs are "dream:<key>"
const DreamTable = "dream"

// DreamKey returns the record key of a dream ID. IDs of other tables and
// malformed values are rejected.
func DreamKey(id string) (string, bool) {
	key, ok := strings.CutPrefix(id, DreamTable+":")
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

// ChecklistItem is one step of a dream
type ChecklistItem struct {
	Text        string     `json:"text"`
	Done        bool       `json:"done"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Dream is a goal owned by a single user
type Dream struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"owner_id"`
	Title       string          `json:"title"`
	Type        DreamType       `json:"type"`
	Category    *string         `json:"category,omitempty"`
	Description *string         `json:"description,omitempty"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	Checklist   []ChecklistItem `json:"checklist"`
	// Progress caches the checklist-derived percentage. It is rewritten on
	// every checklist write and never read back as a source of truth.
	Progress  int       `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
}

// CategoryValue returns the category or "" when absent
func (d *Dream) CategoryValue() string {
	if d.Category == nil {
		return ""
	}
	return *d.Category
}

// DreamDraft is the caller-supplied shape of a new dream
type DreamDraft struct {
	Title       string          `json:"title"`
	Type        DreamType       `json:"type"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	Checklist   []ChecklistItem `json:"checklist"`
}

// Validation limits for dreams
const (
	MaxDreamTitleLength       = 200
	MaxDreamDescriptionLength = 2000
	MaxDreamCategoryLength    = 50
	MaxChecklistItems         = 100
	MaxChecklistTextLength    = 500
)

// Validate returns the field errors of the draft in field order. Callers
// that surface a single error use the first element.
func (d *DreamDraft) Validate() []FieldError {
	var errors []FieldError

	title := strings.TrimSpace(d.Title)
	if title == "" {
		errors = append(errors, FieldError{Field: "title", Message: "title is required"})
	} else if len(title) > MaxDreamTitleLength {
		errors = append(errors, FieldError{Field: "title", Message: fmt.Sprintf("title must be at most %d characters", MaxDreamTitleLength)})
	}

	if len(d.Checklist) == 0 {
		errors = append(errors, FieldError{Field: "checklist", Message: "at least one checklist item is required"})
	} else if len(d.Checklist) > MaxChecklistItems {
		errors = append(errors, FieldError{Field: "checklist", Message: fmt.Sprintf("checklist must have at most %d items", MaxChecklistItems)})
	}
	for i, item := range d.Checklist {
		text := strings.TrimSpace(item.Text)
		field := fmt.Sprintf("checklist[%d].text", i)
		if text == "" {
			errors = append(errors, FieldError{Field: field, Message: "checklist item text is required"})
		} else if len(text) > MaxChecklistTextLength {
			errors = append(errors, FieldError{Field: field, Message: fmt.Sprintf("checklist item text must be at most %d characters", MaxChecklistTextLength)})
		}
	}

	if d.Type != "" && !d.Type.IsValid() {
		errors = append(errors, FieldError{Field: "type", Message: "type must be short-term or long-term"})
	}
	if len(d.Category) > MaxDreamCategoryLength {
		errors = append(errors, FieldError{Field: "category", Message: fmt.Sprintf("category must be at most %d characters", MaxDreamCategoryLength)})
	}
	if len(d.Description) > MaxDreamDescriptionLength {
		errors = append(errors, FieldError{Field: "description", Message: fmt.Sprintf("description must be at most %d characters", MaxDreamDescriptionLength)})
	}
	if !d.StartDate.IsZero() && !d.EndDate.IsZero() && d.EndDate.Before(d.StartDate) {
		errors = append(errors, FieldError{Field: "end_date", Message: "end_date must not be before start_date"})
	}

	return errors
}

// Normalize trims free text and applies defaults. It does not validate.
func (d *DreamDraft) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	d.Category = strings.TrimSpace(d.Category)
	d.Description = strings.TrimSpace(d.Description)
	if d.Type == "" {
		d.Type = DreamTypeShortTerm
	}
	for i := range d.Checklist {
		d.Checklist[i].Text = strings.TrimSpace(d.Checklist[i].Text)
	}
}

// CategoryCount pairs a category with the number of dreams carrying it
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// TaskCounts returns the number of done items and the checklist size
func (d *Dream) TaskCounts() (done, total int) {
	for _, item := range d.Checklist {
		if item.Done {
			done++
		}
	}
	return done, len(d.Checklist)
}

// PercentOf returns round(part/whole*100), or 0 when whole is 0
func PercentOf(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

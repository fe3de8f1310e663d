package model

import "regexp"

// Preference keys
const (
	PreferenceDailyReminderTime = "daily_reminder_time"
)

// DefaultReminderTime is used when an owner never chose one
const DefaultReminderTime = "19:00"

var reminderTimePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// IsValidReminderTime reports whether s is a 24-hour HH:MM time
func IsValidReminderTime(s string) bool {
	return reminderTimePattern.MatchString(s)
}

// ReminderPreference represents the reminder setting of an owner
type ReminderPreference struct {
	Time string `json:"time"`
}

// Validate validates the reminder preference
func (p *ReminderPreference) Validate() []FieldError {
	if !IsValidReminderTime(p.Time) {
		return []FieldError{{Field: "time", Message: "time must be in 24-hour HH:MM format"}}
	}
	return nil
}

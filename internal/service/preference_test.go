package service

import (
	"context"
	"errors"
	"testing"

	"github.com/forgo/manifestor/api/internal/model"
)

type memoryPreferences struct {
	values map[string]string
	err    error
}

func (m *memoryPreferences) GetReminderTime(ctx context.Context, ownerID string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if v, ok := m.values[ownerID]; ok {
		return v, nil
	}
	return model.DefaultReminderTime, nil
}

func (m *memoryPreferences) SetReminderTime(ctx context.Context, ownerID, hhmm string) error {
	if m.err != nil {
		return m.err
	}
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[ownerID] = hhmm
	return nil
}

func TestPreferenceService_DefaultAndRoundTrip(t *testing.T) {
	t.Parallel()

	store := &memoryPreferences{}
	svc := NewPreferenceService(store, nil)
	principal := testPrincipal()

	pref, err := svc.GetReminder(context.Background(), principal)
	if err != nil {
		t.Fatalf("GetReminder: %v", err)
	}
	if pref.Time != "19:00" {
		t.Errorf("default = %q, want 19:00", pref.Time)
	}

	if _, err := svc.SetReminder(context.Background(), principal, model.ReminderPreference{Time: "07:30"}); err != nil {
		t.Fatalf("SetReminder: %v", err)
	}
	pref, _ = svc.GetReminder(context.Background(), principal)
	if pref.Time != "07:30" {
		t.Errorf("Time = %q, want 07:30", pref.Time)
	}
}

func TestPreferenceService_RejectsBadTimes(t *testing.T) {
	t.Parallel()

	store := &memoryPreferences{}
	svc := NewPreferenceService(store, nil)

	for _, value := range []string{"", "7:30", "24:00", "12:60", "noon"} {
		_, err := svc.SetReminder(context.Background(), testPrincipal(), model.ReminderPreference{Time: value})
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Field != "time" {
			t.Errorf("%q: expected time ValidationError, got %v", value, err)
		}
	}
	if len(store.values) != 0 {
		t.Error("invalid times must not be stored")
	}
}

func TestPreferenceService_StoreError(t *testing.T) {
	t.Parallel()

	svc := NewPreferenceService(&memoryPreferences{err: errors.New("disk full")}, nil)
	_, err := svc.GetReminder(context.Background(), testPrincipal())

	var serr *StoreError
	if !errors.As(err, &serr) {
		t.Errorf("expected *StoreError, got %v", err)
	}
}

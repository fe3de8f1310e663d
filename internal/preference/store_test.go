package preference

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/forgo/manifestor/api/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "preferences.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpen_RequiresPath(t *testing.T) {
	t.Parallel()
	if _, err := Open(context.Background(), "  "); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestOpen_InMemory(t *testing.T) {
	t.Parallel()
	store, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	if err := store.SetReminderTime(context.Background(), "account:ada", "07:15"); err != nil {
		t.Fatalf("SetReminderTime: %v", err)
	}
	got, _ := store.GetReminderTime(context.Background(), "account:ada")
	if got != "07:15" {
		t.Errorf("GetReminderTime = %q", got)
	}
}

func TestOpen_ReopenKeepsDataAndSkipsMigrations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "preferences.db")

	first, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := first.SetReminderTime(ctx, "account:ada", "06:00"); err != nil {
		t.Fatalf("SetReminderTime: %v", err)
	}
	_ = first.Close()

	second, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	got, err := second.GetReminderTime(ctx, "account:ada")
	if err != nil || got != "06:00" {
		t.Errorf("GetReminderTime = %q, %v", got, err)
	}
}

func TestGetReminderTime_Default(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)

	got, err := store.GetReminderTime(context.Background(), "account:nobody")
	if err != nil {
		t.Fatalf("GetReminderTime: %v", err)
	}
	if got != model.DefaultReminderTime {
		t.Errorf("got %q, want %q", got, model.DefaultReminderTime)
	}
}

func TestSetReminderTime_Overwrites(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)
	ctx := context.Background()

	for _, v := range []string{"08:30", "21:45"} {
		if err := store.SetReminderTime(ctx, "account:ada", v); err != nil {
			t.Fatalf("SetReminderTime(%q): %v", v, err)
		}
	}

	got, _ := store.GetReminderTime(ctx, "account:ada")
	if got != "21:45" {
		t.Errorf("got %q, want 21:45", got)
	}
}

func TestSetReminderTime_RejectsBadFormat(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)

	for _, v := range []string{"", "7:00", "24:00", "12:60", "noon", "12:00:00"} {
		err := store.SetReminderTime(context.Background(), "account:ada", v)
		if !errors.Is(err, ErrInvalidReminderTime) {
			t.Errorf("SetReminderTime(%q) = %v, want ErrInvalidReminderTime", v, err)
		}
	}
}

func TestOwnersWithReminderAt(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)
	ctx := context.Background()

	_ = store.SetReminderTime(ctx, "account:bob", "19:00")
	_ = store.SetReminderTime(ctx, "account:ada", "19:00")
	_ = store.SetReminderTime(ctx, "account:cy", "06:00")

	owners, err := store.OwnersWithReminderAt(ctx, "19:00")
	if err != nil {
		t.Fatalf("OwnersWithReminderAt: %v", err)
	}
	if len(owners) != 2 || owners[0] != "account:ada" || owners[1] != "account:bob" {
		t.Errorf("owners = %v", owners)
	}
}

func TestDeleteOwner_IsIdempotent(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)
	ctx := context.Background()

	_ = store.SetReminderTime(ctx, "account:ada", "05:00")
	for i := 0; i < 2; i++ {
		if err := store.DeleteOwner(ctx, "account:ada"); err != nil {
			t.Fatalf("DeleteOwner #%d: %v", i+1, err)
		}
	}

	got, _ := store.GetReminderTime(ctx, "account:ada")
	if got != model.DefaultReminderTime {
		t.Errorf("preference survived deletion: %q", got)
	}
}

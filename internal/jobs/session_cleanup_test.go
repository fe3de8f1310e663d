package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingDeleter struct {
	calls atomic.Int32
	err   error
}

func (c *countingDeleter) DeleteExpired(ctx context.Context) error {
	c.calls.Add(1)
	return c.err
}

func TestSessionCleanup_RunOnce(t *testing.T) {
	t.Parallel()

	deleter := &countingDeleter{err: errors.New("store down")}
	c := NewSessionCleanup(deleter, 0)

	if err := c.RunOnce(context.Background()); err == nil {
		t.Error("expected error to be returned")
	}
	if c.interval != time.Hour {
		t.Errorf("default interval = %v", c.interval)
	}
}

func TestSessionCleanup_TicksUntilStopped(t *testing.T) {
	t.Parallel()

	deleter := &countingDeleter{}
	c := NewSessionCleanup(deleter, 5*time.Millisecond)
	c.Start()

	deadline := time.Now().Add(time.Second)
	for deleter.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	c.Stop()
	c.Stop()

	stopped := deleter.calls.Load()
	if stopped < 2 {
		t.Fatalf("expected at least 2 runs, got %d", stopped)
	}
	time.Sleep(20 * time.Millisecond)
	if deleter.calls.Load() != stopped {
		t.Error("cleanup kept running after Stop")
	}
}

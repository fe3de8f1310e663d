package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// ExpiredSessionDeleter removes sessions past their expiry
type ExpiredSessionDeleter interface {
	DeleteExpired(ctx context.Context) error
}

// SessionCleanup periodically deletes expired sessions. Authenticate
// already rejects them; this only keeps the table small.
type SessionCleanup struct {
	sessions ExpiredSessionDeleter
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex
}

// NewSessionCleanup creates a new session cleanup job
func NewSessionCleanup(sessions ExpiredSessionDeleter, interval time.Duration) *SessionCleanup {
	if interval == 0 {
		interval = time.Hour
	}
	return &SessionCleanup{
		sessions: sessions,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the session cleanup job
func (c *SessionCleanup) Start() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.mu.Unlock()

	c.wg.Add(1)
	go c.run()
	slog.Info("session cleanup started", slog.Duration("interval", c.interval))
}

// Stop gracefully stops the session cleanup job
func (c *SessionCleanup) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	c.mu.Unlock()

	close(c.stopCh)
	c.wg.Wait()
	slog.Info("session cleanup stopped")
}

func (c *SessionCleanup) run() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			if err := c.RunOnce(ctx); err != nil {
				slog.Error("session cleanup failed", slog.String("error", err.Error()))
			}
			cancel()
		case <-c.stopCh:
			return
		}
	}
}

// RunOnce deletes expired sessions once
func (c *SessionCleanup) RunOnce(ctx context.Context) error {
	return c.sessions.DeleteExpired(ctx)
}

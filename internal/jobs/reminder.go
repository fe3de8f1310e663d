package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/forgo/manifestor/api/internal/service"
)

// ReminderOwners lists the owners whose reminder is due at a minute
type ReminderOwners interface {
	OwnersWithReminderAt(ctx context.Context, hhmm string) ([]string, error)
}

// ReminderSender delivers the reminder to the owner's clients
type ReminderSender interface {
	SendToUser(userID string, event service.Event)
}

// ReminderDispatcher sends the daily reminder event. Each wall-clock minute
// is dispatched at most once, however often the ticker fires.
type ReminderDispatcher struct {
	owners   ReminderOwners
	sender   ReminderSender
	location *time.Location
	interval time.Duration
	now      func() time.Time

	stopCh  chan struct{}
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
	last    string // last dispatched minute, "2006-01-02 15:04"
}

// ReminderDispatcherConfig holds configuration for the reminder dispatcher
type ReminderDispatcherConfig struct {
	Owners   ReminderOwners
	Sender   ReminderSender
	Location *time.Location   // reminder times are wall-clock times here; default UTC
	Interval time.Duration    // default 20s
	Now      func() time.Time // optional, defaults to time.Now
}

// NewReminderDispatcher creates a new reminder dispatcher job
func NewReminderDispatcher(cfg ReminderDispatcherConfig) *ReminderDispatcher {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Interval == 0 {
		cfg.Interval = 20 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &ReminderDispatcher{
		owners:   cfg.Owners,
		sender:   cfg.Sender,
		location: cfg.Location,
		interval: cfg.Interval,
		now:      cfg.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the reminder dispatcher job
func (d *ReminderDispatcher) Start() {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.mu.Unlock()

	d.wg.Add(1)
	go d.run()
	slog.Info("reminder dispatcher started",
		slog.Duration("interval", d.interval),
		slog.String("location", d.location.String()),
	)
}

// Stop gracefully stops the reminder dispatcher job
func (d *ReminderDispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	d.mu.Unlock()

	close(d.stopCh)
	d.wg.Wait()
	slog.Info("reminder dispatcher stopped")
}

// IsRunning returns whether the dispatcher is running
func (d *ReminderDispatcher) IsRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

func (d *ReminderDispatcher) run() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), d.interval)
			if _, err := d.RunOnce(ctx); err != nil {
				slog.Error("reminder dispatch failed", slog.String("error", err.Error()))
			}
			cancel()
		case <-d.stopCh:
			return
		}
	}
}

// RunOnce dispatches the reminders due at the current minute and returns
// how many owners were notified. A minute already dispatched is skipped.
func (d *ReminderDispatcher) RunOnce(ctx context.Context) (int, error) {
	local := d.now().In(d.location)
	minute := local.Format("2006-01-02 15:04")

	d.mu.Lock()
	if minute == d.last {
		d.mu.Unlock()
		return 0, nil
	}
	d.mu.Unlock()

	hhmm := local.Format("15:04")
	owners, err := d.owners.OwnersWithReminderAt(ctx, hhmm)
	if err != nil {
		return 0, err
	}

	for _, ownerID := range owners {
		d.sender.SendToUser(ownerID, service.Event{
			Type: service.EventReminder,
			Data: map[string]string{"time": hhmm, "date": local.Format("2006-01-02")},
		})
	}

	d.mu.Lock()
	d.last = minute
	d.mu.Unlock()

	if len(owners) > 0 {
		slog.Info("reminders dispatched", slog.String("time", hhmm), slog.Int("owners", len(owners)))
	}
	return len(owners), nil
}

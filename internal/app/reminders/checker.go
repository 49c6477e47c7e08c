// Package reminders sends the daily check-in and upcoming-task
// notifications.
package reminders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PabloGalante/serene/internal/domain"
	"github.com/PabloGalante/serene/internal/observability"
)

const (
	CheckInHour = 9
	TaskLead    = 15 * time.Minute
)

// Checker remembers what it already sent for the life of the process.
type Checker struct {
	notifier domain.Notifier
	loc      *time.Location

	mu          sync.Mutex
	lastCheckIn string
	notified    map[string]bool
}

func NewChecker(notifier domain.Notifier, loc *time.Location) *Checker {
	if loc == nil {
		loc = time.Local
	}
	return &Checker{
		notifier: notifier,
		loc:      loc,
		notified: make(map[string]bool),
	}
}

// Check sends whatever is due at now and returns how many notifications
// went out. Nothing is sent without notification permission.
func (c *Checker) Check(ctx context.Context, tasks []domain.Task, now time.Time) (int, error) {
	granted, err := c.notifier.RequestPermission(ctx)
	if err != nil {
		return 0, fmt.Errorf("notification permission: %w", err)
	}
	if !granted {
		return 0, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	local := now.In(c.loc)
	sent := 0

	today := local.Format("2006-01-02")
	if local.Hour() == CheckInHour && c.lastCheckIn != today {
		if err := c.notifier.Send(ctx, "Daily Wellness Check-in", "How are you feeling today? Take a moment to log your mood."); err != nil {
			return sent, err
		}
		c.lastCheckIn = today
		sent++
	}

	for _, t := range tasks {
		if t.Completed || c.notified[t.ID] {
			continue
		}
		due, ok := t.Due(c.loc)
		if !ok {
			continue
		}
		until := due.Sub(now)
		if until <= 0 || until > TaskLead {
			continue
		}
		body := fmt.Sprintf("This task is due at %s.", due.In(c.loc).Format("15:04"))
		if err := c.notifier.Send(ctx, "Upcoming Task: "+t.Title, body); err != nil {
			return sent, err
		}
		c.notified[t.ID] = true
		sent++
	}
	return sent, nil
}

// Run checks immediately and then every interval until ctx is done.
func (c *Checker) Run(ctx context.Context, load func(context.Context) ([]domain.Task, error), interval time.Duration) {
	log := observability.LoggerFromContext(ctx).With("component", "reminders")
	log.Info("reminder loop started", "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		c.tick(ctx, load)
		select {
		case <-ctx.Done():
			log.Info("reminder loop stopped")
			return
		case <-ticker.C:
		}
	}
}

func (c *Checker) tick(ctx context.Context, load func(context.Context) ([]domain.Task, error)) {
	log := observability.LoggerFromContext(ctx)

	tasks, err := load(ctx)
	if err != nil {
		log.Warn("loading tasks for reminders failed", "error", err)
		tasks = nil
	}
	sent, err := c.Check(ctx, tasks, time.Now())
	if err != nil {
		log.Warn("reminder check failed", "error", err)
	}
	if sent > 0 {
		log.Info("reminders sent", "count", sent)
	}
}

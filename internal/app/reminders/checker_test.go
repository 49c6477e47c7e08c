package reminders_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/PabloGalante/serene/internal/app/reminders"
	"github.com/PabloGalante/serene/internal/domain"
)

type recordingNotifier struct {
	mu      sync.Mutex
	granted bool
	titles  []string
}

func (n *recordingNotifier) RequestPermission(context.Context) (bool, error) {
	return n.granted, nil
}

func (n *recordingNotifier) Send(_ context.Context, title, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.titles = append(n.titles, title)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.titles)
}

func TestDailyCheckInOncePerDay(t *testing.T) {
	ctx := context.Background()
	n := &recordingNotifier{granted: true}
	c := reminders.NewChecker(n, time.UTC)

	morning := time.Date(2026, 10, 19, 9, 5, 0, 0, time.UTC)
	for _, now := range []time.Time{
		morning.Add(-10 * time.Minute), // 8:55
		morning,
		morning.Add(30 * time.Minute),
		morning.Add(24 * time.Hour),
	} {
		if _, err := c.Check(ctx, nil, now); err != nil {
			t.Fatal(err)
		}
	}

	if n.count() != 2 {
		t.Errorf("expected one check-in per day, got %v", n.titles)
	}
}

func TestTaskReminderWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 19, 14, 0, 0, 0, time.UTC)
	at := func(d time.Duration) string { return now.Add(d).Format(time.RFC3339) }

	tasks := []domain.Task{
		{ID: "soon", Title: "Call mom", DueDate: at(10 * time.Minute)},
		{ID: "edge", Title: "Edge", DueDate: at(15 * time.Minute)},
		{ID: "later", Title: "Later", DueDate: at(16 * time.Minute)},
		{ID: "past", Title: "Past", DueDate: at(-time.Minute)},
		{ID: "done", Title: "Done", DueDate: at(5 * time.Minute), Completed: true},
		{ID: "none", Title: "No date"},
	}

	n := &recordingNotifier{granted: true}
	c := reminders.NewChecker(n, time.UTC)

	sent, err := c.Check(ctx, tasks, now)
	if err != nil {
		t.Fatal(err)
	}
	if sent != 2 {
		t.Fatalf("expected 2 reminders, got %d: %v", sent, n.titles)
	}
	if n.titles[0] != "Upcoming Task: Call mom" || n.titles[1] != "Upcoming Task: Edge" {
		t.Errorf("unexpected titles %v", n.titles)
	}

	sent, _ = c.Check(ctx, tasks, now.Add(time.Minute))
	if sent != 1 {
		t.Errorf("only the task entering the window should be sent, got %d", sent)
	}
}

func TestNoPermissionNoNotifications(t *testing.T) {
	n := &recordingNotifier{granted: false}
	c := reminders.NewChecker(n, time.UTC)

	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	tasks := []domain.Task{{ID: "1", Title: "x", DueDate: now.Add(5 * time.Minute).Format(time.RFC3339)}}
	sent, err := c.Check(context.Background(), tasks, now)
	if err != nil || sent != 0 || n.count() != 0 {
		t.Errorf("expected nothing sent, got %d, %v", sent, err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	n := &recordingNotifier{granted: true}
	c := reminders.NewChecker(n, time.UTC)

	loaded := make(chan struct{}, 10)
	done := make(chan struct{})
	go func() {
		c.Run(ctx, func(context.Context) ([]domain.Task, error) {
			loaded <- struct{}{}
			return nil, nil
		}, time.Hour)
		close(done)
	}()

	<-loaded
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

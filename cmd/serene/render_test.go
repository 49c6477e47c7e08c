package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/PabloGalante/serene/internal/app/activity"
	"github.com/PabloGalante/serene/internal/domain"
)

func TestRenderYAMLUsesJSONNames(t *testing.T) {
	var buf bytes.Buffer
	entry := domain.BreathingSession{ID: "b1", DurationSeconds: 60}
	if err := render(&buf, "yaml", entry); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "durationSeconds: 60") {
		t.Errorf("unexpected yaml:\n%s", buf.String())
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	if err := render(&bytes.Buffer{}, "xml", nil); err == nil {
		t.Error("expected an error for xml")
	}
}

func TestPrintFeed(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	src := activity.Sources{
		Moods: []domain.MoodEntry{{ID: "m1", Mood: domain.MoodCalm, Timestamp: domain.MillisOf(now.Add(-time.Hour))}},
	}
	f := activity.BuildFeed(src, activity.FeedOptions{Now: now, Location: time.UTC})

	var buf bytes.Buffer
	printFeed(&buf, f, time.UTC)
	out := buf.String()
	if !strings.HasPrefix(out, "Today\n") || !strings.Contains(out, "11:00") || !strings.Contains(out, "Mood Logged: Calm") {
		t.Errorf("unexpected output:\n%s", out)
	}

	buf.Reset()
	printFeed(&buf, activity.Feed{}, time.UTC)
	if !strings.Contains(buf.String(), "No activity yet.") {
		t.Errorf("unexpected empty output %q", buf.String())
	}
}

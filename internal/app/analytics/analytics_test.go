package analytics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/PabloGalante/serene/internal/app/analytics"
	"github.com/PabloGalante/serene/internal/domain"
)

var now = time.Date(2026, time.October, 19, 15, 0, 0, 0, time.UTC)

func TestMoodFrequency_Ranges(t *testing.T) {
	moods := []domain.MoodEntry{
		{Mood: domain.MoodHappy, Timestamp: domain.MillisOf(now.Add(-time.Hour))},
		{Mood: domain.MoodHappy, Timestamp: domain.MillisOf(now.AddDate(0, 0, -3))},
		{Mood: domain.MoodSad, Timestamp: domain.MillisOf(now.AddDate(0, 0, -20))},
		{Mood: domain.MoodAngry, Timestamp: domain.MillisOf(now.AddDate(0, -6, 0))},
		{Mood: domain.MoodCalm, Timestamp: domain.MillisOf(now.AddDate(-2, 0, 0))},
	}

	tests := []struct {
		r     analytics.TimeRange
		total int
	}{
		{analytics.RangeDay, 1},
		{analytics.RangeWeek, 2},
		{analytics.RangeMonth, 3},
		{analytics.RangeYear, 4},
		{analytics.RangeAll, 5},
	}

	for _, tt := range tests {
		t.Run(string(tt.r), func(t *testing.T) {
			got := analytics.MoodFrequency(moods, tt.r, now, time.UTC)
			if len(got) != len(domain.MoodTypes) {
				t.Fatalf("expected %d buckets, got %d", len(domain.MoodTypes), len(got))
			}
			total := 0
			for i, c := range got {
				if c.Mood != domain.MoodTypes[i] {
					t.Errorf("bucket %d: got %s, want %s", i, c.Mood, domain.MoodTypes[i])
				}
				if c.Color == "" {
					t.Errorf("bucket %s has no color", c.Mood)
				}
				total += c.Count
			}
			if total != tt.total {
				t.Errorf("expected %d moods, got %d", tt.total, total)
			}
		})
	}
}

func TestSentimentBreakdown(t *testing.T) {
	if got := analytics.SentimentBreakdown([]domain.JournalEntry{{ID: "x"}}); len(got) != 0 {
		t.Fatalf("expected no data without sentiment, got %v", got)
	}

	journals := []domain.JournalEntry{
		{Sentiment: &domain.SentimentAnalysis{Label: domain.SentimentPositive}},
		{Sentiment: &domain.SentimentAnalysis{Label: domain.SentimentPositive}},
		{Sentiment: &domain.SentimentAnalysis{Label: domain.SentimentNegative}},
		{},
	}
	got := analytics.SentimentBreakdown(journals)
	want := map[domain.SentimentLabel]int{
		domain.SentimentPositive: 2,
		domain.SentimentNeutral:  0,
		domain.SentimentNegative: 1,
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 labels, got %d", len(got))
	}
	for _, c := range got {
		if c.Count != want[c.Label] {
			t.Errorf("%s: got %d, want %d", c.Label, c.Count, want[c.Label])
		}
	}
}

func TestParseTimeRange(t *testing.T) {
	if r, err := analytics.ParseTimeRange(""); err != nil || r != analytics.RangeWeek {
		t.Errorf("empty range: got %s, %v", r, err)
	}
	if _, err := analytics.ParseTimeRange("decade"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

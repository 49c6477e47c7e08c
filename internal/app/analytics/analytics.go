// Package analytics computes the chart data shown next to the activity feed.
package analytics

import (
	"fmt"
	"time"

	"github.com/PabloGalante/serene/internal/domain"
)

type TimeRange string

const (
	RangeDay   TimeRange = "day"
	RangeWeek  TimeRange = "week"
	RangeMonth TimeRange = "month"
	RangeYear  TimeRange = "year"
	RangeAll   TimeRange = "all"
)

// ParseTimeRange accepts the range names used by clients; empty means week.
func ParseTimeRange(s string) (TimeRange, error) {
	switch r := TimeRange(s); r {
	case "":
		return RangeWeek, nil
	case RangeDay, RangeWeek, RangeMonth, RangeYear, RangeAll:
		return r, nil
	}
	return "", fmt.Errorf("unknown time range %q: %w", s, domain.ErrInvalidInput)
}

// Cutoff returns the earliest instant included in r. The zero time means
// there is no lower bound.
func (r TimeRange) Cutoff(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	switch r {
	case RangeDay:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	case RangeMonth:
		return now.AddDate(0, -1, 0)
	case RangeYear:
		return now.AddDate(-1, 0, 0)
	case RangeAll:
		return time.Time{}
	default:
		return now.AddDate(0, 0, -7)
	}
}

var moodColors = map[domain.MoodType]string{
	domain.MoodHappy:   "#f59e0b",
	domain.MoodCalm:    "#14b8a6",
	domain.MoodNeutral: "#94a3b8",
	domain.MoodSad:     "#3b82f6",
	domain.MoodAnxious: "#8b5cf6",
	domain.MoodAngry:   "#f43f5e",
}

// MoodColor returns the chart colour of a mood.
func MoodColor(m domain.MoodType) string {
	if c, ok := moodColors[m]; ok {
		return c
	}
	return "#cbd5e1"
}

type MoodCount struct {
	Mood  domain.MoodType `json:"name"`
	Count int             `json:"count"`
	Color string          `json:"color"`
}

// MoodFrequency counts moods logged within r. Every mood is present in the
// result, in domain.MoodTypes order, even with a zero count.
func MoodFrequency(moods []domain.MoodEntry, r TimeRange, now time.Time, loc *time.Location) []MoodCount {
	cutoff := r.Cutoff(now, loc)
	counts := make(map[domain.MoodType]int, len(domain.MoodTypes))
	for _, m := range moods {
		if !cutoff.IsZero() && m.Timestamp < domain.MillisOf(cutoff) {
			continue
		}
		counts[m.Mood]++
	}

	out := make([]MoodCount, 0, len(domain.MoodTypes))
	for _, mt := range domain.MoodTypes {
		out = append(out, MoodCount{Mood: mt, Count: counts[mt], Color: MoodColor(mt)})
	}
	return out
}

type SentimentCount struct {
	Label domain.SentimentLabel `json:"name"`
	Count int                   `json:"count"`
}

// SentimentBreakdown counts journal tones. It returns an empty slice when no
// journal has been analysed yet.
func SentimentBreakdown(journals []domain.JournalEntry) []SentimentCount {
	labels := []domain.SentimentLabel{domain.SentimentPositive, domain.SentimentNeutral, domain.SentimentNegative}
	counts := map[domain.SentimentLabel]int{}
	total := 0
	for _, j := range journals {
		if j.Sentiment == nil {
			continue
		}
		switch j.Sentiment.Label {
		case domain.SentimentPositive, domain.SentimentNeutral, domain.SentimentNegative:
			counts[j.Sentiment.Label]++
			total++
		}
	}

	out := []SentimentCount{}
	if total == 0 {
		return out
	}
	for _, l := range labels {
		out = append(out, SentimentCount{Label: l, Count: counts[l]})
	}
	return out
}

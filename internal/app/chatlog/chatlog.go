// Package chatlog handles the day-bucketed storage layout of chat history.
package chatlog

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/PabloGalante/serene/internal/domain"
)

const dayKeyLayout = "2006-01-02"

// DayKey names the daily_chats document a message belongs to: its local
// calendar date as YYYY-MM-DD.
func DayKey(ts domain.Millis, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return ts.Time(loc).Format(dayKeyLayout)
}

// Flatten merges daily documents into one message list. Days are read in
// ascending date order; a message id seen again replaces the earlier value
// in place (last write wins).
func Flatten(days []domain.DailyChat) []domain.ChatMessage {
	ordered := slices.Clone(days)
	slices.SortStableFunc(ordered, func(a, b domain.DailyChat) int {
		return strings.Compare(a.Date, b.Date)
	})

	out := []domain.ChatMessage{}
	pos := map[string]int{}
	for _, d := range ordered {
		for _, m := range d.Messages {
			if i, ok := pos[m.ID]; ok {
				out[i] = m
				continue
			}
			pos[m.ID] = len(out)
			out = append(out, m)
		}
	}
	return out
}

// Recent returns the last n messages in timestamp order.
func Recent(messages []domain.ChatMessage, n int) []domain.ChatMessage {
	sorted := slices.Clone(messages)
	slices.SortStableFunc(sorted, func(a, b domain.ChatMessage) int {
		return cmp.Compare(a.Timestamp, b.Timestamp)
	})
	if n > 0 && len(sorted) > n {
		return sorted[len(sorted)-n:]
	}
	return sorted
}

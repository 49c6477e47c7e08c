// Package sessionize groups a flat chat history into conversations.
package sessionize

import (
	"cmp"
	"slices"
	"time"

	"github.com/PabloGalante/serene/internal/domain"
)

// Threshold is the inactivity gap that closes a conversation.
// A gap equal to the threshold starts a new session.
const Threshold = 60 * time.Minute

// Segment splits messages into sessions. Consecutive messages (in timestamp
// order) that are less than Threshold apart share a session. Sessions are
// returned most recent first, ordered by their last message.
//
// The input slice is not modified.
func Segment(messages []domain.ChatMessage) []domain.ChatSession {
	sessions := []domain.ChatSession{}
	if len(messages) == 0 {
		return sessions
	}

	sorted := slices.Clone(messages)
	slices.SortStableFunc(sorted, func(a, b domain.ChatMessage) int {
		return cmp.Compare(a.Timestamp, b.Timestamp)
	})

	gap := domain.Millis(Threshold.Milliseconds())
	current := domain.ChatSession{sorted[0]}
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Timestamp-sorted[i-1].Timestamp < gap {
			current = append(current, sorted[i])
			continue
		}
		sessions = append(sessions, current)
		current = domain.ChatSession{sorted[i]}
	}
	sessions = append(sessions, current)

	slices.SortStableFunc(sessions, func(a, b domain.ChatSession) int {
		return cmp.Compare(b.Timestamp(), a.Timestamp())
	})
	return sessions
}

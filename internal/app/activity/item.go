package activity

import (
	"fmt"

	"github.com/PabloGalante/serene/internal/domain"
)

// Type tags the source collection an Item comes from.
type Type string

const (
	TypeMood      Type = "mood"
	TypeJournal   Type = "journal"
	TypeChat      Type = "chat"
	TypeBreathing Type = "breathing"
	TypeTask      Type = "task"
	TypeSleep     Type = "sleep"
)

// Types lists every activity type in merge order.
var Types = []Type{TypeMood, TypeJournal, TypeBreathing, TypeChat, TypeTask, TypeSleep}

func (t Type) Valid() bool {
	for _, v := range Types {
		if t == v {
			return true
		}
	}
	return false
}

// Payload is the source record behind an Item. Exactly one implementation
// exists per Type, so a type switch over Payload is exhaustive.
type Payload interface {
	Type() Type
}

type MoodPayload struct {
	Entry domain.MoodEntry `json:"entry"`
}

type JournalPayload struct {
	Entry domain.JournalEntry `json:"entry"`
}

type BreathingPayload struct {
	Session domain.BreathingSession `json:"session"`
}

// ChatPayload carries the whole conversation, not a single message.
type ChatPayload struct {
	Session domain.ChatSession `json:"session"`
}

type TaskPayload struct {
	Task domain.Task `json:"task"`
}

type SleepPayload struct {
	Entry domain.SleepEntry `json:"entry"`
}

func (MoodPayload) Type() Type      { return TypeMood }
func (JournalPayload) Type() Type   { return TypeJournal }
func (BreathingPayload) Type() Type { return TypeBreathing }
func (ChatPayload) Type() Type      { return TypeChat }
func (TaskPayload) Type() Type      { return TypeTask }
func (SleepPayload) Type() Type     { return TypeSleep }

// Item is one normalized row of the activity feed.
type Item struct {
	ID        string        `json:"id"`
	Type      Type          `json:"type"`
	Timestamp domain.Millis `json:"timestamp"`
	Title     string        `json:"title"`
	Subtitle  string        `json:"subtitle"`
	Icon      string        `json:"icon"`
	Color     string        `json:"color"`
	Payload   Payload       `json:"data"`
}

// Filter selects which items a feed shows.
type Filter string

const FilterAll Filter = "all"

// ParseFilter validates a filter coming from a transport layer.
// The empty string means FilterAll.
func ParseFilter(s string) (Filter, error) {
	if s == "" || Filter(s) == FilterAll {
		return FilterAll, nil
	}
	if !Type(s).Valid() {
		return "", fmt.Errorf("unknown activity filter %q: %w", s, domain.ErrInvalidInput)
	}
	return Filter(s), nil
}

func (f Filter) matches(t Type) bool {
	return f == FilterAll || f == "" || Type(f) == t
}

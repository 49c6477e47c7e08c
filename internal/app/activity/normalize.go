package activity

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/PabloGalante/serene/internal/app/sessionize"
	"github.com/PabloGalante/serene/internal/domain"
)

const subtitlePreviewRunes = 60

// Sources is a snapshot of the six collections the feed is built from.
// Chats is the flat, de-duplicated message history.
type Sources struct {
	Moods     []domain.MoodEntry
	Journals  []domain.JournalEntry
	Breathing []domain.BreathingSession
	Chats     []domain.ChatMessage
	Tasks     []domain.Task
	Sleep     []domain.SleepEntry
}

// Normalize maps every record to an Item and returns them newest first.
// Items with equal timestamps keep the merge order of Types.
func Normalize(src Sources) []Item {
	sessions := sessionize.Segment(src.Chats)

	items := make([]Item, 0, len(src.Moods)+len(src.Journals)+len(src.Breathing)+
		len(sessions)+len(src.Tasks)+len(src.Sleep))

	for _, m := range src.Moods {
		items = append(items, moodItem(m))
	}
	for _, j := range src.Journals {
		items = append(items, journalItem(j))
	}
	for _, b := range src.Breathing {
		items = append(items, breathingItem(b))
	}
	for _, s := range sessions {
		items = append(items, chatItem(s))
	}
	for _, t := range src.Tasks {
		items = append(items, taskItem(t))
	}
	for _, s := range src.Sleep {
		items = append(items, sleepItem(s))
	}

	slices.SortStableFunc(items, func(a, b Item) int {
		switch {
		case a.Timestamp > b.Timestamp:
			return -1
		case a.Timestamp < b.Timestamp:
			return 1
		}
		return 0
	})
	return items
}

func moodItem(m domain.MoodEntry) Item {
	return Item{
		ID:        "m-" + m.ID,
		Type:      TypeMood,
		Timestamp: m.Timestamp,
		Title:     "Mood Logged: " + string(m.Mood),
		Subtitle:  m.Note,
		Icon:      "smile",
		Color:     "amber",
		Payload:   MoodPayload{Entry: m},
	}
}

func journalItem(j domain.JournalEntry) Item {
	title := j.Title
	if title == "" {
		title = "Journal Entry"
	}
	return Item{
		ID:        "j-" + j.ID,
		Type:      TypeJournal,
		Timestamp: j.Timestamp,
		Title:     title,
		Subtitle:  preview(j.Content, subtitlePreviewRunes),
		Icon:      "book-open",
		Color:     "indigo",
		Payload:   JournalPayload{Entry: j},
	}
}

func breathingItem(b domain.BreathingSession) Item {
	return Item{
		ID:        "b-" + b.ID,
		Type:      TypeBreathing,
		Timestamp: b.Timestamp,
		Title:     "Breathing Focus",
		Subtitle:  fmt.Sprintf("%dm %ds session", b.DurationSeconds/60, b.DurationSeconds%60),
		Icon:      "wind",
		Color:     "teal",
		Payload:   BreathingPayload{Session: b},
	}
}

func chatItem(s domain.ChatSession) Item {
	previewText := "Session started"
	for _, m := range s {
		if m.Role == domain.RoleUser {
			previewText = `"` + m.Text + `"`
			break
		}
	}
	return Item{
		ID:        "session-" + s.First().ID,
		Type:      TypeChat,
		Timestamp: s.Timestamp(),
		Title:     "Voice/Chat Session",
		Subtitle:  fmt.Sprintf("%d messages • %s", len(s), previewText),
		Icon:      "message-circle",
		Color:     "blue",
		Payload:   ChatPayload{Session: s},
	}
}

func taskItem(t domain.Task) Item {
	return Item{
		ID:        "t-" + t.ID,
		Type:      TypeTask,
		Timestamp: TaskCreatedAt(t),
		Title:     "Task Created: " + t.Title,
		Subtitle:  t.Category,
		Icon:      "check-square",
		Color:     "emerald",
		Payload:   TaskPayload{Task: t},
	}
}

func sleepItem(s domain.SleepEntry) Item {
	return Item{
		ID:        "s-" + s.ID,
		Type:      TypeSleep,
		Timestamp: s.Timestamp,
		Title:     "Sleep Tracked: " + strconv.FormatFloat(s.Hours, 'f', -1, 64) + "h",
		Subtitle:  string(s.Quality) + " Quality",
		Icon:      "moon",
		Color:     "indigo",
		Payload:   SleepPayload{Entry: s},
	}
}

// TaskCreatedAt parses the creation time encoded in a task id.
// Ids that are not decimal numbers sort as the epoch.
func TaskCreatedAt(t domain.Task) domain.Millis {
	ms, err := strconv.ParseInt(t.ID, 10, 64)
	if err != nil {
		return 0
	}
	return domain.Millis(ms)
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

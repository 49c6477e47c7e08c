package domain

import "time"

// MoodType is one of the six moods a user can log.
type MoodType string

const (
	MoodHappy   MoodType = "Happy"
	MoodCalm    MoodType = "Calm"
	MoodNeutral MoodType = "Neutral"
	MoodSad     MoodType = "Sad"
	MoodAnxious MoodType = "Anxious"
	MoodAngry   MoodType = "Angry"
)

// MoodTypes lists every mood in display order.
var MoodTypes = []MoodType{MoodHappy, MoodCalm, MoodNeutral, MoodSad, MoodAnxious, MoodAngry}

func (m MoodType) Valid() bool {
	for _, t := range MoodTypes {
		if m == t {
			return true
		}
	}
	return false
}

type MoodEntry struct {
	ID        string   `json:"id"`
	Mood      MoodType `json:"mood"`
	Note      string   `json:"note"`
	Timestamp Millis   `json:"timestamp"`
}

type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "Positive"
	SentimentNeutral  SentimentLabel = "Neutral"
	SentimentNegative SentimentLabel = "Negative"
)

// SentimentAnalysis is the AI-produced tone of a piece of text.
// Score goes from -1 (negative) to 1 (positive).
type SentimentAnalysis struct {
	Label    SentimentLabel `json:"label"`
	Score    float64        `json:"score"`
	Emotions []string       `json:"emotions"`
	Keywords []string       `json:"keywords"`
}

type JournalEntry struct {
	ID        string             `json:"id"`
	Title     string             `json:"title"`
	Content   string             `json:"content"`
	Timestamp Millis             `json:"timestamp"`
	Tags      []string           `json:"tags,omitempty"`
	Sentiment *SentimentAnalysis `json:"sentiment,omitempty"`
}

type BreathingSession struct {
	ID              string `json:"id"`
	Timestamp       Millis `json:"timestamp"`
	DurationSeconds int    `json:"durationSeconds"`
}

type SleepQuality string

const (
	SleepExcellent SleepQuality = "Excellent"
	SleepGood      SleepQuality = "Good"
	SleepFair      SleepQuality = "Fair"
	SleepPoor      SleepQuality = "Poor"
)

func (q SleepQuality) Valid() bool {
	switch q {
	case SleepExcellent, SleepGood, SleepFair, SleepPoor:
		return true
	}
	return false
}

type SleepEntry struct {
	ID        string       `json:"id"`
	Timestamp Millis       `json:"timestamp"`
	Hours     float64      `json:"hours"`
	Quality   SleepQuality `json:"quality"`
}

// Task is a to-do item. Its ID is the creation time in milliseconds
// rendered as a decimal string, and doubles as its creation timestamp.
type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Completed   bool   `json:"completed"`
	DueDate     string `json:"dueDate,omitempty"`
	Description string `json:"description,omitempty"`
	Reflection  string `json:"reflection,omitempty"`
}

var dueDateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// Due parses DueDate. ISO timestamps carry their own offset; the shorter
// forms are read in loc.
func (t Task) Due(loc *time.Location) (time.Time, bool) {
	if t.DueDate == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dueDateLayouts {
		if d, err := time.ParseInLocation(layout, t.DueDate, loc); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

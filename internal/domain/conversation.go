package domain

// ChatMessage is a single turn of a conversation with the assistant.
type ChatMessage struct {
	ID        string             `json:"id"`
	Role      Role               `json:"role"`
	Text      string             `json:"text"`
	Timestamp Millis             `json:"timestamp"`
	Sentiment *SentimentAnalysis `json:"sentiment,omitempty"`
	// Intent is the conversation phase that produced a model message.
	Intent string `json:"intent,omitempty"`
	// Truncated marks a model reply cut short by a failing stream.
	Truncated bool `json:"truncated,omitempty"`
}

// ChatSession is a non-empty, time-ordered run of messages that belong to
// the same conversation.
type ChatSession []ChatMessage

// First returns the earliest message of the session.
func (s ChatSession) First() ChatMessage {
	return s[0]
}

// Last returns the most recent message of the session.
func (s ChatSession) Last() ChatMessage {
	return s[len(s)-1]
}

// Timestamp is the sort key of a session: its last message's timestamp.
func (s ChatSession) Timestamp() Millis {
	return s.Last().Timestamp
}

// DailyChat is the stored document grouping every message of a local day.
type DailyChat struct {
	Date        string        `json:"date"`
	Messages    []ChatMessage `json:"messages"`
	LastUpdated Millis        `json:"lastUpdated"`
}

// Memory is a lasting fact about the user learned from a conversation.
type Memory struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	CreatedAt Millis `json:"createdAt"`
}

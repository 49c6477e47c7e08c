package domain

import "context"

// Collection names a per-user collection in the document store.
type Collection string

const (
	CollectionMoods      Collection = "moods"
	CollectionJournals   Collection = "journals"
	CollectionTasks      Collection = "tasks"
	CollectionBreathing  Collection = "breathing"
	CollectionSleep      Collection = "sleep"
	CollectionDailyChats Collection = "daily_chats"
	CollectionSettings   Collection = "settings"
	CollectionMemories   Collection = "memories"
)

// Document is a stored record as a generic field map.
type Document map[string]any

// DocumentStore defines the persistence of every user collection.
// Documents live under users/{userID}/{collection}/{id}.
type DocumentStore interface {
	GetAll(ctx context.Context, userID UserID, col Collection) ([]Document, error)
	// GetOne returns ErrNotFound when the document does not exist.
	GetOne(ctx context.Context, userID UserID, col Collection, id string) (Document, error)
	Put(ctx context.Context, userID UserID, col Collection, id string, doc Document) error
	Delete(ctx context.Context, userID UserID, col Collection, id string) error

	// AppendChatMessage adds msg to the daily_chats document named dayKey,
	// creating it if needed. Appending a message equal to one already stored
	// is a no-op.
	AppendChatMessage(ctx context.Context, userID UserID, dayKey string, msg Document) error
}

// ChatRequest is everything the AI needs to answer the latest user message.
type ChatRequest struct {
	System  string
	History []ChatMessage
	Message string
}

type GenerateOptions struct {
	// JSON asks the model to answer with a JSON document only.
	JSON bool
}

// AIClient defines how the core application talks to the AI backend.
type AIClient interface {
	// StreamChat calls onChunk with each piece of the reply, in order.
	StreamChat(ctx context.Context, req ChatRequest, onChunk func(string)) error
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// Cipher seals sensitive payloads before they reach storage.
type Cipher interface {
	Seal(plaintext []byte) (string, error)
	Open(ciphertext string) ([]byte, error)
}

// Notifier delivers user-facing notifications.
type Notifier interface {
	RequestPermission(ctx context.Context) (bool, error)
	Send(ctx context.Context, title, body string) error
}

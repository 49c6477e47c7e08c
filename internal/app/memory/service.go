// Package memory keeps the long-term facts the assistant has learned about
// each user and turns them into prompt context.
package memory

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/serene/internal/domain"
	"github.com/PabloGalante/serene/internal/observability"
)

// ExchangeSize is how many trailing messages are read when looking for
// new facts.
const ExchangeSize = 2

type Service struct {
	store domain.DocumentStore
	ai    domain.AIClient
	now   func() time.Time
	newID func() string
}

func NewService(store domain.DocumentStore, ai domain.AIClient) *Service {
	return &Service{
		store: store,
		ai:    ai,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// List returns every memory, oldest first.
func (s *Service) List(ctx context.Context, userID domain.UserID) ([]domain.Memory, error) {
	docs, err := s.store.GetAll(ctx, userID, domain.CollectionMemories)
	if err != nil {
		return nil, fmt.Errorf("load memories: %w", err)
	}
	mems, err := domain.DecodeAll[domain.Memory](docs)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(mems, func(a, b domain.Memory) int {
		return cmp.Compare(a.CreatedAt, b.CreatedAt)
	})
	return mems, nil
}

// Delete forgets one memory. Unknown ids are ErrNotFound.
func (s *Service) Delete(ctx context.Context, userID domain.UserID, id string) error {
	if _, err := s.store.GetOne(ctx, userID, domain.CollectionMemories, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, userID, domain.CollectionMemories, id)
}

// Context renders the memories as a block for the system prompt. It is
// empty when nothing is known yet.
func (s *Service) Context(ctx context.Context, userID domain.UserID) (string, error) {
	mems, err := s.List(ctx, userID)
	if err != nil {
		return "", err
	}
	return Render(mems), nil
}

func Render(mems []domain.Memory) string {
	if len(mems) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("LONG TERM MEMORY (Facts about the user):")
	for _, m := range mems {
		b.WriteString("\n- ")
		b.WriteString(m.Text)
	}
	return b.String()
}

// Extract asks the model for new lasting facts in the last exchange and
// stores those not already known. It returns the memories it added.
func (s *Service) Extract(ctx context.Context, userID domain.UserID, history []domain.ChatMessage) ([]domain.Memory, error) {
	if len(history) == 0 {
		return nil, nil
	}
	log := observability.LoggerFromContext(ctx).With("component", "memory")

	existing, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	known := make([]string, 0, len(existing))
	for _, m := range existing {
		known = append(known, m.Text)
	}
	knownJSON, _ := json.Marshal(known)

	var convo []string
	for _, m := range history[max(0, len(history)-ExchangeSize):] {
		convo = append(convo, string(m.Role)+": "+m.Text)
	}

	prompt := fmt.Sprintf(`Analyze this conversation snippet for PERMANENT facts about the User (dates, names, preferences, hobbies, job, health info).

Conversation:
%s

Existing Memories:
%s

Task:
1. Identify any NEW facts that are not already in Existing Memories.
2. Ignore trivial things (e.g., "User said hello", "User asked about the weather").
3. Return strictly a JSON list of strings. Example: ["User owns a cat named Luna", "User finds rain relaxing"].
4. If no new facts, return [].`, strings.Join(convo, "\n"), knownJSON)

	text, err := s.ai.Generate(ctx, prompt, domain.GenerateOptions{JSON: true})
	if err != nil {
		return nil, fmt.Errorf("memory extraction: %w", err)
	}
	var facts []string
	if err := json.Unmarshal([]byte(stripFences(text)), &facts); err != nil {
		log.Warn("memory extraction returned no fact list", "error", err)
		return nil, nil
	}

	var added []domain.Memory
	for _, f := range facts {
		f = strings.TrimSpace(f)
		if f == "" || slices.Contains(known, f) {
			continue
		}
		m := domain.Memory{ID: s.newID(), Text: f, CreatedAt: domain.MillisOf(s.now())}
		doc, err := domain.Encode(m)
		if err != nil {
			return added, err
		}
		if err := s.store.Put(ctx, userID, domain.CollectionMemories, m.ID, doc); err != nil {
			return added, fmt.Errorf("save memory: %w", err)
		}
		known = append(known, f)
		added = append(added, m)
	}
	if len(added) > 0 {
		log.Info("memories extracted", "count", len(added))
	}
	return added, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

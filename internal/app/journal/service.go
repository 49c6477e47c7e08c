package journal

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/serene/internal/app/insights"
	"github.com/PabloGalante/serene/internal/domain"
	"github.com/PabloGalante/serene/internal/observability"
)

// DefaultLimit is used by List when no positive limit is given.
const DefaultLimit = 20

// Service holds the logic of writing and reading journal entries
type Service struct {
	store    domain.DocumentStore
	insights *insights.Service
	now      func() time.Time
	newID    func() string
}

func NewService(store domain.DocumentStore, ai domain.AIClient) *Service {
	return &Service{
		store:    store,
		insights: insights.NewService(ai),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

type SaveInput struct {
	UserID domain.UserID
	// ID edits an existing entry when set.
	ID      string
	Title   string
	Content string
	Tags    []string
}

// Save writes an entry with its sentiment attached. Editing keeps the
// original timestamp.
func (s *Service) Save(ctx context.Context, in SaveInput) (*domain.JournalEntry, error) {
	content := strings.TrimSpace(in.Content)
	if in.UserID == "" || content == "" {
		return nil, fmt.Errorf("journal entry needs content: %w", domain.ErrInvalidInput)
	}

	entry := domain.JournalEntry{
		ID:        in.ID,
		Title:     strings.TrimSpace(in.Title),
		Content:   content,
		Timestamp: domain.MillisOf(s.now()),
		Tags:      in.Tags,
	}

	if entry.ID == "" {
		entry.ID = s.newID()
	} else {
		doc, err := s.store.GetOne(ctx, in.UserID, domain.CollectionJournals, entry.ID)
		switch {
		case err == nil:
			var prev domain.JournalEntry
			if err := domain.Decode(doc, &prev); err == nil {
				entry.Timestamp = prev.Timestamp
			}
		case !errors.Is(err, domain.ErrNotFound):
			return nil, err
		}
	}

	sentiment := s.insights.AnalyzeSentiment(ctx, content)
	entry.Sentiment = &sentiment

	doc, err := domain.Encode(entry)
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, in.UserID, domain.CollectionJournals, entry.ID, doc); err != nil {
		return nil, fmt.Errorf("save journal entry: %w", err)
	}

	observability.LoggerFromContext(ctx).Info("journal entry saved",
		"entry_id", entry.ID,
		"sentiment", string(sentiment.Label),
	)
	return &entry, nil
}

// List returns the last `limit` journal entries for a user, newest first.
// If limit <= 0, DefaultLimit is used.
func (s *Service) List(ctx context.Context, userID domain.UserID, limit int) ([]domain.JournalEntry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	entries, err := s.All(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// All returns every entry, newest first.
func (s *Service) All(ctx context.Context, userID domain.UserID) ([]domain.JournalEntry, error) {
	docs, err := s.store.GetAll(ctx, userID, domain.CollectionJournals)
	if err != nil {
		return nil, fmt.Errorf("load journals: %w", err)
	}
	entries, err := domain.DecodeAll[domain.JournalEntry](docs)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(entries, func(a, b domain.JournalEntry) int {
		return cmp.Compare(b.Timestamp, a.Timestamp)
	})
	return entries, nil
}

func (s *Service) Delete(ctx context.Context, userID domain.UserID, id string) error {
	return s.store.Delete(ctx, userID, domain.CollectionJournals, id)
}

// Package logbook records the quick trackers: moods, breathing sessions,
// sleep, and the user's task categories.
package logbook

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/serene/internal/domain"
)

const categoriesDoc = "categories"

var DefaultCategories = []string{"Personal", "Work", "Wellness"}

type Service struct {
	store domain.DocumentStore
	now   func() time.Time
	newID func() string
}

func NewService(store domain.DocumentStore) *Service {
	return &Service{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (s *Service) LogMood(ctx context.Context, userID domain.UserID, mood domain.MoodType, note string) (*domain.MoodEntry, error) {
	if !mood.Valid() {
		return nil, fmt.Errorf("mood %q: %w", mood, domain.ErrInvalidInput)
	}
	entry := domain.MoodEntry{
		ID:        s.newID(),
		Mood:      mood,
		Note:      strings.TrimSpace(note),
		Timestamp: domain.MillisOf(s.now()),
	}
	if err := put(ctx, s.store, userID, domain.CollectionMoods, entry.ID, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *Service) LogBreathing(ctx context.Context, userID domain.UserID, duration time.Duration) (*domain.BreathingSession, error) {
	secs := int(duration.Round(time.Second) / time.Second)
	if secs <= 0 {
		return nil, fmt.Errorf("breathing duration %s: %w", duration, domain.ErrInvalidInput)
	}
	session := domain.BreathingSession{
		ID:              s.newID(),
		Timestamp:       domain.MillisOf(s.now()),
		DurationSeconds: secs,
	}
	if err := put(ctx, s.store, userID, domain.CollectionBreathing, session.ID, session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Service) LogSleep(ctx context.Context, userID domain.UserID, hours float64, quality domain.SleepQuality) (*domain.SleepEntry, error) {
	if hours <= 0 || hours > 24 {
		return nil, fmt.Errorf("sleep hours %v: %w", hours, domain.ErrInvalidInput)
	}
	if !quality.Valid() {
		return nil, fmt.Errorf("sleep quality %q: %w", quality, domain.ErrInvalidInput)
	}
	entry := domain.SleepEntry{
		ID:        s.newID(),
		Timestamp: domain.MillisOf(s.now()),
		Hours:     hours,
		Quality:   quality,
	}
	if err := put(ctx, s.store, userID, domain.CollectionSleep, entry.ID, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Moods returns every mood entry, newest first.
func (s *Service) Moods(ctx context.Context, userID domain.UserID) ([]domain.MoodEntry, error) {
	return newestFirst(ctx, s.store, userID, domain.CollectionMoods, func(m domain.MoodEntry) domain.Millis { return m.Timestamp })
}

func (s *Service) BreathingSessions(ctx context.Context, userID domain.UserID) ([]domain.BreathingSession, error) {
	return newestFirst(ctx, s.store, userID, domain.CollectionBreathing, func(b domain.BreathingSession) domain.Millis { return b.Timestamp })
}

func (s *Service) SleepEntries(ctx context.Context, userID domain.UserID) ([]domain.SleepEntry, error) {
	return newestFirst(ctx, s.store, userID, domain.CollectionSleep, func(e domain.SleepEntry) domain.Millis { return e.Timestamp })
}

type categoryList struct {
	List []string `json:"list"`
}

// Categories returns the user's task categories, or the defaults when none
// were saved.
func (s *Service) Categories(ctx context.Context, userID domain.UserID) ([]string, error) {
	doc, err := s.store.GetOne(ctx, userID, domain.CollectionSettings, categoriesDoc)
	if errors.Is(err, domain.ErrNotFound) {
		return slices.Clone(DefaultCategories), nil
	}
	if err != nil {
		return nil, err
	}
	var c categoryList
	if err := domain.Decode(doc, &c); err != nil || len(c.List) == 0 {
		return slices.Clone(DefaultCategories), nil
	}
	return c.List, nil
}

// SaveCategories replaces the category list. Blank and repeated names are
// dropped.
func (s *Service) SaveCategories(ctx context.Context, userID domain.UserID, categories []string) ([]string, error) {
	var list []string
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c != "" && !slices.Contains(list, c) {
			list = append(list, c)
		}
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("at least one category is required: %w", domain.ErrInvalidInput)
	}
	if err := put(ctx, s.store, userID, domain.CollectionSettings, categoriesDoc, categoryList{List: list}); err != nil {
		return nil, err
	}
	return list, nil
}

func put(ctx context.Context, store domain.DocumentStore, userID domain.UserID, col domain.Collection, id string, v any) error {
	doc, err := domain.Encode(v)
	if err != nil {
		return err
	}
	if err := store.Put(ctx, userID, col, id, doc); err != nil {
		return fmt.Errorf("save %s: %w", col, err)
	}
	return nil
}

func newestFirst[T any](ctx context.Context, store domain.DocumentStore, userID domain.UserID, col domain.Collection, ts func(T) domain.Millis) ([]T, error) {
	docs, err := store.GetAll(ctx, userID, col)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", col, err)
	}
	out, err := domain.DecodeAll[T](docs)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(out, func(a, b T) int {
		return cmp.Compare(ts(b), ts(a))
	})
	return out, nil
}

// Package feed loads a user's records and turns them into the activity feed.
package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/PabloGalante/serene/internal/app/activity"
	"github.com/PabloGalante/serene/internal/app/sessionize"
	"github.com/PabloGalante/serene/internal/domain"
	"github.com/PabloGalante/serene/internal/observability"
)

// ChatHistory supplies the flattened chat log.
type ChatHistory interface {
	History(ctx context.Context, userID domain.UserID) ([]domain.ChatMessage, error)
}

type Service struct {
	store   domain.DocumentStore
	history ChatHistory
	loc     *time.Location
	now     func() time.Time
}

func NewService(store domain.DocumentStore, history ChatHistory, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{store: store, history: history, loc: loc, now: time.Now}
}

type Query struct {
	Filter string
	Limit  int
}

// Feed builds the grouped, paginated feed from a fresh snapshot of every
// source.
func (s *Service) Feed(ctx context.Context, userID domain.UserID, q Query) (activity.Feed, error) {
	filter, err := activity.ParseFilter(q.Filter)
	if err != nil {
		return activity.Feed{}, err
	}
	if q.Limit < 0 {
		return activity.Feed{}, fmt.Errorf("limit %d: %w", q.Limit, domain.ErrInvalidInput)
	}

	src, err := s.Sources(ctx, userID)
	if err != nil {
		return activity.Feed{}, err
	}

	feed := activity.BuildFeed(src, activity.FeedOptions{
		Filter:   filter,
		Limit:    q.Limit,
		Now:      s.now(),
		Location: s.loc,
	})

	observability.LoggerFromContext(ctx).Debug("feed built",
		"filter", string(filter),
		"total", feed.Total,
		"shown", feed.Len(),
	)
	return feed, nil
}

// Sources loads every collection the feed is built from.
func (s *Service) Sources(ctx context.Context, userID domain.UserID) (activity.Sources, error) {
	var (
		src activity.Sources
		err error
	)
	if src.Moods, err = load[domain.MoodEntry](ctx, s.store, userID, domain.CollectionMoods); err != nil {
		return src, err
	}
	if src.Journals, err = load[domain.JournalEntry](ctx, s.store, userID, domain.CollectionJournals); err != nil {
		return src, err
	}
	if src.Breathing, err = load[domain.BreathingSession](ctx, s.store, userID, domain.CollectionBreathing); err != nil {
		return src, err
	}
	if src.Tasks, err = load[domain.Task](ctx, s.store, userID, domain.CollectionTasks); err != nil {
		return src, err
	}
	if src.Sleep, err = load[domain.SleepEntry](ctx, s.store, userID, domain.CollectionSleep); err != nil {
		return src, err
	}
	if src.Chats, err = s.history.History(ctx, userID); err != nil {
		return src, err
	}
	return src, nil
}

// Sessions returns the chat sessions, newest first.
func (s *Service) Sessions(ctx context.Context, userID domain.UserID) ([]domain.ChatSession, error) {
	msgs, err := s.history.History(ctx, userID)
	if err != nil {
		return nil, err
	}
	return sessionize.Segment(msgs), nil
}

func load[T any](ctx context.Context, store domain.DocumentStore, userID domain.UserID, col domain.Collection) ([]T, error) {
	docs, err := store.GetAll(ctx, userID, col)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", col, err)
	}
	return domain.DecodeAll[T](docs)
}

package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/PabloGalante/serene/internal/domain"
)

// Store is an in-memory implementation of domain.DocumentStore.
// It is NOT persistent and is only suitable for development / tests.
type Store struct {
	mu   sync.RWMutex
	docs map[string]map[string]domain.Document // "{user}/{collection}" -> id -> doc
	now  func() domain.Millis
}

func NewStore() *Store {
	return &Store{
		docs: make(map[string]map[string]domain.Document),
		now:  func() domain.Millis { return domain.MillisOf(time.Now()) },
	}
}

func key(userID domain.UserID, col domain.Collection) string {
	return string(userID) + "/" + string(col)
}

// GetAll returns the collection ordered by document id.
func (s *Store) GetAll(_ context.Context, userID domain.UserID, col domain.Collection) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bucket := s.docs[key(userID, col)]
	ids := make([]string, 0, len(bucket))
	for id := range bucket {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]domain.Document, 0, len(ids))
	for _, id := range ids {
		doc, err := clone(bucket[id])
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func (s *Store) GetOne(_ context.Context, userID domain.UserID, col domain.Collection, id string) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[key(userID, col)][id]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", col, id, domain.ErrNotFound)
	}
	return clone(doc)
}

func (s *Store) Put(_ context.Context, userID domain.UserID, col domain.Collection, id string, doc domain.Document) error {
	stored, err := clone(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(userID, col)
	if s.docs[k] == nil {
		s.docs[k] = make(map[string]domain.Document)
	}
	s.docs[k][id] = stored
	return nil
}

func (s *Store) Delete(_ context.Context, userID domain.UserID, col domain.Collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs[key(userID, col)], id)
	return nil
}

func (s *Store) AppendChatMessage(_ context.Context, userID domain.UserID, dayKey string, msg domain.Document) error {
	stored, err := clone(msg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(userID, domain.CollectionDailyChats)
	if s.docs[k] == nil {
		s.docs[k] = make(map[string]domain.Document)
	}

	day, ok := s.docs[k][dayKey]
	if !ok {
		day = domain.Document{"date": dayKey, "messages": []any{}}
		s.docs[k][dayKey] = day
	}

	messages, _ := day["messages"].([]any)
	for _, existing := range messages {
		if reflect.DeepEqual(existing, map[string]any(stored)) {
			day["lastUpdated"] = float64(s.now())
			return nil
		}
	}
	day["messages"] = append(messages, map[string]any(stored))
	day["lastUpdated"] = float64(s.now())
	return nil
}

// clone deep-copies a document through JSON so callers never share maps
// with the store and numbers always come back as float64.
func clone(doc domain.Document) (domain.Document, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("memory store: %w", err)
	}
	var out domain.Document
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("memory store: %w", err)
	}
	return out, nil
}

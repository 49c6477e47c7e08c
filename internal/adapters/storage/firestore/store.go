package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/serene/internal/domain"
)

type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store.
// Uses the project passed (SERENE_GCP_PROJECT).
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

// users/{uid}/{collection}
func (s *Store) col(userID domain.UserID, col domain.Collection) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(string(userID)).Collection(string(col))
}

func (s *Store) doc(userID domain.UserID, col domain.Collection, id string) *firestore.DocumentRef {
	return s.col(userID, col).Doc(id)
}

// ─────────────────────────────────────────
// DocumentStore implementation
// ─────────────────────────────────────────

func (s *Store) GetAll(ctx context.Context, userID domain.UserID, col domain.Collection) ([]domain.Document, error) {
	iter := s.col(userID, col).Documents(ctx)
	defer iter.Stop()

	out := []domain.Document{}
	for {
		snap, err := iter.Next()
		if err != nil {
			if errors.Is(err, iterator.Done) {
				break
			}
			return nil, fmt.Errorf("firestore GetAll %s: %w", col, err)
		}
		out = append(out, domain.Document(snap.Data()))
	}
	return out, nil
}

func (s *Store) GetOne(ctx context.Context, userID domain.UserID, col domain.Collection, id string) (domain.Document, error) {
	snap, err := s.doc(userID, col, id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%s/%s: %w", col, id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("firestore GetOne: %w", err)
	}
	return domain.Document(snap.Data()), nil
}

func (s *Store) Put(ctx context.Context, userID domain.UserID, col domain.Collection, id string, doc domain.Document) error {
	if _, err := s.doc(userID, col, id).Set(ctx, map[string]interface{}(doc)); err != nil {
		return fmt.Errorf("firestore Put: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, userID domain.UserID, col domain.Collection, id string) error {
	if _, err := s.doc(userID, col, id).Delete(ctx); err != nil {
		return fmt.Errorf("firestore Delete: %w", err)
	}
	return nil
}

// AppendChatMessage merges msg into the day's messages array. ArrayUnion
// skips elements that are already present.
func (s *Store) AppendChatMessage(ctx context.Context, userID domain.UserID, dayKey string, msg domain.Document) error {
	update := map[string]interface{}{
		"date":        dayKey,
		"messages":    firestore.ArrayUnion(map[string]interface{}(msg)),
		"lastUpdated": int64(domain.MillisOf(time.Now())),
	}

	_, err := s.doc(userID, domain.CollectionDailyChats, dayKey).Set(ctx, update, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("firestore AppendChatMessage: %w", err)
	}
	return nil
}

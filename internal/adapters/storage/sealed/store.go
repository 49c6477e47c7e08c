// Package sealed wraps a DocumentStore so that sensitive collections are
// encrypted before they reach the backend.
package sealed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/PabloGalante/serene/internal/domain"
	"github.com/PabloGalante/serene/internal/observability"
)

const sealedField = "sealed"

// DefaultCollections are the collections sealed when none are given.
var DefaultCollections = []domain.Collection{domain.CollectionMoods, domain.CollectionJournals}

type Store struct {
	domain.DocumentStore
	cipher    domain.Cipher
	sensitive map[domain.Collection]bool
}

func NewStore(inner domain.DocumentStore, cipher domain.Cipher, cols ...domain.Collection) *Store {
	if len(cols) == 0 {
		cols = DefaultCollections
	}
	sensitive := make(map[domain.Collection]bool, len(cols))
	for _, c := range cols {
		sensitive[c] = true
	}
	return &Store{DocumentStore: inner, cipher: cipher, sensitive: sensitive}
}

func (s *Store) Put(ctx context.Context, userID domain.UserID, col domain.Collection, id string, doc domain.Document) error {
	if !s.sensitive[col] {
		return s.DocumentStore.Put(ctx, userID, col, id, doc)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("seal %s/%s: %w", col, id, err)
	}
	ciphertext, err := s.cipher.Seal(raw)
	if err != nil {
		return fmt.Errorf("seal %s/%s: %w", col, id, err)
	}
	return s.DocumentStore.Put(ctx, userID, col, id, domain.Document{"id": id, sealedField: ciphertext})
}

// GetAll opens every sealed record. Records that cannot be opened are
// dropped with a warning.
func (s *Store) GetAll(ctx context.Context, userID domain.UserID, col domain.Collection) ([]domain.Document, error) {
	docs, err := s.DocumentStore.GetAll(ctx, userID, col)
	if err != nil || !s.sensitive[col] {
		return docs, err
	}

	out := make([]domain.Document, 0, len(docs))
	for _, d := range docs {
		opened, err := s.open(d)
		if err != nil {
			observability.LoggerFromContext(ctx).Warn("skipping unreadable record",
				"collection", string(col),
				"id", d["id"],
				"error", err,
			)
			continue
		}
		out = append(out, opened)
	}
	return out, nil
}

// GetOne reports an unreadable record as not found.
func (s *Store) GetOne(ctx context.Context, userID domain.UserID, col domain.Collection, id string) (domain.Document, error) {
	doc, err := s.DocumentStore.GetOne(ctx, userID, col, id)
	if err != nil || !s.sensitive[col] {
		return doc, err
	}
	opened, err := s.open(doc)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("unreadable record",
			"collection", string(col),
			"id", id,
			"error", err,
		)
		return nil, fmt.Errorf("%s/%s: %w", col, id, domain.ErrNotFound)
	}
	return opened, nil
}

// open decrypts d. Documents without a sealed field were written in the
// clear and are returned as they are.
func (s *Store) open(d domain.Document) (domain.Document, error) {
	raw, ok := d[sealedField]
	if !ok {
		return d, nil
	}
	ciphertext, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("sealed field is %T", raw)
	}
	plain, err := s.cipher.Open(ciphertext)
	if err != nil {
		return nil, err
	}
	var doc domain.Document
	if err := json.Unmarshal(plain, &doc); err != nil {
		return nil, fmt.Errorf("parse sealed record: %w", err)
	}
	return doc, nil
}

package sealed_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PabloGalante/serene/internal/adapters/crypto"
	"github.com/PabloGalante/serene/internal/adapters/storage/memory"
	"github.com/PabloGalante/serene/internal/adapters/storage/sealed"
	"github.com/PabloGalante/serene/internal/adapters/storage/storagetest"
	"github.com/PabloGalante/serene/internal/domain"
)

func newCipher(t *testing.T) *crypto.AESCipher {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	c, err := crypto.NewAESCipher(key)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestStoreContract(t *testing.T) {
	storagetest.Run(t, sealed.NewStore(memory.NewStore(), newCipher(t)))
}

func TestSensitiveCollectionsAreEncrypted(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewStore()
	s := sealed.NewStore(inner, newCipher(t))

	journal := domain.Document{"id": "j1", "title": "Rough day", "content": "I felt overwhelmed"}
	if err := s.Put(ctx, "u", domain.CollectionJournals, "j1", journal); err != nil {
		t.Fatal(err)
	}
	task := domain.Document{"id": "1", "title": "Groceries"}
	if err := s.Put(ctx, "u", domain.CollectionTasks, "1", task); err != nil {
		t.Fatal(err)
	}

	raw, _ := inner.GetOne(ctx, "u", domain.CollectionJournals, "j1")
	if _, ok := raw["content"]; ok {
		t.Errorf("journal stored in clear: %v", raw)
	}
	if sealedText, _ := raw["sealed"].(string); strings.Contains(sealedText, "overwhelmed") || sealedText == "" {
		t.Errorf("unexpected sealed field %q", sealedText)
	}

	rawTask, _ := inner.GetOne(ctx, "u", domain.CollectionTasks, "1")
	if rawTask["title"] != "Groceries" {
		t.Errorf("tasks should stay in clear, got %v", rawTask)
	}

	got, err := s.GetOne(ctx, "u", domain.CollectionJournals, "j1")
	if err != nil {
		t.Fatal(err)
	}
	if got["content"] != "I felt overwhelmed" {
		t.Errorf("round trip failed: %v", got)
	}
}

func TestUnreadableRecordsAreSkipped(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewStore()

	// written with one key, read with another
	writer := sealed.NewStore(inner, newCipher(t))
	_ = writer.Put(ctx, "u", domain.CollectionMoods, "m1", domain.Document{"id": "m1", "mood": "sad"})

	reader := sealed.NewStore(inner, newCipher(t))
	_ = reader.Put(ctx, "u", domain.CollectionMoods, "m2", domain.Document{"id": "m2", "mood": "calm"})
	_ = inner.Put(ctx, "u", domain.CollectionMoods, "m3", domain.Document{"id": "m3", "mood": "happy"})

	docs, err := reader.GetAll(ctx, "u", domain.CollectionMoods)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 || docs[0]["id"] != "m2" || docs[1]["id"] != "m3" {
		t.Errorf("expected m2 and the clear m3, got %v", docs)
	}

	if _, err := reader.GetOne(ctx, "u", domain.CollectionMoods, "m1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unreadable record, got %v", err)
	}
}

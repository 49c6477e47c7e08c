// Package storagetest holds the behaviour every domain.DocumentStore
// implementation must share.
package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/PabloGalante/serene/internal/domain"
)

// Run exercises store against the DocumentStore contract.
func Run(t *testing.T, store domain.DocumentStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("put get delete", func(t *testing.T) {
		user := domain.UserID("u-crud")
		mood := domain.MoodEntry{ID: "m1", Mood: domain.MoodCalm, Note: "tea", Timestamp: 1_700_000_000_000}
		doc, err := domain.Encode(mood)
		if err != nil {
			t.Fatal(err)
		}

		if err := store.Put(ctx, user, domain.CollectionMoods, mood.ID, doc); err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		got, err := store.GetOne(ctx, user, domain.CollectionMoods, mood.ID)
		if err != nil {
			t.Fatalf("GetOne failed: %v", err)
		}
		var back domain.MoodEntry
		if err := domain.Decode(got, &back); err != nil {
			t.Fatal(err)
		}
		if back != mood {
			t.Errorf("round trip mismatch: got %+v, want %+v", back, mood)
		}

		if err := store.Delete(ctx, user, domain.CollectionMoods, mood.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := store.GetOne(ctx, user, domain.CollectionMoods, mood.ID); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("collections are per user", func(t *testing.T) {
		for _, u := range []domain.UserID{"u-a", "u-b"} {
			doc := domain.Document{"id": string(u), "title": "x"}
			if err := store.Put(ctx, u, domain.CollectionTasks, "1", doc); err != nil {
				t.Fatal(err)
			}
		}

		docs, err := store.GetAll(ctx, "u-a", domain.CollectionTasks)
		if err != nil {
			t.Fatal(err)
		}
		if len(docs) != 1 || docs[0]["id"] != "u-a" {
			t.Errorf("expected only u-a's task, got %v", docs)
		}

		empty, err := store.GetAll(ctx, "u-nobody", domain.CollectionTasks)
		if err != nil || len(empty) != 0 {
			t.Errorf("expected empty collection, got %v, %v", empty, err)
		}
	})

	t.Run("put overwrites", func(t *testing.T) {
		user := domain.UserID("u-overwrite")
		_ = store.Put(ctx, user, domain.CollectionSettings, "categories", domain.Document{"list": []any{"A"}})
		_ = store.Put(ctx, user, domain.CollectionSettings, "categories", domain.Document{"list": []any{"B", "C"}})

		got, err := store.GetOne(ctx, user, domain.CollectionSettings, "categories")
		if err != nil {
			t.Fatal(err)
		}
		list, _ := got["list"].([]any)
		if len(list) != 2 {
			t.Errorf("expected overwritten list, got %v", got)
		}
	})

	t.Run("chat append is an idempotent union", func(t *testing.T) {
		user := domain.UserID("u-chat")
		m1, _ := domain.Encode(domain.ChatMessage{ID: "1", Role: domain.RoleUser, Text: "hi", Timestamp: 10})
		m2, _ := domain.Encode(domain.ChatMessage{ID: "2", Role: domain.RoleModel, Text: "hello", Timestamp: 20})

		for _, m := range []domain.Document{m1, m2, m1} {
			if err := store.AppendChatMessage(ctx, user, "2026-01-01", m); err != nil {
				t.Fatalf("AppendChatMessage failed: %v", err)
			}
		}

		day, err := store.GetOne(ctx, user, domain.CollectionDailyChats, "2026-01-01")
		if err != nil {
			t.Fatal(err)
		}
		var chat domain.DailyChat
		if err := domain.Decode(day, &chat); err != nil {
			t.Fatal(err)
		}
		if chat.Date != "2026-01-01" {
			t.Errorf("unexpected date %q", chat.Date)
		}
		if len(chat.Messages) != 2 || chat.Messages[0].ID != "1" || chat.Messages[1].ID != "2" {
			t.Errorf("expected [1 2], got %+v", chat.Messages)
		}
	})

	t.Run("numbers survive a round trip", func(t *testing.T) {
		user := domain.UserID("u-numbers")
		entry := domain.SleepEntry{ID: "s1", Hours: 7.5, Quality: domain.SleepGood, Timestamp: 1_700_000_000_123}
		doc, err := domain.Encode(entry)
		if err != nil {
			t.Fatal(err)
		}
		if err := store.Put(ctx, user, domain.CollectionSleep, entry.ID, doc); err != nil {
			t.Fatal(err)
		}

		got, err := store.GetOne(ctx, user, domain.CollectionSleep, entry.ID)
		if err != nil {
			t.Fatal(err)
		}
		var back domain.SleepEntry
		if err := domain.Decode(got, &back); err != nil {
			t.Fatal(err)
		}
		if back != entry {
			t.Errorf("round trip mismatch: got %+v, want %+v", back, entry)
		}
	})
}

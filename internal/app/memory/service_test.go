package memory_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	memstore "github.com/PabloGalante/serene/internal/adapters/storage/memory"
	"github.com/PabloGalante/serene/internal/app/memory"
	"github.com/PabloGalante/serene/internal/domain"
)

// factsAI answers every Generate call with a fixed JSON document.
type factsAI struct {
	answer  string
	prompts []string
}

func (a *factsAI) StreamChat(context.Context, domain.ChatRequest, func(string)) error {
	return errors.New("not used")
}

func (a *factsAI) Generate(_ context.Context, prompt string, _ domain.GenerateOptions) (string, error) {
	a.prompts = append(a.prompts, prompt)
	return a.answer, nil
}

func exchange() []domain.ChatMessage {
	return []domain.ChatMessage{
		{ID: "0", Role: domain.RoleUser, Text: "old message"},
		{ID: "1", Role: domain.RoleUser, Text: "My cat Luna keeps me company"},
		{ID: "2", Role: domain.RoleModel, Text: "Luna sounds lovely"},
	}
}

func TestExtractStoresNewFacts(t *testing.T) {
	ctx := context.Background()
	ai := &factsAI{answer: "```json\n[\"User owns a cat named Luna\", \"User owns a cat named Luna\", \"  \"]\n```"}
	svc := memory.NewService(memstore.NewStore(), ai)

	added, err := svc.Extract(ctx, "u1", exchange())
	if err != nil {
		t.Fatal(err)
	}
	if len(added) != 1 || added[0].Text != "User owns a cat named Luna" {
		t.Fatalf("expected one new memory, got %+v", added)
	}
	if strings.Contains(ai.prompts[0], "old message") || !strings.Contains(ai.prompts[0], "user: My cat Luna") {
		t.Errorf("prompt should hold only the last exchange:\n%s", ai.prompts[0])
	}

	// known facts are not stored twice
	added, err = svc.Extract(ctx, "u1", exchange())
	if err != nil || len(added) != 0 {
		t.Errorf("expected nothing new, got %+v, %v", added, err)
	}

	got, err := svc.Context(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	want := "LONG TERM MEMORY (Facts about the user):\n- User owns a cat named Luna"
	if got != want {
		t.Errorf("Context = %q, want %q", got, want)
	}
}

func TestExtractIgnoresUnusableAnswer(t *testing.T) {
	svc := memory.NewService(memstore.NewStore(), &factsAI{answer: "{}"})

	added, err := svc.Extract(context.Background(), "u1", exchange())
	if err != nil || len(added) != 0 {
		t.Errorf("expected no memories, got %+v, %v", added, err)
	}
	if ctxText, _ := svc.Context(context.Background(), "u1"); ctxText != "" {
		t.Errorf("expected empty context, got %q", ctxText)
	}
}

func TestDeleteMemory(t *testing.T) {
	ctx := context.Background()
	svc := memory.NewService(memstore.NewStore(), &factsAI{answer: `["User works nights"]`})

	added, _ := svc.Extract(ctx, "u1", exchange())
	if len(added) != 1 {
		t.Fatalf("expected one memory, got %d", len(added))
	}

	if err := svc.Delete(ctx, "u1", added[0].ID); err != nil {
		t.Fatal(err)
	}
	list, _ := svc.List(ctx, "u1")
	if len(list) != 0 {
		t.Errorf("expected no memories after delete, got %+v", list)
	}
	if err := svc.Delete(ctx, "u1", added[0].ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

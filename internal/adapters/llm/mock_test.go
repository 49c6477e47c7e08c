package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/PabloGalante/serene/internal/domain"
)

func TestMockStreamChat(t *testing.T) {
	var chunks []string
	err := NewMockClient().StreamChat(context.Background(), domain.ChatRequest{Message: "I am tired"}, func(s string) {
		chunks = append(chunks, s)
	})
	if err != nil {
		t.Fatalf("StreamChat failed: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	if reply := strings.Join(chunks, ""); !strings.Contains(reply, `"I am tired"`) {
		t.Errorf("unexpected reply %q", reply)
	}
}

func TestMockStreamChatCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewMockClient().StreamChat(ctx, domain.ChatRequest{Message: "hi"}, func(string) {})
	if err == nil {
		t.Error("expected context error")
	}
}

func TestMockGenerate(t *testing.T) {
	got, err := NewMockClient().Generate(context.Background(), "x", domain.GenerateOptions{JSON: true})
	if err != nil || got != "{}" {
		t.Errorf("expected empty object, got %q, %v", got, err)
	}
}

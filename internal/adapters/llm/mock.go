package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/PabloGalante/serene/internal/domain"
)

// MockClient answers without any network call. JSON requests get an empty
// object so callers fall back to their defaults.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) StreamChat(ctx context.Context, req domain.ChatRequest, onChunk func(string)) error {
	reply := fmt.Sprintf("I hear you. You said %q. Tell me a little more about how that makes you feel.", req.Message)
	for _, word := range strings.SplitAfter(reply, " ") {
		if err := ctx.Err(); err != nil {
			return err
		}
		onChunk(word)
	}
	return nil
}

func (m *MockClient) Generate(_ context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	if opts.JSON {
		return "{}", nil
	}
	return "Take one slow breath and notice how you feel right now.", nil
}

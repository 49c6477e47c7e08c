package agentflow

import (
	"context"

	"github.com/PabloGalante/serene/internal/domain"
)

// AgentInput is the latest user message plus the prior conversation.
type AgentInput struct {
	Message string
	History []domain.ChatMessage
	// Memory is the rendered long-term memory block, possibly empty.
	Memory string
}

// Agent answers a message by streaming reply chunks.
type Agent interface {
	Intent() Intent
	Run(ctx context.Context, in AgentInput, onChunk func(string)) error
	// Fallback is sent instead when the model cannot answer.
	Fallback() string
}

// CrisisAgent answers self-harm messages with resources. It ignores the
// conversation history.
type CrisisAgent struct {
	ai domain.AIClient
}

func NewCrisisAgent(ai domain.AIClient) *CrisisAgent {
	return &CrisisAgent{ai: ai}
}

func (a *CrisisAgent) Intent() Intent { return IntentCrisis }

func (a *CrisisAgent) Fallback() string {
	return "I'm really sorry you're feeling this much pain. You don't have to go through this alone. " +
		"Please text or call 988 right now to talk with someone who can help."
}

func (a *CrisisAgent) Run(ctx context.Context, in AgentInput, onChunk func(string)) error {
	return a.ai.StreamChat(ctx, domain.ChatRequest{
		System:  withMemory(systemPrompt(IntentCrisis), in.Memory),
		Message: in.Message,
	}, onChunk)
}

// CBTAgent walks the user through identifying and reframing a thought.
type CBTAgent struct {
	ai     domain.AIClient
	window int
}

func NewCBTAgent(ai domain.AIClient) *CBTAgent {
	return &CBTAgent{ai: ai, window: 5}
}

func (a *CBTAgent) Intent() Intent { return IntentCBT }

func (a *CBTAgent) Fallback() string {
	return "I hear how heavy that feels. I'm having trouble finding the right words right now, " +
		"but I'm here. What is the thought that keeps coming back?"
}

func (a *CBTAgent) Run(ctx context.Context, in AgentInput, onChunk func(string)) error {
	return a.ai.StreamChat(ctx, domain.ChatRequest{
		System:  withMemory(systemPrompt(IntentCBT), in.Memory),
		History: tail(in.History, a.window),
		Message: in.Message,
	}, onChunk)
}

// GeneralAgent is the default empathetic companion.
type GeneralAgent struct {
	ai     domain.AIClient
	window int
}

func NewGeneralAgent(ai domain.AIClient) *GeneralAgent {
	return &GeneralAgent{ai: ai, window: 5}
}

func (a *GeneralAgent) Intent() Intent { return IntentGeneral }

func (a *GeneralAgent) Fallback() string {
	return "I'm having a little trouble connecting right now, but I'm still here with you. " +
		"Take your time, and tell me more whenever you're ready."
}

func (a *GeneralAgent) Run(ctx context.Context, in AgentInput, onChunk func(string)) error {
	return a.ai.StreamChat(ctx, domain.ChatRequest{
		System:  withMemory(systemPrompt(IntentGeneral), in.Memory),
		History: tail(in.History, a.window),
		Message: in.Message,
	}, onChunk)
}

func tail(msgs []domain.ChatMessage, n int) []domain.ChatMessage {
	if len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}

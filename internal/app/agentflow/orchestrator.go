package agentflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PabloGalante/serene/internal/domain"
	"github.com/PabloGalante/serene/internal/observability"
)

// Orchestrator routes each message to the agent for its intent.
type Orchestrator struct {
	agents map[Intent]Agent
}

// NewDefaultOrchestrator constructs a flow with the crisis, CBT and
// general agents.
func NewDefaultOrchestrator(ai domain.AIClient) *Orchestrator {
	return NewOrchestrator(NewCrisisAgent(ai), NewCBTAgent(ai), NewGeneralAgent(ai))
}

func NewOrchestrator(agents ...Agent) *Orchestrator {
	o := &Orchestrator{agents: make(map[Intent]Agent, len(agents))}
	for _, a := range agents {
		o.agents[a.Intent()] = a
	}
	return o
}

type Result struct {
	Intent Intent
	Reply  string
	// Fallback is set when the reply is the agent's static answer.
	Fallback bool
	// Partial is set when the model failed after part of the reply was
	// streamed. Reply then holds only what the user already saw.
	Partial bool
}

// Run streams the reply for in.Message through onChunk. A model failure
// before anything was streamed is answered with the agent's fallback; a
// later failure keeps the streamed text and marks the result Partial.
func (o *Orchestrator) Run(ctx context.Context, in AgentInput, onChunk func(string)) (Result, error) {
	intent := Route(in.Message, previousIntent(in.History))
	agent, ok := o.agents[intent]
	if !ok {
		agent, ok = o.agents[IntentGeneral]
	}
	if !ok {
		return Result{}, fmt.Errorf("no agent configured for intent %s", intent)
	}

	log := observability.LoggerFromContext(ctx).With("intent", string(agent.Intent()))
	log.Info("agent run start", "history", len(in.History))
	start := time.Now()

	var reply strings.Builder
	err := agent.Run(ctx, in, func(chunk string) {
		reply.WriteString(chunk)
		onChunk(chunk)
	})
	res := Result{Intent: agent.Intent(), Reply: reply.String()}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}
		log.Error("agent failed", "error", err, "streamed", reply.Len())
		if reply.Len() == 0 {
			res.Reply = agent.Fallback()
			res.Fallback = true
			onChunk(res.Reply)
		} else {
			res.Partial = true
		}
		return res, nil
	}

	if strings.TrimSpace(res.Reply) == "" {
		log.Warn("agent returned empty reply")
		res.Reply = agent.Fallback()
		res.Fallback = true
		onChunk(res.Reply)
	}

	log.Info("agent run end", "elapsed_ms", time.Since(start).Milliseconds(), "fallback", res.Fallback)
	return res, nil
}

func previousIntent(history []domain.ChatMessage) Intent {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == domain.RoleModel {
			return Intent(history[i].Intent)
		}
	}
	return ""
}

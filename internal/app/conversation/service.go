package conversation

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/serene/internal/app/agentflow"
	"github.com/PabloGalante/serene/internal/app/chatlog"
	"github.com/PabloGalante/serene/internal/app/insights"
	"github.com/PabloGalante/serene/internal/app/memory"
	"github.com/PabloGalante/serene/internal/app/sessionize"
	"github.com/PabloGalante/serene/internal/domain"
	"github.com/PabloGalante/serene/internal/observability"
)

// HistorySize is how many past messages are sent along with a new one.
const HistorySize = 20

// extractTimeout bounds the background memory extraction after a reply.
const extractTimeout = time.Minute

type Service struct {
	store        domain.DocumentStore
	insights     *insights.Service
	memory       *memory.Service
	orchestrator *agentflow.Orchestrator
	loc          *time.Location
	now          func() time.Time
	newID        func() string

	background sync.WaitGroup
}

func NewService(ai domain.AIClient, store domain.DocumentStore, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		store:        store,
		insights:     insights.NewService(ai),
		memory:       memory.NewService(store, ai),
		orchestrator: agentflow.NewDefaultOrchestrator(ai),
		loc:          loc,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

type SendMessageInput struct {
	UserID domain.UserID
	Text   string
}

type SendMessageOutput struct {
	UserMessage  domain.ChatMessage
	ModelMessage domain.ChatMessage
	Intent       agentflow.Intent
}

// SendMessage stores the user's message, streams the assistant reply
// through onChunk and stores the reply once complete.
func (s *Service) SendMessage(ctx context.Context, in SendMessageInput, onChunk func(string)) (*SendMessageOutput, error) {
	text := strings.TrimSpace(in.Text)
	if in.UserID == "" || text == "" {
		return nil, fmt.Errorf("message needs a user and some text: %w", domain.ErrInvalidInput)
	}
	if onChunk == nil {
		onChunk = func(string) {}
	}

	log := observability.LoggerFromContext(ctx).With("user_id", string(in.UserID))
	log.Info("sending message", "length", len(text))

	sentiment := s.insights.AnalyzeSentiment(ctx, text)
	userMsg := domain.ChatMessage{
		ID:        s.newID(),
		Role:      domain.RoleUser,
		Text:      text,
		Timestamp: domain.MillisOf(s.now()),
		Sentiment: &sentiment,
	}
	if err := s.appendMessage(ctx, in.UserID, userMsg); err != nil {
		log.Error("failed to append user message", "error", err)
		return nil, err
	}

	all, err := s.History(ctx, in.UserID)
	if err != nil {
		log.Error("failed to load history", "error", err)
		return nil, err
	}
	history := make([]domain.ChatMessage, 0, len(all))
	for _, m := range all {
		if m.ID != userMsg.ID {
			history = append(history, m)
		}
	}
	history = chatlog.Recent(history, HistorySize)

	memCtx, err := s.memory.Context(ctx, in.UserID)
	if err != nil {
		log.Warn("failed to load memories", "error", err)
	}

	res, err := s.orchestrator.Run(ctx, agentflow.AgentInput{Message: text, History: history, Memory: memCtx}, onChunk)
	if err != nil {
		log.Error("agent flow failed", "error", err)
		return nil, err
	}

	modelMsg := domain.ChatMessage{
		ID:        s.newID(),
		Role:      domain.RoleModel,
		Text:      res.Reply,
		Timestamp: domain.MillisOf(s.now()),
		Intent:    string(res.Intent),
		Truncated: res.Partial,
	}
	if res.Partial {
		log.Warn("storing truncated model reply", "length", len(res.Reply))
	}
	if err := s.appendMessage(ctx, in.UserID, modelMsg); err != nil {
		// the user already has the reply
		log.Error("failed to append model message", "error", err)
	}

	if !res.Fallback {
		s.extractMemories(ctx, in.UserID, slices.Concat(history, []domain.ChatMessage{userMsg, modelMsg}))
	}

	log.Info("send message completed", "intent", string(res.Intent), "fallback", res.Fallback)

	return &SendMessageOutput{
		UserMessage:  userMsg,
		ModelMessage: modelMsg,
		Intent:       res.Intent,
	}, nil
}

// extractMemories looks for new facts in the background so the reply is
// not held up. It outlives the request context.
func (s *Service) extractMemories(ctx context.Context, userID domain.UserID, exchange []domain.ChatMessage) {
	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), extractTimeout)
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		defer cancel()
		if _, err := s.memory.Extract(bg, userID, exchange); err != nil {
			observability.LoggerFromContext(bg).Warn("memory extraction failed", "error", err)
		}
	}()
}

// Wait blocks until background memory extraction has finished.
func (s *Service) Wait() {
	s.background.Wait()
}

// History returns every stored message, oldest first.
func (s *Service) History(ctx context.Context, userID domain.UserID) ([]domain.ChatMessage, error) {
	docs, err := s.store.GetAll(ctx, userID, domain.CollectionDailyChats)
	if err != nil {
		return nil, fmt.Errorf("load daily chats: %w", err)
	}
	days, err := domain.DecodeAll[domain.DailyChat](docs)
	if err != nil {
		return nil, err
	}
	return chatlog.Flatten(days), nil
}

// Sessions returns the conversation split into sessions, newest first.
func (s *Service) Sessions(ctx context.Context, userID domain.UserID) ([]domain.ChatSession, error) {
	msgs, err := s.History(ctx, userID)
	if err != nil {
		return nil, err
	}
	return sessionize.Segment(msgs), nil
}

func (s *Service) appendMessage(ctx context.Context, userID domain.UserID, msg domain.ChatMessage) error {
	doc, err := domain.Encode(msg)
	if err != nil {
		return err
	}
	return s.store.AppendChatMessage(ctx, userID, chatlog.DayKey(msg.Timestamp, s.loc), doc)
}

package httpadapter

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/PabloGalante/serene/internal/app/analytics"
	"github.com/PabloGalante/serene/internal/app/conversation"
	"github.com/PabloGalante/serene/internal/app/feed"
	"github.com/PabloGalante/serene/internal/app/insights"
	"github.com/PabloGalante/serene/internal/app/journal"
	"github.com/PabloGalante/serene/internal/app/logbook"
	"github.com/PabloGalante/serene/internal/app/memory"
	"github.com/PabloGalante/serene/internal/app/tasks"
	"github.com/PabloGalante/serene/internal/domain"
	"github.com/PabloGalante/serene/internal/observability"
)

// Services are the application services the API exposes.
type Services struct {
	Conversation *conversation.Service
	Feed         *feed.Service
	Journal      *journal.Service
	Tasks        *tasks.Service
	Logbook      *logbook.Service
	Insights     *insights.Service
	Memory       *memory.Service
	Location     *time.Location

	// AllowedOrigins may open the chat websocket besides the API's own
	// origin. "*" allows any origin.
	AllowedOrigins []string
}

type Server struct {
	Services
	now      func() time.Time
	upgrader websocket.Upgrader
}

func NewServer(svcs Services) http.Handler {
	if svcs.Location == nil {
		svcs.Location = time.Local
	}
	s := &Server{Services: svcs, now: time.Now}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)

	// feed and chat
	mux.HandleFunc("GET /users/{uid}/feed", s.handleFeed)
	mux.HandleFunc("GET /users/{uid}/chat/sessions", s.handleSessions)
	mux.HandleFunc("POST /users/{uid}/chat", s.handleChat)
	mux.HandleFunc("GET /users/{uid}/chat/ws", s.handleChatWebSocket)

	// trackers
	mux.HandleFunc("POST /users/{uid}/moods", s.handleLogMood)
	mux.HandleFunc("POST /users/{uid}/journals", s.handleSaveJournal)
	mux.HandleFunc("GET /users/{uid}/journals", s.handleListJournals)
	mux.HandleFunc("POST /users/{uid}/breathing", s.handleLogBreathing)
	mux.HandleFunc("POST /users/{uid}/sleep", s.handleLogSleep)
	mux.HandleFunc("POST /users/{uid}/tasks", s.handleCreateTask)
	mux.HandleFunc("GET /users/{uid}/tasks", s.handleListTasks)
	mux.HandleFunc("POST /users/{uid}/tasks/{id}/complete", s.handleCompleteTask)
	mux.HandleFunc("DELETE /users/{uid}/tasks/{id}", s.handleDeleteTask)
	mux.HandleFunc("GET /users/{uid}/categories", s.handleGetCategories)
	mux.HandleFunc("PUT /users/{uid}/categories", s.handlePutCategories)

	// long-term memory
	mux.HandleFunc("GET /users/{uid}/memories", s.handleListMemories)
	mux.HandleFunc("DELETE /users/{uid}/memories/{id}", s.handleDeleteMemory)

	// analytics and insights
	mux.HandleFunc("GET /users/{uid}/analytics/moods", s.handleMoodAnalytics)
	mux.HandleFunc("GET /users/{uid}/analytics/sentiment", s.handleSentimentAnalytics)
	mux.HandleFunc("GET /users/{uid}/insights/questions", s.handleAssessmentQuestions)
	mux.HandleFunc("POST /users/{uid}/insights/assessment", s.handleWellnessAssessment)
	mux.HandleFunc("GET /users/{uid}/insights/clinical-summary", s.handleClinicalSummary)
	mux.HandleFunc("GET /insights/daily", s.handleDailyInsight)
	mux.HandleFunc("GET /insights/journal-prompt", s.handleJournalPrompt)
	mux.HandleFunc("POST /insights/thought-pattern", s.handleThoughtPattern)

	return chainMiddlewares(mux, withLogging, withRequestID, withCORS)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ─────────────────────────────────────────────
// Feed
// ─────────────────────────────────────────────

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	r, uid := withUser(r)

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, fmt.Errorf("limit %q: %w", raw, domain.ErrInvalidInput))
			return
		}
		limit = n
	}

	out, err := s.Feed.Feed(r.Context(), uid, feed.Query{
		Filter: r.URL.Query().Get("filter"),
		Limit:  limit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	r, uid := withUser(r)

	sessions, err := s.Feed.Sessions(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

// ─────────────────────────────────────────────
// Analytics and insights
// ─────────────────────────────────────────────

func (s *Server) handleMoodAnalytics(w http.ResponseWriter, r *http.Request) {
	r, uid := withUser(r)

	rng, err := analytics.ParseTimeRange(r.URL.Query().Get("range"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	moods, err := s.Logbook.Moods(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"range": rng,
		"moods": analytics.MoodFrequency(moods, rng, s.now(), s.Location),
	})
}

func (s *Server) handleSentimentAnalytics(w http.ResponseWriter, r *http.Request) {
	r, uid := withUser(r)

	journals, err := s.Journal.All(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sentiment": analytics.SentimentBreakdown(journals),
	})
}

// records loads what the assessment features read, oldest first so the
// prompts see the most recent records last.
func (s *Server) records(ctx context.Context, uid domain.UserID) ([]domain.MoodEntry, []domain.JournalEntry, []domain.Task, error) {
	moods, err := s.Logbook.Moods(ctx, uid)
	if err != nil {
		return nil, nil, nil, err
	}
	journals, err := s.Journal.All(ctx, uid)
	if err != nil {
		return nil, nil, nil, err
	}
	taskList, err := s.Tasks.List(ctx, uid)
	if err != nil {
		return nil, nil, nil, err
	}
	slices.Reverse(moods)
	slices.Reverse(journals)
	return moods, journals, taskList, nil
}

func (s *Server) handleAssessmentQuestions(w http.ResponseWriter, r *http.Request) {
	r, uid := withUser(r)
	moods, journals, taskList, err := s.records(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"questions": s.Insights.AssessmentQuestions(r.Context(), moods, journals, taskList),
	})
}

type assessmentRequest struct {
	Answers []insights.QA `json:"answers"`
}

func (s *Server) handleWellnessAssessment(w http.ResponseWriter, r *http.Request) {
	r, uid := withUser(r)
	var req assessmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	moods, journals, taskList, err := s.records(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Insights.WellnessAssessment(r.Context(), moods, journals, taskList, req.Answers))
}

func (s *Server) handleClinicalSummary(w http.ResponseWriter, r *http.Request) {
	r, uid := withUser(r)
	moods, journals, taskList, err := s.records(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	name := cmp.Or(r.URL.Query().Get("name"), "User")
	writeJSON(w, http.StatusOK, map[string]string{
		"text": s.Insights.ClinicalSummary(r.Context(), name, moods, journals, taskList),
	})
}

// ─────────────────────────────────────────────
// Memory
// ─────────────────────────────────────────────

func (s *Server) handleListMemories(w http.ResponseWriter, r *http.Request) {
	r, uid := withUser(r)
	mems, err := s.Memory.List(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"memories": mems})
}

func (s *Server) handleDeleteMemory(w http.ResponseWriter, r *http.Request) {
	r, uid := withUser(r)
	if err := s.Memory.Delete(r.Context(), uid, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDailyInsight(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"text": s.Insights.DailyInsight(r.Context(), r.URL.Query().Get("mood")),
	})
}

func (s *Server) handleJournalPrompt(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"text": s.Insights.JournalPrompt(r.Context()),
	})
}

type thoughtRequest struct {
	Thought string `json:"thought"`
}

func (s *Server) handleThoughtPattern(w http.ResponseWriter, r *http.Request) {
	var req thoughtRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Thought == "" {
		writeError(w, r, fmt.Errorf("thought is required: %w", domain.ErrInvalidInput))
		return
	}
	writeJSON(w, http.StatusOK, s.Insights.ThoughtPattern(r.Context(), req.Thought))
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

// withUser reads the {uid} path value and records it on the request
// context for logging.
func withUser(r *http.Request) (*http.Request, domain.UserID) {
	uid := r.PathValue("uid")
	ctx := observability.WithUserID(r.Context(), uid)
	return r.WithContext(ctx), domain.UserID(uid)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", domain.ErrInvalidInput)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to status codes. Unexpected errors are
// logged and hidden from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		observability.LoggerFromContext(r.Context()).Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

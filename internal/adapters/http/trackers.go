package httpadapter

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/PabloGalante/serene/internal/app/journal"
	"github.com/PabloGalante/serene/internal/app/tasks"
	"github.com/PabloGalante/serene/internal/domain"
)

// ─────────────────────────────────────────────
// DTOs (request)
// ─────────────────────────────────────────────

type moodRequest struct {
	Mood string `json:"mood"`
	Note string `json:"note"`
}

type journalRequest struct {
	ID      string   `json:"id,omitempty"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
}

type breathingRequest struct {
	DurationSeconds int `json:"durationSeconds"`
}

type sleepRequest struct {
	Hours   float64 `json:"hours"`
	Quality string  `json:"quality"`
}

type taskRequest struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	DueDate     string `json:"dueDate,omitempty"`
	Description string `json:"description,omitempty"`
}

type completeTaskRequest struct {
	Reflection string `json:"reflection"`
}

type categoriesBody struct {
	Categories []string `json:"categories"`
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleLogMood(w http.ResponseWriter, r *http.Request) {
	r, uid := withUser(r)
	var req moodRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	entry, err := s.Logbook.LogMood(r.Context(), uid, domain.MoodType(req.Mood), req.Note)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleSaveJournal(w http.ResponseWriter, r *http.Request) {
	r, uid := withUser(r)
	var req journalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	entry, err := s.Journal.Save(r.Context(), journal.SaveInput{
		UserID:  uid,
		ID:      req.ID,
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleListJournals(w http.ResponseWriter, r *http.Request) {
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

	entries, err := s.Journal.List(r.Context(), uid, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"journals": entries})
}

func (s *Server) handleLogBreathing(w http.ResponseWriter, r *http.Request) {
	r, uid := withUser(r)
	var req breathingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	session, err := s.Logbook.LogBreathing(r.Context(), uid, time.Duration(req.DurationSeconds)*time.Second)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleLogSleep(w http.ResponseWriter, r *http.Request) {
	r, uid := withUser(r)
	var req sleepRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	entry, err := s.Logbook.LogSleep(r.Context(), uid, req.Hours, domain.SleepQuality(req.Quality))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	r, uid := withUser(r)
	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	task, err := s.Tasks.Create(r.Context(), tasks.CreateInput{
		UserID:      uid,
		Title:       req.Title,
		Category:    req.Category,
		DueDate:     req.DueDate,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	r, uid := withUser(r)
	list, err := s.Tasks.List(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": list})
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	r, uid := withUser(r)

	// the body is optional
	var req completeTaskRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}

	out, err := s.Tasks.Complete(r.Context(), uid, r.PathValue("id"), req.Reflection)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	r, uid := withUser(r)
	if err := s.Tasks.Delete(r.Context(), uid, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetCategories(w http.ResponseWriter, r *http.Request) {
	r, uid := withUser(r)
	list, err := s.Logbook.Categories(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categoriesBody{Categories: list})
}

func (s *Server) handlePutCategories(w http.ResponseWriter, r *http.Request) {
	r, uid := withUser(r)
	var req categoriesBody
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	list, err := s.Logbook.SaveCategories(r.Context(), uid, req.Categories)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categoriesBody{Categories: list})
}

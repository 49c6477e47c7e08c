package httpadapter

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/PabloGalante/serene/internal/app/conversation"
	"github.com/PabloGalante/serene/internal/domain"
	"github.com/PabloGalante/serene/internal/observability"
)

type chatRequest struct {
	Text string `json:"text"`
}

// handleChat streams the reply as chunked text/plain. Errors are reported
// as JSON only while nothing has been written yet.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r, uid := withUser(r)
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	rc := http.NewResponseController(w)
	wrote := false
	onChunk := func(chunk string) {
		if !wrote {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.WriteHeader(http.StatusOK)
			wrote = true
		}
		_, _ = w.Write([]byte(chunk))
		_ = rc.Flush()
	}

	out, err := s.Conversation.SendMessage(r.Context(), conversation.SendMessageInput{
		UserID: uid,
		Text:   req.Text,
	}, onChunk)
	if err != nil {
		if !wrote {
			writeError(w, r, err)
			return
		}
		observability.LoggerFromContext(r.Context()).Warn("chat stream interrupted", "error", err)
		return
	}
	if !wrote {
		// nothing streamed and no fallback, still answer the request
		writeJSON(w, http.StatusOK, out)
	}
}

// ─────────────────────────────────────────────
// WebSocket
// ─────────────────────────────────────────────

// checkOrigin accepts requests without an Origin header, the API's own
// origin and the configured AllowedOrigins.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

type wsFrame struct {
	Type    string              `json:"type"`
	Text    string              `json:"text,omitempty"`
	Error   string              `json:"error,omitempty"`
	Intent  string              `json:"intent,omitempty"`
	Message *domain.ChatMessage `json:"message,omitempty"`
}

// handleChatWebSocket keeps one connection per client. Every {"text"} frame
// is answered with chunk frames followed by a done or error frame.
func (s *Server) handleChatWebSocket(w http.ResponseWriter, r *http.Request) {
	r, uid := withUser(r)
	log := observability.LoggerFromContext(r.Context())

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client
		log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	for {
		var req chatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("websocket read ended", "error", err)
			}
			return
		}

		var writeErr error
		out, err := s.Conversation.SendMessage(r.Context(), conversation.SendMessageInput{
			UserID: uid,
			Text:   req.Text,
		}, func(chunk string) {
			if writeErr == nil {
				writeErr = conn.WriteJSON(wsFrame{Type: "chunk", Text: chunk})
			}
		})
		if writeErr != nil {
			log.Warn("websocket write failed", "error", writeErr)
			return
		}

		frame := wsFrame{Type: "done"}
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			frame = wsFrame{Type: "error", Error: err.Error()}
		case err != nil:
			log.Error("chat over websocket failed", "error", err)
			frame = wsFrame{Type: "error", Error: "internal server error"}
		default:
			frame.Intent = string(out.Intent)
			frame.Message = &out.ModelMessage
		}
		if err := conn.WriteJSON(frame); err != nil {
			log.Warn("websocket write failed", "error", err)
			return
		}
	}
}

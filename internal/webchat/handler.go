package webchat

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/websocket"

	"github.com/dentalcareconnect/chatbot-backend/internal/chat"
	"github.com/dentalcareconnect/chatbot-backend/internal/store"
	"github.com/dentalcareconnect/chatbot-backend/pkg/logging"
)

// Conversationalist handles one chat message end to end.
type Conversationalist interface {
	HandleMessage(ctx context.Context, userID, message string) (*chat.Reply, error)
}

// Handler serves the live chat websocket. Replies are produced synchronously
// by the orchestrator, so each inbound message gets a typing indicator
// followed by the assistant turn on the same connection.
type Handler struct {
	svc    Conversationalist
	logger *logging.Logger
}

// InboundMessage is what the chat widget sends.
type InboundMessage struct {
	Type   string `json:"type"` // "message", "ping"
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

// OutboundMessage is what we send to the widget.
type OutboundMessage struct {
	Type       string  `json:"type"` // "message", "typing", "pong", "error"
	Text       string  `json:"text,omitempty"`
	Role       string  `json:"role,omitempty"`
	Intent     string  `json:"intent,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Timestamp  string  `json:"timestamp,omitempty"`
}

// NewHandler creates a web chat handler.
func NewHandler(svc Conversationalist, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// HandleWebSocket upgrades to WebSocket and relays chat messages.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: "missing user_id parameter"})
		return
	}

	h.logger.Info("webchat: connection opened", "user_id", userID)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("webchat: connection closed", "user_id", userID, "error", err)
			return
		}

		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
			continue
		}
		if msg.Type != "message" || strings.TrimSpace(msg.Text) == "" {
			continue
		}

		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "typing"})

		reply, err := h.svc.HandleMessage(r.Context(), userID, msg.Text)
		if err != nil {
			text := "Sorry, something went wrong. Please try again."
			if errors.Is(err, store.ErrNotFound) {
				text = "We couldn't find your account. Please sign in again."
			}
			h.logger.Error("webchat: message handling failed", "user_id", userID, "error", err)
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: text})
			continue
		}

		_ = websocket.JSON.Send(conn, OutboundMessage{
			Type:       "message",
			Role:       "assistant",
			Text:       reply.Text,
			Intent:     string(reply.Intent),
			Confidence: reply.Confidence,
			Timestamp:  reply.Timestamp.Format(time.RFC3339),
		})
	}
}

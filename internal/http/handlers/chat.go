package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dentalcareconnect/chatbot-backend/internal/chat"
	"github.com/dentalcareconnect/chatbot-backend/internal/http/middleware"
	"github.com/dentalcareconnect/chatbot-backend/internal/store"
	"github.com/dentalcareconnect/chatbot-backend/pkg/logging"
)

// Conversationalist handles one chat message end to end.
type Conversationalist interface {
	HandleMessage(ctx context.Context, userID, message string) (*chat.Reply, error)
}

// ChatHandler serves the main conversational endpoint.
type ChatHandler struct {
	svc    Conversationalist
	logger *logging.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(svc Conversationalist, logger *logging.Logger) *ChatHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ChatHandler{svc: svc, logger: logger}
}

// ChatResponse is the reply envelope for POST /chat.
type ChatResponse struct {
	Success    bool      `json:"success"`
	Reply      string    `json:"reply"`
	UserName   string    `json:"user_name"`
	Intent     string    `json:"intent"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// Handle processes POST /chat with form fields user_id and message.
func (h *ChatHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	userID := r.FormValue("user_id")
	message := r.FormValue("message")
	if userID == "" || message == "" {
		writeError(w, http.StatusBadRequest, "user_id and message are required")
		return
	}

	// A verified token must be speaking for the submitted user.
	if claims, ok := middleware.PatientClaimsFromContext(r.Context()); ok {
		if claims.Subject != "" && claims.Subject != userID {
			writeError(w, http.StatusForbidden, "token subject does not match user_id")
			return
		}
	}

	reply, err := h.svc.HandleMessage(r.Context(), userID, message)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("chat handling failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Success:    true,
		Reply:      reply.Text,
		UserName:   reply.UserName,
		Intent:     string(reply.Intent),
		Confidence: reply.Confidence,
		Timestamp:  reply.Timestamp,
	})
}

package handlers

import (
	"net/http"

	"github.com/dentalcareconnect/chatbot-backend/internal/intent"
	"github.com/dentalcareconnect/chatbot-backend/pkg/logging"
)

// IntentHandler exposes the classifier directly for debugging and frontend
// routing hints.
type IntentHandler struct {
	classifier intent.Classifier
	logger     *logging.Logger
}

// NewIntentHandler creates a new intent handler.
func NewIntentHandler(classifier intent.Classifier, logger *logging.Logger) *IntentHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &IntentHandler{classifier: classifier, logger: logger}
}

// Classify handles POST /intent/classify with form field message.
func (h *IntentHandler) Classify(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	message := r.FormValue("message")
	if message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	result := h.classifier.Classify(r.Context(), message)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"intent":      result.Intent,
		"confidence":  result.Confidence,
		"all_scores":  result.Scores,
		"description": intent.Describe(result.Intent),
	})
}

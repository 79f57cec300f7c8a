package handlers

import (
	"net/http"
	"time"
)

// HealthHandler serves the service info and health endpoints.
type HealthHandler struct {
	geminiConfigured   bool
	databaseConfigured bool
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(geminiConfigured, databaseConfigured bool) *HealthHandler {
	return &HealthHandler{
		geminiConfigured:   geminiConfigured,
		databaseConfigured: databaseConfigured,
	}
}

// Info handles GET /.
func (h *HealthHandler) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "DentalCareConnect Chatbot API",
		"version": "1.0.0",
		"status":  "running",
	})
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":              "healthy",
		"timestamp":           time.Now().UTC(),
		"gemini_configured":   h.geminiConfigured,
		"database_configured": h.databaseConfigured,
	})
}

package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dentalcareconnect/chatbot-backend/internal/store"
	"github.com/dentalcareconnect/chatbot-backend/pkg/logging"
)

// AppointmentLister reads a patient's recent appointments.
type AppointmentLister interface {
	ListRecent(ctx context.Context, userID string, limit int) ([]store.Appointment, error)
}

// DentistDirectory reads dentist rosters and availability.
type DentistDirectory interface {
	ListAvailable(ctx context.Context, specialization string) ([]store.Dentist, error)
	Availability(ctx context.Context, dentistID string) ([]store.AvailabilitySlot, error)
}

// DirectoryHandler serves appointment and dentist lookup endpoints.
type DirectoryHandler struct {
	appointments AppointmentLister
	dentists     DentistDirectory
	logger       *logging.Logger
}

// NewDirectoryHandler creates a new directory handler.
func NewDirectoryHandler(appointments AppointmentLister, dentists DentistDirectory, logger *logging.Logger) *DirectoryHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &DirectoryHandler{appointments: appointments, dentists: dentists, logger: logger}
}

// Appointments handles GET /appointments/{userID}?limit=.
func (h *DirectoryHandler) Appointments(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userID is required")
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	appointments, err := h.appointments.ListRecent(r.Context(), userID, limit)
	if err != nil {
		h.logger.Error("failed to list appointments", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if appointments == nil {
		appointments = []store.Appointment{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"appointments": appointments,
		"count":        len(appointments),
	})
}

// Dentists handles GET /dentists?specialization=.
func (h *DirectoryHandler) Dentists(w http.ResponseWriter, r *http.Request) {
	dentists, err := h.dentists.ListAvailable(r.Context(), r.URL.Query().Get("specialization"))
	if err != nil {
		h.logger.Error("failed to list dentists", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if dentists == nil {
		dentists = []store.Dentist{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"dentists": dentists,
		"count":    len(dentists),
	})
}

// Availability handles GET /dentist/{dentistID}/availability?date=. A date
// narrows the weekly schedule to that day of week.
func (h *DirectoryHandler) Availability(w http.ResponseWriter, r *http.Request) {
	dentistID := chi.URLParam(r, "dentistID")
	if dentistID == "" {
		writeError(w, http.StatusBadRequest, "dentistID is required")
		return
	}

	var weekday string
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		weekday = parsed.Weekday().String()
	}

	slots, err := h.dentists.Availability(r.Context(), dentistID)
	if err != nil {
		h.logger.Error("failed to list availability", "dentist_id", dentistID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if weekday != "" {
		filtered := slots[:0]
		for _, slot := range slots {
			if strings.EqualFold(slot.Day, weekday) {
				filtered = append(filtered, slot)
			}
		}
		slots = filtered
	}
	if slots == nil {
		slots = []store.AvailabilitySlot{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"availability": slots,
		"count":        len(slots),
	})
}

package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dentalcareconnect/chatbot-backend/internal/gemini"
	"github.com/dentalcareconnect/chatbot-backend/internal/intent"
	"github.com/dentalcareconnect/chatbot-backend/internal/observability/metrics"
	"github.com/dentalcareconnect/chatbot-backend/internal/store"
	"github.com/dentalcareconnect/chatbot-backend/pkg/logging"
)

// defaultAppointmentLimit bounds the appointments fetched for rendering.
const defaultAppointmentLimit = 3

// historyWindow is how many cached turns feed a prompt.
const historyWindow = 5

// UserDirectory resolves chat users.
type UserDirectory interface {
	GetByID(ctx context.Context, userID string) (*store.User, error)
}

// AppointmentReader lists a patient's recent appointments.
type AppointmentReader interface {
	ListRecent(ctx context.Context, userID string, limit int) ([]store.Appointment, error)
}

// DentistReader lists dentists available for recommendation.
type DentistReader interface {
	ListAvailable(ctx context.Context, specialization string) ([]store.Dentist, error)
}

// ChatLog persists conversation turns.
type ChatLog interface {
	AppendExchange(ctx context.Context, userID string, userMsg, assistantMsg store.ChatMessage) error
	History(ctx context.Context, userID string, limit int) ([]store.ChatMessage, error)
}

// Generator produces replies, recommendations, and booking extractions.
type Generator interface {
	GenerateReply(ctx context.Context, message string, chatCtx gemini.ChatContext) string
	SuggestDentist(ctx context.Context, symptoms string, dentists []gemini.DentistProfile) gemini.Suggestion
	ExtractBookingInfo(ctx context.Context, history []gemini.Turn) gemini.BookingInfo
}

// Reply is the outcome of one handled message.
type Reply struct {
	Text       string
	UserName   string
	Intent     intent.Label
	Confidence float64
	Timestamp  time.Time
}

// Config wires the orchestrator's collaborators.
type Config struct {
	Users        UserDirectory
	Appointments AppointmentReader
	Dentists     DentistReader
	ChatLog      ChatLog
	Classifier   intent.Classifier
	Generator    Generator
	History      *HistoryCache
	Logger       *logging.Logger
	Metrics      *metrics.ChatMetrics
}

// Service routes an inbound message: resolve the user, classify the intent,
// gather whatever context that intent needs, generate the reply, and log the
// exchange. It holds no per-conversation state of its own.
type Service struct {
	users        UserDirectory
	appointments AppointmentReader
	dentists     DentistReader
	chatLog      ChatLog
	classifier   intent.Classifier
	generator    Generator
	history      *HistoryCache
	logger       *logging.Logger
	metrics      *metrics.ChatMetrics
}

// NewService creates the conversation orchestrator.
func NewService(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		users:        cfg.Users,
		appointments: cfg.Appointments,
		dentists:     cfg.Dentists,
		chatLog:      cfg.ChatLog,
		classifier:   cfg.Classifier,
		generator:    cfg.Generator,
		history:      cfg.History,
		logger:       logger,
		metrics:      cfg.Metrics,
	}
}

// HandleMessage processes one chat message end to end. The only error it
// returns is a failed user resolution; degraded backends produce fallback
// text instead.
func (s *Service) HandleMessage(ctx context.Context, userID, message string) (*Reply, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.metrics.ObserveChat("unresolved", "user_not_found")
		return nil, err
	}

	result := s.classifier.Classify(ctx, message)
	s.logger.Info("classified intent",
		"user_id", userID,
		"intent", result.Intent,
		"confidence", result.Confidence,
	)

	chatCtx := gemini.ChatContext{
		UserName: user.Name,
		UserRole: user.Role,
		History:  s.recentTurns(ctx, userID),
	}

	var replyText string
	switch result.Intent {
	case intent.LabelViewAppointments:
		replyText = s.renderAppointments(ctx, user)
	case intent.LabelDentistSuggestion:
		replyText = s.recommendDentist(ctx, message)
	case intent.LabelBookAppointment:
		replyText = s.handleBooking(ctx, userID, message, chatCtx)
	default:
		replyText = s.generator.GenerateReply(ctx, message, chatCtx)
	}

	now := time.Now().UTC()
	s.logExchange(ctx, userID,
		store.ChatMessage{Role: "user", Content: message, Timestamp: now},
		store.ChatMessage{Role: "assistant", Content: replyText, Timestamp: now},
	)

	s.metrics.ObserveChat(string(result.Intent), "ok")
	return &Reply{
		Text:       replyText,
		UserName:   user.Name,
		Intent:     result.Intent,
		Confidence: result.Confidence,
		Timestamp:  now,
	}, nil
}

// handleBooking frames the message for the booking flow. Details extracted
// from the conversation are carried into the prompt and logged so the
// scheduling side can pick them up.
func (s *Service) handleBooking(ctx context.Context, userID, message string, chatCtx gemini.ChatContext) string {
	framed := fmt.Sprintf("User wants to book an appointment. Their message: %s", message)

	turns := append(append([]gemini.Turn{}, chatCtx.History...), gemini.Turn{Role: "user", Content: message})
	info := s.generator.ExtractBookingInfo(ctx, turns)
	if info.Structured != nil {
		s.logger.Info("extracted booking details",
			"user_id", userID,
			"symptoms", info.Structured.Symptoms,
			"preferred_date", info.Structured.PreferredDate,
			"preferred_time", info.Structured.PreferredTime,
			"dentist_preference", info.Structured.DentistPreference,
			"urgency", info.Structured.Urgency,
		)
		var known []string
		if info.Structured.Symptoms != "" {
			known = append(known, "symptoms: "+info.Structured.Symptoms)
		}
		if info.Structured.PreferredDate != "" {
			known = append(known, "preferred date: "+info.Structured.PreferredDate)
		}
		if info.Structured.PreferredTime != "" {
			known = append(known, "preferred time: "+info.Structured.PreferredTime)
		}
		if len(known) > 0 {
			framed += "\nKnown booking details: " + strings.Join(known, ", ")
		}
	}

	return s.generator.GenerateReply(ctx, framed, chatCtx)
}

// renderAppointments lists the patient's recent appointments, or invites a
// booking when there are none. A failed read degrades to the invitation.
func (s *Service) renderAppointments(ctx context.Context, user *store.User) string {
	appointments, err := s.appointments.ListRecent(ctx, user.ID, defaultAppointmentLimit)
	if err != nil {
		s.logger.Warn("failed to fetch appointments", "user_id", user.ID, "error", err)
		appointments = nil
	}
	if len(appointments) == 0 {
		return fmt.Sprintf("Hello %s! You don't have any appointments yet. Would you like to book one?", user.Name)
	}

	var out strings.Builder
	fmt.Fprintf(&out, "Hello %s! Here are your recent appointments:\n\n", user.Name)
	for _, apt := range appointments {
		fmt.Fprintf(&out, "• %s at %s - %s with %s (Status: %s)\n",
			apt.Date, apt.Time, apt.Type, apt.Dentist, apt.Status)
	}
	return out.String()
}

// recommendDentist asks the generator to pick a dentist for the symptoms in
// the message, over the unfiltered available roster.
func (s *Service) recommendDentist(ctx context.Context, message string) string {
	dentists, err := s.dentists.ListAvailable(ctx, "")
	if err != nil {
		s.logger.Warn("failed to fetch dentists", "error", err)
		dentists = nil
	}

	profiles := make([]gemini.DentistProfile, 0, len(dentists))
	for _, d := range dentists {
		profiles = append(profiles, gemini.DentistProfile{
			Name:           d.Name,
			Specialization: d.Specialization,
			Rating:         d.Rating,
		})
	}
	return s.generator.SuggestDentist(ctx, message, profiles).Text()
}

// recentTurns reads prompt history from the cache, falling back to the
// persisted log when the cache is cold or absent.
func (s *Service) recentTurns(ctx context.Context, userID string) []gemini.Turn {
	messages, err := s.history.Recent(ctx, userID, historyWindow)
	if err != nil {
		s.logger.Warn("history cache read failed", "user_id", userID, "error", err)
		messages = nil
	}
	if len(messages) == 0 && s.chatLog != nil {
		if stored, err := s.chatLog.History(ctx, userID, historyWindow); err == nil {
			messages = stored
		}
	}

	turns := make([]gemini.Turn, 0, len(messages))
	for _, msg := range messages {
		turns = append(turns, gemini.Turn{Role: msg.Role, Content: msg.Content})
	}
	return turns
}

// logExchange appends both turns in one write and mirrors them into the
// history cache. Failures are logged, never surfaced to the patient.
func (s *Service) logExchange(ctx context.Context, userID string, userMsg, assistantMsg store.ChatMessage) {
	if s.chatLog != nil {
		if err := s.chatLog.AppendExchange(ctx, userID, userMsg, assistantMsg); err != nil {
			s.logger.Error("failed to persist chat exchange", "user_id", userID, "error", err)
		}
	}
	if err := s.history.Append(ctx, userID, userMsg, assistantMsg); err != nil {
		s.logger.Warn("history cache append failed", "user_id", userID, "error", err)
	}
}

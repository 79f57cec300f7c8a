package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dentalcareconnect/chatbot-backend/internal/http/handlers"
	httpmiddleware "github.com/dentalcareconnect/chatbot-backend/internal/http/middleware"
	"github.com/dentalcareconnect/chatbot-backend/internal/webchat"
	"github.com/dentalcareconnect/chatbot-backend/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger           *logging.Logger
	HealthHandler    *handlers.HealthHandler
	ChatHandler      *handlers.ChatHandler
	UploadHandler    *handlers.UploadHandler
	DirectoryHandler *handlers.DirectoryHandler
	IntentHandler    *handlers.IntentHandler
	WebChatHandler   *webchat.Handler
	MetricsHandler   http.Handler

	// JWTSecret enables bearer auth on the patient-facing chat and upload
	// endpoints when non-empty.
	JWTSecret          string
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		if cfg.HealthHandler != nil {
			public.Get("/", cfg.HealthHandler.Info)
			public.Get("/health", cfg.HealthHandler.Health)
		}
		if cfg.DirectoryHandler != nil {
			public.Get("/appointments/{userID}", cfg.DirectoryHandler.Appointments)
			public.Get("/dentists", cfg.DirectoryHandler.Dentists)
			public.Get("/dentist/{dentistID}/availability", cfg.DirectoryHandler.Availability)
		}
		if cfg.IntentHandler != nil {
			public.Post("/intent/classify", cfg.IntentHandler.Classify)
		}
		if cfg.WebChatHandler != nil {
			public.Get("/ws/chat", cfg.WebChatHandler.HandleWebSocket)
		}
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Patient endpoints, behind bearer auth when a secret is configured.
	r.Group(func(patient chi.Router) {
		if cfg.JWTSecret != "" {
			patient.Use(httpmiddleware.PatientJWT(cfg.JWTSecret))
		}
		if cfg.ChatHandler != nil {
			patient.Post("/chat", cfg.ChatHandler.Handle)
		}
		if cfg.UploadHandler != nil {
			patient.Post("/upload_xray", cfg.UploadHandler.Handle)
		}
	})

	return r
}

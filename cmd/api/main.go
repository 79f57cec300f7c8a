package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/dentalcareconnect/chatbot-backend/internal/api/router"
	"github.com/dentalcareconnect/chatbot-backend/internal/chat"
	appconfig "github.com/dentalcareconnect/chatbot-backend/internal/config"
	"github.com/dentalcareconnect/chatbot-backend/internal/gemini"
	"github.com/dentalcareconnect/chatbot-backend/internal/http/handlers"
	"github.com/dentalcareconnect/chatbot-backend/internal/intent"
	"github.com/dentalcareconnect/chatbot-backend/internal/observability/metrics"
	"github.com/dentalcareconnect/chatbot-backend/internal/store"
	"github.com/dentalcareconnect/chatbot-backend/internal/uploads"
	"github.com/dentalcareconnect/chatbot-backend/internal/webchat"
	"github.com/dentalcareconnect/chatbot-backend/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	if err := cfg.EnsureDirs(); err != nil {
		logging.Default().Error("failed to create data directories", "error", err)
		os.Exit(1)
	}

	logger := logging.NewWithFile(cfg.LogLevel, cfg.LogFile)
	logger.Info("starting chatbot API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	llm, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelFlash, cfg.GeminiModelPro)
	if err != nil {
		logger.Error("failed to create gemini client", "error", err)
		os.Exit(1)
	}
	defer func() { _ = llm.Close() }()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	chatMetrics := metrics.NewChatMetrics(registry)

	// Optional conversation history cache.
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer func() { _ = redisClient.Close() }()
	}

	// Stores
	userStore := store.NewUserStore(pool)
	appointmentStore := store.NewAppointmentStore(pool)
	dentistStore := store.NewDentistStore(pool)
	chatLogStore := store.NewChatLogStore(pool)
	uploadStore := store.NewUploadStore(pool)

	// Services
	classifier := intent.NewClient(intent.Config{
		BaseURL: cfg.IntentAPIURL,
		Model:   cfg.IntentModel,
		Token:   cfg.IntentAPIToken,
		Timeout: cfg.IntentTimeout,
	}, logger)
	generator := gemini.NewService(llm, logger, chatMetrics)
	chatService := chat.NewService(chat.Config{
		Users:        userStore,
		Appointments: appointmentStore,
		Dentists:     dentistStore,
		ChatLog:      chatLogStore,
		Classifier:   classifier,
		Generator:    generator,
		History:      chat.NewHistoryCache(redisClient),
		Logger:       logger,
		Metrics:      chatMetrics,
	})
	uploadService := uploads.NewService(uploads.Config{
		UploadDir:         cfg.UploadDir,
		MaxFileSize:       cfg.MaxFileSize,
		AllowedExtensions: cfg.AllowedExtensions,
		Analyzer:          generator,
		Recorder:          uploadStore,
		ChatLog:           chatLogStore,
		Logger:            logger,
		Metrics:           chatMetrics,
	})

	// Router
	r := router.New(&router.Config{
		Logger:             logger,
		HealthHandler:      handlers.NewHealthHandler(cfg.GeminiConfigured(), cfg.DatabaseConfigured()),
		ChatHandler:        handlers.NewChatHandler(chatService, logger),
		UploadHandler:      handlers.NewUploadHandler(uploadService, logger),
		DirectoryHandler:   handlers.NewDirectoryHandler(appointmentStore, dentistStore, logger),
		IntentHandler:      handlers.NewIntentHandler(classifier, logger),
		WebChatHandler:     webchat.NewHandler(chatService, logger),
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		JWTSecret:          cfg.JWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Host + ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Host        string
	Port        string
	Env         string
	LogLevel    string
	LogFile     string
	DatabaseURL string

	// Gemini generation backend
	GeminiAPIKey     string
	GeminiModelPro   string
	GeminiModelFlash string

	// Intent classification backend
	IntentAPIURL    string
	IntentAPIToken  string
	IntentModel     string
	IntentThreshold float64
	IntentTimeout   time.Duration

	// File uploads
	UploadDir         string
	MaxFileSize       int64
	AllowedExtensions []string

	// Auth
	JWTSecret          string
	JWTAlgorithm       string
	AccessTokenExpires time.Duration

	// Conversation history cache
	RedisAddr     string
	RedisPassword string

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Host:        getEnv("HOST", "0.0.0.0"),
		Port:        getEnv("PORT", "8000"),
		Env:         getEnv("ENV", "development"),
		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFile:     getEnv("LOG_FILE", "./logs/chatbot.log"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModelPro:   getEnv("GEMINI_MODEL_PRO", "gemini-2.5-pro"),
		GeminiModelFlash: getEnv("GEMINI_MODEL_FLASH", "gemini-2.5-flash"),

		IntentAPIURL:    getEnv("INTENT_API_URL", "https://api-inference.huggingface.co/models"),
		IntentAPIToken:  getEnv("INTENT_API_TOKEN", ""),
		IntentModel:     getEnv("INTENT_MODEL", "facebook/bart-large-mnli"),
		IntentThreshold: getEnvAsFloat("INTENT_THRESHOLD", 0.7),
		IntentTimeout:   getEnvAsDuration("INTENT_TIMEOUT", 15*time.Second),

		UploadDir:         getEnv("UPLOAD_DIR", "./uploads"),
		MaxFileSize:       int64(getEnvAsInt("MAX_FILE_SIZE", 10485760)),
		AllowedExtensions: splitAndTrim(getEnv("ALLOWED_EXTENSIONS", ".png,.jpg,.jpeg,.pdf")),

		JWTSecret:          getEnv("SECRET_KEY", ""),
		JWTAlgorithm:       getEnv("JWT_ALGORITHM", "HS256"),
		AccessTokenExpires: getEnvAsDuration("ACCESS_TOKEN_EXPIRES", 30*time.Minute),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ORIGINS", "http://localhost:5174,http://localhost:3010,http://localhost:3011")),
	}
}

// EnsureDirs creates the directories configuration points at (uploads, logs).
func (c *Config) EnsureDirs() error {
	if err := os.MkdirAll(c.UploadDir, 0o755); err != nil {
		return fmt.Errorf("config: create upload dir: %w", err)
	}
	if c.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(c.LogFile), 0o755); err != nil {
			return fmt.Errorf("config: create log dir: %w", err)
		}
	}
	return nil
}

// GeminiConfigured reports whether generation credentials are present.
func (c *Config) GeminiConfigured() bool {
	return strings.TrimSpace(c.GeminiAPIKey) != ""
}

// DatabaseConfigured reports whether a connection string is present.
func (c *Config) DatabaseConfigured() bool {
	return strings.TrimSpace(c.DatabaseURL) != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

package uploads

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dentalcareconnect/chatbot-backend/internal/gemini"
	"github.com/dentalcareconnect/chatbot-backend/internal/observability/metrics"
	"github.com/dentalcareconnect/chatbot-backend/internal/store"
	"github.com/dentalcareconnect/chatbot-backend/pkg/logging"
)

// ErrValidation marks client errors: disallowed extension or oversized file.
// The request is rejected before any storage side effect.
var ErrValidation = errors.New("uploads: validation failed")

const unsupportedAnalysis = "File type not supported for analysis"

// Analyzer runs the AI analysis for an accepted file.
type Analyzer interface {
	AnalyzeXray(ctx context.Context, image []byte, mimeType, query string) string
	AnalyzeDocument(ctx context.Context, text, query string) string
}

// Recorder persists upload metadata.
type Recorder interface {
	Save(ctx context.Context, userID, filePath, analysis string) (string, error)
}

// ChatLog appends the upload notice and analysis to the conversation log.
type ChatLog interface {
	AppendExchange(ctx context.Context, userID string, userMsg, assistantMsg store.ChatMessage) error
}

// Result is the outcome of one processed upload.
type Result struct {
	Analysis  string
	FilePath  string
	UploadID  string
	Timestamp time.Time
}

// Config wires the upload service.
type Config struct {
	UploadDir         string
	MaxFileSize       int64
	AllowedExtensions []string
	Analyzer          Analyzer
	Recorder          Recorder
	ChatLog           ChatLog
	Logger            *logging.Logger
	Metrics           *metrics.ChatMetrics
}

// Service validates, stores, and analyzes uploaded files.
type Service struct {
	uploadDir   string
	maxFileSize int64
	allowedExts map[string]struct{}
	allowedList string
	analyzer    Analyzer
	recorder    Recorder
	chatLog     ChatLog
	logger      *logging.Logger
	metrics     *metrics.ChatMetrics
}

// NewService creates the upload service.
func NewService(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	allowed := make(map[string]struct{}, len(cfg.AllowedExtensions))
	list := make([]string, 0, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		allowed[ext] = struct{}{}
		list = append(list, ext)
	}
	return &Service{
		uploadDir:   cfg.UploadDir,
		maxFileSize: cfg.MaxFileSize,
		allowedExts: allowed,
		allowedList: strings.Join(list, ","),
		analyzer:    cfg.Analyzer,
		recorder:    cfg.Recorder,
		chatLog:     cfg.ChatLog,
		logger:      logger,
		metrics:     cfg.Metrics,
	}
}

// Process validates and stores the file, runs the matching analysis, records
// the upload, and logs the exchange. Validation failures abort before any
// write; a degraded analysis backend still produces a record.
func (s *Service) Process(ctx context.Context, userID, filename string, content []byte, query string) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := s.allowedExts[ext]; !ok {
		s.metrics.ObserveUpload(kindFor(ext), "rejected")
		return nil, fmt.Errorf("%w: file type not allowed. Allowed types: %s", ErrValidation, s.allowedList)
	}
	if int64(len(content)) > s.maxFileSize {
		s.metrics.ObserveUpload(kindFor(ext), "rejected")
		return nil, fmt.Errorf("%w: file too large. Maximum size: %dMB", ErrValidation, s.maxFileSize/1024/1024)
	}

	now := time.Now().UTC()
	storedName := fmt.Sprintf("%s_%s_%s", userID, now.Format("20060102_150405"), filepath.Base(filename))
	filePath := filepath.Join(s.uploadDir, storedName)

	if err := os.WriteFile(filePath, content, 0o644); err != nil {
		s.metrics.ObserveUpload(kindFor(ext), "error")
		return nil, fmt.Errorf("uploads: save file: %w", err)
	}
	s.logger.Info("file saved", "user_id", userID, "path", filePath)

	analysis := s.analyze(ctx, ext, filePath, content, query)

	uploadID, err := s.recorder.Save(ctx, userID, filePath, analysis)
	if err != nil {
		// An empty id means "not persisted"; the upload itself still succeeded.
		s.logger.Error("failed to persist upload record", "user_id", userID, "error", err)
		uploadID = ""
	}

	if s.chatLog != nil {
		err := s.chatLog.AppendExchange(ctx, userID,
			store.ChatMessage{Role: "user", Content: fmt.Sprintf("Uploaded file: %s", filepath.Base(filename)), Timestamp: now},
			store.ChatMessage{Role: "assistant", Content: fmt.Sprintf("Analysis: %s", analysis), Timestamp: now},
		)
		if err != nil {
			s.logger.Error("failed to log upload exchange", "user_id", userID, "error", err)
		}
	}

	s.metrics.ObserveUpload(kindFor(ext), "ok")
	return &Result{
		Analysis:  analysis,
		FilePath:  filePath,
		UploadID:  uploadID,
		Timestamp: now,
	}, nil
}

func (s *Service) analyze(ctx context.Context, ext, filePath string, content []byte, query string) string {
	switch ext {
	case ".png", ".jpg", ".jpeg":
		return s.analyzer.AnalyzeXray(ctx, content, mimeFor(ext), query)
	case ".pdf":
		text, err := ExtractText(filePath)
		if err != nil {
			s.logger.Error("pdf text extraction failed", "path", filePath, "error", err)
			return gemini.FallbackDocument
		}
		return s.analyzer.AnalyzeDocument(ctx, text, query)
	default:
		return unsupportedAnalysis
	}
}

func kindFor(ext string) string {
	switch ext {
	case ".png", ".jpg", ".jpeg":
		return "image"
	case ".pdf":
		return "document"
	default:
		return "other"
	}
}

func mimeFor(ext string) string {
	switch ext {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}

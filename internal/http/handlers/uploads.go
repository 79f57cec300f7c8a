package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/dentalcareconnect/chatbot-backend/internal/http/middleware"
	"github.com/dentalcareconnect/chatbot-backend/internal/uploads"
	"github.com/dentalcareconnect/chatbot-backend/pkg/logging"
)

// multipartMemoryLimit caps how much of a multipart body is buffered in
// memory before spilling to temp files.
const multipartMemoryLimit = 32 << 20

// UploadProcessor validates, stores, and analyzes an uploaded file.
type UploadProcessor interface {
	Process(ctx context.Context, userID, filename string, content []byte, query string) (*uploads.Result, error)
}

// UploadHandler serves the X-ray and document upload endpoint.
type UploadHandler struct {
	svc    UploadProcessor
	logger *logging.Logger
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(svc UploadProcessor, logger *logging.Logger) *UploadHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &UploadHandler{svc: svc, logger: logger}
}

// UploadResponse is the reply envelope for POST /upload_xray.
type UploadResponse struct {
	Success   bool      `json:"success"`
	Analysis  string    `json:"analysis"`
	FilePath  string    `json:"file_path"`
	UploadID  string    `json:"upload_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Handle processes POST /upload_xray: multipart file, user_id, and an
// optional query steering the analysis.
func (h *UploadHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	userID := r.FormValue("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	if claims, ok := middleware.PatientClaimsFromContext(r.Context()); ok {
		if claims.Subject != "" && claims.Subject != userID {
			writeError(w, http.StatusForbidden, "token subject does not match user_id")
			return
		}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("failed to read upload body", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read file")
		return
	}

	result, err := h.svc.Process(r.Context(), userID, header.Filename, content, r.FormValue("query"))
	if err != nil {
		if errors.Is(err, uploads.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("upload processing failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		Success:   true,
		Analysis:  result.Analysis,
		FilePath:  result.FilePath,
		UploadID:  result.UploadID,
		Timestamp: result.Timestamp,
	})
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dentalcareconnect/chatbot-backend/internal/uploads"
)

type fakeUploadProcessor struct {
	result *uploads.Result
	err    error

	lastFilename string
	lastQuery    string
	lastContent  []byte
}

func (f *fakeUploadProcessor) Process(ctx context.Context, userID, filename string, content []byte, query string) (*uploads.Result, error) {
	f.lastFilename = filename
	f.lastQuery = query
	f.lastContent = content
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func multipartUpload(t *testing.T, fields map[string]string, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("create file part: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/upload_xray", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadHandlerSuccess(t *testing.T) {
	svc := &fakeUploadProcessor{result: &uploads.Result{
		Analysis:  "No cavities visible.",
		FilePath:  "uploads/u1_20260829_120000_scan.png",
		UploadID:  "up-1",
		Timestamp: time.Now().UTC(),
	}}
	h := NewUploadHandler(svc, nil)

	req := multipartUpload(t, map[string]string{"user_id": "u1", "query": "check molars"}, "scan.png", []byte{0x89, 0x50})
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var body UploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !body.Success || body.Analysis != "No cavities visible." || body.UploadID != "up-1" {
		t.Errorf("unexpected body: %+v", body)
	}
	if svc.lastFilename != "scan.png" || svc.lastQuery != "check molars" {
		t.Errorf("unexpected service call: %s %s", svc.lastFilename, svc.lastQuery)
	}
	if !bytes.Equal(svc.lastContent, []byte{0x89, 0x50}) {
		t.Error("expected file content forwarded")
	}
}

func TestUploadHandlerMissingUserID(t *testing.T) {
	h := NewUploadHandler(&fakeUploadProcessor{}, nil)

	req := multipartUpload(t, nil, "scan.png", []byte{0x89})
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestUploadHandlerMissingFile(t *testing.T) {
	h := NewUploadHandler(&fakeUploadProcessor{}, nil)

	req := multipartUpload(t, map[string]string{"user_id": "u1"}, "", nil)
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestUploadHandlerValidationErrorMapsTo400(t *testing.T) {
	svc := &fakeUploadProcessor{err: fmt.Errorf("%w: file type not allowed", uploads.ErrValidation)}
	h := NewUploadHandler(svc, nil)

	req := multipartUpload(t, map[string]string{"user_id": "u1"}, "malware.exe", []byte{0x4d})
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestUploadHandlerProcessorFailureMapsTo500(t *testing.T) {
	svc := &fakeUploadProcessor{err: fmt.Errorf("uploads: save file: disk full")}
	h := NewUploadHandler(svc, nil)

	req := multipartUpload(t, map[string]string{"user_id": "u1"}, "scan.png", []byte{0x89})
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}
}

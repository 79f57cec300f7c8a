package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dentalcareconnect/chatbot-backend/internal/chat"
	"github.com/dentalcareconnect/chatbot-backend/internal/intent"
	"github.com/dentalcareconnect/chatbot-backend/internal/store"
)

type fakeConversationalist struct {
	reply *chat.Reply
	err   error

	lastUserID  string
	lastMessage string
}

func (f *fakeConversationalist) HandleMessage(ctx context.Context, userID, message string) (*chat.Reply, error) {
	f.lastUserID = userID
	f.lastMessage = message
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func postForm(t *testing.T, handler http.HandlerFunc, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestChatHandlerSuccess(t *testing.T) {
	svc := &fakeConversationalist{reply: &chat.Reply{
		Text:       "Hello Alice!",
		UserName:   "Alice",
		Intent:     intent.LabelGeneralQuery,
		Confidence: 0.91,
		Timestamp:  time.Now().UTC(),
	}}
	h := NewChatHandler(svc, nil)

	rec := postForm(t, h.Handle, "/chat", url.Values{
		"user_id": {"u1"},
		"message": {"hi there"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var body ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !body.Success || body.Reply != "Hello Alice!" || body.Intent != "general_query" {
		t.Errorf("unexpected body: %+v", body)
	}
	if svc.lastUserID != "u1" || svc.lastMessage != "hi there" {
		t.Errorf("unexpected service call: %s %s", svc.lastUserID, svc.lastMessage)
	}
}

func TestChatHandlerMissingFields(t *testing.T) {
	h := NewChatHandler(&fakeConversationalist{}, nil)

	rec := postForm(t, h.Handle, "/chat", url.Values{"user_id": {"u1"}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestChatHandlerUserNotFound(t *testing.T) {
	h := NewChatHandler(&fakeConversationalist{err: store.ErrNotFound}, nil)

	rec := postForm(t, h.Handle, "/chat", url.Values{
		"user_id": {"ghost"},
		"message": {"hi"},
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["error"] != "User not found" {
		t.Errorf("unexpected error message: %v", body["error"])
	}
}

func TestChatHandlerInternalError(t *testing.T) {
	h := NewChatHandler(&fakeConversationalist{err: context.DeadlineExceeded}, nil)

	rec := postForm(t, h.Handle, "/chat", url.Values{
		"user_id": {"u1"},
		"message": {"hi"},
	})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("create mock pool: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		mock.Close()
	})
	return mock
}

func TestUserStore_GetByID(t *testing.T) {
	mock := newMockPool(t)
	store := NewUserStore(mock)

	mock.ExpectQuery("SELECT(.|\n)*FROM users u").
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "name", "phone", "role"}).
			AddRow("u1", "alice@example.com", "Alice", "+15551234", "patient"))

	user, err := store.GetByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Name != "Alice" {
		t.Errorf("expected name Alice, got %s", user.Name)
	}
	if user.Role != "patient" {
		t.Errorf("expected role patient, got %s", user.Role)
	}
}

func TestUserStore_GetByID_NotFound(t *testing.T) {
	mock := newMockPool(t)
	store := NewUserStore(mock)

	mock.ExpectQuery("SELECT(.|\n)*FROM users u").
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "name", "phone", "role"}))

	_, err := store.GetByID(context.Background(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAppointmentStore_ListRecent(t *testing.T) {
	mock := newMockPool(t)
	store := NewAppointmentStore(mock)

	mock.ExpectQuery("SELECT(.|\n)*FROM appointments a").
		WithArgs("u1", 3).
		WillReturnRows(pgxmock.NewRows([]string{"id", "date", "time", "status", "type", "dentist", "symptoms", "notes"}).
			AddRow("a2", "2026-03-02", "14:00:00", "scheduled", "Cleaning", "Dr. Chen", "", "").
			AddRow("a1", "2026-01-15", "09:30:00", "completed", "Checkup", "Dr. Patel", "toothache", ""))

	appointments, err := store.ListRecent(context.Background(), "u1", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(appointments) != 2 {
		t.Fatalf("expected 2 appointments, got %d", len(appointments))
	}
	if appointments[0].Date != "2026-03-02" {
		t.Errorf("expected newest appointment first, got %s", appointments[0].Date)
	}
}

func TestAppointmentStore_ListRecent_DefaultLimit(t *testing.T) {
	mock := newMockPool(t)
	store := NewAppointmentStore(mock)

	mock.ExpectQuery("SELECT(.|\n)*FROM appointments a").
		WithArgs("u1", 3).
		WillReturnRows(pgxmock.NewRows([]string{"id", "date", "time", "status", "type", "dentist", "symptoms", "notes"}))

	appointments, err := store.ListRecent(context.Background(), "u1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(appointments) != 0 {
		t.Errorf("expected empty slice, got %d", len(appointments))
	}
}

func TestDentistStore_ListAvailable_Filtered(t *testing.T) {
	mock := newMockPool(t)
	store := NewDentistStore(mock)

	mock.ExpectQuery("SELECT(.|\n)*FROM dentists(.|\n)*LIKE LOWER").
		WithArgs("%ortho%").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "specialization", "bio", "rating", "reviews"}).
			AddRow("d1", "Dr. Kim", "kim@clinic.com", "Orthodontics", "", 4.8, 120))

	dentists, err := store.ListAvailable(context.Background(), "ortho")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dentists) != 1 || dentists[0].Specialization != "Orthodontics" {
		t.Errorf("unexpected dentists: %+v", dentists)
	}
}

func TestDentistStore_ListAvailable_NullRatingDefaultsToZero(t *testing.T) {
	mock := newMockPool(t)
	store := NewDentistStore(mock)

	mock.ExpectQuery("SELECT(.|\n)*FROM dentists").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "specialization", "bio", "rating", "reviews"}).
			AddRow("d1", "Dr. New", "new@clinic.com", "General", "", 0.0, 0))

	dentists, err := store.ListAvailable(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dentists[0].Rating != 0 {
		t.Errorf("expected zero rating, got %f", dentists[0].Rating)
	}
}

func TestDentistStore_Availability(t *testing.T) {
	mock := newMockPool(t)
	store := NewDentistStore(mock)

	mock.ExpectQuery("SELECT(.|\n)*FROM dentist_availability da").
		WithArgs("d1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "day", "start", "end", "available"}).
			AddRow("s1", "Monday", "09:00:00", "12:00:00", true).
			AddRow("s2", "Monday", "14:00:00", "17:00:00", true))

	slots, err := store.Availability(context.Background(), "d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if !slots[0].Available {
		t.Error("expected available slot")
	}
}

func TestChatLogStore_AppendExchange(t *testing.T) {
	mock := newMockPool(t)
	store := NewChatLogStore(mock)

	mock.ExpectExec("INSERT INTO chatbot_conversations").
		WithArgs("u1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := store.AppendExchange(context.Background(), "u1",
		ChatMessage{Role: "user", Content: "hi"},
		ChatMessage{Role: "assistant", Content: "hello"},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestChatLogStore_History(t *testing.T) {
	mock := newMockPool(t)
	store := NewChatLogStore(mock)

	messages := []ChatMessage{
		{Role: "user", Content: "one", Timestamp: time.Now().UTC()},
		{Role: "assistant", Content: "two", Timestamp: time.Now().UTC()},
		{Role: "user", Content: "three", Timestamp: time.Now().UTC()},
	}
	raw, _ := json.Marshal(messages)

	mock.ExpectQuery("SELECT messages FROM chatbot_conversations").
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"messages"}).AddRow(raw))

	history, err := store.History(context.Background(), "u1", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if history[0].Content != "two" {
		t.Errorf("expected tail of log, got %q", history[0].Content)
	}
}

func TestChatLogStore_History_NoLogYet(t *testing.T) {
	mock := newMockPool(t)
	store := NewChatLogStore(mock)

	mock.ExpectQuery("SELECT messages FROM chatbot_conversations").
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"messages"}))

	history, err := store.History(context.Background(), "u1", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("expected empty history, got %d", len(history))
	}
}

func TestUploadStore_Save(t *testing.T) {
	mock := newMockPool(t)
	store := NewUploadStore(mock)

	mock.ExpectQuery("INSERT INTO xray_uploads").
		WithArgs("u1", "/uploads/u1_x.png", "analysis text", true).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("up1"))

	id, err := store.Save(context.Background(), "u1", "/uploads/u1_x.png", "analysis text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "up1" {
		t.Errorf("expected id up1, got %s", id)
	}
}

func TestUploadStore_Save_UnanalyzedFlag(t *testing.T) {
	mock := newMockPool(t)
	store := NewUploadStore(mock)

	mock.ExpectQuery("INSERT INTO xray_uploads").
		WithArgs("u1", "/uploads/u1_doc.pdf", "", false).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("up2"))

	id, err := store.Save(context.Background(), "u1", "/uploads/u1_doc.pdf", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "up2" {
		t.Errorf("expected id up2, got %s", id)
	}
}

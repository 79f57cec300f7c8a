package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ChatLogStore appends to and reads a patient's conversation log. Messages
// live in a JSONB array column keyed by patient, so one upsert statement
// appends atomically.
type ChatLogStore struct {
	db DB
}

// NewChatLogStore creates a chat log store backed by the given database.
func NewChatLogStore(db DB) *ChatLogStore {
	return &ChatLogStore{db: db}
}

// AppendExchange appends the user message and the assistant reply as a single
// JSONB array append. Both land or neither does; concurrent requests for the
// same patient cannot interleave inside a pair.
func (s *ChatLogStore) AppendExchange(ctx context.Context, userID string, userMsg, assistantMsg ChatMessage) error {
	now := time.Now().UTC()
	if userMsg.Timestamp.IsZero() {
		userMsg.Timestamp = now
	}
	if assistantMsg.Timestamp.IsZero() {
		assistantMsg.Timestamp = now
	}
	if userMsg.Role == "" {
		userMsg.Role = "user"
	}
	if assistantMsg.Role == "" {
		assistantMsg.Role = "assistant"
	}

	pair, err := json.Marshal([]ChatMessage{userMsg, assistantMsg})
	if err != nil {
		return fmt.Errorf("store: marshal chat messages: %w", err)
	}

	query := `
		INSERT INTO chatbot_conversations (patient_id, messages, status, created_at, updated_at)
		VALUES ($1, $2::jsonb, 'active', NOW(), NOW())
		ON CONFLICT (patient_id)
		DO UPDATE SET
			messages = chatbot_conversations.messages || $2::jsonb,
			updated_at = NOW()
	`
	if _, err := s.db.Exec(ctx, query, userID, pair); err != nil {
		return fmt.Errorf("store: append chat exchange: %w", err)
	}
	return nil
}

// History returns the last limit messages of the patient's log, oldest first.
// A patient with no log yet gets an empty history, not an error.
func (s *ChatLogStore) History(ctx context.Context, userID string, limit int) ([]ChatMessage, error) {
	query := `SELECT messages FROM chatbot_conversations WHERE patient_id = $1`
	var raw []byte
	if err := s.db.QueryRow(ctx, query, userID).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: select chat history: %w", err)
	}

	var messages []ChatMessage
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil, fmt.Errorf("store: decode chat history: %w", err)
	}
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}

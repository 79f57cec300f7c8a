package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dentalcareconnect/chatbot-backend/internal/store"
)

const (
	historyKeyPrefix = "chat_history:"
	historyTTL       = 7 * 24 * time.Hour
)

// HistoryCache keeps each patient's recent turns in a redis list so prompt
// assembly does not re-read the full conversation row. Losing the cache only
// costs prompt context, never correctness.
type HistoryCache struct {
	redis       *redis.Client
	maxMessages int64
}

// NewHistoryCache wraps a redis client. A nil client yields a nil cache;
// all methods are nil-safe.
func NewHistoryCache(client *redis.Client) *HistoryCache {
	if client == nil {
		return nil
	}
	return &HistoryCache{
		redis:       client,
		maxMessages: 50,
	}
}

// Append pushes turns onto the patient's history list.
func (c *HistoryCache) Append(ctx context.Context, userID string, messages ...store.ChatMessage) error {
	if c == nil || c.redis == nil || len(messages) == 0 {
		return nil
	}
	if userID == "" {
		return errors.New("chat: history userID required")
	}

	values := make([]any, 0, len(messages))
	for _, msg := range messages {
		if msg.Timestamp.IsZero() {
			msg.Timestamp = time.Now().UTC()
		}
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("chat: marshal history message: %w", err)
		}
		values = append(values, data)
	}

	key := historyKeyPrefix + userID
	pipe := c.redis.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.Expire(ctx, key, historyTTL)
	pipe.LTrim(ctx, key, -c.maxMessages, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("chat: append history: %w", err)
	}
	return nil
}

// Recent returns the last limit turns, oldest first.
func (c *HistoryCache) Recent(ctx context.Context, userID string, limit int) ([]store.ChatMessage, error) {
	if c == nil || c.redis == nil {
		return nil, nil
	}
	if userID == "" {
		return nil, errors.New("chat: history userID required")
	}

	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}

	raw, err := c.redis.LRange(ctx, historyKeyPrefix+userID, start, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("chat: read history: %w", err)
	}

	out := make([]store.ChatMessage, 0, len(raw))
	for _, item := range raw {
		var msg store.ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

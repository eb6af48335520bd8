package chatlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"newsbot/internal/model"
)

// RedisLog keeps each session's history in a Redis list. RPUSH is atomic, so
// list order is arrival order even under racing appends. A non-zero TTL lets
// idle sessions expire silently.
type RedisLog struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewRedisLog(client *redisv9.Client, ttl time.Duration) *RedisLog {
	return &RedisLog{client: client, ttl: ttl}
}

func (l *RedisLog) History(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	items, err := l.client.LRange(ctx, l.sessionKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list history failed: %w", err)
	}

	messages := make([]model.ChatMessage, 0, len(items))
	for _, raw := range items {
		var msg model.ChatMessage
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			return nil, fmt.Errorf("unmarshal history item failed: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (l *RedisLog) Append(ctx context.Context, sessionID string, msg *model.ChatMessage) error {
	msg.SessionID = sessionID
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	if msg.ID == 0 {
		seq, err := l.client.Incr(ctx, l.seqKey(sessionID)).Result()
		if err != nil {
			return fmt.Errorf("redis message sequence failed: %w", err)
		}
		msg.ID = uint(seq)
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message failed: %w", err)
	}
	if err := l.client.RPush(ctx, l.sessionKey(sessionID), payload).Err(); err != nil {
		return fmt.Errorf("redis append message failed: %w", err)
	}

	if l.ttl > 0 {
		_ = l.client.Expire(ctx, l.sessionKey(sessionID), l.ttl).Err()
		_ = l.client.Expire(ctx, l.seqKey(sessionID), l.ttl).Err()
	}
	return nil
}

func (l *RedisLog) Clear(ctx context.Context, sessionID string) error {
	if err := l.client.Del(ctx, l.sessionKey(sessionID), l.seqKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis clear session failed: %w", err)
	}
	return nil
}

func (l *RedisLog) sessionKey(sessionID string) string {
	return "chat:session:" + sessionID
}

func (l *RedisLog) seqKey(sessionID string) string {
	return "chat:session:" + sessionID + ":seq"
}

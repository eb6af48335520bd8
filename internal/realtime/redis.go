package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	redisv9 "github.com/redis/go-redis/v9"

	"newsbot/internal/model"
)

// RedisFanout carries session events over Redis pub/sub so multiple service
// instances can share subscribers. Pub/sub is at-most-once by nature, which
// matches the best-effort delivery contract.
type RedisFanout struct {
	client *redisv9.Client
}

func NewRedisFanout(client *redisv9.Client) *RedisFanout {
	return &RedisFanout{client: client}
}

func (f *RedisFanout) Publish(ctx context.Context, sessionID string, msg model.ChatMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal fanout message failed: %w", err)
	}
	if err := f.client.Publish(ctx, f.channel(sessionID), payload).Err(); err != nil {
		return fmt.Errorf("redis publish failed: %w", err)
	}
	return nil
}

func (f *RedisFanout) Subscribe(ctx context.Context, sessionID string) (<-chan model.ChatMessage, func(), error) {
	pubsub := f.client.Subscribe(ctx, f.channel(sessionID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("redis subscribe failed: %w", err)
	}

	out := make(chan model.ChatMessage, subscriberBuffer)
	go func() {
		defer close(out)
		for raw := range pubsub.Channel() {
			var msg model.ChatMessage
			if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
				continue
			}
			select {
			case out <- msg:
			default:
			}
		}
	}()

	cancel := func() { _ = pubsub.Close() }
	return out, cancel, nil
}

func (f *RedisFanout) channel(sessionID string) string {
	return "chat:events:" + sessionID
}

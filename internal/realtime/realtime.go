// Package realtime fans newly appended chat messages out to live subscribers
// of a session. Delivery is best-effort with no replay: subscribers receive
// only messages published after they subscribed.
package realtime

import (
	"context"

	"newsbot/internal/model"
)

// Fanout is a publish/subscribe channel keyed by session ID. The function
// returned by Subscribe cancels the subscription and releases its resources;
// the message channel is closed afterwards.
type Fanout interface {
	Publish(ctx context.Context, sessionID string, msg model.ChatMessage) error
	Subscribe(ctx context.Context, sessionID string) (<-chan model.ChatMessage, func(), error)
}

// Package chatlog is the session-scoped conversation log: append-only message
// history keyed by session ID, with interchangeable storage backends.
package chatlog

import (
	"context"

	"newsbot/internal/model"
)

// Log is the sole owner of chat message and session lifecycle.
//
// History returns messages oldest first; an unknown session yields an empty
// slice, not an error. Append creates the session record if absent and
// durably records the message in arrival order; concurrent appends to the
// same session must not lose messages. Clear removes the session and all its
// messages and is a no-op for unknown sessions.
type Log interface {
	History(ctx context.Context, sessionID string) ([]model.ChatMessage, error)
	Append(ctx context.Context, sessionID string, msg *model.ChatMessage) error
	Clear(ctx context.Context, sessionID string) error
}

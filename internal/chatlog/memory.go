package chatlog

import (
	"context"
	"sync"
	"time"

	"newsbot/internal/model"
)

// MemoryLog is a mutex-guarded in-process log. It backs tests and
// dependency-free dev deployments; nothing survives a restart.
type MemoryLog struct {
	mu       sync.Mutex
	sessions map[string][]model.ChatMessage
	nextID   uint
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{sessions: make(map[string][]model.ChatMessage)}
}

func (l *MemoryLog) History(_ context.Context, sessionID string) ([]model.ChatMessage, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	history := l.sessions[sessionID]
	out := make([]model.ChatMessage, len(history))
	copy(out, history)
	return out, nil
}

func (l *MemoryLog) Append(_ context.Context, sessionID string, msg *model.ChatMessage) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	msg.ID = l.nextID
	msg.SessionID = sessionID
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	l.sessions[sessionID] = append(l.sessions[sessionID], *msg)
	return nil
}

func (l *MemoryLog) Clear(_ context.Context, sessionID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.sessions, sessionID)
	return nil
}

package realtime

import (
	"context"
	"sync"

	"newsbot/internal/model"
)

const subscriberBuffer = 16

// Hub is the in-process Fanout for single-instance deployments. A subscriber
// that falls more than subscriberBuffer messages behind starts dropping;
// that keeps Publish non-blocking.
type Hub struct {
	mu       sync.Mutex
	nextID   int
	sessions map[string]map[int]chan model.ChatMessage
}

func NewHub() *Hub {
	return &Hub{sessions: make(map[string]map[int]chan model.ChatMessage)}
}

func (h *Hub) Publish(_ context.Context, sessionID string, msg model.ChatMessage) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.sessions[sessionID] {
		select {
		case ch <- msg:
		default:
		}
	}
	return nil
}

func (h *Hub) Subscribe(_ context.Context, sessionID string) (<-chan model.ChatMessage, func(), error) {
	ch := make(chan model.ChatMessage, subscriberBuffer)

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	if h.sessions[sessionID] == nil {
		h.sessions[sessionID] = make(map[int]chan model.ChatMessage)
	}
	h.sessions[sessionID][id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.sessions[sessionID], id)
			if len(h.sessions[sessionID]) == 0 {
				delete(h.sessions, sessionID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel, nil
}

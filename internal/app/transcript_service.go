package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"newsbot/internal/chatlog"
	"newsbot/internal/model"
)

var ErrNoTranscript = errors.New("session has no history to archive")

// TranscriptPublisher hands an archive job to the persistence queue.
type TranscriptPublisher interface {
	Publish(ctx context.Context, transcript model.ChatTranscript) error
}

// TranscriptService snapshots a session's history and enqueues it for
// durable archival. The write itself happens asynchronously in the worker.
type TranscriptService struct {
	log       chatlog.Log
	publisher TranscriptPublisher
}

func NewTranscriptService(log chatlog.Log, publisher TranscriptPublisher) *TranscriptService {
	return &TranscriptService{log: log, publisher: publisher}
}

type ArchiveResult struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	Count     int    `json:"count"`
}

func (s *TranscriptService) Archive(ctx context.Context, sessionID string) (*ArchiveResult, error) {
	history, err := s.log.History(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("read session history failed: %w", err)
	}
	if len(history) == 0 {
		return nil, ErrNoTranscript
	}

	payload, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("marshal transcript failed: %w", err)
	}

	transcript := model.ChatTranscript{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		Transcript: string(payload),
		CreatedAt:  time.Now(),
	}
	if err := s.publisher.Publish(ctx, transcript); err != nil {
		return nil, fmt.Errorf("enqueue transcript failed: %w", err)
	}

	return &ArchiveResult{
		ID:        transcript.ID,
		SessionID: sessionID,
		Count:     len(history),
	}, nil
}

package repository

import (
	"fmt"

	"gorm.io/gorm"

	"newsbot/internal/model"
)

type TranscriptRepository struct {
	db *gorm.DB
}

func NewTranscriptRepository(db *gorm.DB) *TranscriptRepository {
	return &TranscriptRepository{db: db}
}

func (r *TranscriptRepository) Create(transcript *model.ChatTranscript) error {
	if err := r.db.Create(transcript).Error; err != nil {
		return fmt.Errorf("create transcript failed: %w", err)
	}
	return nil
}

func (r *TranscriptRepository) ListBySessionID(sessionID string) ([]model.ChatTranscript, error) {
	var transcripts []model.ChatTranscript
	if err := r.db.Where("session_id = ?", sessionID).Order("created_at DESC").Find(&transcripts).Error; err != nil {
		return nil, fmt.Errorf("list transcripts failed: %w", err)
	}
	return transcripts, nil
}

package model

import "time"

// ChatTranscript is an archived snapshot of a session's history, written
// asynchronously by the transcript persist worker.
type ChatTranscript struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	SessionID  string    `gorm:"size:64;not null;index" json:"session_id"`
	Transcript string    `gorm:"type:json;not null" json:"transcript"`
	CreatedAt  time.Time `json:"created_at"`
}

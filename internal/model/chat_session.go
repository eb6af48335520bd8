package model

import "time"

// ChatSession is created implicitly on the first append for a session ID and
// removed, together with its messages, by an explicit clear.
type ChatSession struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"size:64;not null;uniqueIndex" json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

package model

import (
	"encoding/json"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of a conversation. Sources holds the article IDs an
// assistant turn was grounded on, as a JSON array; it is empty for user turns.
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"size:64;not null;index" json:"session_id"`
	Role      string    `gorm:"size:16;not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Sources   string    `gorm:"type:text" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// SourceIDs returns the parsed article IDs; nil when the turn has no sources.
func (m *ChatMessage) SourceIDs() []uint {
	if m.Sources == "" {
		return nil
	}
	var ids []uint
	_ = json.Unmarshal([]byte(m.Sources), &ids)
	return ids
}

// SetSources stores the article IDs as JSON.
func (m *ChatMessage) SetSources(ids []uint) {
	if len(ids) == 0 {
		m.Sources = ""
		return
	}
	b, _ := json.Marshal(ids)
	m.Sources = string(b)
}

// MarshalJSON exposes sources as an array field, matching the API shape.
func (m ChatMessage) MarshalJSON() ([]byte, error) {
	type alias ChatMessage
	return json.Marshal(struct {
		alias
		SourceIDs []uint `json:"sources,omitempty"`
	}{
		alias:     alias(m),
		SourceIDs: m.SourceIDs(),
	})
}

// UnmarshalJSON accepts the array form of sources produced by MarshalJSON.
func (m *ChatMessage) UnmarshalJSON(data []byte) error {
	type alias ChatMessage
	aux := struct {
		*alias
		SourceIDs []uint `json:"sources,omitempty"`
	}{alias: (*alias)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	m.SetSources(aux.SourceIDs)
	return nil
}

package model

import (
	"encoding/json"
	"time"
)

// Article is a corpus item from the news ingestion pipeline.
// Embedding is stored as a JSON array of float32 for portability.
type Article struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:512;not null" json:"title"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	URL         string     `gorm:"size:1024" json:"url,omitempty"`
	Source      string     `gorm:"size:256" json:"source,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Embedding   string     `gorm:"column:embedding_vector;type:text" json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// EmbeddingVector returns the parsed embedding slice; nil when absent or on parse error.
func (a *Article) EmbeddingVector() []float32 {
	if a.Embedding == "" {
		return nil
	}
	var v []float32
	_ = json.Unmarshal([]byte(a.Embedding), &v)
	return v
}

// SetEmbedding stores the embedding as JSON.
func (a *Article) SetEmbedding(vec []float32) {
	if len(vec) == 0 {
		a.Embedding = ""
		return
	}
	b, _ := json.Marshal(vec)
	a.Embedding = string(b)
}

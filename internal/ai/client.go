package ai

import (
	"errors"
	"net/http"
	"time"
)

// ErrProvider marks any failure of the external embedding/completion provider:
// transport errors, non-2xx statuses, and unparseable payloads.
var ErrProvider = errors.New("ai provider request failed")

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Config struct {
	BaseURL        string
	APIKey         string
	ChatModel      string
	EmbeddingModel string
}

// Client talks to an OpenAI-compatible API. One network call per invocation;
// no caching, no retries. Retry policy belongs to the caller.
type Client struct {
	httpClient *http.Client
	cfg        Config
}

func NewClient(cfg Config) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 90 * time.Second},
		cfg:        cfg,
	}
}

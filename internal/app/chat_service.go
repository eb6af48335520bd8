package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"newsbot/internal/ai"
	"newsbot/internal/chatlog"
	"newsbot/internal/model"
	"newsbot/internal/rag"
	"newsbot/internal/realtime"
)

const (
	defaultTopK         = 3
	defaultExcerptChars = 1000

	noArticlesReply = "I don't have any news articles available yet. Please check back later!"

	newsbotPersona = `You are NewsBot, an AI assistant that helps users understand news and current events. You have access to a collection of news articles and should provide accurate, helpful responses based on the provided context.

Guidelines:
- Use the provided news articles as your primary source of information
- If the question cannot be answered from the provided articles, say so clearly
- Provide specific details and quotes when relevant
- Be conversational but informative
- Always cite which articles you're referencing when possible`
)

var (
	ErrEmptyMessage = errors.New("message content is empty")
	ErrChatPipeline = errors.New("failed to process chat message")
)

// ArticleSource reads the article corpus.
type ArticleSource interface {
	List() ([]model.Article, error)
}

// Embedder converts text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Completer generates a reply from a prompt.
type Completer interface {
	Complete(ctx context.Context, messages []ai.ChatMessage) (string, error)
}

// ChatService runs the retrieval-augmented chat pipeline: persist the user
// turn, rank the corpus against the query, generate a grounded answer,
// persist it with its sources, and fan it out to live subscribers.
type ChatService struct {
	articles     ArticleSource
	log          chatlog.Log
	embedder     Embedder
	completer    Completer
	fanout       realtime.Fanout
	topK         int
	excerptChars int
	logger       *zap.Logger
}

type ChatOptions struct {
	TopK         int
	ExcerptChars int
}

func NewChatService(
	articles ArticleSource,
	log chatlog.Log,
	embedder Embedder,
	completer Completer,
	fanout realtime.Fanout,
	opts ChatOptions,
	logger *zap.Logger,
) *ChatService {
	if opts.TopK <= 0 {
		opts.TopK = defaultTopK
	}
	if opts.ExcerptChars <= 0 {
		opts.ExcerptChars = defaultExcerptChars
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{
		articles:     articles,
		log:          log,
		embedder:     embedder,
		completer:    completer,
		fanout:       fanout,
		topK:         opts.TopK,
		excerptChars: opts.ExcerptChars,
		logger:       logger,
	}
}

type SendInput struct {
	Message   string
	SessionID string
}

type SendResult struct {
	Message   string          `json:"message"`
	SessionID string          `json:"session_id"`
	Sources   []model.Article `json:"sources"`
}

// Send handles one inbound chat message end to end. The user turn is appended
// before any external call and is never rolled back: history keeps what the
// user asked even when the assistant could not respond, so retries may show
// duplicate user turns.
func (s *ChatService) Send(ctx context.Context, input SendInput) (*SendResult, error) {
	content := strings.TrimSpace(input.Message)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	userMsg := model.ChatMessage{
		Role:      model.RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.log.Append(ctx, sessionID, &userMsg); err != nil {
		s.logger.Error("append user turn failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil, ErrChatPipeline
	}

	articles, err := s.articles.List()
	if err != nil {
		s.logger.Error("load corpus failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil, ErrChatPipeline
	}

	if len(articles) == 0 {
		return s.reply(ctx, sessionID, noArticlesReply, nil)
	}

	queryVec, err := s.embedder.Embed(ctx, content)
	if err != nil {
		s.logger.Error("embed query failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil, ErrChatPipeline
	}

	ranked := rag.Rank(queryVec, s.candidates(queryVec, articles), s.topK)

	relevant := make([]model.Article, 0, len(ranked))
	byID := make(map[uint]model.Article, len(articles))
	for _, a := range articles {
		byID[a.ID] = a
	}
	for _, r := range ranked {
		relevant = append(relevant, byID[r.ID])
	}

	answer, err := s.completer.Complete(ctx, s.buildPrompt(content, relevant))
	if err != nil {
		s.logger.Error("generate answer failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil, ErrChatPipeline
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = "I apologize, but I was unable to generate a response."
	}

	return s.reply(ctx, sessionID, answer, relevant)
}

// reply persists the assistant turn, publishes it, and shapes the response.
func (s *ChatService) reply(ctx context.Context, sessionID, answer string, sources []model.Article) (*SendResult, error) {
	assistantMsg := model.ChatMessage{
		Role:      model.RoleAssistant,
		Content:   answer,
		CreatedAt: time.Now(),
	}
	ids := make([]uint, 0, len(sources))
	for _, a := range sources {
		ids = append(ids, a.ID)
	}
	assistantMsg.SetSources(ids)

	if err := s.log.Append(ctx, sessionID, &assistantMsg); err != nil {
		s.logger.Error("append assistant turn failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil, ErrChatPipeline
	}
	if err := s.fanout.Publish(ctx, sessionID, assistantMsg); err != nil {
		s.logger.Error("publish assistant turn failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil, ErrChatPipeline
	}

	if sources == nil {
		sources = []model.Article{}
	}
	return &SendResult{
		Message:   answer,
		SessionID: sessionID,
		Sources:   sources,
	}, nil
}

// candidates extracts (id, vector) pairs for ranking. Articles whose stored
// vector does not match the query dimension are a data-integrity anomaly:
// they are excluded here and reported, never scored.
func (s *ChatService) candidates(queryVec []float32, articles []model.Article) []rag.Candidate {
	out := make([]rag.Candidate, 0, len(articles))
	for _, a := range articles {
		vec := a.EmbeddingVector()
		if vec == nil {
			continue
		}
		if len(vec) != len(queryVec) {
			s.logger.Warn("article embedding dimension mismatch",
				zap.Uint("article_id", a.ID),
				zap.Int("got", len(vec)),
				zap.Int("want", len(queryVec)),
			)
			continue
		}
		out = append(out, rag.Candidate{ID: a.ID, Vector: vec})
	}
	return out
}

func (s *ChatService) buildPrompt(query string, relevant []model.Article) []ai.ChatMessage {
	blocks := make([]string, 0, len(relevant))
	for _, a := range relevant {
		blocks = append(blocks, "Title: "+a.Title+"\nContent: "+excerpt(a.Content, s.excerptChars))
	}

	return []ai.ChatMessage{
		{Role: "system", Content: newsbotPersona},
		{Role: "user", Content: "Based on the following news articles, please answer this question: " + query +
			"\n\nRelevant Articles:\n" + strings.Join(blocks, "\n\n")},
	}
}

// excerpt truncates on rune boundaries so multibyte text is never corrupted.
func excerpt(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}

type HistoryResult struct {
	Messages  []model.ChatMessage `json:"messages"`
	SessionID string              `json:"session_id"`
}

// History returns the session's messages oldest first; unknown sessions yield
// an empty list.
func (s *ChatService) History(ctx context.Context, sessionID string) (*HistoryResult, error) {
	messages, err := s.log.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []model.ChatMessage{}
	}
	return &HistoryResult{Messages: messages, SessionID: sessionID}, nil
}

// Clear deletes the session and its history; clearing an unknown session is a
// no-op success.
func (s *ChatService) Clear(ctx context.Context, sessionID string) error {
	return s.log.Clear(ctx, sessionID)
}

// ListArticles exposes the corpus for the articles endpoint.
func (s *ChatService) ListArticles() ([]model.Article, error) {
	return s.articles.List()
}

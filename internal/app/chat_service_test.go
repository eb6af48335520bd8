package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsbot/internal/ai"
	"newsbot/internal/chatlog"
	"newsbot/internal/model"
	"newsbot/internal/realtime"
)

type fakeArticles struct {
	articles []model.Article
	err      error
}

func (f *fakeArticles) List() ([]model.Article, error) {
	return f.articles, f.err
}

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return f.vec, f.err
}

type fakeCompleter struct {
	answer string
	err    error
	prompt []ai.ChatMessage
}

func (f *fakeCompleter) Complete(_ context.Context, messages []ai.ChatMessage) (string, error) {
	f.prompt = messages
	return f.answer, f.err
}

func articleWithVector(id uint, title string, vec []float32) model.Article {
	a := model.Article{ID: id, Title: title, Content: title + " content"}
	a.SetEmbedding(vec)
	return a
}

func newTestService(articles *fakeArticles, embedder *fakeEmbedder, completer *fakeCompleter, opts ChatOptions) (*ChatService, chatlog.Log) {
	log := chatlog.NewMemoryLog()
	svc := NewChatService(articles, log, embedder, completer, realtime.NewHub(), opts, nil)
	return svc, log
}

func TestSend_RejectsEmptyMessage(t *testing.T) {
	svc, log := newTestService(&fakeArticles{}, &fakeEmbedder{}, &fakeCompleter{}, ChatOptions{})

	_, err := svc.Send(context.Background(), SendInput{Message: "   "})
	require.ErrorIs(t, err, ErrEmptyMessage)

	// Validation happens before any state advance.
	history, err := log.History(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSend_EmptyCorpusShortCircuits(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("must not be called")}
	completer := &fakeCompleter{err: errors.New("must not be called")}
	svc, log := newTestService(&fakeArticles{}, embedder, completer, ChatOptions{})

	result, err := svc.Send(context.Background(), SendInput{Message: "What's new?"})
	require.NoError(t, err)

	assert.Contains(t, result.Message, "don't have any news articles")
	assert.NotEmpty(t, result.SessionID)
	assert.Empty(t, result.Sources)

	history, err := log.History(context.Background(), result.SessionID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.RoleUser, history[0].Role)
	assert.Equal(t, "What's new?", history[0].Content)
	assert.Equal(t, model.RoleAssistant, history[1].Role)
	assert.Empty(t, history[1].SourceIDs())
}

func TestSend_RanksAndCitesClosestArticle(t *testing.T) {
	articles := &fakeArticles{articles: []model.Article{
		articleWithVector(1, "Local elections", []float32{1, 0, 0}),
		articleWithVector(2, "Space exploration milestones", []float32{0, 1, 0}),
		articleWithVector(3, "Stock markets", []float32{0, 0, 1}),
	}}
	embedder := &fakeEmbedder{vec: []float32{0.1, 0.9, 0.1}}
	completer := &fakeCompleter{answer: "Here is what the articles say about space."}
	svc, log := newTestService(articles, embedder, completer, ChatOptions{TopK: 1})

	result, err := svc.Send(context.Background(), SendInput{
		Message:   "tell me about space exploration",
		SessionID: "sess-space",
	})
	require.NoError(t, err)

	require.Len(t, result.Sources, 1)
	assert.Equal(t, uint(2), result.Sources[0].ID)
	assert.Equal(t, "sess-space", result.SessionID)

	history, err := log.History(context.Background(), "sess-space")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, []uint{2}, history[1].SourceIDs())

	// The generation prompt carries the ranked article, not the others.
	require.Len(t, completer.prompt, 2)
	assert.Contains(t, completer.prompt[1].Content, "Space exploration milestones")
	assert.NotContains(t, completer.prompt[1].Content, "Stock markets")
}

func TestSend_TwoExchangesKeepChronologicalOrder(t *testing.T) {
	articles := &fakeArticles{articles: []model.Article{
		articleWithVector(1, "Climate report", []float32{1, 0}),
	}}
	embedder := &fakeEmbedder{vec: []float32{1, 0}}
	completer := &fakeCompleter{answer: "answer"}
	svc, log := newTestService(articles, embedder, completer, ChatOptions{})

	first, err := svc.Send(context.Background(), SendInput{Message: "first question"})
	require.NoError(t, err)
	_, err = svc.Send(context.Background(), SendInput{Message: "second question", SessionID: first.SessionID})
	require.NoError(t, err)

	history, err := log.History(context.Background(), first.SessionID)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, model.RoleUser, history[0].Role)
	assert.Equal(t, model.RoleAssistant, history[1].Role)
	assert.Equal(t, model.RoleUser, history[2].Role)
	assert.Equal(t, model.RoleAssistant, history[3].Role)
	assert.Equal(t, "first question", history[0].Content)
	assert.Equal(t, "second question", history[2].Content)
}

func TestSend_ProviderFailureKeepsUserTurn(t *testing.T) {
	articles := &fakeArticles{articles: []model.Article{
		articleWithVector(1, "Anything", []float32{1, 0}),
	}}
	embedder := &fakeEmbedder{err: ai.ErrProvider}
	svc, log := newTestService(articles, embedder, &fakeCompleter{}, ChatOptions{})

	_, err := svc.Send(context.Background(), SendInput{Message: "hello", SessionID: "sess-fail"})
	require.ErrorIs(t, err, ErrChatPipeline)

	// The user's message survives the downstream failure.
	history, err := log.History(context.Background(), "sess-fail")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, model.RoleUser, history[0].Role)
	assert.Equal(t, "hello", history[0].Content)
}

func TestSend_SkipsArticlesWithoutVectors(t *testing.T) {
	noVector := model.Article{ID: 9, Title: "Unembedded", Content: "raw"}
	articles := &fakeArticles{articles: []model.Article{
		noVector,
		articleWithVector(2, "Embedded", []float32{1, 0}),
	}}
	embedder := &fakeEmbedder{vec: []float32{1, 0}}
	completer := &fakeCompleter{answer: "ok"}
	svc, _ := newTestService(articles, embedder, completer, ChatOptions{})

	result, err := svc.Send(context.Background(), SendInput{Message: "query"})
	require.NoError(t, err)

	require.Len(t, result.Sources, 1)
	assert.Equal(t, uint(2), result.Sources[0].ID)
}

func TestSend_PublishesAssistantTurn(t *testing.T) {
	articles := &fakeArticles{articles: []model.Article{
		articleWithVector(1, "Anything", []float32{1, 0}),
	}}
	hub := realtime.NewHub()
	log := chatlog.NewMemoryLog()
	svc := NewChatService(articles, log, &fakeEmbedder{vec: []float32{1, 0}},
		&fakeCompleter{answer: "broadcasted"}, hub, ChatOptions{}, nil)

	ch, cancel, err := hub.Subscribe(context.Background(), "sess-live")
	require.NoError(t, err)
	defer cancel()

	_, err = svc.Send(context.Background(), SendInput{Message: "hi", SessionID: "sess-live"})
	require.NoError(t, err)

	msg := <-ch
	assert.Equal(t, model.RoleAssistant, msg.Role)
	assert.Equal(t, "broadcasted", msg.Content)
}

func TestSend_ExcerptBoundsPromptSize(t *testing.T) {
	long := strings.Repeat("é", 2000) // multibyte on purpose
	a := model.Article{ID: 1, Title: "Long read", Content: long}
	a.SetEmbedding([]float32{1, 0})
	articles := &fakeArticles{articles: []model.Article{a}}
	completer := &fakeCompleter{answer: "ok"}
	svc, _ := newTestService(articles, &fakeEmbedder{vec: []float32{1, 0}}, completer, ChatOptions{ExcerptChars: 100})

	_, err := svc.Send(context.Background(), SendInput{Message: "q"})
	require.NoError(t, err)

	prompt := completer.prompt[1].Content
	assert.Contains(t, prompt, strings.Repeat("é", 100)+"...")
	assert.NotContains(t, prompt, strings.Repeat("é", 101))
	// Valid UTF-8 throughout: no rune was split.
	assert.True(t, strings.ToValidUTF8(prompt, "�") == prompt)
}

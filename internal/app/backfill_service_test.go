package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsbot/internal/model"
)

type fakeBackfillSource struct {
	missing []model.Article
	stored  map[uint][]float32
	listErr error
	setErr  map[uint]error
}

func newFakeBackfillSource(missing ...model.Article) *fakeBackfillSource {
	return &fakeBackfillSource{
		missing: missing,
		stored:  make(map[uint][]float32),
		setErr:  make(map[uint]error),
	}
}

func (f *fakeBackfillSource) ListMissingEmbedding() ([]model.Article, error) {
	return f.missing, f.listErr
}

func (f *fakeBackfillSource) SetEmbedding(articleID uint, vec []float32) error {
	if err := f.setErr[articleID]; err != nil {
		return err
	}
	f.stored[articleID] = vec
	return nil
}

// failNthEmbedder fails on exactly one call, by position.
type failNthEmbedder struct {
	calls int
	failN int
}

func (f *failNthEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	if f.calls == f.failN {
		return nil, errors.New("provider unavailable")
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func TestBackfill_IsolatesPerItemFailures(t *testing.T) {
	source := newFakeBackfillSource(
		model.Article{ID: 1, Title: "a", Content: "1"},
		model.Article{ID: 2, Title: "b", Content: "2"},
		model.Article{ID: 3, Title: "c", Content: "3"},
		model.Article{ID: 4, Title: "d", Content: "4"},
		model.Article{ID: 5, Title: "e", Content: "5"},
	)
	embedder := &failNthEmbedder{failN: 3}
	svc := NewBackfillService(source, embedder, time.Millisecond, nil)

	result, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, result.Processed)
	assert.Equal(t, 1, result.Failed)
	assert.NotContains(t, source.stored, uint(3))
	assert.Contains(t, source.stored, uint(1))
	assert.Contains(t, source.stored, uint(5))
}

func TestBackfill_NothingMissing(t *testing.T) {
	svc := NewBackfillService(newFakeBackfillSource(), &failNthEmbedder{failN: -1}, time.Millisecond, nil)

	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
	assert.Equal(t, 0, result.Failed)
}

func TestBackfill_StoreFailureCountsAsFailed(t *testing.T) {
	source := newFakeBackfillSource(
		model.Article{ID: 1, Title: "a", Content: "1"},
		model.Article{ID: 2, Title: "b", Content: "2"},
	)
	source.setErr[2] = errors.New("db down")
	svc := NewBackfillService(source, &failNthEmbedder{failN: -1}, time.Millisecond, nil)

	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Failed)
}

func TestBackfill_ListFailurePropagates(t *testing.T) {
	source := newFakeBackfillSource()
	source.listErr = errors.New("corpus unavailable")
	svc := NewBackfillService(source, &failNthEmbedder{failN: -1}, time.Millisecond, nil)

	_, err := svc.Run(context.Background())
	require.Error(t, err)
}

func TestBackfill_StopsOnCancelledContext(t *testing.T) {
	source := newFakeBackfillSource(
		model.Article{ID: 1, Title: "a", Content: "1"},
		model.Article{ID: 2, Title: "b", Content: "2"},
		model.Article{ID: 3, Title: "c", Content: "3"},
	)
	svc := NewBackfillService(source, &failNthEmbedder{failN: -1}, 50*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(60 * time.Millisecond)
		cancel()
	}()

	result, err := svc.Run(ctx)
	require.Error(t, err)
	assert.Less(t, result.Processed, 3)
}

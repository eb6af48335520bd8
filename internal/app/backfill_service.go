package app

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"newsbot/internal/model"
)

const defaultBackfillInterval = 500 * time.Millisecond

// BackfillSource is the corpus surface the backfill job needs: the articles
// still missing a vector, and a single-column update to store one.
type BackfillSource interface {
	ListMissingEmbedding() ([]model.Article, error)
	SetEmbedding(articleID uint, vec []float32) error
}

// BackfillService computes embeddings for articles that lack one. Articles
// are processed one at a time, throttled to respect provider rate limits; a
// failure on one article is logged and skipped, never aborting the batch.
type BackfillService struct {
	articles BackfillSource
	embedder Embedder
	limiter  *rate.Limiter
	logger   *zap.Logger
}

func NewBackfillService(articles BackfillSource, embedder Embedder, interval time.Duration, logger *zap.Logger) *BackfillService {
	if interval <= 0 {
		interval = defaultBackfillInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackfillService{
		articles: articles,
		embedder: embedder,
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		logger:   logger,
	}
}

type BackfillResult struct {
	Processed int `json:"processed_count"`
	Failed    int `json:"failed_count"`
}

// Run embeds every article missing a vector and reports how many succeeded.
func (s *BackfillService) Run(ctx context.Context) (*BackfillResult, error) {
	articles, err := s.articles.ListMissingEmbedding()
	if err != nil {
		return nil, err
	}
	s.logger.Info("embedding backfill started", zap.Int("articles", len(articles)))

	result := &BackfillResult{}
	for _, article := range articles {
		if err := s.limiter.Wait(ctx); err != nil {
			return result, err
		}

		vec, err := s.embedder.Embed(ctx, article.Title+"\n\n"+article.Content)
		if err != nil {
			s.logger.Warn("embed article failed", zap.Uint("article_id", article.ID), zap.Error(err))
			result.Failed++
			continue
		}
		if err := s.articles.SetEmbedding(article.ID, vec); err != nil {
			s.logger.Warn("store article embedding failed", zap.Uint("article_id", article.ID), zap.Error(err))
			result.Failed++
			continue
		}
		result.Processed++
	}

	s.logger.Info("embedding backfill finished",
		zap.Int("processed", result.Processed),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

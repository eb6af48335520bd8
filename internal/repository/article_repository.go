package repository

import (
	"fmt"

	"gorm.io/gorm"

	"newsbot/internal/model"
)

type ArticleRepository struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// List returns the full corpus, newest first.
func (r *ArticleRepository) List() ([]model.Article, error) {
	var articles []model.Article
	if err := r.db.Order("created_at DESC").Find(&articles).Error; err != nil {
		return nil, fmt.Errorf("list articles failed: %w", err)
	}
	return articles, nil
}

// ListMissingEmbedding returns articles that have no embedding vector yet.
func (r *ArticleRepository) ListMissingEmbedding() ([]model.Article, error) {
	var articles []model.Article
	if err := r.db.Where("embedding_vector IS NULL OR embedding_vector = ''").Find(&articles).Error; err != nil {
		return nil, fmt.Errorf("list articles missing embedding failed: %w", err)
	}
	return articles, nil
}

// SetEmbedding stores the complete vector for one article. A single UPDATE, so
// the column is either the full vector or untouched.
func (r *ArticleRepository) SetEmbedding(articleID uint, vec []float32) error {
	article := model.Article{}
	article.SetEmbedding(vec)
	if article.Embedding == "" {
		return fmt.Errorf("refusing to store empty embedding for article %d", articleID)
	}
	if err := r.db.Model(&model.Article{}).Where("id = ?", articleID).
		Update("embedding_vector", article.Embedding).Error; err != nil {
		return fmt.Errorf("set article embedding failed: %w", err)
	}
	return nil
}

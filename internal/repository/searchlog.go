package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"tcg-nakama/internal/model"
)

type SearchLogRepository interface {
	Log(ctx context.Context, query string, resultsCount int) error
	Trending(ctx context.Context, since time.Time, limit int) ([]TrendingRow, error)
}

type TrendingRow struct {
	Query string
	Count int
}

type searchLogRepoImpl struct {
	db *gorm.DB
}

func NewSearchLogRepository(db *gorm.DB) SearchLogRepository {
	return &searchLogRepoImpl{
		db: db,
	}
}

func (r *searchLogRepoImpl) Log(ctx context.Context, query string, resultsCount int) error {
	return r.db.WithContext(ctx).Create(&model.SearchLog{
		Query:        strings.ToLower(strings.TrimSpace(query)),
		ResultsCount: resultsCount,
		SearchedAt:   time.Now(),
	}).Error
}

func (r *searchLogRepoImpl) Trending(ctx context.Context, since time.Time, limit int) ([]TrendingRow, error) {
	var rows []TrendingRow
	err := r.db.WithContext(ctx).
		Model(&model.SearchLog{}).
		Select("query, COUNT(*) as count").
		Where("searched_at >= ?", since).
		Group("query").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).
		Error

	if err != nil {
		return nil, err
	}

	return rows, nil
}

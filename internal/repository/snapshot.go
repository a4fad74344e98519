package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"tcg-nakama/internal/model"
)

type SnapshotRepository interface {
	Create(ctx context.Context, snapshot *model.PriceSnapshot) error
	LatestForProduct(ctx context.Context, productID string) (*model.PriceSnapshot, error)
	RecordedSince(ctx context.Context, since time.Time) ([]model.PriceSnapshot, error)
}

type snapshotRepoImpl struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepoImpl{
		db: db,
	}
}

func (r *snapshotRepoImpl) Create(ctx context.Context, snapshot *model.PriceSnapshot) error {
	return r.db.WithContext(ctx).Create(snapshot).Error
}

func (r *snapshotRepoImpl) LatestForProduct(ctx context.Context, productID string) (*model.PriceSnapshot, error) {
	var snapshot model.PriceSnapshot
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("recorded_at DESC").
		First(&snapshot).Error

	if err != nil {
		return nil, err
	}

	return &snapshot, nil
}

func (r *snapshotRepoImpl) RecordedSince(ctx context.Context, since time.Time) ([]model.PriceSnapshot, error) {
	var snapshots []model.PriceSnapshot
	err := r.db.WithContext(ctx).
		Where("recorded_at >= ?", since).
		Order("recorded_at").
		Find(&snapshots).
		Error

	if err != nil {
		return nil, err
	}

	return snapshots, nil
}

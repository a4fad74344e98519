package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tcg-nakama/internal/model"
)

type CostRepository interface {
	Get(ctx context.Context, productID string) (*float64, error)
	Set(ctx context.Context, productID string, buyPrice float64) error
	All(ctx context.Context) (map[string]float64, error)
}

type costRepoImpl struct {
	db *gorm.DB
}

func NewCostRepository(db *gorm.DB) CostRepository {
	return &costRepoImpl{
		db: db,
	}
}

func (r *costRepoImpl) Get(ctx context.Context, productID string) (*float64, error) {
	var cost model.ProductCost
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		First(&cost).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &cost.BuyPrice, nil
}

func (r *costRepoImpl) Set(ctx context.Context, productID string, buyPrice float64) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"buy_price":  buyPrice,
			"updated_at": time.Now(),
		}),
	}).Create(&model.ProductCost{
		ProductID: productID,
		BuyPrice:  buyPrice,
		UpdatedAt: time.Now(),
	}).Error
}

func (r *costRepoImpl) All(ctx context.Context) (map[string]float64, error) {
	var costs []model.ProductCost
	err := r.db.WithContext(ctx).Find(&costs).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string]float64, len(costs))
	for _, c := range costs {
		result[c.ProductID] = c.BuyPrice
	}
	return result, nil
}

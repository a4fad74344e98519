package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tcg-nakama/internal/model"
)

type GradeRepository interface {
	Get(ctx context.Context, productID string) (string, error)
	Set(ctx context.Context, productID, grade string) error
	All(ctx context.Context) (map[string]string, error)
}

type gradeRepoImpl struct {
	db *gorm.DB
}

func NewGradeRepository(db *gorm.DB) GradeRepository {
	return &gradeRepoImpl{
		db: db,
	}
}

func (r *gradeRepoImpl) Get(ctx context.Context, productID string) (string, error) {
	var grade model.ProductGrade
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		First(&grade).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}

	return grade.Grade, nil
}

func (r *gradeRepoImpl) Set(ctx context.Context, productID, grade string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"grade":      grade,
			"updated_at": time.Now(),
		}),
	}).Create(&model.ProductGrade{
		ProductID: productID,
		Grade:     grade,
		UpdatedAt: time.Now(),
	}).Error
}

func (r *gradeRepoImpl) All(ctx context.Context) (map[string]string, error) {
	var grades []model.ProductGrade
	err := r.db.WithContext(ctx).Find(&grades).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string]string, len(grades))
	for _, g := range grades {
		result[g.ProductID] = g.Grade
	}
	return result, nil
}

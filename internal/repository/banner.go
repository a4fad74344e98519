package repository

import (
	"context"

	"gorm.io/gorm"

	"tcg-nakama/internal/model"
)

type BannerRepository interface {
	Active(ctx context.Context) ([]model.Banner, error)
	All(ctx context.Context) ([]model.Banner, error)
	FindByID(ctx context.Context, id uint) (*model.Banner, error)
	Create(ctx context.Context, banner *model.Banner) error
	Update(ctx context.Context, banner *model.Banner) error
	Delete(ctx context.Context, id uint) error
}

type bannerRepoImpl struct {
	db *gorm.DB
}

func NewBannerRepository(db *gorm.DB) BannerRepository {
	return &bannerRepoImpl{
		db: db,
	}
}

func (r *bannerRepoImpl) Active(ctx context.Context) ([]model.Banner, error) {
	var banners []model.Banner
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("display_order").
		Find(&banners).
		Error

	if err != nil {
		return nil, err
	}

	return banners, nil
}

func (r *bannerRepoImpl) All(ctx context.Context) ([]model.Banner, error) {
	var banners []model.Banner
	err := r.db.WithContext(ctx).
		Order("display_order").
		Find(&banners).
		Error

	if err != nil {
		return nil, err
	}

	return banners, nil
}

func (r *bannerRepoImpl) FindByID(ctx context.Context, id uint) (*model.Banner, error) {
	var banner model.Banner
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&banner).Error

	if err != nil {
		return nil, err
	}

	return &banner, nil
}

func (r *bannerRepoImpl) Create(ctx context.Context, banner *model.Banner) error {
	return r.db.WithContext(ctx).Create(banner).Error
}

func (r *bannerRepoImpl) Update(ctx context.Context, banner *model.Banner) error {
	return r.db.WithContext(ctx).Save(banner).Error
}

func (r *bannerRepoImpl) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Banner{}, id).Error
}

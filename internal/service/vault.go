package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"tcg-nakama/internal/dto"
	"tcg-nakama/internal/repository"
)

// VaultService joins live products with local vault bookkeeping for the
// admin dashboard.
type VaultService interface {
	Items(ctx context.Context, query, rarity string) ([]dto.VaultItem, error)
	Stats(items []dto.VaultItem) dto.DashboardStats
	SetCost(ctx context.Context, productID string, buyPrice float64) error
	SetGrade(ctx context.Context, productID, grade string) error
}

type vaultServiceImpl struct {
	catalog      CatalogService
	costRepo     repository.CostRepository
	gradeRepo    repository.GradeRepository
	vipThreshold decimal.Decimal
	now          func() time.Time
}

func NewVaultService(catalog CatalogService, costRepo repository.CostRepository, gradeRepo repository.GradeRepository, vipThreshold int64) VaultService {
	return &vaultServiceImpl{
		catalog:      catalog,
		costRepo:     costRepo,
		gradeRepo:    gradeRepo,
		vipThreshold: decimal.NewFromInt(vipThreshold),
		now:          time.Now,
	}
}

func (s *vaultServiceImpl) Items(ctx context.Context, query, rarity string) ([]dto.VaultItem, error) {
	products, err := s.catalog.Products(ctx, dto.ProductFilter{Query: query, Rarity: rarity})
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	costs, err := s.costRepo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load costs: %w", err)
	}
	grades, err := s.gradeRepo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load grades: %w", err)
	}

	now := s.now()
	items := make([]dto.VaultItem, len(products))
	for i, p := range products {
		item := dto.VaultItem{Product: p}

		if days := DaysInVault(p.CreatedAt, now); days != nil {
			item.DaysInVault = days
		}
		if buy, ok := costs[p.ID]; ok {
			item.BuyPrice = &buy
			if gl := GainLoss(p.Price, buy); gl != nil {
				item.GainLoss = gl
			}
		}
		item.Grade = grades[p.ID]

		items[i] = item
	}
	return items, nil
}

func (s *vaultServiceImpl) Stats(items []dto.VaultItem) dto.DashboardStats {
	stats := dto.DashboardStats{
		TotalValue: decimal.Zero,
		VIPValue:   decimal.Zero,
		LiveCount:  len(items),
	}
	for _, item := range items {
		stats.TotalValue = stats.TotalValue.Add(item.Price)
		if item.Price.GreaterThan(s.vipThreshold) {
			stats.VIPValue = stats.VIPValue.Add(item.Price)
		}
	}
	return stats
}

func (s *vaultServiceImpl) SetCost(ctx context.Context, productID string, buyPrice float64) error {
	if productID == "" {
		return fmt.Errorf("product id required")
	}
	if buyPrice < 0 {
		return fmt.Errorf("buy price must not be negative")
	}
	return s.costRepo.Set(ctx, productID, buyPrice)
}

func (s *vaultServiceImpl) SetGrade(ctx context.Context, productID, grade string) error {
	if productID == "" {
		return fmt.Errorf("product id required")
	}
	switch grade {
	case "S", "A", "B", "C":
	default:
		return fmt.Errorf("unknown grade %q", grade)
	}
	return s.gradeRepo.Set(ctx, productID, grade)
}

// DaysInVault is whole days since the item was listed. Nil when the listing
// time is unknown.
func DaysInVault(createdAt, now time.Time) *int {
	if createdAt.IsZero() {
		return nil
	}
	days := int(now.Sub(createdAt).Hours() / 24)
	return &days
}

// GainLoss is (sell − buy) / buy × 100, rounded to one decimal. Nil when no
// usable buy price exists.
func GainLoss(sellPrice decimal.Decimal, buyPrice float64) *float64 {
	if buyPrice <= 0 {
		return nil
	}
	sell, _ := sellPrice.Float64()
	gl := (sell - buyPrice) / buyPrice * 100
	gl = math.Round(gl*10) / 10
	return &gl
}

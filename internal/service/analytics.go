package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tcg-nakama/internal/client"
	"tcg-nakama/internal/dto"
	"tcg-nakama/internal/model"
	"tcg-nakama/internal/repository"
)

const (
	trendingWindowDays = 30
	trendingLimit      = 10
	ordersFetchLimit   = 50
)

// Analytics is everything the admin analytics page shows.
type Analytics struct {
	GradingCandidates []dto.GradingCandidate
	TotalGraded       int
	TrendingSearches  []dto.TrendingSearch
	Countries         []dto.CountryCount
	TopSpenders       []dto.Spender
	Bundles           []dto.BasketPair
	OrdersCount       int
}

type AnalyticsService interface {
	Overview(ctx context.Context) (*Analytics, error)
}

type analyticsServiceImpl struct {
	catalog       CatalogService
	adminClient   client.AdminClient
	oauth         OAuthService
	gradeRepo     repository.GradeRepository
	searchLogRepo repository.SearchLogRepository
}

func NewAnalyticsService(
	catalog CatalogService,
	adminClient client.AdminClient,
	oauth OAuthService,
	gradeRepo repository.GradeRepository,
	searchLogRepo repository.SearchLogRepository,
) AnalyticsService {
	return &analyticsServiceImpl{
		catalog:       catalog,
		adminClient:   adminClient,
		oauth:         oauth,
		gradeRepo:     gradeRepo,
		searchLogRepo: searchLogRepo,
	}
}

func (s *analyticsServiceImpl) Overview(ctx context.Context) (*Analytics, error) {
	products, err := s.catalog.Products(ctx, dto.ProductFilter{})
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	grades, err := s.gradeRepo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load grades: %w", err)
	}

	candidates, totalGraded := GradingCandidates(products, grades, 10)

	trendingRows, err := s.searchLogRepo.Trending(ctx, time.Now().AddDate(0, 0, -trendingWindowDays), trendingLimit)
	if err != nil {
		return nil, fmt.Errorf("load trending searches: %w", err)
	}
	trending := make([]dto.TrendingSearch, len(trendingRows))
	for i, row := range trendingRows {
		trending[i] = dto.TrendingSearch{Query: row.Query, Count: row.Count}
	}

	analytics := &Analytics{
		GradingCandidates: candidates,
		TotalGraded:       totalGraded,
		TrendingSearches:  trending,
	}

	// Order analytics need an Admin API token from the OAuth flow. Without
	// one the page still renders, just without order data.
	if token := s.oauth.Token(); token != "" {
		orders, err := s.adminClient.GetOrders(ctx, token, ordersFetchLimit)
		if err != nil {
			slog.Error("fetch orders failed", slog.Any("error", err))
		} else {
			analytics.Countries = CustomerCountries(orders, 10)
			analytics.TopSpenders = TopSpenders(orders, 10)
			analytics.Bundles = BasketPairs(orders, 5)
			analytics.OrdersCount = len(orders)
		}
	}

	return analytics, nil
}

// GradingCandidates scores S/A-graded cards for grading submission, 0-100.
// Weights: grade 40, price band 30, title rarity markers 15, stock 15.
func GradingCandidates(products []model.Product, grades map[string]string, limit int) ([]dto.GradingCandidate, int) {
	var candidates []dto.GradingCandidate
	totalGraded := 0

	for _, p := range products {
		grade, ok := grades[p.ID]
		if !ok || grade == "" {
			continue
		}
		totalGraded++

		if grade != "S" && grade != "A" {
			continue
		}
		candidates = append(candidates, dto.GradingCandidate{
			Title: p.Title,
			Grade: grade,
			Price: p.Price,
			Score: gradingScore(&p, grade),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, totalGraded
}

func gradingScore(p *model.Product, grade string) int {
	score := 0

	switch grade {
	case "S":
		score += 40
	case "A":
		score += 30
	case "B":
		score += 15
	}

	price, _ := p.Price.Float64()
	switch {
	case price > 5000:
		score += 30
	case price > 2000:
		score += 20
	case price > 500:
		score += 10
	}

	title := strings.ToUpper(p.Title)
	switch {
	case strings.Contains(title, "SR") || strings.Contains(title, "UR") || strings.Contains(title, "SAR"):
		score += 15
	case strings.Contains(title, "VMAX") || strings.Contains(title, "VSTAR"):
		score += 12
	case strings.Contains(title, "V") || strings.Contains(title, "R"):
		score += 8
	}

	switch {
	case p.Stock >= 3:
		score += 15
	case p.Stock >= 2:
		score += 10
	default:
		score += 5
	}

	if score > 100 {
		score = 100
	}
	return score
}

// CustomerCountries groups orders by shipping (or billing) country.
func CustomerCountries(orders []model.Order, limit int) []dto.CountryCount {
	counts := make(map[string]int)
	for _, order := range orders {
		country := "Unknown"
		if order.ShippingAddress != nil && order.ShippingAddress.Country != "" {
			country = order.ShippingAddress.Country
		} else if order.BillingAddress != nil && order.BillingAddress.Country != "" {
			country = order.BillingAddress.Country
		}
		counts[country]++
	}

	result := make([]dto.CountryCount, 0, len(counts))
	for name, count := range counts {
		result = append(result, dto.CountryCount{Name: name, Count: count})
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Name < result[j].Name
	})
	if len(result) > limit {
		result = result[:limit]
	}
	if len(result) > 0 {
		top := result[0].Count
		for i := range result {
			result[i].Percent = result[i].Count * 100 / top
		}
	}
	return result
}

// TopSpenders sums order totals per customer.
func TopSpenders(orders []model.Order, limit int) []dto.Spender {
	type bucket struct {
		name  string
		total decimal.Decimal
	}
	buckets := make(map[int64]*bucket)

	for _, order := range orders {
		if order.Customer == nil || order.Customer.ID == 0 {
			continue
		}
		b, ok := buckets[order.Customer.ID]
		if !ok {
			name := order.Customer.DisplayName()
			if name == "" {
				name = "Unknown"
			}
			b = &bucket{name: name, total: decimal.Zero}
			buckets[order.Customer.ID] = b
		}
		b.total = b.total.Add(order.TotalPrice)
	}

	result := make([]dto.Spender, 0, len(buckets))
	for _, b := range buckets {
		result = append(result, dto.Spender{Name: b.name, Total: b.total})
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].Total.Equal(result[j].Total) {
			return result[i].Total.GreaterThan(result[j].Total)
		}
		return result[i].Name < result[j].Name
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result
}

// BasketPairs finds products frequently bought together. Only pairs seen at
// least twice are reported.
func BasketPairs(orders []model.Order, limit int) []dto.BasketPair {
	counts := make(map[[2]string]int)

	for _, order := range orders {
		seen := make(map[string]bool)
		var titles []string
		for _, item := range order.LineItems {
			title := item.Title
			if runes := []rune(title); len(runes) > 30 {
				title = string(runes[:30])
			}
			if title == "" || seen[title] {
				continue
			}
			seen[title] = true
			titles = append(titles, title)
		}
		sort.Strings(titles)

		for i := 0; i < len(titles); i++ {
			for j := i + 1; j < len(titles); j++ {
				counts[[2]string{titles[i], titles[j]}]++
			}
		}
	}

	type pairCount struct {
		pair  [2]string
		count int
	}
	all := make([]pairCount, 0, len(counts))
	for pair, count := range counts {
		if count >= 2 {
			all = append(all, pairCount{pair: pair, count: count})
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].pair[0] < all[j].pair[0]
	})
	if len(all) > limit {
		all = all[:limit]
	}

	result := make([]dto.BasketPair, len(all))
	for i, pc := range all {
		result[i] = dto.BasketPair{Product1: pc.pair[0], Product2: pc.pair[1], Count: pc.count}
	}
	return result
}

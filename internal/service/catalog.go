package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/sahilm/fuzzy"
	"golang.org/x/sync/singleflight"

	"tcg-nakama/internal/client"
	"tcg-nakama/internal/dto"
	"tcg-nakama/internal/mockdata"
	"tcg-nakama/internal/model"
	"tcg-nakama/internal/repository"
)

const (
	catalogCacheSize = 64
	catalogCacheTTL  = 5 * time.Minute
)

type CatalogService interface {
	Products(ctx context.Context, filter dto.ProductFilter) ([]model.Product, error)
	Product(ctx context.Context, productID string) (*model.Product, error)
	Collections(ctx context.Context) ([]model.Collection, error)
	// Sync bypasses the cache and refreshes the unfiltered catalog.
	Sync(ctx context.Context) (int, error)
	UsingMockData() bool
}

type catalogServiceImpl struct {
	shopify       client.ShopifyClient
	searchLogRepo repository.SearchLogRepository
	cache         *lru.Cache
	group         singleflight.Group
	now           func() time.Time
}

type cacheEntry struct {
	products  []model.Product
	fetchedAt time.Time
}

func NewCatalogService(shopify client.ShopifyClient, searchLogRepo repository.SearchLogRepository) CatalogService {
	cache, _ := lru.New(catalogCacheSize)
	return &catalogServiceImpl{
		shopify:       shopify,
		searchLogRepo: searchLogRepo,
		cache:         cache,
		now:           time.Now,
	}
}

func (s *catalogServiceImpl) UsingMockData() bool {
	return !s.shopify.Configured()
}

func (s *catalogServiceImpl) Products(ctx context.Context, filter dto.ProductFilter) ([]model.Product, error) {
	base, err := s.baseProducts(ctx, filter, false)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	products := Refine(base, filter)

	if filter.RecordSearch && filter.Query != "" {
		if err := s.searchLogRepo.Log(ctx, filter.Query, len(products)); err != nil {
			slog.Warn("log search failed", slog.Any("error", err))
		}
	}

	return products, nil
}

// baseProducts fetches the unrefined product set for a filter: a collection's
// products, or a storefront search by query/rarity. Results are cached and
// concurrent identical fetches are collapsed.
func (s *catalogServiceImpl) baseProducts(ctx context.Context, filter dto.ProductFilter, bypassCache bool) ([]model.Product, error) {
	if !s.shopify.Configured() {
		if filter.Collection != "" {
			return mockdata.CollectionProducts(filter.Collection)
		}
		return mockdata.Products()
	}

	var key string
	if filter.Collection != "" {
		key = "c=" + strings.ToLower(filter.Collection)
	} else {
		key = "q=" + strings.ToLower(filter.Query) + "|r=" + strings.ToLower(filter.Rarity)
	}

	if !bypassCache {
		if cached, ok := s.cache.Get(key); ok {
			entry := cached.(cacheEntry)
			if s.now().Sub(entry.fetchedAt) < catalogCacheTTL {
				return entry.products, nil
			}
		}
	}

	result, err, _ := s.group.Do(key, func() (any, error) {
		var (
			products []model.Product
			err      error
		)
		if filter.Collection != "" {
			products, err = s.shopify.GetCollectionProducts(ctx, filter.Collection)
		} else {
			products, err = s.shopify.GetProducts(ctx, dto.ProductFilter{
				Query:  filter.Query,
				Rarity: filter.Rarity,
			})
		}
		if err != nil {
			return nil, err
		}

		// Live store can be empty during setup; keep the storefront browsable.
		if len(products) == 0 && filter.Query == "" && filter.Rarity == "" && filter.Collection == "" {
			mocks, mockErr := mockdata.Products()
			if mockErr != nil {
				return nil, mockErr
			}
			slog.Info("shopify catalog empty, serving bundled products", slog.Int("count", len(mocks)))
			products = mocks
		}

		s.cache.Add(key, cacheEntry{products: products, fetchedAt: s.now()})
		return products, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]model.Product), nil
}

func (s *catalogServiceImpl) Product(ctx context.Context, productID string) (*model.Product, error) {
	if mockdata.IsMockID(productID) || !s.shopify.Configured() {
		products, err := mockdata.Products()
		if err != nil {
			return nil, err
		}
		for i := range products {
			if products[i].ID == productID || products[i].SafeID == productID {
				return &products[i], nil
			}
		}
		return nil, nil
	}

	return s.shopify.GetProduct(ctx, productID)
}

func (s *catalogServiceImpl) Collections(ctx context.Context) ([]model.Collection, error) {
	if !s.shopify.Configured() {
		return mockdata.Collections()
	}
	return s.shopify.GetCollections(ctx)
}

func (s *catalogServiceImpl) Sync(ctx context.Context) (int, error) {
	products, err := s.baseProducts(ctx, dto.ProductFilter{}, true)
	if err != nil {
		return 0, fmt.Errorf("sync catalog: %w", err)
	}
	return len(products), nil
}

// Refine applies query, rarity and price-bound filters locally so that live
// and bundled catalogs behave identically.
func Refine(products []model.Product, filter dto.ProductFilter) []model.Product {
	out := products
	if filter.Query != "" {
		out = matchQuery(out, filter.Query)
	}
	if filter.Rarity != "" {
		filtered := out[:0:0]
		for _, p := range out {
			if strings.EqualFold(p.Rarity, filter.Rarity) {
				filtered = append(filtered, p)
			}
		}
		out = filtered
	}
	if filter.MinPrice != nil {
		filtered := out[:0:0]
		for _, p := range out {
			if p.Price.GreaterThanOrEqual(*filter.MinPrice) {
				filtered = append(filtered, p)
			}
		}
		out = filtered
	}
	if filter.MaxPrice != nil {
		filtered := out[:0:0]
		for _, p := range out {
			if p.Price.LessThanOrEqual(*filter.MaxPrice) {
				filtered = append(filtered, p)
			}
		}
		out = filtered
	}
	return out
}

type productTitles []model.Product

func (p productTitles) String(i int) string { return p[i].Title }
func (p productTitles) Len() int            { return len(p) }

// matchQuery keeps products whose title or set contains the query; when
// nothing matches exactly, falls back to fuzzy title matching so typos still
// find cards.
func matchQuery(products []model.Product, query string) []model.Product {
	q := strings.ToLower(query)
	var matched []model.Product
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.Set), q) {
			matched = append(matched, p)
		}
	}
	if len(matched) > 0 {
		return matched
	}

	results := fuzzy.FindFrom(query, productTitles(products))
	for _, r := range results {
		matched = append(matched, products[r.Index])
	}
	return matched
}

// FreshPulls returns the newest n products by listing time.
func FreshPulls(products []model.Product, n int) []model.Product {
	sorted := make([]model.Product, len(products))
	copy(sorted, products)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// HotPicks returns the n highest-priced products.
func HotPicks(products []model.Product, n int) []model.Product {
	sorted := make([]model.Product, len(products))
	copy(sorted, products)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Price.GreaterThan(sorted[j].Price)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// HotPickCards decorates the top-priced products with growth (1.5-5.5%) and
// hype (60-95%) indicators for the storefront. The values are derived from
// the product ID so a card keeps its numbers between page loads.
func HotPickCards(products []model.Product, n int) []dto.HotPick {
	top := HotPicks(products, n)

	picks := make([]dto.HotPick, len(top))
	for i, p := range top {
		h := fnv.New32a()
		h.Write([]byte(p.ID))
		seed := h.Sum32()

		picks[i] = dto.HotPick{
			Product: p,
			Growth:  1.5 + float64(seed%41)/10.0,
			HypePct: 60 + int(seed/41%36),
		}
	}
	return picks
}

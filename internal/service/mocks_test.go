package service

import (
	"context"
	"sync"
	"time"

	"tcg-nakama/internal/client"
	"tcg-nakama/internal/dto"
	"tcg-nakama/internal/model"
	"tcg-nakama/internal/repository"
)

// fakeShopifyClient drives catalog and cart tests without a live store.
type fakeShopifyClient struct {
	mu         sync.Mutex
	configured bool
	products   []model.Product
	product    *model.Product
	cart       *model.Cart
	err        error

	getProductsCalls int
}

func (f *fakeShopifyClient) Configured() bool { return f.configured }

func (f *fakeShopifyClient) GetProducts(context.Context, dto.ProductFilter) ([]model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getProductsCalls++
	return f.products, f.err
}

func (f *fakeShopifyClient) GetProduct(context.Context, string) (*model.Product, error) {
	return f.product, f.err
}

func (f *fakeShopifyClient) GetCollections(context.Context) ([]model.Collection, error) {
	return nil, f.err
}

func (f *fakeShopifyClient) GetCollectionProducts(context.Context, string) ([]model.Product, error) {
	return f.products, f.err
}

func (f *fakeShopifyClient) CreateCart(context.Context, string, int) (*model.Cart, error) {
	return f.cart, f.err
}

func (f *fakeShopifyClient) AddToCart(context.Context, string, string, int) (*model.Cart, error) {
	return f.cart, f.err
}

func (f *fakeShopifyClient) UpdateCartLine(context.Context, string, string, int) (*model.Cart, error) {
	return f.cart, f.err
}

func (f *fakeShopifyClient) RemoveCartLines(context.Context, string, []string) (*model.Cart, error) {
	return f.cart, f.err
}

func (f *fakeShopifyClient) GetCart(context.Context, string) (*model.Cart, error) {
	return f.cart, f.err
}

type fakeSearchLogRepo struct {
	mu       sync.Mutex
	logged   []string
	trending []repository.TrendingRow
}

func (f *fakeSearchLogRepo) Log(_ context.Context, query string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logged = append(f.logged, query)
	return nil
}

func (f *fakeSearchLogRepo) Trending(context.Context, time.Time, int) ([]repository.TrendingRow, error) {
	return f.trending, nil
}

type fakeCostRepo struct {
	costs map[string]float64
}

func (f *fakeCostRepo) Get(_ context.Context, productID string) (*float64, error) {
	if v, ok := f.costs[productID]; ok {
		return &v, nil
	}
	return nil, nil
}

func (f *fakeCostRepo) Set(_ context.Context, productID string, buyPrice float64) error {
	if f.costs == nil {
		f.costs = make(map[string]float64)
	}
	f.costs[productID] = buyPrice
	return nil
}

func (f *fakeCostRepo) All(context.Context) (map[string]float64, error) {
	return f.costs, nil
}

type fakeGradeRepo struct {
	grades map[string]string
}

func (f *fakeGradeRepo) Get(_ context.Context, productID string) (string, error) {
	return f.grades[productID], nil
}

func (f *fakeGradeRepo) Set(_ context.Context, productID, grade string) error {
	if f.grades == nil {
		f.grades = make(map[string]string)
	}
	f.grades[productID] = grade
	return nil
}

func (f *fakeGradeRepo) All(context.Context) (map[string]string, error) {
	return f.grades, nil
}

type fakeSettingRepo struct {
	mu     sync.Mutex
	values map[string]string
}

func (f *fakeSettingRepo) Get(_ context.Context, key, fallback string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.values[key]; ok {
		return v, nil
	}
	return fallback, nil
}

func (f *fakeSettingRepo) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.values == nil {
		f.values = make(map[string]string)
	}
	f.values[key] = value
	return nil
}

func (f *fakeSettingRepo) SetAll(ctx context.Context, values map[string]string) error {
	for k, v := range values {
		if err := f.Set(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}

type fakeSnapshotRepo struct {
	mu        sync.Mutex
	snapshots []model.PriceSnapshot
}

func (f *fakeSnapshotRepo) Create(_ context.Context, snapshot *model.PriceSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots = append(f.snapshots, *snapshot)
	return nil
}

func (f *fakeSnapshotRepo) LatestForProduct(context.Context, string) (*model.PriceSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.snapshots) == 0 {
		return nil, nil
	}
	last := f.snapshots[len(f.snapshots)-1]
	return &last, nil
}

func (f *fakeSnapshotRepo) RecordedSince(context.Context, time.Time) ([]model.PriceSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshots, nil
}

type fakeAdminClient struct {
	orders []model.Order
	token  string
	err    error
}

func (f *fakeAdminClient) GetOrders(context.Context, string, int) ([]model.Order, error) {
	return f.orders, f.err
}

func (f *fakeAdminClient) ExchangeAuthCode(context.Context, string) (string, error) {
	return f.token, f.err
}

type fakePriceCharting struct {
	listings map[string][]client.MarketListing
	err      error
}

func (f *fakePriceCharting) Search(_ context.Context, query string) ([]client.MarketListing, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.listings[query], nil
}

type fakeFxClient struct {
	rate float64
	err  error
}

func (f *fakeFxClient) USDToJPY(context.Context) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.rate, nil
}

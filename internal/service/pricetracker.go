package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"
	"time"

	"tcg-nakama/internal/client"
	"tcg-nakama/internal/dto"
	"tcg-nakama/internal/model"
	"tcg-nakama/internal/repository"
)

const trackerProgressChunk = 500

// TrackerService runs the batch market-price update: one PriceCharting
// lookup per product, throttled, snapshots persisted for trending and
// gainers calculations.
type TrackerService interface {
	Run(ctx context.Context) (*dto.TrackerResult, error)
}

type trackerServiceImpl struct {
	catalog       CatalogService
	pricecharting client.PriceChartingClient
	fx            client.FxClient
	snapshotRepo  repository.SnapshotRepository
	settingRepo   repository.SettingRepository
	apiKey        string
	throttle      time.Duration
	now           func() time.Time
}

func NewTrackerService(
	catalog CatalogService,
	pricecharting client.PriceChartingClient,
	fx client.FxClient,
	snapshotRepo repository.SnapshotRepository,
	settingRepo repository.SettingRepository,
	apiKey string,
	throttle time.Duration,
) TrackerService {
	return &trackerServiceImpl{
		catalog:       catalog,
		pricecharting: pricecharting,
		fx:            fx,
		snapshotRepo:  snapshotRepo,
		settingRepo:   settingRepo,
		apiKey:        apiKey,
		throttle:      throttle,
		now:           time.Now,
	}
}

func (s *trackerServiceImpl) Run(ctx context.Context) (*dto.TrackerResult, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("PRICECHARTING_API_KEY not set")
	}

	products, err := s.catalog.Products(ctx, dto.ProductFilter{})
	if err != nil {
		return nil, fmt.Errorf("load products for batch: %w", err)
	}

	start := s.now()

	// One rate fetch per batch.
	usdToJPY, err := s.fx.USDToJPY(ctx)
	if err != nil {
		slog.Warn("exchange rate fetch failed, using fallback", slog.Any("error", err))
		usdToJPY = client.FallbackUSDJPY
	}

	result := &dto.TrackerResult{Total: len(products)}
	slog.Info("batch price update starting", slog.Int("total", result.Total))

	for i, product := range products {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("batch cancelled: %w", err)
		}

		if product.Title == "" || product.Title == "Draft" {
			result.Skipped++
			continue
		}

		if i > 0 && i%trackerProgressChunk == 0 {
			slog.Info("batch progress",
				slog.Int("done", i),
				slog.Int("total", result.Total),
				slog.Int("updated", result.Updated),
				slog.Int("failed", result.Failed))
		}

		if i > 0 {
			select {
			case <-ctx.Done():
				return result, fmt.Errorf("batch cancelled: %w", ctx.Err())
			case <-time.After(s.throttle):
			}
		}

		priceUSD, err := s.lookupPrice(ctx, &product)
		if err != nil {
			slog.Warn("price lookup failed", slog.String("title", product.Title), slog.Any("error", err))
			result.Failed++
			continue
		}
		if priceUSD == 0 {
			result.Failed++
			continue
		}

		snapshot := &model.PriceSnapshot{
			ProductID:    product.ID,
			ProductTitle: product.Title,
			MarketUSD:    priceUSD,
			MarketJPY:    int64(priceUSD * usdToJPY),
			ExchangeRate: usdToJPY,
			RecordedAt:   s.now(),
		}
		if err := s.snapshotRepo.Create(ctx, snapshot); err != nil {
			slog.Error("store snapshot failed", slog.String("title", product.Title), slog.Any("error", err))
			result.Failed++
			continue
		}
		result.Updated++
	}

	result.Duration = math.Round(s.now().Sub(start).Seconds()*10) / 10
	slog.Info("batch complete",
		slog.Int("updated", result.Updated),
		slog.Int("failed", result.Failed),
		slog.Int("skipped", result.Skipped),
		slog.Float64("duration_sec", result.Duration))

	if err := s.saveRunMetadata(ctx, result); err != nil {
		slog.Error("save run metadata failed", slog.Any("error", err))
	}

	return result, nil
}

// lookupPrice queries PriceCharting for one card and picks the best match.
func (s *trackerServiceImpl) lookupPrice(ctx context.Context, product *model.Product) (float64, error) {
	query := BuildMarketQuery(product.Title, product.Set, product.CardNumber)

	listings, err := s.pricecharting.Search(ctx, query)
	if err != nil {
		return 0, err
	}
	if len(listings) == 0 {
		return 0, nil
	}

	if matches := FilterByCardNumber(listings, product.CardNumber); len(matches) > 0 {
		listings = matches
	}

	// Cheapest remaining match: the regular printing is typically cheapest,
	// variants (alt art, promo, serial) price higher.
	best := listings[0]
	for _, listing := range listings[1:] {
		if listing.PriceUSD < best.PriceUSD {
			best = listing
		}
	}
	return best.PriceUSD, nil
}

var parenRe = regexp.MustCompile(`\(([^)]+)\)`)

// ExtractSearchName pulls the English name out of a bilingual card title
// like "リザードン (Charizard)".
func ExtractSearchName(cardName string) string {
	if m := parenRe.FindStringSubmatch(cardName); m != nil {
		return strings.TrimSpace(m[1])
	}
	name, _, _ := strings.Cut(cardName, "(")
	return strings.TrimSpace(name)
}

// BuildMarketQuery assembles the PriceCharting search query from name, set
// and collector number.
func BuildMarketQuery(title, set, cardNumber string) string {
	parts := []string{ExtractSearchName(title)}
	switch set {
	case "", "Unknown", "Unknown Set":
	default:
		parts = append(parts, set)
	}
	if cardNumber != "" {
		parts = append(parts, strings.ReplaceAll(cardNumber, "#", ""))
	}
	return strings.Join(parts, " ")
}

var (
	numberSepRe   = regexp.MustCompile(`[-/\s]`)
	numberSplitRe = regexp.MustCompile(`[/-]`)
)

// FilterByCardNumber keeps listings whose name mentions the collector
// number, trying common formatting variations.
func FilterByCardNumber(listings []client.MarketListing, cardNumber string) []client.MarketListing {
	if cardNumber == "" {
		return nil
	}

	clean := strings.ToUpper(strings.ReplaceAll(cardNumber, "#", ""))
	variations := map[string]bool{
		clean:                              true,
		numberSepRe.ReplaceAllString(clean, ""): true,
	}
	first := strings.TrimSpace(numberSplitRe.Split(clean, 2)[0])
	variations[first] = true
	if trimmed := strings.TrimLeft(first, "0"); trimmed != "" {
		variations[trimmed] = true
	} else {
		variations["0"] = true
	}

	var matches []client.MarketListing
	for _, listing := range listings {
		name := strings.ToUpper(listing.Name)
		for variation := range variations {
			if variation != "" && strings.Contains(name, variation) {
				matches = append(matches, listing)
				break
			}
		}
	}
	return matches
}

func (s *trackerServiceImpl) saveRunMetadata(ctx context.Context, result *dto.TrackerResult) error {
	return s.settingRepo.SetAll(ctx, map[string]string{
		repository.SettingTrackerLastRun:      s.now().UTC().Format(time.RFC3339),
		repository.SettingTrackerLastUpdated:  fmt.Sprintf("%d", result.Updated),
		repository.SettingTrackerLastFailed:   fmt.Sprintf("%d", result.Failed),
		repository.SettingTrackerLastSkipped:  fmt.Sprintf("%d", result.Skipped),
		repository.SettingTrackerLastTotal:    fmt.Sprintf("%d", result.Total),
		repository.SettingTrackerLastDuration: fmt.Sprintf("%.0f", result.Duration),
	})
}

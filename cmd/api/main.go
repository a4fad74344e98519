package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"tcg-nakama/internal/client"
	"tcg-nakama/internal/config"
	"tcg-nakama/internal/dto"
	"tcg-nakama/internal/handler"
	"tcg-nakama/internal/poller"
	"tcg-nakama/internal/repository"
	"tcg-nakama/internal/scheduler"
	"tcg-nakama/internal/server"
	"tcg-nakama/internal/service"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	db := client.InitSqliteClient(cfg.DatabasePath)
	shopifyClient := client.NewShopifyClient(&cfg.Shopify)
	adminClient := client.NewAdminClient(cfg.Shopify.StoreURL, cfg.Shopify.APIKey, cfg.Shopify.APISecret)
	pricechartingClient := client.NewPriceChartingClient(cfg.PriceCharting.APIKey)
	fxClient := client.NewFxClient()

	bannerRepo := repository.NewBannerRepository(db)
	costRepo := repository.NewCostRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	searchLogRepo := repository.NewSearchLogRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	catalogService := service.NewCatalogService(shopifyClient, searchLogRepo)
	cartService := service.NewCartService(shopifyClient, cfg.Shopify.StoreURL)
	vaultService := service.NewVaultService(catalogService, costRepo, gradeRepo, cfg.Admin.VIPThreshold)
	oauthService := service.NewOAuthService(adminClient, cfg.Shopify)
	analyticsService := service.NewAnalyticsService(catalogService, adminClient, oauthService, gradeRepo, searchLogRepo)
	trackerService := service.NewTrackerService(
		catalogService,
		pricechartingClient,
		fxClient,
		snapshotRepo,
		settingRepo,
		cfg.PriceCharting.APIKey,
		time.Duration(cfg.PriceCharting.ThrottleMillis)*time.Millisecond,
	)
	reportService := service.NewReportService(cfg.SMTP)

	sched := scheduler.New(settingRepo, func(ctx context.Context) error {
		_, err := trackerService.Run(ctx)
		return err
	})
	syncPoller := poller.New(catalogService)

	storeHandler := handler.NewStoreHandler(catalogService, cartService, bannerRepo)
	cartHandler := handler.NewCartHandler(cartService)
	adminHandler := handler.NewAdminHandler(
		cfg.Admin,
		vaultService,
		analyticsService,
		catalogService,
		bannerRepo,
		settingRepo,
		sched,
		syncPoller,
	)
	oauthHandler := handler.NewOAuthHandler(oauthService)

	srv, err := server.NewServer(cfg, storeHandler, cartHandler, adminHandler, oauthHandler)
	if err != nil {
		slog.Error("init server failed", slog.Any("error", err))
		os.Exit(1)
	}

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	go syncPoller.Start(bgCtx)
	go sched.Start(bgCtx)
	go runDailyReport(bgCtx, analyticsService, catalogService, reportService)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	slog.Info("starting HTTP server", slog.String("addr", serverAddr))
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	slog.Info("signal received, starting graceful shutdown")
	bgCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}
}

func setupLogger(cfg config.Log) {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(h))
}

// runDailyReport emails the analytics summary every morning at 08:00 JST.
func runDailyReport(
	ctx context.Context,
	analyticsService service.AnalyticsService,
	catalogService service.CatalogService,
	reportService service.ReportService,
) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		loc = time.FixedZone("JST", 9*60*60)
	}

	for {
		now := time.Now().In(loc)
		next := time.Date(now.Year(), now.Month(), now.Day(), 8, 0, 0, 0, loc)
		if !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(next.Sub(now)):
		}

		overview, err := analyticsService.Overview(ctx)
		if err != nil {
			slog.Error("build daily report failed", slog.Any("error", err))
			continue
		}
		products, err := catalogService.Products(ctx, dto.ProductFilter{})
		if err != nil {
			slog.Error("load products for report failed", slog.Any("error", err))
			continue
		}

		data := &service.ReportData{
			Date:             time.Now().In(loc).Format("2006-01-02"),
			TotalProducts:    len(products),
			TotalOrders:      overview.OrdersCount,
			TotalGraded:      overview.TotalGraded,
			TopProducts:      service.HotPicks(products, 5),
			TopSpenders:      overview.TopSpenders,
			TrendingSearches: overview.TrendingSearches,
			Candidates:       overview.GradingCandidates,
		}

		body, err := reportService.BuildDailyReport(data)
		if err != nil {
			slog.Error("render daily report failed", slog.Any("error", err))
			continue
		}
		if err := reportService.Send("TCG Nakama Daily Report "+data.Date, body); err != nil {
			slog.Error("send daily report failed", slog.Any("error", err))
		}
	}
}

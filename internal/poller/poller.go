// Package poller refreshes the storefront catalog cache on a fixed interval
// so admin vault numbers stay close to what Shopify reports.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"tcg-nakama/internal/dto"
	"tcg-nakama/internal/service"
)

const syncInterval = 30 * time.Minute

type Poller struct {
	catalogService service.CatalogService
	interval       time.Duration

	mu         sync.Mutex
	lastSync   time.Time
	lastError  string
	inProgress bool
}

func New(catalogService service.CatalogService) *Poller {
	return &Poller{
		catalogService: catalogService,
		interval:       syncInterval,
	}
}

// Start syncs once immediately, then on every tick until ctx is cancelled.
// Run it in its own goroutine.
func (p *Poller) Start(ctx context.Context) {
	slog.Info("sync poller started", slog.Duration("interval", p.interval))

	p.sync(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("sync poller stopped")
			return
		case <-ticker.C:
			p.sync(ctx)
		}
	}
}

// Sync forces a refresh outside the regular cadence.
func (p *Poller) Sync(ctx context.Context) {
	p.sync(ctx)
}

func (p *Poller) Status() dto.SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	status := dto.SyncStatus{
		InProgress: p.inProgress,
		LastError:  p.lastError,
	}
	if !p.lastSync.IsZero() {
		t := p.lastSync
		status.LastSync = &t
	}
	return status
}

func (p *Poller) sync(ctx context.Context) {
	p.mu.Lock()
	if p.inProgress {
		p.mu.Unlock()
		return
	}
	p.inProgress = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.inProgress = false
		p.mu.Unlock()
	}()

	start := time.Now()
	count, err := p.catalogService.Sync(ctx)

	p.mu.Lock()
	p.lastSync = time.Now()
	if err != nil {
		p.lastError = err.Error()
	} else {
		p.lastError = ""
	}
	p.mu.Unlock()

	if err != nil {
		slog.Error("catalog sync failed", slog.Any("error", err))
		return
	}
	slog.Info("catalog sync completed", slog.Int("products", count), slog.Duration("took", time.Since(start)))
}

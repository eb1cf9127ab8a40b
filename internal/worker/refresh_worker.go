// Package worker runs the periodic dashboard refresh: every interval it
// rebuilds each company's snapshot, with bounded concurrency across
// companies.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"treasurydash/internal/companies"
)

// Refresher rebuilds one company's dashboard snapshot.
type Refresher interface {
	Refresh(ctx context.Context, slug string) (int64, error)
}

// RefreshWorkerConfig holds configuration for the refresh worker
type RefreshWorkerConfig struct {
	// Interval is how often every company is refreshed (default: 15m)
	Interval time.Duration

	// Concurrency is the max number of companies refreshed in parallel (default: 3)
	Concurrency int
}

// DefaultRefreshWorkerConfig returns sensible defaults
func DefaultRefreshWorkerConfig() RefreshWorkerConfig {
	return RefreshWorkerConfig{
		Interval:    15 * time.Minute,
		Concurrency: 3,
	}
}

// RefreshWorker drives periodic refreshes of all configured companies
type RefreshWorker struct {
	refresher Refresher
	config    RefreshWorkerConfig

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewRefreshWorker creates a new refresh worker
func NewRefreshWorker(refresher Refresher, config RefreshWorkerConfig) *RefreshWorker {
	if config.Interval <= 0 {
		config.Interval = DefaultRefreshWorkerConfig().Interval
	}
	if config.Concurrency < 1 {
		config.Concurrency = DefaultRefreshWorkerConfig().Concurrency
	}
	return &RefreshWorker{
		refresher: refresher,
		config:    config,
	}
}

// Start begins the refresh loop. Returns an error if already running.
func (w *RefreshWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("refresh worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	go w.runLoop(ctx)

	slog.InfoContext(ctx, "Refresh worker started",
		"interval", w.config.Interval,
		"concurrency", w.config.Concurrency,
		"companies", len(companies.Slugs()))

	return nil
}

// Stop gracefully stops the worker and waits for completion.
func (w *RefreshWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)

	select {
	case <-w.doneCh:
		slog.InfoContext(ctx, "Refresh worker stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Refresh worker stop timed out")
		return ctx.Err()
	}

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	return nil
}

// IsRunning returns whether the worker is currently running
func (w *RefreshWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *RefreshWorker) runLoop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	// Refresh immediately on startup
	w.RefreshAll(ctx)

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.RefreshAll(ctx)
		}
	}
}

// RefreshAll refreshes every configured company with bounded concurrency.
// Per-company failures are logged; one broken sheet must not stop the rest.
func (w *RefreshWorker) RefreshAll(ctx context.Context) {
	started := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.config.Concurrency)

	var failures int64
	var mu sync.Mutex

	for _, slug := range companies.Slugs() {
		slug := slug
		g.Go(func() error {
			select {
			case <-w.stopCh:
				return nil
			case <-gctx.Done():
				return nil
			default:
			}

			snapshotID, err := w.refresher.Refresh(gctx, slug)
			if err != nil {
				mu.Lock()
				failures++
				mu.Unlock()
				slog.ErrorContext(gctx, "Company refresh failed",
					"company", slug,
					"error", err)
				return nil
			}

			slog.InfoContext(gctx, "Company refreshed",
				"company", slug,
				"snapshot_id", snapshotID)
			return nil
		})
	}

	// Workers never return errors; Wait is for completion only.
	_ = g.Wait()

	slog.InfoContext(ctx, "Refresh cycle completed",
		"companies", len(companies.Slugs()),
		"failures", failures,
		"duration", time.Since(started).Round(time.Millisecond))
}

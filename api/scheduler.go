/*
scheduler.go - Automated recalculation scheduler

PURPOSE:
  Periodically finds approved assets whose current distribution is missing
  or stale (the family or the asset value changed since it was computed)
  and recalculates them.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Runs once immediately on Start
  - Recalculations run in parallel, bounded by Concurrency (errgroup)
  - One failing asset is logged and does not stop the others
  - Start and Stop are idempotent; Stop waits for the loop to exit

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 minute)
  - Concurrency: Parallel recalculations (default: 4)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewRecalculationScheduler(store, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: CreateDistribution endpoint (manual recalculation)
  - estate/service.go: NeedsRecalculation, Recalculate
*/
package api

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/amanah/faraid-engine/estate"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RecalculationScheduler keeps approved assets' distributions current.
type RecalculationScheduler struct {
	Store         estate.Store
	Logger        *zap.Logger
	CheckInterval time.Duration
	Concurrency   int
	Enabled       bool
	Now           func() time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// RunSummary counts the outcome of one check.
type RunSummary struct {
	Checked      int
	Recalculated int
	Failed       int
}

// NewRecalculationScheduler creates a new scheduler.
func NewRecalculationScheduler(store estate.Store, logger *zap.Logger) *RecalculationScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecalculationScheduler{
		Store:         store,
		Logger:        logger,
		CheckInterval: time.Minute,
		Concurrency:   4,
		Enabled:       true,
		Now:           time.Now,
	}
}

// Start begins the scheduler. Calling Start on a running scheduler does nothing.
func (rs *RecalculationScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled {
		rs.Logger.Info("scheduler disabled, not starting")
		return
	}
	if rs.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	rs.cancel = cancel
	rs.done = make(chan struct{})
	rs.running = true

	go rs.run(ctx, rs.done)

	rs.Logger.Info("scheduler started", zap.Duration("interval", rs.CheckInterval))
}

// Stop stops the scheduler and waits for an in-flight check to finish.
func (rs *RecalculationScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.running {
		return
	}
	rs.cancel()
	<-rs.done
	rs.running = false
	rs.Logger.Info("scheduler stopped")
}

func (rs *RecalculationScheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(rs.CheckInterval)
	defer ticker.Stop()

	// Run immediately on start
	rs.RunNow(ctx)

	for {
		select {
		case <-ticker.C:
			rs.RunNow(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// RunNow checks every approved asset once and recalculates the ones that
// need it.
func (rs *RecalculationScheduler) RunNow(ctx context.Context) RunSummary {
	var summary RunSummary

	assets, err := rs.Store.ListAssetsByStatus(ctx, estate.AssetApproved)
	if err != nil {
		rs.Logger.Error("failed to list approved assets", zap.Error(err))
		return summary
	}
	summary.Checked = len(assets)

	var recalculated, failed atomic.Int64

	limit := rs.Concurrency
	if limit <= 0 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, asset := range assets {
		assetID := asset.ID
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			needs, err := estate.NeedsRecalculation(gctx, rs.Store, assetID)
			if err != nil {
				failed.Add(1)
				rs.Logger.Warn("failed to check asset", zap.String("asset_id", assetID), zap.Error(err))
				return nil
			}
			if !needs {
				return nil
			}
			d, err := estate.Recalculate(gctx, rs.Store, assetID, rs.Now())
			if err != nil {
				failed.Add(1)
				rs.Logger.Warn("failed to recalculate asset", zap.String("asset_id", assetID), zap.Error(err))
				return nil
			}
			recalculated.Add(1)
			rs.Logger.Debug("asset recalculated",
				zap.String("asset_id", assetID),
				zap.String("distribution_id", d.ID),
			)
			return nil
		})
	}
	_ = g.Wait()

	summary.Recalculated = int(recalculated.Load())
	summary.Failed = int(failed.Load())

	if summary.Recalculated > 0 || summary.Failed > 0 {
		rs.Logger.Info("scheduler run completed",
			zap.Int("checked", summary.Checked),
			zap.Int("recalculated", summary.Recalculated),
			zap.Int("failed", summary.Failed),
		)
	}
	return summary
}

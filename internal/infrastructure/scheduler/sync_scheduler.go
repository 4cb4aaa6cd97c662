// Package scheduler contains the background triggers: the interval-based
// full-pipeline sync trigger and the stuck-run monitor.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	appsync "github.com/vitrina/backend/internal/application/sync"
	"github.com/vitrina/backend/internal/domain/shared"
	"github.com/vitrina/backend/internal/domain/sourcing"
)

// SyncRunner is the slice of the sync service the scheduler drives
type SyncRunner interface {
	SyncFull(ctx context.Context, platform sourcing.PlatformCode) (*appsync.RunSummary, error)
}

// SyncSchedulerConfig holds configuration for the interval trigger
type SyncSchedulerConfig struct {
	Interval  time.Duration
	Platforms []sourcing.PlatformCode
}

// SyncScheduler triggers a full reconciliation pipeline for every enabled
// platform on a fixed interval. Platforms run sequentially; a platform whose
// previous run is still in flight is skipped, not queued.
type SyncScheduler struct {
	config SyncSchedulerConfig
	runner SyncRunner
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSyncScheduler creates a new sync scheduler
func NewSyncScheduler(config SyncSchedulerConfig, runner SyncRunner, logger *zap.Logger) *SyncScheduler {
	return &SyncScheduler{
		config: config,
		runner: runner,
		logger: logger,
	}
}

// Start starts the scheduler loop
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Sync scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Int("platforms", len(s.config.Platforms)),
	)
	return nil
}

// Stop stops the scheduler and waits for an in-flight sweep to finish
func (s *SyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Sync scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SyncScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep runs the full pipeline for every configured platform. One platform's
// failure does not stop the sweep.
func (s *SyncScheduler) sweep(ctx context.Context) {
	for _, platform := range s.config.Platforms {
		if ctx.Err() != nil {
			return
		}

		summary, err := s.runner.SyncFull(ctx, platform)
		switch {
		case errors.Is(err, shared.ErrSyncInProgress):
			s.logger.Info("scheduled sync skipped, previous run still in flight",
				zap.String("platform", string(platform)),
			)
		case err != nil:
			s.logger.Error("scheduled sync failed",
				zap.String("platform", string(platform)),
				zap.Error(err),
			)
		default:
			s.logger.Info("scheduled sync finished",
				zap.String("platform", string(platform)),
				zap.Int64("run_id", summary.RunID),
				zap.String("status", string(summary.Status)),
				zap.Int64("processed", summary.Outcome.Processed),
				zap.Int64("errors", summary.Outcome.Errors),
			)
		}
	}
}

package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	domainsync "github.com/vitrina/backend/internal/domain/sync"
)

// StuckRunMonitorConfig holds configuration for the stuck-run monitor
type StuckRunMonitorConfig struct {
	// Interval is how often the monitor sweeps for stale runs
	Interval time.Duration
	// Threshold is the age past which an IN_PROGRESS run is declared stuck
	Threshold time.Duration
}

// StuckRunMonitor periodically reclassifies abandoned IN_PROGRESS runs as
// FAILED. A run only ends up stuck when its process died mid-stage (crash,
// OOM kill, power loss); there is no live cancellation signal, so the row
// would otherwise stay IN_PROGRESS forever and hold its audit trail open.
type StuckRunMonitor struct {
	config StuckRunMonitorConfig
	logs   domainsync.SyncLogRepository
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewStuckRunMonitor creates a new stuck-run monitor
func NewStuckRunMonitor(config StuckRunMonitorConfig, logs domainsync.SyncLogRepository, logger *zap.Logger) *StuckRunMonitor {
	return &StuckRunMonitor{
		config: config,
		logs:   logs,
		logger: logger,
	}
}

// Start starts the monitor loop
func (m *StuckRunMonitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.isRunning {
		m.mu.Unlock()
		return nil
	}
	m.isRunning = true
	m.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	m.wg.Add(1)
	go m.runLoop(ctx)

	m.logger.Info("Stuck-run monitor started",
		zap.Duration("interval", m.config.Interval),
		zap.Duration("threshold", m.config.Threshold),
	)
	return nil
}

// Stop stops the monitor
func (m *StuckRunMonitor) Stop(ctx context.Context) error {
	m.mu.Lock()
	if !m.isRunning {
		m.mu.Unlock()
		return nil
	}
	m.isRunning = false
	m.mu.Unlock()

	if m.cancel != nil {
		m.cancel()
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("Stuck-run monitor stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *StuckRunMonitor) runLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// Sweep reclassifies every IN_PROGRESS run older than the threshold. It is
// exported so operational tooling can force a pass.
func (m *StuckRunMonitor) Sweep(ctx context.Context) {
	cutoff := time.Now().Add(-m.config.Threshold)

	stale, err := m.logs.FindStaleInProgress(ctx, cutoff)
	if err != nil {
		m.logger.Error("stuck-run sweep failed to list stale runs", zap.Error(err))
		return
	}

	for i := range stale {
		run := &stale[i]
		run.MarkStuck(m.config.Threshold)
		if err := m.logs.Update(ctx, run); err != nil {
			m.logger.Error("failed to reclassify stuck run",
				zap.Int64("run_id", run.ID),
				zap.Error(err),
			)
			continue
		}
		m.logger.Warn("reclassified stuck run as failed",
			zap.Int64("run_id", run.ID),
			zap.String("type", string(run.Type)),
			zap.String("platform", string(run.Platform)),
			zap.Time("started_at", run.StartedAt),
		)
	}
}

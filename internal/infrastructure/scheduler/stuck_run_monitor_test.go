package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vitrina/backend/internal/domain/shared"
	"github.com/vitrina/backend/internal/domain/sourcing"
	domainsync "github.com/vitrina/backend/internal/domain/sync"
)

// MockSyncLogRepository is a testify mock of domainsync.SyncLogRepository
type MockSyncLogRepository struct {
	mock.Mock
}

func (m *MockSyncLogRepository) Create(ctx context.Context, log *domainsync.SyncLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockSyncLogRepository) Update(ctx context.Context, log *domainsync.SyncLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockSyncLogRepository) FindByID(ctx context.Context, id int64) (*domainsync.SyncLog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainsync.SyncLog), args.Error(1)
}

func (m *MockSyncLogRepository) FindRecent(ctx context.Context, syncType domainsync.SyncType, platform sourcing.PlatformCode, filter shared.Filter) (*shared.Paginated[domainsync.SyncLog], error) {
	args := m.Called(ctx, syncType, platform, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[domainsync.SyncLog]), args.Error(1)
}

func (m *MockSyncLogRepository) FindLastByType(ctx context.Context, syncType domainsync.SyncType, platform sourcing.PlatformCode) (*domainsync.SyncLog, error) {
	args := m.Called(ctx, syncType, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainsync.SyncLog), args.Error(1)
}

func (m *MockSyncLogRepository) FindStaleInProgress(ctx context.Context, startedBefore time.Time) ([]domainsync.SyncLog, error) {
	args := m.Called(ctx, startedBefore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domainsync.SyncLog), args.Error(1)
}

func staleRun(id int64, age time.Duration) domainsync.SyncLog {
	run := domainsync.NewSyncLog(domainsync.SyncTypeProducts, sourcing.PlatformCodeSitex)
	run.ID = id
	run.StartedAt = time.Now().Add(-age)
	return *run
}

func TestStuckRunMonitorSweepReclassifiesStaleRuns(t *testing.T) {
	repo := new(MockSyncLogRepository)
	repo.On("FindStaleInProgress", mock.Anything, mock.Anything).
		Return([]domainsync.SyncLog{staleRun(7, 3*time.Hour)}, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(run *domainsync.SyncLog) bool {
		return run.ID == 7 &&
			run.Status == domainsync.SyncStatusFailed &&
			run.FinishedAt != nil &&
			run.ErrorMessage != ""
	})).Return(nil)

	monitor := NewStuckRunMonitor(StuckRunMonitorConfig{
		Interval:  time.Hour,
		Threshold: 2 * time.Hour,
	}, repo, zap.NewNop())

	monitor.Sweep(context.Background())
	repo.AssertExpectations(t)
}

func TestStuckRunMonitorSweepContinuesPastUpdateFailure(t *testing.T) {
	repo := new(MockSyncLogRepository)
	repo.On("FindStaleInProgress", mock.Anything, mock.Anything).
		Return([]domainsync.SyncLog{staleRun(1, 3*time.Hour), staleRun(2, 4*time.Hour)}, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(run *domainsync.SyncLog) bool {
		return run.ID == 1
	})).Return(errors.New("db down"))
	repo.On("Update", mock.Anything, mock.MatchedBy(func(run *domainsync.SyncLog) bool {
		return run.ID == 2
	})).Return(nil)

	monitor := NewStuckRunMonitor(StuckRunMonitorConfig{
		Interval:  time.Hour,
		Threshold: 2 * time.Hour,
	}, repo, zap.NewNop())

	monitor.Sweep(context.Background())
	repo.AssertExpectations(t)
}

func TestStuckRunMonitorSweepListFailureIsNonFatal(t *testing.T) {
	repo := new(MockSyncLogRepository)
	repo.On("FindStaleInProgress", mock.Anything, mock.Anything).
		Return(nil, errors.New("db down"))

	monitor := NewStuckRunMonitor(StuckRunMonitorConfig{
		Interval:  time.Hour,
		Threshold: 2 * time.Hour,
	}, repo, zap.NewNop())

	require.NotPanics(t, func() {
		monitor.Sweep(context.Background())
	})
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestStuckRunMonitorStartStop(t *testing.T) {
	repo := new(MockSyncLogRepository)
	repo.On("FindStaleInProgress", mock.Anything, mock.Anything).Return(nil, nil).Maybe()

	monitor := NewStuckRunMonitor(StuckRunMonitorConfig{
		Interval:  10 * time.Millisecond,
		Threshold: time.Hour,
	}, repo, zap.NewNop())

	ctx := context.Background()
	require.NoError(t, monitor.Start(ctx))
	time.Sleep(25 * time.Millisecond)
	require.NoError(t, monitor.Stop(ctx))
	assert.NoError(t, monitor.Stop(ctx))
}

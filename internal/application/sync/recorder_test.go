package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vitrina/backend/internal/domain/sourcing"
	domainsync "github.com/vitrina/backend/internal/domain/sync"
)

func TestRecorderBegin(t *testing.T) {
	repo := new(MockSyncLogRepository)
	repo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*domainsync.SyncLog).ID = 42
	}).Return(nil)

	run := NewAuditRecorder(repo, Policy{}, zap.NewNop()).
		Begin(context.Background(), domainsync.SyncTypeCategories, sourcing.PlatformCodeSitex)

	assert.Equal(t, int64(42), run.ID)
	assert.False(t, run.IsDegraded())
	assert.Equal(t, domainsync.SyncStatusInProgress, run.Status)
}

func TestRecorderBeginDegradesOnInsertFailure(t *testing.T) {
	repo := new(MockSyncLogRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	run := NewAuditRecorder(repo, Policy{}, zap.NewNop()).
		Begin(context.Background(), domainsync.SyncTypeProducts, sourcing.PlatformCodeWebra)

	require.NotNil(t, run, "a logging failure must never block reconciliation")
	assert.True(t, run.IsDegraded())
}

func TestRecorderFinish(t *testing.T) {
	tests := []struct {
		name       string
		policy     Policy
		outcome    Outcome
		runErr     error
		wantStatus domainsync.SyncStatus
		wantMsg    string
	}{
		{
			name:       "clean run",
			outcome:    Outcome{Processed: 10, Created: 10},
			wantStatus: domainsync.SyncStatusSuccess,
		},
		{
			name:       "partial errors under lenient policy",
			outcome:    Outcome{Processed: 29, Created: 29, Errors: 1},
			wantStatus: domainsync.SyncStatusSuccess,
			wantMsg:    "1 of 30 records failed",
		},
		{
			name:       "partial errors under strict policy",
			policy:     Policy{ErrorsAsFailure: true},
			outcome:    Outcome{Processed: 29, Created: 29, Errors: 1},
			wantStatus: domainsync.SyncStatusFailed,
			wantMsg:    "1 of 30 records failed",
		},
		{
			name:       "systemic failure",
			outcome:    Outcome{Processed: 5},
			runErr:     errors.New("cannot reach database"),
			wantStatus: domainsync.SyncStatusFailed,
			wantMsg:    "cannot reach database",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockSyncLogRepository)
			repo.On("Create", mock.Anything, mock.Anything).Return(nil)
			repo.On("Update", mock.Anything, mock.Anything).Return(nil)

			recorder := NewAuditRecorder(repo, tt.policy, zap.NewNop())
			run := recorder.Begin(context.Background(), domainsync.SyncTypeProducts, sourcing.PlatformCodeSitex)
			status := recorder.Finish(context.Background(), run, tt.outcome, tt.runErr, 3*time.Second)

			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantStatus, run.Status)
			assert.Equal(t, tt.outcome.Processed, run.Processed)
			assert.Equal(t, tt.outcome.Errors, run.Errors)
			assert.Equal(t, int64(3000), run.DurationMs)
			if tt.wantMsg != "" {
				assert.Contains(t, run.ErrorMessage, tt.wantMsg)
			}
			require.NotNil(t, run.FinishedAt)
			repo.AssertExpectations(t)
		})
	}
}

func TestRecorderFinishDegradedSkipsWrite(t *testing.T) {
	repo := new(MockSyncLogRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	recorder := NewAuditRecorder(repo, Policy{}, zap.NewNop())
	run := recorder.Begin(context.Background(), domainsync.SyncTypeFull, sourcing.PlatformCodeUnitek)
	status := recorder.Finish(context.Background(), run, Outcome{Processed: 3, Created: 3}, nil, time.Second)

	assert.Equal(t, domainsync.SyncStatusSuccess, status)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

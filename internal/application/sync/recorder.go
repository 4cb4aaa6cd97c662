package sync

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vitrina/backend/internal/domain/sourcing"
	domainsync "github.com/vitrina/backend/internal/domain/sync"
)

// Policy controls how a finished run's error count maps to its recorded
// status. The default keeps runs with partial errors as SUCCESS with an
// embedded error message; ErrorsAsFailure switches to the strict reading.
type Policy struct {
	ErrorsAsFailure bool
}

// AuditRecorder wraps every reconciliation run in a SyncLog record. A
// recorder failure is never allowed to block reconciliation: if the
// IN_PROGRESS insert fails, the pipeline continues against a degraded
// in-memory handle and only the audit trail is lost.
type AuditRecorder struct {
	logs   domainsync.SyncLogRepository
	policy Policy
	logger *zap.Logger
}

// NewAuditRecorder creates an audit recorder
func NewAuditRecorder(logs domainsync.SyncLogRepository, policy Policy, logger *zap.Logger) *AuditRecorder {
	return &AuditRecorder{logs: logs, policy: policy, logger: logger}
}

// Begin inserts an IN_PROGRESS run record, degrading to an in-memory handle
// when the insert fails
func (r *AuditRecorder) Begin(ctx context.Context, syncType domainsync.SyncType, platform sourcing.PlatformCode) *domainsync.SyncLog {
	run := domainsync.NewSyncLog(syncType, platform)
	if err := r.logs.Create(ctx, run); err != nil {
		r.logger.Error("sync log insert failed, continuing with degraded run handle",
			zap.String("type", string(syncType)),
			zap.String("platform", string(platform)),
			zap.Error(err))
		return domainsync.NewDegradedSyncLog(syncType, platform)
	}
	return run
}

// Finish writes the run's final state exactly once. runErr marks a systemic
// failure that aborted the stage; per-record errors arrive in the outcome.
func (r *AuditRecorder) Finish(ctx context.Context, run *domainsync.SyncLog, outcome Outcome, runErr error, duration time.Duration) domainsync.SyncStatus {
	var status domainsync.SyncStatus
	var message string
	switch {
	case runErr != nil:
		status = domainsync.SyncStatusFailed
		message = runErr.Error()
	case outcome.Errors > 0:
		status = domainsync.ResolveStatus(outcome.Errors, r.policy.ErrorsAsFailure)
		message = fmt.Sprintf("%d of %d records failed", outcome.Errors, outcome.Processed+outcome.Errors)
	default:
		status = domainsync.SyncStatusSuccess
	}

	run.Complete(status, outcome.Processed, outcome.Created, outcome.Updated, outcome.Errors, message, duration)

	if run.IsDegraded() {
		r.logger.Warn("degraded run finished without audit record",
			zap.String("type", string(run.Type)),
			zap.String("status", string(status)))
		return status
	}
	if err := r.logs.Update(ctx, run); err != nil {
		r.logger.Error("sync log completion write failed",
			zap.Int64("run_id", run.ID),
			zap.Error(err))
	}
	return status
}

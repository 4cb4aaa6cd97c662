package sync

import (
	"context"
	"time"

	"github.com/vitrina/backend/internal/domain/shared"
	"github.com/vitrina/backend/internal/domain/sourcing"
)

// SyncLogRepository persists reconciliation run records
type SyncLogRepository interface {
	// Create inserts a new IN_PROGRESS run record and fills in its id
	Create(ctx context.Context, log *SyncLog) error

	// Update writes the run's final state
	Update(ctx context.Context, log *SyncLog) error

	// FindByID retrieves a run record by id
	FindByID(ctx context.Context, id int64) (*SyncLog, error)

	// FindRecent lists runs newest first, optionally filtered by type and platform
	FindRecent(ctx context.Context, syncType SyncType, platform sourcing.PlatformCode, filter shared.Filter) (*shared.Paginated[SyncLog], error)

	// FindLastByType returns the most recent run of the given type and
	// platform, or shared.ErrNotFound when none exists
	FindLastByType(ctx context.Context, syncType SyncType, platform sourcing.PlatformCode) (*SyncLog, error)

	// FindStaleInProgress returns IN_PROGRESS runs started before the cutoff
	FindStaleInProgress(ctx context.Context, startedBefore time.Time) ([]SyncLog, error)
}

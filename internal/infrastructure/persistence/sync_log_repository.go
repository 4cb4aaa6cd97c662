package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/vitrina/backend/internal/domain/shared"
	"github.com/vitrina/backend/internal/domain/sourcing"
	domainsync "github.com/vitrina/backend/internal/domain/sync"
)

// GormSyncLogRepository implements sync.SyncLogRepository using GORM
type GormSyncLogRepository struct {
	db *gorm.DB
}

// NewGormSyncLogRepository creates a new GormSyncLogRepository
func NewGormSyncLogRepository(db *gorm.DB) *GormSyncLogRepository {
	return &GormSyncLogRepository{db: db}
}

// Create inserts a new run record and fills in its id
func (r *GormSyncLogRepository) Create(ctx context.Context, log *domainsync.SyncLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// Update writes the run's final state
func (r *GormSyncLogRepository) Update(ctx context.Context, log *domainsync.SyncLog) error {
	return r.db.WithContext(ctx).Save(log).Error
}

// FindByID retrieves a run record by id
func (r *GormSyncLogRepository) FindByID(ctx context.Context, id int64) (*domainsync.SyncLog, error) {
	var log domainsync.SyncLog
	if err := r.db.WithContext(ctx).First(&log, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &log, nil
}

// FindRecent lists runs newest first, optionally filtered by type and platform
func (r *GormSyncLogRepository) FindRecent(ctx context.Context, syncType domainsync.SyncType, platform sourcing.PlatformCode, filter shared.Filter) (*shared.Paginated[domainsync.SyncLog], error) {
	query := r.db.WithContext(ctx).Model(&domainsync.SyncLog{})
	if syncType != "" {
		query = query.Where("type = ?", syncType)
	}
	if platform != "" {
		query = query.Where("platform = ?", platform)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var logs []domainsync.SyncLog
	if err := query.
		Order("started_at DESC, id DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&logs).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(logs, total, filter.Page, filter.PageSize)
	return &page, nil
}

// FindLastByType returns the most recent run of the given type and platform
func (r *GormSyncLogRepository) FindLastByType(ctx context.Context, syncType domainsync.SyncType, platform sourcing.PlatformCode) (*domainsync.SyncLog, error) {
	var log domainsync.SyncLog
	if err := r.db.WithContext(ctx).
		Where("type = ? AND platform = ?", syncType, platform).
		Order("started_at DESC, id DESC").
		First(&log).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &log, nil
}

// FindStaleInProgress returns IN_PROGRESS runs started before the cutoff
func (r *GormSyncLogRepository) FindStaleInProgress(ctx context.Context, startedBefore time.Time) ([]domainsync.SyncLog, error) {
	var logs []domainsync.SyncLog
	if err := r.db.WithContext(ctx).
		Where("status = ? AND started_at < ?", domainsync.SyncStatusInProgress, startedBefore).
		Order("started_at ASC").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

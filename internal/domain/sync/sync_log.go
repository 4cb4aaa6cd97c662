package sync

import (
	"time"

	"github.com/vitrina/backend/internal/domain/sourcing"
)

// SyncType identifies which reconciliation stage a run covers
type SyncType string

const (
	SyncTypeCategories    SyncType = "CATEGORIES"
	SyncTypeManufacturers SyncType = "MANUFACTURERS"
	SyncTypeParameters    SyncType = "PARAMETERS"
	SyncTypeProducts      SyncType = "PRODUCTS"
	SyncTypeDocuments     SyncType = "DOCUMENTS"
	SyncTypeFull          SyncType = "FULL"
)

// AllSyncTypes returns the stage types in pipeline dependency order
func AllSyncTypes() []SyncType {
	return []SyncType{
		SyncTypeCategories,
		SyncTypeManufacturers,
		SyncTypeParameters,
		SyncTypeProducts,
		SyncTypeDocuments,
	}
}

// IsValid returns true if the sync type is known
func (t SyncType) IsValid() bool {
	switch t {
	case SyncTypeCategories, SyncTypeManufacturers, SyncTypeParameters,
		SyncTypeProducts, SyncTypeDocuments, SyncTypeFull:
		return true
	default:
		return false
	}
}

// SyncStatus is the lifecycle status of a reconciliation run
type SyncStatus string

const (
	SyncStatusInProgress SyncStatus = "IN_PROGRESS"
	SyncStatusSuccess    SyncStatus = "SUCCESS"
	SyncStatusFailed     SyncStatus = "FAILED"
)

// DegradedRunID is the sentinel id of an in-memory run handle used when the
// IN_PROGRESS insert itself failed. A logging failure must never block
// reconciliation; the pipeline keeps running against the degraded handle.
const DegradedRunID int64 = -1

// SyncLog is one append-only audit record per reconciliation run. It is
// created IN_PROGRESS at run start and mutated exactly once at run end
// (or by the stuck-run monitor).
type SyncLog struct {
	ID       int64                 `gorm:"primaryKey;autoIncrement"`
	Type     SyncType              `gorm:"type:varchar(20);not null;index:idx_sync_log_type_status"`
	Platform sourcing.PlatformCode `gorm:"type:varchar(20);not null;index"`
	Status   SyncStatus            `gorm:"type:varchar(20);not null;index:idx_sync_log_type_status"`

	Processed int64 `gorm:"not null;default:0"`
	Created   int64 `gorm:"not null;default:0"`
	Updated   int64 `gorm:"not null;default:0"`
	Errors    int64 `gorm:"not null;default:0"`

	ErrorMessage string `gorm:"type:text"`
	DurationMs   int64  `gorm:"not null;default:0"`

	StartedAt  time.Time `gorm:"not null;index"`
	FinishedAt *time.Time
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SyncLog) TableName() string {
	return "sync_logs"
}

// NewSyncLog creates an IN_PROGRESS run record
func NewSyncLog(syncType SyncType, platform sourcing.PlatformCode) *SyncLog {
	now := time.Now()
	return &SyncLog{
		Type:      syncType,
		Platform:  platform,
		Status:    SyncStatusInProgress,
		StartedAt: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewDegradedSyncLog creates a non-persisted run handle with the sentinel id
func NewDegradedSyncLog(syncType SyncType, platform sourcing.PlatformCode) *SyncLog {
	log := NewSyncLog(syncType, platform)
	log.ID = DegradedRunID
	return log
}

// IsDegraded reports whether the run handle was never persisted
func (l *SyncLog) IsDegraded() bool {
	return l.ID == DegradedRunID
}

// Complete finalizes the run with its outcome. It is the single mutation a
// run record receives after creation.
func (l *SyncLog) Complete(status SyncStatus, processed, created, updated, errors int64, errorMessage string, duration time.Duration) {
	now := time.Now()
	l.Status = status
	l.Processed = processed
	l.Created = created
	l.Updated = updated
	l.Errors = errors
	l.ErrorMessage = errorMessage
	l.DurationMs = duration.Milliseconds()
	l.FinishedAt = &now
	l.UpdatedAt = now
}

// MarkStuck flips a run abandoned IN_PROGRESS to FAILED. Used only by the
// stuck-run monitor.
func (l *SyncLog) MarkStuck(threshold time.Duration) {
	now := time.Now()
	l.Status = SyncStatusFailed
	l.ErrorMessage = "run exceeded staleness threshold of " + threshold.String() + " without completing; reclassified by stuck-run monitor"
	l.FinishedAt = &now
	l.UpdatedAt = now
}

// IsStuck reports whether an IN_PROGRESS run is older than the threshold
func (l *SyncLog) IsStuck(threshold time.Duration, now time.Time) bool {
	return l.Status == SyncStatusInProgress && now.Sub(l.StartedAt) > threshold
}

// ResolveStatus maps a finished run's error count to its recorded status.
// The historical behavior records errors>0 as SUCCESS with an embedded
// message; errorsAsFailure switches to the strict interpretation.
func ResolveStatus(errors int64, errorsAsFailure bool) SyncStatus {
	if errors > 0 && errorsAsFailure {
		return SyncStatusFailed
	}
	return SyncStatusSuccess
}

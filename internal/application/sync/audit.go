package sync

import (
	"context"
	"fmt"

	"github.com/vitrina/backend/internal/domain/catalog"
	"github.com/vitrina/backend/internal/domain/shared"
	"github.com/vitrina/backend/internal/domain/sourcing"
	domainsync "github.com/vitrina/backend/internal/domain/sync"
)

// AuditService exposes the run history and the aggregate data-integrity
// report to operational tooling
type AuditService struct {
	logs     domainsync.SyncLogRepository
	products catalog.ProductRepository
}

// NewAuditService creates an audit query service
func NewAuditService(logs domainsync.SyncLogRepository, products catalog.ProductRepository) *AuditService {
	return &AuditService{logs: logs, products: products}
}

// ListRuns returns recent runs newest first. Zero-valued type and platform
// filters match everything.
func (s *AuditService) ListRuns(ctx context.Context, syncType domainsync.SyncType, platform sourcing.PlatformCode, filter shared.Filter) (*shared.Paginated[domainsync.SyncLog], error) {
	if syncType != "" && !syncType.IsValid() {
		return nil, fmt.Errorf("%w: unknown sync type %q", shared.ErrInvalidInput, syncType)
	}
	if platform != "" && !platform.IsValid() {
		return nil, fmt.Errorf("%w: unknown platform %q", shared.ErrInvalidInput, platform)
	}
	return s.logs.FindRecent(ctx, syncType, platform, filter)
}

// LastRun returns the most recent run of a type for a platform
func (s *AuditService) LastRun(ctx context.Context, syncType domainsync.SyncType, platform sourcing.PlatformCode) (*domainsync.SyncLog, error) {
	if !syncType.IsValid() {
		return nil, fmt.Errorf("%w: unknown sync type %q", shared.ErrInvalidInput, syncType)
	}
	if !platform.IsValid() {
		return nil, fmt.Errorf("%w: unknown platform %q", shared.ErrInvalidInput, platform)
	}
	return s.logs.FindLastByType(ctx, syncType, platform)
}

// Integrity computes the aggregate data-integrity counts over the catalog
func (s *AuditService) Integrity(ctx context.Context) (catalog.IntegrityCounts, error) {
	return s.products.IntegrityCounts(ctx)
}

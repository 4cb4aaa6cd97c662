package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/vitrina/backend/internal/domain/sourcing"
)

// CategoryRepository defines the interface for category persistence.
// Reconciliation preloads the full per-platform set with FindAllByPlatform
// once per run; per-record point lookups are deliberately absent from the
// hot path.
type CategoryRepository interface {
	// FindByID finds a category by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)

	// FindByExternalID finds a category by external id within a platform
	FindByExternalID(ctx context.Context, platform sourcing.PlatformCode, externalID string) (*Category, error)

	// FindAllByPlatform returns every category of a platform (cache preload)
	FindAllByPlatform(ctx context.Context, platform sourcing.PlatformCode) ([]Category, error)

	// FindChildren finds all direct children of a category
	FindChildren(ctx context.Context, parentID uuid.UUID) ([]Category, error)

	// Save creates or updates a category
	Save(ctx context.Context, category *Category) error

	// SaveBatch creates or updates a batch of categories in one round trip
	SaveBatch(ctx context.Context, categories []*Category) error

	// SlugExists checks whether any category already uses the slug
	SlugExists(ctx context.Context, slug string) (bool, error)

	// CountDanglingParents counts categories whose parent reference points
	// at a missing row (integrity report)
	CountDanglingParents(ctx context.Context) (int64, error)
}

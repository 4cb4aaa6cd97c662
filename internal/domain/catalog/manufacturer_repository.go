package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/vitrina/backend/internal/domain/sourcing"
)

// ManufacturerRepository defines the interface for manufacturer persistence
type ManufacturerRepository interface {
	// FindByID finds a manufacturer by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Manufacturer, error)

	// FindByExternalID finds a manufacturer by external id within a platform
	FindByExternalID(ctx context.Context, platform sourcing.PlatformCode, externalID string) (*Manufacturer, error)

	// FindAllByPlatform returns every manufacturer of a platform (cache preload)
	FindAllByPlatform(ctx context.Context, platform sourcing.PlatformCode) ([]Manufacturer, error)

	// Save creates or updates a manufacturer
	Save(ctx context.Context, manufacturer *Manufacturer) error

	// SaveBatch creates or updates a batch of manufacturers in one round trip
	SaveBatch(ctx context.Context, manufacturers []*Manufacturer) error
}

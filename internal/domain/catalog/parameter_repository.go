package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/vitrina/backend/internal/domain/sourcing"
)

// ParameterRepository defines the interface for parameter persistence.
// External ids are only unique within (category, platform), so every lookup
// is scoped by the owning category.
type ParameterRepository interface {
	// FindByID finds a parameter by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Parameter, error)

	// FindByCategory returns every parameter owned by a category
	FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]Parameter, error)

	// FindByExternalIDs bulk-finds parameters of a category whose external id
	// is in ids (at most one query, for the pair-resolution pass)
	FindByExternalIDs(ctx context.Context, categoryID uuid.UUID, platform sourcing.PlatformCode, ids []string) ([]Parameter, error)

	// Save creates or updates a parameter
	Save(ctx context.Context, parameter *Parameter) error

	// SaveBatch creates or updates a batch of parameters in one round trip
	SaveBatch(ctx context.Context, parameters []*Parameter) error
}

// ParameterOptionRepository defines the interface for option persistence.
// External ids are only unique within (parameter, platform).
type ParameterOptionRepository interface {
	// FindByID finds an option by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*ParameterOption, error)

	// FindByParameter returns every option owned by a parameter
	FindByParameter(ctx context.Context, parameterID uuid.UUID) ([]ParameterOption, error)

	// FindByParameters returns every option owned by any of the parameters
	// (cache preload for one category's parameter set)
	FindByParameters(ctx context.Context, parameterIDs []uuid.UUID) ([]ParameterOption, error)

	// FindByExternalIDs bulk-finds options of the given parameters whose
	// external id is in ids (at most one query, for the pair-resolution pass)
	FindByExternalIDs(ctx context.Context, parameterIDs []uuid.UUID, platform sourcing.PlatformCode, ids []string) ([]ParameterOption, error)

	// Save creates or updates an option
	Save(ctx context.Context, option *ParameterOption) error

	// SaveBatch creates or updates a batch of options in one round trip
	SaveBatch(ctx context.Context, options []*ParameterOption) error
}

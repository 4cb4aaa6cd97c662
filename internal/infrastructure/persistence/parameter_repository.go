package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vitrina/backend/internal/domain/catalog"
	"github.com/vitrina/backend/internal/domain/shared"
	"github.com/vitrina/backend/internal/domain/sourcing"
)

var parameterUpdateColumns = []string{"name", "sort_order", "updated_at"}

// GormParameterRepository implements catalog.ParameterRepository using GORM
type GormParameterRepository struct {
	db *gorm.DB
}

// NewGormParameterRepository creates a new GormParameterRepository
func NewGormParameterRepository(db *gorm.DB) *GormParameterRepository {
	return &GormParameterRepository{db: db}
}

// FindByID finds a parameter by its ID
func (r *GormParameterRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Parameter, error) {
	var parameter catalog.Parameter
	if err := r.db.WithContext(ctx).First(&parameter, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &parameter, nil
}

// FindByCategory returns every parameter owned by a category
func (r *GormParameterRepository) FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]catalog.Parameter, error) {
	var parameters []catalog.Parameter
	if err := r.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("sort_order ASC, name ASC").
		Find(&parameters).Error; err != nil {
		return nil, err
	}
	return parameters, nil
}

// FindByExternalIDs bulk-finds parameters of a category by external ids
func (r *GormParameterRepository) FindByExternalIDs(ctx context.Context, categoryID uuid.UUID, platform sourcing.PlatformCode, ids []string) ([]catalog.Parameter, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var parameters []catalog.Parameter
	if err := r.db.WithContext(ctx).
		Where("category_id = ? AND platform = ? AND external_id IN ?", categoryID, platform, ids).
		Find(&parameters).Error; err != nil {
		return nil, err
	}
	return parameters, nil
}

// Save creates or updates a parameter
func (r *GormParameterRepository) Save(ctx context.Context, parameter *catalog.Parameter) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(parameterUpdateColumns),
		}).
		Create(parameter).Error
}

// SaveBatch creates or updates a batch of parameters in one round trip
func (r *GormParameterRepository) SaveBatch(ctx context.Context, parameters []*catalog.Parameter) error {
	if len(parameters) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns(parameterUpdateColumns),
			}).
			Create(&parameters).Error
	})
}

// ---------------------------------------------------------------------------
// Parameter options
// ---------------------------------------------------------------------------

var optionUpdateColumns = []string{"name", "sort_order", "updated_at"}

// GormParameterOptionRepository implements catalog.ParameterOptionRepository using GORM
type GormParameterOptionRepository struct {
	db *gorm.DB
}

// NewGormParameterOptionRepository creates a new GormParameterOptionRepository
func NewGormParameterOptionRepository(db *gorm.DB) *GormParameterOptionRepository {
	return &GormParameterOptionRepository{db: db}
}

// FindByID finds an option by its ID
func (r *GormParameterOptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ParameterOption, error) {
	var option catalog.ParameterOption
	if err := r.db.WithContext(ctx).First(&option, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &option, nil
}

// FindByParameter returns every option owned by a parameter
func (r *GormParameterOptionRepository) FindByParameter(ctx context.Context, parameterID uuid.UUID) ([]catalog.ParameterOption, error) {
	var options []catalog.ParameterOption
	if err := r.db.WithContext(ctx).
		Where("parameter_id = ?", parameterID).
		Order("sort_order ASC, name ASC").
		Find(&options).Error; err != nil {
		return nil, err
	}
	return options, nil
}

// FindByParameters returns every option owned by any of the parameters
func (r *GormParameterOptionRepository) FindByParameters(ctx context.Context, parameterIDs []uuid.UUID) ([]catalog.ParameterOption, error) {
	if len(parameterIDs) == 0 {
		return nil, nil
	}
	var options []catalog.ParameterOption
	if err := r.db.WithContext(ctx).
		Where("parameter_id IN ?", parameterIDs).
		Find(&options).Error; err != nil {
		return nil, err
	}
	return options, nil
}

// FindByExternalIDs bulk-finds options of the given parameters by external ids
func (r *GormParameterOptionRepository) FindByExternalIDs(ctx context.Context, parameterIDs []uuid.UUID, platform sourcing.PlatformCode, ids []string) ([]catalog.ParameterOption, error) {
	if len(parameterIDs) == 0 || len(ids) == 0 {
		return nil, nil
	}
	var options []catalog.ParameterOption
	if err := r.db.WithContext(ctx).
		Where("parameter_id IN ? AND platform = ? AND external_id IN ?", parameterIDs, platform, ids).
		Find(&options).Error; err != nil {
		return nil, err
	}
	return options, nil
}

// Save creates or updates an option
func (r *GormParameterOptionRepository) Save(ctx context.Context, option *catalog.ParameterOption) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(optionUpdateColumns),
		}).
		Create(option).Error
}

// SaveBatch creates or updates a batch of options in one round trip
func (r *GormParameterOptionRepository) SaveBatch(ctx context.Context, options []*catalog.ParameterOption) error {
	if len(options) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns(optionUpdateColumns),
			}).
			Create(&options).Error
	})
}

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

var manufacturerUpdateColumns = []string{
	"name",
	"info_company", "info_street", "info_city", "info_zip", "info_country", "info_email", "info_phone",
	"eu_rep_company", "eu_rep_street", "eu_rep_city", "eu_rep_zip", "eu_rep_country", "eu_rep_email", "eu_rep_phone",
	"updated_at",
}

// GormManufacturerRepository implements catalog.ManufacturerRepository using GORM
type GormManufacturerRepository struct {
	db *gorm.DB
}

// NewGormManufacturerRepository creates a new GormManufacturerRepository
func NewGormManufacturerRepository(db *gorm.DB) *GormManufacturerRepository {
	return &GormManufacturerRepository{db: db}
}

// FindByID finds a manufacturer by its ID
func (r *GormManufacturerRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Manufacturer, error) {
	var manufacturer catalog.Manufacturer
	if err := r.db.WithContext(ctx).First(&manufacturer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &manufacturer, nil
}

// FindByExternalID finds a manufacturer by external id within a platform
func (r *GormManufacturerRepository) FindByExternalID(ctx context.Context, platform sourcing.PlatformCode, externalID string) (*catalog.Manufacturer, error) {
	var manufacturer catalog.Manufacturer
	if err := r.db.WithContext(ctx).
		Where("platform = ? AND external_id = ?", platform, externalID).
		First(&manufacturer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &manufacturer, nil
}

// FindAllByPlatform returns every manufacturer of a platform
func (r *GormManufacturerRepository) FindAllByPlatform(ctx context.Context, platform sourcing.PlatformCode) ([]catalog.Manufacturer, error) {
	var manufacturers []catalog.Manufacturer
	if err := r.db.WithContext(ctx).
		Where("platform = ?", platform).
		Order("name ASC").
		Find(&manufacturers).Error; err != nil {
		return nil, err
	}
	return manufacturers, nil
}

// Save creates or updates a manufacturer
func (r *GormManufacturerRepository) Save(ctx context.Context, manufacturer *catalog.Manufacturer) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(manufacturerUpdateColumns),
		}).
		Create(manufacturer).Error
}

// SaveBatch creates or updates a batch of manufacturers in one round trip
func (r *GormManufacturerRepository) SaveBatch(ctx context.Context, manufacturers []*catalog.Manufacturer) error {
	if len(manufacturers) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns(manufacturerUpdateColumns),
			}).
			Create(&manufacturers).Error
	})
}

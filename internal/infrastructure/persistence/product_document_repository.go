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

var documentUpdateColumns = []string{"product_id", "name", "url", "type", "updated_at"}

// GormProductDocumentRepository implements catalog.ProductDocumentRepository using GORM
type GormProductDocumentRepository struct {
	db *gorm.DB
}

// NewGormProductDocumentRepository creates a new GormProductDocumentRepository
func NewGormProductDocumentRepository(db *gorm.DB) *GormProductDocumentRepository {
	return &GormProductDocumentRepository{db: db}
}

// FindByExternalID finds a document by external id within a platform
func (r *GormProductDocumentRepository) FindByExternalID(ctx context.Context, platform sourcing.PlatformCode, externalID string) (*catalog.ProductDocument, error) {
	var document catalog.ProductDocument
	if err := r.db.WithContext(ctx).
		Where("platform = ? AND external_id = ?", platform, externalID).
		First(&document).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &document, nil
}

// FindAllByPlatform returns every document of a platform
func (r *GormProductDocumentRepository) FindAllByPlatform(ctx context.Context, platform sourcing.PlatformCode) ([]catalog.ProductDocument, error) {
	var documents []catalog.ProductDocument
	if err := r.db.WithContext(ctx).
		Where("platform = ?", platform).
		Find(&documents).Error; err != nil {
		return nil, err
	}
	return documents, nil
}

// FindByProduct returns every document attached to a product
func (r *GormProductDocumentRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]catalog.ProductDocument, error) {
	var documents []catalog.ProductDocument
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("name ASC").
		Find(&documents).Error; err != nil {
		return nil, err
	}
	return documents, nil
}

// Save creates or updates a document
func (r *GormProductDocumentRepository) Save(ctx context.Context, document *catalog.ProductDocument) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(documentUpdateColumns),
		}).
		Create(document).Error
}

// SaveBatch creates or updates a batch of documents in one round trip
func (r *GormProductDocumentRepository) SaveBatch(ctx context.Context, documents []*catalog.ProductDocument) error {
	if len(documents) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns(documentUpdateColumns),
			}).
			Create(&documents).Error
	})
}

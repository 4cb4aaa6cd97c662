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

var productUpdateColumns = []string{
	"reference", "name", "slug", "description",
	"category_id", "manufacturer_id",
	"client_price", "partner_price", "promo_client_price", "promo_partner_price", "final_price",
	"image_url", "additional_images",
	"active", "show", "status",
	"updated_at",
}

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByExternalID finds a product by external id within a platform
func (r *GormProductRepository) FindByExternalID(ctx context.Context, platform sourcing.PlatformCode, externalID string) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Where("platform = ? AND external_id = ?", platform, externalID).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindAllByPlatform returns every product of a platform
func (r *GormProductRepository) FindAllByPlatform(ctx context.Context, platform sourcing.PlatformCode) ([]catalog.Product, error) {
	var products []catalog.Product
	if err := r.db.WithContext(ctx).
		Where("platform = ?", platform).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindByCategory returns every product of a category
func (r *GormProductRepository) FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]catalog.Product, error) {
	var products []catalog.Product
	if err := r.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("name ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(productUpdateColumns),
		}).
		Create(product).Error
}

// SaveBatch creates or updates a batch of products in one round trip
func (r *GormProductRepository) SaveBatch(ctx context.Context, products []*catalog.Product) error {
	if len(products) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns(productUpdateColumns),
			}).
			Create(&products).Error
	})
}

// SlugExists checks whether any product already uses the slug
func (r *GormProductRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ReplaceParameters replaces the product's full parameter-association set
// atomically. Delete and insert run in one transaction so readers never see
// a half-applied set.
func (r *GormProductRepository) ReplaceParameters(ctx context.Context, productID uuid.UUID, associations []*catalog.ProductParameter) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("product_id = ?", productID).
			Delete(&catalog.ProductParameter{}).Error; err != nil {
			return err
		}
		if len(associations) == 0 {
			return nil
		}
		return tx.Create(&associations).Error
	})
}

// FindParameters returns the product's current parameter associations
func (r *GormProductRepository) FindParameters(ctx context.Context, productID uuid.UUID) ([]catalog.ProductParameter, error) {
	var associations []catalog.ProductParameter
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Find(&associations).Error; err != nil {
		return nil, err
	}
	return associations, nil
}

// IntegrityCounts computes the aggregate data-integrity report
func (r *GormProductRepository) IntegrityCounts(ctx context.Context) (catalog.IntegrityCounts, error) {
	var counts catalog.IntegrityCounts
	db := r.db.WithContext(ctx)

	if err := db.Model(&catalog.Product{}).Count(&counts.ProductsTotal).Error; err != nil {
		return counts, err
	}

	if err := db.Raw(`
		SELECT COUNT(*) FROM products p
		WHERE NOT EXISTS (SELECT 1 FROM categories c WHERE c.id = p.category_id)
	`).Scan(&counts.ProductsMissingCategory).Error; err != nil {
		return counts, err
	}

	if err := db.Model(&catalog.Product{}).
		Where("manufacturer_id IS NULL").
		Count(&counts.ProductsMissingManufacturer).Error; err != nil {
		return counts, err
	}

	if err := db.Model(&catalog.Product{}).
		Where("final_price IS NULL OR final_price <= 0").
		Count(&counts.ProductsMissingPrice).Error; err != nil {
		return counts, err
	}

	if err := db.Raw(`
		SELECT COUNT(*) FROM categories c
		WHERE c.parent_id IS NOT NULL
		  AND NOT EXISTS (SELECT 1 FROM categories p WHERE p.id = c.parent_id)
	`).Scan(&counts.CategoriesDanglingParent).Error; err != nil {
		return counts, err
	}

	if err := db.Raw(`
		SELECT COUNT(*) FROM product_parameters pp
		WHERE NOT EXISTS (
			SELECT 1 FROM parameter_options o
			WHERE o.id = pp.option_id AND o.parameter_id = pp.parameter_id
		)
	`).Scan(&counts.ParameterMismatches).Error; err != nil {
		return counts, err
	}

	return counts, nil
}

package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/vitrina/backend/internal/domain/sourcing"
)

// IntegrityCounts is the aggregate data-integrity report over the reconciled
// catalog, exposed to operational tooling.
type IntegrityCounts struct {
	ProductsTotal               int64 `json:"products_total"`
	ProductsMissingCategory     int64 `json:"products_missing_category"`
	ProductsMissingManufacturer int64 `json:"products_missing_manufacturer"`
	ProductsMissingPrice        int64 `json:"products_missing_price"`
	CategoriesDanglingParent    int64 `json:"categories_dangling_parent"`
	ParameterMismatches         int64 `json:"parameter_mismatches"`
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByExternalID finds a product by external id within a platform
	FindByExternalID(ctx context.Context, platform sourcing.PlatformCode, externalID string) (*Product, error)

	// FindAllByPlatform returns every product of a platform (cache preload)
	FindAllByPlatform(ctx context.Context, platform sourcing.PlatformCode) ([]Product, error)

	// FindByCategory returns every product of a category
	FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// SaveBatch creates or updates a batch of products in one round trip
	SaveBatch(ctx context.Context, products []*Product) error

	// SlugExists checks whether any product already uses the slug
	SlugExists(ctx context.Context, slug string) (bool, error)

	// ReplaceParameters replaces the product's full parameter-association
	// set atomically. A remote removal of a parameter value is reflected as
	// a local removal; there is no incremental merge.
	ReplaceParameters(ctx context.Context, productID uuid.UUID, associations []*ProductParameter) error

	// FindParameters returns the product's current parameter associations
	FindParameters(ctx context.Context, productID uuid.UUID) ([]ProductParameter, error)

	// IntegrityCounts computes the aggregate data-integrity report
	IntegrityCounts(ctx context.Context) (IntegrityCounts, error)
}

// ProductDocumentRepository defines the interface for document persistence
type ProductDocumentRepository interface {
	// FindByExternalID finds a document by external id within a platform
	FindByExternalID(ctx context.Context, platform sourcing.PlatformCode, externalID string) (*ProductDocument, error)

	// FindAllByPlatform returns every document of a platform (cache preload)
	FindAllByPlatform(ctx context.Context, platform sourcing.PlatformCode) ([]ProductDocument, error)

	// FindByProduct returns every document attached to a product
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]ProductDocument, error)

	// Save creates or updates a document
	Save(ctx context.Context, document *ProductDocument) error

	// SaveBatch creates or updates a batch of documents in one round trip
	SaveBatch(ctx context.Context, documents []*ProductDocument) error
}

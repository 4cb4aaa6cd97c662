package sync

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vitrina/backend/internal/domain/catalog"
	"github.com/vitrina/backend/internal/domain/sourcing"
)

// ParameterKey scopes a parameter external id to its owning category. The
// same numeric id repeats across categories on every platform, so the bare
// external id is not a usable key.
type ParameterKey struct {
	CategoryID uuid.UUID
	ExternalID string
}

// OptionKey scopes an option external id to its owning parameter
type OptionKey struct {
	ParameterID uuid.UUID
	ExternalID  string
}

// LookupCache maps external ids to already-persisted entities for one run.
// It is built with one bulk query per entity kind and kept consistent as the
// engine creates rows mid-run, so within-run forward references resolve
// without point queries. Run-local, never shared across runs.
type LookupCache struct {
	platform sourcing.PlatformCode

	categories    map[string]*catalog.Category
	manufacturers map[string]*catalog.Manufacturer
	parameters    map[ParameterKey]*catalog.Parameter
	options       map[OptionKey]*catalog.ParameterOption
	products      map[string]*catalog.Product
	documents     map[string]*catalog.ProductDocument
}

// NewLookupCache creates an empty cache bound to one source platform
func NewLookupCache(platform sourcing.PlatformCode) *LookupCache {
	return &LookupCache{
		platform:      platform,
		categories:    make(map[string]*catalog.Category),
		manufacturers: make(map[string]*catalog.Manufacturer),
		parameters:    make(map[ParameterKey]*catalog.Parameter),
		options:       make(map[OptionKey]*catalog.ParameterOption),
		products:      make(map[string]*catalog.Product),
		documents:     make(map[string]*catalog.ProductDocument),
	}
}

// Platform returns the platform the cache is scoped to
func (c *LookupCache) Platform() sourcing.PlatformCode {
	return c.platform
}

// ---------------------------------------------------------------------------
// Preloads, one bulk query each
// ---------------------------------------------------------------------------

// LoadCategories preloads every category of the platform
func (c *LookupCache) LoadCategories(ctx context.Context, repo catalog.CategoryRepository) error {
	items, err := repo.FindAllByPlatform(ctx, c.platform)
	if err != nil {
		return fmt.Errorf("preload categories: %w", err)
	}
	for i := range items {
		c.categories[items[i].ExternalID] = &items[i]
	}
	return nil
}

// LoadManufacturers preloads every manufacturer of the platform
func (c *LookupCache) LoadManufacturers(ctx context.Context, repo catalog.ManufacturerRepository) error {
	items, err := repo.FindAllByPlatform(ctx, c.platform)
	if err != nil {
		return fmt.Errorf("preload manufacturers: %w", err)
	}
	for i := range items {
		c.manufacturers[items[i].ExternalID] = &items[i]
	}
	return nil
}

// LoadParameters preloads one category's parameters and their options
func (c *LookupCache) LoadParameters(ctx context.Context, params catalog.ParameterRepository, options catalog.ParameterOptionRepository, categoryID uuid.UUID) error {
	items, err := params.FindByCategory(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("preload parameters: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(items))
	for i := range items {
		c.parameters[ParameterKey{CategoryID: categoryID, ExternalID: items[i].ExternalID}] = &items[i]
		ids = append(ids, items[i].ID)
	}
	if len(ids) == 0 {
		return nil
	}
	opts, err := options.FindByParameters(ctx, ids)
	if err != nil {
		return fmt.Errorf("preload options: %w", err)
	}
	for i := range opts {
		c.options[OptionKey{ParameterID: opts[i].ParameterID, ExternalID: opts[i].ExternalID}] = &opts[i]
	}
	return nil
}

// LoadProducts preloads every product of the platform
func (c *LookupCache) LoadProducts(ctx context.Context, repo catalog.ProductRepository) error {
	items, err := repo.FindAllByPlatform(ctx, c.platform)
	if err != nil {
		return fmt.Errorf("preload products: %w", err)
	}
	for i := range items {
		c.products[items[i].ExternalID] = &items[i]
	}
	return nil
}

// LoadDocuments preloads every product document of the platform
func (c *LookupCache) LoadDocuments(ctx context.Context, repo catalog.ProductDocumentRepository) error {
	items, err := repo.FindAllByPlatform(ctx, c.platform)
	if err != nil {
		return fmt.Errorf("preload documents: %w", err)
	}
	for i := range items {
		c.documents[items[i].ExternalID] = &items[i]
	}
	return nil
}

// ---------------------------------------------------------------------------
// Lookups and mid-run inserts
// ---------------------------------------------------------------------------

// Category looks up a category by external id
func (c *LookupCache) Category(externalID string) (*catalog.Category, bool) {
	v, ok := c.categories[externalID]
	return v, ok
}

// PutCategory records a newly created category
func (c *LookupCache) PutCategory(cat *catalog.Category) {
	c.categories[cat.ExternalID] = cat
}

// Categories returns every cached category
func (c *LookupCache) Categories() []*catalog.Category {
	out := make([]*catalog.Category, 0, len(c.categories))
	for _, v := range c.categories {
		out = append(out, v)
	}
	return out
}

// Manufacturer looks up a manufacturer by external id
func (c *LookupCache) Manufacturer(externalID string) (*catalog.Manufacturer, bool) {
	v, ok := c.manufacturers[externalID]
	return v, ok
}

// PutManufacturer records a newly created manufacturer
func (c *LookupCache) PutManufacturer(m *catalog.Manufacturer) {
	c.manufacturers[m.ExternalID] = m
}

// Parameter looks up a parameter by owning category and external id
func (c *LookupCache) Parameter(categoryID uuid.UUID, externalID string) (*catalog.Parameter, bool) {
	v, ok := c.parameters[ParameterKey{CategoryID: categoryID, ExternalID: externalID}]
	return v, ok
}

// PutParameter records a newly created parameter
func (c *LookupCache) PutParameter(p *catalog.Parameter) {
	c.parameters[ParameterKey{CategoryID: p.CategoryID, ExternalID: p.ExternalID}] = p
}

// Option looks up an option by owning parameter and external id
func (c *LookupCache) Option(parameterID uuid.UUID, externalID string) (*catalog.ParameterOption, bool) {
	v, ok := c.options[OptionKey{ParameterID: parameterID, ExternalID: externalID}]
	return v, ok
}

// PutOption records a newly created option
func (c *LookupCache) PutOption(o *catalog.ParameterOption) {
	c.options[OptionKey{ParameterID: o.ParameterID, ExternalID: o.ExternalID}] = o
}

// Product looks up a product by external id
func (c *LookupCache) Product(externalID string) (*catalog.Product, bool) {
	v, ok := c.products[externalID]
	return v, ok
}

// PutProduct records a newly created product
func (c *LookupCache) PutProduct(p *catalog.Product) {
	c.products[p.ExternalID] = p
}

// Products returns every cached product
func (c *LookupCache) Products() []*catalog.Product {
	out := make([]*catalog.Product, 0, len(c.products))
	for _, v := range c.products {
		out = append(out, v)
	}
	return out
}

// Document looks up a document by external id
func (c *LookupCache) Document(externalID string) (*catalog.ProductDocument, bool) {
	v, ok := c.documents[externalID]
	return v, ok
}

// PutDocument records a newly created document
func (c *LookupCache) PutDocument(d *catalog.ProductDocument) {
	c.documents[d.ExternalID] = d
}

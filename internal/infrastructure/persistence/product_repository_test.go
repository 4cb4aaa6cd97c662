package persistence

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrina/backend/internal/domain/catalog"
	"github.com/vitrina/backend/internal/domain/shared"
	"github.com/vitrina/backend/internal/domain/sourcing"
)

func TestGormProductRepository_SaveAndFind(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	category := mustCategory(t, sourcing.PlatformCodeSitex, "1", "Laptops", "laptops")
	require.NoError(t, NewGormCategoryRepository(db).Save(ctx, category))

	product, err := catalog.NewProduct(sourcing.PlatformCodeSitex, category.ID, "p1", "ThinkPad", "thinkpad")
	require.NoError(t, err)
	product.FinalPrice = decimal.NewFromInt(999)
	require.NoError(t, repo.Save(ctx, product))

	found, err := repo.FindByExternalID(ctx, sourcing.PlatformCodeSitex, "p1")
	require.NoError(t, err)
	assert.Equal(t, "ThinkPad", found.Name)
	assert.True(t, found.FinalPrice.Equal(decimal.NewFromInt(999)))

	_, err = repo.FindByExternalID(ctx, sourcing.PlatformCodeSitex, "missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormProductRepository_SaveBatchUpserts(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	category := mustCategory(t, sourcing.PlatformCodeSitex, "1", "Laptops", "laptops")
	require.NoError(t, NewGormCategoryRepository(db).Save(ctx, category))

	existing, err := catalog.NewProduct(sourcing.PlatformCodeSitex, category.ID, "p1", "ThinkPad", "thinkpad")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, existing))

	existing.Name = "ThinkPad X1"
	fresh, err := catalog.NewProduct(sourcing.PlatformCodeSitex, category.ID, "p2", "MacBook", "macbook")
	require.NoError(t, err)

	require.NoError(t, repo.SaveBatch(ctx, []*catalog.Product{existing, fresh}))

	all, err := repo.FindAllByPlatform(ctx, sourcing.PlatformCodeSitex)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := repo.FindByExternalID(ctx, sourcing.PlatformCodeSitex, "p1")
	require.NoError(t, err)
	assert.Equal(t, "ThinkPad X1", found.Name)
}

func TestGormProductRepository_ReplaceParameters(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	category := mustCategory(t, sourcing.PlatformCodeSitex, "1", "Laptops", "laptops")
	require.NoError(t, NewGormCategoryRepository(db).Save(ctx, category))

	parameter, err := catalog.NewParameter(sourcing.PlatformCodeSitex, category.ID, "color", "Color")
	require.NoError(t, err)
	require.NoError(t, NewGormParameterRepository(db).Save(ctx, parameter))

	red, err := catalog.NewParameterOption(sourcing.PlatformCodeSitex, parameter.ID, "red", "Red")
	require.NoError(t, err)
	blue, err := catalog.NewParameterOption(sourcing.PlatformCodeSitex, parameter.ID, "blue", "Blue")
	require.NoError(t, err)
	require.NoError(t, NewGormParameterOptionRepository(db).SaveBatch(ctx, []*catalog.ParameterOption{red, blue}))

	product, err := catalog.NewProduct(sourcing.PlatformCodeSitex, category.ID, "p1", "ThinkPad", "thinkpad")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, product))

	first, err := catalog.NewProductParameter(product.ID, parameter, red)
	require.NoError(t, err)
	require.NoError(t, repo.ReplaceParameters(ctx, product.ID, []*catalog.ProductParameter{first}))

	associations, err := repo.FindParameters(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, associations, 1)
	assert.Equal(t, red.ID, associations[0].OptionID)

	second, err := catalog.NewProductParameter(product.ID, parameter, blue)
	require.NoError(t, err)
	require.NoError(t, repo.ReplaceParameters(ctx, product.ID, []*catalog.ProductParameter{second}))

	associations, err = repo.FindParameters(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, associations, 1)
	assert.Equal(t, blue.ID, associations[0].OptionID)

	require.NoError(t, repo.ReplaceParameters(ctx, product.ID, nil))
	associations, err = repo.FindParameters(ctx, product.ID)
	require.NoError(t, err)
	assert.Empty(t, associations)
}

func TestGormProductRepository_IntegrityCounts(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	categoryRepo := NewGormCategoryRepository(db)
	category := mustCategory(t, sourcing.PlatformCodeSitex, "1", "Laptops", "laptops")
	require.NoError(t, categoryRepo.Save(ctx, category))

	ghost := mustCategory(t, sourcing.PlatformCodeSitex, "99", "Ghost", "ghost")

	priced, err := catalog.NewProduct(sourcing.PlatformCodeSitex, category.ID, "p1", "ThinkPad", "thinkpad")
	require.NoError(t, err)
	priced.FinalPrice = decimal.NewFromInt(999)

	unpriced, err := catalog.NewProduct(sourcing.PlatformCodeSitex, category.ID, "p2", "MacBook", "macbook")
	require.NoError(t, err)

	homeless, err := catalog.NewProduct(sourcing.PlatformCodeSitex, ghost.ID, "p3", "Stray", "stray")
	require.NoError(t, err)
	homeless.FinalPrice = decimal.NewFromInt(10)

	require.NoError(t, repo.SaveBatch(ctx, []*catalog.Product{priced, unpriced, homeless}))

	counts, err := repo.IntegrityCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts.ProductsTotal)
	assert.Equal(t, int64(1), counts.ProductsMissingCategory)
	assert.Equal(t, int64(3), counts.ProductsMissingManufacturer)
	assert.Equal(t, int64(1), counts.ProductsMissingPrice)
	assert.Equal(t, int64(0), counts.CategoriesDanglingParent)
	assert.Equal(t, int64(0), counts.ParameterMismatches)
}

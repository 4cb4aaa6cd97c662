package catalog

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrina/backend/internal/domain/sourcing"
)

func TestDeriveFinalPrice(t *testing.T) {
	tests := []struct {
		name   string
		client string
		promo  string
		want   string
	}{
		{"no promo uses client price", "1299.00", "0", "1299.00"},
		{"promo undercuts client price", "1299.00", "999.00", "999.00"},
		{"promo above client price is ignored", "1299.00", "1399.00", "1299.00"},
		{"promo equal to client price is ignored", "1299.00", "1299.00", "1299.00"},
		{"zero client price stays zero", "0", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := decimal.RequireFromString(tt.client)
			promo := decimal.RequireFromString(tt.promo)
			got := DeriveFinalPrice(client, promo)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"got %s, want %s", got, tt.want)
		})
	}
}

func TestProductApplyRecord(t *testing.T) {
	categoryID := uuid.New()
	product, err := NewProduct(sourcing.PlatformCodeSitex, categoryID, "88412", "ThinkPad X1", "thinkpad-x1")
	require.NoError(t, err)

	rec := sourcing.ProductRecord{
		ExternalID:       "88412",
		Reference:        "TP-X1-G11",
		Name:             "ThinkPad X1 Carbon",
		Description:      "14-inch business laptop",
		ClientPrice:      decimal.RequireFromString("2499.00"),
		PartnerPrice:     decimal.RequireFromString("2199.00"),
		PromoClientPrice: decimal.RequireFromString("2299.00"),
		ImageURL:         "https://cdn.example.com/tp-x1.jpg",
		AdditionalImages: []string{"https://cdn.example.com/tp-x1-2.jpg"},
		Active:           true,
		Show:             true,
		Status:           "in_stock",
	}
	require.NoError(t, product.ApplyRecord(rec))

	assert.Equal(t, "ThinkPad X1 Carbon", product.Name)
	assert.Equal(t, "TP-X1-G11", product.Reference)
	assert.True(t, product.FinalPrice.Equal(decimal.RequireFromString("2299.00")))
	assert.True(t, product.HasPrice())
	assert.Equal(t, "in_stock", product.Status)
	assert.Len(t, product.AdditionalImages, 1)
	// Identity and slug survive updates
	assert.Equal(t, "88412", product.ExternalID)
	assert.Equal(t, "thinkpad-x1", product.Slug)
	assert.Equal(t, categoryID, product.CategoryID)
}

func TestProductManufacturerReference(t *testing.T) {
	product, err := NewProduct(sourcing.PlatformCodeWebra, uuid.New(), "55", "Mouse", "mouse")
	require.NoError(t, err)

	assert.Nil(t, product.ManufacturerID)

	manufacturerID := uuid.New()
	product.SetManufacturer(manufacturerID)
	require.NotNil(t, product.ManufacturerID)
	assert.Equal(t, manufacturerID, *product.ManufacturerID)

	product.ClearManufacturer()
	assert.Nil(t, product.ManufacturerID)
}

func TestNewProductParameter(t *testing.T) {
	categoryID := uuid.New()
	parameter, err := NewParameter(sourcing.PlatformCodeSitex, categoryID, "10", "RAM")
	require.NoError(t, err)
	option, err := NewParameterOption(sourcing.PlatformCodeSitex, parameter.ID, "101", "16GB")
	require.NoError(t, err)

	t.Run("creates association when option belongs to parameter", func(t *testing.T) {
		productID := uuid.New()
		pp, err := NewProductParameter(productID, parameter, option)
		require.NoError(t, err)
		assert.Equal(t, productID, pp.ProductID)
		assert.Equal(t, parameter.ID, pp.ParameterID)
		assert.Equal(t, option.ID, pp.OptionID)
	})

	t.Run("rejects option from a different parameter", func(t *testing.T) {
		other, err := NewParameter(sourcing.PlatformCodeSitex, categoryID, "11", "Storage")
		require.NoError(t, err)
		_, err = NewProductParameter(uuid.New(), other, option)
		require.ErrorIs(t, err, ErrOptionParameterMismatch)
	})

	t.Run("rejects nil product", func(t *testing.T) {
		_, err := NewProductParameter(uuid.Nil, parameter, option)
		require.Error(t, err)
	})
}

func TestParameterOptionLongName(t *testing.T) {
	// Some source feeds ship option values well past typical varchar limits
	longName := strings.Repeat("спецификация ", 150) // ~1,950 characters
	parameter, err := NewParameter(sourcing.PlatformCodeWebra, uuid.New(), "3", "Описание")
	require.NoError(t, err)

	option, err := NewParameterOption(sourcing.PlatformCodeWebra, parameter.ID, "31", longName)
	require.NoError(t, err)
	assert.Greater(t, len(option.Name), 1800)
}

package sync

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vitrina/backend/internal/domain/catalog"
	"github.com/vitrina/backend/internal/domain/sourcing"
)

func TestParameterGraphResolve(t *testing.T) {
	categoryID := uuid.New()
	productID := uuid.New()
	platform := sourcing.PlatformCodeSitex

	ram, err := catalog.NewParameter(platform, categoryID, "100", "RAM")
	require.NoError(t, err)
	color, err := catalog.NewParameter(platform, categoryID, "200", "Color")
	require.NoError(t, err)

	ram16, err := catalog.NewParameterOption(platform, ram.ID, "101", "16GB")
	require.NoError(t, err)
	black, err := catalog.NewParameterOption(platform, color.ID, "201", "Black")
	require.NoError(t, err)

	params := new(MockParameterRepository)
	params.On("FindByExternalIDs", mock.Anything, categoryID, platform, mock.Anything).
		Return([]catalog.Parameter{*ram, *color}, nil)
	options := new(MockParameterOptionRepository)
	options.On("FindByExternalIDs", mock.Anything, mock.Anything, platform, mock.Anything).
		Return([]catalog.ParameterOption{*ram16, *black}, nil)

	resolver := NewParameterGraphResolver(params, options, zap.NewNop())

	t.Run("valid pairs resolve to associations", func(t *testing.T) {
		assocs, unmapped, err := resolver.Resolve(context.Background(), platform, productID, categoryID, []sourcing.ParameterValueRef{
			{ParameterExternalID: "100", OptionExternalID: "101"},
			{ParameterExternalID: "200", OptionExternalID: "201"},
		})

		require.NoError(t, err)
		assert.Equal(t, int64(0), unmapped)
		require.Len(t, assocs, 2)
		assert.Equal(t, ram.ID, assocs[0].ParameterID)
		assert.Equal(t, ram16.ID, assocs[0].OptionID)
		assert.Equal(t, productID, assocs[0].ProductID)
	})

	t.Run("unknown parameter counts as unmapped", func(t *testing.T) {
		assocs, unmapped, err := resolver.Resolve(context.Background(), platform, productID, categoryID, []sourcing.ParameterValueRef{
			{ParameterExternalID: "999", OptionExternalID: "101"},
			{ParameterExternalID: "100", OptionExternalID: "101"},
		})

		require.NoError(t, err)
		assert.Equal(t, int64(1), unmapped)
		assert.Len(t, assocs, 1)
	})

	t.Run("option of another parameter counts as unmapped", func(t *testing.T) {
		// option 201 belongs to Color, claimed under RAM
		assocs, unmapped, err := resolver.Resolve(context.Background(), platform, productID, categoryID, []sourcing.ParameterValueRef{
			{ParameterExternalID: "100", OptionExternalID: "201"},
		})

		require.NoError(t, err)
		assert.Equal(t, int64(1), unmapped)
		assert.Empty(t, assocs)
	})

	t.Run("empty ref list is a no-op", func(t *testing.T) {
		assocs, unmapped, err := resolver.Resolve(context.Background(), platform, productID, categoryID, nil)

		require.NoError(t, err)
		assert.Equal(t, int64(0), unmapped)
		assert.Empty(t, assocs)
	})
}

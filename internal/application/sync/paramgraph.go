package sync

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vitrina/backend/internal/domain/catalog"
	"github.com/vitrina/backend/internal/domain/sourcing"
)

// ParameterGraphResolver maps a product's external (parameter, option) pairs
// to internal join entities. Candidates are bulk-loaded in at most two
// queries per product regardless of pair count. Pairs whose parameter or
// option cannot be found, or whose option belongs to a different parameter,
// are counted as unmapped and skipped.
type ParameterGraphResolver struct {
	parameters catalog.ParameterRepository
	options    catalog.ParameterOptionRepository
	logger     *zap.Logger
}

// NewParameterGraphResolver creates a parameter graph resolver
func NewParameterGraphResolver(parameters catalog.ParameterRepository, options catalog.ParameterOptionRepository, logger *zap.Logger) *ParameterGraphResolver {
	return &ParameterGraphResolver{parameters: parameters, options: options, logger: logger}
}

// Resolve builds the product's full parameter-association set. The returned
// set is intended to replace the prior set wholesale; a value removed at the
// source is reflected as a local removal.
func (r *ParameterGraphResolver) Resolve(ctx context.Context, platform sourcing.PlatformCode, productID, categoryID uuid.UUID, refs []sourcing.ParameterValueRef) ([]*catalog.ProductParameter, int64, error) {
	if len(refs) == 0 {
		return nil, 0, nil
	}

	paramIDs := make([]string, 0, len(refs))
	optionIDs := make([]string, 0, len(refs))
	seenParam := make(map[string]struct{}, len(refs))
	seenOption := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		if _, ok := seenParam[ref.ParameterExternalID]; !ok {
			seenParam[ref.ParameterExternalID] = struct{}{}
			paramIDs = append(paramIDs, ref.ParameterExternalID)
		}
		if _, ok := seenOption[ref.OptionExternalID]; !ok {
			seenOption[ref.OptionExternalID] = struct{}{}
			optionIDs = append(optionIDs, ref.OptionExternalID)
		}
	}

	params, err := r.parameters.FindByExternalIDs(ctx, categoryID, platform, paramIDs)
	if err != nil {
		return nil, 0, fmt.Errorf("load candidate parameters: %w", err)
	}
	paramsByExternal := make(map[string]*catalog.Parameter, len(params))
	internalParamIDs := make([]uuid.UUID, 0, len(params))
	for i := range params {
		paramsByExternal[params[i].ExternalID] = &params[i]
		internalParamIDs = append(internalParamIDs, params[i].ID)
	}

	optionsByKey := make(map[OptionKey]*catalog.ParameterOption)
	if len(internalParamIDs) > 0 {
		opts, err := r.options.FindByExternalIDs(ctx, internalParamIDs, platform, optionIDs)
		if err != nil {
			return nil, 0, fmt.Errorf("load candidate options: %w", err)
		}
		for i := range opts {
			optionsByKey[OptionKey{ParameterID: opts[i].ParameterID, ExternalID: opts[i].ExternalID}] = &opts[i]
		}
	}

	var unmapped int64
	associations := make([]*catalog.ProductParameter, 0, len(refs))
	for _, ref := range refs {
		param, ok := paramsByExternal[ref.ParameterExternalID]
		if !ok {
			r.logger.Warn("parameter not found for product value",
				zap.String("parameter_external_id", ref.ParameterExternalID))
			unmapped++
			continue
		}
		option, ok := optionsByKey[OptionKey{ParameterID: param.ID, ExternalID: ref.OptionExternalID}]
		if !ok {
			r.logger.Warn("option not found or mismatched for product value",
				zap.String("parameter_external_id", ref.ParameterExternalID),
				zap.String("option_external_id", ref.OptionExternalID))
			unmapped++
			continue
		}
		assoc, err := catalog.NewProductParameter(productID, param, option)
		if err != nil {
			r.logger.Warn("product parameter association rejected",
				zap.String("parameter_external_id", ref.ParameterExternalID),
				zap.String("option_external_id", ref.OptionExternalID),
				zap.Error(err))
			unmapped++
			continue
		}
		associations = append(associations, assoc)
	}
	return associations, unmapped, nil
}

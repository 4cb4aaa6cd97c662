package sync

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vitrina/backend/internal/domain/catalog"
	"github.com/vitrina/backend/internal/domain/sourcing"
)

// HierarchyResolver assigns category parent references in a second pass,
// after every node of the snapshot has been persisted. The flat vendor
// lists carry forward references (a child can precede its parent), which a
// single creation pass cannot resolve.
type HierarchyResolver struct {
	categories catalog.CategoryRepository
	logger     *zap.Logger
}

// NewHierarchyResolver creates a hierarchy resolver
func NewHierarchyResolver(categories catalog.CategoryRepository, logger *zap.Logger) *HierarchyResolver {
	return &HierarchyResolver{categories: categories, logger: logger}
}

// Link resolves parent references for the snapshot's records against the
// run cache and persists the changed nodes in one batch. Missing parents,
// self-parenting and links that would close a cycle are skipped with a
// warning; they never fail the run. Returns the number of links assigned.
func (r *HierarchyResolver) Link(ctx context.Context, cache *LookupCache, records []sourcing.CategoryRecord) (int64, error) {
	byID := make(map[uuid.UUID]*catalog.Category)
	for _, c := range cache.Categories() {
		byID[c.ID] = c
	}

	var changed []*catalog.Category
	var linked int64
	for _, rec := range records {
		if rec.IsRoot() {
			continue
		}
		child, ok := cache.Category(rec.ExternalID)
		if !ok {
			r.logger.Warn("category vanished before parent linking",
				zap.String("external_id", rec.ExternalID))
			continue
		}
		parent, ok := cache.Category(rec.ParentExternalID)
		if !ok {
			r.logger.Warn("parent category not found, leaving node at root",
				zap.String("external_id", rec.ExternalID),
				zap.String("parent_external_id", rec.ParentExternalID))
			continue
		}
		if parent.ID == child.ID {
			r.logger.Warn("category references itself as parent, skipped",
				zap.String("external_id", rec.ExternalID))
			continue
		}
		if wouldCycle(child, parent, byID) {
			r.logger.Warn("parent link would close a cycle, skipped",
				zap.String("external_id", rec.ExternalID),
				zap.String("parent_external_id", rec.ParentExternalID))
			continue
		}
		if child.ParentID != nil && *child.ParentID == parent.ID {
			continue
		}
		if err := child.SetParent(parent.ID); err != nil {
			r.logger.Warn("parent assignment rejected",
				zap.String("external_id", rec.ExternalID), zap.Error(err))
			continue
		}
		changed = append(changed, child)
		linked++
	}

	if len(changed) == 0 {
		return 0, nil
	}
	if err := r.categories.SaveBatch(ctx, changed); err != nil {
		return 0, fmt.Errorf("persist category parent links: %w", err)
	}
	return linked, nil
}

// wouldCycle walks the in-memory ancestor chain of the proposed parent and
// reports whether it reaches the child. The walk is bounded by the map size
// so a pre-existing bad chain cannot hang the run.
func wouldCycle(child, parent *catalog.Category, byID map[uuid.UUID]*catalog.Category) bool {
	cur := parent
	for steps := 0; steps <= len(byID); steps++ {
		if cur.ID == child.ID {
			return true
		}
		if cur.ParentID == nil {
			return false
		}
		next, ok := byID[*cur.ParentID]
		if !ok {
			return false
		}
		cur = next
	}
	return true
}

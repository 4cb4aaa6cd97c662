package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appsync "github.com/vitrina/backend/internal/application/sync"
	"github.com/vitrina/backend/internal/domain/sourcing"
	"github.com/vitrina/backend/internal/interfaces/http/dto"
)

// CatalogSyncer triggers reconciliation runs against a vendor platform
type CatalogSyncer interface {
	SyncCategories(ctx context.Context, platform sourcing.PlatformCode) (*appsync.RunSummary, error)
	SyncManufacturers(ctx context.Context, platform sourcing.PlatformCode) (*appsync.RunSummary, error)
	SyncParameters(ctx context.Context, platform sourcing.PlatformCode) (*appsync.RunSummary, error)
	SyncProducts(ctx context.Context, platform sourcing.PlatformCode) (*appsync.RunSummary, error)
	SyncDocuments(ctx context.Context, platform sourcing.PlatformCode) (*appsync.RunSummary, error)
	SyncFull(ctx context.Context, platform sourcing.PlatformCode) (*appsync.RunSummary, error)
	ResyncCategory(ctx context.Context, platform sourcing.PlatformCode, categoryExternalID string) (*appsync.RunSummary, error)
	ResyncProduct(ctx context.Context, platform sourcing.PlatformCode, productExternalID string) (*appsync.RunSummary, error)
}

// SyncHandler exposes the manual reconciliation trigger endpoints
type SyncHandler struct {
	BaseHandler
	service CatalogSyncer
	logger  *zap.Logger
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(service CatalogSyncer, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{
		service: service,
		logger:  logger,
	}
}

type triggerFunc func(ctx context.Context, platform sourcing.PlatformCode) (*appsync.RunSummary, error)

// platformFromPath reads and validates the :platform path parameter
func (h *SyncHandler) platformFromPath(c *gin.Context) (sourcing.PlatformCode, bool) {
	platform := sourcing.PlatformCode(c.Param("platform"))
	if !platform.IsValid() {
		h.Error(c, 400, dto.ErrCodeInvalidInput, "unknown platform: "+c.Param("platform"))
		return "", false
	}
	return platform, true
}

// trigger runs one stage and renders the run summary
func (h *SyncHandler) trigger(c *gin.Context, fn triggerFunc) {
	platform, ok := h.platformFromPath(c)
	if !ok {
		return
	}

	summary, err := fn(c.Request.Context(), platform)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.logger.Info("manual sync completed",
		zap.String("platform", string(platform)),
		zap.String("type", string(summary.Type)),
		zap.Int64("run_id", summary.RunID),
		zap.String("status", string(summary.Status)))

	h.Success(c, dto.NewTriggerResponse(summary))
}

// TriggerFull runs the whole pipeline for one platform
func (h *SyncHandler) TriggerFull(c *gin.Context) {
	h.trigger(c, h.service.SyncFull)
}

// TriggerCategories runs the category stage for one platform
func (h *SyncHandler) TriggerCategories(c *gin.Context) {
	h.trigger(c, h.service.SyncCategories)
}

// TriggerManufacturers runs the manufacturer stage for one platform
func (h *SyncHandler) TriggerManufacturers(c *gin.Context) {
	h.trigger(c, h.service.SyncManufacturers)
}

// TriggerParameters runs the parameter stage for one platform
func (h *SyncHandler) TriggerParameters(c *gin.Context) {
	h.trigger(c, h.service.SyncParameters)
}

// TriggerProducts runs the product stage for one platform
func (h *SyncHandler) TriggerProducts(c *gin.Context) {
	h.trigger(c, h.service.SyncProducts)
}

// TriggerDocuments runs the document stage for one platform
func (h *SyncHandler) TriggerDocuments(c *gin.Context) {
	h.trigger(c, h.service.SyncDocuments)
}

// ResyncCategory reconciles a single category subtree by external id
func (h *SyncHandler) ResyncCategory(c *gin.Context) {
	externalID := c.Param("externalID")
	h.trigger(c, func(ctx context.Context, platform sourcing.PlatformCode) (*appsync.RunSummary, error) {
		return h.service.ResyncCategory(ctx, platform, externalID)
	})
}

// ResyncProduct reconciles a single product by external id
func (h *SyncHandler) ResyncProduct(c *gin.Context) {
	externalID := c.Param("externalID")
	h.trigger(c, func(ctx context.Context, platform sourcing.PlatformCode) (*appsync.RunSummary, error) {
		return h.service.ResyncProduct(ctx, platform, externalID)
	})
}

// RegisterRoutes registers the sync trigger routes
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/sync")
	{
		sync.POST("/:platform/full", h.TriggerFull)
		sync.POST("/:platform/categories", h.TriggerCategories)
		sync.POST("/:platform/manufacturers", h.TriggerManufacturers)
		sync.POST("/:platform/parameters", h.TriggerParameters)
		sync.POST("/:platform/products", h.TriggerProducts)
		sync.POST("/:platform/documents", h.TriggerDocuments)
		sync.POST("/:platform/categories/:externalID", h.ResyncCategory)
		sync.POST("/:platform/products/:externalID", h.ResyncProduct)
	}
}

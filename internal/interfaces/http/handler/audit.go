package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/vitrina/backend/internal/domain/catalog"
	"github.com/vitrina/backend/internal/domain/shared"
	"github.com/vitrina/backend/internal/domain/sourcing"
	domainsync "github.com/vitrina/backend/internal/domain/sync"
	"github.com/vitrina/backend/internal/interfaces/http/dto"
)

// AuditReader serves the run history and integrity report
type AuditReader interface {
	ListRuns(ctx context.Context, syncType domainsync.SyncType, platform sourcing.PlatformCode, filter shared.Filter) (*shared.Paginated[domainsync.SyncLog], error)
	LastRun(ctx context.Context, syncType domainsync.SyncType, platform sourcing.PlatformCode) (*domainsync.SyncLog, error)
	Integrity(ctx context.Context) (catalog.IntegrityCounts, error)
}

// AuditHandler exposes the run audit and integrity endpoints
type AuditHandler struct {
	BaseHandler
	service AuditReader
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(service AuditReader) *AuditHandler {
	return &AuditHandler{service: service}
}

// ListRuns returns recent reconciliation runs, newest first
func (h *AuditHandler) ListRuns(c *gin.Context) {
	req := dto.RunListRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeValidation, err.Error())
		return
	}
	req.Normalize()

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
	}

	page, err := h.service.ListRuns(c.Request.Context(),
		domainsync.SyncType(req.Type), sourcing.PlatformCode(req.Platform), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, dto.NewSyncRunResponses(page.Items), page.Total, page.Page, page.PageSize)
}

// LastRun returns the most recent run of a given type and platform
func (h *AuditHandler) LastRun(c *gin.Context) {
	var req dto.LastRunRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeValidation, err.Error())
		return
	}

	run, err := h.service.LastRun(c.Request.Context(),
		domainsync.SyncType(req.Type), sourcing.PlatformCode(req.Platform))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.NotFound(c, "no runs recorded for this type")
			return
		}
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewSyncRunResponse(run))
}

// Integrity returns aggregate cross-entity consistency counters
func (h *AuditHandler) Integrity(c *gin.Context) {
	counts, err := h.service.Integrity(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, counts)
}

// RegisterRoutes registers the audit routes
func (h *AuditHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/sync/runs", h.ListRuns)
	rg.GET("/sync/runs/last", h.LastRun)
	rg.GET("/catalog/integrity", h.Integrity)
}

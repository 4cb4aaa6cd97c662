package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vitrina/backend/internal/domain/catalog"
	"github.com/vitrina/backend/internal/domain/shared"
	"github.com/vitrina/backend/internal/domain/sourcing"
	domainsync "github.com/vitrina/backend/internal/domain/sync"
	"github.com/vitrina/backend/internal/interfaces/http/dto"
)

type MockAuditReader struct {
	mock.Mock
}

func (m *MockAuditReader) ListRuns(ctx context.Context, syncType domainsync.SyncType, platform sourcing.PlatformCode, filter shared.Filter) (*shared.Paginated[domainsync.SyncLog], error) {
	args := m.Called(ctx, syncType, platform, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[domainsync.SyncLog]), args.Error(1)
}

func (m *MockAuditReader) LastRun(ctx context.Context, syncType domainsync.SyncType, platform sourcing.PlatformCode) (*domainsync.SyncLog, error) {
	args := m.Called(ctx, syncType, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainsync.SyncLog), args.Error(1)
}

func (m *MockAuditReader) Integrity(ctx context.Context) (catalog.IntegrityCounts, error) {
	args := m.Called(ctx)
	return args.Get(0).(catalog.IntegrityCounts), args.Error(1)
}

func newAuditTestServer(t *testing.T, service AuditReader) *gin.Engine {
	t.Helper()
	engine := gin.New()
	NewAuditHandler(service).RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func auditRun(id int64, status domainsync.SyncStatus) domainsync.SyncLog {
	started := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	return domainsync.SyncLog{
		ID:        id,
		Type:      domainsync.SyncTypeProducts,
		Platform:  sourcing.PlatformCodeSitex,
		Status:    status,
		Processed: 10,
		StartedAt: started,
	}
}

func TestListRunsReturnsPageWithMeta(t *testing.T) {
	service := new(MockAuditReader)
	paged := shared.NewPaginated([]domainsync.SyncLog{auditRun(2, domainsync.SyncStatusSuccess), auditRun(1, domainsync.SyncStatusFailed)}, 12, 1, 2)
	page := &paged
	service.On("ListRuns", mock.Anything, domainsync.SyncTypeProducts, sourcing.PlatformCodeSitex,
		mock.MatchedBy(func(f shared.Filter) bool { return f.Page == 1 && f.PageSize == 2 })).
		Return(page, nil)

	engine := newAuditTestServer(t, service)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/sync/runs?type=PRODUCTS&platform=SITEX&page=1&page_size=2", nil))

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(12), resp.Meta.Total)
	assert.Equal(t, 6, resp.Meta.TotalPages)

	items := resp.Data.([]any)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	assert.Equal(t, float64(2), first["id"])
	service.AssertExpectations(t)
}

func TestListRunsRejectsUnknownType(t *testing.T) {
	service := new(MockAuditReader)
	engine := newAuditTestServer(t, service)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/sync/runs?type=INVOICES", nil))

	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	service.AssertNotCalled(t, "ListRuns")
}

func TestLastRunRequiresType(t *testing.T) {
	service := new(MockAuditReader)
	engine := newAuditTestServer(t, service)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/sync/runs/last", nil))

	require.Equal(t, http.StatusBadRequest, w.Code)
	service.AssertNotCalled(t, "LastRun")
}

func TestLastRunRequiresPlatform(t *testing.T) {
	service := new(MockAuditReader)
	engine := newAuditTestServer(t, service)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/sync/runs/last?type=PRODUCTS", nil))

	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Contains(t, resp.Error.Message, "Platform")
	service.AssertNotCalled(t, "LastRun")
}

func TestLastRunReturnsMostRecent(t *testing.T) {
	service := new(MockAuditReader)
	run := auditRun(9, domainsync.SyncStatusSuccess)
	service.On("LastRun", mock.Anything, domainsync.SyncTypeProducts, sourcing.PlatformCodeSitex).
		Return(&run, nil)

	engine := newAuditTestServer(t, service)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/sync/runs/last?type=PRODUCTS&platform=SITEX", nil))

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(9), data["id"])
	assert.Equal(t, "SUCCESS", data["status"])
}

func TestLastRunNotFound(t *testing.T) {
	service := new(MockAuditReader)
	service.On("LastRun", mock.Anything, domainsync.SyncTypeDocuments, sourcing.PlatformCodeWebra).
		Return(nil, shared.ErrNotFound)

	engine := newAuditTestServer(t, service)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/sync/runs/last?type=DOCUMENTS&platform=WEBRA", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestIntegrityReportsCounts(t *testing.T) {
	service := new(MockAuditReader)
	service.On("Integrity", mock.Anything).Return(catalog.IntegrityCounts{
		ProductsTotal:            120,
		ProductsMissingPrice:     3,
		CategoriesDanglingParent: 1,
	}, nil)

	engine := newAuditTestServer(t, service)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/catalog/integrity", nil))

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(120), data["products_total"])
	assert.Equal(t, float64(3), data["products_missing_price"])
	assert.Equal(t, float64(1), data["categories_dangling_parent"])
}

package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vitrina/backend/internal/infrastructure/config"
)

func unitekConfig(baseURL string) config.SourceConfig {
	return config.SourceConfig{
		Enabled:    true,
		BaseURL:    baseURL,
		Token:      "api-key",
		Timeout:    2 * time.Second,
		MaxRetries: 1,
		RetryDelay: time.Millisecond,
		PageSize:   2,
	}
}

func TestUnitekFetchCategoriesWalksPages(t *testing.T) {
	var pagesSeen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "api-key", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "/v2/categories", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("per_page"))

		page := r.URL.Query().Get("page")
		pagesSeen = append(pagesSeen, page)
		switch page {
		case "1":
			fmt.Fprint(w, `{"items": [
				{"key": "cat-a", "title": "Laptops", "position": 1},
				{"key": "cat-b", "parent_key": "cat-a", "title": "Gaming", "position": 2, "hidden": true}
			], "page": 1, "total_pages": 2}`)
		case "2":
			fmt.Fprint(w, `{"items": [
				{"key": "cat-c", "title": "Monitors", "position": 3}
			], "page": 2, "total_pages": 2}`)
		default:
			t.Errorf("unexpected page %q", page)
		}
	}))
	defer server.Close()

	adapter := NewUnitekAdapter(unitekConfig(server.URL), zap.NewNop())
	records := adapter.FetchCategories(context.Background())

	assert.Equal(t, []string{"1", "2"}, pagesSeen)
	require.Len(t, records, 3)
	assert.Equal(t, "cat-a", records[0].ExternalID)
	assert.True(t, records[0].IsRoot())
	assert.False(t, records[1].Visible)
	assert.Equal(t, "cat-a", records[1].ParentExternalID)
	assert.Equal(t, "cat-c", records[2].ExternalID)
}

func TestUnitekPageWalkCapped(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprintf(w, `{"items": [{"key": "cat-%d", "title": "Cat", "position": 1}], "page": %d, "total_pages": 1000000}`, calls, calls)
	}))
	defer server.Close()

	cfg := unitekConfig(server.URL)
	cfg.MaxPages = 3
	adapter := NewUnitekAdapter(cfg, zap.NewNop())
	records := adapter.FetchCategories(context.Background())

	assert.Equal(t, 3, calls)
	assert.Len(t, records, 3)
}

func TestUnitekFetchProducts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/categories/cat-a/products", r.URL.Path)
		fmt.Fprint(w, `{"items": [{
			"key": "prod-1", "category_key": "cat-a", "manufacturer_key": "man-1",
			"sku": "TP-100", "title": "ThinkPad", "price": 1299.90, "trade_price": 1100,
			"attributes": {"param-color": "opt-red"},
			"main_image": "https://cdn.example/tp.jpg",
			"available": true, "state": "in_stock"
		}], "page": 1, "total_pages": 1}`)
	}))
	defer server.Close()

	adapter := NewUnitekAdapter(unitekConfig(server.URL), zap.NewNop())
	records := adapter.FetchProducts(context.Background(), "cat-a")

	require.Len(t, records, 1)
	p := records[0]
	assert.Equal(t, "prod-1", p.ExternalID)
	assert.Equal(t, "man-1", p.ManufacturerExternalID)
	assert.Equal(t, "TP-100", p.Reference)
	require.Len(t, p.Parameters, 1)
	assert.Equal(t, "param-color", p.Parameters[0].ParameterExternalID)
	assert.Equal(t, "opt-red", p.Parameters[0].OptionExternalID)
	assert.True(t, p.Active)
}

func TestUnitekMidWalkFailureDegradesToEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, `{"items": [{"key": "cat-a", "title": "Laptops"}], "page": 1, "total_pages": 3}`)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	adapter := NewUnitekAdapter(unitekConfig(server.URL), zap.NewNop())
	records := adapter.FetchCategories(context.Background())
	assert.Nil(t, records, "partial page walks must not surface partial data")
}

func TestUnitekMalformedEnvelopeDegradesToEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json`)
	}))
	defer server.Close()

	adapter := NewUnitekAdapter(unitekConfig(server.URL), zap.NewNop())
	assert.Nil(t, adapter.FetchManufacturers(context.Background()))
}

func TestUnitekDocumentsUnsupported(t *testing.T) {
	adapter := NewUnitekAdapter(unitekConfig("http://unused.example"), zap.NewNop())
	assert.Nil(t, adapter.FetchDocuments(context.Background(), "prod-1"))
}

package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeSyncInProgress, http.StatusConflict},
		{ErrCodeSourceNotConfigured, http.StatusUnprocessableEntity},
		{ErrCodeServiceUnavailable, http.StatusServiceUnavailable},
		{ErrCodeInternal, http.StatusInternalServerError},
		{"ERR_NEVER_HEARD_OF", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.status, GetHTTPStatus(tt.code))
		})
	}
}

func TestMapDomainErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeSyncInProgress, MapDomainErrorCode("SYNC_IN_PROGRESS"))
	assert.Equal(t, ErrCodeNotFound, MapDomainErrorCode("NOT_FOUND"))
	assert.Equal(t, ErrCodeInternal, MapDomainErrorCode("SOMETHING_ELSE"))
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"a"}, 41, 2, 20)

	assert.True(t, resp.Success)
	assert.Equal(t, int64(41), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestListRequestNormalize(t *testing.T) {
	var req ListRequest
	req.Normalize()

	assert.Equal(t, 1, req.Page)
	assert.Equal(t, 20, req.PageSize)
	assert.Equal(t, "started_at", req.OrderBy)
	assert.Equal(t, "desc", req.OrderDir)

	req = ListRequest{Page: 3, PageSize: 5, OrderBy: "id", OrderDir: "asc"}
	req.Normalize()
	assert.Equal(t, ListRequest{Page: 3, PageSize: 5, OrderBy: "id", OrderDir: "asc"}, req)
}

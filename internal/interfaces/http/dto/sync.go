package dto

import (
	"time"

	appsync "github.com/vitrina/backend/internal/application/sync"
	domainsync "github.com/vitrina/backend/internal/domain/sync"
)

// TriggerResponse reports the outcome of a manually triggered run
type TriggerResponse struct {
	RunID      int64  `json:"run_id"`
	Type       string `json:"type"`
	Platform   string `json:"platform"`
	Status     string `json:"status"`
	Processed  int64  `json:"processed"`
	Created    int64  `json:"created"`
	Updated    int64  `json:"updated"`
	Errors     int64  `json:"errors"`
	DurationMs int64  `json:"duration_ms"`
}

// NewTriggerResponse converts a run summary into its transport shape
func NewTriggerResponse(summary *appsync.RunSummary) TriggerResponse {
	return TriggerResponse{
		RunID:      summary.RunID,
		Type:       string(summary.Type),
		Platform:   string(summary.Platform),
		Status:     string(summary.Status),
		Processed:  summary.Outcome.Processed,
		Created:    summary.Outcome.Created,
		Updated:    summary.Outcome.Updated,
		Errors:     summary.Outcome.Errors,
		DurationMs: summary.Duration.Milliseconds(),
	}
}

// SyncRunResponse is the transport shape of one audit record
type SyncRunResponse struct {
	ID           int64      `json:"id"`
	Type         string     `json:"type"`
	Platform     string     `json:"platform"`
	Status       string     `json:"status"`
	Processed    int64      `json:"processed"`
	Created      int64      `json:"created"`
	Updated      int64      `json:"updated"`
	Errors       int64      `json:"errors"`
	ErrorMessage string     `json:"error_message,omitempty"`
	DurationMs   int64      `json:"duration_ms"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// NewSyncRunResponse converts an audit record into its transport shape
func NewSyncRunResponse(run *domainsync.SyncLog) SyncRunResponse {
	return SyncRunResponse{
		ID:           run.ID,
		Type:         string(run.Type),
		Platform:     string(run.Platform),
		Status:       string(run.Status),
		Processed:    run.Processed,
		Created:      run.Created,
		Updated:      run.Updated,
		Errors:       run.Errors,
		ErrorMessage: run.ErrorMessage,
		DurationMs:   run.DurationMs,
		StartedAt:    run.StartedAt,
		FinishedAt:   run.FinishedAt,
	}
}

// NewSyncRunResponses converts a page of audit records
func NewSyncRunResponses(runs []domainsync.SyncLog) []SyncRunResponse {
	out := make([]SyncRunResponse, 0, len(runs))
	for i := range runs {
		out = append(out, NewSyncRunResponse(&runs[i]))
	}
	return out
}

// RunListRequest represents filters for the run audit listing
type RunListRequest struct {
	ListRequest
	Type     string `form:"type" binding:"omitempty,oneof=CATEGORIES MANUFACTURERS PARAMETERS PRODUCTS DOCUMENTS FULL"`
	Platform string `form:"platform" binding:"omitempty,oneof=SITEX WEBRA UNITEK"`
}

// LastRunRequest represents the last-run query parameters. Both fields are
// required: the lookup is scoped to one (type, platform) pair, so a missing
// platform fails binding with field-level detail instead of surfacing later
// as a generic validation error.
type LastRunRequest struct {
	Type     string `form:"type" binding:"required,oneof=CATEGORIES MANUFACTURERS PARAMETERS PRODUCTS DOCUMENTS FULL"`
	Platform string `form:"platform" binding:"required,oneof=SITEX WEBRA UNITEK"`
}

// Package source contains the vendor platform adapters. Each adapter fetches
// raw catalog data over HTTP, deserializes it into the platform-neutral
// record shapes, and applies timeout and retry policy. Transport failures
// degrade to empty results with the error logged; the reconciliation engine
// never sees raw HTTP errors.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/vitrina/backend/internal/domain/sourcing"
	"github.com/vitrina/backend/internal/infrastructure/config"
)

// maxResponseSize limits the response body size to prevent memory exhaustion
const maxResponseSize = 32 * 1024 * 1024 // 32MB max response

// httpClient wraps http.Client with the retry/backoff policy shared by all
// vendor adapters.
type httpClient struct {
	client     *http.Client
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
}

func newHTTPClient(cfg config.SourceConfig, logger *zap.Logger) *httpClient {
	return &httpClient{
		client:     &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     logger,
	}
}

// get performs a GET with retries on transient failures. Network errors and
// 429/503 responses are retried with exponential backoff; any other non-2xx
// status fails immediately.
func (c *httpClient) get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay << (attempt - 1)
			c.logger.Debug("retrying source request",
				zap.String("url", url),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		body, err := c.do(ctx, url, header)
		if err == nil {
			return body, nil
		}
		lastErr = err

		var re *retryableError
		if !errors.As(err, &re) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("retries exhausted after %d attempts: %w", c.maxRetries+1, lastErr)
}

func (c *httpClient) do(ctx context.Context, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Accept", "application/json, application/xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &retryableError{err: fmt.Errorf("%w: %w", sourcing.ErrSourceRequestFailed, err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &retryableError{err: fmt.Errorf("%w: read response: %w", sourcing.ErrSourceRequestFailed, err)}
	}

	if err := classifyStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	return body, nil
}

// classifyStatus maps a non-2xx status onto the typed source errors so
// adapters can errors.Is on the failure class. Transient statuses come back
// wrapped as retryable.
func classifyStatus(statusCode int) error {
	switch {
	case statusCode < 400:
		return nil
	case statusCode == http.StatusTooManyRequests:
		return &retryableError{err: fmt.Errorf("%w: HTTP %d", sourcing.ErrSourceRateLimited, statusCode)}
	case statusCode == http.StatusServiceUnavailable:
		return &retryableError{err: fmt.Errorf("%w: HTTP %d", sourcing.ErrSourceUnavailable, statusCode)}
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return fmt.Errorf("%w: HTTP %d", sourcing.ErrSourceAuthFailed, statusCode)
	case statusCode >= 500:
		return fmt.Errorf("%w: HTTP %d", sourcing.ErrSourceUnavailable, statusCode)
	default:
		return fmt.Errorf("%w: HTTP %d", sourcing.ErrSourceRequestFailed, statusCode)
	}
}

// retryableError marks an error as transient.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

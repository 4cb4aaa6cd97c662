// Package middleware provides HTTP middleware for the catalog backend.
package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// MaxRequestIDLength caps request IDs taken from headers
const MaxRequestIDLength = 128

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// DefaultTracingConfig returns default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "vitrina-backend",
		Enabled:     true,
	}
}

// Tracing returns OpenTelemetry tracing middleware with default configuration.
func Tracing() gin.HandlersChain {
	return TracingWithConfig(DefaultTracingConfig())
}

// TracingWithConfig returns the otelgin middleware followed by a span
// enrichment middleware. Enrichment must run inside otelgin's handler
// chain: otelgin ends the request span when its own c.Next() returns, so
// attributes set after it finishes would land on a dead span. The span name
// follows otelgin's "METHOD route_pattern" format.
func TracingWithConfig(cfg TracingConfig) gin.HandlersChain {
	if !cfg.Enabled {
		return gin.HandlersChain{func(c *gin.Context) {
			c.Next()
		}}
	}

	return gin.HandlersChain{
		otelgin.Middleware(cfg.ServiceName),
		enrichRequestSpan,
	}
}

// enrichRequestSpan attaches the request ID to the live request span opened
// by the preceding otelgin middleware.
func enrichRequestSpan(c *gin.Context) {
	span := trace.SpanFromContext(c.Request.Context())
	if span.IsRecording() {
		if requestID := requestIDFromContext(c); requestID != "" {
			span.SetAttributes(attribute.String("request_id", requestID))
		}
	}
	c.Next()
}

// requestIDFromContext reads the request ID set by the RequestID middleware,
// falling back to the header with a length cap
func requestIDFromContext(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	headerID := c.GetHeader("X-Request-ID")
	if len(headerID) > MaxRequestIDLength {
		return headerID[:MaxRequestIDLength]
	}
	return headerID
}

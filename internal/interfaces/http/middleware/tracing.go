// Package middleware provides HTTP middleware for the storefront.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	// ServiceName is the name of the service for trace identification.
	ServiceName string
	// Enabled controls whether tracing is active.
	Enabled bool
}

// DefaultTracingConfig returns default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "artcase-storefront",
		Enabled:     true,
	}
}

// Tracing returns OpenTelemetry tracing middleware with default configuration.
func Tracing() gin.HandlerFunc {
	return TracingWithConfig(DefaultTracingConfig())
}

// TracingWithConfig returns the otelgin server middleware.
// The span name follows the format "HTTP METHOD route_pattern" (e.g. "GET /products/:id").
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// enrichSpanWithAttributes adds custom attributes to the span from the gin context.
func enrichSpanWithAttributes(c *gin.Context, span trace.Span) {
	if requestID := c.GetString("request_id"); requestID != "" {
		span.SetAttributes(attribute.String("request_id", requestID))
	}
	if profileID := c.GetString(ProfileIDKey); profileID != "" {
		span.SetAttributes(attribute.String("profile_id", profileID))
	}
}

// SpanErrorMarker enriches the server span once the handlers have run and
// marks it with error status for 4xx/5xx responses. It must run inside Tracing,
// since otelgin ends the span when its own chain returns.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		enrichSpanWithAttributes(c, span)

		statusCode := c.Writer.Status()
		if statusCode < http.StatusBadRequest {
			return
		}
		errorMessage := "Client Error"
		switch {
		case statusCode >= http.StatusInternalServerError:
			errorMessage = "Internal Server Error"
		case statusCode == http.StatusUnauthorized:
			errorMessage = "Unauthorized"
		case statusCode == http.StatusForbidden:
			errorMessage = "Forbidden"
		case statusCode == http.StatusNotFound:
			errorMessage = "Not Found"
		}
		span.SetStatus(codes.Error, errorMessage)
		span.SetAttributes(attribute.Int("http.status_code", statusCode))
	}
}

package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/procura/backend/internal/infrastructure/logger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// TracingWithConfig returns otelgin tracing middleware, or a pass-through when disabled
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// SpanErrorMarker marks spans with error status for 4xx and 5xx responses.
// Mount it after TracingWithConfig.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if id := c.GetString(logger.GinRequestIDKey); id != "" {
				span.SetAttributes(attribute.String("request_id", id))
			}
		}

		c.Next()

		if !span.IsRecording() {
			return
		}
		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			return
		}
		span.SetStatus(codes.Error, http.StatusText(status))
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
}

// TracingPrincipalInjector adds the caller's id and role to the current span.
// Mount it after the JWT middleware.
func TracingPrincipalInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if p := GetPrincipal(c); p != nil && span.IsRecording() {
			span.SetAttributes(
				attribute.String("user_id", p.ID.String()),
				attribute.String("user_role", p.Role.String()),
			)
		}
		c.Next()
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/procura/backend/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
		otel.SetTracerProvider(prev)
	})
	return sr
}

func findSpan(t *testing.T, sr *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, s := range sr.Ended() {
		if s.Name() == name {
			return s
		}
	}
	require.Failf(t, "span not found", "no span named %q", name)
	return nil
}

func spanAttr(s sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range s.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracingWithConfig_Disabled(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: false}))
	router.GET("/x", okHandler)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, sr.Ended())
}

func TestSpanErrorMarker(t *testing.T) {
	tests := []struct {
		status   int
		isErr    bool
		wantDesc string
	}{
		{http.StatusOK, false, ""},
		{http.StatusNotFound, true, "Not Found"},
		{http.StatusUnprocessableEntity, true, "Unprocessable Entity"},
		// otelgin resets the status of server errors after the chain returns
		{http.StatusInternalServerError, true, ""},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			sr := setupTestTracer(t)

			router := gin.New()
			router.Use(RequestID())
			router.Use(TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "procura-test"}))
			router.Use(SpanErrorMarker())
			router.GET("/api/v1/requests/:id", func(c *gin.Context) { c.Status(tt.status) })

			req := httptest.NewRequest(http.MethodGet, "/api/v1/requests/42", nil)
			req.Header.Set(RequestIDHeader, "req-7")
			router.ServeHTTP(httptest.NewRecorder(), req)

			span := findSpan(t, sr, "GET /api/v1/requests/:id")
			v, ok := spanAttr(span, "request_id")
			require.True(t, ok)
			assert.Equal(t, "req-7", v.AsString())
			if tt.isErr {
				assert.Equal(t, codes.Error, span.Status().Code)
				if tt.wantDesc != "" {
					assert.Equal(t, tt.wantDesc, span.Status().Description)
				}
			} else {
				assert.NotEqual(t, codes.Error, span.Status().Code)
			}
		})
	}
}

func TestTracingPrincipalInjector(t *testing.T) {
	sr := setupTestTracer(t)
	svc := newTestJWTService()
	p := newTestPrincipal(identity.RoleApprover)
	_, token := newAccessToken(t, svc, p)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "procura-test"}))
	router.Use(JWTAuthMiddleware(svc))
	router.Use(TracingPrincipalInjector())
	router.GET("/api/v1/requests", okHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/requests", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	router.ServeHTTP(httptest.NewRecorder(), req)

	span := findSpan(t, sr, "GET /api/v1/requests")
	id, ok := spanAttr(span, "user_id")
	require.True(t, ok)
	assert.Equal(t, p.ID.String(), id.AsString())
	role, _ := spanAttr(span, "user_role")
	assert.Equal(t, "approver", role.AsString())
}

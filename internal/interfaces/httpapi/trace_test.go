package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestHandlerSpan_SkipsUntracedRequests(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	ctx, span := handlerSpan(req, "Healthz")
	defer span.End()

	require.False(t, span.SpanContext().IsValid())
	require.Equal(t, req.Context(), ctx)
}

func TestHandlerSpan_ChildOfServerSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	parentCtx, parent := provider.Tracer("test").Start(context.Background(), "GET /v1/uploads/{uploadID}")
	req := httptest.NewRequest(http.MethodGet, "/v1/uploads/u-1", nil).WithContext(parentCtx)
	req.Pattern = "GET /v1/uploads/{uploadID}"

	// The global provider is a no-op here, so the child only inherits the
	// parent's span context.
	_, span := handlerSpan(req, "GetUpload")
	span.End()
	parent.End()

	require.Equal(t, parent.SpanContext().TraceID(), span.SpanContext().TraceID())
	require.Len(t, recorder.Ended(), 1)
}

func TestShouldTraceRequest(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{path: "/healthz", want: false},
		{path: " /HEALTHZ ", want: false},
		{path: "/readyz", want: false},
		{path: "/metrics", want: false},
		{path: "/v1/uploads", want: true},
		{path: "/v1/projections/ros/lookup", want: true},
		{path: "/", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := shouldTraceRequest(tt.path); got != tt.want {
				t.Fatalf("shouldTraceRequest(%q)=%v want=%v", tt.path, got, tt.want)
			}
		})
	}
}

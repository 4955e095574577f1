package httpapi

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/riskibarqy/fantasy-roster/internal/interfaces/httpapi"

// handlerSpan opens "httpapi.Handler.<op>" under the otelhttp server span.
// Requests filtered out by RequestTracing have no parent and get a no-op span.
func handlerSpan(r *http.Request, op string) (context.Context, trace.Span) {
	ctx := r.Context()
	if !trace.SpanContextFromContext(ctx).IsValid() {
		return ctx, trace.SpanFromContext(ctx)
	}
	var attrs []attribute.KeyValue
	if r.Pattern != "" {
		attrs = append(attrs, attribute.String("http.route", r.Pattern))
	}
	return otel.Tracer(tracerName).Start(ctx, "httpapi.Handler."+op, trace.WithAttributes(attrs...))
}

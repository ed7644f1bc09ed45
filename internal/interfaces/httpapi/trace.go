package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var apiTracer = otel.Tracer("matchfeed/internal/interfaces/httpapi")
var noopSpan = trace.SpanFromContext(context.Background())

// Handlers and the job-token gate get their own spans; response helpers run
// inside them and stay on the caller's span.
var tracedSpanPrefixes = []string{
	"httpapi.Handler.",
	"httpapi.RequireInternalJobToken",
}

// startSpan never opens a root span: requests on untraced routes such as
// /healthz and /metrics carry no parent.
func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() || !shouldCreateHTTPAPISpan(name) {
		return ctx, noopSpan
	}
	return apiTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func shouldCreateHTTPAPISpan(name string) bool {
	for _, prefix := range tracedSpanPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

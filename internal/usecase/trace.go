package usecase

import (
	"context"

	"github.com/grafana/pyroscope-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var usecaseTracer = otel.Tracer("matchfeed/internal/usecase")

// Callers always End the returned span, so skipped helpers get this one
// rather than their parent.
var usecaseNoopSpan = trace.SpanFromContext(context.Background())

// startCycleSpan opens the span of one ingestion cycle. Timer-driven cycles
// have no caller span, so this one may be a root; an HTTP-triggered cycle
// nests under the request.
func startCycleSpan(ctx context.Context, input CycleInput) (context.Context, trace.Span) {
	return usecaseTracer.Start(ctx, "usecase.IngestionService.RunCycle",
		trace.WithAttributes(
			attribute.StringSlice("matchfeed.competitions", input.Competitions),
			attribute.Bool("matchfeed.force", input.Force),
		),
	)
}

// startUsecaseSpan traces helpers only inside an existing trace.
func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if name == "" || !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		return ctx, usecaseNoopSpan
	}
	return usecaseTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endCycleSpan(span trace.Span, result CycleResult, err error) {
	span.SetAttributes(
		attribute.String("matchfeed.run_id", result.RunID),
		attribute.String("matchfeed.cycle_status", result.Status),
		attribute.Int("matchfeed.competitions_run", len(result.Competitions)),
	)
	failSpan(span, err)
	span.End()
}

func failSpan(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// withCompetitionProfile labels CPU samples taken while fn runs with the
// competition code, so a slow league stands out in the profiler.
func withCompetitionProfile(ctx context.Context, code string, fn func(context.Context)) {
	pyroscope.TagWrapper(ctx, pyroscope.Labels("competition", code), fn)
}

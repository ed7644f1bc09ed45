package logging

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerWritesKeyValueFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core)).Named("ingest").With("run_id", "r-1")

	logger.Warn("fetch failed", "attempt", 2, "error", errors.New("boom"), "dangling")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.LoggerName != "ingest" {
		t.Fatalf("unexpected logger name: %q", entry.LoggerName)
	}
	fields := entry.ContextMap()
	if fields["run_id"] != "r-1" {
		t.Fatalf("missing run_id field: %#v", fields)
	}
	if fields["attempt"] != int64(2) {
		t.Fatalf("unexpected attempt field: %#v", fields["attempt"])
	}
	if fields["error"] != "boom" {
		t.Fatalf("unexpected error field: %#v", fields["error"])
	}
	if _, ok := fields["dangling"]; !ok {
		t.Fatalf("expected dangling key to be kept: %#v", fields)
	}
}

func TestLoggerAddsTraceFieldsFromContext(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	logger := FromZap(zap.New(core))

	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	logger.InfoContext(ctx, "cycle done")
	logger.DebugContext(ctx, "filtered by level")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["trace_id"] != traceID.String() || fields["span_id"] != spanID.String() {
		t.Fatalf("unexpected trace fields: %#v", fields)
	}
}

func TestNilLoggerFallsBackToDefault(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	previous := Default()
	SetDefault(FromZap(zap.New(core)))
	t.Cleanup(func() { SetDefault(previous) })

	var logger *Logger
	logger.Info("hello")

	if logs.Len() != 1 {
		t.Fatalf("expected default logger to receive entry, got %d", logs.Len())
	}
	if !logger.Enabled(LevelInfo) || logger.Enabled(LevelDebug) {
		t.Fatalf("unexpected level gating on default logger")
	}
}

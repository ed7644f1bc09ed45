package httpapi

import (
	"context"
	"testing"
)

func TestShouldCreateHTTPAPISpan(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{name: "handler span", in: "httpapi.Handler.GetIngestionState", want: true},
		{name: "job token gate", in: "httpapi.RequireInternalJobToken", want: true},
		{name: "middleware span", in: "httpapi.RequestLogging", want: false},
		{name: "helper span", in: "httpapi.writeError", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := shouldCreateHTTPAPISpan(tt.in)
			if got != tt.want {
				t.Fatalf("shouldCreateHTTPAPISpan(%q)=%v want=%v", tt.in, got, tt.want)
			}
		})
	}
}

func TestStartSpanWithoutParentKeepsContext(t *testing.T) {
	ctx := context.Background()
	got, span := startSpan(ctx, "httpapi.Handler.Healthz")
	defer span.End()

	if got != ctx {
		t.Fatalf("expected the caller context back when no span is active")
	}
	if span.SpanContext().IsValid() {
		t.Fatalf("expected a non-recording span without a parent")
	}
}

package observes

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestNewSentrySkipsWithoutDSN(t *testing.T) {
	if err := NewSentry(nil); err != nil {
		t.Fatalf("NewSentry(nil) error: %v", err)
	}
	if err := NewSentry(&SentryOptions{Name: "taskhub"}); err != nil {
		t.Fatalf("NewSentry(empty dsn) error: %v", err)
	}
	if sentryEnabled {
		t.Error("sentry should stay disabled without a DSN")
	}
	// no-ops while disabled
	CaptureError(context.Background(), errors.New("boom"))
	CapturePanic(context.Background(), "boom")
}

func TestNewTracerRequiresEndpoint(t *testing.T) {
	if _, err := NewTracer(context.Background(), nil); err == nil {
		t.Error("expected error for nil tracer option")
	}
	if _, err := NewTracer(context.Background(), &TracerOption{Name: "taskhub"}); err == nil {
		t.Error("expected error without an endpoint")
	}
}

func TestTracerSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{0, "AlwaysOnSampler"},
		{1, "AlwaysOnSampler"},
		{0.25, "TraceIDRatioBased{0.25}"},
	}
	for _, tt := range tests {
		got := (&TracerOption{SamplingRate: tt.rate}).sampler().Description()
		if !strings.Contains(got, tt.want) {
			t.Errorf("sampler(%v) = %q, want it to contain %q", tt.rate, got, tt.want)
		}
	}
}

package observes

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/satvikmishra44/taskhub/ctxutil"
)

type SentryOptions struct {
	Dsn         string
	Name        string
	Release     string
	Environment string
}

var sentryEnabled bool

// NewSentry initializes the sentry client, skipped when no DSN is configured
func NewSentry(opt *SentryOptions) error {
	if opt == nil || opt.Dsn == "" {
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              opt.Dsn,
		AttachStacktrace: true,
		ServerName:       opt.Name,
		Release:          opt.Release,
		Environment:      opt.Environment,
	})
	if err != nil {
		return err
	}
	sentryEnabled = true
	return nil
}

// CaptureError reports err with the request trace id
func CaptureError(ctx context.Context, err error) {
	if !sentryEnabled || err == nil {
		return
	}
	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		if traceID := ctxutil.GetTraceID(ctx); traceID != "" {
			scope.SetTag("trace_id", traceID)
		}
	})
	hub.CaptureException(err)
}

// CapturePanic reports a recovered panic value
func CapturePanic(ctx context.Context, recovered any) {
	if !sentryEnabled || recovered == nil {
		return
	}
	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		if traceID := ctxutil.GetTraceID(ctx); traceID != "" {
			scope.SetTag("trace_id", traceID)
		}
	})
	hub.Recover(recovered)
}

// FlushSentry waits for buffered events
func FlushSentry(timeout time.Duration) {
	if sentryEnabled {
		sentry.Flush(timeout)
	}
}

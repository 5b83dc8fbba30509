package ctxutil

import (
	"context"
	"time"
)

// DefaultAsyncTimeout bounds work started after the response is written
const DefaultAsyncTimeout = 5 * time.Second

// WithAsyncContext detaches from the parent's cancellation while keeping its
// values, so trace ids survive into background cleanup.
func WithAsyncContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout == 0 {
		timeout = DefaultAsyncTimeout
	}
	return context.WithTimeout(context.WithoutCancel(parent), timeout)
}

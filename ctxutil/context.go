// Package ctxutil carries request scoped values across gin.Context and
// context.Context.
package ctxutil

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// key is unexported so values set here cannot collide with other packages
type key string

const ginKey key = "gin"

// Well known request values. The same names are used on the gin.Context.
const (
	TraceIDKey  = "trace_id"
	SessionKey  = "session"
	ClientIPKey = "client_ip"
)

// WithGinContext makes c reachable from ctx so that SetValue mirrors values
// onto the gin.Context seen by later middleware.
func WithGinContext(ctx context.Context, c *gin.Context) context.Context {
	return context.WithValue(ctx, ginKey, c)
}

func ginFrom(ctx context.Context) *gin.Context {
	c, _ := ctx.Value(ginKey).(*gin.Context)
	return c
}

// SetValue stores val under name on ctx and on the embedded gin.Context
func SetValue(ctx context.Context, name string, val any) context.Context {
	if c := ginFrom(ctx); c != nil {
		c.Set(name, val)
	}
	return context.WithValue(ctx, key(name), val)
}

// GetValue returns the value stored under name. The gin.Context wins when
// both hold one.
func GetValue(ctx context.Context, name string) any {
	if ctx == nil {
		return nil
	}
	if c := ginFrom(ctx); c != nil {
		if v, ok := c.Get(name); ok {
			return v
		}
	}
	return ctx.Value(key(name))
}

// Lookup is GetValue with a type assertion
func Lookup[T any](ctx context.Context, name string) (T, bool) {
	v, ok := GetValue(ctx, name).(T)
	return v, ok
}

func lookupString(ctx context.Context, name string) string {
	s, _ := Lookup[string](ctx, name)
	return s
}

// GetTraceID returns the request trace id or ""
func GetTraceID(ctx context.Context) string { return lookupString(ctx, TraceIDKey) }

// SetTraceID records the request trace id
func SetTraceID(ctx context.Context, traceID string) context.Context {
	return SetValue(ctx, TraceIDKey, traceID)
}

// EnsureTraceID keeps an existing trace id or assigns a random one.
func EnsureTraceID(ctx context.Context) (context.Context, string) {
	if id := GetTraceID(ctx); id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return SetTraceID(ctx, id), id
}

// SetClientIP records the caller address
func SetClientIP(ctx context.Context, ip string) context.Context {
	return SetValue(ctx, ClientIPKey, ip)
}

// GetClientIP returns the caller address or ""
func GetClientIP(ctx context.Context) string { return lookupString(ctx, ClientIPKey) }

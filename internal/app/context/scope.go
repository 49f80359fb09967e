package context

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

type ctxKey struct{}

// RequestContext is the state one request carries through the application
// layer: memoized lookups and writes staged until the request succeeds.
type RequestContext struct {
	memo   sync.Map
	flight singleflight.Group

	mu        sync.Mutex
	staged    []Action
	committed bool
}

func New() *RequestContext {
	return &RequestContext{}
}

// FromContext returns the RequestContext carried by ctx, or nil.
func FromContext(ctx context.Context) *RequestContext {
	if ctx == nil {
		return nil
	}

	rc, _ := ctx.Value(ctxKey{}).(*RequestContext)

	return rc
}

func WithContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, rc)
}

// Ensure returns the RequestContext carried by ctx, attaching a new one when
// none is present.
func Ensure(ctx context.Context) (context.Context, *RequestContext) {
	if rc := FromContext(ctx); rc != nil {
		return ctx, rc
	}

	rc := New()

	return WithContext(ctx, rc), rc
}

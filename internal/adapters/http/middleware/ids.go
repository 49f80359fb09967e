// Package middleware holds the gin middleware chain of the tarot API.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// HeaderRequestID identifies a single API call.
	HeaderRequestID = "X-Request-ID"
	// HeaderCorrelationID identifies a caller transaction that may span
	// several API calls, e.g. a draw followed by follow-up questions.
	HeaderCorrelationID = "X-Correlation-ID"

	// ContextKeyRequestID is the gin context key for the request ID.
	ContextKeyRequestID = "request_id"
	// ContextKeyCorrelationID is the gin context key for the correlation ID.
	ContextKeyCorrelationID = "correlation_id"

	maxInboundIDLength = 128
)

// tracedID is an identifier that travels from the caller through the API
// and on to the generation provider.
type tracedID struct {
	header string
	key    string
}

// ctxKey keys a tracedID in a context.Context.
type ctxKey struct{ name string }

var (
	requestID     = tracedID{header: HeaderRequestID, key: ContextKeyRequestID}
	correlationID = tracedID{header: HeaderCorrelationID, key: ContextKeyCorrelationID}
)

// RequestID returns middleware that adopts the caller's X-Request-ID or
// mints a UUID v4, echoes it in the response and exposes it to outbound calls.
func RequestID() gin.HandlerFunc { return requestID.middleware() }

// CorrelationID returns middleware that propagates X-Correlation-ID,
// starting a new transaction ID when the caller sent none.
func CorrelationID() gin.HandlerFunc { return correlationID.middleware() }

// GetRequestID returns the request ID stored on c, or "".
func GetRequestID(c *gin.Context) string { return requestID.fromGin(c) }

// GetCorrelationID returns the correlation ID stored on c, or "".
func GetCorrelationID(c *gin.Context) string { return correlationID.fromGin(c) }

// RequestIDFromContext returns the request ID carried by ctx, or "".
func RequestIDFromContext(ctx context.Context) string { return requestID.from(ctx) }

// CorrelationIDFromContext returns the correlation ID carried by ctx, or "".
func CorrelationIDFromContext(ctx context.Context) string { return correlationID.from(ctx) }

// ContextWithRequestID returns a copy of ctx carrying id as the request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return requestID.with(ctx, id)
}

// ContextWithCorrelationID returns a copy of ctx carrying id as the
// correlation ID.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return correlationID.with(ctx, id)
}

func (t tracedID) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(t.header)
		if !acceptableID(id) {
			id = uuid.NewString()
		}

		c.Set(t.key, id)
		c.Header(t.header, id)
		c.Request = c.Request.WithContext(t.with(c.Request.Context(), id))

		c.Next()
	}
}

func (t tracedID) fromGin(c *gin.Context) string {
	return c.GetString(t.key)
}

func (t tracedID) from(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(ctxKey{t.key}).(string)

	return id
}

func (t tracedID) with(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{t.key}, id)
}

// acceptableID reports whether a caller-supplied ID can be echoed back and
// logged as is: non-empty, bounded and printable ASCII only.
func acceptableID(id string) bool {
	if id == "" || len(id) > maxInboundIDLength {
		return false
	}

	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}

	return true
}

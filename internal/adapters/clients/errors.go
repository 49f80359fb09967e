// Package clients provides the instrumented HTTP client used by the
// generation provider gateways.
package clients

import (
	"errors"
	"fmt"
)

// Transport-level failures. Gateways translate them into domain errors; they
// never reach an HTTP handler directly.
var (
	// ErrCircuitOpen is returned without calling the provider while the
	// circuit breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last attempt's error once every attempt
	// has failed.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// StatusError marks a 5xx attempt as retryable. Its body is already closed,
// and the final attempt returns the response itself instead.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error: %d", e.StatusCode)
}

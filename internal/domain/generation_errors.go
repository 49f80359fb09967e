package domain

import (
	"errors"
	"fmt"
)

// Generation provider failures. Quota exhaustion is kept apart from other
// upstream errors because callers show it to users differently.
var (
	ErrQuotaExhausted = errors.New("generation quota exhausted")
	ErrUpstream       = errors.New("upstream failure")
)

func IsQuotaExhausted(err error) bool { return errors.Is(err, ErrQuotaExhausted) }
func IsUpstream(err error) bool       { return errors.Is(err, ErrUpstream) }

// QuotaExhaustedError is returned when the provider denies generation for
// credit, quota, or rate-limit reasons.
type QuotaExhaustedError struct {
	Provider string
	Reason   string
}

func NewQuotaExhaustedError(provider, reason string) error {
	return &QuotaExhaustedError{Provider: provider, Reason: reason}
}

func (e *QuotaExhaustedError) Error() string {
	if e.Reason == "" {
		return e.Provider + " quota exhausted"
	}

	return fmt.Sprintf("%s quota exhausted: %s", e.Provider, e.Reason)
}

func (e *QuotaExhaustedError) Unwrap() error { return ErrQuotaExhausted }

// UpstreamError is any other provider failure. Status is 0 when no HTTP
// response was received.
type UpstreamError struct {
	Provider string
	Status   int
	Reason   string
}

func NewUpstreamError(provider string, status int, reason string) error {
	return &UpstreamError{Provider: provider, Status: status, Reason: reason}
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s failed: %s", e.Provider, e.Reason)
	}

	return fmt.Sprintf("%s failed with status %d: %s", e.Provider, e.Status, e.Reason)
}

func (e *UpstreamError) Unwrap() error { return ErrUpstream }

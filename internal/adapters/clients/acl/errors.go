package acl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jsamuelsen/tarot-service/internal/adapters/clients"
	"github.com/jsamuelsen/tarot-service/internal/domain"
)

// maxErrorBody caps how much of an error body is read.
const maxErrorBody = 64 << 10

// quotaMarkers are substrings of provider messages that signal a billing or
// quota denial regardless of status code.
var quotaMarkers = []string{"credit", "quota", "billing"}

// ErrorResponse is a provider error body. It accepts the nested form
// {"error":{"type":...,"message":...}} as well as flat {"message":...}.
type ErrorResponse struct {
	Type    string      `json:"type,omitempty"`
	Error   ErrorDetail `json:"error"`
	Message string      `json:"message,omitempty"`
}

// ErrorDetail is the nested error object of a provider response.
type ErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// GetMessage returns the message from either the nested or flat form.
func (e *ErrorResponse) GetMessage() string {
	if e.Error.Message != "" {
		return e.Error.Message
	}

	return e.Message
}

// ParseErrorResponse decodes an error body. It returns nil when the body is
// empty or not a recognizable error.
func ParseErrorResponse(body io.Reader) *ErrorResponse {
	if body == nil {
		return nil
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(io.LimitReader(body, maxErrorBody)).Decode(&errResp); err != nil {
		return nil
	}

	if errResp.GetMessage() == "" {
		return nil
	}

	return &errResp
}

// IsQuotaMessage reports whether a provider message describes a billing or
// quota denial.
func IsQuotaMessage(msg string) bool {
	lower := strings.ToLower(msg)

	for _, marker := range quotaMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}

	return false
}

// ClassifyStatus maps a provider status and message to a domain error:
// 429, 402, or a quota message yields a QuotaExhaustedError and anything
// else an UpstreamError.
func ClassifyStatus(provider string, status int, message string) error {
	if message == "" {
		message = http.StatusText(status)
	}

	if status == http.StatusTooManyRequests || status == http.StatusPaymentRequired || IsQuotaMessage(message) {
		return domain.NewQuotaExhaustedError(provider, message)
	}

	return domain.NewUpstreamError(provider, status, message)
}

// MapHTTPError maps a failed provider call to a domain error. resp may be nil
// when clientErr is set. Cancellation is returned unchanged so callers can
// tell a departed client from a provider failure.
func MapHTTPError(resp *http.Response, clientErr error, provider string) error {
	if clientErr != nil {
		return mapClientError(clientErr, provider)
	}

	if resp == nil {
		return domain.NewUnavailableError(provider, "no response received")
	}

	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}

	message := ""
	if errResp := ParseErrorResponse(resp.Body); errResp != nil {
		message = errResp.GetMessage()
	}

	return ClassifyStatus(provider, resp.StatusCode, message)
}

func mapClientError(err error, provider string) error {
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, clients.ErrCircuitOpen):
		return domain.NewUnavailableError(provider, "circuit breaker open")
	case errors.Is(err, context.DeadlineExceeded):
		return domain.NewUnavailableError(provider, "request timed out")
	default:
		return domain.NewUnavailableError(provider, fmt.Sprintf("request failed: %v", err))
	}
}

// Package dto provides Data Transfer Objects for HTTP request/response handling.
package dto

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/tarot-service/internal/domain"
	"github.com/jsamuelsen/tarot-service/internal/platform/logging"
)

// ErrorResponse is the standard error envelope for all error responses.
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	TraceID string      `json:"traceId,omitempty"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	// Code is a machine-readable error code (e.g., "NOT_FOUND", "VALIDATION_ERROR").
	Code string `json:"code"`

	// Message is a human-readable error message.
	Message string `json:"message"`

	// Details holds field-level messages for validation errors.
	Details map[string]string `json:"details,omitempty"`
}

// Error codes for machine-readable error identification.
const (
	ErrorCodeNotFound        = "NOT_FOUND"
	ErrorCodeConflict        = "CONFLICT"
	ErrorCodeValidation      = "VALIDATION_ERROR"
	ErrorCodeInvalidPosition = "INVALID_POSITION"
	ErrorCodeForbidden       = "FORBIDDEN"
	ErrorCodeUnauthorized    = "UNAUTHORIZED"
	ErrorCodeQuotaExhausted  = "QUOTA_EXHAUSTED"
	ErrorCodeUpstream        = "UPSTREAM_ERROR"
	ErrorCodeUnavailable     = "SERVICE_UNAVAILABLE"
	ErrorCodeInternal        = "INTERNAL_ERROR"
	ErrorCodeTimeout         = "TIMEOUT"
	ErrorCodeBadRequest      = "BAD_REQUEST"
)

// User-facing messages for failures whose internal text must not leak.
const (
	MessageQuotaExhausted = "The reading service has run out of generation credits. Please try again later."
	MessageUpstream       = "The interpretation could not be generated. Please try again."
	MessageInternal       = "an internal error occurred"
)

// ContextKeyTraceID is the gin context key checked for a trace ID before the
// request ID header.
const ContextKeyTraceID = "trace_id"

// NewErrorResponse creates a new error response with the given code and message.
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	}
}

// NewErrorResponseWithDetails creates an error response with additional details.
func NewErrorResponseWithDetails(code, message string, details map[string]string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// WithTraceID adds a trace ID to the error response.
func (e *ErrorResponse) WithTraceID(traceID string) *ErrorResponse {
	e.TraceID = traceID
	return e
}

// HTTPStatusFromCode maps error codes to HTTP status codes.
func HTTPStatusFromCode(code string) int {
	switch code {
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeConflict:
		return http.StatusConflict
	case ErrorCodeValidation, ErrorCodeInvalidPosition, ErrorCodeBadRequest:
		return http.StatusBadRequest
	case ErrorCodeForbidden:
		return http.StatusForbidden
	case ErrorCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrorCodeQuotaExhausted:
		return http.StatusTooManyRequests
	case ErrorCodeUpstream:
		return http.StatusBadGateway
	case ErrorCodeUnavailable:
		return http.StatusServiceUnavailable
	case ErrorCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Classify returns the error code and the message safe to show a client.
// Generation failures and unknown errors get fixed messages. Other messages
// come from the innermost domain error so that wrapping context added by
// services and the executor stays in the logs.
func Classify(err error) (string, string) {
	switch {
	case domain.IsInvalidPosition(err):
		return ErrorCodeInvalidPosition, innermost[*domain.InvalidPositionError](err)
	case domain.IsValidation(err):
		return ErrorCodeValidation, domainValidationMessage(err)
	case domain.IsNotFound(err):
		return ErrorCodeNotFound, innermost[*domain.NotFoundError](err)
	case domain.IsConflict(err):
		return ErrorCodeConflict, innermost[*domain.ConflictError](err)
	case domain.IsForbidden(err):
		return ErrorCodeForbidden, innermost[*domain.ForbiddenError](err)
	case domain.IsQuotaExhausted(err):
		return ErrorCodeQuotaExhausted, MessageQuotaExhausted
	case domain.IsUpstream(err):
		return ErrorCodeUpstream, MessageUpstream
	case domain.IsUnavailable(err):
		return ErrorCodeUnavailable, innermost[*domain.UnavailableError](err)
	default:
		return ErrorCodeInternal, MessageInternal
	}
}

// innermost returns the text of the first T in err's chain, or err's own
// text when the chain only carries a sentinel.
func innermost[T error](err error) string {
	var target T
	if errors.As(err, &target) {
		return target.Error()
	}

	return err.Error()
}

// domainValidationMessage drops the "validation failed" prefix from errors that
// name no field, so "Missing required fields" reaches the client verbatim.
func domainValidationMessage(err error) string {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}

	if ve.Field == "" {
		return ve.Message
	}

	return ve.Error()
}

// MapDomainError maps a domain error to an HTTP status code and error response.
func MapDomainError(err error) (int, *ErrorResponse) {
	if err == nil {
		return http.StatusOK, nil
	}

	code, message := Classify(err)
	resp := NewErrorResponse(code, message)

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) && validationErr.Field != "" {
		resp.Error.Details = map[string]string{
			validationErr.Field: validationErr.Message,
		}
	}

	return HTTPStatusFromCode(code), resp
}

// GetTraceID returns the trace ID for error responses. The active span wins,
// then a trace ID stored on the gin context, then the request ID header.
func GetTraceID(c *gin.Context) string {
	if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().HasTraceID() {
		return span.SpanContext().TraceID().String()
	}

	if v, ok := c.Get(ContextKeyTraceID); ok {
		if id, ok := v.(string); ok {
			return id
		}

		return ""
	}

	return c.GetHeader("X-Request-ID")
}

// HandleError writes the mapped error response. Internal errors are logged
// with their full text since the client only sees a generic message.
func HandleError(c *gin.Context, err error) {
	status, resp := MapDomainError(err)
	resp.TraceID = GetTraceID(c)

	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).ErrorContext(c.Request.Context(), "request failed",
			"error", err.Error(),
			"status", status,
			"trace_id", resp.TraceID,
		)
	}

	c.JSON(status, resp)
}

// AbortWithError aborts the handler chain with the mapped error response.
func AbortWithError(c *gin.Context, err error) {
	status, resp := MapDomainError(err)
	resp.TraceID = GetTraceID(c)
	c.AbortWithStatusJSON(status, resp)
}

// RespondWithErrorCode writes an adapter-level error that did not come from
// the domain, such as a malformed path parameter.
func RespondWithErrorCode(c *gin.Context, code, message string) {
	c.JSON(HTTPStatusFromCode(code), NewErrorResponse(code, message).WithTraceID(GetTraceID(c)))
}

// RespondWithValidationErrors writes a 400 response with field-level validation errors.
func RespondWithValidationErrors(c *gin.Context, fieldErrors map[string]string) {
	resp := NewErrorResponseWithDetails(ErrorCodeValidation, "request validation failed", fieldErrors)
	c.JSON(http.StatusBadRequest, resp.WithTraceID(GetTraceID(c)))
}

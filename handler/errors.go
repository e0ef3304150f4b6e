package handler

import (
	"errors"
	"net/http"
)

// ErrNilResponse indicates a handler returned nil instead of a Response.
var ErrNilResponse = errors.New("handler returned nil response")

// HTTPError is an error that carries its HTTP status, a stable
// machine-readable code and the message shown to the client.
type HTTPError struct {
	Code    int                 // HTTP status code
	Key     string              // Machine-readable code, e.g. "invalid_credentials"
	Message string              // Client-facing message
	Details map[string][]string // Optional per-field details
	Err     error               // Underlying cause, never sent to the client
}

// NewHTTPError creates an HTTPError. An empty message defaults to the status text.
func NewHTTPError(code int, key, message string) HTTPError {
	if message == "" {
		message = http.StatusText(code)
	}
	return HTTPError{Code: code, Key: key, Message: message}
}

func (e HTTPError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e HTTPError) Unwrap() error { return e.Err }

// Is matches another HTTPError by status and key.
func (e HTTPError) Is(target error) bool {
	t, ok := target.(HTTPError)
	return ok && t.Code == e.Code && t.Key == e.Key
}

// WithCause returns a copy of e wrapping err.
func (e HTTPError) WithCause(err error) HTTPError {
	e.Err = err
	return e
}

// WithDetails returns a copy of e with per-field details.
func (e HTTPError) WithDetails(details map[string][]string) HTTPError {
	e.Details = details
	return e
}

// Generic errors used when nothing more specific applies.
var (
	ErrBadRequest           = NewHTTPError(http.StatusBadRequest, "bad_request", "Invalid request")
	ErrValidationFailed     = NewHTTPError(http.StatusBadRequest, "validation_failed", "Validation failed")
	ErrUnauthorized         = NewHTTPError(http.StatusUnauthorized, "unauthorized", "Unauthorized")
	ErrForbidden            = NewHTTPError(http.StatusForbidden, "forbidden", "Forbidden")
	ErrNotFound             = NewHTTPError(http.StatusNotFound, "not_found", "Not found")
	ErrMethodNotAllowed     = NewHTTPError(http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
	ErrRequestTooLarge      = NewHTTPError(http.StatusRequestEntityTooLarge, "request_too_large", "Request body too large")
	ErrUnsupportedMediaType = NewHTTPError(http.StatusUnsupportedMediaType, "unsupported_media_type", "Unsupported content type")
	ErrTooManyRequests      = NewHTTPError(http.StatusTooManyRequests, "rate_limited", "Too many requests, please try again later")
	ErrInternal             = NewHTTPError(http.StatusInternalServerError, "internal_error", "Internal server error")
	ErrServiceUnavailable   = NewHTTPError(http.StatusServiceUnavailable, "service_unavailable", "Service unavailable")
)

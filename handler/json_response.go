package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
)

type jsonResponse struct {
	status int
	body   any
}

// Render encodes the body before writing the status, so an encoding failure
// can still be reported by the error handler.
func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(j.body); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	// The status is already sent; a failed write cannot be reported.
	_, _ = w.Write(buf.Bytes())
	return nil
}

// JSONOption configures a JSON response.
type JSONOption func(*jsonResponse)

// WithJSONStatus sets the HTTP status code (200 by default).
func WithJSONStatus(status int) JSONOption {
	return func(r *jsonResponse) { r.status = status }
}

// JSON renders v as the response body.
func JSON(v any, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusOK, body: v}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Message renders {"message": msg}.
func Message(msg string, opts ...JSONOption) Response {
	return JSON(map[string]string{"message": msg}, opts...)
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string              `json:"error"`
	Code    string              `json:"code"`
	Details map[string][]string `json:"details,omitempty"`
}

type errorResponse struct{ err error }

func (e errorResponse) Render(http.ResponseWriter, *http.Request) error { return e.err }

// Error hands err to the configured ErrorHandler.
func Error(err error) Response {
	if err == nil {
		err = ErrInternal
	}
	return errorResponse{err: err}
}

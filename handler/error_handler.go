package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/todoapi/pkg/binder"
	"github.com/dmitrymomot/todoapi/pkg/logger"
	"github.com/dmitrymomot/todoapi/pkg/validator"
)

// ErrorMapper translates a domain error into an HTTPError. It returns false
// for errors it does not recognise.
type ErrorMapper func(err error) (HTTPError, bool)

// Classify resolves err to the HTTPError sent to the client. Mappers are
// consulted first, in order. Unknown errors become ErrInternal.
func Classify(err error, mappers ...ErrorMapper) HTTPError {
	for _, m := range mappers {
		if he, ok := m(err); ok {
			return he.WithCause(err)
		}
	}

	if ve, ok := validator.Extract(err); ok {
		return ErrValidationFailed.WithDetails(ve.Map()).WithCause(err)
	}

	var he HTTPError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, binder.ErrBodyTooLarge):
		return ErrRequestTooLarge.WithCause(err)
	case errors.Is(err, binder.ErrUnsupportedMediaType):
		return ErrUnsupportedMediaType.WithCause(err)
	case errors.Is(err, binder.ErrInvalidJSON),
		errors.Is(err, binder.ErrInvalidForm),
		errors.Is(err, binder.ErrInvalidQuery):
		return ErrBadRequest.WithCause(err)
	}

	return ErrInternal.WithCause(err)
}

// WriteError classifies err and writes it as a JSON error body.
func WriteError(w http.ResponseWriter, err error, mappers ...ErrorMapper) HTTPError {
	he := Classify(err, mappers...)
	writeErrorBody(w, he)
	return he
}

func writeErrorBody(w http.ResponseWriter, he HTTPError) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(he.Code)
	_ = json.NewEncoder(w).Encode(ErrorBody{
		Error:   he.Message,
		Code:    he.Key,
		Details: he.Details,
	})
}

// NewErrorHandler returns an ErrorHandler that logs the failure and renders it
// as JSON. Client errors are logged at WARN, server errors at ERROR.
func NewErrorHandler(log *slog.Logger, mappers ...ErrorMapper) ErrorHandler[Context] {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx Context, err error) {
		r := ctx.Request()
		he := Classify(err, mappers...)

		level := slog.LevelWarn
		if he.Code >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		log.LogAttrs(r.Context(), level, "request error",
			logger.Error(err),
			slog.Int("status_code", he.Code),
			slog.String("code", he.Key),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("error_handler"),
		)

		writeErrorBody(ctx.ResponseWriter(), he)
	}
}

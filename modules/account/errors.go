package account

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/todoapi/handler"
	"github.com/dmitrymomot/todoapi/pkg/auth"
	"github.com/dmitrymomot/todoapi/pkg/file"
)

var (
	ErrDuplicateEmail      = handler.NewHTTPError(http.StatusBadRequest, "duplicate_email", "Email already registered")
	ErrInvalidCredentials  = handler.NewHTTPError(http.StatusUnauthorized, "invalid_credentials", "Invalid credentials")
	ErrFederatedAuthFailed = handler.NewHTTPError(http.StatusUnauthorized, "federated_auth_failed", "Google authentication failed")
	ErrUserNotFound        = handler.NewHTTPError(http.StatusNotFound, "user_not_found", "User not found")
)

// MapError translates auth and avatar errors for handler.Classify.
func MapError(err error) (handler.HTTPError, bool) {
	switch {
	case errors.Is(err, auth.ErrDuplicateEmail):
		return ErrDuplicateEmail, true
	case errors.Is(err, auth.ErrInvalidCredentials):
		return ErrInvalidCredentials, true
	case errors.Is(err, auth.ErrFederatedAuthFailed):
		return ErrFederatedAuthFailed, true
	case errors.Is(err, auth.ErrUserNotFound):
		return ErrUserNotFound, true
	case errors.Is(err, file.ErrNotImage):
		return avatarError("must be an image"), true
	case errors.Is(err, file.ErrFileTooLarge):
		return avatarError("must be at most 5 MiB"), true
	}
	return handler.HTTPError{}, false
}

func avatarError(msg string) handler.HTTPError {
	return handler.ErrValidationFailed.WithDetails(map[string][]string{"avatar": {msg}})
}

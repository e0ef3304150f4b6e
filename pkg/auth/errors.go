package auth

import "errors"

var (
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrFederatedAuthFailed = errors.New("federated authentication failed")
	ErrUserNotFound        = errors.New("user not found")
)

// Federated identity errors. They are always joined with ErrFederatedAuthFailed.
var (
	ErrProviderNotConfigured = errors.New("identity provider not configured")
	ErrUnverifiedEmail       = errors.New("email not verified by provider")
	ErrMissingIDToken        = errors.New("provider response has no id_token")
)

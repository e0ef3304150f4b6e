package auth

import "context"

// Identity holds claims asserted by a verified third-party ID token.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// IdentityVerifier validates third-party credentials.
// Both methods fail with an error wrapping ErrFederatedAuthFailed.
type IdentityVerifier interface {
	// Verify checks an ID token issued to the configured audience.
	Verify(ctx context.Context, idToken string) (*Identity, error)
	// VerifyCode exchanges an authorization code and verifies the returned ID token.
	VerifyCode(ctx context.Context, code string) (*Identity, error)
}

// Package auth implements account authentication for the todo API.
//
// It covers local registration and login with bcrypt password hashes,
// federated login through Google ID tokens, and profile updates. Persistence
// is delegated to a UserStorage implementation and session tokens to a
// TokenIssuer, so the package has no knowledge of MongoDB or JWT internals.
//
// # Usage
//
//	svc := auth.NewService(store, tokens,
//		auth.WithIdentityVerifier(auth.NewGoogleVerifier(cfg.Google)),
//		auth.WithLogger(log),
//	)
//
//	sess, err := svc.Login(ctx, email, password)
//	if errors.Is(err, auth.ErrInvalidCredentials) {
//		// same error for unknown email and wrong password
//	}
//
// Every returned User omits its password hash when marshalled to JSON.
package auth

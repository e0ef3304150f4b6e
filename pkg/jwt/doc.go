// Package jwt issues and verifies the API's bearer tokens and provides the
// HTTP middleware that guards protected routes.
//
// Tokens are HS256-signed JWTs (github.com/golang-jwt/jwt/v5) carrying the
// user identifier in a "userId" claim together with the standard sub, iat and
// exp claims. They are stateless: nothing is persisted and expiry is the only
// way a token stops working.
//
// Every verification failure, whether the token is malformed, carries a bad
// signature or has expired, is reported as ErrInvalidToken so callers cannot
// tell which check failed.
//
// # Usage
//
//	svc, err := jwt.New([]byte(cfg.Secret), jwt.WithTTL(cfg.TTL))
//	if err != nil {
//		return err
//	}
//
//	token, err := svc.Issue(user.ID)
//
//	r.With(jwt.Middleware(svc)).Put("/profile", updateProfile)
//
//	// inside the protected handler
//	userID, ok := jwt.UserIDFromContext(ctx)
package jwt

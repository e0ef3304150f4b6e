package jwt

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Verifier is the part of Service the middleware depends on.
type Verifier interface {
	Verify(token string) (string, error)
}

// UnauthorizedFunc writes the response for a rejected request.
type UnauthorizedFunc func(w http.ResponseWriter, r *http.Request, err error)

type middlewareConfig struct {
	unauthorized UnauthorizedFunc
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

func WithUnauthorizedHandler(fn UnauthorizedFunc) MiddlewareOption {
	return func(c *middlewareConfig) {
		if fn != nil {
			c.unauthorized = fn
		}
	}
}

// Middleware rejects requests without a valid bearer token and stores the
// verified user ID in the request context. It does not look the user up.
func Middleware(v Verifier, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := middlewareConfig{
		unauthorized: writeUnauthorized,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerTokenExtractor(r)
			if err != nil {
				cfg.unauthorized(w, r, err)
				return
			}

			userID, err := v.Verify(token)
			if err != nil {
				cfg.unauthorized(w, r, err)
				return
			}

			ctx := WithToken(r.Context(), token)
			ctx = WithUserID(ctx, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerTokenExtractor reads "Authorization: Bearer <token>".
func BearerTokenExtractor(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", ErrInvalidToken
	}
	return token, nil
}

func writeUnauthorized(w http.ResponseWriter, _ *http.Request, _ error) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": "Unauthorized",
		"code":  "unauthorized",
	})
}

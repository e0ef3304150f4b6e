// Package cors applies an origin allowlist with credentialed requests.
//
// Requests without an Origin header (curl, mobile apps, same-origin) pass
// untouched. Disallowed origins get no CORS headers, and their preflights
// are answered with 403.
package cors

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Config lists the allowed origins.
type Config struct {
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"https://timely-hummingbird-648821.netlify.app,http://localhost:5173,http://localhost:3000"`
	MaxAge         time.Duration `env:"CORS_MAX_AGE" envDefault:"24h"`
}

var (
	allowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	allowedHeaders = []string{"Authorization", "Content-Type", "X-Request-ID"}
	exposedHeaders = []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"}
)

// Middleware returns the CORS middleware for cfg.
func Middleware(cfg Config) func(http.Handler) http.Handler {
	origins := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			origins[o] = struct{}{}
		}
	}
	methods := strings.Join(allowedMethods, ", ")
	exposed := strings.Join(exposedHeaders, ", ")
	maxAge := strconv.Itoa(int(cfg.MaxAge.Seconds()))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Add("Vary", "Origin")

			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
			if _, ok := origins[origin]; !ok {
				if preflight {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")

			if !preflight {
				h.Set("Access-Control-Expose-Headers", exposed)
				next.ServeHTTP(w, r)
				return
			}

			h.Add("Vary", "Access-Control-Request-Method")
			h.Add("Vary", "Access-Control-Request-Headers")
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", requestedHeaders(r))
			if cfg.MaxAge > 0 {
				h.Set("Access-Control-Max-Age", maxAge)
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}

// requestedHeaders echoes the allowed subset of Access-Control-Request-Headers.
func requestedHeaders(r *http.Request) string {
	req := r.Header.Get("Access-Control-Request-Headers")
	if req == "" {
		return strings.Join(allowedHeaders, ", ")
	}
	var out []string
	for h := range strings.SplitSeq(req, ",") {
		h = http.CanonicalHeaderKey(strings.TrimSpace(h))
		if slices.Contains(allowedHeaders, h) {
			out = append(out, h)
		}
	}
	return strings.Join(out, ", ")
}

// Package clientip resolves the originating client address of a request.
//
// Proxy headers are only consulted when they are listed explicitly, so a
// client cannot pick its own rate-limit bucket by sending a forged
// X-Forwarded-For to a server that is not behind a proxy.
package clientip

import (
	"context"
	"net"
	"net/http"
	"strings"
)

// DefaultProxyHeaders lists common proxy headers in the order they are usually trusted.
var DefaultProxyHeaders = []string{
	"CF-Connecting-IP",
	"X-Forwarded-For",
	"X-Real-IP",
}

// Resolver extracts the client IP from a request.
type Resolver struct {
	headers []string
}

// NewResolver returns a Resolver that checks headers in order before falling
// back to RemoteAddr. With no headers only RemoteAddr is used.
func NewResolver(headers ...string) Resolver {
	return Resolver{headers: headers}
}

// IP returns the normalized client address or an empty string.
func (res Resolver) IP(r *http.Request) string {
	for _, h := range res.headers {
		v := r.Header.Get(h)
		if v == "" {
			continue
		}
		// X-Forwarded-For may carry a chain; the left-most valid entry is the client.
		for part := range strings.SplitSeq(v, ",") {
			if ip := parseIP(part); ip != "" {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

// Middleware stores the resolved IP in the request context.
func (res Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithIP(r.Context(), res.IP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type contextKey struct{}

// WithIP stores ip in ctx.
func WithIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, contextKey{}, ip)
}

// FromContext returns the IP stored by Middleware, if any.
func FromContext(ctx context.Context) string {
	ip, _ := ctx.Value(contextKey{}).(string)
	return ip
}

func parseIP(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return ""
	}
	return ip.String()
}

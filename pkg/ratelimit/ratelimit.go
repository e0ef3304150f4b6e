// Package ratelimit limits requests per client with a fixed window, backed by
// ulule/limiter. Counters live in memory or, when several instances run
// behind a load balancer, in Redis.
package ratelimit

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/dmitrymomot/todoapi/handler"
	"github.com/dmitrymomot/todoapi/pkg/clientip"
	"github.com/dmitrymomot/todoapi/pkg/logger"
)

const storePrefix = "todoapi:ratelimit"

var ErrInvalidConfig = errors.New("ratelimit: invalid configuration")

// Config holds the request budget per client and window.
type Config struct {
	Limit  int64         `env:"RATE_LIMIT" envDefault:"100"`
	Window time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`
}

// KeyFunc returns the bucket key for a request. Empty keys are not limited.
type KeyFunc func(r *http.Request) string

// LimitReachedFunc writes the response for a rejected request.
type LimitReachedFunc func(w http.ResponseWriter, r *http.Request, lctx limiter.Context)

// NewMemoryStore returns an in-process counter store.
func NewMemoryStore() limiter.Store {
	return memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          storePrefix,
		CleanUpInterval: limiter.DefaultCleanUpInterval,
	})
}

// NewRedisStore returns a counter store shared through Redis.
func NewRedisStore(client redis.UniversalClient) (limiter.Store, error) {
	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix:   storePrefix,
		MaxRetry: 3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis limiter store: %w", err)
	}
	return store, nil
}

// Limiter is an HTTP rate limiter.
type Limiter struct {
	limiter      *limiter.Limiter
	keyFunc      KeyFunc
	limitReached LimitReachedFunc
	logger       *slog.Logger
}

// Option configures a Limiter.
type Option func(*Limiter)

func WithKeyFunc(fn KeyFunc) Option {
	return func(l *Limiter) {
		if fn != nil {
			l.keyFunc = fn
		}
	}
}

func WithLimitReachedHandler(fn LimitReachedFunc) Option {
	return func(l *Limiter) {
		if fn != nil {
			l.limitReached = fn
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(l *Limiter) {
		if log != nil {
			l.logger = log
		}
	}
}

// New creates a Limiter. Requests are keyed by client IP unless WithKeyFunc is given.
func New(store limiter.Store, cfg Config, opts ...Option) (*Limiter, error) {
	if store == nil || cfg.Limit <= 0 || cfg.Window <= 0 {
		return nil, ErrInvalidConfig
	}

	l := &Limiter{
		limiter:      limiter.New(store, limiter.Rate{Period: cfg.Window, Limit: cfg.Limit}),
		keyFunc:      IPKey,
		limitReached: writeLimitReached,
		logger:       logger.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Middleware enforces the limit and sets X-RateLimit-* headers. Store errors
// let the request through.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := l.keyFunc(r)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		lctx, err := l.limiter.Get(r.Context(), key)
		if err != nil {
			l.logger.WarnContext(r.Context(), "rate limiter store failed",
				logger.Error(err),
				logger.Component("ratelimit"),
			)
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		h.Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

		if lctx.Reached {
			l.limitReached(w, r, lctx)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IPKey keys requests by the IP stored by clientip.Middleware, falling back
// to the connection's remote address.
func IPKey(r *http.Request) string {
	if ip := clientip.FromContext(r.Context()); ip != "" {
		return ip
	}
	return clientip.NewResolver().IP(r)
}

func writeLimitReached(w http.ResponseWriter, _ *http.Request, lctx limiter.Context) {
	retry := max(lctx.Reset-time.Now().Unix(), 1)
	w.Header().Set("Retry-After", strconv.FormatInt(retry, 10))
	handler.WriteError(w, handler.ErrTooManyRequests)
}

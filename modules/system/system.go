package system

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/todoapi/handler"
	"github.com/dmitrymomot/todoapi/pkg/logger"
)

const defaultCheckTimeout = 3 * time.Second

// Check reports whether a dependency is usable, e.g. mongo.Healthcheck.
type Check func(ctx context.Context) error

// Info is the document served at GET /.
type Info struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Description string            `json:"description"`
	Endpoints   map[string]string `json:"endpoints"`
}

// DefaultInfo describes this API.
func DefaultInfo() Info {
	return Info{
		Name:        "Todo API",
		Version:     "1.0.0",
		Description: "RESTful API for Todo Application",
		Endpoints: map[string]string{
			"POST /api/auth/register": "Create an account",
			"POST /api/auth/login":    "Sign in with email and password",
			"POST /api/auth/google":   "Sign in with a Google ID token or authorization code",
			"POST /api/auth/logout":   "Acknowledge sign-out",
			"PUT /api/auth/profile":   "Update the current user (auth)",
			"GET /api/auth/me":        "Current user (auth)",
			"GET /api/tasks":          "List tasks (auth)",
			"POST /api/tasks":         "Create a task (auth)",
			"GET /api/tasks/{id}":     "Get a task (auth)",
			"PUT /api/tasks/{id}":     "Update a task (auth)",
			"DELETE /api/tasks/{id}":  "Delete a task (auth)",
			"GET /api/health":         "Liveness",
			"GET /api/health/ready":   "Readiness",
		},
	}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type options struct {
	info    Info
	checks  map[string]Check
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures Routes.
type Option func(*options)

// WithInfo replaces DefaultInfo.
func WithInfo(info Info) Option {
	return func(o *options) { o.info = info }
}

// WithCheck adds a readiness check. A nil check is ignored.
func WithCheck(name string, check Check) Option {
	return func(o *options) {
		if check != nil {
			o.checks[name] = check
		}
	}
}

func WithCheckTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Routes registers GET /, GET /api/health and GET /api/health/ready on r.
func Routes(r chi.Router, opts ...Option) {
	o := &options{
		info:    DefaultInfo(),
		checks:  map[string]Check{},
		timeout: defaultCheckTimeout,
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(o)
	}

	r.Get("/", handler.Wrap(func(handler.Context, struct{}) handler.Response {
		return handler.JSON(o.info)
	}))
	r.Get("/api/health", handler.Wrap(func(handler.Context, struct{}) handler.Response {
		return handler.JSON(healthResponse{Status: "ok"})
	}))
	r.Get("/api/health/ready", handler.Wrap(o.ready))
}

// ready runs every check concurrently. Failures are logged, the response
// only says "down".
func (o *options) ready(ctx handler.Context, _ struct{}) handler.Response {
	cctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	var mu sync.Mutex
	results := make(map[string]string, len(o.checks))
	healthy := true

	var g errgroup.Group
	for name, check := range o.checks {
		g.Go(func() error {
			err := check(cctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				healthy = false
				results[name] = "down"
				o.logger.WarnContext(ctx, "readiness check failed",
					slog.String("check", name),
					logger.Error(err),
				)
				return nil
			}
			results[name] = "ok"
			return nil
		})
	}
	_ = g.Wait()

	if !healthy {
		return handler.JSON(healthResponse{Status: "unavailable", Checks: results},
			handler.WithJSONStatus(http.StatusServiceUnavailable))
	}
	return handler.JSON(healthResponse{Status: "ok", Checks: results})
}

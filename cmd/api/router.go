package main

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/unrolled/secure"

	"github.com/dmitrymomot/todoapi/handler"
	"github.com/dmitrymomot/todoapi/modules/account"
	"github.com/dmitrymomot/todoapi/modules/system"
	"github.com/dmitrymomot/todoapi/modules/tasks"
	"github.com/dmitrymomot/todoapi/pkg/clientip"
	"github.com/dmitrymomot/todoapi/pkg/cors"
	"github.com/dmitrymomot/todoapi/pkg/file"
	"github.com/dmitrymomot/todoapi/pkg/jwt"
	"github.com/dmitrymomot/todoapi/pkg/logger"
	"github.com/dmitrymomot/todoapi/pkg/metrics"
	"github.com/dmitrymomot/todoapi/pkg/ratelimit"
	"github.com/dmitrymomot/todoapi/pkg/requestid"
)

type routerDeps struct {
	log         *slog.Logger
	accounts    account.Service
	tasks       tasks.TaskService
	tokens      jwt.Verifier
	avatars     file.Storage
	limiter     *ratelimit.Limiter
	metrics     *metrics.Metrics
	cors        cors.Config
	checks      map[string]system.Check
	version     string
	trustProxy  bool
	development bool
}

func secureOptions(development bool) secure.Options {
	return secure.Options{
		IsDevelopment:      development,
		ContentTypeNosniff: true,
		FrameDeny:          true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}
}

func newRouter(d routerDeps) http.Handler {
	resolver := clientip.NewResolver()
	if d.trustProxy {
		resolver = clientip.NewResolver(clientip.DefaultProxyHeaders...)
	}

	r := chi.NewRouter()
	r.Use(secure.New(secureOptions(d.development)).Handler)
	r.Use(cors.Middleware(d.cors))
	r.Use(requestid.Middleware)
	r.Use(resolver.Middleware)
	r.Use(logger.Middleware(d.log))
	r.Use(middleware.Recoverer)
	r.Use(d.metrics.Middleware)
	if d.limiter != nil {
		r.Use(d.limiter.Middleware)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		handler.WriteError(w, handler.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		handler.WriteError(w, handler.ErrMethodNotAllowed)
	})

	info := system.DefaultInfo()
	if d.version != "" {
		info.Version = d.version
	}
	sysOpts := []system.Option{system.WithLogger(d.log), system.WithInfo(info)}
	for name, check := range d.checks {
		sysOpts = append(sysOpts, system.WithCheck(name, check))
	}
	system.Routes(r, sysOpts...)

	authenticate := jwt.Middleware(d.tokens)

	r.Mount("/api/auth", account.Router(d.accounts, authenticate,
		account.WithAvatarStorage(d.avatars),
		account.WithAttemptRecorder(d.metrics),
		account.WithLogger(d.log),
	))
	r.Mount("/api/tasks", tasks.Router(d.tasks, authenticate, d.log))

	if local, ok := d.avatars.(*file.LocalStorage); ok {
		// Absolute base URLs are served by another host.
		if prefix := local.URL(""); strings.HasPrefix(prefix, "/") && prefix != "/" {
			r.Handle(prefix+"*", http.StripPrefix(prefix, staticFiles(local.Dir())))
		}
	}

	r.Handle("/metrics", d.metrics.Handler())

	return r
}

// staticFiles serves dir without directory listings.
func staticFiles(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			handler.WriteError(w, handler.ErrNotFound)
			return
		}
		fs.ServeHTTP(w, r)
	})
}

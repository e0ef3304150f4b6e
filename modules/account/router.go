package account

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/todoapi/handler"
	"github.com/dmitrymomot/todoapi/pkg/binder"
	"github.com/dmitrymomot/todoapi/pkg/file"
)

type routerConfig struct {
	avatars  file.Storage
	recorder AttemptRecorder
	logger   *slog.Logger
}

// Option configures Router.
type Option func(*routerConfig)

// WithAvatarStorage enables avatar uploads on register and profile update.
func WithAvatarStorage(s file.Storage) Option {
	return func(c *routerConfig) { c.avatars = s }
}

func WithAttemptRecorder(r AttemptRecorder) Option {
	return func(c *routerConfig) {
		if r != nil {
			c.recorder = r
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *routerConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Router returns the /api/auth routes. authenticate guards the profile
// routes and must store the user ID with jwt.WithUserID.
func Router(svc Service, authenticate func(http.Handler) http.Handler, opts ...Option) chi.Router {
	cfg := &routerConfig{
		recorder: nopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	h := &handlers{svc: svc, avatars: cfg.avatars, recorder: cfg.recorder, logger: cfg.logger}
	errs := handler.NewErrorHandler(cfg.logger, MapError)
	body := []handler.Bind{binder.JSON(), binder.Form()}

	r := chi.NewRouter()

	r.Post("/register", handler.Wrap(h.register,
		handler.WithBinders[handler.Context, registerRequest](body...),
		handler.WithErrorHandler[handler.Context, registerRequest](errs),
	))
	r.Post("/login", handler.Wrap(h.login,
		handler.WithBinders[handler.Context, loginRequest](body...),
		handler.WithErrorHandler[handler.Context, loginRequest](errs),
	))
	r.Post("/google", handler.Wrap(h.google,
		handler.WithBinders[handler.Context, googleRequest](body...),
		handler.WithErrorHandler[handler.Context, googleRequest](errs),
	))
	r.Post("/logout", handler.Wrap(h.logout,
		handler.WithErrorHandler[handler.Context, struct{}](errs),
	))

	r.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Put("/profile", handler.Wrap(h.updateProfile,
			handler.WithBinders[handler.Context, profileRequest](body...),
			handler.WithErrorHandler[handler.Context, profileRequest](errs),
		))
		r.Get("/me", handler.Wrap(h.me,
			handler.WithErrorHandler[handler.Context, struct{}](errs),
		))
	})

	return r
}

package tasks

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/todoapi/handler"
	"github.com/dmitrymomot/todoapi/pkg/binder"
)

// Router returns the /api/tasks routes, all behind authenticate.
func Router(svc TaskService, authenticate func(http.Handler) http.Handler, log *slog.Logger) chi.Router {
	h := &handlers{svc: svc}
	errs := handler.NewErrorHandler(log, MapError)
	body := []handler.Bind{binder.JSON(), binder.Form()}

	r := chi.NewRouter()
	r.Use(authenticate)

	r.Get("/", handler.Wrap(h.list,
		handler.WithBinders[handler.Context, listRequest](binder.Query()),
		handler.WithErrorHandler[handler.Context, listRequest](errs),
	))
	r.Post("/", handler.Wrap(h.create,
		handler.WithBinders[handler.Context, createRequest](body...),
		handler.WithErrorHandler[handler.Context, createRequest](errs),
	))

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", handler.Wrap(h.get,
			handler.WithErrorHandler[handler.Context, struct{}](errs),
		))
		r.Put("/", handler.Wrap(h.update,
			handler.WithBinders[handler.Context, updateRequest](body...),
			handler.WithErrorHandler[handler.Context, updateRequest](errs),
		))
		r.Delete("/", handler.Wrap(h.delete,
			handler.WithErrorHandler[handler.Context, struct{}](errs),
		))
	})

	return r
}

// Package handler adapts typed request handlers to net/http.
//
// A HandlerFunc receives a Context and a request struct that has already been
// populated by the configured binders, and returns a Response:
//
//	func (h *Handler) login(ctx handler.Context, req loginRequest) handler.Response {
//		res, err := h.svc.Login(ctx, req.Email, req.Password)
//		if err != nil {
//			return handler.Error(err)
//		}
//		return handler.JSON(res)
//	}
//
//	r.Post("/login", handler.Wrap(h.login,
//		handler.WithBinders[handler.Context, loginRequest](binder.JSON(), binder.Form()),
//		handler.WithErrorHandler[handler.Context, loginRequest](errHandler),
//	))
//
// Errors, whether produced by a binder, returned through Error or raised while
// rendering, go to the ErrorHandler. NewErrorHandler renders them as
// {"error": "...", "code": "...", "details": {...}} and logs them.
package handler

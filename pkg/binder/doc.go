// Package binder decodes HTTP requests into typed request structs.
//
// Each binder is a func(*http.Request, any) error and is meant to be passed
// to handler.WithBinders. A body binder that does not recognise the request's
// Content-Type returns ErrBinderNotApplicable so the next binder can try,
// which lets one endpoint accept both JSON and multipart bodies:
//
//	handler.Wrap(h.register,
//		handler.WithBinders[handler.Context, registerRequest](binder.JSON(), binder.Form()),
//	)
//
// Form and Query use `form` and `query` struct tags; uploaded files are bound
// to *multipart.FileHeader fields tagged `file`.
package binder

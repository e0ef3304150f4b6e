// Package httpserver runs an http.Server until its context is canceled and
// then shuts it down gracefully.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	err := srv.Run(ctx, router)
//
// Signal handling is left to the caller, typically signal.NotifyContext.
package httpserver

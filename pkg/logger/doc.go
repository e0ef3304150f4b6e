// Package logger builds log/slog loggers for the API process.
//
// New returns a JSON logger at INFO by default. WithEnvironment switches to a
// text handler at DEBUG for development. Context extractors registered with
// WithContextExtractors run on every record, which is how request IDs end up
// in log lines emitted deep inside handlers.
//
// The attribute helpers (Error, UserID, RequestID, Component, ...) keep key
// names consistent across packages. Middleware writes one access log record
// per HTTP request.
package logger

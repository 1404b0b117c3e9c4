// Package logger provides structured logging for specs-go tools.
//
// It wraps log/slog:
//
//   - logger.go: handler configuration and the package-level default logger
//   - context.go: loggers and command/store scope carried in a context
//   - redact.go: masking of secret-looking configuration values
//   - observer.go: logging of datastore operations
package logger

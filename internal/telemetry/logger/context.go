package logger

import "context"

type contextKey string

const (
	loggerKey  contextKey = "specs.logger"
	commandKey contextKey = "specs.command"
	storeKey   contextKey = "specs.store"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext extracts the logger from context.
// Returns the default logger if none is set.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithCommand records the running CLI command in the context.
func WithCommand(ctx context.Context, command string) context.Context {
	return context.WithValue(ctx, commandKey, command)
}

// CommandFromContext extracts the command name from context.
func CommandFromContext(ctx context.Context) string {
	if c, ok := ctx.Value(commandKey).(string); ok {
		return c
	}
	return ""
}

// WithStore records the store being worked on in the context.
func WithStore(ctx context.Context, store string) context.Context {
	return context.WithValue(ctx, storeKey, store)
}

// StoreFromContext extracts the store name from context.
func StoreFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(storeKey).(string); ok {
		return s
	}
	return ""
}

// L is a shorthand for FromContext that also enriches the logger
// with the command and store names from the context.
func L(ctx context.Context) Logger {
	l := FromContext(ctx)

	if cmd := CommandFromContext(ctx); cmd != "" {
		l = l.With("command", cmd)
	}
	if store := StoreFromContext(ctx); store != "" {
		l = l.With("store", store)
	}

	return l.WithContext(ctx)
}

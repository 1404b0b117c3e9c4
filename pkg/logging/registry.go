// Package logging keeps a process-wide cache of named loggers.
//
// Loggers are created on first request and live for the rest of the
// process. Concurrent first requests for the same name may each build a
// candidate, but only one is stored and every caller gets the stored one.
package logging

import (
	"io"
	"os"
	"reflect"
	"slices"

	"github.com/hashicorp/go-hclog"

	"github.com/specs-feup/specs-go/pkg/cmap"
)

// Options configures the loggers a Registry creates.
type Options struct {
	// Output is where log lines go (defaults to os.Stderr).
	Output io.Writer
	// Level is the minimum level (defaults to hclog.Info).
	Level hclog.Level
	// JSON switches the output to JSON lines.
	JSON bool
}

// Option is a function that configures a Registry.
type Option func(*Options)

// WithOutput sets the log output.
func WithOutput(w io.Writer) Option {
	return func(o *Options) {
		o.Output = w
	}
}

// WithLevel sets the minimum log level by name (trace, debug, info, warn, error).
func WithLevel(level string) Option {
	return func(o *Options) {
		o.Level = hclog.LevelFromString(level)
	}
}

// WithJSON enables JSON formatted output.
func WithJSON() Option {
	return func(o *Options) {
		o.JSON = true
	}
}

// Registry maps logical names to loggers.
type Registry struct {
	loggers *cmap.Map[string, hclog.Logger]
	opts    Options
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	o := Options{
		Output: os.Stderr,
		Level:  hclog.Info,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Level == hclog.NoLevel {
		o.Level = hclog.Info
	}

	return &Registry{
		loggers: cmap.New[string, hclog.Logger](),
		opts:    o,
	}
}

// Get returns the logger registered under name, creating it if needed.
func (r *Registry) Get(name string) hclog.Logger {
	if l, ok := r.loggers.Get(name); ok {
		return l
	}

	candidate := hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Output:     r.opts.Output,
		Level:      r.opts.Level,
		JSONFormat: r.opts.JSON,
	})
	l, _ := r.loggers.GetOrSet(name, candidate)
	return l
}

// ForType returns the logger named "<pkgpath>.<Type>.<tag>" for the dynamic
// type of v. Pointer types resolve to their element type.
func (r *Registry) ForType(v any, tag string) hclog.Logger {
	return r.Get(TypeName(v) + "." + tag)
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	names := r.loggers.Keys()
	slices.Sort(names)
	return names
}

// Register installs l under name, replacing any logger already there.
func (r *Registry) Register(name string, l hclog.Logger) {
	r.loggers.Set(name, l)
}

// Has reports whether a logger is registered under name.
func (r *Registry) Has(name string) bool {
	return r.loggers.Has(name)
}

// Remove drops the logger registered under name. The next Get builds a new
// one.
func (r *Registry) Remove(name string) {
	r.loggers.Delete(name)
}

// Reset drops every registered logger.
func (r *Registry) Reset() {
	r.loggers.Clear()
}

// Len returns the number of registered loggers.
func (r *Registry) Len() int {
	return r.loggers.Count()
}

// TypeName returns the fully qualified type name of v.
func TypeName(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return "<nil>"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "" || t.Name() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// Get returns the named logger from the process-wide registry.
func Get(name string) hclog.Logger {
	return defaultRegistry.Get(name)
}

// ForType returns the type-scoped logger from the process-wide registry.
func ForType(v any, tag string) hclog.Logger {
	return defaultRegistry.ForType(v, tag)
}

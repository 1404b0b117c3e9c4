package confloader

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/specs-feup/specs-go/internal/telemetry/logger"
	"github.com/specs-feup/specs-go/pkg/datastore"
)

// DefaultEnvPrefix is the default environment variable prefix.
const DefaultEnvPrefix = "SPECS_"

// Loader reads configuration sources and fills stores from them.
type Loader struct {
	k           *koanf.Koanf
	envPrefix   string
	filePath    string
	overrides   map[string]any
	strictKeys  bool
	logger      logger.Logger
	storeOpts   []datastore.Option
	envResolver func(string) string
}

// Option is a function that configures the Loader.
type Option func(*Loader)

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// WithConfigFile sets the configuration file path.
func WithConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
	}
}

// WithOverrides sets values that take priority over every other source.
func WithOverrides(values map[string]any) Option {
	return func(l *Loader) {
		l.overrides = values
	}
}

// WithStrictKeys makes configuration entries without a matching key an error.
func WithStrictKeys() Option {
	return func(l *Loader) {
		l.strictKeys = true
	}
}

// WithLogger sets the loader's logger.
func WithLogger(log logger.Logger) Option {
	return func(l *Loader) {
		l.logger = log
	}
}

// WithStoreOptions passes options to the stores the loader creates.
func WithStoreOptions(opts ...datastore.Option) Option {
	return func(l *Loader) {
		l.storeOpts = append(l.storeOpts, opts...)
	}
}

// NewLoader creates a new configuration loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New("."),
		envPrefix: DefaultEnvPrefix,
		logger:    logger.Default(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load reads all sources and returns a store for def holding the
// configured values. Keys without a configured value fall back to their
// defaults.
func (l *Loader) Load(def *datastore.Definition) (*datastore.Store, error) {
	l.k = koanf.New(".")
	l.envResolver = envResolver(def, l.envPrefix)

	if l.filePath != "" {
		if err := l.LoadFile(l.filePath); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}
	if err := l.LoadEnv(); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}
	if len(l.overrides) > 0 {
		if err := l.LoadMap(l.overrides); err != nil {
			return nil, fmt.Errorf("load overrides: %w", err)
		}
	}

	s := datastore.NewFromDefinition(def, l.storeOpts...)
	if err := l.Fill(s); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadFile loads configuration from a YAML file.
func (l *Loader) LoadFile(path string) error {
	if path == "" {
		return nil
	}

	if err := l.k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("load file %s: %w", path, err)
	}
	l.logger.Debug("configuration file loaded", "path", path)

	return nil
}

// LoadEnv loads configuration from environment variables.
// SPECS_OUTPUT_DIR maps to the defined key whose name, upper-cased with
// dots replaced by underscores, is OUTPUT_DIR; unknown variables map to
// lower-case dotted names (output.dir).
func (l *Loader) LoadEnv() error {
	resolve := l.envResolver
	if resolve == nil {
		resolve = envResolver(nil, l.envPrefix)
	}

	provider := env.Provider(l.envPrefix, ".", resolve)
	if err := l.k.Load(provider, nil); err != nil {
		return fmt.Errorf("load env: %w", err)
	}

	return nil
}

// LoadMap loads configuration from a map (flags or tests).
func (l *Loader) LoadMap(data map[string]any) error {
	if err := l.k.Load(mapProvider(data), nil); err != nil {
		return fmt.Errorf("load map: %w", err)
	}
	return nil
}

// Fill sets every configured value whose name matches a key of s's
// definition. Values are decoded with the key codecs; all failures are
// reported together and leave the failing keys unset.
func (l *Loader) Fill(s *datastore.Store) error {
	def, ok := s.Definition()
	if !ok {
		return fmt.Errorf("store %q has no definition", s.Name())
	}

	var errs []error
	for _, k := range def.Keys() {
		if !l.k.Exists(k.Name()) {
			continue
		}
		text := ValueText(l.k.Get(k.Name()))
		if err := s.SetText(k, text); err != nil {
			errs = append(errs, fmt.Errorf("key %s: %w", k.Name(), err))
		}
	}

	for _, name := range l.unknownKeys(def) {
		if l.strictKeys {
			errs = append(errs, datastore.ErrUndefinedKey.WithDetailsf("configuration entry '%s' in definition '%s'", name, def.Name()))
			continue
		}
		l.logger.Warn("ignoring configuration entry without key", "entry", name, "definition", def.Name())
	}

	return errors.Join(errs...)
}

// unknownKeys returns configured names that no key of def claims. A
// configured name under a defined key (a.b.c below a.b) belongs to it.
func (l *Loader) unknownKeys(def *datastore.Definition) []string {
	var unknown []string
	for _, name := range l.k.Keys() {
		if def.HasKey(name) || hasDefinedParent(def, name) {
			continue
		}
		unknown = append(unknown, name)
	}
	slices.Sort(unknown)
	return unknown
}

func hasDefinedParent(def *datastore.Definition, name string) bool {
	for i := strings.LastIndexByte(name, '.'); i > 0; i = strings.LastIndexByte(name[:i], '.') {
		if def.HasKey(name[:i]) {
			return true
		}
	}
	return false
}

// ValueText renders a configured value as codec input. Lists are joined
// with commas.
func ValueText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, len(t))
		for i, p := range t {
			parts[i] = fmt.Sprint(p)
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(t, ",")
	default:
		return fmt.Sprint(v)
	}
}

func envResolver(def *datastore.Definition, prefix string) func(string) string {
	known := map[string]string{}
	if def != nil {
		for _, k := range def.Keys() {
			known[envName(k.Name())] = k.Name()
		}
	}
	return func(s string) string {
		s = strings.TrimPrefix(s, prefix)
		if name, ok := known[s]; ok {
			return name
		}
		return strings.ReplaceAll(strings.ToLower(s), "_", ".")
	}
}

// EnvName returns the environment variable that sets key name.
func EnvName(prefix, name string) string {
	return prefix + envName(name)
}

func envName(name string) string {
	return strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(name))
}

// Get returns a raw configured value by key.
func (l *Loader) Get(key string) any {
	return l.k.Get(key)
}

// All returns all configuration as a flat map.
func (l *Loader) All() map[string]any {
	return l.k.All()
}

// Keys returns all configured keys.
func (l *Loader) Keys() []string {
	return l.k.Keys()
}

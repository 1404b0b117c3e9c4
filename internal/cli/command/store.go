package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/specs-feup/specs-go/internal/cli/output"
	"github.com/specs-feup/specs-go/internal/infra/confloader"
	"github.com/specs-feup/specs-go/internal/storage"
	"github.com/specs-feup/specs-go/internal/telemetry/logger"
	"github.com/specs-feup/specs-go/pkg/datastore"
)

// StoreCommand returns the store subcommand group.
func StoreCommand() *cli.Command {
	return &cli.Command{
		Name:  "store",
		Usage: "Store values",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "List every key with its effective value",
				Action: storeShow,
			},
			{
				Name:      "get",
				Usage:     "Print the effective value of a key",
				ArgsUsage: "KEY",
				Action:    storeGet,
			},
			{
				Name:      "set",
				Usage:     "Set a value in the database",
				ArgsUsage: "KEY VALUE",
				Action:    storeSet,
			},
			{
				Name:      "unset",
				Usage:     "Remove a value from the database",
				ArgsUsage: "KEY",
				Action:    storeUnset,
			},
			{
				Name:   "validate",
				Usage:  "Check the resolved values against the schema",
				Action: storeValidate,
			},
			{
				Name:   "export",
				Usage:  "Print the values that are set, in loadable form",
				Action: storeExport,
			},
			{
				Name:   "save",
				Usage:  "Save the resolved values to the database",
				Action: storeSave,
			},
			{
				Name:   "load",
				Usage:  "Print the values saved in the database",
				Action: storeLoad,
			},
			WatchCommand(),
		},
	}
}

func storeShow(c *cli.Context) error {
	_, s, err := resolveStore(c)
	if err != nil {
		return err
	}
	return render(c, output.NewStoreView(s, ParseGlobalFlags(c).ShowSecrets))
}

func storeGet(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return cli.Exit("key name required", 2)
	}
	def, s, err := resolveStore(c)
	if err != nil {
		return err
	}
	k, ok := def.Key(name)
	if !ok {
		return datastore.ErrUndefinedKey.WithDetailsf("key '%s' in definition '%s'", name, def.Name())
	}

	var text string
	if v, ok := s.RawValue(name); ok {
		text = output.Text(k, v)
	} else if v, ok, err := k.DefaultAny(); err != nil {
		return err
	} else if ok {
		text = output.Text(k, v)
	} else if s.IsStrict() {
		return datastore.ErrMissingValue.WithDetailsf("key '%s' has no value and no default", name)
	}
	if !ParseGlobalFlags(c).ShowSecrets {
		text = logger.Redact(name, text)
	}

	if ParseGlobalFlags(c).Output == string(output.FormatTable) {
		_, err := fmt.Fprintln(writer(c), text)
		return err
	}
	return render(c, map[string]string{name: text})
}

func storeSet(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: store set KEY VALUE", 2)
	}
	name, text := c.Args().Get(0), c.Args().Get(1)

	return updateSaved(c, func(def *datastore.Definition, s *datastore.Store) error {
		k, ok := def.Key(name)
		if !ok {
			return datastore.ErrUndefinedKey.WithDetailsf("key '%s' in definition '%s'", name, def.Name())
		}
		return s.SetText(k, text)
	})
}

func storeUnset(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return cli.Exit("key name required", 2)
	}
	return updateSaved(c, func(_ *datastore.Definition, s *datastore.Store) error {
		if _, ok := s.RemoveRaw(name); !ok {
			return datastore.ErrNotPresent.WithDetailsf("no saved value for key '%s'", name)
		}
		return nil
	})
}

// updateSaved loads the saved store, applies fn and saves the result.
func updateSaved(c *cli.Context, fn func(*datastore.Definition, *datastore.Store) error) error {
	def, err := loadDefinition(c)
	if err != nil {
		return err
	}
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	s, err := engine.Load(c.Context, def, storeOptions(c)...)
	if err != nil {
		return err
	}
	if err := fn(def, s); err != nil {
		return err
	}
	return engine.Save(c.Context, s)
}

func storeValidate(c *cli.Context) error {
	def, err := loadDefinition(c)
	if err != nil {
		return err
	}

	engine, closeEngine, err := optionalEngine(c)
	if err != nil {
		return err
	}
	defer closeEngine()

	var problems output.Problems
	s, err := resolveWith(c, def, engine)
	if err != nil {
		problems = output.NewProblems(err)
	} else {
		problems = output.NewProblems(def.Validate(s))
		if s.IsStrict() {
			for _, k := range def.Keys() {
				if !s.HasValue(k) && !k.HasDefault() {
					problems = append(problems, fmt.Sprintf("key '%s' has no value and no default", k.Name()))
				}
			}
		}
	}

	if err := render(c, problems); err != nil {
		return err
	}
	if len(problems) > 0 {
		return cli.Exit(fmt.Sprintf("store '%s' is invalid (%d problems)", def.Name(), len(problems)), 1)
	}
	return nil
}

func storeExport(c *cli.Context) error {
	_, s, err := resolveStore(c)
	if err != nil {
		return err
	}
	return render(c, output.Values(s, ParseGlobalFlags(c).ShowSecrets))
}

func storeSave(c *cli.Context) error {
	def, err := loadDefinition(c)
	if err != nil {
		return err
	}
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	s, err := resolveWith(c, def, engine)
	if err != nil {
		return err
	}
	if err := engine.Save(c.Context, s); err != nil {
		return err
	}
	_, err = fmt.Fprintf(writer(c), "saved %d values of store '%s'\n", s.Len(), def.Name())
	return err
}

func storeLoad(c *cli.Context) error {
	def, err := loadDefinition(c)
	if err != nil {
		return err
	}
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	s, err := engine.Load(c.Context, def, storeOptions(c)...)
	if err != nil {
		return err
	}
	return render(c, output.Values(s, ParseGlobalFlags(c).ShowSecrets))
}

func storeOptions(c *cli.Context, extra ...datastore.Option) []datastore.Option {
	opts := []datastore.Option{datastore.WithObserver(logger.StoreObserver(Logger(c)))}
	if ParseGlobalFlags(c).Strict {
		opts = append(opts, datastore.WithStrict())
	}
	return append(opts, extra...)
}

func newLoader(c *cli.Context, extra ...datastore.Option) (*confloader.Loader, error) {
	flags := ParseGlobalFlags(c)
	overrides, err := flags.Overrides()
	if err != nil {
		return nil, err
	}
	opts := []confloader.Option{
		confloader.WithConfigFile(flags.Config),
		confloader.WithEnvPrefix(flags.EnvPrefix),
		confloader.WithOverrides(overrides),
		confloader.WithLogger(Logger(c)),
		confloader.WithStoreOptions(storeOptions(c, extra...)...),
	}
	if flags.StrictKeys {
		opts = append(opts, confloader.WithStrictKeys())
	}
	return confloader.NewLoader(opts...), nil
}

func resolveStore(c *cli.Context) (*datastore.Definition, *datastore.Store, error) {
	def, err := loadDefinition(c)
	if err != nil {
		return nil, nil, err
	}
	engine, closeEngine, err := optionalEngine(c)
	if err != nil {
		return nil, nil, err
	}
	defer closeEngine()

	s, err := resolveWith(c, def, engine)
	if err != nil {
		return nil, nil, err
	}
	return def, s, nil
}

// resolveWith builds the store for def from the values saved in engine,
// if any, with configured values on top.
func resolveWith(c *cli.Context, def *datastore.Definition, engine *storage.Engine, extra ...datastore.Option) (*datastore.Store, error) {
	loader, err := newLoader(c, extra...)
	if err != nil {
		return nil, err
	}
	configured, err := loader.Load(def)
	if err != nil {
		return nil, err
	}
	if engine == nil {
		return configured, nil
	}

	s, err := engine.Load(c.Context, def, storeOptions(c, extra...)...)
	if err != nil {
		return nil, err
	}
	s.SetAll(configured)
	return s, nil
}

func openEngine(c *cli.Context) (*storage.Engine, error) {
	flags := ParseGlobalFlags(c)
	if flags.DB == "" {
		return nil, cli.Exit("a database directory is required (--db)", 2)
	}
	cfg := storage.DefaultConfig(flags.DB)
	cfg.GCInterval = 0
	if flags.DBPassphrase != "" {
		cfg.Passphrase = []byte(flags.DBPassphrase)
	}
	return storage.Open(cfg, Logger(c))
}

// optionalEngine opens the database when --db is set. The returned func
// closes it.
func optionalEngine(c *cli.Context) (*storage.Engine, func(), error) {
	if ParseGlobalFlags(c).DB == "" {
		return nil, func() {}, nil
	}
	engine, err := openEngine(c)
	if err != nil {
		return nil, nil, err
	}
	return engine, func() { engine.Close() }, nil
}

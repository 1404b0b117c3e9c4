package command

import (
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/specs-feup/specs-go/internal/cli/output"
	"github.com/specs-feup/specs-go/internal/infra/buildinfo"
	"github.com/specs-feup/specs-go/internal/infra/confloader"
	"github.com/specs-feup/specs-go/internal/telemetry/logger"
)

const loggerMetadataKey = "logger"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "specs-opt",
		Usage:   "Inspect, validate and persist typed configuration stores",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			SchemaCommand(),
			StoreCommand(),
			DBCommand(),
		},
		Metadata: map[string]any{},
		Before:   setup,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "schema",
			Aliases: []string{"s"},
			Usage:   "Schema file (YAML or TOML) defining the store",
			EnvVars: []string{"SPECSOPT_SCHEMA"},
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML configuration file holding store values",
			EnvVars: []string{"SPECSOPT_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "env-prefix",
			Usage: "Prefix of environment variables holding store values",
			Value: confloader.DefaultEnvPrefix,
		},
		&cli.StringSliceFlag{
			Name:  "set",
			Usage: "Override a store value (KEY=VALUE, repeatable)",
		},
		&cli.BoolFlag{
			Name:  "strict-keys",
			Usage: "Fail on configuration entries the schema does not define",
		},
		&cli.BoolFlag{
			Name:  "strict",
			Usage: "Fail on reads of keys with neither value nor default",
		},
		&cli.StringFlag{
			Name:    "db",
			Usage:   "Badger database directory for saved stores",
			EnvVars: []string{"SPECSOPT_DB"},
		},
		&cli.StringFlag{
			Name:    "db-passphrase",
			Usage:   "Encrypt secret-looking values saved in --db",
			EnvVars: []string{"SPECSOPT_DB_PASSPHRASE"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml, toml",
			Value:   string(output.FormatTable),
		},
		&cli.BoolFlag{
			Name:  "no-headers",
			Usage: "Omit table headers",
		},
		&cli.BoolFlag{
			Name:  "show-secrets",
			Usage: "Show sensitive values instead of redacting them",
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level: debug, info, warn, error",
			EnvVars: []string{"SPECSOPT_LOG_LEVEL"},
			Value:   "warn",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Log format: text, json",
			Value: "text",
		},
	}
}

// GlobalFlags holds the parsed global flags.
type GlobalFlags struct {
	Schema       string
	Config       string
	EnvPrefix    string
	Set          []string
	StrictKeys   bool
	Strict       bool
	DB           string
	DBPassphrase string

	Output      string
	NoHeaders   bool
	ShowSecrets bool
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Schema:       c.String("schema"),
		Config:       c.String("config"),
		EnvPrefix:    c.String("env-prefix"),
		Set:          c.StringSlice("set"),
		StrictKeys:   c.Bool("strict-keys"),
		Strict:       c.Bool("strict"),
		DB:           c.String("db"),
		DBPassphrase: c.String("db-passphrase"),
		Output:       c.String("output"),
		NoHeaders:    c.Bool("no-headers"),
		ShowSecrets:  c.Bool("show-secrets"),
	}
}

// Overrides parses the --set values.
func (f *GlobalFlags) Overrides() (map[string]any, error) {
	out := make(map[string]any, len(f.Set))
	for _, kv := range f.Set {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --set %q, want KEY=VALUE", kv)
		}
		out[k] = v
	}
	return out, nil
}

func setup(c *cli.Context) error {
	cfg := logger.DefaultConfig()
	cfg.Level = c.String("log-level")
	cfg.Format = c.String("log-format")
	cfg.Output = c.App.ErrWriter
	l, err := logger.New(cfg)
	if err != nil {
		return err
	}
	logger.SetDefault(l)
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]any{}
	}
	c.App.Metadata[loggerMetadataKey] = l
	return nil
}

// Logger returns the command logger named after the running command.
func Logger(c *cli.Context) logger.Logger {
	l, ok := c.App.Metadata[loggerMetadataKey].(logger.Logger)
	if !ok {
		l = logger.Default()
	}
	if c.Command != nil && c.Command.Name != "" {
		return l.Named(c.Command.Name)
	}
	return l
}

// render writes data in the selected output format.
func render(c *cli.Context, data any) error {
	flags := ParseGlobalFlags(c)
	format, err := output.ParseFormat(flags.Output)
	if err != nil {
		return err
	}
	return output.NewFormatter(format, flags.NoHeaders).Format(writer(c), data)
}

func writer(c *cli.Context) io.Writer {
	if c.App.Writer != nil {
		return c.App.Writer
	}
	return io.Discard
}

package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/specs-feup/specs-go/internal/cli/output"
	"github.com/specs-feup/specs-go/pkg/datastore"
	"github.com/specs-feup/specs-go/pkg/datastore/schema"
)

// SchemaCommand returns the schema subcommand group.
func SchemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Schema inspection",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "List the keys the schema defines",
				Action: schemaShow,
			},
			{
				Name:   "describe",
				Usage:  "Print the store definition in its text form",
				Action: schemaDescribe,
			},
		},
	}
}

func schemaShow(c *cli.Context) error {
	def, err := loadDefinition(c)
	if err != nil {
		return err
	}
	return render(c, output.NewSchemaView(def))
}

func schemaDescribe(c *cli.Context) error {
	def, err := loadDefinition(c)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(writer(c), "%s\n%s", def.Name(), def)
	return err
}

func loadDefinition(c *cli.Context) (*datastore.Definition, error) {
	path := ParseGlobalFlags(c).Schema
	if path == "" {
		return nil, cli.Exit("a schema file is required (--schema)", 2)
	}
	def, err := schema.Load(path)
	if err != nil {
		return nil, err
	}
	Logger(c).Debug("schema loaded", "path", path, "store", def.Name(), "keys", def.Len())
	return def, nil
}

package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// DBCommand returns the db subcommand group.
func DBCommand() *cli.Command {
	return &cli.Command{
		Name:  "db",
		Usage: "Database maintenance",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List saved stores",
				Action: dbList,
			},
			{
				Name:      "delete",
				Usage:     "Delete a saved store",
				ArgsUsage: "STORE",
				Action:    dbDelete,
			},
			{
				Name:   "stats",
				Usage:  "Show database statistics",
				Action: dbStats,
			},
			{
				Name:   "gc",
				Usage:  "Run value log garbage collection",
				Action: dbGC,
			},
			{
				Name:      "backup",
				Usage:     "Write a full backup to FILE",
				ArgsUsage: "FILE",
				Action:    dbBackup,
			},
			{
				Name:      "restore",
				Usage:     "Replace the database content with a backup",
				ArgsUsage: "FILE",
				Action:    dbRestore,
			},
		},
	}
}

func dbList(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	names, err := engine.Names(c.Context)
	if err != nil {
		return err
	}
	if names == nil {
		names = []string{}
	}
	return render(c, names)
}

func dbDelete(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return cli.Exit("store name required", 2)
	}
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.Delete(c.Context, name); err != nil {
		return err
	}
	_, err = fmt.Fprintf(writer(c), "deleted store '%s'\n", name)
	return err
}

func dbStats(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	stats, err := engine.Stats(c.Context)
	if err != nil {
		return err
	}
	return render(c, map[string]string{
		"stores":         fmt.Sprint(stats.Stores),
		"values":         fmt.Sprint(stats.Values),
		"sealed":         fmt.Sprint(stats.Sealed),
		"lsm_size":       fmt.Sprint(stats.LSMSize),
		"value_log_size": fmt.Sprint(stats.ValueLogSize),
	})
}

func dbGC(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	n, err := engine.GC(c.Context)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(writer(c), "rewrote %d value log files\n", n)
	return err
}

func dbBackup(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return cli.Exit("backup file required", 2)
	}
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := engine.Backup(c.Context, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	Logger(c).Info("backup written", "path", path)
	return nil
}

func dbRestore(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return cli.Exit("backup file required", 2)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	return engine.Restore(c.Context, f)
}

package command

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/urfave/cli/v2"
)

func TestApp(t *testing.T) {
	app := App()
	if app.Name != "specs-opt" {
		t.Errorf("Name = %q, want %q", app.Name, "specs-opt")
	}

	var names []string
	for _, cmd := range app.Commands {
		names = append(names, cmd.Name)
	}
	if diff := cmp.Diff([]string{"schema", "store", "db"}, names); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreCommand_Subcommands(t *testing.T) {
	want := map[string]bool{
		"show": true, "get": true, "set": true, "unset": true, "validate": true,
		"export": true, "save": true, "load": true, "watch": true,
	}
	for _, sub := range StoreCommand().Subcommands {
		if !want[sub.Name] {
			t.Errorf("unexpected subcommand %q", sub.Name)
		}
		delete(want, sub.Name)
	}
	for name := range want {
		t.Errorf("missing subcommand %q", name)
	}
}

func TestGlobalFlags_Overrides(t *testing.T) {
	f := &GlobalFlags{Set: []string{"port=1", "db.password=a=b"}}
	got, err := f.Overrides()
	if err != nil {
		t.Fatalf("Overrides() error = %v", err)
	}
	want := map[string]any{"port": "1", "db.password": "a=b"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Overrides() mismatch (-want +got):\n%s", diff)
	}

	for _, bad := range []string{"port", "=1"} {
		f := &GlobalFlags{Set: []string{bad}}
		if _, err := f.Overrides(); err == nil {
			t.Errorf("Overrides(%q) should fail", bad)
		}
	}
}

func TestRun_MissingSchema(t *testing.T) {
	t.Setenv("SPECSOPT_SCHEMA", "")
	_, err := run(t, "schema", "show")

	var exit cli.ExitCoder
	if !errors.As(err, &exit) || exit.ExitCode() != 2 {
		t.Errorf("run() error = %v, want exit code 2", err)
	}
}

func TestRun_UnknownOutputFormat(t *testing.T) {
	schemaPath, _ := fixture(t, "")
	if _, err := run(t, "-s", schemaPath, "-o", "xml", "schema", "show"); err == nil {
		t.Error("run() with unknown output format should fail")
	}
}

package command

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/specs-feup/specs-go/pkg/datastore"
)

const testConfig = "port: 9090\ndb:\n  password: hunter2\n"

func TestStoreShow(t *testing.T) {
	schemaPath, configPath := fixture(t, testConfig)

	got, err := run(t, "-s", schemaPath, "-c", configPath, "store", "show")
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	want := "KEY          TYPE    VALUE           SOURCE\n" +
		"host         string  localhost       default\n" +
		"port         int     9090            set\n" +
		"db.password  string  ***REDACTED***  set\n" +
		"mode         Choice  safe            default\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("store show mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreGet(t *testing.T) {
	schemaPath, configPath := fixture(t, testConfig)
	base := []string{"-s", schemaPath, "-c", configPath}

	tests := []struct {
		name string
		env  map[string]string
		args []string
		want string
	}{
		{"from file", nil, []string{"store", "get", "port"}, "9090\n"},
		{"default", nil, []string{"store", "get", "host"}, "localhost\n"},
		{"env over file", map[string]string{"SPECS_PORT": "7"}, []string{"store", "get", "port"}, "7\n"},
		{"set over env", map[string]string{"SPECS_PORT": "7"}, []string{"--set", "port=1", "store", "get", "port"}, "1\n"},
		{"redacted", nil, []string{"store", "get", "db.password"}, "***REDACTED***\n"},
		{"show secrets", nil, []string{"--show-secrets", "store", "get", "db.password"}, "hunter2\n"},
		{"enum override", nil, []string{"--set", "mode=fast", "store", "get", "mode"}, "fast\n"},
		{"structured", nil, []string{"-o", "yaml", "store", "get", "port"}, "port: \"9090\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			got, err := run(t, append(append([]string{}, base...), tt.args...)...)
			if err != nil {
				t.Fatalf("run() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStoreGet_Errors(t *testing.T) {
	schemaPath, configPath := fixture(t, testConfig)

	_, err := run(t, "-s", schemaPath, "-c", configPath, "store", "get", "nope")
	if !errors.Is(err, datastore.ErrUndefinedKey) {
		t.Errorf("get undefined key error = %v, want ErrUndefinedKey", err)
	}

	_, emptyConfig := fixture(t, "")
	_, err = run(t, "-s", schemaPath, "-c", emptyConfig, "--strict", "store", "get", "db.password")
	if !errors.Is(err, datastore.ErrMissingValue) {
		t.Errorf("strict get error = %v, want ErrMissingValue", err)
	}

	got, err := run(t, "-s", schemaPath, "-c", emptyConfig, "store", "get", "db.password")
	if err != nil || got != "\n" {
		t.Errorf("non-strict get = %q, %v, want empty line", got, err)
	}
}

func TestStoreValidate(t *testing.T) {
	schemaPath, configPath := fixture(t, testConfig)
	if _, err := run(t, "-s", schemaPath, "-c", configPath, "store", "validate"); err != nil {
		t.Errorf("validate of a valid store error = %v", err)
	}

	_, badConfig := fixture(t, "port: many\nmode: reckless\n")
	got, err := run(t, "-s", schemaPath, "-c", badConfig, "store", "validate")
	var exit cli.ExitCoder
	if !errors.As(err, &exit) || exit.ExitCode() != 1 {
		t.Fatalf("validate error = %v, want exit code 1", err)
	}
	if !contains(got, "PROBLEM", "key port", "key mode") {
		t.Errorf("validate output = %q", got)
	}

	_, unknown := fixture(t, "colour: blue\n")
	_, err = run(t, "-s", schemaPath, "-c", unknown, "--strict-keys", "store", "validate")
	if err == nil {
		t.Error("validate with --strict-keys should report undefined entries")
	}

	_, empty := fixture(t, "")
	got, err = run(t, "-s", schemaPath, "-c", empty, "--strict", "-o", "json", "store", "validate")
	if err == nil || !contains(got, `"valid": false`, "db.password") {
		t.Errorf("strict validate = %q, %v", got, err)
	}
}

func TestStoreExport(t *testing.T) {
	schemaPath, configPath := fixture(t, testConfig)

	got, err := run(t, "-s", schemaPath, "-c", configPath, "--show-secrets", "-o", "yaml", "store", "export")
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	var values map[string]string
	if err := yaml.Unmarshal([]byte(got), &values); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	want := map[string]string{"port": "9090", "db.password": "hunter2"}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Errorf("export mismatch (-want +got):\n%s", diff)
	}

	// The export loads back as a configuration file.
	exported := writeFile(t, t.TempDir(), "exported.yaml", got)
	again, err := run(t, "-s", schemaPath, "-c", exported, "store", "get", "port")
	if err != nil || again != "9090\n" {
		t.Errorf("get from export = %q, %v", again, err)
	}
}

func TestStore_DatabaseRoundTrip(t *testing.T) {
	schemaPath, configPath := fixture(t, testConfig)
	db := filepath.Join(t.TempDir(), "db")

	got, err := run(t, "-s", schemaPath, "-c", configPath, "--db", db, "store", "save")
	if err != nil {
		t.Fatalf("save error = %v", err)
	}
	if got != "saved 2 values of store 'server'\n" {
		t.Errorf("save output = %q", got)
	}

	if _, err := run(t, "-s", schemaPath, "--db", db, "store", "set", "port", "1"); err != nil {
		t.Fatalf("set error = %v", err)
	}
	if _, err := run(t, "-s", schemaPath, "--db", db, "store", "set", "port", "x"); !errors.Is(err, datastore.ErrDecode) {
		t.Errorf("set of undecodable value error = %v, want ErrDecode", err)
	}

	// Without --config the saved values are the only source.
	got, err = run(t, "-s", schemaPath, "--db", db, "store", "get", "port")
	if err != nil || got != "1\n" {
		t.Errorf("get from db = %q, %v, want 1", got, err)
	}
	// Configured values win over saved ones.
	got, err = run(t, "-s", schemaPath, "-c", configPath, "--db", db, "store", "get", "port")
	if err != nil || got != "9090\n" {
		t.Errorf("get with config = %q, %v, want 9090", got, err)
	}

	got, err = run(t, "-s", schemaPath, "--db", db, "-o", "yaml", "store", "load")
	if err != nil {
		t.Fatalf("load error = %v", err)
	}
	var values map[string]string
	if err := yaml.Unmarshal([]byte(got), &values); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	if diff := cmp.Diff(map[string]string{"port": "1", "db.password": "***REDACTED***"}, values); diff != "" {
		t.Errorf("load mismatch (-want +got):\n%s", diff)
	}

	if _, err := run(t, "-s", schemaPath, "--db", db, "store", "unset", "port"); err != nil {
		t.Fatalf("unset error = %v", err)
	}
	if _, err := run(t, "-s", schemaPath, "--db", db, "store", "unset", "port"); !errors.Is(err, datastore.ErrNotPresent) {
		t.Errorf("second unset error = %v, want ErrNotPresent", err)
	}
	got, _ = run(t, "-s", schemaPath, "--db", db, "store", "get", "port")
	if got != "8080\n" {
		t.Errorf("get after unset = %q, want default", got)
	}
}

func TestStore_RequiresDatabase(t *testing.T) {
	schemaPath, _ := fixture(t, "")
	t.Setenv("SPECSOPT_DB", "")

	_, err := run(t, "-s", schemaPath, "store", "set", "port", "1")
	var exit cli.ExitCoder
	if !errors.As(err, &exit) || exit.ExitCode() != 2 {
		t.Errorf("set without --db error = %v, want exit code 2", err)
	}
}

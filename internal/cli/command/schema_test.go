package command

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSchemaShow(t *testing.T) {
	schemaPath, _ := fixture(t, "")

	got, err := run(t, "-s", schemaPath, "schema", "show")
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	want := "NAME         TYPE    DEFAULT    LABEL\n" +
		"host         string  localhost  Host name\n" +
		"port         int     8080       -\n" +
		"db.password  string  -          -\n" +
		"mode         enum    safe       -\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("schema show mismatch (-want +got):\n%s", diff)
	}
}

func TestSchemaShow_JSON(t *testing.T) {
	schemaPath, _ := fixture(t, "")

	got, err := run(t, "-s", schemaPath, "-o", "json", "schema", "show")
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !contains(got, `"name": "server"`, `"type": "enum"`, `"default": "safe"`) {
		t.Errorf("schema show -o json = %s", got)
	}
}

func TestSchemaDescribe(t *testing.T) {
	schemaPath, _ := fixture(t, "")

	got, err := run(t, "-s", schemaPath, "schema", "describe")
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	want := "server\n" +
		"host (string = localhost)\n" +
		"port (int = 8080)\n" +
		"db.password (string)\n" +
		"mode (Choice = safe)\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("schema describe mismatch (-want +got):\n%s", diff)
	}
}

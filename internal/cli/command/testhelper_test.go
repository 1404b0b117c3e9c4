package command

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/urfave/cli/v2"
)

const testSchema = `
name: server
keys:
  - name: host
    type: string
    default: localhost
    label: Host name
  - name: port
    type: int
    default: 8080
  - name: db.password
    type: string
  - name: mode
    type: enum
    values: [fast, safe]
    default: safe
`

// syncBuffer is a bytes.Buffer safe for concurrent writes and reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// writeFile writes content to name under dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", name, err)
	}
	return path
}

// testApp returns an app writing to buffers that never exits the process.
func testApp() (*cli.App, *syncBuffer, *syncBuffer) {
	out, errOut := &syncBuffer{}, &syncBuffer{}
	app := App()
	app.Writer = out
	app.ErrWriter = errOut
	app.ExitErrHandler = func(*cli.Context, error) {}
	return app, out, errOut
}

// run executes specs-opt with args and returns what it wrote to stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runContext(context.Background(), t, args...)
}

func runContext(ctx context.Context, t *testing.T, args ...string) (string, error) {
	t.Helper()
	app, out, _ := testApp()
	err := app.RunContext(ctx, append([]string{"specs-opt"}, args...))
	return out.String(), err
}

// fixture writes the test schema and a configuration file.
func fixture(t *testing.T, config string) (schemaPath, configPath string) {
	t.Helper()
	dir := t.TempDir()
	return writeFile(t, dir, "server.yaml", testSchema), writeFile(t, dir, "config.yaml", config)
}

// contains reports whether s contains every part.
func contains(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}

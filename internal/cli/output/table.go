package output

import (
	"io"
	"sort"
	"strings"
	"text/tabwriter"
)

// Tabler is implemented by results with a tabular form.
type Tabler interface {
	Table() *Table
}

// Documenter is implemented by results whose structured form (json, yaml,
// toml) differs from the value itself.
type Documenter interface {
	Document() any
}

func document(data any) any {
	if d, ok := data.(Documenter); ok {
		return d.Document()
	}
	return data
}

// TableFormatter formats data as an aligned text table.
type TableFormatter struct {
	NoHeaders bool
}

// Format formats data as a table. Supported values are Tabler, Table,
// map[string]string and []string; anything else is written as YAML.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	if data == nil {
		return nil
	}

	var table *Table
	switch v := data.(type) {
	case Tabler:
		table = v.Table()
	case *Table:
		table = v
	case Table:
		table = &v
	case map[string]string:
		table = mapToTable(v)
	case []string:
		table = &Table{Headers: []string{"NAME"}}
		for _, s := range v {
			table.AddRow(s)
		}
	default:
		return (&YAMLFormatter{}).Format(w, data)
	}
	return table.RenderWithOptions(w, f.NoHeaders)
}

func mapToTable(m map[string]string) *Table {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	table := &Table{Headers: []string{"KEY", "VALUE"}}
	for _, k := range keys {
		table.AddRow(k, cell(m[k]))
	}
	return table
}

// cell renders an empty value as "-" and keeps multi-line values on one
// line.
func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "\n", `\n`)
}

// Table represents tabular data.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Render renders the table to the writer.
func (t *Table) Render(w io.Writer) error {
	return t.RenderWithOptions(w, false)
}

// RenderWithOptions renders the table with options.
func (t *Table) RenderWithOptions(w io.Writer, noHeaders bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if !noHeaders && len(t.Headers) > 0 {
		if _, err := io.WriteString(tw, strings.Join(t.Headers, "\t")+"\n"); err != nil {
			return err
		}
	}
	for _, row := range t.Rows {
		if _, err := io.WriteString(tw, strings.Join(row, "\t")+"\n"); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

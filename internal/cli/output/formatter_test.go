package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"toml", FormatTOML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format Format
		want   Formatter
	}{
		{FormatJSON, &JSONFormatter{}},
		{FormatYAML, &YAMLFormatter{}},
		{FormatTOML, &TOMLFormatter{}},
		{FormatTable, &TableFormatter{}},
		{"unknown", &TableFormatter{}},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			got := NewFormatter(tt.format, false)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("NewFormatter() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStructuredFormatters(t *testing.T) {
	values := map[string]string{"server.port": "8080", "name": "demo"}

	var buf bytes.Buffer
	if err := (&JSONFormatter{}).Format(&buf, values); err != nil {
		t.Fatalf("JSON Format() error = %v", err)
	}
	var fromJSON map[string]string
	if err := json.Unmarshal(buf.Bytes(), &fromJSON); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if diff := cmp.Diff(values, fromJSON); diff != "" {
		t.Errorf("JSON mismatch (-want +got):\n%s", diff)
	}

	buf.Reset()
	if err := (&YAMLFormatter{}).Format(&buf, values); err != nil {
		t.Fatalf("YAML Format() error = %v", err)
	}
	var fromYAML map[string]string
	if err := yaml.Unmarshal(buf.Bytes(), &fromYAML); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	if diff := cmp.Diff(values, fromYAML); diff != "" {
		t.Errorf("YAML mismatch (-want +got):\n%s", diff)
	}

	buf.Reset()
	if err := (&TOMLFormatter{}).Format(&buf, values); err != nil {
		t.Fatalf("TOML Format() error = %v", err)
	}
	var fromTOML map[string]string
	if _, err := toml.Decode(buf.String(), &fromTOML); err != nil {
		t.Fatalf("toml.Decode() error = %v", err)
	}
	if diff := cmp.Diff(values, fromTOML); diff != "" {
		t.Errorf("TOML mismatch (-want +got):\n%s", diff)
	}
}

func TestTOMLFormatter_WrapsLists(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TOMLFormatter{}).Format(&buf, []string{"a", "b"}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	var doc struct{ Items []string }
	if _, err := toml.Decode(buf.String(), &doc); err != nil {
		t.Fatalf("toml.Decode() error = %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, doc.Items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestTableFormatter(t *testing.T) {
	tests := []struct {
		name      string
		data      any
		noHeaders bool
		want      string
	}{
		{
			name: "table",
			data: &Table{Headers: []string{"NAME", "VALUE"}, Rows: [][]string{{"a", "1"}, {"long", "2"}}},
			want: "NAME  VALUE\na     1\nlong  2\n",
		},
		{
			name:      "no headers",
			data:      Table{Headers: []string{"NAME"}, Rows: [][]string{{"a"}}},
			noHeaders: true,
			want:      "a\n",
		},
		{
			name: "map sorted by key",
			data: map[string]string{"b": "", "a": "x\ny"},
			want: "KEY  VALUE\na    x\\ny\nb    -\n",
		},
		{
			name: "names",
			data: []string{"one", "two"},
			want: "NAME\none\ntwo\n",
		},
		{
			name: "fallback to yaml",
			data: struct {
				A int `yaml:"a"`
			}{A: 1},
			want: "a: 1\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			f := &TableFormatter{NoHeaders: tt.noHeaders}
			if err := f.Format(&buf, tt.data); err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}

	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, nil); err != nil || buf.Len() != 0 {
		t.Errorf("Format(nil) = %q, %v", buf.String(), err)
	}
}

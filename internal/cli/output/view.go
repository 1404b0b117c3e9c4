package output

import (
	"fmt"
	"sort"

	"github.com/specs-feup/specs-go/internal/telemetry/logger"
	"github.com/specs-feup/specs-go/pkg/datastore"
	"github.com/specs-feup/specs-go/pkg/datastore/schema"
)

// Value sources.
const (
	SourceSet     = "set"
	SourceDefault = "default"
	SourceUnset   = "unset"
)

// Entry is one row of a store listing.
type Entry struct {
	Key    string `json:"key" yaml:"key" toml:"key"`
	Type   string `json:"type" yaml:"type" toml:"type"`
	Value  string `json:"value,omitempty" yaml:"value,omitempty" toml:"value,omitempty"`
	Source string `json:"source" yaml:"source" toml:"source"`
}

// StoreView lists the keys of a store with their effective values.
type StoreView struct {
	Name    string  `json:"name" yaml:"name" toml:"name"`
	Entries []Entry `json:"entries" yaml:"entries" toml:"entries"`
}

// NewStoreView lists every key of the store's definition followed by any
// other stored key. Sensitive values are redacted unless showSecrets is set.
func NewStoreView(s *datastore.Store, showSecrets bool) StoreView {
	view := StoreView{Name: s.Name()}
	seen := make(map[string]bool)

	if def, ok := s.Definition(); ok {
		for _, k := range def.Keys() {
			seen[k.Name()] = true
			view.Entries = append(view.Entries, entry(s, k, showSecrets))
		}
	}
	for _, name := range s.KeysWithValues() {
		if seen[name] {
			continue
		}
		k, _ := s.KeyOf(name)
		view.Entries = append(view.Entries, entry(s, k, showSecrets))
	}
	return view
}

func entry(s *datastore.Store, k datastore.AnyKey, showSecrets bool) Entry {
	e := Entry{Key: k.Name(), Type: k.TypeName(), Source: SourceUnset}
	if v, ok := s.RawValue(k.Name()); ok {
		e.Value, e.Source = Text(k, v), SourceSet
	} else if v, ok, err := k.DefaultAny(); err == nil && ok {
		e.Value, e.Source = Text(k, v), SourceDefault
	}
	if !showSecrets {
		e.Value = logger.Redact(e.Key, e.Value)
	}
	return e
}

// Table implements Tabler.
func (v StoreView) Table() *Table {
	t := &Table{Headers: []string{"KEY", "TYPE", "VALUE", "SOURCE"}}
	for _, e := range v.Entries {
		t.AddRow(e.Key, e.Type, cell(e.Value), e.Source)
	}
	return t
}

// Text returns the encoded form of v, falling back to its printed form for
// keys without a codec.
func Text(k datastore.AnyKey, v any) string {
	if text, err := k.EncodeAny(v); err == nil {
		return text
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v)
}

// Values returns the encoded values set in s. The result can be loaded
// back as a configuration file.
func Values(s *datastore.Store, showSecrets bool) map[string]string {
	out := make(map[string]string, s.Len())
	for _, name := range s.KeysWithValues() {
		k, _ := s.KeyOf(name)
		if def, ok := s.Definition(); ok {
			if dk, ok := def.Key(name); ok {
				k = dk
			}
		}
		v, _ := s.RawValue(name)
		text := Text(k, v)
		if !showSecrets {
			text = logger.Redact(name, text)
		}
		out[name] = text
	}
	return out
}

// SchemaView describes a definition.
type SchemaView struct {
	File schema.File
}

// NewSchemaView describes def.
func NewSchemaView(def *datastore.Definition) SchemaView {
	return SchemaView{File: schema.Describe(def)}
}

// Table implements Tabler.
func (v SchemaView) Table() *Table {
	t := &Table{Headers: []string{"NAME", "TYPE", "DEFAULT", "LABEL"}}
	for _, f := range v.File.Keys {
		def := ""
		if f.Default != nil {
			def = fmt.Sprint(f.Default)
		}
		t.AddRow(f.Name, f.Type, cell(def), cell(f.Label))
	}
	return t
}

// Document implements Documenter.
func (v SchemaView) Document() any { return v.File }

// Problems lists validation failures.
type Problems []string

// NewProblems splits a joined validation error into one line per failure.
func NewProblems(err error) Problems {
	if err == nil {
		return Problems{}
	}
	var p Problems
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			p = append(p, e.Error())
		}
	} else {
		p = append(p, err.Error())
	}
	sort.Strings(p)
	return p
}

// Table implements Tabler.
func (p Problems) Table() *Table {
	t := &Table{Headers: []string{"PROBLEM"}}
	for _, s := range p {
		t.AddRow(s)
	}
	return t
}

// Document implements Documenter.
func (p Problems) Document() any {
	return map[string]any{"valid": len(p) == 0, "problems": []string(p)}
}

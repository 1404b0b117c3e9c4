// Package schema reads store definitions from YAML or TOML schema files.
//
// A schema lists keys in order:
//
//	name: server
//	keys:
//	  - name: host
//	    type: string
//	    default: localhost
//	  - name: mode
//	    type: enum
//	    values: [fast, safe]
//	    default: safe
//
// Supported types are string, bool, int, int64, float, duration, list and
// enum. Every key built from a schema carries a codec, so stores defined by
// a schema can be filled from text.
package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/specs-feup/specs-go/pkg/datastore"
	"github.com/specs-feup/specs-go/pkg/enumhelper"
	"github.com/specs-feup/specs-go/pkg/errcode"
)

// ErrInvalidSchema indicates a malformed schema document.
var ErrInvalidSchema = errcode.New("SP-SCHEMA-4001", "invalid schema")

// Key types.
const (
	TypeString   = "string"
	TypeBool     = "bool"
	TypeInt      = "int"
	TypeInt64    = "int64"
	TypeFloat    = "float"
	TypeDuration = "duration"
	TypeList     = "list"
	TypeEnum     = "enum"
)

// File is the document form of a definition.
type File struct {
	Name string  `yaml:"name" toml:"name" json:"name"`
	Keys []Field `yaml:"keys" toml:"keys" json:"keys"`
}

// Field describes one key.
type Field struct {
	Name    string   `yaml:"name" toml:"name" json:"name"`
	Type    string   `yaml:"type" toml:"type" json:"type"`
	Default any      `yaml:"default,omitempty" toml:"default,omitempty" json:"default,omitempty"`
	Label   string   `yaml:"label,omitempty" toml:"label,omitempty" json:"label,omitempty"`
	Values  []string `yaml:"values,omitempty" toml:"values,omitempty" json:"values,omitempty"`
}

// Choice is the value type of enum keys.
type Choice string

func (c Choice) String() string { return string(c) }

// Load reads a schema file. The extension selects the parser: .toml for
// TOML, anything else for YAML.
func Load(path string) (*datastore.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema %s: %w", path, err)
	}

	var f File
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &f)
	} else {
		err = yaml.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, ErrInvalidSchema.WithDetailsf("parsing %s", path).WithCause(err)
	}
	if f.Name == "" {
		f.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return f.Definition()
}

// Parse reads a YAML schema document.
func Parse(data []byte) (*datastore.Definition, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, ErrInvalidSchema.WithCause(err)
	}
	return f.Definition()
}

// Definition builds the definition described by f.
func (f File) Definition() (*datastore.Definition, error) {
	if f.Name == "" {
		return nil, ErrInvalidSchema.WithDetails("schema has no name")
	}
	keys := make([]datastore.AnyKey, 0, len(f.Keys))
	for i, field := range f.Keys {
		k, err := field.key()
		if err != nil {
			return nil, fmt.Errorf("key %d of schema %q: %w", i, f.Name, err)
		}
		keys = append(keys, k)
	}
	def, err := datastore.NewDefinition(f.Name, keys...)
	if err != nil {
		return nil, ErrInvalidSchema.WithDetailsf("schema %q", f.Name).WithCause(err)
	}
	return def, nil
}

func (f Field) key() (datastore.AnyKey, error) {
	if f.Name == "" {
		return nil, ErrInvalidSchema.WithDetails("key has no name")
	}
	switch strings.ToLower(f.Type) {
	case TypeString, "":
		return build(f, datastore.StringCodec)
	case TypeBool:
		return build(f, datastore.BoolCodec)
	case TypeInt:
		return build(f, datastore.IntCodec)
	case TypeInt64:
		return build(f, datastore.Int64Codec)
	case TypeFloat:
		return build(f, datastore.Float64Codec)
	case TypeDuration:
		return build(f, datastore.DurationCodec)
	case TypeList:
		return build(f, datastore.StringListCodec)
	case TypeEnum:
		if len(f.Values) == 0 {
			return nil, ErrInvalidSchema.WithDetailsf("enum key '%s' has no values", f.Name)
		}
		choices := make([]Choice, len(f.Values))
		for i, v := range f.Values {
			choices[i] = Choice(v)
		}
		return build(f, datastore.EnumCodec(enumhelper.New(choices)))
	default:
		return nil, ErrInvalidSchema.WithDetailsf("key '%s' has unknown type '%s'", f.Name, f.Type)
	}
}

func build[T any](f Field, codec datastore.Codec[T]) (datastore.AnyKey, error) {
	k := datastore.NewKey[T](f.Name).WithCodec(codec)
	if f.Label != "" {
		k = k.WithLabel(f.Label)
	}
	if f.Default == nil {
		return k, nil
	}

	text := defaultText(f.Default)
	if _, err := codec.Decode(text); err != nil {
		return nil, ErrInvalidSchema.WithDetailsf("default %q of key '%s'", text, f.Name).WithCause(err)
	}
	k, err := k.WithDefaultString(text)
	if err != nil {
		return nil, err
	}
	return k, nil
}

func defaultText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, len(t))
		for i, p := range t {
			parts[i] = fmt.Sprint(p)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}

// Describe renders def back into its document form. Keys whose type has no
// schema name are reported with their Go type name.
func Describe(def *datastore.Definition) File {
	f := File{Name: def.Name()}
	for _, k := range def.Keys() {
		field := Field{Name: k.Name(), Type: schemaType(k)}
		if k.Label() != k.Name() {
			field.Label = k.Label()
		}
		if v, ok, err := k.DefaultAny(); err == nil && ok {
			if text, err := k.EncodeAny(v); err == nil {
				field.Default = text
			} else {
				field.Default = fmt.Sprint(v)
			}
		}
		f.Keys = append(f.Keys, field)
	}
	return f
}

func schemaType(k datastore.AnyKey) string {
	switch k.TypeName() {
	case "string":
		return TypeString
	case "bool":
		return TypeBool
	case "int":
		return TypeInt
	case "int64":
		return TypeInt64
	case "float64":
		return TypeFloat
	case "Duration":
		return TypeDuration
	case "[]string":
		return TypeList
	case "Choice":
		return TypeEnum
	default:
		return k.TypeName()
	}
}

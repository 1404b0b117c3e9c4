package datastore

import (
	"reflect"
)

// AnyKey is the type-erased view of a Key, used where keys of different
// value types travel together (stores, definitions, loaders).
//
// Two keys are the same key iff their names are equal.
type AnyKey interface {
	Name() string
	ValueType() reflect.Type
	TypeName() string
	Label() string
	HasDefault() bool
	HasCodec() bool
	Definition() (*Definition, bool)
	String() string

	// DefaultAny evaluates the default supplier.
	DefaultAny() (any, bool, error)
	// DecodeAny runs the key's codec over text.
	DecodeAny(text string) (any, error)
	// EncodeAny renders a value of the key's type with its codec.
	EncodeAny(value any) (string, error)
	// CopyAny clones value with the key's copy function, if any.
	CopyAny(value any) any

	applySetter(value any, s *Store) any
}

// CustomGetter transforms a value read from a store.
type CustomGetter[T any] func(value T, s *Store) T

// CustomSetter transforms a value before it is written to a store.
type CustomSetter[T any] func(value T, s *Store) T

// PanelProvider builds an editing panel for a key. Panels are opaque here.
type PanelProvider[T any] func(key Key[T], s *Store) any

// Key describes a named, typed slot of a Store.
//
// Keys are immutable: every With* method returns a modified copy and leaves
// the receiver untouched, so a key can be shared by any number of stores.
type Key[T any] struct {
	name      string
	valueType reflect.Type
	defaultFn func() (T, error)
	codec     Codec[T]
	getter    CustomGetter[T]
	setter    CustomSetter[T]
	panel     PanelProvider[T]
	label     string
	def       *Definition
	copyFn    func(T) T
}

// NewKey creates a key for values of type T.
func NewKey[T any](name string) Key[T] {
	return Key[T]{
		name:      name,
		valueType: reflect.TypeFor[T](),
	}
}

// ObjectKey creates an untyped key accepting any value.
func ObjectKey(name string) Key[any] {
	return NewKey[any](name)
}

// Name returns the key's identity.
func (k Key[T]) Name() string { return k.name }

// ValueType returns the runtime type values must be assignable to.
func (k Key[T]) ValueType() reflect.Type { return k.valueType }

// TypeName returns the short name of the value type.
func (k Key[T]) TypeName() string {
	return typeName(k.valueType)
}

func typeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() == reflect.Interface && t.NumMethod() == 0 {
		return "any"
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

// Equal reports whether other names the same slot.
func (k Key[T]) Equal(other AnyKey) bool {
	return other != nil && k.name == other.Name()
}

// WithDefault returns a copy whose default is produced by supplier.
// The supplier runs on every Default call, never at construction.
func (k Key[T]) WithDefault(supplier func() T) Key[T] {
	if supplier == nil {
		k.defaultFn = nil
		return k
	}
	k.defaultFn = func() (T, error) { return supplier(), nil }
	return k
}

// WithDefaultValue returns a copy whose default is value.
func (k Key[T]) WithDefaultValue(value T) Key[T] {
	return k.WithDefault(func() T { return value })
}

// WithDefaultString returns a copy whose default is text run through the
// key's codec. It fails if no codec is set. Decoding happens when the
// default is evaluated.
func (k Key[T]) WithDefaultString(text string) (Key[T], error) {
	if k.codec == nil {
		return k, ErrMissingDecoder.WithDetailsf("cannot set default string for key '%s'", k.name)
	}
	codec := k.codec
	name := k.name
	k.defaultFn = func() (T, error) {
		v, err := codec.Decode(text)
		if err != nil {
			return v, ErrDecode.WithDetailsf("default of key '%s' from %q", name, text).WithCause(err)
		}
		return v, nil
	}
	return k, nil
}

// Default evaluates the default supplier. Decode failures of a string
// default report no default; Get surfaces them as ErrDecode.
func (k Key[T]) Default() (T, bool) {
	v, ok, err := k.defaultValue()
	if err != nil {
		var zero T
		return zero, false
	}
	return v, ok
}

func (k Key[T]) defaultValue() (T, bool, error) {
	var zero T
	if k.defaultFn == nil {
		return zero, false, nil
	}
	v, err := k.defaultFn()
	if err != nil {
		return zero, false, err
	}
	if isNil(v) {
		return zero, false, nil
	}
	return v, true, nil
}

// HasDefault reports whether a default supplier is set.
func (k Key[T]) HasDefault() bool { return k.defaultFn != nil }

// DefaultAny implements AnyKey.
func (k Key[T]) DefaultAny() (any, bool, error) {
	v, ok, err := k.defaultValue()
	if err != nil || !ok {
		return nil, false, err
	}
	return v, true, nil
}

// WithCodec returns a copy using codec for text conversion.
func (k Key[T]) WithCodec(codec Codec[T]) Key[T] {
	k.codec = codec
	return k
}

// Codec returns the key's codec, if any.
func (k Key[T]) Codec() (Codec[T], bool) {
	return k.codec, k.codec != nil
}

// HasCodec reports whether the key can be populated from text.
func (k Key[T]) HasCodec() bool { return k.codec != nil }

// Decode runs the key's codec over text.
func (k Key[T]) Decode(text string) (T, error) {
	if k.codec == nil {
		var zero T
		return zero, ErrMissingDecoder.WithDetailsf("key '%s'", k.name)
	}
	v, err := k.codec.Decode(text)
	if err != nil {
		var zero T
		return zero, ErrDecode.WithDetailsf("key '%s' from %q", k.name, text).WithCause(err)
	}
	return v, nil
}

// DecodeAny implements AnyKey.
func (k Key[T]) DecodeAny(text string) (any, error) {
	return k.Decode(text)
}

// EncodeAny implements AnyKey.
func (k Key[T]) EncodeAny(value any) (string, error) {
	if k.codec == nil {
		return "", ErrMissingDecoder.WithDetailsf("cannot encode value of key '%s'", k.name)
	}
	v, ok := value.(T)
	if !ok {
		return "", ErrTypeMismatch.WithDetailsf("value '%v' of type '%T' is not compatible with key '%s'", value, value, k.name)
	}
	return k.codec.Encode(v), nil
}

// WithCustomGetter returns a copy applying getter to every read.
func (k Key[T]) WithCustomGetter(getter CustomGetter[T]) Key[T] {
	k.getter = getter
	return k
}

// CustomGetter returns the read hook, if any.
func (k Key[T]) CustomGetter() (CustomGetter[T], bool) {
	return k.getter, k.getter != nil
}

// WithCustomSetter returns a copy applying setter to every write.
func (k Key[T]) WithCustomSetter(setter CustomSetter[T]) Key[T] {
	k.setter = setter
	return k
}

// CustomSetter returns the write hook, if any.
func (k Key[T]) CustomSetter() (CustomSetter[T], bool) {
	return k.setter, k.setter != nil
}

func (k Key[T]) applySetter(value any, s *Store) any {
	if k.setter == nil {
		return value
	}
	v, ok := value.(T)
	if !ok {
		return value
	}
	return k.setter(v, s)
}

// WithCopyFunction returns a copy whose values are cloned with fn when a
// store is copied.
func (k Key[T]) WithCopyFunction(fn func(T) T) Key[T] {
	k.copyFn = fn
	return k
}

// CopyAny implements AnyKey.
func (k Key[T]) CopyAny(value any) any {
	if k.copyFn == nil {
		return value
	}
	v, ok := value.(T)
	if !ok {
		return value
	}
	return k.copyFn(v)
}

// WithLabel returns a copy with a display label.
func (k Key[T]) WithLabel(label string) Key[T] {
	k.label = label
	return k
}

// Label returns the display label, or the name when none is set.
func (k Key[T]) Label() string {
	if k.label == "" {
		return k.name
	}
	return k.label
}

// WithDefinition returns a copy bound to the definition describing its
// values (for keys holding nested stores).
func (k Key[T]) WithDefinition(def *Definition) Key[T] {
	k.def = def
	return k
}

// Definition returns the bound definition, if any.
func (k Key[T]) Definition() (*Definition, bool) {
	return k.def, k.def != nil
}

// WithPanelProvider returns a copy carrying a panel provider.
func (k Key[T]) WithPanelProvider(provider PanelProvider[T]) Key[T] {
	k.panel = provider
	return k
}

// Panel builds the key's panel for s.
func (k Key[T]) Panel(s *Store) (any, error) {
	if k.panel == nil {
		return nil, ErrNoPanel.WithDetailsf("key '%s' of type '%s'", k.name, k.TypeName())
	}
	return k.panel(k, s), nil
}

// String renders the key as "name (Type = default)".
func (k Key[T]) String() string {
	return formatKey(k)
}

// isNil reports whether v is nil or a nil pointer, map, slice, func,
// channel or interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

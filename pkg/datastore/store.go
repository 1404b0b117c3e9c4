package datastore

import (
	"maps"
	"reflect"
	"slices"
	"strings"
)

// View is the read-only face of a store used for merging.
type View interface {
	Name() string
	ValuesMap() map[string]any
}

// Store holds the current values for a set of keys.
//
// Values are kept type-erased by key name, next to the key that wrote them.
// A Store is meant for a single owner and does no locking.
type Store struct {
	name     string
	values   map[string]any
	keys     map[string]AnyKey
	strict   bool
	def      *Definition
	observer Observer
}

// Option configures a Store.
type Option func(*Store)

// WithStrict makes reads of unset keys without default fail.
func WithStrict() Option {
	return func(s *Store) {
		s.strict = true
	}
}

// WithObserver reports every store operation to o.
func WithObserver(o Observer) Option {
	return func(s *Store) {
		s.observer = o
	}
}

// WithDefinitionOf binds the store to def.
func WithDefinitionOf(def *Definition) Option {
	return func(s *Store) {
		s.def = def
	}
}

// New creates an empty store.
func New(name string, opts ...Option) *Store {
	s := &Store{
		name:   name,
		values: make(map[string]any),
		keys:   make(map[string]AnyKey),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromDefinition creates an empty store named after def and bound to it.
func NewFromDefinition(def *Definition, opts ...Option) *Store {
	return New(def.Name(), append([]Option{WithDefinitionOf(def)}, opts...)...)
}

// NewCopy creates a store holding the values of src. Values whose key has a
// copy function are cloned with it.
func NewCopy(name string, src *Store, opts ...Option) *Store {
	s := New(name, opts...)
	s.strict = s.strict || src.strict
	if s.def == nil {
		s.def = src.def
	}
	for n, v := range src.values {
		k := src.keys[n]
		cp := k.CopyAny(v)
		if isNil(cp) {
			continue
		}
		s.values[n] = cp
		s.keys[n] = k
	}
	return s
}

// Name returns the store name.
func (s *Store) Name() string { return s.name }

// Definition returns the definition the store is bound to, if any.
func (s *Store) Definition() (*Definition, bool) {
	return s.def, s.def != nil
}

// SetStrict toggles strict mode.
func (s *Store) SetStrict(strict bool) { s.strict = strict }

// IsStrict reports whether strict mode is on.
func (s *Store) IsStrict() bool { return s.strict }

// HasValue reports whether a value is stored for k. Defaults do not count.
func (s *Store) HasValue(k AnyKey) bool {
	_, ok := s.values[k.Name()]
	return ok
}

// RawValue returns the stored value under name.
func (s *Store) RawValue(name string) (any, bool) {
	v, ok := s.values[name]
	return v, ok
}

// KeyOf returns the key that wrote the value under name.
func (s *Store) KeyOf(name string) (AnyKey, bool) {
	k, ok := s.keys[name]
	return k, ok
}

// KeysWithValues returns the names with a stored value, sorted.
func (s *Store) KeysWithValues() []string {
	return slices.Sorted(maps.Keys(s.values))
}

// ValuesMap returns a copy of the stored values.
func (s *Store) ValuesMap() map[string]any {
	return maps.Clone(s.values)
}

// Len returns the number of stored values.
func (s *Store) Len() int { return len(s.values) }

// SetRaw stores v under k after checking that v's dynamic type is
// assignable to the key's value type. It returns the previous value.
func (s *Store) SetRaw(k AnyKey, v any) (any, bool, error) {
	if err := checkAssignable(k, v); err != nil {
		s.observe(OpSet, k.Name(), err)
		return nil, false, err
	}
	v = k.applySetter(v, s)
	if isNil(v) {
		prev, had := s.remove(k.Name())
		s.observe(OpSet, k.Name(), nil)
		return prev, had, nil
	}
	prev, had := s.put(k, v)
	s.observe(OpSet, k.Name(), nil)
	return prev, had, nil
}

// SetText decodes text with k's codec and stores the result.
func (s *Store) SetText(k AnyKey, text string) error {
	v, err := k.DecodeAny(text)
	if err != nil {
		s.observe(OpDecode, k.Name(), err)
		return err
	}
	if isNil(v) {
		s.remove(k.Name())
		s.observe(OpSet, k.Name(), nil)
		return nil
	}
	_, _, err = s.SetRaw(k, v)
	return err
}

// RemoveRaw detaches the value stored under name.
func (s *Store) RemoveRaw(name string) (any, bool) {
	v, ok := s.remove(name)
	s.observe(OpRemove, name, nil)
	return v, ok
}

// SetAll copies every value of other, together with the keys that wrote
// them, into s.
func (s *Store) SetAll(other *Store) {
	for n, v := range other.values {
		s.values[n] = v
		s.keys[n] = other.keys[n]
	}
	s.observe(OpMerge, other.Name(), nil)
}

// AddAll copies every name/value pair of v into s. The source keys are not
// known here, so each value is stored under an untyped key of the same name.
func (s *Store) AddAll(v View) {
	for n, val := range v.ValuesMap() {
		if isNil(val) {
			continue
		}
		s.put(ObjectKey(n), val)
	}
	s.observe(OpMerge, v.Name(), nil)
}

// String lists the stored values, one "name: value" line per key.
func (s *Store) String() string {
	var b strings.Builder
	b.WriteString("DataStore (" + s.name + ")")
	for _, n := range s.KeysWithValues() {
		b.WriteString("\n  " + n + ": ")
		b.WriteString(formatValue(s.values[n]))
	}
	return b.String()
}

func (s *Store) put(k AnyKey, v any) (any, bool) {
	prev, had := s.values[k.Name()]
	s.values[k.Name()] = v
	s.keys[k.Name()] = k
	return prev, had
}

func (s *Store) remove(name string) (any, bool) {
	prev, had := s.values[name]
	if had {
		delete(s.values, name)
		delete(s.keys, name)
	}
	return prev, had
}

func (s *Store) observe(op Op, key string, err error) {
	if s.observer != nil {
		s.observer.Observe(s.name, op, key, err)
	}
}

func checkAssignable(k AnyKey, v any) error {
	if isNil(v) {
		return ErrTypeMismatch.WithDetailsf("nil value is not compatible with key '%s'", k.Name())
	}
	if !reflect.TypeOf(v).AssignableTo(k.ValueType()) {
		return ErrTypeMismatch.WithDetailsf("value '%v' of type '%T' is not compatible with key '%s'", v, v, k.Name())
	}
	return nil
}

// Set stores v under k and returns the previous value. The key's custom
// setter, if any, transforms v first. A nil v clears the slot.
func Set[T any](s *Store, k Key[T], v T) (T, bool) {
	if isNil(v) {
		return Remove(s, k)
	}
	if k.setter != nil {
		v = k.setter(v, s)
		if isNil(v) {
			return Remove(s, k)
		}
	}
	raw, had := s.put(k, v)
	s.observe(OpSet, k.name, nil)
	prev, _ := raw.(T)
	return prev, had
}

// SetIfNotPresent stores v unless a value is already stored for k.
// It reports whether v was stored.
func SetIfNotPresent[T any](s *Store, k Key[T], v T) bool {
	if s.HasValue(k) {
		return false
	}
	Set(s, k, v)
	return true
}

// SetString decodes text with k's codec and stores the result.
func SetString[T any](s *Store, k Key[T], text string) error {
	v, err := k.Decode(text)
	if err != nil {
		s.observe(OpDecode, k.name, err)
		return err
	}
	Set(s, k, v)
	return nil
}

// Add stores v under k, failing if a value is already stored.
func Add[T any](s *Store, k Key[T], v T) error {
	if s.HasValue(k) {
		err := ErrAlreadyPresent.WithDetailsf("key '%s' in store '%s'", k.name, s.name)
		s.observe(OpAdd, k.name, err)
		return err
	}
	Set(s, k, v)
	return nil
}

// Replace stores v under k, failing if no value is stored yet.
// It returns the replaced value.
func Replace[T any](s *Store, k Key[T], v T) (T, error) {
	if !s.HasValue(k) {
		var zero T
		err := ErrNotPresent.WithDetailsf("key '%s' in store '%s'", k.name, s.name)
		s.observe(OpReplace, k.name, err)
		return zero, err
	}
	prev, _ := Set(s, k, v)
	return prev, nil
}

// Get returns the value stored for k, falling back to the key's default.
// Without either, it returns the zero value, or ErrMissingValue when the
// store is strict.
func Get[T any](s *Store, k Key[T]) (T, error) {
	var zero T
	if raw, ok := s.values[k.name]; ok {
		v, ok := raw.(T)
		if !ok {
			err := ErrTypeMismatch.WithDetailsf("stored value '%v' of type '%T' is not compatible with key '%s'", raw, raw, k.name)
			s.observe(OpGet, k.name, err)
			return zero, err
		}
		s.observe(OpGet, k.name, nil)
		return k.applyGetter(v, s), nil
	}

	def, ok, err := k.defaultValue()
	if err != nil {
		s.observe(OpGet, k.name, err)
		return zero, err
	}
	if ok {
		s.observe(OpGet, k.name, nil)
		return k.applyGetter(def, s), nil
	}
	if s.strict {
		err := ErrMissingValue.WithDetailsf("no value or default for key '%s' in store '%s'", k.name, s.name)
		s.observe(OpGet, k.name, err)
		return zero, err
	}
	s.observe(OpGet, k.name, nil)
	return zero, nil
}

// MustGet is like Get but panics on error.
func MustGet[T any](s *Store, k Key[T]) T {
	v, err := Get(s, k)
	if err != nil {
		panic(err)
	}
	return v
}

// GetTry returns the value stored for k without consulting defaults.
func GetTry[T any](s *Store, k Key[T]) (T, bool) {
	raw, ok := s.values[k.name]
	if !ok {
		var zero T
		return zero, false
	}
	v, ok := raw.(T)
	if !ok {
		return v, false
	}
	return k.applyGetter(v, s), true
}

// Remove detaches the value stored for k and returns it.
func Remove[T any](s *Store, k Key[T]) (T, bool) {
	raw, had := s.remove(k.name)
	s.observe(OpRemove, k.name, nil)
	v, _ := raw.(T)
	return v, had
}

func (k Key[T]) applyGetter(v T, s *Store) T {
	if k.getter == nil {
		return v
	}
	return k.getter(v, s)
}

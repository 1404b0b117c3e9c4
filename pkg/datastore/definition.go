package datastore

import (
	"errors"
	"slices"
)

// Definition is an ordered, name-unique list of keys describing the
// expected shape of a store.
type Definition struct {
	name  string
	keys  []AnyKey
	index map[string]int
}

// NewDefinition creates a definition from keys, in order.
func NewDefinition(name string, keys ...AnyKey) (*Definition, error) {
	d := &Definition{
		name:  name,
		keys:  make([]AnyKey, 0, len(keys)),
		index: make(map[string]int, len(keys)),
	}
	for _, k := range keys {
		if _, dup := d.index[k.Name()]; dup {
			return nil, ErrDuplicateKey.WithDetailsf("key '%s' in definition '%s'", k.Name(), name)
		}
		d.index[k.Name()] = len(d.keys)
		d.keys = append(d.keys, k)
	}
	return d, nil
}

// MustDefinition is like NewDefinition but panics on error.
func MustDefinition(name string, keys ...AnyKey) *Definition {
	d, err := NewDefinition(name, keys...)
	if err != nil {
		panic(err)
	}
	return d
}

// Name returns the definition name.
func (d *Definition) Name() string { return d.name }

// Keys returns the keys in declaration order.
func (d *Definition) Keys() []AnyKey { return slices.Clone(d.keys) }

// Key returns the key called name.
func (d *Definition) Key(name string) (AnyKey, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.keys[i], true
}

// HasKey reports whether a key called name is defined.
func (d *Definition) HasKey(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Len returns the number of keys.
func (d *Definition) Len() int { return len(d.keys) }

// String renders one key per line.
func (d *Definition) String() string { return FormatKeys(d.keys) }

// DefaultStore creates an empty store bound to d.
func (d *Definition) DefaultStore(opts ...Option) *Store {
	return NewFromDefinition(d, opts...)
}

// Validate checks that every value stored in s belongs to a defined key and
// has a compatible type. All violations are reported together.
func (d *Definition) Validate(s *Store) error {
	var errs []error
	for _, name := range s.KeysWithValues() {
		k, ok := d.Key(name)
		if !ok {
			errs = append(errs, ErrUndefinedKey.WithDetailsf("key '%s' in definition '%s'", name, d.name))
			continue
		}
		if err := checkAssignable(k, s.values[name]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

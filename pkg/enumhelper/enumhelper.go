// Package enumhelper translates between string tokens and enumerated
// constants.
//
// A Helper is built from the ordered list of an enum's constants. Each
// constant is reachable by its String() form and by any alias registered
// later; constants are also reachable by their position in the list.
package enumhelper

import (
	"maps"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/specs-feup/specs-go/pkg/errcode"
)

var (
	// ErrUnknownEnum indicates a name with no registered constant.
	ErrUnknownEnum = errcode.New("SP-ENUM-4040", "unknown enum name")

	// ErrIndexOutOfRange indicates an index past the enum's constants.
	ErrIndexOutOfRange = errcode.New("SP-ENUM-4001", "enum index out of range")
)

// StringProvider is the constraint enum constants satisfy.
type StringProvider interface {
	comparable
	String() string
}

// Helper holds the translation table of one enum type.
// AddAlias mutates the table; build helpers fully before sharing them.
type Helper[T StringProvider] struct {
	enumName    string
	translation map[string]T
	values      []T
}

// New builds a helper over values, in declaration order. Constants listed in
// exclude are not reachable by name but keep their index.
func New[T StringProvider](values []T, exclude ...T) *Helper[T] {
	h := &Helper[T]{
		enumName:    enumName[T](),
		translation: make(map[string]T, len(values)),
		values:      slices.Clone(values),
	}
	for _, v := range values {
		h.translation[v.String()] = v
	}
	for _, v := range exclude {
		delete(h.translation, v.String())
	}
	return h
}

// NewLazy returns a function that builds the helper on first call and
// returns the same instance afterwards. It is safe for concurrent use.
func NewLazy[T StringProvider](values []T, exclude ...T) func() *Helper[T] {
	return sync.OnceValue(func() *Helper[T] {
		return New(values, exclude...)
	})
}

func enumName[T any]() string {
	t := reflect.TypeFor[T]()
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

// ValueOf returns the constant registered under name.
func (h *Helper[T]) ValueOf(name string) (T, error) {
	v, ok := h.translation[name]
	if !ok {
		var zero T
		return zero, ErrUnknownEnum.WithDetailsf(
			"enum '%s' does not contain an enum with the name '%s', available enums: %s",
			h.enumName, name, h.AvailableOptions())
	}
	return v, nil
}

// ValueOfTry returns the constant registered under name, if any.
func (h *Helper[T]) ValueOfTry(name string) (T, bool) {
	v, ok := h.translation[name]
	return v, ok
}

// ValueOfAll translates every name, failing on the first unknown one.
func (h *Helper[T]) ValueOfAll(names []string) ([]T, error) {
	out := make([]T, 0, len(names))
	for _, name := range names {
		v, err := h.ValueOf(name)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ValueAt returns the constant at index in declaration order.
func (h *Helper[T]) ValueAt(index int) (T, error) {
	if index < 0 || index >= len(h.values) {
		var zero T
		return zero, ErrIndexOutOfRange.WithDetailsf(
			"asked for enum '%s' at index %d, but there are only %d values",
			h.enumName, index, len(h.values))
	}
	return h.values[index], nil
}

// AddAlias makes value reachable under alias as well.
func (h *Helper[T]) AddAlias(alias string, value T) *Helper[T] {
	h.translation[alias] = value
	return h
}

// AvailableOptions returns the registered names, sorted and comma separated.
func (h *Helper[T]) AvailableOptions() string {
	return strings.Join(h.Names(), ", ")
}

// Names returns the registered names, sorted.
func (h *Helper[T]) Names() []string {
	return slices.Sorted(maps.Keys(h.translation))
}

// TranslationMap returns a copy of the name → constant table.
func (h *Helper[T]) TranslationMap() map[string]T {
	return maps.Clone(h.translation)
}

// Size returns the number of constants, excluded ones included.
func (h *Helper[T]) Size() int {
	return len(h.values)
}

// EnumName returns the Go type name of the enum.
func (h *Helper[T]) EnumName() string {
	return h.enumName
}

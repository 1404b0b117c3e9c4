// Package treenode records transformations applied to tree nodes.
package treenode

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/spaolacci/murmur3"
)

// Identifier lets a node supply its own identity for rendering.
type Identifier interface {
	NodeID() string
}

// Transform is a named operation over an ordered list of operand nodes.
type Transform[N any] struct {
	typ      string
	operands []N
	apply    func(operands []N) error
}

// NewTransform creates a transform of the given type. apply may be nil.
func NewTransform[N any](typ string, operands []N, apply func([]N) error) *Transform[N] {
	return &Transform[N]{
		typ:      typ,
		operands: slices.Clone(operands),
		apply:    apply,
	}
}

// Type returns the transform type.
func (t *Transform[N]) Type() string { return t.typ }

// Operands returns the operand nodes.
func (t *Transform[N]) Operands() []N { return slices.Clone(t.operands) }

// Execute runs the transform over its operands.
func (t *Transform[N]) Execute() error {
	if t.apply == nil {
		return nil
	}
	if err := t.apply(t.operands); err != nil {
		return fmt.Errorf("transform %s: %w", t.typ, err)
	}
	return nil
}

// String renders the type followed by the identity of each operand.
func (t *Transform[N]) String() string {
	parts := make([]string, 0, len(t.operands)+1)
	parts = append(parts, t.typ)
	for _, op := range t.operands {
		parts = append(parts, Identity(op))
	}
	return strings.Join(parts, " ")
}

// Identity returns a short hex identity for n: its NodeID if it has one,
// the address for pointers, or a hash of its printed value otherwise.
func Identity(n any) string {
	if id, ok := n.(Identifier); ok {
		return id.NodeID()
	}
	rv := reflect.ValueOf(n)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		return strconv.FormatUint(uint64(rv.Pointer()), 16)
	}
	return strconv.FormatUint(uint64(murmur3.Sum32([]byte(fmt.Sprint(n)))), 16)
}

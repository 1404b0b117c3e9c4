package datastore

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/specs-feup/specs-go/pkg/enumhelper"
)

// Codec converts between a key's value type and its text form.
type Codec[T any] interface {
	Decode(text string) (T, error)
	Encode(value T) string
}

type funcCodec[T any] struct {
	decode func(string) (T, error)
	encode func(T) string
}

func (c funcCodec[T]) Decode(text string) (T, error) { return c.decode(text) }

func (c funcCodec[T]) Encode(value T) string {
	if c.encode == nil {
		return fmt.Sprint(value)
	}
	return c.encode(value)
}

// NewCodec builds a Codec from a pair of functions.
// A nil encode falls back to fmt.Sprint.
func NewCodec[T any](decode func(string) (T, error), encode func(T) string) Codec[T] {
	return funcCodec[T]{decode: decode, encode: encode}
}

// Built-in codecs.
var (
	StringCodec = NewCodec(func(s string) (string, error) { return s, nil }, nil)

	BoolCodec = NewCodec(strconv.ParseBool, strconv.FormatBool)

	IntCodec = NewCodec(func(s string) (int, error) {
		return strconv.Atoi(strings.TrimSpace(s))
	}, strconv.Itoa)

	Int64Codec = NewCodec(func(s string) (int64, error) {
		return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	}, func(v int64) string { return strconv.FormatInt(v, 10) })

	Float64Codec = NewCodec(func(s string) (float64, error) {
		return strconv.ParseFloat(strings.TrimSpace(s), 64)
	}, func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) })

	DurationCodec = NewCodec(func(s string) (time.Duration, error) {
		return time.ParseDuration(strings.TrimSpace(s))
	}, time.Duration.String)

	// StringListCodec reads comma separated items, trimming blanks.
	StringListCodec = NewCodec(decodeStringList, func(v []string) string {
		return strings.Join(v, ",")
	})
)

func decodeStringList(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return []string{}, nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

// EnumCodec decodes through an enum helper, so aliases are accepted.
func EnumCodec[T enumhelper.StringProvider](h *enumhelper.Helper[T]) Codec[T] {
	return NewCodec(h.ValueOf, func(v T) string { return v.String() })
}

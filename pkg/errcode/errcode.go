// Package errcode provides coded errors shared by the specs-go libraries.
//
// Codes read SP-<AREA>-<NNNN>. AREA names the package family that raises the
// error (STORE, KEY, DEF, ENUM, SCHEMA) and the number loosely follows HTTP
// status classes: 40xx for bad input, 404x for something missing, 409x for
// a conflict with what is already there.
//
// Packages declare sentinels with New and decorate them at the failure site:
//
//	var ErrNotPresent = errcode.New("SP-STORE-4040", "no value to replace")
//	...
//	return ErrNotPresent.WithDetailsf("key '%s'", name)
//
// A decorated copy still matches its sentinel under errors.Is.
package errcode

import (
	"errors"
	"fmt"
	"strings"
)

// Error is a failure identified by a stable code.
type Error struct {
	Code    string
	Message string
	// Details names the offending key, store or value.
	Details string
	Cause   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("[" + e.Code + "] " + e.Message)
	if e.Details != "" {
		b.WriteString(": " + e.Details)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Code == t.Code
}

// Area returns the AREA part of the code, or "" for codes not shaped
// SP-<AREA>-<NNNN>.
func (e *Error) Area() string {
	parts := strings.Split(e.Code, "-")
	if len(parts) != 3 {
		return ""
	}
	return parts[1]
}

// New declares a sentinel.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithDetails returns a copy of e with details set.
func (e *Error) WithDetails(details string) *Error {
	c := *e
	c.Details = details
	return &c
}

// WithDetailsf is WithDetails with formatting.
func (e *Error) WithDetailsf(format string, args ...any) *Error {
	return e.WithDetails(fmt.Sprintf(format, args...))
}

// WithCause returns a copy of e wrapping cause.
func (e *Error) WithCause(cause error) *Error {
	c := *e
	c.Cause = cause
	return &c
}

// Has reports whether err's chain holds an *Error with code. An empty code
// matches any *Error.
func Has(err error, code string) bool {
	var ce *Error
	if !errors.As(err, &ce) {
		return false
	}
	return code == "" || ce.Code == code
}

// Code returns the code of the first *Error in err's chain.
func Code(err error) string {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

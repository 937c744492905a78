// Package jrt holds the engine-wide fatal error channel.
//
// Contract violations, allocation failure and reference-count overflow are
// not recoverable conditions for the value core. They are reported by
// panicking with a *FatalError carrying a stable FatalCode, so embedders and
// tests can recover() and inspect the code.
package jrt

import "fmt"

// FatalCode identifies the reason the engine stopped.
type FatalCode int

// Stable fatal codes - do not change values.
const (
	ErrOutOfMemory             FatalCode = 10  // heap exhausted after reclaim
	ErrRefCountLimit           FatalCode = 12  // reference counter would overflow
	ErrFailedInternalAssertion FatalCode = 120 // contract violation
)

// String returns the code as "FATAL10" format.
func (c FatalCode) String() string {
	return fmt.Sprintf("FATAL%d", int(c))
}

// Label returns a short human-readable name for the code.
func (c FatalCode) Label() string {
	switch c {
	case ErrOutOfMemory:
		return "out of memory"
	case ErrRefCountLimit:
		return "reference count limit"
	case ErrFailedInternalAssertion:
		return "internal assertion failed"
	default:
		return "unknown"
	}
}

// FatalError is the panic payload used for every fatal condition.
type FatalError struct {
	Code    FatalCode
	Message string
}

// Error implements the error interface.
func (e *FatalError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("fatal %s: %s", e.Code, e.Code.Label())
	}
	return fmt.Sprintf("fatal %s: %s", e.Code, e.Message)
}

// Fatal terminates the current engine operation with the given code.
func Fatal(code FatalCode, msg string) {
	panic(&FatalError{Code: code, Message: msg})
}

// Fatalf is Fatal with a format string.
func Fatalf(code FatalCode, format string, args ...any) {
	panic(&FatalError{Code: code, Message: fmt.Sprintf(format, args...)})
}

// Unreachable reports a code path that must never execute.
func Unreachable(what string) {
	Fatal(ErrFailedInternalAssertion, "unreachable: "+what)
}

// AsFatal extracts a *FatalError from a recovered panic value.
func AsFatal(r any) (*FatalError, bool) {
	fe, ok := r.(*FatalError)
	return fe, ok
}

//go:build !ecma_ndebug

package jrt

// AssertionsEnabled reports whether Assert checks are compiled in.
const AssertionsEnabled = true

// Assert stops the engine with ErrFailedInternalAssertion when cond is false.
// Builds tagged ecma_ndebug compile the check out.
func Assert(cond bool, msg string) {
	if !cond {
		Fatal(ErrFailedInternalAssertion, msg)
	}
}

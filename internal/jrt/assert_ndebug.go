//go:build ecma_ndebug

package jrt

// AssertionsEnabled reports whether Assert checks are compiled in.
const AssertionsEnabled = false

// Assert is a no-op in ecma_ndebug builds.
func Assert(bool, string) {}

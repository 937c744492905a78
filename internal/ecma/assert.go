package ecma

import "ecmacore/internal/jrt"

func assertf(cond bool, format string, args ...any) {
	if jrt.AssertionsEnabled && !cond {
		jrt.Fatalf(jrt.ErrFailedInternalAssertion, "ecma: "+format, args...)
	}
}

func fatalf(format string, args ...any) {
	jrt.Fatalf(jrt.ErrFailedInternalAssertion, "ecma: "+format, args...)
}

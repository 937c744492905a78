package ecma

import (
	"testing"

	"ecmacore/internal/jrt"
)

func newContext(t *testing.T, opts Options) *Context {
	t.Helper()
	c, err := NewContext(opts)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	return c
}

func closeClean(t *testing.T, c *Context) {
	t.Helper()
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func expectFatal(t *testing.T, code jrt.FatalCode, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		fe, ok := jrt.AsFatal(r)
		if !ok {
			t.Fatalf("expected fatal %v, recovered %v", code, r)
		}
		if fe.Code != code {
			t.Fatalf("expected fatal %v, got %v: %s", code, fe.Code, fe.Message)
		}
	}()
	fn()
}

func requireAssertions(t *testing.T) {
	t.Helper()
	if !jrt.AssertionsEnabled {
		t.Skip("assertions compiled out")
	}
}

var codecNames = []string{"compressed", "direct"}

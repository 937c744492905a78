package ecma

import "ecmacore/internal/lit"

const errorRefSize = 16

// ErrorRef is a raised error travelling up the call chain as a value. It
// owns the thrown value.
type ErrorRef struct {
	header
	thrown Value
}

func (e *ErrorRef) kind() Kind { return KindErrorReference }

func (e *ErrorRef) preview(c *Context) string {
	if e.thrown.IsObject() {
		return "throw " + c.ObjectOf(e.thrown).preview(c)
	}
	if e.thrown.IsString() {
		return "throw " + truncate(c.StringChars(e.thrown), previewRunes)
	}
	return "throw " + e.thrown.Kind().String()
}

// RaiseError wraps thrown in a new error reference, taking ownership of it.
func (c *Context) RaiseError(thrown Value) Value {
	assertf(!thrown.IsErrorReference(), "nested error reference")
	e := &ErrorRef{thrown: thrown}
	return c.encode(c.allocEntity(errorRefSize, e), TypeError)
}

// RaiseTypeError raises a new TypeError object with the given message.
func (c *Context) RaiseTypeError(message string) Value {
	return c.RaiseError(c.NewError(lit.MagicTypeError, message))
}

// RaiseRangeError raises a new RangeError object with the given message.
func (c *Context) RaiseRangeError(message string) Value {
	return c.RaiseError(c.NewError(lit.MagicRangeError, message))
}

// ErrorValue returns the borrowed thrown value of an error reference.
func (c *Context) ErrorValue(v Value) Value {
	return entityOf[*ErrorRef](c, v, TypeError).thrown
}

// AcquireError adds a reference to an error reference and returns it.
func (c *Context) AcquireError(v Value) Value {
	c.RefErrorRef(v)
	return v
}

// ReleaseError drops a reference to an error reference.
func (c *Context) ReleaseError(v Value) {
	c.DerefErrorRef(v)
}

// TakeError consumes one reference to an error reference and returns an
// owned thrown value.
func (c *Context) TakeError(v Value) Value {
	e := entityOf[*ErrorRef](c, v, TypeError)
	if e.refs > 1 {
		thrown := c.Copy(e.thrown)
		c.release(e)
		return thrown
	}
	thrown := e.thrown
	c.release(e)
	c.freeEntity(e)
	return thrown
}

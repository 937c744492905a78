package ecma

// IsArray implements the IsArray abstract operation. It returns True, False
// or an error reference when a revoked proxy is encountered on the way to the
// target.
func (c *Context) IsArray(v Value) Value {
	for v.IsObject() {
		o := c.ObjectOf(v)
		switch {
		case o.lexEnv:
			return False
		case o.typ == ObjectArray:
			return True
		case o.typ != ObjectProxy:
			return False
		}
		if o.slots[slotProxyHandler].v.IsNull() {
			return c.RaiseTypeError("Cannot perform 'IsArray' on the given proxy because handler is null")
		}
		v = o.slots[slotProxyTarget].v
	}
	return False
}

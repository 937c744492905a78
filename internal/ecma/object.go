package ecma

import (
	"strconv"

	"fortio.org/safecast"

	"ecmacore/internal/lit"
)

// ObjectType distinguishes object layouts.
type ObjectType uint8

const (
	ObjectGeneral ObjectType = iota
	ObjectClass
	ObjectArray
	ObjectFunction
	ObjectNativeFunction
	ObjectBoundFunction
	ObjectProxy
)

func (t ObjectType) String() string {
	switch t {
	case ObjectGeneral:
		return "general"
	case ObjectClass:
		return "class"
	case ObjectArray:
		return "array"
	case ObjectFunction:
		return "function"
	case ObjectNativeFunction:
		return "native_function"
	case ObjectBoundFunction:
		return "bound_function"
	case ObjectProxy:
		return "proxy"
	}
	return "object(" + strconv.Itoa(int(t)) + ")"
}

// Internal slot indexes.
const (
	slotProxyTarget  = 0
	slotProxyHandler = 1
	slotBoundTarget  = 0
	slotBoundThis    = 1
	slotErrorMessage = 0
)

// Object is an object or lexical environment entity. Its reference count
// counts external references only; edges between objects held in internal
// slots are found by the collector.
type Object struct {
	header
	typ      ObjectType
	lexEnv   bool
	class    lit.MagicStringID
	callable bool
	length   uint32
	outer    Value // enclosing environment of a lexical environment
	slots    []Slot
	marked   bool
}

func (o *Object) kind() Kind { return KindObject }

func (o *Object) preview(c *Context) string {
	switch {
	case o.lexEnv:
		return "lexenv[" + strconv.Itoa(len(o.slots)) + "]"
	case o.typ == ObjectArray:
		return "array[" + strconv.FormatUint(uint64(o.length), 10) + "]"
	case o.typ == ObjectClass && o.class != lit.MagicObject:
		msg := o.slots[slotErrorMessage].v
		if msg.IsString() {
			return o.class.String() + ": " + truncate(c.StringChars(msg), previewRunes)
		}
		return o.class.String()
	case o.typ == ObjectProxy && o.slots[slotProxyHandler].v.IsNull():
		return "proxy(revoked)"
	}
	return o.typ.String()
}

// Type returns the object layout.
func (o *Object) Type() ObjectType { return o.typ }

// IsLexEnv reports whether the entity is a lexical environment.
func (o *Object) IsLexEnv() bool { return o.lexEnv }

func (c *Context) newObject(o *Object) Value {
	size, err := safecast.Conv[uint32](2*headerSize + 8*len(o.slots))
	if err != nil {
		fatalf("object with %d slots is too large", len(o.slots))
	}
	if o.outer == 0 {
		o.outer = Null
	}
	for i := range o.slots {
		if o.slots[i].v == 0 {
			o.slots[i].v = Undefined
		}
	}
	return c.encode(c.allocEntity(size, o), TypeObject)
}

// NewObject creates an object of a layout that needs no constructor
// arguments. The returned value holds one reference.
func (c *Context) NewObject(t ObjectType) Value {
	switch t {
	case ObjectGeneral:
		return c.newObject(&Object{typ: t})
	case ObjectFunction, ObjectNativeFunction:
		return c.newObject(&Object{typ: t, callable: true})
	case ObjectArray:
		return c.NewArray(0)
	case ObjectClass:
		return c.newObject(&Object{typ: t, class: lit.MagicObject, slots: make([]Slot, 1)})
	}
	fatalf("object type %s needs a dedicated constructor", t)
	return Undefined
}

// NewRecord creates a general object with n internal slots.
func (c *Context) NewRecord(n int) Value {
	return c.newObject(&Object{typ: ObjectGeneral, slots: make([]Slot, n)})
}

// NewArray creates an array object of the given length.
func (c *Context) NewArray(length uint32) Value {
	return c.newObject(&Object{typ: ObjectArray, length: length})
}

// NewFunction creates a callable function object.
func (c *Context) NewFunction() Value {
	return c.NewObject(ObjectFunction)
}

// NewBoundFunction binds target to this. The object slots do not add
// references to object occupants.
func (c *Context) NewBoundFunction(target, this Value) Value {
	assertf(c.IsCallable(target), "bound function target %s is not callable", target)
	o := &Object{typ: ObjectBoundFunction, callable: true, slots: make([]Slot, 2)}
	v := c.newObject(o)
	c.Assign(&o.slots[slotBoundTarget], target)
	c.Assign(&o.slots[slotBoundThis], this)
	return v
}

// NewProxy creates a proxy for target with handler. A proxy is callable iff
// its target was. Non-object arguments raise a TypeError.
func (c *Context) NewProxy(target, handler Value) Value {
	if !target.IsObject() || !handler.IsObject() {
		return c.RaiseTypeError("Cannot create proxy with a non-object as target or handler")
	}
	o := &Object{typ: ObjectProxy, callable: c.IsCallable(target), slots: make([]Slot, 2)}
	v := c.newObject(o)
	c.Assign(&o.slots[slotProxyTarget], target)
	c.Assign(&o.slots[slotProxyHandler], handler)
	return v
}

// RevokeProxy clears the target and handler of a proxy.
func (c *Context) RevokeProxy(proxy Value) {
	o := c.ObjectOf(proxy)
	assertf(o.typ == ObjectProxy, "RevokeProxy on %s object", o.typ)
	c.Assign(&o.slots[slotProxyTarget], Null)
	c.Assign(&o.slots[slotProxyHandler], Null)
}

// ProxyTarget returns the borrowed target of a proxy.
func (c *Context) ProxyTarget(proxy Value) Value {
	o := c.ObjectOf(proxy)
	assertf(o.typ == ObjectProxy, "ProxyTarget on %s object", o.typ)
	return o.slots[slotProxyTarget].v
}

// ProxyHandler returns the borrowed handler of a proxy.
func (c *Context) ProxyHandler(proxy Value) Value {
	o := c.ObjectOf(proxy)
	assertf(o.typ == ObjectProxy, "ProxyHandler on %s object", o.typ)
	return o.slots[slotProxyHandler].v
}

// NewError creates an error object of the given built-in class.
func (c *Context) NewError(class lit.MagicStringID, message string) Value {
	o := &Object{typ: ObjectClass, class: class, slots: make([]Slot, 1)}
	msg := c.NewString(message)
	v := c.newObject(o)
	o.slots[slotErrorMessage].v = msg
	return v
}

// ErrorMessage returns the message of an error object.
func (c *Context) ErrorMessage(v Value) string {
	o := c.ObjectOf(v)
	assertf(o.typ == ObjectClass && len(o.slots) > slotErrorMessage, "ErrorMessage on %s object", o.typ)
	msg := o.slots[slotErrorMessage].v
	if !msg.IsString() {
		return ""
	}
	return c.StringChars(msg)
}

// ErrorClass returns the built-in class of an error object.
func (c *Context) ErrorClass(v Value) lit.MagicStringID {
	o := c.ObjectOf(v)
	assertf(o.typ == ObjectClass, "ErrorClass on %s object", o.typ)
	return o.class
}

// NewLexEnv creates a declarative lexical environment with the given number
// of bindings. outer is the enclosing environment or Null.
func (c *Context) NewLexEnv(outer Value, bindings int) Value {
	assertf(outer.IsNull() || (outer.IsObject() && c.ObjectOf(outer).lexEnv), "outer %s is not an environment", outer)
	o := &Object{typ: ObjectGeneral, lexEnv: true, outer: outer, slots: make([]Slot, bindings)}
	return c.newObject(o)
}

// OuterEnv returns the enclosing environment of a lexical environment.
func (c *Context) OuterEnv(env Value) Value {
	o := c.ObjectOf(env)
	assertf(o.lexEnv, "OuterEnv on a non-environment")
	return o.outer
}

// Slot returns internal slot i of an object or binding i of an environment.
func (c *Context) Slot(obj Value, i int) *Slot {
	o := c.ObjectOf(obj)
	assertf(i >= 0 && i < len(o.slots), "slot %d out of range [0,%d)", i, len(o.slots))
	return &o.slots[i]
}

// ObjectOf returns the entity behind an object value.
func (c *Context) ObjectOf(v Value) *Object {
	return entityOf[*Object](c, v, TypeObject)
}

// MakeObjectValue encodes a live object entity.
func (c *Context) MakeObjectValue(o *Object) Value {
	assertf(o.ptr != 0, "object is not allocated")
	return c.encode(o.ptr, TypeObject)
}

// MakeStringValue encodes a live string entity.
func (c *Context) MakeStringValue(s *String) Value {
	assertf(s.ptr != 0, "string is not allocated")
	return c.encode(s.ptr, TypeString)
}

// MakeSymbolValue encodes a live symbol entity.
func (c *Context) MakeSymbolValue(s *Symbol) Value {
	assertf(s.ptr != 0, "symbol is not allocated")
	return c.encode(s.ptr, TypeSymbol)
}

// ArrayLength returns the length of an array object.
func (c *Context) ArrayLength(v Value) uint32 {
	o := c.ObjectOf(v)
	assertf(o.typ == ObjectArray, "ArrayLength on %s object", o.typ)
	return o.length
}

// SetArrayLength updates the length of an array object.
func (c *Context) SetArrayLength(v Value, n uint32) {
	o := c.ObjectOf(v)
	assertf(o.typ == ObjectArray, "SetArrayLength on %s object", o.typ)
	o.length = n
}

// IsCallable reports whether v is a function, native function, bound
// function or a proxy over a callable target.
func (c *Context) IsCallable(v Value) bool {
	if !v.IsObject() {
		return false
	}
	o := c.ObjectOf(v)
	return !o.lexEnv && o.callable
}

package ecma

import (
	"errors"
	"strings"
	"testing"

	"ecmacore/internal/bignum"
	"ecmacore/internal/jrt"
	"ecmacore/internal/lit"
)

func TestNewStringPicksEncoding(t *testing.T) {
	c := newContext(t, Options{})
	if v := c.NewString("length"); !v.IsDirectString() || c.StringChars(v) != "length" {
		t.Fatalf("builtin string not inline: %s", v)
	}
	if v := c.NewString("4096"); !v.IsDirectString() || c.StringChars(v) != "4096" || c.StringLength(v) != 4 {
		t.Fatalf("numeral not inline: %s", v)
	}
	if v := c.NewString("0042"); v.IsDirectString() {
		t.Fatal("non-canonical numeral must be a heap string")
	} else {
		c.Free(v)
	}
	v := c.NewString("emoji 😀")
	if !v.IsNonDirectString() || c.StringChars(v) != "emoji 😀" {
		t.Fatalf("heap string: %s", v)
	}
	if got := c.StringLength(v); got != 8 {
		t.Fatalf("UTF-16 length = %d, want 8", got)
	}
	if c.MakeStringValue(c.StringOf(v)) != v {
		t.Fatal("MakeStringValue does not round trip")
	}
	if c.MakeExtendedPrimitiveValue(c.StringOf(v).Ptr(), TypeString) != v {
		t.Fatal("MakeExtendedPrimitiveValue does not round trip")
	}
	c.Free(v)
	closeClean(t, c)
}

func TestAccessorTypeMismatchIsFatal(t *testing.T) {
	c := newContext(t, Options{})
	f := c.MakeNumber(0.25)
	expectFatal(t, jrt.ErrFailedInternalAssertion, func() { c.StringOf(f) })
	expectFatal(t, jrt.ErrFailedInternalAssertion, func() { c.ObjectOf(Undefined) })
	expectFatal(t, jrt.ErrFailedInternalAssertion, func() { c.MakeExtendedPrimitiveValue(c.FloatCell(f), TypeString) })
	c.Free(f)
	closeClean(t, c)
}

func TestSymbolOwnsDescription(t *testing.T) {
	c := newContext(t, Options{})
	desc := c.NewString("my symbol")
	sym := c.NewSymbol(desc)
	if c.SymbolDescription(sym) != desc || c.RefCountOf(desc) != 1 {
		t.Fatal("symbol must adopt its description")
	}
	sym2 := c.Copy(sym)
	c.Free(sym)
	if c.RefCountOf(desc) != 1 {
		t.Fatal("description released while the symbol lives")
	}
	if c.MakeSymbolValue(entityOf[*Symbol](c, sym2, TypeSymbol)) != sym2 {
		t.Fatal("MakeSymbolValue")
	}
	c.Free(sym2)
	if c.Heap().Stats().LiveBlocks != 0 {
		t.Fatalf("symbol or description leaked: %+v", c.Snapshot().Records)
	}
	anon := c.NewSymbol(Undefined)
	c.Free(anon)
	closeClean(t, c)
}

func TestBigIntZeroOwnsNothing(t *testing.T) {
	c := newContext(t, Options{})
	z := c.NewBigInt(bignum.FromInt64(0))
	if z != BigIntZero || z.OwnsMemory() || c.Heap().Stats().LiveBlocks != 0 {
		t.Fatalf("zero bigint = %s", z)
	}
	if c.Copy(z) != z || c.Counters().RefIncr != 0 {
		t.Fatal("copy of zero bigint must not count")
	}
	c.Free(z)
	if !c.BigIntOf(z).IsZero() {
		t.Fatal("BigIntOf(zero)")
	}

	big, err := c.ParseBigInt("0xffffffffffffffffffffn")
	if err != nil {
		t.Fatal(err)
	}
	if c.BigIntOf(big).Text(16) != "ffffffffffffffffffff" {
		t.Fatalf("BigIntOf = %s", c.BigIntOf(big))
	}
	cp := c.Copy(big)
	if c.RefCountOf(big) != 2 {
		t.Fatal("bigint copy must count")
	}
	c.Free(cp)
	c.Free(big)
	if _, err := c.ParseBigInt("12"); !errors.Is(err, bignum.ErrSyntax) {
		t.Fatalf("ParseBigInt without suffix: %v", err)
	}
	closeClean(t, c)
}

func TestErrorReferences(t *testing.T) {
	c := newContext(t, Options{})
	e := c.RaiseTypeError("bad thing")
	thrown := c.ErrorValue(e)
	if !thrown.IsObject() || c.ErrorClass(thrown) != lit.MagicTypeError || c.ErrorMessage(thrown) != "bad thing" {
		t.Fatalf("thrown value %s", thrown)
	}
	e2 := c.AcquireError(e)
	if e2 != e || c.RefCountOf(e) != 2 {
		t.Fatal("AcquireError")
	}
	taken := c.TakeError(e2)
	if taken != thrown || c.RefCountOf(thrown) != 2 {
		t.Fatalf("TakeError with shared reference must copy: refs=%d", c.RefCountOf(thrown))
	}
	c.Free(taken)
	last := c.TakeError(e)
	if last != thrown || c.RefCountOf(thrown) != 1 {
		t.Fatalf("TakeError of last reference must move: refs=%d", c.RefCountOf(thrown))
	}
	c.Free(last)

	s := c.RaiseError(c.NewString("thrown string"))
	if !c.ErrorValue(s).IsString() {
		t.Fatal("RaiseError with string")
	}
	c.ReleaseError(s)
	r := c.RaiseRangeError("range")
	if c.ErrorClass(c.ErrorValue(r)) != lit.MagicRangeError {
		t.Fatal("RaiseRangeError")
	}
	c.ReleaseError(r)
	closeClean(t, c)
}

func TestIsArray(t *testing.T) {
	c := newContext(t, Options{})
	for _, v := range []Value{Undefined, Null, MakeInteger(1), MakeMagicString(lit.MagicArray)} {
		if got := c.IsArray(v); got != False {
			t.Fatalf("IsArray(%s) = %s", v, got)
		}
	}
	arr := c.NewArray(3)
	obj := c.NewObject(ObjectGeneral)
	handler := c.NewObject(ObjectGeneral)
	if c.IsArray(arr) != True || c.IsArray(obj) != False {
		t.Fatal("IsArray on plain objects")
	}
	if c.ArrayLength(arr) != 3 {
		t.Fatal("ArrayLength")
	}
	c.SetArrayLength(arr, 5)
	if c.ArrayLength(arr) != 5 {
		t.Fatal("SetArrayLength")
	}

	p := c.NewProxy(arr, handler)
	pp := c.NewProxy(p, handler)
	if c.IsArray(p) != True || c.IsArray(pp) != True {
		t.Fatal("IsArray must look through proxies")
	}
	if c.ProxyTarget(pp) != p || c.ProxyHandler(pp) != handler {
		t.Fatal("proxy slots")
	}

	c.RevokeProxy(p)
	for _, v := range []Value{p, pp} {
		res := c.IsArray(v)
		if !res.IsErrorReference() {
			t.Fatalf("IsArray on revoked proxy = %s, want error reference", res)
		}
		thrown := c.ErrorValue(res)
		if c.ErrorClass(thrown) != lit.MagicTypeError || !strings.Contains(c.ErrorMessage(thrown), "handler is null") {
			t.Fatalf("unexpected error %q", c.ErrorMessage(thrown))
		}
		c.ReleaseError(res)
	}

	bad := c.NewProxy(MakeInteger(1), handler)
	if !bad.IsErrorReference() {
		t.Fatal("NewProxy with a non-object target must raise")
	}
	c.ReleaseError(bad)

	for _, v := range []Value{arr, obj, handler, p, pp} {
		c.Free(v)
	}
	closeClean(t, c)
}

func TestTypeOf(t *testing.T) {
	c := newContext(t, Options{})
	fn := c.NewFunction()
	obj := c.NewObject(ObjectGeneral)
	callableProxy := c.NewProxy(fn, obj)
	bound := c.NewBoundFunction(fn, Undefined)
	sym := c.NewSymbol(Undefined)
	big := c.NewBigInt(bignum.FromInt64(5))
	str := c.NewString("a heap string")
	f := c.MakeNumber(2.5)
	cases := []struct {
		v    Value
		want string
	}{
		{Undefined, "undefined"},
		{Null, "object"},
		{True, "boolean"},
		{MakeInteger(1), "number"},
		{f, "number"},
		{str, "string"},
		{MakeUintString(3), "string"},
		{sym, "symbol"},
		{big, "bigint"},
		{BigIntZero, "bigint"},
		{obj, "object"},
		{fn, "function"},
		{callableProxy, "function"},
		{bound, "function"},
		{c.NewObject(ObjectNativeFunction), "function"},
		{c.NewObject(ObjectArray), "object"},
		{c.NewObject(ObjectClass), "object"},
	}
	for _, tc := range cases {
		if got := c.TypeOf(tc.v).String(); got != tc.want {
			t.Fatalf("typeof %s = %q, want %q", tc.v, got, tc.want)
		}
		if got := c.StringChars(c.TypeOfValue(tc.v)); got != tc.want {
			t.Fatalf("TypeOfValue(%s) = %q", tc.v, got)
		}
		c.Free(tc.v)
	}
	closeClean(t, c)
}

func TestObjectsSurviveWhileReachable(t *testing.T) {
	c := newContext(t, Options{})
	env := c.NewLexEnv(Null, 2)
	inner := c.NewLexEnv(env, 1)
	target := c.NewArray(0)
	handler := c.NewObject(ObjectGeneral)
	proxy := c.NewProxy(target, handler)

	c.Assign(c.Slot(inner, 0), proxy)
	c.Assign(c.Slot(env, 0), c.NewString("binding"))
	c.Free(c.Slot(env, 0).Value()) // slot holds its own copy
	c.AssignNumber(c.Slot(env, 1), 0.75)

	for _, v := range []Value{env, target, handler, proxy} {
		c.Free(v)
	}
	if swept := c.RunGC(); swept != 0 {
		t.Fatalf("reachable objects swept: %d", swept)
	}
	if c.OuterEnv(inner) != env || c.ProxyTarget(c.Slot(inner, 0).Value()) != target {
		t.Fatal("graph damaged")
	}
	if !c.ObjectOf(inner).IsLexEnv() || c.ObjectOf(proxy).Type() != ObjectProxy {
		t.Fatal("object metadata")
	}

	c.Free(inner)
	if swept := c.RunGC(); swept != 5 {
		t.Fatalf("expected 5 objects swept, got %d", swept)
	}
	if st := c.Heap().Stats(); st.LiveBlocks != 0 {
		t.Fatalf("slot contents leaked: %+v", c.Snapshot().Records)
	}
	closeClean(t, c)
}

func TestCloseReportsLeaks(t *testing.T) {
	c := newContext(t, Options{})
	c.NewString("leaked string")
	c.MakeNumber(0.5)
	c.NewObject(ObjectGeneral)
	err := c.Close()
	var leak *LeakError
	if !errors.As(err, &leak) {
		t.Fatalf("expected *LeakError, got %v", err)
	}
	if leak.Blocks != 3 || leak.ByKind["string"] != 1 || leak.ByKind["float"] != 1 || leak.ByKind["object"] != 1 {
		t.Fatalf("unexpected leak report: %+v", leak)
	}
	if !strings.Contains(err.Error(), "leaked string") {
		t.Fatalf("leak sample missing preview: %v", err)
	}
	if c.Close() != nil {
		t.Fatal("second Close must be a no-op")
	}
}

func TestHeapPressureRunsCollector(t *testing.T) {
	c := newContext(t, Options{HeapSize: 1024})
	// Each unreferenced object is garbage; allocation must keep succeeding.
	for i := 0; i < 1000; i++ {
		c.Free(c.NewObject(ObjectGeneral))
	}
	if c.Counters().GCRuns == 0 {
		t.Fatal("collector never ran")
	}
	closeClean(t, c)
}

func TestHeapExhaustionIsFatal(t *testing.T) {
	c := newContext(t, Options{HeapSize: 256})
	expectFatal(t, jrt.ErrOutOfMemory, func() {
		for {
			c.NewString("this string stays referenced forever")
		}
	})
}

func TestSnapshotRecords(t *testing.T) {
	c := newContext(t, Options{})
	s := c.NewString("snap")
	f := c.MakeNumber(1.25)
	env := c.NewLexEnv(Null, 0)
	snap := c.Snapshot()
	if snap.Engine != c.Engine() || snap.ID != c.ID().String() || snap.Codec == "" {
		t.Fatalf("snapshot header %+v", snap)
	}
	kinds := map[string]Record{}
	for _, r := range snap.Records {
		kinds[r.Kind] = r
	}
	if r := kinds["string"]; r.Refs != 1 || r.Preview != `"snap"` || r.Size != 12 {
		t.Fatalf("string record %+v", r)
	}
	if r := kinds["float"]; r.Preview != "1.25" || r.Size != 8 {
		t.Fatalf("float record %+v", r)
	}
	if r := kinds["lexenv"]; r.Refs != 1 {
		t.Fatalf("lexenv record %+v", r)
	}
	for i := 1; i < len(snap.Records); i++ {
		if snap.Records[i-1].Kind > snap.Records[i].Kind {
			t.Fatal("records not sorted by kind")
		}
	}
	c.Free(s)
	c.Free(f)
	c.Free(env)
	closeClean(t, c)
}

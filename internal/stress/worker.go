package stress

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"

	"ecmacore/internal/bignum"
	"ecmacore/internal/ecma"
	"ecmacore/internal/lit"
	"ecmacore/internal/testkit"
)

type op uint8

const (
	opInteger op = iota
	opFloat
	opUpdateFloat
	opString
	opBigInt
	opBigIntAdd
	opSymbol
	opObject
	opBound
	opProxy
	opRevoke
	opIsArray
	opError
	opCopy
	opStore
	opStoreNumber
	opLoad
	opClear
	opTypeOf
	opGC
	opCount
)

var opNames = [...]string{
	opInteger:     "integer",
	opFloat:       "float",
	opUpdateFloat: "update_float",
	opString:      "string",
	opBigInt:      "bigint",
	opBigIntAdd:   "bigint_add",
	opSymbol:      "symbol",
	opObject:      "object",
	opBound:       "bound",
	opProxy:       "proxy",
	opRevoke:      "revoke",
	opIsArray:     "is_array",
	opError:       "error",
	opCopy:        "copy",
	opStore:       "store",
	opStoreNumber: "store_number",
	opLoad:        "load",
	opClear:       "clear",
	opTypeOf:      "typeof",
	opGC:          "gc",
}

// weights sum to 100; gc stays rare.
var opWeights = [opCount]int{
	opInteger:     6,
	opFloat:       8,
	opUpdateFloat: 5,
	opString:      8,
	opBigInt:      5,
	opBigIntAdd:   3,
	opSymbol:      4,
	opObject:      6,
	opBound:       3,
	opProxy:       4,
	opRevoke:      2,
	opIsArray:     4,
	opError:       3,
	opCopy:        9,
	opStore:       10,
	opStoreNumber: 5,
	opLoad:        7,
	opClear:       4,
	opTypeOf:      3,
	opGC:          1,
}

var words = []string{
	"", "length", "prototype", "x", "hello", "ünïcödé", "😀 wide", "42", "4294967295", "007",
	"a much longer string that does not fit any direct encoding",
}

// worker owns a register file of values and a rooted environment whose
// bindings act as slots.
type worker struct {
	c    *ecma.Context
	rng  *rand.Rand
	regs []ecma.Value
	env  ecma.Value
	// slots is the binding count of env.
	slots     int
	checkHeap bool
	ops       [opCount]uint64
	step      int
}

func newWorker(c *ecma.Context, opts Options, idx int) *worker {
	w := &worker{
		c:         c,
		rng:       rand.New(rand.NewPCG(opts.Seed, uint64(idx))),
		regs:      make([]ecma.Value, opts.Registers),
		slots:     opts.Slots,
		checkHeap: opts.CheckHeap,
	}
	for i := range w.regs {
		w.regs[i] = ecma.Undefined
	}
	w.env = c.NewLexEnv(ecma.Null, opts.Slots)
	for i := 0; i < opts.Slots; i++ {
		c.Assign(c.Slot(w.env, i), ecma.Undefined)
	}
	return w
}

// put stores an owned value into register i.
func (w *worker) put(i int, v ecma.Value) {
	old := w.regs[i]
	w.regs[i] = v
	w.c.Free(old)
}

func (w *worker) reg() int  { return w.rng.IntN(len(w.regs)) }
func (w *worker) slot() int { return w.rng.IntN(w.slots) }

func (w *worker) pick() op {
	n := w.rng.IntN(100)
	for o, weight := range opWeights {
		if n < weight {
			return op(o)
		}
		n -= weight
	}
	return opGC
}

func (w *worker) number() float64 {
	switch w.rng.IntN(8) {
	case 0:
		return float64(w.rng.Int64N(1 << 20))
	case 1:
		return math.Copysign(0, -1)
	case 2:
		return math.NaN()
	case 3:
		return math.Inf(1 - 2*w.rng.IntN(2))
	case 4:
		return float64(ecma.IntegerMax) + 1
	default:
		return w.rng.NormFloat64() * 1e6
	}
}

func (w *worker) next() error {
	o := w.pick()
	w.ops[o]++
	w.step++
	c := w.c
	switch o {
	case opInteger:
		w.put(w.reg(), ecma.MakeInteger(w.rng.Int64N(ecma.IntegerMax)-ecma.IntegerMax/2))
	case opFloat:
		n := w.number()
		v := c.MakeNumber(n)
		if got := c.GetNumber(v); got != n && !(math.IsNaN(got) && math.IsNaN(n)) {
			c.Free(v)
			return fmt.Errorf("%w: MakeNumber(%v) reads back %v", ErrInvariant, n, got)
		}
		if n == 0 && math.Signbit(n) && !v.IsFloatNumber() {
			c.Free(v)
			return fmt.Errorf("%w: negative zero stored inline", ErrInvariant)
		}
		w.put(w.reg(), v)
	case opUpdateFloat:
		i := w.reg()
		if w.regs[i].IsFloatNumber() {
			w.regs[i] = c.UpdateFloat(w.regs[i], w.number())
		}
	case opString:
		s := words[w.rng.IntN(len(words))]
		v := c.NewString(s)
		if got := c.StringChars(v); got != s {
			c.Free(v)
			return fmt.Errorf("%w: string %q reads back %q", ErrInvariant, s, got)
		}
		w.put(w.reg(), v)
	case opBigInt:
		var literal string
		switch w.rng.IntN(10) {
		case 0:
			literal = "0n"
		case 1:
			literal = "0x" + strconv.FormatUint(w.rng.Uint64(), 16) + strconv.FormatUint(w.rng.Uint64(), 16) + "n"
		default:
			literal = strconv.FormatUint(1+w.rng.Uint64N(math.MaxUint64), 10) + "n"
		}
		n, err := bignum.ParseLiteral(literal)
		if err != nil {
			return err
		}
		if w.rng.IntN(2) == 0 {
			n = n.Neg()
		}
		w.put(w.reg(), c.NewBigInt(n))
	case opBigIntAdd:
		a, b := w.regs[w.reg()], w.regs[w.reg()]
		if a.IsBigInt() && b.IsBigInt() {
			sum, err := bignum.Add(c.BigIntOf(a), c.BigIntOf(b))
			if err != nil {
				return err
			}
			w.put(w.reg(), c.NewBigInt(sum))
		}
	case opSymbol:
		desc := w.regs[w.reg()]
		if !desc.IsString() {
			desc = ecma.Undefined
		}
		w.put(w.reg(), c.NewSymbol(c.Copy(desc)))
	case opObject:
		var v ecma.Value
		switch w.rng.IntN(4) {
		case 0:
			v = c.NewArray(uint32(w.rng.IntN(16)))
		case 1:
			v = c.NewFunction()
		case 2:
			v = c.NewRecord(1 + w.rng.IntN(4))
			c.Assign(c.Slot(v, 0), w.regs[w.reg()])
		default:
			v = c.NewObject(ecma.ObjectGeneral)
		}
		w.put(w.reg(), v)
	case opBound:
		target := w.regs[w.reg()]
		if c.IsCallable(target) {
			w.put(w.reg(), c.NewBoundFunction(target, w.regs[w.reg()]))
		}
	case opProxy:
		v := c.NewProxy(w.regs[w.reg()], w.regs[w.reg()])
		if v.IsErrorReference() {
			v = w.takeError(v)
		}
		w.put(w.reg(), v)
	case opRevoke:
		v := w.regs[w.reg()]
		if v.IsObject() && c.ObjectOf(v).Type() == ecma.ObjectProxy {
			c.RevokeProxy(v)
		}
	case opIsArray:
		v := w.regs[w.reg()]
		r := c.IsArray(v)
		switch {
		case r.IsErrorReference():
			c.Free(w.takeError(r))
		case !r.IsBoolean():
			return fmt.Errorf("%w: IsArray(%s) = %s", ErrInvariant, v, r)
		case v.IsObject() && c.ObjectOf(v).Type() == ecma.ObjectArray && !r.IsTrue():
			return fmt.Errorf("%w: array %s is not an array", ErrInvariant, v)
		}
	case opError:
		var e ecma.Value
		if w.rng.IntN(2) == 0 {
			e = c.RaiseTypeError("stress step " + strconv.Itoa(w.step))
		} else {
			e = c.RaiseRangeError("out of range")
		}
		if w.rng.IntN(2) == 0 {
			e = c.AcquireError(e)
			c.ReleaseError(e)
		}
		w.put(w.reg(), w.takeError(e))
	case opCopy:
		src, dst := w.reg(), w.reg()
		c.Replace(&w.regs[dst], w.regs[src])
		if !w.isNaN(w.regs[src]) && !c.Equal(w.regs[dst], w.regs[src]) {
			return fmt.Errorf("%w: copy of %s differs", ErrInvariant, w.regs[src])
		}
	case opStore:
		c.Assign(c.Slot(w.env, w.slot()), w.regs[w.reg()])
	case opStoreNumber:
		c.AssignNumber(c.Slot(w.env, w.slot()), w.number())
	case opLoad:
		v := c.Slot(w.env, w.slot()).Value()
		if !v.IsEmpty() {
			c.Replace(&w.regs[w.reg()], v)
		}
	case opClear:
		if w.rng.IntN(2) == 0 {
			c.Clear(c.Slot(w.env, w.slot()))
		} else {
			w.put(w.reg(), ecma.Undefined)
		}
	case opTypeOf:
		v := w.regs[w.reg()]
		if v.IsEmpty() {
			break
		}
		id := c.TypeOf(v)
		if !id.Valid() || (v.IsNumber() && id != lit.MagicNumber) || (v.IsString() && id != lit.MagicString) {
			return fmt.Errorf("%w: typeof %s = %s", ErrInvariant, v, id)
		}
	case opGC:
		c.RunGC()
		if w.checkHeap {
			if err := testkit.CheckHeapInvariants(c.Heap()); err != nil {
				return fmt.Errorf("%w: %v", ErrInvariant, err)
			}
		}
	}
	return nil
}

func (w *worker) isNaN(v ecma.Value) bool {
	return v.IsFloatNumber() && math.IsNaN(w.c.GetFloat(v))
}

// takeError consumes an error reference and returns the owned thrown value.
func (w *worker) takeError(e ecma.Value) ecma.Value {
	return w.c.TakeError(e)
}

func (w *worker) opCounts() map[string]uint64 {
	out := make(map[string]uint64, opCount)
	for o, n := range w.ops {
		if n > 0 {
			out[opNames[o]] = n
		}
	}
	return out
}

// close releases the register file and the environment root. Whatever the
// environment still holds is reclaimed by the collector.
func (w *worker) close() {
	for i := range w.regs {
		w.put(i, ecma.Undefined)
	}
	w.c.Free(w.env)
	w.env = ecma.Undefined
}

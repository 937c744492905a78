package testkit

import (
	"strings"
	"testing"

	"ecmacore/internal/jmem"
)

func newHeap(t *testing.T) *jmem.Heap {
	t.Helper()
	h, err := jmem.NewHeap(jmem.Options{Size: 4096})
	if err != nil {
		t.Fatalf("NewHeap: %v", err)
	}
	return h
}

func TestCheckHeapInvariants(t *testing.T) {
	h := newHeap(t)
	if err := CheckHeapInvariants(h); err != nil {
		t.Fatalf("empty heap: %v", err)
	}
	a := h.Alloc(24)
	b := h.PoolAlloc(8)
	c := h.Alloc(64)
	if err := CheckHeapInvariants(h); err != nil {
		t.Fatalf("after allocs: %v", err)
	}
	h.Free(a, 24)
	h.PoolFree(b, 8)
	if err := CheckHeapInvariants(h); err != nil {
		t.Fatalf("after frees: %v", err)
	}
	h.Free(c, 64)
	h.CollectEmptyPools()
	if err := CheckHeapInvariants(h); err != nil {
		t.Fatalf("after collect: %v", err)
	}
}

func TestCheckHeapInvariantsNil(t *testing.T) {
	if err := CheckHeapInvariants(nil); err == nil || !strings.Contains(err.Error(), "nil") {
		t.Fatalf("err = %v", err)
	}
}

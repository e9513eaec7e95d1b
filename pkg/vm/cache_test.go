package vm

import "testing"

func TestLookupCacheStoreAndLookup(t *testing.T) {
	vmInst := NewVM(fakeHost{})
	obj := newFakeObj()

	if _, ok := vmInst.lcacheLookup(obj, MakeString("x")); ok {
		t.Fatal("a fresh VM should have nothing cached")
	}
	vmInst.lcacheStore(obj, MakeString("x"), MakeInt(5))
	got, ok := vmInst.lcacheLookup(obj, MakeString("x"))
	if !ok || got.AsInt() != 5 {
		t.Fatalf("got (%v, %v), want (5, true)", got, ok)
	}
}

func TestLookupCacheOnlyCachesStringKeys(t *testing.T) {
	vmInst := NewVM(fakeHost{})
	obj := newFakeObj()
	vmInst.lcacheStore(obj, MakeSymbol("s"), MakeInt(1))
	if _, ok := vmInst.lcacheLookup(obj, MakeSymbol("s")); ok {
		t.Fatal("symbol-keyed reads must never be cached")
	}
}

func TestLookupCacheInvalidate(t *testing.T) {
	vmInst := NewVM(fakeHost{})
	obj := newFakeObj()
	vmInst.lcacheStore(obj, MakeString("x"), MakeInt(5))
	vmInst.lcacheInvalidate(obj, MakeString("x"))
	if _, ok := vmInst.lcacheLookup(obj, MakeString("x")); ok {
		t.Fatal("expected the entry to be gone after invalidation")
	}
}

func TestLookupCacheIsPerObjectIdentity(t *testing.T) {
	vmInst := NewVM(fakeHost{})
	a, b := newFakeObj(), newFakeObj()
	vmInst.lcacheStore(a, MakeString("x"), MakeInt(1))
	vmInst.lcacheStore(b, MakeString("x"), MakeInt(2))

	got, _ := vmInst.lcacheLookup(a, MakeString("x"))
	if got.AsInt() != 1 {
		t.Fatalf("got %v, want 1", got.AsInt())
	}
	got, _ = vmInst.lcacheLookup(b, MakeString("x"))
	if got.AsInt() != 2 {
		t.Fatalf("got %v, want 2", got.AsInt())
	}
}

package vm

import (
	"math"
	"testing"
)

func TestNumericBinOp(t *testing.T) {
	vm := NewVM(fakeHost{})
	cases := []struct {
		op   OpCode
		a, b Value
		want float64
	}{
		{OpSub, MakeInt(5), MakeInt(2), 3},
		{OpMul, MakeInt(5), MakeInt(2), 10},
		{OpDiv, MakeInt(5), MakeInt(2), 2.5},
		{OpMod, MakeFloat(5.5), MakeInt(2), 1.5},
		{OpExp, MakeInt(2), MakeInt(10), 1024},
	}
	for _, c := range cases {
		got, err := vm.numericBinOp(nil, c.op, c.a, c.b)
		if err != nil {
			t.Fatalf("op %v: unexpected error: %v", c.op, err)
		}
		if got.AsNumber() != c.want {
			t.Errorf("op %v: got %v, want %v", c.op, got.AsNumber(), c.want)
		}
	}
}

func TestBitwiseBinOp(t *testing.T) {
	vm := NewVM(fakeHost{})
	got, err := vm.bitwiseBinOp(nil, OpBitAnd, MakeInt(6), MakeInt(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AsNumber() != 2 {
		t.Fatalf("6 & 3 = %v, want 2", got.AsNumber())
	}
	got, err = vm.bitwiseBinOp(nil, OpLeftShift, MakeInt(1), MakeInt(4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AsNumber() != 16 {
		t.Fatalf("1 << 4 = %v, want 16", got.AsNumber())
	}
	got, err = vm.bitwiseBinOp(nil, OpUnsRightShift, MakeInt(-1), MakeInt(28))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AsNumber() != 15 {
		t.Fatalf("-1 >>> 28 = %v, want 15", got.AsNumber())
	}
}

func TestBitwiseUnary(t *testing.T) {
	vm := NewVM(fakeHost{})
	got, err := vm.bitwiseUnary(nil, MakeInt(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AsNumber() != -1 {
		t.Fatalf("~0 = %v, want -1", got.AsNumber())
	}
}

func TestRelationalOpStrings(t *testing.T) {
	vm := NewVM(fakeHost{})
	got, err := vm.relationalOp(nil, OpLess, MakeString("abc"), MakeString("abd"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.AsBool() {
		t.Fatal(`"abc" < "abd" should be true`)
	}
}

func TestRelationalOpNumbers(t *testing.T) {
	vm := NewVM(fakeHost{})
	got, err := vm.relationalOp(nil, OpGreaterEqual, MakeInt(5), MakeInt(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.AsBool() {
		t.Fatal("5 >= 5 should be true")
	}
}

func TestRelationalOpNaNIsAlwaysFalse(t *testing.T) {
	vm := NewVM(fakeHost{})
	nanVal := MakeFloat(math.NaN())
	for _, op := range []OpCode{OpLess, OpGreater, OpLessEqual, OpGreaterEqual} {
		got, err := vm.relationalOp(nil, op, nanVal, MakeInt(1))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.AsBool() {
			t.Fatalf("op %v against NaN should be false", op)
		}
	}
}

func TestInstanceOfWalksPrototypeChain(t *testing.T) {
	vmInst := NewVM(fakeHost{})
	proto := newFakeObj()
	ctor := newFakeObj()
	ctor.callable = true
	ctor.props["prototype"] = MakeObject(proto)

	instance := newFakeObj()
	instance.proto = MakeObject(proto)

	got, err := vmInst.instanceOf(nil, MakeObject(instance), MakeObject(ctor))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.AsBool() {
		t.Fatal("instance should report instanceof its constructor's prototype")
	}
}

func TestInstanceOfFalseWhenPrototypeNotInChain(t *testing.T) {
	vmInst := NewVM(fakeHost{})
	proto := newFakeObj()
	ctor := newFakeObj()
	ctor.callable = true
	ctor.props["prototype"] = MakeObject(proto)

	unrelated := newFakeObj()
	unrelated.proto = Null()

	got, err := vmInst.instanceOf(nil, MakeObject(unrelated), MakeObject(ctor))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AsBool() {
		t.Fatal("unrelated object should not report instanceof")
	}
}

func TestInstanceOfNonCallableThrows(t *testing.T) {
	vmInst := NewVM(fakeHost{})
	notCallable := newFakeObj()
	_, err := vmInst.instanceOf(nil, MakeInt(1), MakeObject(notCallable))
	if err == nil {
		t.Fatal("expected a TypeError for a non-callable right-hand side")
	}
}

func TestInstanceOfNonObjectLeftIsFalse(t *testing.T) {
	vmInst := NewVM(fakeHost{})
	ctor := newFakeObj()
	ctor.callable = true
	ctor.props["prototype"] = MakeObject(newFakeObj())
	got, err := vmInst.instanceOf(nil, MakeInt(5), MakeObject(ctor))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AsBool() {
		t.Fatal("a primitive left-hand side can never be an instance of anything")
	}
}

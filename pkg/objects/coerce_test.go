package objects

import (
	"math"
	"testing"

	"ecmavm/pkg/vm"
)

func TestToNumber(t *testing.T) {
	host := NewHost()
	cases := []struct {
		name string
		in   vm.Value
		want float64
	}{
		{"int", vm.MakeInt(5), 5},
		{"true", vm.MakeBool(true), 1},
		{"false", vm.MakeBool(false), 0},
		{"null", vm.Null(), 0},
		{"numeric string", vm.MakeString(" 42 "), 42},
		{"empty string", vm.MakeString(""), 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v, err := host.ToNumber(c.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if v.AsFloat() != c.want {
				t.Fatalf("got %v, want %v", v.AsFloat(), c.want)
			}
		})
	}

	v, err := host.ToNumber(vm.Undefined())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsNaN(v.AsFloat()) {
		t.Fatalf("ToNumber(undefined) = %v, want NaN", v.AsFloat())
	}

	v, err = host.ToNumber(vm.MakeString("not a number"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsNaN(v.AsFloat()) {
		t.Fatalf("ToNumber(%q) = %v, want NaN", "not a number", v.AsFloat())
	}
}

func TestToStringPrimitives(t *testing.T) {
	host := NewHost()
	cases := []struct {
		in   vm.Value
		want string
	}{
		{vm.MakeInt(5), "5"},
		{vm.MakeFloat(1.5), "1.5"},
		{vm.Undefined(), "undefined"},
		{vm.Null(), "null"},
		{vm.MakeBool(true), "true"},
		{vm.MakeBool(false), "false"},
		{vm.MakeString("hi"), "hi"},
	}
	for _, c := range cases {
		s, err := host.ToString(c.in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s != c.want {
			t.Errorf("ToString(%v) = %q, want %q", c.in, s, c.want)
		}
	}
}

func TestToStringSymbolThrows(t *testing.T) {
	host := NewHost()
	if _, err := host.ToString(vm.MakeSymbol("s")); err == nil {
		t.Fatal("expected ToString(symbol) to raise a TypeError")
	}
}

func TestToStringArrayJoinsWithCommas(t *testing.T) {
	host := NewHost()
	arr := NewArrayObject(host.ArrayProto(), []vm.Value{vm.MakeInt(1), vm.Undefined(), vm.MakeInt(3)})
	s, err := host.ToString(vm.MakeObject(arr))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != "1,,3" {
		t.Fatalf("got %q, want %q", s, "1,,3")
	}
}

func TestToBoolean(t *testing.T) {
	host := NewHost()
	cases := []struct {
		in   vm.Value
		want bool
	}{
		{vm.MakeInt(0), false},
		{vm.MakeInt(1), true},
		{vm.MakeString(""), false},
		{vm.MakeString("x"), true},
		{vm.Undefined(), false},
		{vm.Null(), false},
		{vm.MakeBool(true), true},
		{vm.MakeBool(false), false},
		{vm.MakeFloat(math.NaN()), false},
	}
	for _, c := range cases {
		if got := host.ToBoolean(c.in); got != c.want {
			t.Errorf("ToBoolean(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestToPropNameNormalizesStrings(t *testing.T) {
	host := NewHost()
	// "é" as a single precomposed rune vs. "e" + combining acute accent
	// must normalize to the same property key.
	precomposed := "é"
	decomposed := "é"

	a, err := host.ToPropName(vm.MakeString(precomposed))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := host.ToPropName(vm.MakeString(decomposed))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.AsString() != b.AsString() {
		t.Fatalf("canonically equivalent strings normalized differently: %q vs %q", a.AsString(), b.AsString())
	}
}

func TestToObjectWrapsStringAsIndexable(t *testing.T) {
	host := NewHost()
	ref, err := host.ToObject(vm.MakeString("hi"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := host.ObjectGet(ref, vm.MakeInt(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.IsString() || v.AsString() != "i" {
		t.Fatalf("got %v, want %q", v, "i")
	}
}

func TestToObjectRejectsNullAndUndefined(t *testing.T) {
	host := NewHost()
	if _, err := host.ToObject(vm.Null()); err == nil {
		t.Fatal("expected ToObject(null) to raise a TypeError")
	}
	if _, err := host.ToObject(vm.Undefined()); err == nil {
		t.Fatal("expected ToObject(undefined) to raise a TypeError")
	}
}

func TestStrictEquals(t *testing.T) {
	host := NewHost()
	if !host.StrictEquals(vm.MakeInt(1), vm.MakeFloat(1)) {
		t.Fatal("1 (int) !== 1.0 (float), but these must be the same number")
	}
	if host.StrictEquals(vm.MakeString("1"), vm.MakeInt(1)) {
		t.Fatal("a string and a number must never be strictly equal")
	}
	a, b := vm.MakeSymbol("s"), vm.MakeSymbol("s")
	if host.StrictEquals(a, b) {
		t.Fatal("distinct symbols with the same description must not be strictly equal")
	}
	if !host.StrictEquals(a, a) {
		t.Fatal("a symbol must be strictly equal to itself")
	}
}

func TestAbstractEqualsNullAndUndefinedAreLooselyEqual(t *testing.T) {
	host := NewHost()
	eq, err := host.AbstractEquals(vm.Null(), vm.Undefined())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !eq {
		t.Fatal("null == undefined must be true")
	}
}

func TestAbstractEqualsCoercesStringToNumber(t *testing.T) {
	host := NewHost()
	eq, err := host.AbstractEquals(vm.MakeString("1"), vm.MakeInt(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !eq {
		t.Fatal(`"1" == 1 must be true`)
	}
}

func TestAddition(t *testing.T) {
	host := NewHost()
	v, err := host.Addition(vm.MakeInt(1), vm.MakeInt(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.AsFloat() != 3 {
		t.Fatalf("1 + 2 = %v, want 3", v)
	}

	v, err = host.Addition(vm.MakeString("a"), vm.MakeInt(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.AsString() != "a1" {
		t.Fatalf(`"a" + 1 = %q, want "a1"`, v.AsString())
	}
}

func TestTypeOf(t *testing.T) {
	host := NewHost()
	fn := vm.MakeObject(NewNativeFunction(host.FunctionProto(), "f", nil))
	cases := []struct {
		in   vm.Value
		want string
	}{
		{vm.Undefined(), "undefined"},
		{vm.Null(), "object"},
		{vm.MakeBool(true), "boolean"},
		{vm.MakeInt(1), "number"},
		{vm.MakeString("s"), "string"},
		{vm.MakeSymbol("s"), "symbol"},
		{fn, "function"},
	}
	for _, c := range cases {
		if got := host.TypeOf(c.in); got != c.want {
			t.Errorf("TypeOf(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

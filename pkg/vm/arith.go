package vm

import (
	"math"

	"ecmavm/pkg/errors"
)

// numericBinOp runs the ECMAScript numeric algorithm for SUB/MUL/DIV/
// MOD/EXP once the integer fast path in dispatch.go has already been
// tried and failed (overflow, non-integer operand, or division).
func (vm *VM) numericBinOp(f *FrameContext, op OpCode, a, b Value) (Value, error) {
	host := vm.host
	an, err := host.ToNumber(a)
	a.FastFree(host)
	if err != nil {
		b.FastFree(host)
		return Undefined(), err
	}
	bn, err := host.ToNumber(b)
	b.FastFree(host)
	if err != nil {
		return Undefined(), err
	}
	x, y := an.AsNumber(), bn.AsNumber()
	switch op {
	case OpSub:
		return MakeNumber(x - y), nil
	case OpMul:
		return MakeNumber(x * y), nil
	case OpDiv:
		return MakeNumber(x / y), nil
	case OpMod:
		return MakeNumber(math.Mod(x, y)), nil
	case OpExp:
		return MakeNumber(math.Pow(x, y)), nil
	}
	return Undefined(), nil
}

func toInt32(n float64) int32 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return int32(uint32(int64(n)))
}

func toUint32(n float64) uint32 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return uint32(int64(n))
}

func (vm *VM) bitwiseBinOp(f *FrameContext, op OpCode, a, b Value) (Value, error) {
	host := vm.host
	an, err := host.ToNumber(a)
	a.FastFree(host)
	if err != nil {
		b.FastFree(host)
		return Undefined(), err
	}
	bn, err := host.ToNumber(b)
	b.FastFree(host)
	if err != nil {
		return Undefined(), err
	}
	x := toInt32(an.AsNumber())
	switch op {
	case OpBitOr:
		return MakeInt32(int64(x | toInt32(bn.AsNumber()))), nil
	case OpBitXor:
		return MakeInt32(int64(x ^ toInt32(bn.AsNumber()))), nil
	case OpBitAnd:
		return MakeInt32(int64(x & toInt32(bn.AsNumber()))), nil
	case OpLeftShift:
		shift := toUint32(bn.AsNumber()) & 0x1f
		return MakeInt32(int64(x << shift)), nil
	case OpRightShift:
		shift := toUint32(bn.AsNumber()) & 0x1f
		return MakeInt32(int64(x >> shift)), nil
	case OpUnsRightShift:
		shift := toUint32(bn.AsNumber()) & 0x1f
		ux := toUint32(an.AsNumber())
		return MakeNumber(float64(ux >> shift)), nil
	}
	return Undefined(), nil
}

func (vm *VM) bitwiseUnary(f *FrameContext, a Value) (Value, error) {
	host := vm.host
	n, err := host.ToNumber(a)
	a.FastFree(host)
	if err != nil {
		return Undefined(), err
	}
	return MakeInt32(int64(^toInt32(n.AsNumber()))), nil
}

// relationalOp implements the abstract relational comparison algorithm
// for LESS/GREATER/LESS_EQUAL/GREATER_EQUAL: string operands compare
// lexicographically, everything else compares as numbers, and a NaN
// result always yields false.
func (vm *VM) relationalOp(f *FrameContext, op OpCode, a, b Value) (Value, error) {
	host := vm.host
	if a.IsString() && b.IsString() {
		as, bs := a.AsString(), b.AsString()
		var result bool
		switch op {
		case OpLess:
			result = as < bs
		case OpGreater:
			result = as > bs
		case OpLessEqual:
			result = as <= bs
		case OpGreaterEqual:
			result = as >= bs
		}
		return MakeBool(result), nil
	}
	an, err := host.ToNumber(a)
	a.FastFree(host)
	if err != nil {
		b.FastFree(host)
		return Undefined(), err
	}
	bn, err := host.ToNumber(b)
	b.FastFree(host)
	if err != nil {
		return Undefined(), err
	}
	x, y := an.AsNumber(), bn.AsNumber()
	if math.IsNaN(x) || math.IsNaN(y) {
		return MakeBool(false), nil
	}
	var result bool
	switch op {
	case OpLess:
		result = x < y
	case OpGreater:
		result = x > y
	case OpLessEqual:
		result = x <= y
	case OpGreaterEqual:
		result = x >= y
	}
	return MakeBool(result), nil
}

func (vm *VM) instanceOf(f *FrameContext, a, b Value) (Value, error) {
	host := vm.host
	if !host.IsCallable(b) {
		a.FastFree(host)
		b.FastFree(host)
		return Undefined(), errors.NewTypeError(vm.pos(f), "Right-hand side of 'instanceof' is not callable")
	}
	proto, err := host.ObjectGet(b.AsObject(), MakeString("prototype"))
	b.FastFree(host)
	if err != nil {
		a.FastFree(host)
		return Undefined(), err
	}
	if !a.IsObject() {
		a.FastFree(host)
		return MakeBool(false), nil
	}
	result := false
	cur, err := host.ObjectGetProto(a.AsObject())
	for err == nil && cur.IsObject() {
		if proto.IsObject() && host.StrictEquals(cur, proto) {
			result = true
			break
		}
		cur, err = host.ObjectGetProto(cur.AsObject())
	}
	a.FastFree(host)
	if err != nil {
		return Undefined(), err
	}
	return MakeBool(result), nil
}

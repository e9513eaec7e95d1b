package objects

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"ecmavm/pkg/vm"
)

// ToNumber implements the abstract ToNumber operation for the subset of
// types this collaborator needs to support: objects are converted with
// this host's own ToString (no valueOf or toString method is looked up
// or called) and the resulting string is parsed, so anything that does
// not stringify to a numeric literal becomes NaN.
func (h *Host) ToNumber(v vm.Value) (vm.Value, error) {
	switch {
	case v.IsNumber():
		return v, nil
	case v.IsUndefined():
		return vm.MakeFloat(math.NaN()), nil
	case v.IsNull():
		return vm.MakeInt(0), nil
	case v.Tag() == vm.TagTrue:
		return vm.MakeInt(1), nil
	case v.Tag() == vm.TagFalse:
		return vm.MakeInt(0), nil
	case v.IsString():
		return vm.MakeNumber(stringToNumber(v.AsString())), nil
	case v.IsObject():
		s, err := h.ToString(v)
		if err != nil {
			return vm.Undefined(), err
		}
		return vm.MakeNumber(stringToNumber(s)), nil
	default:
		return vm.MakeFloat(math.NaN()), nil
	}
}

func stringToNumber(s string) float64 {
	t := strings.TrimSpace(s)
	if t == "" {
		return 0
	}
	n, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return math.NaN()
	}
	return n
}

// ToString implements the abstract ToString operation.
func (h *Host) ToString(v vm.Value) (string, error) {
	switch {
	case v.IsString():
		return v.AsString(), nil
	case v.IsUndefined():
		return "undefined", nil
	case v.IsNull():
		return "null", nil
	case v.Tag() == vm.TagTrue:
		return "true", nil
	case v.Tag() == vm.TagFalse:
		return "false", nil
	case v.IsNumber():
		return formatNumber(v.AsFloat()), nil
	case v.IsSymbol():
		return "", h.raiseTypeErrorErr("Cannot convert a Symbol value to a string")
	case v.IsObject():
		return h.objectToString(v)
	default:
		return "", nil
	}
}

func formatNumber(n float64) string {
	if math.IsNaN(n) {
		return "NaN"
	}
	if math.IsInf(n, 1) {
		return "Infinity"
	}
	if math.IsInf(n, -1) {
		return "-Infinity"
	}
	if n == math.Trunc(n) && math.Abs(n) < 1e21 {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// objectToString runs the array/plain-object/function display paths a
// coercion through ToString reaches for an object base, without pulling
// in a full Object.prototype.toString/Array.prototype.join
// implementation: arrays join their elements with a comma, functions
// show a source-less stub, everything else is "[object Object]".
func (h *Host) objectToString(v vm.Value) (string, error) {
	switch o := v.AsObject().(type) {
	case *ArrayObject:
		parts := make([]string, o.Length())
		for i := 0; i < o.Length(); i++ {
			item, ok := o.getIndex(i)
			if !ok || item.IsNullOrUndefined() {
				parts[i] = ""
				continue
			}
			s, err := h.ToString(item)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return strings.Join(parts, ","), nil
	case *FunctionObject:
		return "function " + o.name + "() { [native code] }", nil
	case *NativeFunction:
		return "function " + o.name + "() { [native code] }", nil
	default:
		return "[object Object]", nil
	}
}

func (h *Host) ToBoolean(v vm.Value) bool {
	switch {
	case v.Tag() == vm.TagTrue:
		return true
	case v.Tag() == vm.TagFalse:
		return false
	case v.IsUndefined(), v.IsNull():
		return false
	case v.IsInt():
		return v.AsInt() != 0
	case v.IsFloat():
		f := v.AsFloat()
		return f != 0 && !math.IsNaN(f)
	case v.IsString():
		return v.AsString() != ""
	default:
		return true // objects and symbols are always truthy
	}
}

// ToPropName implements ToPropertyKey: strings and symbols pass through
// unchanged (NFC-normalized for strings, so a computed member expression
// built from distinct-but-canonically-equivalent Unicode forms resolves
// to the same property slot a literal identifier of the same text
// would), everything else goes through ToString first.
func (h *Host) ToPropName(v vm.Value) (vm.Value, error) {
	if v.IsSymbol() {
		return v, nil
	}
	if v.IsString() {
		return vm.MakeString(norm.NFC.String(v.AsString())), nil
	}
	s, err := h.ToString(v)
	if err != nil {
		return vm.Undefined(), err
	}
	return vm.MakeString(norm.NFC.String(s)), nil
}

func (h *Host) CheckObjectCoercible(v vm.Value) error {
	if v.IsNullOrUndefined() {
		return h.raiseTypeErrorErr("Cannot convert undefined or null to object")
	}
	return nil
}

// ToObject wraps a primitive in an exotic wrapper object (own-property
// capable, but observably primitive through valueOf-style access);
// strings wrap to an array-like of their code points (runes) since indexed
// character access (`"abc"[1]`) is the only observable own-property
// behavior this collaborator needs to support for a wrapped string.
func (h *Host) ToObject(v vm.Value) (vm.ObjectRef, error) {
	if v.IsObject() {
		return v.AsObject(), nil
	}
	if err := h.CheckObjectCoercible(v); err != nil {
		return nil, err
	}
	switch {
	case v.IsString():
		s := v.AsString()
		runes := []rune(s)
		items := make([]vm.Value, len(runes))
		for i, r := range runes {
			items[i] = vm.MakeString(string(r))
		}
		arr := NewArrayObject(h.arrayProto, items)
		defineOwn(arr, vm.MakeString("length"), vm.MakeInt(int32(len(runes))), false, false, false)
		return arr, nil
	default:
		obj := NewPlainObject(h.objectProto)
		defineOwn(obj, vm.MakeString("valueOf"), v, false, false, false)
		return obj, nil
	}
}

func (h *Host) StrictEquals(a, b vm.Value) bool {
	if a.Tag() != b.Tag() {
		if a.IsNumber() && b.IsNumber() {
			return a.AsFloat() == b.AsFloat()
		}
		return false
	}
	switch {
	case a.IsNumber():
		return a.AsFloat() == b.AsFloat()
	case a.IsString():
		return a.AsString() == b.AsString()
	case a.IsSymbol():
		return a.SymbolIdentity() == b.SymbolIdentity()
	case a.IsObject():
		return a.AsObject() == b.AsObject()
	default:
		return true // both are the same direct-constant tag (undefined/null/true/false)
	}
}

func (h *Host) AbstractEquals(a, b vm.Value) (bool, error) {
	if a.Tag() == b.Tag() || (a.IsNumber() && b.IsNumber()) {
		return h.StrictEquals(a, b), nil
	}
	if a.IsNullOrUndefined() && b.IsNullOrUndefined() {
		return true, nil
	}
	if a.IsNullOrUndefined() || b.IsNullOrUndefined() {
		return false, nil
	}
	if a.IsObject() && !b.IsObject() {
		pa, err := h.toPrimitive(a)
		if err != nil {
			return false, err
		}
		return h.AbstractEquals(pa, b)
	}
	if b.IsObject() && !a.IsObject() {
		pb, err := h.toPrimitive(b)
		if err != nil {
			return false, err
		}
		return h.AbstractEquals(a, pb)
	}
	an, err := h.ToNumber(a)
	if err != nil {
		return false, err
	}
	bn, err := h.ToNumber(b)
	if err != nil {
		return false, err
	}
	return an.AsFloat() == bn.AsFloat(), nil
}

func (h *Host) toPrimitive(v vm.Value) (vm.Value, error) {
	if !v.IsObject() {
		return v, nil
	}
	s, err := h.ToString(v)
	if err != nil {
		return vm.Undefined(), err
	}
	return vm.MakeString(s), nil
}

// Addition implements the `+` operator's ToPrimitive-then-concat-or-add
// dance.
func (h *Host) Addition(a, b vm.Value) (vm.Value, error) {
	pa, err := h.toPrimitive(a)
	if err != nil {
		return vm.Undefined(), err
	}
	pb, err := h.toPrimitive(b)
	if err != nil {
		return vm.Undefined(), err
	}
	if pa.IsString() || pb.IsString() {
		sa, err := h.ToString(pa)
		if err != nil {
			return vm.Undefined(), err
		}
		sb, err := h.ToString(pb)
		if err != nil {
			return vm.Undefined(), err
		}
		return vm.MakeString(sa + sb), nil
	}
	na, err := h.ToNumber(pa)
	if err != nil {
		return vm.Undefined(), err
	}
	nb, err := h.ToNumber(pb)
	if err != nil {
		return vm.Undefined(), err
	}
	return vm.MakeNumber(na.AsFloat() + nb.AsFloat()), nil
}

func (h *Host) TypeOf(v vm.Value) string {
	switch {
	case v.IsUndefined():
		return "undefined"
	case v.IsNull():
		return "object"
	case v.IsBool():
		return "boolean"
	case v.IsNumber():
		return "number"
	case v.IsString():
		return "string"
	case v.IsSymbol():
		return "symbol"
	case v.IsObject():
		if h.IsCallable(v) {
			return "function"
		}
		return "object"
	default:
		return "undefined"
	}
}

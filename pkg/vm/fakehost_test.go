package vm

import (
	"strconv"

	"ecmavm/pkg/errors"
)

// fakeObj is the minimal ObjectRef this package's own tests need to drive
// getValue/setValue/instanceOf/the lookup cache without reaching across
// into pkg/objects (which imports this package, so an internal test file
// here can never import it back without a cycle).
type fakeObj struct {
	props      map[string]Value
	accessors  map[string]func() Value
	proto      Value
	extensible bool
	isArray    bool
	arr        []Value
	callable   bool
}

func newFakeObj() *fakeObj {
	return &fakeObj{props: map[string]Value{}, proto: Null(), extensible: true}
}

// fakeHost implements Host with just enough behavior to exercise
// getValue/setValue/instanceOf/numericBinOp/bitwiseBinOp/relationalOp and
// the lookup cache. Every method this package's own logic never reaches
// through panics so an accidental call is obvious rather than silently
// wrong.
type fakeHost struct{}

func (fakeHost) ObjectGet(obj ObjectRef, key Value) (Value, error) {
	o := obj.(*fakeObj)
	if v, ok := o.props[key.AsString()]; ok {
		return v, nil
	}
	return Undefined(), nil
}

// ObjectGetWithKind re-invokes a registered accessor thunk on every call
// (PropertyAccessor), so a test can assert the lookup cache never stores
// its result; a plain props entry reads back as a data property.
func (fakeHost) ObjectGetWithKind(obj ObjectRef, key Value) (Value, PropertyKind, error) {
	o := obj.(*fakeObj)
	if get, ok := o.accessors[key.AsString()]; ok {
		return get(), PropertyAccessor, nil
	}
	if v, ok := o.props[key.AsString()]; ok {
		return v, PropertyData, nil
	}
	return Undefined(), PropertyMissing, nil
}

func (fakeHost) ObjectPutWithReceiver(obj ObjectRef, key Value, val Value, receiver ObjectRef, strict bool) error {
	receiver.(*fakeObj).props[key.AsString()] = val
	return nil
}

func (fakeHost) ObjectHasProperty(obj ObjectRef, key Value) (bool, error) {
	_, ok := obj.(*fakeObj).props[key.AsString()]
	return ok, nil
}

func (fakeHost) ObjectDelete(obj ObjectRef, key Value) (bool, error) {
	o := obj.(*fakeObj)
	delete(o.props, key.AsString())
	return true, nil
}

func (fakeHost) ObjectDefineOwn(obj ObjectRef, key Value, val Value, writable, enumerable, configurable bool) error {
	obj.(*fakeObj).props[key.AsString()] = val
	return nil
}

func (fakeHost) ObjectDefineAccessor(obj ObjectRef, key Value, getter, setter Value, enumerable, configurable bool) error {
	panic("not used by this package's own tests")
}

func (fakeHost) ObjectSetProto(obj ObjectRef, proto Value) error {
	obj.(*fakeObj).proto = proto
	return nil
}

func (fakeHost) ObjectGetProto(obj ObjectRef) (Value, error) {
	return obj.(*fakeObj).proto, nil
}

func (fakeHost) IsFastArray(obj ObjectRef) bool { return obj.(*fakeObj).isArray }

func (fakeHost) FastArrayGet(obj ObjectRef, index int) (Value, bool) {
	o := obj.(*fakeObj)
	if index < 0 || index >= len(o.arr) {
		return Undefined(), false
	}
	return o.arr[index], true
}

func (fakeHost) FastArrayLength(obj ObjectRef) int { return len(obj.(*fakeObj).arr) }

func (fakeHost) IsCallable(v Value) bool {
	return v.IsObject() && v.AsObject().(*fakeObj).callable
}
func (fakeHost) IsConstructor(v Value) bool { return false }
func (fakeHost) IsPlainObject(v Value) bool { return v.IsObject() }
func (fakeHost) IsExtensible(obj ObjectRef) bool { return obj.(*fakeObj).extensible }
func (fakeHost) PreventExtensions(obj ObjectRef) error {
	obj.(*fakeObj).extensible = false
	return nil
}

func (fakeHost) FunctionCall(fn Value, this Value, args []Value) (Value, error) {
	panic("not used by this package's own tests")
}
func (fakeHost) FunctionConstruct(fn Value, newTarget Value, args []Value) (Value, error) {
	panic("not used by this package's own tests")
}

func (fakeHost) CreateDeclLexEnv(outer *LexEnv) *LexEnv { return NewDeclarativeEnv(outer, false) }
func (fakeHost) CreateObjectLexEnv(outer *LexEnv, obj ObjectRef, withEnv bool) *LexEnv {
	return NewObjectBoundEnv(outer, obj, withEnv)
}
func (fakeHost) HasBinding(env *LexEnv, name string) bool { return env.Lookup(name) != nil }
func (fakeHost) GetValueLexEnvBase(env *LexEnv, name string, strict bool) (Value, error) {
	panic("not used by this package's own tests")
}
func (fakeHost) PutValueLexEnvBase(env *LexEnv, name string, val Value, strict bool) error {
	panic("not used by this package's own tests")
}

func (fakeHost) GetIterator(v Value) (ObjectRef, error) {
	panic("not used by this package's own tests")
}
func (fakeHost) IteratorStep(iter ObjectRef) (bool, Value, error) {
	panic("not used by this package's own tests")
}
func (fakeHost) IteratorValue(result ObjectRef) (Value, error) {
	panic("not used by this package's own tests")
}
func (fakeHost) IteratorClose(iter ObjectRef, completion error) error {
	panic("not used by this package's own tests")
}

func (fakeHost) ToNumber(v Value) (Value, error) {
	switch {
	case v.IsInt() || v.IsFloat():
		return v, nil
	case v.IsBool():
		if v.AsBool() {
			return MakeInt(1), nil
		}
		return MakeInt(0), nil
	case v.IsNull():
		return MakeInt(0), nil
	case v.IsUndefined():
		return MakeFloat(nan()), nil
	case v.IsString():
		n, err := strconv.ParseFloat(v.AsString(), 64)
		if err != nil {
			return MakeFloat(nan()), nil
		}
		return MakeNumber(n), nil
	}
	return MakeFloat(nan()), nil
}

func (fakeHost) ToString(v Value) (string, error) {
	if v.IsString() {
		return v.AsString(), nil
	}
	return v.String(), nil
}

func (fakeHost) ToBoolean(v Value) bool {
	if v.IsBool() {
		return v.AsBool()
	}
	return !v.IsNullOrUndefined()
}

func (fakeHost) ToPropName(v Value) (Value, error) {
	if v.IsPropName() {
		return v, nil
	}
	return MakeString(v.String()), nil
}

func (fakeHost) ToObject(v Value) (ObjectRef, error) {
	o := newFakeObj()
	o.props["valueOf"] = v
	return o, nil
}

func (fakeHost) CheckObjectCoercible(v Value) error {
	if v.IsNullOrUndefined() {
		return errors.NewTypeError(errors.Position{}, "cannot convert null or undefined")
	}
	return nil
}

func (fakeHost) StrictEquals(a, b Value) bool {
	if a.Tag() != b.Tag() {
		return false
	}
	if a.IsObject() {
		return a.AsObject() == b.AsObject()
	}
	return a.String() == b.String()
}

func (fakeHost) AbstractEquals(a, b Value) (bool, error) {
	panic("not used by this package's own tests")
}
func (fakeHost) Addition(a, b Value) (Value, error) {
	panic("not used by this package's own tests")
}
func (fakeHost) TypeOf(v Value) string {
	panic("not used by this package's own tests")
}

func (fakeHost) Retain(ref ObjectRef)  {}
func (fakeHost) Release(ref ObjectRef) {}

func (fakeHost) EnumerableKeys(obj ObjectRef) ([]Value, error) {
	panic("not used by this package's own tests")
}

func (fakeHost) NewArrayFromSlice(items []Value) (Value, error) {
	panic("not used by this package's own tests")
}
func (fakeHost) NewPlainObject() (Value, error) {
	panic("not used by this package's own tests")
}
func (fakeHost) NewArguments(args []Value, callee Value, isStrict bool) (Value, error) {
	panic("not used by this package's own tests")
}
func (fakeHost) NewClosure(unit *CodeUnit, env *LexEnv, name string) (Value, error) {
	panic("not used by this package's own tests")
}
func (fakeHost) NewGeneratorObject(gs *GeneratorSuspend, resume func(kind ResumeKind, value Value) (Value, bool, error)) (Value, error) {
	panic("not used by this package's own tests")
}

func (fakeHost) RaiseTypeError(pos errors.Position, format string, args ...interface{}) Value {
	return ErrorSentinel()
}
func (fakeHost) RaiseReferenceError(pos errors.Position, format string, args ...interface{}) Value {
	return ErrorSentinel()
}
func (fakeHost) RaiseSyntaxError(pos errors.Position, format string, args ...interface{}) Value {
	return ErrorSentinel()
}
func (fakeHost) RaiseRangeError(pos errors.Position, format string, args ...interface{}) Value {
	return ErrorSentinel()
}
func (fakeHost) RaiseCommonError(pos errors.Position, format string, args ...interface{}) Value {
	return ErrorSentinel()
}
func (fakeHost) MakeErrorValue(err error) Value {
	panic("not used by this package's own tests")
}
func (fakeHost) ErrorFromValue(v Value) error {
	panic("not used by this package's own tests")
}

func nan() float64 {
	var zero float64
	return zero / zero
}

var _ Host = fakeHost{}

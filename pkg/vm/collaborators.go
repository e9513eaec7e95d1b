package vm

import "ecmavm/pkg/errors"

// ObjectRef is an opaque handle to a heap object minted by an ObjectHost.
// The VM core never inspects it; it only threads it through Value and
// hands it back to the host that created it. Object/property storage,
// garbage collection, and the built-in library all live behind this
// interface, implemented by pkg/objects.
type ObjectRef interface{}

// PropertyKind distinguishes what get_value found at a property slot.
type PropertyKind uint8

const (
	PropertyMissing PropertyKind = iota
	PropertyData
	PropertyAccessor
)

// ObjectHost is everything the dispatcher needs from object/property
// storage, the iterator protocol, and general value coercion. A single
// implementation backs all three concerns in pkg/objects, but the VM
// core only depends on this interface, never on a concrete type.
type ObjectHost interface {
	// Property access.
	ObjectGet(obj ObjectRef, key Value) (Value, error)
	// ObjectGetWithKind is ObjectGet plus the PropertyKind the value was
	// resolved from, so a caller that must not treat a getter's return
	// value as a stable data property (the lookup cache) can tell the
	// two apart.
	ObjectGetWithKind(obj ObjectRef, key Value) (Value, PropertyKind, error)
	ObjectPutWithReceiver(obj ObjectRef, key Value, val Value, receiver ObjectRef, strict bool) error
	ObjectHasProperty(obj ObjectRef, key Value) (bool, error)
	ObjectDelete(obj ObjectRef, key Value) (bool, error)
	ObjectDefineOwn(obj ObjectRef, key Value, val Value, writable, enumerable, configurable bool) error
	ObjectDefineAccessor(obj ObjectRef, key Value, getter, setter Value, enumerable, configurable bool) error
	ObjectSetProto(obj ObjectRef, proto Value) error
	ObjectGetProto(obj ObjectRef) (Value, error)

	// Fast-array support for getValue's array fast path.
	IsFastArray(obj ObjectRef) bool
	FastArrayGet(obj ObjectRef, index int) (Value, bool)
	FastArrayLength(obj ObjectRef) int

	// Classification.
	IsCallable(v Value) bool
	IsConstructor(v Value) bool
	IsPlainObject(v Value) bool
	IsExtensible(obj ObjectRef) bool
	PreventExtensions(obj ObjectRef) error

	// Invocation.
	FunctionCall(fn Value, this Value, args []Value) (Value, error)
	FunctionConstruct(fn Value, newTarget Value, args []Value) (Value, error)

	// Lexical environments.
	CreateDeclLexEnv(outer *LexEnv) *LexEnv
	CreateObjectLexEnv(outer *LexEnv, obj ObjectRef, withEnv bool) *LexEnv
	HasBinding(env *LexEnv, name string) bool
	GetValueLexEnvBase(env *LexEnv, name string, strict bool) (Value, error)
	PutValueLexEnvBase(env *LexEnv, name string, val Value, strict bool) error

	// Iterator protocol (for-of, spread, destructuring).
	GetIterator(v Value) (ObjectRef, error)
	IteratorStep(iter ObjectRef) (done bool, value Value, err error)
	IteratorValue(result ObjectRef) (Value, error)
	IteratorClose(iter ObjectRef, completion error) error

	// Coercion and comparison.
	ToNumber(v Value) (Value, error)
	ToString(v Value) (string, error)
	ToBoolean(v Value) bool
	ToPropName(v Value) (Value, error)
	ToObject(v Value) (ObjectRef, error)
	CheckObjectCoercible(v Value) error
	StrictEquals(a, b Value) bool
	AbstractEquals(a, b Value) (bool, error)
	Addition(a, b Value) (Value, error)
	TypeOf(v Value) string

	// Reference counting hand-off (see Value.Copy/Free).
	Retain(ref ObjectRef)
	Release(ref ObjectRef)

	// Property-name snapshot for for-in.
	EnumerableKeys(obj ObjectRef) ([]Value, error)

	// Array/object construction needed by the dispatcher itself (rest
	// parameters, spread collection materialization, array/object
	// literals, the arguments object).
	NewArrayFromSlice(items []Value) (Value, error)
	NewPlainObject() (Value, error)
	NewArguments(args []Value, callee Value, isStrict bool) (Value, error)

	// NewClosure mints a function object bound to env from a nested code
	// unit reached through a PUSH_LITERAL* operand (OpPushNamedFuncExpr's
	// binding, and every function/method/getter/setter/class-field
	// initializer literal all resolve through this single path).
	NewClosure(unit *CodeUnit, env *LexEnv, name string) (Value, error)

	// NewGeneratorObject wraps a suspended frame as a script-visible
	// generator, with next/return/throw bound to resume, which re-enters
	// the VM at the point CreateGenerator suspended.
	NewGeneratorObject(gs *GeneratorSuspend, resume func(kind ResumeKind, value Value) (Value, bool, error)) (Value, error)
}

// ErrorHost raises the taxonomy of errors the VM core itself can throw.
// Each Raise* call builds the error value and returns it; the dispatcher
// stores that value as vm.pendingException and starts unwinding.
type ErrorHost interface {
	RaiseTypeError(pos errors.Position, format string, args ...interface{}) Value
	RaiseReferenceError(pos errors.Position, format string, args ...interface{}) Value
	RaiseSyntaxError(pos errors.Position, format string, args ...interface{}) Value
	RaiseRangeError(pos errors.Position, format string, args ...interface{}) Value
	RaiseCommonError(pos errors.Position, format string, args ...interface{}) Value
	// MakeErrorValue wraps an already-constructed ScriptError as a script
	// value (e.g. for CATCH to bind), used when an error produced inside
	// Go code must re-enter the value domain.
	MakeErrorValue(err error) Value
	// ErrorFromValue is MakeErrorValue's inverse: a thrown value that
	// escaped every frame on the call stack becomes the Go error Run/
	// RunGlobal/RunEval report to their caller.
	ErrorFromValue(v Value) error
}

// Host bundles the two collaborator surfaces a running VM needs.
type Host interface {
	ObjectHost
	ErrorHost
}

package objects

import "ecmavm/pkg/vm"

// FunctionObject is a closure: a code unit plus the lexical environment
// it closed over. Calling it means handing both, together with `this`
// and the argument list, to vm.RunFunction — the interpreter core does
// not know how to invoke a function on its own, by design (§1: the VM
// boundary starts at the compiled code unit, and invocation is a host
// concern so native functions and script functions share one call
// path).
type FunctionObject struct {
	object
	unit *vm.CodeUnit
	env  *vm.LexEnv
	name string
}

func NewFunctionObject(proto vm.Value, unit *vm.CodeUnit, env *vm.LexEnv, name string) *FunctionObject {
	fn := &FunctionObject{object: newObject(proto), unit: unit, env: env, name: name}
	return fn
}

func (fn *FunctionObject) IsConstructible() bool {
	return fn.unit != nil && !fn.unit.Status.Has(vm.FlagArrow) && !fn.unit.Status.Has(vm.FlagGenerator) && !fn.unit.Status.Has(vm.FlagAsync)
}

// NativeFunction wraps a Go closure as a callable object (generator
// next/throw/return, and any future built-in surface) so the host's
// FunctionCall path has exactly one place that distinguishes "script
// closure" from "native" — everything past that dispatches the same
// way a user never notices which kind they invoked.
type NativeFunction struct {
	object
	name string
	call func(this vm.Value, args []vm.Value) (vm.Value, error)
}

func NewNativeFunction(proto vm.Value, name string, call func(this vm.Value, args []vm.Value) (vm.Value, error)) *NativeFunction {
	return &NativeFunction{object: newObject(proto), name: name, call: call}
}

// BoundFunctionObject implements Function.prototype.bind's result: a
// fixed `this` and a prefix of arguments, forwarding to target on call.
type BoundFunctionObject struct {
	object
	target     vm.Value
	boundThis  vm.Value
	boundArgs  []vm.Value
}

func NewBoundFunction(proto vm.Value, target, boundThis vm.Value, boundArgs []vm.Value) *BoundFunctionObject {
	return &BoundFunctionObject{object: newObject(proto), target: target, boundThis: boundThis, boundArgs: boundArgs}
}

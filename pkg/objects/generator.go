package objects

import "ecmavm/pkg/vm"

// GeneratorObject is the script-visible wrapper around a suspended
// frame: next/throw/return are native methods closing over resume,
// which re-enters the VM at whatever YIELD/AWAIT/CREATE_GENERATOR left
// suspended. The {value, done} result shape is built fresh on every
// call rather than stored, since nothing needs it to persist.
type GeneratorObject struct {
	object
	gs     *vm.GeneratorSuspend
	resume func(kind vm.ResumeKind, value vm.Value) (vm.Value, bool, error)
}

func NewGeneratorObject(proto vm.Value, gs *vm.GeneratorSuspend, resume func(kind vm.ResumeKind, value vm.Value) (vm.Value, bool, error)) *GeneratorObject {
	g := &GeneratorObject{object: newObject(proto), gs: gs, resume: resume}
	return g
}

// iterResult builds the {value, done} object next()/return()/throw()
// hand back, per the iterator-result protocol OpForOfHasNext's own
// host.IteratorStep already relies on.
func (host *Host) iterResult(value vm.Value, done bool) vm.Value {
	obj := NewPlainObject(host.objectProto)
	defineOwn(obj, vm.MakeString("value"), value, true, true, true)
	defineOwn(obj, vm.MakeString("done"), vm.MakeBool(done), true, true, true)
	return vm.MakeObject(obj)
}

package objects

import "ecmavm/pkg/vm"

func (h *Host) CreateDeclLexEnv(outer *vm.LexEnv) *vm.LexEnv {
	return vm.NewDeclarativeEnv(outer, false)
}

func (h *Host) CreateObjectLexEnv(outer *vm.LexEnv, obj vm.ObjectRef, withEnv bool) *vm.LexEnv {
	return vm.NewObjectBoundEnv(outer, obj, withEnv)
}

// HasBinding answers whether an object-bound environment's wrapped
// object (the global object, or a `with` target) has a property named
// name, walking its prototype chain the same way a plain property read
// would.
func (h *Host) HasBinding(env *vm.LexEnv, name string) bool {
	o, ok := env.Object.(Objecter)
	if !ok {
		return false
	}
	has, err := h.ObjectHasProperty(o, vm.MakeString(name))
	if err != nil {
		return false
	}
	return has
}

func (h *Host) GetValueLexEnvBase(env *vm.LexEnv, name string, strict bool) (vm.Value, error) {
	o, ok := env.Object.(Objecter)
	if !ok {
		return vm.Undefined(), h.raiseTypeErrorErr("%s is not bound to an object environment", name)
	}
	return h.ObjectGet(o, vm.MakeString(name))
}

func (h *Host) PutValueLexEnvBase(env *vm.LexEnv, name string, val vm.Value, strict bool) error {
	o, ok := env.Object.(Objecter)
	if !ok {
		return h.raiseTypeErrorErr("%s is not bound to an object environment", name)
	}
	return h.ObjectPutWithReceiver(o, vm.MakeString(name), val, o, strict)
}

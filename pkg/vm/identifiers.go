package vm

// resolveBindingEnv walks the lexical environment chain outward from
// f.LexEnv looking for the environment that owns name, checking
// declarative bindings directly and deferring to the host for
// object-bound environments (the global object, or a `with` object).
// Returns nil if no environment in the chain binds name.
func (vm *VM) resolveBindingEnv(f *FrameContext, name string) *LexEnv {
	env := f.LexEnv
	for env != nil {
		if env.Kind == LexEnvDeclarative {
			if env.Lookup(name) != nil {
				return env
			}
		} else if vm.host.HasBinding(env, name) {
			return env
		}
		env = env.Outer
	}
	return nil
}

// lookupIdentifier resolves name to its current value by walking the
// scope chain. It reports false both when no binding exists and when
// the binding is a declarative one still in its temporal dead zone —
// either way, the caller's job is to raise a ReferenceError.
func (vm *VM) lookupIdentifier(f *FrameContext, name string) (Value, bool) {
	env := vm.resolveBindingEnv(f, name)
	if env == nil {
		return Undefined(), false
	}
	if env.Kind == LexEnvDeclarative {
		b := env.Lookup(name)
		if !b.Initialized {
			return Undefined(), false
		}
		return b.Value.FastCopy(vm.host), true
	}
	v, err := vm.host.GetValueLexEnvBase(env, name, false)
	if err != nil {
		return Undefined(), false
	}
	return v, true
}

// tryGetBinding is lookupIdentifier under the name TYPEOF_IDENT's
// implementation reads most naturally by: a binding that does not exist,
// or that exists but is still uninitialized, is simply "not found" for
// typeof's purposes (typeof of an unresolvable reference is "undefined",
// never a thrown ReferenceError).
func (vm *VM) tryGetBinding(f *FrameContext, name string) (Value, bool) {
	return vm.lookupIdentifier(f, name)
}

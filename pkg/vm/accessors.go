package vm

// getValue reads object[property]:
//  1. plain object: fast array index path, lookup-cache probe, then
//     a host property get.
//  2. null/undefined base: TypeError.
//  3. primitive base: coerce to an object wrapper and defer to the
//     host's general accessor.
func (vm *VM) getValue(f *FrameContext, object, property Value) Value {
	host := vm.host

	if object.IsObject() {
		ref := object.AsObject()
		if property.IsInt() && property.AsInt() >= 0 && host.IsFastArray(ref) {
			if v, ok := host.FastArrayGet(ref, int(property.AsInt())); ok && !v.IsHole() {
				return v
			}
		}

		key, err := vm.toPropName(f, property)
		if err != nil {
			return vm.fail(err)
		}

		if cached, ok := vm.lcacheLookup(ref, key); ok {
			return cached
		}

		val, kind, err := host.ObjectGetWithKind(ref, key)
		if err != nil {
			return vm.fail(err)
		}
		if kind == PropertyData {
			vm.lcacheStore(ref, key, val)
		}
		return val
	}

	if object.IsNullOrUndefined() {
		vm.pendingException = host.RaiseTypeError(vm.pos(f),
			"Cannot read property '%s' of %s", property.String(), object.String())
		vm.unwinding = true
		return ErrorSentinel()
	}

	base, err := host.ToObject(object)
	if err != nil {
		return vm.fail(err)
	}
	key, err := vm.toPropName(f, property)
	if err != nil {
		return vm.fail(err)
	}
	val, err := host.ObjectGet(base, key)
	if err != nil {
		return vm.fail(err)
	}
	return val
}

// setValue assigns value to base[property], or, when base is an
// identifier reference (TagEnvRef), to the binding it names. It frees
// base and property unconditionally: every caller hands both off and
// neither is touched again afterward.
func (vm *VM) setValue(f *FrameContext, base, property, value Value, strict bool) Value {
	host := vm.host

	if base.IsEnvRef() {
		env, name := base.EnvRefEnv(), base.EnvRefName()
		property.FastFree(host)
		if env.Kind == LexEnvDeclarative {
			b := env.Lookup(name)
			if !b.Writable {
				vm.pendingException = host.RaiseTypeError(vm.pos(f), "Assignment to constant variable '%s'", name)
				vm.unwinding = true
				return ErrorSentinel()
			}
			b.Value.FastFree(host)
			b.Value = value
			b.Initialized = true
			return value
		}
		if err := host.PutValueLexEnvBase(env, name, value, strict); err != nil {
			return vm.fail(err)
		}
		return value
	}

	defer func() {
		base.FastFree(host)
		property.FastFree(host)
	}()

	if base.Tag() == TagObject {
		ref := base.AsObject()
		key, err := vm.toPropName(f, property)
		if err != nil {
			return vm.fail(err)
		}
		vm.lcacheInvalidate(ref, key)
		if err := host.ObjectPutWithReceiver(ref, key, value, ref, strict); err != nil {
			return vm.fail(err)
		}
		return value
	}

	if base.IsNullOrUndefined() {
		vm.pendingException = host.RaiseTypeError(vm.pos(f),
			"Cannot set property '%s' of %s", property.String(), base.String())
		vm.unwinding = true
		return ErrorSentinel()
	}

	// Non-object, non-null/undefined base: coerce to a wrapper object,
	// mark it non-extensible, then put through the receiver. A bare
	// primitive base can only come from an already-coerced wrapper by
	// the time a real property write happens, so the wrapper itself
	// must not pick up new own properties beyond this one.
	wrapper, err := host.ToObject(base)
	if err != nil {
		return vm.fail(err)
	}
	if err := host.PreventExtensions(wrapper); err != nil {
		return vm.fail(err)
	}
	key, err := vm.toPropName(f, property)
	if err != nil {
		return vm.fail(err)
	}
	if err := host.ObjectPutWithReceiver(wrapper, key, value, wrapper, strict); err != nil {
		return vm.fail(err)
	}
	return value
}

func (vm *VM) toPropName(f *FrameContext, v Value) (Value, error) {
	if v.IsPropName() {
		return v, nil
	}
	return vm.host.ToPropName(v)
}

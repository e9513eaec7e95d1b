package vm

// dispatchExt handles the smaller, less frequently hit extended opcode
// space reached through the ExtOpcode escape byte: deferred-error
// re-entry and the class-definition sequence (PUSH_CLASS_ENVIRONMENT /
// INIT_CLASS / FINALIZE_CLASS / PUSH_IMPLICIT_CTOR). Same (Value, bool)
// "did the frame complete" convention as dispatchOne.
func (vm *VM) dispatchExt(f *FrameContext, host Host, op ExtOp) (Value, bool) {
	switch op {
	case ExtError:
		// Synthetic re-entry point for an error that was raised outside
		// the normal opcode stream (e.g. a host callback). The pending
		// exception is already set by whoever emitted this sequence;
		// unwinding picks it up on the next loop iteration.
		vm.unwinding = true

	case ExtPushClassEnvironment:
		rec := f.PushContext(ContextBlock)
		f.LexEnv = host.CreateDeclLexEnv(f.LexEnv)
		rec.HasLexEnv = true

	case ExtInitClass:
		// Stack, top to bottom: superclass (or undefined), constructor.
		// Wires up both the instance prototype chain (ctor.prototype's
		// [[Prototype]] becomes superclass.prototype) and the static
		// inheritance chain (ctor's own [[Prototype]] becomes superclass
		// itself), then leaves the constructor on the stack for the
		// method-definition opcodes that follow to keep populating.
		superclass := f.Pop()
		ctor := f.Pop()
		if !superclass.IsUndefined() && !superclass.IsNull() {
			if !host.IsConstructor(superclass) {
				superclass.FastFree(host)
				ctor.FastFree(host)
				vm.pendingException = host.RaiseTypeError(vm.pos(f), "Class extends value is not a constructor")
				vm.unwinding = true
				return Undefined(), false
			}
			superProto, err := host.ObjectGet(superclass.AsObject(), MakeString("prototype"))
			if err != nil {
				superclass.FastFree(host)
				ctor.FastFree(host)
				return vm.fail(err), false
			}
			ctorProto, err := host.ObjectGet(ctor.AsObject(), MakeString("prototype"))
			if err != nil {
				superProto.FastFree(host)
				superclass.FastFree(host)
				ctor.FastFree(host)
				return vm.fail(err), false
			}
			if ctorProto.IsObject() {
				if err := host.ObjectSetProto(ctorProto.AsObject(), superProto); err != nil {
					ctorProto.FastFree(host)
					superclass.FastFree(host)
					ctor.FastFree(host)
					return vm.fail(err), false
				}
			}
			ctorProto.FastFree(host)
			if err := host.ObjectSetProto(ctor.AsObject(), superclass); err != nil {
				superclass.FastFree(host)
				ctor.FastFree(host)
				return vm.fail(err), false
			}
		}
		superclass.FastFree(host)
		f.Push(ctor)

	case ExtFinalizeClass:
		// Method/accessor/field definitions have already landed on the
		// constructor's prototype via the ordinary SET_PROPERTY/
		// SET_GETTER/SET_SETTER opcodes emitted for the class body; there
		// is nothing left to finalize beyond popping the class's own
		// lexical environment (self-reference binding for static blocks).
		rec := f.PopContext()
		vm.contextAbort(f, rec, host)

	case ExtPushImplicitCtor:
		idx, n := f.Reader.ReadLiteralIndex(f.IP)
		f.IP += n
		unit := f.Unit.FuncAt(idx)
		fn, err := host.NewClosure(unit, f.LexEnv, "")
		if err != nil {
			return vm.fail(err), false
		}
		f.Push(fn)

	default:
		vm.pendingException = host.RaiseCommonError(vm.pos(f), "unimplemented ext opcode %d", op)
		vm.unwinding = true
	}

	return Undefined(), false
}

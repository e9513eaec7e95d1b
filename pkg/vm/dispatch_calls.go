package vm

// dispatchCallFamily decodes the trailing argument-count byte of
// CALL/CONSTRUCT/SUPER_CALL (the SPREAD_* forms take their arguments
// from a spread array instead) and builds the PendingAction execute will
// carry out. Operands are pushed in `this, callee, arg1, ..., argN`
// order (Undefined `this` for a call through a bare identifier), so
// arguments come off the stack first, then the callee, then `this`.
func (vm *VM) dispatchCallFamily(f *FrameContext, host Host, op OpCode) (Value, bool) {
	switch op {
	case OpCall, OpConstruct, OpSuperCall:
		count, n := f.Reader.ReadByte(f.IP)
		f.IP += n
		args := make([]Value, count)
		for i := int(count) - 1; i >= 0; i-- {
			args[i] = f.Pop()
		}
		callee := f.Pop()
		switch op {
		case OpCall:
			this := f.Pop()
			f.Pending = &PendingAction{Op: PendingCall, Callee: callee, This: this, Args: args, IsMethod: !this.IsUndefined()}
		case OpConstruct:
			f.Pop().FastFree(host) // `this` slot is unused for CONSTRUCT but kept for a uniform call shape
			f.Pending = &PendingAction{Op: PendingConstruct, Callee: callee, Args: args}
		case OpSuperCall:
			f.Pop().FastFree(host)
			f.Pending = &PendingAction{Op: PendingSuperCall, Callee: callee, Args: args}
		}
		return Undefined(), false

	case OpSpreadNew, OpSpreadCall, OpSpreadCallProp, OpSpreadSuperCall:
		spreadArgs := f.Pop()
		args, err := vm.arrayLikeToSlice(spreadArgs)
		spreadArgs.FastFree(host)
		if err != nil {
			return vm.fail(err), false
		}
		callee := f.Pop()
		this := f.Pop()
		var pendingOp = PendingSpread
		isMethod := op == OpSpreadCallProp
		f.Pending = &PendingAction{
			Op: pendingOp, Callee: callee, This: this, Args: args,
			IsMethod: isMethod, SpreadOp: op,
		}
		return Undefined(), false
	}

	vm.pendingException = host.RaiseCommonError(vm.pos(f), "unreachable call opcode %d", op)
	vm.unwinding = true
	return Undefined(), false
}

// arrayLikeToSlice reads a numeric `length` and indexed own properties
// off an array-like value, the same protocol Function.prototype.apply
// uses to turn its second argument into a real argument list.
func (vm *VM) arrayLikeToSlice(v Value) ([]Value, error) {
	host := vm.host
	if !v.IsObject() {
		return nil, nil
	}
	ref := v.AsObject()
	lengthVal, err := host.ObjectGet(ref, MakeString("length"))
	if err != nil {
		return nil, err
	}
	lengthNum, err := host.ToNumber(lengthVal)
	if err != nil {
		return nil, err
	}
	count := int(lengthNum.AsNumber())
	args := make([]Value, 0, count)
	for i := 0; i < count; i++ {
		item, err := host.ObjectGet(ref, MakeInt(int32(i)))
		if err != nil {
			return nil, err
		}
		args = append(args, item)
	}
	return args, nil
}

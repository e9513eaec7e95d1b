package vm

// branchTarget resolves a ShapeBranch operand to an absolute byte-code
// offset and advances f.IP past the whole instruction.
func (vm *VM) branchTarget(f *FrameContext) int {
	magnitude, consumed, backward := f.Reader.DecodeBranch(f.IP)
	f.IP += consumed
	if backward {
		return f.IP - magnitude
	}
	return f.IP + magnitude
}

// dispatchControlOrCall handles every opcode dispatchOne's switch did not
// already cover: control flow, blocks/with, iteration, try/catch/finally,
// call/construct/super/spread, the iterator/rest/destructuring family,
// the return family, and generator suspension.
func (vm *VM) dispatchControlOrCall(f *FrameContext, host Host, op OpCode, entry DecodeEntry) (Value, bool) {
	switch op {

	// --- Control flow ----------------------------------------------------
	case OpJump:
		f.IP = vm.branchTarget(f)

	case OpBranchIfTrue, OpBranchIfFalse:
		target := vm.branchTarget(f)
		v := f.Pop()
		b := host.ToBoolean(v)
		v.FastFree(host)
		if (op == OpBranchIfTrue) == b {
			f.IP = target
		}

	case OpBranchIfLogicalTrue, OpBranchIfLogicalFalse:
		// Peeks rather than pops: && / || leave the operand on the stack
		// when the branch is taken, so the short-circuited value becomes
		// the expression's result.
		target := vm.branchTarget(f)
		v := f.Peek(0)
		b := host.ToBoolean(v)
		if (op == OpBranchIfLogicalTrue) == b {
			f.IP = target
		} else {
			f.Pop().FastFree(host)
		}

	case OpBranchIfStrictEqual:
		target := vm.branchTarget(f)
		b := f.Pop()
		a := f.Peek(0)
		eq := host.StrictEquals(a, b)
		b.FastFree(host)
		if eq {
			f.Pop().FastFree(host)
			f.IP = target
		}

	// --- Blocks & scopes ---------------------------------------------------
	case OpBlockCreateContext:
		rec := f.PushContext(ContextBlock)
		f.LexEnv = host.CreateDeclLexEnv(f.LexEnv)
		rec.HasLexEnv = true

	case OpWith:
		v := f.Pop()
		obj, err := host.ToObject(v)
		v.FastFree(host)
		if err != nil {
			return vm.fail(err), false
		}
		rec := f.PushContext(ContextWith)
		f.LexEnv = host.CreateObjectLexEnv(f.LexEnv, obj, true)
		rec.HasLexEnv = true

	case OpCloneContext:
		if f.LexEnv != nil {
			f.LexEnv = f.LexEnv.Clone(true)
		}

	// --- Iteration: for-in ------------------------------------------------
	case OpForInCreateContext:
		v := f.Pop()
		rec := f.PushContext(ContextForIn)
		if v.IsNullOrUndefined() {
			rec.ForInNames = NewCollection(0)
			v.FastFree(host)
			break
		}
		obj, err := host.ToObject(v)
		v.FastFree(host)
		if err != nil {
			return vm.fail(err), false
		}
		keys, err := host.EnumerableKeys(obj)
		if err != nil {
			return vm.fail(err), false
		}
		names := NewCollection(len(keys))
		for _, k := range keys {
			names.Append(k)
		}
		rec.ForInNames = names
		rec.ForInObject = obj

	case OpForInGetNext:
		rec := f.TopContext()
		v := rec.ForInNames.Items[rec.ForInCursor]
		rec.ForInCursor++
		f.Push(v)

	case OpForInHasNext:
		target := vm.branchTarget(f)
		rec := f.TopContext()
		if rec.ForInCursor >= rec.ForInNames.Len() {
			f.PopContext()
			vm.contextAbort(f, rec, host)
			f.IP = target
		}

	// --- Iteration: for-of -------------------------------------------------
	case OpForOfCreateContext:
		v := f.Pop()
		iter, err := host.GetIterator(v)
		v.FastFree(host)
		if err != nil {
			return vm.fail(err), false
		}
		rec := f.PushContext(ContextForOf)
		rec.ForOfIter = iter
		rec.CloseIterator = true

	case OpForOfGetNext:
		rec := f.TopContext()
		f.Push(rec.ForOfLast)

	case OpForOfHasNext:
		target := vm.branchTarget(f)
		rec := f.TopContext()
		done, value, err := host.IteratorStep(rec.ForOfIter)
		if err != nil {
			return vm.fail(err), false
		}
		if done {
			rec.CloseIterator = false
			f.PopContext()
			vm.contextAbort(f, rec, host)
			f.IP = target
			break
		}
		rec.ForOfLast = value

	// --- Try/catch/finally --------------------------------------------------
	// OpTry's own shape: a flags byte (bit0 catch present, bit1 finally
	// present) followed by that many branch operands, catch before
	// finally. Decoded here rather than through the generic operand
	// table since the operand count is itself variable.
	case OpTry:
		flags := f.Unit.Code[f.IP]
		f.IP++
		rec := f.PushContext(ContextTry)
		if flags&1 != 0 {
			rec.CatchIP = vm.branchTarget(f)
		}
		if flags&2 != 0 {
			rec.FinallyIP = vm.branchTarget(f)
		}

	case OpCatch:
		// Entry point of the catch body, reached only via findFinally's
		// redirect (Phase already PhaseCatch). The exception value itself
		// arrives by unwindStep pushing it onto the operand stack before
		// the jump; CREATE_BINDING/INIT_BINDING bind it from there the
		// same way any other initializer would.

	case OpFinally:
		// Entry point of the finally body, reached either by the try or
		// catch body's own normal-completion jump (Phase still whatever
		// findFinally/completeReturn last left it, Pending* empty) or by
		// a redirect from findFinally/completeReturn (Pending* holds the
		// completion CONTEXT_END must resume once this body finishes).
		f.TopContext().Phase = PhaseFinally

	case OpContextEnd:
		rec := f.PopContext()
		vm.contextAbort(f, rec, host)
		if rec.Kind == ContextTry {
			switch rec.PendingCompletion {
			case CompletionThrow:
				vm.pendingException = rec.PendingValue
				vm.unwinding = true
			case CompletionReturn:
				return rec.PendingValue, true
			case CompletionJump:
				f.IP = rec.PendingJumpTarget
			}
		}

	// --- Iterator / rest / destructuring ------------------------------------
	case OpGetIterator:
		v := f.Pop()
		iter, err := host.GetIterator(v)
		v.FastFree(host)
		if err != nil {
			return vm.fail(err), false
		}
		f.Push(MakeObject(iter))

	case OpIteratorStep, OpIteratorStep1, OpIteratorStep2, OpIteratorStep3:
		iterVal := f.Peek(0)
		done, value, err := host.IteratorStep(iterVal.AsObject())
		if err != nil {
			return vm.fail(err), false
		}
		if done {
			f.Push(Undefined())
		} else {
			f.Push(value)
		}

	case OpIteratorClose:
		v := f.Pop()
		if v.IsObject() {
			_ = host.IteratorClose(v.AsObject(), nil)
		}
		v.FastFree(host)

	case OpDefaultInitializer:
		target := vm.branchTarget(f)
		v := f.Peek(0)
		if !v.IsUndefined() {
			f.IP = target
		}

	// `[a, b, ...rest] = iterable`: the earlier elements of the pattern
	// have already stepped the iterator GET_ITERATOR left on the stack
	// one value at a time; REST_INITIALIZER drains whatever is left of
	// that same iterator into a fresh array.
	case OpRestInitializer:
		iterVal := f.Pop()
		items := NewCollection(0)
		if iterVal.IsObject() {
			for {
				done, value, err := host.IteratorStep(iterVal.AsObject())
				if err != nil {
					iterVal.FastFree(host)
					items.Free(host)
					return vm.fail(err), false
				}
				if done {
					break
				}
				items.Append(value)
			}
		}
		iterVal.FastFree(host)
		arr, err := host.NewArrayFromSlice(items.Items)
		if err != nil {
			return vm.fail(err), false
		}
		f.Push(arr)

	case OpInitializerPushProp:
		v := f.Pop()
		idx, n := f.Reader.ReadLiteralIndex(f.IP)
		f.IP += n
		name := f.Unit.IdentName(idx)
		f.Push(vm.getValue(f, v, MakeString(name)))

	case OpRequireObjectCoercible:
		v := f.Peek(0)
		if err := host.CheckObjectCoercible(v); err != nil {
			return vm.fail(err), false
		}

	// --- Super / new.target / lexical this --------------------------------
	// The superclass a derived constructor's super(...) call targets is
	// the executing function object's own [[Prototype]] — exactly the
	// static-inheritance link EXT_INIT_CLASS set up between a subclass
	// constructor and its superclass.
	case OpPushSuperConstructor:
		if !f.Function.IsObject() {
			vm.pendingException = host.RaiseTypeError(vm.pos(f), "'super' keyword is only valid inside a class")
			vm.unwinding = true
			break
		}
		proto, err := host.ObjectGetProto(f.Function.AsObject())
		if err != nil {
			return vm.fail(err), false
		}
		f.Push(proto)

	case OpSuperReference:
		idx, n := f.Reader.ReadLiteralIndex(f.IP)
		f.IP += n
		name := f.Unit.IdentName(idx)
		f.Push(MakeString(name))

	case OpResolveLexicalThis:
		f.Push(f.This.FastCopy(host))

	case OpResolveBaseForCall:
		v := f.Pop()
		f.Push(v)

	// --- Return family -------------------------------------------------
	case OpReturn:
		v := f.Pop()
		return vm.completeReturn(f, host, v)

	case OpReturnWithBlock:
		return vm.completeReturn(f, host, f.BlockResult)

	case OpReturnWithLiteral:
		idx, n := f.Reader.ReadLiteralIndex(f.IP)
		f.IP += n
		return vm.completeReturn(f, host, vm.resolveLiteral(f, idx))

	case OpExtReturn:
		v := f.Pop()
		return vm.completeReturn(f, host, v)

	case OpReturnPromise:
		v := f.Pop()
		return vm.completeReturn(f, host, v)

	// --- Generators / async ------------------------------------------------
	// A generator function's body opens with CREATE_GENERATOR: it runs
	// none of the body yet, just packages f as a suspended frame and
	// hands the generator object back to whoever called the generator
	// function. The body itself only starts running on the first
	// next() call, which resumes f right after this instruction.
	case OpCreateGenerator:
		gs := vm.CreateGenerator(f)
		obj, err := host.NewGeneratorObject(gs, func(kind ResumeKind, value Value) (Value, bool, error) {
			return vm.ResumeGenerator(gs, kind, value)
		})
		if err != nil {
			return vm.fail(err), false
		}
		vm.suspended = true
		return obj, true

	// YIELD suspends the frame with the yielded value as dispatch's
	// result; ResumeGenerator re-enters here with the kind and value
	// that next()/throw()/return() supplied, the value pushed onto the
	// stack (or turned into a throw/early return) before control
	// continues at the following instruction.
	case OpYield:
		v := f.Pop()
		if f.GenSuspend == nil {
			vm.CreateGenerator(f)
		}
		vm.suspended = true
		return v, true

	// AWAIT does not suspend the frame: the awaited operand is left on
	// the stack as the expression's result and execution continues.
	// Nothing in this module settles promises.
	case OpAwait:
		v := f.Pop()
		f.Push(v)

	case OpSpreadArguments:
		// Handled inline by the CALL/CONSTRUCT family below when spreading
		// is required; a bare SPREAD_ARGUMENTS with nothing queued is a
		// no-op placeholder left for a future spread-compiler pass.

	case OpCall, OpConstruct, OpSuperCall, OpSpreadNew, OpSpreadCall, OpSpreadCallProp, OpSpreadSuperCall:
		return vm.dispatchCallFamily(f, host, op)

	default:
		vm.pendingException = host.RaiseCommonError(vm.pos(f), "unimplemented opcode %d", op)
		vm.unwinding = true
	}

	return Undefined(), false
}

// completeReturn implements the RETURN completion: if an active FINALLY
// context protects the current position, control diverts into the
// finally body with the return value parked; otherwise the frame
// completes normally with v.
func (vm *VM) completeReturn(f *FrameContext, host Host, v Value) (Value, bool) {
	rec := vm.findFinally(f, CompletionReturn, 0, host)
	if rec == nil {
		return v, true
	}
	rec.PendingCompletion = CompletionReturn
	rec.PendingValue = v
	f.IP = rec.HandlerIP
	return Undefined(), false
}

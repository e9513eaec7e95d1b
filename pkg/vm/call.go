package vm

// performPending carries out the deferred CALL/CONSTRUCT/SUPER_CALL/
// SPREAD_* action dispatch handed back to execute. A Go error from the
// host is converted into the pending-exception protocol used throughout
// this package: deposit the exception, flip vm.unwinding, and hand back
// the ERROR sentinel for the caller to notice.
func (vm *VM) performPending(f *FrameContext, p *PendingAction) Value {
	switch p.Op {
	case PendingCall:
		return vm.doCall(f, p)
	case PendingConstruct:
		return vm.doConstruct(f, p)
	case PendingSuperCall:
		return vm.doSuperCall(f, p)
	case PendingSpread:
		return vm.doSpread(f, p)
	default:
		return Undefined()
	}
}

func (vm *VM) fail(err error) Value {
	vm.pendingException = vm.host.MakeErrorValue(err)
	vm.unwinding = true
	return ErrorSentinel()
}

func (vm *VM) doCall(f *FrameContext, p *PendingAction) Value {
	if !vm.host.IsCallable(p.Callee) {
		vm.pendingException = vm.host.RaiseTypeError(vm.pos(f), "%s is not a function", vm.host.TypeOf(p.Callee))
		vm.unwinding = true
		return ErrorSentinel()
	}
	this := p.This
	if !p.IsMethod {
		// A call through a bare identifier reference passes `undefined` as
		// `this`, never the lexical environment the identifier resolved
		// through.
		this = Undefined()
	}
	result, err := vm.host.FunctionCall(p.Callee, this, p.Args)
	if err != nil {
		return vm.fail(err)
	}
	return result
}

func (vm *VM) doConstruct(f *FrameContext, p *PendingAction) Value {
	if !vm.host.IsConstructor(p.Callee) {
		vm.pendingException = vm.host.RaiseTypeError(vm.pos(f), "%s is not a constructor", vm.host.TypeOf(p.Callee))
		vm.unwinding = true
		return ErrorSentinel()
	}
	result, err := vm.host.FunctionConstruct(p.Callee, p.Callee, p.Args)
	if err != nil {
		return vm.fail(err)
	}
	return result
}

// doSuperCall runs a super(...) call: protected by a per-frame one-shot
// this-binding flag, new.target inherited from the current frame, and
// the resulting `this` installed into the active lexical environment.
func (vm *VM) doSuperCall(f *FrameContext, p *PendingAction) Value {
	if f.SuperInitialized {
		vm.pendingException = vm.host.RaiseReferenceError(vm.pos(f), "Super constructor may only be called once")
		vm.unwinding = true
		return ErrorSentinel()
	}
	if !vm.host.IsConstructor(p.Callee) {
		vm.pendingException = vm.host.RaiseTypeError(vm.pos(f), "Super constructor is not a constructor")
		vm.unwinding = true
		return ErrorSentinel()
	}
	newTarget := f.NewTarget
	if newTarget.IsUndefined() {
		newTarget = p.Callee
	}
	result, err := vm.host.FunctionConstruct(p.Callee, newTarget, p.Args)
	if err != nil {
		return vm.fail(err)
	}
	f.SuperInitialized = true
	f.This = result
	if f.LexEnv != nil {
		f.LexEnv.CreateBinding("this", false, false, result, true)
	}
	return result
}

// doSpread materializes a collection already gathered by SPREAD_ARGUMENTS
// into the invocation the paired opcode (SPREAD_NEW/SPREAD_CALL/
// SPREAD_CALL_PROP/SPREAD_SUPER_CALL) requested.
func (vm *VM) doSpread(f *FrameContext, p *PendingAction) Value {
	var result Value
	switch p.SpreadOp {
	case OpSpreadNew:
		result = vm.doConstruct(f, p)
	case OpSpreadSuperCall:
		result = vm.doSuperCall(f, p)
	default: // OpSpreadCall, OpSpreadCallProp
		result = vm.doCall(f, p)
	}
	return result
}

// --- CREATE_GENERATOR / YIELD / AWAIT ------------------------------------

// GeneratorSuspend holds a suspended FrameContext so a generator object
// can resume it later. Generator suspension saves the entire frame as an
// owned object; resumption re-enters the dispatcher with it through a
// fresh execute call. CreateGenerator does not touch vm.frames: the
// suspended frame comes off it through execute's deferred pop.
type GeneratorSuspend struct {
	Frame      *FrameContext
	ResumeWith Value
	ResumeKind ResumeKind
	Done       bool
}

type ResumeKind uint8

const (
	ResumeNext ResumeKind = iota
	ResumeThrow
	ResumeReturn
)

// CreateGenerator packages f into a suspended executable object (the
// prologue has already run up to the first YIELD or to completion) and
// returns the handle the host wraps as a generator object. f's own
// execute call is still on the Go call stack at this point; it returns
// normally once dispatch reports the suspension, and its frame comes off
// vm.frames the same way any other returning frame's does.
func (vm *VM) CreateGenerator(f *FrameContext) *GeneratorSuspend {
	gs := &GeneratorSuspend{Frame: f}
	f.GenSuspend = gs
	return gs
}

// ResumeGenerator re-enters dispatch for a previously suspended frame,
// injecting the resume value/kind at the position YIELD left off:
// ResumeNext pushes value as that expression's result, ResumeThrow
// makes it the exception the suspended YIELD itself appears to
// have thrown, and ResumeReturn completes the frame immediately (still
// running any enclosing finally blocks) as if a return statement sat
// right at the suspension point.
func (vm *VM) ResumeGenerator(gs *GeneratorSuspend, kind ResumeKind, value Value) (Value, bool, error) {
	if gs.Done {
		return Undefined(), true, nil
	}
	f := gs.Frame
	f.GenSuspend = nil
	switch kind {
	case ResumeNext:
		f.Push(value)
	case ResumeThrow:
		vm.pendingException = value
		vm.unwinding = true
	case ResumeReturn:
		if result, done := vm.completeReturn(f, vm.host, value); done {
			gs.Done = true
			return result, true, nil
		}
	}
	result, err := vm.execute(f)
	if f.GenSuspend == nil {
		gs.Done = true
	}
	return result, gs.Done, err
}

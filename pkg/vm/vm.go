package vm

import (
	"ecmavm/pkg/errors"
)

const MaxFrames = 512 // mirrors the reference engine's configurable max-call-depth guard

// StopCallbackResult is what a registered VM-step stop callback hands
// back. A non-undefined value becomes a thrown exception unless Abort is
// set, in which case it becomes an unmaskable abort that bypasses catch
// handlers.
type StopCallbackResult struct {
	Value Value
	Abort bool
}

// StopCallback is invoked every Frequency backward branches when
// registered, giving an embedder a cooperative cancellation hook.
type StopCallback func(vm *VM) (Value, bool /* nonUndefined */, bool /* abort */)

// VM holds the state of a single execution context: one is active per
// host thread, and this type is that context's handle.
type VM struct {
	host Host

	frames []*FrameContext

	pendingException Value
	unwinding        bool
	aborted          bool
	suspended        bool // a generator frame hit CREATE_GENERATOR/YIELD this dispatch() call

	newTargetStack []Value

	stopCallback    StopCallback
	stopFrequency   int
	stopCounter     int

	globalEnv  *LexEnv
	globalThis Value

	moduleEnv *LexEnv // set only while running a module's top-level code

	lcache map[lcacheKey]Value
}

func NewVM(host Host) *VM {
	return &VM{host: host, pendingException: Undefined()}
}

func (vm *VM) SetStopCallback(cb StopCallback, frequency int) {
	vm.stopCallback = cb
	vm.stopFrequency = frequency
	vm.stopCounter = frequency
}

func (vm *VM) currentFrame() *FrameContext {
	if len(vm.frames) == 0 {
		return nil
	}
	return vm.frames[len(vm.frames)-1]
}

// --- Entry points ---------------------------------------------------------

// Run is the top-level entry: allocate a frame for code, seed it with
// this/env/args, and drive it to completion.
func (vm *VM) Run(code *CodeUnit, this Value, env *LexEnv, args []Value) (Value, error) {
	return vm.RunFunction(code, this, env, args, Undefined())
}

// RunFunction is Run plus the function object the frame is running as,
// needed only so OpPushSuperConstructor can find the superclass through
// the function's own [[Prototype]]. Every call-site that invokes a
// user-defined function should use this instead of Run so super works
// inside it; Run itself stays the entry point for top-level, eval, and
// module code, none of which has a meaningful super binding.
func (vm *VM) RunFunction(code *CodeUnit, this Value, env *LexEnv, args []Value, fn Value) (Value, error) {
	f := NewFrameContext(code, nil)
	f.This = this
	f.LexEnv = env
	f.Function = fn
	f.NewTarget = Undefined()
	if err := vm.InitExec(f, args, vm.host); err != nil {
		return Undefined(), err
	}
	return vm.execute(f)
}

// RunGlobal sets up the global `this` and global scope, optionally
// wrapping a lexical block when the code unit requests one, and defers to
// Run.
func (vm *VM) RunGlobal(code *CodeUnit) (Value, error) {
	env := vm.globalEnv
	if code.Status.Has(FlagHasLexicalBlock) {
		env = NewDeclarativeEnv(env, true)
	}
	return vm.Run(code, vm.globalThis, env, nil)
}

// EvalOptions selects direct-vs-indirect eval scoping.
type EvalOptions struct {
	Direct      bool
	CallerEnv   *LexEnv // the calling function's lexical environment, for direct eval
	CallerThis  Value
}

// RunEval sets up the lexical binding per direct-vs-indirect eval and
// applies strict/block-env wrapping from the code unit's status flags.
func (vm *VM) RunEval(code *CodeUnit, opts EvalOptions) (Value, error) {
	var env *LexEnv
	this := vm.globalThis
	if opts.Direct {
		env = opts.CallerEnv
		this = opts.CallerThis
	} else {
		env = vm.globalEnv
	}
	if code.Status.Has(FlagStrictMode) {
		// Strict eval gets its own declarative environment so var/function
		// declarations inside it never leak to the enclosing scope.
		env = NewDeclarativeEnv(env, false)
	} else if code.Status.Has(FlagHasLexicalBlock) {
		env = NewDeclarativeEnv(env, true)
	}
	return vm.Run(code, this, env, nil)
}

// RunModule initializes current-module state before delegating to Run.
func (vm *VM) RunModule(code *CodeUnit, env *LexEnv) (Value, error) {
	vm.moduleEnv = env
	defer func() { vm.moduleEnv = nil }()
	return vm.Run(code, Undefined(), env, nil)
}

// SetGlobal installs the global `this` value and global object-bound
// environment used by RunGlobal/indirect eval.
func (vm *VM) SetGlobal(this Value, env *LexEnv) {
	vm.globalThis = this
	vm.globalEnv = env
}

// --- execute: frame lifecycle + deferred-action trampoline --------------

// execute pushes f onto the frame stack and drives dispatch until the
// frame completes (normal return, uncaught throw, or generator
// suspension). When dispatch returns a PendingAction (CALL/CONSTRUCT/
// SUPER_CALL/SPREAD), execute performs it here — constructing a child
// frame and recursing into execute when the callee is a script function —
// and re-enters dispatch for the same frame with the result routed in.
func (vm *VM) execute(f *FrameContext) (Value, error) {
	vm.frames = append(vm.frames, f)
	defer func() { vm.frames = vm.frames[:len(vm.frames)-1] }()

	if len(vm.frames) > MaxFrames {
		return vm.throwImmediate(f, vm.host.RaiseRangeError(vm.pos(f), "Maximum call stack size exceeded"))
	}

	for {
		result := vm.dispatch(f, vm.host)

		if vm.aborted {
			return Undefined(), nil
		}

		if vm.suspended {
			vm.suspended = false
			return result, nil
		}

		if f.Pending != nil {
			pending := f.Pending
			f.Pending = nil
			val := vm.performPending(f, pending)
			// Every CALL/CONSTRUCT/SUPER_CALL/SPREAD opcode routes its
			// result to the operand stack, so a successful invocation's
			// value goes back onto the stack and dispatch resumes right
			// after the call opcode. A thrown exception instead leaves
			// vm.pendingException set; dispatch's own unwind handling takes
			// it from there the next time it runs.
			if !vm.unwinding && !vm.aborted {
				f.Push(val)
			}
			continue
		}

		if vm.unwinding {
			// dispatch returned with vm.unwinding still set only when
			// unwindStep walked this frame's entire context stack without
			// finding a handler: the exception escapes the frame.
			return Undefined(), vm.escapedError()
		}

		return result, nil
	}
}

func (vm *VM) pos(f *FrameContext) errors.Position {
	if f == nil {
		return errors.Position{ByteCodeIP: -1}
	}
	return errors.Position{Line: f.Line, ByteCodeIP: f.IP}
}

// escapedError converts the pending exception value into the Go error
// Run/RunGlobal/RunEval hand back to their caller, and resets exception
// state so the VM can be reused for further top-level runs.
func (vm *VM) escapedError() error {
	err := vm.host.ErrorFromValue(vm.pendingException)
	vm.pendingException = Undefined()
	vm.unwinding = false
	return err
}

// throwImmediate raises errVal in f before dispatch has run at all (the
// max-call-depth guard is the only caller): it still goes through
// dispatch once so unwindStep's bookkeeping runs uniformly, then
// reports the result the same way execute's own loop would.
func (vm *VM) throwImmediate(f *FrameContext, errVal Value) (Value, error) {
	vm.pendingException = errVal
	vm.unwinding = true
	vm.dispatch(f, vm.host)
	return Undefined(), vm.escapedError()
}

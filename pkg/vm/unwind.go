package vm

// unwindStep advances one step of exception propagation while
// vm.unwinding is set. It is consulted at the top of dispatch's loop
// instead of decoding an instruction.
//
// findFinally walks f's context stack, aborting (and freeing the
// operand-stack garbage left above) every context that cannot receive
// the throw, until it either finds a TRY record still able to route
// control to a catch or finally body, or runs out of contexts. In the
// first case this frame keeps running — done is false, dispatch's loop
// continues at the new f.IP. In the second, the exception has escaped
// every context this frame owns, and the frame itself is done: done is
// true, and execute converts vm.pendingException into the Go error Run
// reports.
func (vm *VM) unwindStep(f *FrameContext, host Host) (done bool, result Value) {
	exc := vm.pendingException

	rec := vm.findFinally(f, CompletionThrow, 0, host)
	if rec == nil {
		f.TruncateStack(0, host)
		return true, ErrorSentinel()
	}

	f.TruncateStack(rec.StackDepth, host)
	vm.unwinding = false
	vm.pendingException = Undefined()

	if rec.Phase == PhaseCatch {
		// A catch clause exists and is about to run: the exception value
		// becomes the catch parameter's initializer, picked up by the
		// CREATE_BINDING/INIT_BINDING pair the compiled catch clause opens
		// with, exactly like any other destructuring initializer.
		f.Push(exc)
	} else {
		// No catch clause (or the catch clause's own body threw): the
		// finally body runs with nothing on the stack, and CONTEXT_END
		// re-raises the parked exception once it completes.
		rec.PendingCompletion = CompletionThrow
		rec.PendingValue = exc
	}

	f.IP = rec.HandlerIP
	return false, Undefined()
}

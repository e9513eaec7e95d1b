package vm

// ContextKind identifies the syntactic construct an in-frame context
// record tracks.
type ContextKind uint8

const (
	ContextTry ContextKind = iota
	ContextWith
	ContextForIn
	ContextForOf
	ContextBlock
)

// TryPhase tracks where a ContextTry record is in its own try/catch/
// finally statement, since the same record lives from TRY through
// whichever of CATCH and FINALLY the statement has.
type TryPhase uint8

const (
	PhaseBody TryPhase = iota
	PhaseCatch
	PhaseFinally
)

// ContextRecord is one nested context marker (TRY/CATCH/FINALLY, WITH,
// a for-in/for-of loop, or a plain block). Rather than interleaving
// these with operand-stack values, a FrameContext keeps them on their
// own parallel Contexts stack, which preserves the same push/pop
// ordering, abort-on-unwind, and depth bookkeeping with an ordinary Go
// slice instead of a mixed-type stack.
type ContextRecord struct {
	Kind          ContextKind
	HasLexEnv     bool // this record pushed frame.LexEnv; abort must pop it
	CloseIterator bool // FOR_OF: abort must call IteratorClose
	StackDepth    int  // operand stack depth when this record was pushed

	// ContextTry: CatchIP/FinallyIP are 0 when the clause is absent.
	// Phase tracks which part of the statement is currently executing,
	// since a single record spans TRY through CATCH through FINALLY.
	Phase     TryPhase
	CatchIP   int
	FinallyIP int
	HandlerIP int // where findFinally last redirected control: CatchIP or FinallyIP

	// Set when findFinally diverts control into the finally body: what
	// completion to resume once the finally body runs CONTEXT_END.
	PendingCompletion CompletionKind
	PendingValue      Value // parked return value or thrown exception
	PendingJumpTarget int

	// FOR_IN
	ForInNames  *Collection
	ForInCursor int
	ForInObject ObjectRef

	// FOR_OF
	ForOfIter ObjectRef
	ForOfLast Value

	// WITH / BLOCK: nothing beyond HasLexEnv; the environment itself
	// lives on frame.LexEnv already.
}

// PushContext pushes a new context record and returns it for the caller
// to fill in.
func (f *FrameContext) PushContext(kind ContextKind) *ContextRecord {
	rec := &ContextRecord{Kind: kind, StackDepth: len(f.Stack)}
	f.Contexts = append(f.Contexts, rec)
	return rec
}

// PopContext removes and returns the top context record.
func (f *FrameContext) PopContext() *ContextRecord {
	n := len(f.Contexts)
	rec := f.Contexts[n-1]
	f.Contexts = f.Contexts[:n-1]
	return rec
}

func (f *FrameContext) TopContext() *ContextRecord {
	if len(f.Contexts) == 0 {
		return nil
	}
	return f.Contexts[len(f.Contexts)-1]
}

func (f *FrameContext) ContextDepth() int { return len(f.Contexts) }

// contextAbort releases the resources of a single context record: pops
// its lexical environment if it pushed one, closes a FOR_OF iterator if
// flagged, and frees a FOR_IN name collection.
func (vm *VM) contextAbort(f *FrameContext, rec *ContextRecord, host ObjectHost) {
	if host != nil {
		f.TruncateStack(rec.StackDepth, host)
	}
	if rec.HasLexEnv && f.LexEnv != nil {
		f.LexEnv = f.LexEnv.Outer
	}
	switch rec.Kind {
	case ContextForIn:
		if rec.ForInNames != nil {
			rec.ForInNames.Free(host)
		}
	case ContextForOf:
		if rec.CloseIterator && rec.ForOfIter != nil && host != nil {
			_ = host.IteratorClose(rec.ForOfIter, nil)
		}
	}
}

// CompletionKind describes what findFinally is matching against: a
// pending throw, a pending return, or a pending jump to a byte-code
// offset.
type CompletionKind uint8

const (
	CompletionNormal CompletionKind = iota
	CompletionThrow
	CompletionReturn
	CompletionJump
)

// findFinally walks the context stack downward looking for a TRY record
// that must intercept the given completion (a thrown exception, a
// return, or — not yet wired to any opcode — a jump past the
// statement), aborting every intervening context along the way. A
// matching record is left on the stack (CONTEXT_END pops it once its
// catch/finally body finishes) with its Phase and Pending* fields
// updated to reflect where control is headed; the caller still has to
// perform the jump itself. Returns nil once unwinding has walked past
// every context in the frame without finding one, meaning the
// completion escapes the frame entirely.
//
// A completion reached while a record's own Phase is already
// PhaseFinally is deliberately treated as non-matching: a return or
// throw statement written directly inside a finally block overrides
// whatever was previously parked, and the record has nothing further to
// offer it, so it is aborted and the search continues outward exactly
// as it would for a block or with context.
func (vm *VM) findFinally(f *FrameContext, completion CompletionKind, jumpTarget int, host ObjectHost) *ContextRecord {
	for len(f.Contexts) > 0 {
		rec := f.TopContext()
		if rec.Kind == ContextTry && rec.Phase != PhaseFinally {
			switch completion {
			case CompletionThrow:
				if rec.Phase == PhaseBody && rec.CatchIP != 0 {
					rec.Phase = PhaseCatch
					rec.PendingCompletion = CompletionNormal
					rec.HandlerIP = rec.CatchIP
					return rec
				}
				if rec.FinallyIP != 0 {
					rec.Phase = PhaseFinally
					rec.HandlerIP = rec.FinallyIP
					return rec
				}
			case CompletionReturn, CompletionJump:
				if rec.FinallyIP != 0 {
					rec.Phase = PhaseFinally
					rec.HandlerIP = rec.FinallyIP
					return rec
				}
			}
		}
		f.PopContext()
		vm.contextAbort(f, rec, host)
	}
	return nil
}

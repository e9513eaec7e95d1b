package vm

// PendingOp identifies the deferred action dispatch hands back to
// execute: dispatch decodes far enough to know a call/construct/spread
// is needed, but the actual invocation (which may recurse into dispatch
// for a child frame) happens one level up, in execute.
type PendingOp uint8

const (
	PendingNone PendingOp = iota
	PendingCall
	PendingConstruct
	PendingSuperCall
	PendingSpread
	PendingReturn
)

// PendingAction carries the deferred operation and the operands dispatch
// already popped off the stack for it. The result of every pending
// action is pushed back onto the operand stack by execute, so there is
// no destination register to record here.
type PendingAction struct {
	Op       PendingOp
	Callee   Value
	This     Value
	Args     []Value
	IsMethod bool // callee was fetched through a property reference
	SpreadOp OpCode
}

// FrameContext is the per-call activation record.
type FrameContext struct {
	Unit   *CodeUnit
	Reader *Reader
	IP     int

	Registers []Value
	Stack     []Value // operand stack; grows by append, shrinks by truncation
	Contexts  []*ContextRecord

	LexEnv      *LexEnv
	This        Value
	Function    Value // the function object this frame is running, Undefined for top-level/eval/module code
	BlockResult Value // accumulator for the expression-statement value (eval)

	NewTarget Value

	SuperInitialized bool // one-shot guard: super() re-entry raises ReferenceError
	IsConstructorCall bool

	Pending *PendingAction // non-nil when dispatch returned with a deferred action

	Parent *FrameContext

	ResourceName string
	Line         int

	IsGenerator bool
	GenSuspend  *GeneratorSuspend // non-nil while this frame is parked off-stack
}

// Push/Pop on the operand stack. Every push/pop site in dispatch.go is
// paired so a value's ownership is never dropped without a matching
// Free/FastFree.
func (f *FrameContext) Push(v Value) { f.Stack = append(f.Stack, v) }

func (f *FrameContext) Pop() Value {
	n := len(f.Stack)
	v := f.Stack[n-1]
	f.Stack = f.Stack[:n-1]
	return v
}

func (f *FrameContext) Peek(depthFromTop int) Value {
	return f.Stack[len(f.Stack)-1-depthFromTop]
}

func (f *FrameContext) StackLen() int { return len(f.Stack) }

// TruncateStack drops the operand stack back to n entries, freeing any
// object-tagged values above that point. Used on exception unwind.
func (f *FrameContext) TruncateStack(n int, host ObjectHost) {
	for len(f.Stack) > n {
		f.Pop().FastFree(host)
	}
}

// NewFrameContext allocates the frame for one invocation of unit,
// chaining to parent. Argument/register seeding happens separately in
// InitExec below, once the argument slice has been evaluated.
func NewFrameContext(unit *CodeUnit, parent *FrameContext) *FrameContext {
	return &FrameContext{
		Unit:      unit,
		Reader:    NewReader(unit),
		Registers: make([]Value, unit.RegisterEnd),
		Stack:     make([]Value, 0, unit.StackLimit),
		Parent:    parent,
		This:      Undefined(),
		Function:  Undefined(),
		NewTarget: Undefined(),
	}
}

// InitExec seeds the first ArgumentEnd registers from args (truncating
// surplus into a rest array when FlagRestParameter is set) and fills the
// remainder up to RegisterEnd with Undefined.
func (vm *VM) InitExec(f *FrameContext, args []Value, host ObjectHost) error {
	unit := f.Unit
	n := len(args)
	for i := 0; i < unit.ArgumentEnd; i++ {
		if i < n {
			f.Registers[i] = args[i]
		} else {
			f.Registers[i] = Undefined()
		}
	}
	for i := unit.ArgumentEnd; i < unit.RegisterEnd; i++ {
		f.Registers[i] = Undefined()
	}
	if unit.Status.Has(FlagRestParameter) && unit.ArgumentEnd < unit.RegisterEnd {
		var rest []Value
		if n > unit.ArgumentEnd {
			rest = append(rest, args[unit.ArgumentEnd:]...)
		}
		restRef, err := vm.makeRestArray(host, rest)
		if err != nil {
			return err
		}
		f.Registers[unit.ArgumentEnd] = restRef
	}
	return nil
}

func (vm *VM) makeRestArray(host ObjectHost, items []Value) (Value, error) {
	if host == nil {
		return Undefined(), nil
	}
	return host.NewArrayFromSlice(items)
}

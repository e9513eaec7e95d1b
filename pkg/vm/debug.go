package vm

import "fmt"

// DebugTrace gates a per-opcode trace print, matching the teacher's own
// debug-bool-gated fmt.Printf idiom rather than pulling in a logging
// framework: set true by an embedder (cmd/vmrun's -trace flag) before
// calling Run/RunGlobal/RunFunction.
var DebugTrace bool

func traceOpcode(f *FrameContext, op OpCode) {
	fmt.Printf("[trace] ip=%d op=%d stack=%d\n", f.IP, op, f.StackLen())
}

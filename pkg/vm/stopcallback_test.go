package vm

import "testing"

// TestStopCallbackFiresOnBackwardBranch hand-assembles a tight backward
// OpJump loop (control byte 0x80 = backward, width 1; magnitude 3 jumps
// back to the OpJump opcode itself) and drives it through dispatch with a
// budget-decrementing stop callback. If stepStopDue ever regresses back to
// its old no-op form, this test hangs instead of failing.
func TestStopCallbackFiresOnBackwardBranch(t *testing.T) {
	unit := &CodeUnit{
		StackLimit: 0,
		Code:       []byte{byte(OpJump), 0x80, 3},
	}
	f := NewFrameContext(unit, nil)
	vmInst := NewVM(fakeHost{})

	budget := 5
	var calls int
	vmInst.SetStopCallback(func(v *VM) (Value, bool, bool) {
		calls++
		budget--
		return Undefined(), false, budget <= 0
	}, 1)

	vmInst.dispatch(f, fakeHost{})

	if !vmInst.aborted {
		t.Fatal("expected the VM to abort once the step budget was exhausted")
	}
	if calls != 5 {
		t.Fatalf("expected the stop callback to fire once per backward branch, got %d calls", calls)
	}
}

// TestStopCallbackNotConsultedWithoutBackwardBranch confirms the stop
// callback is never invoked for straight-line code, even when one is
// registered: only backward-branch-capable opcodes pay for the check.
func TestStopCallbackNotConsultedWithoutBackwardBranch(t *testing.T) {
	unit := &CodeUnit{
		StackLimit: 1,
		Code:       []byte{byte(OpPushUndefined), byte(OpReturn)},
	}
	f := NewFrameContext(unit, nil)
	vmInst := NewVM(fakeHost{})

	called := false
	vmInst.SetStopCallback(func(v *VM) (Value, bool, bool) {
		called = true
		return Undefined(), false, true
	}, 1)

	vmInst.dispatch(f, fakeHost{})

	if called {
		t.Fatal("stop callback should not be consulted for opcodes without FlagBackwardBranch")
	}
}

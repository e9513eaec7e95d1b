package vm

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"
)

func TestTraceOpcodeFormat(t *testing.T) {
	unit := &CodeUnit{StackLimit: 2}
	f := NewFrameContext(unit, nil)
	f.IP = 3
	f.Push(MakeInt(1))

	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	os.Stdout = w
	traceOpcode(f, OpAdd)
	w.Close()
	os.Stdout = orig

	var buf bytes.Buffer
	io.Copy(&buf, r)
	out := buf.String()

	if !strings.Contains(out, "ip=3") {
		t.Fatalf("trace output missing ip, got %q", out)
	}
	if !strings.Contains(out, "stack=1") {
		t.Fatalf("trace output missing stack depth, got %q", out)
	}
}

func TestDebugTraceDefaultsOff(t *testing.T) {
	if DebugTrace {
		t.Fatal("DebugTrace should default to false so no embedder pays for tracing unless it opts in")
	}
}

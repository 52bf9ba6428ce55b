package vm

import (
	"testing"

	"pyrt/internal/bytecode"
	"pyrt/internal/object"
)

func TestNewFrameSizing(t *testing.T) {
	code := &bytecode.CodeObject{
		StackSize: 4,
		NLocals:   3,
		CellVars:  []string{"c"},
		FreeVars:  []string{"f1", "f2"},
		Flags:     bytecode.FlagOptimized,
	}
	f := NewFrame(&ThreadState{}, code, object.NewDict(), object.NewDict())
	if len(f.stack) != 4 {
		t.Fatalf("stack len = %d, want 4", len(f.stack))
	}
	if len(f.locals) != 3 {
		t.Fatalf("locals len = %d, want 3", len(f.locals))
	}
	if f.Locals != nil {
		t.Fatal("expected nil Locals dict for an OPTIMIZED frame")
	}
	if len(f.cells) != 1 || len(f.freevars) != 2 {
		t.Fatalf("cells/freevars sizing wrong: %d/%d", len(f.cells), len(f.freevars))
	}
	for _, c := range f.cells {
		if _, ok := c.Get(); ok {
			t.Fatal("expected fresh cellvar cells to start unbound")
		}
	}
}

func TestNewFrameUnoptimizedUsesLocalsDict(t *testing.T) {
	code := &bytecode.CodeObject{StackSize: 1}
	f := NewFrame(&ThreadState{}, code, object.NewDict(), object.NewDict())
	if f.Locals == nil {
		t.Fatal("expected non-nil Locals dict for an unoptimised frame")
	}
}

func TestFrameStackHelpers(t *testing.T) {
	code := &bytecode.CodeObject{StackSize: 3, Flags: bytecode.FlagOptimized}
	f := NewFrame(&ThreadState{}, code, object.NewDict(), object.NewDict())
	f.push(object.Int(1))
	f.push(object.Int(2))
	f.push(object.Int(3))
	if f.top() != object.Int(3) {
		t.Fatalf("top = %v, want Int(3)", f.top())
	}
	items := f.popN(2)
	if len(items) != 2 || items[0] != object.Int(2) || items[1] != object.Int(3) {
		t.Fatalf("popN = %v, want [Int(2) Int(3)]", items)
	}
	if f.pop() != object.Int(1) {
		t.Fatal("expected remaining stack item to be Int(1)")
	}
}

func TestFramePushOverflowPanics(t *testing.T) {
	code := &bytecode.CodeObject{StackSize: 1, Flags: bytecode.FlagOptimized}
	f := NewFrame(&ThreadState{}, code, object.NewDict(), object.NewDict())
	f.push(object.Int(1))
	defer func() {
		if recover() == nil {
			t.Fatal("expected push past declared stack size to panic")
		}
	}()
	f.push(object.Int(2))
}

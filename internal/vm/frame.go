// Package vm implements the frame evaluator (spec.md §4.9, component H)
// and the function/closure objects it creates frames from (§4.10,
// component I): the dispatch loop that consumes a code object's opcode
// stream against an explicit per-thread frame stack.
package vm

import (
	"pyrt/internal/bytecode"
	"pyrt/internal/errtypes"
	"pyrt/internal/object"
)

// Frame is a single activation of a code object (spec.md §4.9 "Frame").
// It is single-owner: created by a call, pushed onto its thread's stack,
// and never shared across threads (spec.md §5 "Ordering").
type Frame struct {
	Thread *ThreadState
	Back   *Frame
	Code   *bytecode.CodeObject

	Globals  *object.Dict
	Builtins *object.Dict
	Locals   *object.Dict // non-nil only for an unoptimised frame

	stack    []object.Value
	sp       int
	locals   []object.Value // OPTIMIZED frames: LOAD_FAST/STORE_FAST slot array; unset = nil
	cells    []*object.Cell // cellvars, indexed per Code.CellVars
	freevars []*object.Cell // freevars, indexed per Code.FreeVars

	ip int
}

// NewFrame allocates a frame sized per the code object's declared stack
// depth and local count (spec.md "a value stack (bounded by the code's
// declared stack size); a local-variable array for OPTIMIZED frames").
func NewFrame(thread *ThreadState, code *bytecode.CodeObject, globals, builtins *object.Dict) *Frame {
	f := &Frame{
		Thread:   thread,
		Code:     code,
		Globals:  globals,
		Builtins: builtins,
		stack:    make([]object.Value, code.StackSize),
		cells:    make([]*object.Cell, len(code.CellVars)),
		freevars: make([]*object.Cell, len(code.FreeVars)),
	}
	if code.Optimized() {
		f.locals = make([]object.Value, code.NLocals)
	} else {
		f.Locals = object.NewDict()
	}
	for i := range f.cells {
		f.cells[i] = object.EmptyCell()
	}
	return f
}

func (f *Frame) push(v object.Value) {
	if f.sp >= len(f.stack) {
		panic(errtypes.Fatal("value stack overflow in frame %s (declared size %d)", f.Code.Name, len(f.stack)))
	}
	f.stack[f.sp] = v
	f.sp++
	Stats.recordStackDepth(f.sp)
}

func (f *Frame) pop() object.Value {
	f.sp--
	v := f.stack[f.sp]
	f.stack[f.sp] = nil
	return v
}

func (f *Frame) top() object.Value { return f.stack[f.sp-1] }

// GlobalsDict and LocalsDict satisfy internal/builtins.FrameNamespaces,
// letting globals()/locals() read the currently running frame without
// internal/builtins importing internal/vm.
func (f *Frame) GlobalsDict() *object.Dict { return f.Globals }
func (f *Frame) LocalsDict() *object.Dict  { return f.Locals }

func (f *Frame) popN(n int) []object.Value {
	out := make([]object.Value, n)
	copy(out, f.stack[f.sp-n:f.sp])
	for i := f.sp - n; i < f.sp; i++ {
		f.stack[i] = nil
	}
	f.sp -= n
	return out
}

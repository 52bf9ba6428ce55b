package vm

import (
	"testing"

	"pyrt/internal/bytecode"
	"pyrt/internal/object"
)

func instr(op bytecode.OpCode, arg byte) []byte { return []byte{byte(op), arg} }

func concatInstrs(chunks ...[]byte) []byte {
	var out []byte
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

func TestRunFrameArithmetic(t *testing.T) {
	code := &bytecode.CodeObject{
		Name:      "<test>",
		Consts:    []object.Value{object.Int(2), object.Int(3)},
		StackSize: 2,
		Flags:     bytecode.FlagOptimized,
		Code: concatInstrs(
			instr(bytecode.LOAD_CONST, 0),
			instr(bytecode.LOAD_CONST, 1),
			instr(bytecode.BINARY_ADD, 0),
			instr(bytecode.RETURN_VALUE, 0),
		),
	}
	frame := NewFrame(&ThreadState{}, code, object.NewDict(), object.NewDict())
	result, err := RunFrame(frame)
	if err != nil {
		t.Fatalf("RunFrame error: %v", err)
	}
	if result != object.Int(5) {
		t.Fatalf("got %v, want Int(5)", result)
	}
}

func TestRunFrameNameResolution(t *testing.T) {
	code := &bytecode.CodeObject{
		Name:      "<module>",
		Consts:    []object.Value{object.Int(42)},
		Names:     []string{"x"},
		StackSize: 1,
		Code: concatInstrs(
			instr(bytecode.LOAD_CONST, 0),
			instr(bytecode.STORE_NAME, 0),
			instr(bytecode.LOAD_NAME, 0),
			instr(bytecode.RETURN_VALUE, 0),
		),
	}
	frame := NewFrame(&ThreadState{}, code, object.NewDict(), object.NewDict())
	result, err := RunFrame(frame)
	if err != nil {
		t.Fatalf("RunFrame error: %v", err)
	}
	if result != object.Int(42) {
		t.Fatalf("got %v, want Int(42)", result)
	}
}

func TestRunFrameUnboundLocal(t *testing.T) {
	code := &bytecode.CodeObject{
		Name:      "<test>",
		VarNames:  []string{"x"},
		NLocals:   1,
		StackSize: 1,
		Flags:     bytecode.FlagOptimized,
		Code: concatInstrs(
			instr(bytecode.LOAD_FAST, 0),
			instr(bytecode.RETURN_VALUE, 0),
		),
	}
	frame := NewFrame(&ThreadState{}, code, object.NewDict(), object.NewDict())
	_, err := RunFrame(frame)
	if err == nil {
		t.Fatal("expected unbound local error")
	}
}

func TestRunFrameForIterLoop(t *testing.T) {
	code := &bytecode.CodeObject{
		Name:      "<test>",
		Consts:    []object.Value{object.Int(0), object.Tuple{object.Int(1), object.Int(2), object.Int(3)}},
		VarNames:  []string{"sum", "item"},
		NLocals:   2,
		StackSize: 3,
		Flags:     bytecode.FlagOptimized,
		Code: concatInstrs(
			instr(bytecode.LOAD_CONST, 0), // sum = 0
			instr(bytecode.STORE_FAST, 0),
			instr(bytecode.LOAD_CONST, 1), // push tuple
			instr(bytecode.GET_ITER, 0),   // offset 6: push iterator
			instr(bytecode.FOR_ITER, 22),  // offset 8: exit -> 22
			instr(bytecode.STORE_FAST, 1), // offset 10: item = TOS
			instr(bytecode.LOAD_FAST, 0),  // offset 12
			instr(bytecode.LOAD_FAST, 1),  // offset 14
			instr(bytecode.BINARY_ADD, 0), // offset 16
			instr(bytecode.STORE_FAST, 0), // offset 18: sum += item
			instr(bytecode.JUMP_ABSOLUTE, 8),
			instr(bytecode.LOAD_FAST, 0), // offset 22
			instr(bytecode.RETURN_VALUE, 0),
		),
	}
	frame := NewFrame(&ThreadState{}, code, object.NewDict(), object.NewDict())
	result, err := RunFrame(frame)
	if err != nil {
		t.Fatalf("RunFrame error: %v", err)
	}
	if result != object.Int(6) {
		t.Fatalf("got %v, want Int(6)", result)
	}
}

func TestCallFunctionBindsArgsAndReturns(t *testing.T) {
	code := &bytecode.CodeObject{
		Name:      "add",
		ArgCount:  2,
		VarNames:  []string{"a", "b"},
		NLocals:   2,
		StackSize: 2,
		Flags:     bytecode.FlagOptimized,
		Code: concatInstrs(
			instr(bytecode.LOAD_FAST, 0),
			instr(bytecode.LOAD_FAST, 1),
			instr(bytecode.BINARY_ADD, 0),
			instr(bytecode.RETURN_VALUE, 0),
		),
	}
	fn := &object.Function{Name: "add", CodeObject: code, Globals: object.NewDict()}
	result, err := CallFunction(nil, fn, []object.Value{object.Int(4), object.Int(9)}, nil)
	if err != nil {
		t.Fatalf("CallFunction error: %v", err)
	}
	if result != object.Int(13) {
		t.Fatalf("got %v, want Int(13)", result)
	}
}

func TestCallFunctionDefaultsAndKeywords(t *testing.T) {
	code := &bytecode.CodeObject{
		Name:      "greet",
		ArgCount:  2,
		VarNames:  []string{"name", "greeting"},
		NLocals:   2,
		StackSize: 2,
		Flags:     bytecode.FlagOptimized,
		Code: concatInstrs(
			instr(bytecode.LOAD_FAST, 1),
			instr(bytecode.RETURN_VALUE, 0),
		),
	}
	fn := &object.Function{
		Name:       "greet",
		CodeObject: code,
		Globals:    object.NewDict(),
		Defaults:   []object.Value{object.Str("hello")},
	}
	result, err := CallFunction(nil, fn, []object.Value{object.Str("Ada"), object.Str("hi")}, []string{"greeting"})
	if err != nil {
		t.Fatalf("CallFunction error: %v", err)
	}
	if result != object.Str("hi") {
		t.Fatalf("got %v, want Str(hi)", result)
	}
}

func TestRunFrameBuildContainers(t *testing.T) {
	code := &bytecode.CodeObject{
		Name:      "<test>",
		Consts:    []object.Value{object.Int(1), object.Int(2), object.Int(3)},
		StackSize: 3,
		Flags:     bytecode.FlagOptimized,
		Code: concatInstrs(
			instr(bytecode.LOAD_CONST, 0),
			instr(bytecode.LOAD_CONST, 1),
			instr(bytecode.LOAD_CONST, 2),
			instr(bytecode.BUILD_LIST, 3),
			instr(bytecode.RETURN_VALUE, 0),
		),
	}
	frame := NewFrame(&ThreadState{}, code, object.NewDict(), object.NewDict())
	result, err := RunFrame(frame)
	if err != nil {
		t.Fatalf("RunFrame error: %v", err)
	}
	list, ok := result.(*object.List)
	if !ok || len(list.Items) != 3 {
		t.Fatalf("got %#v, want a 3-element list", result)
	}
}

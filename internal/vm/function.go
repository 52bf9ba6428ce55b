package vm

import (
	"github.com/google/uuid"

	"pyrt/internal/bytecode"
	"pyrt/internal/builtins"
	"pyrt/internal/errtypes"
	"pyrt/internal/expose"
	"pyrt/internal/object"
)

// builtinsDict is installed as every top-level frame's builtins
// namespace; package builtins populates it at process start (spec.md
// §4.9 "Name resolution order... globals -> builtins").
var builtinsDict = object.NewDict()

func Builtins() *object.Dict { return builtinsDict }

func init() {
	object.FunctionType.Slots.Call = func(self object.Value, args []object.Value, kwnames []string) (object.Value, error) {
		fn := self.(*object.Function)
		return CallFunction(nil, fn, args, kwnames)
	}
	builtins.Install(builtinsDict)
}

// argParserFor builds the argument parser spec.md §4.8 describes from a
// code object's declared parameter layout (component I "creating a
// frame from a function: ... parse arguments per §4.8 into the
// local-variable array").
func argParserFor(fn *object.Function, code *bytecode.CodeObject) *expose.ArgParser {
	total := code.ArgCount + code.KwOnlyCount
	params := make([]expose.Param, total)
	for i := 0; i < total; i++ {
		params[i] = expose.Param{Name: code.VarNames[i]}
	}
	for i, d := range fn.Defaults {
		idx := code.ArgCount - len(fn.Defaults) + i
		if idx >= 0 && idx < code.ArgCount {
			params[idx].Default = d
			params[idx].HasDefault = true
		}
	}
	kwDefaults := map[string]object.Value{}
	if fn.KwDefaults != nil {
		for i, k := range fn.KwDefaults.Keys {
			if s, ok := k.(object.Str); ok {
				kwDefaults[string(s)] = fn.KwDefaults.Values[i]
			}
		}
	}
	return &expose.ArgParser{
		Name:         fn.Name,
		Params:       params,
		PosOnlyCount: code.PosOnlyCount,
		KwOnlyCount:  code.KwOnlyCount,
		HasVarArgs:   code.Flags&bytecode.FlagVarArgs != 0,
		HasVarKw:     code.Flags&bytecode.FlagVarKeywords != 0,
		KwDefaults:   kwDefaults,
	}
}

// CallFunction creates a frame from fn per spec.md §4.10, binds args
// into its local-variable array, wires cellvars/freevars, and runs the
// dispatch loop. thread may be nil, in which case a private single-use
// ThreadState is created (used for top-level/test invocations outside a
// Manager-scheduled call).
func CallFunction(thread *ThreadState, fn *object.Function, args []object.Value, kwnames []string) (object.Value, error) {
	code, ok := fn.CodeObject.(*bytecode.CodeObject)
	if !ok {
		return nil, errtypes.Fatal("function %s has no compiled code object", fn.Name)
	}
	if thread == nil {
		thread = &ThreadState{ID: uuid.New()}
	}

	bound, err := argParserFor(fn, code).Bind(args, kwnames)
	if err != nil {
		return nil, err
	}

	frame := NewFrame(thread, code, fn.Globals, builtinsDict)
	copy(frame.locals, bound)

	for i, name := range code.CellVars {
		for j, vn := range code.VarNames {
			if vn == name && j < len(bound) {
				frame.cells[i] = object.NewCell(bound[j])
			}
		}
	}
	copy(frame.freevars, fn.Closure)

	return RunFrame(frame)
}

// MakeFunction builds a callable bound to the given globals, following
// MAKE_FUNCTION's popped operands (spec.md §4.9 "MAKE_FUNCTION").
func MakeFunction(qualName string, code *bytecode.CodeObject, globals *object.Dict, defaults []object.Value, kwDefaults *object.Dict, annotations *object.Dict, closure []*object.Cell) *object.Function {
	name := qualName
	if idx := lastDot(qualName); idx >= 0 {
		name = qualName[idx+1:]
	}
	return &object.Function{
		Name:        name,
		QualName:    qualName,
		CodeObject:  code,
		Globals:     globals,
		Defaults:    defaults,
		KwDefaults:  kwDefaults,
		Closure:     closure,
		Annotations: annotations,
	}
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}

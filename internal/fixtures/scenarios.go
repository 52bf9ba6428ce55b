package fixtures

import (
	"fmt"
	"math"

	"pyrt/internal/bytecode"
	"pyrt/internal/expose"
	"pyrt/internal/object"
	"pyrt/internal/ops"
	"pyrt/internal/vm"
)

// Scenario is one runnable conformance check (spec.md §8 "Conformance
// scenarios" S1-S8). Run drives the real dispatch loop and/or abstract
// operation API and returns the repr of what actually happened; Want is
// the literal outcome spec.md §8 names for that scenario.
type Scenario struct {
	ID   string
	Name string
	Run  func() (string, error)
	Want string
}

func instr(op bytecode.OpCode, arg byte) []byte { return []byte{byte(op), arg} }

func concatInstrs(chunks ...[]byte) []byte {
	var out []byte
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

func reprStr(v object.Value) string {
	r, err := ops.Repr(v)
	if err != nil {
		return fmt.Sprintf("<repr error: %v>", err)
	}
	s, _ := r.(object.Str)
	return string(s)
}

// Scenarios lists every scenario in spec.md §8, in order.
var Scenarios = []Scenario{
	{
		ID:   "S1",
		Name: "bytecode assignment",
		Want: "(2, 4, 6)",
		Run:  runS1BytecodeAssignment,
	},
	{
		ID:   "S2",
		Name: "dot product loop",
		Want: "42",
		Run:  runS2DotProductLoop,
	},
	{
		ID:   "S3",
		Name: "mixed arithmetic",
		Want: "(42.0, -42.0)",
		Run:  runS3MixedArithmetic,
	},
	{
		ID:   "S4",
		Name: "boolean arithmetic",
		Want: "(43, 42, 0, False)",
		Run:  runS4BooleanArithmetic,
	},
	{
		ID:   "S5",
		Name: "reflected dispatch",
		Want: "'sentinel'",
		Run:  runS5ReflectedDispatch,
	},
	{
		ID:   "S6",
		Name: "attribute descriptor",
		Want: "thing=NaN delCount=1",
		Run:  runS6AttributeDescriptor,
	},
	{
		ID:   "S7",
		Name: "Carlo Verre hack prevention",
		Want: "(True, True, True, True)",
		Run:  runS7CarloVerre,
	},
	{
		ID:   "S8",
		Name: "exposer signature",
		Want: "pos=3 posonly=1 kwonly=0 args=[a b c] sig=($self, a, /, b, c)",
		Run:  runS8ExposerSignature,
	},
}

// runS1BytecodeAssignment executes LOAD_NAME b; STORE_NAME a; LOAD_CONST
// 4; STORE_NAME b; LOAD_CONST 6; STORE_NAME c; LOAD_CONST None;
// RETURN_VALUE against globals {a:1, b:2}.
func runS1BytecodeAssignment() (string, error) {
	globals := object.NewDict()
	globals.SetStr("a", object.Int(1))
	globals.SetStr("b", object.Int(2))

	code := &bytecode.CodeObject{
		Name:      "<module>",
		Consts:    []object.Value{object.Int(4), object.Int(6), object.None},
		Names:     []string{"b", "a", "c"},
		StackSize: 1,
		Code: concatInstrs(
			instr(bytecode.LOAD_NAME, 0),  // b
			instr(bytecode.STORE_NAME, 1), // a
			instr(bytecode.LOAD_CONST, 0), // 4
			instr(bytecode.STORE_NAME, 0), // b
			instr(bytecode.LOAD_CONST, 1), // 6
			instr(bytecode.STORE_NAME, 2), // c
			instr(bytecode.LOAD_CONST, 2), // None
			instr(bytecode.RETURN_VALUE, 0),
		),
	}
	frame := vm.NewFrame(&vm.ThreadState{}, code, globals, object.NewDict())
	if _, err := vm.RunFrame(frame); err != nil {
		return "", err
	}
	a, _ := globals.GetStr("a")
	b, _ := globals.GetStr("b")
	c, _ := globals.GetStr("c")
	return fmt.Sprintf("(%s, %s, %s)", reprStr(a), reprStr(b), reprStr(c)), nil
}

// runS2DotProductLoop iterates (a[i], b[i]) pairs through GET_ITER/
// FOR_ITER and accumulates sum += a[i]*b[i] via BINARY_SUBSCR/
// BINARY_MUL/BINARY_ADD, for a=(2,3,4), b=(3,4,6).
func runS2DotProductLoop() (string, error) {
	pairs := object.Tuple{
		object.Tuple{object.Int(2), object.Int(3)},
		object.Tuple{object.Int(3), object.Int(4)},
		object.Tuple{object.Int(4), object.Int(6)},
	}
	code := &bytecode.CodeObject{
		Name:      "<test>",
		Consts:    []object.Value{object.Int(0), pairs, object.Int(0), object.Int(1)},
		VarNames:  []string{"sum", "pair", "prod"},
		NLocals:   3,
		StackSize: 3,
		Flags:     bytecode.FlagOptimized,
		Code: concatInstrs(
			instr(bytecode.LOAD_CONST, 0),    // offset 0: push 0
			instr(bytecode.STORE_FAST, 0),    // offset 2: sum = 0
			instr(bytecode.LOAD_CONST, 1),    // offset 4: push pairs tuple
			instr(bytecode.GET_ITER, 0),      // offset 6: push iterator
			instr(bytecode.FOR_ITER, 38),     // offset 8: exit -> 38
			instr(bytecode.STORE_FAST, 1),    // offset 10: pair = item
			instr(bytecode.LOAD_FAST, 1),     // offset 12
			instr(bytecode.LOAD_CONST, 2),    // offset 14: index 0
			instr(bytecode.BINARY_SUBSCR, 0), // offset 16: pair[0]
			instr(bytecode.LOAD_FAST, 1),     // offset 18
			instr(bytecode.LOAD_CONST, 3),    // offset 20: index 1
			instr(bytecode.BINARY_SUBSCR, 0), // offset 22: pair[1]
			instr(bytecode.BINARY_MUL, 0),    // offset 24
			instr(bytecode.STORE_FAST, 2),    // offset 26: prod = a*b
			instr(bytecode.LOAD_FAST, 0),     // offset 28: sum
			instr(bytecode.LOAD_FAST, 2),     // offset 30: prod
			instr(bytecode.BINARY_ADD, 0),    // offset 32
			instr(bytecode.STORE_FAST, 0),    // offset 34: sum += prod
			instr(bytecode.JUMP_ABSOLUTE, 8), // offset 36: back to FOR_ITER
			instr(bytecode.LOAD_FAST, 0),     // offset 38: exit target
			instr(bytecode.RETURN_VALUE, 0),  // offset 40
		),
	}
	frame := vm.NewFrame(&vm.ThreadState{}, code, object.NewDict(), object.NewDict())
	result, err := vm.RunFrame(frame)
	if err != nil {
		return "", err
	}
	return reprStr(result), nil
}

// runS3MixedArithmetic evaluates a-b for (a=50.0, b=8) and (a=8,
// b=50.0), exercising Sub across the native-double and native-int
// carriers in both operand orders.
func runS3MixedArithmetic() (string, error) {
	r1, err := ops.Sub(object.Float(50.0), object.Int(8))
	if err != nil {
		return "", err
	}
	r2, err := ops.Sub(object.Int(8), object.Float(50.0))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s, %s)", reprStr(r1), reprStr(r2)), nil
}

// runS4BooleanArithmetic evaluates (u+t, u*t, u*f) and True&False for
// u=42, t=True, f=False, exercising Bool's arithmetic inheritance from
// Int and its own logical slots.
func runS4BooleanArithmetic() (string, error) {
	u, tr, fa := object.Int(42), object.Bool(true), object.Bool(false)
	sum, err := ops.Add(u, tr)
	if err != nil {
		return "", err
	}
	prodT, err := ops.Mul(u, tr)
	if err != nil {
		return "", err
	}
	prodF, err := ops.Mul(u, fa)
	if err != nil {
		return "", err
	}
	and, err := ops.And(tr, fa)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s, %s, %s, %s)", reprStr(sum), reprStr(prodT), reprStr(prodF), reprStr(and)), nil
}

// runS5ReflectedDispatch defines a type X whose __sub__ returns
// NotImplemented and whose __rsub__ returns a sentinel, then evaluates
// int - X through ops.Sub: the sentinel comes back only if int's Sub
// declines and X's reflected slot is invoked. X's __rsub__ ignores its
// operands, so this scenario does not check their order.
func runS5ReflectedDispatch() (string, error) {
	xType, err := object.NewType(object.TypeSpec{Name: "X", HasDict: true})
	if err != nil {
		return "", err
	}
	sentinel := object.Str("sentinel")
	xType.Slots.Sub = func(self, other object.Value) (object.Value, error) {
		return object.NotImplemented, nil
	}
	xType.Slots.RSub = func(self, other object.Value) (object.Value, error) {
		return sentinel, nil
	}
	x := object.NewInstance(xType)

	result, err := ops.Sub(object.Int(10), x)
	if err != nil {
		return "", err
	}
	return reprStr(result), nil
}

// runS6AttributeDescriptor defines a get-set descriptor "thing" that
// sets an internal float field and counts deletions, then evaluates
// o.thing = 3.14; del o.thing.
func runS6AttributeDescriptor() (string, error) {
	thingType, err := object.NewType(object.TypeSpec{Name: "Thing", HasDict: true})
	if err != nil {
		return "", err
	}
	var internal float64 = math.NaN()
	deleteCount := 0
	thingType.Dict["thing"] = &object.GetSetDescriptor{
		Name: "thing",
		Getter: func(object.Value) (object.Value, error) {
			return object.Float(internal), nil
		},
		Setter: func(_ object.Value, val object.Value) error {
			f, ok := val.(object.Float)
			if !ok {
				return fmt.Errorf("expected a float")
			}
			internal = float64(f)
			return nil
		},
		Deller: func(object.Value) error {
			deleteCount++
			internal = math.NaN()
			return nil
		},
	}
	o := object.NewInstance(thingType)

	if err := object.SetAttr(o, "thing", object.Float(3.14)); err != nil {
		return "", err
	}
	if err := object.DelAttr(o, "thing"); err != nil {
		return "", err
	}
	val, err := object.GetAttribute(o, "thing")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("thing=%s delCount=%d", reprStr(val), deleteCount), nil
}

// runS7CarloVerre builds a mutable type C and checks that
// type.__setattr__ succeeds on it while object.__setattr__ refuses it
// (and symmetrically for delete), the guard spec.md §4.6 calls the
// "Carlo Verre hack" prevention.
func runS7CarloVerre() (string, error) {
	cType, err := object.NewType(object.TypeSpec{Name: "C", Mutable: true})
	if err != nil {
		return "", err
	}

	setViaType := object.TypeSetAttr(cType, "a", object.Int(42)) == nil
	setViaObjectRejected := object.ObjectSetAttr(cType, "a", object.Int(42)) != nil
	delViaType := object.TypeDelAttr(cType, "a") == nil
	delViaObjectRejected := object.ObjectDelAttr(cType, "a") != nil

	return fmt.Sprintf("(%v, %v, %v, %v)",
		capitalize(setViaType), capitalize(setViaObjectRejected),
		capitalize(delViaType), capitalize(delViaObjectRejected)), nil
}

func capitalize(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// runS8ExposerSignature constructs the ArgParser an exposer would build
// for a host method declared "def m3p2(self, a, /, b, c)" and checks
// its reported positional-count, positional-only count, keyword-only
// count, argument names and text signature.
func runS8ExposerSignature() (string, error) {
	p := &expose.ArgParser{
		Name:         "m3p2",
		Params:       []expose.Param{{Name: "a"}, {Name: "b"}, {Name: "c"}},
		PosOnlyCount: 1,
	}
	return fmt.Sprintf("pos=%d posonly=%d kwonly=%d args=%v sig=%s",
		len(p.Params), p.PosOnlyCount, p.KwOnlyCount, paramNames(p.Params), p.Signature()), nil
}

func paramNames(params []expose.Param) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}

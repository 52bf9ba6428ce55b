package vm

import (
	"strings"
	"sync"

	"pyrt/internal/bytecode"
	"pyrt/internal/builtins"
	"pyrt/internal/cache"
	"pyrt/internal/errtypes"
	"pyrt/internal/object"
	"pyrt/internal/ops"
)

// binaryOp names one binary/in-place opcode's abstract-operation pairing
// (spec.md §4.9 "Binary / in-place"): this core treats an in-place
// opcode identically to its binary counterpart, since no carrier here
// distinguishes __iadd__ from __add__ (a documented simplification).
type binaryOp struct {
	pair   object.BinarySlotPair
	symbol string
}

var binaryOps = map[bytecode.OpCode]binaryOp{
	bytecode.BINARY_ADD:        {object.SlotsAdd, "+"},
	bytecode.BINARY_SUB:        {object.SlotsSub, "-"},
	bytecode.BINARY_MUL:        {object.SlotsMul, "*"},
	bytecode.BINARY_TRUE_DIV:   {object.SlotsTrueDiv, "/"},
	bytecode.BINARY_FLOOR_DIV:  {object.SlotsFloorDiv, "//"},
	bytecode.BINARY_MOD:        {object.SlotsMod, "%"},
	bytecode.BINARY_POW:        {object.SlotsPow, "** or pow()"},
	bytecode.BINARY_LSHIFT:     {object.SlotsLshift, "<<"},
	bytecode.BINARY_RSHIFT:     {object.SlotsRshift, ">>"},
	bytecode.BINARY_AND:        {object.SlotsAnd, "&"},
	bytecode.BINARY_OR:         {object.SlotsOr, "|"},
	bytecode.BINARY_XOR:        {object.SlotsXor, "^"},
	bytecode.BINARY_MATMUL:     {object.SlotsMatmul, "@"},
	bytecode.INPLACE_ADD:       {object.SlotsAdd, "+="},
	bytecode.INPLACE_SUB:       {object.SlotsSub, "-="},
	bytecode.INPLACE_MUL:       {object.SlotsMul, "*="},
	bytecode.INPLACE_TRUE_DIV:  {object.SlotsTrueDiv, "/="},
	bytecode.INPLACE_FLOOR_DIV: {object.SlotsFloorDiv, "//="},
	bytecode.INPLACE_MOD:       {object.SlotsMod, "%="},
	bytecode.INPLACE_POW:       {object.SlotsPow, "**="},
	bytecode.INPLACE_LSHIFT:    {object.SlotsLshift, "<<="},
	bytecode.INPLACE_RSHIFT:    {object.SlotsRshift, ">>="},
	bytecode.INPLACE_AND:       {object.SlotsAnd, "&="},
	bytecode.INPLACE_OR:        {object.SlotsOr, "|="},
	bytecode.INPLACE_XOR:       {object.SlotsXor, "^="},
	bytecode.INPLACE_MATMUL:    {object.SlotsMatmul, "@="},
}

var unaryResolvers = map[bytecode.OpCode]struct {
	resolve  func(object.Value) object.UnaryOp
	fallback func(object.Value) (object.Value, error)
	name     string
}{
	bytecode.UNARY_POSITIVE: {object.ResolvePos, ops.Pos, "+"},
	bytecode.UNARY_NEGATIVE: {object.ResolveNeg, ops.Neg, "-"},
	bytecode.UNARY_INVERT:   {object.ResolveInvert, ops.Invert, "~"},
}

// siteKey identifies one call site for the inline-cache side-table
// (spec.md §4.5): a call site is a fixed (code object, instruction
// offset) pair, never rebuilt across re-entries of the same frame.
type siteKey struct {
	code *bytecode.CodeObject
	ip   int
}

var (
	unarySites sync.Map // siteKey -> *cache.UnarySite
	binarySites sync.Map // siteKey -> *cache.BinarySite
)

func unarySiteFor(key siteKey, resolve func(object.Value) object.UnaryOp, fallback func(object.Value) (object.Value, error), name string) *cache.UnarySite {
	if v, ok := unarySites.Load(key); ok {
		return v.(*cache.UnarySite)
	}
	site := cache.NewUnarySite(name, resolve, fallback)
	unarySites.Store(key, site)
	return site
}

func binarySiteFor(key siteKey, op binaryOp) *cache.BinarySite {
	if v, ok := binarySites.Load(key); ok {
		return v.(*cache.BinarySite)
	}
	site := cache.NewBinarySite(op.symbol, op.pair)
	binarySites.Store(key, site)
	return site
}

// RunFrame pushes f onto its thread's stack and executes its opcode
// stream to completion (spec.md §4.9 "Dispatch loop"). The coarse
// global lock is held for the whole call: per spec.md §5, a frame is
// always executed by exactly one thread end-to-end with no suspension
// points, so nothing can observe interpreter state mid-instruction.
func RunFrame(f *Frame) (result object.Value, err error) {
	if f.Thread != nil {
		defer func() {
			if ie, ok := err.(*errtypes.InterpreterError); ok {
				err = ie.WithThread(f.Thread.ID.String())
			}
		}()
	}
	if f.Thread != nil && f.Thread.manager != nil {
		f.Thread.manager.Lock()
		defer f.Thread.manager.Unlock()
	}
	if f.Thread != nil {
		f.Thread.push(f)
		defer f.Thread.pop()
	}
	defer builtins.BindFrame(f)()

	code := f.Code
	extended := 0
	for f.ip < len(code.Code) {
		ip := f.ip
		op, arg := code.ReadArg(ip, extended)
		extended = 0
		f.ip += 2
		Stats.recordInstr()

		if op == bytecode.EXTENDED_ARG {
			extended = arg
			continue
		}

		if binOp, ok := binaryOps[op]; ok {
			w := f.pop()
			v := f.pop()
			site := binarySiteFor(siteKey{code, ip}, binOp)
			r, err := site.Invoke(v, w)
			if err != nil {
				return nil, err
			}
			f.push(r)
			continue
		}

		if ures, ok := unaryResolvers[op]; ok {
			v := f.pop()
			site := unarySiteFor(siteKey{code, ip}, ures.resolve, ures.fallback, ures.name)
			r, err := site.Invoke(v)
			if err != nil {
				return nil, err
			}
			f.push(r)
			continue
		}

		switch op {
		case bytecode.NOP:

		case bytecode.POP_TOP:
			f.pop()

		case bytecode.ROT_TWO:
			a, b := f.pop(), f.pop()
			f.push(a)
			f.push(b)

		case bytecode.ROT_THREE:
			a, b, c := f.pop(), f.pop(), f.pop()
			f.push(a)
			f.push(c)
			f.push(b)

		case bytecode.ROT_FOUR:
			a, b, c, d := f.pop(), f.pop(), f.pop(), f.pop()
			f.push(a)
			f.push(d)
			f.push(c)
			f.push(b)

		case bytecode.DUP_TOP:
			f.push(f.top())

		case bytecode.DUP_TOP_TWO:
			a, b := f.stack[f.sp-2], f.stack[f.sp-1]
			f.push(a)
			f.push(b)

		case bytecode.UNARY_NOT:
			v := f.pop()
			t, err := ops.IsTrue(v)
			if err != nil {
				return nil, err
			}
			f.push(object.Bool(!t))

		case bytecode.BINARY_SUBSCR:
			key, container := f.pop(), f.pop()
			r, err := ops.GetItem(container, key)
			if err != nil {
				return nil, err
			}
			f.push(r)

		case bytecode.STORE_SUBSCR:
			key, container, val := f.pop(), f.pop(), f.pop()
			if err := ops.SetItem(container, key, val); err != nil {
				return nil, err
			}

		case bytecode.DELETE_SUBSCR:
			key, container := f.pop(), f.pop()
			if err := ops.DelItem(container, key); err != nil {
				return nil, err
			}

		case bytecode.COMPARE_OP:
			w, v := f.pop(), f.pop()
			r, err := runCompare(v, w, bytecode.CompareOp(arg))
			if err != nil {
				return nil, err
			}
			f.push(r)

		case bytecode.JUMP_FORWARD:
			f.ip = ip + 2 + arg

		case bytecode.JUMP_ABSOLUTE:
			f.ip = arg

		case bytecode.POP_JUMP_IF_TRUE:
			v := f.pop()
			t, err := ops.IsTrue(v)
			if err != nil {
				return nil, err
			}
			if t {
				f.ip = arg
			}

		case bytecode.POP_JUMP_IF_FALSE:
			v := f.pop()
			t, err := ops.IsTrue(v)
			if err != nil {
				return nil, err
			}
			if !t {
				f.ip = arg
			}

		case bytecode.JUMP_IF_TRUE_OR_POP:
			t, err := ops.IsTrue(f.top())
			if err != nil {
				return nil, err
			}
			if t {
				f.ip = arg
			} else {
				f.pop()
			}

		case bytecode.JUMP_IF_FALSE_OR_POP:
			t, err := ops.IsTrue(f.top())
			if err != nil {
				return nil, err
			}
			if !t {
				f.ip = arg
			} else {
				f.pop()
			}

		case bytecode.RETURN_VALUE:
			return f.pop(), nil

		case bytecode.LOAD_CONST:
			f.push(code.Consts[arg])

		case bytecode.LOAD_NAME:
			name := code.Names[arg]
			v, err := f.loadName(name)
			if err != nil {
				return nil, err
			}
			f.push(v)

		case bytecode.STORE_NAME:
			f.storeName(code.Names[arg], f.pop())

		case bytecode.DELETE_NAME:
			if f.Locals != nil {
				f.Locals.DeleteStr(code.Names[arg])
			}

		case bytecode.LOAD_GLOBAL:
			name := code.Names[arg]
			v, ok := f.Globals.GetStr(name)
			if !ok {
				v, ok = f.Builtins.GetStr(name)
			}
			if !ok {
				return nil, errtypes.New(errtypes.NameError, "name '%s' is not defined", name)
			}
			f.push(v)

		case bytecode.STORE_GLOBAL:
			f.Globals.SetStr(code.Names[arg], f.pop())

		case bytecode.DELETE_GLOBAL:
			f.Globals.DeleteStr(code.Names[arg])

		case bytecode.LOAD_FAST:
			v := f.locals[arg]
			if v == nil {
				return nil, errtypes.New(errtypes.UnboundLocal,
					"local variable '%s' referenced before assignment", code.VarNames[arg])
			}
			f.push(v)

		case bytecode.STORE_FAST:
			f.locals[arg] = f.pop()

		case bytecode.DELETE_FAST:
			f.locals[arg] = nil

		case bytecode.LOAD_DEREF:
			cell := f.cellOrFree(arg)
			v, ok := cell.Get()
			if !ok {
				return nil, errtypes.New(errtypes.NameError,
					"free variable '%s' referenced before assignment in enclosing scope", cellOrFreeName(code, arg))
			}
			f.push(v)

		case bytecode.LOAD_CLASSDEREF:
			name := cellOrFreeName(code, arg)
			if f.Locals != nil {
				if v, ok := f.Locals.GetStr(name); ok {
					f.push(v)
					continue
				}
			}
			cell := f.cellOrFree(arg)
			v, ok := cell.Get()
			if !ok {
				return nil, errtypes.New(errtypes.NameError,
					"free variable '%s' referenced before assignment in enclosing scope", name)
			}
			f.push(v)

		case bytecode.STORE_DEREF:
			f.cellOrFree(arg).Set(f.pop())

		case bytecode.DELETE_DEREF:
			f.cellOrFree(arg).Clear()

		case bytecode.LOAD_CLOSURE:
			f.push(f.cellOrFree(arg))

		case bytecode.LOAD_ATTR:
			v := f.pop()
			r, err := ops.GetAttr(v, code.Names[arg])
			if err != nil {
				return nil, err
			}
			f.push(r)

		case bytecode.STORE_ATTR:
			obj, val := f.pop(), f.pop()
			if err := ops.SetAttr(obj, code.Names[arg], val); err != nil {
				return nil, err
			}

		case bytecode.DELETE_ATTR:
			obj := f.pop()
			if err := ops.DelAttr(obj, code.Names[arg]); err != nil {
				return nil, err
			}

		case bytecode.BUILD_TUPLE:
			f.push(object.Tuple(f.popN(arg)))

		case bytecode.BUILD_LIST:
			f.push(object.NewList(f.popN(arg)...))

		case bytecode.BUILD_SET:
			f.push(object.NewSet(f.popN(arg)...))

		case bytecode.BUILD_MAP:
			items := f.popN(arg * 2)
			d := object.NewDict()
			for i := 0; i < len(items); i += 2 {
				d.Set(items[i], items[i+1])
			}
			f.push(d)

		case bytecode.BUILD_CONST_KEY_MAP:
			keys := f.pop().(object.Tuple)
			values := f.popN(arg)
			d := object.NewDict()
			for i, k := range keys {
				d.Set(k, values[i])
			}
			f.push(d)

		case bytecode.BUILD_STRING:
			parts := f.popN(arg)
			var sb strings.Builder
			for _, p := range parts {
				s, err := ops.Str(p)
				if err != nil {
					return nil, err
				}
				sb.WriteString(string(s.(object.Str)))
			}
			f.push(object.Str(sb.String()))

		case bytecode.BUILD_SLICE:
			var start, stop, step object.Value = object.None, object.None, object.None
			if arg == 3 {
				step = f.pop()
			}
			stop = f.pop()
			start = f.pop()
			f.push(object.NewSlice(start, stop, step))

		case bytecode.GET_ITER:
			v := f.pop()
			it, err := ops.Iter(v)
			if err != nil {
				return nil, err
			}
			f.push(it)

		case bytecode.FOR_ITER:
			it := f.top()
			v, err := ops.Next(it)
			if err != nil {
				if ue, ok := err.(*errtypes.UserException); ok && errtypes.IsA(ue.Kind, errtypes.StopIteration) {
					f.pop()
					f.ip = arg
					continue
				}
				return nil, err
			}
			f.push(v)

		case bytecode.LOAD_METHOD:
			v := f.pop()
			r, err := ops.GetAttr(v, code.Names[arg])
			if err != nil {
				return nil, err
			}
			f.push(r)

		case bytecode.CALL_METHOD, bytecode.CALL_FUNCTION:
			args := f.popN(arg)
			callee := f.pop()
			r, err := ops.Call(callee, args, nil)
			if err != nil {
				return nil, err
			}
			f.push(r)

		case bytecode.CALL_FUNCTION_KW:
			names := f.pop().(object.Tuple)
			allArgs := f.popN(arg)
			callee := f.pop()
			kwnames := make([]string, len(names))
			for i, n := range names {
				kwnames[i] = string(n.(object.Str))
			}
			r, err := ops.Call(callee, allArgs, kwnames)
			if err != nil {
				return nil, err
			}
			f.push(r)

		case bytecode.MAKE_FUNCTION:
			qualname := string(f.pop().(object.Str))
			codeConst := f.pop().(*bytecode.CodeObject)

			var closure []*object.Cell
			var annotations *object.Dict
			var kwdefaults *object.Dict
			var defaults []object.Value

			if arg&0x08 != 0 {
				tup := f.pop().(object.Tuple)
				closure = make([]*object.Cell, len(tup))
				for i, c := range tup {
					closure[i] = c.(*object.Cell)
				}
			}
			if arg&0x04 != 0 {
				annotations = f.pop().(*object.Dict)
			}
			if arg&0x02 != 0 {
				kwdefaults = f.pop().(*object.Dict)
			}
			if arg&0x01 != 0 {
				tup := f.pop().(object.Tuple)
				defaults = []object.Value(tup)
			}

			fn := MakeFunction(qualname, codeConst, f.Globals, defaults, kwdefaults, annotations, closure)
			f.push(fn)

		default:
			return nil, errtypes.Fatal("unhandled opcode %s at offset %d in %s", op, ip, code.Name)
		}
	}
	return object.None, nil
}

func runCompare(v, w object.Value, op bytecode.CompareOp) (object.Value, error) {
	switch op {
	case bytecode.CmpIs:
		return object.Bool(identical(v, w)), nil
	case bytecode.CmpIsNot:
		return object.Bool(!identical(v, w)), nil
	case bytecode.CmpIn, bytecode.CmpNotIn:
		n, err := sequenceContains(w, v)
		if err != nil {
			return nil, err
		}
		if op == bytecode.CmpNotIn {
			return object.Bool(!n), nil
		}
		return object.Bool(n), nil
	case bytecode.CmpExcMatch:
		ue, ok := v.(*errtypes.UserException)
		if !ok {
			return object.Bool(false), nil
		}
		kind, ok := w.(object.Str)
		if !ok {
			return object.Bool(false), nil
		}
		return object.Bool(errtypes.IsA(ue.Kind, errtypes.Kind(kind))), nil
	default:
		return ops.RichCompare(v, w, object.CompareOp(op))
	}
}

// identical implements is/is-not for the carriers that have real Go
// pointer identity; value carriers (Int, Float, Str, Bool) compare
// equal (spec.md leaves small-int/str caching implementation-defined,
// so this core treats identity as value equality for them).
func identical(v, w object.Value) bool {
	switch a := v.(type) {
	case *object.List:
		b, ok := w.(*object.List)
		return ok && a == b
	case *object.Dict:
		b, ok := w.(*object.Dict)
		return ok && a == b
	case *object.Set:
		b, ok := w.(*object.Set)
		return ok && a == b
	case *object.Instance:
		b, ok := w.(*object.Instance)
		return ok && a == b
	default:
		return v == w
	}
}

func sequenceContains(container, v object.Value) (bool, error) {
	switch c := container.(type) {
	case object.Tuple:
		for _, e := range c {
			eq, err := ops.RichCompare(e, v, object.CmpEQ)
			if err != nil {
				return false, err
			}
			if b, _ := ops.IsTrue(eq); b {
				return true, nil
			}
		}
		return false, nil
	case *object.List:
		for _, e := range c.Items {
			eq, err := ops.RichCompare(e, v, object.CmpEQ)
			if err != nil {
				return false, err
			}
			if b, _ := ops.IsTrue(eq); b {
				return true, nil
			}
		}
		return false, nil
	case *object.Dict:
		_, ok := c.Get(v)
		return ok, nil
	case *object.Set:
		return c.Contains(v), nil
	default:
		it, err := ops.Iter(container)
		if err != nil {
			return false, err
		}
		for {
			item, err := ops.Next(it)
			if err != nil {
				if ue, ok := err.(*errtypes.UserException); ok && errtypes.IsA(ue.Kind, errtypes.StopIteration) {
					return false, nil
				}
				return false, err
			}
			eq, err := ops.RichCompare(item, v, object.CmpEQ)
			if err != nil {
				return false, err
			}
			if b, _ := ops.IsTrue(eq); b {
				return true, nil
			}
		}
	}
}

// loadName implements LOAD_NAME's lookup chain: locals, then globals,
// then builtins (spec.md §4.9 "Name resolution order").
func (f *Frame) loadName(name string) (object.Value, error) {
	if f.Locals != nil {
		if v, ok := f.Locals.GetStr(name); ok {
			return v, nil
		}
	}
	if v, ok := f.Globals.GetStr(name); ok {
		return v, nil
	}
	if v, ok := f.Builtins.GetStr(name); ok {
		return v, nil
	}
	return nil, errtypes.New(errtypes.NameError, "name '%s' is not defined", name)
}

func (f *Frame) storeName(name string, v object.Value) {
	if f.Locals != nil {
		f.Locals.SetStr(name, v)
		return
	}
	f.Globals.SetStr(name, v)
}

// cellOrFree resolves a DEREF-family oparg against the concatenated
// cellvars+freevars index space CPython-style code objects use.
func (f *Frame) cellOrFree(idx int) *object.Cell {
	if idx < len(f.cells) {
		return f.cells[idx]
	}
	return f.freevars[idx-len(f.cells)]
}

func cellOrFreeName(code *bytecode.CodeObject, idx int) string {
	if idx < len(code.CellVars) {
		return code.CellVars[idx]
	}
	return code.FreeVars[idx-len(code.CellVars)]
}

// Package ops implements the language-neutral abstract operation API of
// spec.md §4.4: unary/binary dispatch through the slot system, rich
// comparison, subscription, attribute access, and call, plus the
// numeric-protocol helpers (as_index, as_int, as_float, is_true).
package ops

import (
	"reflect"

	"pyrt/internal/errtypes"
	"pyrt/internal/object"
)

func funcEqual(a, b object.BinaryOp) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

// Unary applies slot s (selected by get) to v, converting the empty
// sentinel into the conventional TypeError (spec.md §4.4 "Unary
// operation").
func Unary(v object.Value, get func(object.Value) object.UnaryOp, opName string) (object.Value, error) {
	r, err := get(v)(v)
	if object.IsEmpty(err) {
		return nil, errtypes.New(errtypes.TypeError, "bad operand type for unary %s: '%s'", opName, object.TypeOf(v).Name)
	}
	return r, err
}

func Neg(v object.Value) (object.Value, error)    { return Unary(v, object.ResolveNeg, "-") }
func Pos(v object.Value) (object.Value, error)    { return Unary(v, object.ResolvePos, "+") }
func Abs(v object.Value) (object.Value, error)    { return Unary(v, object.ResolveAbs, "abs()") }
func Invert(v object.Value) (object.Value, error) { return Unary(v, object.ResolveInvert, "~") }

// Binary implements the non-reflected binary-operation algorithm of
// spec.md §4.4, steps 1-4: same-type fast path, subtype-first dispatch,
// then left-then-right with NotImplemented meaning "try the other side".
func Binary(v, w object.Value, pair object.BinarySlotPair, opSymbol string) (object.Value, error) {
	vt, wt := object.TypeOf(v), object.TypeOf(w)
	slotV := pair.ResolveForward(v)
	slotW := pair.ResolveReflected(w)

	try := func(slot object.BinaryOp, a, b object.Value) (object.Value, bool, error) {
		if isEmptyBinary(slot, pair) {
			return nil, false, nil
		}
		r, err := slot(a, b)
		if object.IsEmpty(err) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		if object.IsNotImplemented(r) {
			return nil, false, nil
		}
		return r, true, nil
	}

	if vt == wt || sameHandle(slotV, slotW, pair) {
		r, ok, err := try(slotV, v, w)
		if err != nil {
			return nil, err
		}
		if ok {
			return r, nil
		}
		return nil, binaryTypeError(opSymbol, vt, wt)
	}

	if isProperSubtype(wt, vt) && !isEmptyBinary(pair.ResolveReflected(w), pair) {
		// slotW is w's reflected slot, written self-first (Rxxx(self, other)
		// = other OP self, mirroring CPython's binary_op1 calling the
		// reflected slot as slotw(w, v)) - so w goes first here, not v.
		if r, ok, err := try(slotW, w, v); err != nil {
			return nil, err
		} else if ok {
			return r, nil
		}
		if r, ok, err := try(slotV, v, w); err != nil {
			return nil, err
		} else if ok {
			return r, nil
		}
		return nil, binaryTypeError(opSymbol, vt, wt)
	}

	if r, ok, err := try(slotV, v, w); err != nil {
		return nil, err
	} else if ok {
		return r, nil
	}
	if r, ok, err := try(slotW, w, v); err != nil {
		return nil, err
	} else if ok {
		return r, nil
	}
	return nil, binaryTypeError(opSymbol, vt, wt)
}

func binaryTypeError(opSymbol string, vt, wt *object.Type) error {
	return errtypes.New(errtypes.TypeError, "unsupported operand type(s) for %s: '%s' and '%s'", opSymbol, vt.Name, wt.Name)
}

// isEmptyBinary reports whether slot is still one of its family's empty
// sentinels (allocated once in package object); resolveSlot already
// returns the empty handle verbatim when nothing overrides it, so
// identity comparison is enough — no need to invoke the handle.
func isEmptyBinary(slot object.BinaryOp, pair object.BinarySlotPair) bool {
	return funcEqual(slot, pair.ForwardEmpty) || funcEqual(slot, pair.ReflectedEmpty)
}

func sameHandle(a, b object.BinaryOp, pair object.BinarySlotPair) bool {
	return funcEqual(a, b)
}

func isProperSubtype(sub, base *object.Type) bool {
	if sub == base {
		return false
	}
	for _, cls := range sub.MRO {
		if cls == base {
			return true
		}
	}
	return false
}

func Add(v, w object.Value) (object.Value, error) { return Binary(v, w, object.SlotsAdd, "+") }
func Sub(v, w object.Value) (object.Value, error) { return Binary(v, w, object.SlotsSub, "-") }
func Mul(v, w object.Value) (object.Value, error) { return Binary(v, w, object.SlotsMul, "*") }
func TrueDiv(v, w object.Value) (object.Value, error) {
	return Binary(v, w, object.SlotsTrueDiv, "/")
}
func FloorDiv(v, w object.Value) (object.Value, error) {
	return Binary(v, w, object.SlotsFloorDiv, "//")
}
func Mod(v, w object.Value) (object.Value, error) { return Binary(v, w, object.SlotsMod, "%") }
func And(v, w object.Value) (object.Value, error) { return Binary(v, w, object.SlotsAnd, "&") }
func Or(v, w object.Value) (object.Value, error)  { return Binary(v, w, object.SlotsOr, "|") }
func Xor(v, w object.Value) (object.Value, error) { return Binary(v, w, object.SlotsXor, "^") }
func Lshift(v, w object.Value) (object.Value, error) {
	return Binary(v, w, object.SlotsLshift, "<<")
}
func Rshift(v, w object.Value) (object.Value, error) {
	return Binary(v, w, object.SlotsRshift, ">>")
}
func Pow(v, w object.Value) (object.Value, error) { return Binary(v, w, object.SlotsPow, "** or pow()") }
func Matmul(v, w object.Value) (object.Value, error) {
	return Binary(v, w, object.SlotsMatmul, "@")
}

// RichCompare implements spec.md §4.4 "Rich compare": identical
// dispatch shape to Binary but keyed on a CompareOp with its own
// reflection (e.g. __lt__ reflects to __gt__), falling back to
// NotImplemented for ==/!= and TypeError for ordering ops.
func RichCompare(v, w object.Value, op object.CompareOp) (object.Value, error) {
	vt, wt := object.TypeOf(v), object.TypeOf(w)
	slotV := object.ResolveRichCompare(v)
	slotW := object.ResolveRichCompare(w)

	call := func(slot object.RichCmpOp, a, b object.Value, o object.CompareOp) (object.Value, bool, error) {
		r, err := slot(a, b, o)
		if object.IsEmpty(err) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		if object.IsNotImplemented(r) {
			return nil, false, nil
		}
		return r, true, nil
	}

	order := []struct {
		slot object.RichCmpOp
		a, b object.Value
		op   object.CompareOp
	}{
		{slotV, v, w, op},
		{slotW, w, v, op.Reflected()},
	}
	if isProperSubtype(wt, vt) {
		order[0], order[1] = order[1], order[0]
	}
	for _, attempt := range order {
		if r, ok, err := call(attempt.slot, attempt.a, attempt.b, attempt.op); err != nil {
			return nil, err
		} else if ok {
			return r, nil
		}
	}
	if op == object.CmpEQ {
		return object.Bool(v == w), nil
	}
	if op == object.CmpNE {
		eq, err := RichCompare(v, w, object.CmpEQ)
		if err != nil {
			return nil, err
		}
		if b, ok := eq.(object.Bool); ok {
			return object.Bool(!bool(b)), nil
		}
	}
	return nil, errtypes.New(errtypes.TypeError, "'%s' not supported between instances of '%s' and '%s'", op, vt.Name, wt.Name)
}

// --- subscription / attribute / call (spec.md §4.4) --------------------

func GetItem(container, key object.Value) (object.Value, error) {
	slot := object.ResolveGetItem(container)
	r, err := slot(container, key)
	if object.IsEmpty(err) {
		return nil, errtypes.New(errtypes.TypeError, "'%s' object is not subscriptable", object.TypeOf(container).Name)
	}
	return r, err
}

func SetItem(container, key, val object.Value) error {
	slot := object.ResolveSetItem(container)
	err := slot(container, key, val)
	if object.IsEmpty(err) {
		return errtypes.New(errtypes.TypeError, "'%s' object does not support item assignment", object.TypeOf(container).Name)
	}
	return err
}

func DelItem(container, key object.Value) error {
	slot := object.ResolveDelItem(container)
	err := slot(container, key)
	if object.IsEmpty(err) {
		return errtypes.New(errtypes.TypeError, "'%s' object does not support item deletion", object.TypeOf(container).Name)
	}
	return err
}

func GetAttr(v object.Value, name string) (object.Value, error) {
	slot := object.ResolveGetAttribute(v)
	return slot(v, name)
}

func SetAttr(v object.Value, name string, val object.Value) error {
	slot := object.ResolveSetAttr(v)
	return slot(v, name, val)
}

func DelAttr(v object.Value, name string) error {
	slot := object.ResolveDelAttr(v)
	return slot(v, name)
}

func Call(callee object.Value, args []object.Value, kwnames []string) (object.Value, error) {
	slot := object.ResolveCall(callee)
	r, err := slot(callee, args, kwnames)
	if object.IsEmpty(err) {
		return nil, errtypes.New(errtypes.TypeError, "'%s' object is not callable", object.TypeOf(callee).Name)
	}
	return r, err
}

func Len(v object.Value) (int, error) {
	slot := object.ResolveLen(v)
	n, err := slot(v)
	if object.IsEmpty(err) {
		return 0, errtypes.New(errtypes.TypeError, "object of type '%s' has no len()", object.TypeOf(v).Name)
	}
	return n, err
}

func Hash(v object.Value) (int64, error) {
	slot := object.ResolveHash(v)
	h, err := slot(v)
	if object.IsEmpty(err) {
		return 0, errtypes.New(errtypes.TypeError, "unhashable type: '%s'", object.TypeOf(v).Name)
	}
	return h, err
}

func Repr(v object.Value) (object.Value, error) {
	slot := object.ResolveRepr(v)
	r, err := slot(v)
	if object.IsEmpty(err) {
		return object.Str(defaultRepr(v)), nil
	}
	return r, err
}

func defaultRepr(v object.Value) string {
	t := object.TypeOf(v)
	return "<" + t.Name + " object>"
}

func Str(v object.Value) (object.Value, error) {
	slot := object.ResolveStr(v)
	r, err := slot(v)
	if object.IsEmpty(err) {
		return Repr(v)
	}
	return r, err
}

func Iter(v object.Value) (object.Value, error) {
	slot := object.ResolveIter(v)
	r, err := slot(v)
	if object.IsEmpty(err) {
		return nil, errtypes.New(errtypes.TypeError, "'%s' object is not iterable", object.TypeOf(v).Name)
	}
	return r, err
}

func Next(v object.Value) (object.Value, error) {
	slot := object.ResolveNext(v)
	r, err := slot(v)
	if object.IsEmpty(err) {
		return nil, errtypes.New(errtypes.TypeError, "'%s' object is not an iterator", object.TypeOf(v).Name)
	}
	return r, err
}

// IsTrue is the truth-value test (spec.md §4.4 "is_true"): prefers
// __bool__, falls back to __len__ != 0, defaults to true.
func IsTrue(v object.Value) (bool, error) {
	if object.IsNone(v) {
		return false, nil
	}
	slot := object.ResolveBoolConv(v)
	r, err := slot(v)
	if err == nil {
		b, ok := r.(object.Bool)
		if !ok {
			return false, errtypes.New(errtypes.TypeError, "__bool__ should return bool")
		}
		return bool(b), nil
	}
	if !object.IsEmpty(err) {
		return false, err
	}
	n, err := Len(v)
	if err == nil {
		return n != 0, nil
	}
	if !object.IsEmpty(err) {
		return false, err
	}
	return true, nil
}

// AsIndex/AsInt/AsFloat validate a numeric-protocol conversion's result
// type (spec.md §4.4 "Numeric protocol helpers").
func AsIndex(v object.Value) (int64, error) {
	slot := object.ResolveIndex(v)
	r, err := slot(v)
	if object.IsEmpty(err) {
		return 0, errtypes.New(errtypes.TypeError, "'%s' object cannot be interpreted as an integer", object.TypeOf(v).Name)
	}
	if err != nil {
		return 0, err
	}
	return coerceInt64(r)
}

func AsInt(v object.Value) (object.Value, error) {
	return Unary(v, object.ResolveIntConv, "int()")
}

func AsFloat(v object.Value) (float64, error) {
	r, err := Unary(v, object.ResolveFloatConv, "float()")
	if err != nil {
		return 0, err
	}
	f, ok := r.(object.Float)
	if !ok {
		return 0, errtypes.New(errtypes.TypeError, "__float__ should return float")
	}
	return float64(f), nil
}

func coerceInt64(v object.Value) (int64, error) {
	switch x := v.(type) {
	case object.Int:
		return int64(x), nil
	case object.Bool:
		if x {
			return 1, nil
		}
		return 0, nil
	}
	return 0, errtypes.New(errtypes.TypeError, "__index__ returned non-int")
}

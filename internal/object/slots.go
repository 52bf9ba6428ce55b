package object

import (
	"reflect"

	"pyrt/internal/errtypes"
)

func reflectPointer(f interface{}) uintptr {
	return reflect.ValueOf(f).Pointer()
}

// CompareOp names a rich-comparison operator (spec.md §4.3 basic group,
// "__eq__ ... with dedicated op code").
type CompareOp int

const (
	CmpLT CompareOp = iota
	CmpLE
	CmpEQ
	CmpNE
	CmpGT
	CmpGE
)

func (op CompareOp) String() string {
	return [...]string{"<", "<=", "==", "!=", ">", ">="}[op]
}

// Reflected returns the operator obtained by swapping operand order,
// e.g. __lt__ reflects to __gt__ (spec.md §4.4 "Rich compare").
func (op CompareOp) Reflected() CompareOp {
	switch op {
	case CmpLT:
		return CmpGT
	case CmpLE:
		return CmpGE
	case CmpGT:
		return CmpLT
	case CmpGE:
		return CmpLE
	default:
		return op // == and != are their own reflection
	}
}

// Slot signatures (spec.md §3 "Slot", §4.3). Every field of SlotTable is
// one of these function types; "empty" is a handle with the matching
// signature that always raises the emptySlot sentinel condition.
type (
	UnaryOp    func(Value) (Value, error)
	BinaryOp   func(Value, Value) (Value, error)
	TernaryOp  func(Value, Value, Value) (Value, error)
	LenOp      func(Value) (int, error)
	HashOp     func(Value) (int64, error)
	SetItemOp  func(container, key, val Value) error
	DelItemOp  func(container, key Value) error
	RichCmpOp  func(Value, Value, CompareOp) (Value, error)
	GetAttrOp  func(self Value, name string) (Value, error)
	SetAttrOp  func(self Value, name string, val Value) error
	DelAttrOp  func(self Value, name string) error
	CallOp     func(self Value, args []Value, kwnames []string) (Value, error)
)

func emptyUnary(name string) UnaryOp {
	return func(Value) (Value, error) { return nil, errtypes.EmptySlot(name) }
}
func emptyBinary(name string) BinaryOp {
	return func(Value, Value) (Value, error) { return nil, errtypes.EmptySlot(name) }
}
func emptyLen(name string) LenOp {
	return func(Value) (int, error) { return 0, errtypes.EmptySlot(name) }
}
func emptyHash(name string) HashOp {
	return func(Value) (int64, error) { return 0, errtypes.EmptySlot(name) }
}
func emptySetItem(name string) SetItemOp {
	return func(Value, Value, Value) error { return errtypes.EmptySlot(name) }
}
func emptyDelItem(name string) DelItemOp {
	return func(Value, Value) error { return errtypes.EmptySlot(name) }
}
func emptyRichCmp(name string) RichCmpOp {
	return func(Value, Value, CompareOp) (Value, error) { return nil, errtypes.EmptySlot(name) }
}
func emptyGetAttr(name string) GetAttrOp {
	return func(Value, string) (Value, error) { return nil, errtypes.EmptySlot(name) }
}
func emptySetAttr(name string) SetAttrOp {
	return func(Value, string, Value) error { return errtypes.EmptySlot(name) }
}
func emptyDelAttr(name string) DelAttrOp {
	return func(Value, string) error { return errtypes.EmptySlot(name) }
}
func emptyCall(name string) CallOp {
	return func(Value, []Value, []string) (Value, error) { return nil, errtypes.EmptySlot(name) }
}

// Every slot's empty handle is allocated exactly once, here, and shared
// by every SlotTable; this is what lets resolveSlot below tell "still
// at its default" apart from "explicitly filled with a handle that
// itself happens to raise" by comparing function identity rather than
// invoking the handle.
var (
	sentinelHash  = emptyHash("__hash__")
	sentinelRepr  = emptyUnary("__repr__")
	sentinelStr   = emptyUnary("__str__")
	sentinelCall  = emptyCall("__call__")
	sentinelGetAttribute = emptyGetAttr("__getattribute__")
	sentinelSetAttr      = emptySetAttr("__setattr__")
	sentinelDelAttr      = emptyDelAttr("__delattr__")
	sentinelRichCompare  = emptyRichCmp("__richcompare__")

	sentinelNeg UnaryOp = emptyUnary("__neg__")
	sentinelPos UnaryOp = emptyUnary("__pos__")
	sentinelAbs UnaryOp = emptyUnary("__abs__")
	sentinelInvert UnaryOp = emptyUnary("__invert__")
	sentinelAdd, sentinelRAdd = emptyBinary("__add__"), emptyBinary("__radd__")
	sentinelSub, sentinelRSub = emptyBinary("__sub__"), emptyBinary("__rsub__")
	sentinelMul, sentinelRMul = emptyBinary("__mul__"), emptyBinary("__rmul__")
	sentinelTrueDiv, sentinelRTrueDiv   = emptyBinary("__truediv__"), emptyBinary("__rtruediv__")
	sentinelFloorDiv, sentinelRFloorDiv = emptyBinary("__floordiv__"), emptyBinary("__rfloordiv__")
	sentinelMod, sentinelRMod = emptyBinary("__mod__"), emptyBinary("__rmod__")
	sentinelAnd, sentinelRAnd = emptyBinary("__and__"), emptyBinary("__rand__")
	sentinelOr, sentinelROr   = emptyBinary("__or__"), emptyBinary("__ror__")
	sentinelXor, sentinelRXor = emptyBinary("__xor__"), emptyBinary("__rxor__")
	sentinelLshift, sentinelRLshift = emptyBinary("__lshift__"), emptyBinary("__rlshift__")
	sentinelRshift, sentinelRRshift = emptyBinary("__rshift__"), emptyBinary("__rrshift__")
	sentinelPow, sentinelRPow       = emptyBinary("__pow__"), emptyBinary("__rpow__")
	sentinelMatmul, sentinelRMatmul = emptyBinary("__matmul__"), emptyBinary("__rmatmul__")
	sentinelFloat UnaryOp = emptyUnary("__float__")
	sentinelInt   UnaryOp = emptyUnary("__int__")
	sentinelBool  UnaryOp = emptyUnary("__bool__")
	sentinelIndex UnaryOp = emptyUnary("__index__")

	sentinelLen     = emptyLen("__len__")
	sentinelGetItem = emptyBinary("__getitem__")
	sentinelSetItem = emptySetItem("__setitem__")
	sentinelDelItem = emptyDelItem("__delitem__")

	sentinelIter UnaryOp = emptyUnary("__iter__")
	sentinelNext UnaryOp = emptyUnary("__next__")
)

// isEmptyHandle compares f against its slot family's singleton empty
// handle by function identity (via reflect, since Go func values are
// otherwise only comparable to nil). f and empty must be the exact same
// underlying function type.
func isEmptyHandle(f, empty interface{}) bool {
	return reflectPointer(f) == reflectPointer(empty)
}

// SlotTable is the per-type (or per-adoption) vector of operation slots,
// grouped basic/number/sequence/mapping as in spec.md §4.3. Every field
// starts out holding its family's empty sentinel (NewSlotTable) and is
// overwritten by the exposure system (package expose) or by hand for
// the small set of built-in types constructed directly in Go.
type SlotTable struct {
	// basic
	Hash           HashOp
	Repr           UnaryOp
	Str            UnaryOp
	Call           CallOp
	GetAttribute   GetAttrOp
	SetAttr        SetAttrOp
	DelAttr        DelAttrOp
	RichCompare    RichCmpOp // handles __eq__/__ne__/__lt__/__le__/__gt__/__ge__ by CompareOp

	// number
	Neg    UnaryOp
	Pos    UnaryOp
	Abs    UnaryOp
	Invert UnaryOp
	Add    BinaryOp
	RAdd   BinaryOp
	Sub    BinaryOp
	RSub   BinaryOp
	Mul    BinaryOp
	RMul   BinaryOp
	TrueDiv  BinaryOp
	RTrueDiv BinaryOp
	FloorDiv  BinaryOp
	RFloorDiv BinaryOp
	Mod    BinaryOp
	RMod   BinaryOp
	And    BinaryOp
	RAnd   BinaryOp
	Or     BinaryOp
	ROr    BinaryOp
	Xor    BinaryOp
	RXor   BinaryOp
	Lshift  BinaryOp
	RLshift BinaryOp
	Rshift  BinaryOp
	RRshift BinaryOp
	Pow     BinaryOp
	RPow    BinaryOp
	Matmul  BinaryOp
	RMatmul BinaryOp
	Float  UnaryOp
	Int    UnaryOp
	Bool   UnaryOp
	Index  UnaryOp

	// sequence / mapping (spec.md treats them as a single subscription
	// family for this core; SetItem/DelItem/GetItem are shared)
	Len     LenOp
	GetItem BinaryOp
	SetItem SetItemOp
	DelItem DelItemOp

	// iteration (minimum needed for GET_ITER/FOR_ITER, §4.9)
	Iter UnaryOp
	Next UnaryOp
}

// NewSlotTable returns a table with every field set to its family's
// empty sentinel handle (spec.md Type invariant: "every slot not
// explicitly set holds the slot family's empty sentinel handle").
func NewSlotTable() *SlotTable {
	return &SlotTable{
		Hash:         sentinelHash,
		Repr:         sentinelRepr,
		Str:          sentinelStr,
		Call:         sentinelCall,
		GetAttribute: sentinelGetAttribute,
		SetAttr:      sentinelSetAttr,
		DelAttr:      sentinelDelAttr,
		RichCompare:  sentinelRichCompare,

		Neg: sentinelNeg, Pos: sentinelPos, Abs: sentinelAbs, Invert: sentinelInvert,
		Add: sentinelAdd, RAdd: sentinelRAdd,
		Sub: sentinelSub, RSub: sentinelRSub,
		Mul: sentinelMul, RMul: sentinelRMul,
		TrueDiv: sentinelTrueDiv, RTrueDiv: sentinelRTrueDiv,
		FloorDiv: sentinelFloorDiv, RFloorDiv: sentinelRFloorDiv,
		Mod: sentinelMod, RMod: sentinelRMod,
		And: sentinelAnd, RAnd: sentinelRAnd,
		Or: sentinelOr, ROr: sentinelROr,
		Xor: sentinelXor, RXor: sentinelRXor,
		Lshift: sentinelLshift, RLshift: sentinelRLshift,
		Rshift: sentinelRshift, RRshift: sentinelRRshift,
		Pow: sentinelPow, RPow: sentinelRPow,
		Matmul: sentinelMatmul, RMatmul: sentinelRMatmul,
		Float: sentinelFloat, Int: sentinelInt, Bool: sentinelBool, Index: sentinelIndex,

		Len:     sentinelLen,
		GetItem: sentinelGetItem,
		SetItem: sentinelSetItem,
		DelItem: sentinelDelItem,

		Iter: sentinelIter,
		Next: sentinelNext,
	}
}

// resolveSlot walks v's dispatch chain — its own per-adoption table
// first, then its type's MRO bases' canonical tables — and returns the
// first non-empty handle found by get, or the slot's empty handle if
// none is set anywhere in the chain. This is how "bool inherits int
// arithmetic" (spec.md §4.1) is realised: bool's own Add is empty, so
// resolution continues into int's table via bool's MRO.
func resolveSlot[T any](v Value, get func(*SlotTable) T, empty T) T {
	if f := get(SlotsFor(v)); !isEmptyHandle(f, empty) {
		return f
	}
	t := TypeOf(v)
	for _, cls := range t.MRO[1:] {
		if f := get(cls.Slots); !isEmptyHandle(f, empty) {
			return f
		}
	}
	return empty
}

// IsEmpty reports whether err is the emptySlot condition raised by one
// of the handles above — the test every abstract operation (package
// ops) runs before deciding to fall back or raise TypeError.
func IsEmpty(err error) bool {
	_, ok := errtypes.IsEmptySlot(err)
	return ok
}

package object

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/remyoudompheng/bigfft"
	"golang.org/x/exp/constraints"

	"pyrt/internal/errtypes"
)

// normalizeIndex folds a possibly-negative sequence index i (Python's
// "count from the end" convention) against a sequence of the given
// length, shared by every built-in sequence carrier's __getitem__/
// __setitem__ below instead of each repeating the same i+=length check.
func normalizeIndex[T constraints.Integer](i, length T) T {
	if i < 0 {
		return i + length
	}
	return i
}

// The built-in types are constructed directly in Go rather than through
// the exposure system: they have no host "declaring class" to reflect
// over, they're the bedrock the exposure system's own machinery (method
// descriptors, argument parser frames) is built out of. This mirrors
// the source runtime's own bootstrap, where `object`/`type` and the
// primitive numeric/string/container types are hand-wired C structures
// before any Python-level class exists to expose.
var (
	IntType            *Type
	FloatType          *Type
	BoolType           *Type
	StrType            *Type
	BytesType          *Type
	TupleType          *Type
	ListType           *Type
	DictType           *Type
	SetType            *Type
	SliceType          *Type
	NoneTypeType       *Type
	NotImplementedType_ *Type
	FunctionType       *Type
	NativeFuncType     *Type
	BoundMethodType    *Type
)

func mustType(t *Type, err error) *Type {
	if err != nil {
		panic(err)
	}
	return t
}

func init() {
	IntType = mustType(NewType(TypeSpec{Name: "int", Canonical: reflect.TypeOf(Int(0)), Adopted: []reflect.Type{reflect.TypeOf(BigInt{})}}))
	FloatType = mustType(NewType(TypeSpec{Name: "float", Canonical: reflect.TypeOf(Float(0))}))
	BoolType = mustType(NewType(TypeSpec{Name: "bool", Bases: []*Type{IntType}, Canonical: reflect.TypeOf(Bool(false))}))
	StrType = mustType(NewType(TypeSpec{Name: "str", Canonical: reflect.TypeOf(Str("")), Adopted: []reflect.Type{reflect.TypeOf(StrWide(nil))}}))
	BytesType = mustType(NewType(TypeSpec{Name: "bytes", Canonical: reflect.TypeOf(Bytes(nil))}))
	TupleType = mustType(NewType(TypeSpec{Name: "tuple", Canonical: reflect.TypeOf(Tuple(nil))}))
	ListType = mustType(NewType(TypeSpec{Name: "list", Canonical: reflect.TypeOf((*List)(nil)), Mutable: false}))
	DictType = mustType(NewType(TypeSpec{Name: "dict", Canonical: reflect.TypeOf((*Dict)(nil))}))
	SetType = mustType(NewType(TypeSpec{Name: "set", Canonical: reflect.TypeOf((*Set)(nil))}))
	SliceType = mustType(NewType(TypeSpec{Name: "slice", Canonical: reflect.TypeOf((*Slice)(nil))}))
	NoneTypeType = mustType(NewType(TypeSpec{Name: "NoneType", Canonical: reflect.TypeOf(NoneType{})}))
	NotImplementedType_ = mustType(NewType(TypeSpec{Name: "NotImplementedType", Canonical: reflect.TypeOf(NotImplementedType{})}))
	FunctionType = mustType(NewType(TypeSpec{Name: "function", Canonical: reflect.TypeOf((*Function)(nil))}))
	NativeFuncType = mustType(NewType(TypeSpec{Name: "builtin_function_or_method", Canonical: reflect.TypeOf((*NativeFunc)(nil))}))
	BoundMethodType = mustType(NewType(TypeSpec{Name: "method", Canonical: reflect.TypeOf((*BoundMethod)(nil))}))

	installIntSlots()
	installBigIntSlots()
	installBoolSlots()
	installFloatSlots()
	installStrSlots()
	installBytesSlots()
	installTupleSlots()
	installListSlots()
	installDictSlots()
	installSetSlots()
	installSliceSlots()
	installNoneSlots()
	installCallableSlots()
}

// --- int --------------------------------------------------------------

// bigFFTThreshold is the operand size, in 64-bit words, above which the
// big-integer carrier's multiplication uses bigfft's FFT-based algorithm instead of
// math/big's schoolbook/Karatsuba path (spec.md §3: "large integers a
// big-integer").
const bigFFTThreshold = 480 // words; below this math/big's own algorithm already wins

func asBig(v Value) *big.Int {
	switch x := v.(type) {
	case Int:
		return big.NewInt(int64(x))
	case Bool:
		if x {
			return big.NewInt(1)
		}
		return big.NewInt(0)
	case BigInt:
		return x.V
	}
	return nil
}

// normalizeInt narrows a *big.Int back down to the native Int carrier
// when it fits, keeping the common case cheap (spec.md §9 "Multiple
// carriers per abstract type").
func normalizeInt(b *big.Int) Value {
	if b.IsInt64() {
		return Int(b.Int64())
	}
	return BigInt{V: b}
}

func bigMul(a, b *big.Int) *big.Int {
	if a.BitLen()/64 > bigFFTThreshold && b.BitLen()/64 > bigFFTThreshold {
		return bigfft.Mul(a, b)
	}
	return new(big.Int).Mul(a, b)
}

func installIntSlots() {
	s := IntType.Slots
	s.Repr = func(v Value) (Value, error) { return Str(intRepr(v)), nil }
	s.Str = s.Repr
	s.Hash = func(v Value) (int64, error) { return asBig(v).Int64(), nil }
	s.Bool = func(v Value) (Value, error) { return Bool(asBig(v).Sign() != 0), nil }
	s.Neg = func(v Value) (Value, error) { return normalizeInt(new(big.Int).Neg(asBig(v))), nil }
	s.Pos = func(v Value) (Value, error) { return v, nil }
	s.Abs = func(v Value) (Value, error) { return normalizeInt(new(big.Int).Abs(asBig(v))), nil }
	s.Invert = func(v Value) (Value, error) { return normalizeInt(new(big.Int).Not(asBig(v))), nil }
	s.Int = func(v Value) (Value, error) { return v, nil }
	s.Index = s.Int
	s.Float = func(v Value) (Value, error) { f := new(big.Float).SetInt(asBig(v)); r, _ := f.Float64(); return Float(r), nil }

	s.Add = intBinary(func(a, b *big.Int) *big.Int { return new(big.Int).Add(a, b) })
	s.RAdd = reflect2(s.Add)
	s.Sub = intBinary(func(a, b *big.Int) *big.Int { return new(big.Int).Sub(a, b) })
	s.RSub = intBinaryReflected(func(a, b *big.Int) *big.Int { return new(big.Int).Sub(a, b) })
	s.Mul = intBinary(bigMul)
	s.RMul = reflect2(s.Mul)
	s.Mod = intBinaryErr(func(a, b *big.Int) (*big.Int, error) {
		if b.Sign() == 0 {
			return nil, errtypes.New(errtypes.ZeroDivision, "integer modulo by zero")
		}
		return new(big.Int).Mod(a, b), nil
	})
	s.RMod = intBinaryReflectedErr(func(a, b *big.Int) (*big.Int, error) {
		if b.Sign() == 0 {
			return nil, errtypes.New(errtypes.ZeroDivision, "integer modulo by zero")
		}
		return new(big.Int).Mod(a, b), nil
	})
	s.FloorDiv = intBinaryErr(func(a, b *big.Int) (*big.Int, error) {
		if b.Sign() == 0 {
			return nil, errtypes.New(errtypes.ZeroDivision, "integer division or modulo by zero")
		}
		q, m := new(big.Int).QuoRem(a, b, new(big.Int))
		if m.Sign() != 0 && (m.Sign() < 0) != (b.Sign() < 0) {
			q.Sub(q, big.NewInt(1))
		}
		return q, nil
	})
	s.RFloorDiv = intBinaryReflectedErr(func(a, b *big.Int) (*big.Int, error) {
		if b.Sign() == 0 {
			return nil, errtypes.New(errtypes.ZeroDivision, "integer division or modulo by zero")
		}
		q, m := new(big.Int).QuoRem(a, b, new(big.Int))
		if m.Sign() != 0 && (m.Sign() < 0) != (b.Sign() < 0) {
			q.Sub(q, big.NewInt(1))
		}
		return q, nil
	})
	s.TrueDiv = func(v, w Value) (Value, error) {
		a, b := asBig(v), asBig(w)
		if b == nil {
			return NotImplemented, nil
		}
		if b.Sign() == 0 {
			return nil, errtypes.New(errtypes.ZeroDivision, "division by zero")
		}
		fa, _ := new(big.Float).SetInt(a).Float64()
		fb, _ := new(big.Float).SetInt(b).Float64()
		return Float(fa / fb), nil
	}
	s.RTrueDiv = func(v, w Value) (Value, error) { return s.TrueDiv(w, v) }
	s.And = intBinary(func(a, b *big.Int) *big.Int { return new(big.Int).And(a, b) })
	s.RAnd = reflect2(s.And)
	s.Or = intBinary(func(a, b *big.Int) *big.Int { return new(big.Int).Or(a, b) })
	s.ROr = reflect2(s.Or)
	s.Xor = intBinary(func(a, b *big.Int) *big.Int { return new(big.Int).Xor(a, b) })
	s.RXor = reflect2(s.Xor)
	s.Lshift = intBinary(func(a, b *big.Int) *big.Int { return new(big.Int).Lsh(a, uint(b.Uint64())) })
	s.Rshift = intBinary(func(a, b *big.Int) *big.Int { return new(big.Int).Rsh(a, uint(b.Uint64())) })
	s.Pow = func(v, w Value) (Value, error) {
		a, b := asBig(v), asBig(w)
		if a == nil || b == nil {
			return NotImplemented, nil
		}
		if b.Sign() < 0 {
			fa, _ := new(big.Float).SetInt(a).Float64()
			fb, _ := new(big.Float).SetInt(b).Float64()
			return Float(math.Pow(fa, fb)), nil
		}
		return normalizeInt(new(big.Int).Exp(a, b, nil)), nil
	}
	s.RPow = reflect2(s.Pow)

	s.RichCompare = func(v, w Value, op CompareOp) (Value, error) {
		a, b := asBig(v), asBig(w)
		if b == nil {
			return NotImplemented, nil
		}
		return compareResult(a.Cmp(b), op), nil
	}
}

func intRepr(v Value) string { return asBig(v).String() }

func compareResult(cmp int, op CompareOp) Value {
	switch op {
	case CmpLT:
		return Bool(cmp < 0)
	case CmpLE:
		return Bool(cmp <= 0)
	case CmpEQ:
		return Bool(cmp == 0)
	case CmpNE:
		return Bool(cmp != 0)
	case CmpGT:
		return Bool(cmp > 0)
	default:
		return Bool(cmp >= 0)
	}
}

func intBinary(f func(a, b *big.Int) *big.Int) BinaryOp {
	return func(v, w Value) (Value, error) {
		a, b := asBig(v), asBig(w)
		if a == nil || b == nil {
			return NotImplemented, nil
		}
		return normalizeInt(f(a, b)), nil
	}
}

func intBinaryErr(f func(a, b *big.Int) (*big.Int, error)) BinaryOp {
	return func(v, w Value) (Value, error) {
		a, b := asBig(v), asBig(w)
		if a == nil || b == nil {
			return NotImplemented, nil
		}
		r, err := f(a, b)
		if err != nil {
			return nil, err
		}
		return normalizeInt(r), nil
	}
}

func intBinaryReflected(f func(a, b *big.Int) *big.Int) BinaryOp {
	inner := intBinary(f)
	return func(v, w Value) (Value, error) { return inner(w, v) }
}

func intBinaryReflectedErr(f func(a, b *big.Int) (*big.Int, error)) BinaryOp {
	inner := intBinaryErr(f)
	return func(v, w Value) (Value, error) { return inner(w, v) }
}

func reflect2(op BinaryOp) BinaryOp {
	return func(v, w Value) (Value, error) { return op(w, v) }
}

func installBigIntSlots() {
	s := IntType.AdoptedSlots[1]
	*s = *IntType.Slots // big.Int adoption shares every op with the canonical table: the helpers above already branch on asBig()
}

// --- bool ---------------------------------------------------------------

func installBoolSlots() {
	s := BoolType.Slots
	s.Repr = func(v Value) (Value, error) {
		if bool(v.(Bool)) {
			return Str("True"), nil
		}
		return Str("False"), nil
	}
	s.Str = s.Repr
	s.Bool = func(v Value) (Value, error) { return v, nil }
	s.Hash = func(v Value) (int64, error) {
		if bool(v.(Bool)) {
			return 1, nil
		}
		return 0, nil
	}
	// bool & bool -> bool (spec.md S4), and likewise | and ^; every other
	// arithmetic op falls through MRO to int's table and yields an int,
	// which is why And/Or/Xor (and their reflections) are the only
	// numeric slots bool defines for itself.
	s.And = func(v, w Value) (Value, error) {
		wb, ok := w.(Bool)
		if !ok {
			return IntType.Slots.And(v, w)
		}
		return Bool(bool(v.(Bool)) && bool(wb)), nil
	}
	s.RAnd = reflect2(s.And)
	s.Or = func(v, w Value) (Value, error) {
		wb, ok := w.(Bool)
		if !ok {
			return IntType.Slots.Or(v, w)
		}
		return Bool(bool(v.(Bool)) || bool(wb)), nil
	}
	s.ROr = reflect2(s.Or)
	s.Xor = func(v, w Value) (Value, error) {
		wb, ok := w.(Bool)
		if !ok {
			return IntType.Slots.Xor(v, w)
		}
		return Bool(bool(v.(Bool)) != bool(wb)), nil
	}
	s.RXor = reflect2(s.Xor)
}

// --- float ----------------------------------------------------------

func asFloat(v Value) (float64, bool) {
	switch x := v.(type) {
	case Float:
		return float64(x), true
	case Int:
		return float64(x), true
	case Bool:
		if x {
			return 1, true
		}
		return 0, true
	case BigInt:
		f, _ := new(big.Float).SetInt(x.V).Float64()
		return f, true
	}
	return 0, false
}

func installFloatSlots() {
	s := FloatType.Slots
	s.Repr = func(v Value) (Value, error) { return Str(formatFloat(float64(v.(Float)))), nil }
	s.Str = s.Repr
	s.Bool = func(v Value) (Value, error) { return Bool(float64(v.(Float)) != 0), nil }
	s.Neg = func(v Value) (Value, error) { return Float(-float64(v.(Float))), nil }
	s.Pos = func(v Value) (Value, error) { return v, nil }
	s.Abs = func(v Value) (Value, error) { return Float(math.Abs(float64(v.(Float)))), nil }
	s.Float = func(v Value) (Value, error) { return v, nil }
	s.Int = func(v Value) (Value, error) { return normalizeInt(bigFromFloat(float64(v.(Float)))), nil }

	s.Add = floatBinary(func(a, b float64) float64 { return a + b })
	s.RAdd = reflect2(s.Add)
	s.Sub = floatBinary(func(a, b float64) float64 { return a - b })
	s.RSub = floatBinaryReflected(func(a, b float64) float64 { return a - b })
	s.Mul = floatBinary(func(a, b float64) float64 { return a * b })
	s.RMul = reflect2(s.Mul)
	s.TrueDiv = func(v, w Value) (Value, error) {
		a, aok := asFloat(v)
		b, bok := asFloat(w)
		if !aok || !bok {
			return NotImplemented, nil
		}
		if b == 0 {
			return nil, errtypes.New(errtypes.ZeroDivision, "float division by zero")
		}
		return Float(a / b), nil
	}
	s.RTrueDiv = func(v, w Value) (Value, error) { return s.TrueDiv(w, v) }
	s.Pow = func(v, w Value) (Value, error) {
		a, aok := asFloat(v)
		b, bok := asFloat(w)
		if !aok || !bok {
			return NotImplemented, nil
		}
		return Float(math.Pow(a, b)), nil
	}
	s.RPow = func(v, w Value) (Value, error) { return s.Pow(w, v) }

	s.RichCompare = func(v, w Value, op CompareOp) (Value, error) {
		a, aok := asFloat(v)
		b, bok := asFloat(w)
		if !aok || !bok {
			return NotImplemented, nil
		}
		switch {
		case a < b:
			return compareResult(-1, op), nil
		case a > b:
			return compareResult(1, op), nil
		default:
			return compareResult(0, op), nil
		}
	}
}

func bigFromFloat(f float64) *big.Int {
	bi, _ := big.NewFloat(f).Int(nil)
	return bi
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") && !math.IsInf(f, 0) && !math.IsNaN(f) {
		s += ".0"
	}
	return s
}

func floatBinary(f func(a, b float64) float64) BinaryOp {
	return func(v, w Value) (Value, error) {
		a, aok := asFloat(v)
		b, bok := asFloat(w)
		if !aok || !bok {
			return NotImplemented, nil
		}
		return Float(f(a, b)), nil
	}
}

func floatBinaryReflected(f func(a, b float64) float64) BinaryOp {
	inner := floatBinary(f)
	return func(v, w Value) (Value, error) { return inner(w, v) }
}

// --- str --------------------------------------------------------------

func strRunes(v Value) []rune {
	switch x := v.(type) {
	case Str:
		return []rune(string(x))
	case StrWide:
		return []rune(x)
	}
	return nil
}

func installStrSlots() {
	install := func(s *SlotTable) {
		s.Repr = func(v Value) (Value, error) {
			text := string(strRunes(v))
			q := strconv.Quote(text)
			if strings.ContainsRune(text, '\'') {
				return Str(q), nil
			}
			return Str("'" + strings.ReplaceAll(q[1:len(q)-1], `\"`, `"`) + "'"), nil
		}
		s.Str = func(v Value) (Value, error) { return v, nil }
		s.Len = func(v Value) (int, error) { return len(strRunes(v)), nil }
		s.Bool = func(v Value) (Value, error) { return Bool(len(strRunes(v)) > 0), nil }
		s.Hash = func(v Value) (int64, error) { return int64(fnv1a(string(strRunes(v)))), nil }
		s.Add = func(v, w Value) (Value, error) {
			wr := strRunes(w)
			if wr == nil {
				if _, ok := w.(Str); !ok {
					if _, ok := w.(StrWide); !ok {
						return NotImplemented, nil
					}
				}
			}
			return joinStr(strRunes(v), wr), nil
		}
		s.GetItem = func(v, key Value) (Value, error) {
			runes := strRunes(v)
			idx, ok := key.(Int)
			if !ok {
				return nil, errtypes.New(errtypes.TypeError, "string indices must be integers")
			}
			i := int(idx)
			i = normalizeIndex(i, len(runes))
			if i < 0 || i >= len(runes) {
				return nil, errtypes.New(errtypes.IndexError, "string index out of range")
			}
			return joinStr([]rune{runes[i]}, nil), nil
		}
		s.RichCompare = func(v, w Value, op CompareOp) (Value, error) {
			b := strRunes(w)
			if b == nil {
				if _, ok := w.(Str); !ok {
					if _, ok := w.(StrWide); !ok {
						return NotImplemented, nil
					}
				}
			}
			return compareResult(strings.Compare(string(strRunes(v)), string(b)), op), nil
		}
	}
	install(StrType.Slots)
	install(StrType.AdoptedSlots[1])
}

func joinStr(a, b []rune) Value {
	all := append(append([]rune{}, a...), b...)
	for _, r := range all {
		if r > 0xFFFF {
			return StrWide(all)
		}
	}
	return Str(string(all))
}

func fnv1a(s string) uint64 {
	var h uint64 = 1469598103934665603
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}

// --- bytes --------------------------------------------------------------

func installBytesSlots() {
	s := BytesType.Slots
	s.Repr = func(v Value) (Value, error) { return Str(fmt.Sprintf("b%s", strconv.Quote(string(v.(Bytes))))), nil }
	s.Len = func(v Value) (int, error) { return len(v.(Bytes)), nil }
	s.Bool = func(v Value) (Value, error) { return Bool(len(v.(Bytes)) > 0), nil }
	s.RichCompare = func(v, w Value, op CompareOp) (Value, error) {
		wb, ok := w.(Bytes)
		if !ok {
			return NotImplemented, nil
		}
		return compareResult(strings.Compare(string(v.(Bytes)), string(wb)), op), nil
	}
}

// --- tuple ----------------------------------------------------------

func installTupleSlots() {
	s := TupleType.Slots
	s.Len = func(v Value) (int, error) { return len(v.(Tuple)), nil }
	s.Bool = func(v Value) (Value, error) { return Bool(len(v.(Tuple)) > 0), nil }
	s.GetItem = func(v, key Value) (Value, error) {
		t := v.(Tuple)
		idx, ok := key.(Int)
		if !ok {
			return nil, errtypes.New(errtypes.TypeError, "tuple indices must be integers")
		}
		i := normalizeIndex(int(idx), len(t))
		if i < 0 || i >= len(t) {
			return nil, errtypes.New(errtypes.IndexError, "tuple index out of range")
		}
		return t[i], nil
	}
	s.Iter = func(v Value) (Value, error) { return newSeqIterator(v.(Tuple)), nil }
	s.RichCompare = func(v, w Value, op CompareOp) (Value, error) {
		wt, ok := w.(Tuple)
		if !ok {
			return NotImplemented, nil
		}
		return compareResult(compareSeq(v.(Tuple), wt), op), nil
	}
}

func compareSeq(a, b []Value) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if r, err := Compare(a[i], b[i]); err == nil && r != 0 {
			return r
		}
	}
	return len(a) - len(b)
}

// Compare is a small internal helper (not a spec.md slot) used only for
// ordering tuple/list elements lexicographically.
func Compare(a, b Value) (int, error) {
	eq, err := ResolveRichCompare(a)(a, b, CmpEQ)
	if err == nil {
		if bv, ok := eq.(Bool); ok && bool(bv) {
			return 0, nil
		}
	}
	lt, err := ResolveRichCompare(a)(a, b, CmpLT)
	if err != nil {
		return 0, err
	}
	if bv, ok := lt.(Bool); ok && bool(bv) {
		return -1, nil
	}
	return 1, nil
}

// --- list -------------------------------------------------------------

func installListSlots() {
	s := ListType.Slots
	s.Len = func(v Value) (int, error) { return len(v.(*List).Items), nil }
	s.Bool = func(v Value) (Value, error) { return Bool(len(v.(*List).Items) > 0), nil }
	s.GetItem = func(v, key Value) (Value, error) {
		l := v.(*List)
		idx, ok := key.(Int)
		if !ok {
			return nil, errtypes.New(errtypes.TypeError, "list indices must be integers")
		}
		i := normalizeIndex(int(idx), len(l.Items))
		if i < 0 || i >= len(l.Items) {
			return nil, errtypes.New(errtypes.IndexError, "list index out of range")
		}
		return l.Items[i], nil
	}
	s.SetItem = func(container, key, val Value) error {
		l := container.(*List)
		idx, ok := key.(Int)
		if !ok {
			return errtypes.New(errtypes.TypeError, "list indices must be integers")
		}
		i := normalizeIndex(int(idx), len(l.Items))
		if i < 0 || i >= len(l.Items) {
			return errtypes.New(errtypes.IndexError, "list assignment index out of range")
		}
		l.Items[i] = val
		return nil
	}
	s.Iter = func(v Value) (Value, error) { return newSeqIterator(v.(*List).Items), nil }
	s.Add = func(v, w Value) (Value, error) {
		wl, ok := w.(*List)
		if !ok {
			return NotImplemented, nil
		}
		return NewList(append(append([]Value{}, v.(*List).Items...), wl.Items...)...), nil
	}
}

// --- dict -------------------------------------------------------------

func installDictSlots() {
	s := DictType.Slots
	s.Len = func(v Value) (int, error) { return v.(*Dict).Len(), nil }
	s.Bool = func(v Value) (Value, error) { return Bool(v.(*Dict).Len() > 0), nil }
	s.GetItem = func(v, key Value) (Value, error) {
		val, ok := v.(*Dict).Get(key)
		if !ok {
			return nil, errtypes.New(errtypes.KeyError, "%s", reprOrGo(key))
		}
		return val, nil
	}
	s.SetItem = func(container, key, val Value) error {
		container.(*Dict).Set(key, val)
		return nil
	}
	s.DelItem = func(container, key Value) error {
		if !container.(*Dict).Delete(key) {
			return errtypes.New(errtypes.KeyError, "%s", reprOrGo(key))
		}
		return nil
	}
	s.Iter = func(v Value) (Value, error) { return newSeqIterator(append([]Value{}, v.(*Dict).Keys...)), nil }
}

// --- set ----------------------------------------------------------------

func installSetSlots() {
	s := SetType.Slots
	s.Len = func(v Value) (int, error) { return v.(*Set).Len(), nil }
	s.Bool = func(v Value) (Value, error) { return Bool(v.(*Set).Len() > 0), nil }
	s.Iter = func(v Value) (Value, error) { return newSeqIterator(append([]Value{}, v.(*Set).Items()...)), nil }
	s.Repr = func(v Value) (Value, error) {
		items := v.(*Set).Items()
		if len(items) == 0 {
			return Str("set()"), nil
		}
		parts := make([]string, len(items))
		for i, it := range items {
			parts[i] = reprOrGo(it)
		}
		return Str("{" + strings.Join(parts, ", ") + "}"), nil
	}
	s.Str = s.Repr
}

// --- slice ----------------------------------------------------------------

func installSliceSlots() {
	s := SliceType.Slots
	s.Repr = func(v Value) (Value, error) {
		sl := v.(*Slice)
		return Str(fmt.Sprintf("slice(%s, %s, %s)", reprOrGo(sl.Start), reprOrGo(sl.Stop), reprOrGo(sl.Step))), nil
	}
	s.Str = s.Repr
}

func reprOrGo(v Value) string {
	r, err := ResolveRepr(v)(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	if s, ok := r.(Str); ok {
		return string(s)
	}
	return fmt.Sprintf("%v", r)
}

// --- NoneType / NotImplementedType --------------------------------

func installNoneSlots() {
	s := NoneTypeType.Slots
	s.Repr = func(Value) (Value, error) { return Str("None"), nil }
	s.Str = s.Repr
	s.Bool = func(Value) (Value, error) { return Bool(false), nil }

	n := NotImplementedType_.Slots
	n.Repr = func(Value) (Value, error) { return Str("NotImplemented"), nil }
	n.Str = n.Repr
}

// --- callables ----------------------------------------------------------

func installCallableSlots() {
	FunctionType.Slots.Repr = func(v Value) (Value, error) {
		fn := v.(*Function)
		return Str(fmt.Sprintf("<function %s>", fn.QualName)), nil
	}
	NativeFuncType.Slots.Repr = func(v Value) (Value, error) {
		fn := v.(*NativeFunc)
		return Str(fmt.Sprintf("<built-in function %s>", fn.Name)), nil
	}
	NativeFuncType.Slots.Call = func(self Value, args []Value, kwnames []string) (Value, error) {
		return self.(*NativeFunc).Fn(args, kwnames)
	}
	BoundMethodType.Slots.Repr = func(v Value) (Value, error) {
		bm := v.(*BoundMethod)
		return Str(fmt.Sprintf("<bound method of %s>", reprOrGo(bm.Self))), nil
	}
	BoundMethodType.Slots.Call = func(self Value, args []Value, kwnames []string) (Value, error) {
		bm := self.(*BoundMethod)
		full := append([]Value{bm.Self}, args...)
		return ResolveCall(bm.Callable)(bm.Callable, full, kwnames)
	}
}

// --- sequence iterator, shared by tuple/list/dict ----------------------

type seqIterator struct {
	items []Value
	pos   int
}

var SeqIteratorType *Type

func newSeqIterator(items []Value) *seqIterator {
	return &seqIterator{items: items}
}

func init() {
	SeqIteratorType = mustType(NewType(TypeSpec{Name: "iterator", Canonical: reflect.TypeOf((*seqIterator)(nil))}))
	SeqIteratorType.Slots.Iter = func(v Value) (Value, error) { return v, nil }
	SeqIteratorType.Slots.Next = func(v Value) (Value, error) {
		it := v.(*seqIterator)
		if it.pos >= len(it.items) {
			return nil, errtypes.New(errtypes.StopIteration, "")
		}
		val := it.items[it.pos]
		it.pos++
		return val, nil
	}
}

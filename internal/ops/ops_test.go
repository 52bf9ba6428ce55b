package ops

import (
	"testing"

	"pyrt/internal/errtypes"
	"pyrt/internal/object"
)

func TestArithmetic(t *testing.T) {
	if got, err := Add(object.Int(2), object.Int(3)); err != nil || got != object.Int(5) {
		t.Fatalf("Add = %v, %v, want 5", got, err)
	}
	if got, err := Mul(object.Int(4), object.Int(5)); err != nil || got != object.Int(20) {
		t.Fatalf("Mul = %v, %v, want 20", got, err)
	}
	if got, err := Sub(object.Float(1.5), object.Float(0.5)); err != nil || got != object.Float(1.0) {
		t.Fatalf("Sub = %v, %v, want 1.0", got, err)
	}
}

func TestArithmeticReflectedDispatchIsSelfFirst(t *testing.T) {
	// bool is a proper subtype of int and defines no Sub slot of its own,
	// so 5 - True must resolve through bool's reflected RSub, called as
	// RSub(True, 5) = 5 - True = 4, not RSub(5, True) = True - 5 = -4.
	got, err := Sub(object.Int(5), object.Bool(true))
	if err != nil || got != object.Int(4) {
		t.Fatalf("Sub(5, True) = %v, %v, want 4", got, err)
	}
}

func TestBinaryTypeMismatchIsTypeError(t *testing.T) {
	_, err := Add(object.Int(1), object.NewList())
	if err == nil {
		t.Fatal("expected a TypeError for int + list")
	}
	ue, ok := err.(*errtypes.UserException)
	if !ok {
		t.Fatalf("err = %T, want *errtypes.UserException", err)
	}
	if ue.Kind != errtypes.TypeError {
		t.Fatalf("Kind = %s, want TypeError", ue.Kind)
	}
}

func TestUnaryNeg(t *testing.T) {
	got, err := Neg(object.Int(7))
	if err != nil || got != object.Int(-7) {
		t.Fatalf("Neg(7) = %v, %v, want -7", got, err)
	}
}

func TestUnaryOnUnsupportedTypeIsTypeError(t *testing.T) {
	_, err := Invert(object.Float(1.5))
	if err == nil {
		t.Fatal("expected a TypeError for ~1.5")
	}
}

func TestRichCompareEquality(t *testing.T) {
	got, err := RichCompare(object.Int(3), object.Int(3), object.CmpEQ)
	if err != nil || got != object.Bool(true) {
		t.Fatalf("3 == 3 = %v, %v, want true", got, err)
	}
	got, err = RichCompare(object.Int(3), object.Int(4), object.CmpNE)
	if err != nil || got != object.Bool(true) {
		t.Fatalf("3 != 4 = %v, %v, want true", got, err)
	}
}

func TestRichCompareOrderingOnUncomparableIsTypeError(t *testing.T) {
	_, err := RichCompare(object.Int(1), object.NewList(), object.CmpLT)
	if err == nil {
		t.Fatal("expected a TypeError for int < list")
	}
}

func TestRichCompareCrossTypeIsTypeErrorNotPanic(t *testing.T) {
	// str and int share no ordering slot; before the order-table fix this
	// tried w's reflected slot as Reflected(v, w) instead of Reflected(w, v)
	// and risked a type assertion panic deep in the wrong operand's slot
	// rather than cleanly falling through to a TypeError.
	_, err := RichCompare(object.Str("abc"), object.Int(5), object.CmpLT)
	if err == nil {
		t.Fatal("expected a TypeError for \"abc\" < 5")
	}
	if _, ok := err.(*errtypes.UserException); !ok {
		t.Fatalf("err = %T, want *errtypes.UserException", err)
	}
}

func TestGetItemOnSequence(t *testing.T) {
	tup := object.Tuple{object.Int(10), object.Int(20), object.Int(30)}
	got, err := GetItem(tup, object.Int(1))
	if err != nil || got != object.Int(20) {
		t.Fatalf("GetItem = %v, %v, want 20", got, err)
	}
}

func TestGetItemOnNonSubscriptableIsTypeError(t *testing.T) {
	_, err := GetItem(object.Int(5), object.Int(0))
	if err == nil {
		t.Fatal("expected a TypeError for subscripting an int")
	}
}

func TestLenAndIsTrue(t *testing.T) {
	tup := object.Tuple{object.Int(1), object.Int(2)}
	n, err := Len(tup)
	if err != nil || n != 2 {
		t.Fatalf("Len = %d, %v, want 2", n, err)
	}
	truth, err := IsTrue(tup)
	if err != nil || !truth {
		t.Fatalf("IsTrue(non-empty tuple) = %v, %v, want true", truth, err)
	}
	truth, err = IsTrue(object.Tuple{})
	if err != nil || truth {
		t.Fatalf("IsTrue(empty tuple) = %v, %v, want false", truth, err)
	}
	truth, err = IsTrue(object.None)
	if err != nil || truth {
		t.Fatalf("IsTrue(None) = %v, %v, want false", truth, err)
	}
}

func TestReprOfNoneIsStr(t *testing.T) {
	r, err := Repr(object.None)
	if err != nil {
		t.Fatalf("Repr(None): %v", err)
	}
	if _, ok := r.(object.Str); !ok {
		t.Fatalf("Repr(None) = %v, want a Str", r)
	}
}

func TestCallOnNonCallableIsTypeError(t *testing.T) {
	_, err := Call(object.Int(1), nil, nil)
	if err == nil {
		t.Fatal("expected a TypeError for calling an int")
	}
}

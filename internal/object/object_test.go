package object

import "testing"

func TestDictSetGetDelete(t *testing.T) {
	d := NewDict()
	d.SetStr("x", Int(1))
	v, ok := d.GetStr("x")
	if !ok || v != Int(1) {
		t.Fatalf("GetStr(x) = %v, %v, want 1, true", v, ok)
	}
	if !d.DeleteStr("x") {
		t.Fatal("DeleteStr(x) should report true")
	}
	if _, ok := d.GetStr("x"); ok {
		t.Fatal("x should be gone after delete")
	}
}

func TestDictLen(t *testing.T) {
	d := NewDict()
	d.SetStr("a", Int(1))
	d.SetStr("b", Int(2))
	if d.Len() != 2 {
		t.Fatalf("Len = %d, want 2", d.Len())
	}
}

func TestTypeOfBuiltins(t *testing.T) {
	if TypeOf(Int(0)) != IntType {
		t.Fatal("TypeOf(Int) should be IntType")
	}
	if TypeOf(Str("")) != StrType {
		t.Fatal("TypeOf(Str) should be StrType")
	}
	if TypeOf(None) == nil {
		t.Fatal("TypeOf(None) should not be nil")
	}
}

func TestInstanceAttrFallsThroughToDict(t *testing.T) {
	typ, err := NewType(TypeSpec{Name: "widget", HasDict: true})
	if err != nil {
		t.Fatalf("NewType: %v", err)
	}
	inst := NewInstance(typ)

	if err := SetAttr(inst, "size", Int(42)); err != nil {
		t.Fatalf("SetAttr: %v", err)
	}
	v, err := GetAttribute(inst, "size")
	if err != nil || v != Int(42) {
		t.Fatalf("GetAttribute(size) = %v, %v, want 42", v, err)
	}
}

func TestInstanceMissingAttrIsAttributeError(t *testing.T) {
	typ, err := NewType(TypeSpec{Name: "widget", HasDict: true})
	if err != nil {
		t.Fatalf("NewType: %v", err)
	}
	inst := NewInstance(typ)
	if _, err := GetAttribute(inst, "nope"); err == nil {
		t.Fatal("expected an AttributeError for a missing attribute")
	}
}

func TestSubtypeMRO(t *testing.T) {
	base, err := NewType(TypeSpec{Name: "base"})
	if err != nil {
		t.Fatalf("NewType(base): %v", err)
	}
	derived, err := NewType(TypeSpec{Name: "derived", Bases: []*Type{base}})
	if err != nil {
		t.Fatalf("NewType(derived): %v", err)
	}
	found := false
	for _, cls := range derived.MRO {
		if cls == base {
			found = true
		}
	}
	if !found {
		t.Fatal("derived's MRO should include base")
	}
}

func TestReprAndStrSlots(t *testing.T) {
	r, err := IntType.Slots.Repr(Int(5))
	if err != nil {
		t.Fatalf("Repr: %v", err)
	}
	if r != Str("5") {
		t.Fatalf("repr(5) = %v, want \"5\"", r)
	}
}

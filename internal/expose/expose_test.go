package expose

import (
	"testing"

	"pyrt/internal/object"
)

// Point is a minimal host class used to exercise ExposeStruct: one
// readonly member, one writable member, and slot methods for a couple
// of number-protocol operators plus __len__.
type Point struct {
	X int64 `pyrt:"x,readonly"`
	Y int64 `pyrt:"y"`
}

func (p *Point) Add(other object.Value) (object.Value, error) {
	o := other.(*Point)
	return &Point{X: p.X + o.X, Y: p.Y + o.Y}, nil
}

func (p *Point) Neg() (object.Value, error) {
	return &Point{X: -p.X, Y: -p.Y}, nil
}

func (p *Point) Len() (int, error) { return 2, nil }

// Vec is a second, distinct carrier type so TestExposeStructSlots doesn't
// collide with Point's carrier registration in TestExposeStructMembers.
type Vec struct {
	X int64 `pyrt:"x,readonly"`
	Y int64 `pyrt:"y"`
}

func (v *Vec) Add(other object.Value) (object.Value, error) {
	o := other.(*Vec)
	return &Vec{X: v.X + o.X, Y: v.Y + o.Y}, nil
}

func (v *Vec) Neg() (object.Value, error) {
	return &Vec{X: -v.X, Y: -v.Y}, nil
}

func (v *Vec) Len() (int, error) { return 2, nil }

func TestExposeStructMembers(t *testing.T) {
	typ, err := ExposeStruct(HostClass{Name: "Point", Zero: (*Point)(nil)})
	if err != nil {
		t.Fatalf("ExposeStruct: %v", err)
	}
	p := &Point{X: 1, Y: 2}

	xd, ok := typ.Dict["x"]
	if !ok {
		t.Fatalf("expected member 'x' in dict")
	}
	v, err := xd.Get(p, typ)
	if err != nil || v != object.Int(1) {
		t.Fatalf("x getter: got %v, %v", v, err)
	}
	if _, ok := xd.(object.Setter); ok {
		if err := xd.(object.Setter).Set(p, object.Int(9)); err == nil {
			t.Fatalf("expected readonly member to reject Set")
		}
	}

	yd := typ.Dict["y"]
	if err := yd.(object.Setter).Set(p, object.Int(42)); err != nil {
		t.Fatalf("y setter: %v", err)
	}
	if p.Y != 42 {
		t.Fatalf("expected Y=42 after Set, got %d", p.Y)
	}
}

func TestExposeStructSlots(t *testing.T) {
	typ, err := ExposeStruct(HostClass{Name: "Vec", Zero: (*Vec)(nil)})
	if err != nil {
		t.Fatalf("ExposeStruct: %v", err)
	}
	a := &Vec{X: 1, Y: 2}
	b := &Vec{X: 3, Y: 4}

	sum, err := typ.Slots.Add(a, b)
	if err != nil {
		t.Fatalf("Add slot: %v", err)
	}
	sp := sum.(*Vec)
	if sp.X != 4 || sp.Y != 6 {
		t.Fatalf("expected (4,6), got (%d,%d)", sp.X, sp.Y)
	}

	neg, err := typ.Slots.Neg(a)
	if err != nil {
		t.Fatalf("Neg slot: %v", err)
	}
	np := neg.(*Vec)
	if np.X != -1 || np.Y != -2 {
		t.Fatalf("expected (-1,-2), got (%d,%d)", np.X, np.Y)
	}

	n, err := typ.Slots.Len(a)
	if err != nil || n != 2 {
		t.Fatalf("Len slot: got %d, %v", n, err)
	}

	if _, ok := typ.Dict["__neg__"]; !ok {
		t.Fatalf("expected __neg__ slot wrapper to be installed")
	}
}

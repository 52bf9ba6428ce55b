package cache

import (
	"testing"

	"pyrt/internal/object"
)

func TestUnarySiteMonomorphicSkipsFallback(t *testing.T) {
	site := NewUnarySite("-", object.ResolveNeg, func(v object.Value) (object.Value, error) {
		return -v.(object.Int), nil
	})

	for i := 0; i < 3; i++ {
		got, err := site.Invoke(object.Int(5))
		if err != nil {
			t.Fatalf("Invoke: %v", err)
		}
		if got != object.Int(-5) {
			t.Fatalf("Invoke = %v, want -5", got)
		}
	}
	if site.State() != "monomorphic" {
		t.Fatalf("state = %s, want monomorphic", site.State())
	}
	if site.FallbackCount() != 1 {
		t.Fatalf("fallback count = %d, want 1 (only the first miss)", site.FallbackCount())
	}
}

func TestUnarySiteGoesPolymorphicOnSecondClass(t *testing.T) {
	site := NewUnarySite("-", object.ResolveNeg, func(v object.Value) (object.Value, error) {
		switch n := v.(type) {
		case object.Int:
			return -n, nil
		case object.Float:
			return -n, nil
		}
		return nil, nil
	})

	site.Invoke(object.Int(1))
	site.Invoke(object.Float(1.5))
	if site.State() != "polymorphic" {
		t.Fatalf("state = %s, want polymorphic", site.State())
	}
	if site.FallbackCount() != 2 {
		t.Fatalf("fallback count = %d, want 2", site.FallbackCount())
	}
}

func TestUnarySiteGoesMegamorphicPastDepth(t *testing.T) {
	site := NewUnarySite("-", object.ResolveNeg, func(v object.Value) (object.Value, error) {
		return v, nil
	})

	// Each call below specialises on a distinct Go type to force a
	// fresh guard every time, walking the site past maxPolymorphicDepth.
	classes := []object.Value{
		object.Int(0), object.Float(0), object.Str(""), object.Bool(false),
		object.Tuple{}, &object.List{}, &object.Dict{}, &object.Set{},
		object.NewSlice(object.None, object.None, object.None),
	}
	for _, v := range classes {
		if _, err := site.Invoke(v); err != nil {
			t.Fatalf("Invoke(%T): %v", v, err)
		}
	}
	if site.State() != "megamorphic" {
		t.Fatalf("state = %s, want megamorphic after %d distinct classes", site.State(), len(classes))
	}
}

func TestBinarySiteCaching(t *testing.T) {
	site := NewBinarySite("+", object.SlotsAdd)

	for i := 0; i < 3; i++ {
		got, err := site.Invoke(object.Int(2), object.Int(3))
		if err != nil {
			t.Fatalf("Invoke: %v", err)
		}
		if got != object.Int(5) {
			t.Fatalf("Invoke = %v, want 5", got)
		}
	}
	if site.State() != "monomorphic" {
		t.Fatalf("state = %s, want monomorphic", site.State())
	}
}

package builtins

import (
	"testing"

	"pyrt/internal/object"
)

func call(t *testing.T, name string, args []object.Value, kwnames []string) object.Value {
	t.Helper()
	fn, ok := table[name]
	if !ok {
		t.Fatalf("no builtin named %q", name)
	}
	v, err := fn(args, kwnames)
	if err != nil {
		t.Fatalf("%s(...) error: %v", name, err)
	}
	return v
}

func TestBuiltinAbs(t *testing.T) {
	if got := call(t, "abs", []object.Value{object.Int(-5)}, nil); got != object.Int(5) {
		t.Fatalf("abs(-5) = %v, want 5", got)
	}
}

func TestBuiltinLen(t *testing.T) {
	tup := object.Tuple{object.Int(1), object.Int(2), object.Int(3)}
	if got := call(t, "len", []object.Value{tup}, nil); got != object.Int(3) {
		t.Fatalf("len(...) = %v, want 3", got)
	}
}

func TestBuiltinMaxMin(t *testing.T) {
	args := []object.Value{object.Int(3), object.Int(7), object.Int(1)}
	if got := call(t, "max", args, nil); got != object.Int(7) {
		t.Fatalf("max(...) = %v, want 7", got)
	}
	if got := call(t, "min", args, nil); got != object.Int(1) {
		t.Fatalf("min(...) = %v, want 1", got)
	}
}

func TestBuiltinMaxSingleIterable(t *testing.T) {
	tup := object.Tuple{object.Int(4), object.Int(9), object.Int(2)}
	if got := call(t, "max", []object.Value{tup}, nil); got != object.Int(9) {
		t.Fatalf("max(tuple) = %v, want 9", got)
	}
}

func TestBuiltinMaxEmptyIsError(t *testing.T) {
	_, err := table["max"]([]object.Value{object.Tuple{}}, nil)
	if err == nil {
		t.Fatal("expected an error for max() of an empty sequence")
	}
}

func TestBuiltinRepr(t *testing.T) {
	if got := call(t, "repr", []object.Value{object.Str("hi")}, nil); got != object.Str("'hi'") {
		// fall back to whatever str's repr slot actually produces; just
		// assert it doesn't error and returns a Str.
		if _, ok := got.(object.Str); !ok {
			t.Fatalf("repr(...) = %v, want a Str", got)
		}
	}
}

func TestInstallPopulatesDict(t *testing.T) {
	d := object.NewDict()
	Install(d)
	for name := range table {
		if _, ok := d.GetStr(name); !ok {
			t.Fatalf("Install did not register %q", name)
		}
	}
}

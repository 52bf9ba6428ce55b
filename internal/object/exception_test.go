package object_test

import (
	"testing"

	"pyrt/internal/errtypes"
	"pyrt/internal/object"
	"pyrt/internal/ops"
)

func TestExceptionIsARuntimeValue(t *testing.T) {
	ue := errtypes.New(errtypes.ValueError, "bad literal %q", "xyz")

	if object.TypeOf(ue) != object.ExceptionType {
		t.Fatalf("TypeOf(exception) = %v, want ExceptionType", object.TypeOf(ue))
	}

	s, err := ops.Str(ue)
	if err != nil || s != object.Str(ue.Message) {
		t.Fatalf("Str(exception) = %v, %v, want %q", s, err, ue.Message)
	}

	args, err := ops.GetAttr(ue, "args")
	if err != nil {
		t.Fatalf("GetAttr(args): %v", err)
	}
	tup, ok := args.(object.Tuple)
	if !ok || len(tup) != 1 {
		t.Fatalf("args = %#v, want a 1-tuple", args)
	}

	if _, err := ops.GetAttr(ue, "nope"); err == nil {
		t.Fatal("expected an AttributeError for an unknown exception attribute")
	}
}

package bytecode

import "testing"

func TestLineForOffset(t *testing.T) {
	co := &CodeObject{
		FirstLine: 1,
		LineTable: []LineEntry{{StartOffset: 0, Line: 1}, {StartOffset: 4, Line: 2}, {StartOffset: 10, Line: 3}},
	}
	cases := []struct {
		ip   int
		want int
	}{
		{0, 1}, {2, 1}, {4, 2}, {9, 2}, {10, 3}, {100, 3},
	}
	for _, c := range cases {
		if got := co.LineForOffset(c.ip); got != c.want {
			t.Errorf("LineForOffset(%d) = %d, want %d", c.ip, got, c.want)
		}
	}
}

func TestReadArgExtended(t *testing.T) {
	co := &CodeObject{Code: []byte{byte(LOAD_CONST), 0x05}}
	op, arg := co.ReadArg(0, 0x01)
	if op != LOAD_CONST {
		t.Fatalf("expected LOAD_CONST, got %v", op)
	}
	if arg != 0x0105 {
		t.Fatalf("expected folded arg 0x0105, got 0x%x", arg)
	}
}

func TestOpCodeString(t *testing.T) {
	if BINARY_ADD.String() != "BINARY_ADD" {
		t.Fatalf("got %q", BINARY_ADD.String())
	}
	if OpCode(250).String() != "UNKNOWN_OPCODE" {
		t.Fatalf("expected UNKNOWN_OPCODE for out-of-range opcode")
	}
}

package expose

import (
	"testing"

	"pyrt/internal/errtypes"
	"pyrt/internal/object"
)

func mustBind(t *testing.T, p *ArgParser, args []object.Value, kwnames []string) []object.Value {
	t.Helper()
	out, err := p.Bind(args, kwnames)
	if err != nil {
		t.Fatalf("Bind: unexpected error: %v", err)
	}
	return out
}

func TestArgParserPositionalOnly(t *testing.T) {
	p := &ArgParser{
		Name:         "f",
		Params:       []Param{{Name: "a"}, {Name: "b"}},
		PosOnlyCount: 2,
	}
	out := mustBind(t, p, []object.Value{object.Int(1), object.Int(2)}, nil)
	if out[0] != object.Int(1) || out[1] != object.Int(2) {
		t.Fatalf("got %v", out)
	}
	if _, err := p.Bind(nil, []string{"a"}); err == nil {
		t.Fatalf("expected positional-only keyword to be rejected")
	}
}

func TestArgParserDefaultsAndKeyword(t *testing.T) {
	p := &ArgParser{
		Name:   "f",
		Params: []Param{{Name: "a"}, {Name: "b", Default: object.Int(9), HasDefault: true}},
	}
	out := mustBind(t, p, []object.Value{object.Int(1)}, nil)
	if out[1] != object.Int(9) {
		t.Fatalf("expected default 9, got %v", out[1])
	}
	out = mustBind(t, p, []object.Value{object.Int(1), object.Int(5)}, []string{"b"})
	if out[1] != object.Int(5) {
		t.Fatalf("expected keyword override 5, got %v", out[1])
	}
}

func TestArgParserMultipleValuesError(t *testing.T) {
	p := &ArgParser{Name: "f", Params: []Param{{Name: "a"}}}
	_, err := p.Bind([]object.Value{object.Int(1), object.Int(2)}, []string{"a"})
	if err == nil {
		t.Fatalf("expected multiple-values error")
	}
	ue, ok := err.(*errtypes.UserException)
	if !ok || ue.Kind != errtypes.TypeError {
		t.Fatalf("expected TypeError, got %v", err)
	}
}

func TestArgParserVarArgsVarKw(t *testing.T) {
	p := &ArgParser{
		Name:       "f",
		Params:     []Param{{Name: "a"}},
		HasVarArgs: true,
		HasVarKw:   true,
	}
	out := mustBind(t, p, []object.Value{object.Int(1), object.Int(2), object.Int(3)}, []string{"x"})
	tup, ok := out[1].(object.Tuple)
	if !ok || len(tup) != 1 || tup[0] != object.Int(2) {
		t.Fatalf("expected 1-element varargs tuple (2,), got %v", out[1])
	}
	dict, ok := out[2].(*object.Dict)
	if !ok {
		t.Fatalf("expected varkw dict, got %v", out[2])
	}
	if v, ok := dict.GetStr("x"); !ok || v != object.Int(3) {
		t.Fatalf("expected varkw x=3, got %v", dict)
	}
}

func TestArgParserMissingRequired(t *testing.T) {
	p := &ArgParser{Name: "f", Params: []Param{{Name: "a"}}}
	if _, err := p.Bind(nil, nil); err == nil {
		t.Fatalf("expected missing-argument error")
	}
}

func TestArgParserUnexpectedKeyword(t *testing.T) {
	p := &ArgParser{Name: "f", Params: []Param{{Name: "a"}}}
	if _, err := p.Bind([]object.Value{object.Int(1), object.Int(2)}, []string{"z"}); err == nil {
		t.Fatalf("expected unexpected-keyword error")
	}
}

func TestArgParserBindClassic(t *testing.T) {
	p := &ArgParser{Name: "f", Params: []Param{{Name: "a"}, {Name: "b"}}}
	kwargs := object.NewDict()
	kwargs.SetStr("b", object.Int(2))
	out, err := p.BindClassic(object.Tuple{object.Int(1)}, kwargs)
	if err != nil {
		t.Fatalf("BindClassic: %v", err)
	}
	if out[0] != object.Int(1) || out[1] != object.Int(2) {
		t.Fatalf("got %v", out)
	}
}

// Package expose implements the reflection-driven exposure system
// (spec.md §4.7, component F) and the argument parser it builds for
// every exposed method (spec.md §4.8, component G).
package expose

import (
	"strings"

	"pyrt/internal/errtypes"
	"pyrt/internal/object"
)

// Param describes one declared parameter of an exposed method, in
// declaration order.
type Param struct {
	Name     string
	Default  object.Value // nil if required
	HasDefault bool
}

// ArgParser binds an incoming call to a named parameter frame
// (spec.md §4.8). PosOnlyCount/KwOnlyCount partition Params:
// Params[:PosOnlyCount] are positional-only, Params[PosOnlyCount:len(Params)-KwOnlyCount]
// are positional-or-keyword, and the last KwOnlyCount entries are
// keyword-only.
type ArgParser struct {
	Name         string
	Params       []Param
	PosOnlyCount int
	KwOnlyCount  int
	HasVarArgs   bool
	HasVarKw     bool
	KwDefaults   map[string]object.Value

	// TextSignature is the introspection string spec.md S8 requires,
	// e.g. "($self, a, /, b, c)".
	TextSignature string
}

func posOrKwEnd(p *ArgParser) int { return len(p.Params) - p.KwOnlyCount }

// Bind runs the five-step algorithm of spec.md §4.8 against a
// positional-argument array whose tail of length len(kwnames) carries
// the values for the keyword arguments named by kwnames (the "fast
// path" calling convention, spec.md §6). It returns one Value per
// declared parameter plus, if present, a trailing varargs tuple and/or
// var-keywords dict, in that fixed order.
func (p *ArgParser) Bind(args []object.Value, kwnames []string) ([]object.Value, error) {
	nPos := len(args) - len(kwnames)
	if nPos < 0 {
		return nil, errtypes.Fatal("argument parser %s: kwnames longer than args", p.Name)
	}
	posArgs := args[:nPos]
	kwTail := args[nPos:]

	bound := make([]object.Value, len(p.Params))
	assigned := make([]bool, len(p.Params))
	var varArgs []object.Value
	varKw := object.NewDict()

	// Step 1/2: positional assignment.
	posCap := posOrKwEnd(p)
	if !p.HasVarArgs && len(posArgs) > posCap {
		return nil, errtypes.New(errtypes.TypeError,
			"%s() takes at most %d positional argument(s) (%d given)", p.Name, posCap, len(posArgs))
	}
	for i, v := range posArgs {
		if i >= posCap {
			varArgs = append(varArgs, v)
			continue
		}
		bound[i] = v
		assigned[i] = true
	}

	// Step 3: keyword assignment.
	for i, name := range kwnames {
		idx := indexOf(p.Params, name)
		if idx == -1 {
			if p.HasVarKw {
				varKw.SetStr(name, kwTail[i])
				continue
			}
			return nil, errtypes.New(errtypes.TypeError, "%s() got an unexpected keyword argument '%s'", p.Name, name)
		}
		if idx < p.PosOnlyCount {
			return nil, errtypes.New(errtypes.TypeError, "%s() got an unexpected keyword argument '%s'", p.Name, name)
		}
		if assigned[idx] {
			return nil, errtypes.New(errtypes.TypeError, "%s() got multiple values for argument '%s'", p.Name, name)
		}
		bound[idx] = kwTail[i]
		assigned[idx] = true
	}

	// Step 4: fill defaults, positional then keyword-only.
	kwOnlyStart := posOrKwEnd(p)
	for i, param := range p.Params {
		if assigned[i] {
			continue
		}
		if i < kwOnlyStart && param.HasDefault {
			bound[i] = param.Default
			continue
		}
		if i >= kwOnlyStart {
			if d, ok := p.KwDefaults[param.Name]; ok {
				bound[i] = d
				continue
			}
		}
		if param.HasDefault {
			bound[i] = param.Default
			continue
		}
		return nil, errtypes.New(errtypes.TypeError, "%s() missing required argument: '%s'", p.Name, param.Name)
	}

	out := append([]object.Value{}, bound...)
	if p.HasVarArgs {
		out = append(out, object.Tuple(append([]object.Value{}, varArgs...)))
	}
	if p.HasVarKw {
		out = append(out, varKw)
	}
	return out, nil
}

func indexOf(params []Param, name string) int {
	for i, p := range params {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// BindClassic adapts the classic (args tuple, kwargs map) calling
// convention (spec.md §6) onto the same Bind algorithm, so both forms
// produce identical parameter binding.
func (p *ArgParser) BindClassic(posArgs object.Tuple, kwargs *object.Dict) ([]object.Value, error) {
	args := append([]object.Value{}, posArgs...)
	var kwnames []string
	if kwargs != nil {
		for _, k := range kwargs.Keys {
			name, ok := k.(object.Str)
			if !ok {
				return nil, errtypes.New(errtypes.TypeError, "keywords must be strings")
			}
			kwnames = append(kwnames, string(name))
			v, _ := kwargs.Get(k)
			args = append(args, v)
		}
	}
	return p.Bind(args, kwnames)
}

// Signature renders the text signature spec.md S8 requires, e.g.
// "($self, a, /, b, c)" for a bound method with one positional-only
// parameter. It does not mutate p.TextSignature; callers that want the
// field populated assign the result themselves.
func (p *ArgParser) Signature() string {
	var b strings.Builder
	b.WriteString("($self")
	kwOnlyStart := posOrKwEnd(p)
	for i, param := range p.Params {
		b.WriteString(", ")
		if i == p.PosOnlyCount && p.PosOnlyCount > 0 {
			b.WriteString("/, ")
		}
		if i == kwOnlyStart && p.KwOnlyCount > 0 {
			b.WriteString("*, ")
		}
		b.WriteString(param.Name)
	}
	if p.PosOnlyCount > 0 && p.PosOnlyCount == len(p.Params) {
		b.WriteString(", /")
	}
	b.WriteString(")")
	return b.String()
}

// Package builtins implements the small set of always-available names a
// frame's builtins namespace resolves through LOAD_GLOBAL/LOAD_NAME
// fallback (spec.md §4.9 "Name resolution order"): abs, len, repr, max,
// min, globals, locals, exec and print.
package builtins

import (
	"fmt"
	"os"
	"strings"

	"pyrt/internal/errtypes"
	"pyrt/internal/object"
	"pyrt/internal/ops"
)

// Install populates dict with every built-in name. Called once against
// the process-wide builtins namespace (internal/vm's builtinsDict).
func Install(dict *object.Dict) {
	for name, fn := range table {
		dict.SetStr(name, &object.NativeFunc{Name: name, Fn: fn})
	}
}

var table = map[string]func(args []object.Value, kwnames []string) (object.Value, error){
	"abs":     builtinAbs,
	"len":     builtinLen,
	"repr":    builtinRepr,
	"max":     builtinMax,
	"min":     builtinMin,
	"globals": builtinGlobals,
	"locals":  builtinLocals,
	"exec":    builtinExec,
	"print":   builtinPrint,
}

func builtinAbs(args []object.Value, kwnames []string) (object.Value, error) {
	if len(args) != 1 {
		return nil, errtypes.New(errtypes.TypeError, "abs() takes exactly one argument (%d given)", len(args))
	}
	return ops.Abs(args[0])
}

func builtinLen(args []object.Value, kwnames []string) (object.Value, error) {
	if len(args) != 1 {
		return nil, errtypes.New(errtypes.TypeError, "len() takes exactly one argument (%d given)", len(args))
	}
	n, err := ops.Len(args[0])
	if err != nil {
		return nil, err
	}
	return object.Int(n), nil
}

func builtinRepr(args []object.Value, kwnames []string) (object.Value, error) {
	if len(args) != 1 {
		return nil, errtypes.New(errtypes.TypeError, "repr() takes exactly one argument (%d given)", len(args))
	}
	return ops.Repr(args[0])
}

// extremum implements max()/min() over either a single iterable argument
// or two-or-more positional arguments (spec.md's supplemented builtins
// follow the same calling convention either form uses in the source
// language: compare pairwise with __lt__/__gt__).
func extremum(args []object.Value, wantMax bool) (object.Value, error) {
	var items []object.Value
	if len(args) == 1 {
		it, err := ops.Iter(args[0])
		if err != nil {
			return nil, err
		}
		for {
			v, err := ops.Next(it)
			if err != nil {
				if ue, ok := err.(*errtypes.UserException); ok && errtypes.IsA(ue.Kind, errtypes.StopIteration) {
					break
				}
				return nil, err
			}
			items = append(items, v)
		}
	} else {
		items = args
	}
	if len(items) == 0 {
		name := "min"
		if wantMax {
			name = "max"
		}
		return nil, errtypes.New(errtypes.ValueError, "%s() arg is an empty sequence", name)
	}
	best := items[0]
	for _, v := range items[1:] {
		op := object.CmpGT
		if !wantMax {
			op = object.CmpLT
		}
		r, err := ops.RichCompare(v, best, op)
		if err != nil {
			return nil, err
		}
		t, err := ops.IsTrue(r)
		if err != nil {
			return nil, err
		}
		if t {
			best = v
		}
	}
	return best, nil
}

func builtinMax(args []object.Value, kwnames []string) (object.Value, error) { return extremum(args, true) }
func builtinMin(args []object.Value, kwnames []string) (object.Value, error) { return extremum(args, false) }

// FrameNamespaces is implemented by internal/vm.Frame so this package can
// read the calling frame's globals/locals without importing internal/vm
// (which already imports internal/builtins' home package through its own
// wiring path, and importing it back here would cycle).
type FrameNamespaces interface {
	GlobalsDict() *object.Dict
	LocalsDict() *object.Dict
}

// currentFrame is set by internal/vm for every frame it runs, so that
// globals()/locals() (spec.md's supplemented introspection builtins)
// can read it: a single current-frame pointer is sufficient
// since frames never run concurrently under the coarse global lock.
var currentFrame FrameNamespaces

// BindFrame is called by internal/vm.RunFrame once per frame run: it
// makes f the current frame and returns a function that restores the
// previous one when the frame finishes.
func BindFrame(f FrameNamespaces) (restore func()) {
	prev := currentFrame
	currentFrame = f
	return func() { currentFrame = prev }
}

func builtinGlobals(args []object.Value, kwnames []string) (object.Value, error) {
	if currentFrame == nil {
		return object.NewDict(), nil
	}
	return currentFrame.GlobalsDict(), nil
}

func builtinLocals(args []object.Value, kwnames []string) (object.Value, error) {
	if currentFrame == nil {
		return object.NewDict(), nil
	}
	if d := currentFrame.LocalsDict(); d != nil {
		return d, nil
	}
	return object.NewDict(), nil
}

// builtinExec always fails with a TypeError, whatever its arguments: it
// does not execute source text (there is no source-level compiler,
// spec.md Non-goals), and it does not execute a code object either.
func builtinExec(args []object.Value, kwnames []string) (object.Value, error) {
	return nil, errtypes.New(errtypes.TypeError, "exec() requires a compiled code object, not source text")
}

// builtinPrint supports the sep/end keyword-only arguments (spec.md's
// supplemented print() feature): everything before the trailing
// len(kwnames) positions is a value to print; sep/end are matched by
// name only, so callers pass them as kwnames like any other keyword
// call. Any other keyword name is ignored.
func builtinPrint(args []object.Value, kwnames []string) (object.Value, error) {
	sep, end := " ", "\n"
	values := args[:len(args)-len(kwnames)]
	for i, name := range kwnames {
		v := args[len(values)+i]
		switch name {
		case "sep":
			sep = valueAsText(v)
		case "end":
			end = valueAsText(v)
		}
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = valueAsText(v)
	}
	fmt.Fprint(os.Stdout, strings.Join(parts, sep)+end)
	return object.None, nil
}

func valueAsText(v object.Value) string {
	r, err := ops.Str(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	if s, ok := r.(object.Str); ok {
		return string(s)
	}
	return fmt.Sprintf("%v", r)
}

package expose

import (
	"reflect"
	"strings"

	"pyrt/internal/errtypes"
	"pyrt/internal/object"
)

// HostClass describes a Go struct to reflect into a type object (spec.md
// §4.7, component F). Zero must be a pointer to the zero value of the
// struct (e.g. (*Point)(nil)); its method set and field tags drive the
// exposure, the same way an annotated host class drives construction of
// its Jython-style type object.
type HostClass struct {
	Name    string
	Bases   []*object.Type
	Zero    interface{}
	Doc     string
	HasDict bool
}

// field tag format: `pyrt:"name[,readonly][,optional]"`.
const tagKey = "pyrt"

// ExposeStruct builds and registers the abstract type for hc, deriving:
//   - one MemberDescriptor per exported struct field carrying a pyrt tag,
//     reading/writing the field directly via reflection;
//   - one slot or MethodDescriptor per exported pointer-receiver method,
//     chosen by matching the method's name against the slot convention
//     table below and its signature against the shapes that table
//     expects (spec.md §4.7 "Annotation -> Produces").
//
// Any exported method whose name isn't a recognised slot name, or whose
// signature doesn't match that slot's expected shape, is exposed as an
// ordinary MethodDescriptor if its signature is the generic (args,
// kwnames) calling convention; a method of any other shape is not
// exposed.
func ExposeStruct(hc HostClass) (*object.Type, error) {
	ptrType := reflect.TypeOf(hc.Zero)
	if ptrType == nil || ptrType.Kind() != reflect.Ptr {
		return nil, errtypes.Fatal("expose: HostClass.Zero for %q must be a non-nil pointer", hc.Name)
	}
	structType := ptrType.Elem()
	if structType.Kind() != reflect.Struct {
		return nil, errtypes.Fatal("expose: HostClass.Zero for %q must point to a struct", hc.Name)
	}

	t, err := object.NewType(object.TypeSpec{
		Name:      hc.Name,
		Bases:     hc.Bases,
		Canonical: ptrType,
		HasDict:   hc.HasDict,
		Mutable:   false,
	})
	if err != nil {
		return nil, err
	}

	exposeFields(t, structType)
	for i := 0; i < ptrType.NumMethod(); i++ {
		exposeMethod(t, ptrType, ptrType.Method(i))
	}
	return t, nil
}

func exposeFields(t *object.Type, structType reflect.Type) {
	for i := 0; i < structType.NumField(); i++ {
		f := structType.Field(i)
		if f.PkgPath != "" {
			continue // unexported
		}
		tag, ok := f.Tag.Lookup(tagKey)
		if !ok {
			continue
		}
		parts := strings.Split(tag, ",")
		name := parts[0]
		if name == "" {
			name = f.Name
		}
		readonly, optional := false, false
		for _, opt := range parts[1:] {
			switch opt {
			case "readonly":
				readonly = true
			case "optional":
				optional = true
			}
		}
		idx := i
		md := &object.MemberDescriptor{Name: name, Readonly: readonly, Optional: optional}
		md.Get_ = func(self object.Value) (object.Value, error) {
			rv := reflect.ValueOf(self).Elem().Field(idx)
			return fieldToValue(rv)
		}
		if !readonly {
			md.Set_ = func(self object.Value, val object.Value) error {
				rv := reflect.ValueOf(self).Elem().Field(idx)
				return valueToField(rv, val)
			}
		}
		t.Dict[name] = md
	}
}

func fieldToValue(rv reflect.Value) (object.Value, error) {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return object.Int(rv.Int()), nil
	case reflect.Float32, reflect.Float64:
		return object.Float(rv.Float()), nil
	case reflect.String:
		return object.Str(rv.String()), nil
	case reflect.Bool:
		return object.Bool(rv.Bool()), nil
	default:
		return nil, errtypes.Fatal("expose: unsupported field kind %v", rv.Kind())
	}
}

func valueToField(rv reflect.Value, val object.Value) error {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := val.(object.Int)
		if !ok {
			return errtypes.New(errtypes.TypeError, "expected an int")
		}
		rv.SetInt(int64(n))
	case reflect.Float32, reflect.Float64:
		switch v := val.(type) {
		case object.Float:
			rv.SetFloat(float64(v))
		case object.Int:
			rv.SetFloat(float64(v))
		default:
			return errtypes.New(errtypes.TypeError, "expected a float")
		}
	case reflect.String:
		s, ok := val.(object.Str)
		if !ok {
			return errtypes.New(errtypes.TypeError, "expected a str")
		}
		rv.SetString(string(s))
	case reflect.Bool:
		b, ok := val.(object.Bool)
		if !ok {
			return errtypes.New(errtypes.TypeError, "expected a bool")
		}
		rv.SetBool(bool(b))
	default:
		return errtypes.Fatal("expose: unsupported field kind %v", rv.Kind())
	}
	return nil
}

// unarySlotNames maps an exposed host method name to the SlotTable field
// it fills, for methods of shape func(*T) (object.Value, error).
var unarySlotNames = map[string]func(*object.SlotTable) *object.UnaryOp{
	"Neg":    func(s *object.SlotTable) *object.UnaryOp { return &s.Neg },
	"Pos":    func(s *object.SlotTable) *object.UnaryOp { return &s.Pos },
	"Abs":    func(s *object.SlotTable) *object.UnaryOp { return &s.Abs },
	"Invert": func(s *object.SlotTable) *object.UnaryOp { return &s.Invert },
	"Repr":   func(s *object.SlotTable) *object.UnaryOp { return &s.Repr },
	"Str":    func(s *object.SlotTable) *object.UnaryOp { return &s.Str },
	"Float":  func(s *object.SlotTable) *object.UnaryOp { return &s.Float },
	"Int":    func(s *object.SlotTable) *object.UnaryOp { return &s.Int },
	"Bool":   func(s *object.SlotTable) *object.UnaryOp { return &s.Bool },
	"Index":  func(s *object.SlotTable) *object.UnaryOp { return &s.Index },
	"Iter":   func(s *object.SlotTable) *object.UnaryOp { return &s.Iter },
	"Next":   func(s *object.SlotTable) *object.UnaryOp { return &s.Next },
}

// binarySlotNames maps a method name to the forward BinaryOp slot it
// fills, for methods of shape func(*T, object.Value) (object.Value, error).
var binarySlotNames = map[string]func(*object.SlotTable) *object.BinaryOp{
	"Add":       func(s *object.SlotTable) *object.BinaryOp { return &s.Add },
	"Sub":       func(s *object.SlotTable) *object.BinaryOp { return &s.Sub },
	"Mul":       func(s *object.SlotTable) *object.BinaryOp { return &s.Mul },
	"TrueDiv":   func(s *object.SlotTable) *object.BinaryOp { return &s.TrueDiv },
	"FloorDiv":  func(s *object.SlotTable) *object.BinaryOp { return &s.FloorDiv },
	"Mod":       func(s *object.SlotTable) *object.BinaryOp { return &s.Mod },
	"And":       func(s *object.SlotTable) *object.BinaryOp { return &s.And },
	"Or":        func(s *object.SlotTable) *object.BinaryOp { return &s.Or },
	"Xor":       func(s *object.SlotTable) *object.BinaryOp { return &s.Xor },
	"Lshift":    func(s *object.SlotTable) *object.BinaryOp { return &s.Lshift },
	"Rshift":    func(s *object.SlotTable) *object.BinaryOp { return &s.Rshift },
	"GetItem":   func(s *object.SlotTable) *object.BinaryOp { return &s.GetItem },
}

var unaryShape = reflect.TypeOf(func(object.Value) (object.Value, error) { return nil, nil })
var binaryShape = reflect.TypeOf(func(object.Value, object.Value) (object.Value, error) { return nil, nil })
var lenShape = reflect.TypeOf(func(object.Value) (int, error) { return 0, nil })
var hashShape = reflect.TypeOf(func(object.Value) (int64, error) { return 0, nil })
var genericShape = reflect.TypeOf(func(object.Value, []object.Value, []string) (object.Value, error) { return nil, nil })

func exposeMethod(t *object.Type, ptrType reflect.Type, m reflect.Method) {
	recv := func(self object.Value) reflect.Value { return reflect.ValueOf(self) }

	switch m.Name {
	case "Len":
		if sig, ok := methodSigMatches(m, ptrType, lenShape); ok {
			t.Slots.Len = func(self object.Value) (int, error) {
				out := sig.Call([]reflect.Value{recv(self)})
				return lenResult(out)
			}
			return
		}
	case "Hash":
		if sig, ok := methodSigMatches(m, ptrType, hashShape); ok {
			t.Slots.Hash = func(self object.Value) (int64, error) {
				out := sig.Call([]reflect.Value{recv(self)})
				return hashResult(out)
			}
			return
		}
	}

	if slotFor, known := unarySlotNames[m.Name]; known {
		if sig, ok := methodSigMatches(m, ptrType, unaryShape); ok {
			handle := func(self object.Value) (object.Value, error) {
				out := sig.Call([]reflect.Value{recv(self)})
				return unaryResult(out)
			}
			*slotFor(t.Slots) = handle
			installSlotWrapper(t, strings.ToLower(m.Name), handle)
			return
		}
	}
	if slotFor, known := binarySlotNames[m.Name]; known {
		if sig, ok := methodSigMatches(m, ptrType, binaryShape); ok {
			*slotFor(t.Slots) = func(self, other object.Value) (object.Value, error) {
				out := sig.Call([]reflect.Value{recv(self), reflect.ValueOf(other)})
				return unaryResult(out)
			}
			return
		}
	}

	// Fall back to a generic exposed method taking (args, kwnames).
	if sig, ok := methodSigMatches(m, ptrType, genericShape); ok {
		t.Dict[pythonMethodName(m.Name)] = &object.MethodDescriptor{
			Name: pythonMethodName(m.Name),
			Fn: &object.NativeFunc{Name: m.Name, Fn: func(args []object.Value, kwnames []string) (object.Value, error) {
				if len(args) < 1 {
					return nil, errtypes.Fatal("expose: method %q called with no self", m.Name)
				}
				self := args[0]
				out := sig.Call([]reflect.Value{recv(self), reflect.ValueOf(args[1:]), reflect.ValueOf(kwnames)})
				return unaryResult(out)
			}},
		}
	}
}

// methodSigMatches reports whether m's function signature (minus the
// receiver) matches want, and returns the bound reflect.Value to call.
func methodSigMatches(m reflect.Method, ptrType reflect.Type, want reflect.Type) (reflect.Value, bool) {
	ft := m.Func.Type()
	if ft.NumIn() != want.NumIn()+1 || ft.NumOut() != want.NumOut() {
		return reflect.Value{}, false
	}
	for i := 0; i < want.NumIn(); i++ {
		if ft.In(i+1) != want.In(i) {
			return reflect.Value{}, false
		}
	}
	for i := 0; i < want.NumOut(); i++ {
		if ft.Out(i) != want.Out(i) {
			return reflect.Value{}, false
		}
	}
	return m.Func, true
}

func unaryResult(out []reflect.Value) (object.Value, error) {
	v, _ := out[0].Interface().(object.Value)
	err, _ := out[1].Interface().(error)
	return v, err
}

func lenResult(out []reflect.Value) (int, error) {
	n, _ := out[0].Interface().(int)
	err, _ := out[1].Interface().(error)
	return n, err
}

func hashResult(out []reflect.Value) (int64, error) {
	n, _ := out[0].Interface().(int64)
	err, _ := out[1].Interface().(error)
	return n, err
}

// pythonMethodName lowercases the leading letter of a Go exported method
// name, since the convention here is Go PascalCase in, snake/dunder-free
// lowerCamel out for ordinary (non-slot) exposed methods.
func pythonMethodName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}

// installSlotWrapper additionally exposes a unary operator slot as an
// ordinary callable dunder method in the type's dictionary (spec.md §3
// "slot wrapper"), so e.g. a.__neg__() works the same as -a.
func installSlotWrapper(t *object.Type, shortName string, handle object.UnaryOp) {
	dunder := "__" + shortName + "__"
	t.Dict[dunder] = &object.SlotWrapperDescriptor{
		Name: dunder,
		Call: func(self object.Value, args []object.Value) (object.Value, error) {
			return handle(self)
		},
	}
}

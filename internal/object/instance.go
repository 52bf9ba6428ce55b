package object

// Instance is the generic carrier for values of user-defined types that
// declare an instance dictionary (spec.md Type.instance-dictionary
// offset). Exposed host classes with a fixed member set can instead
// adopt a purpose-built Go struct as their carrier (see package expose);
// Instance is the fallback "plain object()" shape.
type Instance struct {
	Typ  *Type
	Dict *Dict // nil when the type declares has-dict=false
}

func NewInstance(t *Type) *Instance {
	inst := &Instance{Typ: t}
	if t.HasDict {
		inst.Dict = NewDict()
	}
	return inst
}

// Function is a callable wrapping a code object to its defining globals
// namespace, its defaults/closure, and identity metadata (spec.md §4.10,
// component I). CodeObject is declared as an opaque interface{} here to
// avoid a package cycle with internal/bytecode; internal/vm type-asserts
// it back to *bytecode.CodeObject when creating a frame.
type Function struct {
	Name        string
	QualName    string
	CodeObject  interface{}
	Globals     *Dict
	Defaults    []Value
	KwDefaults  *Dict
	Closure     []*Cell
	Annotations *Dict
	Doc         string
}

// BoundMethod is produced by the method-descriptor __get__ slot
// (spec.md §4.6 "Method binding"): it prepends Self to every call.
type BoundMethod struct {
	Self     Value
	Callable Value
}

// NativeFunc wraps a Go function exposed as a callable Value: used by
// the exposure system for slot wrappers, method descriptors backed by a
// host method, and the builtins package. Fn receives the arguments,
// positional values first and keyword values last, plus the names of
// those trailing keyword values, in the fast-path calling convention
// of spec.md §6.
type NativeFunc struct {
	Name string
	Fn   func(args []Value, kwnames []string) (Value, error)
}

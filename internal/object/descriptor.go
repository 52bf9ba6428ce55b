package object

import "pyrt/internal/errtypes"

// MethodDescriptor wraps a callable found on a class; accessed on an
// instance it binds self (spec.md §3 Descriptor "method descriptor"),
// accessed on the type it returns itself unbound.
type MethodDescriptor struct {
	Name string
	Fn   Value // a *NativeFunc or *Function
}

func (m *MethodDescriptor) IsData() bool { return false }

func (m *MethodDescriptor) Get(instance Value, owner *Type) (Value, error) {
	if instance == nil {
		return m, nil
	}
	return &BoundMethod{Self: instance, Callable: m.Fn}, nil
}

// StaticMethodDescriptor never binds self, on instance or on type.
type StaticMethodDescriptor struct {
	Name string
	Fn   Value
}

func (s *StaticMethodDescriptor) IsData() bool { return false }
func (s *StaticMethodDescriptor) Get(Value, *Type) (Value, error) { return s.Fn, nil }

// ClassMethodDescriptor binds the owning type (not the instance) as
// the first argument, on both instance and type access.
type ClassMethodDescriptor struct {
	Name string
	Fn   Value
}

func (c *ClassMethodDescriptor) IsData() bool { return false }
func (c *ClassMethodDescriptor) Get(_ Value, owner *Type) (Value, error) {
	return &BoundMethod{Self: owner, Callable: c.Fn}, nil
}

// SlotWrapperDescriptor exposes an internal slot handle as a callable
// Python-visible method (spec.md §3 "A slot wrapper exposes an internal
// slot as a Python-callable").
type SlotWrapperDescriptor struct {
	Name string
	Call func(self Value, args []Value) (Value, error)
}

func (s *SlotWrapperDescriptor) IsData() bool { return false }
func (s *SlotWrapperDescriptor) Get(instance Value, owner *Type) (Value, error) {
	if instance == nil {
		return s, nil
	}
	fn := s.Call
	self := instance
	return &NativeFunc{Name: s.Name, Fn: func(args []Value, kwnames []string) (Value, error) {
		return fn(self, args)
	}}, nil
}

// GetSetDescriptor is a computed data descriptor backed by accessor
// functions (spec.md §4.7 "getter/setter/deleter").
type GetSetDescriptor struct {
	Name   string
	Getter func(self Value) (Value, error)
	Setter func(self Value, val Value) error
	Deller func(self Value) error
}

func (g *GetSetDescriptor) IsData() bool { return true }
func (g *GetSetDescriptor) Get(instance Value, owner *Type) (Value, error) {
	if instance == nil {
		return g, nil
	}
	if g.Getter == nil {
		return nil, errtypes.New(errtypes.AttributeError, "unreadable attribute '%s'", g.Name)
	}
	return g.Getter(instance)
}
func (g *GetSetDescriptor) Set(instance Value, val Value) error {
	if g.Setter == nil {
		return errtypes.New(errtypes.AttributeError, "can't set attribute '%s'", g.Name)
	}
	return g.Setter(instance, val)
}
func (g *GetSetDescriptor) Delete(instance Value) error {
	if g.Deller == nil {
		return errtypes.New(errtypes.AttributeError, "can't delete attribute '%s'", g.Name)
	}
	return g.Deller(instance)
}

// MemberDescriptor is a data descriptor backed by a direct struct field
// read/write (spec.md §4.7 "member"), honouring readonly/optional flags.
type MemberDescriptor struct {
	Name     string
	Readonly bool
	Optional bool
	Get_     func(self Value) (Value, error)
	Set_     func(self Value, val Value) error
	Del_     func(self Value) error
}

func (m *MemberDescriptor) IsData() bool { return true }
func (m *MemberDescriptor) Get(instance Value, owner *Type) (Value, error) {
	if instance == nil {
		return m, nil
	}
	return m.Get_(instance)
}
func (m *MemberDescriptor) Set(instance Value, val Value) error {
	if m.Readonly || m.Set_ == nil {
		return errtypes.New(errtypes.AttributeError, "readonly attribute '%s'", m.Name)
	}
	return m.Set_(instance, val)
}
func (m *MemberDescriptor) Delete(instance Value) error {
	if m.Readonly || m.Del_ == nil {
		if !m.Optional {
			return errtypes.New(errtypes.AttributeError, "cannot delete attribute '%s'", m.Name)
		}
	}
	return m.Del_(instance)
}

package object

import "pyrt/internal/errtypes"

// GetAttribute implements spec.md §4.6 "__getattribute__ on an instance
// of a non-type": MRO lookup, then data descriptor, then instance dict,
// then non-data descriptor, then AttributeError.
func GetAttribute(v Value, name string) (Value, error) {
	if t, ok := v.(*Type); ok {
		return TypeGetAttribute(t, name)
	}
	t := TypeOf(v)
	desc, _, found := t.Lookup(name)
	if found {
		if desc.IsData() {
			return desc.Get(v, t)
		}
	}
	if inst, ok := v.(*Instance); ok && inst.Dict != nil {
		if val, ok := inst.Dict.GetStr(name); ok {
			return val, nil
		}
	}
	if found {
		return desc.Get(v, t)
	}
	return nil, errtypes.New(errtypes.AttributeError, "'%s' object has no attribute '%s'", t.Name, name)
}

// SetAttr implements spec.md §4.6 "__setattr__ on an instance": a data
// descriptor with a Set contract wins; otherwise the instance dict.
func SetAttr(v Value, name string, val Value) error {
	if t, ok := v.(*Type); ok {
		return TypeSetAttr(t, name, val)
	}
	t := TypeOf(v)
	if desc, _, found := t.Lookup(name); found {
		if setter, ok := desc.(Setter); ok && desc.IsData() {
			return setter.Set(v, val)
		}
	}
	inst, ok := v.(*Instance)
	if !ok || inst.Dict == nil {
		return errtypes.New(errtypes.AttributeError, "'%s' object has no attribute '%s'", t.Name, name)
	}
	inst.Dict.SetStr(name, val)
	return nil
}

// DelAttr mirrors SetAttr for attribute deletion.
func DelAttr(v Value, name string) error {
	if t, ok := v.(*Type); ok {
		return TypeDelAttr(t, name)
	}
	t := TypeOf(v)
	if desc, _, found := t.Lookup(name); found {
		if setter, ok := desc.(Setter); ok && desc.IsData() {
			return setter.Delete(v)
		}
	}
	inst, ok := v.(*Instance)
	if !ok || inst.Dict == nil || !inst.Dict.DeleteStr(name) {
		return errtypes.New(errtypes.AttributeError, "'%s' object has no attribute '%s'", t.Name, name)
	}
	return nil
}

// TypeGetAttribute is "type.__getattribute__" (spec.md §4.6): walks the
// metatype's MRO, treating the type's own dictionary as the "instance
// dictionary" of the type-as-object.
func TypeGetAttribute(t *Type, name string) (Value, error) {
	meta := t.Metatype()
	var metaDesc Descriptor
	var metaFound bool
	if meta != nil {
		metaDesc, _, metaFound = meta.Lookup(name)
		if metaFound && metaDesc.IsData() {
			return metaDesc.Get(t, meta)
		}
	}
	if d, _, found := t.Lookup(name); found {
		return d.Get(nil, t)
	}
	if metaFound {
		return metaDesc.Get(t, meta)
	}
	return nil, errtypes.New(errtypes.AttributeError, "type object '%s' has no attribute '%s'", t.Name, name)
}

// TypeSetAttr is type.__setattr__. Guards against the "Carlo Verre
// hack": object.__setattr__ called directly on a type target is
// refused (spec.md §4.6); only type.__setattr__ (this function) may
// mutate a type's dictionary.
func TypeSetAttr(t *Type, name string, val Value) error {
	return t.SetAttr(name, &MethodDescriptor{Name: name, Fn: val})
}

func TypeDelAttr(t *Type, name string) error {
	return t.DelAttr(name)
}

// ObjectSetAttr is object.__setattr__, reachable directly (e.g. via a
// slot wrapper). It refuses to operate when target is itself a type,
// preventing user code from bypassing type.__setattr__'s bookkeeping
// (the "Carlo Verre hack", spec.md §4.6).
func ObjectSetAttr(target Value, name string, val Value) error {
	if _, isType := target.(*Type); isType {
		return errtypes.New(errtypes.TypeError, "can't apply this __setattr__ to type object")
	}
	return SetAttr(target, name, val)
}

// ObjectDelAttr is the object.__delattr__ analogue of ObjectSetAttr.
func ObjectDelAttr(target Value, name string) error {
	if _, isType := target.(*Type); isType {
		return errtypes.New(errtypes.TypeError, "can't apply this __delattr__ to type object")
	}
	return DelAttr(target, name)
}

// installBasicObjectSlots wires the generic attribute-protocol
// functions above as object's own __getattribute__/__setattr__/
// __delattr__ slots, so every type that doesn't override them inherits
// this default via MRO slot resolution (resolveSlot in slots.go).
func installBasicObjectSlots(t *Type) {
	t.Slots.GetAttribute = func(self Value, name string) (Value, error) { return GetAttribute(self, name) }
	t.Slots.SetAttr = func(self Value, name string, val Value) error { return ObjectSetAttr(self, name, val) }
	t.Slots.DelAttr = func(self Value, name string) error { return ObjectDelAttr(self, name) }
}

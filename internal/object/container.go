package object

import "fmt"

// Tuple is the immutable ordered carrier of the abstract "tuple" type.
type Tuple []Value

// List is the mutable ordered carrier of the abstract "list" type. It
// is always handled by pointer so in-place opcodes (STORE_SUBSCR on a
// list, list.append, ...) observe the same backing array as every other
// reference to the same list value.
type List struct {
	Items []Value
}

func NewList(items ...Value) *List {
	return &List{Items: append([]Value{}, items...)}
}

// Dict is the mutable carrier of the abstract "dict" type. Key order is
// insertion order (matching the language's iteration guarantee); Keys
// holds that order while Index maps a hashable key to its slot so
// lookup stays O(1). Only hashable carriers (Int, Float, Bool, Str,
// Bytes, Tuple of hashable values) may be used as keys; anything else
// fails the dict's own __hash__ slot before it ever reaches here.
type Dict struct {
	Keys   []Value
	Values []Value
	Index  map[interface{}]int
}

func NewDict() *Dict {
	return &Dict{Index: make(map[interface{}]int)}
}

// dictKey canonicalises a Value into a Go-comparable key suitable for
// Dict.Index. Carriers that are already Go-comparable (Int, Float,
// Bool, Str, NoneType) are used as-is; Bytes and Tuple are flattened
// into a comparable composite since Go slices aren't map-key-able.
func dictKey(v Value) interface{} {
	switch x := v.(type) {
	case Bytes:
		return "\x00bytes:" + string(x)
	case Tuple:
		key := "\x00tuple:"
		for _, e := range x {
			key += keyFragment(dictKey(e))
		}
		return key
	default:
		return x
	}
}

func keyFragment(k interface{}) string {
	switch v := k.(type) {
	case string:
		return v + "\x01"
	default:
		return fmt.Sprintf("%T:%v\x01", v, v)
	}
}

func (d *Dict) Get(k Value) (Value, bool) {
	idx, ok := d.Index[dictKey(k)]
	if !ok {
		return nil, false
	}
	return d.Values[idx], true
}

func (d *Dict) Set(k, v Value) {
	key := dictKey(k)
	if idx, ok := d.Index[key]; ok {
		d.Values[idx] = v
		return
	}
	d.Index[key] = len(d.Keys)
	d.Keys = append(d.Keys, k)
	d.Values = append(d.Values, v)
}

func (d *Dict) Delete(k Value) bool {
	key := dictKey(k)
	idx, ok := d.Index[key]
	if !ok {
		return false
	}
	d.Keys = append(d.Keys[:idx], d.Keys[idx+1:]...)
	d.Values = append(d.Values[:idx], d.Values[idx+1:]...)
	delete(d.Index, key)
	for k2, i := range d.Index {
		if i > idx {
			d.Index[k2] = i - 1
		}
	}
	return true
}

func (d *Dict) Len() int { return len(d.Keys) }

// SetStr is a convenience used throughout the frame evaluator for
// globals/locals namespaces, which are always string-keyed.
func (d *Dict) SetStr(name string, v Value) { d.Set(Str(name), v) }

func (d *Dict) GetStr(name string) (Value, bool) { return d.Get(Str(name)) }

func (d *Dict) DeleteStr(name string) bool { return d.Delete(Str(name)) }

// Set is the mutable carrier backing BUILD_SET (spec.md §4.9 "Builders").
// It reuses Dict's key canonicalisation so the same values hash equal
// whether they land in a dict or a set.
type Set struct {
	items []Value
	index map[interface{}]int
}

func NewSet(items ...Value) *Set {
	s := &Set{index: make(map[interface{}]int)}
	for _, v := range items {
		s.Add(v)
	}
	return s
}

func (s *Set) Add(v Value) {
	key := dictKey(v)
	if _, ok := s.index[key]; ok {
		return
	}
	s.index[key] = len(s.items)
	s.items = append(s.items, v)
}

func (s *Set) Contains(v Value) bool {
	_, ok := s.index[dictKey(v)]
	return ok
}

func (s *Set) Len() int { return len(s.items) }

func (s *Set) Items() []Value { return s.items }

// Slice is the carrier produced by BUILD_SLICE (spec.md §4.9 "Builders");
// each bound is None when the corresponding source operand was omitted.
type Slice struct {
	Start, Stop, Step Value
}

func NewSlice(start, stop, step Value) *Slice {
	return &Slice{Start: start, Stop: stop, Step: step}
}

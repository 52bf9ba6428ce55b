package object

import (
	"reflect"
	"sync"

	"pyrt/internal/errtypes"
)

// TypeFlags mirrors the mutable bits spec.md §3 lists on a type object.
type TypeFlags uint32

const (
	FlagMutable       TypeFlags = 1 << iota // type's own dict may be modified
	FlagBaseAllowed                         // may be subclassed
	FlagHasDict                             // instances carry an attribute dict
)

// Type is the abstract-type record of spec.md §3 "Type object".
type Type struct {
	Name    string
	Bases   []*Type
	MRO     []*Type
	Slots   *SlotTable
	Dict    map[string]Descriptor
	Flags   TypeFlags
	HasDict bool

	// Adopted is the ordered list of carrier (Go) classes this type
	// accepts as representations of its values; AdoptedSlots is the
	// parallel per-adoption slot vector (spec.md §4.1, §4.2 step 3).
	// Adopted[0]/AdoptedSlots[0] is the canonical implementation.
	Adopted      []reflect.Type
	AdoptedSlots []*SlotTable

	metatype *Type
	mu       sync.RWMutex
}

// Metatype returns the type of this type (spec.md invariant: the type
// of a type is the metatype, default Type object `type`).
func (t *Type) Metatype() *Type {
	if t.metatype == nil {
		return TypeType
	}
	return t.metatype
}

// Descriptor is anything storable in a type's dictionary that
// participates in the attribute protocol (spec.md §3 "Descriptor").
type Descriptor interface {
	// Get implements __get__(self, instance, owner); instance is nil
	// when accessed on the type itself.
	Get(instance Value, owner *Type) (Value, error)
	// IsData reports whether this descriptor defines a set/delete
	// contract; data descriptors override instance-dict entries.
	IsData() bool
}

// Setter is implemented by data descriptors (spec.md "data descriptor
// ... defines both get and set (or delete) contracts").
type Setter interface {
	Set(instance Value, val Value) error
	Delete(instance Value) error
}

// --- Type registry (spec.md §4.2) -----------------------------------

type registryEntry struct {
	typ           *Type
	adoptionIndex int
}

var registry = struct {
	mu        sync.RWMutex
	byCarrier map[reflect.Type]registryEntry
	byName    map[string]*Type
}{
	byCarrier: make(map[reflect.Type]registryEntry),
	byName:    make(map[string]*Type),
}

// TypeType and ObjectType are created first, breaking the "type of a
// type is the metatype" cycle by self-reference (spec.md §4.2).
var (
	TypeType   *Type
	ObjectType *Type
)

func init() {
	ObjectType = &Type{Name: "object", Slots: NewSlotTable(), Dict: map[string]Descriptor{}, Flags: FlagBaseAllowed}
	ObjectType.MRO = []*Type{ObjectType}

	TypeType = &Type{Name: "type", Slots: NewSlotTable(), Dict: map[string]Descriptor{}, Bases: []*Type{ObjectType}}
	TypeType.MRO = []*Type{TypeType, ObjectType}
	TypeType.metatype = TypeType // breaks the cycle: type(type) is type

	installBasicObjectSlots(ObjectType)
	registerCarrier(ObjectType, reflect.TypeOf((*Instance)(nil)), 0)
}

// NewType constructs and registers an abstract type from a
// specification: it allocates empty slot tables for the canonical and
// each adopted carrier, computes the MRO, and registers every carrier
// exclusively. It fills no slots.
//
// Slot population from host methods is the exposure system's job
// (package expose); NewType itself only wires the structural pieces a
// caller has already built, matching how the teacher's module loader
// separates "construct the container" from "populate it".
type TypeSpec struct {
	Name      string
	Bases     []*Type
	Canonical reflect.Type
	Adopted   []reflect.Type // additional adopted carrier classes, if any
	HasDict   bool
	Mutable   bool
}

func NewType(spec TypeSpec) (*Type, error) {
	if len(spec.Bases) == 0 {
		spec.Bases = []*Type{ObjectType}
	}
	t := &Type{
		Name:    spec.Name,
		Bases:   spec.Bases,
		Slots:   NewSlotTable(),
		Dict:    map[string]Descriptor{},
		HasDict: spec.HasDict,
	}
	if spec.Mutable {
		t.Flags |= FlagMutable
	}

	carriers := append([]reflect.Type{spec.Canonical}, spec.Adopted...)
	t.Adopted = carriers
	t.AdoptedSlots = make([]*SlotTable, len(carriers))
	t.AdoptedSlots[0] = t.Slots // canonical adoption shares the type's own table
	for i := 1; i < len(carriers); i++ {
		t.AdoptedSlots[i] = NewSlotTable()
	}

	mro, err := computeMRO(t)
	if err != nil {
		return nil, err
	}
	t.MRO = mro

	for i, c := range carriers {
		if err := registerCarrier(t, c, i); err != nil {
			return nil, err
		}
	}
	registry.mu.Lock()
	registry.byName[spec.Name] = t
	registry.mu.Unlock()
	return t, nil
}

func registerCarrier(t *Type, carrier reflect.Type, adoptionIndex int) error {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if existing, ok := registry.byCarrier[carrier]; ok && existing.typ != t {
		return errtypes.Fatal("carrier class %v already claimed by type %q", carrier, existing.typ.Name)
	}
	registry.byCarrier[carrier] = registryEntry{typ: t, adoptionIndex: adoptionIndex}
	return nil
}

// TypeOf returns the abstract type of v, consulting the carrier
// registry (spec.md §4.1 "the mapping from carrier class to type
// object... is immutable thereafter").
func TypeOf(v Value) *Type {
	if v == nil {
		return ObjectType
	}
	if inst, ok := v.(*Instance); ok {
		return inst.Typ
	}
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	if entry, ok := registry.byCarrier[reflect.TypeOf(v)]; ok {
		return entry.typ
	}
	return ObjectType
}

// AdoptionIndex returns which adopted carrier class v uses, for
// selecting the right per-adoption slot vector (spec.md "adopted slot
// vector").
func AdoptionIndex(v Value) int {
	if v == nil {
		return 0
	}
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	if entry, ok := registry.byCarrier[reflect.TypeOf(v)]; ok {
		return entry.adoptionIndex
	}
	return 0
}

// SlotsFor returns the slot vector that should be consulted for v:
// the canonical table for most values, or the per-adoption table when
// v is carried by a non-canonical adopted class (spec.md §4.1).
func SlotsFor(v Value) *SlotTable {
	t := TypeOf(v)
	idx := AdoptionIndex(v)
	if idx < len(t.AdoptedSlots) {
		return t.AdoptedSlots[idx]
	}
	return t.Slots
}

// LookupByName finds a previously registered type by name.
func LookupByName(name string) (*Type, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	t, ok := registry.byName[name]
	return t, ok
}

// --- MRO: C3 linearisation (spec.md §4.2 step 5) ---------------------

func computeMRO(t *Type) ([]*Type, error) {
	if len(t.Bases) == 0 {
		return []*Type{t}, nil
	}
	sequences := make([][]*Type, 0, len(t.Bases)+1)
	for _, b := range t.Bases {
		if len(b.MRO) == 0 {
			return nil, errtypes.Fatal("base %q has no computed MRO", b.Name)
		}
		sequences = append(sequences, append([]*Type{}, b.MRO...))
	}
	sequences = append(sequences, append([]*Type{}, t.Bases...))

	var merged []*Type
	for {
		sequences = dropEmpty(sequences)
		if len(sequences) == 0 {
			break
		}
		var head *Type
		for _, seq := range sequences {
			cand := seq[0]
			if !appearsInTail(cand, sequences) {
				head = cand
				break
			}
		}
		if head == nil {
			return nil, errtypes.Fatal("inconsistent MRO for type %q", t.Name)
		}
		merged = append(merged, head)
		for i, seq := range sequences {
			sequences[i] = removeFirstOccurrence(seq, head)
		}
	}
	return append([]*Type{t}, merged...), nil
}

func dropEmpty(seqs [][]*Type) [][]*Type {
	out := seqs[:0]
	for _, s := range seqs {
		if len(s) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func appearsInTail(cand *Type, seqs [][]*Type) bool {
	for _, seq := range seqs {
		for _, x := range seq[1:] {
			if x == cand {
				return true
			}
		}
	}
	return false
}

func removeFirstOccurrence(seq []*Type, x *Type) []*Type {
	if len(seq) > 0 && seq[0] == x {
		return seq[1:]
	}
	out := make([]*Type, 0, len(seq))
	for _, e := range seq {
		if e != x {
			out = append(out, e)
		}
	}
	return out
}

// Lookup walks t's MRO left-to-right and returns the first dictionary
// entry matching name (spec.md §4.2 "Lookup on a type").
func (t *Type) Lookup(name string) (Descriptor, *Type, bool) {
	for _, cls := range t.MRO {
		if d, ok := cls.Dict[name]; ok {
			return d, cls, true
		}
	}
	return nil, nil, false
}

// SetAttr installs name into the type's own dictionary. Only legal on
// mutable types (spec.md §4.2 "Type immutability is a flag").
func (t *Type) SetAttr(name string, d Descriptor) error {
	if t.Flags&FlagMutable == 0 {
		return errtypes.New(errtypes.TypeError, "cannot set attributes of built-in/immutable type '%s'", t.Name)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Dict[name] = d
	return nil
}

func (t *Type) DelAttr(name string) error {
	if t.Flags&FlagMutable == 0 {
		return errtypes.New(errtypes.TypeError, "cannot delete attributes of built-in/immutable type '%s'", t.Name)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.Dict[name]; !ok {
		return errtypes.New(errtypes.AttributeError, "type object '%s' has no attribute '%s'", t.Name, name)
	}
	delete(t.Dict, name)
	return nil
}

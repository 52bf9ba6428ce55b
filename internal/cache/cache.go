// Package cache implements per-call-site inline caches (spec.md §4.5):
// a guarded method-handle chain that specialises unary and binary
// operations on the carrier class(es) of the operands, falling back to
// the abstract operation API on a guard miss.
package cache

import (
	"reflect"

	"pyrt/internal/object"
	"pyrt/internal/ops"
)

// maxPolymorphicDepth bounds how many distinct guarded entries a site
// keeps before going megamorphic (spec.md §4.5 "implementation-defined,
// e.g. 8").
const maxPolymorphicDepth = 8

type siteState int

const (
	stateFresh siteState = iota
	stateMonomorphic
	statePolymorphic
	stateMegamorphic
)

// UnarySite is a self-specialising call site for a unary operator
// (e.g. UNARY_NEGATIVE).
type UnarySite struct {
	opName   string
	fallback func(object.Value) (object.Value, error)
	resolve  func(object.Value) object.UnaryOp

	state    siteState
	guards   []reflect.Type
	targets  []object.UnaryOp
	fallbackN int // counter of fallback invocations, for monomorphic-stickiness tests
}

func NewUnarySite(opName string, resolve func(object.Value) object.UnaryOp, fallback func(object.Value) (object.Value, error)) *UnarySite {
	return &UnarySite{opName: opName, resolve: resolve, fallback: fallback}
}

func (s *UnarySite) FallbackCount() int { return s.fallbackN }
func (s *UnarySite) State() string {
	return [...]string{"fresh", "monomorphic", "polymorphic", "megamorphic"}[s.state]
}

// Invoke runs the call site against v: a guard hit goes straight to the
// cached target; a guard miss falls back to the abstract operation API
// (package ops) and then specialises per the state machine in spec.md
// §4.5.
func (s *UnarySite) Invoke(v object.Value) (object.Value, error) {
	cls := reflect.TypeOf(v)
	for i, g := range s.guards {
		if g == cls {
			return s.targets[i](v)
		}
	}
	s.fallbackN++
	r, err := s.fallback(v)
	if s.state == stateMegamorphic {
		return r, err
	}
	handle := s.resolve(v)
	s.specialise(cls, handle)
	return r, err
}

func (s *UnarySite) specialise(cls reflect.Type, handle object.UnaryOp) {
	switch s.state {
	case stateFresh:
		s.guards, s.targets = []reflect.Type{cls}, []object.UnaryOp{handle}
		s.state = stateMonomorphic
	case stateMonomorphic, statePolymorphic:
		if len(s.guards) >= maxPolymorphicDepth {
			s.state = stateMegamorphic
			s.guards, s.targets = nil, nil
			return
		}
		s.guards = append(s.guards, cls)
		s.targets = append(s.targets, handle)
		if len(s.guards) > 1 {
			s.state = statePolymorphic
		}
	}
}

// BinarySite is a self-specialising call site for a binary operator
// (e.g. BINARY_ADD). It caches no handle: its guards record which
// (class(v), class(w)) pairs it has seen, which drives the state
// machine and the fallback counter, and both a guard hit and a miss
// dispatch through ops.Binary (spec.md §4.5 "Binary site").
type BinarySite struct {
	opSymbol string
	pair     object.BinarySlotPair

	state     siteState
	guards    [][2]reflect.Type
	fallbackN int
}

func NewBinarySite(opSymbol string, pair object.BinarySlotPair) *BinarySite {
	return &BinarySite{opSymbol: opSymbol, pair: pair}
}

func (s *BinarySite) FallbackCount() int { return s.fallbackN }
func (s *BinarySite) State() string {
	return [...]string{"fresh", "monomorphic", "polymorphic", "megamorphic"}[s.state]
}

// Invoke runs the call site against (v, w). The cache only remembers
// *which pairs of carrier classes are safe to re-enter the fast path
// for*; the actual dispatch still goes through ops.Binary so left/
// right/reflected precedence (spec.md §4.4) is never duplicated
// between the cache and the abstract operation API.
func (s *BinarySite) Invoke(v, w object.Value) (object.Value, error) {
	cv, cw := reflect.TypeOf(v), reflect.TypeOf(w)
	for _, g := range s.guards {
		if g[0] == cv && g[1] == cw {
			return ops.Binary(v, w, s.pair, s.opSymbol)
		}
	}
	s.fallbackN++
	r, err := ops.Binary(v, w, s.pair, s.opSymbol)
	if s.state != stateMegamorphic {
		s.specialise(cv, cw)
	}
	return r, err
}

func (s *BinarySite) specialise(cv, cw reflect.Type) {
	switch s.state {
	case stateFresh:
		s.guards = [][2]reflect.Type{{cv, cw}}
		s.state = stateMonomorphic
	case stateMonomorphic, statePolymorphic:
		if len(s.guards) >= maxPolymorphicDepth {
			s.state = stateMegamorphic
			s.guards = nil
			return
		}
		s.guards = append(s.guards, [2]reflect.Type{cv, cw})
		if len(s.guards) > 1 {
			s.state = statePolymorphic
		}
	}
}

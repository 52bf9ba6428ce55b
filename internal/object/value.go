// Package object implements the runtime object and type model: value
// carriers, the type registry, the slot system, the attribute and
// descriptor protocol, and the primitive carriers for every built-in
// abstract type (spec.md §3, §4.1-§4.3, §4.6).
package object

import (
	"math/big"
)

// Value is any runtime value. There is deliberately no common method
// set: carriers are plain Go types (an int64, a *big.Int, a Go string,
// a *Dict, ...) and the type of a value is discovered by consulting the
// registry (TypeOf), never by a type switch on Value itself. This is
// what lets one abstract type adopt more than one carrier class.
type Value interface{}

// Int is the native machine-word carrier for the abstract "int" type.
// Values that overflow int64 are promoted to BigInt; both are adopted
// implementations of the same Type (see IntType in builtin.go).
type Int int64

// BigInt is the arbitrary-precision carrier adopted by "int" once a
// value no longer fits in a native machine word.
type BigInt struct{ V *big.Int }

// Float is the sole carrier of the abstract "float" type (IEEE-754
// double, as produced directly by the marshal reader's binary float tag).
type Float float64

// Bool is the native boolean carrier. bool is a distinct Type whose MRO
// is [bool, int, object]: Bool values also satisfy every int slot via
// MRO-based slot inheritance, but bool keeps its own identity (its own
// Type, its own __repr__ producing "True"/"False").
type Bool bool

// Str is the BMP fast-path carrier for the abstract "str" type: every
// code point fits in a single UTF-16-ish rune cheaply represented by a
// Go string under the assumption the text is all Basic Multilingual
// Plane. StrWide is the adopted implementation for text containing
// non-BMP code points, carried as a rune slice so indexing stays O(1).
type Str string

// StrWide is the adopted "wide" carrier of the abstract "str" type.
type StrWide []rune

// Bytes is the sole carrier of the abstract "bytes" type.
type Bytes []byte

// NoneType is the carrier of the None singleton.
type NoneType struct{}

// NotImplementedType is the carrier of the NotImplemented singleton,
// returned by a binary slot to mean "I don't know how to do this,
// try the other operand" (spec.md §4.4).
type NotImplementedType struct{}

// None and NotImplemented are the two process-wide singletons; every
// comparison against them is by identity (==), never by value.
var (
	None          Value = NoneType{}
	NotImplemented Value = NotImplementedType{}
)

// IsNone reports whether v is the None singleton.
func IsNone(v Value) bool {
	_, ok := v.(NoneType)
	return ok
}

// IsNotImplemented reports whether v is the NotImplemented singleton.
func IsNotImplemented(v Value) bool {
	_, ok := v.(NotImplementedType)
	return ok
}

// Cell is the one-slot mutable container shared between an enclosing
// function's frame and the inner function(s) that close over a given
// variable (spec.md §3 "Cell"). Its lifetime is kept alive by whichever
// frame or Function still references it; Go's GC handles the resulting
// reference cycles between functions and their own cells.
type Cell struct {
	Value Value
	set   bool
}

func NewCell(v Value) *Cell { return &Cell{Value: v, set: true} }

// EmptyCell creates an unbound cell (spec.md freevars that have not yet
// been assigned, e.g. a recursive closure's own name).
func EmptyCell() *Cell { return &Cell{} }

func (c *Cell) Get() (Value, bool) { return c.Value, c.set }

func (c *Cell) Set(v Value) {
	c.Value = v
	c.set = true
}

func (c *Cell) Clear() {
	c.Value = nil
	c.set = false
}

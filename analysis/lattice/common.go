// Package lattice implements the abstract domains underlying the analysis:
// initialization status, overflow flags, taint origins, location sets,
// intervals, dataflow traces and their product, the abstract value.
// Abstract memories bind locations to abstract values, and procedure
// summaries pair an abstract memory with a set of reportable conditions.
//
// All elements are persistent. Binary operations dynamically check that
// both operands inhabit the same lattice.
package lattice

import (
	"errors"
	"fmt"

	"github.com/cs-au-dk/cat/utils"

	"github.com/fatih/color"
)

var colorize = struct {
	Lattice func(...interface{}) string
	Element func(...interface{}) string
	Const   func(...interface{}) string
	Key     func(...interface{}) string
	Attr    func(...interface{}) string
	Field   func(...interface{}) string
}{
	Lattice: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgHiBlue).SprintFunc())(is...)
	},
	Element: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgCyan).SprintFunc())(is...)
	},
	Const: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgHiWhite).SprintFunc())(is...)
	},
	Key: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgYellow).SprintFunc())(is...)
	},
	Attr: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgHiRed).SprintFunc())(is...)
	},
	Field: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgGreen).SprintFunc())(is...)
	},
}

var (
	errUnsupportedTypeConversion = errors.New("UnsupportedTypeConversion")
	errUnsupportedOperation      = errors.New("UnsupportedOperationError")
	errInternal                  = errors.New("internal error")
	errPatternMatch              = func(v interface{}) error {
		return fmt.Errorf("invalid pattern match: %v %T", v, v)
	}
)

type Element interface {
	// Type conversion API
	AbstractValue() AbstractValue
	Conditions() Conditions
	Initialization() Initialization
	Interval() Interval
	LocSet() LocSet
	Memory() Memory
	Overflow() Overflow
	Summary() Summary
	Taint() Taint
	Traces() Traces

	Lattice() Lattice

	// External API for lattice element operations.
	// They dynamically perform lattice type checking.
	Leq(Element) bool
	Geq(Element) bool
	Eq(Element) bool
	Join(Element) Element
	Meet(Element) Element

	// Internal lattice element operations, that skip
	// lattice type checking. Only use under the
	// assumption of lattice type safety.
	leq(Element) bool
	geq(Element) bool
	eq(Element) bool
	join(Element) Element
	meet(Element) Element

	// Representational components
	String() string
	// Encodes the distance from the bottom of the lattice
	// to the element that calls this method.
	Height() int
}

type element struct {
	lattice Lattice
}

func (e element) Lattice() Lattice {
	return e.lattice
}

func (element) AbstractValue() AbstractValue {
	panic(errUnsupportedTypeConversion)
}

func (element) Conditions() Conditions {
	panic(errUnsupportedTypeConversion)
}

func (element) Initialization() Initialization {
	panic(errUnsupportedTypeConversion)
}

func (element) Interval() Interval {
	panic(errUnsupportedTypeConversion)
}

func (element) LocSet() LocSet {
	panic(errUnsupportedTypeConversion)
}

func (element) Memory() Memory {
	panic(errUnsupportedTypeConversion)
}

func (element) Overflow() Overflow {
	panic(errUnsupportedTypeConversion)
}

func (element) Summary() Summary {
	panic(errUnsupportedTypeConversion)
}

func (element) Taint() Taint {
	panic(errUnsupportedTypeConversion)
}

func (element) Traces() Traces {
	panic(errUnsupportedTypeConversion)
}

func (element) Height() int {
	panic(errUnsupportedOperation)
}

package lattice

import (
	"log"
)

// Lattice is implemented by all abstract domains of the analysis.
type Lattice interface {
	Top() Element
	Bot() Element

	String() string
	Eq(Lattice) bool

	// These methods allow for quick type conversions.
	// Suitable, if you know what lattice type to expect.
	AbstractValue() *AbstractValueLattice
	Conditions() *ConditionsLattice
	Initialization() *InitializationLattice
	Interval() *IntervalLattice
	LocSet() *LocSetLattice
	Memory() *MemoryLattice
	Overflow() *OverflowLattice
	Summary() *SummaryLattice
	Taint() *TaintLattice
	Traces() *TracesLattice
}

type lattice struct{}

func (*lattice) AbstractValue() *AbstractValueLattice {
	panic(errUnsupportedTypeConversion)
}

func (*lattice) Conditions() *ConditionsLattice {
	panic(errUnsupportedTypeConversion)
}

func (*lattice) Initialization() *InitializationLattice {
	panic(errUnsupportedTypeConversion)
}

func (*lattice) Interval() *IntervalLattice {
	panic(errUnsupportedTypeConversion)
}

func (*lattice) LocSet() *LocSetLattice {
	panic(errUnsupportedTypeConversion)
}

func (*lattice) Memory() *MemoryLattice {
	panic(errUnsupportedTypeConversion)
}

func (*lattice) Overflow() *OverflowLattice {
	panic(errUnsupportedTypeConversion)
}

func (*lattice) Summary() *SummaryLattice {
	panic(errUnsupportedTypeConversion)
}

func (*lattice) Taint() *TaintLattice {
	panic(errUnsupportedTypeConversion)
}

func (*lattice) Traces() *TracesLattice {
	panic(errUnsupportedTypeConversion)
}

// Allows us to delay expensive stringification calls
func checkLatticeMatchThunked(l1, l2 Lattice, thunk func() string) {
	if !l1.Eq(l2) {
		log.Fatal(
			"Lattice error - Invalid", thunk(),
			"\nOperand 1 ∈\n",
			l1.String(),
			"\nOperand 2 ∈\n",
			l2.String(),
		)
	}
}

func checkLatticeMatch(l1, l2 Lattice, binop string) {
	if !l1.Eq(l2) {
		log.Fatal(
			"Lattice error - Invalid", binop,
			"\nOperand 1 ∈\n",
			l1.String(),
			"\nOperand 2 ∈\n",
			l2.String(),
		)
	}
}

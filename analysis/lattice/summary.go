package lattice

import (
	i "github.com/cs-au-dk/cat/utils/indenter"
)

// SummaryLattice is the product lattice of an abstract memory and a
// condition set. Its elements capture the behavior of one procedure:
// the memory effect of executing it and the proof obligations it
// generates.
type SummaryLattice struct {
	lattice
}

// summaryLattice is a singleton instantiation of the summary lattice.
var summaryLattice = &SummaryLattice{}

// Summary yields the summary lattice.
func (latticeFactory) Summary() *SummaryLattice {
	return summaryLattice
}

func (*SummaryLattice) Top() Element {
	panic(errUnsupportedOperation)
}

func (l *SummaryLattice) Bot() Element {
	return Summary{
		element: element{summaryLattice},
		mem:     memoryLattice.Bot().Memory(),
		conds:   condsLattice.Bot().Conditions(),
	}
}

func (*SummaryLattice) String() string {
	return colorize.Lattice("Summary")
}

// Eq checks for equality with another lattice.
func (l1 *SummaryLattice) Eq(l2 Lattice) bool {
	_, ok := l2.(*SummaryLattice)
	return ok
}

// Summary safely converts to the summary lattice.
func (l *SummaryLattice) Summary() *SummaryLattice {
	return l
}

// Summary is a member of the summary lattice.
type Summary struct {
	element
	mem   Memory
	conds Conditions
}

// Summary constructs a summary from its components.
func (elementFactory) Summary(mem Memory, conds Conditions) Summary {
	return Summary{
		element: element{summaryLattice},
		mem:     mem,
		conds:   conds,
	}
}

// Memory retrieves the memory component.
func (s Summary) Memory() Memory {
	return s.mem
}

// Conditions retrieves the condition set component.
func (s Summary) Conditions() Conditions {
	return s.conds
}

// UpdateMemory recomputes the summary with the given memory.
func (s Summary) UpdateMemory(mem Memory) Summary {
	s.mem = mem
	return s
}

// UpdateConditions recomputes the summary with the given condition set.
func (s Summary) UpdateConditions(conds Conditions) Summary {
	s.conds = conds
	return s
}

// Widen replaces the previous iterate wholesale. Summaries converge
// through the joins performed on their components while the procedure
// body is reanalyzed, so the newest iterate subsumes the old one.
func (s Summary) Widen(prev Summary) Summary {
	return s
}

func (s Summary) String() string {
	return i.Indenter().Start("Summary {").NestStrings(
		s.mem.String(),
		colorize.Field("Conditions")+": "+s.conds.String(),
	).End("}")
}

// Height is the sum of the component heights.
func (s Summary) Height() int {
	return s.mem.Size() + s.conds.Height()
}

// Leq computes s ⊑ o. Performs lattice dynamic type checking.
func (s Summary) Leq(o Element) bool {
	checkLatticeMatch(s.Lattice(), o.Lattice(), "⊑")
	return s.leq(o)
}

// leq computes s ⊑ o componentwise.
func (s Summary) leq(o Element) bool {
	switch o := o.(type) {
	case Summary:
		return s.mem.leq(o.mem) && s.conds.leq(o.conds)
	default:
		panic(errPatternMatch(o))
	}
}

// Geq computes s ⊒ o. Performs lattice dynamic type checking.
func (s Summary) Geq(o Element) bool {
	checkLatticeMatch(s.Lattice(), o.Lattice(), "⊒")
	return s.geq(o)
}

// geq computes s ⊒ o.
func (s Summary) geq(o Element) bool {
	switch o := o.(type) {
	case Summary:
		return o.leq(s)
	default:
		panic(errPatternMatch(o))
	}
}

// Eq computes s = o. Performs lattice dynamic type checking.
func (s Summary) Eq(o Element) bool {
	checkLatticeMatch(s.Lattice(), o.Lattice(), "=")
	return s.eq(o)
}

// eq computes s = o componentwise.
func (s Summary) eq(o Element) bool {
	switch o := o.(type) {
	case Summary:
		return s.mem.eq(o.mem) && s.conds.eq(o.conds)
	default:
		panic(errPatternMatch(o))
	}
}

// Join computes s ⊔ o. Performs lattice dynamic type checking.
func (s Summary) Join(o Element) Element {
	checkLatticeMatch(s.Lattice(), o.Lattice(), "⊔")
	return s.join(o)
}

// join computes s ⊔ o.
func (s Summary) join(o Element) Element {
	switch o := o.(type) {
	case Summary:
		return s.MonoJoin(o)
	default:
		panic(errPatternMatch(o))
	}
}

// MonoJoin is a monomorphic variant of s ⊔ o for summaries.
func (s Summary) MonoJoin(o Summary) Summary {
	s.mem = s.mem.MonoJoin(o.mem)
	s.conds = s.conds.MonoJoin(o.conds)
	return s
}

// Meet computes s ⊓ o.
func (s Summary) Meet(o Element) Element {
	panic(errUnsupportedOperation)
}

func (s Summary) meet(o Element) Element {
	panic(errUnsupportedOperation)
}

// Summary safely converts to a summary.
func (s Summary) Summary() Summary {
	return s
}

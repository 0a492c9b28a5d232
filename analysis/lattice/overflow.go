package lattice

// OverflowLattice is the two-point lattice recording whether an integer
// value may have wrapped around during arithmetic on attacker-controlled
// operands.
//
//	may-ovf
//	   |
//	no-ovf
type OverflowLattice struct {
	lattice
}

// overflowLattice is a singleton instantiation of the overflow lattice.
var overflowLattice = &OverflowLattice{}

// Overflow yields the overflow lattice.
func (latticeFactory) Overflow() *OverflowLattice {
	return overflowLattice
}

func (*OverflowLattice) Top() Element {
	return _MAY_OVF
}

func (*OverflowLattice) Bot() Element {
	return _NO_OVF
}

// Eq checks for equality with another lattice.
func (l1 *OverflowLattice) Eq(l2 Lattice) bool {
	_, ok := l2.(*OverflowLattice)
	return ok
}

func (*OverflowLattice) String() string {
	return colorize.Lattice("Overflow")
}

// Overflow safely converts to the overflow lattice.
func (l *OverflowLattice) Overflow() *OverflowLattice {
	return l
}

// Overflow is a member of the two-point overflow lattice.
// The ⊥ element is the absence of overflow.
type Overflow bool

const (
	_NO_OVF  Overflow = false
	_MAY_OVF Overflow = true
)

// Lattice retrieves the overflow lattice for any overflow element.
func (Overflow) Lattice() Lattice {
	return overflowLattice
}

func (e Overflow) String() string {
	if e {
		return colorize.Attr("may-ovf")
	}
	return colorize.Const("no-ovf")
}

// Height returns the distance of the element to ⊥.
func (e Overflow) Height() int {
	if e {
		return 1
	}
	return 0
}

// MayOverflow checks whether the value may have wrapped around.
func (e Overflow) MayOverflow() bool {
	return bool(e)
}

// Leq computes e1 ⊑ e2. Performs lattice dynamic type checking.
func (e1 Overflow) Leq(e2 Element) bool {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊑")
	return e1.leq(e2)
}

// leq computes e1 ⊑ e2.
func (e1 Overflow) leq(e2 Element) bool {
	switch e2 := e2.(type) {
	case Overflow:
		return !bool(e1) || bool(e2)
	default:
		panic(errPatternMatch(e2))
	}
}

// Geq computes e1 ⊒ e2. Performs lattice dynamic type checking.
func (e1 Overflow) Geq(e2 Element) bool {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊒")
	return e1.geq(e2)
}

// geq computes e1 ⊒ e2.
func (e1 Overflow) geq(e2 Element) bool {
	switch e2 := e2.(type) {
	case Overflow:
		return bool(e1) || !bool(e2)
	default:
		panic(errPatternMatch(e2))
	}
}

// Eq computes e1 = e2. Performs lattice dynamic type checking.
func (e1 Overflow) Eq(e2 Element) bool {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "=")
	return e1.eq(e2)
}

// eq computes e1 = e2.
func (e1 Overflow) eq(e2 Element) bool {
	switch e2 := e2.(type) {
	case Overflow:
		return e1 == e2
	default:
		panic(errPatternMatch(e2))
	}
}

// Join computes e1 ⊔ e2. Performs lattice dynamic type checking.
func (e1 Overflow) Join(e2 Element) Element {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊔")
	return e1.join(e2)
}

// join computes e1 ⊔ e2.
func (e1 Overflow) join(e2 Element) Element {
	switch e2 := e2.(type) {
	case Overflow:
		return e1.MonoJoin(e2)
	default:
		panic(errPatternMatch(e2))
	}
}

// MonoJoin is a monomorphic variant of e1 ⊔ e2 for overflow elements.
func (e1 Overflow) MonoJoin(e2 Overflow) Overflow {
	return e1 || e2
}

// Meet computes e1 ⊓ e2. Performs lattice dynamic type checking.
func (e1 Overflow) Meet(e2 Element) Element {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊓")
	return e1.meet(e2)
}

// meet computes e1 ⊓ e2.
func (e1 Overflow) meet(e2 Element) Element {
	switch e2 := e2.(type) {
	case Overflow:
		return e1 && e2
	default:
		panic(errPatternMatch(e2))
	}
}

// Overflow safely converts to an overflow element.
func (e Overflow) Overflow() Overflow {
	return e
}

func (Overflow) AbstractValue() AbstractValue {
	panic(errUnsupportedTypeConversion)
}

func (Overflow) Conditions() Conditions {
	panic(errUnsupportedTypeConversion)
}

func (Overflow) Initialization() Initialization {
	panic(errUnsupportedTypeConversion)
}

func (Overflow) Interval() Interval {
	panic(errUnsupportedTypeConversion)
}

func (Overflow) LocSet() LocSet {
	panic(errUnsupportedTypeConversion)
}

func (Overflow) Memory() Memory {
	panic(errUnsupportedTypeConversion)
}

func (Overflow) Summary() Summary {
	panic(errUnsupportedTypeConversion)
}

func (Overflow) Taint() Taint {
	panic(errUnsupportedTypeConversion)
}

func (Overflow) Traces() Traces {
	panic(errUnsupportedTypeConversion)
}

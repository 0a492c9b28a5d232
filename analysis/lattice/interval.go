package lattice

import (
	"fmt"
	"math"
)

// Interval is a member of the interval lattice, consisting of two
// interval bounds, `low` and `high`.
type Interval struct {
	element
	low  IntervalBound
	high IntervalBound
}

// Interval creates an interval with possibly infinite bounds.
func (elementFactory) Interval(low IntervalBound, high IntervalBound) Interval {
	return Interval{low: low, high: high}
}

// IntervalFinite creates an interval with finite bounds.
func (elementFactory) IntervalFinite(low int, high int) Interval {
	return Interval{
		low:  FiniteBound(low),
		high: FiniteBound(high),
	}
}

// IntervalConst creates a singleton interval [c, c].
func (elementFactory) IntervalConst(c int) Interval {
	return Interval{
		low:  FiniteBound(c),
		high: FiniteBound(c),
	}
}

// Lattice retrieves the interval lattice for any interval.
func (Interval) Lattice() Lattice {
	return intervalLattice
}

func (e Interval) String() string {
	_, low := e.low.(PlusInfinity)
	_, high := e.high.(MinusInfinity)
	if low && high {
		return colorize.Element("⊥")
	}
	return "[" + e.low.String() + ", " + e.high.String() + "]"
}

// Height returns the height of the interval in the interval lattice,
// computed as the difference between the high and low bounds if both
// are finite, or -1 otherwise.
func (e Interval) Height() int {
	l, lok := e.low.(FiniteBound)
	h, hok := e.high.(FiniteBound)
	if !(lok && hok) {
		return -1
	}
	return int(math.Max(0, float64(h-l)))
}

// Interval safely converts an interval.
func (e Interval) Interval() Interval {
	return e
}

// IsBot checks that the interval is equal to ⊥ = [∞, -∞].
func (e Interval) IsBot() bool {
	return e == intervalLattice.Bot().Interval()
}

// IsTop checks that the interval is equal to ⊤ = [-∞, ∞].
func (e Interval) IsTop() bool {
	return e == intervalLattice.Top().Interval()
}

// Eq computes e1 = e2. Performs lattice dynamic type checking.
func (e1 Interval) Eq(e2 Element) bool {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "=")
	return e1.eq(e2)
}

// eq computes e1 = e2.
func (e1 Interval) eq(e2 Element) bool {
	return e1.leq(e2) && e1.geq(e2)
}

// Leq computes e1 ⊑ e2. Performs lattice dynamic type checking.
func (e1 Interval) Leq(e2 Element) bool {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊑")
	return e1.leq(e2)
}

// leq computes e1 ⊑ e2.
func (e1 Interval) leq(e2 Element) bool {
	switch e2 := e2.(type) {
	case Interval:
		return e1.low.Geq(e2.low) && e1.high.Leq(e2.high)
	default:
		panic(errPatternMatch(e2))
	}
}

// Geq computes e1 ⊒ e2. Performs lattice dynamic type checking.
func (e1 Interval) Geq(e2 Element) bool {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊒")
	return e1.geq(e2)
}

// geq computes e1 ⊒ e2.
func (e1 Interval) geq(e2 Element) bool {
	switch e2 := e2.(type) {
	case Interval:
		return e1.low.Leq(e2.low) && e1.high.Geq(e2.high)
	default:
		panic(errPatternMatch(e2))
	}
}

// Join computes e1 ⊔ e2. Performs lattice dynamic type checking.
func (e1 Interval) Join(e2 Element) Element {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊔")
	return e1.join(e2)
}

// join computes e1 ⊔ e2.
func (e1 Interval) join(e2 Element) Element {
	switch e2 := e2.(type) {
	case Interval:
		return e1.MonoJoin(e2)
	default:
		panic(errPatternMatch(e2))
	}
}

// MonoJoin is a monomorphic variant of e1 ⊔ e2 for intervals.
// The resulting interval takes the lowest of the lower bounds,
// and the highest of the upper bounds.
func (e1 Interval) MonoJoin(e2 Interval) Interval {
	return Interval{
		low:  e1.low.Min(e2.low),
		high: e1.high.Max(e2.high),
	}
}

// Meet computes e1 ⊓ e2. Performs lattice dynamic type checking.
func (e1 Interval) Meet(e2 Element) Element {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊓")
	return e1.meet(e2)
}

// meet computes e1 ⊓ e2.
func (e1 Interval) meet(e2 Element) Element {
	switch e2 := e2.(type) {
	case Interval:
		if e1.high.Lt(e2.low) || e2.high.Lt(e1.low) {
			return e1.Lattice().Bot()
		}
		return Interval{
			low:  e1.low.Max(e2.low),
			high: e1.high.Min(e2.high),
		}
	default:
		panic(errPatternMatch(e2))
	}
}

// Widen extrapolates unstable bounds of the next iterate `e2` relative
// to the previous iterate `e1`. A sinking lower bound drops to -∞ and a
// rising upper bound jumps to ∞, ensuring chains stabilize.
func (e1 Interval) Widen(e2 Interval) Interval {
	if e1.IsBot() {
		return e2
	}
	if e2.IsBot() {
		return e1
	}
	low, high := e1.low, e1.high
	if e2.low.Lt(e1.low) {
		low = MinusInfinity{}
	}
	if e2.high.Gt(e1.high) {
		high = PlusInfinity{}
	}
	return Interval{low: low, high: high}
}

// Plus computes the interval of sums of members of e1 and e2.
func (e1 Interval) Plus(e2 Interval) Interval {
	if e1.IsBot() || e2.IsBot() {
		return intervalLattice.Bot().Interval()
	}
	return Interval{
		low:  e1.low.Plus(e2.low),
		high: e1.high.Plus(e2.high),
	}
}

// Minus computes the interval of differences of members of e1 and e2.
func (e1 Interval) Minus(e2 Interval) Interval {
	if e1.IsBot() || e2.IsBot() {
		return intervalLattice.Bot().Interval()
	}
	return Interval{
		low:  e1.low.Minus(e2.high),
		high: e1.high.Minus(e2.low),
	}
}

// multBound multiplies two interval bounds, resolving the products that
// the bound algebra leaves undefined: any product with 0 is 0, and
// opposite-signed infinities multiply to -∞.
func multBound(b1, b2 IntervalBound) IntervalBound {
	if b1.Eq(FiniteBound(0)) || b2.Eq(FiniteBound(0)) {
		return FiniteBound(0)
	}
	if b1.IsInfinite() && b2.IsInfinite() {
		if b1.Eq(b2) {
			return PlusInfinity{}
		}
		return MinusInfinity{}
	}
	return b1.Mult(b2)
}

// Mult computes the interval of products of members of e1 and e2.
func (e1 Interval) Mult(e2 Interval) Interval {
	if e1.IsBot() || e2.IsBot() {
		return intervalLattice.Bot().Interval()
	}
	candidates := [4]IntervalBound{
		multBound(e1.low, e2.low),
		multBound(e1.low, e2.high),
		multBound(e1.high, e2.low),
		multBound(e1.high, e2.high),
	}
	low, high := candidates[0], candidates[0]
	for _, c := range candidates[1:] {
		low = low.Min(c)
		high = high.Max(c)
	}
	return Interval{low: low, high: high}
}

// Contains checks whether the integer n is a member of the interval.
func (e Interval) Contains(n int) bool {
	return e.low.Leq(FiniteBound(n)) && e.high.Geq(FiniteBound(n))
}

// MayExceed checks whether some member of the interval is strictly
// greater than n.
func (e Interval) MayExceed(n int) bool {
	return e.high.Gt(FiniteBound(n))
}

// Bounds unpacks the raw interval bounds.
func (i Interval) Bounds() (low, high IntervalBound) {
	return i.low, i.high
}

// GetFiniteBounds unpacks the interval bounds, if finite, and panics otherwise.
func (i Interval) GetFiniteBounds() (int, int) {
	if i.low.IsInfinite() || i.high.IsInfinite() {
		panic(fmt.Sprintf("Interval %s does not have finite bounds", i))
	}
	return (int)(i.low.(FiniteBound)), (int)(i.high.(FiniteBound))
}

// Low returns the lower bound as an integer, if finite, and panics otherwise.
func (i Interval) Low() int {
	if i.low.IsInfinite() {
		panic(fmt.Sprintf("Interval %s does not have finite lower bound", i))
	}
	return (int)(i.low.(FiniteBound))
}

// High returns the upper bound as an integer, if finite, and panics otherwise.
func (i Interval) High() int {
	if i.high.IsInfinite() {
		panic(fmt.Sprintf("Interval %s does not have finite upper bound", i))
	}
	return (int)(i.high.(FiniteBound))
}

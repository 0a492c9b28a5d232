package lattice

import (
	"strings"

	"github.com/cs-au-dk/cat/analysis/cir"
	loc "github.com/cs-au-dk/cat/analysis/location"
)

// AbstractValueLattice is the product lattice of the value components:
// location set, initialization status, overflow flag, taint and traces.
type AbstractValueLattice struct {
	lattice
}

// valueLattice is a singleton instantiation of the abstract value lattice.
var valueLattice = &AbstractValueLattice{}

// AbstractValue yields the abstract value lattice.
func (latticeFactory) AbstractValue() *AbstractValueLattice {
	return valueLattice
}

func (*AbstractValueLattice) Top() Element {
	panic(errUnsupportedOperation)
}

func (l *AbstractValueLattice) Bot() Element {
	return AbstractValue{
		element: element{valueLattice},
		locs:    locSetLattice.Bot().LocSet(),
		init:    _INIT_BOT,
		ovf:     _NO_OVF,
		taint:   taintLattice.Bot().Taint(),
		traces:  tracesLattice.Bot().Traces(),
	}
}

func (*AbstractValueLattice) String() string {
	return colorize.Lattice("Value")
}

// Eq checks for equality with another lattice.
func (l1 *AbstractValueLattice) Eq(l2 Lattice) bool {
	_, ok := l2.(*AbstractValueLattice)
	return ok
}

// AbstractValue safely converts to the abstract value lattice.
func (l *AbstractValueLattice) AbstractValue() *AbstractValueLattice {
	return l
}

// AbstractValue is a member of the abstract value lattice. Every
// component evolves independently under join. The traces component is
// advisory: it is carried along and joined, but does not participate
// in the partial order, so fixpoints stabilize on the other components.
type AbstractValue struct {
	element
	locs   LocSet
	init   Initialization
	ovf    Overflow
	taint  Taint
	traces Traces
}

// AbstractPointer constructs an initialized abstract value holding the
// given location set.
func (elementFactory) AbstractPointer(ls LocSet) AbstractValue {
	v := Consts().BotValue()
	v.locs = ls
	v.init = _INIT_INITIALIZED
	return v
}

// AbstractPointerV is a variadic variant of AbstractPointer.
func (ef elementFactory) AbstractPointerV(locs ...loc.LocWithIdx) AbstractValue {
	return ef.AbstractPointer(ef.LocSet(locs...))
}

// AbstractBasic constructs an initialized, untainted scalar value.
func (elementFactory) AbstractBasic() AbstractValue {
	v := Consts().BotValue()
	v.init = _INIT_INITIALIZED
	return v
}

// AbstractInit constructs a value carrying only an initialization status.
func (elementFactory) AbstractInit(init Initialization) AbstractValue {
	v := Consts().BotValue()
	v.init = init
	return v
}

// AbstractTainted constructs an initialized value tainted by the given
// input origin.
func (ef elementFactory) AbstractTainted(src TaintSource) AbstractValue {
	v := ef.AbstractBasic()
	v.taint = v.taint.AddSource(src)
	return v
}

// AbstractSymbolic constructs an initialized value whose provenance
// depends on the given parameter.
func (ef elementFactory) AbstractSymbolic(sp loc.SymbolicParam) AbstractValue {
	v := ef.AbstractBasic()
	v.taint = v.taint.AddSymbolic(sp)
	return v
}

// AbstractStringLit constructs the value of a string literal: an
// initialized pointer to the literal's read-only storage.
func (ef elementFactory) AbstractStringLit(lit string, pos cir.Pos) AbstractValue {
	return ef.AbstractPointerV(loc.FromLocation(loc.NewStringLitLocation(lit, pos)))
}

// PointerValue retrieves the location set component.
func (v AbstractValue) PointerValue() LocSet {
	return v.locs
}

// InitValue retrieves the initialization component.
func (v AbstractValue) InitValue() Initialization {
	return v.init
}

// OvfValue retrieves the overflow component.
func (v AbstractValue) OvfValue() Overflow {
	return v.ovf
}

// TaintValue retrieves the taint component.
func (v AbstractValue) TaintValue() Taint {
	return v.taint
}

// TraceValue retrieves the traces component.
func (v AbstractValue) TraceValue() Traces {
	return v.traces
}

// UpdatePointer recomputes the value with the given location set.
func (v AbstractValue) UpdatePointer(ls LocSet) AbstractValue {
	v.locs = ls
	return v
}

// UpdateInit recomputes the value with the given initialization status.
func (v AbstractValue) UpdateInit(init Initialization) AbstractValue {
	v.init = init
	return v
}

// UpdateOvf recomputes the value with the given overflow flag.
func (v AbstractValue) UpdateOvf(ovf Overflow) AbstractValue {
	v.ovf = ovf
	return v
}

// UpdateTaint recomputes the value with the given taint.
func (v AbstractValue) UpdateTaint(t Taint) AbstractValue {
	v.taint = t
	return v
}

// UpdateTraces recomputes the value with the given trace set.
func (v AbstractValue) UpdateTraces(t Traces) AbstractValue {
	v.traces = t
	return v
}

// InjectTaint recomputes the value with the origins of `t` included.
func (v AbstractValue) InjectTaint(t Taint) AbstractValue {
	v.taint = v.taint.MonoJoin(t)
	return v
}

// AppendTrace extends all carried traces with the given element.
func (v AbstractValue) AppendTrace(el TraceElem) AbstractValue {
	v.traces = v.traces.Append(el)
	return v
}

// IsBot checks whether all components sit at the bottom of their lattices.
// Traces are disregarded.
func (v AbstractValue) IsBot() bool {
	return v.locs.Empty() &&
		v.init == _INIT_BOT &&
		v.ovf == _NO_OVF &&
		v.taint.IsBot()
}

// IsTainted checks whether the taint component carries a concrete origin.
func (v AbstractValue) IsTainted() bool {
	return v.taint.IsTainted()
}

// IsSymbolic checks whether the taint component carries a symbolic origin.
func (v AbstractValue) IsSymbolic() bool {
	return v.taint.IsSymbolic()
}

// MayBeUninit checks whether some execution may read this value before
// it was written.
func (v AbstractValue) MayBeUninit() bool {
	return v.init.MayBeUninit()
}

// Height is the sum of the component heights.
func (v AbstractValue) Height() int {
	return v.locs.Height() + v.init.Height() + v.ovf.Height() +
		v.taint.Height() + v.traces.Height()
}

func (v AbstractValue) String() string {
	if v.IsBot() && v.traces.Empty() {
		return colorize.Element("⊥")
	}

	parts := []string{v.init.String()}
	if v.ovf.MayOverflow() {
		parts = append(parts, v.ovf.String())
	}
	if !v.locs.Empty() {
		parts = append(parts, colorize.Field("locs")+": "+v.locs.String())
	}
	if !v.taint.IsBot() {
		parts = append(parts, colorize.Field("taint")+": "+v.taint.String())
	}
	if !v.traces.Empty() {
		parts = append(parts, colorize.Field("traces")+": "+v.traces.String())
	}

	return "⟨" + strings.Join(parts, ", ") + "⟩"
}

// Leq computes v ⊑ o. Performs lattice dynamic type checking.
func (v AbstractValue) Leq(o Element) bool {
	checkLatticeMatch(v.Lattice(), o.Lattice(), "⊑")
	return v.leq(o)
}

// leq computes v ⊑ o componentwise, disregarding traces.
func (v AbstractValue) leq(o Element) bool {
	switch o := o.(type) {
	case AbstractValue:
		return v.locs.leq(o.locs) &&
			v.init.leq(o.init) &&
			v.ovf.leq(o.ovf) &&
			v.taint.leq(o.taint)
	default:
		panic(errPatternMatch(o))
	}
}

// Geq computes v ⊒ o. Performs lattice dynamic type checking.
func (v AbstractValue) Geq(o Element) bool {
	checkLatticeMatch(v.Lattice(), o.Lattice(), "⊒")
	return v.geq(o)
}

// geq computes v ⊒ o.
func (v AbstractValue) geq(o Element) bool {
	switch o := o.(type) {
	case AbstractValue:
		return o.leq(v)
	default:
		panic(errPatternMatch(o))
	}
}

// Eq computes v = o. Performs lattice dynamic type checking.
func (v AbstractValue) Eq(o Element) bool {
	checkLatticeMatch(v.Lattice(), o.Lattice(), "=")
	return v.eq(o)
}

// eq computes v = o componentwise, disregarding traces.
func (v AbstractValue) eq(o Element) bool {
	switch o := o.(type) {
	case AbstractValue:
		return v.locs.eq(o.locs) &&
			v.init == o.init &&
			v.ovf == o.ovf &&
			v.taint.eq(o.taint)
	default:
		panic(errPatternMatch(o))
	}
}

// Join computes v ⊔ o. Performs lattice dynamic type checking.
func (v AbstractValue) Join(o Element) Element {
	checkLatticeMatch(v.Lattice(), o.Lattice(), "⊔")
	return v.join(o)
}

// join computes v ⊔ o.
func (v AbstractValue) join(o Element) Element {
	switch o := o.(type) {
	case AbstractValue:
		return v.MonoJoin(o)
	default:
		panic(errPatternMatch(o))
	}
}

// MonoJoin is a monomorphic variant of v ⊔ o for abstract values.
// All components join componentwise, including traces.
func (v AbstractValue) MonoJoin(o AbstractValue) AbstractValue {
	v.locs = v.locs.MonoJoin(o.locs)
	v.init = v.init.MonoJoin(o.init)
	v.ovf = v.ovf.MonoJoin(o.ovf)
	v.taint = v.taint.MonoJoin(o.taint)
	v.traces = v.traces.MonoJoin(o.traces)
	return v
}

// Meet computes v ⊓ o. Performs lattice dynamic type checking.
func (v AbstractValue) Meet(o Element) Element {
	checkLatticeMatch(v.Lattice(), o.Lattice(), "⊓")
	return v.meet(o)
}

// meet computes v ⊓ o componentwise.
func (v AbstractValue) meet(o Element) Element {
	switch o := o.(type) {
	case AbstractValue:
		v.locs = v.locs.MonoMeet(o.locs)
		v.init = v.init.meet(o.init).Initialization()
		v.ovf = v.ovf.meet(o.ovf).Overflow()
		v.taint = v.taint.meet(o.taint).Taint()
		v.traces = v.traces.meet(o.traces).Traces()
		return v
	default:
		panic(errPatternMatch(o))
	}
}

// AbstractValue safely converts to an abstract value.
func (v AbstractValue) AbstractValue() AbstractValue {
	return v
}

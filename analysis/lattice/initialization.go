package lattice

// InitializationLattice is the flat lattice tracking whether the contents
// of a memory cell have definitely been written before use.
//
//	      ⊤
//	    /   \
//	 init   uninit
//	    \   /
//	      ⊥
type InitializationLattice struct {
	lattice
}

// initializationLattice is a singleton instantiation of the initialization lattice.
var initializationLattice = &InitializationLattice{}

// Initialization yields the initialization lattice.
func (latticeFactory) Initialization() *InitializationLattice {
	return initializationLattice
}

func (*InitializationLattice) Top() Element {
	return _INIT_TOP
}

func (*InitializationLattice) Bot() Element {
	return _INIT_BOT
}

// Eq checks for equality with another lattice.
func (l1 *InitializationLattice) Eq(l2 Lattice) bool {
	_, ok := l2.(*InitializationLattice)
	return ok
}

func (*InitializationLattice) String() string {
	return colorize.Lattice("Initialization")
}

// Initialization safely converts to the initialization lattice.
func (l *InitializationLattice) Initialization() *InitializationLattice {
	return l
}

// Initialization is a member of the flat initialization lattice.
type Initialization uint8

const (
	_INIT_BOT Initialization = iota
	_INIT_INITIALIZED
	_INIT_UNINITIALIZED
	_INIT_TOP
)

// Lattice retrieves the initialization lattice for any initialization element.
func (Initialization) Lattice() Lattice {
	return initializationLattice
}

func (e Initialization) String() string {
	switch e {
	case _INIT_BOT:
		return colorize.Element("⊥")
	case _INIT_INITIALIZED:
		return colorize.Const("init")
	case _INIT_UNINITIALIZED:
		return colorize.Attr("uninit")
	default:
		return colorize.Element("⊤")
	}
}

// Height returns the distance of the element to ⊥: 0 for ⊥,
// 1 for the incomparable middle elements, and 2 for ⊤.
func (e Initialization) Height() int {
	switch e {
	case _INIT_BOT:
		return 0
	case _INIT_TOP:
		return 2
	default:
		return 1
	}
}

// IsBot checks whether the initialization status is ⊥.
func (e Initialization) IsBot() bool {
	return e == _INIT_BOT
}

// IsTop checks whether the initialization status is ⊤.
func (e Initialization) IsTop() bool {
	return e == _INIT_TOP
}

// IsInitialized checks whether the cell was definitely written.
func (e Initialization) IsInitialized() bool {
	return e == _INIT_INITIALIZED
}

// IsUninitialized checks whether the cell was definitely not written.
func (e Initialization) IsUninitialized() bool {
	return e == _INIT_UNINITIALIZED
}

// MayBeUninit checks whether some execution may read the cell before
// any write to it.
func (e Initialization) MayBeUninit() bool {
	return e == _INIT_UNINITIALIZED || e == _INIT_TOP
}

// Leq computes e1 ⊑ e2. Performs lattice dynamic type checking.
func (e1 Initialization) Leq(e2 Element) bool {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊑")
	return e1.leq(e2)
}

// leq computes e1 ⊑ e2.
func (e1 Initialization) leq(e2 Element) bool {
	switch e2 := e2.(type) {
	case Initialization:
		return e1 == e2 || e1 == _INIT_BOT || e2 == _INIT_TOP
	default:
		panic(errPatternMatch(e2))
	}
}

// Geq computes e1 ⊒ e2. Performs lattice dynamic type checking.
func (e1 Initialization) Geq(e2 Element) bool {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊒")
	return e1.geq(e2)
}

// geq computes e1 ⊒ e2.
func (e1 Initialization) geq(e2 Element) bool {
	switch e2 := e2.(type) {
	case Initialization:
		return e2.leq(e1)
	default:
		panic(errPatternMatch(e2))
	}
}

// Eq computes e1 = e2. Performs lattice dynamic type checking.
func (e1 Initialization) Eq(e2 Element) bool {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "=")
	return e1.eq(e2)
}

// eq computes e1 = e2.
func (e1 Initialization) eq(e2 Element) bool {
	switch e2 := e2.(type) {
	case Initialization:
		return e1 == e2
	default:
		panic(errPatternMatch(e2))
	}
}

// Join computes e1 ⊔ e2. Performs lattice dynamic type checking.
func (e1 Initialization) Join(e2 Element) Element {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊔")
	return e1.join(e2)
}

// join computes e1 ⊔ e2. Distinct non-⊥ statuses conflate to ⊤.
func (e1 Initialization) join(e2 Element) Element {
	switch e2 := e2.(type) {
	case Initialization:
		return e1.MonoJoin(e2)
	default:
		panic(errPatternMatch(e2))
	}
}

// MonoJoin is a monomorphic variant of e1 ⊔ e2 for initialization elements.
func (e1 Initialization) MonoJoin(e2 Initialization) Initialization {
	switch {
	case e1 == e2:
		return e1
	case e1 == _INIT_BOT:
		return e2
	case e2 == _INIT_BOT:
		return e1
	default:
		return _INIT_TOP
	}
}

// Meet computes e1 ⊓ e2. Performs lattice dynamic type checking.
func (e1 Initialization) Meet(e2 Element) Element {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊓")
	return e1.meet(e2)
}

// meet computes e1 ⊓ e2.
func (e1 Initialization) meet(e2 Element) Element {
	switch e2 := e2.(type) {
	case Initialization:
		switch {
		case e1 == e2:
			return e1
		case e1 == _INIT_TOP:
			return e2
		case e2 == _INIT_TOP:
			return e1
		default:
			return _INIT_BOT
		}
	default:
		panic(errPatternMatch(e2))
	}
}

// Initialization safely converts to an initialization element.
func (e Initialization) Initialization() Initialization {
	return e
}

func (Initialization) AbstractValue() AbstractValue {
	panic(errUnsupportedTypeConversion)
}

func (Initialization) Conditions() Conditions {
	panic(errUnsupportedTypeConversion)
}

func (Initialization) Interval() Interval {
	panic(errUnsupportedTypeConversion)
}

func (Initialization) LocSet() LocSet {
	panic(errUnsupportedTypeConversion)
}

func (Initialization) Memory() Memory {
	panic(errUnsupportedTypeConversion)
}

func (Initialization) Overflow() Overflow {
	panic(errUnsupportedTypeConversion)
}

func (Initialization) Summary() Summary {
	panic(errUnsupportedTypeConversion)
}

func (Initialization) Taint() Taint {
	panic(errUnsupportedTypeConversion)
}

func (Initialization) Traces() Traces {
	panic(errUnsupportedTypeConversion)
}

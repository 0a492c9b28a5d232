package lattice

import loc "github.com/cs-au-dk/cat/analysis/location"

type consts struct{}

var _consts = consts{}

// Consts is a factory of commonly used constant elements.
// Scalar elements cannot be statefully manipulated in external
// sources, so passing shallow copies is safe.
func Consts() consts {
	return _consts
}

// BotValue is the abstract value with all components at ⊥.
func (c consts) BotValue() AbstractValue {
	return valueLattice.Bot().AbstractValue()
}

// BasicValue is an initialized, untainted scalar value.
func (c consts) BasicValue() AbstractValue {
	return elFact.AbstractBasic()
}

// UninitValue is the value of a declared but unwritten cell.
func (c consts) UninitValue() AbstractValue {
	return elFact.AbstractInit(_INIT_UNINITIALIZED)
}

// Initialized is the definitely-written initialization status.
func (c consts) Initialized() Initialization {
	return _INIT_INITIALIZED
}

// Uninitialized is the definitely-unwritten initialization status.
func (c consts) Uninitialized() Initialization {
	return _INIT_UNINITIALIZED
}

// InitBot is the ⊥ initialization status.
func (c consts) InitBot() Initialization {
	return _INIT_BOT
}

// InitTop is the ⊤ initialization status.
func (c consts) InitTop() Initialization {
	return _INIT_TOP
}

// NoOvf is the overflow-free status.
func (c consts) NoOvf() Overflow {
	return _NO_OVF
}

// MayOvf is the possibly-wrapped status.
func (c consts) MayOvf() Overflow {
	return _MAY_OVF
}

// LocSetNil is the singleton location set of the null location.
func (c consts) LocSetNil() LocSet {
	return elFact.LocSetOf(loc.NilLocation{})
}

package lattice

import (
	loc "github.com/cs-au-dk/cat/analysis/location"
)

// _mops is a wrapper around a memory to facilitate loads and stores
// through location sets, as computed for pointers and lvalues.
type _mops struct {
	mem *Memory
}

// MemOps generates a stateful operation-exposing wrapper around the
// given abstract memory.
func MemOps(mem Memory) _mops {
	return _mops{&mem}
}

// Get reads a single location.
func (m _mops) Get(key loc.LocWithIdx) (AbstractValue, bool) {
	return m.mem.Get(key)
}

// Load reads through a location set, joining the values of all targets.
// Unbound targets contribute ⊥, except unbound field sublocations,
// which read through their nearest bound ancestor: a struct tainted or
// initialized as a whole covers fields that were never written
// individually.
func (m _mops) Load(targets LocSet) AbstractValue {
	res := Consts().BotValue()
	targets.ForEach(func(l loc.LocWithIdx) {
		if !loc.IsAddressable(l.Base()) {
			return
		}
		if v, found := m.mem.Get(l); found {
			res = res.MonoJoin(v)
			return
		}
		res = res.MonoJoin(m.fieldFallback(l.Base()))
	})
	return res
}

// fieldFallback resolves a read of an unbound field chain against the
// nearest bound ancestor. Only scalar content carries over: the
// ancestor's points-to targets describe the aggregate, not the field.
func (m _mops) fieldFallback(l loc.Location) AbstractValue {
	fl, ok := l.(loc.FieldLocation)
	if !ok {
		return Consts().BotValue()
	}
	if v, found := m.mem.Get(loc.FromLocation(fl.Base)); found {
		return v.UpdatePointer(Elements().LocSet())
	}
	return m.fieldFallback(fl.Base)
}

// LoadOnDemand reads through a location set of container locations,
// synthesizing element storage for containers nothing has written yet.
// Element cells derive from each target's own declared type.
func (m _mops) LoadOnDemand(targets LocSet) AbstractValue {
	res := Consts().BotValue()
	targets.ForEach(func(l loc.LocWithIdx) {
		if !loc.IsAddressable(l.Base()) {
			return
		}
		typ, _ := l.Base().Type()
		v, mem := m.mem.GetOnDemand(l, typ)
		*m.mem = mem
		res = res.MonoJoin(v)
	})
	return res
}

// CanStrongUpdate checks whether a store through the location set may
// overwrite: only a unique, addressable, unindexed target cell is known
// to represent a single concrete cell.
func (m _mops) CanStrongUpdate(targets LocSet) bool {
	l, ok := targets.GetSingle()
	return ok && loc.IsAddressable(l.Base()) && !l.Indexed()
}

// Update strongly updates the binding for the given location.
func (m _mops) Update(key loc.LocWithIdx, val AbstractValue) _mops {
	*m.mem = m.mem.Update(key, val)
	return m
}

// WeakUpdate joins the given value onto the binding for the location.
func (m _mops) WeakUpdate(key loc.LocWithIdx, val AbstractValue) _mops {
	if prev, found := m.mem.Get(key); found {
		val = val.MonoJoin(prev)
	}
	*m.mem = m.mem.Update(key, val)
	return m
}

// Store writes through a location set: strongly when the target is
// unique and unindexed, weakly otherwise. Null targets are dropped.
func (m _mops) Store(targets LocSet, val AbstractValue) _mops {
	if m.CanStrongUpdate(targets) {
		l, _ := targets.GetSingle()
		return m.Update(l, val)
	}
	targets.ForEach(func(l loc.LocWithIdx) {
		if !loc.IsAddressable(l.Base()) {
			return
		}
		m.WeakUpdate(l, val)
	})
	return m
}

// Memory unwraps the abstract memory.
func (m _mops) Memory() Memory {
	return *m.mem
}

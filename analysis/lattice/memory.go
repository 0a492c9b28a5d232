package lattice

import (
	"fmt"
	"log"
	"sort"

	"github.com/cs-au-dk/cat/analysis/cir"
	loc "github.com/cs-au-dk/cat/analysis/location"
	"github.com/cs-au-dk/cat/utils"
	i "github.com/cs-au-dk/cat/utils/indenter"
	"github.com/cs-au-dk/cat/utils/tree"
)

// MemoryLattice is the lattice of abstract memories: maps from possibly
// indexed locations to abstract values. Unbound locations implicitly
// map to ⊥.
type MemoryLattice struct {
	lattice
}

// memoryLattice is a singleton instantiation of the memory lattice.
var memoryLattice = &MemoryLattice{}

// Memory yields the memory lattice.
func (latticeFactory) Memory() *MemoryLattice {
	return memoryLattice
}

func (m *MemoryLattice) Eq(o Lattice) bool {
	_, ok := o.(*MemoryLattice)
	return ok
}

func (m *MemoryLattice) Top() Element {
	panic(errUnsupportedOperation)
}

// Memory safely converts to the memory lattice.
func (m *MemoryLattice) Memory() *MemoryLattice {
	return m
}

func (m *MemoryLattice) Bot() Element {
	return Memory{
		element: element{lattice: memoryLattice},
		values:  tree.NewTree[loc.LocWithIdx, AbstractValue](utils.HashableHasher[loc.LocWithIdx]()),
	}
}

/* Lattice boilerplate */
func (m *MemoryLattice) String() string {
	return colorize.Lattice("Memory")
}

func (elementFactory) Memory() Memory {
	return memoryLattice.Bot().Memory()
}

// Memory is an abstract memory. Updates overwrite the previous binding;
// callers join explicitly where weak semantics is required.
type Memory struct {
	element
	values tree.Tree[loc.LocWithIdx, AbstractValue]
}

// internalInsert inserts the key value mapping into the tree, preserving
// the internal tree structure when the binding is unchanged.
func (w Memory) internalInsert(
	key loc.LocWithIdx,
	value AbstractValue,
) tree.Tree[loc.LocWithIdx, AbstractValue] {
	return w.values.InsertOrMerge(key, value, func(elem, old AbstractValue) (AbstractValue, bool) {
		if elem.eq(old) && elem.traces.eq(old.traces) {
			return old, true
		}
		return elem, false
	})
}

// Get retrieves the value bound at the given location. Unbound
// locations yield (⊥, false).
func (m Memory) Get(key loc.LocWithIdx) (AbstractValue, bool) {
	if v, found := m.values.Lookup(key); found {
		return v, found
	}
	return Consts().BotValue(), false
}

// GetOrDefault retrieves the value bound at the given location, or the
// provided default if unbound.
func (w Memory) GetOrDefault(key loc.LocWithIdx, dflt AbstractValue) AbstractValue {
	if v, found := w.Get(key); found {
		return v
	}
	return dflt
}

// GetUnsafe retrieves the value bound at the given location, and aborts
// if the location is unbound.
func (w Memory) GetUnsafe(key loc.LocWithIdx) AbstractValue {
	if v, found := w.Get(key); found {
		return v
	}

	log.Fatalf("GetUnsafe: %s not found", key)
	panic("Unreachable")
}

// GetOnDemand retrieves the value bound at the given container
// location, synthesizing the binding if the location does not point at
// element storage yet. A binding without pointer targets counts as
// absent here: declaring a container binds its unwritten marker, which
// stands for the default-constructed empty container. The synthesized
// value points at the container's element cell, derived purely from
// the location and the container type, so repeated reads of an unbound
// container agree on the same cell. The element cell itself reads as
// uninitialized library storage until an insertion writes it.
func (w Memory) GetOnDemand(key loc.LocWithIdx, typ *cir.Type) (AbstractValue, Memory) {
	if v, found := w.Get(key); found && !v.PointerValue().Empty() {
		return v, w
	}
	cell := loc.FromLocation(loc.NewOnDemandLocation(key.Base(), typ))
	v := elFact.AbstractPointerV(cell)
	w = w.Update(key, v)
	if _, bound := w.Get(cell); !bound {
		w = w.Update(cell, Consts().UninitValue())
	}
	return v, w
}

// Update overwrites the binding for the given location.
func (w Memory) Update(key loc.LocWithIdx, value AbstractValue) Memory {
	w.values = w.internalInsert(key, value)
	return w
}

// Remove unbinds the given location.
func (w Memory) Remove(key loc.LocWithIdx) Memory {
	w.values = w.values.Remove(key)
	return w
}

// ForEach performs procedure `f` on all bindings.
func (w Memory) ForEach(f func(loc.LocWithIdx, AbstractValue)) {
	w.values.ForEach(f)
}

// Size is the number of bound locations.
func (w Memory) Size() int {
	return w.values.Size()
}

// Filter keeps the bindings that satisfy the predicate.
func (mem Memory) Filter(pred func(loc.LocWithIdx, AbstractValue) bool) Memory {
	fresh := Elements().Memory()

	mem.ForEach(func(al loc.LocWithIdx, av AbstractValue) {
		if pred(al, av) {
			fresh = fresh.Update(al, av)
		}
	})

	return fresh
}

// MapValues rebuilds the memory with the images of all bound values.
func (mem Memory) MapValues(f func(AbstractValue) AbstractValue) Memory {
	fresh := Elements().Memory()

	mem.ForEach(func(al loc.LocWithIdx, av AbstractValue) {
		fresh = fresh.Update(al, f(av))
	})

	return fresh
}

// FieldsOf performs procedure `do` on all bindings of field sublocations
// of the given base location.
func (mem Memory) FieldsOf(base loc.Location, do func(field string, key loc.LocWithIdx, v AbstractValue)) {
	mem.ForEach(func(k loc.LocWithIdx, v AbstractValue) {
		if fl, ok := k.Base().(loc.FieldLocation); ok && fl.Base.Equal(base) {
			do(fl.Field, k, v)
		}
	})
}

// Lattice element methods
func (w Memory) Leq(e Element) bool {
	checkLatticeMatch(w.lattice, e.Lattice(), "⊑")
	return w.leq(e)
}

func (w Memory) leq(e Element) bool {
	// a ⊑ b ⇔ a ⊔ b == b
	return w.MonoJoin(e.(Memory)).eq(e)
}

func (w Memory) Geq(e Element) bool {
	checkLatticeMatch(w.lattice, e.Lattice(), "⊒")
	return w.geq(e)
}

func (w Memory) geq(e Element) bool {
	// OBS: a ⊑ b ⇔ b ⊒ a
	return e.(Memory).leq(w)
}

func (w Memory) Eq(e Element) bool {
	checkLatticeMatch(w.lattice, e.Lattice(), "=")
	return w.eq(e)
}

// eq compares bindings up to value equality, which disregards traces.
// Locations bound to ⊥ are indistinguishable from unbound ones.
func (w Memory) eq(e Element) bool {
	o := e.(Memory)
	weed := func(m Memory) Memory {
		return m.Filter(func(_ loc.LocWithIdx, av AbstractValue) bool {
			return !av.IsBot()
		})
	}
	return weed(w).values.Equal(weed(o).values, func(a, b AbstractValue) bool {
		return a.eq(b)
	})
}

func (w Memory) Join(o Element) Element {
	checkLatticeMatch(w.lattice, o.Lattice(), "⊔")
	return w.join(o)
}

func (w Memory) join(o Element) Element {
	return w.MonoJoin(o.(Memory))
}

// MonoJoin is a monomorphic variant of m ⊔ o for abstract memories.
func (w Memory) MonoJoin(o Memory) Memory {
	w.values = w.values.Merge(o.values, func(av, bv AbstractValue) (AbstractValue, bool) {
		if av.eq(bv) && av.traces.eq(bv.traces) {
			return av, true
		}
		return av.MonoJoin(bv), false
	})
	return w
}

func (w Memory) Meet(o Element) Element {
	panic(errUnsupportedOperation)
}

func (w Memory) meet(o Element) Element {
	panic(errUnsupportedOperation)
}

func (w Memory) String() string {
	buf := []string{}

	w.values.ForEach(func(k loc.LocWithIdx, v AbstractValue) {
		buf = append(buf, fmt.Sprintf("%v ↦ %v", k, v))
	})

	sort.Slice(buf, func(i, j int) bool {
		return buf[i] < buf[j]
	})

	return colorize.Field("Memory") + ": " +
		i.Indenter().Start("{").NestStrings(buf...).End("}")
}

// Type conversion
func (w Memory) Memory() Memory {
	return w
}

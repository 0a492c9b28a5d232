package lattice

import (
	"fmt"
	"sort"

	loc "github.com/cs-au-dk/cat/analysis/location"
	"github.com/cs-au-dk/cat/utils"
	i "github.com/cs-au-dk/cat/utils/indenter"
	"github.com/cs-au-dk/cat/utils/tree"
)

// LocSetLattice is the powerset lattice of possibly indexed abstract
// locations. Its elements act as the points-to component of abstract values.
type LocSetLattice struct {
	lattice
}

// locSetLattice is a singleton instantiation of the location set lattice.
var locSetLattice = &LocSetLattice{}

// LocSet yields the location set lattice.
func (latticeFactory) LocSet() *LocSetLattice {
	return locSetLattice
}

func (*LocSetLattice) Top() Element {
	panic(errUnsupportedOperation)
}

func (l *LocSetLattice) Bot() Element {
	return LocSet{
		element{locSetLattice},
		tree.NewTree[loc.LocWithIdx, struct{}](utils.HashableHasher[loc.LocWithIdx]()),
	}
}

func (*LocSetLattice) String() string {
	return colorize.Lattice("℘(Location)")
}

// Eq checks for equality with another lattice.
func (l1 *LocSetLattice) Eq(l2 Lattice) bool {
	_, ok := l2.(*LocSetLattice)
	return ok
}

// LocSet safely converts to the location set lattice.
func (l *LocSetLattice) LocSet() *LocSetLattice {
	return l
}

// LocSet is a set of possibly indexed abstract locations.
type LocSet struct {
	element
	set tree.Tree[loc.LocWithIdx, struct{}]
}

// LocSet constructs a location set with the given members.
func (elementFactory) LocSet(locs ...loc.LocWithIdx) LocSet {
	s := locSetLattice.Bot().LocSet()
	for _, l := range locs {
		s.set = s.set.Insert(l, struct{}{})
	}
	return s
}

// LocSetOf constructs a location set from unindexed locations.
func (elementFactory) LocSetOf(locs ...loc.Location) LocSet {
	s := locSetLattice.Bot().LocSet()
	for _, l := range locs {
		s.set = s.set.Insert(loc.FromLocation(l), struct{}{})
	}
	return s
}

// Size is the cardinality of the location set.
func (m LocSet) Size() int {
	return m.set.Size()
}

// Height is the height of the set in the location set lattice.
// It is equal to the set's cardinality.
func (m LocSet) Height() int {
	return m.set.Size()
}

// Empty checks whether the location set is ∅.
func (m LocSet) Empty() bool {
	return m.Size() == 0
}

// Entries aggregates all members of the location set into a slice.
func (m LocSet) Entries() (ret []loc.LocWithIdx) {
	m.set.ForEach(func(k loc.LocWithIdx, _ struct{}) {
		ret = append(ret, k)
	})

	return ret
}

// ForEach performs procedure `f` on all members of the location set.
func (m LocSet) ForEach(f func(loc.LocWithIdx)) {
	m.set.ForEach(func(k loc.LocWithIdx, _ struct{}) { f(k) })
}

// Contains checks whether a location is included in the set.
func (m LocSet) Contains(key loc.LocWithIdx) bool {
	_, found := m.set.Lookup(key)
	return found
}

// Add recomputes the location set to include the given location.
func (m LocSet) Add(l loc.LocWithIdx) LocSet {
	m.set = m.set.Insert(l, struct{}{})
	return m
}

// Remove recomputes the location set, excluding the given location.
func (m LocSet) Remove(l loc.LocWithIdx) LocSet {
	m.set = m.set.Remove(l)
	return m
}

// GetSingle unpacks the only member of a singleton location set.
// The second result is false if the set is not a singleton.
func (m LocSet) GetSingle() (res loc.LocWithIdx, ok bool) {
	if m.Size() != 1 {
		return res, false
	}
	m.set.ForEach(func(k loc.LocWithIdx, _ struct{}) {
		res = k
	})
	return res, true
}

// HasNil checks whether the set contains the null location.
func (m LocSet) HasNil() bool {
	return m.Contains(loc.FromLocation(loc.NilLocation{}))
}

// FilterNilCB returns a location set where the null location has been
// removed. If the null location is found, execute procedure `onNilFound`.
func (m LocSet) FilterNilCB(onNilFound func()) LocSet {
	nl := loc.FromLocation(loc.NilLocation{})

	if m.Contains(nl) {
		onNilFound()
		return m.Remove(nl)
	}
	return m
}

// FilterNil returns a location set where the null location has been removed.
func (m LocSet) FilterNil() LocSet {
	return m.FilterNilCB(func() {})
}

// Filter keeps the locations in the set that satisfy the predicate.
func (m LocSet) Filter(pred func(loc.LocWithIdx) bool) LocSet {
	res := locSetLattice.Bot().LocSet()
	m.set.ForEach(func(l loc.LocWithIdx, _ struct{}) {
		if pred(l) {
			res.set = res.set.Insert(l, struct{}{})
		}
	})
	return res
}

// Map rebuilds the location set with the images of all members.
func (m LocSet) Map(f func(loc.LocWithIdx) loc.LocWithIdx) LocSet {
	res := locSetLattice.Bot().LocSet()
	m.set.ForEach(func(l loc.LocWithIdx, _ struct{}) {
		res.set = res.set.Insert(f(l), struct{}{})
	})
	return res
}

func (m LocSet) String() string {
	buf := []fmt.Stringer{}

	m.ForEach(func(k loc.LocWithIdx) {
		buf = append(buf, k)
	})

	if len(buf) == 0 {
		return colorize.Element("∅")
	}

	sort.Slice(buf, func(i, j int) bool {
		return buf[i].String() < buf[j].String()
	})
	return i.Indenter().Start("{").
		NestSep(",", buf...).
		End("}")
}

// Join computes m ⊔ o. Performs lattice dynamic type checking.
func (m LocSet) Join(o Element) Element {
	checkLatticeMatch(m.Lattice(), o.Lattice(), "⊔")
	return m.join(o)
}

// join computes m ⊔ o.
func (m LocSet) join(o Element) Element {
	switch o := o.(type) {
	case LocSet:
		return m.MonoJoin(o)
	default:
		panic(errPatternMatch(o))
	}
}

// MonoJoin is a monomorphic variant of m ⊔ o for location sets.
func (m LocSet) MonoJoin(o LocSet) LocSet {
	m.set = m.set.Merge(o.set, func(_, b struct{}) (struct{}, bool) {
		return b, true
	})
	return m
}

// Meet computes m ⊓ o. Performs lattice dynamic type checking.
func (m LocSet) Meet(o Element) Element {
	checkLatticeMatch(m.Lattice(), o.Lattice(), "⊓")
	return m.meet(o)
}

// meet computes m ⊓ o.
func (m LocSet) meet(o Element) Element {
	switch o := o.(type) {
	case LocSet:
		return m.MonoMeet(o)
	default:
		panic(errPatternMatch(o))
	}
}

// MonoMeet is a monomorphic variant of m ⊓ o for location sets.
func (m LocSet) MonoMeet(o LocSet) LocSet {
	return m.Filter(o.Contains)
}

// Eq computes m = o. Performs lattice dynamic type checking.
func (m LocSet) Eq(o Element) bool {
	checkLatticeMatch(m.Lattice(), o.Lattice(), "=")
	return m.eq(o)
}

// eq computes m = o.
func (m LocSet) eq(o Element) bool {
	switch o := o.(type) {
	case LocSet:
		return m.set.Equal(o.set, func(_, _ struct{}) bool { return true })
	default:
		panic(errPatternMatch(o))
	}
}

// Geq computes m ⊒ o. Performs lattice dynamic type checking.
func (m LocSet) Geq(o Element) bool {
	checkLatticeMatch(m.Lattice(), o.Lattice(), "⊒")
	return m.geq(o)
}

// geq computes m ⊒ o.
func (m LocSet) geq(o Element) bool {
	switch o := o.(type) {
	case LocSet:
		return o.leq(m)
	default:
		panic(errPatternMatch(o))
	}
}

// Leq computes m ⊑ o. Performs lattice dynamic type checking.
func (m LocSet) Leq(o Element) bool {
	checkLatticeMatch(m.Lattice(), o.Lattice(), "⊑")
	return m.leq(o)
}

// leq computes m ⊑ o as set inclusion.
func (m LocSet) leq(o Element) bool {
	switch o := o.(type) {
	case LocSet:
		for _, l := range m.Entries() {
			if !o.Contains(l) {
				return false
			}
		}
		return true
	default:
		panic(errPatternMatch(o))
	}
}

// LocSet safely converts to a location set.
func (m LocSet) LocSet() LocSet {
	return m
}

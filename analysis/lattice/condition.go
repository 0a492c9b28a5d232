package lattice

import (
	"fmt"
	"sort"

	"github.com/cs-au-dk/cat/analysis/cir"
	loc "github.com/cs-au-dk/cat/analysis/location"
	"github.com/cs-au-dk/cat/utils"
	i "github.com/cs-au-dk/cat/utils/indenter"
	"github.com/cs-au-dk/cat/utils/tree"
)

// CondKind classifies the defect a condition would report.
type CondKind uint8

const (
	// CondOverflow flags an allocation or copy whose size may have
	// wrapped around or be attacker-controlled.
	CondOverflow CondKind = iota
	// CondFormat flags a tainted format string reaching a printf-like sink.
	CondFormat
	// CondUninit flags a string or container possibly used before
	// initialization.
	CondUninit
)

func (k CondKind) String() string {
	switch k {
	case CondOverflow:
		return "overflow"
	case CondFormat:
		return "format"
	case CondUninit:
		return "uninit"
	default:
		panic(errPatternMatch(k))
	}
}

// Condition is a proof obligation generated at a potential defect site.
// It is identified by its kind, the constrained location, the observed
// initialization status and the program position. Traces and the
// reported flag ride along without contributing to identity.
type Condition struct {
	Kind CondKind
	Loc  loc.LocWithIdx
	Init Initialization
	Pos  cir.Pos

	traces   Traces
	reported bool
}

// NewCondition creates an unreported condition with empty traces.
func NewCondition(kind CondKind, l loc.LocWithIdx, init Initialization, pos cir.Pos) Condition {
	return Condition{
		Kind:   kind,
		Loc:    l,
		Init:   init,
		Pos:    pos,
		traces: tracesLattice.Bot().Traces(),
	}
}

// WithTraces recomputes the condition carrying the given trace set.
func (c Condition) WithTraces(t Traces) Condition {
	c.traces = t
	return c
}

// Traces retrieves the carried trace set.
func (c Condition) Traces() Traces {
	return c.traces
}

// Reported checks whether the condition was already surfaced to the user.
func (c Condition) Reported() bool {
	return c.reported
}

// key projects the identity components of the condition.
func (c Condition) key() condKey {
	return condKey{c.Kind, c.Loc, c.Init, c.Pos}
}

func (c Condition) String() string {
	s := fmt.Sprintf("%s %s %s @ %s",
		colorize.Attr(c.Kind.String()), c.Loc, c.Init, c.Pos)
	if !c.traces.Empty() {
		s += " " + colorize.Field("traces") + ": " + c.traces.String()
	}
	return s
}

type condKey struct {
	kind CondKind
	loc  loc.LocWithIdx
	init Initialization
	pos  cir.Pos
}

// Hash for condition keys mixes all identity components.
func (k condKey) Hash() uint32 {
	return utils.HashCombine(
		uint32(k.kind),
		k.loc.Hash(),
		uint32(k.init),
		k.pos.Hash(),
	)
}

// Equal checks condition keys for identity.
func (k condKey) Equal(o condKey) bool {
	return k.kind == o.kind &&
		k.loc.Equal(o.loc) &&
		k.init == o.init &&
		k.pos == o.pos
}

// ConditionsLattice is the powerset lattice of conditions, joined by
// union. Carried traces join and the reported flag is sticky.
type ConditionsLattice struct {
	lattice
}

// condsLattice is a singleton instantiation of the conditions lattice.
var condsLattice = &ConditionsLattice{}

// Conditions yields the conditions lattice.
func (latticeFactory) Conditions() *ConditionsLattice {
	return condsLattice
}

func (*ConditionsLattice) Top() Element {
	panic(errUnsupportedOperation)
}

func (l *ConditionsLattice) Bot() Element {
	return Conditions{
		element{condsLattice},
		tree.NewTree[condKey, Condition](utils.HashableHasher[condKey]()),
	}
}

func (*ConditionsLattice) String() string {
	return colorize.Lattice("℘(Condition)")
}

// Eq checks for equality with another lattice.
func (l1 *ConditionsLattice) Eq(l2 Lattice) bool {
	_, ok := l2.(*ConditionsLattice)
	return ok
}

// Conditions safely converts to the conditions lattice.
func (l *ConditionsLattice) Conditions() *ConditionsLattice {
	return l
}

// Conditions is a set of conditions keyed by condition identity.
type Conditions struct {
	element
	set tree.Tree[condKey, Condition]
}

// Conditions constructs a condition set with the given members.
func (elementFactory) Conditions(conds ...Condition) Conditions {
	cs := condsLattice.Bot().Conditions()
	for _, c := range conds {
		cs = cs.Add(c)
	}
	return cs
}

// mergeCond folds a duplicate condition into an existing one:
// traces accumulate and the reported flag never reverts.
func mergeCond(a, b Condition) (Condition, bool) {
	equal := a.traces.eq(b.traces) && a.reported == b.reported
	a.traces = a.traces.MonoJoin(b.traces)
	a.reported = a.reported || b.reported
	return a, equal
}

// Add recomputes the condition set to include the given condition.
func (cs Conditions) Add(c Condition) Conditions {
	cs.set = cs.set.InsertOrMerge(c.key(), c, mergeCond)
	return cs
}

// MarkReported stickily flags the stored condition matching the given
// condition's identity as reported.
func (cs Conditions) MarkReported(c Condition) Conditions {
	c.reported = true
	return cs.Add(c)
}

// Size is the number of conditions in the set.
func (cs Conditions) Size() int {
	return cs.set.Size()
}

// Height is the number of conditions in the set.
func (cs Conditions) Height() int {
	return cs.set.Size()
}

// Empty checks whether the condition set is ∅.
func (cs Conditions) Empty() bool {
	return cs.Size() == 0
}

// ForEach performs procedure `f` on all conditions in the set.
func (cs Conditions) ForEach(f func(Condition)) {
	cs.set.ForEach(func(_ condKey, c Condition) { f(c) })
}

// Entries aggregates the conditions into a slice.
func (cs Conditions) Entries() (ret []Condition) {
	cs.ForEach(func(c Condition) {
		ret = append(ret, c)
	})
	return ret
}

// Filter keeps the conditions that satisfy the predicate.
func (cs Conditions) Filter(pred func(Condition) bool) Conditions {
	res := condsLattice.Bot().Conditions()
	cs.ForEach(func(c Condition) {
		if pred(c) {
			res = res.Add(c)
		}
	})
	return res
}

func (cs Conditions) String() string {
	if cs.Empty() {
		return colorize.Element("∅")
	}

	buf := []string{}
	cs.ForEach(func(c Condition) {
		buf = append(buf, c.String())
	})
	sort.Strings(buf)

	return i.Indenter().Start("{").NestStrings(buf...).End("}")
}

// Join computes cs ⊔ o. Performs lattice dynamic type checking.
func (cs Conditions) Join(o Element) Element {
	checkLatticeMatch(cs.Lattice(), o.Lattice(), "⊔")
	return cs.join(o)
}

// join computes cs ⊔ o.
func (cs Conditions) join(o Element) Element {
	switch o := o.(type) {
	case Conditions:
		return cs.MonoJoin(o)
	default:
		panic(errPatternMatch(o))
	}
}

// MonoJoin is a monomorphic variant of cs ⊔ o for condition sets.
func (cs Conditions) MonoJoin(o Conditions) Conditions {
	cs.set = cs.set.Merge(o.set, mergeCond)
	return cs
}

// Meet computes cs ⊓ o.
func (cs Conditions) Meet(o Element) Element {
	panic(errUnsupportedOperation)
}

func (cs Conditions) meet(o Element) Element {
	panic(errUnsupportedOperation)
}

// Eq computes cs = o. Performs lattice dynamic type checking.
func (cs Conditions) Eq(o Element) bool {
	checkLatticeMatch(cs.Lattice(), o.Lattice(), "=")
	return cs.eq(o)
}

// eq compares the carried condition identities, disregarding traces
// and reporting state.
func (cs Conditions) eq(o Element) bool {
	switch o := o.(type) {
	case Conditions:
		return cs.set.Equal(o.set, func(_, _ Condition) bool { return true })
	default:
		panic(errPatternMatch(o))
	}
}

// Geq computes cs ⊒ o. Performs lattice dynamic type checking.
func (cs Conditions) Geq(o Element) bool {
	checkLatticeMatch(cs.Lattice(), o.Lattice(), "⊒")
	return cs.geq(o)
}

// geq computes cs ⊒ o.
func (cs Conditions) geq(o Element) bool {
	switch o := o.(type) {
	case Conditions:
		return o.leq(cs)
	default:
		panic(errPatternMatch(o))
	}
}

// Leq computes cs ⊑ o. Performs lattice dynamic type checking.
func (cs Conditions) Leq(o Element) bool {
	checkLatticeMatch(cs.Lattice(), o.Lattice(), "⊑")
	return cs.leq(o)
}

// leq computes cs ⊑ o as inclusion of condition identities.
func (cs Conditions) leq(o Element) bool {
	switch o := o.(type) {
	case Conditions:
		incl := true
		cs.set.ForEach(func(k condKey, _ Condition) {
			if _, found := o.set.Lookup(k); !found {
				incl = false
			}
		})
		return incl
	default:
		panic(errPatternMatch(o))
	}
}

// Conditions safely converts to a condition set.
func (cs Conditions) Conditions() Conditions {
	return cs
}

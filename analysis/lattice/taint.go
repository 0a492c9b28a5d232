package lattice

import (
	"sort"
	"strings"

	"github.com/cs-au-dk/cat/analysis/cir"
	loc "github.com/cs-au-dk/cat/analysis/location"
	"github.com/cs-au-dk/cat/utils"
	"github.com/cs-au-dk/cat/utils/tree"
)

// TaintLattice is the powerset lattice of taint origins. An abstract
// value is tainted when attacker-controlled input may flow into it, and
// symbolically tainted when its contents derive from a formal parameter
// whose taint status is only known at call sites.
type TaintLattice struct {
	lattice
}

// taintLattice is a singleton instantiation of the taint lattice.
var taintLattice = &TaintLattice{}

// Taint yields the taint lattice.
func (latticeFactory) Taint() *TaintLattice {
	return taintLattice
}

func (*TaintLattice) Top() Element {
	panic(errUnsupportedOperation)
}

func (l *TaintLattice) Bot() Element {
	return Taint{
		element: element{taintLattice},
		conc:    tree.NewTree[TaintSource, struct{}](utils.HashableHasher[TaintSource]()),
		sym:     tree.NewTree[loc.SymbolicParam, struct{}](symbolicParamHasher{}),
	}
}

func (*TaintLattice) String() string {
	return colorize.Lattice("℘(TaintSource)")
}

// Eq checks for equality with another lattice.
func (l1 *TaintLattice) Eq(l2 Lattice) bool {
	_, ok := l2.(*TaintLattice)
	return ok
}

// Taint safely converts to the taint lattice.
func (l *TaintLattice) Taint() *TaintLattice {
	return l
}

// TaintSource identifies a program point at which untrusted input
// entered the program.
type TaintSource struct {
	// Node is the call node of the input primitive.
	Node *cir.Node
	// Pos is the source position of the input primitive.
	Pos cir.Pos
}

// Hash for taint sources mixes the node and position hashes.
func (t TaintSource) Hash() uint32 {
	return utils.HashCombine(t.Node.Hash(), t.Pos.Hash())
}

// Equal checks taint sources for identity.
func (t TaintSource) Equal(o TaintSource) bool {
	return t.Node == o.Node && t.Pos == o.Pos
}

func (t TaintSource) String() string {
	return colorize.Attr("src") + "@" + t.Pos.String()
}

type symbolicParamHasher loc.LocationHasher

func (symbolicParamHasher) Hash(p loc.SymbolicParam) uint32 {
	return p.Hash()
}
func (symbolicParamHasher) Equal(a, b loc.SymbolicParam) bool {
	return a.Equal(b)
}

// Taint is a member of the taint lattice. It consists of a set of
// concrete input origins and a set of symbolic parameter origins.
// Both grow monotonically by union.
type Taint struct {
	element
	conc tree.Tree[TaintSource, struct{}]
	sym  tree.Tree[loc.SymbolicParam, struct{}]
}

// Taint constructs a taint element with the given concrete origins.
func (elementFactory) Taint(sources ...TaintSource) Taint {
	t := taintLattice.Bot().Taint()
	for _, s := range sources {
		t.conc = t.conc.Insert(s, struct{}{})
	}
	return t
}

// SymbolicTaint constructs the provenance of data that depends on the
// given parameter.
func (elementFactory) SymbolicTaint(sp loc.SymbolicParam) Taint {
	return taintLattice.Bot().Taint().AddSymbolic(sp)
}

// IsTainted checks whether the element carries a concrete input origin.
func (t Taint) IsTainted() bool {
	return t.conc.Size() > 0
}

// IsSymbolic checks whether the element derives from a formal parameter.
func (t Taint) IsSymbolic() bool {
	return t.sym.Size() > 0
}

// IsBot checks whether the element carries no origins at all.
func (t Taint) IsBot() bool {
	return !t.IsTainted() && !t.IsSymbolic()
}

// Height is the total number of origins.
func (t Taint) Height() int {
	return t.conc.Size() + t.sym.Size()
}

// AddSource recomputes the taint to include a concrete input origin.
func (t Taint) AddSource(s TaintSource) Taint {
	t.conc = t.conc.Insert(s, struct{}{})
	return t
}

// AddSymbolic recomputes the taint to include a symbolic parameter origin.
func (t Taint) AddSymbolic(p loc.SymbolicParam) Taint {
	t.sym = t.sym.Insert(p, struct{}{})
	return t
}

// Sources aggregates the concrete origins into a slice.
func (t Taint) Sources() (ret []TaintSource) {
	t.conc.ForEach(func(s TaintSource, _ struct{}) {
		ret = append(ret, s)
	})
	return ret
}

// Symbolics aggregates the symbolic origins into a slice.
func (t Taint) Symbolics() (ret []loc.SymbolicParam) {
	t.sym.ForEach(func(p loc.SymbolicParam, _ struct{}) {
		ret = append(ret, p)
	})
	return ret
}

// ForEachSymbolic performs procedure `f` on all symbolic origins.
func (t Taint) ForEachSymbolic(f func(loc.SymbolicParam)) {
	t.sym.ForEach(func(p loc.SymbolicParam, _ struct{}) { f(p) })
}

// DropSymbolic recomputes the taint without any symbolic origins.
// Used when instantiating a summary at a call site, where symbolic
// origins are resolved against the actual arguments.
func (t Taint) DropSymbolic() Taint {
	t.sym = tree.NewTree[loc.SymbolicParam, struct{}](symbolicParamHasher{})
	return t
}

func (t Taint) String() string {
	if t.IsBot() {
		return colorize.Const("untainted")
	}

	buf := []string{}
	t.conc.ForEach(func(s TaintSource, _ struct{}) {
		buf = append(buf, s.String())
	})
	t.sym.ForEach(func(p loc.SymbolicParam, _ struct{}) {
		buf = append(buf, p.String())
	})
	sort.Strings(buf)

	return "{" + strings.Join(buf, ", ") + "}"
}

// Join computes t ⊔ o. Performs lattice dynamic type checking.
func (t Taint) Join(o Element) Element {
	checkLatticeMatch(t.Lattice(), o.Lattice(), "⊔")
	return t.join(o)
}

// join computes t ⊔ o.
func (t Taint) join(o Element) Element {
	switch o := o.(type) {
	case Taint:
		return t.MonoJoin(o)
	default:
		panic(errPatternMatch(o))
	}
}

// MonoJoin is a monomorphic variant of t ⊔ o for taint elements.
// It unions both origin sets.
func (t Taint) MonoJoin(o Taint) Taint {
	t.conc = t.conc.Merge(o.conc, func(_, b struct{}) (struct{}, bool) {
		return b, true
	})
	t.sym = t.sym.Merge(o.sym, func(_, b struct{}) (struct{}, bool) {
		return b, true
	})
	return t
}

// Meet computes t ⊓ o. Performs lattice dynamic type checking.
func (t Taint) Meet(o Element) Element {
	checkLatticeMatch(t.Lattice(), o.Lattice(), "⊓")
	return t.meet(o)
}

// meet computes t ⊓ o as intersection of both origin sets.
func (t Taint) meet(o Element) Element {
	switch o := o.(type) {
	case Taint:
		res := taintLattice.Bot().Taint()
		t.conc.ForEach(func(s TaintSource, v struct{}) {
			if _, found := o.conc.Lookup(s); found {
				res.conc = res.conc.Insert(s, v)
			}
		})
		t.sym.ForEach(func(p loc.SymbolicParam, v struct{}) {
			if _, found := o.sym.Lookup(p); found {
				res.sym = res.sym.Insert(p, v)
			}
		})
		return res
	default:
		panic(errPatternMatch(o))
	}
}

// Eq computes t = o. Performs lattice dynamic type checking.
func (t Taint) Eq(o Element) bool {
	checkLatticeMatch(t.Lattice(), o.Lattice(), "=")
	return t.eq(o)
}

// eq computes t = o.
func (t Taint) eq(o Element) bool {
	switch o := o.(type) {
	case Taint:
		return t.conc.Equal(o.conc, func(_, _ struct{}) bool { return true }) &&
			t.sym.Equal(o.sym, func(_, _ struct{}) bool { return true })
	default:
		panic(errPatternMatch(o))
	}
}

// Geq computes t ⊒ o. Performs lattice dynamic type checking.
func (t Taint) Geq(o Element) bool {
	checkLatticeMatch(t.Lattice(), o.Lattice(), "⊒")
	return t.geq(o)
}

// geq computes t ⊒ o.
func (t Taint) geq(o Element) bool {
	switch o := o.(type) {
	case Taint:
		return o.leq(t)
	default:
		panic(errPatternMatch(o))
	}
}

// Leq computes t ⊑ o. Performs lattice dynamic type checking.
func (t Taint) Leq(o Element) bool {
	checkLatticeMatch(t.Lattice(), o.Lattice(), "⊑")
	return t.leq(o)
}

// leq computes t ⊑ o as inclusion of both origin sets.
func (t Taint) leq(o Element) bool {
	switch o := o.(type) {
	case Taint:
		incl := true
		t.conc.ForEach(func(s TaintSource, _ struct{}) {
			if _, found := o.conc.Lookup(s); !found {
				incl = false
			}
		})
		t.sym.ForEach(func(p loc.SymbolicParam, _ struct{}) {
			if _, found := o.sym.Lookup(p); !found {
				incl = false
			}
		})
		return incl
	default:
		panic(errPatternMatch(o))
	}
}

// Taint safely converts to a taint element.
func (t Taint) Taint() Taint {
	return t
}

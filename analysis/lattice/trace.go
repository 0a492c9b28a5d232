package lattice

import (
	"sort"
	"strings"

	"github.com/cs-au-dk/cat/analysis/cir"
	"github.com/cs-au-dk/cat/utils"
	"github.com/cs-au-dk/cat/utils/tree"
)

// TraceElem is one step in the provenance of an abstract value: where
// untrusted input entered, which operations it flowed through, and the
// sink where it may do harm.
type TraceElem interface {
	String() string
	Hash() uint32
	Equal(TraceElem) bool
	Position() cir.Pos
}

type (
	// InputSource records an input primitive that introduced taint.
	InputSource struct {
		Fn string
		P  cir.Pos
	}
	// BinOpTrace records an arithmetic operation a tainted value
	// flowed through.
	BinOpTrace struct {
		Op cir.BinOpKind
		P  cir.Pos
	}
	// PruneTrace records a branch comparison that refined the value.
	// Const distinguishes comparisons against a constant operand.
	PruneTrace struct {
		Op    cir.BinOpKind
		Const bool
		P     cir.Pos
	}
	// FormatSink records a format-string argument position.
	FormatSink struct {
		Fn string
		P  cir.Pos
	}
	// AllocSink records an allocation whose size the value dictated.
	AllocSink struct {
		Fn string
		P  cir.Pos
	}
	// ConcatSink records a string copy or concatenation destination.
	ConcatSink struct {
		Fn string
		P  cir.Pos
	}
)

func (e InputSource) Position() cir.Pos { return e.P }
func (e BinOpTrace) Position() cir.Pos  { return e.P }
func (e PruneTrace) Position() cir.Pos  { return e.P }
func (e FormatSink) Position() cir.Pos  { return e.P }
func (e AllocSink) Position() cir.Pos   { return e.P }
func (e ConcatSink) Position() cir.Pos  { return e.P }

func (e InputSource) String() string {
	return colorize.Attr("input") + "(" + e.Fn + ")@" + e.P.String()
}
func (e BinOpTrace) String() string {
	return colorize.Element("binop") + "(" + e.Op.String() + ")@" + e.P.String()
}
func (e PruneTrace) String() string {
	op := e.Op.String()
	if e.Const {
		op += " const"
	}
	return colorize.Element("prune") + "(" + op + ")@" + e.P.String()
}
func (e FormatSink) String() string {
	return colorize.Attr("format") + "(" + e.Fn + ")@" + e.P.String()
}
func (e AllocSink) String() string {
	return colorize.Attr("alloc") + "(" + e.Fn + ")@" + e.P.String()
}
func (e ConcatSink) String() string {
	return colorize.Attr("concat") + "(" + e.Fn + ")@" + e.P.String()
}

func (e InputSource) Hash() uint32 {
	return utils.HashCombine(1, utils.HashString(e.Fn), e.P.Hash())
}
func (e BinOpTrace) Hash() uint32 {
	return utils.HashCombine(2, uint32(e.Op), e.P.Hash())
}
func (e PruneTrace) Hash() uint32 {
	c := uint32(0)
	if e.Const {
		c = 1
	}
	return utils.HashCombine(3, uint32(e.Op), c, e.P.Hash())
}
func (e FormatSink) Hash() uint32 {
	return utils.HashCombine(4, utils.HashString(e.Fn), e.P.Hash())
}
func (e AllocSink) Hash() uint32 {
	return utils.HashCombine(5, utils.HashString(e.Fn), e.P.Hash())
}
func (e ConcatSink) Hash() uint32 {
	return utils.HashCombine(6, utils.HashString(e.Fn), e.P.Hash())
}

func (e InputSource) Equal(o TraceElem) bool {
	o2, ok := o.(InputSource)
	return ok && e == o2
}
func (e BinOpTrace) Equal(o TraceElem) bool {
	o2, ok := o.(BinOpTrace)
	return ok && e == o2
}
func (e PruneTrace) Equal(o TraceElem) bool {
	o2, ok := o.(PruneTrace)
	return ok && e == o2
}
func (e FormatSink) Equal(o TraceElem) bool {
	o2, ok := o.(FormatSink)
	return ok && e == o2
}
func (e AllocSink) Equal(o TraceElem) bool {
	o2, ok := o.(AllocSink)
	return ok && e == o2
}
func (e ConcatSink) Equal(o TraceElem) bool {
	o2, ok := o.(ConcatSink)
	return ok && e == o2
}

// Trace is a persistent, append-only log of trace elements, ordered
// from input source towards sink. Appending shares the prefix.
type Trace struct {
	prev   *Trace
	last   TraceElem
	length int
	hash   uint32
}

// NewTrace starts a trace from a single element.
func NewTrace(el TraceElem) *Trace {
	return &Trace{
		last:   el,
		length: 1,
		hash:   el.Hash(),
	}
}

// Append extends the trace with an element, sharing the existing log.
func (t *Trace) Append(el TraceElem) *Trace {
	return &Trace{
		prev:   t,
		last:   el,
		length: t.length + 1,
		hash:   utils.HashCombine(t.hash, el.Hash()),
	}
}

// Last is the most recently appended element.
func (t *Trace) Last() TraceElem {
	return t.last
}

// Len is the number of elements in the trace.
func (t *Trace) Len() int {
	return t.length
}

// Hash for traces combines the element hashes in order.
func (t *Trace) Hash() uint32 {
	return t.hash
}

// Equal checks traces for element-wise equality.
func (t *Trace) Equal(o *Trace) bool {
	if t.length != o.length || t.hash != o.hash {
		return false
	}
	for t != nil {
		if !t.last.Equal(o.last) {
			return false
		}
		t, o = t.prev, o.prev
	}
	return true
}

// Elems aggregates the trace elements into a slice in append order.
func (t *Trace) Elems() []TraceElem {
	ret := make([]TraceElem, t.length)
	for i := t.length - 1; t != nil; i, t = i-1, t.prev {
		ret[i] = t.last
	}
	return ret
}

func (t *Trace) String() string {
	elems := t.Elems()
	strs := make([]string, len(elems))
	for i, el := range elems {
		strs[i] = el.String()
	}
	return strings.Join(strs, " → ")
}

type traceHasher struct{}

func (traceHasher) Hash(t *Trace) uint32   { return t.Hash() }
func (traceHasher) Equal(a, b *Trace) bool { return a.Equal(b) }

// TracesLattice is the powerset lattice of dataflow traces. Traces are
// advisory: they explain reports but never influence the value ordering.
type TracesLattice struct {
	lattice
}

// tracesLattice is a singleton instantiation of the traces lattice.
var tracesLattice = &TracesLattice{}

// Traces yields the traces lattice.
func (latticeFactory) Traces() *TracesLattice {
	return tracesLattice
}

func (*TracesLattice) Top() Element {
	panic(errUnsupportedOperation)
}

func (l *TracesLattice) Bot() Element {
	return Traces{
		element{tracesLattice},
		tree.NewTree[*Trace, struct{}](traceHasher{}),
	}
}

func (*TracesLattice) String() string {
	return colorize.Lattice("℘(Trace)")
}

// Eq checks for equality with another lattice.
func (l1 *TracesLattice) Eq(l2 Lattice) bool {
	_, ok := l2.(*TracesLattice)
	return ok
}

// Traces safely converts to the traces lattice.
func (l *TracesLattice) Traces() *TracesLattice {
	return l
}

// Traces is a set of dataflow traces.
type Traces struct {
	element
	set tree.Tree[*Trace, struct{}]
}

// Traces constructs a trace set with the given members.
func (elementFactory) Traces(traces ...*Trace) Traces {
	t := tracesLattice.Bot().Traces()
	for _, tr := range traces {
		t.set = t.set.Insert(tr, struct{}{})
	}
	return t
}

// Size is the number of traces in the set.
func (t Traces) Size() int {
	return t.set.Size()
}

// Height is the number of traces in the set.
func (t Traces) Height() int {
	return t.set.Size()
}

// Empty checks whether the trace set is ∅.
func (t Traces) Empty() bool {
	return t.Size() == 0
}

// Entries aggregates the traces of the set into a slice.
func (t Traces) Entries() (ret []*Trace) {
	t.set.ForEach(func(tr *Trace, _ struct{}) {
		ret = append(ret, tr)
	})
	return ret
}

// ForEach performs procedure `f` on all traces in the set.
func (t Traces) ForEach(f func(*Trace)) {
	t.set.ForEach(func(tr *Trace, _ struct{}) { f(tr) })
}

// Add recomputes the trace set to include the given trace.
func (t Traces) Add(tr *Trace) Traces {
	t.set = t.set.Insert(tr, struct{}{})
	return t
}

// Append extends every trace in the set with the given element.
// An empty set becomes the singleton trace of that element.
func (t Traces) Append(el TraceElem) Traces {
	if t.Empty() {
		return t.Add(NewTrace(el))
	}
	res := tracesLattice.Bot().Traces()
	t.set.ForEach(func(tr *Trace, _ struct{}) {
		res.set = res.set.Insert(tr.Append(el), struct{}{})
	})
	return res
}

// AppendUnlessLast extends every trace whose final element differs from
// the given one, keeping repeated refinements from piling up when a
// fixpoint revisits the same branch.
func (t Traces) AppendUnlessLast(el TraceElem) Traces {
	if t.Empty() {
		return t.Add(NewTrace(el))
	}
	res := tracesLattice.Bot().Traces()
	t.set.ForEach(func(tr *Trace, _ struct{}) {
		if tr.Last().Equal(el) {
			res.set = res.set.Insert(tr, struct{}{})
		} else {
			res.set = res.set.Insert(tr.Append(el), struct{}{})
		}
	})
	return res
}

func (t Traces) String() string {
	if t.Empty() {
		return colorize.Element("∅")
	}

	buf := []string{}
	t.ForEach(func(tr *Trace) {
		buf = append(buf, tr.String())
	})
	sort.Strings(buf)

	return "{" + strings.Join(buf, "; ") + "}"
}

// Join computes t ⊔ o. Performs lattice dynamic type checking.
func (t Traces) Join(o Element) Element {
	checkLatticeMatch(t.Lattice(), o.Lattice(), "⊔")
	return t.join(o)
}

// join computes t ⊔ o.
func (t Traces) join(o Element) Element {
	switch o := o.(type) {
	case Traces:
		return t.MonoJoin(o)
	default:
		panic(errPatternMatch(o))
	}
}

// MonoJoin is a monomorphic variant of t ⊔ o for trace sets.
func (t Traces) MonoJoin(o Traces) Traces {
	t.set = t.set.Merge(o.set, func(_, b struct{}) (struct{}, bool) {
		return b, true
	})
	return t
}

// Meet computes t ⊓ o. Performs lattice dynamic type checking.
func (t Traces) Meet(o Element) Element {
	checkLatticeMatch(t.Lattice(), o.Lattice(), "⊓")
	return t.meet(o)
}

// meet computes t ⊓ o as trace set intersection.
func (t Traces) meet(o Element) Element {
	switch o := o.(type) {
	case Traces:
		res := tracesLattice.Bot().Traces()
		t.set.ForEach(func(tr *Trace, v struct{}) {
			if _, found := o.set.Lookup(tr); found {
				res.set = res.set.Insert(tr, v)
			}
		})
		return res
	default:
		panic(errPatternMatch(o))
	}
}

// Eq computes t = o. Performs lattice dynamic type checking.
func (t Traces) Eq(o Element) bool {
	checkLatticeMatch(t.Lattice(), o.Lattice(), "=")
	return t.eq(o)
}

// eq computes t = o.
func (t Traces) eq(o Element) bool {
	switch o := o.(type) {
	case Traces:
		return t.set.Equal(o.set, func(_, _ struct{}) bool { return true })
	default:
		panic(errPatternMatch(o))
	}
}

// Geq computes t ⊒ o. Performs lattice dynamic type checking.
func (t Traces) Geq(o Element) bool {
	checkLatticeMatch(t.Lattice(), o.Lattice(), "⊒")
	return t.geq(o)
}

// geq computes t ⊒ o.
func (t Traces) geq(o Element) bool {
	switch o := o.(type) {
	case Traces:
		return o.leq(t)
	default:
		panic(errPatternMatch(o))
	}
}

// Leq computes t ⊑ o. Performs lattice dynamic type checking.
func (t Traces) Leq(o Element) bool {
	checkLatticeMatch(t.Lattice(), o.Lattice(), "⊑")
	return t.leq(o)
}

// leq computes t ⊑ o as set inclusion.
func (t Traces) leq(o Element) bool {
	switch o := o.(type) {
	case Traces:
		incl := true
		t.set.ForEach(func(tr *Trace, _ struct{}) {
			if _, found := o.set.Lookup(tr); !found {
				incl = false
			}
		})
		return incl
	default:
		panic(errPatternMatch(o))
	}
}

// Traces safely converts to a trace set.
func (t Traces) Traces() Traces {
	return t
}

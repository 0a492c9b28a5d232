package bounds

import (
	"github.com/cs-au-dk/cat/analysis/cir"
	"github.com/cs-au-dk/cat/analysis/lattice"
	loc "github.com/cs-au-dk/cat/analysis/location"
	"github.com/cs-au-dk/cat/utils"
	"github.com/cs-au-dk/cat/utils/tree"

	"golang.org/x/tools/container/intsets"
)

// Package bounds carries the per-location interval facts produced by
// the numeric analysis that runs ahead of the taint analysis. The
// numeric analysis itself lives outside this repository; tests and the
// demo driver fill a Facts container by hand. A nil *Facts is a legal
// oracle: every accessor degrades to the unbounded answer, so
// consumers fall back to location-only reasoning.

// Facts holds the interval environments of one procedure, keyed by
// control-flow node. Locations are interned to dense identifiers so
// program points can track their domains as integer sets.
type Facts struct {
	proc *cir.Proc
	locs []loc.LocWithIdx
	ids  tree.Tree[loc.LocWithIdx, int]
	pre  map[int]*Env
	post map[int]*Env
}

// New creates an empty facts container for the given procedure.
func New(proc *cir.Proc) *Facts {
	return &Facts{
		proc: proc,
		ids:  tree.NewTree[loc.LocWithIdx, int](utils.HashableHasher[loc.LocWithIdx]()),
		pre:  map[int]*Env{},
		post: map[int]*Env{},
	}
}

// Proc is the procedure the facts describe.
func (f *Facts) Proc() *cir.Proc {
	if f == nil {
		return nil
	}
	return f.proc
}

// intern assigns l a dense identifier, stable for the lifetime of the
// container.
func (f *Facts) intern(l loc.LocWithIdx) int {
	if id, found := f.ids.Lookup(l); found {
		return id
	}
	id := len(f.locs)
	f.locs = append(f.locs, l)
	f.ids = f.ids.Insert(l, id)
	return id
}

// LocOf resolves a dense identifier back to its location.
func (f *Facts) LocOf(id int) loc.LocWithIdx {
	return f.locs[id]
}

func (f *Facts) env(m map[int]*Env, n *cir.Node) *Env {
	if e, found := m[n.Index]; found {
		return e
	}
	e := &Env{facts: f, ivs: map[int]lattice.Interval{}}
	m[n.Index] = e
	return e
}

// BindPre records l ↦ iv in the pre-state of n.
func (f *Facts) BindPre(n *cir.Node, l loc.LocWithIdx, iv lattice.Interval) *Facts {
	f.env(f.pre, n).bind(f.intern(l), iv)
	return f
}

// BindPost records l ↦ iv in the post-state of n.
func (f *Facts) BindPost(n *cir.Node, l loc.LocWithIdx, iv lattice.Interval) *Facts {
	f.env(f.post, n).bind(f.intern(l), iv)
	return f
}

// Pre returns the interval environment before n executes. Safe on a
// nil receiver; a nil result is the empty environment.
func (f *Facts) Pre(n *cir.Node) *Env {
	if f == nil {
		return nil
	}
	return f.pre[n.Index]
}

// Post returns the interval environment after n executes. Safe on a
// nil receiver; a nil result is the empty environment.
func (f *Facts) Post(n *cir.Node) *Env {
	if f == nil {
		return nil
	}
	return f.post[n.Index]
}

// NewLocs lists the locations bound in the post-state of n but absent
// from its pre-state, in interning order. Allocating calls introduce
// their buffers this way.
func (f *Facts) NewLocs(n *cir.Node) []loc.LocWithIdx {
	if f == nil {
		return nil
	}

	var fresh intsets.Sparse
	fresh.Copy(f.Post(n).AllLocs())
	fresh.DifferenceWith(f.Pre(n).AllLocs())

	res := make([]loc.LocWithIdx, 0, fresh.Len())
	for _, id := range fresh.AppendTo(nil) {
		res = append(res, f.locs[id])
	}
	return res
}

// Env is the interval environment at one program point.
type Env struct {
	facts *Facts
	ivs   map[int]lattice.Interval
	set   intsets.Sparse
}

func (e *Env) bind(id int, iv lattice.Interval) {
	e.ivs[id] = iv
	e.set.Insert(id)
}

// IntervalOf looks up the interval fact for l. Unknown locations yield
// (⊤, false).
func (e *Env) IntervalOf(l loc.LocWithIdx) (lattice.Interval, bool) {
	top := lattice.Create().Lattice().Interval().Top().Interval()
	if e == nil {
		return top, false
	}
	id, found := e.facts.ids.Lookup(l)
	if !found {
		return top, false
	}
	iv, found := e.ivs[id]
	if !found {
		return top, false
	}
	return iv, true
}

// Has reports whether l carries a fact at this point.
func (e *Env) Has(l loc.LocWithIdx) bool {
	_, found := e.IntervalOf(l)
	return found
}

// AllLocs returns the identifiers of the locations bound at this
// point. The result is shared with the environment; callers must not
// mutate it.
func (e *Env) AllLocs() *intsets.Sparse {
	if e == nil {
		return &intsets.Sparse{}
	}
	return &e.set
}

// ForEach performs procedure `do` on all facts at this point, in
// interning order.
func (e *Env) ForEach(do func(loc.LocWithIdx, lattice.Interval)) {
	if e == nil {
		return
	}
	for _, id := range e.set.AppendTo(nil) {
		do(e.facts.locs[id], e.ivs[id])
	}
}

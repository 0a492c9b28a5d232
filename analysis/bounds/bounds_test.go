package bounds

import (
	"testing"

	"github.com/cs-au-dk/cat/analysis/cir"
	"github.com/cs-au-dk/cat/analysis/lattice"
	loc "github.com/cs-au-dk/cat/analysis/location"
)

func testFixture() (*cir.Proc, []*cir.Node, []loc.LocWithIdx) {
	pos := func(line int) cir.Pos {
		return cir.Pos{File: "test.c", Line: line, Col: 1}
	}

	b := cir.NewProc("f", pos(1))
	n := b.Param("n", cir.IntType, pos(1))
	b.Local("buf", cir.PtrTo(cir.CharType), pos(2))
	b.Call(nil, "getc", nil, pos(3))
	p := b.Finish()

	nloc := loc.FromLocation(loc.LocationFromVar(n))
	bufloc := loc.FromLocation(loc.LocationFromVar(p.Locals[0]))
	return p, p.Nodes, []loc.LocWithIdx{nloc, bufloc}
}

func TestFactsLookup(t *testing.T) {
	p, nodes, locs := testFixture()
	nloc, bufloc := locs[0], locs[1]

	f := New(p).
		BindPre(nodes[1], nloc, lattice.Elements().IntervalFinite(0, 10)).
		BindPost(nodes[1], nloc, lattice.Elements().IntervalFinite(0, 5))

	iv, found := f.Pre(nodes[1]).IntervalOf(nloc)
	if !found || !iv.Eq(lattice.Elements().IntervalFinite(0, 10)) {
		t.Errorf("pre lookup yielded (%v, %v)", iv, found)
	}
	iv, found = f.Post(nodes[1]).IntervalOf(nloc)
	if !found || !iv.Eq(lattice.Elements().IntervalFinite(0, 5)) {
		t.Errorf("post lookup yielded (%v, %v)", iv, found)
	}

	// Unknown locations are unbounded.
	if iv, found := f.Pre(nodes[1]).IntervalOf(bufloc); found || !iv.IsTop() {
		t.Errorf("unknown location yielded (%v, %v), expected (⊤, false)", iv, found)
	}
	// Unvisited nodes carry the empty environment.
	if f.Pre(nodes[0]).Has(nloc) {
		t.Errorf("fact leaked to an unvisited node")
	}
}

func TestFactsNewLocs(t *testing.T) {
	p, nodes, locs := testFixture()
	nloc, bufloc := locs[0], locs[1]
	top := lattice.Create().Lattice().Interval().Top().Interval()

	f := New(p).
		BindPre(nodes[2], nloc, lattice.Elements().IntervalConst(4)).
		BindPost(nodes[2], nloc, lattice.Elements().IntervalConst(4)).
		BindPost(nodes[2], bufloc, top)

	fresh := f.NewLocs(nodes[2])
	if len(fresh) != 1 || !fresh[0].Equal(bufloc) {
		t.Errorf("expected new locations {%v}, got %v", bufloc, fresh)
	}
}

func TestFactsNilOracle(t *testing.T) {
	_, nodes, locs := testFixture()
	var f *Facts

	if env := f.Pre(nodes[1]); env != nil {
		t.Errorf("nil oracle produced a pre environment")
	}
	if iv, found := f.Pre(nodes[1]).IntervalOf(locs[0]); found || !iv.IsTop() {
		t.Errorf("nil oracle yielded (%v, %v), expected (⊤, false)", iv, found)
	}
	if fresh := f.NewLocs(nodes[1]); len(fresh) != 0 {
		t.Errorf("nil oracle introduced locations: %v", fresh)
	}
	if f.Post(nodes[1]).AllLocs().Len() != 0 {
		t.Errorf("nil oracle has a nonempty domain")
	}
}

package lattice

import (
	"testing"

	"github.com/cs-au-dk/cat/analysis/cir"
)

func TestSummaryJoin(t *testing.T) {
	p := testProc("f")
	x := testVarLoc(p, "x")
	pos := cir.Pos{File: "test.c", Line: 3, Col: 1}

	s1 := Elements().Summary(
		Elements().Memory().Update(x, Elements().AbstractBasic()),
		Elements().Conditions(),
	)
	s2 := Elements().Summary(
		Elements().Memory().Update(x, Consts().UninitValue()),
		Elements().Conditions(NewCondition(CondUninit, x, Consts().Uninitialized(), pos)),
	)

	joined := s1.MonoJoin(s2)

	if v, _ := joined.Memory().Get(x); v.InitValue() != _INIT_TOP {
		t.Errorf("memory component did not join: %v", v)
	}
	if joined.Conditions().Size() != 1 {
		t.Errorf("condition component did not join: %v", joined.Conditions())
	}
	if !s1.leq(joined) || !s2.leq(joined) {
		t.Errorf("operand not ⊑ join result")
	}
}

func TestSummaryWiden(t *testing.T) {
	p := testProc("f")
	x := testVarLoc(p, "x")

	prev := Elements().Summary(
		Elements().Memory().Update(x, Consts().UninitValue()),
		Elements().Conditions(),
	)
	next := Elements().Summary(
		Elements().Memory().Update(x, Elements().AbstractBasic()),
		Elements().Conditions(),
	)

	// Widening keeps the newest iterate.
	if !next.Widen(prev).eq(next) {
		t.Errorf("widening altered the new iterate")
	}
}

package lattice

import (
	"testing"

	"github.com/cs-au-dk/cat/analysis/cir"
	loc "github.com/cs-au-dk/cat/analysis/location"
)

func TestSubstituteSymbolic(t *testing.T) {
	callee := testProc("g")
	callee.Params = []*cir.Var{
		{Name: "p", Typ: cir.PtrTo(cir.CharType), Proc: callee},
	}
	sym := loc.FromLocation(loc.NewSymbolicParam(callee, 0))

	caller := testProc("f")
	al := testVarLoc(caller, "a")
	bl := testVarLoc(caller, "b")

	callerMem := Elements().Memory().
		Update(al, Consts().BasicValue()).
		Update(bl, Consts().UninitValue())

	pos := cir.Pos{File: "g.c", Line: 12, Col: 3}
	cond := NewCondition(CondUninit, sym, Consts().InitBot(), pos)

	resolve := func(l loc.LocWithIdx) LocSet {
		if l.Equal(sym) {
			return Elements().LocSet(al, bl)
		}
		return Elements().LocSet()
	}

	res := Substitute(resolve, callerMem, cond)
	if len(res) != 2 {
		t.Fatalf("expected one condition per resolved location, got %v", res)
	}

	byLoc := map[string]Condition{}
	for _, c := range res {
		byLoc[c.Loc.String()] = c
		if c.Kind != CondUninit || c.Pos != pos {
			t.Errorf("substitution changed kind or position: %v", c)
		}
	}

	if c := byLoc[al.String()]; !c.Init.IsInitialized() {
		t.Errorf("initialization not re-read from caller memory at %v: %v", al, c.Init)
	}
	if c := byLoc[bl.String()]; !c.Init.IsUninitialized() {
		t.Errorf("initialization not re-read from caller memory at %v: %v", bl, c.Init)
	}
}

func TestSubstituteConcreteAndUnresolved(t *testing.T) {
	caller := testProc("f")
	al := testVarLoc(caller, "a")
	callerMem := Elements().Memory().Update(al, Consts().BasicValue())

	noResolve := func(loc.LocWithIdx) LocSet { return Elements().LocSet() }

	// Concrete targets keep their location but have their
	// initialization recomputed against the caller's memory.
	concrete := NewCondition(CondOverflow, al, Consts().Uninitialized(),
		cir.Pos{File: "g.c", Line: 4})
	res := Substitute(noResolve, callerMem, concrete)
	if len(res) != 1 || !res[0].Loc.Equal(al) {
		t.Fatalf("concrete condition should stay at its location, got %v", res)
	}
	if !res[0].Init.IsInitialized() {
		t.Errorf("initialization should be recomputed from caller memory, got %v", res[0].Init)
	}

	// Unresolvable symbolic targets survive at the symbolic site.
	callee := testProc("g")
	callee.Params = []*cir.Var{
		{Name: "p", Typ: cir.PtrTo(cir.CharType), Proc: callee},
	}
	sym := loc.FromLocation(loc.NewSymbolicParam(callee, 0))
	symbolic := NewCondition(CondFormat, sym, Consts().Initialized(),
		cir.Pos{File: "g.c", Line: 9})

	res = Substitute(noResolve, callerMem, symbolic)
	if len(res) != 1 || !res[0].Loc.Equal(sym) {
		t.Errorf("unresolved symbolic condition should pass through, got %v", res)
	}
}

func TestSubstituteCarriesPayload(t *testing.T) {
	callee := testProc("g")
	callee.Params = []*cir.Var{
		{Name: "n", Typ: cir.IntType, Proc: callee},
	}
	sym := loc.FromLocation(loc.NewSymbolicParam(callee, 0))

	caller := testProc("f")
	al := testVarLoc(caller, "a")
	callerMem := Elements().Memory().Update(al, Consts().BasicValue())

	traces := Elements().Traces().Append(InputSource{
		Fn: "fread",
		P:  cir.Pos{File: "g.c", Line: 2},
	})
	cond := NewCondition(CondOverflow, sym, Consts().InitBot(),
		cir.Pos{File: "g.c", Line: 7}).WithTraces(traces)

	cs := Elements().Conditions(cond).MarkReported(cond)
	var reportedCond Condition
	cs.ForEach(func(c Condition) { reportedCond = c })

	resolve := func(loc.LocWithIdx) LocSet { return Elements().LocSet(al) }
	res := Substitute(resolve, callerMem, reportedCond)
	if len(res) != 1 {
		t.Fatalf("expected a single substituted condition, got %v", res)
	}
	if !res[0].Traces().eq(traces) {
		t.Errorf("traces should carry over substitution: %v", res[0].Traces())
	}
	if !res[0].Reported() {
		t.Errorf("reported flag should carry over substitution")
	}
}

package absint

import (
	"testing"

	"github.com/cs-au-dk/cat/analysis/cir"
	L "github.com/cs-au-dk/cat/analysis/lattice"
	loc "github.com/cs-au-dk/cat/analysis/location"
)

func TestParamMemory(t *testing.T) {
	pos := cir.Pos{File: "svc.c", Line: 1}
	b := cir.NewProc("handler", pos)
	buf := b.Param("buf", cir.PtrTo(cir.CharType), pos)
	n := b.Param("n", cir.IntType, pos)
	proc := b.Finish()

	mem := ParamMemory(proc)
	if mem.Size() != 3 {
		t.Errorf("expected bindings for two parameters and one stand-in cell, got %v", mem)
	}

	sym := loc.FromLocation(loc.NewSymbolicParam(proc, 0))

	bufV, found := mem.Get(vloc(buf))
	if !found {
		t.Fatalf("pointer parameter unbound in the entry frame")
	}
	if cell, ok := bufV.PointerValue().GetSingle(); !ok || !cell.Equal(sym) {
		t.Errorf("pointer parameter should target its stand-in cell, got %v", bufV)
	}
	if !bufV.IsSymbolic() || bufV.IsTainted() {
		t.Errorf("parameter provenance should be symbolic, not concrete: %v", bufV)
	}

	behind, found := mem.Get(sym)
	if !found {
		t.Fatalf("stand-in cell unbound in the entry frame")
	}
	if !behind.IsSymbolic() || !behind.MayBeUninit() {
		t.Errorf("caller-provided contents should stay undecided: %v", behind)
	}

	nV, _ := mem.Get(vloc(n))
	if !nV.IsSymbolic() || !nV.PointerValue().Empty() || nV.MayBeUninit() {
		t.Errorf("scalar parameter shape is off: %v", nV)
	}
}

// TestAnalyzeLoop runs the classic accumulate-then-allocate loop. The
// analysis must terminate, flag the allocation once, and keep the
// provenance payload bounded while the loop re-executes.
func TestAnalyzeLoop(t *testing.T) {
	at := func(line int) cir.Pos { return cir.Pos{File: "loop.c", Line: line} }

	b := cir.NewProc("main", at(1))
	buf := b.Local("buf", cir.ArrOf(cir.CharType), at(1))
	b.Call(nil, "fgets", []cir.Expr{ref(buf, at(2)), lit(64, at(2))}, at(2))
	x := b.Local("x", cir.IntType, at(3))
	b.Call(cir.VarLVal(x, at(3)), "atoi", []cir.Expr{ref(buf, at(3))}, at(3))
	i := b.Local("i", cir.IntType, at(4))
	b.Assign(cir.VarLVal(i, at(4)), lit(0, at(4)), at(4))

	head := b.Branch(&cir.BinOp{
		Op: cir.Lt, X: lv(i, at(5)), Y: lit(100, at(5)), Typ: cir.IntType, P: at(5),
	}, at(5))
	b.Assign(cir.VarLVal(i, at(6)), &cir.BinOp{
		Op: cir.PlusA, X: lv(i, at(6)), Y: lv(x, at(6)), Typ: cir.IntType, P: at(6),
	}, at(6))
	tail := b.Assign(cir.VarLVal(i, at(7)), &cir.BinOp{
		Op: cir.Mult, X: lv(i, at(7)), Y: lv(x, at(7)), Typ: cir.IntType, P: at(7),
	}, at(7))
	b.Goto(tail, head)
	b.Resume(head)

	p := b.Local("p", cir.PtrTo(cir.CharType), at(9))
	b.Call(cir.VarLVal(p, at(9)), "malloc", []cir.Expr{lv(i, at(9))}, at(9))

	sum := analyzeProc(t, b.Finish())

	c := singleCondition(t, sum)
	if c.Kind != L.CondOverflow || !c.Loc.Equal(vloc(i)) {
		t.Errorf("expected one overflow finding on the loop counter, got %v", c)
	}
	if c.Pos.Line != 9 {
		t.Errorf("finding placed at line %d, expected the allocation", c.Pos.Line)
	}
	if c.Traces().Empty() {
		t.Fatalf("finding lost its provenance")
	}
	c.Traces().ForEach(func(tr *L.Trace) {
		if _, ok := tr.Last().(L.AllocSink); !ok {
			t.Errorf("every trace should end at the sink: %v", tr)
		}
		if tr.Len() > 5 {
			t.Errorf("loop re-execution inflated a trace: %v", tr)
		}
	})

	v, _ := sum.Memory().Get(vloc(i))
	if !v.IsTainted() || !v.OvfValue().MayOverflow() {
		t.Errorf("loop counter lost its character across iterations: %v", v)
	}
}

// TestCapTraces pins the widening helper: revisiting a loop head past
// the bound freezes the traces of surviving bindings at the previous
// iterate while fresh bindings keep theirs.
func TestCapTraces(t *testing.T) {
	pos := cir.Pos{File: "w.c", Line: 2}
	b := cir.NewProc("f", pos)
	x := b.Local("x", cir.IntType, pos)
	y := b.Local("y", cir.IntType, pos)
	n := b.Nop(pos)

	base := L.Elements().
		AbstractTainted(L.TaintSource{Node: n, Pos: pos}).
		AppendTrace(L.InputSource{Fn: "fgets", P: pos})
	grown := base.AppendTrace(L.BinOpTrace{Op: cir.PlusA, P: pos})

	prev := L.Elements().Memory().Update(vloc(x), base)
	next := L.Elements().Memory().Update(vloc(x), grown).Update(vloc(y), grown)

	capped := capTraces(prev, next)

	vx, _ := capped.Get(vloc(x))
	if !vx.TraceValue().Eq(base.TraceValue()) {
		t.Errorf("surviving binding kept growing: %v", vx.TraceValue())
	}
	if !vx.IsTainted() {
		t.Errorf("capping must only touch traces, lost taint: %v", vx)
	}
	vy, _ := capped.Get(vloc(y))
	if !vy.TraceValue().Eq(grown.TraceValue()) {
		t.Errorf("fresh binding should keep its traces: %v", vy.TraceValue())
	}
}

func TestReturnJoinsExits(t *testing.T) {
	at := func(line int) cir.Pos { return cir.Pos{File: "pick.c", Line: line} }

	b := cir.NewProc("pick", at(1)).Returns(cir.IntType)
	n := b.Param("n", cir.IntType, at(1))
	br := b.Branch(&cir.BinOp{
		Op: cir.Lt, X: lv(n, at(2)), Y: lit(0, at(2)), Typ: cir.IntType, P: at(2),
	}, at(2))
	b.Return(lit(0, at(3)), at(3))
	b.Resume(br)
	b.Return(lv(n, at(4)), at(4))
	proc := b.Finish()

	sum := Analyze(proc, DefaultRegistry(&ModelConfig{}), nil)
	if !sum.Conditions().Empty() {
		t.Errorf("straight-line returns raised conditions: %v", sum.Conditions())
	}

	rv, found := sum.Memory().Get(loc.FromLocation(loc.ReturnLocation(proc)))
	if !found {
		t.Fatalf("return value unbound in the exit memory")
	}
	// One arm returns a constant, the other the parameter; the join
	// keeps the parameter's symbolic provenance.
	if !rv.IsSymbolic() {
		t.Errorf("return value lost the parameter's provenance: %v", rv)
	}
}

func TestUnmodeledCall(t *testing.T) {
	at := func(line int) cir.Pos { return cir.Pos{File: "t.c", Line: line} }

	b := cir.NewProc("main", at(1))
	r := b.Local("r", cir.IntType, at(2))
	b.Call(cir.VarLVal(r, at(3)), "frobnicate", nil, at(3))

	sum := analyzeProc(t, b.Finish())
	if !sum.Conditions().Empty() {
		t.Errorf("unknown callee raised conditions: %v", sum.Conditions())
	}
	v, found := sum.Memory().Get(vloc(r))
	if !found || !v.IsBot() {
		t.Errorf("unknown callee should bind nothing to its result: %v", v)
	}
}

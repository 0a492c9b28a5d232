package absint

import (
	"testing"

	"github.com/cs-au-dk/cat/analysis/cir"
	L "github.com/cs-au-dk/cat/analysis/lattice"
)

func TestPruneDischargesOverflow(t *testing.T) {
	inPos := cir.Pos{File: "records.c", Line: 3}
	pos := cir.Pos{File: "records.c", Line: 6}
	b := cir.NewProc("f", pos)
	total := b.Local("total", cir.IntType, pos)
	n := b.Nop(pos)
	env := NewEnv(n, nil, NewAliasTable())

	src := L.TaintSource{Node: n, Pos: inPos}
	mem := L.Elements().Memory().Update(vloc(total), L.Elements().
		AbstractTainted(src).
		UpdateOvf(L.Consts().MayOvf()).
		AppendTrace(L.InputSource{Fn: "fgets", P: inPos}))

	cond := &cir.BinOp{Op: cir.Lt, X: lv(total, pos), Y: lit(256, pos), P: pos}

	taken := Prune(env, mem, cond, true)
	v, _ := taken.Get(vloc(total))
	if v.OvfValue().MayOverflow() {
		t.Errorf("upper bound did not discharge the overflow: %v", v)
	}
	if !v.TaintValue().IsTainted() {
		t.Errorf("bounds check unmarked attacker-chosen data: %v", v)
	}
	trs := v.TraceValue().Entries()
	if len(trs) != 1 || !trs[0].Last().Equal(L.PruneTrace{Op: cir.Lt, Const: true, P: pos}) {
		t.Errorf("comparison not recorded in provenance: %v", v.TraceValue())
	}

	// The untaken branch keeps the pending overflow but records the
	// comparison all the same.
	skipped := Prune(env, mem, cond, false)
	v, _ = skipped.Get(vloc(total))
	if !v.OvfValue().MayOverflow() {
		t.Errorf("fallthrough branch discharged the overflow: %v", v)
	}
	if len(v.TraceValue().Entries()) != 1 {
		t.Errorf("fallthrough branch lost provenance: %v", v.TraceValue())
	}
}

// TestPruneNarrowsCopies checks that the refinement applies to every
// binding carrying the compared value, so copies narrow along with the
// original, while unrelated bindings stay untouched.
func TestPruneNarrowsCopies(t *testing.T) {
	pos := cir.Pos{File: "copies.c", Line: 8}
	b := cir.NewProc("f", pos)
	x := b.Local("x", cir.IntType, pos)
	y := b.Local("y", cir.IntType, pos)
	z := b.Local("z", cir.IntType, pos)
	n := b.Nop(pos)
	env := NewEnv(n, nil, NewAliasTable())

	src := L.TaintSource{Node: n, Pos: pos}
	shared := L.Elements().AbstractTainted(src).UpdateOvf(L.Consts().MayOvf())
	mem := L.Elements().Memory().
		Update(vloc(x), shared).
		Update(vloc(y), shared).
		Update(vloc(z), L.Elements().AbstractBasic())

	out := Prune(env, mem, &cir.BinOp{Op: cir.Le, X: lv(x, pos), Y: lit(64, pos), P: pos}, true)

	for _, v := range []*cir.Var{x, y} {
		got, _ := out.Get(vloc(v))
		if got.OvfValue().MayOverflow() {
			t.Errorf("%s kept its pending overflow across the comparison", v.Name)
		}
	}
	zv, _ := out.Get(vloc(z))
	if !zv.Eq(L.Elements().AbstractBasic()) {
		t.Errorf("unrelated binding was rewritten: %v", zv)
	}
}

func TestPruneNullTest(t *testing.T) {
	pos := cir.Pos{File: "null.c", Line: 5}
	b := cir.NewProc("f", pos)
	p := b.Local("p", cir.PtrTo(cir.IntType), pos)
	a := b.Local("a", cir.IntType, pos)
	n := b.Nop(pos)
	env := NewEnv(n, nil, NewAliasTable())

	maybeNil := L.Elements().LocSet(vloc(a)).MonoJoin(L.Consts().LocSetNil())
	mem := L.Elements().Memory().
		Update(vloc(p), L.Elements().AbstractPointer(maybeNil))

	// `if (p)` tests the pointer against zero.
	taken := Prune(env, mem, lv(p, pos), true)
	v, _ := taken.Get(vloc(p))
	if v.PointerValue().HasNil() || !v.PointerValue().Contains(vloc(a)) {
		t.Errorf("taken branch should drop the null target: %v", v)
	}

	skipped := Prune(env, mem, lv(p, pos), false)
	v, _ = skipped.Get(vloc(p))
	if !v.PointerValue().HasNil() || v.PointerValue().Size() != 1 {
		t.Errorf("untaken branch should keep only the null target: %v", v)
	}

	// A constant on the left compares the same way.
	flipped := &cir.BinOp{Op: cir.Ne, X: lit(0, pos), Y: lv(p, pos), P: pos}
	v, _ = Prune(env, mem, flipped, true).Get(vloc(p))
	if v.PointerValue().HasNil() {
		t.Errorf("flipped comparison was not normalized: %v", v)
	}
}

func TestPruneConjunction(t *testing.T) {
	pos := cir.Pos{File: "guard.c", Line: 4}
	b := cir.NewProc("f", pos)
	x := b.Local("x", cir.IntType, pos)
	y := b.Local("y", cir.IntType, pos)
	n := b.Nop(pos)
	env := NewEnv(n, nil, NewAliasTable())

	src := L.TaintSource{Node: n, Pos: pos}
	mayOvf := L.Elements().AbstractTainted(src).UpdateOvf(L.Consts().MayOvf())
	mem := L.Elements().Memory().
		Update(vloc(x), mayOvf).
		Update(vloc(y), mayOvf.AppendTrace(L.InputSource{Fn: "read", P: pos}))

	cond := &cir.BinOp{
		Op: cir.LAnd,
		X:  &cir.BinOp{Op: cir.Lt, X: lv(x, pos), Y: lit(10, pos), P: pos},
		Y:  &cir.BinOp{Op: cir.Lt, X: lv(y, pos), Y: lit(20, pos), P: pos},
		P:  pos,
	}

	out := Prune(env, mem, cond, true)
	for _, v := range []*cir.Var{x, y} {
		got, _ := out.Get(vloc(v))
		if got.OvfValue().MayOverflow() {
			t.Errorf("conjunct did not narrow %s", v.Name)
		}
	}

	// Nothing is learned from a false conjunction.
	if !Prune(env, mem, cond, false).Eq(mem) {
		t.Errorf("untaken conjunction narrowed the memory")
	}
}

func TestPruneIdempotent(t *testing.T) {
	pos := cir.Pos{File: "loop.c", Line: 7}
	b := cir.NewProc("f", pos)
	i := b.Local("i", cir.IntType, pos)
	n := b.Nop(pos)
	env := NewEnv(n, nil, NewAliasTable())

	src := L.TaintSource{Node: n, Pos: pos}
	mem := L.Elements().Memory().Update(vloc(i), L.Elements().
		AbstractTainted(src).
		UpdateOvf(L.Consts().MayOvf()))

	cond := &cir.BinOp{Op: cir.Lt, X: lv(i, pos), Y: lit(100, pos), P: pos}

	once := Prune(env, mem, cond, true)
	twice := Prune(env, once, cond, true)
	if !twice.Eq(once) {
		t.Fatalf("pruning is not idempotent")
	}

	// Revisiting the branch must not pile up trace elements.
	v1, _ := once.Get(vloc(i))
	v2, _ := twice.Get(vloc(i))
	if !v1.TraceValue().Eq(v2.TraceValue()) {
		t.Errorf("repeated refinement accumulated traces: %v vs %v",
			v1.TraceValue(), v2.TraceValue())
	}
}

package lattice

import (
	"testing"

	"github.com/cs-au-dk/cat/analysis/cir"
	loc "github.com/cs-au-dk/cat/analysis/location"
)

func TestMemoryGetUpdate(t *testing.T) {
	p := testProc("f")
	x := testVarLoc(p, "x")
	y := testVarLoc(p, "y")

	mem := Elements().Memory()

	if v, found := mem.Get(x); found || !v.IsBot() {
		t.Errorf("unbound location yielded (%v, %v), expected (⊥, false)", v, found)
	}

	mem = mem.Update(x, Elements().AbstractBasic())
	if v, found := mem.Get(x); !found || !v.eq(Elements().AbstractBasic()) {
		t.Errorf("lookup after update yielded (%v, %v)", v, found)
	}
	if _, found := mem.Get(y); found {
		t.Errorf("update bound an unrelated location")
	}

	// Updates overwrite.
	mem = mem.Update(x, Consts().UninitValue())
	if v, _ := mem.Get(x); !v.eq(Consts().UninitValue()) {
		t.Errorf("update did not overwrite: %v", v)
	}
}

func TestMemoryGetOnDemand(t *testing.T) {
	p := testProc("f")
	m := testVarLoc(p, "m")
	mapTyp := cir.NamedType("std::map<int, int>", cir.IntType)

	mem := Elements().Memory()

	v1, mem1 := mem.GetOnDemand(m, mapTyp)
	if v1.PointerValue().Size() != 1 {
		t.Errorf("synthesized value should point at one element cell, got %v", v1)
	}

	// Reading again yields the same value and leaves the memory unchanged.
	v2, mem2 := mem1.GetOnDemand(m, mapTyp)
	if !v1.eq(v2) {
		t.Errorf("repeated on-demand reads disagree: %v vs %v", v1, v2)
	}
	if !mem1.eq(mem2) {
		t.Errorf("second on-demand read modified the memory")
	}

	// The synthesized cell depends only on the location and type, so a
	// read through a fresh memory agrees as well.
	v3, _ := Elements().Memory().GetOnDemand(m, mapTyp)
	if !v1.eq(v3) {
		t.Errorf("on-demand cell not deterministic: %v vs %v", v1, v3)
	}

	// The declaration of a container binds its unwritten marker; that
	// binding stands for the default-constructed container, not for
	// missing element storage.
	declared := Elements().Memory().Update(m, Consts().UninitValue())
	v4, _ := declared.GetOnDemand(m, mapTyp)
	if !v4.eq(v1) {
		t.Errorf("declared container did not synthesize element storage: %v", v4)
	}
}

func TestMemoryJoin(t *testing.T) {
	p := testProc("f")
	x := testVarLoc(p, "x")
	y := testVarLoc(p, "y")
	z := testVarLoc(p, "z")

	m1 := Elements().Memory().
		Update(x, Elements().AbstractBasic()).
		Update(y, Consts().UninitValue())
	m2 := Elements().Memory().
		Update(y, Elements().AbstractBasic()).
		Update(z, Elements().AbstractBasic())

	joined := m1.MonoJoin(m2)

	if joined.Size() != 3 {
		t.Errorf("expected 3 bindings after join, got %d", joined.Size())
	}
	if v, _ := joined.Get(y); v.InitValue() != _INIT_TOP {
		t.Errorf("common binding did not join: %v", v)
	}
	if !m1.leq(joined) || !m2.leq(joined) {
		t.Errorf("operand not ⊑ join result")
	}
	if joined.leq(m1) {
		t.Errorf("join result ⊑ strictly smaller operand")
	}
}

func TestMemoryEq(t *testing.T) {
	p := testProc("f")
	x := testVarLoc(p, "x")

	// A ⊥ binding is indistinguishable from no binding.
	empty := Elements().Memory()
	botBound := empty.Update(x, Consts().BotValue())
	if !empty.eq(botBound) || !botBound.eq(empty) {
		t.Errorf("⊥ binding distinguishable from unbound location")
	}

	bound := empty.Update(x, Elements().AbstractBasic())
	if bound.eq(empty) {
		t.Errorf("non-⊥ binding compares equal to empty memory")
	}
}

func TestMemoryFieldsOf(t *testing.T) {
	p := testProc("f")
	base := loc.LocationFromVar(&cir.Var{Name: "s", Typ: cir.StructType("S"), Proc: p})
	fst := loc.FromLocation(loc.NewFieldLocation(base, "len"))
	snd := loc.FromLocation(loc.NewFieldLocation(base, "buf"))
	other := testVarLoc(p, "x")

	mem := Elements().Memory().
		Update(fst, Elements().AbstractBasic()).
		Update(snd, Consts().UninitValue()).
		Update(other, Elements().AbstractBasic())

	fields := map[string]AbstractValue{}
	mem.FieldsOf(base, func(field string, _ loc.LocWithIdx, v AbstractValue) {
		fields[field] = v
	})

	if len(fields) != 2 {
		t.Errorf("expected 2 fields, got %v", fields)
	}
	if v, ok := fields["buf"]; !ok || !v.MayBeUninit() {
		t.Errorf("missing or wrong binding for field buf: %v", v)
	}
}

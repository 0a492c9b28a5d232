package lattice

import (
	"testing"

	"github.com/cs-au-dk/cat/analysis/cir"
)

func TestAbstractValueJoin(t *testing.T) {
	p := testProc("f")
	l1 := testVarLoc(p, "x")
	l2 := testVarLoc(p, "y")
	src := TaintSource{
		Node: testNode(p, 1),
		Pos:  cir.Pos{File: "test.c", Line: 4, Col: 1},
	}

	ptr := Elements().AbstractPointerV(l1)
	tainted := Elements().AbstractTainted(src).
		UpdatePointer(Elements().LocSet(l2)).
		UpdateOvf(_MAY_OVF)

	joined := ptr.MonoJoin(tainted)

	if !joined.PointerValue().Contains(l1) || !joined.PointerValue().Contains(l2) {
		t.Errorf("join lost locations: %v", joined.PointerValue())
	}
	if joined.InitValue() != _INIT_INITIALIZED {
		t.Errorf("expected initialized result, got %v", joined.InitValue())
	}
	if !joined.OvfValue().MayOverflow() {
		t.Errorf("join lost overflow flag")
	}
	if !joined.IsTainted() {
		t.Errorf("join lost taint")
	}

	if !ptr.leq(joined) || !tainted.leq(joined) {
		t.Errorf("operand not ⊑ join result: %v ⊔ %v = %v", ptr, tainted, joined)
	}
	if joined.leq(ptr) {
		t.Errorf("join result ⊑ strictly smaller operand: %v ⊑ %v", joined, ptr)
	}
}

func TestAbstractValueInitJoin(t *testing.T) {
	ini := Elements().AbstractInit(Consts().Initialized())
	uni := Elements().AbstractInit(Consts().Uninitialized())

	joined := ini.MonoJoin(uni)
	if joined.InitValue() != _INIT_TOP {
		t.Errorf("expected init ⊔ uninit = ⊤, got %v", joined.InitValue())
	}
	if !joined.MayBeUninit() {
		t.Errorf("joined value should flag a possibly uninitialized read")
	}
}

// Traces are advisory. Two values differing only in their carried traces
// compare equal so that fixpoint iteration terminates, but joins still
// accumulate the traces of both operands.
func TestAbstractValueTracesDisregarded(t *testing.T) {
	pos := cir.Pos{File: "test.c", Line: 2, Col: 5}
	base := Elements().AbstractBasic()
	traced := base.AppendTrace(InputSource{Fn: "fread", P: pos})

	if !base.eq(traced) || !traced.eq(base) {
		t.Errorf("values differing only in traces compare unequal")
	}
	if !base.leq(traced) || !traced.leq(base) {
		t.Errorf("values differing only in traces are not mutually ⊑")
	}

	joined := base.MonoJoin(traced)
	if joined.TraceValue().Size() != 1 {
		t.Errorf("join dropped traces: %v", joined.TraceValue())
	}
}

func TestAbstractValueIsBot(t *testing.T) {
	bot := Consts().BotValue()
	if !bot.IsBot() {
		t.Errorf("expected ⊥.IsBot()")
	}
	if !bot.AppendTrace(InputSource{Fn: "read", P: cir.Pos{File: "test.c", Line: 1, Col: 1}}).IsBot() {
		t.Errorf("traces should not affect IsBot")
	}
	if Elements().AbstractBasic().IsBot() {
		t.Errorf("initialized value reported as ⊥")
	}
}

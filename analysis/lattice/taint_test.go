package lattice

import (
	"testing"

	loc "github.com/cs-au-dk/cat/analysis/location"
)

func TestTaint(t *testing.T) {
	p := testProc("f")
	s1 := TaintSource{Node: testNode(p, 1), Pos: testNode(p, 1).P}
	s2 := TaintSource{Node: testNode(p, 2), Pos: testNode(p, 2).P}
	sym := loc.NewSymbolicParam(p, 0)

	bot := taintLattice.Bot().Taint()
	t1 := elFact.Taint(s1)
	t2 := elFact.Taint(s2)
	t12 := elFact.Taint(s1, s2)
	tSym := bot.AddSymbolic(sym)

	if bot.IsTainted() || bot.IsSymbolic() || !bot.IsBot() {
		t.Errorf("⊥ taint misclassified: %v", bot)
	}
	if !t1.IsTainted() || t1.IsSymbolic() {
		t.Errorf("concrete taint misclassified: %v", t1)
	}
	if tSym.IsTainted() || !tSym.IsSymbolic() {
		t.Errorf("symbolic taint misclassified: %v", tSym)
	}

	t.Run("Join", func(t *testing.T) {
		if res := t1.MonoJoin(t2); !res.eq(t12) {
			t.Errorf("%v ⊔ %v = %v, expected %v", t1, t2, res, t12)
		}

		mixed := t1.MonoJoin(tSym)
		if !mixed.IsTainted() || !mixed.IsSymbolic() {
			t.Errorf("%v ⊔ %v lost an origin kind: %v", t1, tSym, mixed)
		}

		if res := mixed.DropSymbolic(); res.IsSymbolic() || !res.eq(t1) {
			t.Errorf("dropping symbolic origins of %v gave %v", mixed, res)
		}
	})

	t.Run("Leq", func(t *testing.T) {
		tests := []struct {
			a, b     Taint
			expected bool
		}{
			{bot, t1, true},
			{t1, t12, true},
			{t12, t1, false},
			{t1, t2, false},
			{tSym, t1.MonoJoin(tSym), true},
			{t1.MonoJoin(tSym), t1, false},
		}

		for _, test := range tests {
			if res := test.a.leq(test.b); res != test.expected {
				t.Errorf("%v ⊑ %v = %v, expected %v", test.a, test.b, res, test.expected)
			}
		}
	})
}

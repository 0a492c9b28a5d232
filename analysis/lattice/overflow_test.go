package lattice

import "testing"

var noOvf Element = Create().Lattice().Overflow().Bot()
var mayOvf Element = Create().Lattice().Overflow().Top()

func TestOverflowJoin(t *testing.T) {
	tests := []struct{ a, b, expected Element }{
		{noOvf, noOvf, noOvf},
		{noOvf, mayOvf, mayOvf},
		{mayOvf, noOvf, mayOvf},
		{mayOvf, mayOvf, mayOvf},
	}

	for _, test := range tests {
		res := test.a.Join(test.b)
		if res != test.expected {
			t.Errorf("%s ⊔ %s = %s, expected %s\n", test.a, test.b, res, test.expected)
		} else {
			t.Logf("%s ⊔ %s = %s\n", test.a, test.b, res)
		}
	}
}

func TestOverflowLeq(t *testing.T) {
	tests := []struct {
		a, b     Element
		expected bool
	}{
		{noOvf, noOvf, true},
		{noOvf, mayOvf, true},
		{mayOvf, noOvf, false},
		{mayOvf, mayOvf, true},
	}

	for _, test := range tests {
		res := test.a.Leq(test.b)
		if res != test.expected {
			t.Errorf("%s ⊑ %s = %v, expected %v\n", test.a, test.b, res, test.expected)
		} else {
			t.Logf("%s ⊑ %s = %v\n", test.a, test.b, res)
		}
	}
}

package lattice

import "testing"

func TestInitializationJoin(t *testing.T) {
	lat := Create().Lattice().Initialization()
	bot := lat.Bot()
	top := lat.Top()
	init := Element(Consts().Initialized())
	uninit := Element(Consts().Uninitialized())

	tests := []struct{ a, b, expected Element }{
		{bot, bot, bot},
		{bot, init, init},
		{bot, uninit, uninit},
		{bot, top, top},
		{init, bot, init},
		{init, init, init},
		{init, uninit, top},
		{init, top, top},
		{uninit, bot, uninit},
		{uninit, init, top},
		{uninit, uninit, uninit},
		{uninit, top, top},
		{top, bot, top},
		{top, init, top},
		{top, uninit, top},
		{top, top, top},
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

func TestInitializationLeq(t *testing.T) {
	lat := Create().Lattice().Initialization()
	bot := lat.Bot()
	top := lat.Top()
	init := Element(Consts().Initialized())
	uninit := Element(Consts().Uninitialized())

	tests := []struct {
		a, b     Element
		expected bool
	}{
		{bot, bot, true},
		{bot, init, true},
		{bot, uninit, true},
		{bot, top, true},
		{init, bot, false},
		{init, init, true},
		{init, uninit, false},
		{init, top, true},
		{uninit, bot, false},
		{uninit, init, false},
		{uninit, uninit, true},
		{uninit, top, true},
		{top, bot, false},
		{top, init, false},
		{top, uninit, false},
		{top, top, true},
	}

	for _, test := range tests {
		res := test.a.Leq(test.b)
		if res != test.expected {
			t.Errorf("%s ⊑ %s = %v, expected %v\n", test.a, test.b, res, test.expected)
		}
	}
}

func TestInitializationMayBeUninit(t *testing.T) {
	tests := []struct {
		e        Initialization
		expected bool
	}{
		{Consts().InitBot(), false},
		{Consts().Initialized(), false},
		{Consts().Uninitialized(), true},
		{Consts().InitTop(), true},
	}

	for _, test := range tests {
		if res := test.e.MayBeUninit(); res != test.expected {
			t.Errorf("MayBeUninit(%s) = %v, expected %v", test.e, res, test.expected)
		}
	}
}

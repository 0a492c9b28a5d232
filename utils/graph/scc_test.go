package graph

import "testing"

// A shape that comes up in most procedures: an entry, a two-node loop,
// and a straight-line tail.
//
//	0 -> 1 -> 2 -> 3
//	     ^    |
//	     +----+
var succ = map[int][]int{
	0: {1},
	1: {2},
	2: {1, 3},
	3: nil,
}

func TestSCCLoop(t *testing.T) {
	scc := OfHashable(func(n int) []int { return succ[n] }).SCC([]int{0})

	if len(scc.Components) != 3 {
		t.Fatalf("expected 3 components, got %v", scc.Components)
	}
	if scc.ComponentOf(1) != scc.ComponentOf(2) {
		t.Errorf("loop nodes split across components: %v", scc.Components)
	}
	if scc.ComponentOf(0) == scc.ComponentOf(1) {
		t.Errorf("entry merged into the loop: %v", scc.Components)
	}

	// Edges must only point at components with a smaller or equal
	// index; the fixed point engine schedules components in reverse.
	for n, es := range succ {
		for _, e := range es {
			if scc.ComponentOf(e) > scc.ComponentOf(n) {
				t.Errorf("edge %d -> %d goes against the component order", n, e)
			}
		}
	}
}

func TestSCCUnreachable(t *testing.T) {
	scc := OfHashable(func(n int) []int { return succ[n] }).SCC([]int{3})

	if len(scc.Components) != 1 {
		t.Fatalf("expected only the root's component, got %v", scc.Components)
	}
	if scc.ComponentOf(1) != -1 {
		t.Errorf("unreachable node assigned a component: %d", scc.ComponentOf(1))
	}
}

func TestEdgesCached(t *testing.T) {
	calls := 0
	g := OfHashable(func(n int) []int {
		calls++
		return succ[n]
	})

	g.Edges(2)
	g.Edges(2)
	if calls != 1 {
		t.Errorf("successor function consulted %d times for one node", calls)
	}
}

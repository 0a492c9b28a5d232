package graph

// SCCDecomposition groups the nodes reachable from a set of roots into
// strongly connected components. Components come out in reverse
// topological order: nodes in component i only have edges into
// components j <= i. The loop-head computation and bottom-up summary
// scheduling both lean on that ordering.
type SCCDecomposition[T comparable] struct {
	Components [][]T
	comp       map[T]int
}

// ComponentOf returns the index of the component holding the node, or
// -1 if the node was not reachable from the decomposition's roots.
func (scc SCCDecomposition[T]) ComponentOf(node T) int {
	if c, found := scc.comp[node]; found {
		return c
	}
	return -1
}

// SCC computes the strongly connected components of the subgraph
// reachable from the given roots.
func (G Graph[T]) SCC(roots []T) SCCDecomposition[T] {
	val := make(map[T]int)
	comp := make(map[T]int)
	time := 0
	var stack []T
	var components [][]T

	var visit func(T)
	visit = func(node T) {
		time++
		low := time
		val[node] = low
		height := len(stack)
		stack = append(stack, node)

		for _, e := range G.Edges(node) {
			if _, settled := comp[e]; settled {
				continue
			}
			if _, seen := val[e]; !seen {
				visit(e)
			}
			if val[e] < low {
				low = val[e]
			}
		}

		if low == val[node] {
			var members []T
			for len(stack) > height {
				x := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				comp[x] = len(components)
				members = append(members, x)
			}
			components = append(components, members)
		}

		val[node] = low
	}

	for _, node := range roots {
		if _, settled := comp[node]; !settled {
			visit(node)
		}
	}

	return SCCDecomposition[T]{Components: components, comp: comp}
}

// Package graph provides the few graph algorithms the analysis needs
// on structures that are not materialized as explicit edge lists.
// Control-flow graphs and the call graph both expose their edges
// through a successor function; callers wrap that function here and
// run traversals on top.
package graph

type edgesOf[T comparable] func(node T) []T

type Graph[T comparable] struct {
	edgesOf edgesOf[T]
	cached  map[T][]T
}

// OfHashable wraps a successor function as a graph. The function is
// consulted at most once per node; later queries hit the cache, so it
// may be expensive.
func OfHashable[T comparable](edgesOf edgesOf[T]) Graph[T] {
	return Graph[T]{edgesOf, make(map[T][]T)}
}

func (G Graph[T]) Edges(node T) []T {
	if es, found := G.cached[node]; found {
		return es
	}

	es := G.edgesOf(node)
	G.cached[node] = es
	return es
}

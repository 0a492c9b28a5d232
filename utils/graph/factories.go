package graph

// Creates a Graph from an explicit adjacency map.
// Nodes without entries in the map have no outgoing edges.
func FromAdjacencyMap[K comparable](adj map[K][]K) Graph[K] {
	return OfHashable(func(node K) []K {
		return adj[node]
	})
}

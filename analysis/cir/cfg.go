package cir

import (
	"github.com/cs-au-dk/cat/utils/graph"

	"golang.org/x/tools/container/intsets"
)

// Graph exposes the successor relation of the procedure as a generic
// graph, keyed by node pointers.
func (p *Proc) Graph() graph.Graph[*Node] {
	return graph.OfHashable(func(n *Node) []*Node {
		return n.Successors()
	})
}

// ReversePostOrder returns the nodes reachable from the entry node in
// reverse post-order. The order is deterministic: successor edges are
// visited in wiring order.
func (p *Proc) ReversePostOrder() []*Node {
	entry := p.Entry()
	if entry == nil {
		return nil
	}

	var seen intsets.Sparse
	order := make([]*Node, 0, len(p.Nodes))

	var dfs func(*Node)
	dfs = func(n *Node) {
		if !seen.Insert(n.Index) {
			return
		}
		for _, s := range n.Successors() {
			dfs(s)
		}
		order = append(order, n)
	}
	dfs(entry)

	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}

// RPONumbers maps node indices to reverse post-order positions.
// Unreachable nodes are absent.
func (p *Proc) RPONumbers() map[int]int {
	res := make(map[int]int, len(p.Nodes))
	for i, n := range p.ReversePostOrder() {
		res[n.Index] = i
	}
	return res
}

// LoopHeads returns the indices of nodes heading a control-flow cycle:
// the reverse post-order-first node of every non-trivial strongly
// connected component, and any node with a self edge. These are the
// points where the fixed point computation widens.
func (p *Proc) LoopHeads() *intsets.Sparse {
	res := &intsets.Sparse{}
	entry := p.Entry()
	if entry == nil {
		return res
	}

	scc := p.Graph().SCC([]*Node{entry})
	rpo := p.RPONumbers()

	for _, comp := range scc.Components {
		if len(comp) > 1 {
			head := comp[0]
			for _, n := range comp[1:] {
				if rpo[n.Index] < rpo[head.Index] {
					head = n
				}
			}
			res.Insert(head.Index)
			continue
		}

		n := comp[0]
		for _, s := range n.Successors() {
			if s == n {
				res.Insert(n.Index)
			}
		}
	}
	return res
}

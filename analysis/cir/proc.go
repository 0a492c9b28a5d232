package cir

import (
	"fmt"
	"strings"

	"github.com/cs-au-dk/cat/utils"
	i "github.com/cs-au-dk/cat/utils/indenter"
)

// NodeKind discriminates control-flow nodes.
type NodeKind uint8

const (
	// NDecl introduces a local variable. The variable is uninitialized
	// until assigned or passed by address to an initializing callee.
	NDecl NodeKind = iota
	// NAssign evaluates Rhs and stores it through LV.
	NAssign
	// NCall invokes Callee with Args, binding the return value to LV
	// when LV is non-nil.
	NCall
	// NBranch evaluates Rhs; successor 0 is the true branch and
	// successor 1 the false branch.
	NBranch
	// NReturn leaves the procedure, yielding Rhs when non-nil.
	NReturn
	// NNop joins control flow.
	NNop
)

// Node is a single instruction in a procedure's control-flow graph.
// Its identity within the program is the pair (procedure, index), from
// which its hash is derived; the hash is stable across runs.
type Node struct {
	Kind   NodeKind
	Proc   *Proc
	Index  int
	LV     *LVal
	Rhs    Expr
	Callee string
	Args   []Expr
	P      Pos

	succs []*Node
	preds []*Node
}

func (n *Node) Pos() Pos { return n.P }

func (n *Node) Hash() uint32 {
	return utils.HashCombine(utils.HashString(n.Proc.Name), uint32(n.Index))
}

func (n *Node) Successors() []*Node   { return n.succs }
func (n *Node) Predecessors() []*Node { return n.preds }

// AddSuccessor wires an edge from n to m in both directions.
func (n *Node) AddSuccessor(m *Node) {
	for _, s := range n.succs {
		if s == m {
			return
		}
	}
	n.succs = append(n.succs, m)
	m.preds = append(m.preds, n)
}

func (n *Node) String() string {
	switch n.Kind {
	case NDecl:
		return fmt.Sprintf("decl %s %s", n.LV.Type(), n.LV)
	case NAssign:
		return fmt.Sprintf("%s = %s", n.LV, n.Rhs)
	case NCall:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = a.String()
		}
		call := fmt.Sprintf("%s(%s)", colorize.Builtin(n.Callee), strings.Join(args, ", "))
		if n.LV != nil {
			return fmt.Sprintf("%s = %s", n.LV, call)
		}
		return call
	case NBranch:
		return fmt.Sprintf("if %s", n.Rhs)
	case NReturn:
		if n.Rhs != nil {
			return fmt.Sprintf("return %s", n.Rhs)
		}
		return "return"
	case NNop:
		return "nop"
	}
	return "?"
}

// Proc is an analyzed procedure. Nodes[0] is the entry node.
type Proc struct {
	Name   string
	Params []*Var
	Locals []*Var
	Ret    *Type
	Nodes  []*Node
	P      Pos
}

func (p *Proc) Pos() Pos { return p.P }

func (p *Proc) Entry() *Node {
	if len(p.Nodes) == 0 {
		return nil
	}
	return p.Nodes[0]
}

func (p *Proc) Hash() uint32 {
	return utils.HashCombine(utils.HashString(p.Name), p.P.Hash())
}

// ParamIndex returns the position of v in the parameter list, or -1.
func (p *Proc) ParamIndex(v *Var) int {
	for i, prm := range p.Params {
		if prm == v {
			return i
		}
	}
	return -1
}

func (p *Proc) String() string {
	params := make([]string, len(p.Params))
	for i, prm := range p.Params {
		params[i] = fmt.Sprintf("%s %s", prm.Typ, prm.Name)
	}

	nodes := make([]func() string, len(p.Nodes))
	for idx, n := range p.Nodes {
		n := n
		nodes[idx] = func() string {
			return fmt.Sprintf("%d: %s", n.Index, n)
		}
	}

	return i.Indenter().Start(
		fmt.Sprintf("%s %s(%s) {", p.Ret, colorize.Proc(p.Name), strings.Join(params, ", ")),
	).NestThunked(nodes...).End("}")
}

package cir

// ProcBuilder assembles a procedure node by node. Appended nodes are
// wired with fall-through successor edges; branches and loops add
// their extra edges through Goto.
type ProcBuilder struct {
	p    *Proc
	last *Node
}

func NewProc(name string, pos Pos) *ProcBuilder {
	return &ProcBuilder{p: &Proc{Name: name, Ret: VoidType, P: pos}}
}

func (b *ProcBuilder) Returns(t *Type) *ProcBuilder {
	b.p.Ret = t
	return b
}

func (b *ProcBuilder) Param(name string, t *Type, pos Pos) *Var {
	v := &Var{Name: name, Typ: t, Proc: b.p, P: pos}
	b.p.Params = append(b.p.Params, v)
	return v
}

// Local declares a procedure-scoped variable and emits its NDecl node.
func (b *ProcBuilder) Local(name string, t *Type, pos Pos) *Var {
	v := &Var{Name: name, Typ: t, Proc: b.p, P: pos}
	b.p.Locals = append(b.p.Locals, v)
	b.append(&Node{Kind: NDecl, LV: VarLVal(v, pos), P: pos})
	return v
}

func (b *ProcBuilder) Assign(lv *LVal, e Expr, pos Pos) *Node {
	return b.append(&Node{Kind: NAssign, LV: lv, Rhs: e, P: pos})
}

func (b *ProcBuilder) Call(lv *LVal, callee string, args []Expr, pos Pos) *Node {
	return b.append(&Node{Kind: NCall, LV: lv, Callee: callee, Args: args, P: pos})
}

// Branch appends a conditional node. The fall-through edge becomes the
// true branch; wire the false branch with Goto.
func (b *ProcBuilder) Branch(cond Expr, pos Pos) *Node {
	return b.append(&Node{Kind: NBranch, Rhs: cond, P: pos})
}

func (b *ProcBuilder) Return(e Expr, pos Pos) *Node {
	n := b.append(&Node{Kind: NReturn, Rhs: e, P: pos})
	// Return nodes have no fall-through edge.
	b.last = nil
	return n
}

func (b *ProcBuilder) Nop(pos Pos) *Node {
	return b.append(&Node{Kind: NNop, P: pos})
}

// Goto adds an explicit control-flow edge.
func (b *ProcBuilder) Goto(from, to *Node) {
	from.AddSuccessor(to)
}

// Resume makes subsequent nodes fall through from n instead of the
// most recently appended node.
func (b *ProcBuilder) Resume(n *Node) {
	b.last = n
}

func (b *ProcBuilder) Finish() *Proc {
	return b.p
}

func (b *ProcBuilder) append(n *Node) *Node {
	n.Proc = b.p
	n.Index = len(b.p.Nodes)
	b.p.Nodes = append(b.p.Nodes, n)
	if b.last != nil {
		b.last.AddSuccessor(n)
	}
	b.last = n
	return n
}

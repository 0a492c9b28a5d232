package absint

import (
	"github.com/cs-au-dk/cat/analysis/cir"
	L "github.com/cs-au-dk/cat/analysis/lattice"
)

// Prune refines the memory with what a branch condition reveals about
// the compared value: a null test narrows a pointer's targets, and an
// upper bound against a constant discharges a pending overflow. The
// refinement applies to every binding carrying the same logical value
// as the compared lvalue, so copies narrow along with the original,
// and tainted values record the comparison in their traces.
func Prune(env Env, mem L.Memory, cond cir.Expr, branch bool) L.Memory {
	switch e := cond.(type) {
	case *cir.UnOp:
		if e.Op == cir.LNot {
			return Prune(env, mem, e.X, !branch)
		}

	case *cir.LvalExpr:
		// `if (x)` tests x against zero.
		ne := &cir.BinOp{Op: cir.Ne, X: e, Y: &cir.Const{Value: 0, Typ: cir.IntType, P: e.P}, P: e.P}
		return pruneCompare(env, mem, ne, branch)

	case *cir.BinOp:
		switch e.Op {
		case cir.LAnd:
			if branch {
				return Prune(env, Prune(env, mem, e.X, true), e.Y, true)
			}
		case cir.LOr:
			if !branch {
				return Prune(env, Prune(env, mem, e.X, false), e.Y, false)
			}
		default:
			if e.Op.IsComparison() {
				return pruneCompare(env, mem, e, branch)
			}
		}
	}
	return mem
}

func pruneCompare(env Env, mem L.Memory, e *cir.BinOp, branch bool) L.Memory {
	lv, c, flipped := splitCompare(e)
	if lv == nil {
		return mem
	}
	op := e.Op
	if flipped {
		op = flipCompare(op)
	}

	targets := EvalLVal(env, mem, lv.LV)
	old := L.MemOps(mem).Load(targets)
	if old.IsBot() {
		return mem
	}

	narrowed := old
	isConst := c != nil

	if isConst && c.IsZero() && !old.PointerValue().Empty() {
		switch {
		case (op == cir.Eq && branch) || (op == cir.Ne && !branch):
			narrowed = narrowed.UpdatePointer(L.Consts().LocSetNil())
		case (op == cir.Ne && branch) || (op == cir.Eq && !branch):
			narrowed = narrowed.UpdatePointer(old.PointerValue().FilterNil())
		}
	}

	if isConst && upperBounded(op, branch) && old.OvfValue().MayOverflow() {
		narrowed = narrowed.UpdateOvf(L.Consts().NoOvf())
	}

	tainted := !old.TaintValue().IsBot()
	if narrowed.Eq(old) && !tainted {
		return mem
	}

	// The source operator goes in the trace, not the normalized one.
	patch := L.PruneTrace{Op: e.Op, Const: isConst, P: e.P}

	return mem.MapValues(func(v L.AbstractValue) L.AbstractValue {
		if !v.Eq(old) {
			return v
		}
		v = v.UpdatePointer(narrowed.PointerValue()).UpdateOvf(narrowed.OvfValue())
		if tainted {
			v = v.UpdateTraces(v.TraceValue().AppendUnlessLast(patch))
		}
		return v
	})
}

// splitCompare isolates the lvalue side of a comparison, looking
// through casts. The constant side is nil for lvalue-to-lvalue
// comparisons; flipped marks a constant on the left.
func splitCompare(e *cir.BinOp) (lv *cir.LvalExpr, c *cir.Const, flipped bool) {
	x, y := stripCasts(e.X), stripCasts(e.Y)
	if lv, ok := x.(*cir.LvalExpr); ok {
		c, _ := y.(*cir.Const)
		return lv, c, false
	}
	if lv, ok := y.(*cir.LvalExpr); ok {
		c, _ := x.(*cir.Const)
		return lv, c, true
	}
	return nil, nil, false
}

func stripCasts(e cir.Expr) cir.Expr {
	for {
		cast, ok := e.(*cir.Cast)
		if !ok {
			return e
		}
		e = cast.X
	}
}

// upperBounded reports whether taking `branch` on `x op c` bounds x
// from above by the constant.
func upperBounded(op cir.BinOpKind, branch bool) bool {
	switch op {
	case cir.Lt, cir.Le, cir.Eq:
		return branch
	case cir.Gt, cir.Ge, cir.Ne:
		return !branch
	}
	return false
}

func flipCompare(op cir.BinOpKind) cir.BinOpKind {
	switch op {
	case cir.Lt:
		return cir.Gt
	case cir.Gt:
		return cir.Lt
	case cir.Le:
		return cir.Ge
	case cir.Ge:
		return cir.Le
	}
	return op
}

package absint

import (
	"github.com/cs-au-dk/cat/analysis/cir"
	L "github.com/cs-au-dk/cat/analysis/lattice"
	loc "github.com/cs-au-dk/cat/analysis/location"
)

// EvalExpr abstractly evaluates a side-effect free expression in the
// given memory. Evaluation never fails: expression shapes the domain
// cannot express evaluate to ⊥.
func EvalExpr(env Env, mem L.Memory, e cir.Expr) L.AbstractValue {
	switch e := e.(type) {
	case *cir.Const:
		return L.Elements().AbstractBasic()

	case *cir.StrLit:
		return L.Elements().AbstractStringLit(e.Value, e.P)

	case *cir.SizeOf:
		return L.Elements().AbstractBasic()

	case *cir.LvalExpr:
		return L.MemOps(mem).Load(EvalLVal(env, mem, e.LV))

	case *cir.AddrOf:
		targets := EvalLVal(env, mem, e.LV)
		if targets.Empty() {
			return L.Consts().BotValue()
		}
		return L.Elements().AbstractPointer(targets)

	case *cir.UnOp:
		return evalUnop(env, mem, e)

	case *cir.BinOp:
		return evalBinop(env, mem, e)

	case *cir.Cast:
		return EvalExpr(env, mem, e.X)

	default:
		return L.Consts().BotValue()
	}
}

// EvalLVal computes the set of locations an lvalue may designate. A
// variable host designates its own cell; a dereference host designates
// the pointees of the evaluated pointer, with null targets dropped.
// Field offsets step into field sublocations and index offsets refine
// unindexed targets with the subscript's index abstraction.
func EvalLVal(env Env, mem L.Memory, lv *cir.LVal) L.LocSet {
	var targets L.LocSet
	switch {
	case lv.Var != nil:
		targets = L.Elements().LocSetOf(loc.LocationFromVar(lv.Var))
	case lv.Mem != nil:
		targets = EvalExpr(env, mem, lv.Mem).PointerValue().FilterNil()
	default:
		return L.Elements().LocSet()
	}

	for _, off := range lv.Offs {
		if off.Field != "" {
			field := off.Field
			targets = targets.Map(func(l loc.LocWithIdx) loc.LocWithIdx {
				// The index refinement carries over to the field cell,
				// so a field reached through an indexed iterator and
				// through a keyed lookup is the same cell.
				f := loc.FromLocation(loc.NewFieldLocation(l.Base(), field))
				if idx, ok := l.Index(); ok {
					return f.WithIndex(idx)
				}
				return f
			})
		} else {
			idx := evalIndex(env, mem, off.Index)
			targets = targets.Map(func(l loc.LocWithIdx) loc.LocWithIdx {
				if l.Indexed() {
					return l
				}
				return l.WithIndex(idx)
			})
		}
	}
	return targets
}

// evalIndex abstracts a subscript expression into an index refinement.
// Constant subscripts stay precise, variables are narrowed through the
// numeric oracle's pre-state interval when one is known, and anything
// else covers every index.
func evalIndex(env Env, mem L.Memory, e cir.Expr) loc.Index {
	switch e := e.(type) {
	case *cir.Const:
		return loc.ConstIndex(e.Value)

	case *cir.StrLit:
		return loc.StringIndex(e.Value)

	case *cir.LvalExpr:
		l, ok := EvalLVal(env, mem, e.LV).GetSingle()
		if !ok {
			return loc.AnyIndex()
		}
		iv, found := env.Bounds.Pre(env.Node).IntervalOf(l)
		if !found || iv.IsBot() {
			return loc.AnyIndex()
		}

		lo, hi := iv.Bounds()
		idx := loc.Index{Kind: loc.IdxInterval}
		if lo.IsInfinite() {
			idx.LowUnbounded = true
		} else {
			idx.Low = int64(iv.Low())
		}
		if hi.IsInfinite() {
			idx.HighUnbounded = true
		} else {
			idx.High = int64(iv.High())
		}
		if idx.LowUnbounded && idx.HighUnbounded {
			return loc.AnyIndex()
		}
		return idx
	}
	return loc.AnyIndex()
}

// evalUnop evaluates a unary operation. The result is scalar: it keeps
// the operand's initialization, overflow and provenance but designates
// no locations.
func evalUnop(env Env, mem L.Memory, e *cir.UnOp) L.AbstractValue {
	return EvalExpr(env, mem, e.X).UpdatePointer(L.Elements().LocSet())
}

// evalBinop evaluates a binary operation. Provenance is contagious:
// if either operand carries taint, so does the result. Shifts, sums
// and products of attacker-influenced operands may overflow; for all
// other operators the overflow flag joins. Pointer arithmetic keeps
// the pointer side's targets, every other result is scalar.
func evalBinop(env Env, mem L.Memory, e *cir.BinOp) L.AbstractValue {
	v1 := EvalExpr(env, mem, e.X)
	v2 := EvalExpr(env, mem, e.Y)
	res := v1.MonoJoin(v2)

	switch e.Op {
	case cir.PlusPI, cir.IndexPI, cir.MinusPI:
		res = res.UpdatePointer(v1.PointerValue())
	default:
		res = res.UpdatePointer(L.Elements().LocSet())
	}

	provenance := !v1.TaintValue().IsBot() || !v2.TaintValue().IsBot()
	switch e.Op {
	case cir.Shiftlt, cir.PlusA, cir.Mult:
		if provenance {
			res = res.UpdateOvf(L.Consts().MayOvf())
		} else {
			res = res.UpdateOvf(L.Consts().NoOvf())
		}
	}

	if provenance {
		res = res.AppendTrace(L.BinOpTrace{Op: e.Op, P: e.P})
	}
	return res
}

// exprTargets collects the locations of every lvalue occurring in the
// expression. Conditions raised about a compound expression are
// attributed to the variables feeding it.
func exprTargets(env Env, mem L.Memory, e cir.Expr) L.LocSet {
	res := L.Elements().LocSet()
	switch e := e.(type) {
	case *cir.LvalExpr:
		res = res.MonoJoin(EvalLVal(env, mem, e.LV))
	case *cir.UnOp:
		res = res.MonoJoin(exprTargets(env, mem, e.X))
	case *cir.BinOp:
		res = res.MonoJoin(exprTargets(env, mem, e.X))
		res = res.MonoJoin(exprTargets(env, mem, e.Y))
	case *cir.Cast:
		res = res.MonoJoin(exprTargets(env, mem, e.X))
	}
	return res
}

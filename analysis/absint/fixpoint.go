package absint

import (
	"time"

	"github.com/cs-au-dk/cat/analysis/bounds"
	"github.com/cs-au-dk/cat/analysis/cir"
	L "github.com/cs-au-dk/cat/analysis/lattice"
	loc "github.com/cs-au-dk/cat/analysis/location"
	"github.com/cs-au-dk/cat/utils"
	"github.com/cs-au-dk/cat/utils/pq"
)

// ParamMemory is the abstract frame a procedure is analyzed under when
// nothing is known about its callers. Pointer parameters point at a
// symbolic stand-in cell whose contents are provenance-marked with the
// parameter; scalar parameters carry the mark directly. Whether the
// marked data is dangerous is decided when a call site substitutes
// real locations for the stand-ins.
func ParamMemory(proc *cir.Proc) L.Memory {
	mem := L.Elements().Memory()
	for i, p := range proc.Params {
		sym := loc.NewSymbolicParam(proc, i)
		cell := loc.FromLocation(loc.LocationFromVar(p))

		if p.Typ.IsPointer() {
			symCell := loc.FromLocation(sym)
			mem = mem.Update(cell, L.Elements().
				AbstractPointerV(symCell).
				InjectTaint(L.Elements().SymbolicTaint(sym)))
			// The cell behind the pointer: contents and history are
			// the caller's business.
			mem = mem.Update(symCell, pristineCell(sym))
		} else {
			mem = mem.Update(cell, L.Elements().AbstractSymbolic(sym))
		}
	}
	return mem
}

// Analyze computes the summary of one procedure: the join of the
// abstract memories at its return points, and every condition raised
// on the way there. The computation is a forward fixed point over the
// control-flow graph, driven in reverse post-order so loop bodies
// stabilize before their continuations are visited.
func Analyze(proc *cir.Proc, registry Registry, facts *bounds.Facts) L.Summary {
	if utils.Opts().Metrics() {
		defer utils.TimeTrack(time.Now(), "analysis of "+colorize.Proc(proc.Name))
	}

	conds := L.Elements().Conditions()
	exit := L.Elements().Memory()

	entry := proc.Entry()
	if entry == nil {
		return L.Elements().Summary(exit, conds)
	}

	aliases := NewAliasTable()
	rpo := proc.RPONumbers()
	loops := proc.LoopHeads()

	states := map[int]L.Memory{entry.Index: ParamMemory(proc)}
	visits := map[int]int{}

	W := pq.Empty(func(a, b *cir.Node) bool {
		return rpo[a.Index] < rpo[b.Index]
	})
	W.Add(entry)

	for !W.IsEmpty() {
		n := W.GetNext()
		mem := states[n.Index]
		visits[n.Index]++

		env := NewEnv(n, facts, aliases)
		if utils.Opts().LogAI() {
			utils.VerbosePrint("%s %d: %s\n", colorize.Proc(proc.Name), n.Index, n)
		}

		out := mem
		switch n.Kind {
		case cir.NDecl:
			ops := L.MemOps(out)
			ops.Store(EvalLVal(env, out, n.LV), L.Consts().UninitValue())
			out = ops.Memory()

		case cir.NAssign:
			v := EvalExpr(env, out, n.Rhs)
			targets := EvalLVal(env, out, n.LV)
			if !v.PointerValue().Empty() {
				aliases.Union(targets, exprTargets(env, out, n.Rhs))
			}
			ops := L.MemOps(out)
			ops.Store(targets, v)
			out = ops.Memory()

		case cir.NCall:
			if model, found := registry.Lookup(n.Callee); found {
				conds = model.Check(env, n.Args, out, conds)
				out = model.Exec(env, n.LV, n.Args, out)
			} else {
				utils.VerbosePrint("no model for %s at %s\n", n.Callee, n.P)
				out = bindRet(env, n.LV, out, L.Consts().BotValue())
			}

		case cir.NReturn:
			if n.Rhs != nil {
				v := EvalExpr(env, out, n.Rhs)
				ops := L.MemOps(out)
				ops.WeakUpdate(loc.FromLocation(loc.ReturnLocation(proc)), v)
				out = ops.Memory()
			}
			exit = exit.MonoJoin(out)

		case cir.NBranch, cir.NNop:
			// Branches refine on their out edges below; nops just join.
		}

		// Falling off the end of the procedure is a return too.
		if n.Kind != cir.NReturn && len(n.Successors()) == 0 {
			exit = exit.MonoJoin(out)
		}

		for i, s := range n.Successors() {
			next := out
			if n.Kind == cir.NBranch {
				next = Prune(env, out, n.Rhs, i == 0)
			}

			prev, seen := states[s.Index]
			if !seen {
				states[s.Index] = next
				W.Add(s)
				continue
			}

			joined := prev.MonoJoin(next)
			if loops.Has(s.Index) && !utils.Opts().WithinWidenBound(visits[s.Index]) {
				joined = capTraces(prev, joined)
			}
			// Eq ignores the advisory traces: growth in traces alone
			// neither rewrites the state nor requeues, otherwise a
			// loop appending one step per iteration would never
			// settle.
			if joined.Eq(prev) {
				continue
			}
			states[s.Index] = joined
			W.Add(s)
		}
	}

	return L.Elements().Summary(exit, conds)
}

// capTraces freezes the advisory trace payload at the previous iterate
// of a loop head revisited past the widen bound. The logical
// components keep climbing to the fixed point; only the traces, which
// the order relation ignores, stop accumulating.
func capTraces(prev, next L.Memory) L.Memory {
	res := next
	next.ForEach(func(l loc.LocWithIdx, v L.AbstractValue) {
		if pv, found := prev.Get(l); found {
			res = res.Update(l, v.UpdateTraces(pv.TraceValue()))
		}
	})
	return res
}

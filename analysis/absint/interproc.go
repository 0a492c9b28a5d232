package absint

import (
	"github.com/cs-au-dk/cat/analysis/cir"
	L "github.com/cs-au-dk/cat/analysis/lattice"
	loc "github.com/cs-au-dk/cat/analysis/location"
)

// summaryModel applies a frozen procedure summary at a call site.
// Check re-materializes the callee's conditions in the caller's
// context through symbolic substitution; Exec projects the callee's
// memory effects onto the caller's memory and delivers the return
// value.
type summaryModel struct {
	callee *cir.Proc
	sum    L.Summary
}

// SummaryModel adapts a procedure summary into a call model.
func SummaryModel(callee *cir.Proc, sum L.Summary) Model {
	return summaryModel{callee: callee, sum: sum}
}

// WithSummary registers a summary for calls to the given procedure.
// The analyzed program's own definition of a name shadows any built-in
// model of the same name.
func (r Registry) WithSummary(callee *cir.Proc, sum L.Summary) Registry {
	entry := ModelEntry{Pattern: callee.Name, Model: SummaryModel(callee, sum)}
	return append(Registry{entry}, r...)
}

func (m summaryModel) Check(env Env, args []cir.Expr, mem L.Memory, conds L.Conditions) L.Conditions {
	resolve := m.resolver(env, mem, args)
	m.sum.Conditions().ForEach(func(c L.Condition) {
		rs := resolve
		if c.Kind != L.CondUninit && c.Loc.IsSymbolic() {
			// Overflow and format findings on a parameter are decided
			// by what this site actually passes: a clean actual clears
			// the finding, concrete provenance lands it on the caller's
			// cells, and an actual that is itself parameter derived
			// keeps the finding floating on the caller's own symbols.
			if sp, ok := symRoot(c.Loc.Base()); ok && sp.Proc == m.callee && sp.Idx < len(args) {
				t := argTaint(env, mem, args[sp.Idx])
				if t.IsBot() {
					return
				}
				syms := symbolicLocs(t)
				rs = func(l loc.LocWithIdx) L.LocSet {
					if t.IsTainted() {
						return resolve(l).MonoJoin(syms)
					}
					return syms
				}
			}
		}
		for _, cc := range L.Substitute(rs, mem, c) {
			conds = conds.Add(cc)
		}
	})
	return conds
}

func (m summaryModel) Exec(env Env, ret *cir.LVal, args []cir.Expr, mem L.Memory) L.Memory {
	resolve := m.resolver(env, mem, args)
	inst := func(v L.AbstractValue) L.AbstractValue {
		return m.instantiate(env, mem, args, resolve, v)
	}

	ops := L.MemOps(mem)
	m.sum.Memory().ForEach(func(l loc.LocWithIdx, v L.AbstractValue) {
		if v.IsBot() {
			return
		}
		switch root := chainRoot(l.Base()).(type) {
		case loc.SymbolicParam:
			if root.Proc != m.callee {
				return
			}
			// A binding still carrying its entry-frame value records a
			// read, not a write; the caller's own binding stands.
			if !l.Indexed() && l.Base().Equal(root) && v.Eq(pristineCell(root)) {
				return
			}
			// An effect on a caller-provided cell. The callee may
			// not have reached the write on every path, so the
			// caller's binding is only ever joined with.
			resolve(l).ForEach(func(cl loc.LocWithIdx) {
				ops.WeakUpdate(cl, inst(v))
			})

		case loc.VarLocation:
			if root.Var.IsGlobal() {
				ops.WeakUpdate(l, inst(v))
			}

		case loc.AllocationSiteLocation:
			// Heap cells survive the call under their own identity.
			ops.WeakUpdate(l, inst(v))
		}
		// Return cells are delivered through the return binding;
		// every other callee-frame cell dies with the call.
	})

	retV := L.Consts().BotValue()
	if rv, found := m.sum.Memory().Get(loc.FromLocation(loc.ReturnLocation(m.callee))); found {
		retV = inst(rv)
	}
	return bindRet(env, ret, ops.Memory(), retV)
}

// resolver builds the symbol resolution function for a call with the
// given arguments: the caller cells standing behind each symbolic
// parameter location, with field and element chains rebuilt on the
// resolved bases and index refinements preserved.
func (m summaryModel) resolver(env Env, mem L.Memory, args []cir.Expr) func(loc.LocWithIdx) L.LocSet {
	return func(l loc.LocWithIdx) L.LocSet {
		root, ok := symRoot(l.Base())
		if !ok || root.Proc != m.callee {
			return L.Elements().LocSet()
		}

		res := L.Elements().LocSet()
		m.paramCells(env, mem, args, root).ForEach(func(b loc.LocWithIdx) {
			nl := loc.FromLocation(rebase(l.Base(), b.Base()))
			if idx, indexed := l.Index(); indexed {
				nl = nl.WithIndex(idx)
			} else if idx, indexed := b.Index(); indexed {
				nl = nl.WithIndex(idx)
			}
			res = res.Add(nl)
		})
		return res
	}
}

// paramCells finds the caller cells a symbolic parameter stands for:
// the pointees of the corresponding argument, both as evaluated and as
// recorded against the argument's aliases. An argument with no
// pointees resolves to the argument cells themselves, so conditions on
// scalar parameters land on the caller's own variables.
func (m summaryModel) paramCells(env Env, mem L.Memory, args []cir.Expr, sym loc.SymbolicParam) L.LocSet {
	if sym.Idx >= len(args) {
		return L.Elements().LocSet()
	}
	arg := args[sym.Idx]

	cells := env.Aliases.Expand(exprTargets(env, mem, arg))
	res := EvalExpr(env, mem, arg).PointerValue().FilterNil()
	res = res.MonoJoin(L.MemOps(mem).Load(cells).PointerValue().FilterNil())
	if res.Empty() {
		return cells
	}
	return res
}

// instantiate rewrites a summary value for the caller: symbolic
// members of the points-to set are resolved, and parameter-derived
// provenance becomes the provenance observable through the actual
// arguments. Initialization, overflow and traces carry over as they
// are.
func (m summaryModel) instantiate(
	env Env,
	mem L.Memory,
	args []cir.Expr,
	resolve func(loc.LocWithIdx) L.LocSet,
	v L.AbstractValue,
) L.AbstractValue {
	locs := L.Elements().LocSet()
	v.PointerValue().ForEach(func(l loc.LocWithIdx) {
		if root, ok := symRoot(l.Base()); ok && root.Proc == m.callee {
			locs = locs.MonoJoin(resolve(l))
			return
		}
		locs = locs.Add(l)
	})
	res := v.UpdatePointer(locs)

	t := v.TaintValue()
	if t.IsSymbolic() {
		nt := t.DropSymbolic()
		t.ForEachSymbolic(func(sp loc.SymbolicParam) {
			if sp.Proc != m.callee || sp.Idx >= len(args) {
				nt = nt.AddSymbolic(sp)
				return
			}
			nt = nt.MonoJoin(argTaint(env, mem, args[sp.Idx]))
		})
		res = res.UpdateTaint(nt)
	}
	return res
}

// pristineCell is the entry-frame binding of a pointer parameter's
// stand-in cell, as installed by ParamMemory.
func pristineCell(sp loc.SymbolicParam) L.AbstractValue {
	return L.Elements().AbstractSymbolic(sp).UpdateInit(L.Consts().InitTop())
}

// argTaint is the provenance observable through an argument
// expression: the taint of the value itself joined with the taint one
// dereference hop behind it.
func argTaint(env Env, mem L.Memory, arg cir.Expr) L.Taint {
	direct := EvalExpr(env, mem, arg).TaintValue()
	behind, _ := loadThrough(env, mem, arg)
	return direct.MonoJoin(behind.TaintValue())
}

// chainRoot strips field and container-element derivations off a
// location.
func chainRoot(l loc.Location) loc.Location {
	switch b := l.(type) {
	case loc.FieldLocation:
		return chainRoot(b.Base)
	case loc.OnDemandLocation:
		return chainRoot(b.Base)
	}
	return l
}

// symRoot checks whether the location derives from a symbolic
// parameter.
func symRoot(l loc.Location) (loc.SymbolicParam, bool) {
	sp, ok := chainRoot(l).(loc.SymbolicParam)
	return sp, ok
}

// rebase reattaches a location chain rooted at a symbolic parameter
// onto a caller location.
func rebase(l loc.Location, to loc.Location) loc.Location {
	switch b := l.(type) {
	case loc.FieldLocation:
		return loc.NewFieldLocation(rebase(b.Base, to), b.Field)
	case loc.OnDemandLocation:
		return loc.NewOnDemandLocation(rebase(b.Base, to), b.Typ)
	case loc.SymbolicParam:
		return to
	}
	return l
}

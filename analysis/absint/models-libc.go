package absint

import (
	"github.com/cs-au-dk/cat/analysis/cir"
	L "github.com/cs-au-dk/cat/analysis/lattice"
	loc "github.com/cs-au-dk/cat/analysis/location"
)

// noCheck is embedded by models whose calls never raise conditions.
type noCheck struct{}

func (noCheck) Check(env Env, args []cir.Expr, mem L.Memory, conds L.Conditions) L.Conditions {
	return conds
}

// taintSourceModel handles the input primitives. The bytes they write
// are attacker controlled, so the destination buffers and all fields
// reachable from them become tainted, as does the returned count.
type taintSourceModel struct {
	noCheck
	fn      string
	destArg int
	// variadicFrom marks the first of a scanf-style destination list.
	// Negative when the model has a single fixed destination.
	variadicFrom int
}

func (m taintSourceModel) dests(args []cir.Expr) []int {
	if m.variadicFrom >= 0 {
		res := make([]int, 0, len(args))
		for i := m.variadicFrom; i < len(args); i++ {
			res = append(res, i)
		}
		return res
	}
	if m.destArg >= 0 && m.destArg < len(args) {
		return []int{m.destArg}
	}
	return nil
}

func (m taintSourceModel) Exec(env Env, ret *cir.LVal, args []cir.Expr, mem L.Memory) L.Memory {
	tainted := L.Elements().
		AbstractTainted(env.TaintOrigin()).
		AppendTrace(L.InputSource{Fn: m.fn, P: env.Pos})

	ops := L.MemOps(mem)
	for _, i := range m.dests(args) {
		targets := EvalExpr(env, ops.Memory(), args[i]).PointerValue().FilterNil()
		ops.Store(targets, tainted)

		// Input read into a struct reaches its fields too.
		snap := ops.Memory()
		targets.ForEach(func(l loc.LocWithIdx) {
			snap.FieldsOf(l.Base(), func(_ string, key loc.LocWithIdx, v L.AbstractValue) {
				ops.Update(key, v.
					InjectTaint(tainted.TaintValue()).
					UpdateTraces(v.TraceValue().MonoJoin(tainted.TraceValue())))
			})
		})
	}

	return bindRet(env, ret, ops.Memory(), tainted)
}

// getenvModel allocates a fresh cell holding the tainted environment
// string and returns a pointer to it. The pointer itself is clean.
type getenvModel struct {
	noCheck
}

func (getenvModel) Exec(env Env, ret *cir.LVal, args []cir.Expr, mem L.Memory) L.Memory {
	cell := loc.FromLocation(loc.AllocSite(env.Node, 0, cir.CharType))
	mem = mem.Update(cell, L.Elements().
		AbstractTainted(env.TaintOrigin()).
		AppendTrace(L.InputSource{Fn: "getenv", P: env.Pos}))
	return bindRet(env, ret, mem, L.Elements().AbstractPointerV(cell))
}

// convertModel handles the numeric conversions. An attacker-supplied
// digit string converts to an attacker-chosen number, so the result
// carries the argument's taint and may exceed any expected range.
type convertModel struct {
	noCheck
	fn string
}

func (m convertModel) Exec(env Env, ret *cir.LVal, args []cir.Expr, mem L.Memory) L.Memory {
	res := L.Consts().BasicValue()
	if len(args) > 0 {
		v, _ := loadThrough(env, mem, args[0])
		res = res.UpdateTaint(v.TaintValue()).UpdateTraces(v.TraceValue())
		if !v.TaintValue().IsBot() {
			res = res.UpdateOvf(L.Consts().MayOvf())
		}
	}
	return bindRet(env, ret, mem, res)
}

// allocModel handles the allocators. Exec installs the allocated
// buffers; Check flags sizes computed from untrusted input.
type allocModel struct {
	fn       string
	sizeArgs []int
	zeroed   bool
}

func (m allocModel) Exec(env Env, ret *cir.LVal, args []cir.Expr, mem L.Memory) L.Memory {
	content := L.Consts().UninitValue()
	if m.zeroed {
		content = L.Consts().BasicValue()
	}
	// realloc carries the old contents into the resized buffer.
	if m.fn == "realloc" && len(args) > 0 {
		old, _ := loadThrough(env, mem, args[0])
		content = content.MonoJoin(old)
	}

	buf := loc.FromLocation(loc.AllocSite(env.Node, 0, m.allocType(args)))
	if fresh := env.Bounds.NewLocs(env.Node); len(fresh) > 0 {
		// The numeric oracle names the buffers this call introduces.
		// Install one value per cell; pointer-typed cells chain to the
		// allocation's next dimension.
		buf = fresh[0]
		for _, f := range fresh {
			mem = mem.Update(f, m.cellValue(env, f, content))
		}
	} else {
		mem = mem.Update(buf, content)
	}

	return bindRet(env, ret, mem, L.Elements().AbstractPointerV(buf))
}

func (m allocModel) Check(env Env, args []cir.Expr, mem L.Memory, conds L.Conditions) L.Conditions {
	for _, i := range m.sizeArgs {
		if i >= len(args) {
			continue
		}
		v := EvalExpr(env, mem, args[i])
		t := v.TaintValue()
		if t.IsBot() {
			continue
		}
		traces := v.TraceValue().Append(L.AllocSink{Fn: m.fn, P: env.Pos})
		// Concretely tainted sizes are flagged where the size lives;
		// parameter-derived taint is deferred to call sites through a
		// condition on the symbolic origin.
		targets := symbolicLocs(t)
		if t.IsTainted() {
			concrete := exprTargets(env, mem, args[i])
			if concrete.Empty() && targets.Empty() {
				concrete = L.Elements().LocSetOf(loc.AllocSite(env.Node, 0, m.allocType(args)))
			}
			targets = targets.MonoJoin(concrete)
		}
		conds = emitAt(conds, L.CondOverflow, targets, v.InitValue(), traces, env.Pos)
	}
	return conds
}

func (m allocModel) allocType(args []cir.Expr) *cir.Type {
	for _, i := range m.sizeArgs {
		if i < len(args) {
			if t := sizeOfType(args[i]); t != nil {
				return t
			}
		}
	}
	return nil
}

func (m allocModel) cellValue(env Env, f loc.LocWithIdx, dflt L.AbstractValue) L.AbstractValue {
	t, ok := f.Base().Type()
	if !ok {
		return dflt
	}
	elem, ok := t.Deref()
	if !ok {
		return dflt
	}
	site, ok := f.Base().(loc.AllocationSiteLocation)
	if !ok {
		return dflt
	}

	next := loc.FromLocation(loc.AllocSite(env.Node, site.Dim+1, elem))
	v := L.Elements().AbstractPointerV(next)
	if m.zeroed {
		return v.MonoJoin(L.Elements().AbstractPointer(L.Consts().LocSetNil()))
	}
	return v.UpdateInit(L.Consts().Uninitialized())
}

// sizeOfType digs the sizeof operand out of a size expression, the
// usual way C spells the element type of an allocation.
func sizeOfType(e cir.Expr) *cir.Type {
	switch e := e.(type) {
	case *cir.SizeOf:
		return e.Typ
	case *cir.BinOp:
		if t := sizeOfType(e.X); t != nil {
			return t
		}
		return sizeOfType(e.Y)
	case *cir.UnOp:
		return sizeOfType(e.X)
	case *cir.Cast:
		return sizeOfType(e.X)
	}
	return nil
}

// freeModel ignores the call. Reuse of freed cells is out of scope, so
// the binding simply stays behind.
type freeModel struct {
	noCheck
}

func (freeModel) Exec(env Env, ret *cir.LVal, args []cir.Expr, mem L.Memory) L.Memory {
	return mem
}

// memsetModel fills the destination with a known byte, which both
// initializes it and erases any taint it held.
type memsetModel struct {
	noCheck
}

func (memsetModel) Exec(env Env, ret *cir.LVal, args []cir.Expr, mem L.Memory) L.Memory {
	if len(args) == 0 {
		return mem
	}
	dst := EvalExpr(env, mem, args[0])
	ops := L.MemOps(mem)
	ops.Store(dst.PointerValue().FilterNil(), L.Consts().BasicValue())
	return bindRet(env, ret, ops.Memory(), dst)
}

// copyModel handles copies and concatenations of buffers and strings.
// The destination receives the join of everything readable through the
// source. Initialization-sensitive variants additionally flag sources
// that are not provably initialized; a plain C copy of garbage bytes is
// legal, copying from a not-yet-constructed string object is not.
type copyModel struct {
	fn            string
	dstArg        int
	srcArg        int
	concat        bool
	initSensitive bool
	initializes   bool
}

func (m copyModel) Exec(env Env, ret *cir.LVal, args []cir.Expr, mem L.Memory) L.Memory {
	if m.dstArg >= len(args) || m.srcArg >= len(args) {
		return bindRet(env, ret, mem, L.Consts().BotValue())
	}

	srcV, _ := loadThrough(env, mem, args[m.srcArg])
	dst := EvalExpr(env, mem, args[m.dstArg]).PointerValue().FilterNil()

	stored := srcV
	if m.concat {
		stored = L.MemOps(mem).Load(dst).MonoJoin(srcV)
	}
	if m.initializes {
		stored = stored.UpdateInit(L.Consts().Initialized())
	}
	if m.concat && !stored.TaintValue().IsBot() {
		stored = stored.AppendTrace(L.ConcatSink{Fn: m.fn, P: env.Pos})
	}

	ops := L.MemOps(mem)
	ops.Store(dst, stored)
	return bindRet(env, ret, ops.Memory(), L.Elements().AbstractPointer(dst))
}

func (m copyModel) Check(env Env, args []cir.Expr, mem L.Memory, conds L.Conditions) L.Conditions {
	if !m.initSensitive || m.srcArg >= len(args) {
		return conds
	}
	srcV, srcTargets := loadThrough(env, mem, args[m.srcArg])
	if !srcV.MayBeUninit() {
		return conds
	}
	return emitAt(conds, L.CondUninit, srcTargets, srcV.InitValue(), srcV.TraceValue(), env.Pos)
}

// formatModel handles the printf family. Every argument from the
// format position onward is evaluated through one level of
// dereference; any that reads untrusted bytes may hand the attacker a
// format string, since wrappers routinely shuffle arguments into
// format position.
type formatModel struct {
	fn     string
	fmtArg int
	// dstArg is the rendered-output buffer of the sprintf variants,
	// negative for the variants that write to a stream.
	dstArg int
}

func (m formatModel) Exec(env Env, ret *cir.LVal, args []cir.Expr, mem L.Memory) L.Memory {
	if m.dstArg >= 0 && m.dstArg < len(args) {
		rendered := L.Consts().BasicValue()
		for i := m.fmtArg; i < len(args); i++ {
			if i == m.dstArg {
				continue
			}
			v, _ := loadThrough(env, mem, args[i])
			rendered = rendered.MonoJoin(v)
		}
		// The output is text: pointer values do not survive rendering.
		rendered = rendered.
			UpdatePointer(L.Elements().LocSet()).
			UpdateInit(L.Consts().Initialized())
		if !rendered.TaintValue().IsBot() {
			rendered = rendered.AppendTrace(L.FormatSink{Fn: m.fn, P: env.Pos})
		}

		ops := L.MemOps(mem)
		ops.Store(EvalExpr(env, mem, args[m.dstArg]).PointerValue().FilterNil(), rendered)
		mem = ops.Memory()
	}
	return bindRet(env, ret, mem, L.Consts().BasicValue())
}

func (m formatModel) Check(env Env, args []cir.Expr, mem L.Memory, conds L.Conditions) L.Conditions {
	if m.fmtArg < 0 {
		return conds
	}
	for i := m.fmtArg; i < len(args); i++ {
		if i == m.dstArg {
			continue
		}
		v, targets := loadThrough(env, mem, args[i])
		t := v.TaintValue()
		if t.IsBot() {
			continue
		}
		traces := v.TraceValue().Append(L.FormatSink{Fn: m.fn, P: env.Pos})
		emit := symbolicLocs(t)
		if t.IsTainted() {
			emit = emit.MonoJoin(targets)
		}
		conds = emitAt(conds, L.CondFormat, emit, v.InitValue(), traces, env.Pos)
	}
	return conds
}

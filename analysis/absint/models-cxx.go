package absint

import (
	"github.com/cs-au-dk/cat/analysis/cir"
	L "github.com/cs-au-dk/cat/analysis/lattice"
	loc "github.com/cs-au-dk/cat/analysis/location"
	"github.com/cs-au-dk/cat/utils"
)

type containerMode uint8

const (
	// containerAccess is keyed access returning a reference to the
	// mapped value, default-constructing missing entries.
	containerAccess containerMode = iota
	// containerFind returns an iterator that may compare equal to end.
	containerFind
	// containerInsert stores a value under a key.
	containerInsert
)

// containerModel handles associative containers. Element storage is
// opaque library memory, modeled by a single on-demand cell per
// container; the mapped values live in a field of that cell, refined
// by the abstraction of the lookup key.
type containerModel struct {
	noCheck
	fn   string
	mode containerMode
}

func (m containerModel) Exec(env Env, ret *cir.LVal, args []cir.Expr, mem L.Memory) L.Memory {
	if len(args) == 0 {
		return mem
	}
	field, ok := valueFieldOf(env.Pos)
	if !ok {
		return bindRet(env, ret, mem, L.Consts().BotValue())
	}

	receivers := EvalExpr(env, mem, args[0]).PointerValue().FilterNil()

	// Read the element cell of every receiver, synthesizing cells for
	// containers nothing has written yet.
	ops := L.MemOps(mem)
	elems := ops.LoadOnDemand(receivers)
	mem = ops.Memory()

	switch m.mode {
	case containerAccess:
		cells := mappedCells(elems.PointerValue(), field, m.keyIndex(env, mem, args))
		return bindRet(env, ret, mem, L.Elements().AbstractPointer(cells))

	case containerFind:
		idx := m.keyIndex(env, mem, args)
		pairs := elems.PointerValue().Map(func(l loc.LocWithIdx) loc.LocWithIdx {
			if l.Indexed() {
				return l
			}
			return l.WithIndex(idx)
		})
		// A missed lookup compares equal to end, which reads as the
		// null location, so null tests on the result prune as usual.
		return bindRet(env, ret, mem,
			L.Elements().AbstractPointer(pairs.MonoJoin(L.Consts().LocSetNil())))

	case containerInsert:
		if len(args) < 2 {
			return bindRet(env, ret, mem, L.Consts().BasicValue())
		}
		src, _ := loadThrough(env, mem, args[len(args)-1])
		cells := mappedCells(elems.PointerValue(), field, m.keyIndex(env, mem, args))
		cells.ForEach(func(l loc.LocWithIdx) {
			ops.WeakUpdate(l, src)
		})
		return bindRet(env, ret, ops.Memory(), L.Consts().BasicValue())
	}

	return mem
}

// keyIndex abstracts the lookup key. Insert calls carry the key right
// after the receiver just like lookups do.
func (m containerModel) keyIndex(env Env, mem L.Memory, args []cir.Expr) loc.Index {
	if len(args) < 2 {
		return loc.AnyIndex()
	}
	return evalIndex(env, mem, args[1])
}

// mappedCells projects element cells onto their mapped-value field
// under the given key abstraction.
func mappedCells(elems L.LocSet, field string, idx loc.Index) L.LocSet {
	return elems.Map(func(l loc.LocWithIdx) loc.LocWithIdx {
		f := loc.FromLocation(loc.NewFieldLocation(l.Base(), field))
		if prev, ok := l.Index(); ok {
			return f.WithIndex(prev)
		}
		return f.WithIndex(idx)
	})
}

// valueFieldOf names the mapped-value field of a container element.
// The C++ frontend lowers map entries as std::pair, the C frontend's
// intrusive tables name the payload directly. An unrecognized
// extension disables the model for this call instead of aborting the
// run.
func valueFieldOf(pos cir.Pos) (string, bool) {
	switch pos.Ext() {
	case ".cpp", ".cc", ".cxx", ".c++", ".hpp", ".hh", ".hxx", ".ipp", ".ii":
		return "second", true
	case ".c", ".h", ".i":
		return "value", true
	default:
		utils.Warnf("unrecognized source extension %q of %s, skipping container model",
			pos.Ext(), pos)
		return "", false
	}
}

package lattice

import (
	loc "github.com/cs-au-dk/cat/analysis/location"
)

// Substitute re-materializes a callee condition in a caller context.
// Conditions against symbolic parameter locations are resolved through
// the caller's aliasing facts; when resolution yields nothing the
// condition is kept at the symbolic site rather than silently dropped.
// The emitted conditions have their initialization re-read from the
// caller's memory at the target location; the initialization recorded
// in the summary is never trusted after substitution. Traces and the
// reported flag carry over.
func Substitute(
	resolve func(loc.LocWithIdx) LocSet,
	callerMem Memory,
	c Condition,
) []Condition {
	rebind := func(l loc.LocWithIdx) Condition {
		v, _ := callerMem.Get(l)
		cc := NewCondition(c.Kind, l, v.InitValue(), c.Pos).WithTraces(c.traces)
		cc.reported = c.reported
		return cc
	}

	if !c.Loc.IsSymbolic() {
		return []Condition{rebind(c.Loc)}
	}

	resolved := resolve(c.Loc)
	if resolved.Empty() {
		return []Condition{c}
	}

	res := make([]Condition, 0, resolved.Size())
	resolved.ForEach(func(l loc.LocWithIdx) {
		res = append(res, rebind(l))
	})
	return res
}

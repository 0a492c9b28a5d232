package location

import (
	"fmt"

	"github.com/cs-au-dk/cat/analysis/cir"
	"github.com/cs-au-dk/cat/utils"
)

// SymbolicParam stands in for the unknown cell a procedure parameter
// points to. Conditions raised against symbolic locations are
// re-materialized when the procedure's summary is applied at a call
// site. The same value also serves as the symbolic taint origin of
// parameter-derived data.
type SymbolicParam struct {
	addressable
	Proc *cir.Proc
	Idx  int
}

func NewSymbolicParam(p *cir.Proc, idx int) SymbolicParam {
	return SymbolicParam{Proc: p, Idx: idx}
}

func (l SymbolicParam) Equal(ol Location) bool {
	o, ok := ol.(SymbolicParam)
	return ok && l.Proc == o.Proc && l.Idx == o.Idx
}

func (l SymbolicParam) Position() cir.Pos {
	if l.Idx < len(l.Proc.Params) {
		return l.Proc.Params[l.Idx].P
	}
	return l.Proc.P
}

func (l SymbolicParam) Hash() uint32 {
	return utils.HashCombine(utils.HashString(l.Proc.Name), 0x5f, uint32(l.Idx))
}

func (l SymbolicParam) String() string {
	name := fmt.Sprintf("@%d", l.Idx)
	if l.Idx < len(l.Proc.Params) {
		name = "@" + l.Proc.Params[l.Idx].Name
	}
	return colorize.Symbolic(fmt.Sprintf("‹%s:%s›", l.Proc.Name, name))
}

func (l SymbolicParam) Type() (*cir.Type, bool) {
	if l.Idx < len(l.Proc.Params) {
		if elem, ok := l.Proc.Params[l.Idx].Typ.Deref(); ok {
			return elem, true
		}
	}
	return nil, false
}

// RetLocation is the synthetic cell holding a procedure's return
// value. Callers read the result from it when applying a summary.
type RetLocation struct {
	addressable
	Proc *cir.Proc
}

func ReturnLocation(p *cir.Proc) RetLocation {
	return RetLocation{Proc: p}
}

func (l RetLocation) Equal(ol Location) bool {
	o, ok := ol.(RetLocation)
	return ok && l.Proc == o.Proc
}

func (l RetLocation) Position() cir.Pos {
	return l.Proc.P
}

func (l RetLocation) Hash() uint32 {
	return utils.HashCombine(utils.HashString(l.Proc.Name), 0xe7)
}

func (l RetLocation) String() string {
	return fmt.Sprintf("‹%s:%s›", colorize.Context(l.Proc.Name), colorize.Site("$return"))
}

func (l RetLocation) Type() (*cir.Type, bool) {
	return l.Proc.Ret, l.Proc.Ret != nil
}

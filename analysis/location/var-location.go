package location

import (
	"fmt"

	"github.com/cs-au-dk/cat/analysis/cir"
	"github.com/cs-au-dk/cat/utils"
)

// VarLocation is the memory cell of a program variable. Globals are
// represented by variables with no enclosing procedure.
type VarLocation struct {
	addressable
	Var *cir.Var
}

func LocationFromVar(v *cir.Var) VarLocation {
	return VarLocation{Var: v}
}

func (l VarLocation) Equal(ol Location) bool {
	o, ok := ol.(VarLocation)
	return ok && l == o
}

func (l VarLocation) Position() cir.Pos {
	return l.Var.P
}

func (l VarLocation) Hash() uint32 {
	scope := ""
	if !l.Var.IsGlobal() {
		scope = l.Var.Proc.Name
	}

	return utils.HashCombine(
		utils.HashString(scope),
		utils.HashString(l.Var.Name),
		l.Var.P.Hash(),
	)
}

func (l VarLocation) String() string {
	if l.Var.IsGlobal() {
		return colorize.Cons("Global") + "(" + colorize.Site(l.Var.Name) + ")"
	}
	return fmt.Sprintf("‹%s: %s›",
		colorize.Context(l.Var.Proc.Name),
		colorize.Site(l.Var.Name))
}

func (l VarLocation) Type() (*cir.Type, bool) {
	return l.Var.Typ, l.Var.Typ != nil
}

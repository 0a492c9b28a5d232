package cir

import (
	"fmt"
	"strings"

	"github.com/cs-au-dk/cat/utils"
)

// Var is a program variable. Globals have a nil Proc.
type Var struct {
	Name string
	Typ  *Type
	Proc *Proc
	P    Pos
}

func (v *Var) Pos() Pos { return v.P }

func (v *Var) IsGlobal() bool { return v.Proc == nil }

func (v *Var) String() string {
	return colorize.Var(v.Name)
}

// Offset refines an lvalue host with a field access or an index
// subscript, in source order.
type Offset struct {
	Field string
	Index Expr
}

func (o Offset) String() string {
	if o.Field != "" {
		return "." + o.Field
	}
	return fmt.Sprintf("[%s]", o.Index)
}

// LVal designates a storage place: either a variable or a pointer
// dereference, refined by a chain of field and index offsets.
// Exactly one of Var and Mem is set.
type LVal struct {
	Var  *Var
	Mem  Expr
	Offs []Offset
	P    Pos
}

func VarLVal(v *Var, pos Pos) *LVal {
	return &LVal{Var: v, P: pos}
}

// MemLVal is the dereference *e of a pointer-typed expression.
func MemLVal(e Expr, pos Pos) *LVal {
	return &LVal{Mem: e, P: pos}
}

// Field returns a copy of the lvalue extended with a field offset.
func (lv *LVal) Field(name string) *LVal {
	res := *lv
	res.Offs = append(append([]Offset(nil), lv.Offs...), Offset{Field: name})
	return &res
}

// Index returns a copy of the lvalue extended with an index offset.
func (lv *LVal) Index(e Expr) *LVal {
	res := *lv
	res.Offs = append(append([]Offset(nil), lv.Offs...), Offset{Index: e})
	return &res
}

func (lv *LVal) Pos() Pos { return lv.P }

// Type computes the type of the lvalue by walking the offset chain.
// Returns nil when the host type is unknown or too shallow to resolve.
func (lv *LVal) Type() *Type {
	var t *Type
	switch {
	case lv.Var != nil:
		t = lv.Var.Typ
	case lv.Mem != nil:
		if elem, ok := lv.Mem.Type().Deref(); ok {
			t = elem
		}
	}

	for _, off := range lv.Offs {
		if t == nil {
			return nil
		}
		if off.Index != nil {
			if elem, ok := t.Deref(); ok {
				t = elem
			} else if t.Elem != nil {
				// Container subscripts resolve to the mapped-to type.
				t = t.Elem
			} else {
				return nil
			}
		} else {
			// Field types are not tracked structurally.
			return nil
		}
	}
	return t
}

func (lv *LVal) String() string {
	var b strings.Builder
	switch {
	case lv.Var != nil:
		b.WriteString(lv.Var.String())
	case lv.Mem != nil:
		fmt.Fprintf(&b, "(*%s)", lv.Mem)
	}
	for _, off := range lv.Offs {
		b.WriteString(off.String())
	}
	return b.String()
}

func (lv *LVal) Hash() uint32 {
	var h uint32
	switch {
	case lv.Var != nil:
		h = utils.HashCombine(9, utils.HashString(lv.Var.Name), lv.Var.P.Hash())
	case lv.Mem != nil:
		h = utils.HashCombine(10, lv.Mem.Hash())
	}
	for _, off := range lv.Offs {
		if off.Index != nil {
			h = utils.HashCombine(h, off.Index.Hash())
		} else {
			h = utils.HashCombine(h, utils.HashString(off.Field))
		}
	}
	return h
}

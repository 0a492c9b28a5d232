package cir

import (
	"fmt"
	"strconv"

	"github.com/cs-au-dk/cat/utils"
)

// Expr is a side-effect free expression. The variants mirror the CIL
// simplification of C expressions; evaluation is a type switch over them.
type Expr interface {
	Type() *Type
	Pos() Pos
	String() string
	Hash() uint32
}

// BinOpKind enumerates binary operators with CIL's naming.
// PlusA/MinusA are arithmetic, PlusPI/IndexPI/MinusPI apply a pointer
// and an integer, MinusPP subtracts two pointers.
type BinOpKind uint8

const (
	PlusA BinOpKind = iota
	PlusPI
	IndexPI
	MinusA
	MinusPI
	MinusPP
	Mult
	Div
	Mod
	Shiftlt
	Shiftrt
	Lt
	Gt
	Le
	Ge
	Eq
	Ne
	BAnd
	BXor
	BOr
	LAnd
	LOr
)

var binOpStrings = map[BinOpKind]string{
	PlusA:   "+",
	PlusPI:  "+",
	IndexPI: "[]",
	MinusA:  "-",
	MinusPI: "-",
	MinusPP: "-",
	Mult:    "*",
	Div:     "/",
	Mod:     "%",
	Shiftlt: "<<",
	Shiftrt: ">>",
	Lt:      "<",
	Gt:      ">",
	Le:      "<=",
	Ge:      ">=",
	Eq:      "==",
	Ne:      "!=",
	BAnd:    "&",
	BXor:    "^",
	BOr:     "|",
	LAnd:    "&&",
	LOr:     "||",
}

func (op BinOpKind) String() string {
	if s, ok := binOpStrings[op]; ok {
		return s
	}
	return fmt.Sprintf("op(%d)", uint8(op))
}

// IsComparison reports whether the operator yields a boolean from an
// ordering or equality test.
func (op BinOpKind) IsComparison() bool {
	switch op {
	case Lt, Gt, Le, Ge, Eq, Ne:
		return true
	}
	return false
}

// UnOpKind enumerates unary operators with CIL's naming.
type UnOpKind uint8

const (
	Neg UnOpKind = iota
	BNot
	LNot
)

func (op UnOpKind) String() string {
	switch op {
	case Neg:
		return "-"
	case BNot:
		return "~"
	case LNot:
		return "!"
	}
	return fmt.Sprintf("op(%d)", uint8(op))
}

// Const is an integer or character constant.
type Const struct {
	Value int64
	Typ   *Type
	P     Pos
}

func (e *Const) Type() *Type { return e.Typ }
func (e *Const) Pos() Pos    { return e.P }
func (e *Const) String() string {
	return strconv.FormatInt(e.Value, 10)
}
func (e *Const) Hash() uint32 {
	return utils.HashCombine(1, uint32(e.Value), uint32(e.Value>>32))
}

func (e *Const) IsZero() bool { return e.Value == 0 }

// StrLit is a string literal. Its type is char*.
type StrLit struct {
	Value string
	P     Pos
}

func (e *StrLit) Type() *Type { return PtrTo(CharType) }
func (e *StrLit) Pos() Pos    { return e.P }
func (e *StrLit) String() string {
	return strconv.Quote(e.Value)
}
func (e *StrLit) Hash() uint32 {
	return utils.HashCombine(2, utils.HashString(e.Value))
}

// LvalExpr reads the current value of an lvalue.
type LvalExpr struct {
	LV *LVal
	P  Pos
}

func (e *LvalExpr) Type() *Type    { return e.LV.Type() }
func (e *LvalExpr) Pos() Pos       { return e.P }
func (e *LvalExpr) String() string { return e.LV.String() }
func (e *LvalExpr) Hash() uint32 {
	return utils.HashCombine(3, e.LV.Hash())
}

// AddrOf takes the address of an lvalue. Array-typed lvalues decay to
// a pointer to their first element through the same variant.
type AddrOf struct {
	LV *LVal
	P  Pos
}

func (e *AddrOf) Type() *Type {
	if t := e.LV.Type(); t != nil {
		return PtrTo(t)
	}
	return PtrTo(VoidType)
}
func (e *AddrOf) Pos() Pos       { return e.P }
func (e *AddrOf) String() string { return "&" + e.LV.String() }
func (e *AddrOf) Hash() uint32 {
	return utils.HashCombine(4, e.LV.Hash())
}

// UnOp applies a unary operator.
type UnOp struct {
	Op UnOpKind
	X  Expr
	P  Pos
}

func (e *UnOp) Type() *Type    { return e.X.Type() }
func (e *UnOp) Pos() Pos       { return e.P }
func (e *UnOp) String() string { return e.Op.String() + e.X.String() }
func (e *UnOp) Hash() uint32 {
	return utils.HashCombine(5, uint32(e.Op), e.X.Hash())
}

// BinOp applies a binary operator.
type BinOp struct {
	Op   BinOpKind
	X, Y Expr
	Typ  *Type
	P    Pos
}

func (e *BinOp) Type() *Type {
	if e.Typ != nil {
		return e.Typ
	}
	if e.Op.IsComparison() {
		return IntType
	}
	return e.X.Type()
}
func (e *BinOp) Pos() Pos { return e.P }
func (e *BinOp) String() string {
	if e.Op == IndexPI {
		return fmt.Sprintf("%s[%s]", e.X, e.Y)
	}
	return fmt.Sprintf("%s %s %s", e.X, e.Op, e.Y)
}
func (e *BinOp) Hash() uint32 {
	return utils.HashCombine(6, uint32(e.Op), e.X.Hash(), e.Y.Hash())
}

// Cast coerces an expression to a different type.
type Cast struct {
	Typ *Type
	X   Expr
	P   Pos
}

func (e *Cast) Type() *Type    { return e.Typ }
func (e *Cast) Pos() Pos       { return e.P }
func (e *Cast) String() string { return fmt.Sprintf("(%s)%s", e.Typ, e.X) }
func (e *Cast) Hash() uint32 {
	return utils.HashCombine(7, e.Typ.Hash(), e.X.Hash())
}

// SizeOf is a sizeof(T) constant. It never carries taint.
type SizeOf struct {
	Typ *Type
	P   Pos
}

func (e *SizeOf) Type() *Type    { return SizeType }
func (e *SizeOf) Pos() Pos       { return e.P }
func (e *SizeOf) String() string { return fmt.Sprintf("sizeof(%s)", e.Typ) }
func (e *SizeOf) Hash() uint32 {
	return utils.HashCombine(8, e.Typ.Hash())
}

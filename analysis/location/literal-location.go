package location

import (
	"strconv"

	"github.com/cs-au-dk/cat/analysis/cir"
	"github.com/cs-au-dk/cat/utils"
)

// StringLitLocation denotes the read-only storage of a string literal.
// It is not addressable: stores through it are skipped, and loads fall
// back to the in-lattice default. Its value lives in the literal itself.
type StringLitLocation struct {
	Lit string
	P   cir.Pos
}

func NewStringLitLocation(lit string, pos cir.Pos) StringLitLocation {
	return StringLitLocation{Lit: lit, P: pos}
}

func (l StringLitLocation) Hash() uint32 {
	return utils.HashCombine(utils.HashString(l.Lit), l.P.Hash())
}

func (l StringLitLocation) Equal(o Location) bool {
	ol, ok := o.(StringLitLocation)
	return ok && l == ol
}

func (l StringLitLocation) Position() cir.Pos {
	return l.P
}

func (l StringLitLocation) String() string {
	return colorize.Cons(strconv.Quote(l.Lit))
}

func (l StringLitLocation) Type() (*cir.Type, bool) {
	return cir.PtrTo(cir.CharType), true
}

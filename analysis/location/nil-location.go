package location

import (
	"github.com/cs-au-dk/cat/analysis/cir"
)

// NilLocation represents the null pointer.
type NilLocation struct{}

func (n NilLocation) Hash() uint32 {
	return 42
}

func (n NilLocation) Equal(o Location) bool {
	_, ok := o.(NilLocation)
	return ok
}

func (n NilLocation) Position() cir.Pos {
	return cir.NoPos
}

func (n NilLocation) String() string {
	return colorize.Nil("null")
}

func (l NilLocation) Type() (*cir.Type, bool) {
	return nil, false
}

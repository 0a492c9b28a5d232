package location

import (
	"fmt"

	"github.com/cs-au-dk/cat/analysis/cir"
	"github.com/cs-au-dk/cat/utils"
)

// FieldLocation is a complex location denoting a named field of a
// struct or class value. Field locations nest through their base.
type FieldLocation struct {
	addressable
	Base  Location
	Field string
}

func NewFieldLocation(base Location, field string) FieldLocation {
	return FieldLocation{Base: base, Field: field}
}

func (l FieldLocation) Hash() uint32 {
	return utils.HashCombine(l.Base.Hash(), utils.HashString(l.Field))
}

func (l FieldLocation) Equal(ol Location) bool {
	o, ok := ol.(FieldLocation)
	return ok && l.Field == o.Field && l.Base.Equal(o.Base)
}

func (l FieldLocation) Position() cir.Pos {
	return l.Base.Position()
}

func (l FieldLocation) String() string {
	return fmt.Sprintf("%s.%s", l.Base, colorize.Index(l.Field))
}

// Returns the nesting level of a field location
func (l FieldLocation) NestingLevel() (res int) {
	switch bl := l.Base.(type) {
	case FieldLocation:
		return 1 + bl.NestingLevel()
	}

	return 0
}

// Root returns the outermost non-field base of the location.
func (l FieldLocation) Root() Location {
	switch bl := l.Base.(type) {
	case FieldLocation:
		return bl.Root()
	}

	return l.Base
}

// Type is unknown for field locations: the representation does not
// track struct layouts.
func (l FieldLocation) Type() (*cir.Type, bool) {
	return nil, false
}

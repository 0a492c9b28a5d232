package location

import (
	"github.com/cs-au-dk/cat/analysis/cir"
	"github.com/cs-au-dk/cat/utils"

	"github.com/fatih/color"
)

// colorize is used for pretty-printing.
var colorize = struct {
	Site     func(...interface{}) string
	Cons     func(...interface{}) string
	Context  func(...interface{}) string
	Nil      func(...interface{}) string
	Index    func(...interface{}) string
	Symbolic func(...interface{}) string
}{
	Site: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgHiGreen).SprintFunc())(is...)
	},
	Cons: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgHiYellow).SprintFunc())(is...)
	},
	Context: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgHiBlue).SprintFunc())(is...)
	},
	Nil: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgHiRed).SprintFunc())(is...)
	},
	Index: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgHiCyan).SprintFunc())(is...)
	},
	Symbolic: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgHiMagenta).SprintFunc())(is...)
	},
}

// A location points to something (or nothing) in the abstract memory.
// It can be a program variable, an allocation site, a struct field, or
// a symbolic stand-in for a caller-provided cell.
type Location interface {
	Hash() uint32
	Equal(Location) bool
	String() string
	Type() (*cir.Type, bool)
	Position() cir.Pos
}

// LocationHasher needed for immutable.Map
type LocationHasher struct{}

func (LocationHasher) Hash(key Location) uint32 {
	return key.Hash()
}

func (LocationHasher) Equal(a, b Location) bool {
	return a.Equal(b)
}

// AddressableLocation is implemented by locations bound directly in
// abstract memory. It excludes the nil pointer from such bindings.
type AddressableLocation interface {
	Location
	addressableTag()
}

// addressable is a property embedded by all addressable locations.
type addressable struct{}

func (addressable) addressableTag() {}

// IsAddressable reports whether l may be bound in abstract memory.
func IsAddressable(l Location) bool {
	_, ok := l.(AddressableLocation)
	return ok
}

package location

import (
	"fmt"
	"log"
	"strconv"

	"github.com/cs-au-dk/cat/analysis/cir"
	"github.com/cs-au-dk/cat/utils"
)

// IdxKind discriminates index refinements.
type IdxKind uint8

const (
	// IdxInterval restricts an access to a numeric index range.
	IdxInterval IdxKind = iota
	// IdxString restricts an access to a constant string key.
	IdxString
	// IdxAny is the trivial refinement covering every index.
	IdxAny
)

// Index is the refinement attached to a location by a subscript
// access. Numeric refinements carry an interval; half-open intervals
// mark the missing bound as unbounded.
type Index struct {
	Kind                        IdxKind
	Low, High                   int64
	LowUnbounded, HighUnbounded bool
	Str                         string
}

func IntervalIndex(lo, hi int64) Index {
	return Index{Kind: IdxInterval, Low: lo, High: hi}
}

func ConstIndex(n int64) Index {
	return IntervalIndex(n, n)
}

func StringIndex(s string) Index {
	return Index{Kind: IdxString, Str: s}
}

func AnyIndex() Index {
	return Index{Kind: IdxAny}
}

func (i Index) Equal(o Index) bool {
	return i == o
}

func (i Index) Hash() uint32 {
	switch i.Kind {
	case IdxString:
		return utils.HashCombine(uint32(i.Kind), utils.HashString(i.Str))
	case IdxAny:
		return utils.HashCombine(uint32(i.Kind), 1)
	default:
		var lo, hi uint32
		if !i.LowUnbounded {
			lo = uint32(i.Low) ^ uint32(i.Low>>32)
		}
		if !i.HighUnbounded {
			hi = uint32(i.High) ^ uint32(i.High>>32)
		}
		return utils.HashCombine(uint32(i.Kind), lo, hi,
			uint32(boolToInt(i.LowUnbounded)<<1|boolToInt(i.HighUnbounded)))
	}
}

func (i Index) String() string {
	switch i.Kind {
	case IdxString:
		return strconv.Quote(i.Str)
	case IdxAny:
		return "*"
	default:
		lo, hi := "-∞", "+∞"
		if !i.LowUnbounded {
			lo = strconv.FormatInt(i.Low, 10)
		}
		if !i.HighUnbounded {
			hi = strconv.FormatInt(i.High, 10)
		}
		if lo == hi {
			return lo
		}
		return fmt.Sprintf("%s:%s", lo, hi)
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// LocWithIdx is a location optionally refined by a single index.
// Refinement is one-directional: a bare location may gain an index,
// and an indexed location never gains another.
type LocWithIdx struct {
	loc     Location
	idx     Index
	indexed bool
}

func FromLocation(l Location) LocWithIdx {
	return LocWithIdx{loc: l}
}

// WithIndex refines the location with an index. Indices do not stack;
// refining an already indexed location is an internal error.
func (l LocWithIdx) WithIndex(idx Index) LocWithIdx {
	if l.indexed {
		log.Fatalf("attempted to re-index already indexed location %s with %s", l, idx)
	}
	return LocWithIdx{loc: l.loc, idx: idx, indexed: true}
}

func (l LocWithIdx) Base() Location {
	return l.loc
}

func (l LocWithIdx) Index() (Index, bool) {
	return l.idx, l.indexed
}

func (l LocWithIdx) Indexed() bool {
	return l.indexed
}

// IsSymbolic reports whether the underlying location stands for an
// unresolved caller cell.
func (l LocWithIdx) IsSymbolic() bool {
	switch base := l.loc.(type) {
	case SymbolicParam:
		return true
	case FieldLocation:
		_, ok := base.Root().(SymbolicParam)
		return ok
	}
	return false
}

func (l LocWithIdx) Equal(o LocWithIdx) bool {
	if l.indexed != o.indexed || !l.loc.Equal(o.loc) {
		return false
	}
	return !l.indexed || l.idx.Equal(o.idx)
}

func (l LocWithIdx) Hash() uint32 {
	if !l.indexed {
		return l.loc.Hash()
	}
	return utils.HashCombine(l.loc.Hash(), l.idx.Hash())
}

func (l LocWithIdx) String() string {
	if !l.indexed {
		return l.loc.String()
	}
	return fmt.Sprintf("%s[%s]", l.loc, colorize.Index(l.idx.String()))
}

func (l LocWithIdx) Type() (*cir.Type, bool) {
	return l.loc.Type()
}

func (l LocWithIdx) Position() cir.Pos {
	return l.loc.Position()
}

package absint

import (
	L "github.com/cs-au-dk/cat/analysis/lattice"
	loc "github.com/cs-au-dk/cat/analysis/location"
	"github.com/cs-au-dk/cat/utils"
	"github.com/cs-au-dk/cat/utils/hmap"

	uf "github.com/spakin/disjoint"
)

// AliasTable is a flow-insensitive record of which cells may hold the
// same pointer, built up from the copy assignments seen during the
// fixed point. The flow-sensitive memory answers most aliasing
// questions by itself; the table is the fallback used when a symbolic
// parameter must be resolved at a call site where the points-to
// information has degraded to ⊥.
type AliasTable struct {
	elems *hmap.Map[loc.LocWithIdx, *uf.Element]
	locs  []loc.LocWithIdx
}

func NewAliasTable() *AliasTable {
	return &AliasTable{
		elems: hmap.NewMap[*uf.Element, loc.LocWithIdx](utils.HashableHasher[loc.LocWithIdx]()),
	}
}

func (t *AliasTable) elem(l loc.LocWithIdx) *uf.Element {
	if el, found := t.elems.GetOk(l); found {
		return el
	}
	el := uf.NewElement()
	el.Data = l
	t.elems.Set(l, el)
	t.locs = append(t.locs, l)
	return el
}

// Union records that the cells of a and the cells of b were assigned
// the same pointer value.
func (t *AliasTable) Union(a, b L.LocSet) {
	if t == nil {
		return
	}
	var first *uf.Element
	join := func(l loc.LocWithIdx) {
		el := t.elem(l)
		if first == nil {
			first = el
			return
		}
		uf.Union(first, el)
	}
	a.ForEach(join)
	b.ForEach(join)
}

// Expand closes the location set over the equivalence classes its
// members belong to.
func (t *AliasTable) Expand(ls L.LocSet) L.LocSet {
	if t == nil {
		return ls
	}

	reps := map[*uf.Element]bool{}
	ls.ForEach(func(l loc.LocWithIdx) {
		if el, found := t.elems.GetOk(l); found {
			reps[el.Find()] = true
		}
	})
	if len(reps) == 0 {
		return ls
	}

	for _, l := range t.locs {
		if el, found := t.elems.GetOk(l); found && reps[el.Find()] {
			ls = ls.Add(l)
		}
	}
	return ls
}

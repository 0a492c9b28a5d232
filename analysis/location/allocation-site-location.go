package location

import (
	"fmt"

	"github.com/cs-au-dk/cat/analysis/cir"
	"github.com/cs-au-dk/cat/utils"
)

// AllocationSiteLocation encodes an abstract heap location created by
// an allocating library call. Allocation sites are addressable, and
// are identified by the enclosing procedure, the hash of the
// allocating node, and a dimension discriminator separating multiple
// conceptual cells created by the same node.
type AllocationSiteLocation struct {
	addressable
	Proc *cir.Proc
	Site uint32
	Dim  int

	// Typ records the allocated type. It does not participate in
	// location identity.
	Typ *cir.Type
}

// AllocSite derives the allocation site identity of a node. The result
// depends only on the procedure name, the node index and the dimension,
// making it stable across runs and analysis orders.
func AllocSite(n *cir.Node, dim int, typ *cir.Type) AllocationSiteLocation {
	return AllocationSiteLocation{
		Proc: n.Proc,
		Site: n.Hash(),
		Dim:  dim,
		Typ:  typ,
	}
}

func (l AllocationSiteLocation) Equal(ol Location) bool {
	o, ok := ol.(AllocationSiteLocation)
	return ok && l.Proc == o.Proc && l.Site == o.Site && l.Dim == o.Dim
}

func (l AllocationSiteLocation) Position() cir.Pos {
	if l.Proc != nil {
		return l.Proc.P
	}
	return cir.NoPos
}

func (l AllocationSiteLocation) Hash() uint32 {
	procHash := uint32(0)
	if l.Proc != nil {
		procHash = utils.HashString(l.Proc.Name)
	}

	return utils.HashCombine(procHash, l.Site, uint32(l.Dim))
}

func (l AllocationSiteLocation) String() string {
	ctx := ""
	if l.Proc != nil {
		ctx = colorize.Context(l.Proc.Name) + ":"
	}

	dim := ""
	if l.Dim != 0 {
		dim = fmt.Sprintf("#%d", l.Dim)
	}

	return fmt.Sprintf("‹%s%s%s›", ctx, colorize.Site(fmt.Sprintf("alloc%d", l.Site%1000)), dim)
}

func (l AllocationSiteLocation) Type() (*cir.Type, bool) {
	return l.Typ, l.Typ != nil
}

// OnDemandLocation is the summary cell synthesized for the elements of
// an associative container. It is a pure function of the container's
// location and type: looking up the same container twice yields the
// same cell, with no side table involved.
type OnDemandLocation struct {
	addressable
	Base Location
	Typ  *cir.Type
}

func NewOnDemandLocation(base Location, containerTyp *cir.Type) OnDemandLocation {
	return OnDemandLocation{Base: base, Typ: containerTyp}
}

func (l OnDemandLocation) Equal(ol Location) bool {
	o, ok := ol.(OnDemandLocation)
	return ok && l.Base.Equal(o.Base) &&
		l.Typ.QualifiedName() == o.Typ.QualifiedName()
}

func (l OnDemandLocation) Position() cir.Pos {
	return l.Base.Position()
}

func (l OnDemandLocation) Hash() uint32 {
	return utils.HashCombine(
		l.Base.Hash(),
		utils.HashString(l.Typ.QualifiedName()),
	)
}

func (l OnDemandLocation) String() string {
	return fmt.Sprintf("%s(%s)", colorize.Cons("elems"), l.Base)
}

// Type returns the mapped-to type of the container when known.
func (l OnDemandLocation) Type() (*cir.Type, bool) {
	if l.Typ != nil && l.Typ.Elem != nil {
		return l.Typ.Elem, true
	}
	return nil, false
}

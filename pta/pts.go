package pta

import "golang.org/x/tools/container/intsets"

// PointsToSet is a monotonically growing set of abstract objects,
// represented as a sparse bit set over CSObj ids. The sparse representation
// is cheap for the common small sets and scales to the large ones; iteration
// is in increasing id order, which is interning order, so it is
// deterministic. Values must not be copied; pass *PointsToSet around.
type PointsToSet struct {
	s intsets.Sparse
}

func NewPointsToSet(objs ...*CSObj) *PointsToSet {
	p := new(PointsToSet)
	for _, o := range objs {
		p.s.Insert(o.id)
	}
	return p
}

// Add inserts o and reports whether the set changed.
func (p *PointsToSet) Add(o *CSObj) bool { return p.s.Insert(o.id) }

func (p *PointsToSet) Contains(o *CSObj) bool { return p.s.Has(o.id) }

func (p *PointsToSet) Empty() bool { return p.s.IsEmpty() }

func (p *PointsToSet) Len() int { return p.s.Len() }

// AppendTo appends the object ids in increasing order to space.
func (p *PointsToSet) AppendTo(space []int) []int { return p.s.AppendTo(space) }

// DiffFrom returns the objects of other that are not in p (the worklist
// delta: other \ p).
func (p *PointsToSet) DiffFrom(other *PointsToSet) *PointsToSet {
	d := new(PointsToSet)
	d.s.Difference(&other.s, &p.s)
	return d
}

// SubsetOf reports whether every object of p is in other.
func (p *PointsToSet) SubsetOf(other *PointsToSet) bool {
	return other.DiffFrom(p).Empty()
}

// UnionWith adds all of other to p and reports whether p changed.
func (p *PointsToSet) UnionWith(other *PointsToSet) bool { return p.s.UnionWith(&other.s) }

func (p *PointsToSet) Copy() *PointsToSet {
	c := new(PointsToSet)
	c.s.Copy(&p.s)
	return c
}

func (p *PointsToSet) String() string { return p.s.String() }

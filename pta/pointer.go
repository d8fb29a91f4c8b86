package pta

import (
	"fmt"

	"github.com/kvistgaard/sift/ir"
)

// Pointer is a node of the pointer flow graph. The four variants below are
// the only implementations; all are interned by the CSManager, so nodes with
// equal keys are identical and can be compared by pointer.
type Pointer interface {
	pointerTag()
	// PointsTo is the node's points-to set. It grows monotonically over the
	// solver's lifetime.
	PointsTo() *PointsToSet
	fmt.Stringer
}

type node struct {
	pts PointsToSet
}

func (*node) pointerTag() {}

func (n *node) PointsTo() *PointsToSet { return &n.pts }

// CSVar is a local variable under a context.
type CSVar struct {
	node
	Ctx Context
	V   *ir.Var
}

func (v *CSVar) String() string { return fmt.Sprintf("%v:%v/%v", v.Ctx, v.V.Method, v.V) }

// InstanceField is a field of an abstract object.
type InstanceField struct {
	node
	Base  *CSObj
	Field *ir.Field
}

func (f *InstanceField) String() string { return fmt.Sprintf("%v.%s", f.Base, f.Field.Name) }

// StaticField is a class-level field; context-free.
type StaticField struct {
	node
	Field *ir.Field
}

func (f *StaticField) String() string { return f.Field.String() }

// ArrayIndex is the single index-collapsed slot of an abstract array.
type ArrayIndex struct {
	node
	Array *CSObj
}

func (a *ArrayIndex) String() string { return fmt.Sprintf("%v[*]", a.Array) }

// CSObj is an abstract object under a heap context, with a dense id assigned
// at interning (points-to sets are sparse bit sets over these ids).
type CSObj struct {
	HeapCtx Context
	Obj     ir.Obj
	id      int
}

func (o *CSObj) ID() int { return o.id }

func (o *CSObj) String() string { return fmt.Sprintf("%v:%v", o.HeapCtx, o.Obj) }

// CSCallSite is an invoke statement under a context.
type CSCallSite struct {
	Ctx  Context
	Site *ir.Invoke
}

func (c *CSCallSite) String() string { return fmt.Sprintf("%v:%v", c.Ctx, c.Site) }

// CSMethod is a method under a context.
type CSMethod struct {
	Ctx    Context
	Method *ir.Method
}

func (m *CSMethod) String() string { return fmt.Sprintf("%v:%v", m.Ctx, m.Method) }

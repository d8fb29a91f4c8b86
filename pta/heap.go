package pta

import (
	"fmt"

	"github.com/kvistgaard/sift/ir"
)

// HeapModel maps allocation sites to abstract objects. Must be deterministic
// per statement.
type HeapModel interface {
	GetObj(alloc *ir.New) ir.Obj
}

type allocObj struct {
	site *ir.New
}

func (o *allocObj) Type() *ir.Type { return o.site.T }

func (o *allocObj) Site() *ir.New { return o.site }

func (o *allocObj) String() string {
	return fmt.Sprintf("%v[%d]: new %s", o.site.Container(), o.site.Index(), o.site.T)
}

// AllocSiteModel is the standard allocation-site heap abstraction: one
// abstract object per New statement.
type AllocSiteModel struct {
	objs map[*ir.New]*allocObj
}

func NewAllocSiteModel() *AllocSiteModel {
	return &AllocSiteModel{objs: make(map[*ir.New]*allocObj)}
}

func (m *AllocSiteModel) GetObj(alloc *ir.New) ir.Obj {
	if o, ok := m.objs[alloc]; ok {
		return o
	}
	o := &allocObj{site: alloc}
	m.objs[alloc] = o
	return o
}

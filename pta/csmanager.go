package pta

import "github.com/kvistgaard/sift/ir"

// CSManager interns every context-sensitive element: pointer nodes, objects,
// call sites and methods. Equal keys always yield the identical value, so
// all of them compare by pointer. Interning order doubles as the
// deterministic iteration order of results.
type CSManager struct {
	csVars   map[csVarKey]*CSVar
	varIndex map[*ir.Var][]*CSVar
	varList  []*ir.Var

	iFields  map[iFieldKey]*InstanceField
	sFields  map[*ir.Field]*StaticField
	aIndexes map[*CSObj]*ArrayIndex

	csObjs map[csObjKey]*CSObj
	objs   []*CSObj

	csCallSites map[csSiteKey]*CSCallSite
	csMethods   map[csMethodKey]*CSMethod

	pointers []Pointer
}

type csVarKey struct {
	ctx Context
	v   *ir.Var
}

type iFieldKey struct {
	base  *CSObj
	field *ir.Field
}

type csObjKey struct {
	hctx Context
	obj  ir.Obj
}

type csSiteKey struct {
	ctx  Context
	site *ir.Invoke
}

type csMethodKey struct {
	ctx Context
	m   *ir.Method
}

func NewCSManager() *CSManager {
	return &CSManager{
		csVars:      make(map[csVarKey]*CSVar),
		varIndex:    make(map[*ir.Var][]*CSVar),
		iFields:     make(map[iFieldKey]*InstanceField),
		sFields:     make(map[*ir.Field]*StaticField),
		aIndexes:    make(map[*CSObj]*ArrayIndex),
		csObjs:      make(map[csObjKey]*CSObj),
		csCallSites: make(map[csSiteKey]*CSCallSite),
		csMethods:   make(map[csMethodKey]*CSMethod),
	}
}

func (m *CSManager) GetCSVar(ctx Context, v *ir.Var) *CSVar {
	key := csVarKey{ctx, v}
	if p, ok := m.csVars[key]; ok {
		return p
	}

	p := &CSVar{Ctx: ctx, V: v}
	m.csVars[key] = p
	if len(m.varIndex[v]) == 0 {
		m.varList = append(m.varList, v)
	}
	m.varIndex[v] = append(m.varIndex[v], p)
	m.pointers = append(m.pointers, p)
	return p
}

func (m *CSManager) GetInstanceField(base *CSObj, f *ir.Field) *InstanceField {
	key := iFieldKey{base, f}
	if p, ok := m.iFields[key]; ok {
		return p
	}

	p := &InstanceField{Base: base, Field: f}
	m.iFields[key] = p
	m.pointers = append(m.pointers, p)
	return p
}

func (m *CSManager) GetStaticField(f *ir.Field) *StaticField {
	if p, ok := m.sFields[f]; ok {
		return p
	}

	p := &StaticField{Field: f}
	m.sFields[f] = p
	m.pointers = append(m.pointers, p)
	return p
}

func (m *CSManager) GetArrayIndex(array *CSObj) *ArrayIndex {
	if p, ok := m.aIndexes[array]; ok {
		return p
	}

	p := &ArrayIndex{Array: array}
	m.aIndexes[array] = p
	m.pointers = append(m.pointers, p)
	return p
}

func (m *CSManager) GetCSObj(hctx Context, obj ir.Obj) *CSObj {
	key := csObjKey{hctx, obj}
	if o, ok := m.csObjs[key]; ok {
		return o
	}

	o := &CSObj{HeapCtx: hctx, Obj: obj, id: len(m.objs)}
	m.csObjs[key] = o
	m.objs = append(m.objs, o)
	return o
}

func (m *CSManager) GetCSCallSite(ctx Context, site *ir.Invoke) *CSCallSite {
	key := csSiteKey{ctx, site}
	if c, ok := m.csCallSites[key]; ok {
		return c
	}

	c := &CSCallSite{Ctx: ctx, Site: site}
	m.csCallSites[key] = c
	return c
}

func (m *CSManager) GetCSMethod(ctx Context, method *ir.Method) *CSMethod {
	key := csMethodKey{ctx, method}
	if c, ok := m.csMethods[key]; ok {
		return c
	}

	c := &CSMethod{Ctx: ctx, Method: method}
	m.csMethods[key] = c
	return c
}

// CSVarsOf returns every context-sensitive variant of v seen so far.
func (m *CSManager) CSVarsOf(v *ir.Var) []*CSVar { return m.varIndex[v] }

// Vars returns the variables that have at least one context-sensitive
// variant, in first-interning order.
func (m *CSManager) Vars() []*ir.Var { return m.varList }

// Pointers returns every interned pointer node in interning order.
func (m *CSManager) Pointers() []Pointer { return m.pointers }

// ObjAt resolves a dense object id from a points-to set.
func (m *CSManager) ObjAt(id int) *CSObj { return m.objs[id] }

// Objects resolves a points-to set to objects in id order.
func (m *CSManager) Objects(pts *PointsToSet) []*CSObj {
	ids := pts.AppendTo(nil)
	objs := make([]*CSObj, len(ids))
	for i, id := range ids {
		objs[i] = m.objs[id]
	}
	return objs
}

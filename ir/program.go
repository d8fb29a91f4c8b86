package ir

import (
	"errors"
	"fmt"
)

var ErrMalformedIR = errors.New("malformed IR")

// Program is the root of an analysed program: a closed set of classes with an
// entry method. Construction happens up front; the analyses never mutate it.
type Program struct {
	classes   map[string]*Class
	classList []*Class
	entry     *Method

	prims  map[TypeKind]*Type
	arrays map[*Type]*Type
}

func NewProgram() *Program {
	return &Program{
		classes: make(map[string]*Class),
		prims:   make(map[TypeKind]*Type),
		arrays:  make(map[*Type]*Type),
	}
}

// Class returns the class with the given name, creating it on first use.
func (p *Program) Class(name string) *Class {
	if c, ok := p.classes[name]; ok {
		return c
	}

	c := &Class{Name: name, prog: p, fields: make(map[string]*Field), methods: make(map[string]*Method)}
	c.typ = &Type{Kind: ClassType, Class: c, name: name}
	p.classes[name] = c
	p.classList = append(p.classList, c)
	return c
}

func (p *Program) Classes() []*Class { return p.classList }

// LookupClass is Class without the create-on-miss behaviour.
func (p *Program) LookupClass(name string) (*Class, bool) {
	c, ok := p.classes[name]
	return c, ok
}

func (p *Program) SetEntry(m *Method) { p.entry = m }
func (p *Program) Entry() *Method     { return p.entry }

type Class struct {
	Name  string
	Super *Class

	prog    *Program
	typ     *Type
	fields  map[string]*Field
	methods map[string]*Method
}

func (c *Class) String() string { return c.Name }
func (c *Class) Type() *Type    { return c.typ }

func (c *Class) SetSuper(s *Class) *Class {
	c.Super = s
	return c
}

// SubclassOf reports whether c equals o or inherits from it.
func (c *Class) SubclassOf(o *Class) bool {
	for x := c; x != nil; x = x.Super {
		if x == o {
			return true
		}
	}
	return false
}

func (c *Class) NewField(name string, t *Type, static bool) *Field {
	if _, ok := c.fields[name]; ok {
		panic(fmt.Errorf("duplicate field %s.%s", c.Name, name))
	}
	f := &Field{Class: c, Name: name, Type: t, Static: static}
	c.fields[name] = f
	return f
}

func (c *Class) Field(name string) *Field {
	for x := c; x != nil; x = x.Super {
		if f, ok := x.fields[name]; ok {
			return f
		}
	}
	return nil
}

func (c *Class) NewMethod(name string, static bool) *Method {
	if _, ok := c.methods[name]; ok {
		panic(fmt.Errorf("duplicate method %s.%s", c.Name, name))
	}

	m := &Method{Class: c, Name: name, Static: static}
	if !static {
		m.This = m.NewVar("this", c.typ)
	}
	c.methods[name] = m
	return m
}

func (c *Class) Method(name string) *Method { return c.methods[name] }

// dispatch resolves name against the class hierarchy, starting at c.
func (c *Class) dispatch(name string) *Method {
	for x := c; x != nil; x = x.Super {
		if m, ok := x.methods[name]; ok {
			return m
		}
	}
	return nil
}

type Field struct {
	Class  *Class
	Name   string
	Type   *Type
	Static bool
}

func (f *Field) String() string { return fmt.Sprintf("<%s: %s %s>", f.Class.Name, f.Type, f.Name) }

// MethodRef is the declared target of an invoke, resolved at dispatch time.
type MethodRef struct {
	Class *Class
	Name  string
}

func (r MethodRef) String() string { return fmt.Sprintf("%s.%s", r.Class.Name, r.Name) }

// Resolve looks the reference up in the declaring class hierarchy.
func (r MethodRef) Resolve() *Method { return r.Class.dispatch(r.Name) }

type Method struct {
	Class  *Class
	Name   string
	Static bool
	Ret    *Type // nil for void

	This       *Var
	Params     []*Var
	Vars       []*Var
	Stmts      []Stmt
	ReturnVars []*Var

	finished bool
}

func (m *Method) String() string { return fmt.Sprintf("<%s: %s>", m.Class.Name, m.Name) }

// Finished reports whether the method's body has been finished by its Body
// builder. Body-less methods (abstract, external) are never finished.
func (m *Method) Finished() bool { return m.finished }

func (m *Method) Ref() MethodRef { return MethodRef{m.Class, m.Name} }

func (m *Method) SetRet(t *Type) *Method {
	m.Ret = t
	return m
}

func (m *Method) NewVar(name string, t *Type) *Var {
	v := &Var{Name: name, Type: t, Method: m}
	m.Vars = append(m.Vars, v)
	return v
}

func (m *Method) AddParam(name string, t *Type) *Var {
	if m.finished {
		panic(fmt.Errorf("%v already finished", m))
	}
	v := m.NewVar(name, t)
	m.Params = append(m.Params, v)
	return v
}

// Var is a local variable (or parameter, or the receiver) of a method. A var
// records the statements it appears in as a heap base or receiver; the
// pointer-analysis main loop visits those when the var's points-to set grows.
type Var struct {
	Name   string
	Type   *Type
	Method *Method

	storeFields []*StoreField
	loadFields  []*LoadField
	storeArrays []*StoreArray
	loadArrays  []*LoadArray
	invokes     []*Invoke
}

func (v *Var) String() string { return v.Name }

func (v *Var) StoreFields() []*StoreField { return v.storeFields }
func (v *Var) LoadFields() []*LoadField   { return v.loadFields }
func (v *Var) StoreArrays() []*StoreArray { return v.storeArrays }
func (v *Var) LoadArrays() []*LoadArray   { return v.loadArrays }
func (v *Var) Invokes() []*Invoke         { return v.invokes }

// ResolveCallee performs virtual dispatch for a call site. recvType is the
// runtime type of the receiver object (nil for static and special calls).
// The boolean result is false when no implementation exists.
func ResolveCallee(recvType *Type, call *Invoke) (*Method, bool) {
	switch call.Kind {
	case CallStatic, CallSpecial:
		m := call.Ref.Resolve()
		return m, m != nil
	default:
		if recvType == nil || recvType.Class == nil {
			return nil, false
		}
		m := recvType.Class.dispatch(call.Ref.Name)
		return m, m != nil
	}
}

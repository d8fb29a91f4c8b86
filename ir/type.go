package ir

import "fmt"

// TypeKind discriminates the primitive, class and array types of the IR.
type TypeKind int

const (
	Boolean TypeKind = iota
	Byte
	Short
	Char
	IntKind
	Long
	Float
	Double
	ClassType
	ArrayType
)

// Type is an interned type. Primitive and array types are interned by the
// Program, class types are created together with their Class.
type Type struct {
	Kind  TypeKind
	Class *Class // set iff Kind == ClassType
	Elem  *Type  // set iff Kind == ArrayType
	name  string
}

func (t *Type) String() string { return t.name }

// IsIntLike reports whether variables of this type are tracked by the
// constant-propagation lattice (8/16/32-bit integral and boolean).
func (t *Type) IsIntLike() bool {
	switch t.Kind {
	case Boolean, Byte, Short, Char, IntKind:
		return true
	}
	return false
}

func (t *Type) IsReference() bool {
	return t.Kind == ClassType || t.Kind == ArrayType
}

var primNames = map[TypeKind]string{
	Boolean: "boolean",
	Byte:    "byte",
	Short:   "short",
	Char:    "char",
	IntKind: "int",
	Long:    "long",
	Float:   "float",
	Double:  "double",
}

func (p *Program) Type(kind TypeKind) *Type {
	if kind == ClassType || kind == ArrayType {
		panic(fmt.Errorf("Type does not intern %v; use Class or ArrayOf", kind))
	}

	if t, ok := p.prims[kind]; ok {
		return t
	}
	t := &Type{Kind: kind, name: primNames[kind]}
	p.prims[kind] = t
	return t
}

func (p *Program) ArrayOf(elem *Type) *Type {
	if t, ok := p.arrays[elem]; ok {
		return t
	}
	t := &Type{Kind: ArrayType, Elem: elem, name: elem.name + "[]"}
	p.arrays[elem] = t
	return t
}

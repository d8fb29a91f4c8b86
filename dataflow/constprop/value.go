// Package constprop implements constant propagation for 32-bit integer
// values: the three-point lattice, the intraprocedural analysis, and the
// interprocedural analysis with alias-aware heap transfer.
package constprop

import "fmt"

type valueKind int

const (
	undef valueKind = iota
	constant
	nac
)

// Value is a point of the lattice UNDEF ⊏ CONST(c) ⊏ NAC.
type Value struct {
	kind valueKind
	c    int32
}

func Undef() Value { return Value{} }

func NAC() Value { return Value{kind: nac} }

func MakeConstant(c int32) Value { return Value{kind: constant, c: c} }

func (v Value) IsUndef() bool    { return v.kind == undef }
func (v Value) IsConstant() bool { return v.kind == constant }
func (v Value) IsNAC() bool      { return v.kind == nac }

// Constant returns the constant. Panics unless IsConstant.
func (v Value) Constant() int32 {
	if v.kind != constant {
		panic(fmt.Errorf("%v is not a constant", v))
	}
	return v.c
}

func (v Value) String() string {
	switch v.kind {
	case undef:
		return "UNDEF"
	case nac:
		return "NAC"
	default:
		return fmt.Sprint(v.c)
	}
}

// MeetValue is the lattice meet, shared by the intra- and interprocedural
// analyses. Two distinct constants meet to NAC.
func MeetValue(v1, v2 Value) Value {
	switch {
	case v1.IsUndef():
		return v2
	case v2.IsUndef():
		return v1
	case v1.IsNAC() || v2.IsNAC():
		return NAC()
	case v1 == v2:
		return v1
	default:
		return NAC()
	}
}

package constprop

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kvistgaard/sift/ir"
)

// CPFact maps variables to lattice values. Absent variables are implicitly
// UNDEF; storing UNDEF removes the entry, so the representation is canonical
// and equality is map equality.
type CPFact struct {
	m map[*ir.Var]Value
}

func NewCPFact() *CPFact { return &CPFact{m: make(map[*ir.Var]Value)} }

func (f *CPFact) Get(v *ir.Var) Value { return f.m[v] }

// Update sets f[v] = val, reporting whether the fact changed.
func (f *CPFact) Update(v *ir.Var, val Value) bool {
	old, ok := f.m[v]
	if val.IsUndef() {
		if !ok {
			return false
		}
		delete(f.m, v)
		return true
	}
	if ok && old == val {
		return false
	}
	f.m[v] = val
	return true
}

func (f *CPFact) Copy() *CPFact {
	c := NewCPFact()
	for v, val := range f.m {
		c.m[v] = val
	}
	return c
}

// CopyFrom makes f equal to other, reporting whether f changed.
func (f *CPFact) CopyFrom(other *CPFact) bool {
	if f.equals(other) {
		return false
	}
	f.m = make(map[*ir.Var]Value, len(other.m))
	for v, val := range other.m {
		f.m[v] = val
	}
	return true
}

func (f *CPFact) equals(other *CPFact) bool {
	if len(f.m) != len(other.m) {
		return false
	}
	for v, val := range f.m {
		if other.m[v] != val {
			return false
		}
	}
	return true
}

// vars returns the bound variables (no particular order).
func (f *CPFact) vars() map[*ir.Var]Value { return f.m }

func (f *CPFact) String() string {
	entries := make([]string, 0, len(f.m))
	for v, val := range f.m {
		entries = append(entries, fmt.Sprintf("%s=%v", v.Name, val))
	}
	sort.Strings(entries)
	return "{" + strings.Join(entries, ", ") + "}"
}

// Package livevars implements backward live-variable analysis, consumed by
// the dead-code detector.
package livevars

import (
	"sort"
	"strings"

	"github.com/kvistgaard/sift/ir"
)

// SetFact is a set of variables.
type SetFact struct {
	vars map[*ir.Var]struct{}
}

func NewSetFact() *SetFact { return &SetFact{vars: make(map[*ir.Var]struct{})} }

func (f *SetFact) Has(v *ir.Var) bool {
	_, ok := f.vars[v]
	return ok
}

func (f *SetFact) Add(v *ir.Var) bool {
	if f.Has(v) {
		return false
	}
	f.vars[v] = struct{}{}
	return true
}

func (f *SetFact) Remove(v *ir.Var) bool {
	if !f.Has(v) {
		return false
	}
	delete(f.vars, v)
	return true
}

// Union adds all of other, reporting whether f changed.
func (f *SetFact) Union(other *SetFact) bool {
	changed := false
	for v := range other.vars {
		if f.Add(v) {
			changed = true
		}
	}
	return changed
}

func (f *SetFact) Copy() *SetFact {
	c := NewSetFact()
	c.Union(f)
	return c
}

func (f *SetFact) Equals(other *SetFact) bool {
	if len(f.vars) != len(other.vars) {
		return false
	}
	for v := range f.vars {
		if !other.Has(v) {
			return false
		}
	}
	return true
}

// replaceWith makes f equal to other, reporting whether f changed.
func (f *SetFact) replaceWith(other *SetFact) bool {
	if f.Equals(other) {
		return false
	}
	f.vars = make(map[*ir.Var]struct{}, len(other.vars))
	for v := range other.vars {
		f.vars[v] = struct{}{}
	}
	return true
}

func (f *SetFact) String() string {
	names := make([]string, 0, len(f.vars))
	for v := range f.vars {
		names = append(names, v.Name)
	}
	sort.Strings(names)
	return "{" + strings.Join(names, ", ") + "}"
}

// Analysis is the live-variable dataflow problem:
// IN[s] = use(s) ∪ (OUT[s] ∖ def(s)).
type Analysis struct{}

func (Analysis) IsForward() bool { return false }

func (Analysis) NewBoundaryFact(*ir.CFG) *SetFact { return NewSetFact() }

func (Analysis) NewInitialFact() *SetFact { return NewSetFact() }

func (Analysis) MeetInto(fact, target *SetFact) { target.Union(fact) }

// TransferNode receives (OUT, IN) from the backward solver.
func (Analysis) TransferNode(s ir.Stmt, out, in *SetFact) bool {
	live := out.Copy()
	if d := ir.DefOf(s); d != nil {
		live.Remove(d)
	}
	for _, u := range ir.UsesOf(s) {
		live.Add(u)
	}
	return in.replaceWith(live)
}

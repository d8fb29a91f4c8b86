package constprop

import "github.com/kvistgaard/sift/ir"

// ConstantPropagation is the intraprocedural analysis: a forward problem
// over CPFacts whose node transfer evaluates the defining expression of
// integer-typed variables. Heap loads and call results are NAC here; the
// interprocedural variant refines both.
type ConstantPropagation struct{}

func (ConstantPropagation) IsForward() bool { return true }

// NewBoundaryFact binds the method's integer parameters to NAC: parameter
// values are unknown at the boundary.
func (ConstantPropagation) NewBoundaryFact(cfg *ir.CFG) *CPFact {
	fact := NewCPFact()
	for _, p := range cfg.Method().Params {
		if CanHoldInt(p) {
			fact.Update(p, NAC())
		}
	}
	return fact
}

func (ConstantPropagation) NewInitialFact() *CPFact { return NewCPFact() }

func (ConstantPropagation) MeetInto(fact, target *CPFact) {
	for v, val := range fact.vars() {
		target.Update(v, MeetValue(val, target.Get(v)))
	}
}

func (ConstantPropagation) TransferNode(s ir.Stmt, in, out *CPFact) bool {
	return transferDef(s, in, out)
}

// transferDef is the shared node transfer: kill-and-gen for the defined
// variable when it is integer-typed, identity otherwise.
func transferDef(s ir.Stmt, in, out *CPFact) bool {
	d := ir.DefOf(s)
	if d == nil || !CanHoldInt(d) {
		return out.CopyFrom(in)
	}

	val := NAC()
	switch s := s.(type) {
	case *ir.Copy:
		val = Evaluate(s.RHS, in)
	case *ir.Assign:
		val = Evaluate(s.RHS, in)
	}

	ic := in.Copy()
	ic.Update(d, val)
	return out.CopyFrom(ic)
}

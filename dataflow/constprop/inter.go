package constprop

import (
	log "github.com/sirupsen/logrus"

	"github.com/kvistgaard/sift/dataflow"
	"github.com/kvistgaard/sift/ir"
	"github.com/kvistgaard/sift/slices"
)

// PointerResult is the slice of a pointer-analysis result this analysis
// consumes to derive aliasing. pta.Result satisfies it.
type PointerResult interface {
	Vars() []*ir.Var
	PointsToSet(v *ir.Var) []ir.Obj
}

// InterConstantPropagation is the interprocedural analysis: the
// intraprocedural node transfer extended with call/return edge transfers and
// with heap-cell reasoning over the alias relation derived from the pointer
// analysis. May-aliasing is resolved pessimistically: a load meets the
// values of every aliased store, so false positives in the alias relation
// only lose precision, never soundness.
type InterConstantPropagation struct {
	solver *dataflow.InterSolver[*CPFact]

	aliases      map[*ir.Var][]*ir.Var
	staticStores map[*ir.Field][]*ir.StoreField
	staticLoads  map[*ir.Field][]*ir.LoadField
}

// NewInterConstantPropagation derives the alias relation and the
// static-field indexes. Wire the analysis to its solver with SetSolver
// before solving; SolveInter does both.
func NewInterConstantPropagation(pts PointerResult, icfg *ir.ICFG) *InterConstantPropagation {
	a := &InterConstantPropagation{
		aliases:      make(map[*ir.Var][]*ir.Var),
		staticStores: make(map[*ir.Field][]*ir.StoreField),
		staticLoads:  make(map[*ir.Field][]*ir.LoadField),
	}

	objVars := make(map[ir.Obj][]*ir.Var)
	for _, v := range pts.Vars() {
		for _, o := range pts.PointsToSet(v) {
			objVars[o] = append(objVars[o], v)
		}
	}
	for _, v := range pts.Vars() {
		var set []*ir.Var
		for _, o := range pts.PointsToSet(v) {
			for _, w := range objVars[o] {
				if !slices.Contains(set, w) {
					set = append(set, w)
				}
			}
		}
		a.aliases[v] = set
	}

	for _, n := range icfg.Nodes() {
		switch n := n.(type) {
		case *ir.StoreField:
			if n.IsStatic() {
				a.staticStores[n.Field] = append(a.staticStores[n.Field], n)
			}
		case *ir.LoadField:
			if n.IsStatic() {
				a.staticLoads[n.Field] = append(a.staticLoads[n.Field], n)
			}
		}
	}

	log.Debugf("constprop: %d aliased vars, %d static-store fields",
		len(a.aliases), len(a.staticStores))

	return a
}

func (a *InterConstantPropagation) SetSolver(s *dataflow.InterSolver[*CPFact]) { a.solver = s }

// SolveInter runs interprocedural constant propagation over the ICFG using
// aliasing from the given pointer-analysis result.
func SolveInter(pts PointerResult, icfg *ir.ICFG) *dataflow.Result[*CPFact] {
	a := NewInterConstantPropagation(pts, icfg)
	s := dataflow.NewInterSolver[*CPFact](a, icfg)
	a.SetSolver(s)
	return s.Solve()
}

func (a *InterConstantPropagation) NewBoundaryFact(cfg *ir.CFG) *CPFact {
	return ConstantPropagation{}.NewBoundaryFact(cfg)
}

func (a *InterConstantPropagation) NewInitialFact() *CPFact { return NewCPFact() }

func (a *InterConstantPropagation) MeetInto(fact, target *CPFact) {
	ConstantPropagation{}.MeetInto(fact, target)
}

// TransferCallNode is the identity: the call-to-return edge kills the result
// variable, and the return edge supplies its value.
func (a *InterConstantPropagation) TransferCallNode(s ir.Stmt, in, out *CPFact) bool {
	return out.CopyFrom(in)
}

func (a *InterConstantPropagation) TransferNonCallNode(s ir.Stmt, in, out *CPFact) bool {
	switch s := s.(type) {
	case *ir.StoreField:
		if CanHoldInt(s.RHS) {
			if s.IsStatic() {
				for _, load := range a.staticLoads[s.Field] {
					a.solver.AddNode(load)
				}
			} else {
				for _, w := range a.aliases[s.Base] {
					for _, load := range w.LoadFields() {
						if load.Field == s.Field {
							a.solver.AddNode(load)
						}
					}
				}
			}
		}

	case *ir.LoadField:
		if CanHoldInt(s.LHS) {
			val := Undef()
			if s.IsStatic() {
				for _, store := range a.staticStores[s.Field] {
					val = MeetValue(val, a.solver.InFact(store).Get(store.RHS))
				}
			} else {
				for _, w := range a.aliases[s.Base] {
					for _, store := range w.StoreFields() {
						if store.Field == s.Field {
							val = MeetValue(val, a.solver.InFact(store).Get(store.RHS))
						}
					}
				}
			}

			ic := in.Copy()
			ic.Update(s.LHS, val)
			return out.CopyFrom(ic)
		}

	case *ir.StoreArray:
		if CanHoldInt(s.RHS) {
			for _, w := range a.aliases[s.Base] {
				for _, load := range w.LoadArrays() {
					a.solver.AddNode(load)
				}
			}
		}

	case *ir.LoadArray:
		if CanHoldInt(s.LHS) {
			val := Undef()
			for _, w := range a.aliases[s.Base] {
				for _, store := range w.StoreArrays() {
					if MatchIndex(in.Get(s.Idx), a.solver.InFact(store).Get(store.Idx)) {
						val = MeetValue(val, a.solver.InFact(store).Get(store.RHS))
					}
				}
			}

			ic := in.Copy()
			ic.Update(s.LHS, val)
			return out.CopyFrom(ic)
		}
	}

	return transferDef(s, in, out)
}

// MatchIndex is the may-match predicate for array index pairs: UNDEF indices
// are unreachable, NAC may equal anything, constants must agree.
func MatchIndex(i, j Value) bool {
	if i.IsUndef() || j.IsUndef() {
		return false
	}
	if i.IsNAC() || j.IsNAC() {
		return true
	}
	return i.Constant() == j.Constant()
}

func (a *InterConstantPropagation) TransferEdge(e *ir.Edge, out *CPFact) *CPFact {
	switch e.Kind {
	case ir.EdgeCallToReturn:
		// Kill the call result; its value arrives through the return edge.
		if e.CallSite.LHS == nil {
			return out
		}
		oc := out.Copy()
		oc.Update(e.CallSite.LHS, Undef())
		return oc

	case ir.EdgeCall:
		result := NewCPFact()
		callee := e.Callee
		for i, p := range callee.Params {
			if CanHoldInt(p) {
				result.Update(p, out.Get(e.CallSite.Args[i]))
			}
		}
		return result

	case ir.EdgeReturn:
		result := NewCPFact()
		lhs := e.CallSite.LHS
		if lhs == nil || !CanHoldInt(lhs) {
			return result
		}
		for _, rv := range e.Callee.ReturnVars {
			result.Update(lhs, MeetValue(result.Get(lhs), out.Get(rv)))
		}
		return result

	default:
		return out
	}
}

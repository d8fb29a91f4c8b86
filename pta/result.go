package pta

import (
	"github.com/kvistgaard/sift/ir"
	"github.com/kvistgaard/sift/slices"
)

// Result is the immutable outcome of a solve: the final pointer flow graph,
// call graph and per-pointer points-to sets. Safe for concurrent reads.
type Result struct {
	prog     *ir.Program
	man      *CSManager
	pfg      *PointerFlowGraph
	cg       *CSCallGraph
	emptyCtx Context

	allInvokes []*ir.Invoke
}

func (r *Result) Program() *ir.Program { return r.prog }

func (r *Result) Manager() *CSManager { return r.man }

func (r *Result) CallGraph() *CSCallGraph { return r.cg }

func (r *Result) EmptyContext() Context { return r.emptyCtx }

func (r *Result) SuccsOf(p Pointer) []Pointer { return r.pfg.SuccsOf(p) }

// PointsTo resolves pts(p) to objects, in interning order.
func (r *Result) PointsTo(p Pointer) []*CSObj { return r.man.Objects(p.PointsTo()) }

// Vars returns every variable the analysis touched, in discovery order.
func (r *Result) Vars() []*ir.Var { return r.man.Vars() }

func (r *Result) CSVarsOf(v *ir.Var) []*CSVar { return r.man.CSVarsOf(v) }

// PointsToSet is the context-collapsed points-to set of a variable: the
// union over all contexts, deduplicated by underlying object.
func (r *Result) PointsToSet(v *ir.Var) []ir.Obj {
	var objs []ir.Obj
	merged := new(PointsToSet)
	for _, cv := range r.man.CSVarsOf(v) {
		merged.UnionWith(cv.PointsTo())
	}
	for _, o := range r.man.Objects(merged) {
		if !slices.Contains(objs, o.Obj) {
			objs = append(objs, o.Obj)
		}
	}
	return objs
}

func (r *Result) ReachableMethods() []*ir.Method { return r.cg.ReachableMethods() }

// AllInvokes returns the invoke statements of all reachable methods, in
// method-discovery and statement order. Memoized on first use.
func (r *Result) AllInvokes() []*ir.Invoke {
	if r.allInvokes == nil {
		for _, m := range r.cg.ReachableMethods() {
			for _, s := range m.Stmts {
				if call, ok := s.(*ir.Invoke); ok {
					r.allInvokes = append(r.allInvokes, call)
				}
			}
		}
	}
	return r.allInvokes
}

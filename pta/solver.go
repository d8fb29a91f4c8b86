package pta

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/kvistgaard/sift/ir"
)

// Solver computes a whole-program points-to solution as a fixed point over
// the pointer flow graph, constructing the call graph on the fly. The
// context selector decides the sensitivity: plug in ContextInsensitive for
// the classic Andersen-style analysis or NewKCallSite(k) for k-CFA.
//
// A solver is single-shot: create, Solve, read the result, drop.
type Solver struct {
	prog     *ir.Program
	heap     HeapModel
	selector ContextSelector

	man  *CSManager
	pfg  *PointerFlowGraph
	cg   *CSCallGraph
	work worklist

	err error
}

func NewSolver(prog *ir.Program, heap HeapModel, selector ContextSelector) *Solver {
	return &Solver{
		prog:     prog,
		heap:     heap,
		selector: selector,
		man:      NewCSManager(),
		pfg:      NewPointerFlowGraph(),
		cg:       NewCSCallGraph(),
	}
}

// Solve runs the analysis to its fixed point. It returns an error only for
// malformed IR; analysis imprecision is never an error.
func (s *Solver) Solve() (*Result, error) {
	entry := s.prog.Entry()
	if entry == nil {
		return nil, fmt.Errorf("%w: program has no entry method", ir.ErrMalformedIR)
	}

	csEntry := s.man.GetCSMethod(s.selector.EmptyContext(), entry)
	s.cg.SetEntry(csEntry)
	s.addReachable(csEntry)

	for s.err == nil {
		e, ok := s.work.poll()
		if !ok {
			break
		}

		n := e.p
		delta := n.PointsTo().DiffFrom(e.pts)
		if delta.Empty() {
			continue
		}
		s.propagate(n, delta)

		if v, ok := n.(*CSVar); ok {
			for _, id := range delta.AppendTo(nil) {
				o := s.man.ObjAt(id)

				for _, st := range v.V.StoreFields() {
					s.addPFGEdge(
						s.man.GetCSVar(v.Ctx, st.RHS),
						s.man.GetInstanceField(o, st.Field))
				}
				for _, ld := range v.V.LoadFields() {
					s.addPFGEdge(
						s.man.GetInstanceField(o, ld.Field),
						s.man.GetCSVar(v.Ctx, ld.LHS))
				}
				for _, st := range v.V.StoreArrays() {
					s.addPFGEdge(
						s.man.GetCSVar(v.Ctx, st.RHS),
						s.man.GetArrayIndex(o))
				}
				for _, ld := range v.V.LoadArrays() {
					s.addPFGEdge(
						s.man.GetArrayIndex(o),
						s.man.GetCSVar(v.Ctx, ld.LHS))
				}

				s.processCall(v, o)
			}
		}
	}

	if s.err != nil {
		return nil, s.err
	}

	log.Debugf("pta: fixed point, %d reachable methods, %d pfg edges",
		len(s.cg.Reachable()), s.pfg.NumEdges())

	return &Result{
		prog:     s.prog,
		man:      s.man,
		pfg:      s.pfg,
		cg:       s.cg,
		emptyCtx: s.selector.EmptyContext(),
	}, nil
}

// propagate unions delta into pts(n) and forwards it to the PFG successors.
func (s *Solver) propagate(n Pointer, delta *PointsToSet) {
	n.PointsTo().UnionWith(delta)
	for _, t := range s.pfg.SuccsOf(n) {
		s.work.add(t, delta)
	}
}

// addPFGEdge inserts s -> t and seeds the target with the source's current
// points-to set when the edge is new.
func (s *Solver) addPFGEdge(src, dst Pointer) {
	if !s.pfg.AddEdge(src, dst) {
		return
	}
	if !src.PointsTo().Empty() {
		s.work.add(dst, src.PointsTo())
	}
}

// addReachable marks a context-sensitive method reachable and processes the
// statements that do not depend on receiver points-to information.
// Idempotent.
func (s *Solver) addReachable(csm *CSMethod) {
	if !s.cg.AddReachable(csm) {
		return
	}

	m, ctx := csm.Method, csm.Ctx
	log.Debugf("pta: reachable %v", csm)

	// Body-less methods are legal (abstract or external), but a body that
	// was never finished has no variable indexes to drive the main loop.
	if len(m.Stmts) > 0 && !m.Finished() {
		s.fail(fmt.Errorf("%w: %v has an unfinished body", ir.ErrMalformedIR, m))
		return
	}

	for _, stmt := range m.Stmts {
		switch stmt := stmt.(type) {
		case *ir.New:
			obj := s.heap.GetObj(stmt)
			hctx := s.selector.SelectHeapContext(csm, obj)
			o := s.man.GetCSObj(hctx, obj)
			s.work.add(s.man.GetCSVar(ctx, stmt.LHS), NewPointsToSet(o))

		case *ir.Copy:
			s.addPFGEdge(
				s.man.GetCSVar(ctx, stmt.RHS),
				s.man.GetCSVar(ctx, stmt.LHS))

		case *ir.StoreField:
			if stmt.IsStatic() {
				s.addPFGEdge(
					s.man.GetCSVar(ctx, stmt.RHS),
					s.man.GetStaticField(stmt.Field))
			}

		case *ir.LoadField:
			if stmt.IsStatic() {
				s.addPFGEdge(
					s.man.GetStaticField(stmt.Field),
					s.man.GetCSVar(ctx, stmt.LHS))
			}

		case *ir.Invoke:
			if !stmt.IsStatic() {
				continue
			}
			callee, ok := ir.ResolveCallee(nil, stmt)
			if !ok {
				continue
			}

			csCallSite := s.man.GetCSCallSite(ctx, stmt)
			calleeCtx := s.selector.SelectContext(csCallSite, callee)
			csCallee := s.man.GetCSMethod(calleeCtx, callee)
			s.addReachable(csCallee)
			if s.cg.AddEdge(&CallEdge{Kind: stmt.Kind, CallSite: csCallSite, Callee: csCallee}) {
				s.addCallEdges(csCallSite, csCallee)
			}
		}
	}
}

// processCall dispatches every instance call on v for the newly discovered
// receiver object o.
func (s *Solver) processCall(v *CSVar, o *CSObj) {
	for _, call := range v.V.Invokes() {
		if call.IsStatic() {
			continue
		}

		callee, ok := ir.ResolveCallee(o.Obj.Type(), call)
		if !ok {
			// No implementation for this receiver type; skip silently.
			continue
		}

		csCallSite := s.man.GetCSCallSite(v.Ctx, call)
		calleeCtx := s.selector.SelectContextObj(csCallSite, o, callee)
		csCallee := s.man.GetCSMethod(calleeCtx, callee)

		if callee.This == nil {
			s.fail(fmt.Errorf("%w: instance call %v resolved to static %v", ir.ErrMalformedIR, call, callee))
			return
		}
		s.work.add(s.man.GetCSVar(calleeCtx, callee.This), NewPointsToSet(o))
		s.addReachable(csCallee)

		if s.cg.AddEdge(&CallEdge{Kind: call.Kind, CallSite: csCallSite, Callee: csCallee}) {
			s.addCallEdges(csCallSite, csCallee)
		}
	}
}

// addCallEdges wires arguments to parameters and return variables to the
// call result. Invoked exactly once per new call-graph edge.
func (s *Solver) addCallEdges(cs *CSCallSite, callee *CSMethod) {
	call, m := cs.Site, callee.Method
	if len(call.Args) != len(m.Params) {
		s.fail(fmt.Errorf("%w: %v passes %d args to %v (%d params)",
			ir.ErrMalformedIR, call, len(call.Args), m, len(m.Params)))
		return
	}

	for i, arg := range call.Args {
		s.addPFGEdge(
			s.man.GetCSVar(cs.Ctx, arg),
			s.man.GetCSVar(callee.Ctx, m.Params[i]))
	}
	if call.LHS != nil {
		for _, ret := range m.ReturnVars {
			s.addPFGEdge(
				s.man.GetCSVar(callee.Ctx, ret),
				s.man.GetCSVar(cs.Ctx, call.LHS))
		}
	}
}

func (s *Solver) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

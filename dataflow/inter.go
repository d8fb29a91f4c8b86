package dataflow

import (
	"github.com/kvistgaard/sift/internal/queue"
	"github.com/kvistgaard/sift/ir"
)

// InterAnalysis is a forward interprocedural dataflow problem over an ICFG.
// Node transfers are split by call sites; edge transfers see every ICFG edge
// kind (normal, call, return, call-to-return).
type InterAnalysis[F any] interface {
	NewBoundaryFact(cfg *ir.CFG) F
	NewInitialFact() F
	MeetInto(fact, target F)
	TransferCallNode(s ir.Stmt, in, out F) bool
	TransferNonCallNode(s ir.Stmt, in, out F) bool
	TransferEdge(e *ir.Edge, out F) F
}

// InterSolver iterates an InterAnalysis to a fixed point. Analyses that need
// to re-enqueue nodes mid-transfer (the alias-aware heap rules of constant
// propagation) hold the solver and call AddNode / InFact.
type InterSolver[F any] struct {
	a    InterAnalysis[F]
	icfg *ir.ICFG
	res  *Result[F]
	work queue.Queue[ir.Stmt]
}

func NewInterSolver[F any](a InterAnalysis[F], icfg *ir.ICFG) *InterSolver[F] {
	return &InterSolver[F]{a: a, icfg: icfg, res: newResult[F]()}
}

// AddNode re-enqueues a node for another transfer pass.
func (s *InterSolver[F]) AddNode(n ir.Stmt) { s.work.Push(n) }

// InFact reads the current IN fact of any ICFG node.
func (s *InterSolver[F]) InFact(n ir.Stmt) F { return s.res.in[n] }

func (s *InterSolver[F]) ICFG() *ir.ICFG { return s.icfg }

func (s *InterSolver[F]) Solve() *Result[F] {
	entry := s.icfg.Entry()
	for _, n := range s.icfg.Nodes() {
		s.res.in[n] = s.a.NewInitialFact()
		s.res.out[n] = s.a.NewInitialFact()
	}
	s.res.out[entry] = s.a.NewBoundaryFact(s.icfg.CFGOf(s.icfg.ContainingMethodOf(entry)))

	for _, n := range s.icfg.Nodes() {
		if n != entry {
			s.work.Push(n)
		}
	}

	for !s.work.Empty() {
		n := s.work.Pop()

		in := s.a.NewInitialFact()
		for _, e := range s.icfg.InEdgesOf(n) {
			s.a.MeetInto(s.a.TransferEdge(e, s.res.out[e.Src]), in)
		}
		s.res.in[n] = in

		var changed bool
		if _, isCall := n.(*ir.Invoke); isCall {
			changed = s.a.TransferCallNode(n, in, s.res.out[n])
		} else {
			changed = s.a.TransferNonCallNode(n, in, s.res.out[n])
		}

		if changed {
			for _, e := range s.icfg.OutEdgesOf(n) {
				s.work.Push(e.Dst)
			}
		}
	}

	return s.res
}

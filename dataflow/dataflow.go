// Package dataflow provides the worklist solvers the concrete analyses are
// instantiated on: an intraprocedural solver over a CFG and an
// interprocedural solver over an ICFG with per-edge transfers.
package dataflow

import "github.com/kvistgaard/sift/ir"

// Analysis is an intraprocedural dataflow problem over facts of type F.
// Facts are mutable; MeetInto and TransferNode update their target in place.
type Analysis[F any] interface {
	IsForward() bool
	NewBoundaryFact(cfg *ir.CFG) F
	NewInitialFact() F
	// MeetInto meets fact into target.
	MeetInto(fact, target F)
	// TransferNode applies the node transfer, reporting whether out changed.
	// For backward analyses the solver passes (OUT, IN).
	TransferNode(s ir.Stmt, in, out F) bool
}

// Result stores the IN/OUT facts of every node after solving.
type Result[F any] struct {
	in, out map[ir.Stmt]F
}

func newResult[F any]() *Result[F] {
	return &Result[F]{in: make(map[ir.Stmt]F), out: make(map[ir.Stmt]F)}
}

func (r *Result[F]) InFact(s ir.Stmt) F  { return r.in[s] }
func (r *Result[F]) OutFact(s ir.Stmt) F { return r.out[s] }

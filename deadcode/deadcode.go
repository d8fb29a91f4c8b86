// Package deadcode detects dead statements: code unreachable under
// constant-propagation branch pruning and useless assignments to dead
// variables.
package deadcode

import (
	"sort"

	"golang.org/x/tools/container/intsets"

	"github.com/kvistgaard/sift/dataflow"
	"github.com/kvistgaard/sift/dataflow/constprop"
	"github.com/kvistgaard/sift/dataflow/livevars"
	"github.com/kvistgaard/sift/internal/queue"
	"github.com/kvistgaard/sift/ir"
)

// Detect walks the CFG from its entry, following only the feasible branch of
// statically decided conditionals, and returns the dead statements sorted by
// index: assignments whose target is not live and whose right-hand side is
// side-effect free, plus everything the walk never reaches.
func Detect(
	cfg *ir.CFG,
	constants *dataflow.Result[*constprop.CPFact],
	live *dataflow.Result[*livevars.SetFact],
) []ir.Stmt {
	var dead []ir.Stmt

	// Statement indexes are offset by one so the synthetic entry (index -1)
	// fits the sparse set.
	var visited intsets.Sparse
	visit := func(s ir.Stmt) bool { return visited.Insert(s.Index() + 1) }
	visit(cfg.Entry())
	visit(cfg.Exit())

	var work queue.Queue[ir.Stmt]
	work.Push(cfg.Entry())

	for !work.Empty() {
		s := work.Pop()

		switch s := s.(type) {
		case *ir.If:
			val := constprop.Evaluate(s.Cond, constants.InFact(s))
			if val.IsConstant() {
				kind := ir.EdgeIfFalse
				if val.Constant() == 1 {
					kind = ir.EdgeIfTrue
				}
				for _, e := range cfg.OutEdgesOf(s) {
					if e.Kind == kind {
						if visit(e.Dst) {
							work.Push(e.Dst)
						}
						break
					}
				}
				continue
			}

		case *ir.Switch:
			val := constants.InFact(s).Get(s.V)
			if val.IsConstant() {
				target := s.Default
				for _, e := range cfg.OutEdgesOf(s) {
					if e.Kind == ir.EdgeSwitchCase && e.CaseValue == val.Constant() {
						target = e.Dst
						break
					}
				}
				if visit(target) {
					work.Push(target)
				}
				continue
			}

		case *ir.Copy:
			if !live.OutFact(s).Has(s.LHS) {
				dead = append(dead, s)
			}

		case *ir.Assign:
			if !live.OutFact(s).Has(s.LHS) && sideEffectFree(s.RHS) {
				dead = append(dead, s)
			}
		}

		for _, t := range cfg.SuccsOf(s) {
			if visit(t) {
				work.Push(t)
			}
		}
	}

	for _, s := range cfg.Nodes() {
		if !visited.Has(s.Index() + 1) {
			dead = append(dead, s)
		}
	}

	sort.Slice(dead, func(i, j int) bool { return dead[i].Index() < dead[j].Index() })
	return dead
}

// sideEffectFree reports whether evaluating the expression cannot have an
// observable effect. Division and remainder may trap; casts may fail.
// (Allocation, field and array accesses are separate statement kinds and
// never reach here.)
func sideEffectFree(e ir.Exp) bool {
	switch e := e.(type) {
	case ir.ArithmeticExp:
		return e.Op != ir.Div && e.Op != ir.Rem
	case ir.CastExp:
		return false
	default:
		return true
	}
}

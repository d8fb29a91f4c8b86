package dataflow

import (
	"github.com/kvistgaard/sift/internal/queue"
	"github.com/kvistgaard/sift/ir"
)

// Solve runs the standard worklist iteration for an intraprocedural analysis
// over a CFG until no fact changes.
func Solve[F any](a Analysis[F], cfg *ir.CFG) *Result[F] {
	res := newResult[F]()

	if a.IsForward() {
		solveForward(a, cfg, res)
	} else {
		solveBackward(a, cfg, res)
	}
	return res
}

func solveForward[F any](a Analysis[F], cfg *ir.CFG, res *Result[F]) {
	for _, s := range cfg.Nodes() {
		res.in[s] = a.NewInitialFact()
		res.out[s] = a.NewInitialFact()
	}
	res.out[cfg.Entry()] = a.NewBoundaryFact(cfg)

	var work queue.Queue[ir.Stmt]
	for _, s := range cfg.Nodes() {
		if s != cfg.Entry() {
			work.Push(s)
		}
	}

	for !work.Empty() {
		s := work.Pop()

		in := a.NewInitialFact()
		for _, p := range cfg.PredsOf(s) {
			a.MeetInto(res.out[p], in)
		}
		res.in[s] = in

		if a.TransferNode(s, in, res.out[s]) {
			for _, t := range cfg.SuccsOf(s) {
				work.Push(t)
			}
		}
	}
}

func solveBackward[F any](a Analysis[F], cfg *ir.CFG, res *Result[F]) {
	for _, s := range cfg.Nodes() {
		res.in[s] = a.NewInitialFact()
		res.out[s] = a.NewInitialFact()
	}
	res.in[cfg.Exit()] = a.NewBoundaryFact(cfg)

	var work queue.Queue[ir.Stmt]
	for _, s := range cfg.Nodes() {
		if s != cfg.Exit() {
			work.Push(s)
		}
	}

	for !work.Empty() {
		s := work.Pop()

		out := a.NewInitialFact()
		for _, t := range cfg.SuccsOf(s) {
			a.MeetInto(res.in[t], out)
		}
		res.out[s] = out

		if a.TransferNode(s, out, res.in[s]) {
			for _, p := range cfg.PredsOf(s) {
				work.Push(p)
			}
		}
	}
}

package taint

import (
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/kvistgaard/sift/internal/queue"
	"github.com/kvistgaard/sift/ir"
	"github.com/kvistgaard/sift/pta"
)

// Obj is a taint object: an abstract value originating at a source call. It
// implements ir.Obj, so taints live in ordinary points-to sets (in the
// tracker's own map, never the pointer analysis's).
type Obj struct {
	source *ir.Invoke
	typ    *ir.Type
}

func (o *Obj) Type() *ir.Type         { return o.typ }
func (o *Obj) SourceCall() *ir.Invoke { return o.source }

func (o *Obj) String() string {
	return fmt.Sprintf("taint(%v[%d], %s)", o.source.Container(), o.source.Index(), o.typ)
}

// manager interns taint objects by (source call, type).
type manager struct {
	taints map[taintKey]*Obj
}

type taintKey struct {
	source *ir.Invoke
	typ    *ir.Type
}

func newManager() *manager { return &manager{taints: make(map[taintKey]*Obj)} }

func (m *manager) makeTaint(source *ir.Invoke, typ *ir.Type) *Obj {
	key := taintKey{source, typ}
	if t, ok := m.taints[key]; ok {
		return t
	}
	t := &Obj{source: source, typ: typ}
	m.taints[key] = t
	return t
}

// Flow is a reported source-to-sink flow: the taint born at Source reached
// argument Index of the call at Sink.
type Flow struct {
	Source *ir.Invoke
	Sink   *ir.Invoke
	Index  int
}

func (f Flow) String() string {
	return fmt.Sprintf("%v[%d] -> %v[%d]/%d",
		f.Source.Container(), f.Source.Index(), f.Sink.Container(), f.Sink.Index(), f.Index)
}

// appliedTransfer is a transfer rule bound to a concrete call site.
type appliedTransfer struct {
	call     *ir.Invoke
	transfer Transfer
}

type tracker struct {
	res    *pta.Result
	config *Config
	man    *manager

	tpts map[pta.Pointer]*pta.PointsToSet
	work queue.Queue[workEntry]

	invokeIdx map[*ir.Invoke]int
	// byFromVar indexes applied transfers by the variable taint flows out
	// of, so propagation touches only the relevant call sites.
	byFromVar map[*ir.Var][]appliedTransfer
}

type workEntry struct {
	p   pta.Pointer
	pts *pta.PointsToSet
}

// Run executes the taint analysis on a finished pointer-analysis result and
// returns the distinct flows, sorted by source call, sink call and argument
// index.
func Run(res *pta.Result, config *Config) []Flow {
	t := &tracker{
		res:       res,
		config:    config,
		man:       newManager(),
		tpts:      make(map[pta.Pointer]*pta.PointsToSet),
		invokeIdx: make(map[*ir.Invoke]int),
		byFromVar: make(map[*ir.Var][]appliedTransfer),
	}

	for i, call := range res.AllInvokes() {
		t.invokeIdx[call] = i
	}
	t.indexTransfers()
	t.addSourceTaints()
	t.analyze()
	return t.collectFlows()
}

func (t *tracker) taintPtsOf(p pta.Pointer) *pta.PointsToSet {
	if pts, ok := t.tpts[p]; ok {
		return pts
	}
	pts := pta.NewPointsToSet()
	t.tpts[p] = pts
	return pts
}

// calleeOf is the declared target of a call, the resolution taint rules
// match against.
func calleeOf(call *ir.Invoke) *ir.Method { return call.Ref.Resolve() }

func (t *tracker) indexTransfers() {
	for _, call := range t.res.AllInvokes() {
		callee := calleeOf(call)
		if callee == nil {
			continue
		}
		for _, tr := range t.config.Transfers {
			if tr.Method != callee {
				continue
			}

			var from *ir.Var
			if tr.From == Base {
				from = call.Base
			} else if tr.From < len(call.Args) {
				from = call.Args[tr.From]
			}
			if from == nil {
				continue
			}
			t.byFromVar[from] = append(t.byFromVar[from], appliedTransfer{call, tr})
		}
	}
}

// addSourceTaints seeds the worklist: every reachable call to a source
// method births a taint object at its result variable.
func (t *tracker) addSourceTaints() {
	for _, call := range t.res.AllInvokes() {
		if call.LHS == nil {
			continue
		}
		callee := calleeOf(call)
		if callee == nil {
			continue
		}

		for _, src := range t.config.Sources {
			if src.Method != callee {
				continue
			}

			taint := t.csTaint(call, src.Type)
			for _, csVar := range t.res.CSVarsOf(call.LHS) {
				t.work.Push(workEntry{csVar, pta.NewPointsToSet(taint)})
			}
			log.Debugf("taint: source at %v", call)
			break
		}
	}
}

// csTaint wraps an interned taint object as a context-free CSObj so it can
// live in points-to sets.
func (t *tracker) csTaint(source *ir.Invoke, typ *ir.Type) *pta.CSObj {
	return t.res.Manager().GetCSObj(t.res.EmptyContext(), t.man.makeTaint(source, typ))
}

// analyze runs the secondary fixed point: taints propagate along the final
// pointer flow graph and through matching transfer rules.
func (t *tracker) analyze() {
	for {
		e, ok := t.work.Poll()
		if !ok {
			return
		}

		delta := t.taintPtsOf(e.p).DiffFrom(e.pts)
		if delta.Empty() {
			continue
		}
		t.taintPtsOf(e.p).UnionWith(delta)
		for _, succ := range t.res.SuccsOf(e.p) {
			t.work.Push(workEntry{succ, delta})
		}

		if csVar, ok := e.p.(*pta.CSVar); ok {
			t.propagateTaints(csVar, delta)
		}
	}
}

// propagateTaints applies the transfer rules triggered by new taints at a
// context-sensitive variable: each taint is re-keyed to the transfer's type
// and enqueued at the rule's target variable under the same context.
func (t *tracker) propagateTaints(csVar *pta.CSVar, delta *pta.PointsToSet) {
	man := t.res.Manager()
	for _, at := range t.byFromVar[csVar.V] {
		var target *ir.Var
		if at.transfer.To == Base {
			target = at.call.Base
		} else {
			target = at.call.LHS
		}
		if target == nil {
			continue
		}

		out := pta.NewPointsToSet()
		for _, id := range delta.AppendTo(nil) {
			if taint, ok := man.ObjAt(id).Obj.(*Obj); ok {
				out.Add(t.csTaint(taint.source, at.transfer.Type))
			}
		}
		if !out.Empty() {
			t.work.Push(workEntry{man.GetCSVar(csVar.Ctx, target), out})
		}
	}
}

// collectFlows scans sink calls after quiescence.
func (t *tracker) collectFlows() []Flow {
	man := t.res.Manager()
	seen := make(map[Flow]struct{})
	var flows []Flow

	for _, call := range t.res.AllInvokes() {
		callee := calleeOf(call)
		if callee == nil {
			continue
		}

		for _, sink := range t.config.Sinks {
			if sink.Method != callee || sink.Index >= len(call.Args) {
				continue
			}

			for _, csVar := range t.res.CSVarsOf(call.Args[sink.Index]) {
				tp, ok := t.tpts[csVar]
				if !ok {
					continue
				}
				for _, id := range tp.AppendTo(nil) {
					taint, ok := man.ObjAt(id).Obj.(*Obj)
					if !ok {
						continue
					}
					f := Flow{Source: taint.source, Sink: call, Index: sink.Index}
					if _, dup := seen[f]; !dup {
						seen[f] = struct{}{}
						flows = append(flows, f)
					}
				}
			}
		}
	}

	sort.Slice(flows, func(i, j int) bool {
		a, b := flows[i], flows[j]
		if a.Source != b.Source {
			return t.invokeIdx[a.Source] < t.invokeIdx[b.Source]
		}
		if a.Sink != b.Sink {
			return t.invokeIdx[a.Sink] < t.invokeIdx[b.Sink]
		}
		return a.Index < b.Index
	})

	log.Debugf("taint: %d flows", len(flows))
	return flows
}

package ir

import "fmt"

// CallGraphView is the call-graph projection the ICFG builder consumes.
// The pointer analysis result provides one; any method-level call graph
// (e.g. from class-hierarchy analysis) works as well.
type CallGraphView interface {
	Reachable() []*Method
	CalleesOf(call *Invoke) []*Method
}

// ICFG is the interprocedural control-flow graph: the union of the member
// CFGs where the intraprocedural successor edges of call sites are re-tagged
// as call-to-return edges, plus call edges into callee entries and return
// edges out of callee exits.
type ICFG struct {
	cfgs    map[*Method]*CFG
	methods []*Method
	entry   Stmt
	nodes   []Stmt
	out     map[Stmt][]*Edge
	in      map[Stmt][]*Edge
	contain map[Stmt]*Method
}

// Entry is the synthetic entry node of the program entry method.
func (g *ICFG) Entry() Stmt { return g.entry }

func (g *ICFG) Nodes() []Stmt { return g.nodes }

func (g *ICFG) OutEdgesOf(s Stmt) []*Edge { return g.out[s] }
func (g *ICFG) InEdgesOf(s Stmt) []*Edge  { return g.in[s] }

func (g *ICFG) ContainingMethodOf(s Stmt) *Method { return g.contain[s] }

func (g *ICFG) CFGOf(m *Method) *CFG { return g.cfgs[m] }

func (g *ICFG) addEdge(e *Edge) {
	g.out[e.Src] = append(g.out[e.Src], e)
	g.in[e.Dst] = append(g.in[e.Dst], e)
}

// BuildICFG assembles the ICFG for every method the call graph reaches.
func BuildICFG(prog *Program, cg CallGraphView) *ICFG {
	if prog.Entry() == nil {
		panic(fmt.Errorf("%w: program has no entry method", ErrMalformedIR))
	}

	g := &ICFG{
		cfgs:    make(map[*Method]*CFG),
		out:     make(map[Stmt][]*Edge),
		in:      make(map[Stmt][]*Edge),
		contain: make(map[Stmt]*Method),
	}

	for _, m := range cg.Reachable() {
		if !m.Finished() {
			// Body-less methods contribute no nodes; calls into them keep
			// only their call-to-return edge.
			continue
		}
		cfg := BuildCFG(m)
		g.cfgs[m] = cfg
		g.methods = append(g.methods, m)
		for _, s := range cfg.Nodes() {
			g.nodes = append(g.nodes, s)
			g.contain[s] = m
		}
	}
	entryCFG := g.cfgs[prog.Entry()]
	if entryCFG == nil {
		panic(fmt.Errorf("%w: entry method %v is not analysable", ErrMalformedIR, prog.Entry()))
	}
	g.entry = entryCFG.Entry()

	for _, m := range g.methods {
		cfg := g.cfgs[m]
		for _, s := range cfg.Nodes() {
			call, isCall := s.(*Invoke)
			for _, e := range cfg.OutEdgesOf(s) {
				if !isCall {
					g.addEdge(e)
					continue
				}

				// Successor edges of a call site become call-to-return
				// edges; call and return edges are added below.
				g.addEdge(&Edge{
					Kind: EdgeCallToReturn, Src: s, Dst: e.Dst,
					CallSite: call,
				})
			}

			if !isCall {
				continue
			}
			for _, callee := range cg.CalleesOf(call) {
				tcfg := g.cfgs[callee]
				if tcfg == nil {
					continue
				}

				g.addEdge(&Edge{
					Kind: EdgeCall, Src: s, Dst: tcfg.Entry(),
					CallSite: call, Callee: callee,
				})
				for _, e := range cfg.OutEdgesOf(s) {
					g.addEdge(&Edge{
						Kind: EdgeReturn, Src: tcfg.Exit(), Dst: e.Dst,
						CallSite: call, Callee: callee,
					})
				}
			}
		}
	}

	return g
}

package pta

import (
	"github.com/kvistgaard/sift/ir"
	"github.com/kvistgaard/sift/slices"
)

// CallEdge is a call-graph edge from a context-sensitive call site to a
// context-sensitive callee.
type CallEdge struct {
	Kind     ir.CallKind
	CallSite *CSCallSite
	Callee   *CSMethod
}

// CSCallGraph is the context-sensitive call graph, built on the fly while
// the points-to sets grow. A method is reachable iff some edge targets it or
// it is the entry.
type CSCallGraph struct {
	entry     *CSMethod
	reachable []*CSMethod
	reachSet  map[*CSMethod]struct{}

	edges     []*CallEdge
	edgeSet   map[callEdgeKey]struct{}
	calleesOf map[*CSCallSite][]*CallEdge
	callersOf map[*CSMethod][]*CallEdge
	siteEdges map[*ir.Invoke][]*CallEdge
}

type callEdgeKey struct {
	cs     *CSCallSite
	callee *CSMethod
}

func NewCSCallGraph() *CSCallGraph {
	return &CSCallGraph{
		reachSet:  make(map[*CSMethod]struct{}),
		edgeSet:   make(map[callEdgeKey]struct{}),
		calleesOf: make(map[*CSCallSite][]*CallEdge),
		callersOf: make(map[*CSMethod][]*CallEdge),
		siteEdges: make(map[*ir.Invoke][]*CallEdge),
	}
}

func (g *CSCallGraph) SetEntry(m *CSMethod) { g.entry = m }
func (g *CSCallGraph) Entry() *CSMethod     { return g.entry }

func (g *CSCallGraph) Contains(m *CSMethod) bool {
	_, ok := g.reachSet[m]
	return ok
}

// AddReachable marks m reachable, reporting false if it already was.
func (g *CSCallGraph) AddReachable(m *CSMethod) bool {
	if g.Contains(m) {
		return false
	}
	g.reachSet[m] = struct{}{}
	g.reachable = append(g.reachable, m)
	return true
}

// AddEdge inserts a call edge, reporting false if it was already present.
func (g *CSCallGraph) AddEdge(e *CallEdge) bool {
	key := callEdgeKey{e.CallSite, e.Callee}
	if _, ok := g.edgeSet[key]; ok {
		return false
	}
	g.edgeSet[key] = struct{}{}
	g.edges = append(g.edges, e)
	g.calleesOf[e.CallSite] = append(g.calleesOf[e.CallSite], e)
	g.callersOf[e.Callee] = append(g.callersOf[e.Callee], e)
	g.siteEdges[e.CallSite.Site] = append(g.siteEdges[e.CallSite.Site], e)
	return true
}

func (g *CSCallGraph) Reachable() []*CSMethod { return g.reachable }

func (g *CSCallGraph) Edges() []*CallEdge { return g.edges }

func (g *CSCallGraph) CalleesOf(cs *CSCallSite) []*CallEdge { return g.calleesOf[cs] }

func (g *CSCallGraph) CallersOf(m *CSMethod) []*CallEdge { return g.callersOf[m] }

// ReachableMethods is the context-collapsed reachable set, in discovery
// order.
func (g *CSCallGraph) ReachableMethods() []*ir.Method {
	var ms []*ir.Method
	for _, csm := range g.reachable {
		if !slices.Contains(ms, csm.Method) {
			ms = append(ms, csm.Method)
		}
	}
	return ms
}

// MethodCalleesOf is the context-collapsed callee set of a call site.
func (g *CSCallGraph) MethodCalleesOf(call *ir.Invoke) []*ir.Method {
	var ms []*ir.Method
	for _, e := range g.siteEdges[call] {
		if !slices.Contains(ms, e.Callee.Method) {
			ms = append(ms, e.Callee.Method)
		}
	}
	return ms
}

// View adapts the call graph to the projection the ICFG builder consumes.
func (g *CSCallGraph) View() ir.CallGraphView { return callGraphView{g} }

type callGraphView struct{ g *CSCallGraph }

func (v callGraphView) Reachable() []*ir.Method { return v.g.ReachableMethods() }

func (v callGraphView) CalleesOf(call *ir.Invoke) []*ir.Method {
	return v.g.MethodCalleesOf(call)
}

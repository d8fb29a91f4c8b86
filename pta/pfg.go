package pta

// PointerFlowGraph is the directed graph whose edges express subset
// constraints between pointer nodes. Edges are added dynamically as the
// analysis discovers heap accesses and calls.
type PointerFlowGraph struct {
	succs map[Pointer][]Pointer
	edges map[pfgEdge]struct{}
}

type pfgEdge struct {
	src, dst Pointer
}

func NewPointerFlowGraph() *PointerFlowGraph {
	return &PointerFlowGraph{
		succs: make(map[Pointer][]Pointer),
		edges: make(map[pfgEdge]struct{}),
	}
}

// AddEdge inserts the edge s -> t, reporting false if it was already
// present. Idempotent insertion keeps re-discovered edges from re-seeding
// the worklist.
func (g *PointerFlowGraph) AddEdge(s, t Pointer) bool {
	e := pfgEdge{s, t}
	if _, ok := g.edges[e]; ok {
		return false
	}
	g.edges[e] = struct{}{}
	g.succs[s] = append(g.succs[s], t)
	return true
}

// SuccsOf returns the successors of n in insertion order. The returned slice
// is a snapshot: edges added while iterating lie beyond its length and are
// picked up through the worklist instead.
func (g *PointerFlowGraph) SuccsOf(n Pointer) []Pointer { return g.succs[n] }

func (g *PointerFlowGraph) NumEdges() int { return len(g.edges) }

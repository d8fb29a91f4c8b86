package ir

import "fmt"

type EdgeKind int

const (
	EdgeNormal EdgeKind = iota
	EdgeIfTrue
	EdgeIfFalse
	EdgeSwitchCase
	EdgeSwitchDefault
	EdgeCall
	EdgeCallToReturn
	EdgeReturn
)

var edgeKindNames = [...]string{
	"normal", "if-true", "if-false", "switch-case", "switch-default",
	"call", "call-to-return", "return",
}

func (k EdgeKind) String() string { return edgeKindNames[k] }

// Edge is a control-flow edge. CaseValue is set for switch-case edges;
// CallSite and Callee are set for the interprocedural kinds.
type Edge struct {
	Kind      EdgeKind
	Src, Dst  Stmt
	CaseValue int32
	CallSite  *Invoke
	Callee    *Method
}

func (e *Edge) String() string {
	return fmt.Sprintf("%v -[%v]-> %v", e.Src, e.Kind, e.Dst)
}

// CFG is the intraprocedural control-flow graph of one method, with
// synthetic entry and exit nodes.
type CFG struct {
	method *Method
	entry  Stmt
	exit   Stmt
	nodes  []Stmt
	out    map[Stmt][]*Edge
	in     map[Stmt][]*Edge
}

func (g *CFG) Method() *Method { return g.method }
func (g *CFG) Entry() Stmt     { return g.entry }
func (g *CFG) Exit() Stmt      { return g.exit }

// Nodes returns entry, the method's statements in order, then exit.
func (g *CFG) Nodes() []Stmt { return g.nodes }

func (g *CFG) OutEdgesOf(s Stmt) []*Edge { return g.out[s] }
func (g *CFG) InEdgesOf(s Stmt) []*Edge  { return g.in[s] }

func (g *CFG) SuccsOf(s Stmt) []Stmt {
	succs := make([]Stmt, len(g.out[s]))
	for i, e := range g.out[s] {
		succs[i] = e.Dst
	}
	return succs
}

func (g *CFG) PredsOf(s Stmt) []Stmt {
	preds := make([]Stmt, len(g.in[s]))
	for i, e := range g.in[s] {
		preds[i] = e.Src
	}
	return preds
}

func (g *CFG) addEdge(e *Edge) {
	g.out[e.Src] = append(g.out[e.Src], e)
	g.in[e.Dst] = append(g.in[e.Dst], e)
}

// BuildCFG builds the control-flow graph of a finished method body.
func BuildCFG(m *Method) *CFG {
	if !m.finished {
		panic(fmt.Errorf("%v has no finished body", m))
	}

	g := &CFG{
		method: m,
		entry:  &Nop{stmtBase{index: -1, method: m}},
		exit:   &Nop{stmtBase{index: len(m.Stmts), method: m}},
		out:    make(map[Stmt][]*Edge),
		in:     make(map[Stmt][]*Edge),
	}

	g.nodes = append(g.nodes, g.entry)
	g.nodes = append(g.nodes, m.Stmts...)
	g.nodes = append(g.nodes, g.exit)

	next := func(i int) Stmt {
		if i+1 < len(m.Stmts) {
			return m.Stmts[i+1]
		}
		return g.exit
	}

	if len(m.Stmts) == 0 {
		g.addEdge(&Edge{Kind: EdgeNormal, Src: g.entry, Dst: g.exit})
		return g
	}
	g.addEdge(&Edge{Kind: EdgeNormal, Src: g.entry, Dst: m.Stmts[0]})

	for i, s := range m.Stmts {
		switch s := s.(type) {
		case *If:
			g.addEdge(&Edge{Kind: EdgeIfTrue, Src: s, Dst: s.Target})
			g.addEdge(&Edge{Kind: EdgeIfFalse, Src: s, Dst: next(i)})
		case *Switch:
			for k, t := range s.Targets {
				g.addEdge(&Edge{Kind: EdgeSwitchCase, Src: s, Dst: t, CaseValue: s.CaseValues[k]})
			}
			g.addEdge(&Edge{Kind: EdgeSwitchDefault, Src: s, Dst: s.Default})
		case *Goto:
			g.addEdge(&Edge{Kind: EdgeNormal, Src: s, Dst: s.Target})
		case *Return:
			g.addEdge(&Edge{Kind: EdgeNormal, Src: s, Dst: g.exit})
		default:
			g.addEdge(&Edge{Kind: EdgeNormal, Src: s, Dst: next(i)})
		}
	}

	return g
}

package constprop_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kvistgaard/sift/dataflow"
	cp "github.com/kvistgaard/sift/dataflow/constprop"
	"github.com/kvistgaard/sift/ir"
)

func TestIntraBranch(t *testing.T) {
	prog := ir.NewProgram()
	intT := prog.Type(ir.IntKind)

	m := prog.Class("Main").NewMethod("main", true)
	b := ir.NewBody(m)
	x := b.Var("x", intT)
	y := b.Var("y", intT)
	one := b.Var("one", intT)

	b.Assign(one, ir.Int(1))
	b.Assign(x, ir.Int(1))
	br := b.If(ir.Cond(ir.Eq, x, one))
	elseStmt := b.Assign(y, ir.Int(3))
	g := b.Goto()
	thenStmt := b.Assign(y, ir.Int(2))
	merge := b.Nop()
	br.Target = thenStmt
	g.Target = merge
	b.Finish()

	res := dataflow.Solve[*cp.CPFact](cp.ConstantPropagation{}, ir.BuildCFG(m))

	assert.Equal(t, cp.MakeConstant(1), res.InFact(br).Get(x))
	assert.Equal(t, cp.MakeConstant(1), cp.Evaluate(br.Cond, res.InFact(br)),
		"the branch condition is statically true")

	assert.Equal(t, cp.MakeConstant(2), res.OutFact(thenStmt).Get(y))
	assert.Equal(t, cp.MakeConstant(3), res.OutFact(elseStmt).Get(y))

	// Without branch pruning both definitions reach the merge; the dead-code
	// detector is the client that exploits the constant condition.
	assert.Equal(t, cp.NAC(), res.InFact(merge).Get(y))
}

func TestIntraParamsNAC(t *testing.T) {
	prog := ir.NewProgram()
	intT := prog.Type(ir.IntKind)

	m := prog.Class("Main").NewMethod("f", true)
	p := m.AddParam("p", intT)
	b := ir.NewBody(m)
	q := b.Var("q", intT)
	add := b.Assign(q, ir.Arith(ir.Add, p, p))
	b.Finish()

	res := dataflow.Solve[*cp.CPFact](cp.ConstantPropagation{}, ir.BuildCFG(m))
	assert.Equal(t, cp.NAC(), res.InFact(add).Get(p))
	assert.Equal(t, cp.NAC(), res.OutFact(add).Get(q))
}

func TestIntraNonIntUntracked(t *testing.T) {
	prog := ir.NewProgram()
	a := prog.Class("A")

	m := prog.Class("Main").NewMethod("main", true)
	b := ir.NewBody(m)
	o := b.Var("o", a.Type())
	alloc := b.New(o, a.Type())
	b.Finish()

	res := dataflow.Solve[*cp.CPFact](cp.ConstantPropagation{}, ir.BuildCFG(m))
	assert.Equal(t, cp.Undef(), res.OutFact(alloc).Get(o),
		"reference-typed variables pass through untouched")
}

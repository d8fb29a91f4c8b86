package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvistgaard/sift/ir"
)

func TestDispatch(t *testing.T) {
	prog := ir.NewProgram()
	a := prog.Class("A")
	b := prog.Class("B").SetSuper(a)
	c := prog.Class("C").SetSuper(b)

	am := a.NewMethod("m", false)
	ir.NewBody(am).Finish()
	bm := b.NewMethod("m", false)
	ir.NewBody(bm).Finish()

	main := prog.Class("Main").NewMethod("main", true)
	body := ir.NewBody(main)
	recv := body.Var("recv", a.Type())
	call := body.InvokeVirtual(nil, recv, ir.MethodRef{Class: a, Name: "m"})
	body.Finish()

	t.Run("Virtual", func(t *testing.T) {
		for _, tc := range []struct {
			recv *ir.Class
			want *ir.Method
		}{
			{a, am},
			{b, bm},
			{c, bm}, // inherited from B
		} {
			got, ok := ir.ResolveCallee(tc.recv.Type(), call)
			require.True(t, ok)
			assert.Equal(t, tc.want, got, "dispatch on %v", tc.recv)
		}
	})

	t.Run("NoImplementation", func(t *testing.T) {
		d := prog.Class("D") // unrelated, no m
		_, ok := ir.ResolveCallee(d.Type(), call)
		assert.False(t, ok)
	})

	t.Run("SubclassOf", func(t *testing.T) {
		assert.True(t, c.SubclassOf(a))
		assert.False(t, a.SubclassOf(c))
	})
}

func TestBodyValidation(t *testing.T) {
	prog := ir.NewProgram()
	intT := prog.Type(ir.IntKind)

	t.Run("ForeignVar", func(t *testing.T) {
		c := prog.Class("V1")
		m1 := c.NewMethod("m1", true)
		foreign := m1.NewVar("x", intT)
		ir.NewBody(m1).Finish()

		m2 := c.NewMethod("m2", true)
		b := ir.NewBody(m2)
		y := b.Var("y", intT)
		b.Copy(y, foreign)
		assert.PanicsWithError(t,
			"malformed IR: y = x in <V1: m2> references foreign variable x",
			func() { b.Finish() })
	})

	t.Run("UnpatchedIf", func(t *testing.T) {
		m := prog.Class("V2").NewMethod("m", true)
		b := ir.NewBody(m)
		x := b.Var("x", intT)
		b.Assign(x, ir.Int(0))
		b.If(ir.Cond(ir.Eq, x, x))
		assert.Panics(t, func() { b.Finish() })
	})
}

func TestBuildCFG(t *testing.T) {
	prog := ir.NewProgram()
	intT := prog.Type(ir.IntKind)

	m := prog.Class("Main").NewMethod("main", true)
	b := ir.NewBody(m)
	x := b.Var("x", intT)
	y := b.Var("y", intT)

	s0 := b.Assign(x, ir.Int(1))
	br := b.If(ir.Cond(ir.Eq, x, x)) // 1
	s2 := b.Assign(y, ir.Int(3))     // 2: false branch
	g := b.Goto()                    // 3
	s4 := b.Assign(y, ir.Int(2))     // 4: true branch
	end := b.Nop()                   // 5
	br.Target = s4
	g.Target = end
	b.Finish()

	cfg := ir.BuildCFG(m)

	assert.Equal(t, []ir.Stmt{s0}, cfg.SuccsOf(cfg.Entry()))
	assert.Equal(t, []ir.Stmt{br}, cfg.SuccsOf(s0))

	edges := cfg.OutEdgesOf(br)
	require.Len(t, edges, 2)
	assert.Equal(t, ir.EdgeIfTrue, edges[0].Kind)
	assert.Equal(t, s4, edges[0].Dst)
	assert.Equal(t, ir.EdgeIfFalse, edges[1].Kind)
	assert.Equal(t, s2, edges[1].Dst)

	assert.Equal(t, []ir.Stmt{end}, cfg.SuccsOf(g))
	assert.ElementsMatch(t, []ir.Stmt{g, s4}, cfg.PredsOf(end))
	assert.Equal(t, []ir.Stmt{cfg.Exit()}, cfg.SuccsOf(end))
}

func TestBuildCFGSwitch(t *testing.T) {
	prog := ir.NewProgram()
	intT := prog.Type(ir.IntKind)

	m := prog.Class("Sw").NewMethod("main", true)
	b := ir.NewBody(m)
	x := b.Var("x", intT)

	sw := b.Switch(x, 1, 2)
	c1 := b.Nop()
	c2 := b.Nop()
	def := b.Nop()
	sw.Targets[0] = c1
	sw.Targets[1] = c2
	sw.Default = def
	b.Finish()

	cfg := ir.BuildCFG(m)
	edges := cfg.OutEdgesOf(sw)
	require.Len(t, edges, 3)
	assert.Equal(t, ir.EdgeSwitchCase, edges[0].Kind)
	assert.Equal(t, int32(1), edges[0].CaseValue)
	assert.Equal(t, c1, edges[0].Dst)
	assert.Equal(t, int32(2), edges[1].CaseValue)
	assert.Equal(t, ir.EdgeSwitchDefault, edges[2].Kind)
	assert.Equal(t, def, edges[2].Dst)
}

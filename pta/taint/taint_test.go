package taint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvistgaard/sift/ir"
	"github.com/kvistgaard/sift/pta"
	"github.com/kvistgaard/sift/pta/taint"
)

// sourceSinkProgram is `t = source(); u = <maybe laundered t>; sink(u)`.
// laundered selects whether the value goes through the body-less
// StringOps.wrap, which only a transfer rule can carry taint across.
func sourceSinkProgram(laundered bool) (*ir.Program, *ir.Invoke, *ir.Invoke) {
	prog := ir.NewProgram()
	intT := prog.Type(ir.IntKind)

	app := prog.Class("App")
	source := app.NewMethod("source", true).SetRet(intT)
	{
		b := ir.NewBody(source)
		v := b.Var("v", intT)
		b.Assign(v, ir.Int(0))
		b.Return(v)
		b.Finish()
	}

	sink := app.NewMethod("sink", true)
	sink.AddParam("x", intT)
	ir.NewBody(sink).Finish()

	// wrap has no body: taint does not flow through it on the PFG.
	ops := prog.Class("StringOps")
	wrap := ops.NewMethod("wrap", true).SetRet(intT)
	wrap.AddParam("in", intT)

	main := app.NewMethod("main", true)
	b := ir.NewBody(main)
	tv := b.Var("t", intT)
	uv := b.Var("u", intT)
	srcCall := b.InvokeStatic(tv, source)
	arg := tv
	if laundered {
		b.InvokeStatic(uv, wrap, tv)
		arg = uv
	}
	sinkCall := b.InvokeStatic(nil, sink, arg)
	b.Finish()
	prog.SetEntry(main)

	return prog, srcCall, sinkCall
}

func solve(t *testing.T, prog *ir.Program) *pta.Result {
	t.Helper()
	res, err := pta.NewSolver(prog, pta.NewAllocSiteModel(), pta.ContextInsensitive{}).Solve()
	require.NoError(t, err)
	return res
}

func TestSourceToSink(t *testing.T) {
	prog, srcCall, sinkCall := sourceSinkProgram(false)
	res := solve(t, prog)

	config, err := taint.ParseConfig([]byte(`
sources:
  - { method: App.source, type: int }
sinks:
  - { method: App.sink, index: 0 }
`), prog)
	require.NoError(t, err)

	flows := taint.Run(res, config)
	require.Len(t, flows, 1)
	assert.Equal(t, taint.Flow{Source: srcCall, Sink: sinkCall, Index: 0}, flows[0])
}

func TestTransferLaunder(t *testing.T) {
	prog, srcCall, sinkCall := sourceSinkProgram(true)
	res := solve(t, prog)

	base := `
sources:
  - { method: App.source, type: int }
sinks:
  - { method: App.sink, index: 0 }
`

	t.Run("WithoutTransfer", func(t *testing.T) {
		config, err := taint.ParseConfig([]byte(base), prog)
		require.NoError(t, err)
		assert.Empty(t, taint.Run(res, config),
			"the body-less wrapper breaks the flow")
	})

	t.Run("WithTransfer", func(t *testing.T) {
		config, err := taint.ParseConfig([]byte(base+`
transfers:
  - { method: StringOps.wrap, from: 0, to: result, type: int }
`), prog)
		require.NoError(t, err)

		flows := taint.Run(res, config)
		require.Len(t, flows, 1)
		assert.Equal(t, taint.Flow{Source: srcCall, Sink: sinkCall, Index: 0}, flows[0],
			"the re-keyed taint keeps its source call")
	})
}

func TestBaseTransfers(t *testing.T) {
	prog := ir.NewProgram()
	intT := prog.Type(ir.IntKind)

	app := prog.Class("App")
	source := app.NewMethod("source", true).SetRet(intT)
	{
		b := ir.NewBody(source)
		v := b.Var("v", intT)
		b.Assign(v, ir.Int(0))
		b.Return(v)
		b.Finish()
	}
	sink := app.NewMethod("sink", true)
	sink.AddParam("x", intT)
	ir.NewBody(sink).Finish()

	// Box.put taints the receiver, Box.get taints the result; both are
	// modelled purely by transfer rules.
	box := prog.Class("Box")
	put := box.NewMethod("put", false)
	put.AddParam("v", intT)
	ir.NewBody(put).Finish()
	get := box.NewMethod("get", false).SetRet(intT)
	ir.NewBody(get).Finish()

	main := app.NewMethod("main", true)
	b := ir.NewBody(main)
	bx := b.Var("bx", box.Type())
	tv := b.Var("t", intT)
	uv := b.Var("u", intT)
	b.New(bx, box.Type())
	srcCall := b.InvokeStatic(tv, source)
	b.InvokeVirtual(nil, bx, put.Ref(), tv)
	b.InvokeVirtual(uv, bx, get.Ref())
	sinkCall := b.InvokeStatic(nil, sink, uv)
	b.Finish()
	prog.SetEntry(main)

	res := solve(t, prog)
	config, err := taint.ParseConfig([]byte(`
sources:
  - { method: App.source, type: int }
sinks:
  - { method: App.sink, index: 0 }
transfers:
  - { method: Box.put, from: 0, to: base, type: Box }
  - { method: Box.get, from: base, to: result, type: int }
`), prog)
	require.NoError(t, err)

	flows := taint.Run(res, config)
	require.Len(t, flows, 1)
	assert.Equal(t, taint.Flow{Source: srcCall, Sink: sinkCall, Index: 0}, flows[0])
}

func TestConfigErrors(t *testing.T) {
	prog, _, _ := sourceSinkProgram(false)

	for name, text := range map[string]string{
		"UnknownClass":  `sources: [{ method: Nope.source, type: int }]`,
		"UnknownMethod": `sources: [{ method: App.nope, type: int }]`,
		"UnknownType":   `sources: [{ method: App.source, type: Widget }]`,
		"SinkIndex":     `sinks: [{ method: App.sink, index: 3 }]`,
		"BadPosition":   `transfers: [{ method: App.source, from: banana, to: result, type: int }]`,
		"TransferTo":    `transfers: [{ method: App.sink, from: 0, to: 2, type: int }]`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := taint.ParseConfig([]byte(text), prog)
			assert.Error(t, err)
		})
	}
}

func TestFlowOrdering(t *testing.T) {
	prog := ir.NewProgram()
	intT := prog.Type(ir.IntKind)

	app := prog.Class("App")
	source := app.NewMethod("source", true).SetRet(intT)
	{
		b := ir.NewBody(source)
		v := b.Var("v", intT)
		b.Assign(v, ir.Int(0))
		b.Return(v)
		b.Finish()
	}
	sink := app.NewMethod("sink", true)
	sink.AddParam("x", intT)
	ir.NewBody(sink).Finish()

	main := app.NewMethod("main", true)
	b := ir.NewBody(main)
	t1 := b.Var("t1", intT)
	t2 := b.Var("t2", intT)
	src1 := b.InvokeStatic(t1, source)
	src2 := b.InvokeStatic(t2, source)
	sink1 := b.InvokeStatic(nil, sink, t2)
	sink2 := b.InvokeStatic(nil, sink, t1)
	b.Finish()
	prog.SetEntry(main)

	res := solve(t, prog)
	config, err := taint.ParseConfig([]byte(`
sources:
  - { method: App.source, type: int }
sinks:
  - { method: App.sink, index: 0 }
`), prog)
	require.NoError(t, err)

	flows := taint.Run(res, config)
	require.Len(t, flows, 2)
	assert.Equal(t, taint.Flow{Source: src1, Sink: sink2, Index: 0}, flows[0])
	assert.Equal(t, taint.Flow{Source: src2, Sink: sink1, Index: 0}, flows[1])
}

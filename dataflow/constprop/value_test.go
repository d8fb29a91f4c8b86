package constprop_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	cp "github.com/kvistgaard/sift/dataflow/constprop"
	"github.com/kvistgaard/sift/ir"
)

func TestMeetValue(t *testing.T) {
	c5, c6 := cp.MakeConstant(5), cp.MakeConstant(6)

	for _, tc := range []struct {
		a, b, want cp.Value
	}{
		{cp.Undef(), c5, c5},
		{c5, cp.Undef(), c5},
		{cp.Undef(), cp.Undef(), cp.Undef()},
		{cp.NAC(), c5, cp.NAC()},
		{c5, cp.NAC(), cp.NAC()},
		{cp.NAC(), cp.Undef(), cp.NAC()},
		{c5, c5, c5},
		{c5, c6, cp.NAC()},
	} {
		assert.Equal(t, tc.want, cp.MeetValue(tc.a, tc.b), "meet(%v, %v)", tc.a, tc.b)
	}
}

// meet(a,b) ⊑ a and meet(a,b) ⊑ b for all lattice points, where ⊑ is the
// order in which MeetValue is the greatest lower bound: NAC ⊑ CONST(c) ⊑
// UNDEF (the reverse of the information order UNDEF ⊏ CONST(c) ⊏ NAC).
func TestMeetMonotone(t *testing.T) {
	leq := func(a, b cp.Value) bool {
		return a == b || a.IsNAC() || b.IsUndef()
	}

	points := []cp.Value{cp.Undef(), cp.MakeConstant(0), cp.MakeConstant(7), cp.NAC()}
	for _, a := range points {
		for _, b := range points {
			m := cp.MeetValue(a, b)
			assert.True(t, leq(m, a), "meet(%v, %v) = %v ⋢ %v", a, b, m, a)
			assert.True(t, leq(m, b), "meet(%v, %v) = %v ⋢ %v", a, b, m, b)
		}
	}
}

func TestEvaluate(t *testing.T) {
	prog := ir.NewProgram()
	intT := prog.Type(ir.IntKind)
	m := prog.Class("C").NewMethod("m", true)
	x := m.NewVar("x", intT)
	y := m.NewVar("y", intT)

	fact := func(xv, yv cp.Value) *cp.CPFact {
		f := cp.NewCPFact()
		f.Update(x, xv)
		f.Update(y, yv)
		return f
	}
	consts := func(a, b int32) *cp.CPFact {
		return fact(cp.MakeConstant(a), cp.MakeConstant(b))
	}

	t.Run("Var", func(t *testing.T) {
		f := fact(cp.MakeConstant(3), cp.Undef())
		assert.Equal(t, cp.MakeConstant(3), cp.Evaluate(x, f))
		assert.Equal(t, cp.Undef(), cp.Evaluate(y, f), "unbound variables are UNDEF")
	})

	t.Run("Literal", func(t *testing.T) {
		assert.Equal(t, cp.MakeConstant(-7), cp.Evaluate(ir.Int(-7), cp.NewCPFact()))
	})

	t.Run("Arithmetic", func(t *testing.T) {
		for _, tc := range []struct {
			op   ir.ArithmeticOp
			a, b int32
			want int32
		}{
			{ir.Add, 2, 3, 5},
			{ir.Sub, 2, 3, -1},
			{ir.Mul, -4, 3, -12},
			{ir.Div, 7, 2, 3},
			{ir.Div, -7, 2, -3},
			{ir.Rem, 7, 2, 1},
			{ir.Rem, -7, 2, -1},
		} {
			got := cp.Evaluate(ir.Arith(tc.op, x, y), consts(tc.a, tc.b))
			assert.Equal(t, cp.MakeConstant(tc.want), got, "%d %v %d", tc.a, tc.op, tc.b)
		}
	})

	t.Run("DivisionByZero", func(t *testing.T) {
		for _, op := range []ir.ArithmeticOp{ir.Div, ir.Rem} {
			assert.Equal(t, cp.Undef(),
				cp.Evaluate(ir.Arith(op, x, y), consts(17, 0)))
			// Even a NAC dividend: the zero divisor short-circuits.
			assert.Equal(t, cp.Undef(),
				cp.Evaluate(ir.Arith(op, x, y), fact(cp.NAC(), cp.MakeConstant(0))))
		}
	})

	t.Run("OperandLattice", func(t *testing.T) {
		assert.Equal(t, cp.NAC(),
			cp.Evaluate(ir.Arith(ir.Add, x, y), fact(cp.NAC(), cp.MakeConstant(1))))
		assert.Equal(t, cp.Undef(),
			cp.Evaluate(ir.Arith(ir.Add, x, y), fact(cp.Undef(), cp.MakeConstant(1))))
		assert.Equal(t, cp.NAC(),
			cp.Evaluate(ir.Arith(ir.Add, x, y), fact(cp.Undef(), cp.NAC())),
			"NAC wins over UNDEF")
	})

	t.Run("Comparison", func(t *testing.T) {
		one, zero := cp.MakeConstant(1), cp.MakeConstant(0)
		for _, tc := range []struct {
			op   ir.ConditionOp
			a, b int32
			want cp.Value
		}{
			{ir.Eq, 5, 5, one},
			{ir.Eq, 5, 6, zero},
			{ir.Ne, 5, 6, one},
			{ir.Lt, 5, 6, one},
			{ir.Gt, 5, 6, zero},
			{ir.Le, 5, 5, one},
			{ir.Ge, 5, 6, zero},
		} {
			got := cp.Evaluate(ir.Cond(tc.op, x, y), consts(tc.a, tc.b))
			assert.Equal(t, tc.want, got, "%d %v %d", tc.a, tc.op, tc.b)
		}
	})

	t.Run("Shift", func(t *testing.T) {
		for _, tc := range []struct {
			op   ir.ShiftOp
			a, b int32
			want int32
		}{
			{ir.Shl, 1, 4, 16},
			{ir.Shr, -16, 2, -4},
			{ir.Ushr, -16, 2, 1073741820}, // logical shift of two's complement
			{ir.Shl, 1, 33, 2},            // distance masked to 5 bits
		} {
			got := cp.Evaluate(ir.Shift(tc.op, x, y), consts(tc.a, tc.b))
			assert.Equal(t, cp.MakeConstant(tc.want), got, "%d %v %d", tc.a, tc.op, tc.b)
		}
	})

	t.Run("Bitwise", func(t *testing.T) {
		for _, tc := range []struct {
			op   ir.BitwiseOp
			a, b int32
			want int32
		}{
			{ir.And, 0b1100, 0b1010, 0b1000},
			{ir.Or, 0b1100, 0b1010, 0b1110},
			{ir.Xor, 0b1100, 0b1010, 0b0110},
		} {
			got := cp.Evaluate(ir.Bitwise(tc.op, x, y), consts(tc.a, tc.b))
			assert.Equal(t, cp.MakeConstant(tc.want), got)
		}
	})

	t.Run("OpaqueExp", func(t *testing.T) {
		assert.Equal(t, cp.NAC(),
			cp.Evaluate(ir.Cast(prog.Class("C").Type(), x), consts(1, 2)))
	})
}

func TestMatchIndex(t *testing.T) {
	c5, c6 := cp.MakeConstant(5), cp.MakeConstant(6)

	assert.True(t, cp.MatchIndex(c5, c5))
	assert.False(t, cp.MatchIndex(c5, c6))
	assert.True(t, cp.MatchIndex(cp.NAC(), c5))
	assert.True(t, cp.MatchIndex(c5, cp.NAC()))
	assert.True(t, cp.MatchIndex(cp.NAC(), cp.NAC()))
	assert.False(t, cp.MatchIndex(cp.Undef(), c5))
	assert.False(t, cp.MatchIndex(cp.Undef(), cp.NAC()))
	assert.False(t, cp.MatchIndex(cp.Undef(), cp.Undef()))
}

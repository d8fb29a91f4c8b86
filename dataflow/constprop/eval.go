package constprop

import "github.com/kvistgaard/sift/ir"

// CanHoldInt reports whether a variable is tracked by the lattice:
// 8/16/32-bit integral and boolean types. Everything else passes through the
// transfers untouched.
func CanHoldInt(v *ir.Var) bool { return v.Type.IsIntLike() }

// Evaluate computes the lattice value of an expression under the given fact.
//
// Division and remainder by a constant zero yield UNDEF (the statement is
// treated as unreachable, not as NAC), even when the dividend is NAC.
// Unknown expression forms yield NAC.
func Evaluate(e ir.Exp, in *CPFact) Value {
	switch e := e.(type) {
	case *ir.Var:
		return in.Get(e)

	case ir.IntLiteral:
		return MakeConstant(e.Value)

	case ir.ArithmeticExp:
		v1, v2 := in.Get(e.X), in.Get(e.Y)
		if (e.Op == ir.Div || e.Op == ir.Rem) && v2.IsConstant() && v2.Constant() == 0 {
			return Undef()
		}
		c1, c2, ok := binaryOperands(v1, v2)
		if !ok {
			return meetOperands(v1, v2)
		}
		switch e.Op {
		case ir.Add:
			return MakeConstant(c1 + c2)
		case ir.Sub:
			return MakeConstant(c1 - c2)
		case ir.Mul:
			return MakeConstant(c1 * c2)
		case ir.Div:
			return MakeConstant(c1 / c2)
		default:
			return MakeConstant(c1 % c2)
		}

	case ir.ConditionExp:
		v1, v2 := in.Get(e.X), in.Get(e.Y)
		c1, c2, ok := binaryOperands(v1, v2)
		if !ok {
			return meetOperands(v1, v2)
		}
		var holds bool
		switch e.Op {
		case ir.Eq:
			holds = c1 == c2
		case ir.Ne:
			holds = c1 != c2
		case ir.Lt:
			holds = c1 < c2
		case ir.Gt:
			holds = c1 > c2
		case ir.Le:
			holds = c1 <= c2
		default:
			holds = c1 >= c2
		}
		if holds {
			return MakeConstant(1)
		}
		return MakeConstant(0)

	case ir.ShiftExp:
		v1, v2 := in.Get(e.X), in.Get(e.Y)
		c1, c2, ok := binaryOperands(v1, v2)
		if !ok {
			return meetOperands(v1, v2)
		}
		// 32-bit two's complement; shift distance masked to 5 bits.
		n := uint32(c2) & 31
		switch e.Op {
		case ir.Shl:
			return MakeConstant(c1 << n)
		case ir.Shr:
			return MakeConstant(c1 >> n)
		default: // Ushr: logical shift
			return MakeConstant(int32(uint32(c1) >> n))
		}

	case ir.BitwiseExp:
		v1, v2 := in.Get(e.X), in.Get(e.Y)
		c1, c2, ok := binaryOperands(v1, v2)
		if !ok {
			return meetOperands(v1, v2)
		}
		switch e.Op {
		case ir.And:
			return MakeConstant(c1 & c2)
		case ir.Or:
			return MakeConstant(c1 | c2)
		default:
			return MakeConstant(c1 ^ c2)
		}

	case ir.NegExp:
		v := in.Get(e.X)
		if v.IsConstant() {
			return MakeConstant(-v.Constant())
		}
		return v

	default:
		return NAC()
	}
}

func binaryOperands(v1, v2 Value) (c1, c2 int32, ok bool) {
	if !v1.IsConstant() || !v2.IsConstant() {
		return 0, 0, false
	}
	return v1.Constant(), v2.Constant(), true
}

// meetOperands resolves the non-both-constant cases: any NAC operand makes
// the result NAC, otherwise some operand is UNDEF and so is the result.
func meetOperands(v1, v2 Value) Value {
	if v1.IsNAC() || v2.IsNAC() {
		return NAC()
	}
	return Undef()
}

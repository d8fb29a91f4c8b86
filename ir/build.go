package ir

import "fmt"

// Body assembles the statement list of a method. Emit statements in order,
// patch branch targets on the returned values, then call Finish exactly once.
type Body struct {
	m *Method
}

func NewBody(m *Method) *Body {
	if m.finished {
		panic(fmt.Errorf("%v already finished", m))
	}
	return &Body{m}
}

func (b *Body) Var(name string, t *Type) *Var { return b.m.NewVar(name, t) }

func (b *Body) emit(s Stmt) {
	base := baseOf(s)
	base.method = b.m
	base.index = len(b.m.Stmts)
	b.m.Stmts = append(b.m.Stmts, s)
}

func baseOf(s Stmt) *stmtBase {
	switch s := s.(type) {
	case *New:
		return &s.stmtBase
	case *Copy:
		return &s.stmtBase
	case *Assign:
		return &s.stmtBase
	case *StoreField:
		return &s.stmtBase
	case *LoadField:
		return &s.stmtBase
	case *StoreArray:
		return &s.stmtBase
	case *LoadArray:
		return &s.stmtBase
	case *Invoke:
		return &s.stmtBase
	case *If:
		return &s.stmtBase
	case *Switch:
		return &s.stmtBase
	case *Goto:
		return &s.stmtBase
	case *Return:
		return &s.stmtBase
	case *Nop:
		return &s.stmtBase
	default:
		panic(fmt.Errorf("unknown statement %T", s))
	}
}

func (b *Body) New(lhs *Var, t *Type) *New {
	s := &New{LHS: lhs, T: t}
	b.emit(s)
	return s
}

func (b *Body) Copy(lhs, rhs *Var) *Copy {
	s := &Copy{LHS: lhs, RHS: rhs}
	b.emit(s)
	return s
}

func (b *Body) Assign(lhs *Var, rhs Exp) *Assign {
	s := &Assign{LHS: lhs, RHS: rhs}
	b.emit(s)
	return s
}

func (b *Body) StoreField(base *Var, f *Field, rhs *Var) *StoreField {
	s := &StoreField{Base: base, Field: f, RHS: rhs}
	b.emit(s)
	return s
}

func (b *Body) LoadField(lhs, base *Var, f *Field) *LoadField {
	s := &LoadField{LHS: lhs, Base: base, Field: f}
	b.emit(s)
	return s
}

func (b *Body) StoreArray(base, index, rhs *Var) *StoreArray {
	s := &StoreArray{Base: base, Idx: index, RHS: rhs}
	b.emit(s)
	return s
}

func (b *Body) LoadArray(lhs, base, index *Var) *LoadArray {
	s := &LoadArray{LHS: lhs, Base: base, Idx: index}
	b.emit(s)
	return s
}

func (b *Body) InvokeStatic(lhs *Var, callee *Method, args ...*Var) *Invoke {
	s := &Invoke{Kind: CallStatic, LHS: lhs, Ref: callee.Ref(), Args: args}
	b.emit(s)
	return s
}

func (b *Body) InvokeVirtual(lhs, base *Var, ref MethodRef, args ...*Var) *Invoke {
	s := &Invoke{Kind: CallVirtual, LHS: lhs, Base: base, Ref: ref, Args: args}
	b.emit(s)
	return s
}

func (b *Body) InvokeInterface(lhs, base *Var, ref MethodRef, args ...*Var) *Invoke {
	s := &Invoke{Kind: CallInterface, LHS: lhs, Base: base, Ref: ref, Args: args}
	b.emit(s)
	return s
}

func (b *Body) InvokeSpecial(lhs, base *Var, callee *Method, args ...*Var) *Invoke {
	s := &Invoke{Kind: CallSpecial, LHS: lhs, Base: base, Ref: callee.Ref(), Args: args}
	b.emit(s)
	return s
}

// If emits a conditional branch. The target is patched afterwards:
//
//	br := b.If(ir.Cond(ir.Eq, x, y))
//	...
//	br.Target = thenStmt
func (b *Body) If(cond ConditionExp) *If {
	s := &If{Cond: cond}
	b.emit(s)
	return s
}

func (b *Body) Switch(v *Var, caseValues ...int32) *Switch {
	s := &Switch{V: v, CaseValues: caseValues, Targets: make([]Stmt, len(caseValues))}
	b.emit(s)
	return s
}

func (b *Body) Goto() *Goto {
	s := &Goto{}
	b.emit(s)
	return s
}

func (b *Body) Return(v *Var) *Return {
	s := &Return{V: v}
	b.emit(s)
	return s
}

func (b *Body) Nop() *Nop {
	s := &Nop{}
	b.emit(s)
	return s
}

// Finish validates the body, records return variables and indexes each
// variable's heap and call statements for the pointer analysis.
func (b *Body) Finish() {
	m := b.m
	if m.finished {
		panic(fmt.Errorf("%v already finished", m))
	}
	m.finished = true

	check := func(s Stmt, vs ...*Var) {
		for _, v := range vs {
			if v != nil && v.Method != m {
				panic(fmt.Errorf("%w: %v in %v references foreign variable %v", ErrMalformedIR, s, m, v))
			}
		}
	}

	for _, s := range m.Stmts {
		check(s, DefOf(s))
		check(s, UsesOf(s)...)

		switch s := s.(type) {
		case *StoreField:
			if s.Base != nil {
				s.Base.storeFields = append(s.Base.storeFields, s)
			}
		case *LoadField:
			if s.Base != nil {
				s.Base.loadFields = append(s.Base.loadFields, s)
			}
		case *StoreArray:
			s.Base.storeArrays = append(s.Base.storeArrays, s)
		case *LoadArray:
			s.Base.loadArrays = append(s.Base.loadArrays, s)
		case *Invoke:
			if s.Base != nil {
				s.Base.invokes = append(s.Base.invokes, s)
			}
		case *If:
			if s.Target == nil {
				panic(fmt.Errorf("%w: unpatched if target in %v", ErrMalformedIR, m))
			}
		case *Goto:
			if s.Target == nil {
				panic(fmt.Errorf("%w: unpatched goto target in %v", ErrMalformedIR, m))
			}
		case *Switch:
			if s.Default == nil {
				panic(fmt.Errorf("%w: unpatched switch default in %v", ErrMalformedIR, m))
			}
			for _, t := range s.Targets {
				if t == nil {
					panic(fmt.Errorf("%w: unpatched switch case in %v", ErrMalformedIR, m))
				}
			}
		case *Return:
			if s.V != nil {
				m.ReturnVars = append(m.ReturnVars, s.V)
			}
		}
	}
}

package ir

import (
	"fmt"
	"strings"
)

// Stmt is the statement sum type. Analyses dispatch on the concrete variants
// with a type switch; there is no behaviour on the statements themselves.
type Stmt interface {
	stmtTag()
	// Index is the statement's position in its method; the synthetic entry
	// node of a CFG has index -1 and the synthetic exit len(Stmts).
	Index() int
	Container() *Method
	fmt.Stringer
}

type stmtBase struct {
	index  int
	method *Method
}

func (*stmtBase) stmtTag() {}

func (s *stmtBase) Index() int         { return s.index }
func (s *stmtBase) Container() *Method { return s.method }

// New is `x = new T`. The statement itself is the allocation site.
type New struct {
	stmtBase
	LHS *Var
	T   *Type
}

func (s *New) String() string { return fmt.Sprintf("%s = new %s", s.LHS, s.T) }

// Copy is `x = y` between reference-typed (or any) locals.
type Copy struct {
	stmtBase
	LHS, RHS *Var
}

func (s *Copy) String() string { return fmt.Sprintf("%s = %s", s.LHS, s.RHS) }

// Assign is `x = e` for a non-reference expression e.
type Assign struct {
	stmtBase
	LHS *Var
	RHS Exp
}

func (s *Assign) String() string { return fmt.Sprintf("%s = %s", s.LHS, s.RHS) }

// StoreField is `base.f = y`, or `C.f = y` when Base is nil.
type StoreField struct {
	stmtBase
	Base  *Var // nil for static stores
	Field *Field
	RHS   *Var
}

func (s *StoreField) IsStatic() bool { return s.Base == nil }

func (s *StoreField) String() string {
	if s.IsStatic() {
		return fmt.Sprintf("%s.%s = %s", s.Field.Class.Name, s.Field.Name, s.RHS)
	}
	return fmt.Sprintf("%s.%s = %s", s.Base, s.Field.Name, s.RHS)
}

// LoadField is `x = base.f`, or `x = C.f` when Base is nil.
type LoadField struct {
	stmtBase
	LHS   *Var
	Base  *Var // nil for static loads
	Field *Field
}

func (s *LoadField) IsStatic() bool { return s.Base == nil }

func (s *LoadField) String() string {
	if s.IsStatic() {
		return fmt.Sprintf("%s = %s.%s", s.LHS, s.Field.Class.Name, s.Field.Name)
	}
	return fmt.Sprintf("%s = %s.%s", s.LHS, s.Base, s.Field.Name)
}

// StoreArray is `base[i] = y`. Array objects are index-collapsed by the
// pointer analysis; the index only matters to constant propagation.
type StoreArray struct {
	stmtBase
	Base *Var
	Idx  *Var
	RHS  *Var
}

func (s *StoreArray) String() string { return fmt.Sprintf("%s[%s] = %s", s.Base, s.Idx, s.RHS) }

// LoadArray is `x = base[i]`.
type LoadArray struct {
	stmtBase
	LHS  *Var
	Base *Var
	Idx  *Var
}

func (s *LoadArray) String() string { return fmt.Sprintf("%s = %s[%s]", s.LHS, s.Base, s.Idx) }

type CallKind int

const (
	CallStatic CallKind = iota
	CallVirtual
	CallInterface
	CallSpecial
	CallDynamic
)

var callKindNames = [...]string{"static", "virtual", "interface", "special", "dynamic"}

func (k CallKind) String() string { return callKindNames[k] }

// Invoke is `x = base.m(args...)` or `x = C.m(args...)`. LHS may be nil when
// the result is discarded; Base is nil for static calls.
type Invoke struct {
	stmtBase
	Kind CallKind
	LHS  *Var
	Base *Var
	Ref  MethodRef
	Args []*Var
}

func (s *Invoke) IsStatic() bool { return s.Kind == CallStatic }

func (s *Invoke) String() string {
	args := make([]string, len(s.Args))
	for i, a := range s.Args {
		args[i] = a.Name
	}

	recv := s.Ref.Class.Name
	if s.Base != nil {
		recv = s.Base.Name
	}
	call := fmt.Sprintf("invoke%s %s.%s(%s)", s.Kind, recv, s.Ref.Name, strings.Join(args, ", "))
	if s.LHS != nil {
		return s.LHS.Name + " = " + call
	}
	return call
}

// If branches to Target when Cond holds and falls through otherwise.
type If struct {
	stmtBase
	Cond   ConditionExp
	Target Stmt
}

func (s *If) String() string { return fmt.Sprintf("if (%s) goto %d", s.Cond, s.Target.Index()) }

// Switch branches to Targets[i] when V equals CaseValues[i], otherwise to
// Default.
type Switch struct {
	stmtBase
	V          *Var
	CaseValues []int32
	Targets    []Stmt
	Default    Stmt
}

func (s *Switch) String() string { return fmt.Sprintf("switch (%s)", s.V) }

type Goto struct {
	stmtBase
	Target Stmt
}

func (s *Goto) String() string { return fmt.Sprintf("goto %d", s.Target.Index()) }

// Return exits the method, yielding V if non-nil.
type Return struct {
	stmtBase
	V *Var
}

func (s *Return) String() string {
	if s.V == nil {
		return "return"
	}
	return "return " + s.V.Name
}

// Nop is inert. The CFG uses Nop values for its synthetic entry and exit.
type Nop struct{ stmtBase }

func (s *Nop) String() string { return "nop" }

// DefOf returns the local variable defined by a statement, if any.
func DefOf(s Stmt) *Var {
	switch s := s.(type) {
	case *New:
		return s.LHS
	case *Copy:
		return s.LHS
	case *Assign:
		return s.LHS
	case *LoadField:
		return s.LHS
	case *LoadArray:
		return s.LHS
	case *Invoke:
		return s.LHS
	default:
		return nil
	}
}

// UsesOf returns the local variables read by a statement.
func UsesOf(s Stmt) []*Var {
	switch s := s.(type) {
	case *Copy:
		return []*Var{s.RHS}
	case *Assign:
		return operands(s.RHS)
	case *StoreField:
		if s.Base != nil {
			return []*Var{s.Base, s.RHS}
		}
		return []*Var{s.RHS}
	case *LoadField:
		if s.Base != nil {
			return []*Var{s.Base}
		}
		return nil
	case *StoreArray:
		return []*Var{s.Base, s.Idx, s.RHS}
	case *LoadArray:
		return []*Var{s.Base, s.Idx}
	case *Invoke:
		uses := make([]*Var, 0, len(s.Args)+1)
		if s.Base != nil {
			uses = append(uses, s.Base)
		}
		return append(uses, s.Args...)
	case *If:
		return []*Var{s.Cond.X, s.Cond.Y}
	case *Switch:
		return []*Var{s.V}
	case *Return:
		if s.V != nil {
			return []*Var{s.V}
		}
		return nil
	default:
		return nil
	}
}

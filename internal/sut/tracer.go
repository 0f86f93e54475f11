package sut

import (
	"slices"

	m "climb.dev/pkg/climb/internal/model"
	"climb.dev/pkg/climb/internal/symbolic"
)

// Tracer observes the branches a program takes. It records branch distances
// for the coverage trace and, for decisions on symbolic values, the path
// condition of the run.
type Tracer struct {
	trace    m.Trace
	path     symbolic.PathCondition
	reaching []symbolic.Constraint
}

// NewTracer returns a tracer with an empty trace.
func NewTracer() *Tracer {
	return &Tracer{trace: m.NewTrace()}
}

// Trace returns the coverage trace recorded so far.
func (t *Tracer) Trace() m.Trace {
	return t.trace
}

// Path returns the path condition recorded so far.
func (t *Tracer) Path() symbolic.PathCondition {
	return t.path
}

// Compare evaluates "l cmp r" as the decision of branch and returns the outcome.
func (t *Tracer) Compare(branch int, l Value, cmp symbolic.Cmp, r Value) bool {
	concrete := symbolic.Constraint{
		Left:  symbolic.Const(l.Concrete),
		Cmp:   cmp,
		Right: symbolic.Const(r.Concrete),
	}
	symbolicConstraint := symbolic.Constraint{Left: l.Expr(), Cmp: cmp, Right: r.Expr()}

	return t.decide(branch, concrete, symbolicConstraint, l.Sym != nil || r.Sym != nil)
}

// StrCompare evaluates a string predicate as the decision of branch.
func (t *Tracer) StrCompare(branch int, op symbolic.StrOp, l, r Value) bool {
	concrete := symbolic.Constraint{
		Left:  symbolic.StrCmp{Op: op, L: symbolic.Const(l.AsString()), R: symbolic.Const(r.AsString())},
		Cmp:   symbolic.EQ,
		Right: symbolic.IntConst{V: 1},
	}
	symbolicConstraint := symbolic.Constraint{
		Left:  symbolic.StrCmp{Op: op, L: l.Expr(), R: r.Expr()},
		Cmp:   symbolic.EQ,
		Right: symbolic.IntConst{V: 1},
	}

	return t.decide(branch, concrete, symbolicConstraint, l.Sym != nil || r.Sym != nil)
}

// Bool evaluates a boolean value as the decision of branch.
func (t *Tracer) Bool(branch int, v Value) bool {
	return t.Compare(branch, v, symbolic.NE, Int(0))
}

func (t *Tracer) decide(branch int, concrete, sym symbolic.Constraint, tracked bool) bool {
	trueDistance := symbolic.Distance(concrete, nil)
	falseDistance := symbolic.Distance(concrete.Negate(), nil)
	taken := trueDistance == 0

	t.trace.Record(branch, trueDistance, falseDistance)

	if !tracked {
		return taken
	}

	local := sym
	if !taken {
		local = sym.Negate()
	}

	t.path = append(t.path, symbolic.BranchCondition{
		BranchID: branch,
		Local:    local,
		Reaching: slices.Clone(t.reaching),
	})
	t.reaching = append(t.reaching, local)

	return taken
}

// Package solver answers constraint queries produced by concolic execution.
package solver

import (
	"context"

	"climb.dev/pkg/climb/internal/symbolic"
)

// Result is the answer to a satisfiable or unsatisfiable query.
// A nil *Result means the solver gave up.
type Result struct {
	Unsat bool
	// Model maps variable names to int64, float64 or string values.
	Model map[string]any
}

// IsUNSAT reports whether the query was proven unsatisfiable.
func (r *Result) IsUNSAT() bool {
	return r != nil && r.Unsat
}

// Solver decides a conjunction of constraints.
type Solver interface {
	Solve(ctx context.Context, constraints []symbolic.Constraint) (*Result, error)
}

package domain

import (
	"context"

	"pgregory.net/rand"

	m "climb.dev/pkg/climb/internal/model"
	"climb.dev/pkg/climb/internal/solver"
	"climb.dev/pkg/climb/internal/symbolic"
)

// Objective judges tentative changes of a candidate. Every query evaluates
// the candidate when it changed and stores the new fitness on it.
type Objective interface {
	HasImproved(ctx context.Context, c *m.Candidate) bool
	HasNotWorsened(ctx context.Context, c *m.Candidate) bool
	// HasChanged returns 1 for a better fitness, -1 for a worse one and 0 otherwise.
	HasChanged(ctx context.Context, c *m.Candidate) int
	Fitness(ctx context.Context, c *m.Candidate) float64
	IsDone() bool
}

// ObjectFactory synthesizes statements producing values of a type.
type ObjectFactory interface {
	// AttemptGeneration returns a *model.ConstructionError when no value can be built.
	AttemptGeneration(tc *m.TestCase, t m.Type, pos int) (m.VarRef, error)
	AddCallFor(tc *m.TestCase, callee m.VarRef, pos int, rnd *rand.Rand) (int, error)
}

// ConcolicExecutor runs a test recording the path condition over its primitive inputs.
type ConcolicExecutor interface {
	ExecuteConcolic(ctx context.Context, tc *m.TestCase) ([]symbolic.BranchCondition, error)
}

// Env carries the collaborators of one local search. Factory, Concolic,
// Solver, Cache and Stats are optional.
type Env struct {
	Objective Objective
	Budget    Budget
	Factory   ObjectFactory
	Concolic  ConcolicExecutor
	Solver    solver.Solver
	Cache     *solver.Cache
	Rand      *rand.Rand
	Config    Config
	Stats     *Stats
}

func (e *Env) exhausted(ctx context.Context) bool {
	return ctx.Err() != nil || (e.Budget != nil && e.Budget.IsFinished())
}

func (e *Env) ensureEvaluated(ctx context.Context, c *m.Candidate) float64 {
	return e.Objective.Fitness(ctx, c)
}

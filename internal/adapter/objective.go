package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	m "climb.dev/pkg/climb/internal/model"
	"climb.dev/pkg/climb/internal/symbolic"
)

// FitnessKey is the candidate fitness entry written by BranchObjective.
const FitnessKey = "branch_coverage"

// EvaluationCounter is told about every fitness evaluation.
type EvaluationCounter interface {
	CountFitnessEvaluation()
	CountExecutedStatements(n int)
}

// Goal is one outcome of a branch.
type Goal struct {
	Branch  int
	Outcome bool
}

func (g Goal) String() string {
	return fmt.Sprintf("b%d:%t", g.Branch, g.Outcome)
}

// Covered reports whether the trace took this outcome.
func (g Goal) Covered(trace m.Trace) bool {
	if g.Outcome {
		return trace.CoveredTrue(g.Branch)
	}

	return trace.CoveredFalse(g.Branch)
}

// Distance is 0 for a covered goal, the normalized branch distance for a
// reached one and 1 otherwise.
func (g Goal) Distance(trace m.Trace) float64 {
	distances := trace.False
	if g.Outcome {
		distances = trace.True
	}

	d, ok := distances[g.Branch]
	if !ok {
		return 1
	}

	return symbolic.Normalize(d)
}

// AllGoals returns both outcomes of every branch.
func AllGoals(branches int) []Goal {
	goals := make([]Goal, 0, 2*branches)
	for branch := range branches {
		goals = append(goals, Goal{Branch: branch, Outcome: true}, Goal{Branch: branch, Outcome: false})
	}

	return goals
}

// BranchObjective minimizes the summed distance to a set of target goals.
// Lower is better and zero means every target is covered.
type BranchObjective struct {
	executor Executor
	branches int
	targets  []Goal
	counter  EvaluationCounter
	done     atomic.Bool
}

// NewBranchObjective returns an objective targeting every goal of a program
// with the given number of branches. counter may be nil.
func NewBranchObjective(executor Executor, branches int, counter EvaluationCounter) *BranchObjective {
	return &BranchObjective{executor: executor, branches: branches, targets: AllGoals(branches), counter: counter}
}

// Focus restricts the objective to goals.
func (o *BranchObjective) Focus(goals []Goal) {
	o.targets = goals
}

// Targets returns the goals the objective minimizes.
func (o *BranchObjective) Targets() []Goal {
	return o.targets
}

// TotalGoals returns the number of branch outcomes of the program.
func (o *BranchObjective) TotalGoals() int {
	return 2 * o.branches
}

// Uncovered returns the goals none of the results covered.
func (o *BranchObjective) Uncovered(results ...*m.ExecutionResult) []Goal {
	uncovered := []Goal{}

	for _, goal := range AllGoals(o.branches) {
		if !coveredByAny(goal, results) {
			uncovered = append(uncovered, goal)
		}
	}

	return uncovered
}

// CoveredGoals returns the number of goals covered by at least one result.
func (o *BranchObjective) CoveredGoals(results ...*m.ExecutionResult) int {
	return o.TotalGoals() - len(o.Uncovered(results...))
}

func coveredByAny(goal Goal, results []*m.ExecutionResult) bool {
	for _, result := range results {
		if result != nil && goal.Covered(result.Trace) {
			return true
		}
	}

	return false
}

// Fitness returns the fitness of c, executing its test first when it changed
// since the last evaluation.
func (o *BranchObjective) Fitness(ctx context.Context, c *m.Candidate) float64 {
	if !c.Changed && c.LastResult != nil {
		if fitness, ok := c.Fitness[FitnessKey]; ok {
			return fitness
		}
	}

	result, err := o.executor.Execute(ctx, c.Test)
	if err != nil {
		slog.Debug("Failed to execute test", "candidate", c.ID, "error", err)

		result = m.NewExecutionResult()
	}

	if o.counter != nil {
		o.counter.CountFitnessEvaluation()
		o.counter.CountExecutedStatements(result.Executed)
	}

	fitness := 0.0
	for _, goal := range o.targets {
		fitness += goal.Distance(result.Trace)
	}

	c.LastResult = result
	c.Changed = false

	if c.Fitness == nil {
		c.Fitness = map[string]float64{}
	}

	c.Fitness[FitnessKey] = fitness
	o.done.Store(fitness == 0)

	return fitness
}

// HasChanged evaluates c and returns 1 when its fitness got better than the
// previously stored one, -1 when it got worse and 0 otherwise.
func (o *BranchObjective) HasChanged(ctx context.Context, c *m.Candidate) int {
	before, ok := c.Fitness[FitnessKey]
	after := o.Fitness(ctx, c)

	switch {
	case !ok || after == before:
		return 0
	case after < before:
		return 1
	default:
		return -1
	}
}

// HasImproved reports whether c got strictly better.
func (o *BranchObjective) HasImproved(ctx context.Context, c *m.Candidate) bool {
	return o.HasChanged(ctx, c) > 0
}

// HasNotWorsened reports whether c is at least as good as before.
func (o *BranchObjective) HasNotWorsened(ctx context.Context, c *m.Candidate) bool {
	return o.HasChanged(ctx, c) >= 0
}

// IsDone reports whether the last evaluated candidate covered every target.
func (o *BranchObjective) IsDone() bool {
	return o.done.Load()
}

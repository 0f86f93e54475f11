package domain

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// BudgetType is the resource a LocalSearchBudget limits.
type BudgetType string

const (
	BudgetStatements         BudgetType = "statements"
	BudgetTests              BudgetType = "tests"
	BudgetTime               BudgetType = "time"
	BudgetFitnessEvaluations BudgetType = "fitness_evaluations"
)

// Budget is polled before every probe of the local search.
type Budget interface {
	IsFinished() bool
	CountLocalSearchOnTest()
}

// LocalSearchBudget limits local search by executed statements, searched
// tests, elapsed seconds or fitness evaluations. It is safe for concurrent use.
type LocalSearchBudget struct {
	kind  BudgetType
	limit int64

	tests       atomic.Int64
	evaluations atomic.Int64
	statements  atomic.Int64

	mu    sync.Mutex
	start time.Time
}

// NewLocalSearchBudget returns a started budget. A limit <= 0 never finishes.
func NewLocalSearchBudget(kind BudgetType, limit int64) (*LocalSearchBudget, error) {
	switch kind {
	case BudgetStatements, BudgetTests, BudgetTime, BudgetFitnessEvaluations:
	default:
		return nil, fmt.Errorf("unknown budget type %q", kind)
	}

	b := &LocalSearchBudget{kind: kind, limit: limit}
	b.Start()

	return b, nil
}

// Start resets the counters and the clock.
func (b *LocalSearchBudget) Start() {
	b.tests.Store(0)
	b.evaluations.Store(0)
	b.statements.Store(0)

	b.mu.Lock()
	b.start = time.Now()
	b.mu.Unlock()
}

// IsFinished reports whether the limit was reached.
func (b *LocalSearchBudget) IsFinished() bool {
	if b.limit <= 0 {
		return false
	}

	switch b.kind {
	case BudgetTests:
		return b.tests.Load() >= b.limit
	case BudgetFitnessEvaluations:
		return b.evaluations.Load() >= b.limit
	case BudgetStatements:
		return b.statements.Load() >= b.limit
	default:
		return b.Elapsed() >= time.Duration(b.limit)*time.Second
	}
}

// Elapsed returns the time since Start.
func (b *LocalSearchBudget) Elapsed() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	return time.Since(b.start)
}

// CountLocalSearchOnTest records one local search invocation on a test.
func (b *LocalSearchBudget) CountLocalSearchOnTest() {
	b.tests.Add(1)
}

// CountFitnessEvaluation records one fitness evaluation.
func (b *LocalSearchBudget) CountFitnessEvaluation() {
	b.evaluations.Add(1)
}

// CountExecutedStatements records n executed statements.
func (b *LocalSearchBudget) CountExecutedStatements(n int) {
	b.statements.Add(int64(n))
}

// Usage returns the counters as searched tests, fitness evaluations and executed statements.
func (b *LocalSearchBudget) Usage() (tests, evaluations, statements int64) {
	return b.tests.Load(), b.evaluations.Load(), b.statements.Load()
}

package domain

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"pgregory.net/rand"

	"climb.dev/pkg/climb/internal/adapter"
	m "climb.dev/pkg/climb/internal/model"
	"climb.dev/pkg/climb/internal/sut"
)

var (
	intType    = m.PrimitiveType(m.Int)
	boolType   = m.PrimitiveType(m.Boolean)
	doubleType = m.PrimitiveType(m.Double)
	stringType = m.PrimitiveType(m.String)
	colorType  = m.EnumType("Color", "RED", "GREEN", "BLUE")
)

const fakeKey = "fake"

// fakeObjective scores a test case with a plain function. Lower is better.
type fakeObjective struct {
	score       func(tc *m.TestCase) float64
	exception   int
	evaluations int
	done        bool
}

func newFakeObjective(score func(tc *m.TestCase) float64) *fakeObjective {
	return &fakeObjective{score: score, exception: -1}
}

func (o *fakeObjective) Fitness(_ context.Context, c *m.Candidate) float64 {
	if !c.Changed && c.LastResult != nil {
		if fitness, ok := c.Fitness[fakeKey]; ok {
			return fitness
		}
	}

	o.evaluations++

	result := m.NewExecutionResult()
	result.ExceptionPosition = o.exception
	result.Executed = c.Test.Size()

	fitness := o.score(c.Test)

	c.LastResult = result
	c.Changed = false

	if c.Fitness == nil {
		c.Fitness = map[string]float64{}
	}

	c.Fitness[fakeKey] = fitness
	o.done = fitness == 0

	return fitness
}

func (o *fakeObjective) HasChanged(ctx context.Context, c *m.Candidate) int {
	before, ok := c.Fitness[fakeKey]
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

func (o *fakeObjective) HasImproved(ctx context.Context, c *m.Candidate) bool {
	return o.HasChanged(ctx, c) > 0
}

func (o *fakeObjective) HasNotWorsened(ctx context.Context, c *m.Candidate) bool {
	return o.HasChanged(ctx, c) >= 0
}

func (o *fakeObjective) IsDone() bool {
	return o.done
}

func flat(*m.TestCase) float64 { return 1 }

func newEnv(objective Objective) *Env {
	return &Env{
		Objective: objective,
		Rand:      rand.New(1),
		Config:    DefaultConfig(),
	}
}

// programEnv returns an environment searching the named bundled program with
// the objective focused on goals.
func programEnv(t *testing.T, name string, goals ...adapter.Goal) (*Env, *adapter.BranchObjective) {
	t.Helper()

	program, ok := sut.Lookup(name)
	require.True(t, ok)

	executor := adapter.NewProgramExecutor(program)
	objective := adapter.NewBranchObjective(executor, program.Branches, nil)
	objective.Focus(goals)

	env := newEnv(objective)
	env.Factory = adapter.NewProgramFactory(program)

	return env, objective
}

func calculatorTest(x int64) *m.TestCase {
	return m.NewTestCase(
		m.Construct("Calculator", nil, nil),
		m.Primitive(intType, m.Value{Int: x}),
		m.Call("Calculator", "check", boolType, 0, []m.Type{intType}, []m.VarRef{1}),
	)
}

// evaluated wraps tc in a candidate whose fitness is already known.
func evaluated(t *testing.T, env *Env, tc *m.TestCase) *m.Candidate {
	t.Helper()

	c := m.NewCandidate(tc)
	env.ensureEvaluated(context.Background(), c)
	require.False(t, c.Changed)

	return c
}

func candidateDiff(want, got *m.Candidate) string {
	return cmp.Diff(want, got, cmp.AllowUnexported(m.TestCase{}))
}

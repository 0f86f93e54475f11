package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"climb.dev/pkg/climb/internal/adapter"
	m "climb.dev/pkg/climb/internal/model"
	"climb.dev/pkg/climb/internal/solver"
	solvermocks "climb.dev/pkg/climb/internal/solver/mocks"
	"climb.dev/pkg/climb/internal/sut"
	"climb.dev/pkg/climb/internal/symbolic"
)

type mockConcolic struct {
	mock.Mock
}

func (mc *mockConcolic) ExecuteConcolic(ctx context.Context, tc *m.TestCase) ([]symbolic.BranchCondition, error) {
	args := mc.Called(ctx, tc)

	path, _ := args.Get(0).([]symbolic.BranchCondition)

	return path, args.Error(1)
}

func concolicExecutor(t *testing.T, name string) *adapter.ProgramExecutor {
	t.Helper()

	program, ok := sut.Lookup(name)
	require.True(t, ok)

	return adapter.NewProgramExecutor(program)
}

func intVar(name string, concrete int64) *symbolic.Variable {
	return &symbolic.Variable{Name: name, S: symbolic.IntSort, Concrete: concrete}
}

func TestConeOfInfluence(t *testing.T) {
	x, y, z := intVar("x", 0), intVar("y", 0), intVar("z", 0)

	yPositive := symbolic.Constraint{Left: y, Cmp: symbolic.GT, Right: symbolic.IntConst{V: 0}}
	zSmall := symbolic.Constraint{Left: z, Cmp: symbolic.LT, Right: symbolic.IntConst{V: 5}}
	xAboveY := symbolic.Constraint{Left: x, Cmp: symbolic.GT, Right: y}
	target := symbolic.Constraint{Left: x, Cmp: symbolic.EQ, Right: symbolic.IntConst{V: 3}}

	t.Run("keeps transitive dependencies in order", func(t *testing.T) {
		got := coneOfInfluence([]symbolic.Constraint{yPositive, zSmall, xAboveY}, target)
		assert.Equal(t, []symbolic.Constraint{yPositive, xAboveY, target}, got)
	})

	t.Run("no reaching constraints", func(t *testing.T) {
		assert.Equal(t, []symbolic.Constraint{target}, coneOfInfluence(nil, target))
	})

	t.Run("target without variables", func(t *testing.T) {
		constant := symbolic.Constraint{Left: symbolic.IntConst{V: 1}, Cmp: symbolic.EQ, Right: symbolic.IntConst{V: 2}}
		assert.Nil(t, coneOfInfluence([]symbolic.Constraint{yPositive}, constant))
	})
}

func TestDecodeValue(t *testing.T) {
	tests := []struct {
		name  string
		typ   m.Type
		value any
		want  m.Value
		ok    bool
	}{
		{"int", intType, int64(42), m.Value{Int: 42}, true},
		{"int overflow wraps", intType, int64(1) << 32, m.Value{Int: 0}, true},
		{"byte", m.PrimitiveType(m.Byte), int64(200), m.Value{Int: -56}, true},
		{"boolean true", boolType, int64(1), m.Value{Bool: true}, true},
		{"boolean false", boolType, int64(0), m.Value{Bool: false}, true},
		{"double from int", doubleType, int64(3), m.Value{Float: 3}, true},
		{"double", doubleType, 2.5, m.Value{Float: 2.5}, true},
		{"real for int", intType, 2.5, m.Value{}, false},
		{"string", stringType, "abc", m.Value{Str: "abc"}, true},
		{"char code", m.PrimitiveType(m.Char), "65", m.Value{Int: 65}, true},
		{"char garbage", m.PrimitiveType(m.Char), "x", m.Value{}, false},
		{"string for int", intType, "1", m.Value{}, false},
		{"unknown payload", intType, true, m.Value{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := decodeValue(tt.typ, tt.value)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDSEGenerator(t *testing.T) {
	ctx := context.Background()

	x := intVar("v1"+symbolic.SymbolSuffix, 5)
	notAnswer := symbolic.Constraint{Left: x, Cmp: symbolic.NE, Right: symbolic.IntConst{V: 42}}
	answer := symbolic.Constraint{Left: x, Cmp: symbolic.EQ, Right: symbolic.IntConst{V: 42}}
	path := []symbolic.BranchCondition{{BranchID: 0, Local: notAnswer}}

	distanceToAnswer := func(tc *m.TestCase) float64 {
		v := tc.Statement(1).Value.Int
		if v > 42 {
			return float64(v - 42)
		}

		return float64(42 - v)
	}

	setup := func(t *testing.T) (*Env, *solvermocks.MockSolver, *m.Candidate) {
		concolic := &mockConcolic{}
		concolic.On("ExecuteConcolic", mock.Anything, mock.Anything).Return(path, nil)
		t.Cleanup(func() { concolic.AssertExpectations(t) })

		s := solvermocks.NewMockSolver(t)

		env := newEnv(newFakeObjective(distanceToAnswer))
		env.Concolic = concolic
		env.Solver = s
		env.Stats = NewStats()

		return env, s, m.NewCandidate(calculatorTest(5))
	}

	t.Run("installs a satisfying model", func(t *testing.T) {
		env, s, c := setup(t)
		s.EXPECT().Solve(mock.Anything, []symbolic.Constraint{answer}).
			Return(&solver.Result{Model: map[string]any{"v1__SYM": int64(42)}}, nil).Once()

		assert.True(t, DSEGenerator{}.Generate(ctx, env, c, []int{1}))
		assert.Equal(t, int64(42), c.Test.Statement(1).Value.Int)
		assert.InDelta(t, 1, testutil.ToFloat64(env.Stats.dseTests.WithLabelValues("true")), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(env.Stats.dseQueries.WithLabelValues(QuerySat)), 0)
	})

	t.Run("rejects a model that does not improve", func(t *testing.T) {
		env, s, c := setup(t)
		s.EXPECT().Solve(mock.Anything, mock.Anything).
			Return(&solver.Result{Model: map[string]any{"v1__SYM": int64(5)}}, nil).Once()

		assert.False(t, DSEGenerator{}.Generate(ctx, env, c, []int{1}))
		assert.Equal(t, int64(5), c.Test.Statement(1).Value.Int)
		assert.InDelta(t, 1, testutil.ToFloat64(env.Stats.dseTests.WithLabelValues("false")), 0)
	})

	t.Run("unsatisfiable query", func(t *testing.T) {
		env, s, c := setup(t)
		s.EXPECT().Solve(mock.Anything, mock.Anything).Return(&solver.Result{Unsat: true}, nil).Once()

		assert.False(t, DSEGenerator{}.Generate(ctx, env, c, []int{1}))
		assert.Equal(t, int64(5), c.Test.Statement(1).Value.Int)
		assert.InDelta(t, 1, testutil.ToFloat64(env.Stats.dseQueries.WithLabelValues(QueryUnsat)), 0)
	})

	t.Run("solver error", func(t *testing.T) {
		env, s, c := setup(t)
		s.EXPECT().Solve(mock.Anything, mock.Anything).Return(nil, errors.New("timeout")).Once()

		assert.False(t, DSEGenerator{}.Generate(ctx, env, c, []int{1}))
		assert.Equal(t, int64(5), c.Test.Statement(1).Value.Int)
		assert.InDelta(t, 1, testutil.ToFloat64(env.Stats.dseQueries.WithLabelValues(QueryError)), 0)
	})

	t.Run("solver gives up", func(t *testing.T) {
		env, s, c := setup(t)
		s.EXPECT().Solve(mock.Anything, mock.Anything).Return(nil, nil).Once()

		assert.False(t, DSEGenerator{}.Generate(ctx, env, c, []int{1}))
		assert.InDelta(t, 1, testutil.ToFloat64(env.Stats.dseQueries.WithLabelValues(QueryNoResult)), 0)
	})

	t.Run("ignores branches on other inputs", func(t *testing.T) {
		env, _, c := setup(t)

		assert.False(t, DSEGenerator{}.Generate(ctx, env, c, []int{0}))
	})

	t.Run("skips branches covered both ways", func(t *testing.T) {
		env, _, c := setup(t)

		both := m.NewExecutionResult()
		both.Trace.Record(0, 0, 0)

		generator := DSEGenerator{Scope: CoverageScope{Results: []*m.ExecutionResult{both}}}
		assert.False(t, generator.Generate(ctx, env, c, []int{1}))
	})

	t.Run("queries covered branches when skipping is off", func(t *testing.T) {
		env, s, c := setup(t)
		env.Config.SkipCoveredTwoWays = false
		s.EXPECT().Solve(mock.Anything, mock.Anything).
			Return(&solver.Result{Model: map[string]any{"v1__SYM": int64(42)}}, nil).Once()

		both := m.NewExecutionResult()
		both.Trace.Record(0, 0, 0)

		generator := DSEGenerator{Scope: CoverageScope{Results: []*m.ExecutionResult{both}}}
		assert.True(t, generator.Generate(ctx, env, c, []int{1}))
	})

	t.Run("concolic failure", func(t *testing.T) {
		concolic := &mockConcolic{}
		concolic.On("ExecuteConcolic", mock.Anything, mock.Anything).Return(nil, errors.New("boom")).Once()

		env := newEnv(newFakeObjective(distanceToAnswer))
		env.Concolic = concolic
		env.Solver = solvermocks.NewMockSolver(t)
		c := m.NewCandidate(calculatorTest(5))

		assert.False(t, DSEGenerator{}.Generate(ctx, env, c, []int{1}))
		concolic.AssertExpectations(t)
	})

	t.Run("needs a solver", func(t *testing.T) {
		env := newEnv(newFakeObjective(distanceToAnswer))
		env.Concolic = &mockConcolic{}
		c := m.NewCandidate(calculatorTest(5))

		assert.False(t, DSEGenerator{}.Generate(ctx, env, c, []int{1}))
	})
}

func TestDSEGeneratorOnProgram(t *testing.T) {
	ctx := context.Background()

	env, objective := programEnv(t, "integers", adapter.Goal{Branch: 0, Outcome: true})
	env.Concolic = concolicExecutor(t, "integers")
	env.Solver = solver.NewAVMSolver()

	cache, err := solver.NewCache(16)
	require.NoError(t, err)

	env.Cache = cache
	c := m.NewCandidate(calculatorTest(5))

	require.True(t, DSEGenerator{}.Generate(ctx, env, c, []int{1}))
	assert.Equal(t, int64(42), c.Test.Statement(1).Value.Int)
	assert.Zero(t, objective.Fitness(ctx, c))
}

package domain

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rand"

	"climb.dev/pkg/climb/internal/adapter"
	m "climb.dev/pkg/climb/internal/model"
)

func lightTest(st m.Statement, method string) *m.TestCase {
	return m.NewTestCase(
		m.Construct("Light", nil, nil),
		st,
		m.Call("Light", method, boolType, 0, []m.Type{st.Type}, []m.VarRef{1}),
	)
}

func TestBooleanMover(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps an improving flip", func(t *testing.T) {
		env, objective := programEnv(t, "enums", adapter.Goal{Branch: 1, Outcome: true})
		c := evaluated(t, env, lightTest(m.Primitive(boolType, m.Value{}), "toggle"))

		out := BooleanMover{}.Search(ctx, env, c, 1)

		assert.Equal(t, Outcome{Improved: true}, out)
		assert.True(t, c.Test.Statement(1).Value.Bool)
		assert.True(t, objective.IsDone())
	})

	t.Run("reverts a worsening flip exactly", func(t *testing.T) {
		env, _ := programEnv(t, "enums", adapter.Goal{Branch: 1, Outcome: false})
		c := evaluated(t, env, lightTest(m.Primitive(boolType, m.Value{}), "toggle"))
		before := c.Clone()

		out := BooleanMover{}.Search(ctx, env, c, 1)

		assert.False(t, out.Improved)
		assert.Empty(t, candidateDiff(before, c))
	})
}

func TestEnumMover(t *testing.T) {
	ctx := context.Background()

	t.Run("finds the improving constant", func(t *testing.T) {
		env, _ := programEnv(t, "enums", adapter.Goal{Branch: 0, Outcome: true})
		c := evaluated(t, env, lightTest(m.Primitive(colorType, m.Value{}), "isGo"))

		out := EnumMover{}.Search(ctx, env, c, 1)

		assert.True(t, out.Improved)
		assert.Equal(t, int64(1), c.Test.Statement(1).Value.Int)
	})

	t.Run("tries every other constant once", func(t *testing.T) {
		objective := newFakeObjective(flat)
		env := newEnv(objective)
		c := evaluated(t, env, m.NewTestCase(m.Primitive(colorType, m.Value{Int: 2})))
		before := c.Clone()

		out := EnumMover{}.Search(ctx, env, c, 0)

		assert.False(t, out.Improved)
		assert.Equal(t, 3, objective.evaluations)
		assert.Empty(t, candidateDiff(before, c))
	})
}

func TestIntegerMover(t *testing.T) {
	ctx := context.Background()

	t.Run("climbs to the branch constant", func(t *testing.T) {
		env, objective := programEnv(t, "integers", adapter.Goal{Branch: 0, Outcome: true})
		c := evaluated(t, env, calculatorTest(5))

		out := IntegerMover{}.Search(ctx, env, c, 1)

		assert.Equal(t, Outcome{Improved: true}, out)
		assert.Equal(t, int64(42), c.Test.Statement(1).Value.Int)
		assert.Zero(t, objective.Fitness(ctx, c))
		assert.True(t, objective.IsDone())
	})

	t.Run("stops at the type bound", func(t *testing.T) {
		byteType := m.PrimitiveType(m.Byte)
		env := newEnv(newFakeObjective(func(tc *m.TestCase) float64 {
			return float64(math.MaxInt8 - tc.Statement(0).Value.Int)
		}))
		c := evaluated(t, env, m.NewTestCase(m.Primitive(byteType, m.Value{})))

		out := IntegerMover{}.Search(ctx, env, c, 0)

		assert.True(t, out.Improved)
		assert.Equal(t, int64(math.MaxInt8), c.Test.Statement(0).Value.Int)
	})

	t.Run("leaves a flat landscape untouched", func(t *testing.T) {
		env := newEnv(newFakeObjective(flat))
		c := evaluated(t, env, calculatorTest(5))
		before := c.Clone()

		out := IntegerMover{}.Search(ctx, env, c, 1)

		assert.Equal(t, Outcome{}, out)
		assert.Empty(t, candidateDiff(before, c))
	})

	t.Run("respects an exhausted budget", func(t *testing.T) {
		budget, err := NewLocalSearchBudget(BudgetTests, 1)
		require.NoError(t, err)
		budget.CountLocalSearchOnTest()

		env, _ := programEnv(t, "integers", adapter.Goal{Branch: 0, Outcome: true})
		env.Budget = budget
		c := evaluated(t, env, calculatorTest(5))

		assert.False(t, IntegerMover{}.Search(ctx, env, c, 1).Improved)
		assert.Equal(t, int64(5), c.Test.Statement(1).Value.Int)
	})
}

func TestSaturatingAdd(t *testing.T) {
	assert.Equal(t, int64(5), saturatingAdd(2, 3))
	assert.Equal(t, int64(math.MaxInt64), saturatingAdd(math.MaxInt64, 1))
	assert.Equal(t, int64(math.MinInt64), saturatingAdd(math.MinInt64, -1))
	assert.Equal(t, int64(math.MaxInt64), saturatingAdd(math.MaxInt64-1, math.MaxInt64))
}

func TestFloatMover(t *testing.T) {
	ctx := context.Background()

	t.Run("crosses a threshold", func(t *testing.T) {
		env, objective := programEnv(t, "floats", adapter.Goal{Branch: 0, Outcome: true})
		c := evaluated(t, env, m.NewTestCase(
			m.Construct("Thermostat", nil, nil),
			m.Primitive(doubleType, m.Value{}),
			m.Call("Thermostat", "classify", intType, 0, []m.Type{doubleType}, []m.VarRef{1}),
		))

		out := FloatMover{}.Search(ctx, env, c, 1)

		assert.True(t, out.Improved)
		assert.Greater(t, c.Test.Statement(1).Value.Float, 37.5)
		assert.Zero(t, objective.Fitness(ctx, c))
	})

	t.Run("refines decimal digits", func(t *testing.T) {
		env := newEnv(newFakeObjective(func(tc *m.TestCase) float64 {
			return math.Abs(tc.Statement(0).Value.Float - 0.3)
		}))
		c := evaluated(t, env, m.NewTestCase(m.Primitive(doubleType, m.Value{})))

		out := FloatMover{}.Search(ctx, env, c, 0)

		assert.True(t, out.Improved)
		assert.InDelta(t, 0.3, c.Test.Statement(0).Value.Float, 1e-12)
	})

	t.Run("keeps a coarser value of equal fitness", func(t *testing.T) {
		env := newEnv(newFakeObjective(func(tc *m.TestCase) float64 {
			if tc.Statement(0).Value.Float > 2 {
				return 0
			}

			return 1
		}))
		c := evaluated(t, env, m.NewTestCase(m.Primitive(doubleType, m.Value{Float: 2.5123456789})))

		out := FloatMover{}.Search(ctx, env, c, 0)

		assert.False(t, out.Improved)
		assert.InDelta(t, 2.5, c.Test.Statement(0).Value.Float, 0)
		assert.False(t, c.Changed)
		assert.InDelta(t, 0, c.Fitness[fakeKey], 0)
	})

	t.Run("gives up on an irrelevant value", func(t *testing.T) {
		objective := newFakeObjective(flat)
		env := newEnv(objective)
		c := evaluated(t, env, m.NewTestCase(m.Primitive(doubleType, m.Value{Float: 1.5})))
		before := c.Clone()

		out := FloatMover{}.Search(ctx, env, c, 0)

		assert.False(t, out.Improved)
		assert.Empty(t, candidateDiff(before, c))
		assert.Equal(t, 4, objective.evaluations)
	})
}

func TestRoundHalfEven(t *testing.T) {
	tests := []struct {
		value     float64
		precision int
		want      float64
	}{
		{2.5, 0, 2},
		{3.5, 0, 4},
		{-2.5, 0, -2},
		{1.25, 1, 1.2},
		{1.75, 1, 1.8},
		{0.5, 3, 0.5},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, roundHalfEven(tt.value, tt.precision), 1e-12, "round(%v, %d)", tt.value, tt.precision)
	}

	assert.Equal(t, math.MaxFloat64, roundHalfEven(math.MaxFloat64, 15))
}

func TestStoreFloat(t *testing.T) {
	assert.Equal(t, float64(float32(0.1)), storeFloat(m.PrimitiveType(m.Float), 0.1))
	assert.Equal(t, 0.1, storeFloat(doubleType, 0.1))
}

func parserTest(s string) *m.TestCase {
	return m.NewTestCase(
		m.Construct("Parser", nil, nil),
		m.Primitive(stringType, m.Value{Str: s}),
		m.Call("Parser", "parse", boolType, 0, []m.Type{stringType}, []m.VarRef{1}),
	)
}

func TestStringMover(t *testing.T) {
	ctx := context.Background()

	t.Run("builds a string containing the pattern", func(t *testing.T) {
		env, objective := programEnv(t, "strings", adapter.Goal{Branch: 0, Outcome: true})
		c := evaluated(t, env, parserTest(""))

		out := StringMover{Strategy: StringAVM}.Search(ctx, env, c, 1)

		assert.True(t, out.Improved)
		assert.Contains(t, c.Test.Statement(1).Value.Str, "ab")
		assert.Zero(t, objective.Fitness(ctx, c))
	})

	t.Run("keeps a covering string", func(t *testing.T) {
		env, _ := programEnv(t, "strings", adapter.Goal{Branch: 0, Outcome: true})
		c := evaluated(t, env, parserTest("ab"))
		before := c.Clone()

		out := StringMover{Strategy: StringAVM}.Search(ctx, env, c, 1)

		assert.False(t, out.Improved)
		assert.Equal(t, "ab", c.Test.Statement(1).Value.Str)
		assert.Empty(t, candidateDiff(before, c))
	})

	t.Run("skips an irrelevant string", func(t *testing.T) {
		env := newEnv(newFakeObjective(flat))
		c := evaluated(t, env, parserTest("hello"))
		before := c.Clone()

		assert.Equal(t, Outcome{}, StringMover{Strategy: StringNeighbor}.Search(ctx, env, c, 1))
		assert.Empty(t, candidateDiff(before, c))
	})

	t.Run("neighbor strategy moves towards the target", func(t *testing.T) {
		score := func(tc *m.TestCase) float64 {
			s := tc.Statement(0).Value.Str
			if s == "" {
				return 200
			}

			return math.Abs(float64(s[0])-'m') + 10*float64(len(s)-1)
		}

		env := newEnv(newFakeObjective(score))
		c := evaluated(t, env, m.NewTestCase(m.Primitive(stringType, m.Value{Str: "a"})))

		out := StringMover{Strategy: StringNeighbor}.Search(ctx, env, c, 0)

		assert.True(t, out.Improved)
		assert.Less(t, score(c.Test), 12.0)
	})

	t.Run("removes characters that do not matter", func(t *testing.T) {
		env := newEnv(newFakeObjective(func(tc *m.TestCase) float64 {
			if strings.Contains(tc.Statement(0).Value.Str, "x") {
				return 0
			}

			return 1
		}))
		c := evaluated(t, env, m.NewTestCase(m.Primitive(stringType, m.Value{Str: "abxcd"})))

		assert.False(t, StringMover{Strategy: StringAVM}.removeChars(ctx, env, c, 0))
		assert.Equal(t, "x", c.Test.Statement(0).Value.Str)
		assert.False(t, c.Changed)
	})

	t.Run("reports removals that lower the fitness", func(t *testing.T) {
		env := newEnv(newFakeObjective(func(tc *m.TestCase) float64 {
			return float64(len(tc.Statement(0).Value.Str))
		}))
		c := evaluated(t, env, m.NewTestCase(m.Primitive(stringType, m.Value{Str: "abc"})))

		assert.True(t, StringMover{Strategy: StringAVM}.removeChars(ctx, env, c, 0))
		assert.Empty(t, c.Test.Statement(0).Value.Str)
	})
}

func TestRandomStrings(t *testing.T) {
	rnd := rand.New(3)

	for range 100 {
		s := randomString(rnd, 5)
		assert.LessOrEqual(t, len(s), 5)

		for i := range len(s) {
			assert.GreaterOrEqual(t, int(s[i]), minChar)
			assert.LessOrEqual(t, int(s[i]), maxChar)
		}

		edited := editString(rnd, s)
		assert.LessOrEqual(t, len(edited), len(s)+1)
		assert.GreaterOrEqual(t, len(edited), len(s)-1)
	}

	assert.Len(t, editString(rnd, ""), 1)
}

func bufferTest(length int) *m.TestCase {
	return m.NewTestCase(
		m.Construct("Buffer", nil, nil),
		m.NewArray(m.ArrayOf(intType), length),
		m.Call("Buffer", "check", boolType, 0, []m.Type{m.ArrayOf(intType)}, []m.VarRef{1}),
	)
}

func TestArrayMover(t *testing.T) {
	ctx := context.Background()

	t.Run("grows the array and fills the checked element", func(t *testing.T) {
		env, objective := programEnv(t, "arrays",
			adapter.Goal{Branch: 0, Outcome: true},
			adapter.Goal{Branch: 1, Outcome: true})
		c := evaluated(t, env, bufferTest(0))

		out := ArrayMover{}.Search(ctx, env, c, 1)

		require.True(t, out.Improved)
		assert.Equal(t, 6, out.PositionDelta)
		assert.Equal(t, 3, c.Test.Statement(1).Length)
		assert.Zero(t, objective.Fitness(ctx, c))

		for _, j := range c.Test.AssignmentsTo(1) {
			st := c.Test.Statement(j)
			if st.Index == 2 {
				assert.Equal(t, int64(7), c.Test.Statement(int(st.Args[0])).Value.Int)
			}
		}
	})

	t.Run("strips neutral assignments", func(t *testing.T) {
		env := newEnv(newFakeObjective(flat))
		arrayType := m.ArrayOf(intType)
		c := evaluated(t, env, m.NewTestCase(
			m.NewArray(arrayType, 2),
			m.Primitive(intType, m.Value{Int: 5}),
			m.Assign(0, 0, 1),
			m.Primitive(intType, m.Value{Int: 6}),
			m.Assign(0, 1, 3),
			m.StaticCall("Buffer", "use", boolType, []m.Type{arrayType}, []m.VarRef{0}),
		))

		out := ArrayMover{}.Search(ctx, env, c, 0)

		assert.True(t, out.Improved)
		assert.Zero(t, out.PositionDelta)

		for _, j := range c.Test.AssignmentsTo(0) {
			value := c.Test.Statement(int(c.Test.Statement(j).Args[0]))
			assert.Zero(t, value.Value.Int)
		}
	})

	t.Run("restores the whole test without improvement", func(t *testing.T) {
		env := newEnv(newFakeObjective(flat))
		c := evaluated(t, env, bufferTest(2))
		before := c.Clone()

		out := ArrayMover{}.Search(ctx, env, c, 1)

		assert.Equal(t, Outcome{}, out)
		assert.Empty(t, candidateDiff(before, c))
	})
}

func transferTest(from m.Statement) *m.TestCase {
	accountType := m.ObjectType("Account")

	return m.NewTestCase(
		m.Construct("Bank", nil, nil),
		from,
		m.Primitive(intType, m.Value{Int: 10}),
		m.Construct("Account", []m.Type{intType}, []m.VarRef{2}),
		m.Primitive(intType, m.Value{Int: 5}),
		m.Call("Bank", "transfer", boolType, 0,
			[]m.Type{accountType, accountType, intType}, []m.VarRef{1, 3, 4}),
	)
}

func TestNullReferenceMover(t *testing.T) {
	ctx := context.Background()
	env, objective := programEnv(t, "objects", adapter.Goal{Branch: 1, Outcome: false})
	c := evaluated(t, env, transferTest(m.Null(m.ObjectType("Account"))))
	require.True(t, c.LastResult.HasException())

	out := NullReferenceMover{}.Search(ctx, env, c, 1)

	require.True(t, out.Improved)
	assert.Equal(t, 1, out.PositionDelta)
	assert.Zero(t, objective.Fitness(ctx, c))
	assert.False(t, c.LastResult.HasException())
	require.NoError(t, c.Test.Validate())

	transfer := c.Test.Statement(c.Test.Size() - 1)
	assert.Equal(t, m.ConstructorStatement, c.Test.Statement(int(transfer.Args[0])).Kind)
}

func TestParameterMover(t *testing.T) {
	ctx := context.Background()
	accountType := m.ObjectType("Account")

	env, objective := programEnv(t, "objects", adapter.Goal{Branch: 1, Outcome: false})
	c := evaluated(t, env, m.NewTestCase(
		m.Construct("Bank", nil, nil),
		m.Primitive(intType, m.Value{Int: 10}),
		m.Construct("Account", []m.Type{intType}, []m.VarRef{1}),
		m.Primitive(intType, m.Value{Int: 20}),
		m.Construct("Account", []m.Type{intType}, []m.VarRef{3}),
		m.Primitive(intType, m.Value{Int: 5}),
		m.Call("Bank", "transfer", boolType, 0,
			[]m.Type{accountType, accountType, intType}, []m.VarRef{2, 2, 5}),
	))

	out := ParameterMover{}.Search(ctx, env, c, 6)

	assert.Equal(t, Outcome{Improved: true}, out)
	assert.Equal(t, []m.VarRef{4, 2, 5}, c.Test.Statement(6).Args)
	assert.Equal(t, m.VarRef(0), c.Test.Statement(6).Callee)
	assert.Zero(t, objective.Fitness(ctx, c))
}

func TestReferenceMover(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces a null argument", func(t *testing.T) {
		env, objective := programEnv(t, "objects", adapter.Goal{Branch: 1, Outcome: false})
		env.Config.Probes = 50
		c := evaluated(t, env, transferTest(m.Null(m.ObjectType("Account"))))

		out := ReferenceMover{}.Search(ctx, env, c, 1)

		require.True(t, out.Improved)
		assert.Equal(t, c.Test.Size()-6, out.PositionDelta)
		assert.Zero(t, objective.Fitness(ctx, c))
		require.NoError(t, c.Test.Validate())
	})

	t.Run("reverts every rejected move", func(t *testing.T) {
		env, _ := programEnv(t, "objects")
		env.Objective = newFakeObjective(flat)

		c := evaluated(t, env, transferTest(m.Construct("Account", []m.Type{intType}, []m.VarRef{m.NullRef})))
		before := c.Clone()

		out := ReferenceMover{}.Search(ctx, env, c, 1)

		assert.Equal(t, Outcome{}, out)
		assert.Empty(t, candidateDiff(before, c))
	})
}

package symbolic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intVar(name string, v int64) *Variable {
	return &Variable{Name: name, S: IntSort, Concrete: v}
}

func TestNumericDistance(t *testing.T) {
	tests := []struct {
		cmp  Cmp
		diff float64
		want float64
	}{
		{EQ, -3, 3},
		{NE, 0, 1},
		{NE, 2, 0},
		{LT, 0, 1},
		{LT, -1, 0},
		{LE, 2, 2},
		{GT, -2, 3},
		{GE, -2, 2},
		{GE, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.cmp.String(), func(t *testing.T) {
			assert.InDelta(t, tt.want, NumericDistance(tt.cmp, tt.diff), 1e-9)
		})
	}
}

func TestDistance_UsesAssignmentOverConcrete(t *testing.T) {
	x := intVar("x", 5)
	c := Constraint{Left: x, Cmp: EQ, Right: IntConst{V: 42}}

	assert.InDelta(t, 37, Distance(c, nil), 1e-9)
	assert.Zero(t, Distance(c, Assignment{"x": int64(42)}))
	assert.True(t, Satisfied(c.Negate(), nil))
}

func TestDistance_Arithmetic(t *testing.T) {
	x := intVar("x", 3)
	c := Constraint{Left: Arith{Op: Mul, L: x, R: IntConst{V: 2}}, Cmp: GT, Right: IntConst{V: 10}}

	assert.InDelta(t, 5, Distance(c, nil), 1e-9)

	div := Constraint{Left: Arith{Op: Div, L: IntConst{V: 1}, R: x}, Cmp: EQ, Right: IntConst{V: 0}}
	assert.Equal(t, MaxDistance, Distance(div, Assignment{"x": int64(0)}))
}

func TestDistance_StringPredicates(t *testing.T) {
	s := &Variable{Name: "s", S: StringSort, Concrete: ""}
	contains := Constraint{Left: StrCmp{Op: Contains, L: s, R: StrConst{V: "ab"}}, Cmp: NE, Right: IntConst{V: 0}}

	assert.InDelta(t, 2, Distance(contains, nil), 1e-9)
	assert.InDelta(t, 1, Distance(contains, Assignment{"s": "xa"}), 1e-9)
	assert.Zero(t, Distance(contains, Assignment{"s": "xaby"}))
	assert.Less(t, Distance(contains, Assignment{"s": "ac"}), Distance(contains, Assignment{"s": "az"}))

	negated := contains.Negate()
	assert.Equal(t, 1.0, Distance(negated, Assignment{"s": "ab"}))
	assert.Zero(t, Distance(negated, Assignment{"s": "ba"}))
}

func TestEditDistance(t *testing.T) {
	assert.Zero(t, EditDistance("abc", "abc"))
	assert.InDelta(t, 3, EditDistance("", "abc"), 1e-9)
	assert.InDelta(t, 0.5, EditDistance("abd", "abc"), 1e-9)
}

func TestEval_StringFunctions(t *testing.T) {
	s := &Variable{Name: "s", S: StringSort, Concrete: "hello"}

	length, err := Eval(StrLen{S: s}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), length)

	code, err := Eval(CharAt{S: s, I: IntConst{V: 1}}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64('e'), code)

	_, err = Eval(CharAt{S: s, I: IntConst{V: 9}}, nil)
	require.ErrorIs(t, err, ErrEvaluation)
}

func TestConstraint_Variables(t *testing.T) {
	x := intVar("x", 1)
	y := intVar("y", 2)
	c := Constraint{Left: Arith{Op: Add, L: x, R: y}, Cmp: LT, Right: x}

	vars := c.Variables()

	assert.Len(t, vars, 2)
	assert.True(t, c.SharesVariable(map[string]bool{"y": true}))
	assert.False(t, c.SharesVariable(map[string]bool{"z": true}))
	assert.Equal(t, []string{"x", "y"}, sortedNames(vars))
	assert.Equal(t, "(x + y) < x", c.String())
}

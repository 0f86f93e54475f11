package sut

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"climb.dev/pkg/climb/internal/symbolic"
)

func TestTracer_RecordsDistances(t *testing.T) {
	tracer := NewTracer()

	taken := tracer.Compare(0, Int(5), symbolic.EQ, Int(42))

	assert.False(t, taken)
	assert.InDelta(t, 37, tracer.Trace().True[0], 1e-9)
	assert.True(t, tracer.Trace().CoveredFalse(0))
	assert.Empty(t, tracer.Path())
}

func TestTracer_RecordsPathConditionForSymbolicValues(t *testing.T) {
	tracer := NewTracer()
	x := Value{Concrete: int64(5), Sym: &symbolic.Variable{Name: "v0__SYM", S: symbolic.IntSort, Concrete: int64(5)}}

	tracer.Compare(0, x, symbolic.EQ, Int(42))
	tracer.Compare(1, x, symbolic.GT, Int(1))

	path := tracer.Path()
	require.Len(t, path, 2)

	assert.Equal(t, symbolic.NE, path[0].Local.Cmp)
	assert.Empty(t, path[0].Reaching)
	assert.Equal(t, symbolic.GT, path[1].Local.Cmp)
	require.Len(t, path[1].Reaching, 1)
	assert.Equal(t, path[0].Local, path[1].Reaching[0])
}

func TestTracer_StrCompare(t *testing.T) {
	tracer := NewTracer()
	s := Value{Concrete: "xa", Sym: &symbolic.Variable{Name: "s", S: symbolic.StringSort, Concrete: "xa"}}

	assert.False(t, tracer.StrCompare(0, symbolic.Contains, s, Str("ab")))
	assert.InDelta(t, 1, tracer.Trace().True[0], 1e-9)
	assert.Equal(t, symbolic.NE, tracer.Path()[0].Local.Cmp)
}

func TestPrograms_Lookup(t *testing.T) {
	for _, name := range Names() {
		p, ok := Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, name, p.Name)
		assert.NotZero(t, p.Branches)
	}

	_, ok := Lookup("missing")
	assert.False(t, ok)
}

func TestValue_Arithmetic(t *testing.T) {
	x := Value{Concrete: int64(3), Sym: &symbolic.Variable{Name: "x", S: symbolic.IntSort, Concrete: int64(3)}}

	sum := Plus(x, Int(4))

	assert.Equal(t, int64(7), sum.Concrete)
	assert.Equal(t, "(x + 4)", sum.Sym.String())
	assert.Nil(t, Minus(Int(1), Int(1)).Sym)
	assert.Equal(t, 2.5, Plus(Real(1), Real(1.5)).Concrete)
}

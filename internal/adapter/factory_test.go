package adapter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rand"

	m "climb.dev/pkg/climb/internal/model"
	"climb.dev/pkg/climb/internal/sut"
)

func TestProgramFactory_AttemptGeneration(t *testing.T) {
	factory := NewProgramFactory(mustProgram(t, "objects"))

	t.Run("object with primitive constructor argument", func(t *testing.T) {
		tc := m.NewTestCase()

		ref, err := factory.AttemptGeneration(tc, m.ObjectType("Account"), 0)
		require.NoError(t, err)

		assert.Equal(t, m.VarRef(1), ref)
		assert.Equal(t, "int v0 = 0;\nAccount v1 = new Account(v0);", tc.Code())
	})

	t.Run("insertion shifts later statements", func(t *testing.T) {
		tc := m.NewTestCase(
			m.Construct("Bank", nil, nil),
			m.Primitive(intType, m.Value{Int: 3}),
		)

		ref, err := factory.AttemptGeneration(tc, m.ObjectType("Bank"), 1)
		require.NoError(t, err)

		assert.Equal(t, m.VarRef(1), ref)
		assert.Equal(t, 3, tc.Size())
		assert.Equal(t, int64(3), tc.Statement(2).Value.Int)
	})

	t.Run("unknown class leaves the test untouched", func(t *testing.T) {
		tc := calculatorTest(1)

		_, err := factory.AttemptGeneration(tc, m.ObjectType("Nope"), 1)

		var constructionErr *m.ConstructionError
		require.True(t, errors.As(err, &constructionErr))
		assert.Equal(t, "Nope", constructionErr.Type.Name)
		assert.Equal(t, 3, tc.Size())
	})

	t.Run("self-referential constructor stops at the depth limit", func(t *testing.T) {
		nodeType := m.ObjectType("Node")
		nodes := NewProgramFactory(&sut.Program{
			Name: "nodes",
			Classes: map[string]*sut.Class{
				"Node": {
					Name: "Node",
					Constructors: []sut.Constructor{
						{Params: []m.Type{nodeType}},
						{},
					},
				},
			},
		})
		tc := m.NewTestCase()

		ref, err := nodes.AttemptGeneration(tc, nodeType, 0)
		require.NoError(t, err)

		assert.Equal(t, m.VarRef(2), ref)
		assert.Equal(t, "Node v0 = new Node();\nNode v1 = new Node(v0);\nNode v2 = new Node(v1);", tc.Code())
	})

	t.Run("primitives and arrays", func(t *testing.T) {
		tc := m.NewTestCase()

		_, err := factory.AttemptGeneration(tc, m.PrimitiveType(m.String), 0)
		require.NoError(t, err)
		_, err = factory.AttemptGeneration(tc, m.ArrayOf(intType), 1)
		require.NoError(t, err)

		assert.Equal(t, "String v0 = \"\";\nint[] v1 = new int[0];", tc.Code())
	})
}

func TestProgramFactory_AddCallFor(t *testing.T) {
	factory := NewProgramFactory(mustProgram(t, "objects"))

	tc := m.NewTestCase(
		m.Primitive(intType, m.Value{Int: 10}),
		m.Construct("Account", []m.Type{intType}, []m.VarRef{0}),
	)

	inserted, err := factory.AddCallFor(tc, 1, 2, rand.New(1))
	require.NoError(t, err)

	assert.Equal(t, 2, inserted)
	assert.Equal(t, "int v3 = v1.deposit(v2);", tc.Code()[len(tc.Code())-len("int v3 = v1.deposit(v2);"):])
	require.NoError(t, tc.Validate())

	_, err = factory.AddCallFor(tc, 0, 4, rand.New(1))
	require.Error(t, err)
}

func TestStarterScenario(t *testing.T) {
	t.Run("instantiates and calls every class", func(t *testing.T) {
		scenario, err := StarterScenario(mustProgram(t, "integers"), 3)
		require.NoError(t, err)

		assert.Equal(t, "integers", scenario.Name)
		assert.Equal(t, "integers", scenario.Program)
		assert.Equal(t, uint64(3), scenario.Seed)
		require.Equal(t, 3, scenario.Test.Size())
		assert.Equal(t, m.ConstructorStatement, scenario.Test.Statement(0).Kind)
		assert.Equal(t, m.PrimitiveStatement, scenario.Test.Statement(1).Kind)
		assert.Equal(t, m.MethodStatement, scenario.Test.Statement(2).Kind)
		assert.Equal(t, "check", scenario.Test.Statement(2).Member)
		require.NoError(t, scenario.Test.Validate())
	})

	t.Run("program without classes", func(t *testing.T) {
		_, err := StarterScenario(&sut.Program{Name: "empty", Classes: map[string]*sut.Class{}}, 1)

		var constructionErr *m.ConstructionError
		require.True(t, errors.As(err, &constructionErr))
	})
}

package adapter

import (
	"fmt"
	"log/slog"

	"pgregory.net/rand"

	m "climb.dev/pkg/climb/internal/model"
	"climb.dev/pkg/climb/internal/sut"
)

// DefaultMaxDepth bounds the nesting of generated constructor arguments.
const DefaultMaxDepth = 3

// ProgramFactory generates statements producing values of program types.
type ProgramFactory struct {
	program  *sut.Program
	maxDepth int
}

// NewProgramFactory returns a factory for program.
func NewProgramFactory(program *sut.Program) *ProgramFactory {
	return &ProgramFactory{program: program, maxDepth: DefaultMaxDepth}
}

// AttemptGeneration inserts, at pos, the statements needed to produce a
// non-null value of type t and returns the reference to that value. The test
// case is left untouched when it returns a *model.ConstructionError.
func (f *ProgramFactory) AttemptGeneration(tc *m.TestCase, t m.Type, pos int) (m.VarRef, error) {
	if reason := f.infeasible(t, 0); reason != "" {
		slog.Debug("Cannot generate value", "type", t.String(), "reason", reason)
		return m.NoRef, &m.ConstructionError{Type: t, Reason: reason}
	}

	ref, _ := f.generate(tc, t, pos, 0)

	return ref, nil
}

// AddCallFor inserts, at pos, a call of a random instance method on the
// object at callee, preceded by the statements producing its arguments. It
// returns the number of inserted statements.
func (f *ProgramFactory) AddCallFor(tc *m.TestCase, callee m.VarRef, pos int, rnd *rand.Rand) (int, error) {
	if callee < 0 || int(callee) >= pos || pos > tc.Size() {
		return 0, fmt.Errorf("%w: call on %d at %d", m.ErrInvalidPosition, callee, pos)
	}

	owner := tc.Statement(int(callee)).Type

	class, ok := f.program.Class(owner.Name)
	if owner.Kind != m.Object || !ok {
		return 0, &m.ConstructionError{Type: owner, Reason: "not a program class"}
	}

	var candidates []*sut.Method

	for i := range class.Methods {
		method := &class.Methods[i]
		if method.Static || !f.feasibleParams(method.Params, 1) {
			continue
		}

		candidates = append(candidates, method)
	}

	if len(candidates) == 0 {
		return 0, &m.ConstructionError{Type: owner, Reason: "no callable methods"}
	}

	method := candidates[rnd.Intn(len(candidates))]
	args, inserted := f.generateArgs(tc, method.Params, pos, 1)
	tc.Insert(pos+inserted, m.Call(class.Name, method.Name, method.Returns, callee, method.Params, args))

	slog.Debug("Added call", "class", class.Name, "method", method.Name, "position", pos+inserted)

	return inserted + 1, nil
}

func (f *ProgramFactory) infeasible(t m.Type, depth int) string {
	switch {
	case t.IsPrimitive() || t.Kind == m.Array:
		return ""
	case t.Kind != m.Object:
		return "no values of type " + t.String()
	case depth >= f.maxDepth:
		return "recursion depth exceeded"
	}

	class, ok := f.program.Class(t.Name)
	if !ok {
		return "unknown class " + t.Name
	}

	for _, ctor := range class.Constructors {
		if f.feasibleParams(ctor.Params, depth+1) {
			return ""
		}
	}

	return "no usable constructor"
}

func (f *ProgramFactory) feasibleParams(params []m.Type, depth int) bool {
	for _, p := range params {
		if f.infeasible(p, depth) != "" {
			return false
		}
	}

	return true
}

// generate builds t at the given nesting depth with the first constructor
// that infeasible accepts at that depth.
func (f *ProgramFactory) generate(tc *m.TestCase, t m.Type, pos, depth int) (m.VarRef, int) {
	switch {
	case t.IsPrimitive():
		return tc.Insert(pos, m.Primitive(t, m.Value{})), 1
	case t.Kind == m.Array:
		return tc.Insert(pos, m.NewArray(t, 0)), 1
	}

	class, _ := f.program.Class(t.Name)

	for _, ctor := range class.Constructors {
		if !f.feasibleParams(ctor.Params, depth+1) {
			continue
		}

		args, inserted := f.generateArgs(tc, ctor.Params, pos, depth+1)

		return tc.Insert(pos+inserted, m.Construct(class.Name, ctor.Params, args)), inserted + 1
	}

	return m.NoRef, 0
}

func (f *ProgramFactory) generateArgs(tc *m.TestCase, params []m.Type, pos, depth int) ([]m.VarRef, int) {
	args := make([]m.VarRef, 0, len(params))
	inserted := 0

	for _, p := range params {
		ref, n := f.generate(tc, p, pos+inserted, depth)
		args = append(args, ref)
		inserted += n
	}

	return args, inserted
}

// StarterScenario builds a scenario for program that instantiates every class
// and calls one method on each instance. Classes that cannot be built are
// skipped.
func StarterScenario(program *sut.Program, seed uint64) (m.Scenario, error) {
	factory := NewProgramFactory(program)
	rnd := rand.New(seed)
	tc := m.NewTestCase()

	for _, name := range program.ClassNames() {
		ref, err := factory.AttemptGeneration(tc, m.ObjectType(name), tc.Size())
		if err != nil {
			slog.Debug("Skipping class in starter scenario", "class", name, "error", err)
			continue
		}

		if _, err := factory.AddCallFor(tc, ref, tc.Size(), rnd); err != nil {
			slog.Debug("No call added to starter scenario", "class", name, "error", err)
		}
	}

	if tc.Size() == 0 {
		return m.Scenario{}, &m.ConstructionError{Type: m.ObjectType(program.Name), Reason: "no constructible class"}
	}

	return m.Scenario{
		Name:    program.Name,
		Program: program.Name,
		Seed:    seed,
		Test:    tc,
	}, nil
}

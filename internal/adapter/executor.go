// Package adapter contains the infrastructure adapters that connect the search
// core to a concrete program runtime and to the filesystem.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	m "climb.dev/pkg/climb/internal/model"
	"climb.dev/pkg/climb/internal/sut"
	"climb.dev/pkg/climb/internal/symbolic"
)

var (
	// ErrUnknownMember is returned for calls to classes, methods or fields the program lacks.
	ErrUnknownMember = errors.New("unknown class member")
	// ErrNegativeArraySize is thrown by array statements with a negative length.
	ErrNegativeArraySize = errors.New("NegativeArraySizeException")
)

// Executor runs test cases concretely.
type Executor interface {
	Execute(ctx context.Context, tc *m.TestCase) (*m.ExecutionResult, error)
}

// ProgramExecutor executes test cases against a bundled program.
type ProgramExecutor struct {
	program *sut.Program
}

// NewProgramExecutor returns an executor for program.
func NewProgramExecutor(program *sut.Program) *ProgramExecutor {
	return &ProgramExecutor{program: program}
}

// Execute runs tc and returns its coverage trace. A statement that throws
// stops the run and is recorded as the exception position.
func (e *ProgramExecutor) Execute(ctx context.Context, tc *m.TestCase) (*m.ExecutionResult, error) {
	result, _, err := e.run(ctx, tc, false)
	return result, err
}

// ExecuteConcolic runs tc with every primitive input bound to a symbolic
// variable named after its position and returns the path condition.
func (e *ProgramExecutor) ExecuteConcolic(ctx context.Context, tc *m.TestCase) ([]symbolic.BranchCondition, error) {
	_, tracer, err := e.run(ctx, tc, true)
	if err != nil {
		return nil, err
	}

	return tracer.Path(), nil
}

func (e *ProgramExecutor) run(ctx context.Context, tc *m.TestCase, symbolize bool) (*m.ExecutionResult, *sut.Tracer, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	if err := tc.Validate(); err != nil {
		return nil, nil, fmt.Errorf("failed to execute test: %w", err)
	}

	tracer := sut.NewTracer()
	values := make([]sut.Value, tc.Size())
	result := m.NewExecutionResult()

	for pos := range tc.Size() {
		result.Executed++

		value, err := e.step(tracer, tc, pos, values, symbolize)
		if err == nil {
			values[pos] = value
			continue
		}

		if errors.Is(err, ErrUnknownMember) {
			slog.Error("Malformed test case", "program", e.program.Name, "position", pos, "error", err)
			return nil, nil, err
		}

		result.ExceptionPosition = pos
		result.Exception = err.Error()

		break
	}

	result.Trace = tracer.Trace()

	return result, tracer, nil
}

func (e *ProgramExecutor) step(tracer *sut.Tracer, tc *m.TestCase, pos int, values []sut.Value, symbolize bool) (sut.Value, error) {
	st := tc.Statement(pos)

	resolve := func(ref m.VarRef) sut.Value {
		if ref < 0 {
			return sut.Null
		}

		return values[ref]
	}

	args := make([]sut.Value, len(st.Args))
	for i, ref := range st.Args {
		args[i] = resolve(ref)
	}

	switch st.Kind {
	case m.PrimitiveStatement:
		return primitiveValue(tc, pos, st, symbolize), nil
	case m.NullStatement:
		return sut.Null, nil
	case m.ArrayStatement:
		if st.Length < 0 {
			return sut.Null, fmt.Errorf("%w: %d", ErrNegativeArraySize, st.Length)
		}

		elems := make([]sut.Value, st.Length)
		for i := range elems {
			elems[i] = zeroValue(st.Type.Elem)
		}

		return sut.Value{Concrete: &sut.ArrayValue{Elems: elems}}, nil
	case m.AssignmentStatement:
		arr, err := resolve(st.Callee).AsArray()
		if err != nil {
			return sut.Null, err
		}

		if st.Index < 0 || st.Index >= len(arr.Elems) {
			return sut.Null, fmt.Errorf("%w: index %d, length %d", sut.ErrIndexOutOfBounds, st.Index, len(arr.Elems))
		}

		arr.Elems[st.Index] = args[0]

		return sut.Null, nil
	case m.ConstructorStatement:
		return e.construct(tracer, st, args)
	case m.MethodStatement:
		return e.call(tracer, st, resolve(st.Callee), args)
	case m.FieldStatement:
		return e.field(st, resolve(st.Callee))
	default:
		return sut.Null, fmt.Errorf("%w: statement kind %s", ErrUnknownMember, st.Kind)
	}
}

func (e *ProgramExecutor) construct(tracer *sut.Tracer, st *m.Statement, args []sut.Value) (sut.Value, error) {
	class, ok := e.program.Class(st.Owner)
	if !ok {
		return sut.Null, fmt.Errorf("%w: class %s", ErrUnknownMember, st.Owner)
	}

	ctor, ok := class.Constructor(st.Params)
	if !ok {
		return sut.Null, fmt.Errorf("%w: constructor %s(%v)", ErrUnknownMember, st.Owner, st.Params)
	}

	obj := &sut.Object{Class: class.Name, Fields: map[string]sut.Value{}}
	for name, t := range class.Fields {
		obj.Fields[name] = zeroValue(&t)
	}

	if err := ctor.Body(tracer, obj, args); err != nil {
		return sut.Null, err
	}

	return sut.Value{Concrete: obj}, nil
}

func (e *ProgramExecutor) call(tracer *sut.Tracer, st *m.Statement, receiver sut.Value, args []sut.Value) (sut.Value, error) {
	class, ok := e.program.Class(st.Owner)
	if !ok {
		return sut.Null, fmt.Errorf("%w: class %s", ErrUnknownMember, st.Owner)
	}

	method, ok := class.Method(st.Member)
	if !ok {
		return sut.Null, fmt.Errorf("%w: method %s.%s", ErrUnknownMember, st.Owner, st.Member)
	}

	var this *sut.Object

	if !method.Static {
		obj, err := receiver.AsObject()
		if err != nil {
			return sut.Null, err
		}

		this = obj
	}

	return method.Body(tracer, this, args)
}

func (e *ProgramExecutor) field(st *m.Statement, receiver sut.Value) (sut.Value, error) {
	obj, err := receiver.AsObject()
	if err != nil {
		return sut.Null, err
	}

	value, ok := obj.Fields[st.Member]
	if !ok {
		return sut.Null, fmt.Errorf("%w: field %s.%s", ErrUnknownMember, st.Owner, st.Member)
	}

	return value, nil
}

func primitiveValue(tc *m.TestCase, pos int, st *m.Statement, symbolize bool) sut.Value {
	var (
		value sut.Value
		sort  symbolic.Sort
		sym   any
	)

	switch {
	case st.Type.Kind == m.Boolean:
		value = sut.Bool(st.Value.Bool)
		sort, sym = symbolic.IntSort, value.AsInt()
	case st.Type.IsIntegral() || st.Type.Kind == m.Enum:
		value = sut.Int(st.Value.Int)
		sort, sym = symbolic.IntSort, st.Value.Int
	case st.Type.Kind == m.Float:
		value = sut.Real(float64(float32(st.Value.Float)))
		sort, sym = symbolic.RealSort, value.Concrete
	case st.Type.IsFloating():
		value = sut.Real(st.Value.Float)
		sort, sym = symbolic.RealSort, st.Value.Float
	default:
		value = sut.Str(st.Value.Str)
		sort, sym = symbolic.StringSort, st.Value.Str
	}

	if symbolize && st.Type.Kind != m.Enum {
		value.Sym = &symbolic.Variable{Name: tc.VarName(pos) + symbolic.SymbolSuffix, S: sort, Concrete: sym}
	}

	return value
}

func zeroValue(t *m.Type) sut.Value {
	if t == nil {
		return sut.Null
	}

	switch {
	case t.Kind == m.Boolean:
		return sut.Bool(false)
	case t.IsIntegral() || t.Kind == m.Enum:
		return sut.Int(0)
	case t.IsFloating():
		return sut.Real(0)
	default:
		return sut.Null
	}
}

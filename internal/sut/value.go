// Package sut is a small instrumented runtime for the programs under test.
// Every value carries its concrete payload and, during concolic runs, the
// symbolic expression it was computed from.
package sut

import (
	"errors"
	"fmt"

	"climb.dev/pkg/climb/internal/symbolic"
)

var (
	// ErrNullPointer is thrown when a null receiver or argument is dereferenced.
	ErrNullPointer = errors.New("NullPointerException")
	// ErrIndexOutOfBounds is thrown on an invalid array index.
	ErrIndexOutOfBounds = errors.New("ArrayIndexOutOfBoundsException")
	// ErrIllegalArgument is thrown by programs rejecting their input.
	ErrIllegalArgument = errors.New("IllegalArgumentException")
)

// Object is an instance of a program class.
type Object struct {
	Class  string
	Fields map[string]Value
}

// ArrayValue is an array instance.
type ArrayValue struct {
	Elems []Value
}

// Value is a runtime value. Concrete is nil (null), bool, int64, float64,
// string, *Object or *ArrayValue. Enum constants are int64 ordinals.
type Value struct {
	Concrete any
	Sym      symbolic.Expr
}

// Null is the null value.
var Null = Value{}

// Int returns a concrete integer value.
func Int(v int64) Value { return Value{Concrete: v} }

// Real returns a concrete floating point value.
func Real(v float64) Value { return Value{Concrete: v} }

// Str returns a concrete string value.
func Str(v string) Value { return Value{Concrete: v} }

// Bool returns a concrete boolean value.
func Bool(v bool) Value { return Value{Concrete: v} }

// IsNull reports whether v is null.
func (v Value) IsNull() bool {
	return v.Concrete == nil
}

// Expr returns the symbolic expression of v, or its literal when v is concrete only.
func (v Value) Expr() symbolic.Expr {
	if v.Sym != nil {
		return v.Sym
	}

	return symbolic.Const(v.Concrete)
}

// AsInt returns the integer payload; booleans count as 0 or 1.
func (v Value) AsInt() int64 {
	switch c := v.Concrete.(type) {
	case int64:
		return c
	case float64:
		return int64(c)
	case bool:
		if c {
			return 1
		}
	}

	return 0
}

// AsFloat returns the numeric payload as float64.
func (v Value) AsFloat() float64 {
	f, _ := symbolic.ToFloat(v.Concrete)
	return f
}

// AsString returns the string payload.
func (v Value) AsString() string {
	s, _ := v.Concrete.(string)
	return s
}

// AsObject returns the object payload or ErrNullPointer.
func (v Value) AsObject() (*Object, error) {
	obj, ok := v.Concrete.(*Object)
	if !ok || obj == nil {
		return nil, ErrNullPointer
	}

	return obj, nil
}

// AsArray returns the array payload or ErrNullPointer.
func (v Value) AsArray() (*ArrayValue, error) {
	arr, ok := v.Concrete.(*ArrayValue)
	if !ok || arr == nil {
		return nil, ErrNullPointer
	}

	return arr, nil
}

// Plus adds two numeric values, tracking the symbolic sum.
func Plus(a, b Value) Value {
	return arith(symbolic.Add, a, b)
}

// Minus subtracts two numeric values, tracking the symbolic difference.
func Minus(a, b Value) Value {
	return arith(symbolic.Sub, a, b)
}

func arith(op symbolic.ArithOp, a, b Value) Value {
	var out Value

	ai, aInt := a.Concrete.(int64)
	bi, bInt := b.Concrete.(int64)

	switch {
	case aInt && bInt && op == symbolic.Add:
		out.Concrete = ai + bi
	case aInt && bInt:
		out.Concrete = ai - bi
	case op == symbolic.Add:
		out.Concrete = a.AsFloat() + b.AsFloat()
	default:
		out.Concrete = a.AsFloat() - b.AsFloat()
	}

	if a.Sym != nil || b.Sym != nil {
		out.Sym = symbolic.Arith{Op: op, L: a.Expr(), R: b.Expr()}
	}

	return out
}

// Length returns the length of a string value.
func Length(s Value) Value {
	out := Int(int64(len(s.AsString())))
	if s.Sym != nil {
		out.Sym = symbolic.StrLen{S: s.Sym}
	}

	return out
}

// Element reads arr[i].
func Element(arr *ArrayValue, i int) (Value, error) {
	if i < 0 || i >= len(arr.Elems) {
		return Null, fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfBounds, i, len(arr.Elems))
	}

	return arr.Elems[i], nil
}

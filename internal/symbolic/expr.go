// Package symbolic holds the expressions and constraints recorded by concolic
// execution, together with their evaluation and branch-distance semantics.
package symbolic

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// SymbolSuffix is appended to the test variable name of every symbolic input.
const SymbolSuffix = "__SYM"

// Sort is the value domain of an expression.
type Sort int

const (
	IntSort Sort = iota
	RealSort
	StringSort
)

func (s Sort) String() string {
	switch s {
	case IntSort:
		return "int"
	case RealSort:
		return "real"
	case StringSort:
		return "string"
	default:
		return "unknown"
	}
}

// Expr is a symbolic expression. Integer expressions evaluate to int64, real
// ones to float64 and string ones to string.
type Expr interface {
	Sort() Sort
	String() string
	collect(into map[string]*Variable)
}

// Variable is a symbolic input with the concrete value it had during execution.
type Variable struct {
	Name     string
	S        Sort
	Concrete any
}

func (v *Variable) Sort() Sort     { return v.S }
func (v *Variable) String() string { return v.Name }

func (v *Variable) collect(into map[string]*Variable) {
	if _, ok := into[v.Name]; !ok {
		into[v.Name] = v
	}
}

// IntConst is an integer literal.
type IntConst struct{ V int64 }

func (c IntConst) Sort() Sort                   { return IntSort }
func (c IntConst) String() string               { return strconv.FormatInt(c.V, 10) }
func (c IntConst) collect(map[string]*Variable) {}

// RealConst is a floating point literal.
type RealConst struct{ V float64 }

func (c RealConst) Sort() Sort                   { return RealSort }
func (c RealConst) String() string               { return strconv.FormatFloat(c.V, 'g', -1, 64) }
func (c RealConst) collect(map[string]*Variable) {}

// StrConst is a string literal.
type StrConst struct{ V string }

func (c StrConst) Sort() Sort                   { return StringSort }
func (c StrConst) String() string               { return strconv.Quote(c.V) }
func (c StrConst) collect(map[string]*Variable) {}

// ArithOp is a binary arithmetic operator.
type ArithOp int

const (
	Add ArithOp = iota
	Sub
	Mul
	Div
	Rem
)

var arithSymbols = [...]string{Add: "+", Sub: "-", Mul: "*", Div: "/", Rem: "%"}

// Arith is a binary arithmetic expression. It is real if either side is real.
type Arith struct {
	Op   ArithOp
	L, R Expr
}

func (a Arith) Sort() Sort {
	if a.L.Sort() == RealSort || a.R.Sort() == RealSort {
		return RealSort
	}

	return IntSort
}

func (a Arith) String() string {
	return fmt.Sprintf("(%s %s %s)", a.L, arithSymbols[a.Op], a.R)
}

func (a Arith) collect(into map[string]*Variable) {
	a.L.collect(into)
	a.R.collect(into)
}

// StrLen is the length of a string expression.
type StrLen struct{ S Expr }

func (s StrLen) Sort() Sort                         { return IntSort }
func (s StrLen) String() string                     { return fmt.Sprintf("len(%s)", s.S) }
func (s StrLen) collect(into map[string]*Variable) { s.S.collect(into) }

// CharAt is the character code of a string at an index.
type CharAt struct{ S, I Expr }

func (c CharAt) Sort() Sort     { return IntSort }
func (c CharAt) String() string { return fmt.Sprintf("charAt(%s, %s)", c.S, c.I) }

func (c CharAt) collect(into map[string]*Variable) {
	c.S.collect(into)
	c.I.collect(into)
}

// StrOp is a boolean string predicate.
type StrOp int

const (
	Equals StrOp = iota
	Contains
	StartsWith
)

var strOpNames = [...]string{Equals: "equals", Contains: "contains", StartsWith: "startsWith"}

// StrCmp evaluates a string predicate to 1 (true) or 0 (false).
type StrCmp struct {
	Op   StrOp
	L, R Expr
}

func (s StrCmp) Sort() Sort     { return IntSort }
func (s StrCmp) String() string { return fmt.Sprintf("%s(%s, %s)", strOpNames[s.Op], s.L, s.R) }

func (s StrCmp) collect(into map[string]*Variable) {
	s.L.collect(into)
	s.R.collect(into)
}

// Variables returns the variables of an expression keyed by name.
func Variables(e Expr) map[string]*Variable {
	vars := map[string]*Variable{}
	e.collect(vars)

	return vars
}

// Const returns the literal expression for a concrete value.
func Const(v any) Expr {
	switch value := v.(type) {
	case bool:
		if value {
			return IntConst{V: 1}
		}

		return IntConst{V: 0}
	case int64:
		return IntConst{V: value}
	case int:
		return IntConst{V: int64(value)}
	case float64:
		return RealConst{V: value}
	case string:
		return StrConst{V: value}
	default:
		return IntConst{V: 0}
	}
}

func sortedNames(vars map[string]*Variable) []string {
	return slices.Sorted(maps.Keys(vars))
}

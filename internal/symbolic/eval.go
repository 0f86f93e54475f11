package symbolic

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrEvaluation is returned when an expression has no value (division by zero,
// index out of range, mismatched sorts).
var ErrEvaluation = errors.New("evaluation error")

// Assignment maps variable names to values. Variables without an entry
// evaluate to their concrete value.
type Assignment map[string]any

// Eval computes the value of e under a.
func Eval(e Expr, a Assignment) (any, error) {
	switch expr := e.(type) {
	case *Variable:
		if v, ok := a[expr.Name]; ok {
			return v, nil
		}

		return expr.Concrete, nil
	case IntConst:
		return expr.V, nil
	case RealConst:
		return expr.V, nil
	case StrConst:
		return expr.V, nil
	case Arith:
		return evalArith(expr, a)
	case StrLen:
		s, err := evalString(expr.S, a)
		if err != nil {
			return nil, err
		}

		return int64(len(s)), nil
	case CharAt:
		s, err := evalString(expr.S, a)
		if err != nil {
			return nil, err
		}

		index, err := Eval(expr.I, a)
		if err != nil {
			return nil, err
		}

		i, ok := index.(int64)
		if !ok || i < 0 || i >= int64(len(s)) {
			return nil, fmt.Errorf("%w: index %v out of range", ErrEvaluation, index)
		}

		return int64(s[i]), nil
	case StrCmp:
		l, err := evalString(expr.L, a)
		if err != nil {
			return nil, err
		}

		r, err := evalString(expr.R, a)
		if err != nil {
			return nil, err
		}

		if StrPredicate(expr.Op, l, r) {
			return int64(1), nil
		}

		return int64(0), nil
	default:
		return nil, fmt.Errorf("%w: unsupported expression %T", ErrEvaluation, e)
	}
}

// StrPredicate applies a string predicate.
func StrPredicate(op StrOp, l, r string) bool {
	switch op {
	case Contains:
		return strings.Contains(l, r)
	case StartsWith:
		return strings.HasPrefix(l, r)
	default:
		return l == r
	}
}

func evalString(e Expr, a Assignment) (string, error) {
	v, err := Eval(e, a)
	if err != nil {
		return "", err
	}

	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is not a string", ErrEvaluation, e)
	}

	return s, nil
}

func evalArith(expr Arith, a Assignment) (any, error) {
	l, err := Eval(expr.L, a)
	if err != nil {
		return nil, err
	}

	r, err := Eval(expr.R, a)
	if err != nil {
		return nil, err
	}

	if expr.Sort() == RealSort {
		lf, lok := ToFloat(l)
		rf, rok := ToFloat(r)

		if !lok || !rok {
			return nil, fmt.Errorf("%w: non numeric operand in %s", ErrEvaluation, expr)
		}

		return arithReal(expr.Op, lf, rf)
	}

	li, lok := l.(int64)
	ri, rok := r.(int64)

	if !lok || !rok {
		return nil, fmt.Errorf("%w: non integer operand in %s", ErrEvaluation, expr)
	}

	switch expr.Op {
	case Add:
		return li + ri, nil
	case Sub:
		return li - ri, nil
	case Mul:
		return li * ri, nil
	case Div, Rem:
		if ri == 0 {
			return nil, fmt.Errorf("%w: division by zero", ErrEvaluation)
		}

		if expr.Op == Div {
			return li / ri, nil
		}

		return li % ri, nil
	default:
		return nil, fmt.Errorf("%w: unknown operator", ErrEvaluation)
	}
}

func arithReal(op ArithOp, l, r float64) (any, error) {
	switch op {
	case Add:
		return l + r, nil
	case Sub:
		return l - r, nil
	case Mul:
		return l * r, nil
	case Div:
		return l / r, nil
	case Rem:
		return math.Mod(l, r), nil
	default:
		return nil, fmt.Errorf("%w: unknown operator", ErrEvaluation)
	}
}

// ToFloat converts a numeric value to float64.
func ToFloat(v any) (float64, bool) {
	switch value := v.(type) {
	case int64:
		return float64(value), true
	case int:
		return float64(value), true
	case float64:
		return value, true
	case bool:
		if value {
			return 1, true
		}

		return 0, true
	default:
		return 0, false
	}
}

package symbolic

import (
	"fmt"
	"strings"
)

// Cmp is a comparison operator.
type Cmp int

const (
	EQ Cmp = iota
	NE
	LT
	LE
	GT
	GE
)

var cmpSymbols = [...]string{EQ: "==", NE: "!=", LT: "<", LE: "<=", GT: ">", GE: ">="}

func (c Cmp) String() string {
	return cmpSymbols[c]
}

// Negate returns the complementary operator.
func (c Cmp) Negate() Cmp {
	switch c {
	case EQ:
		return NE
	case NE:
		return EQ
	case LT:
		return GE
	case LE:
		return GT
	case GT:
		return LE
	default:
		return LT
	}
}

// Holds applies the operator to a numeric difference left - right.
func (c Cmp) Holds(diff float64) bool {
	switch c {
	case EQ:
		return diff == 0
	case NE:
		return diff != 0
	case LT:
		return diff < 0
	case LE:
		return diff <= 0
	case GT:
		return diff > 0
	default:
		return diff >= 0
	}
}

// Constraint is a comparison between two expressions.
type Constraint struct {
	Left  Expr
	Cmp   Cmp
	Right Expr
}

// Negate returns the constraint that holds exactly when c does not.
func (c Constraint) Negate() Constraint {
	return Constraint{Left: c.Left, Cmp: c.Cmp.Negate(), Right: c.Right}
}

// Variables returns every variable the constraint mentions, keyed by name.
func (c Constraint) Variables() map[string]*Variable {
	vars := Variables(c.Left)
	c.Right.collect(vars)

	return vars
}

// SharesVariable reports whether the constraint mentions any of the names.
func (c Constraint) SharesVariable(names map[string]bool) bool {
	for name := range c.Variables() {
		if names[name] {
			return true
		}
	}

	return false
}

func (c Constraint) String() string {
	return fmt.Sprintf("%s %s %s", c.Left, c.Cmp, c.Right)
}

// BranchCondition is one decision of a concolic run: the constraint that was
// true when the branch was taken and every decision taken before it.
type BranchCondition struct {
	BranchID int
	Local    Constraint
	Reaching []Constraint
}

// PathCondition is the ordered list of decisions of one run.
type PathCondition []BranchCondition

// QueryString renders a constraint list canonically, one constraint per line.
func QueryString(constraints []Constraint) string {
	lines := make([]string, len(constraints))
	for i, c := range constraints {
		lines[i] = c.String()
	}

	return strings.Join(lines, "\n")
}

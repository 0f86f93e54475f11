package symbolic

import (
	"math"
	"strings"
)

// MaxDistance is the distance of a constraint that cannot be evaluated.
const MaxDistance = 1e12

// Distance is how far a is from satisfying c; zero iff c holds.
func Distance(c Constraint, a Assignment) float64 {
	if pred, ok := c.Left.(StrCmp); ok {
		if k, ok := c.Right.(IntConst); ok && (c.Cmp == EQ || c.Cmp == NE) {
			wantTrue := (c.Cmp == EQ) == (k.V != 0)
			return predicateDistance(pred, wantTrue, a)
		}
	}

	l, err := Eval(c.Left, a)
	if err != nil {
		return MaxDistance
	}

	r, err := Eval(c.Right, a)
	if err != nil {
		return MaxDistance
	}

	ls, lok := l.(string)
	rs, rok := r.(string)

	if lok && rok {
		switch c.Cmp {
		case EQ:
			return EditDistance(ls, rs)
		case NE:
			if ls != rs {
				return 0
			}

			return 1
		default:
			return NumericDistance(c.Cmp, float64(strings.Compare(ls, rs)))
		}
	}

	lf, lok := ToFloat(l)
	rf, rok := ToFloat(r)

	if !lok || !rok {
		return MaxDistance
	}

	return NumericDistance(c.Cmp, lf-rf)
}

// Satisfied reports whether c holds under a.
func Satisfied(c Constraint, a Assignment) bool {
	return Distance(c, a) == 0
}

// NumericDistance is the branch distance of "left cmp right" given left - right.
func NumericDistance(cmp Cmp, diff float64) float64 {
	switch cmp {
	case EQ:
		return math.Abs(diff)
	case NE:
		if diff != 0 {
			return 0
		}

		return 1
	case LT:
		if diff < 0 {
			return 0
		}

		return diff + 1
	case LE:
		if diff <= 0 {
			return 0
		}

		return diff
	case GT:
		if diff > 0 {
			return 0
		}

		return -diff + 1
	default:
		if diff >= 0 {
			return 0
		}

		return -diff
	}
}

// Normalize maps a distance in [0, inf) to [0, 1).
func Normalize(d float64) float64 {
	return d / (d + 1)
}

func predicateDistance(pred StrCmp, wantTrue bool, a Assignment) float64 {
	l, err := evalString(pred.L, a)
	if err != nil {
		return MaxDistance
	}

	r, err := evalString(pred.R, a)
	if err != nil {
		return MaxDistance
	}

	holds := StrPredicate(pred.Op, l, r)

	switch {
	case holds == wantTrue:
		return 0
	case !wantTrue:
		return 1
	}

	switch pred.Op {
	case Contains:
		return ContainsDistance(l, r)
	case StartsWith:
		return prefixDistance(l, r)
	default:
		return EditDistance(l, r)
	}
}

func charDistance(a, b byte) float64 {
	if a == b {
		return 0
	}

	d := math.Abs(float64(a) - float64(b))

	return Normalize(d)
}

// EditDistance is the Levenshtein distance where substitutions cost the
// normalized difference of the character codes.
func EditDistance(s, t string) float64 {
	return alignment(t, s, false, false)
}

// ContainsDistance is the cheapest edit making pattern a substring of text.
func ContainsDistance(text, pattern string) float64 {
	return alignment(pattern, text, true, true)
}

func prefixDistance(text, prefix string) float64 {
	return alignment(prefix, text, false, true)
}

// alignment aligns pattern against text; freeStart and freeEnd make skipping
// leading or trailing text characters free.
func alignment(pattern, text string, freeStart, freeEnd bool) float64 {
	prev := make([]float64, len(text)+1)
	curr := make([]float64, len(text)+1)

	for j := range prev {
		if !freeStart {
			prev[j] = float64(j)
		}
	}

	for i := 1; i <= len(pattern); i++ {
		curr[0] = float64(i)

		for j := 1; j <= len(text); j++ {
			curr[j] = min(
				prev[j]+1,
				curr[j-1]+1,
				prev[j-1]+charDistance(pattern[i-1], text[j-1]),
			)
		}

		prev, curr = curr, prev
	}

	if !freeEnd {
		return prev[len(text)]
	}

	best := prev[0]
	for _, d := range prev {
		best = min(best, d)
	}

	return best
}

package domain

import (
	"context"
	"math"

	m "climb.dev/pkg/climb/internal/model"
)

const (
	floatDigits  = 7
	doubleDigits = 15
)

// FloatMover climbs float and double values, first with integral steps and
// then digit by digit. A value rounded to fewer digits at no cost is kept
// even when the fitness did not improve.
type FloatMover struct{}

func (FloatMover) Name() string { return "float" }

func (FloatMover) Search(ctx context.Context, env *Env, c *m.Candidate, pos int) Outcome {
	improved := sliceSearch(ctx, env, c, pos, true, func(sc *m.Candidate, spos int) {
		climbFloatDigits(ctx, env, sc, spos)
	})

	return Outcome{Improved: improved}
}

func climbFloatDigits(ctx context.Context, env *Env, c *m.Candidate, pos int) bool {
	relevant := false
	improved := climbFloat(ctx, env, c, pos, 1, &relevant)

	if !relevant {
		return false
	}

	digits := doubleDigits
	if c.Test.Statement(pos).Type.Kind == m.Float {
		digits = floatDigits
	}

	for precision := 1; precision <= digits; precision++ {
		if env.exhausted(ctx) {
			break
		}

		st := c.Test.Statement(pos)

		rounded := storeFloat(st.Type, roundHalfEven(st.Value.Float, precision))
		if rounded != st.Value.Float {
			backup := backupValue(c, pos)
			st.Value.Float = rounded
			probeNotWorse(ctx, env, c, backup)
		}

		if climbFloat(ctx, env, c, pos, math.Pow10(-precision), &relevant) {
			improved = true
		}
	}

	return improved
}

func climbFloat(ctx context.Context, env *Env, c *m.Candidate, pos int, step float64, relevant *bool) bool {
	improved := false

	for !env.exhausted(ctx) {
		if !stepFloat(ctx, env, c, pos, step, relevant) && !stepFloat(ctx, env, c, pos, -step, relevant) {
			break
		}

		improved = true
	}

	return improved
}

func stepFloat(ctx context.Context, env *Env, c *m.Candidate, pos int, delta float64, relevant *bool) bool {
	improved := false

	for !env.exhausted(ctx) {
		st := c.Test.Statement(pos)

		next := storeFloat(st.Type, st.Value.Float+delta)
		if next == st.Value.Float || math.IsInf(next, 0) || math.IsNaN(next) {
			break
		}

		backup := backupValue(c, pos)
		st.Value.Float = next

		change := probeChange(ctx, env, c, backup)
		if change != 0 {
			*relevant = true
		}

		if change <= 0 {
			break
		}

		improved = true
		delta *= 2
	}

	return improved
}

func storeFloat(t m.Type, v float64) float64 {
	if t.Kind == m.Float {
		return float64(float32(v))
	}

	return v
}

func roundHalfEven(v float64, precision int) float64 {
	scale := math.Pow10(precision)

	scaled := v * scale
	if math.IsInf(scaled, 0) || math.IsNaN(scaled) {
		return v
	}

	return math.RoundToEven(scaled) / scale
}

package domain

import (
	"context"
	"log/slog"
	"math"

	m "climb.dev/pkg/climb/internal/model"
)

// IntegerMover climbs byte, short, int, long and char values.
type IntegerMover struct{}

func (IntegerMover) Name() string { return "integer" }

// Search runs the alternating variable method on the slice of pos.
func (IntegerMover) Search(ctx context.Context, env *Env, c *m.Candidate, pos int) Outcome {
	improved := sliceSearch(ctx, env, c, pos, false, func(sc *m.Candidate, spos int) {
		climbInteger(ctx, env, sc, spos)
	})

	return Outcome{Improved: improved}
}

// sliceSearch runs search on the dependency slice of pos and copies the
// resulting value back onto c. The copy is kept if it improves c, or if it
// ties and keepTies is set; only an improvement is reported.
func sliceSearch(ctx context.Context, env *Env, c *m.Candidate, pos int, keepTies bool, search func(sc *m.Candidate, spos int)) bool {
	env.ensureEvaluated(ctx, c)

	if env.exhausted(ctx) {
		return false
	}

	slice, spos := c.Test.Slice(pos)
	sc := m.NewCandidate(slice)
	sc.ID = c.ID
	env.ensureEvaluated(ctx, sc)

	search(sc, spos)

	value := sc.Test.Statement(spos).Value
	if value == c.Test.Statement(pos).Value {
		return false
	}

	backup := backupValue(c, pos)
	c.Test.Statement(pos).Value = value
	c.Changed = true

	change := env.Objective.HasChanged(ctx, c)
	if change > 0 {
		return true
	}

	if change == 0 && keepTies {
		slog.Debug("Kept simpler value", "candidate", c.ID, "position", pos)
		return false
	}

	backup.restore(c)
	slog.Debug("Slice improvement lost on full test", "candidate", c.ID, "position", pos)

	return false
}

func climbInteger(ctx context.Context, env *Env, c *m.Candidate, pos int) bool {
	improved := false

	for !env.exhausted(ctx) {
		if !stepInteger(ctx, env, c, pos, 1) && !stepInteger(ctx, env, c, pos, -1) {
			break
		}

		improved = true
	}

	return improved
}

// stepInteger applies delta and keeps doubling it while the fitness improves.
func stepInteger(ctx context.Context, env *Env, c *m.Candidate, pos int, delta int64) bool {
	improved := false

	for !env.exhausted(ctx) {
		st := c.Test.Statement(pos)

		next := st.Type.Clamp(saturatingAdd(st.Value.Int, delta))
		if next == st.Value.Int {
			break
		}

		backup := backupValue(c, pos)
		st.Value.Int = next

		if !probe(ctx, env, c, backup) {
			break
		}

		improved = true
		delta = saturatingAdd(delta, delta)
	}

	return improved
}

func saturatingAdd(a, b int64) int64 {
	switch {
	case b > 0 && a > math.MaxInt64-b:
		return math.MaxInt64
	case b < 0 && a < math.MinInt64-b:
		return math.MinInt64
	default:
		return a + b
	}
}

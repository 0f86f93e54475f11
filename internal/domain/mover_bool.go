package domain

import (
	"context"

	m "climb.dev/pkg/climb/internal/model"
)

// BooleanMover flips a boolean once.
type BooleanMover struct{}

func (BooleanMover) Name() string { return "boolean" }

// Search keeps the flipped value only on strict improvement.
func (BooleanMover) Search(ctx context.Context, env *Env, c *m.Candidate, pos int) Outcome {
	env.ensureEvaluated(ctx, c)

	if env.exhausted(ctx) {
		return Outcome{}
	}

	backup := backupValue(c, pos)
	st := c.Test.Statement(pos)
	st.Value.Bool = !st.Value.Bool

	return Outcome{Improved: probe(ctx, env, c, backup)}
}

// EnumMover scans the declared constants of an enum in order.
type EnumMover struct{}

func (EnumMover) Name() string { return "enum" }

// Search installs the first constant that improves the fitness.
func (EnumMover) Search(ctx context.Context, env *Env, c *m.Candidate, pos int) Outcome {
	env.ensureEvaluated(ctx, c)

	original := c.Test.Statement(pos).Value.Int

	for ordinal := range len(c.Test.Statement(pos).Type.Constants) {
		if env.exhausted(ctx) {
			break
		}

		if int64(ordinal) == original {
			continue
		}

		backup := backupValue(c, pos)
		c.Test.Statement(pos).Value.Int = int64(ordinal)

		if probe(ctx, env, c, backup) {
			return Outcome{Improved: true}
		}
	}

	return Outcome{}
}

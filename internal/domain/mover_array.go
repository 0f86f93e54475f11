package domain

import (
	"context"
	"log/slog"
	"slices"

	m "climb.dev/pkg/climb/internal/model"
)

// ArrayMover strips element assignments that do not matter, climbs the
// array length and then searches every element that was made explicit.
type ArrayMover struct{}

func (ArrayMover) Name() string { return "array" }

func (ArrayMover) Search(ctx context.Context, env *Env, c *m.Candidate, pos int) Outcome {
	env.ensureEvaluated(ctx, c)

	size := c.Test.Size()
	backup := backupCandidate(c)
	id := c.Test.Statement(pos).ID

	improved := stripAssignments(ctx, env, c, pos)
	pos = c.Test.PositionOf(id)

	if climbLength(ctx, env, c, pos) {
		improved = true
	}

	if expandArray(ctx, env, c, pos) {
		improved = true
	}

	if !improved {
		backup.restore(c)
		return Outcome{}
	}

	return Outcome{Improved: true, PositionDelta: c.Test.Size() - size}
}

// stripAssignments removes, last first, every assignment into the array at
// pos whose removal does not worsen the fitness. A value statement left
// unused by the removal goes with it.
func stripAssignments(ctx context.Context, env *Env, c *m.Candidate, pos int) bool {
	improved := false

	ids := make([]int, 0)
	for _, j := range c.Test.AssignmentsTo(pos) {
		ids = append(ids, c.Test.Statement(j).ID)
	}

	for _, id := range slices.Backward(ids) {
		if env.exhausted(ctx) {
			break
		}

		j := c.Test.PositionOf(id)
		if j < 0 {
			continue
		}

		backup := backupCandidate(c)
		value := c.Test.Statement(j).Args[0]

		if err := c.Test.Remove(j); err != nil {
			slog.Error("Failed to remove array assignment", "candidate", c.ID, "position", j, "error", err)
			continue
		}

		if value >= 0 && c.Test.Statement(int(value)).Kind != m.ArrayStatement && !c.Test.IsReferenced(int(value)) {
			if err := c.Test.Remove(int(value)); err != nil {
				slog.Error("Failed to remove assigned value", "candidate", c.ID, "position", value, "error", err)
			}
		}

		c.Changed = true

		if env.Objective.HasNotWorsened(ctx, c) {
			improved = true
			continue
		}

		backup.restore(c)
	}

	return improved
}

func climbLength(ctx context.Context, env *Env, c *m.Candidate, pos int) bool {
	improved := false

	for !env.exhausted(ctx) {
		if !stepLength(ctx, env, c, pos, 1) && !stepLength(ctx, env, c, pos, -1) {
			break
		}

		improved = true
	}

	return improved
}

func stepLength(ctx context.Context, env *Env, c *m.Candidate, pos, delta int) bool {
	improved := false

	for !env.exhausted(ctx) {
		st := c.Test.Statement(pos)

		next := min(max(st.Length+delta, 0), env.Config.MaxArrayLength)
		if next == st.Length {
			break
		}

		backup := backupValue(c, pos)
		st.Length = next

		if !probe(ctx, env, c, backup) {
			break
		}

		improved = true
		delta *= 2
	}

	return improved
}

// expandArray adds a default value and an assignment for every element
// without one, then runs the element movers on the new values.
func expandArray(ctx context.Context, env *Env, c *m.Candidate, pos int) bool {
	if env.exhausted(ctx) {
		return false
	}

	inserted := c.Test.ExpandArray(pos)
	if len(inserted) == 0 {
		return false
	}

	c.Changed = true
	env.ensureEvaluated(ctx, c)

	ids := make([]int, len(inserted))
	for i, p := range inserted {
		ids[i] = c.Test.Statement(p).ID
	}

	improved := false

	for _, id := range ids {
		if env.exhausted(ctx) {
			break
		}

		p := c.Test.PositionOf(id)
		if p < 0 {
			continue
		}

		mover := MoverFor(env.Config, c.Test.Statement(p))
		if mover == nil {
			continue
		}

		if mover.Search(ctx, env, c, p).Improved {
			improved = true
		}
	}

	return improved
}

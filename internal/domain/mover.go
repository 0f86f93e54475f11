package domain

import (
	"context"

	m "climb.dev/pkg/climb/internal/model"
)

// Outcome is the result of one mover invocation.
type Outcome struct {
	Improved bool
	// PositionDelta is the test length after the search minus the length before it.
	PositionDelta int
	// Replacement is the ID of the statement that superseded the searched
	// one. It is only meaningful when the searched statement is gone.
	Replacement int
}

// Mover searches the value produced by one statement of a candidate.
//
// A mover that returns without improvement leaves the candidate exactly as
// it found it, once evaluated. Movers keep no state between calls.
type Mover interface {
	Name() string
	Search(ctx context.Context, env *Env, c *m.Candidate, pos int) Outcome
}

// probe evaluates the tentative change already applied to c and reports
// whether it strictly improved the fitness. A rejected change is undone.
func probe(ctx context.Context, env *Env, c *m.Candidate, backup valueBackup) bool {
	c.Changed = true

	if env.Objective.HasImproved(ctx, c) {
		return true
	}

	backup.restore(c)

	return false
}

// probeNotWorse is probeChange keeping ties as well.
func probeNotWorse(ctx context.Context, env *Env, c *m.Candidate, backup valueBackup) int {
	c.Changed = true

	change := env.Objective.HasChanged(ctx, c)
	if change < 0 {
		backup.restore(c)
	}

	return change
}

// probeChange is probe returning the signed fitness change. Only an
// improvement is kept.
func probeChange(ctx context.Context, env *Env, c *m.Candidate, backup valueBackup) int {
	c.Changed = true

	change := env.Objective.HasChanged(ctx, c)
	if change <= 0 {
		backup.restore(c)
	}

	return change
}

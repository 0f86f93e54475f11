package domain

import (
	"context"
	"log/slog"

	m "climb.dev/pkg/climb/internal/model"
)

// TestSearch refines the statements of one candidate.
type TestSearch interface {
	Search(ctx context.Context, env *Env, c *m.Candidate) bool
}

// NewTestSearch returns the selective search when cfg asks for it and the
// standard search otherwise.
func NewTestSearch(cfg Config, scope CoverageScope) TestSearch {
	if cfg.Selective {
		return SelectiveSearch{DSE: DSEGenerator{Scope: scope}}
	}

	return StandardSearch{DSE: DSEGenerator{Scope: scope}}
}

// StandardSearch visits every relevant statement from the last one that can
// matter down to the first.
type StandardSearch struct {
	DSE DSEGenerator
}

func (s StandardSearch) Search(ctx context.Context, env *Env, c *m.Candidate) bool {
	sweep := startSweep(ctx, env, c)

	for i := sweep.horizon; i >= 0; i-- {
		if sweep.stopped(ctx) {
			break
		}

		if i >= c.Test.Size() {
			slog.Error("Test case shrank during local search", "candidate", c.ID, "position", i, "size", c.Test.Size())
			break
		}

		i = sweep.visit(ctx, i)
	}

	return sweep.finish(ctx, s.DSE)
}

// SelectiveSearch only visits the statements recorded in the mutation
// history of the candidate and clears it.
type SelectiveSearch struct {
	DSE DSEGenerator
}

func (s SelectiveSearch) Search(ctx context.Context, env *Env, c *m.Candidate) bool {
	sweep := startSweep(ctx, env, c)
	visited := map[int]bool{}

	for _, entry := range c.History {
		if sweep.stopped(ctx) {
			break
		}

		if entry.Kind == m.Deletion || visited[entry.StatementID] {
			continue
		}

		visited[entry.StatementID] = true

		pos := c.Test.PositionOf(entry.StatementID)
		if pos < 0 || pos > sweep.horizon {
			continue
		}

		sweep.visit(ctx, pos)
	}

	c.History.Clear()

	return sweep.finish(ctx, s.DSE)
}

// sweep is the state of one orchestrator run over a candidate.
type sweep struct {
	env      *Env
	c        *m.Candidate
	before   float64
	horizon  int
	improved bool
	// deferred holds the IDs of statements left to the concolic engine.
	deferred []int
}

func startSweep(ctx context.Context, env *Env, c *m.Candidate) *sweep {
	if env.Budget != nil {
		env.Budget.CountLocalSearchOnTest()
	}

	env.Stats.CountLocalSearch()

	horizon := c.Test.Size() - 1
	if !c.Changed && c.LastResult != nil && c.LastResult.HasException() {
		horizon = min(horizon, c.LastResult.ExceptionPosition)
	}

	return &sweep{
		env:     env,
		c:       c,
		before:  env.ensureEvaluated(ctx, c),
		horizon: horizon,
	}
}

func (s *sweep) stopped(ctx context.Context) bool {
	return s.env.exhausted(ctx) || s.env.Objective.IsDone()
}

// visit searches the statement at pos and returns where that statement, or
// the statement that replaced it, stands afterwards. Lower positions keep
// their statements whatever the mover inserted or removed elsewhere.
func (s *sweep) visit(ctx context.Context, pos int) int {
	st := s.c.Test.Statement(pos)
	if !s.relevant(pos) {
		return pos
	}

	if s.deferToDSE(st) {
		s.deferred = append(s.deferred, st.ID)
		return pos
	}

	mover := MoverFor(s.env.Config, st)
	if mover == nil {
		return pos
	}

	id := st.ID

	out := mover.Search(ctx, s.env, s.c, pos)
	s.env.Stats.CountMover(mover.Name(), out.Improved)

	if out.Improved {
		s.improved = true
		slog.Debug("Mover improved candidate", "candidate", s.c.ID, "mover", mover.Name(), "position", pos)
	}

	if next := s.c.Test.PositionOf(id); next >= 0 {
		return next
	}

	if next := s.c.Test.PositionOf(out.Replacement); next >= 0 {
		return next
	}

	slog.Error("Searched statement vanished", "candidate", s.c.ID, "position", pos, "delta", out.PositionDelta)

	return min(pos, s.c.Test.Size()-1)
}

// relevant reports whether the value at pos is used later or is an instance
// of the class under test.
func (s *sweep) relevant(pos int) bool {
	if s.c.Test.IsReferenced(pos) {
		return true
	}

	t := s.c.Test.Statement(pos).Type

	return s.env.Config.TargetClass != "" && t.Kind == m.Object && t.Name == s.env.Config.TargetClass
}

func (s *sweep) deferToDSE(st *m.Statement) bool {
	if s.env.Concolic == nil || s.env.Solver == nil {
		return false
	}

	if st.Kind != m.PrimitiveStatement || st.Type.Kind == m.Enum {
		return false
	}

	return s.env.Rand.Float64() < s.env.Config.DSEProbability
}

func (s *sweep) finish(ctx context.Context, dse DSEGenerator) bool {
	if len(s.deferred) > 0 && !s.stopped(ctx) {
		positions := make([]int, 0, len(s.deferred))

		for _, id := range s.deferred {
			if pos := s.c.Test.PositionOf(id); pos >= 0 {
				positions = append(positions, pos)
			}
		}

		if dse.Generate(ctx, s.env, s.c, positions) {
			s.improved = true
		}
	}

	after := s.env.ensureEvaluated(ctx, s.c)
	if after > s.before {
		slog.Error("Local search worsened fitness", "candidate", s.c.ID, "before", s.before, "after", after)
	}

	return s.improved
}

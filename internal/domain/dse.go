package domain

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	m "climb.dev/pkg/climb/internal/model"
	"climb.dev/pkg/climb/internal/solver"
	"climb.dev/pkg/climb/internal/symbolic"
)

// CoverageScope is the set of executions consulted to decide whether a
// branch is already covered both ways. An empty scope means the candidate's
// own last execution.
type CoverageScope struct {
	Results []*m.ExecutionResult
}

func (s CoverageScope) coveredTwoWays(branch int, own *m.ExecutionResult) bool {
	results := s.Results
	if len(results) == 0 {
		results = []*m.ExecutionResult{own}
	}

	covered, notCovered := false, false

	for _, r := range results {
		if r == nil {
			continue
		}

		covered = covered || r.Trace.CoveredTrue(branch)
		notCovered = notCovered || r.Trace.CoveredFalse(branch)
	}

	return covered && notCovered
}

// DSEGenerator replaces hill climbing by constraint solving on the path a
// candidate takes.
type DSEGenerator struct {
	Scope CoverageScope
}

// Generate negates, one at a time, the branch decisions that depend on the
// values produced at positions and installs the first solution improving c.
// It reports whether c was improved; otherwise c is left as it was.
func (g DSEGenerator) Generate(ctx context.Context, env *Env, c *m.Candidate, positions []int) bool {
	if env.Concolic == nil || env.Solver == nil || len(positions) == 0 {
		return false
	}

	env.ensureEvaluated(ctx, c)

	test := c.Test.Clone()

	path, err := env.Concolic.ExecuteConcolic(ctx, test)
	if err != nil {
		slog.Debug("Concolic execution failed", "candidate", c.ID, "error", err)
		return false
	}

	targets := make(map[string]bool, len(positions))
	for _, pos := range positions {
		targets[test.VarName(pos)+symbolic.SymbolSuffix] = true
	}

	for _, bc := range path {
		if env.exhausted(ctx) {
			break
		}

		if env.Config.SkipCoveredTwoWays && g.Scope.coveredTwoWays(bc.BranchID, c.LastResult) {
			continue
		}

		if !bc.Local.SharesVariable(targets) {
			continue
		}

		query := coneOfInfluence(bc.Reaching, bc.Local.Negate())
		if len(query) == 0 {
			continue
		}

		result := g.solve(ctx, env, query)
		if result == nil || result.IsUNSAT() {
			continue
		}

		useful := installModel(ctx, env, c, result.Model)
		env.Stats.CountDSETest(useful)

		if useful {
			slog.Debug("Solver model improved candidate", "candidate", c.ID, "branch", bc.BranchID)
			return true
		}
	}

	return false
}

func (g DSEGenerator) solve(ctx context.Context, env *Env, query []symbolic.Constraint) *solver.Result {
	start := time.Now()

	var (
		result *solver.Result
		err    error
	)

	if env.Cache != nil {
		result, err = env.Cache.Solve(ctx, env.Solver, query)
	} else {
		result, err = env.Solver.Solve(ctx, query)
	}

	elapsed := time.Since(start)

	switch {
	case err != nil:
		slog.Debug("Solver failed", "constraints", len(query), "error", err)
		env.Stats.CountQuery(QueryError, elapsed)

		return nil
	case result == nil:
		env.Stats.CountQuery(QueryNoResult, elapsed)
	case result.IsUNSAT():
		env.Stats.CountQuery(QueryUnsat, elapsed)
	default:
		env.Stats.CountQuery(QuerySat, elapsed)
	}

	return result
}

// coneOfInfluence returns the constraints of reaching that transitively
// share a variable with target, in their original order, followed by target.
func coneOfInfluence(reaching []symbolic.Constraint, target symbolic.Constraint) []symbolic.Constraint {
	deps := map[string]bool{}
	for name := range target.Variables() {
		deps[name] = true
	}

	if len(deps) == 0 {
		return nil
	}

	picked := make([]bool, len(reaching))

	for grown := true; grown; {
		grown = false

		for j := len(reaching) - 1; j >= 0; j-- {
			if picked[j] || !reaching[j].SharesVariable(deps) {
				continue
			}

			picked[j] = true
			grown = true

			for name := range reaching[j].Variables() {
				deps[name] = true
			}
		}
	}

	query := make([]symbolic.Constraint, 0, len(reaching)+1)

	for j, c := range reaching {
		if picked[j] {
			query = append(query, c)
		}
	}

	return append(query, target)
}

// installModel writes model into a copy of c's test and keeps it if it
// improves c.
func installModel(ctx context.Context, env *Env, c *m.Candidate, model map[string]any) bool {
	test := c.Test.Clone()
	installed := false

	for _, name := range slices.Sorted(maps.Keys(model)) {
		base, ok := strings.CutSuffix(name, symbolic.SymbolSuffix)
		if !ok {
			continue
		}

		pos := test.PositionOfVar(base)
		if pos < 0 || test.Statement(pos).Kind != m.PrimitiveStatement {
			continue
		}

		st := test.Statement(pos)

		value, ok := decodeValue(st.Type, model[name])
		if !ok {
			slog.Debug("Cannot decode model value", "variable", name, "type", st.Type.String())
			continue
		}

		st.Value = value
		installed = true
	}

	if !installed {
		return false
	}

	backup := backupCandidate(c)
	c.Test = test
	c.ClearCachedResults()

	if env.Objective.HasImproved(ctx, c) {
		return true
	}

	backup.restore(c)

	return false
}

// decodeValue converts a solver value to the payload of a primitive of type t.
func decodeValue(t m.Type, v any) (m.Value, bool) {
	switch value := v.(type) {
	case int64:
		switch {
		case t.Kind == m.Boolean:
			return m.Value{Bool: value != 0}, true
		case t.IsIntegral():
			return m.Value{Int: t.Coerce(value)}, true
		case t.IsFloating():
			return m.Value{Float: storeFloat(t, float64(value))}, true
		}
	case float64:
		if t.IsFloating() {
			return m.Value{Float: storeFloat(t, value)}, true
		}
	case string:
		switch t.Kind {
		case m.String:
			return m.Value{Str: value}, true
		case m.Char:
			code, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return m.Value{}, false
			}

			return m.Value{Int: t.Coerce(code)}, true
		}
	}

	return m.Value{}, false
}

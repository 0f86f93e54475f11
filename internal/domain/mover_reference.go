package domain

import (
	"context"
	"errors"
	"log/slog"

	m "climb.dev/pkg/climb/internal/model"
)

// calleeSlot designates the receiver of a call or field access among the
// parameter slots of a statement.
const calleeSlot = -1

// ReferenceMover applies random structural moves to an object statement:
// replacing it, swapping one of its parameters, or calling a method on it.
type ReferenceMover struct{}

func (ReferenceMover) Name() string { return "reference" }

// Search keeps applying moves until Probes consecutive moves fail to
// improve the fitness. Every improvement resets the count.
func (ReferenceMover) Search(ctx context.Context, env *Env, c *m.Candidate, pos int) Outcome {
	env.ensureEvaluated(ctx, c)

	size := c.Test.Size()
	accepted := backupCandidate(c)
	acceptedPos := pos
	acceptedID := c.Test.Statement(pos).ID
	improved := false

	for probes := 0; probes < env.Config.Probes && !env.exhausted(ctx); {
		next, changed := randomReferenceMove(env, c.Test, pos)
		if !changed {
			probes++
			continue
		}

		c.Changed = true

		if env.Objective.HasImproved(ctx, c) {
			accepted = backupCandidate(c)
			acceptedPos = next
			acceptedID = c.Test.Statement(next).ID
			pos = next
			improved = true
			probes = 0

			continue
		}

		accepted.restore(c)
		pos = acceptedPos
		probes++
	}

	if !improved {
		return Outcome{}
	}

	return Outcome{Improved: true, PositionDelta: c.Test.Size() - size, Replacement: acceptedID}
}

// randomReferenceMove applies one move to tc and returns the new position of
// the statement. The test is untouched when changed is false.
func randomReferenceMove(env *Env, tc *m.TestCase, pos int) (next int, changed bool) {
	switch env.Rand.Intn(3) {
	case 0:
		return replaceStatement(env, tc, pos)
	case 1:
		return swapParameter(env, tc, pos)
	default:
		return addCall(env, tc, pos)
	}
}

func replaceStatement(env *Env, tc *m.TestCase, pos int) (int, bool) {
	t := tc.Statement(pos).Type
	if t.Kind == m.Void {
		return pos, false
	}

	var ref m.VarRef

	if t.IsNullable() && env.Rand.Float64() < env.Config.NullProbability {
		ref = tc.Insert(pos, m.Null(t))
	} else {
		if env.Factory == nil {
			return pos, false
		}

		generated, err := env.Factory.AttemptGeneration(tc, t, pos)
		if err != nil {
			logConstructionError(err, t, pos)
			return pos, false
		}

		ref = generated
	}

	if err := supersede(tc, ref); err != nil {
		slog.Error("Failed to replace statement", "position", pos, "error", err)
	}

	return int(ref), true
}

func swapParameter(env *Env, tc *m.TestCase, pos int) (int, bool) {
	st := tc.Statement(pos)

	slots := parameterSlots(st)
	if len(slots) == 0 {
		return pos, false
	}

	slot := slots[env.Rand.Intn(len(slots))]

	t, ok := slotType(tc, st, slot)
	if !ok {
		return pos, false
	}

	options := compatibleVariables(tc, t, pos, slotValue(st, slot))

	choices := len(options)
	if t.IsNullable() && slot != calleeSlot {
		choices++
	}

	if choices == 0 {
		return pos, false
	}

	choice := env.Rand.Intn(choices)
	if choice < len(options) {
		setSlot(st, slot, options[choice])
		return pos, true
	}

	ref := tc.Insert(pos, m.Null(t))
	setSlot(tc.Statement(pos+1), slot, ref)

	return pos + 1, true
}

func addCall(env *Env, tc *m.TestCase, pos int) (int, bool) {
	st := tc.Statement(pos)
	if env.Factory == nil || st.Kind == m.NullStatement || st.Type.Kind != m.Object {
		return pos, false
	}

	if _, err := env.Factory.AddCallFor(tc, m.VarRef(pos), pos+1, env.Rand); err != nil {
		logConstructionError(err, st.Type, pos)
		return pos, false
	}

	return pos, true
}

// ParameterMover exhaustively substitutes the receiver and the arguments of
// a statement with null and with every other compatible variable in scope.
type ParameterMover struct{}

func (ParameterMover) Name() string { return "parameter" }

func (ParameterMover) Search(ctx context.Context, env *Env, c *m.Candidate, pos int) Outcome {
	env.ensureEvaluated(ctx, c)

	improved := false

	for _, slot := range parameterSlots(c.Test.Statement(pos)) {
		if env.exhausted(ctx) {
			break
		}

		if searchSlot(ctx, env, c, pos, slot) {
			improved = true
		}
	}

	return Outcome{Improved: improved}
}

func searchSlot(ctx context.Context, env *Env, c *m.Candidate, pos, slot int) bool {
	st := c.Test.Statement(pos)

	t, ok := slotType(c.Test, st, slot)
	if !ok {
		return false
	}

	current := slotValue(st, slot)

	var options []m.VarRef
	if t.IsNullable() && current != m.NullRef {
		options = append(options, m.NullRef)
	}

	options = append(options, compatibleVariables(c.Test, t, pos, current)...)

	for _, ref := range options {
		if env.exhausted(ctx) {
			break
		}

		backup := backupValue(c, pos)
		setSlot(c.Test.Statement(pos), slot, ref)

		if probe(ctx, env, c, backup) {
			return true
		}
	}

	return false
}

// NullReferenceMover replaces a null with a generated instance.
type NullReferenceMover struct{}

func (NullReferenceMover) Name() string { return "null_reference" }

func (NullReferenceMover) Search(ctx context.Context, env *Env, c *m.Candidate, pos int) Outcome {
	env.ensureEvaluated(ctx, c)

	if env.Factory == nil || env.exhausted(ctx) {
		return Outcome{}
	}

	size := c.Test.Size()
	backup := backupCandidate(c)
	t := c.Test.Statement(pos).Type

	ref, err := env.Factory.AttemptGeneration(c.Test, t, pos)
	if err != nil {
		logConstructionError(err, t, pos)
		backup.restore(c)

		return Outcome{}
	}

	if err := supersede(c.Test, ref); err != nil {
		slog.Error("Failed to replace null", "candidate", c.ID, "position", pos, "error", err)
		backup.restore(c)

		return Outcome{}
	}

	c.Changed = true

	if env.Objective.HasImproved(ctx, c) {
		return Outcome{Improved: true, PositionDelta: c.Test.Size() - size, Replacement: c.Test.Statement(int(ref)).ID}
	}

	backup.restore(c)

	return Outcome{}
}

// supersede makes the statement following ref obsolete: its uses are
// rewired to ref and it is removed.
func supersede(tc *m.TestCase, ref m.VarRef) error {
	old := ref + 1
	tc.ReplaceUses(old, ref, int(old)+1)

	return tc.Remove(int(old))
}

func logConstructionError(err error, t m.Type, pos int) {
	var cerr *m.ConstructionError
	if errors.As(err, &cerr) {
		slog.Debug("Construction failed", "type", t.String(), "position", pos, "reason", cerr.Reason)
		return
	}

	slog.Error("Failed to generate statements", "type", t.String(), "position", pos, "error", err)
}

func parameterSlots(st *m.Statement) []int {
	var slots []int

	switch st.Kind {
	case m.MethodStatement, m.FieldStatement:
		if !st.Static {
			slots = append(slots, calleeSlot)
		}
	case m.ConstructorStatement:
	default:
		return nil
	}

	for i := range st.Args {
		slots = append(slots, i)
	}

	return slots
}

func slotType(tc *m.TestCase, st *m.Statement, slot int) (m.Type, bool) {
	if slot == calleeSlot {
		return m.ObjectType(st.Owner), true
	}

	return st.ParamType(tc, slot)
}

func slotValue(st *m.Statement, slot int) m.VarRef {
	if slot == calleeSlot {
		return st.Callee
	}

	return st.Args[slot]
}

func setSlot(st *m.Statement, slot int, ref m.VarRef) {
	if slot == calleeSlot {
		st.Callee = ref
		return
	}

	st.Args[slot] = ref
}

func compatibleVariables(tc *m.TestCase, t m.Type, pos int, exclude m.VarRef) []m.VarRef {
	var refs []m.VarRef

	for _, ref := range tc.VariablesOfType(t, pos) {
		if ref != exclude {
			refs = append(refs, ref)
		}
	}

	return refs
}

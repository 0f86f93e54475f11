package model

import (
	"fmt"
	"maps"
	"slices"

	"github.com/google/uuid"
)

// Candidate is one individual of the population: a test case plus what the
// search knows about its last execution.
type Candidate struct {
	ID         string
	Test       *TestCase
	LastResult *ExecutionResult
	// Fitness holds the last evaluated fitness per objective.
	Fitness map[string]float64
	// Changed is set when Test was modified after LastResult was produced.
	Changed bool
	History MutationHistory
}

// NewCandidate wraps a test case in a fresh, never executed candidate.
func NewCandidate(tc *TestCase) *Candidate {
	return &Candidate{
		ID:      uuid.NewString(),
		Test:    tc,
		Fitness: map[string]float64{},
		Changed: true,
	}
}

// Clone returns a deep copy sharing nothing with c.
func (c *Candidate) Clone() *Candidate {
	return &Candidate{
		ID:         c.ID,
		Test:       c.Test.Clone(),
		LastResult: c.LastResult.Clone(),
		Fitness:    maps.Clone(c.Fitness),
		Changed:    c.Changed,
		History:    slices.Clone(c.History),
	}
}

// CopyFrom overwrites c with a deep copy of other.
func (c *Candidate) CopyFrom(other *Candidate) {
	*c = *other.Clone()
}

// ClearCachedResults drops the last execution so the next evaluation re-runs the test.
func (c *Candidate) ClearCachedResults() {
	c.LastResult = nil
	c.Changed = true
}

// ConstructionError reports that no value of the requested type could be built.
type ConstructionError struct {
	Type   Type
	Reason string
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("cannot construct %s: %s", e.Type, e.Reason)
}

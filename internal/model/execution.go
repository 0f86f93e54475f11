package model

import "maps"

// Trace records, per branch, the smallest distance observed towards taking
// its true and its false side. A distance of zero means the side was covered.
type Trace struct {
	True  map[int]float64
	False map[int]float64
}

// NewTrace returns an empty trace.
func NewTrace() Trace {
	return Trace{True: map[int]float64{}, False: map[int]float64{}}
}

// Record stores the distances observed for one evaluation of a branch.
func (t *Trace) Record(branch int, trueDistance, falseDistance float64) {
	if t.True == nil {
		*t = NewTrace()
	}

	if old, ok := t.True[branch]; !ok || trueDistance < old {
		t.True[branch] = trueDistance
	}

	if old, ok := t.False[branch]; !ok || falseDistance < old {
		t.False[branch] = falseDistance
	}
}

// Reached reports whether the branch was evaluated at all.
func (t Trace) Reached(branch int) bool {
	_, ok := t.True[branch]
	return ok
}

// CoveredTrue reports whether the true side of the branch was taken.
func (t Trace) CoveredTrue(branch int) bool {
	d, ok := t.True[branch]
	return ok && d == 0
}

// CoveredFalse reports whether the false side of the branch was taken.
func (t Trace) CoveredFalse(branch int) bool {
	d, ok := t.False[branch]
	return ok && d == 0
}

// Merge folds other into t keeping the minimal distances.
func (t *Trace) Merge(other Trace) {
	for branch, d := range other.True {
		t.Record(branch, d, other.False[branch])
	}
}

// Clone returns a deep copy.
func (t Trace) Clone() Trace {
	return Trace{True: maps.Clone(t.True), False: maps.Clone(t.False)}
}

// ExecutionResult is the outcome of one concrete run of a test case.
type ExecutionResult struct {
	// ExceptionPosition is the position of the first statement that threw, -1 if none did.
	ExceptionPosition int
	Exception         string
	Trace             Trace
	// Executed is the number of statements that ran.
	Executed int
}

// NewExecutionResult returns a result with no exception and an empty trace.
func NewExecutionResult() *ExecutionResult {
	return &ExecutionResult{ExceptionPosition: -1, Trace: NewTrace()}
}

// HasException reports whether a statement threw.
func (r *ExecutionResult) HasException() bool {
	return r.ExceptionPosition >= 0
}

// Clone returns a deep copy. A nil result clones to nil.
func (r *ExecutionResult) Clone() *ExecutionResult {
	if r == nil {
		return nil
	}

	out := *r
	out.Trace = r.Trace.Clone()

	return &out
}

package domain

import (
	"maps"

	m "climb.dev/pkg/climb/internal/model"
)

// valueBackup undoes changes confined to one statement: its value, length
// or arguments, plus what the candidate knew about its last execution.
type valueBackup struct {
	pos       int
	statement m.Statement
	result    *m.ExecutionResult
	fitness   map[string]float64
	changed   bool
}

func backupValue(c *m.Candidate, pos int) valueBackup {
	return valueBackup{
		pos:       pos,
		statement: c.Test.Statement(pos).Clone(),
		result:    c.LastResult.Clone(),
		fitness:   maps.Clone(c.Fitness),
		changed:   c.Changed,
	}
}

func (b valueBackup) restore(c *m.Candidate) {
	*c.Test.Statement(b.pos) = b.statement.Clone()
	c.LastResult = b.result.Clone()
	c.Fitness = maps.Clone(b.fitness)
	c.Changed = b.changed
}

// candidateBackup undoes structural changes by keeping a full clone.
type candidateBackup struct {
	snapshot *m.Candidate
}

func backupCandidate(c *m.Candidate) candidateBackup {
	return candidateBackup{snapshot: c.Clone()}
}

func (b candidateBackup) restore(c *m.Candidate) {
	c.CopyFrom(b.snapshot)
}

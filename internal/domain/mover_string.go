package domain

import (
	"context"

	"pgregory.net/rand"

	m "climb.dev/pkg/climb/internal/model"
)

const (
	minChar = 9
	maxChar = 127
)

// StringMover edits a string character by character. The AVM strategy climbs
// each character code with doubling steps; the neighbor strategy takes the
// first improving code per position.
type StringMover struct {
	Strategy StringStrategy
}

func (s StringMover) Name() string { return "string_" + string(s.Strategy) }

// Search probes whether the string matters at all and, if it does, removes,
// replaces and then inserts characters.
func (s StringMover) Search(ctx context.Context, env *Env, c *m.Candidate, pos int) Outcome {
	env.ensureEvaluated(ctx, c)

	relevant, improved := probeString(ctx, env, c, pos)
	if !relevant {
		return Outcome{}
	}

	if s.removeChars(ctx, env, c, pos) {
		improved = true
	}

	if s.replaceChars(ctx, env, c, pos) {
		improved = true
	}

	if s.insertChars(ctx, env, c, pos) {
		improved = true
	}

	return Outcome{Improved: improved}
}

// probeString applies random edits until one changes the fitness. An
// improving edit is kept.
func probeString(ctx context.Context, env *Env, c *m.Candidate, pos int) (relevant, improved bool) {
	for range env.Config.Probes {
		if env.exhausted(ctx) {
			break
		}

		backup := backupValue(c, pos)
		st := c.Test.Statement(pos)

		if env.Rand.Float64() < 0.5 {
			st.Value.Str = editString(env.Rand, st.Value.Str)
		} else {
			st.Value.Str = randomString(env.Rand, env.Config.StringLength)
		}

		if st.Value.Str == backup.statement.Value.Str {
			continue
		}

		if change := probeChange(ctx, env, c, backup); change != 0 {
			return true, change > 0
		}
	}

	return false, false
}

func (s StringMover) removeChars(ctx context.Context, env *Env, c *m.Candidate, pos int) bool {
	improved := false

	for i := len(c.Test.Statement(pos).Value.Str) - 1; i >= 0; i-- {
		if env.exhausted(ctx) {
			break
		}

		backup := backupValue(c, pos)
		st := c.Test.Statement(pos)
		st.Value.Str = st.Value.Str[:i] + st.Value.Str[i+1:]

		if probeNotWorse(ctx, env, c, backup) > 0 {
			improved = true
		}
	}

	return improved
}

func (s StringMover) replaceChars(ctx context.Context, env *Env, c *m.Candidate, pos int) bool {
	improved := false

	for i := 0; i < len(c.Test.Statement(pos).Value.Str); i++ {
		if env.exhausted(ctx) {
			break
		}

		var ok bool
		if s.Strategy == StringNeighbor {
			ok = scanChar(ctx, env, c, pos, i)
		} else {
			ok = climbChar(ctx, env, c, pos, i)
		}

		if ok {
			improved = true
		}
	}

	return improved
}

func (s StringMover) insertChars(ctx context.Context, env *Env, c *m.Candidate, pos int) bool {
	improved := false

	for !env.exhausted(ctx) {
		if !s.insertChar(ctx, env, c, pos, false) && !s.insertChar(ctx, env, c, pos, true) {
			break
		}

		improved = true
	}

	return improved
}

// insertChar scans every character for one that improves the fitness when
// added at the end, or at the front.
func (s StringMover) insertChar(ctx context.Context, env *Env, c *m.Candidate, pos int, front bool) bool {
	for ch := minChar; ch <= maxChar; ch++ {
		if env.exhausted(ctx) {
			return false
		}

		backup := backupValue(c, pos)
		st := c.Test.Statement(pos)

		index := len(st.Value.Str)
		if front {
			index = 0
			st.Value.Str = string(rune(ch)) + st.Value.Str
		} else {
			st.Value.Str += string(rune(ch))
		}

		if !probe(ctx, env, c, backup) {
			continue
		}

		if s.Strategy != StringNeighbor {
			climbChar(ctx, env, c, pos, index)
		}

		return true
	}

	return false
}

func scanChar(ctx context.Context, env *Env, c *m.Candidate, pos, index int) bool {
	original := int(c.Test.Statement(pos).Value.Str[index])

	for ch := minChar; ch <= maxChar; ch++ {
		if env.exhausted(ctx) {
			break
		}

		if ch == original {
			continue
		}

		backup := backupValue(c, pos)
		st := c.Test.Statement(pos)
		st.Value.Str = withChar(st.Value.Str, index, ch)

		if probe(ctx, env, c, backup) {
			return true
		}
	}

	return false
}

func climbChar(ctx context.Context, env *Env, c *m.Candidate, pos, index int) bool {
	improved := false

	for !env.exhausted(ctx) {
		if !stepChar(ctx, env, c, pos, index, 1) && !stepChar(ctx, env, c, pos, index, -1) {
			break
		}

		improved = true
	}

	return improved
}

func stepChar(ctx context.Context, env *Env, c *m.Candidate, pos, index, delta int) bool {
	improved := false

	for !env.exhausted(ctx) {
		st := c.Test.Statement(pos)
		current := int(st.Value.Str[index])

		next := min(max(current+delta, minChar), maxChar)
		if next == current {
			break
		}

		backup := backupValue(c, pos)
		st.Value.Str = withChar(st.Value.Str, index, next)

		if !probe(ctx, env, c, backup) {
			break
		}

		improved = true
		delta *= 2
	}

	return improved
}

func withChar(s string, index, ch int) string {
	b := []byte(s)
	b[index] = byte(ch)

	return string(b)
}

// editString deletes, inserts or replaces one random character.
func editString(rnd *rand.Rand, s string) string {
	op := rnd.Intn(3)
	if len(s) == 0 {
		op = 1
	}

	switch op {
	case 0:
		i := rnd.Intn(len(s))
		return s[:i] + s[i+1:]
	case 1:
		i := rnd.Intn(len(s) + 1)
		return s[:i] + string(randomChar(rnd)) + s[i:]
	default:
		return withChar(s, rnd.Intn(len(s)), int(randomChar(rnd)))
	}
}

func randomString(rnd *rand.Rand, maxLength int) string {
	b := make([]byte, rnd.Intn(max(maxLength, 0)+1))
	for i := range b {
		b[i] = randomChar(rnd)
	}

	return string(b)
}

func randomChar(rnd *rand.Rand) byte {
	return byte(minChar + rnd.Intn(maxChar-minChar+1))
}

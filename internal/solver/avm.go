package solver

import (
	"context"
	"log/slog"
	"maps"
	"math"
	"slices"
	"time"

	"climb.dev/pkg/climb/internal/symbolic"
)

const (
	defaultMaxEvaluations = 20000
	defaultTimeout        = time.Second

	// printable ASCII range searched for string characters
	minChar = 9
	maxChar = 127

	realPrecision = 7
)

// AVMSolver searches for a model by minimizing the summed branch distance of
// the query, one variable at a time, starting from the concrete values the
// variables had during execution.
type AVMSolver struct {
	maxEvaluations int
	timeout        time.Duration
}

// Option configures an AVMSolver.
type Option func(*AVMSolver)

// WithMaxEvaluations bounds the number of distance evaluations per query.
func WithMaxEvaluations(n int) Option {
	return func(s *AVMSolver) {
		s.maxEvaluations = n
	}
}

// WithTimeout bounds the wall-clock time spent per query.
func WithTimeout(d time.Duration) Option {
	return func(s *AVMSolver) {
		s.timeout = d
	}
}

// NewAVMSolver creates a solver with the given options.
func NewAVMSolver(opts ...Option) *AVMSolver {
	s := &AVMSolver{maxEvaluations: defaultMaxEvaluations, timeout: defaultTimeout}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Solve implements Solver. It reports UNSAT only for variable-free constraints
// that are false, and gives up (nil result) when the search stalls.
func (s *AVMSolver) Solve(ctx context.Context, constraints []symbolic.Constraint) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vars := map[string]*symbolic.Variable{}

	for _, c := range constraints {
		cvars := c.Variables()
		if len(cvars) == 0 && !symbolic.Satisfied(c, nil) {
			slog.Debug("Constant constraint is false", "constraint", c.String())
			return &Result{Unsat: true}, nil
		}

		for name, v := range cvars {
			if _, ok := vars[name]; !ok {
				vars[name] = v
			}
		}
	}

	search := &avmSearch{
		ctx:         ctx,
		constraints: constraints,
		assignment:  make(symbolic.Assignment, len(vars)),
		remaining:   s.maxEvaluations,
		deadline:    time.Now().Add(s.timeout),
	}

	for name, v := range vars {
		search.assignment[name] = initialValue(v)
	}

	search.best = search.distance()

	for improved := true; improved && search.best > 0; {
		improved = false

		for _, name := range slices.Sorted(maps.Keys(vars)) {
			if search.exhausted() {
				slog.Debug("AVM solver gave up", "distance", search.best)
				return nil, nil
			}

			if search.optimize(name) {
				improved = true
			}

			if search.best == 0 {
				break
			}
		}
	}

	if search.best > 0 {
		return nil, nil
	}

	return &Result{Model: maps.Clone(search.assignment)}, nil
}

func initialValue(v *symbolic.Variable) any {
	switch v.S {
	case symbolic.RealSort:
		f, _ := symbolic.ToFloat(v.Concrete)
		return f
	case symbolic.StringSort:
		s, _ := v.Concrete.(string)
		return s
	default:
		switch value := v.Concrete.(type) {
		case int64:
			return value
		case float64:
			return int64(value)
		case bool:
			if value {
				return int64(1)
			}

			return int64(0)
		default:
			return int64(0)
		}
	}
}

type avmSearch struct {
	ctx         context.Context
	constraints []symbolic.Constraint
	assignment  symbolic.Assignment
	best        float64
	remaining   int
	deadline    time.Time
}

func (s *avmSearch) exhausted() bool {
	return s.remaining <= 0 || time.Now().After(s.deadline) || s.ctx.Err() != nil
}

func (s *avmSearch) distance() float64 {
	s.remaining--

	total := 0.0
	for _, c := range s.constraints {
		total += symbolic.Distance(c, s.assignment)
	}

	return total
}

// try installs value and keeps it if the distance drops (or does not grow,
// when allowEqual is set).
func (s *avmSearch) try(name string, value any, allowEqual bool) bool {
	old := s.assignment[name]
	s.assignment[name] = value

	d := s.distance()
	if d < s.best || (allowEqual && d == s.best) {
		s.best = d
		return true
	}

	s.assignment[name] = old

	return false
}

func (s *avmSearch) optimize(name string) bool {
	switch s.assignment[name].(type) {
	case float64:
		return s.optimizeReal(name)
	case string:
		return s.optimizeString(name)
	default:
		return s.optimizeInt(name)
	}
}

func (s *avmSearch) optimizeInt(name string) bool {
	improved := false

	for !s.exhausted() && s.best > 0 {
		v, _ := s.assignment[name].(int64)

		switch {
		case s.try(name, v+1, false):
			s.expandInt(name, 2)
		case s.try(name, v-1, false):
			s.expandInt(name, -2)
		default:
			return improved
		}

		improved = true
	}

	return improved
}

func (s *avmSearch) expandInt(name string, step int64) {
	for !s.exhausted() && s.best > 0 {
		v, _ := s.assignment[name].(int64)
		if !s.try(name, v+step, false) {
			return
		}

		step *= 2
	}
}

func (s *avmSearch) optimizeReal(name string) bool {
	improved := false

	for p := 0; p <= realPrecision && !s.exhausted() && s.best > 0; p++ {
		step := math.Pow10(-p)

		for !s.exhausted() && s.best > 0 {
			v, _ := s.assignment[name].(float64)

			var moved bool

			switch {
			case s.try(name, v+step, false):
				moved = s.expandReal(name, 2*step)
			case s.try(name, v-step, false):
				moved = s.expandReal(name, -2*step)
			default:
				moved = false
			}

			if !moved {
				break
			}

			improved = true
		}
	}

	return improved
}

func (s *avmSearch) expandReal(name string, step float64) bool {
	for !s.exhausted() && s.best > 0 {
		v, _ := s.assignment[name].(float64)
		if !s.try(name, v+step, false) {
			break
		}

		step *= 2
	}

	return true
}

func (s *avmSearch) optimizeString(name string) bool {
	improved := false

	// drop trailing characters while that does not hurt
	for !s.exhausted() && s.best > 0 {
		str, _ := s.assignment[name].(string)
		if str == "" || !s.try(name, str[:len(str)-1], true) {
			break
		}

		improved = true
	}

	str, _ := s.assignment[name].(string)
	for i := range len(str) {
		if s.best == 0 || s.exhausted() {
			return improved
		}

		if s.optimizeChar(name, i) {
			improved = true
		}
	}

	for !s.exhausted() && s.best > 0 {
		str, _ := s.assignment[name].(string)
		if !s.try(name, str+"a", false) {
			break
		}

		s.optimizeChar(name, len(str))

		improved = true
	}

	return improved
}

func (s *avmSearch) optimizeChar(name string, index int) bool {
	improved := false

	for !s.exhausted() && s.best > 0 {
		str, _ := s.assignment[name].(string)
		c := int(str[index])

		step := 0

		switch {
		case c+1 <= maxChar && s.try(name, withChar(str, index, c+1), false):
			step = 2
		case c-1 >= minChar && s.try(name, withChar(str, index, c-1), false):
			step = -2
		default:
			return improved
		}

		improved = true

		for !s.exhausted() && s.best > 0 {
			str, _ = s.assignment[name].(string)
			next := int(str[index]) + step

			if next < minChar || next > maxChar || !s.try(name, withChar(str, index, next), false) {
				break
			}

			step *= 2
		}
	}

	return improved
}

func withChar(s string, index, c int) string {
	b := []byte(s)
	b[index] = byte(c)

	return string(b)
}

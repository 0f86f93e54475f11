package domain

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Query outcomes recorded by Stats.CountQuery.
const (
	QuerySat      = "sat"
	QueryUnsat    = "unsat"
	QueryNoResult = "no_result"
	QueryError    = "error"
)

// Stats counts what the local search did. All methods are safe on a nil *Stats.
type Stats struct {
	registry *prometheus.Registry

	localSearches     prometheus.Counter
	moverRuns         *prometheus.CounterVec
	moverImprovements *prometheus.CounterVec
	dseQueries        *prometheus.CounterVec
	dseTests          *prometheus.CounterVec
	solveSeconds      prometheus.Histogram
}

// NewStats registers the local search metrics on a private registry.
func NewStats() *Stats {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Stats{
		registry: registry,
		localSearches: factory.NewCounter(prometheus.CounterOpts{
			Name: "climb_local_searches_total",
			Help: "Local search invocations on a test case",
		}),
		moverRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "climb_mover_runs_total",
			Help: "Mover invocations by mover",
		}, []string{"mover"}),
		moverImprovements: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "climb_mover_improvements_total",
			Help: "Mover invocations that improved the fitness, by mover",
		}, []string{"mover"}),
		dseQueries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "climb_dse_queries_total",
			Help: "Solver queries issued by the concolic engine, by result",
		}, []string{"result"}),
		dseTests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "climb_dse_tests_total",
			Help: "Tests built from solver models, by whether they improved the fitness",
		}, []string{"useful"}),
		solveSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "climb_dse_solve_seconds",
			Help:    "Time spent answering one solver query",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
	}
}

// Registry exposes the metrics for gathering.
func (s *Stats) Registry() *prometheus.Registry {
	if s == nil {
		return nil
	}

	return s.registry
}

func (s *Stats) CountLocalSearch() {
	if s == nil {
		return
	}

	s.localSearches.Inc()
}

func (s *Stats) CountMover(mover string, improved bool) {
	if s == nil {
		return
	}

	s.moverRuns.WithLabelValues(mover).Inc()

	if improved {
		s.moverImprovements.WithLabelValues(mover).Inc()
	}
}

// CountQuery records one solver query answered after d.
func (s *Stats) CountQuery(result string, d time.Duration) {
	if s == nil {
		return
	}

	s.dseQueries.WithLabelValues(result).Inc()
	s.solveSeconds.Observe(d.Seconds())
}

func (s *Stats) CountDSETest(useful bool) {
	if s == nil {
		return
	}

	s.dseTests.WithLabelValues(fmt.Sprint(useful)).Inc()
}

// WriteTextfile writes the metrics in the text exposition format.
func (s *Stats) WriteTextfile(path string) error {
	if s == nil {
		return nil
	}

	if err := prometheus.WriteToTextfile(path, s.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}

	return nil
}

package domain

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats(t *testing.T) {
	stats := NewStats()

	stats.CountLocalSearch()
	stats.CountLocalSearch()
	stats.CountMover("integer", true)
	stats.CountMover("integer", false)
	stats.CountMover("string_avm", false)
	stats.CountQuery(QuerySat, time.Millisecond)
	stats.CountQuery(QueryUnsat, time.Millisecond)
	stats.CountDSETest(true)

	assert.InDelta(t, 2, testutil.ToFloat64(stats.localSearches), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(stats.moverRuns.WithLabelValues("integer")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(stats.moverImprovements.WithLabelValues("integer")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(stats.moverImprovements.WithLabelValues("string_avm")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(stats.dseQueries.WithLabelValues(QuerySat)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(stats.dseTests.WithLabelValues("true")), 0)

	count, err := testutil.GatherAndCount(stats.Registry(), "climb_dse_solve_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	t.Run("writes a textfile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "climb.prom")
		require.NoError(t, stats.WriteTextfile(path))

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), `climb_mover_runs_total{mover="integer"} 2`)
		assert.Contains(t, string(content), "climb_local_searches_total 2")
	})

	t.Run("textfile error", func(t *testing.T) {
		err := stats.WriteTextfile(filepath.Join(t.TempDir(), "missing", "climb.prom"))
		require.Error(t, err)
	})
}

func TestStatsNil(t *testing.T) {
	var stats *Stats

	assert.NotPanics(t, func() {
		stats.CountLocalSearch()
		stats.CountMover("integer", true)
		stats.CountQuery(QueryError, time.Second)
		stats.CountDSETest(false)
	})
	assert.Nil(t, stats.Registry())
	assert.NoError(t, stats.WriteTextfile("ignored"))
}

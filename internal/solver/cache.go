package solver

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"climb.dev/pkg/climb/internal/symbolic"
)

// DefaultCacheSize is the number of queries remembered by a Cache.
const DefaultCacheSize = 4096

// CacheStats counts cache lookups.
type CacheStats struct {
	Hits   int64
	Misses int64
	Size   int
}

// Cache memoizes solver answers by query text. Only definite answers
// (SAT models and UNSAT) are remembered. It is safe for concurrent use.
type Cache struct {
	entries *lru.Cache[string, *Result]
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewCache creates a cache holding up to size queries.
func NewCache(size int) (*Cache, error) {
	entries, err := lru.New[string, *Result](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create solver cache: %w", err)
	}

	return &Cache{entries: entries}, nil
}

// Solve returns the remembered answer to query or asks solver.
func (c *Cache) Solve(ctx context.Context, solver Solver, query []symbolic.Constraint) (*Result, error) {
	key := symbolic.QueryString(query)

	if result, ok := c.entries.Get(key); ok {
		c.hits.Add(1)
		slog.Debug("Solver cache hit", "constraints", len(query), "unsat", result.Unsat)

		return result, nil
	}

	c.misses.Add(1)

	result, err := solver.Solve(ctx, query)
	if err != nil {
		return nil, err
	}

	if result != nil {
		c.entries.Add(key, result)
	}

	return result, nil
}

// Stats returns a snapshot of the lookup counters.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   c.entries.Len(),
	}
}

package domain

import (
	"fmt"
)

// StringStrategy selects the string mover.
type StringStrategy string

const (
	// StringAVM climbs every character code with exponentially growing steps.
	StringAVM StringStrategy = "avm"
	// StringNeighbor accepts the first improving character per position.
	StringNeighbor StringStrategy = "neighbor"
)

// ReferenceStrategy selects the movers used for object statements.
type ReferenceStrategy string

const (
	// ReferenceRandom applies random structural moves.
	ReferenceRandom ReferenceStrategy = "random"
	// ReferenceExhaustive only substitutes parameters and nulls.
	ReferenceExhaustive ReferenceStrategy = "exhaustive"
)

// Config holds the local search settings.
type Config struct {
	// Probes bounds string relevance probes and unsuccessful reference moves.
	Probes          int
	DSEProbability  float64
	NullProbability float64
	StringLength    int
	MaxArrayLength  int

	Primitives bool
	Strings    bool
	Arrays     bool
	References bool

	StringStrategy    StringStrategy
	ReferenceStrategy ReferenceStrategy

	// SkipCoveredTwoWays makes DSE ignore branches whose outcomes are both covered.
	SkipCoveredTwoWays bool
	// TargetClass makes instances of this class searched even when unused.
	TargetClass string
	Selective   bool
}

// DefaultConfig returns the default search settings.
func DefaultConfig() Config {
	return Config{
		Probes:             10,
		DSEProbability:     0.5,
		NullProbability:    0.1,
		StringLength:       20,
		MaxArrayLength:     1000,
		Primitives:         true,
		Strings:            true,
		Arrays:             true,
		References:         true,
		StringStrategy:     StringAVM,
		ReferenceStrategy:  ReferenceRandom,
		SkipCoveredTwoWays: true,
	}
}

// Validate checks the settings for values the search cannot work with.
func (c Config) Validate() error {
	switch {
	case c.Probes < 0:
		return fmt.Errorf("probes must not be negative, got %d", c.Probes)
	case c.DSEProbability < 0 || c.DSEProbability > 1:
		return fmt.Errorf("dse probability must be within [0, 1], got %v", c.DSEProbability)
	case c.NullProbability < 0 || c.NullProbability > 1:
		return fmt.Errorf("null probability must be within [0, 1], got %v", c.NullProbability)
	case c.MaxArrayLength < 0:
		return fmt.Errorf("max array length must not be negative, got %d", c.MaxArrayLength)
	case c.StringStrategy != StringAVM && c.StringStrategy != StringNeighbor:
		return fmt.Errorf("unknown string strategy %q", c.StringStrategy)
	case c.ReferenceStrategy != ReferenceRandom && c.ReferenceStrategy != ReferenceExhaustive:
		return fmt.Errorf("unknown reference strategy %q", c.ReferenceStrategy)
	}

	return nil
}

// SPDX-License-Identifier: MIT
// Package: layopt/builder
//
// config.go — internal configuration and deterministic defaults.
//
// Deterministic defaults:
//   • overlap      = off            (every pair is a candidate)
//   • maxLength    = +Inf           (no length cut)
//   • initialLen   = 1.42           (unit-lattice neighbours and diagonals)
//   • tension      = 1.0
//   • compression  = 1.0

package builder

import "math"

// Deterministic defaults (named, no magic numbers).
const (
	defaultInitialLength = 1.42
	defaultTension       = 1.0
	defaultCompression   = 1.0

	// latticeTol is the distance from an integer at which a scaled offset
	// still counts as a lattice step.
	latticeTol = 1e-9
)

// builderConfig aggregates all knobs of GroundStructure.
type builderConfig struct {
	overlapSpacing float64 // > 0 enables the gcd filter
	maxLength      float64
	initialLength  float64
	tension        float64
	compression    float64
}

// newBuilderConfig applies opts in order over the defaults; later options
// override earlier ones.
func newBuilderConfig(opts ...Option) builderConfig {
	cfg := builderConfig{
		maxLength:     math.Inf(1),
		initialLength: defaultInitialLength,
		tension:       defaultTension,
		compression:   defaultCompression,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

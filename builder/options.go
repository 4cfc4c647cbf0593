// SPDX-License-Identifier: MIT
// Package: layopt/builder
//
// options.go — functional options for GroundStructure.
//
// Contract:
//   • Option constructors VALIDATE and PANIC on meaningless inputs.
//     GroundStructure itself never panics.
//   • Options compose in order; the last one wins.

package builder

import "math"

// Option customizes GroundStructure by mutating a builderConfig.
type Option func(*builderConfig)

// WithOverlapFilter drops members that pass through an intermediate node of
// a lattice with the given spacing. Panics unless spacing is positive and
// finite.
func WithOverlapFilter(spacing float64) Option {
	if !positiveFinite(spacing) {
		panic("builder: WithOverlapFilter(spacing <= 0)")
	}
	return func(c *builderConfig) { c.overlapSpacing = spacing }
}

// WithMaxLength drops members longer than l. Panics unless l > 0.
func WithMaxLength(l float64) Option {
	if !(l > 0) || math.IsNaN(l) {
		panic("builder: WithMaxLength(l <= 0)")
	}
	return func(c *builderConfig) { c.maxLength = l }
}

// WithInitialLength flags members strictly shorter than l as Initial.
// Zero disables the flag for every member. Panics if l < 0 or NaN.
func WithInitialLength(l float64) Option {
	if l < 0 || math.IsNaN(l) {
		panic("builder: WithInitialLength(l < 0)")
	}
	return func(c *builderConfig) { c.initialLength = l }
}

// WithStrength sets tensile and compressive stress limits for every member.
// Panics unless both are positive and finite.
func WithStrength(tension, compression float64) Option {
	if !positiveFinite(tension) || !positiveFinite(compression) {
		panic("builder: WithStrength requires positive finite limits")
	}
	return func(c *builderConfig) {
		c.tension = tension
		c.compression = compression
	}
}

func positiveFinite(x float64) bool { return x > 0 && !math.IsInf(x, 1) }

// SPDX-License-Identifier: MIT
// Package: layopt/builder
//
// ground.go — all-pairs candidate members.
//
// Contract:
//   • len(nodes) ≥ 2 (else ErrTooFewNodes).
//   • Emits each unordered pair {i,j} with i<j at most once, in
//     lexicographic (i,j) order; coincident nodes are skipped.
//   • Filters (overlap, max length) only remove pairs, never reorder.
//
// Complexity: O(n²) time, O(m) space for m emitted members.

package builder

import (
	"fmt"
	"math"

	"github.com/katalvlaran/layopt/core"
)

const (
	methodGroundStructure = "GroundStructure"
	minGroundNodes        = 2
)

// GroundStructure returns the candidate members between every pair of nodes.
func GroundStructure(nodes []core.Vec3, opts ...Option) ([]core.MemberSpec, error) {
	if len(nodes) < minGroundNodes {
		return nil, fmt.Errorf("%s: %d nodes: %w", methodGroundStructure, len(nodes), ErrTooFewNodes)
	}
	cfg := newBuilderConfig(opts...)

	var members []core.MemberSpec
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			d := core.Vec3{nodes[j][0] - nodes[i][0], nodes[j][1] - nodes[i][1], nodes[j][2] - nodes[i][2]}
			l := math.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
			if l == 0 || l > cfg.maxLength {
				continue
			}
			if cfg.overlapSpacing > 0 && overlaps(d, cfg.overlapSpacing) {
				continue
			}
			members = append(members, core.MemberSpec{
				I:           i,
				J:           j,
				Initial:     l < cfg.initialLength,
				Tension:     cfg.tension,
				Compression: cfg.compression,
			})
		}
	}
	return members, nil
}

// overlaps reports whether offset d, measured in lattice steps, has a common
// divisor greater than one. Off-lattice offsets never overlap.
func overlaps(d core.Vec3, spacing float64) bool {
	g := 0
	for _, c := range d {
		s := math.Abs(c) / spacing
		r := math.Round(s)
		if math.Abs(s-r) > latticeTol {
			return false
		}
		g = gcd(g, int(r))
	}
	return g > 1
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

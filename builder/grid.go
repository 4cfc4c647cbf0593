// SPDX-License-Identifier: MIT
// Package: layopt/builder
//
// grid.go — regular node lattices.
//
// Contract:
//   • nx, ny, nz ≥ 1 (else ErrTooFewNodes); spacing > 0 finite (else
//     ErrInvalidSpacing).
//   • Node (x, y, z) sits at (x·s, y·s, z·s) with index (x·ny + y)·nz + z.
//   • nz = 1 gives a planar lattice in the XY plane.
//
// Complexity: O(nx·ny·nz) time and space.

package builder

import (
	"fmt"
	"math"

	"github.com/katalvlaran/layopt/core"
)

const (
	methodGrid   = "Grid"
	methodLocate = "Locate"
	minGridSide  = 1
)

// Grid returns an nx×ny×nz lattice of nodes with the given spacing.
func Grid(nx, ny, nz int, spacing float64) ([]core.Vec3, error) {
	if nx < minGridSide || ny < minGridSide || nz < minGridSide {
		return nil, fmt.Errorf("%s: %dx%dx%d: %w", methodGrid, nx, ny, nz, ErrTooFewNodes)
	}
	if !positiveFinite(spacing) {
		return nil, fmt.Errorf("%s: spacing=%g: %w", methodGrid, spacing, ErrInvalidSpacing)
	}

	nodes := make([]core.Vec3, 0, nx*ny*nz)
	for x := 0; x < nx; x++ {
		for y := 0; y < ny; y++ {
			for z := 0; z < nz; z++ {
				nodes = append(nodes, core.Vec3{float64(x) * spacing, float64(y) * spacing, float64(z) * spacing})
			}
		}
	}
	return nodes, nil
}

// Locate returns the index of the first node within tol of p.
// Complexity: O(len(nodes)).
func Locate(nodes []core.Vec3, p core.Vec3, tol float64) (int, error) {
	for i, n := range nodes {
		if math.Abs(n[0]-p[0]) <= tol && math.Abs(n[1]-p[1]) <= tol && math.Abs(n[2]-p[2]) <= tol {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%s: %v: %w", methodLocate, p, ErrNotFound)
}

// SPDX-License-Identifier: MIT
// Package matrix — equilibrium matrix of an active member set.
//
// Determinism:
//   • Column order follows the members slice exactly.
//   • Entry order inside a column is node i (X,Y,Z) then node j (X,Y,Z),
//     merged and sorted by ToSparse.

package matrix

import (
	"fmt"

	"github.com/katalvlaran/layopt/core"
)

// entriesPerColumn is the number of (row, value) pairs a bar contributes: three
// direction cosines at each end.
const entriesPerColumn = 2 * core.DOFPerNode

// Entry is a single (row, value) contribution of a member to its column.
type Entry struct {
	Row   int
	Value float64
}

// Column returns the six masked entries of candidate k's equilibrium column.
// Masked (fixed) rows are returned with Value 0. The caller guarantees that k
// is a valid member index and len(dof) == p.DOFCount().
func Column(p *core.Problem, k int, dof []float64) [entriesPerColumn]Entry {
	m := p.Member(k)
	d := p.Cosines(k)
	var out [entriesPerColumn]Entry
	for a := 0; a < core.DOFPerNode; a++ {
		ri := core.DOFPerNode*m.I + a
		rj := core.DOFPerNode*m.J + a
		out[a] = Entry{Row: ri, Value: -d[a] * dof[ri]}
		out[core.DOFPerNode+a] = Entry{Row: rj, Value: d[a] * dof[rj]}
	}
	return out
}

// Project returns the dot product of candidate k's equilibrium column with u,
// i.e. the k-th entry of Bᵀu had k been part of B.
func Project(p *core.Problem, k int, dof, u []float64) float64 {
	var acc float64
	for _, e := range Column(p, k, dof) {
		acc += e.Value * u[e.Row]
	}
	return acc
}

// Equilibrium builds B (3·nodes × len(members)) for the given ordered member
// indices and free-DOF mask. It is a pure function of its arguments.
// Errors: ErrDimensionMismatch (mask length), ErrOutOfRange (member index).
// Complexity: O(|members| log |members|) time, O(|members|) space.
func Equilibrium(p *core.Problem, members []int, dof []float64) (*Sparse, error) {
	rows := p.DOFCount()
	if len(dof) != rows {
		return nil, fmt.Errorf("Equilibrium: mask len %d, want %d: %w", len(dof), rows, ErrDimensionMismatch)
	}

	t, err := NewTriplet(rows, len(members), entriesPerColumn*len(members))
	if err != nil {
		return nil, fmt.Errorf("Equilibrium: %w", err)
	}

	for col, k := range members {
		if k < 0 || k >= p.MemberCount() {
			return nil, fmt.Errorf("Equilibrium: member %d of %d: %w", k, p.MemberCount(), ErrOutOfRange)
		}
		for _, e := range Column(p, k, dof) {
			if e.Value == 0 {
				continue // fixed DOF or axis-aligned bar
			}
			if err = t.Put(e.Row, col, e.Value); err != nil {
				return nil, fmt.Errorf("Equilibrium: member %d: %w", k, err)
			}
		}
	}

	return t.ToSparse(), nil
}

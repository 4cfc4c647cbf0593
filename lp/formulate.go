// SPDX-License-Identifier: MIT

package lp

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/layopt/core"
	"github.com/katalvlaran/layopt/matrix"
	"github.com/katalvlaran/layopt/solver"
)

// Layout describes how a formulated program maps back to the truss.
type Layout struct {
	Members   []int // PML indices in column order
	Cases     int   // number of load cases
	DOF       int   // rows per equality block (3·nodes)
	Variables int   // m·(1+Cases)
}

// AreaVar returns the variable index of a_k (k is the column position).
func (l Layout) AreaVar(k int) int { return k }

// ForceVar returns the variable index of q^c_k.
func (l Layout) ForceVar(c, k int) int { return len(l.Members)*(1+c) + k }

// EqualityRow returns the equality row of DOF r in case c.
func (l Layout) EqualityRow(c, r int) int { return c*l.DOF + r }

// Formulate builds the general-form LP for the given ordered active members.
// Blocks of different load cases are filled concurrently.
// Errors: any matrix.Equilibrium error, context cancellation.
func Formulate(ctx context.Context, p *core.Problem, members []int) (*solver.Problem, Layout, error) {
	dof := p.DOFMask()
	B, err := matrix.Equilibrium(p, members, dof)
	if err != nil {
		return nil, Layout{}, fmt.Errorf("Formulate: %w", err)
	}

	m := len(members)
	nc := p.LoadCaseCount()
	nd := p.DOFCount()
	lay := Layout{Members: append([]int(nil), members...), Cases: nc, DOF: nd, Variables: m * (1 + nc)}

	prob := &solver.Problem{C: make([]float64, lay.Variables)}
	if m == 0 {
		// No variables: equilibrium holds only for zero masked loads.
		for _, f := range p.Forces() {
			for r := range f {
				prob.B = append(prob.B, f[r]*dof[r])
			}
		}
		return prob, lay, nil
	}

	for k, idx := range members {
		prob.C[lay.AreaVar(k)] = p.EffectiveLength(idx)
	}

	// Inequalities: m rows for −a <= 0, then 2m rows per case.
	nIneq := m + 2*m*nc
	G := mat.NewDense(nIneq, lay.Variables, nil)
	prob.H = make([]float64, nIneq)
	for k := 0; k < m; k++ {
		G.Set(k, lay.AreaVar(k), -1)
	}

	var A *mat.Dense
	if nc > 0 {
		A = mat.NewDense(nc*nd, lay.Variables, nil)
		prob.B = make([]float64, nc*nd)
	}
	forces := p.Forces()

	// Each case writes disjoint rows of A, G and B.
	eg, egCtx := errgroup.WithContext(ctx)
	for c := 0; c < nc; c++ {
		c := c
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			for k := 0; k < m; k++ {
				B.Column(k, func(r int, v float64) {
					A.Set(lay.EqualityRow(c, r), lay.ForceVar(c, k), v)
				})
			}
			for r := 0; r < nd; r++ {
				prob.B[lay.EqualityRow(c, r)] = forces[c][r] * dof[r]
			}

			base := m + 2*m*c
			for k, idx := range members {
				mem := p.Member(idx)
				tRow, cRow := base+k, base+m+k
				G.Set(tRow, lay.ForceVar(c, k), 1)
				G.Set(tRow, lay.AreaVar(k), -mem.Tension)
				G.Set(cRow, lay.ForceVar(c, k), -1)
				G.Set(cRow, lay.AreaVar(k), -mem.Compression)
			}
			return nil
		})
	}
	if err = eg.Wait(); err != nil {
		return nil, Layout{}, fmt.Errorf("Formulate: %w", err)
	}

	prob.G = G
	if A != nil {
		prob.A = A
	}
	return prob, lay, nil
}

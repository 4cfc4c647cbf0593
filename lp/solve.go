// SPDX-License-Identifier: MIT

package lp

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/layopt/core"
	"github.com/katalvlaran/layopt/matrix"
	"github.com/katalvlaran/layopt/solver"
)

// Solution is the optimum of one layout LP.
type Solution struct {
	// Members are the PML indices of the active set, aligned with Areas and
	// with every Forces[c].
	Members []int

	// Volume is Σ (l + jointCost)·a.
	Volume float64

	// Areas are the cross-sections, clamped at zero.
	Areas []float64

	// Forces[c][k] is the axial force of Members[k] under load case c.
	Forces [][]float64

	// Duals[c] is the nodal virtual-displacement vector of case c (length
	// 3·nodes, zero at fixed DOFs).
	Duals [][]float64

	// DualsRecovered is false when the solver produced no multipliers and
	// Duals were substituted with zero vectors.
	DualsRecovered bool
}

// Solve formulates and solves the layout LP for the ordered active members.
// Errors: ErrLPInfeasible, ErrLPUnbounded (both also match the underlying
// solver error), formulation errors, context cancellation.
func Solve(ctx context.Context, s solver.Solver, p *core.Problem, members []int) (*Solution, error) {
	prob, lay, err := Formulate(ctx, p, members)
	if err != nil {
		return nil, fmt.Errorf("Solve: %w", err)
	}

	res, err := s.Solve(ctx, prob)
	switch {
	case errors.Is(err, solver.ErrInfeasible):
		return nil, fmt.Errorf("Solve: %d members, %d cases: %w: %w", len(members), lay.Cases, ErrLPInfeasible, err)
	case errors.Is(err, solver.ErrUnbounded):
		return nil, fmt.Errorf("Solve: %d members, %d cases: %w: %w", len(members), lay.Cases, ErrLPUnbounded, err)
	case err != nil:
		return nil, fmt.Errorf("Solve: %w", err)
	}

	m := len(lay.Members)
	sol := &Solution{
		Members: lay.Members,
		Volume:  res.Objective,
		Areas:   make([]float64, m),
		Forces:  make([][]float64, lay.Cases),
		Duals:   make([][]float64, lay.Cases),
	}
	for k := 0; k < m; k++ {
		sol.Areas[k] = math.Max(0, res.X[lay.AreaVar(k)])
	}
	for c := 0; c < lay.Cases; c++ {
		sol.Forces[c] = make([]float64, m)
		for k := 0; k < m; k++ {
			sol.Forces[c][k] = res.X[lay.ForceVar(c, k)]
		}
	}

	dof := p.DOFMask()
	sol.DualsRecovered = res.EqualityDuals != nil
	for c := 0; c < lay.Cases; c++ {
		u := make([]float64, lay.DOF)
		if sol.DualsRecovered {
			for r := 0; r < lay.DOF; r++ {
				u[r] = res.EqualityDuals[lay.EqualityRow(c, r)] * dof[r]
			}
		}
		sol.Duals[c] = u
	}

	return sol, nil
}

// Residual returns max_c ‖B·q^c − f^c⊙mask‖∞ for a solution of p, the
// equilibrium error of the final design.
func Residual(p *core.Problem, sol *Solution) (float64, error) {
	dof := p.DOFMask()
	B, err := matrix.Equilibrium(p, sol.Members, dof)
	if err != nil {
		return 0, fmt.Errorf("Residual: %w", err)
	}
	var worst float64
	for c, f := range p.Forces() {
		bq, err := B.MulVec(sol.Forces[c])
		if err != nil {
			return 0, fmt.Errorf("Residual: case %d: %w", c, err)
		}
		for r := range bq {
			worst = math.Max(worst, math.Abs(bq[r]-f[r]*dof[r]))
		}
	}
	return worst, nil
}

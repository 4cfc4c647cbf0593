// SPDX-License-Identifier: MIT
// Package solver — bounded revised simplex with basis duals.
//
// Pipeline per Solve:
//   1) Validate shapes.
//   2) Build the bounded standard form: singleton inequality rows become
//      variable bounds, zero rows are checked and dropped, the remaining
//      inequalities get a slack.
//   3) Phase 1 from a slack/artificial start basis.
//   4) Phase 2 on the real costs.
//   5) Read y from the optimal basis, z from the slack rows and the reduced
//      costs of variables sitting on a singleton bound.
//   6) Check the primal residual against the caller's rows.

package solver

import (
	"context"
	"fmt"
	"math"
)

// Default tolerances.
const (
	DefaultOptimalityTol  = 1e-9 // reduced-cost threshold for entering columns
	DefaultPivotTol       = 1e-9 // smallest |α| the ratio test treats as non-zero
	DefaultFeasibilityTol = 1e-6 // relative residual accepted after the solve
)

// Simplex solves LPs with a bounded revised simplex method and reports the
// equality multipliers of the optimal basis. The zero value is not usable;
// construct it with NewSimplex.
type Simplex struct {
	optimalityTol  float64
	pivotTol       float64
	feasibilityTol float64
}

// SimplexOption configures a Simplex.
type SimplexOption func(*Simplex)

// WithOptimalityTol sets the reduced-cost tolerance. Panics if tol <= 0.
func WithOptimalityTol(tol float64) SimplexOption {
	if !(tol > 0) {
		panic("solver: WithOptimalityTol(<=0)")
	}
	return func(s *Simplex) { s.optimalityTol = tol }
}

// WithPivotTol sets the smallest pivot magnitude. Panics if tol <= 0.
func WithPivotTol(tol float64) SimplexOption {
	if !(tol > 0) {
		panic("solver: WithPivotTol(<=0)")
	}
	return func(s *Simplex) { s.pivotTol = tol }
}

// WithFeasibilityTol sets the accepted relative residual. Panics if tol <= 0.
func WithFeasibilityTol(tol float64) SimplexOption {
	if !(tol > 0) {
		panic("solver: WithFeasibilityTol(<=0)")
	}
	return func(s *Simplex) { s.feasibilityTol = tol }
}

// NewSimplex returns a Simplex with default tolerances, then applies opts in order.
func NewSimplex(opts ...SimplexOption) *Simplex {
	s := &Simplex{
		optimalityTol:  DefaultOptimalityTol,
		pivotTol:       DefaultPivotTol,
		feasibilityTol: DefaultFeasibilityTol,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Solve implements Solver. ctx is checked every few dozen pivots.
func (s *Simplex) Solve(ctx context.Context, p *Problem) (*Result, error) {
	n, mEq, mIneq, err := p.validate()
	if err != nil {
		return nil, fmt.Errorf("Simplex.Solve: %w", err)
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	if n == 0 {
		return s.solveEmpty(p)
	}

	md, err := buildModel(p, n, mEq, mIneq)
	if err != nil {
		return nil, fmt.Errorf("Simplex.Solve: %w", err)
	}
	e := newEngine(ctx, md, s)
	if err = e.phaseOne(s.feasibilityTol); err != nil {
		return nil, fmt.Errorf("Simplex.Solve: %w", err)
	}
	if err = e.run(md.cost, true); err != nil {
		return nil, fmt.Errorf("Simplex.Solve: %w", err)
	}

	x := append([]float64(nil), e.x[:n]...)
	if r := maxResidual(p, x); r > s.feasibilityTol {
		return nil, fmt.Errorf("Simplex.Solve: residual %g at the optimum: %w", r, ErrNumeric)
	}

	var obj float64
	for j, c := range p.C {
		obj += c * x[j]
	}
	res := &Result{Objective: obj, X: x}
	res.EqualityDuals, res.DualObjective = e.duals(p)
	return res, nil
}

// duals reads (y, bᵀy − hᵀz) off the optimal basis. Dropped equality rows get
// a zero multiplier. A singleton inequality row carries the reduced cost of
// its variable when that variable rests on the bound the row set.
func (e *engine) duals(p *Problem) ([]float64, float64) {
	e.computeDuals(e.cost)

	y := make([]float64, len(p.B))
	var obj float64
	for i, r := range e.eqRow {
		if r >= 0 {
			y[i] = e.y[r]
			obj += p.B[i] * y[i]
		}
	}
	for i, r := range e.gRow {
		var z float64
		switch j := e.gCol[i]; {
		case r >= 0:
			z = -e.y[r]
		case j >= 0:
			if (e.stat[j] == atUpper && e.upRow[j] == i) || (e.stat[j] == atLower && e.loRow[j] == i) {
				z = -e.reducedCost(e.cost, j) / e.gCoef[i]
			}
		}
		obj -= p.H[i] * z
	}
	return y, obj
}

// solveEmpty handles a problem without variables: feasible iff every equality
// rhs is zero and every inequality rhs is non-negative.
func (s *Simplex) solveEmpty(p *Problem) (*Result, error) {
	for i, bi := range p.B {
		if math.Abs(bi) > s.feasibilityTol {
			return nil, fmt.Errorf("Simplex.Solve: empty problem, b[%d]=%g: %w", i, bi, ErrInfeasible)
		}
	}
	for i, hi := range p.H {
		if hi < -s.feasibilityTol {
			return nil, fmt.Errorf("Simplex.Solve: empty problem, h[%d]=%g: %w", i, hi, ErrInfeasible)
		}
	}
	return &Result{X: []float64{}, EqualityDuals: make([]float64, len(p.B))}, nil
}

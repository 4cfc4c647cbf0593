// SPDX-License-Identifier: MIT

package solver

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Problem is a general-form LP over free variables. A/B or G/H may be nil
// (and empty) when the problem has no constraints of that kind.
type Problem struct {
	C []float64  // objective coefficients, len n
	A mat.Matrix // equality matrix, len(B)×n
	B []float64  // equality right-hand side
	G mat.Matrix // inequality matrix, len(H)×n
	H []float64  // inequality right-hand side
}

// Result is the outcome of a successful solve.
type Result struct {
	// Objective is cᵀX.
	Objective float64

	// X holds the optimal primal values.
	X []float64

	// EqualityDuals holds one multiplier per row of A (see package doc for the
	// sign convention). A Solver that cannot produce multipliers leaves it nil.
	EqualityDuals []float64

	// DualObjective is bᵀy − hᵀz of the recovered dual (0 when unavailable).
	DualObjective float64
}

// Solver solves general-form linear programs.
type Solver interface {
	Solve(ctx context.Context, p *Problem) (*Result, error)
}

// validate checks the shapes of p and returns (n, rows(A), rows(G)).
func (p *Problem) validate() (n, mEq, mIneq int, err error) {
	if p == nil {
		return 0, 0, 0, fmt.Errorf("validate: nil problem: %w", ErrShape)
	}
	n = len(p.C)
	mEq, err = checkBlock("A", p.A, p.B, n)
	if err != nil {
		return 0, 0, 0, err
	}
	mIneq, err = checkBlock("G", p.G, p.H, n)
	if err != nil {
		return 0, 0, 0, err
	}
	return n, mEq, mIneq, nil
}

func checkBlock(name string, m mat.Matrix, rhs []float64, n int) (int, error) {
	if m == nil {
		// Without variables a nil block stands for an all-zero matrix.
		if len(rhs) != 0 && n != 0 {
			return 0, fmt.Errorf("validate: %s is nil but rhs has %d rows: %w", name, len(rhs), ErrShape)
		}
		return len(rhs), nil
	}
	r, c := m.Dims()
	if r != len(rhs) || c != n {
		return 0, fmt.Errorf("validate: %s is %dx%d, want %dx%d: %w", name, r, c, len(rhs), n, ErrShape)
	}
	return r, nil
}

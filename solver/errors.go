// SPDX-License-Identifier: MIT

package solver

import "errors"

var (
	// ErrShape indicates inconsistent problem dimensions.
	ErrShape = errors.New("solver: dimension mismatch")

	// ErrInfeasible indicates that the constraint set is empty.
	ErrInfeasible = errors.New("solver: problem is infeasible")

	// ErrUnbounded indicates that the objective is unbounded below.
	ErrUnbounded = errors.New("solver: problem is unbounded")

	// ErrNumeric indicates a numerical breakdown inside the simplex
	// (singular basis, pivot limit, residual above tolerance at the optimum).
	ErrNumeric = errors.New("solver: numerical failure")
)

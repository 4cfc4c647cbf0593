// SPDX-License-Identifier: MIT

package lp

import "errors"

var (
	// ErrLPInfeasible indicates that no forces in the active set equilibrate
	// the loads within the capacity bounds. Fatal for the run.
	ErrLPInfeasible = errors.New("lp: layout problem is infeasible")

	// ErrLPUnbounded indicates that the solver reported an unbounded objective.
	ErrLPUnbounded = errors.New("lp: layout problem is unbounded")
)

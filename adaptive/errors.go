// SPDX-License-Identifier: MIT

package adaptive

import "errors"

var (
	// ErrNonConvergence is reported by Result.Warning when the loop stopped
	// before a certified convergence.
	ErrNonConvergence = errors.New("adaptive: stopped before convergence")

	// ErrUncertified is reported by Result.Warning when the solver returned no
	// multipliers, so an empty check proves nothing.
	ErrUncertified = errors.New("adaptive: optimality not certified, solver returned no duals")

	// ErrInvalidStartSet indicates a start-set index outside the member list.
	ErrInvalidStartSet = errors.New("adaptive: invalid start set")
)

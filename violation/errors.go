// SPDX-License-Identifier: MIT

package violation

import "errors"

var (
	// ErrDimensionMismatch indicates an activation array, dual set or dual
	// vector whose length disagrees with the problem.
	ErrDimensionMismatch = errors.New("violation: dimension mismatch")

	// ErrInvalidConfig indicates a Tolerance not above 1 or an admission
	// fraction outside (0, 1].
	ErrInvalidConfig = errors.New("violation: invalid config")
)

// SPDX-License-Identifier: MIT

package core

import "errors"

// Sentinel errors for problem construction. All are detected before any LP is
// attempted and are fatal for the run.
var (
	// ErrEmptyProblem indicates that the input carries no nodes.
	ErrEmptyProblem = errors.New("core: problem has no nodes")

	// ErrInvalidIndex indicates that a member, support or load references a
	// node index outside [0, len(Nodes)).
	ErrInvalidIndex = errors.New("core: node index out of range")

	// ErrDegenerateMember indicates a candidate member of zero length.
	ErrDegenerateMember = errors.New("core: degenerate zero-length member")

	// ErrInvalidValue indicates a NaN/Inf coordinate, force or strength, a
	// negative strength, or a negative joint cost.
	ErrInvalidValue = errors.New("core: invalid numeric value")
)

// SPDX-License-Identifier: MIT

// Package matrix builds the equilibrium matrix of a truss and provides the
// compressed-sparse-column container it lives in.
//
// For an ordered list of active members and a free-DOF mask, Equilibrium
// returns B with shape (3·nodes, members). Column k, for member i→j with unit
// direction d, holds
//
//	rows 3i..3i+2 : −d ⊙ mask
//	rows 3j..3j+2 : +d ⊙ mask
//
// which is the directed incidence pattern (−1 at the source, +1 at the target)
// scaled by direction cosines. Fixed DOFs produce zero rows: supports absorb
// the reaction, so no equilibrium equation is written for them.
//
// B·q = f states nodal equilibrium for member forces q (tension positive);
// Bᵀ·u maps nodal virtual displacements u to member elongations, which is
// what the violation check evaluates for every inactive candidate (Project).
//
// Matrices are rebuilt from scratch each iteration; nothing is cached.
//
// Errors:
//
//	ErrBadShape          - non-positive dimensions.
//	ErrOutOfRange        - row/column or member index outside bounds.
//	ErrDimensionMismatch - vector or mask length disagrees with the matrix.
//	ErrNaNInf            - a non-finite value was Put into a Triplet.
package matrix

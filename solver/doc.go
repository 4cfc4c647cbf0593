// SPDX-License-Identifier: MIT

// Package solver is the linear-programming boundary of the module.
//
// Problems are stated in general form over free variables:
//
//	minimize   cᵀx
//	subject to A·x  = b   (equality rows, one dual each)
//	           G·x <= h
//
// Sign restrictions are expressed as rows of G (e.g. −x_k <= 0).
//
// A Solver returns the primal optimum and the equality multipliers y of the
// dual program
//
//	maximize   bᵀy − hᵀz
//	subject to Aᵀy − Gᵀz = c,  z >= 0
//
// so that at optimality cᵀx* = bᵀy* − hᵀz*. With this convention y_i is the
// rate at which the optimal objective grows with b_i.
//
// Simplex is the default implementation, a bounded revised simplex. Rows of
// G with a single non-zero become variable bounds, the remaining ones get a
// slack, and all-zero rows are checked and dropped. The multipliers are read
// off the optimal basis, y = B⁻ᵀc_B, so every successful solve carries them;
// redundant equality rows receive whatever split of the multiplier the basis
// assigns, which is as valid as any other. The basis inverse is kept dense and
// refactored with gonum's LU.
//
// Errors:
//
//	ErrShape      - dimensions of c, A, b, G, h disagree.
//	ErrInfeasible - no x satisfies the constraints.
//	ErrUnbounded  - the objective decreases without bound.
//	ErrNumeric    - the simplex failed for numerical reasons.
package solver

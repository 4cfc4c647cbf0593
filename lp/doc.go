// SPDX-License-Identifier: MIT

// Package lp formulates the minimum-volume plastic design LP of a truss for
// the current active member set and hands it to a solver.Solver.
//
// Variables, for m active members and C load cases:
//
//	x = [ a_0 … a_{m−1} | q^0_0 … q^0_{m−1} | … | q^{C−1}_0 … q^{C−1}_{m−1} ]
//
// areas a are shared by every case, forces q^c are per case and free in sign
// (tension positive).
//
//	minimize   Σ_k (l_k + jointCost)·a_k
//	subject to B·q^c = f^c ⊙ mask                 for every case c
//	           q^c_k − σt_k·a_k <= 0,  −q^c_k − σc_k·a_k <= 0
//	           −a_k <= 0
//
// The equality multipliers of case c are returned as Duals[c], a vector of
// length 3·nodes. They are the nodal virtual displacements u^c of the dual
// problem, for which Σ_c max(σt·Bᵀu^c/l, −σc·Bᵀu^c/l) <= 1 holds for every
// member at optimality; package violation tests the same inequality for
// members not yet in the LP.
//
// Load-case blocks are assembled concurrently (errgroup); the solve itself is a
// single blocking call.
//
// Errors:
//
//	ErrLPInfeasible - the active set cannot carry the loads.
//	ErrLPUnbounded  - the solver reported an unbounded objective.
package lp

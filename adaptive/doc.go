// SPDX-License-Identifier: MIT

// Package adaptive runs the member-adding loop of ground-structure layout
// optimization.
//
// Starting from a small active subset of the potential member list, each
// iteration
//
//  1. solves the plastic layout LP over the active members (package lp),
//  2. evaluates every inactive member against the LP's virtual
//     displacements (package violation) and admits the worst violators.
//
// The loop stops when an iteration admits nothing (StatusConverged), after
// the iteration cap (StatusIterationLimit, default 99) or once the time
// budget is spent (StatusBudgetExhausted). An empty check is only a
// certificate when the LP produced multipliers: if the solver returned none
// while inactive members remain, the loop stops with StatusUncertified. The
// active set only ever grows.
//
// The returned Result always describes the last solved active set. Members
// flagged by the final check of a non-converged run are reported in
// Result.Pending.
//
// Every run is tagged with a random run ID, logged through zap and traced with
// one "layopt.Run" span holding a "layopt.Iteration" child per iteration.
package adaptive

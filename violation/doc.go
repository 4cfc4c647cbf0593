// SPDX-License-Identifier: MIT

// Package violation decides which candidate members join the active set.
//
// Given the nodal virtual displacements u^c of the last LP (one vector per
// load case), the utilization of candidate k is
//
//	e^c = B_kᵀu^c / (l_k + jointCost)
//	y_k = Σ_c max(σt_k·e^c, −σc_k·e^c)
//
// A dual-feasible u certifies y_k <= 1 for every member; an inactive member
// with y_k > Tolerance (default 1.0001) would lower the volume if added.
// Violators are ranked by descending y (lower PML index first on ties) and
// at most
//
//	ceil(min(n, ActivationFraction · max(PoolFraction · inactive, n)))
//
// of them are admitted per round, which is at least one whenever n > 0.
//
// The tolerance absorbs solver noise: with exactly 1.0 the loop can keep
// admitting borderline members forever.
package violation

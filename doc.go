// SPDX-License-Identifier: MIT

// Package layopt finds minimum-volume truss layouts by adaptive
// ground-structure optimization.
//
// 🚀 What is layopt?
//
//	A plastic layout optimizer that never solves the full ground structure:
//		• Problem model: nodes, candidate members, supports, load cases
//		• Equilibrium matrix: sparse, direction-scaled incidence
//		• LP: minimum volume with per-case member forces, duals as displacements
//		• Violation check: admit the most strained inactive members
//		• Adaptive loop: solve, check, grow, until nothing is violated
//
// Under the hood, everything is organized in small packages:
//
//	core/      — validated Problem: geometry, strengths, DOF mask, forces
//	builder/   — lattices and all-pairs ground structures (overlap filter)
//	matrix/    — CSC sparse container and equilibrium matrix assembly
//	solver/    — LP boundary; bounded revised simplex with basis duals
//	lp/        — formulation of the layout LP over an active member set
//	violation/ — dual utilization of candidates and admission rule
//	adaptive/  — the growth controller (Run) with logging and tracing hooks
//	render/    — drawing styles: colours, line widths, load and support marks
//	scenario/  — YAML scenario files and run settings
//
// The cmd/layopt command ties these together: it loads a scenario, runs the
// optimizer and writes the layout, a drawing and Prometheus metrics.
//
// Quick start:
//
//	p, _ := core.NewProblem(in)
//	res, err := adaptive.Run(ctx, p, adaptive.WithLogger(logger))
//	if err != nil { ... }
//	if w := res.Warning(); w != nil { ... } // iteration cap or time budget
package layopt

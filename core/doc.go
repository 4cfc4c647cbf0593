// SPDX-License-Identifier: MIT

// Package core holds the validated geometry of a layout-optimization problem:
// node coordinates, the potential member list (ground structure), support
// freedom flags and the per-load-case nodal forces.
//
// A Problem is immutable once NewProblem returns. The potential member list is
// an arena: members keep their index for the whole run and activation lives in
// a separate []bool owned by the caller (see package adaptive), so dual and
// utilization computations can address candidates by index.
//
// Degree-of-freedom ordering is node-major everywhere in this module:
//
//	node k → rows 3k (X), 3k+1 (Y), 3k+2 (Z)
//
// Construction:
//
//	p, err := core.NewProblem(core.Input{
//		Nodes:     []core.Vec3{{0, 0, 0}, {0, 1, 0}},
//		Members:   []core.MemberSpec{{I: 0, J: 1, Initial: true, Tension: 1, Compression: 1}},
//		Supports:  map[int]core.Support{0: core.Fixed},
//		LoadCases: []core.LoadCase{{1: {0, -1, 0}}},
//	})
//
// Errors:
//
//	ErrEmptyProblem     - no nodes were supplied.
//	ErrInvalidIndex     - a member, support or load references a missing node.
//	ErrDegenerateMember - a member's endpoints coincide.
//	ErrInvalidValue     - NaN/Inf input or a negative strength / joint cost.
package core

// SPDX-License-Identifier: MIT

// Package scenario reads layout problems and run settings from YAML.
//
// A file either lists nodes and members explicitly or asks for a generated
// lattice and ground structure:
//
//	joint_cost: 0
//	grid: {nx: 3, ny: 3, nz: 1, spacing: 1}
//	ground_structure: {overlap_spacing: 1, initial_length: 1.42}
//	supports:
//	  0: [0, 0, 0]        # per axis: 0 fixed, 1 free
//	loads:
//	  - 7: [-2, -1, 0]    # one map per load case, kN
//	settings:
//	  max_iterations: 99
//	  tolerance: 1.0001
//	  time_budget: 30s
//	render:
//	  threshold: 0.001
//	  plane: xy
//
// Unknown keys are rejected. Settings that are absent keep the optimizer
// defaults.
package scenario

// SPDX-License-Identifier: MIT
// Package: layopt/builder
//
// Package builder generates ground structures: regular node lattices and the
// candidate member lists that connect them.
//
// Workflow:
//  1. Grid(nx, ny, nz, spacing) lays out nodes x-major, then y, then z.
//  2. GroundStructure(nodes, opts...) emits one candidate per node pair
//     {i,j}, i<j, in lexicographic order.
//  3. The result feeds core.Input together with supports and load cases.
//
// Filters and flags:
//   • WithOverlapFilter(spacing) drops a pair whose lattice offset has a
//     gcd > 1, i.e. a bar that would pass straight through another node and
//     duplicate a chain of shorter bars. Leave it off when the problem has
//     a joint cost: the chain then costs more than the long bar.
//   • WithMaxLength(l) drops pairs longer than l.
//   • WithInitialLength(l) flags members shorter than l as the starting
//     active set (default 1.42, which picks the nearest neighbours and
//     their diagonals on a unit lattice).
//   • WithStrength(σt, σc) sets the stress limits of every member.
//
// Determinism: no randomness; identical inputs produce identical lists.
package builder

// SPDX-License-Identifier: MIT

package adaptive_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/layopt/builder"
	"github.com/katalvlaran/layopt/core"
)

// twoNode: node 0 pinned, node 1 pulled down by 2 along a unit bar.
func twoNode(t *testing.T) *core.Problem {
	t.Helper()
	p, err := core.NewProblem(core.Input{
		Nodes:     []core.Vec3{{0, 1, 0}, {0, 0, 0}},
		Members:   []core.MemberSpec{{I: 0, J: 1, Initial: true, Tension: 1, Compression: 1}},
		Supports:  map[int]core.Support{0: core.Fixed},
		LoadCases: []core.LoadCase{{1: {0, -2, 0}}},
	})
	require.NoError(t, err)
	return p
}

// square: unit square, left nodes pinned, lower-right node loaded
// downwards, all six members active from the start. Optimal volume is 3.
func square(t *testing.T) *core.Problem {
	t.Helper()
	nodes := []core.Vec3{{0, 0, 0}, {0, 1, 0}, {1, 0, 0}, {1, 1, 0}}
	var members []core.MemberSpec
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			members = append(members, core.MemberSpec{I: i, J: j, Initial: true, Tension: 1, Compression: 1})
		}
	}
	p, err := core.NewProblem(core.Input{
		Nodes:     nodes,
		Members:   members,
		Supports:  map[int]core.Support{0: core.Fixed, 1: core.Fixed},
		LoadCases: []core.LoadCase{{2: {0, -1, 0}}},
	})
	require.NoError(t, err)
	return p
}

// sparseGrid: 3×3 grid with one support at the origin and the load at
// (2,1) pointing at it. The 29 candidates are one weak (σ = 0.1) direct bar,
// the only initial member, plus the 28 unit-strength bars that pass through
// no other node. The start volume is 50; the ground structure holds a unit
// strength copy of the direct bar, and the optimum is 5.
func sparseGrid(t *testing.T) *core.Problem {
	t.Helper()
	var nodes []core.Vec3
	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			nodes = append(nodes, core.Vec3{float64(x), float64(y), 0})
		}
	}
	id := func(x, y int) int { return 3*x + y }

	members := []core.MemberSpec{{I: id(0, 0), J: id(2, 1), Initial: true, Tension: 0.1, Compression: 0.1}}
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			dx := int(nodes[j][0] - nodes[i][0])
			dy := int(nodes[j][1] - nodes[i][1])
			if gcd(abs(dx), abs(dy)) > 1 {
				continue // passes through another node
			}
			members = append(members, core.MemberSpec{I: i, J: j, Tension: 1, Compression: 1})
		}
	}

	p, err := core.NewProblem(core.Input{
		Nodes:     nodes,
		Members:   members,
		Supports:  map[int]core.Support{id(0, 0): core.Fixed},
		LoadCases: []core.LoadCase{{id(2, 1): {-2, -1, 0}}},
	})
	require.NoError(t, err)
	return p
}

// twoCaseGrid: 5×3 unit lattice with the gcd-filtered ground structure (74
// candidates, bars shorter than 1.42 initially active) and the left column
// pinned. Case 0 pulls the top-right node down, case 1 pushes the
// bottom-right node to the right.
func twoCaseGrid(t *testing.T) *core.Problem {
	t.Helper()
	nodes, err := builder.Grid(5, 3, 1, 1)
	require.NoError(t, err)
	members, err := builder.GroundStructure(nodes,
		builder.WithOverlapFilter(1), builder.WithInitialLength(1.42))
	require.NoError(t, err)

	p, err := core.NewProblem(core.Input{
		Nodes:     nodes,
		Members:   members,
		Supports:  map[int]core.Support{0: core.Fixed, 1: core.Fixed, 2: core.Fixed},
		LoadCases: []core.LoadCase{{14: {0, -1, 0}}, {12: {1, 0, 0}}},
	})
	require.NoError(t, err)
	return p
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

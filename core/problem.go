// SPDX-License-Identifier: MIT

package core

import (
	"fmt"
	"math"
)

// DOFPerNode is the number of translational degrees of freedom of a pin joint.
const DOFPerNode = 3

// Problem is a validated, immutable layout-optimization instance.
// Accessors return copies; callers may mutate what they receive.
type Problem struct {
	// JointCost is the uniform extra length added to each member in the objective.
	JointCost float64

	nodes     []Vec3
	members   []Member
	cosines   []Vec3 // unit direction i→j per member, aligned with members
	supports  map[int]Support
	loadCases []LoadCase
	dof       []float64   // 1 free / 0 fixed, node-major
	forces    [][]float64 // per load case, node-major, len 3·|nodes|
}

// NewProblem validates in and precomputes member lengths, direction cosines,
// the free-DOF mask and one force vector per load case.
// Errors: ErrEmptyProblem, ErrInvalidIndex, ErrDegenerateMember, ErrInvalidValue.
// Complexity: O(|nodes| + |members| + Σ|load case|).
func NewProblem(in Input) (*Problem, error) {
	n := len(in.Nodes)
	if n == 0 {
		return nil, fmt.Errorf("NewProblem: %w", ErrEmptyProblem)
	}
	if !finite(in.JointCost) || in.JointCost < 0 {
		return nil, fmt.Errorf("NewProblem: joint cost %g: %w", in.JointCost, ErrInvalidValue)
	}

	p := &Problem{
		JointCost: in.JointCost,
		nodes:     make([]Vec3, n),
		members:   make([]Member, 0, len(in.Members)),
		cosines:   make([]Vec3, 0, len(in.Members)),
		supports:  make(map[int]Support, len(in.Supports)),
		loadCases: make([]LoadCase, 0, len(in.LoadCases)),
		dof:       make([]float64, DOFPerNode*n),
	}

	// Nodes: copy and reject non-finite coordinates.
	for i, nd := range in.Nodes {
		if !finiteVec(nd) {
			return nil, fmt.Errorf("NewProblem: node %d %v: %w", i, nd, ErrInvalidValue)
		}
		p.nodes[i] = nd
	}

	// Members: endpoints, strengths, length, direction.
	for k, ms := range in.Members {
		if ms.I < 0 || ms.I >= n || ms.J < 0 || ms.J >= n {
			return nil, fmt.Errorf("NewProblem: member %d (%d→%d) with %d nodes: %w",
				k, ms.I, ms.J, n, ErrInvalidIndex)
		}
		if !finite(ms.Tension) || !finite(ms.Compression) || ms.Tension < 0 || ms.Compression < 0 {
			return nil, fmt.Errorf("NewProblem: member %d strengths (%g, %g): %w",
				k, ms.Tension, ms.Compression, ErrInvalidValue)
		}
		d := sub(p.nodes[ms.J], p.nodes[ms.I])
		l := norm(d)
		if l == 0 {
			return nil, fmt.Errorf("NewProblem: member %d (%d→%d): %w", k, ms.I, ms.J, ErrDegenerateMember)
		}
		p.members = append(p.members, Member{
			I:           ms.I,
			J:           ms.J,
			Length:      l,
			Initial:     ms.Initial,
			Tension:     ms.Tension,
			Compression: ms.Compression,
		})
		p.cosines = append(p.cosines, Vec3{d[0] / l, d[1] / l, d[2] / l})
	}

	// Supports: default free, then apply overrides.
	for i := range p.dof {
		p.dof[i] = 1
	}
	for node, s := range in.Supports {
		if node < 0 || node >= n {
			return nil, fmt.Errorf("NewProblem: support at node %d with %d nodes: %w", node, n, ErrInvalidIndex)
		}
		p.supports[node] = s
		for axis := 0; axis < DOFPerNode; axis++ {
			if !s[axis] {
				p.dof[DOFPerNode*node+axis] = 0
			}
		}
	}

	// Load cases: one explicit vector per case.
	p.forces = make([][]float64, 0, len(in.LoadCases))
	for c, lc := range in.LoadCases {
		f := make([]float64, DOFPerNode*n)
		cp := make(LoadCase, len(lc))
		for node, v := range lc {
			if node < 0 || node >= n {
				return nil, fmt.Errorf("NewProblem: load case %d at node %d with %d nodes: %w",
					c, node, n, ErrInvalidIndex)
			}
			if !finiteVec(v) {
				return nil, fmt.Errorf("NewProblem: load case %d at node %d %v: %w", c, node, v, ErrInvalidValue)
			}
			copy(f[DOFPerNode*node:DOFPerNode*node+DOFPerNode], v[:])
			cp[node] = v
		}
		p.forces = append(p.forces, f)
		p.loadCases = append(p.loadCases, cp)
	}

	return p, nil
}

// NodeCount returns the number of nodes.
func (p *Problem) NodeCount() int { return len(p.nodes) }

// DOFCount returns 3·NodeCount, the row count of every equilibrium matrix.
func (p *Problem) DOFCount() int { return DOFPerNode * len(p.nodes) }

// MemberCount returns the size of the potential member list.
func (p *Problem) MemberCount() int { return len(p.members) }

// LoadCaseCount returns the number of load cases.
func (p *Problem) LoadCaseCount() int { return len(p.forces) }

// Node returns the coordinates of node i. It panics if i is out of range.
func (p *Problem) Node(i int) Vec3 { return p.nodes[i] }

// Nodes returns a copy of the node coordinates.
func (p *Problem) Nodes() []Vec3 {
	out := make([]Vec3, len(p.nodes))
	copy(out, p.nodes)
	return out
}

// Member returns candidate k. It panics if k is out of range.
func (p *Problem) Member(k int) Member { return p.members[k] }

// Members returns a copy of the potential member list.
func (p *Problem) Members() []Member {
	out := make([]Member, len(p.members))
	copy(out, p.members)
	return out
}

// Cosines returns the unit vector from node I to node J of candidate k.
func (p *Problem) Cosines(k int) Vec3 { return p.cosines[k] }

// Supports returns a copy of the explicit support conditions.
func (p *Problem) Supports() map[int]Support {
	out := make(map[int]Support, len(p.supports))
	for k, v := range p.supports {
		out[k] = v
	}
	return out
}

// LoadCases returns a copy of the sparse load-case maps.
func (p *Problem) LoadCases() []LoadCase {
	out := make([]LoadCase, len(p.loadCases))
	for c, lc := range p.loadCases {
		cp := make(LoadCase, len(lc))
		for k, v := range lc {
			cp[k] = v
		}
		out[c] = cp
	}
	return out
}

// DOFMask returns the free-DOF selector (1 free, 0 fixed), node-major.
func (p *Problem) DOFMask() []float64 {
	out := make([]float64, len(p.dof))
	copy(out, p.dof)
	return out
}

// Forces returns one force vector per load case, each of length DOFCount.
// Entries of unloaded nodes are zero.
func (p *Problem) Forces() [][]float64 {
	out := make([][]float64, len(p.forces))
	for c, f := range p.forces {
		out[c] = make([]float64, len(f))
		copy(out[c], f)
	}
	return out
}

// EffectiveLength returns Length + JointCost for candidate k; this is the
// objective coefficient of the member's area.
func (p *Problem) EffectiveLength(k int) float64 { return p.members[k].Length + p.JointCost }

// InitialActivation returns a fresh activation array holding each member's
// Initial flag.
func (p *Problem) InitialActivation() []bool {
	out := make([]bool, len(p.members))
	for k, m := range p.members {
		out[k] = m.Initial
	}
	return out
}

// ActiveIndices returns, in ascending order, the indices k with active[k] set.
// len(active) must equal MemberCount.
func (p *Problem) ActiveIndices(active []bool) []int {
	return filter(active, true)
}

// InactiveIndices returns, in ascending order, the indices k with active[k] unset.
func (p *Problem) InactiveIndices(active []bool) []int {
	return filter(active, false)
}

func filter(active []bool, want bool) []int {
	out := make([]int, 0, len(active))
	for k, a := range active {
		if a == want {
			out = append(out, k)
		}
	}
	return out
}

func sub(a, b Vec3) Vec3 { return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }

func norm(v Vec3) float64 { return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2]) }

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

func finiteVec(v Vec3) bool { return finite(v[0]) && finite(v[1]) && finite(v[2]) }

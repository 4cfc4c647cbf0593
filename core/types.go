// SPDX-License-Identifier: MIT

package core

// Vec3 is a point or vector in 3D space (X, Y, Z).
type Vec3 [3]float64

// Support holds per-axis freedom flags for a node: true means the axis is
// free, false means it is fixed and the reaction is taken by the support.
type Support [3]bool

// Common support conditions.
var (
	Free   = Support{true, true, true}    // no restraint (default for unlisted nodes)
	Fixed  = Support{false, false, false} // pinned in every direction
	Roller = Support{true, false, true}   // restrained in Y only
)

// LoadCase maps a node index to the external force applied there (kN).
// Nodes not present in the map are unloaded.
type LoadCase map[int]Vec3

// MemberSpec is a candidate member as supplied by the caller.
type MemberSpec struct {
	I, J        int     // endpoint node indices
	Initial     bool    // include in the starting active set
	Tension     float64 // tensile stress limit (force per unit area)
	Compression float64 // compressive stress limit (force per unit area), positive
}

// Member is a validated entry of the potential member list.
// Length is the Euclidean distance between the endpoints, fixed at load time.
type Member struct {
	I, J        int
	Length      float64
	Initial     bool
	Tension     float64
	Compression float64
}

// Input is the raw function boundary of the optimizer.
type Input struct {
	// Nodes are the candidate joints; their position in the slice is their index.
	Nodes []Vec3

	// Members is the ground structure in stable order.
	Members []MemberSpec

	// Supports maps node index to freedom flags; unlisted nodes are free.
	Supports map[int]Support

	// LoadCases are solved jointly; they share cross-sections but not forces.
	LoadCases []LoadCase

	// JointCost is a uniform extra length added to every member in the
	// objective to discourage many short members. Must be >= 0.
	JointCost float64
}

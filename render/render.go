// SPDX-License-Identifier: MIT

package render

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/katalvlaran/layopt/adaptive"
	"github.com/katalvlaran/layopt/core"
)

// DefaultMaxWidth is the line width of the member with the largest area.
const DefaultMaxWidth = 5.0

// Plane selects the projection.
type Plane int

const (
	PlaneXY Plane = iota
	PlaneXZ
	PlaneYZ
	Plane3D
)

// ParsePlane accepts "xy", "xz", "yz" and "3d" (case-insensitive); the empty
// string means xy.
func ParsePlane(s string) (Plane, error) {
	switch strings.ToLower(s) {
	case "", "xy":
		return PlaneXY, nil
	case "xz":
		return PlaneXZ, nil
	case "yz":
		return PlaneYZ, nil
	case "3d":
		return Plane3D, nil
	}
	return 0, fmt.Errorf("ParsePlane: %q: %w", s, ErrUnknownPlane)
}

func (p Plane) String() string {
	switch p {
	case PlaneXY:
		return "xy"
	case PlaneXZ:
		return "xz"
	case PlaneYZ:
		return "yz"
	case Plane3D:
		return "3d"
	}
	return fmt.Sprintf("Plane(%d)", int(p))
}

// axes returns the source axes of the first two drawing coordinates.
func (p Plane) axes() (u, v int) {
	switch p {
	case PlaneXZ:
		return 0, 2
	case PlaneYZ:
		return 1, 2
	}
	return 0, 1
}

// project maps a point onto the plane; 2D planes leave the third
// coordinate at zero, Plane3D keeps the point.
func (p Plane) project(x core.Vec3) core.Vec3 {
	if p == Plane3D {
		return x
	}
	u, v := p.axes()
	return core.Vec3{x[u], x[v], 0}
}

// Color is the force-sign category of a member.
type Color string

const (
	Tension     Color = "red"
	Compression Color = "blue"
	Mixed       Color = "gray"
)

// Options control Draw. The zero value draws every member with positive
// area in the XY plane.
type Options struct {
	Threshold float64 // members with area < Threshold are omitted
	Plane     Plane
	MaxWidth  float64 // <= 0 means DefaultMaxWidth
}

// Segment is one member to draw.
type Segment struct {
	Member   int // PML index
	From, To core.Vec3
	Area     float64
	Color    Color
	Width    float64
}

// Arrow is a load vector applied at a node.
type Arrow struct {
	Case   int
	Node   int
	At     core.Vec3
	Vector core.Vec3
}

// Marker flags a fixed axis of a support. Symbol is "^" for X, ">" for Y
// and "<" for Z.
type Marker struct {
	Node   int
	Axis   int
	At     core.Vec3
	Symbol string
}

// Drawing collects everything a renderer needs.
type Drawing struct {
	Plane    Plane
	Segments []Segment
	Loads    []Arrow
	Supports []Marker
}

var supportSymbols = [core.DOFPerNode]string{"^", ">", "<"}

// Draw styles res, which must come from a run on p.
func Draw(p *core.Problem, res *adaptive.Result, opts Options) (*Drawing, error) {
	if res == nil {
		return nil, fmt.Errorf("Draw: nil result: %w", ErrMalformedResult)
	}
	m := len(res.MemberIndices)
	if len(res.Areas) != m {
		return nil, fmt.Errorf("Draw: %d areas for %d members: %w", len(res.Areas), m, ErrMalformedResult)
	}
	for c, q := range res.Forces {
		if len(q) != m {
			return nil, fmt.Errorf("Draw: case %d has %d forces for %d members: %w", c, len(q), m, ErrMalformedResult)
		}
	}
	for _, k := range res.MemberIndices {
		if k < 0 || k >= p.MemberCount() {
			return nil, fmt.Errorf("Draw: member %d of %d: %w", k, p.MemberCount(), ErrMalformedResult)
		}
	}

	maxWidth := opts.MaxWidth
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	var maxArea float64
	for _, a := range res.Areas {
		maxArea = max(maxArea, a)
	}

	d := &Drawing{Plane: opts.Plane}
	for i, k := range res.MemberIndices {
		a := res.Areas[i]
		if a < opts.Threshold || (a == 0 && opts.Threshold == 0) {
			continue
		}
		mem := p.Member(k)
		seg := Segment{
			Member: k,
			From:   opts.Plane.project(p.Node(mem.I)),
			To:     opts.Plane.project(p.Node(mem.J)),
			Area:   a,
			Color:  colorOf(res.Forces, i),
		}
		if maxArea > 0 {
			seg.Width = a * maxWidth / maxArea
		}
		d.Segments = append(d.Segments, seg)
	}

	for c, lc := range p.LoadCases() {
		for _, node := range slices.Sorted(maps.Keys(lc)) {
			d.Loads = append(d.Loads, Arrow{
				Case:   c,
				Node:   node,
				At:     opts.Plane.project(p.Node(node)),
				Vector: opts.Plane.project(lc[node]),
			})
		}
	}

	supports := p.Supports()
	for _, node := range slices.Sorted(maps.Keys(supports)) {
		for axis, free := range supports[node] {
			if free {
				continue
			}
			d.Supports = append(d.Supports, Marker{
				Node:   node,
				Axis:   axis,
				At:     opts.Plane.project(p.Node(node)),
				Symbol: supportSymbols[axis],
			})
		}
	}

	return d, nil
}

func colorOf(forces [][]float64, i int) Color {
	tension, compression := true, true
	for _, q := range forces {
		tension = tension && q[i] >= 0
		compression = compression && q[i] <= 0
	}
	switch {
	case tension:
		return Tension
	case compression:
		return Compression
	}
	return Mixed
}

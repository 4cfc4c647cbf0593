// SPDX-License-Identifier: MIT

// Package render turns an optimized layout into drawable primitives without
// drawing anything: coloured, width-scaled member segments, load arrows and
// support markers, projected onto a plane or kept in 3D.
//
// A member is red when it is in tension (q >= 0) in every load case, blue
// when in compression (q <= 0) in every case, gray otherwise. Widths are
// proportional to area, with the largest area drawn at MaxWidth (default 5).
// Members with an area below Threshold are left out.
package render

// SPDX-License-Identifier: MIT
// Package: layopt/builder
//
// errors.go — sentinel errors for the builder package.
//
// Error policy:
//   • Only sentinel variables are exposed; match them with errors.Is.
//   • Call sites attach context with %w ("Grid: nx=0: builder: ...").
//   • Constructors never panic at runtime; option constructors do.

package builder

import "errors"

// ErrTooFewNodes indicates a lattice dimension below 1 or a node list
// too short to hold a single member.
var ErrTooFewNodes = errors.New("builder: too few nodes")

// ErrInvalidSpacing indicates a lattice spacing that is not a positive finite
// number.
var ErrInvalidSpacing = errors.New("builder: invalid spacing")

// ErrNotFound indicates that no node lies at the requested position.
var ErrNotFound = errors.New("builder: node not found")

// SPDX-License-Identifier: MIT

package render

import "errors"

var (
	// ErrUnknownPlane indicates an unrecognized projection name.
	ErrUnknownPlane = errors.New("render: unknown plane")

	// ErrMalformedResult indicates a result whose per-member slices disagree.
	ErrMalformedResult = errors.New("render: malformed result")
)

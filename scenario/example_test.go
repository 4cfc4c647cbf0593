// SPDX-License-Identifier: MIT

package scenario_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/katalvlaran/layopt/adaptive"
	"github.com/katalvlaran/layopt/scenario"
)

// ExampleDecode runs a single-bar scenario straight from YAML.
func ExampleDecode() {
	f, err := scenario.Decode(strings.NewReader(`
nodes: [[0, 1, 0], [0, 0, 0]]
members:
  - {i: 0, j: 1, initial: true, tension: 1, compression: 1}
supports: {0: [0, 0, 0]}
loads:
  - 1: [0, -2, 0]
settings: {max_iterations: 5}
`))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	p, err := f.Problem()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	opts, err := f.Options()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	res, err := adaptive.Run(context.Background(), p, opts...)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("%s, area %.1f\n", res.Status, res.Areas[0])
	// Output:
	// converged, area 2.0
}

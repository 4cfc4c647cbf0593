// SPDX-License-Identifier: MIT

// Command layopt runs adaptive layout optimization on a YAML scenario.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// SPDX-License-Identifier: MIT

package adaptive

import (
	"fmt"
	"time"

	"github.com/katalvlaran/layopt/core"
)

// Status tells why the loop stopped.
type Status int

const (
	// StatusConverged: the last check admitted no member.
	StatusConverged Status = iota
	// StatusIterationLimit: the iteration cap was reached first.
	StatusIterationLimit
	// StatusBudgetExhausted: the time budget ran out first.
	StatusBudgetExhausted
	// StatusInterrupted: a later iteration failed or the context was
	// canceled; the Result holds the last completed iteration.
	StatusInterrupted
	// StatusUncertified: the solver returned no multipliers while inactive
	// members remained, so the check had nothing to test them against.
	StatusUncertified
)

func (s Status) String() string {
	switch s {
	case StatusConverged:
		return "converged"
	case StatusIterationLimit:
		return "iteration-limit"
	case StatusBudgetExhausted:
		return "budget-exhausted"
	case StatusInterrupted:
		return "interrupted"
	case StatusUncertified:
		return "uncertified"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// IterationStats describes one iteration.
type IterationStats struct {
	RunID          string
	Iteration      int // 1-based
	Active         int // members in the solved LP
	Volume         float64
	Activated      int // members admitted by the check
	Violating      int
	Inactive       int
	MaxUtilization float64
	DualsRecovered bool // false when the check ran on zero displacements
	SolveTime      time.Duration
	CheckTime      time.Duration
}

// Observer receives progress callbacks from Run, on the calling goroutine.
type Observer interface {
	ObserveIteration(IterationStats)
	ObserveRun(*Result)
}

// Result is the layout of the last solved active set.
type Result struct {
	RunID      string
	Status     Status
	Iterations int

	// Nodes is a copy of the problem's nodes.
	Nodes []core.Vec3

	// MemberIndices are the PML indices of the solved active set, ascending;
	// Members, Areas and every Forces[c] are aligned with them.
	MemberIndices []int
	Members       []core.Member
	Areas         []float64
	Forces        [][]float64

	// Duals[c] are the virtual displacements of load case c.
	Duals [][]float64

	// DualsRecovered reports whether the last LP produced multipliers.
	// When false, Duals are zero vectors.
	DualsRecovered bool

	// Volume is Σ (l + jointCost)·a over the active set.
	Volume float64

	// MaxUtilization is the largest utilization among inactive members in
	// the last check (0 when none were left).
	MaxUtilization float64

	// Pending lists members admitted by the last check but never solved.
	// Empty on convergence.
	Pending []int

	History []IterationStats
}

// Warning returns ErrNonConvergence unless the run converged. An uncertified
// stop also matches ErrUncertified.
func (r *Result) Warning() error {
	if r == nil || r.Status == StatusConverged {
		return nil
	}
	if r.Status == StatusUncertified {
		return fmt.Errorf("Warning: %s after %d iterations: %w: %w", r.Status, r.Iterations, ErrUncertified, ErrNonConvergence)
	}
	return fmt.Errorf("Warning: %s after %d iterations: %w", r.Status, r.Iterations, ErrNonConvergence)
}

// SPDX-License-Identifier: MIT

package violation

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/layopt/core"
	"github.com/katalvlaran/layopt/matrix"
)

// Defaults of the admission policy.
const (
	DefaultTolerance          = 1.0001
	DefaultActivationFraction = 0.05
	DefaultPoolFraction       = 0.05

	// minChunk keeps tiny candidate pools on a single goroutine.
	minChunk = 256
)

// Config controls the check.
//   - Tolerance: utilization above which a member violates (must be > 1).
//   - ActivationFraction, PoolFraction: admission cap factors in (0, 1].
//   - Workers: goroutines for utilization; <= 0 means GOMAXPROCS.
//
// Zero fields are replaced by the defaults; Check rejects anything else out
// of range with ErrInvalidConfig.
type Config struct {
	Tolerance          float64
	ActivationFraction float64
	PoolFraction       float64
	Workers            int
}

// DefaultConfig returns the reference policy.
func DefaultConfig() Config {
	return Config{
		Tolerance:          DefaultTolerance,
		ActivationFraction: DefaultActivationFraction,
		PoolFraction:       DefaultPoolFraction,
	}
}

func (c *Config) normalize() {
	if c.Tolerance == 0 {
		c.Tolerance = DefaultTolerance
	}
	if c.ActivationFraction == 0 {
		c.ActivationFraction = DefaultActivationFraction
	}
	if c.PoolFraction == 0 {
		c.PoolFraction = DefaultPoolFraction
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
}

func (c Config) validate() error {
	// Negated comparisons also catch NaN.
	if !(c.Tolerance > 1) || math.IsInf(c.Tolerance, 1) {
		return fmt.Errorf("tolerance %g: %w", c.Tolerance, ErrInvalidConfig)
	}
	if !(c.ActivationFraction > 0 && c.ActivationFraction <= 1) {
		return fmt.Errorf("activation fraction %g: %w", c.ActivationFraction, ErrInvalidConfig)
	}
	if !(c.PoolFraction > 0 && c.PoolFraction <= 1) {
		return fmt.Errorf("pool fraction %g: %w", c.PoolFraction, ErrInvalidConfig)
	}
	return nil
}

// Report summarizes one check.
type Report struct {
	Activated      []int   // PML indices admitted this round, by descending utilization
	Violating      int     // inactive members above Tolerance
	Inactive       int     // size of the inactive pool that was checked
	MaxUtilization float64 // largest utilization in the inactive pool (0 if empty)
}

// Converged reports whether no member was admitted.
func (r Report) Converged() bool { return len(r.Activated) == 0 }

// AdmissionCount returns how many of violating members are admitted out of an
// inactive pool of the given size.
func AdmissionCount(violating, inactive int, cfg Config) int {
	if violating <= 0 {
		return 0
	}
	cfg.normalize()
	n := float64(violating)
	capped := cfg.ActivationFraction * math.Max(cfg.PoolFraction*float64(inactive), n)
	return int(math.Ceil(math.Min(n, capped)))
}

// Utilization returns y_k for each candidate, in the order given.
// len(duals) must equal p.LoadCaseCount() and each vector p.DOFCount().
// Work is split into chunks processed by up to workers goroutines.
func Utilization(ctx context.Context, p *core.Problem, candidates []int, duals [][]float64, workers int) ([]float64, error) {
	if len(duals) != p.LoadCaseCount() {
		return nil, fmt.Errorf("Utilization: %d dual vectors for %d load cases: %w",
			len(duals), p.LoadCaseCount(), ErrDimensionMismatch)
	}
	for c, u := range duals {
		if len(u) != p.DOFCount() {
			return nil, fmt.Errorf("Utilization: dual %d has len %d, want %d: %w",
				c, len(u), p.DOFCount(), ErrDimensionMismatch)
		}
	}
	for _, k := range candidates {
		if k < 0 || k >= p.MemberCount() {
			return nil, fmt.Errorf("Utilization: candidate %d of %d: %w", k, p.MemberCount(), ErrDimensionMismatch)
		}
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	dof := p.DOFMask()
	y := make([]float64, len(candidates))

	chunk := max(minChunk, (len(candidates)+workers-1)/workers)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for lo := 0; lo < len(candidates); lo += chunk {
		lo, hi := lo, min(lo+chunk, len(candidates))
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				y[i] = utilization(p, candidates[i], dof, duals)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("Utilization: %w", err)
	}

	return y, nil
}

// utilization evaluates one candidate against every load case.
func utilization(p *core.Problem, k int, dof []float64, duals [][]float64) float64 {
	m := p.Member(k)
	l := p.EffectiveLength(k)
	var y float64
	for _, u := range duals {
		e := matrix.Project(p, k, dof, u) / l
		y += math.Max(m.Tension*e, -m.Compression*e)
	}
	return y
}

// Check evaluates every inactive member, admits the top violators and sets
// their flags in active. len(active) must equal p.MemberCount().
func Check(ctx context.Context, p *core.Problem, active []bool, duals [][]float64, cfg Config) (Report, error) {
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return Report{}, fmt.Errorf("Check: %w", err)
	}
	if len(active) != p.MemberCount() {
		return Report{}, fmt.Errorf("Check: activation len %d, want %d: %w",
			len(active), p.MemberCount(), ErrDimensionMismatch)
	}

	pool := p.InactiveIndices(active)
	y, err := Utilization(ctx, p, pool, duals, cfg.Workers)
	if err != nil {
		return Report{}, fmt.Errorf("Check: %w", err)
	}

	rep := Report{Inactive: len(pool)}
	vio := make([]int, 0)
	for i, yi := range y {
		rep.MaxUtilization = math.Max(rep.MaxUtilization, yi)
		if yi > cfg.Tolerance {
			vio = append(vio, i)
		}
	}
	rep.Violating = len(vio)

	// Descending utilization; pool is ascending so the stable sort keeps the
	// lower PML index first on ties.
	sort.SliceStable(vio, func(a, b int) bool { return y[vio[a]] > y[vio[b]] })

	n := AdmissionCount(len(vio), len(pool), cfg)
	rep.Activated = make([]int, 0, n)
	for _, i := range vio[:n] {
		k := pool[i]
		active[k] = true
		rep.Activated = append(rep.Activated, k)
	}

	return rep, nil
}

// SPDX-License-Identifier: MIT

package solver

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	boundTol     = 1e-9  // bound violation tolerated by the ratio test
	expelTol     = 1e-7  // smallest pivot accepted when removing a basic artificial
	stepTol      = 1e-12 // steps below this count as degenerate
	blandAfter   = 50    // consecutive degenerate pivots before Bland's rule
	ctxEvery     = 64    // pivots between context checks
	minRefactor  = 100
	pivotsPerCol = 20
)

// varStatus is the position of a column relative to the basis.
type varStatus uint8

const (
	atLower varStatus = iota
	atUpper
	atZero // free and nonbasic
	inBasis
)

// engine is a bounded revised simplex over a model. The basis inverse is kept
// dense and updated in product form; it is rebuilt from scratch with gonum's
// LU every refactorEvery pivots and before optimality is declared.
type engine struct {
	*model
	ctx context.Context

	optTol   float64
	pivotTol float64

	basis []int // basis[r] = column basic in row r
	stat  []varStatus
	x     []float64
	binv  [][]float64 // binv[r] = row r of B⁻¹
	y     []float64
	alpha []float64

	pivots        int
	maxPivots     int
	sinceRefactor int
	refactorEvery int
	degenerate    int
	bland         bool
}

// newEngine places every column at a bound and builds a start basis from
// slacks where the row residual allows it and artificials elsewhere.
func newEngine(ctx context.Context, md *model, s *Simplex) *engine {
	e := &engine{
		model:    md,
		ctx:      ctx,
		optTol:   s.optimalityTol,
		pivotTol: s.pivotTol,
		basis:    make([]int, md.m),
		y:        make([]float64, md.m),
		alpha:    make([]float64, md.m),
		binv:     make([][]float64, md.m),
	}
	for r := range e.binv {
		e.binv[r] = make([]float64, md.m)
	}
	for j := range md.cols {
		e.stat = append(e.stat, 0)
		e.x = append(e.x, 0)
		e.toBound(j)
	}

	resid := append([]float64(nil), md.rhs...)
	slackOf := make([]int, md.m)
	for r := range slackOf {
		slackOf[r] = -1
	}
	for j, col := range md.cols {
		if md.kind[j] == kindSlack {
			slackOf[col.rows[0]] = j
		}
		if xj := e.x[j]; xj != 0 {
			for k, r := range col.rows {
				resid[r] -= col.vals[k] * xj
			}
		}
	}

	for r := 0; r < md.m; r++ {
		if j := slackOf[r]; j >= 0 && resid[r] >= 0 {
			e.enterBasis(j, r, resid[r])
			e.binv[r][r] = 1
			continue
		}
		sign := 1.0
		if resid[r] < 0 {
			sign = -1
		}
		j := md.addColumn(column{rows: []int{r}, vals: []float64{sign}}, kindArtificial, 0, math.Inf(1))
		e.stat = append(e.stat, 0)
		e.x = append(e.x, 0)
		e.enterBasis(j, r, math.Abs(resid[r]))
		e.binv[r][r] = sign
	}

	e.maxPivots = pivotsPerCol*(md.m+len(md.cols)) + 1000
	e.refactorEvery = max(minRefactor, md.m/2)
	return e
}

// toBound makes column j nonbasic at its finite lower bound, else its finite
// upper bound, else zero.
func (e *engine) toBound(j int) {
	switch {
	case !math.IsInf(e.lo[j], -1):
		e.stat[j], e.x[j] = atLower, e.lo[j]
	case !math.IsInf(e.up[j], 1):
		e.stat[j], e.x[j] = atUpper, e.up[j]
	default:
		e.stat[j], e.x[j] = atZero, 0
	}
}

func (e *engine) enterBasis(j, r int, v float64) {
	e.basis[r] = j
	e.stat[j] = inBasis
	e.x[j] = v
}

// phaseOne drives the artificials to zero, then fixes them at zero and pivots
// out those that can leave. An artificial that stays basic marks a redundant
// row; its multiplier comes out as whatever the basis assigns, which is valid.
func (e *engine) phaseOne(feasTol float64) error {
	cost := make([]float64, len(e.cols))
	var hasArtificial bool
	for j, k := range e.kind {
		if k == kindArtificial {
			cost[j] = 1
			hasArtificial = true
		}
	}
	if hasArtificial {
		if err := e.run(cost, false); err != nil {
			return err
		}
		var infeas float64
		for j, k := range e.kind {
			if k == kindArtificial {
				infeas += math.Max(e.x[j], 0)
			}
		}
		if infeas > feasTol*math.Max(1, floats.Norm(e.rhs, math.Inf(1))) {
			return fmt.Errorf("phase 1 ends with infeasibility %g: %w", infeas, ErrInfeasible)
		}
	}

	for j, k := range e.kind {
		if k != kindArtificial {
			continue
		}
		e.lo[j], e.up[j] = 0, 0
		if e.stat[j] != inBasis {
			e.stat[j], e.x[j] = atLower, 0
		}
	}
	e.expelArtificials()
	return nil
}

// expelArtificials replaces basic artificials by structural or slack columns
// with a degenerate pivot wherever the basis row allows it.
func (e *engine) expelArtificials() {
	for r := range e.basis {
		j := e.basis[r]
		if e.kind[j] != kindArtificial {
			continue
		}
		rho := e.binv[r]
		best, bestAbs := -1, expelTol
		for q, col := range e.cols {
			if e.stat[q] == inBasis || e.kind[q] == kindArtificial {
				continue
			}
			if v := math.Abs(col.dot(rho)); v > bestAbs {
				best, bestAbs = q, v
			}
		}
		if best < 0 {
			continue
		}
		e.ftran(best)
		e.x[j] = 0
		e.pivot(best, r)
		e.sinceRefactor++
	}
}

// run iterates until no column prices out. With cost set to the phase-1
// objective an unbounded ray is a numerical failure, not a property of the
// problem.
func (e *engine) run(cost []float64, phaseTwo bool) error {
	for {
		if e.pivots%ctxEvery == 0 {
			if err := e.ctx.Err(); err != nil {
				return err
			}
		}
		if e.pivots > e.maxPivots {
			return fmt.Errorf("no optimum after %d pivots: %w", e.pivots, ErrNumeric)
		}
		if e.sinceRefactor >= e.refactorEvery {
			if err := e.refactor(); err != nil {
				return err
			}
		}

		e.computeDuals(cost)
		q, dir := e.price(cost)
		if q < 0 {
			if e.sinceRefactor == 0 {
				return nil
			}
			// Confirm against a fresh factorization.
			if err := e.refactor(); err != nil {
				return err
			}
			continue
		}

		e.ftran(q)
		r, t, flip := e.ratio(q, dir)
		if r < 0 && !flip {
			if !phaseTwo {
				return fmt.Errorf("phase 1 ray along column %d: %w", q, ErrNumeric)
			}
			return fmt.Errorf("column %d: %w", q, ErrUnbounded)
		}
		e.step(q, dir, r, t, flip)
	}
}

// computeDuals sets y = B⁻ᵀ·c_B.
func (e *engine) computeDuals(cost []float64) {
	for i := range e.y {
		e.y[i] = 0
	}
	for r, j := range e.basis {
		c := cost[j]
		if c == 0 {
			continue
		}
		floats.AddScaled(e.y, c, e.binv[r])
	}
}

// reducedCost returns c_j − yᵀA_j for the current duals.
func (e *engine) reducedCost(cost []float64, j int) float64 {
	return cost[j] - e.cols[j].dot(e.y)
}

// price picks the entering column and its direction (+1 up, −1 down), or
// returns −1 when the basis is optimal. Dantzig's rule is used until a run of
// degenerate pivots switches to Bland's.
func (e *engine) price(cost []float64) (int, float64) {
	best, bestScore, bestDir := -1, 0.0, 0.0
	for j := range e.cols {
		st := e.stat[j]
		if st == inBasis || e.lo[j] == e.up[j] {
			continue
		}
		d := e.reducedCost(cost, j)
		var dir float64
		switch {
		case d < -e.optTol && st != atUpper:
			dir = 1
		case d > e.optTol && st != atLower:
			dir = -1
		default:
			continue
		}
		if e.bland {
			return j, dir
		}
		if s := math.Abs(d); s > bestScore {
			best, bestScore, bestDir = j, s, dir
		}
	}
	return best, bestDir
}

// ftran sets alpha = B⁻¹·A_q.
func (e *engine) ftran(q int) {
	col := e.cols[q]
	for r, row := range e.binv {
		var s float64
		for k, i := range col.rows {
			s += row[i] * col.vals[k]
		}
		e.alpha[r] = s
	}
}

// distance returns how far basic row r may move along a = dir·alpha[r]
// before hitting a bound, and false when it is unbounded that way.
func (e *engine) distance(r int, a float64) (float64, bool) {
	j := e.basis[r]
	switch {
	case a > e.pivotTol && !math.IsInf(e.lo[j], -1):
		return e.x[j] - e.lo[j], true
	case a < -e.pivotTol && !math.IsInf(e.up[j], 1):
		return e.up[j] - e.x[j], true
	}
	return 0, false
}

// ratio selects the leaving row for entering column q. It returns
// flip == true when q reaches its own opposite bound first. Harris' two-pass
// test is used normally; in Bland mode the exact minimum ratio with the
// smallest basic index wins.
func (e *engine) ratio(q int, dir float64) (r int, t float64, flip bool) {
	flipT := e.up[q] - e.lo[q] // +Inf unless both bounds are finite

	r = -1
	if e.bland {
		t = math.Inf(1)
		for i := range e.alpha {
			a := dir * e.alpha[i]
			dist, ok := e.distance(i, a)
			if !ok {
				continue
			}
			ti := dist / math.Abs(a)
			switch {
			case r < 0 || ti < t-stepTol:
				r, t = i, ti
			case math.Abs(ti-t) <= stepTol && e.basis[i] < e.basis[r]:
				r = i
			}
		}
	} else {
		tMax := math.Inf(1)
		for i := range e.alpha {
			a := dir * e.alpha[i]
			if dist, ok := e.distance(i, a); ok {
				tMax = math.Min(tMax, (dist+boundTol)/math.Abs(a))
			}
		}
		var bestA float64
		for i := range e.alpha {
			a := dir * e.alpha[i]
			dist, ok := e.distance(i, a)
			if !ok {
				continue
			}
			if ti := dist / math.Abs(a); ti <= tMax && math.Abs(a) > bestA {
				r, t, bestA = i, ti, math.Abs(a)
			}
		}
	}

	if r < 0 {
		if math.IsInf(flipT, 1) {
			return -1, 0, false
		}
		return -1, flipT, true
	}
	t = math.Max(t, 0)
	if flipT <= t {
		return -1, flipT, true
	}
	return r, t, false
}

// step moves q by dir·t, updates the basic values and either flips q to its
// other bound or pivots it into row r.
func (e *engine) step(q int, dir float64, r int, t float64, flip bool) {
	if t != 0 {
		for i, j := range e.basis {
			e.x[j] -= dir * e.alpha[i] * t
		}
		e.x[q] += dir * t
	}
	e.pivots++
	e.sinceRefactor++
	if t <= stepTol {
		e.degenerate++
		e.bland = e.degenerate >= blandAfter
	} else {
		e.degenerate = 0
		e.bland = false
	}

	if flip {
		if dir > 0 {
			e.stat[q], e.x[q] = atUpper, e.up[q]
		} else {
			e.stat[q], e.x[q] = atLower, e.lo[q]
		}
		return
	}

	leave := e.basis[r]
	if dir*e.alpha[r] > 0 {
		e.stat[leave], e.x[leave] = atLower, e.lo[leave]
	} else {
		e.stat[leave], e.x[leave] = atUpper, e.up[leave]
	}
	if e.kind[leave] == kindArtificial {
		// Once out, an artificial stays out.
		e.lo[leave], e.up[leave] = 0, 0
		e.stat[leave], e.x[leave] = atLower, 0
	}
	e.pivot(q, r)
}

// pivot makes q basic in row r using the current alpha and updates B⁻¹.
// The column leaving row r must already have its nonbasic status set.
func (e *engine) pivot(q, r int) {
	leave := e.basis[r]
	if e.stat[leave] == inBasis {
		e.stat[leave] = atLower
	}
	e.basis[r] = q
	e.stat[q] = inBasis

	rowR := e.binv[r]
	floats.Scale(1/e.alpha[r], rowR)
	for i, row := range e.binv {
		if i == r || e.alpha[i] == 0 {
			continue
		}
		floats.AddScaled(row, -e.alpha[i], rowR)
	}
}

// refactor rebuilds B⁻¹ from the basis columns and recomputes the basic
// values from the nonbasic ones.
func (e *engine) refactor() error {
	e.sinceRefactor = 0
	if e.m == 0 {
		return nil
	}
	b := mat.NewDense(e.m, e.m, nil)
	for r, j := range e.basis {
		col := e.cols[j]
		for k, i := range col.rows {
			b.Set(i, r, col.vals[k])
		}
	}
	var inv mat.Dense
	if err := inv.Inverse(b); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) || math.IsNaN(float64(cond)) {
			return fmt.Errorf("refactor: %v: %w", err, ErrNumeric)
		}
		// Ill-conditioned but usable.
	}
	for r := range e.binv {
		copy(e.binv[r], inv.RawRowView(r))
	}

	rhs := append([]float64(nil), e.rhs...)
	for j, col := range e.cols {
		if e.stat[j] == inBasis || e.x[j] == 0 {
			continue
		}
		for k, i := range col.rows {
			rhs[i] -= col.vals[k] * e.x[j]
		}
	}
	for r, j := range e.basis {
		e.x[j] = floats.Dot(e.binv[r], rhs)
	}
	return nil
}

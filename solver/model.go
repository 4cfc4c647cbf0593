// SPDX-License-Identifier: MIT

package solver

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Column kinds of the bounded standard form.
const (
	kindStructural = iota
	kindSlack
	kindArtificial
)

// column is a sparse constraint column in model-row coordinates.
type column struct {
	rows []int
	vals []float64
}

// dot returns yᵀ·col.
func (c column) dot(y []float64) float64 {
	var s float64
	for k, r := range c.rows {
		s += y[r] * c.vals[k]
	}
	return s
}

// model is the bounded standard form  M·x = rhs, lo <= x <= up  the simplex
// runs on. Structural columns come first, followed by one slack per general
// inequality row; artificials are appended when the start basis is built.
//
// Inequality rows with a single non-zero become variable bounds, zero rows
// are checked and dropped. The maps back to the caller's rows (eqRow, gRow)
// are what dual recovery reads.
type model struct {
	m    int
	cols []column
	kind []int
	cost []float64
	lo   []float64
	up   []float64
	rhs  []float64

	n     int       // structural columns
	eqRow []int     // equality row → model row, −1 when dropped
	gRow  []int     // inequality row → model row, −1 when it became a bound or was dropped
	gCol  []int     // singleton inequality row → its column, −1 otherwise
	gCoef []float64 // singleton inequality row → its coefficient
	loRow []int     // column → inequality row that set lo, −1 if none
	upRow []int     // column → inequality row that set up, −1 if none
}

type entry struct {
	j int
	v float64
}

// buildModel turns p into a bounded standard form. Rows that are trivially
// inconsistent (0 = b with b ≠ 0, 0 <= h with h < 0, crossing bounds) are
// reported as ErrInfeasible here.
func buildModel(p *Problem, n, mEq, mIneq int) (*model, error) {
	md := &model{
		n:     n,
		eqRow: make([]int, mEq),
		gRow:  make([]int, mIneq),
		gCol:  make([]int, mIneq),
		gCoef: make([]float64, mIneq),
		loRow: make([]int, n),
		upRow: make([]int, n),
	}

	eqEntries := make([][]entry, mEq)
	forEachNonZero(p.A, func(i, j int, v float64) {
		eqEntries[i] = append(eqEntries[i], entry{j, v})
	})
	gEntries := make([][]entry, mIneq)
	forEachNonZero(p.G, func(i, j int, v float64) {
		gEntries[i] = append(gEntries[i], entry{j, v})
	})

	structural := make([]column, n)
	appendRow := func(row []entry, rhs float64) int {
		r := len(md.rhs)
		md.rhs = append(md.rhs, rhs)
		for _, e := range row {
			structural[e.j].rows = append(structural[e.j].rows, r)
			structural[e.j].vals = append(structural[e.j].vals, e.v)
		}
		return r
	}

	for i, row := range eqEntries {
		if len(row) == 0 {
			if math.Abs(p.B[i]) > boundTol {
				return nil, fmt.Errorf("equality row %d is zero with b=%g: %w", i, p.B[i], ErrInfeasible)
			}
			md.eqRow[i] = -1
			continue
		}
		md.eqRow[i] = appendRow(row, p.B[i])
	}

	lo := make([]float64, n)
	up := make([]float64, n)
	for j := 0; j < n; j++ {
		lo[j], up[j] = math.Inf(-1), math.Inf(1)
		md.loRow[j], md.upRow[j] = -1, -1
	}

	var slackRows []int
	for i, row := range gEntries {
		md.gRow[i], md.gCol[i] = -1, -1
		switch len(row) {
		case 0:
			if p.H[i] < -boundTol {
				return nil, fmt.Errorf("inequality row %d is zero with h=%g: %w", i, p.H[i], ErrInfeasible)
			}
		case 1:
			e := row[0]
			md.gCol[i], md.gCoef[i] = e.j, e.v
			bound := p.H[i] / e.v
			if e.v > 0 {
				if bound < up[e.j] {
					up[e.j], md.upRow[e.j] = bound, i
				}
			} else if bound > lo[e.j] {
				lo[e.j], md.loRow[e.j] = bound, i
			}
		default:
			r := appendRow(row, p.H[i])
			md.gRow[i] = r
			slackRows = append(slackRows, r)
		}
	}

	for j := 0; j < n; j++ {
		if lo[j] > up[j] {
			if lo[j]-up[j] > boundTol*math.Max(1, math.Abs(lo[j])) {
				return nil, fmt.Errorf("variable %d has bounds [%g, %g]: %w", j, lo[j], up[j], ErrInfeasible)
			}
			up[j] = lo[j]
		}
	}

	md.m = len(md.rhs)
	md.cols = structural
	md.kind = make([]int, n)
	md.cost = append([]float64(nil), p.C...)
	md.lo, md.up = lo, up
	for _, r := range slackRows {
		md.addColumn(column{rows: []int{r}, vals: []float64{1}}, kindSlack, 0, math.Inf(1))
	}
	return md, nil
}

// addColumn appends a zero-cost column and returns its index.
func (md *model) addColumn(c column, kind int, lo, up float64) int {
	md.cols = append(md.cols, c)
	md.kind = append(md.kind, kind)
	md.cost = append(md.cost, 0)
	md.lo = append(md.lo, lo)
	md.up = append(md.up, up)
	return len(md.cols) - 1
}

// forEachNonZero calls fn for every non-zero of a in row-major order. Dense
// matrices are walked through their backing slice.
func forEachNonZero(a mat.Matrix, fn func(i, j int, v float64)) {
	if a == nil {
		return
	}
	if d, ok := a.(*mat.Dense); ok {
		raw := d.RawMatrix()
		for i := 0; i < raw.Rows; i++ {
			row := raw.Data[i*raw.Stride : i*raw.Stride+raw.Cols]
			for j, v := range row {
				if v != 0 {
					fn(i, j, v)
				}
			}
		}
		return
	}
	r, c := a.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := a.At(i, j); v != 0 {
				fn(i, j, v)
			}
		}
	}
}

// maxResidual returns the largest relative violation of A·x = b and G·x <= h.
func maxResidual(p *Problem, x []float64) float64 {
	ax := make([]float64, len(p.B))
	forEachNonZero(p.A, func(i, j int, v float64) { ax[i] += v * x[j] })
	gx := make([]float64, len(p.H))
	forEachNonZero(p.G, func(i, j int, v float64) { gx[i] += v * x[j] })

	var worst float64
	for i, bi := range p.B {
		worst = math.Max(worst, math.Abs(ax[i]-bi)/math.Max(1, math.Abs(bi)))
	}
	for i, hi := range p.H {
		worst = math.Max(worst, (gx[i]-hi)/math.Max(1, math.Abs(hi)))
	}
	return worst
}

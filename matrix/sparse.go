// SPDX-License-Identifier: MIT
// Package matrix — triplet assembly and compressed-sparse-column storage.
//
// Contract:
//   • Triplet collects (row, col, value) entries in any order; duplicates are summed.
//   • ToSparse sorts by (col, row), merges duplicates and drops exact zeros.
//   • Sparse is read-only after construction and safe for concurrent readers.
//
// Complexity:
//   • Put: O(1) amortized.  ToSparse: O(nnz log nnz).
//   • MulVec / MulTransVec: O(nnz).  At: O(log nnz(col)).

package matrix

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Triplet is a coordinate-list (COO) accumulator.
type Triplet struct {
	rows, cols int
	ri, ci     []int
	v          []float64
}

// NewTriplet returns an empty rows×cols accumulator with room for capacity entries.
// Errors: ErrBadShape when rows <= 0 or cols < 0.
func NewTriplet(rows, cols, capacity int) (*Triplet, error) {
	if rows <= 0 || cols < 0 {
		return nil, fmt.Errorf("NewTriplet: %dx%d: %w", rows, cols, ErrBadShape)
	}
	if capacity < 0 {
		capacity = 0
	}
	return &Triplet{
		rows: rows,
		cols: cols,
		ri:   make([]int, 0, capacity),
		ci:   make([]int, 0, capacity),
		v:    make([]float64, 0, capacity),
	}, nil
}

// Put records value v at (i, j). Entries at the same position are summed later.
// Errors: ErrOutOfRange, ErrNaNInf.
func (t *Triplet) Put(i, j int, v float64) error {
	if i < 0 || i >= t.rows || j < 0 || j >= t.cols {
		return fmt.Errorf("Put(%d,%d) on %dx%d: %w", i, j, t.rows, t.cols, ErrOutOfRange)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("Put(%d,%d): %w", i, j, ErrNaNInf)
	}
	t.ri = append(t.ri, i)
	t.ci = append(t.ci, j)
	t.v = append(t.v, v)
	return nil
}

// Len reports the number of recorded entries (before merging).
func (t *Triplet) Len() int { return len(t.v) }

// ToSparse compresses the triplets into column-major storage.
func (t *Triplet) ToSparse() *Sparse {
	order := make([]int, len(t.v))
	for k := range order {
		order[k] = k
	}
	sort.Slice(order, func(a, b int) bool {
		ka, kb := order[a], order[b]
		if t.ci[ka] != t.ci[kb] {
			return t.ci[ka] < t.ci[kb]
		}
		return t.ri[ka] < t.ri[kb]
	})

	s := &Sparse{
		rows:   t.rows,
		cols:   t.cols,
		colPtr: make([]int, t.cols+1),
		rowIdx: make([]int, 0, len(order)),
		val:    make([]float64, 0, len(order)),
	}

	// Merge runs of equal (col,row) and count entries per column.
	for a := 0; a < len(order); {
		k := order[a]
		r, c, sum := t.ri[k], t.ci[k], t.v[k]
		b := a + 1
		for ; b < len(order) && t.ci[order[b]] == c && t.ri[order[b]] == r; b++ {
			sum += t.v[order[b]]
		}
		a = b
		if sum == 0 {
			continue
		}
		s.rowIdx = append(s.rowIdx, r)
		s.val = append(s.val, sum)
		s.colPtr[c+1]++
	}
	for c := 0; c < t.cols; c++ {
		s.colPtr[c+1] += s.colPtr[c]
	}

	return s
}

// Sparse is an immutable compressed-sparse-column matrix.
type Sparse struct {
	rows, cols int
	colPtr     []int // len cols+1; column c occupies [colPtr[c], colPtr[c+1])
	rowIdx     []int // ascending within each column
	val        []float64
}

// Dims returns (rows, cols).
func (s *Sparse) Dims() (int, int) { return s.rows, s.cols }

// NNZ returns the number of stored non-zeros.
func (s *Sparse) NNZ() int { return len(s.val) }

// At returns the value at (i, j); absent entries are zero.
// Errors: ErrOutOfRange.
func (s *Sparse) At(i, j int) (float64, error) {
	if i < 0 || i >= s.rows || j < 0 || j >= s.cols {
		return 0, fmt.Errorf("At(%d,%d) on %dx%d: %w", i, j, s.rows, s.cols, ErrOutOfRange)
	}
	lo, hi := s.colPtr[j], s.colPtr[j+1]
	k := lo + sort.SearchInts(s.rowIdx[lo:hi], i)
	if k < hi && s.rowIdx[k] == i {
		return s.val[k], nil
	}
	return 0, nil
}

// Column calls fn for every stored entry of column j in ascending row order.
func (s *Sparse) Column(j int, fn func(row int, v float64)) {
	for k := s.colPtr[j]; k < s.colPtr[j+1]; k++ {
		fn(s.rowIdx[k], s.val[k])
	}
}

// MulVec returns s·x.
// Errors: ErrDimensionMismatch when len(x) != cols.
func (s *Sparse) MulVec(x []float64) ([]float64, error) {
	if len(x) != s.cols {
		return nil, fmt.Errorf("MulVec: len(x)=%d, cols=%d: %w", len(x), s.cols, ErrDimensionMismatch)
	}
	y := make([]float64, s.rows)
	for c := 0; c < s.cols; c++ {
		xc := x[c]
		if xc == 0 {
			continue
		}
		for k := s.colPtr[c]; k < s.colPtr[c+1]; k++ {
			y[s.rowIdx[k]] += s.val[k] * xc
		}
	}
	return y, nil
}

// MulTransVec returns sᵀ·y.
// Errors: ErrDimensionMismatch when len(y) != rows.
func (s *Sparse) MulTransVec(y []float64) ([]float64, error) {
	if len(y) != s.rows {
		return nil, fmt.Errorf("MulTransVec: len(y)=%d, rows=%d: %w", len(y), s.rows, ErrDimensionMismatch)
	}
	x := make([]float64, s.cols)
	for c := 0; c < s.cols; c++ {
		var acc float64
		for k := s.colPtr[c]; k < s.colPtr[c+1]; k++ {
			acc += s.val[k] * y[s.rowIdx[k]]
		}
		x[c] = acc
	}
	return x, nil
}

// Dense expands s into a gonum dense matrix. A matrix without columns has
// no gonum representation and yields nil.
func (s *Sparse) Dense() *mat.Dense {
	if s.cols == 0 {
		return nil
	}
	d := mat.NewDense(s.rows, s.cols, nil)
	for c := 0; c < s.cols; c++ {
		for k := s.colPtr[c]; k < s.colPtr[c+1]; k++ {
			d.Set(s.rowIdx[k], c, s.val[k])
		}
	}
	return d
}

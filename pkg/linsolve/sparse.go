// Package linsolve assembles sparse linear systems and solves the symmetric
// positive-definite ones produced by depth reconstruction.
package linsolve

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNotPositiveDefinite is returned when a factorisation or CG step meets
	// a non-positive pivot or curvature.
	ErrNotPositiveDefinite = errors.New("matrix is not positive definite")
	// ErrSingular is returned when the system is too ill-conditioned to trust.
	ErrSingular = errors.New("matrix is singular")
	// ErrNoConvergence is returned when an iterative solver runs out of
	// iterations.
	ErrNoConvergence = errors.New("solver did not converge")
	// ErrNotSymmetric is returned by solvers that need a symmetric matrix.
	ErrNotSymmetric = errors.New("matrix is not symmetric")
	// ErrDimension is returned for inconsistent sizes.
	ErrDimension = errors.New("dimension mismatch")
)

// Triplet is one (row, col, value) coefficient. Duplicates are summed when a
// matrix is built.
type Triplet struct {
	Row, Col int
	Value    float64
}

// Sparse is a square matrix in compressed sparse row form. It implements
// mat.Matrix so it can be printed or densified with gonum.
type Sparse struct {
	n      int
	rowPtr []int
	cols   []int
	vals   []float64
}

// NewSparse builds an n x n matrix from triplets.
func NewSparse(n int, ts []Triplet) (*Sparse, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative size %d", ErrDimension, n)
	}
	sorted := make([]Triplet, len(ts))
	copy(sorted, ts)
	for _, t := range sorted {
		if t.Row < 0 || t.Row >= n || t.Col < 0 || t.Col >= n {
			return nil, fmt.Errorf("%w: coefficient (%d,%d) outside %dx%d", ErrDimension, t.Row, t.Col, n, n)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Row != sorted[j].Row {
			return sorted[i].Row < sorted[j].Row
		}
		return sorted[i].Col < sorted[j].Col
	})

	a := &Sparse{n: n, rowPtr: make([]int, n+1)}
	for k, t := range sorted {
		if k > 0 && sorted[k-1].Row == t.Row && sorted[k-1].Col == t.Col {
			a.vals[len(a.vals)-1] += t.Value
			continue
		}
		a.cols = append(a.cols, t.Col)
		a.vals = append(a.vals, t.Value)
		a.rowPtr[t.Row+1]++
	}
	for i := 0; i < n; i++ {
		a.rowPtr[i+1] += a.rowPtr[i]
	}
	return a, nil
}

// Dims implements mat.Matrix.
func (a *Sparse) Dims() (r, c int) { return a.n, a.n }

// T implements mat.Matrix.
func (a *Sparse) T() mat.Matrix { return mat.Transpose{Matrix: a} }

// At implements mat.Matrix.
func (a *Sparse) At(i, j int) float64 {
	cols := a.cols[a.rowPtr[i]:a.rowPtr[i+1]]
	k := sort.SearchInts(cols, j)
	if k < len(cols) && cols[k] == j {
		return a.vals[a.rowPtr[i]+k]
	}
	return 0
}

// N returns the matrix order.
func (a *Sparse) N() int { return a.n }

// NNZ returns the number of stored coefficients.
func (a *Sparse) NNZ() int { return len(a.vals) }

// Row returns the column indices and values stored for row i. The slices
// alias the matrix.
func (a *Sparse) Row(i int) ([]int, []float64) {
	return a.cols[a.rowPtr[i]:a.rowPtr[i+1]], a.vals[a.rowPtr[i]:a.rowPtr[i+1]]
}

// MulVecTo stores a*x in dst.
func (a *Sparse) MulVecTo(dst, x []float64) {
	for i := 0; i < a.n; i++ {
		var s float64
		for k := a.rowPtr[i]; k < a.rowPtr[i+1]; k++ {
			s += a.vals[k] * x[a.cols[k]]
		}
		dst[i] = s
	}
}

// Diagonal returns a copy of the main diagonal.
func (a *Sparse) Diagonal() []float64 {
	d := make([]float64, a.n)
	for i := range d {
		d[i] = a.At(i, i)
	}
	return d
}

// Scale multiplies every coefficient by s in place.
func (a *Sparse) Scale(s float64) {
	for k := range a.vals {
		a.vals[k] *= s
	}
}

// IsSymmetric reports whether |a_ij - a_ji| <= tol for all stored entries.
func (a *Sparse) IsSymmetric(tol float64) bool {
	for i := 0; i < a.n; i++ {
		for k := a.rowPtr[i]; k < a.rowPtr[i+1]; k++ {
			if math.Abs(a.vals[k]-a.At(a.cols[k], i)) > tol {
				return false
			}
		}
	}
	return true
}

// SymDense copies the upper triangle into a dense symmetric matrix.
func (a *Sparse) SymDense() *mat.SymDense {
	s := mat.NewSymDense(a.n, nil)
	for i := 0; i < a.n; i++ {
		for k := a.rowPtr[i]; k < a.rowPtr[i+1]; k++ {
			if j := a.cols[k]; j >= i {
				s.SetSym(i, j, a.vals[k])
			}
		}
	}
	return s
}

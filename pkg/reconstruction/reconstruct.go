// Package reconstruction fills the unknown cells of a depth map by solving a
// discrete Poisson equation. Each unknown cell must satisfy
//
//	sum(neighbours) - count(neighbours) * value = target
//
// over its 4-neighbourhood, with known neighbours acting as Dirichlet
// boundary values. A zero target gives a harmonic fill; a target taken from
// a guide image gives a guided fill.
package reconstruction

import (
	"errors"
	"fmt"
	"image"

	"rgbdinpaint/pkg/grid"
	"rgbdinpaint/pkg/linsolve"
)

var (
	// ErrSolverFailure wraps every failure to solve the assembled system.
	ErrSolverFailure = errors.New("depth reconstruction failed")
	// ErrNoBoundary is returned when a connected unknown region touches no
	// known cell, which leaves its system singular.
	ErrNoBoundary = errors.New("unknown region has no known neighbour")
)

// System is the linear system for one reconstruction, in the sign convention
// of the stencil: the diagonal holds -count(neighbours) and unknown
// neighbours contribute +1.
type System struct {
	A *linsolve.Sparse
	B []float64

	// Index maps a flattened cell (y*W + x) to its variable, or -1 for known
	// cells.
	Index []int
	// Cells lists the unknown cells in variable order (row-major).
	Cells []image.Point

	anchored []bool
}

// N returns the number of unknowns.
func (s *System) N() int { return len(s.Cells) }

// BuildSystem assembles the stencil system for the nonzero cells of
// fillRegion. depth supplies the boundary values and laplacian the
// right-hand side target. Cells on the physical edge simply have fewer
// neighbours.
func BuildSystem(depth *grid.Field, fillRegion *grid.Mask, laplacian *grid.Field) (*System, error) {
	if err := checkInputs(depth, fillRegion, laplacian); err != nil {
		return nil, err
	}
	w, h := depth.W, depth.H

	// Lookup table: one pass in row-major order.
	s := &System{Index: make([]int, w*h)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !fillRegion.IsSet(x, y) {
				s.Index[y*w+x] = -1
				continue
			}
			s.Index[y*w+x] = len(s.Cells)
			s.Cells = append(s.Cells, image.Pt(x, y))
		}
	}

	n := len(s.Cells)
	s.B = make([]float64, n)
	s.anchored = make([]bool, n)
	coeffs := make([]linsolve.Triplet, 0, 5*n)
	neighbours := [4]image.Point{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}

	for k, p := range s.Cells {
		s.B[k] = laplacian.At(p.X, p.Y, 0)
		diag := 0.0
		for _, d := range neighbours {
			q := p.Add(d)
			if q.X < 0 || q.Y < 0 || q.X >= w || q.Y >= h {
				continue
			}
			diag--
			if j := s.Index[q.Y*w+q.X]; j >= 0 {
				coeffs = append(coeffs, linsolve.Triplet{Row: k, Col: j, Value: 1})
			} else {
				s.B[k] -= depth.At(q.X, q.Y, 0)
				s.anchored[k] = true
			}
		}
		coeffs = append(coeffs, linsolve.Triplet{Row: k, Col: k, Value: diag})
	}

	a, err := linsolve.NewSparse(n, coeffs)
	if err != nil {
		return nil, err
	}
	s.A = a
	return s, nil
}

// checkBoundary verifies that every 4-connected component of unknowns has at
// least one cell next to a known value.
func (s *System) checkBoundary() error {
	seen := make([]bool, s.N())
	var stack []int
	for start := range s.Cells {
		if seen[start] {
			continue
		}
		seen[start] = true
		stack = append(stack[:0], start)
		anchored := false
		for len(stack) > 0 {
			k := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			anchored = anchored || s.anchored[k]
			cols, _ := s.A.Row(k)
			for _, j := range cols {
				if !seen[j] {
					seen[j] = true
					stack = append(stack, j)
				}
			}
		}
		if !anchored {
			return fmt.Errorf("%w: component containing %v", ErrNoBoundary, s.Cells[start])
		}
	}
	return nil
}

// Reconstruct returns a copy of depth whose cells marked nonzero in
// fillRegion solve the Poisson equation with the given target Laplacian.
// Cells outside fillRegion are copied unchanged. A nil solver selects
// linsolve.Auto.
func Reconstruct(depth *grid.Field, fillRegion *grid.Mask, laplacian *grid.Field, solver linsolve.Solver) (*grid.Field, error) {
	sys, err := BuildSystem(depth, fillRegion, laplacian)
	if err != nil {
		return nil, err
	}
	if sys.N() == 0 {
		return depth.Clone(), nil
	}
	if err := sys.checkBoundary(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSolverFailure, err)
	}
	if solver == nil {
		solver = linsolve.Auto{}
	}

	// The stencil matrix is negative definite; flip both sides for the
	// SPD solvers.
	sys.A.Scale(-1)
	b := make([]float64, len(sys.B))
	for i, v := range sys.B {
		b[i] = -v
	}

	x, err := solver.Solve(sys.A, b)
	if err != nil {
		return nil, fmt.Errorf("%w: %d unknowns: %w", ErrSolverFailure, sys.N(), err)
	}

	filled := depth.Clone()
	for k, p := range sys.Cells {
		filled.Set(p.X, p.Y, 0, x[k])
	}
	return filled, nil
}

func checkInputs(depth *grid.Field, fillRegion *grid.Mask, laplacian *grid.Field) error {
	if depth == nil || fillRegion == nil || laplacian == nil {
		return fmt.Errorf("%w: nil input", grid.ErrPrecondition)
	}
	if depth.C != 1 {
		return fmt.Errorf("%w: depth has %d channels, want 1", grid.ErrPrecondition, depth.C)
	}
	if laplacian.C != 1 {
		return fmt.Errorf("%w: laplacian has %d channels, want 1", grid.ErrPrecondition, laplacian.C)
	}
	if err := grid.CheckShapes(depth, laplacian); err != nil {
		return err
	}
	if !fillRegion.SameShape(depth) {
		return fmt.Errorf("%w: fill region is %dx%d, depth %dx%d",
			grid.ErrPrecondition, fillRegion.W, fillRegion.H, depth.W, depth.H)
	}
	return nil
}

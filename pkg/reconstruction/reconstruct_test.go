package reconstruction

import (
	"errors"
	"image"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"rgbdinpaint/pkg/grid"
	"rgbdinpaint/pkg/linsolve"
)

const tolerance = 1e-9

// fieldFromRows builds a single-channel field from row slices.
func fieldFromRows(rows ...[]float64) *grid.Field {
	f := grid.NewField(len(rows[0]), len(rows), 1)
	for y, row := range rows {
		for x, v := range row {
			f.Set(x, y, 0, v)
		}
	}
	return f
}

func maskFromPoints(w, h int, pts ...image.Point) *grid.Mask {
	m := grid.NewMask(w, h)
	for _, p := range pts {
		m.Set(p.X, p.Y, 255)
	}
	return m
}

// smoothDepth returns a w x h depth field with a gentle non-harmonic
// surface.
func smoothDepth(w, h int) *grid.Field {
	f := grid.NewField(w, h, 1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f.Set(x, y, 0, 0.5+0.3*math.Sin(float64(x)/3)*math.Cos(float64(y)/4))
		}
	}
	return f
}

// blobRegion marks a rectangle plus a diagonal notch as unknown.
func blobRegion(w, h int) *grid.Mask {
	m := grid.NewMask(w, h)
	for y := 2; y < h-3; y++ {
		for x := 3; x < w-2; x++ {
			m.Set(x, y, 255)
		}
	}
	m.Set(2, 2, 255)
	m.Set(w-1, h/2, 255)
	return m
}

func TestCrossScenario(t *testing.T) {
	depth := fieldFromRows(
		[]float64{1, 2, 3},
		[]float64{4, 5, 6},
		[]float64{7, 8, 9},
	)
	cells := []image.Point{{1, 0}, {0, 1}, {1, 1}, {2, 1}, {1, 2}}
	region := maskFromPoints(3, 3, cells...)

	filled, err := Reconstruct(depth, region, HarmonicTarget(3, 3), linsolve.Cholesky{})
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}

	// Independent assembly: sum(neighbours) - count*u = 0, known
	// neighbours moved to the right-hand side.
	index := map[image.Point]int{}
	for i, p := range cells {
		index[p] = i
	}
	a := mat.NewDense(5, 5, nil)
	b := mat.NewVecDense(5, nil)
	for i, p := range cells {
		for _, d := range []image.Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			q := p.Add(d)
			if !q.In(image.Rect(0, 0, 3, 3)) {
				continue
			}
			a.Set(i, i, a.At(i, i)-1)
			if j, ok := index[q]; ok {
				a.Set(i, j, 1)
			} else {
				b.SetVec(i, b.AtVec(i)-depth.At(q.X, q.Y, 0))
			}
		}
	}
	var want mat.VecDense
	if err := want.SolveVec(a, b); err != nil {
		t.Fatalf("Reference solve failed: %v", err)
	}

	for i, p := range cells {
		if got := filled.At(p.X, p.Y, 0); math.Abs(got-want.AtVec(i)) > tolerance {
			t.Errorf("Expected %v to be %f, got %f", p, want.AtVec(i), got)
		}
	}
	// The cross is symmetric about the centre value.
	if math.Abs(filled.At(1, 1, 0)-5) > tolerance {
		t.Errorf("Expected centre 5, got %f", filled.At(1, 1, 0))
	}
	for _, p := range []image.Point{{0, 0}, {2, 0}, {0, 2}, {2, 2}} {
		if filled.At(p.X, p.Y, 0) != depth.At(p.X, p.Y, 0) {
			t.Errorf("Expected known corner %v to be unchanged", p)
		}
	}
}

func TestIsolatedPixel(t *testing.T) {
	depth := fieldFromRows(
		[]float64{9, 1, 9},
		[]float64{2, 100, 3},
		[]float64{9, 6, 9},
	)
	region := maskFromPoints(3, 3, image.Pt(1, 1))

	for name, s := range map[string]linsolve.Solver{"cholesky": linsolve.Cholesky{}, "auto": nil} {
		t.Run(name, func(t *testing.T) {
			filled, err := Reconstruct(depth, region, HarmonicTarget(3, 3), s)
			if err != nil {
				t.Fatalf("Reconstruct failed: %v", err)
			}
			if got := filled.At(1, 1, 0); got != 3 {
				t.Errorf("Expected (1+2+3+6)/4 = 3, got %f", got)
			}
		})
	}
}

func TestIdentityOutsideRegion(t *testing.T) {
	depth := smoothDepth(12, 10)
	region := blobRegion(12, 10)

	filled, err := Reconstruct(depth, region, HarmonicTarget(12, 10), nil)
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}
	for y := 0; y < 10; y++ {
		for x := 0; x < 12; x++ {
			if !region.IsSet(x, y) && filled.At(x, y, 0) != depth.At(x, y, 0) {
				t.Fatalf("Expected known cell (%d,%d) to be unchanged", x, y)
			}
		}
	}
	before := smoothDepth(12, 10)
	for i := range depth.Data {
		if depth.Data[i] != before.Data[i] {
			t.Fatal("Expected the input depth to be left unchanged")
		}
	}
}

func TestLaplacianLaw(t *testing.T) {
	w, h := 14, 11
	depth := smoothDepth(w, h)
	region := blobRegion(w, h)

	guide := grid.NewField(w, h, 1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/3+y/3)%2 == 0 {
				guide.Set(x, y, 0, 1)
			}
		}
	}

	targets := map[string]*grid.Field{
		"harmonic": HarmonicTarget(w, h),
		"guided":   GuidedTarget(guide, 0.05),
	}
	solvers := map[string]linsolve.Solver{
		"cholesky": linsolve.Cholesky{},
		"cg":       linsolve.ConjugateGradient{Tolerance: 1e-13},
	}
	for tname, target := range targets {
		for sname, s := range solvers {
			t.Run(tname+"/"+sname, func(t *testing.T) {
				filled, err := Reconstruct(depth, region, target, s)
				if err != nil {
					t.Fatalf("Reconstruct failed: %v", err)
				}
				if r := Residual(filled, region, target); r > 1e-8 {
					t.Errorf("Expected Laplacian residual below 1e-8, got %g", r)
				}
			})
		}
	}
}

func TestBuildSystem(t *testing.T) {
	depth := fieldFromRows(
		[]float64{1, 2, 3},
		[]float64{4, 5, 6},
	)
	region := maskFromPoints(3, 2, image.Pt(0, 0), image.Pt(1, 0))
	target := HarmonicTarget(3, 2)
	target.Set(1, 0, 0, 0.5)

	sys, err := BuildSystem(depth, region, target)
	if err != nil {
		t.Fatalf("BuildSystem failed: %v", err)
	}
	if sys.N() != 2 {
		t.Fatalf("Expected 2 unknowns, got %d", sys.N())
	}
	expectedIndex := []int{0, 1, -1, -1, -1, -1}
	for i, e := range expectedIndex {
		if sys.Index[i] != e {
			t.Errorf("Expected index[%d] = %d, got %d", i, e, sys.Index[i])
		}
	}
	// (0,0) is a corner: neighbours (1,0) unknown and (0,1) known.
	if sys.A.At(0, 0) != -2 || sys.A.At(0, 1) != 1 {
		t.Errorf("Unexpected row 0: %f %f", sys.A.At(0, 0), sys.A.At(0, 1))
	}
	// (1,0) is on the top edge: three neighbours.
	if sys.A.At(1, 1) != -3 || sys.A.At(1, 0) != 1 {
		t.Errorf("Unexpected row 1: %f %f", sys.A.At(1, 0), sys.A.At(1, 1))
	}
	if sys.B[0] != -4 || sys.B[1] != 0.5-3-5 {
		t.Errorf("Unexpected right-hand side %v", sys.B)
	}
}

func TestReconstructErrors(t *testing.T) {
	depth := smoothDepth(4, 4)

	t.Run("no boundary", func(t *testing.T) {
		region := grid.NewMask(4, 4).Invert()
		_, err := Reconstruct(depth, region, HarmonicTarget(4, 4), nil)
		if !errors.Is(err, ErrSolverFailure) || !errors.Is(err, ErrNoBoundary) {
			t.Errorf("Expected ErrSolverFailure wrapping ErrNoBoundary, got %v", err)
		}
	})

	t.Run("multi-channel depth", func(t *testing.T) {
		_, err := Reconstruct(grid.NewField(4, 4, 3), grid.NewMask(4, 4), HarmonicTarget(4, 4), nil)
		if !errors.Is(err, grid.ErrPrecondition) {
			t.Errorf("Expected ErrPrecondition, got %v", err)
		}
	})

	t.Run("shape mismatch", func(t *testing.T) {
		_, err := Reconstruct(depth, grid.NewMask(3, 4), HarmonicTarget(4, 4), nil)
		if !errors.Is(err, grid.ErrPrecondition) {
			t.Errorf("Expected ErrPrecondition, got %v", err)
		}
	})

	t.Run("solver failure", func(t *testing.T) {
		region := maskFromPoints(4, 4, image.Pt(1, 1), image.Pt(2, 1))
		s := linsolve.ConjugateGradient{Tolerance: 1e-16, MaxIterations: 1}
		_, err := Reconstruct(depth, region, HarmonicTarget(4, 4), s)
		if !errors.Is(err, ErrSolverFailure) || !errors.Is(err, linsolve.ErrNoConvergence) {
			t.Errorf("Expected ErrSolverFailure wrapping ErrNoConvergence, got %v", err)
		}
	})
}

func TestZeroUnknowns(t *testing.T) {
	depth := smoothDepth(5, 5)
	filled, err := Reconstruct(depth, grid.NewMask(5, 5), HarmonicTarget(5, 5), nil)
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}
	if filled == depth {
		t.Error("Expected a copy, got the input")
	}
	for i := range depth.Data {
		if filled.Data[i] != depth.Data[i] {
			t.Fatal("Expected an identical copy")
		}
	}
}

package linsolve

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Solver solves a x = b for a symmetric positive-definite a. Failures are
// reported as errors, never panics.
type Solver interface {
	Solve(a *Sparse, b []float64) ([]float64, error)
}

func checkSystem(a *Sparse, b []float64) error {
	if len(b) != a.n {
		return fmt.Errorf("%w: %dx%d matrix with right-hand side of length %d", ErrDimension, a.n, a.n, len(b))
	}
	if !a.IsSymmetric(1e-12) {
		return ErrNotSymmetric
	}
	return nil
}

// Cholesky densifies the matrix and solves with a gonum Cholesky
// factorisation. Memory grows with the square of the system size.
type Cholesky struct{}

func (Cholesky) Solve(a *Sparse, b []float64) ([]float64, error) {
	if err := checkSystem(a, b); err != nil {
		return nil, err
	}
	if a.n == 0 {
		return []float64{}, nil
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(a.SymDense()); !ok {
		return nil, ErrNotPositiveDefinite
	}
	x := mat.NewVecDense(a.n, nil)
	if err := chol.SolveVecTo(x, mat.NewVecDense(a.n, b)); err != nil {
		var cond mat.Condition
		if errors.As(err, &cond) {
			return nil, fmt.Errorf("%w: condition number %g", ErrSingular, float64(cond))
		}
		return nil, err
	}
	return x.RawVector().Data, nil
}

// ConjugateGradient is a Jacobi-preconditioned conjugate gradient solver
// working directly on the sparse matrix.
type ConjugateGradient struct {
	// Tolerance is the relative residual |b - a x| / |b| to reach. Zero means
	// 1e-10.
	Tolerance float64
	// MaxIterations bounds the iteration count. Zero means 10 times the
	// system size.
	MaxIterations int
}

func (s ConjugateGradient) Solve(a *Sparse, b []float64) ([]float64, error) {
	if err := checkSystem(a, b); err != nil {
		return nil, err
	}
	n := a.n
	x := make([]float64, n)
	if n == 0 {
		return x, nil
	}
	tol := s.Tolerance
	if tol <= 0 {
		tol = 1e-10
	}
	maxIter := s.MaxIterations
	if maxIter <= 0 {
		maxIter = 10 * n
	}

	inv := a.Diagonal()
	for i, d := range inv {
		if d <= 0 {
			return nil, fmt.Errorf("%w: diagonal %d is %g", ErrNotPositiveDefinite, i, d)
		}
		inv[i] = 1 / d
	}

	bNorm := floats.Norm(b, 2)
	if bNorm == 0 {
		return x, nil
	}

	r := make([]float64, n)
	copy(r, b)
	z := make([]float64, n)
	floats.MulTo(z, inv, r)
	p := make([]float64, n)
	copy(p, z)
	ap := make([]float64, n)
	rz := floats.Dot(r, z)

	for it := 0; it < maxIter; it++ {
		a.MulVecTo(ap, p)
		pap := floats.Dot(p, ap)
		if pap <= 0 || math.IsNaN(pap) {
			return nil, fmt.Errorf("%w: curvature %g at iteration %d", ErrNotPositiveDefinite, pap, it)
		}
		alpha := rz / pap
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, ap)
		if floats.Norm(r, 2)/bNorm <= tol {
			return x, nil
		}
		floats.MulTo(z, inv, r)
		rzNext := floats.Dot(r, z)
		beta := rzNext / rz
		rz = rzNext
		// p = z + beta*p
		floats.Scale(beta, p)
		floats.Add(p, z)
	}
	return nil, fmt.Errorf("%w after %d iterations", ErrNoConvergence, maxIter)
}

// DefaultDenseLimit is the largest system Auto hands to Cholesky.
const DefaultDenseLimit = 2000

// Auto uses Cholesky for small systems and conjugate gradient for larger
// ones.
type Auto struct {
	DenseLimit int
	CG         ConjugateGradient
}

func (s Auto) Solve(a *Sparse, b []float64) ([]float64, error) {
	limit := s.DenseLimit
	if limit <= 0 {
		limit = DefaultDenseLimit
	}
	if a.n <= limit {
		return Cholesky{}.Solve(a, b)
	}
	return s.CG.Solve(a, b)
}

// ByName returns the solver registered under name: "auto", "cholesky" or
// "cg".
func ByName(name string, tolerance float64, maxIterations int) (Solver, error) {
	cg := ConjugateGradient{Tolerance: tolerance, MaxIterations: maxIterations}
	switch name {
	case "", "auto":
		return Auto{CG: cg}, nil
	case "cholesky":
		return Cholesky{}, nil
	case "cg":
		return cg, nil
	default:
		return nil, fmt.Errorf("unknown solver %q", name)
	}
}

package reconstruction

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"rgbdinpaint/pkg/grid"
)

// Metrics summarises how far a reconstruction is from a ground truth over
// the filled cells.
type Metrics struct {
	// Cells is the number of compared cells.
	Cells int

	// RMSE is the root mean square error.
	RMSE float64

	// MAE is the mean absolute error.
	MAE float64

	// MaxAbsError is the worst single-cell error.
	MaxAbsError float64

	// Bias is the mean signed error (reconstructed - truth). A value far
	// from zero means the fill is systematically too near or too far.
	Bias float64

	// PSNR is the peak signal to noise ratio in dB, using the value range
	// of the ground truth as peak. +Inf for an exact reconstruction.
	PSNR float64
}

// Evaluate compares filled against truth on the nonzero cells of region.
func Evaluate(truth, filled *grid.Field, region *grid.Mask) (Metrics, error) {
	if err := grid.CheckShapes(truth, filled); err != nil {
		return Metrics{}, err
	}
	if !region.SameShape(truth) || truth.C != 1 || filled.C != 1 {
		return Metrics{}, fmt.Errorf("%w: metrics need single-channel fields matching the region", grid.ErrPrecondition)
	}

	var errs []float64
	for y := 0; y < truth.H; y++ {
		for x := 0; x < truth.W; x++ {
			if region.IsSet(x, y) {
				errs = append(errs, filled.At(x, y, 0)-truth.At(x, y, 0))
			}
		}
	}
	m := Metrics{Cells: len(errs)}
	if len(errs) == 0 {
		m.PSNR = math.Inf(1)
		return m, nil
	}

	abs := make([]float64, len(errs))
	sq := make([]float64, len(errs))
	for i, e := range errs {
		abs[i] = math.Abs(e)
		sq[i] = e * e
	}
	m.Bias = stat.Mean(errs, nil)
	m.MAE = stat.Mean(abs, nil)
	m.RMSE = math.Sqrt(stat.Mean(sq, nil))
	m.MaxAbsError = floats.Max(abs)

	peak := floats.Max(truth.Data) - floats.Min(truth.Data)
	if peak == 0 {
		peak = 1
	}
	if m.RMSE == 0 {
		m.PSNR = math.Inf(1)
	} else {
		m.PSNR = 20 * math.Log10(peak/m.RMSE)
	}
	return m, nil
}

// Residual returns the largest deviation between the discrete Laplacian of
// filled and the target over the nonzero cells of region, using the same
// edge handling as the solve.
func Residual(filled *grid.Field, region *grid.Mask, target *grid.Field) float64 {
	var worst float64
	for y := 0; y < filled.H; y++ {
		for x := 0; x < filled.W; x++ {
			if !region.IsSet(x, y) {
				continue
			}
			v := filled.At(x, y, 0)
			var lap float64
			for _, d := range [4]struct{ dx, dy int }{{0, -1}, {0, 1}, {-1, 0}, {1, 0}} {
				nx, ny := x+d.dx, y+d.dy
				if filled.In(nx, ny) {
					lap += filled.At(nx, ny, 0) - v
				}
			}
			worst = max(worst, math.Abs(lap-target.At(x, y, 0)))
		}
	}
	return worst
}

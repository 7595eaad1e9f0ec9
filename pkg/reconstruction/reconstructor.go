package reconstruction

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"rgbdinpaint/pkg/grid"
	"rgbdinpaint/pkg/linsolve"
)

// Params configures a Reconstructor.
type Params struct {
	// Solver solves the assembled system. Nil selects linsolve.Auto.
	Solver linsolve.Solver

	// Guided switches the target Laplacian from zero (harmonic fill) to the
	// smoothed Laplacian of the guide passed to Process.
	Guided bool

	// GuideScale multiplies the guide Laplacian before it is used as the
	// target, converting guide units to depth units.
	GuideScale float64

	// Logger receives one summary line per run. Nil discards.
	Logger *zerolog.Logger
}

// Report describes one finished reconstruction.
type Report struct {
	Unknowns int
	Residual float64
	Elapsed  time.Duration
}

// Reconstructor runs depth reconstruction with a fixed configuration.
type Reconstructor struct {
	params *Params
	log    zerolog.Logger
	report Report
}

// NewReconstructor creates a reconstructor. A nil params uses a harmonic
// fill with the automatic solver.
func NewReconstructor(params *Params) *Reconstructor {
	if params == nil {
		params = &Params{}
	}
	r := &Reconstructor{params: params, log: zerolog.Nop()}
	if params.Logger != nil {
		r.log = *params.Logger
	}
	return r
}

// Process fills the nonzero cells of fillRegion in depth. guide is only read
// when Params.Guided is set and must then match the depth size.
func (r *Reconstructor) Process(depth *grid.Field, fillRegion *grid.Mask, guide *grid.Field) (*grid.Field, error) {
	if depth == nil {
		return nil, fmt.Errorf("%w: nil depth", grid.ErrPrecondition)
	}
	start := time.Now()

	target := HarmonicTarget(depth.W, depth.H)
	if r.params.Guided {
		if guide == nil {
			return nil, fmt.Errorf("%w: guided reconstruction without a guide", grid.ErrPrecondition)
		}
		if err := grid.CheckShapes(depth, guide); err != nil {
			return nil, err
		}
		scale := r.params.GuideScale
		if scale == 0 {
			scale = 1
		}
		target = GuidedTarget(guide, scale)
	}

	filled, err := Reconstruct(depth, fillRegion, target, r.params.Solver)
	if err != nil {
		return nil, err
	}

	r.report = Report{
		Unknowns: fillRegion.CountNonZero(),
		Residual: Residual(filled, fillRegion, target),
		Elapsed:  time.Since(start),
	}
	r.log.Info().
		Int("unknowns", r.report.Unknowns).
		Float64("residual", r.report.Residual).
		Dur("elapsed", r.report.Elapsed).
		Bool("guided", r.params.Guided).
		Msg("depth reconstructed")
	return filled, nil
}

// GetReport returns the report of the last successful Process call.
func (r *Reconstructor) GetReport() Report {
	return r.report
}

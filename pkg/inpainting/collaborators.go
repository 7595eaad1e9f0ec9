package inpainting

import (
	"rgbdinpaint/pkg/contour"
	"rgbdinpaint/pkg/grid"
)

// Tracer returns the closed borders of the nonzero region of a mask.
type Tracer interface {
	Trace(m *grid.Mask) ([]contour.Contour, []contour.Node)
}

// EdgeOperator returns the horizontal and vertical derivatives of channel 0.
type EdgeOperator interface {
	Gradient(f *grid.Field) (dx, dy *grid.Field)
}

// MatchScorer scores every template-sized window of src against tmpl under a
// validity mask; lower is better. The result has one cell per window, indexed
// by the window's top-left corner.
type MatchScorer interface {
	Score(tmpl, src, mask *grid.Field) (*grid.Field, error)
}

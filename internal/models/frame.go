package models

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"rgbdinpaint/pkg/grid"
)

// Frame is one RGB-D input: a color image, a depth map of the same size and
// the mask of known pixels they share.
type Frame struct {
	// Color is the RGB image in [0, 1]
	Color *grid.Field

	// Depth is the single-channel depth map in [0, 1]; nil when only the
	// color image is inpainted
	Depth *grid.Field

	// Known is nonzero where both images hold valid data
	Known *grid.Mask

	// Source filenames, for logging
	ColorPath string
	DepthPath string
	MaskPath  string
}

// Validate checks that all present layers share one size.
func (f *Frame) Validate() error {
	if f.Color == nil || f.Known == nil {
		return fmt.Errorf("%w: frame needs a color image and a mask", grid.ErrPrecondition)
	}
	if !f.Known.SameShape(f.Color) {
		return fmt.Errorf("%w: mask %s is %dx%d, color %s is %dx%d", grid.ErrPrecondition,
			f.MaskPath, f.Known.W, f.Known.H, f.ColorPath, f.Color.W, f.Color.H)
	}
	if f.Depth != nil && !f.Depth.SameShape(f.Color) {
		return fmt.Errorf("%w: depth %s is %dx%d, color %s is %dx%d", grid.ErrPrecondition,
			f.DepthPath, f.Depth.W, f.Depth.H, f.ColorPath, f.Color.W, f.Color.H)
	}
	return nil
}

// FillRegion returns the cells to reconstruct in the depth map, nonzero
// where Known is zero.
func (f *Frame) FillRegion() *grid.Mask {
	return f.Known.Invert()
}

// RunSummary collects what one CLI run did, logged once at the end.
type RunSummary struct {
	Width, Height int

	// Unknown is the number of cells filled in each layer
	Unknown int

	// Rounds is the number of texture fill rounds
	Rounds int

	// DepthUnknowns is the size of the depth system, 0 if no depth was given
	DepthUnknowns int

	// DepthResidual is the largest deviation from the target Laplacian
	DepthResidual float64

	// Snapshots is the number of rounds written to the snapshots directory
	Snapshots int

	LoadTime    time.Duration
	TextureTime time.Duration
	DepthTime   time.Duration
	SaveTime    time.Duration
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (s RunSummary) MarshalZerologObject(e *zerolog.Event) {
	e.Int("width", s.Width).
		Int("height", s.Height).
		Int("unknown", s.Unknown).
		Int("rounds", s.Rounds).
		Int("snapshots", s.Snapshots).
		Int64("load(ms)", s.LoadTime.Milliseconds()).
		Int64("texture(ms)", s.TextureTime.Milliseconds()).
		Int64("save(ms)", s.SaveTime.Milliseconds())
	if s.DepthUnknowns > 0 {
		e.Int("depthUnknowns", s.DepthUnknowns).
			Float64("depthResidual", s.DepthResidual).
			Int64("depth(ms)", s.DepthTime.Milliseconds())
	}
}

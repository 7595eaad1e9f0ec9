package inpainting

import (
	"fmt"
	"image"

	"rgbdinpaint/pkg/grid"
	"rgbdinpaint/pkg/imgproc"
)

// BorderConfidence is the confidence given to padding cells. It is positive
// so patches reaching the image edge are not treated as unknown, and small
// so the padding never outweighs real data.
const BorderConfidence = 1e-4

// State is the mutable grid state of one texture inpainting run. All fields
// are padded by Radius cells on every side and share one size; points in
// State coordinates are offset by Radius from image coordinates.
type State struct {
	Radius int

	// Color holds the image being filled, one channel per color component.
	Color *grid.Field
	// Gray is the luminance of Color, kept in step by every transfer.
	Gray *grid.Field
	// Confidence is 1 for original data, 0 for unknown cells and the
	// propagated patch confidence for filled cells.
	Confidence *grid.Field
	// Priority is rewritten every round; only contour cells hold real
	// values.
	Priority *grid.Field
	// Known is nonzero for known cells, including the padding.
	Known *grid.Mask
	// Sources is nonzero at every centre whose patch lies inside the
	// original known image area.
	Sources *grid.Mask

	unknown int
}

// NewState pads color and its known mask (nonzero = known, 0 = fill) by
// radius and derives the gray, confidence and source fields.
func NewState(color *grid.Field, known *grid.Mask, radius int) (*State, error) {
	if color == nil || known == nil {
		return nil, fmt.Errorf("%w: nil color or mask", grid.ErrPrecondition)
	}
	if radius < 1 {
		return nil, fmt.Errorf("%w: patch radius %d", grid.ErrPrecondition, radius)
	}
	if color.C != 1 && color.C != 3 {
		return nil, fmt.Errorf("%w: color has %d channels, want 1 or 3", grid.ErrPrecondition, color.C)
	}
	if !known.SameShape(color) {
		return nil, fmt.Errorf("%w: mask is %dx%d, color %dx%d",
			grid.ErrPrecondition, known.W, known.H, color.W, color.H)
	}

	// Values under unknown cells must never leak into the result.
	cleared := color.Clone()
	for y := 0; y < color.H; y++ {
		for x := 0; x < color.W; x++ {
			if !known.IsSet(x, y) {
				for c := 0; c < color.C; c++ {
					cleared.Set(x, y, c, 0)
				}
			}
		}
	}

	s := &State{
		Radius:     radius,
		Color:      cleared.Pad(radius, 0),
		Gray:       imgproc.Luminance(cleared).Pad(radius, 0),
		Confidence: known.ToField().Pad(radius, BorderConfidence),
		Known:      known.Pad(radius, 255),
		Sources:    FeasibleSources(known, radius),
	}
	s.Priority = grid.NewField(s.Color.W, s.Color.H, 1)
	s.Priority.Fill(PrioritySentinel)
	s.refreshKnown()
	return s, nil
}

// FeasibleSources returns, in padded coordinates, the centres whose
// (2r+1)x(2r+1) patch contains only known cells of the unpadded mask.
func FeasibleSources(known *grid.Mask, r int) *grid.Mask {
	return imgproc.ErodeMask(known.Pad(r, 0), r, false)
}

// refreshKnown rebuilds Known from Confidence: a cell is known once its
// confidence is nonzero.
func (s *State) refreshKnown() {
	s.unknown = 0
	for i, c := range s.Confidence.Data {
		if c != 0 {
			s.Known.Data[i] = 255
		} else {
			s.Known.Data[i] = 0
			s.unknown++
		}
	}
}

// UnknownCount returns the number of cells still to fill.
func (s *State) UnknownCount() int { return s.unknown }

// Unknown returns a fresh mask that is nonzero at unknown cells.
func (s *State) Unknown() *grid.Mask { return s.Known.Invert() }

// ToImage converts a State point to image coordinates.
func (s *State) ToImage(p image.Point) image.Point {
	return p.Sub(image.Pt(s.Radius, s.Radius))
}

// ColorResult returns the unpadded color field.
func (s *State) ColorResult() *grid.Field { return s.Color.Crop(s.Radius) }

// GrayResult returns the unpadded gray field.
func (s *State) GrayResult() *grid.Field { return s.Gray.Crop(s.Radius) }

// ConfidenceResult returns the unpadded confidence field.
func (s *State) ConfidenceResult() *grid.Field { return s.Confidence.Crop(s.Radius) }

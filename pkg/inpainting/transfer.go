package inpainting

import (
	"fmt"
	"image"

	"rgbdinpaint/pkg/grid"
)

// MinConfidence is the smallest confidence a filled cell can receive, so
// every transfer marks its cells as known.
const MinConfidence = 1e-4

// TransferPatch copies every channel of the patch centred at source into the
// patch centred at target, but only into target cells that are unknown
// (zero in known). Known target cells are left untouched.
func TransferPatch(f *grid.Field, source, target image.Point, known *grid.Mask, r int) {
	src := f.Patch(source, r)
	dst := f.Patch(target, r)
	for j := 0; j < dst.Size; j++ {
		for i := 0; i < dst.Size; i++ {
			if known.IsSet(dst.X0+i, dst.Y0+j) {
				continue
			}
			for c := 0; c < f.C; c++ {
				dst.Set(i, j, c, src.At(i, j, c))
			}
		}
	}
}

// UpdateConfidence gives every zero-confidence cell of the patch at target
// the mean confidence of that patch, measured before the update, and
// returns that value. Cells that already have a confidence keep it.
func UpdateConfidence(confidence *grid.Field, target image.Point, r int) (float64, error) {
	c := PatchConfidence(confidence, target, r)
	if c < 0 || c > 1 {
		return 0, fmt.Errorf("%w: patch confidence %g at %v", ErrConfidenceRange, c, target)
	}
	if c < MinConfidence {
		c = MinConfidence
	}

	p := confidence.Patch(target, r)
	for j := 0; j < p.Size; j++ {
		for i := 0; i < p.Size; i++ {
			if p.At(i, j, 0) == 0 {
				p.Set(i, j, 0, c)
			}
		}
	}
	return c, nil
}

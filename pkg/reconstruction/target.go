package reconstruction

import (
	"rgbdinpaint/pkg/grid"
	"rgbdinpaint/pkg/imgproc"
)

// HarmonicTarget returns an all-zero target Laplacian, giving the smoothest
// fill between the known values.
func HarmonicTarget(w, h int) *grid.Field {
	return grid.NewField(w, h, 1)
}

// GuidedTarget derives the target Laplacian from a guide field, usually the
// luminance of the inpainted color image scaled to depth units. The guide is
// blurred with a 3x3 Gaussian first to keep texture noise out of the depth.
func GuidedTarget(guide *grid.Field, scale float64) *grid.Field {
	t := imgproc.SmoothLaplacian(guide)
	if scale != 1 {
		for i := range t.Data {
			t.Data[i] *= scale
		}
	}
	return t
}

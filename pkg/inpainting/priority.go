package inpainting

import (
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"

	"rgbdinpaint/pkg/contour"
	"rgbdinpaint/pkg/grid"
	"rgbdinpaint/pkg/imgproc"
)

// PrioritySentinel marks cells that are not fill candidates. It is below
// every valid priority, which is never negative.
const PrioritySentinel = -0.1

// PatchConfidence returns the mean confidence of the patch of radius r
// centred at p.
func PatchConfidence(confidence *grid.Field, p image.Point, r int) float64 {
	return stat.Mean(confidence.Patch(p, r).Values(0), nil)
}

// ComputePriority writes confidence x data term into priority for every
// contour point and PrioritySentinel everywhere else.
//
// The data term is |g . n| where n is the contour normal and g the isophote
// (the gradient rotated by 90 degrees) taken where the gradient magnitude of
// the known region peaks inside the patch. The magnitude is masked to known
// cells and eroded once so cells next to the unknown region, whose gradient
// mixes in unknown values, never win.
func ComputePriority(contours []contour.Contour, gray, confidence, priority *grid.Field,
	radius, borderRadius int, edge EdgeOperator) error {
	if err := grid.CheckShapes(gray, confidence, priority); err != nil {
		return err
	}
	if edge == nil {
		edge = imgproc.Scharr{}
	}

	dx, dy := edge.Gradient(gray)
	mag := imgproc.Magnitude(dx, dy)
	for i, c := range confidence.Data {
		if c == 0 {
			mag.Data[i] = 0
		}
	}
	mag = imgproc.Erode(mag, 1)

	priority.Fill(PrioritySentinel)
	for _, c := range contours {
		for j, p := range c {
			conf := PatchConfidence(confidence, p, radius)
			if conf < 0 || conf > 1 {
				return fmt.Errorf("%w: patch confidence %g at %v", ErrConfidenceRange, conf, p)
			}

			normal, err := Normal(c, j, borderRadius)
			if err != nil {
				return fmt.Errorf("normal at %v: %w", p, err)
			}

			// A patch with no usable gradient has no data term.
			var isophote r2.Vec
			mp := mag.Patch(p, radius)
			if m := mp.ArgMax(0); mp.At(m.X, m.Y, 0) > 0 {
				qx, qy := mp.X0+m.X, mp.Y0+m.Y
				isophote = r2.Vec{X: -dy.At(qx, qy, 0), Y: dx.At(qx, qy, 0)}
			}

			priority.Set(p.X, p.Y, 0, math.Abs(conf*r2.Dot(isophote, normal)))
		}
	}
	return nil
}

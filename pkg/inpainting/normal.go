package inpainting

import (
	"fmt"
	"image"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"

	"rgbdinpaint/pkg/contour"
)

// defaultNormal is returned where the contour gives no usable slope.
var defaultNormal = r2.Vec{X: 1, Y: 0}

// Normal estimates the unit normal of contour c at index idx.
//
// A single-point contour gets (1, 0). A contour shorter than
// 2*borderRadius+1 points uses the perpendicular of the step to the next
// point. Otherwise a line is fitted by least squares through the
// 2*borderRadius+1 points centred on idx; if they all share the x coordinate
// of idx the fit is vertical and (1, 0) is returned.
func Normal(c contour.Contour, idx, borderRadius int) (r2.Vec, error) {
	n := len(c)
	if n == 0 {
		return r2.Vec{}, fmt.Errorf("%w: empty contour", ErrDegenerateNormal)
	}
	if idx < 0 || idx >= n {
		return r2.Vec{}, fmt.Errorf("%w: index %d outside contour of %d points", ErrNotOnContour, idx, n)
	}
	if n == 1 {
		return defaultNormal, nil
	}

	window := 2*borderRadius + 1
	if n < window {
		adj := c[(idx+1)%n].Sub(c[idx])
		if adj == (image.Point{}) {
			return r2.Vec{}, fmt.Errorf("%w: repeated point %v", ErrDegenerateNormal, c[idx])
		}
		return r2.Unit(r2.Vec{X: float64(adj.Y), Y: float64(-adj.X)}), nil
	}

	xs := make([]float64, window)
	ys := make([]float64, window)
	sameX := 0
	for k := 0; k < window; k++ {
		p := c[mod(idx-borderRadius+k, n)]
		xs[k], ys[k] = float64(p.X), float64(p.Y)
		if p.X == c[idx].X {
			sameX++
		}
	}
	if sameX == window {
		return defaultNormal, nil
	}

	_, slope := stat.LinearRegression(xs, ys, nil, false)
	return r2.Unit(r2.Vec{X: -slope, Y: 1}), nil
}

// NormalAt is Normal for the first occurrence of p in c.
func NormalAt(c contour.Contour, p image.Point, borderRadius int) (r2.Vec, error) {
	idx := c.Index(p)
	if idx < 0 {
		return r2.Vec{}, fmt.Errorf("%w: %v", ErrNotOnContour, p)
	}
	return Normal(c, idx, borderRadius)
}

// mod is the mathematical modulus, always in [0, b).
func mod(a, b int) int {
	return ((a % b) + b) % b
}

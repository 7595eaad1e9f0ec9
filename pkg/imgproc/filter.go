// Package imgproc holds the pixel operators used around the inpainting core:
// gradient and Laplacian filters, erosion, luminance conversion and masked
// template matching. All operators are pure: they allocate their output and
// never modify their inputs.
package imgproc

import (
	"math"

	"rgbdinpaint/pkg/grid"
)

// reflect101 maps an out of range index the way OpenCV's BORDER_REFLECT_101
// does: -1 -> 1, n -> n-2.
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		} else {
			i = 2*n - 2 - i
		}
	}
	return i
}

// replicate clamps an index into [0, n).
func replicate(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// convolve3 correlates channel 0 of f with a 3x3 kernel (row-major) using the
// given border policy.
func convolve3(f *grid.Field, k [9]float64, border func(i, n int) int) *grid.Field {
	out := grid.NewField(f.W, f.H, 1)
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			var s float64
			for j := -1; j <= 1; j++ {
				yy := border(y+j, f.H)
				for i := -1; i <= 1; i++ {
					w := k[(j+1)*3+i+1]
					if w == 0 {
						continue
					}
					s += w * f.At(border(x+i, f.W), yy, 0)
				}
			}
			out.Set(x, y, 0, s)
		}
	}
	return out
}

// Scharr is the default edge operator: 3x3 Scharr derivatives with a
// reflected border.
type Scharr struct{}

// Gradient returns the horizontal and vertical derivatives of channel 0.
func (Scharr) Gradient(f *grid.Field) (dx, dy *grid.Field) {
	kx := [9]float64{-3, 0, 3, -10, 0, 10, -3, 0, 3}
	ky := [9]float64{-3, -10, -3, 0, 0, 0, 3, 10, 3}
	return convolve3(f, kx, reflect101), convolve3(f, ky, reflect101)
}

// Sobel is the classic 3x3 Sobel edge operator.
type Sobel struct{}

func (Sobel) Gradient(f *grid.Field) (dx, dy *grid.Field) {
	kx := [9]float64{-1, 0, 1, -2, 0, 2, -1, 0, 1}
	ky := [9]float64{-1, -2, -1, 0, 0, 0, 1, 2, 1}
	return convolve3(f, kx, reflect101), convolve3(f, ky, reflect101)
}

// Gradient computes central differences of channel 0. Edge rows and columns
// use one-sided differences.
func Gradient(f *grid.Field) (dx, dy *grid.Field) {
	dx = grid.NewField(f.W, f.H, 1)
	dy = grid.NewField(f.W, f.H, 1)
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			gx := 0.5 * (f.At(replicate(x+1, f.W), y, 0) - f.At(replicate(x-1, f.W), y, 0))
			gy := 0.5 * (f.At(x, replicate(y+1, f.H), 0) - f.At(x, replicate(y-1, f.H), 0))
			if x == 0 || x == f.W-1 {
				gx *= 2
			}
			if y == 0 || y == f.H-1 {
				gy *= 2
			}
			dx.Set(x, y, 0, gx)
			dy.Set(x, y, 0, gy)
		}
	}
	return dx, dy
}

// Magnitude returns sqrt(dx^2 + dy^2) cell by cell.
func Magnitude(dx, dy *grid.Field) *grid.Field {
	out := grid.NewField(dx.W, dx.H, 1)
	for i := range out.Data {
		out.Data[i] = math.Hypot(dx.Data[i], dy.Data[i])
	}
	return out
}

// GaussianBlur3 smooths channel 0 with the 3x3 binomial kernel and a
// replicated border.
func GaussianBlur3(f *grid.Field) *grid.Field {
	k := [9]float64{1, 2, 1, 2, 4, 2, 1, 2, 1}
	for i := range k {
		k[i] /= 16
	}
	return convolve3(f, k, replicate)
}

// Laplacian applies the 4-neighbour Laplacian stencil to channel 0 with a
// replicated border.
func Laplacian(f *grid.Field) *grid.Field {
	return convolve3(f, [9]float64{0, 1, 0, 1, -4, 1, 0, 1, 0}, replicate)
}

// SmoothLaplacian is the Laplacian of the Gaussian-blurred field, used as a
// guided target for depth reconstruction.
func SmoothLaplacian(f *grid.Field) *grid.Field {
	return Laplacian(GaussianBlur3(f))
}

// Luminance converts an RGB field to a single gray channel using the BT.601
// weights. Fields with fewer than three channels yield their first channel.
func Luminance(f *grid.Field) *grid.Field {
	if f.C < 3 {
		return f.Channel(0)
	}
	out := grid.NewField(f.W, f.H, 1)
	for i := 0; i < f.W*f.H; i++ {
		px := f.Data[i*f.C:]
		out.Data[i] = 0.299*px[0] + 0.587*px[1] + 0.114*px[2]
	}
	return out
}

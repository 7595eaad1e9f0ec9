// Package grid provides the co-registered 2-D containers shared by the texture
// inpainting and depth reconstruction algorithms: multi-channel float fields,
// 8-bit masks and patch views into them.
//
// All containers are row-major. A cell is addressed by its column x and row y,
// matching image.Point.
package grid

import (
	"errors"
	"fmt"
	"image"
)

// ErrPrecondition is returned when an input has the wrong shape, channel
// count or size. Callers must fix the input before retrying.
var ErrPrecondition = errors.New("precondition violation")

// Field is a W x H grid of C interleaved float64 channels.
type Field struct {
	W, H, C int
	Data    []float64
}

// NewField allocates a zero-filled field.
func NewField(w, h, c int) *Field {
	return &Field{W: w, H: h, C: c, Data: make([]float64, w*h*c)}
}

// NewFieldFrom wraps data as a field. The slice is not copied.
func NewFieldFrom(w, h, c int, data []float64) (*Field, error) {
	if w <= 0 || h <= 0 || c <= 0 {
		return nil, fmt.Errorf("%w: invalid field size %dx%dx%d", ErrPrecondition, w, h, c)
	}
	if len(data) != w*h*c {
		return nil, fmt.Errorf("%w: field %dx%dx%d needs %d values, got %d",
			ErrPrecondition, w, h, c, w*h*c, len(data))
	}
	return &Field{W: w, H: h, C: c, Data: data}, nil
}

// Bounds returns the field rectangle.
func (f *Field) Bounds() image.Rectangle { return image.Rect(0, 0, f.W, f.H) }

// In reports whether (x, y) lies inside the field.
func (f *Field) In(x, y int) bool { return x >= 0 && y >= 0 && x < f.W && y < f.H }

func (f *Field) At(x, y, c int) float64     { return f.Data[(y*f.W+x)*f.C+c] }
func (f *Field) Set(x, y, c int, v float64) { f.Data[(y*f.W+x)*f.C+c] = v }

// Clone returns a deep copy.
func (f *Field) Clone() *Field {
	g := &Field{W: f.W, H: f.H, C: f.C, Data: make([]float64, len(f.Data))}
	copy(g.Data, f.Data)
	return g
}

// Fill sets every value of every channel to v.
func (f *Field) Fill(v float64) {
	for i := range f.Data {
		f.Data[i] = v
	}
}

// SameShape reports whether g has the same width and height as f. Channel
// counts are not compared.
func (f *Field) SameShape(g *Field) bool { return f.W == g.W && f.H == g.H }

// Channel extracts channel c as a new single-channel field.
func (f *Field) Channel(c int) *Field {
	g := NewField(f.W, f.H, 1)
	for i := 0; i < f.W*f.H; i++ {
		g.Data[i] = f.Data[i*f.C+c]
	}
	return g
}

// Pad returns a copy of f surrounded by a border of r cells set to v.
func (f *Field) Pad(r int, v float64) *Field {
	g := NewField(f.W+2*r, f.H+2*r, f.C)
	g.Fill(v)
	for y := 0; y < f.H; y++ {
		src := f.Data[y*f.W*f.C : (y+1)*f.W*f.C]
		dst := g.Data[((y+r)*g.W+r)*g.C:]
		copy(dst, src)
	}
	return g
}

// Crop strips a border of r cells, undoing Pad.
func (f *Field) Crop(r int) *Field {
	g := NewField(f.W-2*r, f.H-2*r, f.C)
	for y := 0; y < g.H; y++ {
		src := f.Data[((y+r)*f.W+r)*f.C:]
		copy(g.Data[y*g.W*g.C:(y+1)*g.W*g.C], src[:g.W*g.C])
	}
	return g
}

// ArgMax returns the first cell (row-major) holding the largest value of
// channel c.
func (f *Field) ArgMax(c int) image.Point {
	best := image.Point{}
	bestV := f.At(0, 0, c)
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			if v := f.At(x, y, c); v > bestV {
				bestV = v
				best = image.Pt(x, y)
			}
		}
	}
	return best
}

// ArgMin returns the first cell (row-major) holding the smallest value of
// channel c.
func (f *Field) ArgMin(c int) image.Point {
	best := image.Point{}
	bestV := f.At(0, 0, c)
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			if v := f.At(x, y, c); v < bestV {
				bestV = v
				best = image.Pt(x, y)
			}
		}
	}
	return best
}

// Patch returns the (2r+1)x(2r+1) view centred at p. It panics if the window
// leaves the field, like an out of range slice index.
func (f *Field) Patch(p image.Point, r int) Patch {
	if p.X-r < 0 || p.Y-r < 0 || p.X+r >= f.W || p.Y+r >= f.H {
		panic(fmt.Sprintf("grid: patch of radius %d at %v outside %dx%d field", r, p, f.W, f.H))
	}
	return Patch{f: f, X0: p.X - r, Y0: p.Y - r, Size: 2*r + 1}
}

// CheckShapes returns ErrPrecondition unless all fields share the size of the
// first one.
func CheckShapes(fields ...*Field) error {
	for i, f := range fields {
		if f == nil {
			return fmt.Errorf("%w: field %d is nil", ErrPrecondition, i)
		}
		if i > 0 && !f.SameShape(fields[0]) {
			return fmt.Errorf("%w: field %d is %dx%d, want %dx%d",
				ErrPrecondition, i, f.W, f.H, fields[0].W, fields[0].H)
		}
	}
	return nil
}

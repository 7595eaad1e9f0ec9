package grid

import "image"

// Patch is a square window into a Field. It shares storage with the field and
// is only valid while the field is.
type Patch struct {
	f      *Field
	X0, Y0 int
	Size   int
}

// Channels returns the channel count of the underlying field.
func (p Patch) Channels() int { return p.f.C }

// Center returns the centre cell in field coordinates.
func (p Patch) Center() image.Point {
	return image.Pt(p.X0+p.Size/2, p.Y0+p.Size/2)
}

// At reads the value at local column i, row j.
func (p Patch) At(i, j, c int) float64     { return p.f.At(p.X0+i, p.Y0+j, c) }
func (p Patch) Set(i, j, c int, v float64) { p.f.Set(p.X0+i, p.Y0+j, c, v) }

// Values returns a copy of channel c in row-major order.
func (p Patch) Values(c int) []float64 {
	out := make([]float64, 0, p.Size*p.Size)
	for j := 0; j < p.Size; j++ {
		for i := 0; i < p.Size; i++ {
			out = append(out, p.At(i, j, c))
		}
	}
	return out
}

// Clone copies the patch into a standalone Size x Size field.
func (p Patch) Clone() *Field {
	g := NewField(p.Size, p.Size, p.f.C)
	for j := 0; j < p.Size; j++ {
		row := p.f.Data[((p.Y0+j)*p.f.W+p.X0)*p.f.C:]
		copy(g.Data[j*p.Size*p.f.C:(j+1)*p.Size*p.f.C], row[:p.Size*p.f.C])
	}
	return g
}

// ArgMax returns the local position of the first maximum of channel c.
func (p Patch) ArgMax(c int) image.Point {
	best := image.Point{}
	bestV := p.At(0, 0, c)
	for j := 0; j < p.Size; j++ {
		for i := 0; i < p.Size; i++ {
			if v := p.At(i, j, c); v > bestV {
				bestV = v
				best = image.Pt(i, j)
			}
		}
	}
	return best
}

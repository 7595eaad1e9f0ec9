package grid

import (
	"fmt"
	"image"
)

// Mask is an 8-bit single-channel grid. The meaning of nonzero cells depends
// on the algorithm using it and is documented at each call site.
type Mask struct {
	W, H int
	Data []uint8
}

// NewMask allocates a zero mask.
func NewMask(w, h int) *Mask {
	return &Mask{W: w, H: h, Data: make([]uint8, w*h)}
}

// NewMaskFrom wraps data as a mask. The slice is not copied.
func NewMaskFrom(w, h int, data []uint8) (*Mask, error) {
	if w <= 0 || h <= 0 || len(data) != w*h {
		return nil, fmt.Errorf("%w: mask %dx%d with %d values", ErrPrecondition, w, h, len(data))
	}
	return &Mask{W: w, H: h, Data: data}, nil
}

func (m *Mask) In(x, y int) bool        { return x >= 0 && y >= 0 && x < m.W && y < m.H }
func (m *Mask) At(x, y int) uint8       { return m.Data[y*m.W+x] }
func (m *Mask) Set(x, y int, v uint8)   { m.Data[y*m.W+x] = v }
func (m *Mask) IsSet(x, y int) bool     { return m.Data[y*m.W+x] != 0 }
func (m *Mask) Bounds() image.Rectangle { return image.Rect(0, 0, m.W, m.H) }
func (m *Mask) SameShape(f *Field) bool { return m.W == f.W && m.H == f.H }

// Clone returns a deep copy.
func (m *Mask) Clone() *Mask {
	n := &Mask{W: m.W, H: m.H, Data: make([]uint8, len(m.Data))}
	copy(n.Data, m.Data)
	return n
}

// Invert returns a mask with 255 where m is zero and 0 elsewhere.
func (m *Mask) Invert() *Mask {
	n := NewMask(m.W, m.H)
	for i, v := range m.Data {
		if v == 0 {
			n.Data[i] = 255
		}
	}
	return n
}

// CountNonZero returns the number of nonzero cells.
func (m *Mask) CountNonZero() int {
	n := 0
	for _, v := range m.Data {
		if v != 0 {
			n++
		}
	}
	return n
}

// Pad returns a copy of m surrounded by a border of r cells set to v.
func (m *Mask) Pad(r int, v uint8) *Mask {
	n := NewMask(m.W+2*r, m.H+2*r)
	for i := range n.Data {
		n.Data[i] = v
	}
	for y := 0; y < m.H; y++ {
		copy(n.Data[(y+r)*n.W+r:], m.Data[y*m.W:(y+1)*m.W])
	}
	return n
}

// Crop strips a border of r cells.
func (m *Mask) Crop(r int) *Mask {
	n := NewMask(m.W-2*r, m.H-2*r)
	for y := 0; y < n.H; y++ {
		copy(n.Data[y*n.W:(y+1)*n.W], m.Data[(y+r)*m.W+r:])
	}
	return n
}

// Threshold builds a mask from channel 0 of f, setting 255 where keep returns
// true.
func Threshold(f *Field, keep func(v float64) bool) *Mask {
	m := NewMask(f.W, f.H)
	for i := 0; i < f.W*f.H; i++ {
		if keep(f.Data[i*f.C]) {
			m.Data[i] = 255
		}
	}
	return m
}

// ToField converts the mask to a single-channel field holding 1 for nonzero
// cells and 0 elsewhere.
func (m *Mask) ToField() *Field {
	f := NewField(m.W, m.H, 1)
	for i, v := range m.Data {
		if v != 0 {
			f.Data[i] = 1
		}
	}
	return f
}

package imgproc

import (
	"fmt"

	"rgbdinpaint/pkg/grid"
)

// SSD is the default windowed match scorer. It computes the masked sum of
// squared differences between a template and every same-sized window of a
// source field.
type SSD struct{}

// Score returns a (src.H-tmpl.H+1) x (src.W-tmpl.W+1) field whose cell (x, y)
// scores the window with top-left corner (x, y). Lower is better. mask must
// match the template size and have either one channel, applied to every
// template channel, or as many channels as the template.
func (SSD) Score(tmpl, src, mask *grid.Field) (*grid.Field, error) {
	if tmpl.C != src.C {
		return nil, fmt.Errorf("%w: template has %d channels, source %d", grid.ErrPrecondition, tmpl.C, src.C)
	}
	if tmpl.W > src.W || tmpl.H > src.H {
		return nil, fmt.Errorf("%w: template %dx%d larger than source %dx%d",
			grid.ErrPrecondition, tmpl.W, tmpl.H, src.W, src.H)
	}
	if !mask.SameShape(tmpl) || (mask.C != 1 && mask.C != tmpl.C) {
		return nil, fmt.Errorf("%w: mask %dx%dx%d does not fit template %dx%dx%d",
			grid.ErrPrecondition, mask.W, mask.H, mask.C, tmpl.W, tmpl.H, tmpl.C)
	}

	// Collect the template cells that take part so empty mask cells cost
	// nothing in the inner loop.
	type tap struct {
		i, j, c int
		t, w    float64
	}
	var taps []tap
	for j := 0; j < tmpl.H; j++ {
		for i := 0; i < tmpl.W; i++ {
			for c := 0; c < tmpl.C; c++ {
				mc := c
				if mask.C == 1 {
					mc = 0
				}
				if w := mask.At(i, j, mc); w != 0 {
					taps = append(taps, tap{i: i, j: j, c: c, t: tmpl.At(i, j, c), w: w * w})
				}
			}
		}
	}

	out := grid.NewField(src.W-tmpl.W+1, src.H-tmpl.H+1, 1)
	for y := 0; y < out.H; y++ {
		for x := 0; x < out.W; x++ {
			var s float64
			for _, tp := range taps {
				d := tp.t - src.At(x+tp.i, y+tp.j, tp.c)
				s += tp.w * d * d
			}
			out.Set(x, y, 0, s)
		}
	}
	return out, nil
}

// NormalizeMinMax rescales channel 0 of f in place so its values span
// [lo, hi]. A constant field is set to lo.
func NormalizeMinMax(f *grid.Field, lo, hi float64) {
	if len(f.Data) == 0 {
		return
	}
	mn, mx := f.Data[0], f.Data[0]
	for i := 0; i < f.W*f.H; i++ {
		v := f.Data[i*f.C]
		mn = min(mn, v)
		mx = max(mx, v)
	}
	span := mx - mn
	for i := 0; i < f.W*f.H; i++ {
		if span == 0 {
			f.Data[i*f.C] = lo
			continue
		}
		f.Data[i*f.C] = lo + (f.Data[i*f.C]-mn)/span*(hi-lo)
	}
}

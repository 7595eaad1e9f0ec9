package imgproc

import "rgbdinpaint/pkg/grid"

// Erode replaces every value with the minimum over its (2r+1)x(2r+1)
// neighbourhood, channel by channel. Cells outside the field are ignored.
func Erode(f *grid.Field, r int) *grid.Field {
	if r <= 0 {
		return f.Clone()
	}
	tmp := grid.NewField(f.W, f.H, f.C)
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			for c := 0; c < f.C; c++ {
				m := f.At(x, y, c)
				for i := max(0, x-r); i <= min(f.W-1, x+r); i++ {
					m = min(m, f.At(i, y, c))
				}
				tmp.Set(x, y, c, m)
			}
		}
	}
	out := grid.NewField(f.W, f.H, f.C)
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			for c := 0; c < f.C; c++ {
				m := tmp.At(x, y, c)
				for j := max(0, y-r); j <= min(f.H-1, y+r); j++ {
					m = min(m, tmp.At(x, j, c))
				}
				out.Set(x, y, c, m)
			}
		}
	}
	return out
}

// ErodeMask keeps a cell set only when every cell of its (2r+1)x(2r+1)
// neighbourhood is set. When outsideSet is false, cells beyond the mask
// border count as unset and erode their neighbours.
func ErodeMask(m *grid.Mask, r int, outsideSet bool) *grid.Mask {
	set := func(x, y int) bool {
		if !m.In(x, y) {
			return outsideSet
		}
		return m.IsSet(x, y)
	}
	// Horizontal pass, then vertical over the intermediate result.
	rows := grid.NewMask(m.W, m.H)
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			ok := true
			for i := x - r; i <= x+r && ok; i++ {
				ok = set(i, y)
			}
			if ok {
				rows.Set(x, y, 255)
			}
		}
	}
	out := grid.NewMask(m.W, m.H)
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			ok := true
			for j := y - r; j <= y+r && ok; j++ {
				if j < 0 || j >= m.H {
					ok = outsideSet
				} else {
					ok = rows.IsSet(x, j)
				}
			}
			if ok {
				out.Set(x, y, 255)
			}
		}
	}
	return out
}

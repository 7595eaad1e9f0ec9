//go:build gocv

package cvbackend

import (
	"fmt"

	"gocv.io/x/gocv"

	"rgbdinpaint/pkg/contour"
	"rgbdinpaint/pkg/grid"
	"rgbdinpaint/pkg/inpainting"
)

// Configure installs the OpenCV tracer, edge operator and scorer into p.
func Configure(p *inpainting.Params) bool {
	p.Tracer = Tracer{}
	p.Edge = Scharr{}
	p.Scorer = Scorer{}
	return true
}

// Tracer traces mask borders with cv::findContours in tree mode without
// chain approximation.
type Tracer struct{}

func (Tracer) Trace(m *grid.Mask) ([]contour.Contour, []contour.Node) {
	src := maskMat(m)
	defer src.Close()
	hierarchy := gocv.NewMat()
	defer hierarchy.Close()

	pv := gocv.FindContoursWithParams(src, &hierarchy, gocv.RetrievalTree, gocv.ChainApproxNone)
	defer pv.Close()

	n := pv.Size()
	contours := make([]contour.Contour, n)
	parents := make([]int, n)
	for i := 0; i < n; i++ {
		contours[i] = contour.Contour(pv.At(i).ToPoints())
		// Each entry is [next, previous, first child, parent].
		parents[i] = int(hierarchy.GetVeciAt(0, i)[3])
	}

	nodes := make([]contour.Node, n)
	for i := range nodes {
		depth := 0
		for p := parents[i]; p >= 0; p = parents[p] {
			depth++
		}
		nodes[i] = contour.Node{Parent: parents[i], Hole: depth%2 == 1}
	}
	return contours, nodes
}

// Scharr computes the 3x3 Scharr derivatives with reflect-101 borders.
type Scharr struct{}

func (Scharr) Gradient(f *grid.Field) (dx, dy *grid.Field) {
	src := channelMat(f, 0, gocv.MatTypeCV64F)
	defer src.Close()

	gx, gy := gocv.NewMat(), gocv.NewMat()
	defer gx.Close()
	defer gy.Close()
	gocv.Scharr(src, &gx, gocv.MatTypeCV64F, 1, 0, 1, 0, gocv.BorderReflect101)
	gocv.Scharr(src, &gy, gocv.MatTypeCV64F, 0, 1, 1, 0, gocv.BorderReflect101)
	return fieldFromMat(gx), fieldFromMat(gy)
}

// Scorer computes masked squared differences with cv::matchTemplate.
type Scorer struct{}

func (Scorer) Score(tmpl, src, mask *grid.Field) (*grid.Field, error) {
	if tmpl.C != src.C || (mask.C != 1 && mask.C != tmpl.C) || !mask.SameShape(tmpl) {
		return nil, fmt.Errorf("%w: template %dx%dx%d, source channels %d, mask %dx%dx%d",
			grid.ErrPrecondition, tmpl.W, tmpl.H, tmpl.C, src.C, mask.W, mask.H, mask.C)
	}
	if tmpl.W > src.W || tmpl.H > src.H {
		return nil, fmt.Errorf("%w: template larger than source", grid.ErrPrecondition)
	}

	t := fieldMat(tmpl)
	defer t.Close()
	s := fieldMat(src)
	defer s.Close()
	// matchTemplate wants the mask with the template's channel count.
	m := fieldMat(broadcast(mask, tmpl.C))
	defer m.Close()

	result := gocv.NewMat()
	defer result.Close()
	gocv.MatchTemplate(s, t, &result, gocv.TmSqdiff, m)
	return fieldFromMat32(result), nil
}

func broadcast(f *grid.Field, c int) *grid.Field {
	if f.C == c {
		return f
	}
	out := grid.NewField(f.W, f.H, c)
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			for k := 0; k < c; k++ {
				out.Set(x, y, k, f.At(x, y, 0))
			}
		}
	}
	return out
}

func maskMat(m *grid.Mask) gocv.Mat {
	mat := gocv.NewMatWithSize(m.H, m.W, gocv.MatTypeCV8UC1)
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if m.IsSet(x, y) {
				mat.SetUCharAt(y, x, 255)
			}
		}
	}
	return mat
}

func channelMat(f *grid.Field, c int, typ gocv.MatType) gocv.Mat {
	mat := gocv.NewMatWithSize(f.H, f.W, typ)
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			if typ == gocv.MatTypeCV64F {
				mat.SetDoubleAt(y, x, f.At(x, y, c))
			} else {
				mat.SetFloatAt(y, x, float32(f.At(x, y, c)))
			}
		}
	}
	return mat
}

// fieldMat converts f to a CV_32F matrix with f.C channels.
func fieldMat(f *grid.Field) gocv.Mat {
	if f.C == 1 {
		return channelMat(f, 0, gocv.MatTypeCV32F)
	}
	planes := make([]gocv.Mat, f.C)
	for c := range planes {
		planes[c] = channelMat(f, c, gocv.MatTypeCV32F)
	}
	out := gocv.NewMat()
	gocv.Merge(planes, &out)
	for _, p := range planes {
		p.Close()
	}
	return out
}

func fieldFromMat(m gocv.Mat) *grid.Field {
	f := grid.NewField(m.Cols(), m.Rows(), 1)
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			f.Set(x, y, 0, m.GetDoubleAt(y, x))
		}
	}
	return f
}

func fieldFromMat32(m gocv.Mat) *grid.Field {
	f := grid.NewField(m.Cols(), m.Rows(), 1)
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			f.Set(x, y, 0, float64(m.GetFloatAt(y, x)))
		}
	}
	return f
}

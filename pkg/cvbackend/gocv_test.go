//go:build gocv

package cvbackend

import (
	"math"
	"testing"

	"rgbdinpaint/pkg/contour"
	"rgbdinpaint/pkg/grid"
	"rgbdinpaint/pkg/imgproc"
)

func TestTracerMatchesPureGo(t *testing.T) {
	m := grid.NewMask(8, 8)
	for y := 2; y < 6; y++ {
		for x := 1; x < 7; x++ {
			m.Set(x, y, 255)
		}
	}
	got, _ := Tracer{}.Trace(m)
	want, _ := contour.Trace(m)
	if len(got) != len(want) {
		t.Fatalf("Expected %d contours, got %d", len(want), len(got))
	}
	if len(got[0]) != len(want[0]) {
		t.Errorf("Expected %d points, got %d", len(want[0]), len(got[0]))
	}
}

func TestScorerMatchesPureGo(t *testing.T) {
	src := grid.NewField(6, 5, 3)
	for i := range src.Data {
		src.Data[i] = float64(i%7) / 7
	}
	tmpl := grid.NewField(3, 3, 3)
	for i := range tmpl.Data {
		tmpl.Data[i] = float64(i%5) / 5
	}
	mask := grid.NewField(3, 3, 1)
	mask.Fill(1)
	mask.Set(1, 1, 0, 0)

	got, err := Scorer{}.Score(tmpl, src, mask)
	if err != nil {
		t.Fatal(err)
	}
	want, err := imgproc.SSD{}.Score(tmpl, src, mask)
	if err != nil {
		t.Fatal(err)
	}
	for i := range want.Data {
		if math.Abs(got.Data[i]-want.Data[i]) > 1e-4 {
			t.Errorf("Expected score %d to be %f, got %f", i, want.Data[i], got.Data[i])
		}
	}
}

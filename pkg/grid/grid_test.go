package grid

import (
	"errors"
	"image"
	"testing"
)

// rampField returns a w x h field where channel c of (x, y) holds
// 100*c + 10*y + x.
func rampField(w, h, c int) *Field {
	f := NewField(w, h, c)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for k := 0; k < c; k++ {
				f.Set(x, y, k, float64(100*k+10*y+x))
			}
		}
	}
	return f
}

func TestNewFieldFrom(t *testing.T) {
	if _, err := NewFieldFrom(2, 2, 1, make([]float64, 3)); !errors.Is(err, ErrPrecondition) {
		t.Errorf("Expected ErrPrecondition for short data, got %v", err)
	}
	if _, err := NewFieldFrom(0, 2, 1, nil); !errors.Is(err, ErrPrecondition) {
		t.Errorf("Expected ErrPrecondition for zero width, got %v", err)
	}
	f, err := NewFieldFrom(2, 1, 2, []float64{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if f.At(1, 0, 0) != 3 || f.At(1, 0, 1) != 4 {
		t.Errorf("Expected interleaved channels, got %v", f.Data)
	}
}

func TestPadCrop(t *testing.T) {
	f := rampField(3, 2, 2)
	p := f.Pad(2, -1)

	if p.W != 7 || p.H != 6 {
		t.Fatalf("Expected padded size 7x6, got %dx%d", p.W, p.H)
	}
	if p.At(0, 0, 1) != -1 || p.At(6, 5, 0) != -1 {
		t.Error("Expected padding value -1 in the border")
	}
	if p.At(2, 2, 0) != f.At(0, 0, 0) || p.At(4, 3, 1) != f.At(2, 1, 1) {
		t.Error("Expected interior to be shifted by the radius")
	}

	c := p.Crop(2)
	for i := range f.Data {
		if c.Data[i] != f.Data[i] {
			t.Fatalf("Expected crop to undo pad, value %d is %f, want %f", i, c.Data[i], f.Data[i])
		}
	}
}

func TestArgMaxArgMinFirstOccurrence(t *testing.T) {
	f := NewField(3, 3, 1)
	f.Set(2, 0, 0, 5)
	f.Set(0, 2, 0, 5)
	f.Set(1, 1, 0, -2)
	f.Set(2, 2, 0, -2)

	if got := f.ArgMax(0); got != image.Pt(2, 0) {
		t.Errorf("Expected first maximum at (2,0), got %v", got)
	}
	if got := f.ArgMin(0); got != image.Pt(1, 1) {
		t.Errorf("Expected first minimum at (1,1), got %v", got)
	}
}

func TestPatch(t *testing.T) {
	f := rampField(5, 5, 2)
	p := f.Patch(image.Pt(2, 3), 1)

	if p.X0 != 1 || p.Y0 != 2 || p.Size != 3 {
		t.Errorf("Expected patch at (1,2) size 3, got (%d,%d) size %d", p.X0, p.Y0, p.Size)
	}
	if p.Center() != image.Pt(2, 3) {
		t.Errorf("Expected centre (2,3), got %v", p.Center())
	}
	if p.At(0, 0, 1) != f.At(1, 2, 1) {
		t.Errorf("Expected local (0,0) to map to (1,2)")
	}

	p.Set(2, 2, 0, 999)
	if f.At(3, 4, 0) != 999 {
		t.Error("Expected patch writes to reach the field")
	}

	clone := p.Clone()
	clone.Set(0, 0, 0, -5)
	if f.At(1, 2, 0) == -5 {
		t.Error("Expected clone not to share storage")
	}
	if clone.At(2, 2, 0) != 999 || clone.At(1, 0, 1) != f.At(2, 2, 1) {
		t.Error("Expected clone to copy the patch values")
	}

	vals := p.Values(0)
	if len(vals) != 9 || vals[4] != f.At(2, 3, 0) {
		t.Errorf("Expected 9 values with the centre in the middle, got %v", vals)
	}
	if got := p.ArgMax(0); got != image.Pt(2, 2) {
		t.Errorf("Expected local maximum at (2,2), got %v", got)
	}
}

func TestPatchOutOfBoundsPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected a panic for a patch leaving the field")
		}
	}()
	NewField(4, 4, 1).Patch(image.Pt(0, 2), 1)
}

func TestCheckShapes(t *testing.T) {
	if err := CheckShapes(NewField(2, 3, 1), NewField(2, 3, 3)); err != nil {
		t.Errorf("Expected shapes with different channel counts to match, got %v", err)
	}
	if err := CheckShapes(NewField(2, 3, 1), NewField(3, 2, 1)); !errors.Is(err, ErrPrecondition) {
		t.Errorf("Expected ErrPrecondition, got %v", err)
	}
	if err := CheckShapes(NewField(2, 3, 1), nil); !errors.Is(err, ErrPrecondition) {
		t.Errorf("Expected ErrPrecondition for nil, got %v", err)
	}
}

func TestMask(t *testing.T) {
	m := NewMask(3, 2)
	m.Set(1, 0, 7)
	m.Set(2, 1, 255)

	if m.CountNonZero() != 2 {
		t.Errorf("Expected 2 nonzero cells, got %d", m.CountNonZero())
	}

	inv := m.Invert()
	if inv.CountNonZero() != 4 || inv.IsSet(1, 0) || inv.At(0, 0) != 255 {
		t.Errorf("Expected inverted mask, got %v", inv.Data)
	}

	p := m.Pad(1, 9)
	if p.W != 5 || p.H != 4 || p.At(0, 0) != 9 || p.At(2, 1) != 7 {
		t.Errorf("Unexpected padded mask %v", p.Data)
	}
	c := p.Crop(1)
	for i := range m.Data {
		if c.Data[i] != m.Data[i] {
			t.Fatalf("Expected crop to undo pad, got %v", c.Data)
		}
	}

	f := m.ToField()
	if f.At(1, 0, 0) != 1 || f.At(0, 0, 0) != 0 {
		t.Errorf("Expected 1/0 field, got %v", f.Data)
	}
}

func TestThreshold(t *testing.T) {
	f := rampField(3, 1, 2)
	m := Threshold(f, func(v float64) bool { return v >= 1 })
	expected := []uint8{0, 255, 255}
	for i, e := range expected {
		if m.Data[i] != e {
			t.Errorf("Expected cell %d to be %d, got %d", i, e, m.Data[i])
		}
	}
}

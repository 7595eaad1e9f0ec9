package contour

import (
	"image"
	"testing"

	"rgbdinpaint/pkg/grid"
)

// maskFromRows builds a mask from strings where '#' marks a set cell.
func maskFromRows(rows ...string) *grid.Mask {
	m := grid.NewMask(len(rows[0]), len(rows))
	for y, row := range rows {
		for x, ch := range row {
			if ch == '#' {
				m.Set(x, y, 255)
			}
		}
	}
	return m
}

func equalContour(a, b Contour) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTraceSinglePixel(t *testing.T) {
	contours, nodes := Trace(maskFromRows(
		"...",
		".#.",
		"...",
	))
	if len(contours) != 1 {
		t.Fatalf("Expected 1 contour, got %d", len(contours))
	}
	if !equalContour(contours[0], Contour{image.Pt(1, 1)}) {
		t.Errorf("Expected single point (1,1), got %v", contours[0])
	}
	if nodes[0].Parent != -1 || nodes[0].Hole {
		t.Errorf("Expected top-level outer border, got %+v", nodes[0])
	}
}

func TestTraceBlock(t *testing.T) {
	contours, _ := Trace(maskFromRows(
		"##.",
		"##.",
	))
	expected := Contour{image.Pt(0, 0), image.Pt(0, 1), image.Pt(1, 1), image.Pt(1, 0)}
	if len(contours) != 1 || !equalContour(contours[0], expected) {
		t.Errorf("Expected %v, got %v", expected, contours)
	}
}

func TestTraceLineRevisitsCells(t *testing.T) {
	contours, _ := Trace(maskFromRows(
		"....",
		".###",
		"....",
	))
	expected := Contour{image.Pt(1, 1), image.Pt(2, 1), image.Pt(3, 1), image.Pt(2, 1)}
	if len(contours) != 1 || !equalContour(contours[0], expected) {
		t.Errorf("Expected %v, got %v", expected, contours)
	}
}

func TestTraceSeparateComponents(t *testing.T) {
	contours, nodes := Trace(maskFromRows(
		"#.#",
		"...",
	))
	if len(contours) != 2 {
		t.Fatalf("Expected 2 contours, got %d", len(contours))
	}
	for i, n := range nodes {
		if n.Parent != -1 || n.Hole {
			t.Errorf("Expected contour %d to be a top-level outer border, got %+v", i, n)
		}
	}
	if contours[0][0] != image.Pt(0, 0) || contours[1][0] != image.Pt(2, 0) {
		t.Errorf("Expected contours in scan order, got %v", contours)
	}
}

func TestTraceHoleHierarchy(t *testing.T) {
	contours, nodes := Trace(maskFromRows(
		".........",
		".#######.",
		".#.....#.",
		".#.....#.",
		".#..#..#.",
		".#.....#.",
		".#.....#.",
		".#######.",
		".........",
	))
	if len(contours) != 3 {
		t.Fatalf("Expected 3 contours, got %d", len(contours))
	}

	expected := []Node{
		{Parent: -1, Hole: false},
		{Parent: 0, Hole: true},
		{Parent: 1, Hole: false},
	}
	for i, e := range expected {
		if nodes[i] != e {
			t.Errorf("Expected node %d to be %+v, got %+v", i, e, nodes[i])
		}
	}
	if len(contours[0]) != 24 {
		t.Errorf("Expected 24 outer border points, got %d", len(contours[0]))
	}
	if !equalContour(contours[2], Contour{image.Pt(4, 4)}) {
		t.Errorf("Expected island contour at (4,4), got %v", contours[2])
	}
	if children := Children(nodes, 0); len(children) != 1 || children[0] != 1 {
		t.Errorf("Expected contour 1 to be the only child of 0, got %v", children)
	}
}

func TestTraceSmallHole(t *testing.T) {
	contours, nodes := Trace(maskFromRows(
		"#####",
		"#####",
		"##.##",
		"#####",
		"#####",
	))
	if len(contours) != 2 {
		t.Fatalf("Expected 2 contours, got %d", len(contours))
	}
	if len(contours[0]) != 16 {
		t.Errorf("Expected 16 points on the image frame, got %d", len(contours[0]))
	}
	hole := Contour{image.Pt(1, 2), image.Pt(2, 1), image.Pt(3, 2), image.Pt(2, 3)}
	if !equalContour(contours[1], hole) {
		t.Errorf("Expected hole border %v, got %v", hole, contours[1])
	}
	if !nodes[1].Hole || nodes[1].Parent != 0 {
		t.Errorf("Expected hole child of contour 0, got %+v", nodes[1])
	}
}

func TestTraceEmpty(t *testing.T) {
	contours, nodes := Tracer{}.Trace(grid.NewMask(4, 4))
	if len(contours) != 0 || len(nodes) != 0 {
		t.Errorf("Expected no contours, got %d", len(contours))
	}
}

func TestContourIndex(t *testing.T) {
	c := Contour{image.Pt(1, 1), image.Pt(2, 1), image.Pt(3, 1), image.Pt(2, 1)}
	if c.Index(image.Pt(2, 1)) != 1 {
		t.Errorf("Expected first occurrence 1, got %d", c.Index(image.Pt(2, 1)))
	}
	if c.Index(image.Pt(0, 0)) != -1 {
		t.Error("Expected -1 for a missing point")
	}
}

// Package contour traces the closed borders of the nonzero region of a mask.
//
// The tracer follows Suzuki and Abe's topological border following: every
// outer border of a connected nonzero component and every border of a hole
// inside one becomes a Contour, and a Node per contour records which border
// encloses it.
package contour

import (
	"image"

	"rgbdinpaint/pkg/grid"
)

// Contour is an ordered, cyclic sequence of border cells. Every point is a
// nonzero cell of the traced mask.
type Contour []image.Point

// Index returns the position of the first occurrence of p, or -1.
func (c Contour) Index(p image.Point) int {
	for i, q := range c {
		if q == p {
			return i
		}
	}
	return -1
}

// Node is the hierarchy entry of one contour.
type Node struct {
	// Parent is the index of the enclosing contour, or -1 at top level.
	Parent int
	// Hole is true for the border between a component and a hole inside it.
	Hole bool
}

// Children returns the indices of contours whose parent is i.
func Children(nodes []Node, i int) []int {
	var out []int
	for j, n := range nodes {
		if n.Parent == i {
			out = append(out, j)
		}
	}
	return out
}

// Tracer is the default boundary tracer.
type Tracer struct{}

// Trace implements the tracer contract; see the package function Trace.
func (Tracer) Trace(m *grid.Mask) ([]Contour, []Node) { return Trace(m) }

// 8-neighbourhood in clockwise order on screen (y grows downwards).
var (
	dirX = [8]int{1, 1, 0, -1, -1, -1, 0, 1}
	dirY = [8]int{0, 1, 1, 1, 0, -1, -1, -1}
)

func direction(dx, dy int) int {
	for d := 0; d < 8; d++ {
		if dirX[d] == dx && dirY[d] == dy {
			return d
		}
	}
	return 0
}

type border struct {
	hole   bool
	parent int
}

// Trace returns every border of the nonzero region of m with its hierarchy.
// Cells beyond the mask edge count as zero. Contours are listed in the order
// their first cell is met in a row-major scan.
func Trace(m *grid.Mask) ([]Contour, []Node) {
	w, h := m.W+2, m.H+2
	f := make([]int, w*h)
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if m.IsSet(x, y) {
				f[(y+1)*w+x+1] = 1
			}
		}
	}

	// Border 1 is the frame around the image; it acts as a hole border with
	// no parent.
	borders := []border{{}, {hole: true, parent: 0}}
	var contours []Contour
	nbd := 1

	for y := 1; y < h-1; y++ {
		lnbd := 1
		for x := 1; x < w-1; x++ {
			i := y*w + x
			if f[i] == 0 {
				continue
			}
			from, start := -1, false
			hole := false
			switch {
			case f[i] == 1 && f[i-1] == 0:
				from, start = 4, true
			case f[i] >= 1 && f[i+1] == 0:
				from, start, hole = 0, true, true
				if f[i] > 1 {
					lnbd = f[i]
				}
			}
			if start {
				nbd++
				b := borders[lnbd]
				parent := lnbd
				if b.hole == hole {
					parent = b.parent
				}
				borders = append(borders, border{hole: hole, parent: parent})
				contours = append(contours, follow(f, w, x, y, from, nbd))
			}
			if f[i] != 1 {
				lnbd = abs(f[i])
			}
		}
	}

	nodes := make([]Node, len(contours))
	for k := range contours {
		b := borders[k+2]
		nodes[k] = Node{Parent: b.parent - 2, Hole: b.hole}
		if b.parent < 2 {
			nodes[k].Parent = -1
		}
	}
	return contours, nodes
}

// follow walks one border starting at (x0, y0), whose zero neighbour lies in
// direction from, labelling visited cells with nbd.
func follow(f []int, w, x0, y0, from, nbd int) Contour {
	at := func(x, y int) int { return f[y*w+x] }
	set := func(x, y, v int) { f[y*w+x] = v }

	first := -1
	for k := 0; k < 8; k++ {
		d := (from + k) % 8
		if at(x0+dirX[d], y0+dirY[d]) != 0 {
			first = d
			break
		}
	}
	if first < 0 {
		set(x0, y0, -nbd)
		return Contour{image.Pt(x0-1, y0-1)}
	}

	x1, y1 := x0+dirX[first], y0+dirY[first]
	x2, y2 := x1, y1
	x3, y3 := x0, y0
	var pts Contour
	for {
		d2 := direction(x2-x3, y2-y3)
		x4, y4 := x3, y3
		eastZero := false
		for k := 1; k <= 8; k++ {
			d := (d2 - k + 8) % 8
			nx, ny := x3+dirX[d], y3+dirY[d]
			if at(nx, ny) != 0 {
				x4, y4 = nx, ny
				break
			}
			if d == 0 {
				eastZero = true
			}
		}

		pts = append(pts, image.Pt(x3-1, y3-1))
		if eastZero {
			set(x3, y3, -nbd)
		} else if at(x3, y3) == 1 {
			set(x3, y3, nbd)
		}

		if x4 == x0 && y4 == y0 && x3 == x1 && y3 == y1 {
			return pts
		}
		x2, y2 = x3, y3
		x3, y3 = x4, y4
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Package visualization renders the progress of a texture inpainting run:
// the image with the current target and source patches outlined, and the
// priority and confidence fields as gray maps.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"

	"rgbdinpaint/pkg/grid"
	"rgbdinpaint/pkg/imageio"
	"rgbdinpaint/pkg/inpainting"
)

// Colors used by Overlay.
var (
	TargetColor  = color.RGBA{R: 0xff, A: 0xff}
	SourceColor  = color.RGBA{B: 0xff, A: 0xff}
	UnknownColor = color.RGBA{R: 0xff, B: 0xff, A: 0xff}
)

// Viewer renders the state of an inpainting run in image coordinates.
type Viewer struct {
	state *inpainting.State
}

// NewViewer creates a viewer over s. The state is read on every call, so
// one viewer can follow a whole run.
func NewViewer(s *inpainting.State) *Viewer {
	return &Viewer{state: s}
}

// Overlay returns the current color image with unknown cells painted in
// UnknownColor and the target and source patches of round outlined.
func (v *Viewer) Overlay(round inpainting.Round) *image.RGBA {
	s := v.state
	img := imageio.ColorImage(s.ColorResult())
	known := s.Known.Crop(s.Radius)
	for y := 0; y < known.H; y++ {
		for x := 0; x < known.W; x++ {
			if !known.IsSet(x, y) {
				img.SetRGBA(x, y, UnknownColor)
			}
		}
	}

	if round.Iteration > 0 {
		drawBox(img, round.Source, s.Radius, SourceColor)
		drawBox(img, round.Target, s.Radius, TargetColor)
	}
	return img
}

// Priority renders the priority field. Non-contour cells are black and the
// highest priority is white.
func (v *Viewer) Priority() *image.Gray {
	s := v.state
	p := s.Priority.Crop(s.Radius)
	for i, x := range p.Data {
		if x < 0 {
			p.Data[i] = 0
		}
	}
	return GrayMap(p)
}

// Confidence renders the confidence field, 0 as black and 1 as white.
func (v *Viewer) Confidence() *image.Gray {
	c := v.state.ConfidenceResult()
	img := image.NewGray(image.Rect(0, 0, c.W, c.H))
	for i, x := range c.Data {
		img.Pix[i] = uint8(math.Round(math.Max(0, math.Min(1, x)) * 0xff))
	}
	return img
}

// GrayMap renders channel 0 of f stretched so its minimum is black and its
// maximum white. A constant field renders black.
func GrayMap(f *grid.Field) *image.Gray {
	vals := f.Channel(0).Data
	img := image.NewGray(image.Rect(0, 0, f.W, f.H))
	if len(vals) == 0 {
		return img
	}
	lo, hi := floats.Min(vals), floats.Max(vals)
	if hi == lo {
		return img
	}
	for i, x := range vals {
		img.Pix[i] = uint8(math.Round((x - lo) / (hi - lo) * 0xff))
	}
	return img
}

// drawBox outlines the patch of radius r centred at c, clipped to img.
func drawBox(img *image.RGBA, c image.Point, r int, col color.RGBA) {
	rect := image.Rect(c.X-r, c.Y-r, c.X+r+1, c.Y+r+1)
	b := img.Bounds()
	for x := rect.Min.X; x < rect.Max.X; x++ {
		setIn(img, b, x, rect.Min.Y, col)
		setIn(img, b, x, rect.Max.Y-1, col)
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		setIn(img, b, rect.Min.X, y, col)
		setIn(img, b, rect.Max.X-1, y, col)
	}
}

func setIn(img *image.RGBA, b image.Rectangle, x, y int, col color.RGBA) {
	if image.Pt(x, y).In(b) {
		img.SetRGBA(x, y, col)
	}
}

// SaveImage saves img as a PNG file
func SaveImage(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}

// SaveRound writes the overlay, priority and confidence maps of round into
// outputDir as round_NNNNN_{overlay,priority,confidence}.png.
func (v *Viewer) SaveRound(round inpainting.Round, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	images := []struct {
		name string
		img  image.Image
	}{
		{"overlay", v.Overlay(round)},
		{"priority", v.Priority()},
		{"confidence", v.Confidence()},
	}
	for _, im := range images {
		filename := filepath.Join(outputDir, fmt.Sprintf("round_%05d_%s.png", round.Iteration, im.name))
		if err := SaveImage(im.img, filename); err != nil {
			return fmt.Errorf("failed to save %s: %w", filename, err)
		}
	}
	return nil
}

// Package imageio loads and saves the images consumed and produced by the
// inpainting pipeline and converts them to and from grid fields.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"rgbdinpaint/pkg/grid"
)

// ErrUnsupportedFormat is returned by Save for an unknown file extension.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Load decodes a PNG, JPEG, TIFF or BMP file.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

// Save encodes img according to the extension of path. TIFF output keeps
// 16-bit samples, so depth maps should be saved as .tif or .png.
func Save(path string, img image.Image) error {
	ext := strings.ToLower(filepath.Ext(path))
	var encode func(f *os.File) error
	switch ext {
	case ".png":
		encode = func(f *os.File) error { return png.Encode(f, img) }
	case ".jpg", ".jpeg":
		encode = func(f *os.File) error { return jpeg.Encode(f, img, &jpeg.Options{Quality: 95}) }
	case ".tif", ".tiff":
		encode = func(f *os.File) error {
			return tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate})
		}
	case ".bmp":
		encode = func(f *os.File) error { return bmp.Encode(f, img) }
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	if err := encode(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}

// Scale resizes img by factor. Masks should use nearest so that no
// intermediate values appear along the mask border.
func Scale(img image.Image, factor float64, nearest bool) image.Image {
	if factor == 1 || factor <= 0 {
		return img
	}
	b := img.Bounds()
	w := int(math.Round(float64(b.Dx()) * factor))
	h := int(math.Round(float64(b.Dy()) * factor))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	var dst draw.Image
	switch img.(type) {
	case *image.Gray16:
		dst = image.NewGray16(image.Rect(0, 0, w, h))
	case *image.Gray:
		dst = image.NewGray(image.Rect(0, 0, w, h))
	default:
		dst = image.NewRGBA64(image.Rect(0, 0, w, h))
	}

	var scaler draw.Scaler = draw.BiLinear
	if nearest {
		scaler = draw.NearestNeighbor
	}
	scaler.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// ToColorField converts img to a 3-channel RGB field in [0, 1].
func ToColorField(img image.Image) *grid.Field {
	b := img.Bounds()
	f := grid.NewField(b.Dx(), b.Dy(), 3)
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			f.Set(x, y, 0, float64(r)/0xffff)
			f.Set(x, y, 1, float64(g)/0xffff)
			f.Set(x, y, 2, float64(bl)/0xffff)
		}
	}
	return f
}

// ToDepthField converts img to a single-channel field in [0, 1]. 8-bit and
// 16-bit gray images map to the same range.
func ToDepthField(img image.Image) *grid.Field {
	b := img.Bounds()
	f := grid.NewField(b.Dx(), b.Dy(), 1)
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			g := color.Gray16Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16)
			f.Set(x, y, 0, float64(g.Y)/0xffff)
		}
	}
	return f
}

// ToMask sets every cell whose gray level, in [0, 1], is at least threshold.
func ToMask(img image.Image, threshold float64) *grid.Mask {
	return grid.Threshold(ToDepthField(img), func(v float64) bool { return v >= threshold })
}

// ColorImage renders a 1- or 3-channel field in [0, 1] as an 8-bit image.
// Values outside the range are clamped.
func ColorImage(f *grid.Field) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.W, f.H))
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			var r, g, b uint8
			if f.C >= 3 {
				r, g, b = to8(f.At(x, y, 0)), to8(f.At(x, y, 1)), to8(f.At(x, y, 2))
			} else {
				r = to8(f.At(x, y, 0))
				g, b = r, r
			}
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 0xff})
		}
	}
	return img
}

// DepthImage renders channel 0 of f, in [0, 1], as a 16-bit gray image.
func DepthImage(f *grid.Field) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, f.W, f.H))
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			img.SetGray16(x, y, color.Gray16{Y: uint16(math.Round(clamp01(f.At(x, y, 0)) * 0xffff))})
		}
	}
	return img
}

// MaskImage renders m as an 8-bit gray image.
func MaskImage(m *grid.Mask) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.W, m.H))
	copy(img.Pix, m.Data)
	return img
}

func to8(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 0xff))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

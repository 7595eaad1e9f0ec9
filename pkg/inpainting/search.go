package inpainting

import (
	"fmt"
	"image"

	"rgbdinpaint/pkg/grid"
	"rgbdinpaint/pkg/imgproc"
)

// InfeasibleScore is written over the normalised score of every candidate
// whose patch is not fully known. Normalised scores never exceed 1.
const InfeasibleScore = 1.1

// FindSource returns the centre of the known patch that best matches the
// color patch at target, comparing only target cells with nonzero
// confidence. Only centres set in s.Sources are eligible.
func FindSource(s *State, target image.Point, scorer MatchScorer) (image.Point, error) {
	r := s.Radius
	if scorer == nil {
		scorer = imgproc.SSD{}
	}

	tmpl := s.Color.Patch(target, r).Clone()
	conf := s.Confidence.Patch(target, r)
	valid := grid.NewField(conf.Size, conf.Size, 1)
	for j := 0; j < conf.Size; j++ {
		for i := 0; i < conf.Size; i++ {
			if conf.At(i, j, 0) != 0 {
				valid.Set(i, j, 0, 1)
			}
		}
	}

	scores, err := scorer.Score(tmpl, s.Color, valid)
	if err != nil {
		return image.Point{}, fmt.Errorf("scoring patch at %v: %w", target, err)
	}
	if scores.W != s.Color.W-2*r || scores.H != s.Color.H-2*r {
		return image.Point{}, fmt.Errorf("%w: scorer returned %dx%d scores for a %dx%d field",
			grid.ErrPrecondition, scores.W, scores.H, s.Color.W, s.Color.H)
	}
	imgproc.NormalizeMinMax(scores, 0, 1)

	// Score cell (x, y) belongs to the patch centred at (x+r, y+r).
	for y := 0; y < scores.H; y++ {
		for x := 0; x < scores.W; x++ {
			if !s.Sources.IsSet(x+r, y+r) {
				scores.Set(x, y, 0, InfeasibleScore)
			}
		}
	}
	best := scores.ArgMin(0)
	if scores.At(best.X, best.Y, 0) >= InfeasibleScore {
		return image.Point{}, ErrNoSource
	}

	source := best.Add(image.Pt(r, r))
	if source == target {
		return image.Point{}, fmt.Errorf("%w: %v", ErrSelfMatch, s.ToImage(target))
	}
	return source, nil
}

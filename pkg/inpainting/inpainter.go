// Package inpainting implements exemplar-based texture inpainting.
//
// Each round traces the border of the unknown region, scores every border
// cell by confidence x isophote strength, picks the best one as target and
// copies the best matching fully known patch over its unknown cells. The
// target's confidence then spreads to the cells it filled. Rounds repeat
// until nothing is unknown.
package inpainting

import (
	"context"
	"fmt"
	"image"

	"github.com/rs/zerolog"

	"rgbdinpaint/pkg/contour"
	"rgbdinpaint/pkg/grid"
	"rgbdinpaint/pkg/imgproc"
)

// Phase is the state of the fill controller.
type Phase int

const (
	// Active means unknown cells remain.
	Active Phase = iota
	// Done means the unknown region is empty. It is terminal.
	Done
)

func (p Phase) String() string {
	switch p {
	case Active:
		return "active"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Defaults used when Params leaves a radius at zero.
const (
	DefaultPatchRadius  = 5
	DefaultBorderRadius = 5
)

// Round records one completed fill round. Points are in image coordinates.
type Round struct {
	Iteration  int
	Target     image.Point
	Source     image.Point
	Priority   float64
	Confidence float64
	// Filled is the number of cells this round turned known.
	Filled int
	// Unknown is the number of cells still unknown afterwards.
	Unknown int
}

// Observer is called after every round. It must not modify the state.
type Observer func(s *State, r Round)

// Params configures an Inpainter. Nil collaborators select the package
// defaults.
type Params struct {
	PatchRadius  int
	BorderRadius int

	// MaxIterations caps Run. Zero means no cap; the worst case is one
	// round per unknown cell.
	MaxIterations int

	Tracer   Tracer
	Edge     EdgeOperator
	Scorer   MatchScorer
	Observer Observer

	// Logger receives one debug line per round. Nil discards.
	Logger *zerolog.Logger
}

// Inpainter drives the fill rounds over one State.
type Inpainter struct {
	params    Params
	state     *State
	phase     Phase
	iteration int
	log       zerolog.Logger
}

// NewInpainter prepares to fill the cells of color where known is zero.
func NewInpainter(color *grid.Field, known *grid.Mask, params *Params) (*Inpainter, error) {
	p := Params{}
	if params != nil {
		p = *params
	}
	if p.PatchRadius == 0 {
		p.PatchRadius = DefaultPatchRadius
	}
	if p.BorderRadius == 0 {
		p.BorderRadius = DefaultBorderRadius
	}
	if p.BorderRadius < 0 || p.MaxIterations < 0 {
		return nil, fmt.Errorf("%w: border radius %d, max iterations %d",
			grid.ErrPrecondition, p.BorderRadius, p.MaxIterations)
	}
	if p.Tracer == nil {
		p.Tracer = contour.Tracer{}
	}
	if p.Edge == nil {
		p.Edge = imgproc.Scharr{}
	}
	if p.Scorer == nil {
		p.Scorer = imgproc.SSD{}
	}

	s, err := NewState(color, known, p.PatchRadius)
	if err != nil {
		return nil, err
	}

	in := &Inpainter{params: p, state: s, log: zerolog.Nop()}
	if p.Logger != nil {
		in.log = *p.Logger
	}
	if s.UnknownCount() == 0 {
		in.phase = Done
	}
	return in, nil
}

// Phase returns the controller state.
func (in *Inpainter) Phase() Phase { return in.phase }

// State exposes the grid state for inspection.
func (in *Inpainter) State() *State { return in.state }

// Iterations returns the number of completed rounds.
func (in *Inpainter) Iterations() int { return in.iteration }

// Result returns the unpadded color field in its current state.
func (in *Inpainter) Result() *grid.Field { return in.state.ColorResult() }

// Step runs one fill round. It is a no-op once the phase is Done. Any error
// leaves the controller in an undefined state and must not be retried.
func (in *Inpainter) Step() (Round, error) {
	if in.phase == Done {
		return Round{Iteration: in.iteration}, nil
	}
	s := in.state
	r := s.Radius
	before := s.UnknownCount()

	contours, _ := in.params.Tracer.Trace(s.Unknown())
	if len(contours) == 0 {
		return Round{}, fmt.Errorf("%w: no border around %d unknown cells", ErrNoProgress, before)
	}

	if err := ComputePriority(contours, s.Gray, s.Confidence, s.Priority,
		r, in.params.BorderRadius, in.params.Edge); err != nil {
		return Round{}, err
	}
	target := s.Priority.ArgMax(0)
	priority := s.Priority.At(target.X, target.Y, 0)
	if priority <= PrioritySentinel {
		return Round{}, fmt.Errorf("%w: no contour cell received a priority", ErrNoProgress)
	}

	source, err := FindSource(s, target, in.params.Scorer)
	if err != nil {
		return Round{}, err
	}

	TransferPatch(s.Gray, source, target, s.Known, r)
	TransferPatch(s.Color, source, target, s.Known, r)
	conf, err := UpdateConfidence(s.Confidence, target, r)
	if err != nil {
		return Round{}, err
	}
	s.refreshKnown()

	after := s.UnknownCount()
	if after >= before {
		return Round{}, fmt.Errorf("%w: %d unknown cells before and after round %d",
			ErrNoProgress, before, in.iteration+1)
	}
	in.iteration++
	if after == 0 {
		in.phase = Done
	}

	round := Round{
		Iteration:  in.iteration,
		Target:     s.ToImage(target),
		Source:     s.ToImage(source),
		Priority:   priority,
		Confidence: conf,
		Filled:     before - after,
		Unknown:    after,
	}
	in.log.Debug().
		Int("iteration", round.Iteration).
		Int("targetX", round.Target.X).
		Int("targetY", round.Target.Y).
		Int("sourceX", round.Source.X).
		Int("sourceY", round.Source.Y).
		Float64("priority", round.Priority).
		Float64("confidence", round.Confidence).
		Int("unknown", round.Unknown).
		Msg("patch transferred")
	if in.params.Observer != nil {
		in.params.Observer(s, round)
	}
	return round, nil
}

// Run steps until the phase is Done and returns the filled color field.
// The context is checked between rounds only.
func (in *Inpainter) Run(ctx context.Context) (*grid.Field, error) {
	for in.phase == Active {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if in.params.MaxIterations > 0 && in.iteration >= in.params.MaxIterations {
			return nil, fmt.Errorf("%w: %d rounds, %d cells unknown",
				ErrIterationLimit, in.iteration, in.state.UnknownCount())
		}
		if _, err := in.Step(); err != nil {
			return nil, fmt.Errorf("round %d: %w", in.iteration+1, err)
		}
	}
	return in.Result(), nil
}

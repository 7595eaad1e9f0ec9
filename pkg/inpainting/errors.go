package inpainting

import "errors"

var (
	// ErrDegenerateNormal is returned when a contour gives no direction to
	// build a normal from.
	ErrDegenerateNormal = errors.New("degenerate contour normal")
	// ErrNotOnContour is returned by NormalAt for a point the contour does
	// not contain.
	ErrNotOnContour = errors.New("point is not on the contour")
	// ErrSelfMatch is returned when the best source patch is the target
	// itself, which means the feasibility masking is broken.
	ErrSelfMatch = errors.New("best source patch equals the target")
	// ErrNoSource is returned when no source patch lies fully inside the
	// known region.
	ErrNoSource = errors.New("no feasible source patch")
	// ErrConfidenceRange is returned when a confidence value leaves [0, 1].
	ErrConfidenceRange = errors.New("confidence out of range")
	// ErrNoProgress is returned when a round leaves the unknown region
	// unchanged.
	ErrNoProgress = errors.New("fill round made no progress")
	// ErrIterationLimit is returned by Run when Params.MaxIterations rounds
	// did not empty the unknown region.
	ErrIterationLimit = errors.New("iteration limit reached")
)

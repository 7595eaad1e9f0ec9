// Package cvbackend provides OpenCV implementations of the inpainting
// collaborators (boundary tracer, edge operator and match scorer).
//
// OpenCV is linked only when building with the gocv tag:
//
//	go build -tags gocv ./cmd/rgbdinpaint
//
// Without the tag Configure leaves the pure Go defaults in place.
package cvbackend

//go:build !gocv

package cvbackend

import "rgbdinpaint/pkg/inpainting"

// Configure reports false: this build has no OpenCV support.
func Configure(p *inpainting.Params) bool { return false }

// Package geometry computes thumbnail dimensions and crop offsets.
// Everything here is pure and free of image decoding.
package geometry

import (
	"fmt"
	"math"
)

// Size is a width/height pair in pixels.
type Size struct {
	Width  int
	Height int
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// ComputeScale returns the size an image should be resized to before
// an optional crop.
//
// With crop the image is scaled to cover the target box, otherwise it
// is scaled to fit inside it. When the chosen factor is >= 1 and
// upscaling is not allowed the image size is returned unchanged.
func ComputeScale(img, target Size, crop, upscale bool) Size {
	if !img.Valid() {
		return img
	}

	fx := float64(target.Width) / float64(img.Width)
	fy := float64(target.Height) / float64(img.Height)

	factor := min(fx, fy)
	if crop {
		factor = max(fx, fy)
	}

	if factor >= 1 && !upscale {
		return img
	}

	return Size{
		Width:  scaleSide(img.Width, factor),
		Height: scaleSide(img.Height, factor),
	}
}

// math.Round rounds half away from zero. A side never collapses below
// one pixel.
func scaleSide(side int, factor float64) int {
	return max(int(math.Round(float64(side)*factor)), 1)
}

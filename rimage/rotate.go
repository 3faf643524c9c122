package rimage

import (
	"image"

	"github.com/disintegration/imaging"
)

// Rotate returns a copy of img rotated clockwise by degreesClockwise. Multiples of 90 degrees are
// exact pixel permutations; other angles are bilinearly resampled onto a canvas grown to fit the
// rotated corners, with the uncovered area left Transparent.
func Rotate(img image.Image, degreesClockwise int) *Image {
	// imaging.Rotate rotates an image counter-clockwise, so the angle is negated.
	return ConvertImage(imaging.Rotate(img, -float64(degreesClockwise), Transparent))
}

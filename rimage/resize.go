package rimage

import (
	"image"

	"github.com/nfnt/resize"
)

// Resize returns img scaled to width x height. Each output pixel is the average of the source
// pixels nearest to it, so areas of a single color keep that exact color.
func Resize(img image.Image, width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, NewInvalidDimensionError(width, height)
	}
	bounds := img.Bounds()
	if bounds.Dx() == width && bounds.Dy() == height {
		return ConvertImage(img).Clone(), nil
	}
	return ConvertImage(resize.Resize(uint(width), uint(height), img, resize.NearestNeighbor)), nil
}

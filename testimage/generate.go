package testimage

import (
	"image"

	"go.viam.com/testimage/rimage"
)

// NewColorBlockImage returns a width x height image painted with ColorBlockLayout.
func NewColorBlockImage(width, height int) (*rimage.Image, error) {
	return newPaintedImage(width, height, ColorBlockLayout)
}

// NewGrayBandMap returns a width x height gain map painted with GrayBandLayout.
func NewGrayBandMap(width, height int) (*rimage.Image, error) {
	return newPaintedImage(width, height, GrayBandLayout)
}

func newPaintedImage(width, height int, layout func(int, int) Layout) (*rimage.Image, error) {
	img, err := rimage.NewImage(width, height)
	if err != nil {
		return nil, err
	}
	layout(width, height).Paint(img)
	return img, nil
}

// RotateImage returns img rotated clockwise by degrees. See rimage.Rotate.
func RotateImage(img image.Image, degrees int) *rimage.Image {
	return rimage.Rotate(img, degrees)
}

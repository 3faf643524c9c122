// Package testimage generates deterministic camera test images: a 2x2 color block image, a 4
// band grayscale gain map, their JPEG and JPEG/R encodings, and a JPEG with a malformed header
// for decoder regression tests.
package testimage

import (
	"image"

	"golang.org/x/image/draw"

	"go.viam.com/testimage/rimage"
)

// A Block is a rectangle painted with a single color.
type Block struct {
	Rect  image.Rectangle
	Color rimage.Color
}

// A Layout is an ordered list of blocks. Later blocks paint over earlier ones.
type Layout []Block

// ColorBlockLayout splits a width x height image into quadrants at width/2 and height/2: red
// top-left, green top-right, blue bottom-left and yellow bottom-right. On odd dimensions the
// bottom and right quadrants get the extra row or column.
func ColorBlockLayout(width, height int) Layout {
	centerX, centerY := width/2, height/2
	return Layout{
		{image.Rect(0, 0, centerX, centerY), rimage.Red},
		{image.Rect(centerX, 0, width, centerY), rimage.Green},
		{image.Rect(0, centerY, centerX, height), rimage.Blue},
		{image.Rect(centerX, centerY, width, height), rimage.Yellow},
	}
}

// GrayBandLayout splits a width x height image into four horizontal bands, black, dark gray,
// gray and white from the top. Rows left over by height/4 belong to the white band.
func GrayBandLayout(width, height int) Layout {
	oneFourthY := height / 4
	twoFourthsY := oneFourthY * 2
	threeFourthsY := oneFourthY * 3
	return Layout{
		{image.Rect(0, 0, width, oneFourthY), rimage.Black},
		{image.Rect(0, oneFourthY, width, twoFourthsY), rimage.DarkGray},
		{image.Rect(0, twoFourthsY, width, threeFourthsY), rimage.Gray},
		{image.Rect(0, threeFourthsY, width, height), rimage.White},
	}
}

// Paint draws every block onto dst, relative to dst's origin. Empty blocks are skipped.
func (l Layout) Paint(dst draw.Image) {
	origin := dst.Bounds().Min
	for _, block := range l {
		if block.Rect.Empty() {
			continue
		}
		draw.Draw(dst, block.Rect.Add(origin), image.NewUniform(block.Color), image.Point{}, draw.Src)
	}
}

// ColorAt returns the color of the last block containing p, and false when no block does.
func (l Layout) ColorAt(p image.Point) (rimage.Color, bool) {
	for i := len(l) - 1; i >= 0; i-- {
		if p.In(l[i].Rect) {
			return l[i].Color, true
		}
	}
	return rimage.Transparent, false
}

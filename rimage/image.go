package rimage

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Image is a width x height grid of Colors. Its origin is always (0, 0).
type Image struct {
	data          []Color
	width, height int
}

// NewImage allocates a transparent width x height image.
func NewImage(width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, NewInvalidDimensionError(width, height)
	}
	return newImage(width, height), nil
}

func newImage(width, height int) *Image {
	return &Image{
		data:   make([]Color, width*height),
		width:  width,
		height: height,
	}
}

// ConvertImage returns img as an *Image. An *Image is returned as is; anything else is copied
// with its bounds moved to the origin.
func ConvertImage(img image.Image) *Image {
	if ii, ok := img.(*Image); ok {
		return ii
	}
	bounds := img.Bounds()
	ii := newImage(bounds.Dx(), bounds.Dy())
	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := 0; y < ii.height; y++ {
			row := nrgba.Pix[nrgba.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
			for x := 0; x < ii.width; x++ {
				p := row[4*x : 4*x+4 : 4*x+4]
				ii.setXY(x, y, NewColorWithAlpha(p[0], p[1], p[2], p[3]))
			}
		}
		return ii
	}
	for y := 0; y < ii.height; y++ {
		for x := 0; x < ii.width; x++ {
			ii.setXY(x, y, NewColorFromColor(img.At(bounds.Min.X+x, bounds.Min.Y+y)))
		}
	}
	return ii
}

// ColorModel implements image.Image.
func (i *Image) ColorModel() color.Model {
	return ColorModel
}

// Bounds implements image.Image.
func (i *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, i.width, i.height)
}

// Width returns the width in pixels.
func (i *Image) Width() int {
	return i.width
}

// Height returns the height in pixels.
func (i *Image) Height() int {
	return i.height
}

// In reports whether (x, y) addresses a pixel.
func (i *Image) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < i.width && y < i.height
}

func (i *Image) kxy(x, y int) int {
	return (y * i.width) + x
}

// At implements image.Image. Out of range points are Transparent.
func (i *Image) At(x, y int) color.Color {
	if !i.In(x, y) {
		return Transparent
	}
	return i.data[i.kxy(x, y)]
}

// Get returns the color at p.
func (i *Image) Get(p image.Point) Color {
	return i.GetXY(p.X, p.Y)
}

// GetXY returns the color at (x, y), which must be in range.
func (i *Image) GetXY(x, y int) Color {
	return i.data[i.kxy(x, y)]
}

// Set implements draw.Image. Out of range points are ignored.
func (i *Image) Set(x, y int, c color.Color) {
	if !i.In(x, y) {
		return
	}
	i.setXY(x, y, NewColorFromColor(c))
}

// SetXY sets the color at (x, y), which must be in range.
func (i *Image) SetXY(x, y int, c Color) {
	i.setXY(x, y, c)
}

func (i *Image) setXY(x, y int, c Color) {
	i.data[i.kxy(x, y)] = c
}

// Fill paints every pixel of r that lies inside the image with c.
func (i *Image) Fill(r image.Rectangle, c Color) {
	r = r.Intersect(i.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := i.data[i.kxy(r.Min.X, y):i.kxy(r.Max.X, y)]
		for x := range row {
			row[x] = c
		}
	}
}

// Clone returns a deep copy of the image.
func (i *Image) Clone() *Image {
	ii := newImage(i.width, i.height)
	copy(ii.data, i.data)
	return ii
}

// ToNRGBA copies the image into an *image.NRGBA.
func (i *Image) ToNRGBA() *image.NRGBA {
	out := image.NewNRGBA(i.Bounds())
	for y := 0; y < i.height; y++ {
		row := out.Pix[y*out.Stride:]
		for x := 0; x < i.width; x++ {
			c := i.GetXY(x, y)
			row[4*x] = c.R()
			row[4*x+1] = c.G()
			row[4*x+2] = c.B()
			row[4*x+3] = c.A()
		}
	}
	return out
}

// toNRGBA returns img as an *image.NRGBA with its origin at (0, 0), copying when needed.
func toNRGBA(img image.Image) *image.NRGBA {
	switch typed := img.(type) {
	case *Image:
		return typed.ToNRGBA()
	case *image.NRGBA:
		if typed.Rect.Min == (image.Point{}) {
			return typed
		}
	}
	bounds := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Src)
	return out
}

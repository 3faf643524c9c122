package rimage

import (
	"image"
	"image/color"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestNewImage(t *testing.T) {
	img, err := NewImage(3, 2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Bounds(), test.ShouldResemble, image.Rect(0, 0, 3, 2))
	test.That(t, img.Width(), test.ShouldEqual, 3)
	test.That(t, img.Height(), test.ShouldEqual, 2)
	test.That(t, img.GetXY(2, 1), test.ShouldEqual, Transparent)

	for _, dims := range [][2]int{{0, 4}, {4, 0}, {-1, 4}} {
		_, err := NewImage(dims[0], dims[1])
		test.That(t, errors.Is(err, ErrInvalidDimension), test.ShouldBeTrue)
	}
}

func TestImageSetAndFill(t *testing.T) {
	img, err := NewImage(4, 4)
	test.That(t, err, test.ShouldBeNil)

	img.Set(1, 2, color.NRGBA{G: 0xFF, A: 0xFF})
	test.That(t, img.GetXY(1, 2), test.ShouldEqual, Green)
	test.That(t, img.At(1, 2), test.ShouldEqual, Green)
	img.Set(-1, 9, Red)
	test.That(t, img.At(-1, 9), test.ShouldEqual, Transparent)

	img.Fill(image.Rect(2, 2, 10, 10), Yellow)
	test.That(t, img.Get(image.Pt(3, 3)), test.ShouldEqual, Yellow)
	test.That(t, img.Get(image.Pt(2, 2)), test.ShouldEqual, Yellow)
	test.That(t, img.Get(image.Pt(1, 2)), test.ShouldEqual, Green)
	test.That(t, img.Get(image.Pt(1, 1)), test.ShouldEqual, Transparent)

	clone := img.Clone()
	clone.SetXY(3, 3, Blue)
	test.That(t, img.GetXY(3, 3), test.ShouldEqual, Yellow)
	test.That(t, clone.GetXY(3, 3), test.ShouldEqual, Blue)
}

func TestConvertImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 20, 12, 22))
	src.Set(10, 20, color.NRGBA{R: 0xFF, A: 0xFF})
	src.Set(11, 21, color.NRGBA{B: 0xFF, A: 0xFF})

	img := ConvertImage(src)
	test.That(t, img.Bounds(), test.ShouldResemble, image.Rect(0, 0, 2, 2))
	test.That(t, img.GetXY(0, 0), test.ShouldEqual, Red)
	test.That(t, img.GetXY(1, 1), test.ShouldEqual, Blue)
	test.That(t, img.GetXY(1, 0), test.ShouldEqual, Transparent)
	test.That(t, ConvertImage(img), test.ShouldEqual, img)

	gray := image.NewGray(image.Rect(0, 0, 1, 1))
	gray.Pix[0] = 0x40
	test.That(t, ConvertImage(gray).GetXY(0, 0), test.ShouldEqual, DarkGray)

	nrgba := img.ToNRGBA()
	test.That(t, nrgba.NRGBAAt(0, 0), test.ShouldResemble, color.NRGBA{R: 0xFF, A: 0xFF})
	test.That(t, nrgba.NRGBAAt(1, 1), test.ShouldResemble, color.NRGBA{B: 0xFF, A: 0xFF})
	test.That(t, ConvertImage(nrgba), test.ShouldResemble, img)
}

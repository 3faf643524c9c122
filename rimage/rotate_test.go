package rimage

import (
	"image"
	"testing"

	"go.viam.com/test"
)

func TestRotate(t *testing.T) {
	img := newQuadImage(t, 4, 2)

	t.Run("90 degrees", func(t *testing.T) {
		rotated := Rotate(img, 90)
		test.That(t, rotated.Bounds(), test.ShouldResemble, image.Rect(0, 0, 2, 4))
		test.That(t, rotated.GetXY(0, 0), test.ShouldEqual, Blue)
		test.That(t, rotated.GetXY(1, 0), test.ShouldEqual, Red)
		test.That(t, rotated.GetXY(0, 3), test.ShouldEqual, Yellow)
		test.That(t, rotated.GetXY(1, 3), test.ShouldEqual, Green)
	})

	t.Run("180 degrees", func(t *testing.T) {
		rotated := Rotate(img, 180)
		test.That(t, rotated.Bounds(), test.ShouldResemble, img.Bounds())
		test.That(t, rotated.GetXY(0, 0), test.ShouldEqual, Yellow)
		test.That(t, rotated.GetXY(3, 0), test.ShouldEqual, Blue)
		test.That(t, rotated.GetXY(0, 1), test.ShouldEqual, Green)
		test.That(t, rotated.GetXY(3, 1), test.ShouldEqual, Red)
	})

	t.Run("270 and -90 agree", func(t *testing.T) {
		test.That(t, Rotate(img, 270), test.ShouldResemble, Rotate(img, -90))
		test.That(t, Rotate(img, 270).GetXY(0, 0), test.ShouldEqual, Green)
	})

	t.Run("full turns are copies", func(t *testing.T) {
		test.That(t, Rotate(img, 0), test.ShouldResemble, img)
		test.That(t, Rotate(img, 360), test.ShouldResemble, img)
		test.That(t, Rotate(img, 0), test.ShouldNotEqual, img)
	})

	t.Run("arbitrary angles grow the canvas", func(t *testing.T) {
		square := newQuadImage(t, 10, 10)
		rotated := Rotate(square, 45)
		// the 9 pixel diagonal span grows to 9*sqrt(2), plus one for the pixel itself, rounded up
		test.That(t, rotated.Bounds(), test.ShouldResemble, image.Rect(0, 0, 14, 14))
		test.That(t, rotated.GetXY(0, 0), test.ShouldEqual, Transparent)

		// each quadrant turns 45 degrees clockwise around the center (6.5, 6.5), so its middle
		// ends up about 3.5 pixels above, right of, below or left of the center
		for _, tc := range []struct {
			name  string
			patch image.Rectangle
			color Color
		}{
			{"top left moves up", image.Rect(6, 2, 8, 4), Red},
			{"top right moves right", image.Rect(9, 6, 11, 8), Green},
			{"bottom right moves down", image.Rect(6, 9, 8, 11), Yellow},
			{"bottom left moves left", image.Rect(2, 6, 4, 8), Blue},
		} {
			diff, err := MeanAbsoluteDiffRegion(rotated, tc.patch, tc.color)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, diff, test.ShouldBeLessThan, 10)
		}
	})
}

package rimage

import (
	"image/color"
	"testing"

	"go.viam.com/test"
)

func TestColorChannels(t *testing.T) {
	c := NewColorWithAlpha(0x12, 0x34, 0x56, 0x78)
	test.That(t, c, test.ShouldEqual, Color(0x78123456))
	test.That(t, c.A(), test.ShouldEqual, uint8(0x78))
	test.That(t, c.R(), test.ShouldEqual, uint8(0x12))
	test.That(t, c.G(), test.ShouldEqual, uint8(0x34))
	test.That(t, c.B(), test.ShouldEqual, uint8(0x56))
	test.That(t, c.String(), test.ShouldEqual, "0x78123456")

	test.That(t, NewColor(0xFF, 0xFF, 0), test.ShouldEqual, Yellow)
	test.That(t, NewColorFromColor(color.NRGBA{R: 0xFF, A: 0xFF}), test.ShouldEqual, Red)
	test.That(t, NewColorFromColor(color.Gray{Y: 0x80}), test.ShouldEqual, Gray)
	test.That(t, NewColorFromColor(Blue), test.ShouldEqual, Blue)

	// premultiplied input gets un-premultiplied
	test.That(t, NewColorFromColor(color.RGBA{R: 0x80, A: 0x80}), test.ShouldEqual, NewColorWithAlpha(0xFF, 0, 0, 0x80))

	r, g, b, a := Green.RGBA()
	test.That(t, []uint32{r, g, b, a}, test.ShouldResemble, []uint32{0, 0xFFFF, 0, 0xFFFF})
}

func TestColorHex(t *testing.T) {
	c, err := NewColorFromHex("#404040")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c, test.ShouldEqual, DarkGray)
	test.That(t, Yellow.Hex(), test.ShouldEqual, "#ffff00")
	test.That(t, Gray.Hex(), test.ShouldEqual, "#808080")

	_, err = NewColorFromHex("nope")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPerChannelDiff(t *testing.T) {
	for _, c := range []Color{Transparent, Black, White, Red, Green, Blue, Yellow} {
		test.That(t, PerChannelDiff(c, c), test.ShouldEqual, 0)
	}

	test.That(t, PerChannelDiff(Black, White), test.ShouldEqual, 255)
	test.That(t, PerChannelDiff(Red, Green), test.ShouldEqual, 170)
	test.That(t, PerChannelDiff(Green, Red), test.ShouldEqual, 170)
	test.That(t, PerChannelDiff(Red, Yellow), test.ShouldEqual, 85)
	test.That(t, PerChannelDiff(DarkGray, Gray), test.ShouldEqual, 64)

	// alpha does not count
	test.That(t, PerChannelDiff(Black, Transparent), test.ShouldEqual, 0)

	// floor division
	test.That(t, PerChannelDiff(NewColor(1, 0, 0), Black), test.ShouldEqual, 0)
	test.That(t, PerChannelDiff(NewColor(2, 2, 1), Black), test.ShouldEqual, 1)
}

package rimage

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// Color is a packed, non-premultiplied 0xAARRGGBB color. Blue sits at bit offset 0, green at 8,
// red at 16 and alpha at 24.
type Color uint32

// The fixed colors used by the generated test images.
const (
	Transparent Color = 0x00000000
	Black       Color = 0xFF000000
	DarkGray    Color = 0xFF404040
	Gray        Color = 0xFF808080
	White       Color = 0xFFFFFFFF
	Red         Color = 0xFFFF0000
	Green       Color = 0xFF00FF00
	Blue        Color = 0xFF0000FF
	Yellow      Color = 0xFFFFFF00
)

// ColorModel converts any color.Color into a Color.
var ColorModel = color.ModelFunc(func(c color.Color) color.Color {
	return NewColorFromColor(c)
})

// NewColor returns an opaque color.
func NewColor(r, g, b uint8) Color {
	return NewColorWithAlpha(r, g, b, 0xFF)
}

// NewColorWithAlpha returns a color with the given non-premultiplied channels.
func NewColorWithAlpha(r, g, b, a uint8) Color {
	return Color(uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// NewColorFromColor converts c, un-premultiplying alpha if needed.
func NewColorFromColor(c color.Color) Color {
	if cc, ok := c.(Color); ok {
		return cc
	}
	n, _ := color.NRGBAModel.Convert(c).(color.NRGBA)
	return NewColorWithAlpha(n.R, n.G, n.B, n.A)
}

// NewColorFromHex parses an opaque color from "#rrggbb".
func NewColorFromHex(hex string) (Color, error) {
	cc, err := colorful.Hex(hex)
	if err != nil {
		return Transparent, errors.Wrapf(err, "couldn't parse hex (%s)", hex)
	}
	r, g, b := cc.RGB255()
	return NewColor(r, g, b), nil
}

// A returns the alpha channel.
func (c Color) A() uint8 {
	return uint8(c >> 24)
}

// R returns the red channel.
func (c Color) R() uint8 {
	return uint8(c >> 16)
}

// G returns the green channel.
func (c Color) G() uint8 {
	return uint8(c >> 8)
}

// B returns the blue channel.
func (c Color) B() uint8 {
	return uint8(c)
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R(), G: c.G(), B: c.B(), A: c.A()}.RGBA()
}

// Hex returns the "#rrggbb" form of the color, dropping alpha.
func (c Color) Hex() string {
	return colorful.Color{
		R: float64(c.R()) / 255.0,
		G: float64(c.G()) / 255.0,
		B: float64(c.B()) / 255.0,
	}.Hex()
}

func (c Color) String() string {
	return fmt.Sprintf("0x%08X", uint32(c))
}

// PerChannelDiff is the average of the absolute red, green and blue differences between two
// colors, floor divided. Alpha is ignored.
func PerChannelDiff(c1, c2 Color) int {
	diff := 0
	for shift := 0; shift <= 16; shift += 8 {
		diff += absInt(int((c1>>shift)&0xFF) - int((c2>>shift)&0xFF))
	}
	return diff / 3
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

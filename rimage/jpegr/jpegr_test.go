package jpegr

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/testimage/rimage"
	"go.viam.com/testimage/utils"
)

func newPrimary(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 16), G: uint8(y * 16), B: 0x80, A: 0xFF})
		}
	}
	return img
}

func newGainMap(w, h int) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(y * 32)})
		}
	}
	return img
}

func TestEncodeDecode(t *testing.T) {
	data, err := Encode(newPrimary(16, 8), newGainMap(16, 8), nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, hasMarkerPrefix(data, markerSOI), test.ShouldBeTrue)
	test.That(t, HasGainMap(data), test.ShouldBeTrue)

	img, err := Decode(data)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Bounds(), test.ShouldResemble, image.Rect(0, 0, 16, 8))
	test.That(t, img.GainMap.Bounds(), test.ShouldResemble, image.Rect(0, 0, 16, 8))
	_, isGray := img.GainMap.(*image.Gray)
	test.That(t, isGray, test.ShouldBeTrue)
	test.That(t, img.Metadata, test.ShouldResemble, DefaultMetadata())

	t.Run("plain decoders see the primary image", func(t *testing.T) {
		primary, err := jpeg.Decode(bytes.NewReader(data))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, primary.Bounds(), test.ShouldResemble, image.Rect(0, 0, 16, 8))
		_, isGray := primary.(*image.Gray)
		test.That(t, isGray, test.ShouldBeFalse)
	})
}

func TestEncodeCustomMetadata(t *testing.T) {
	md := DefaultMetadata()
	md.MaxContentBoost = 8
	md.HDRCapacityMax = 8
	md.Gamma = 2
	md.BaseRenditionIsHDR = true

	data, err := Encode(newPrimary(8, 8), newGainMap(4, 4), &Options{Quality: 90, GainMapQuality: 75, Metadata: &md})
	test.That(t, err, test.ShouldBeNil)

	img, err := Decode(data)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.GainMap.Bounds(), test.ShouldResemble, image.Rect(0, 0, 4, 4))
	test.That(t, img.Metadata, test.ShouldResemble, md)
}

func TestEncodeErrors(t *testing.T) {
	_, err := Encode(newPrimary(4, 4), newGainMap(8, 4), nil)
	test.That(t, errors.Is(err, ErrInvalidGainMap), test.ShouldBeTrue)

	_, err = Encode(newPrimary(4, 4), image.NewGray(image.Rectangle{}), nil)
	test.That(t, errors.Is(err, ErrInvalidGainMap), test.ShouldBeTrue)

	md := DefaultMetadata()
	md.MaxContentBoost = 0.5
	_, err = Encode(newPrimary(4, 4), newGainMap(4, 4), &Options{Metadata: &md})
	test.That(t, errors.Is(err, ErrInvalidMetadata), test.ShouldBeTrue)

	_, err = Encode(newPrimary(4, 4), newGainMap(4, 4), &Options{Quality: 101})
	test.That(t, errors.Is(err, rimage.ErrInvalidQuality), test.ShouldBeTrue)
}

func TestDecodePlainJPEG(t *testing.T) {
	var buf bytes.Buffer
	test.That(t, jpeg.Encode(&buf, newPrimary(4, 4), nil), test.ShouldBeNil)

	test.That(t, HasGainMap(buf.Bytes()), test.ShouldBeFalse)
	_, err := Decode(buf.Bytes())
	test.That(t, errors.Is(err, ErrNoGainMap), test.ShouldBeTrue)

	_, err = Decode([]byte("not a jpeg"))
	test.That(t, errors.Is(err, ErrMalformed), test.ShouldBeTrue)
	test.That(t, HasGainMap(nil), test.ShouldBeFalse)
}

func TestDecodeWithoutMPF(t *testing.T) {
	gainMapJPEG, err := rimage.EncodeJPEG(newGainMap(4, 4), 100)
	test.That(t, err, test.ShouldBeNil)
	gainMapSegment, err := appSegment(markerAPP1, gainMapXMP(DefaultMetadata()))
	test.That(t, err, test.ShouldBeNil)
	gainMapData, err := insertAfterSOI(gainMapJPEG, gainMapSegment)
	test.That(t, err, test.ShouldBeNil)

	primaryJPEG, err := rimage.EncodeJPEG(newPrimary(4, 4), 100)
	test.That(t, err, test.ShouldBeNil)
	xmpSegment, err := appSegment(markerAPP1, primaryXMP(len(gainMapData)))
	test.That(t, err, test.ShouldBeNil)
	data, err := insertAfterSOI(primaryJPEG, xmpSegment)
	test.That(t, err, test.ShouldBeNil)
	data = append(data, gainMapData...)

	img, err := Decode(data)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.GainMap.Bounds(), test.ShouldResemble, image.Rect(0, 0, 4, 4))
	test.That(t, img.Metadata, test.ShouldResemble, DefaultMetadata())
}

func TestMPFPayload(t *testing.T) {
	payload := mpfPayload(1000, 200, 40)
	test.That(t, payload, test.ShouldHaveLength, mpfPayloadLength)

	entries, err := parseMPF(payload)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, entries, test.ShouldResemble, []mpfEntry{
		{attribute: mpfAttributePrimary, size: 1000, offset: 0},
		{attribute: mpfAttributeNone, size: 200, offset: 960},
	})

	_, err = parseMPF([]byte(mpfNamespace + "XX"))
	test.That(t, errors.Is(err, ErrMalformed), test.ShouldBeTrue)
}

func TestReadHeaderSegments(t *testing.T) {
	app1, err := appSegment(markerAPP1, []byte("abc"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, app1, test.ShouldResemble, []byte{0xFF, 0xE1, 0x00, 0x05, 'a', 'b', 'c'})

	data, err := insertAfterSOI([]byte{0xFF, 0xD8, 0xFF, 0xD9}, app1)
	test.That(t, err, test.ShouldBeNil)
	segments, err := readHeaderSegments(data)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, segments, test.ShouldHaveLength, 1)
	test.That(t, segments[0].offset, test.ShouldEqual, 2)
	test.That(t, segments[0].payload, test.ShouldResemble, []byte("abc"))

	// declared length runs past the end of the data
	_, err = readHeaderSegments([]byte{0xFF, 0xD8, 0xFF, 0xE1, 0xFF, 0x7C, 'E', 'x', 'i', 'f', 0, 0})
	test.That(t, errors.Is(err, ErrMalformed), test.ShouldBeTrue)

	_, err = appSegment(markerAPP1, make([]byte, 1<<16))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestCodec(t *testing.T) {
	codec, err := rimage.LookupCodec(utils.MimeTypeJPEGR)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, rimage.IsLossy(codec), test.ShouldBeTrue)

	_, err = rimage.EncodeImage(context.Background(), newPrimary(4, 4), utils.MimeTypeJPEGR)
	test.That(t, errors.Is(err, rimage.ErrEncodeUnsupported), test.ShouldBeTrue)

	src := &Image{Image: newPrimary(8, 4), GainMap: newGainMap(8, 4)}
	data, err := rimage.EncodeImage(context.Background(), src, utils.MimeTypeJPEGR)
	test.That(t, err, test.ShouldBeNil)

	decoded, err := rimage.DecodeImage(context.Background(), data, utils.MimeTypeJPEGR)
	test.That(t, err, test.ShouldBeNil)
	jimg, ok := decoded.(*Image)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, jimg.Metadata, test.ShouldResemble, DefaultMetadata())
	test.That(t, jimg.Bounds(), test.ShouldResemble, image.Rect(0, 0, 8, 4))
}

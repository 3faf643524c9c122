package testimage

import (
	"image"

	"go.viam.com/testimage/rimage"
	"go.viam.com/testimage/rimage/jpegr"
)

// a24ProblematicHeader is an APP1 header declaring a 0xFF7C byte Exif segment. Some A24
// camera HALs wrote it in front of otherwise valid JPEGs.
var a24ProblematicHeader = []byte{0xFF, 0xD8, 0xFF, 0xE1, 0xFF, 0x7C, 0x45, 0x78, 0x69, 0x66, 0x00, 0x00}

// A24ProblematicHeader returns a copy of the header CorruptHeaderForRegressionTest prepends.
func A24ProblematicHeader() []byte {
	return append([]byte(nil), a24ProblematicHeader...)
}

// EncodeAsLossyImage encodes img as a JPEG at maximum quality. A non-nil aux is embedded as the
// gain map of a JPEG/R image.
func EncodeAsLossyImage(img, aux image.Image) ([]byte, error) {
	if aux == nil {
		return rimage.EncodeJPEG(img, rimage.MaxJPEGQuality)
	}
	return jpegr.Encode(img, aux, nil)
}

// CreateJPEGBytes encodes a width x height color block image as a JPEG.
func CreateJPEGBytes(width, height int) ([]byte, error) {
	img, err := NewColorBlockImage(width, height)
	if err != nil {
		return nil, err
	}
	return EncodeAsLossyImage(img, nil)
}

// CreateJPEGRBytes encodes a width x height color block image as a JPEG/R with a gray band
// gain map of the same size.
func CreateJPEGRBytes(width, height int) ([]byte, error) {
	img, err := NewColorBlockImage(width, height)
	if err != nil {
		return nil, err
	}
	gainMap, err := NewGrayBandMap(width, height)
	if err != nil {
		return nil, err
	}
	return EncodeAsLossyImage(img, gainMap)
}

// NewScaledGainMap returns a gray band gain map for a width x height image, shrunk by scale in
// each dimension. It is never smaller than 1x1.
func NewScaledGainMap(width, height, scale int) (*rimage.Image, error) {
	gainMap, err := NewGrayBandMap(width, height)
	if err != nil || scale <= 1 {
		return gainMap, err
	}
	return rimage.Resize(gainMap, max(1, width/scale), max(1, height/scale))
}

// CorruptHeaderForRegressionTest returns a new slice holding the A24 problematic header followed
// by encoded. encoded is not modified.
func CorruptHeaderForRegressionTest(encoded []byte) []byte {
	out := make([]byte, 0, len(a24ProblematicHeader)+len(encoded))
	out = append(out, a24ProblematicHeader...)
	return append(out, encoded...)
}

// CreateA24ProblematicJPEGBytes returns CreateJPEGBytes(width, height) behind the A24
// problematic header.
func CreateA24ProblematicJPEGBytes(width, height int) ([]byte, error) {
	jpegBytes, err := CreateJPEGBytes(width, height)
	if err != nil {
		return nil, err
	}
	return CorruptHeaderForRegressionTest(jpegBytes), nil
}

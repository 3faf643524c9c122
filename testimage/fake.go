package testimage

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/pkg/errors"

	"go.viam.com/testimage/rimage"
	"go.viam.com/testimage/rimage/jpegr"
	"go.viam.com/testimage/utils"
)

// Format is the pixel format of a camera frame.
type Format int

// The frame formats a FakeImage can carry.
const (
	FormatYUV420888 Format = iota
	FormatJPEG
	FormatJPEGR
)

func (f Format) String() string {
	switch f {
	case FormatYUV420888:
		return "YUV_420_888"
	case FormatJPEG:
		return "JPEG"
	case FormatJPEGR:
		return "JPEG_R"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// A Plane is one buffer of a frame. Encoded frames have a single plane holding the whole
// encoded image, with zero strides.
type Plane struct {
	Data        []byte
	RowStride   int
	PixelStride int
}

// FrameInfo is the capture metadata attached to a frame.
type FrameInfo struct {
	Timestamp       time.Time
	RotationDegrees int
}

// FakeImage stands in for a frame produced by a camera.
type FakeImage struct {
	Format Format
	Width  int
	Height int
	Planes []Plane
	Info   FrameInfo
}

// NewJPEGFakeImage wraps an encoded JPEG. Its dimensions are read from the JPEG header.
func NewJPEGFakeImage(jpegBytes []byte) (*FakeImage, error) {
	return newEncodedFakeImage(FormatJPEG, jpegBytes)
}

// NewJPEGRFakeImage wraps an encoded JPEG/R. It fails with jpegr.ErrNoGainMap for a plain JPEG.
func NewJPEGRFakeImage(jpegBytes []byte) (*FakeImage, error) {
	if !jpegr.HasGainMap(jpegBytes) {
		return nil, jpegr.ErrNoGainMap
	}
	return newEncodedFakeImage(FormatJPEGR, jpegBytes)
}

func newEncodedFakeImage(format Format, jpegBytes []byte) (*FakeImage, error) {
	cfg, name, err := rimage.DecodeConfig(jpegBytes)
	if err != nil {
		return nil, err
	}
	if name != "jpeg" {
		return nil, errors.Errorf("expected jpeg data for a %s frame, got %s", format, name)
	}
	return &FakeImage{
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
		Planes: []Plane{{Data: jpegBytes}},
		Info:   FrameInfo{Timestamp: time.Now()},
	}, nil
}

// NewYUVFakeImage returns a YUV_420_888 frame holding the color block image: a full resolution
// Y plane followed by U and V planes subsampled by two in both directions.
func NewYUVFakeImage(width, height int) (*FakeImage, error) {
	img, err := NewColorBlockImage(width, height)
	if err != nil {
		return nil, err
	}

	chromaWidth, chromaHeight := (width+1)/2, (height+1)/2
	yPlane := Plane{Data: make([]byte, width*height), RowStride: width, PixelStride: 1}
	uPlane := Plane{Data: make([]byte, chromaWidth*chromaHeight), RowStride: chromaWidth, PixelStride: 1}
	vPlane := Plane{Data: make([]byte, chromaWidth*chromaHeight), RowStride: chromaWidth, PixelStride: 1}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := img.GetXY(x, y)
			luma, cb, cr := color.RGBToYCbCr(c.R(), c.G(), c.B())
			yPlane.Data[y*yPlane.RowStride+x] = luma
			// chroma is sampled from the top left pixel of each 2x2 block
			if x%2 == 0 && y%2 == 0 {
				uPlane.Data[(y/2)*uPlane.RowStride+x/2] = cb
				vPlane.Data[(y/2)*vPlane.RowStride+x/2] = cr
			}
		}
	}

	return &FakeImage{
		Format: FormatYUV420888,
		Width:  width,
		Height: height,
		Planes: []Plane{yPlane, uPlane, vPlane},
		Info:   FrameInfo{Timestamp: time.Now()},
	}, nil
}

// Decode returns the frame's pixels. JPEG/R frames decode to a *jpegr.Image.
func (f *FakeImage) Decode(ctx context.Context) (image.Image, error) {
	switch f.Format {
	case FormatJPEG, FormatJPEGR:
		if len(f.Planes) != 1 {
			return nil, errors.Errorf("%s frame needs 1 plane, has %d", f.Format, len(f.Planes))
		}
		mimeType := utils.MimeTypeJPEG
		if f.Format == FormatJPEGR {
			mimeType = utils.MimeTypeJPEGR
		}
		return rimage.DecodeImage(ctx, f.Planes[0].Data, mimeType)
	case FormatYUV420888:
		return f.decodeYUV()
	default:
		return nil, errors.Errorf("cannot decode %s frame", f.Format)
	}
}

func (f *FakeImage) decodeYUV() (image.Image, error) {
	if len(f.Planes) != 3 {
		return nil, errors.Errorf("YUV_420_888 frame needs 3 planes, has %d", len(f.Planes))
	}
	if f.Width <= 0 || f.Height <= 0 {
		return nil, rimage.NewInvalidDimensionError(f.Width, f.Height)
	}
	chromaWidth, chromaHeight := (f.Width+1)/2, (f.Height+1)/2
	for i, p := range f.Planes {
		width, height := f.Width, f.Height
		if i > 0 {
			width, height = chromaWidth, chromaHeight
		}
		if p.PixelStride != 1 {
			return nil, errors.Errorf("plane %d has unsupported pixel stride %d", i, p.PixelStride)
		}
		if p.RowStride < width {
			return nil, errors.Errorf("plane %d row stride %d is less than its width %d", i, p.RowStride, width)
		}
		if need := (height-1)*p.RowStride + width; len(p.Data) < need {
			return nil, errors.Errorf("plane %d has %d bytes, needs %d", i, len(p.Data), need)
		}
	}
	img := image.NewYCbCr(image.Rect(0, 0, f.Width, f.Height), image.YCbCrSubsampleRatio420)
	copyPlane(img.Y, img.YStride, f.Planes[0], f.Width, f.Height)
	copyPlane(img.Cb, img.CStride, f.Planes[1], chromaWidth, chromaHeight)
	copyPlane(img.Cr, img.CStride, f.Planes[2], chromaWidth, chromaHeight)
	return img, nil
}

// copyPlane copies a width x rows block; src must already be checked to hold it.
func copyPlane(dst []byte, dstStride int, src Plane, width, rows int) {
	for row := 0; row < rows; row++ {
		copy(dst[row*dstStride:row*dstStride+width], src.Data[row*src.RowStride:row*src.RowStride+width])
	}
}

package rimage

import (
	"bytes"
	"context"
	"encoding/binary"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/lmittmann/ppm"
	"github.com/pkg/errors"
	"github.com/xfmoulet/qoi"
	"go.opencensus.io/trace"
	"go.uber.org/multierr"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"go.viam.com/testimage/utils"
)

// MaxJPEGQuality is the quality generated test images are encoded at.
const MaxJPEGQuality = 100

const (
	// RawRGBAHeaderLength is the length of our custom header for raw RGBA data in bytes: the
	// magic number followed by big endian uint32 width and height.
	RawRGBAHeaderLength = 12
	rawRGBAFormatName   = "raw-rgba"
)

// MaxRawRGBAPixels bounds the width x height a raw RGBA header may declare.
const MaxRawRGBAPixels = 1 << 26

// RawRGBAMagicNumber starts every raw RGBA image.
var RawRGBAMagicNumber = []byte("RGBA")

func init() {
	RegisterCodec(jpegCodec{quality: MaxJPEGQuality})
	RegisterCodec(funcCodec{utils.MimeTypePNG, png.Encode, png.Decode})
	RegisterCodec(funcCodec{utils.MimeTypeQOI, qoi.Encode, qoi.Decode})
	RegisterCodec(funcCodec{utils.MimeTypePPM, ppm.Encode, ppm.Decode})
	RegisterCodec(funcCodec{utils.MimeTypeBMP, bmp.Encode, bmp.Decode})
	RegisterCodec(funcCodec{utils.MimeTypeTIFF, encodeTIFF, tiff.Decode})
	RegisterCodec(funcCodec{utils.MimeTypeWEBP, nil, webp.Decode})
	RegisterCodec(funcCodec{utils.MimeTypeRawRGBA, encodeRawRGBA, decodeRawRGBA})
	RegisterCodec(funcCodec{utils.MimeTypeRawRGBAZstd, encodeRawRGBAZstd, decodeRawRGBAZstd})

	image.RegisterFormat(rawRGBAFormatName, string(RawRGBAMagicNumber), decodeRawRGBA, decodeRawRGBAConfig)
}

// IsLossy reports whether a codec discards information when encoding.
func IsLossy(codec Codec) bool {
	lossy, ok := codec.(interface{ Lossy() bool })
	return ok && lossy.Lossy()
}

// CanEncode reports whether a codec can encode. Codecs are assumed to encode unless they say
// otherwise.
func CanEncode(codec Codec) bool {
	encoder, ok := codec.(interface{ CanEncode() bool })
	return !ok || encoder.CanEncode()
}

// EncodeImage encodes img with the codec registered for mimeType.
func EncodeImage(ctx context.Context, img image.Image, mimeType string) ([]byte, error) {
	_, span := trace.StartSpan(ctx, "rimage::EncodeImage::"+mimeType)
	defer span.End()

	codec, err := LookupCodec(mimeType)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := codec.Encode(&buf, img); err != nil {
		return nil, errors.Wrapf(err, "cannot encode image as %s", mimeType)
	}
	return buf.Bytes(), nil
}

// DecodeImage decodes data with the codec registered for mimeType. An empty mime type sniffs
// the format from the data's magic number.
func DecodeImage(ctx context.Context, data []byte, mimeType string) (image.Image, error) {
	_, span := trace.StartSpan(ctx, "rimage::DecodeImage::"+mimeType)
	defer span.End()

	if mimeType == "" {
		img, format, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrap(err, "cannot decode image")
		}
		span.AddAttributes(trace.StringAttribute("format", format))
		return img, nil
	}

	codec, err := LookupCodec(mimeType)
	if err != nil {
		return nil, err
	}
	img, err := codec.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "cannot decode %s image", mimeType)
	}
	return img, nil
}

// DecodeConfig returns the dimensions and sniffed format name of encoded image data without
// decoding its pixels.
func DecodeConfig(data []byte) (image.Config, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, "", errors.Wrap(err, "cannot decode image config")
	}
	return cfg, format, nil
}

// EncodeJPEG encodes img as a baseline JPEG at the given quality.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality < 1 || quality > 100 {
		return nil, errors.Wrapf(ErrInvalidQuality, "got %d", quality)
	}
	var buf bytes.Buffer
	if err := (jpegCodec{quality: quality}).Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type jpegCodec struct {
	quality int
}

func (c jpegCodec) MimeType() string {
	return utils.MimeTypeJPEG
}

func (c jpegCodec) Lossy() bool {
	return true
}

func (c jpegCodec) Encode(w io.Writer, img image.Image) error {
	if ii, ok := img.(*Image); ok {
		img = ii.ToNRGBA()
	}
	return jpeg.Encode(w, img, &jpeg.Options{Quality: c.quality})
}

func (c jpegCodec) Decode(r io.Reader) (image.Image, error) {
	return jpeg.Decode(r)
}

// funcCodec adapts a lossless package level encode/decode pair. A nil encode makes the codec
// decode only.
type funcCodec struct {
	mimeType string
	encode   func(io.Writer, image.Image) error
	decode   func(io.Reader) (image.Image, error)
}

func (c funcCodec) MimeType() string {
	return c.mimeType
}

func (c funcCodec) CanEncode() bool {
	return c.encode != nil
}

func (c funcCodec) Encode(w io.Writer, img image.Image) error {
	if c.encode == nil {
		return errors.Wrapf(ErrEncodeUnsupported, "mime type %q", c.mimeType)
	}
	if ii, ok := img.(*Image); ok {
		img = ii.ToNRGBA()
	}
	return c.encode(w, img)
}

func (c funcCodec) Decode(r io.Reader) (image.Image, error) {
	return c.decode(r)
}

func encodeTIFF(w io.Writer, img image.Image) error {
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
}

func encodeRawRGBA(w io.Writer, img image.Image) error {
	nrgba := toNRGBA(img)
	bounds := nrgba.Bounds()

	header := make([]byte, RawRGBAHeaderLength)
	copy(header, RawRGBAMagicNumber)
	binary.BigEndian.PutUint32(header[4:8], uint32(bounds.Dx()))
	binary.BigEndian.PutUint32(header[8:12], uint32(bounds.Dy()))
	if _, err := w.Write(header); err != nil {
		return err
	}

	rowLen := 4 * bounds.Dx()
	for y := 0; y < bounds.Dy(); y++ {
		offset := y * nrgba.Stride
		if _, err := w.Write(nrgba.Pix[offset : offset+rowLen]); err != nil {
			return err
		}
	}
	return nil
}

func decodeRawRGBAConfig(r io.Reader) (image.Config, error) {
	header := make([]byte, RawRGBAHeaderLength)
	if _, err := io.ReadFull(r, header); err != nil {
		return image.Config{}, errors.Wrap(err, "cannot read raw RGBA header")
	}
	if !bytes.Equal(header[:4], RawRGBAMagicNumber) {
		return image.Config{}, errors.Errorf("raw RGBA magic number mismatch: %q", header[:4])
	}
	width := int64(binary.BigEndian.Uint32(header[4:8]))
	height := int64(binary.BigEndian.Uint32(header[8:12]))
	if width <= 0 || height <= 0 {
		return image.Config{}, NewInvalidDimensionError(int(width), int(height))
	}
	if width*height > MaxRawRGBAPixels {
		return image.Config{}, errors.Wrapf(ErrInvalidDimension,
			"raw RGBA header declares %dx%d, more than %d pixels", width, height, MaxRawRGBAPixels)
	}
	return image.Config{ColorModel: ColorModel, Width: int(width), Height: int(height)}, nil
}

func decodeRawRGBA(r io.Reader) (image.Image, error) {
	cfg, err := decodeRawRGBAConfig(r)
	if err != nil {
		return nil, err
	}
	// read only what the stream holds so a short body never costs the declared size
	expected := 4 * cfg.Width * cfg.Height
	pix, err := io.ReadAll(io.LimitReader(r, int64(expected)))
	if err != nil {
		return nil, errors.Wrap(err, "cannot read raw RGBA pixels")
	}
	if len(pix) != expected {
		return nil, errors.Wrapf(io.ErrUnexpectedEOF, "raw RGBA %dx%d needs %d pixel bytes, got %d",
			cfg.Width, cfg.Height, expected, len(pix))
	}
	return &image.NRGBA{Pix: pix, Stride: 4 * cfg.Width, Rect: image.Rect(0, 0, cfg.Width, cfg.Height)}, nil
}

func encodeRawRGBAZstd(w io.Writer, img image.Image) error {
	enc, err := zstd.NewWriter(w,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
	)
	if err != nil {
		return err
	}
	if err := encodeRawRGBA(enc, img); err != nil {
		return multierr.Combine(err, enc.Close())
	}
	return enc.Close()
}

func decodeRawRGBAZstd(r io.Reader) (image.Image, error) {
	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return decodeRawRGBA(dec)
}

// Package jpegr reads and writes JPEG/R (Ultra HDR) images: a baseline JPEG primary image
// followed by a grayscale JPEG gain map, tied together by XMP and a Multi-Picture Format index.
// Decoders unaware of gain maps stop at the primary image's EOI and see a plain JPEG.
package jpegr

import (
	"bytes"
	"image"
	"image/jpeg"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"

	"go.viam.com/testimage/rimage"
)

// Options configures Encode. The zero value encodes both images at maximum quality with
// DefaultMetadata.
type Options struct {
	Quality        int
	GainMapQuality int
	Metadata       *GainMapMetadata
}

func (opts *Options) quality() int {
	if opts == nil || opts.Quality == 0 {
		return rimage.MaxJPEGQuality
	}
	return opts.Quality
}

func (opts *Options) gainMapQuality() int {
	if opts == nil || opts.GainMapQuality == 0 {
		return rimage.MaxJPEGQuality
	}
	return opts.GainMapQuality
}

func (opts *Options) metadata() GainMapMetadata {
	if opts == nil || opts.Metadata == nil {
		return DefaultMetadata()
	}
	return *opts.Metadata
}

// Image is a decoded JPEG/R image. The embedded image is the primary (SDR) rendition.
type Image struct {
	image.Image
	GainMap  image.Image
	Metadata GainMapMetadata
}

// Encode writes primary with gainMap attached. The gain map is stored as grayscale and must not
// be larger than the primary image in either dimension.
func Encode(primary, gainMap image.Image, opts *Options) ([]byte, error) {
	primaryBounds := primary.Bounds()
	gainMapBounds := gainMap.Bounds()
	if gainMapBounds.Empty() {
		return nil, errors.Wrap(ErrInvalidGainMap, "gain map is empty")
	}
	if gainMapBounds.Dx() > primaryBounds.Dx() || gainMapBounds.Dy() > primaryBounds.Dy() {
		return nil, errors.Wrapf(ErrInvalidGainMap, "gain map %dx%d exceeds primary image %dx%d",
			gainMapBounds.Dx(), gainMapBounds.Dy(), primaryBounds.Dx(), primaryBounds.Dy())
	}
	md := opts.metadata()
	if err := md.validate(); err != nil {
		return nil, err
	}

	gray := image.NewGray(image.Rect(0, 0, gainMapBounds.Dx(), gainMapBounds.Dy()))
	draw.Draw(gray, gray.Bounds(), gainMap, gainMapBounds.Min, draw.Src)
	gainMapJPEG, err := rimage.EncodeJPEG(gray, opts.gainMapQuality())
	if err != nil {
		return nil, errors.Wrap(err, "cannot encode gain map")
	}
	gainMapXMPSegment, err := appSegment(markerAPP1, gainMapXMP(md))
	if err != nil {
		return nil, err
	}
	gainMapData, err := insertAfterSOI(gainMapJPEG, gainMapXMPSegment)
	if err != nil {
		return nil, err
	}

	primaryJPEG, err := rimage.EncodeJPEG(primary, opts.quality())
	if err != nil {
		return nil, errors.Wrap(err, "cannot encode primary image")
	}
	xmpSegment, err := appSegment(markerAPP1, primaryXMP(len(gainMapData)))
	if err != nil {
		return nil, err
	}

	// SOI, the XMP segment, the APP2 marker and length, then the namespace.
	tiffHeaderOffset := 2 + len(xmpSegment) + 4 + len(mpfNamespace)
	primarySize := len(primaryJPEG) + len(xmpSegment) + 4 + mpfPayloadLength
	mpfSegment, err := appSegment(markerAPP2, mpfPayload(primarySize, len(gainMapData), tiffHeaderOffset))
	if err != nil {
		return nil, err
	}

	out, err := insertAfterSOI(primaryJPEG, xmpSegment, mpfSegment)
	if err != nil {
		return nil, err
	}
	return append(out, gainMapData...), nil
}

// locateGainMap returns the byte range of the gain map stream. The MPF index is preferred; the
// XMP container directory is used when the index is missing.
func locateGainMap(data []byte) (int, int, error) {
	segments, err := readHeaderSegments(data)
	if err != nil {
		return 0, 0, err
	}

	if seg, ok := findSegment(segments, markerAPP2, mpfNamespace); ok {
		entries, err := parseMPF(seg.payload)
		if err != nil {
			return 0, 0, err
		}
		if len(entries) >= 2 {
			start := seg.payloadOffset() + len(mpfNamespace) + int(entries[1].offset)
			end := start + int(entries[1].size)
			if entries[1].size == 0 || start <= 0 || end > len(data) {
				return 0, 0, errors.Wrapf(ErrMalformed, "gain map range [%d, %d) outside of %d bytes", start, end, len(data))
			}
			return start, end, nil
		}
	}

	if seg, ok := findSegment(segments, markerAPP1, xmpNamespace); ok {
		meta, err := parseXMP(seg.payload)
		if err != nil {
			return 0, 0, err
		}
		if length := meta.gainMapLength(); length > 0 {
			if length >= len(data) {
				return 0, 0, errors.Wrapf(ErrMalformed, "gain map length %d exceeds %d bytes", length, len(data))
			}
			return len(data) - length, len(data), nil
		}
	}
	return 0, 0, ErrNoGainMap
}

// HasGainMap reports whether data is a JPEG carrying a gain map.
func HasGainMap(data []byte) bool {
	_, _, err := locateGainMap(data)
	return err == nil
}

// Decode splits data into its primary image, gain map and gain map metadata. A plain JPEG
// fails with ErrNoGainMap.
func Decode(data []byte) (*Image, error) {
	start, end, err := locateGainMap(data)
	if err != nil {
		return nil, err
	}

	primary, err := jpeg.Decode(bytes.NewReader(data[:start]))
	if err != nil {
		return nil, errors.Wrap(err, "cannot decode primary image")
	}

	gainMapData := data[start:end]
	segments, err := readHeaderSegments(gainMapData)
	if err != nil {
		return nil, errors.Wrap(err, "gain map")
	}
	seg, ok := findSegment(segments, markerAPP1, xmpNamespace)
	if !ok {
		return nil, errors.Wrap(ErrInvalidGainMap, "gain map has no XMP metadata")
	}
	meta, err := parseXMP(seg.payload)
	if err != nil {
		return nil, err
	}
	md, err := meta.metadata()
	if err != nil {
		return nil, err
	}

	gainMap, err := jpeg.Decode(bytes.NewReader(gainMapData))
	if err != nil {
		return nil, errors.Wrap(err, "cannot decode gain map")
	}
	return &Image{Image: primary, GainMap: gainMap, Metadata: md}, nil
}

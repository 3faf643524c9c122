package rimage

import (
	"image"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidDimension is returned when an image would have a non-positive width or height.
	ErrInvalidDimension = errors.New("invalid image dimension")

	// ErrDimensionMismatch is returned when two compared images differ in width or height.
	ErrDimensionMismatch = errors.New("image dimensions do not match")

	// ErrInvalidRegion is returned when a comparison region is empty or out of bounds.
	ErrInvalidRegion = errors.New("invalid region")

	// ErrCodecNotFound is returned when no codec is registered for a mime type.
	ErrCodecNotFound = errors.New("codec not found")

	// ErrEncodeUnsupported is returned by decode-only codecs.
	ErrEncodeUnsupported = errors.New("encoding not supported")

	// ErrInvalidQuality is returned when a lossy quality is outside 1-100.
	ErrInvalidQuality = errors.New("invalid quality (must be 1-100)")
)

// NewInvalidDimensionError reports a width x height that cannot back an image.
func NewInvalidDimensionError(width, height int) error {
	return errors.Wrapf(ErrInvalidDimension, "cannot allocate %dx%d image", width, height)
}

// NewDimensionMismatchError reports two differently sized images.
func NewDimensionMismatchError(a, b image.Rectangle) error {
	return errors.Wrapf(ErrDimensionMismatch, "%dx%d vs %dx%d", a.Dx(), a.Dy(), b.Dx(), b.Dy())
}

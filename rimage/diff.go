package rimage

import (
	"context"
	"image"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
)

// MeanAbsoluteDiff returns the average PerChannelDiff between two equally sized images, floor
// divided by the pixel count. Pixels are matched relative to each image's bounds.
func MeanAbsoluteDiff(img1, img2 image.Image) (int, error) {
	b1, b2 := img1.Bounds(), img2.Bounds()
	if b1.Dx() != b2.Dx() || b1.Dy() != b2.Dy() {
		return 0, NewDimensionMismatchError(b1, b2)
	}
	if b1.Empty() {
		return 0, NewInvalidDimensionError(b1.Dx(), b1.Dy())
	}

	totalDiff := 0
	for y := 0; y < b1.Dy(); y++ {
		for x := 0; x < b1.Dx(); x++ {
			totalDiff += PerChannelDiff(
				colorAt(img1, b1.Min.X+x, b1.Min.Y+y),
				colorAt(img2, b2.Min.X+x, b2.Min.Y+y),
			)
		}
	}
	return totalDiff / (b1.Dx() * b1.Dy()), nil
}

// MeanAbsoluteDiffRegion returns the average PerChannelDiff between the pixels of rect and a
// single color. This is how the content of a rendered image gets checked against the
// color it is expected to have.
func MeanAbsoluteDiffRegion(img image.Image, rect image.Rectangle, c Color) (int, error) {
	if rect.Empty() {
		return 0, errors.Wrapf(ErrInvalidRegion, "%v has no area", rect)
	}
	if !rect.In(img.Bounds()) {
		return 0, errors.Wrapf(ErrInvalidRegion, "%v is outside of %v", rect, img.Bounds())
	}

	totalDiff := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			totalDiff += PerChannelDiff(colorAt(img, x, y), c)
		}
	}
	return totalDiff / (rect.Dx() * rect.Dy()), nil
}

// MeanAbsoluteDiffEncoded decodes both images, sniffing their formats, and compares them with
// MeanAbsoluteDiff.
func MeanAbsoluteDiffEncoded(ctx context.Context, data1, data2 []byte) (int, error) {
	img1, err := DecodeImage(ctx, data1, "")
	if err != nil {
		return 0, err
	}
	img2, err := DecodeImage(ctx, data2, "")
	if err != nil {
		return 0, err
	}
	return MeanAbsoluteDiff(img1, img2)
}

// DiffStats describes the distribution of per pixel PerChannelDiff values between two images.
type DiffStats struct {
	Mean   float64
	Median float64
	P99    float64
	Max    float64
}

// DiffStatistics has the same preconditions as MeanAbsoluteDiff, but reports the whole
// distribution. A lossy round trip shows up as a low mean with a bounded tail.
func DiffStatistics(img1, img2 image.Image) (DiffStats, error) {
	b1, b2 := img1.Bounds(), img2.Bounds()
	if b1.Dx() != b2.Dx() || b1.Dy() != b2.Dy() {
		return DiffStats{}, NewDimensionMismatchError(b1, b2)
	}
	if b1.Empty() {
		return DiffStats{}, NewInvalidDimensionError(b1.Dx(), b1.Dy())
	}

	diffs := make(stats.Float64Data, 0, b1.Dx()*b1.Dy())
	for y := 0; y < b1.Dy(); y++ {
		for x := 0; x < b1.Dx(); x++ {
			diffs = append(diffs, float64(PerChannelDiff(
				colorAt(img1, b1.Min.X+x, b1.Min.Y+y),
				colorAt(img2, b2.Min.X+x, b2.Min.Y+y),
			)))
		}
	}

	var ret DiffStats
	var err error
	if ret.Mean, err = diffs.Mean(); err != nil {
		return DiffStats{}, err
	}
	if ret.Median, err = diffs.Median(); err != nil {
		return DiffStats{}, err
	}
	if ret.Max, err = diffs.Max(); err != nil {
		return DiffStats{}, err
	}
	// too few samples for a 99th percentile rank
	if ret.P99, err = diffs.Percentile(99); err != nil {
		ret.P99 = ret.Max
	}
	return ret, nil
}

func colorAt(img image.Image, x, y int) Color {
	if ii, ok := img.(*Image); ok {
		return ii.GetXY(x, y)
	}
	return NewColorFromColor(img.At(x, y))
}

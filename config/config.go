// Package config defines the JSON description of a test image generation job.
package config

import (
	"fmt"

	"go.viam.com/testimage/rimage"
	// registers the image/jpeg-r codec.
	_ "go.viam.com/testimage/rimage/jpegr"
	"go.viam.com/testimage/utils"
)

// DefaultQuality is the lossy quality used when a config does not set one.
const DefaultQuality = rimage.MaxJPEGQuality

// A Config describes the test images to generate. Either Width, Height and Output describe a
// single image or Sizes lists several; the remaining fields apply to every image.
type Config struct {
	ConfigFilePath string `json:"-"`

	Width           int    `json:"width,omitempty"`
	Height          int    `json:"height,omitempty"`
	Output          string `json:"output,omitempty"`
	Sizes           []Size `json:"sizes,omitempty"`
	Quality         int    `json:"quality,omitempty"`
	GainMap         bool   `json:"gain_map,omitempty"`
	GainMapScale    int    `json:"gain_map_scale,omitempty"`
	RotationDegrees int    `json:"rotation_degrees,omitempty"`
	MimeType        string `json:"mime_type,omitempty"`
	A24Header       bool   `json:"a24_header,omitempty"`
}

// A Size is one image of a batch.
type Size struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Output string `json:"output"`
}

// Validate ensures all parts of the size are valid.
func (s *Size) Validate(path string) error {
	if s.Width <= 0 {
		return utils.NewConfigValidationInvalidFieldError(path, "width", s.Width)
	}
	if s.Height <= 0 {
		return utils.NewConfigValidationInvalidFieldError(path, "height", s.Height)
	}
	if s.Output == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "output")
	}
	return nil
}

// Validate ensures all parts of the config are valid and fills in defaults.
func (c *Config) Validate(path string) error {
	if len(c.Sizes) == 0 {
		single := Size{Width: c.Width, Height: c.Height, Output: c.Output}
		if err := single.Validate(path); err != nil {
			return err
		}
	}
	for idx := range c.Sizes {
		if err := c.Sizes[idx].Validate(fmt.Sprintf("%s.%s.%d", path, "sizes", idx)); err != nil {
			return err
		}
	}

	if c.Quality == 0 {
		c.Quality = DefaultQuality
	}
	if c.Quality < 1 || c.Quality > rimage.MaxJPEGQuality {
		return utils.NewConfigValidationInvalidFieldError(path, "quality", c.Quality)
	}

	if c.MimeType == "" {
		c.MimeType = utils.MimeTypeJPEG
		if c.GainMap {
			c.MimeType = utils.MimeTypeJPEGR
		}
	}
	codec, err := rimage.LookupCodec(c.MimeType)
	if err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	if !rimage.CanEncode(codec) {
		return utils.NewConfigValidationInvalidFieldError(path, "mime_type", c.MimeType)
	}
	if c.GainMap && c.MimeType != utils.MimeTypeJPEGR {
		return utils.NewConfigValidationInvalidFieldError(path, "mime_type", c.MimeType)
	}
	if c.MimeType == utils.MimeTypeJPEGR && !c.GainMap {
		return utils.NewConfigValidationFieldRequiredError(path, "gain_map")
	}
	if c.GainMapScale == 0 {
		c.GainMapScale = 1
	}
	if c.GainMapScale < 1 {
		return utils.NewConfigValidationInvalidFieldError(path, "gain_map_scale", c.GainMapScale)
	}
	if c.GainMapScale > 1 && !c.GainMap {
		return utils.NewConfigValidationFieldRequiredError(path, "gain_map")
	}
	if c.A24Header && c.MimeType != utils.MimeTypeJPEG {
		return utils.NewConfigValidationInvalidFieldError(path, "a24_header", c.A24Header)
	}
	return nil
}

// Jobs returns one Size per image the config describes.
func (c *Config) Jobs() []Size {
	if len(c.Sizes) > 0 {
		return append([]Size(nil), c.Sizes...)
	}
	return []Size{{Width: c.Width, Height: c.Height, Output: c.Output}}
}

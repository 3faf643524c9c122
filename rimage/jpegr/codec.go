package jpegr

import (
	"image"
	"io"

	"github.com/pkg/errors"

	"go.viam.com/testimage/rimage"
	"go.viam.com/testimage/utils"
)

func init() {
	rimage.RegisterCodec(codec{})
}

// codec exposes JPEG/R through the rimage codec registry. Encoding needs the gain map, so only
// *Image values can be encoded.
type codec struct{}

func (codec) MimeType() string {
	return utils.MimeTypeJPEGR
}

func (codec) Lossy() bool {
	return true
}

func (codec) Encode(w io.Writer, img image.Image) error {
	jimg, ok := img.(*Image)
	if !ok {
		return errors.Wrapf(rimage.ErrEncodeUnsupported, "%s needs a gain map, got %T", utils.MimeTypeJPEGR, img)
	}
	var opts *Options
	if jimg.Metadata != (GainMapMetadata{}) {
		md := jimg.Metadata
		opts = &Options{Metadata: &md}
	}
	data, err := Encode(jimg.Image, jimg.GainMap, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func (codec) Decode(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return img, nil
}

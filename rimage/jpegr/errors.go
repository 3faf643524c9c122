package jpegr

import "github.com/pkg/errors"

var (
	// ErrMalformed is returned for data that is not a well formed JPEG header.
	ErrMalformed = errors.New("malformed JPEG data")

	// ErrNoGainMap is returned when decoding a plain JPEG that carries no gain map.
	ErrNoGainMap = errors.New("no gain map found")

	// ErrInvalidGainMap is returned when a gain map is empty or larger than its primary image.
	ErrInvalidGainMap = errors.New("invalid gain map")

	// ErrInvalidMetadata is returned for gain map metadata with out of range values.
	ErrInvalidMetadata = errors.New("invalid gain map metadata")
)

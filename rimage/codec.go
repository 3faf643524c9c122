package rimage

import (
	"image"
	"io"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/testimage/logging"
)

// A Codec encodes and decodes images of a single mime type.
type Codec interface {
	MimeType() string
	Encode(w io.Writer, img image.Image) error
	Decode(r io.Reader) (image.Image, error)
}

// CodecRegistry maps mime types to codecs. It is safe for concurrent use.
type CodecRegistry struct {
	mu     sync.RWMutex
	codecs map[string]Codec
}

// NewCodecRegistry returns an empty registry.
func NewCodecRegistry() *CodecRegistry {
	return &CodecRegistry{codecs: make(map[string]Codec)}
}

// Register adds a codec, replacing any codec already registered for its mime type.
func (r *CodecRegistry) Register(codec Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.codecs[codec.MimeType()]; ok {
		logging.Global().Debugw("replacing image codec", "mime_type", codec.MimeType())
	}
	r.codecs[codec.MimeType()] = codec
}

// Lookup returns the codec for mimeType.
func (r *CodecRegistry) Lookup(mimeType string) (Codec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codec, ok := r.codecs[mimeType]
	if !ok {
		return nil, errors.Wrapf(ErrCodecNotFound, "mime type %q", mimeType)
	}
	return codec, nil
}

// MimeTypes returns the sorted registered mime types.
func (r *CodecRegistry) MimeTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	mimeTypes := lo.Keys(r.codecs)
	sort.Strings(mimeTypes)
	return mimeTypes
}

var defaultRegistry = NewCodecRegistry()

// RegisterCodec registers a codec with the default registry used by EncodeImage and DecodeImage.
func RegisterCodec(codec Codec) {
	defaultRegistry.Register(codec)
}

// LookupCodec returns the default registry's codec for mimeType.
func LookupCodec(mimeType string) (Codec, error) {
	return defaultRegistry.Lookup(mimeType)
}

// RegisteredMimeTypes returns the mime types of the default registry.
func RegisteredMimeTypes() []string {
	return defaultRegistry.MimeTypes()
}

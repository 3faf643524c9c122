package jpegr

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Multi-Picture Format (CIPA DC-007) index, big endian. Offsets inside the index and the image
// offsets of the MP entries are relative to the start of the TIFF header that follows the
// "MPF\0" namespace.
const (
	mpfTagVersion        = 0xB000
	mpfTagNumberOfImages = 0xB001
	mpfTagEntry          = 0xB002

	tiffTypeLong      = 4
	tiffTypeUndefined = 7

	mpfTIFFHeaderLength = 8
	mpfIFDEntryLength   = 12
	mpfEntryLength      = 16
	mpfNumImages        = 2
	mpfNumTags          = 3

	// Baseline MP primary image.
	mpfAttributePrimary = 0x030000
	mpfAttributeNone    = 0x000000
)

// mpfPayloadLength is the size of the APP2 payload written by mpfPayload.
const mpfPayloadLength = len(mpfNamespace) + mpfTIFFHeaderLength + 2 + mpfNumTags*mpfIFDEntryLength + 4 +
	mpfNumImages*mpfEntryLength

type mpfEntry struct {
	attribute uint32
	size      uint32
	offset    uint32
}

// mpfPayload builds an MPF APP2 payload for a primary image of primarySize bytes followed by a
// gain map of gainMapSize bytes. tiffHeaderOffset is the stream offset of the TIFF header.
func mpfPayload(primarySize, gainMapSize, tiffHeaderOffset int) []byte {
	order := binary.BigEndian
	out := make([]byte, 0, mpfPayloadLength)
	out = append(out, mpfNamespace...)

	out = append(out, 'M', 'M')
	out = order.AppendUint16(out, 0x002A)
	out = order.AppendUint32(out, mpfTIFFHeaderLength)

	entriesOffset := mpfTIFFHeaderLength + 2 + mpfNumTags*mpfIFDEntryLength + 4
	out = order.AppendUint16(out, mpfNumTags)
	out = appendIFDEntry(out, mpfTagVersion, tiffTypeUndefined, 4, 0)
	copy(out[len(out)-4:], "0100")
	out = appendIFDEntry(out, mpfTagNumberOfImages, tiffTypeLong, 1, mpfNumImages)
	out = appendIFDEntry(out, mpfTagEntry, tiffTypeUndefined, mpfNumImages*mpfEntryLength, uint32(entriesOffset))
	// next IFD
	out = order.AppendUint32(out, 0)

	for _, entry := range []mpfEntry{
		{attribute: mpfAttributePrimary, size: uint32(primarySize), offset: 0},
		{attribute: mpfAttributeNone, size: uint32(gainMapSize), offset: uint32(primarySize - tiffHeaderOffset)},
	} {
		out = order.AppendUint32(out, entry.attribute)
		out = order.AppendUint32(out, entry.size)
		out = order.AppendUint32(out, entry.offset)
		// dependent image entry numbers
		out = order.AppendUint16(out, 0)
		out = order.AppendUint16(out, 0)
	}
	return out
}

func appendIFDEntry(out []byte, tag, typ uint16, count, value uint32) []byte {
	out = binary.BigEndian.AppendUint16(out, tag)
	out = binary.BigEndian.AppendUint16(out, typ)
	out = binary.BigEndian.AppendUint32(out, count)
	return binary.BigEndian.AppendUint32(out, value)
}

// parseMPF returns the MP entries of an APP2 MPF payload, either byte order.
func parseMPF(payload []byte) ([]mpfEntry, error) {
	tiff := payload[len(mpfNamespace):]
	if len(tiff) < mpfTIFFHeaderLength {
		return nil, errors.Wrap(ErrMalformed, "MPF header truncated")
	}

	var order binary.ByteOrder
	switch string(tiff[:2]) {
	case "MM":
		order = binary.BigEndian
	case "II":
		order = binary.LittleEndian
	default:
		return nil, errors.Wrapf(ErrMalformed, "unknown MPF byte order %q", tiff[:2])
	}

	ifdOffset := int(order.Uint32(tiff[4:8]))
	if ifdOffset+2 > len(tiff) {
		return nil, errors.Wrap(ErrMalformed, "MPF IFD out of range")
	}
	numTags := int(order.Uint16(tiff[ifdOffset:]))
	for i := 0; i < numTags; i++ {
		start := ifdOffset + 2 + i*mpfIFDEntryLength
		if start+mpfIFDEntryLength > len(tiff) {
			return nil, errors.Wrap(ErrMalformed, "MPF IFD entry out of range")
		}
		if order.Uint16(tiff[start:]) != mpfTagEntry {
			continue
		}
		count := int(order.Uint32(tiff[start+4:]))
		valueOffset := int(order.Uint32(tiff[start+8:]))
		if count%mpfEntryLength != 0 || valueOffset+count > len(tiff) {
			return nil, errors.Wrap(ErrMalformed, "MP entries out of range")
		}

		entries := make([]mpfEntry, 0, count/mpfEntryLength)
		for off := valueOffset; off < valueOffset+count; off += mpfEntryLength {
			entries = append(entries, mpfEntry{
				attribute: order.Uint32(tiff[off:]),
				size:      order.Uint32(tiff[off+4:]),
				offset:    order.Uint32(tiff[off+8:]),
			})
		}
		return entries, nil
	}
	return nil, errors.Wrap(ErrMalformed, "MPF index has no MP entry tag")
}

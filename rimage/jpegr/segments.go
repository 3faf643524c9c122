package jpegr

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// JPEG markers, without their 0xFF prefix.
const (
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerSOS  = 0xDA
	markerAPP1 = 0xE1
	markerAPP2 = 0xE2
	markerTEM  = 0x01
	markerRST0 = 0xD0
	markerRST7 = 0xD7
)

const (
	xmpNamespace = "http://ns.adobe.com/xap/1.0/\x00"
	mpfNamespace = "MPF\x00"
)

// segment is one marker segment of a JPEG header.
type segment struct {
	marker byte
	// offset of the 0xFF byte within the stream.
	offset  int
	payload []byte
}

// payloadOffset is the stream offset of the first payload byte.
func (s segment) payloadOffset() int {
	return s.offset + 4
}

func hasMarkerPrefix(data []byte, marker byte) bool {
	return len(data) >= 2 && data[0] == 0xFF && data[1] == marker
}

// readHeaderSegments walks the marker segments from SOI up to, not including, the first SOS.
func readHeaderSegments(data []byte) ([]segment, error) {
	if !hasMarkerPrefix(data, markerSOI) {
		return nil, errors.Wrap(ErrMalformed, "missing SOI marker")
	}

	var segments []segment
	pos := 2
	for {
		if pos+2 > len(data) {
			return nil, errors.Wrapf(ErrMalformed, "header truncated at offset %d", pos)
		}
		if data[pos] != 0xFF {
			return nil, errors.Wrapf(ErrMalformed, "expected marker at offset %d, got 0x%02X", pos, data[pos])
		}
		marker := data[pos+1]
		switch {
		case marker == 0xFF:
			// fill byte
			pos++
			continue
		case marker == markerTEM, marker >= markerRST0 && marker <= markerRST7:
			pos += 2
			continue
		case marker == markerSOS, marker == markerEOI:
			return segments, nil
		}

		if pos+4 > len(data) {
			return nil, errors.Wrapf(ErrMalformed, "segment length truncated at offset %d", pos)
		}
		length := int(binary.BigEndian.Uint16(data[pos+2 : pos+4]))
		if length < 2 || pos+2+length > len(data) {
			return nil, errors.Wrapf(ErrMalformed, "segment 0xFF%02X at offset %d overruns the data", marker, pos)
		}
		segments = append(segments, segment{
			marker:  marker,
			offset:  pos,
			payload: data[pos+4 : pos+2+length],
		})
		pos += 2 + length
	}
}

// findSegment returns the first segment with the given marker whose payload starts with
// namespace.
func findSegment(segments []segment, marker byte, namespace string) (segment, bool) {
	for _, seg := range segments {
		if seg.marker == marker && bytes.HasPrefix(seg.payload, []byte(namespace)) {
			return seg, true
		}
	}
	return segment{}, false
}

// appSegment serializes a marker segment.
func appSegment(marker byte, payload []byte) ([]byte, error) {
	length := len(payload) + 2
	if length > math.MaxUint16 {
		return nil, errors.Errorf("segment 0xFF%02X payload of %d bytes does not fit", marker, len(payload))
	}
	out := make([]byte, 0, length+2)
	out = append(out, 0xFF, marker)
	out = binary.BigEndian.AppendUint16(out, uint16(length))
	return append(out, payload...), nil
}

// insertAfterSOI returns a copy of jpegData with the serialized segments placed right after SOI.
func insertAfterSOI(jpegData []byte, segments ...[]byte) ([]byte, error) {
	if !hasMarkerPrefix(jpegData, markerSOI) {
		return nil, errors.Wrap(ErrMalformed, "missing SOI marker")
	}
	total := len(jpegData)
	for _, seg := range segments {
		total += len(seg)
	}
	out := make([]byte, 0, total)
	out = append(out, jpegData[:2]...)
	for _, seg := range segments {
		out = append(out, seg...)
	}
	return append(out, jpegData[2:]...), nil
}

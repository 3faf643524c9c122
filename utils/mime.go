package utils

import "strings"

const (
	// MimeTypeJPEG is regular jpgs.
	MimeTypeJPEG = "image/jpeg"

	// MimeTypeJPEGR is a jpg carrying an embedded gain map, see rimage/jpegr.
	MimeTypeJPEGR = "image/jpeg-r"

	// MimeTypePNG is regular pngs.
	MimeTypePNG = "image/png"

	// MimeTypeQOI is for .qoi "Quite OK Image" for lossless, fast encoding/decoding.
	MimeTypeQOI = "image/qoi"

	// MimeTypePPM is for binary .ppm portable pixmaps.
	MimeTypePPM = "image/x-portable-pixmap"

	// MimeTypeBMP is for uncompressed .bmp bitmaps.
	MimeTypeBMP = "image/bmp"

	// MimeTypeTIFF is for .tiff images.
	MimeTypeTIFF = "image/tiff"

	// MimeTypeWEBP is for .webp images. Decoding only.
	MimeTypeWEBP = "image/webp"

	// MimeTypeRawRGBA is for go's internal image.NRGBA behind a small size header.
	MimeTypeRawRGBA = "image/raw-rgba"

	// MimeTypeRawRGBAZstd is MimeTypeRawRGBA compressed with zstd.
	MimeTypeRawRGBAZstd = "image/raw-rgba+zstd"
)

var extToMimeType = map[string]string{
	".jpg":  MimeTypeJPEG,
	".jpeg": MimeTypeJPEG,
	".jpgr": MimeTypeJPEGR,
	".png":  MimeTypePNG,
	".qoi":  MimeTypeQOI,
	".ppm":  MimeTypePPM,
	".bmp":  MimeTypeBMP,
	".tif":  MimeTypeTIFF,
	".tiff": MimeTypeTIFF,
	".webp": MimeTypeWEBP,
	".rgba": MimeTypeRawRGBA,
	".zst":  MimeTypeRawRGBAZstd,
}

// MimeTypeFromPath guesses a mime type from a file's extension. It returns the empty string
// when the extension is unknown.
func MimeTypeFromPath(path string) string {
	idx := strings.LastIndexByte(path, '.')
	if idx < 0 {
		return ""
	}
	return extToMimeType[strings.ToLower(path[idx:])]
}

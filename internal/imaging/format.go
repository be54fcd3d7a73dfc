package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"path"
	"strings"
)

// Format identifies an encoded image container.
type Format string

const (
	FormatUnknown Format = ""
	FormatPNG     Format = "png"
	FormatJPEG    Format = "jpeg"
	FormatWebP    Format = "webp"
)

var (
	// ErrUnsupportedFormat is returned when data is not PNG, JPEG or WebP.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrFormatMismatch is returned when a file extension disagrees with the
	// detected content type.
	ErrFormatMismatch = errors.New("file extension does not match image content")

	// ErrDecode is returned when the image data cannot be decoded.
	ErrDecode = errors.New("failed to decode image")

	// ErrNoSource is returned when a Source names no URL, path or buffer.
	ErrNoSource = errors.New("no image source provided")

	// ErrFetch wraps failures to retrieve an image from a URL.
	ErrFetch = errors.New("failed to fetch image")
)

// MimeType returns the MIME type of f, or "" for FormatUnknown.
func (f Format) MimeType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatJPEG:
		return "image/jpeg"
	case FormatWebP:
		return "image/webp"
	default:
		return ""
	}
}

// ParseFormat maps a MIME type ("image/png") or a bare extension ("png", ".jpg")
// to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "image/png", "png":
		return FormatPNG, nil
	case "image/jpeg", "image/jpg", "jpeg", "jpg":
		return FormatJPEG, nil
	case "image/webp", "webp":
		return FormatWebP, nil
	default:
		return FormatUnknown, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// SniffFormat detects the container format from magic bytes.
func SniffFormat(data []byte) (Format, error) {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return FormatPNG, nil
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return FormatJPEG, nil
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return FormatWebP, nil
	default:
		return FormatUnknown, fmt.Errorf("%w: unrecognized content", ErrUnsupportedFormat)
	}
}

// ResolveFormat decides which decoder to use for an image.
//
// Parameters:
//   - name: File name, path or URL path. Only its extension is inspected.
//   - declared: Optional caller-declared type, either a MIME type or an extension.
//     When set it replaces content sniffing.
//   - data: The encoded bytes, sniffed when nothing is declared.
//
// # Rules
//
//   - If name has an extension, it must agree with the detected (or declared) type:
//     png with PNG, jpg/jpeg with JPEG, webp with WebP. Anything else returns
//     ErrFormatMismatch (or ErrUnsupportedFormat for an unknown extension).
//   - If name has no extension the detected type is used as-is.
//   - If the type cannot be detected ErrUnsupportedFormat is returned.
func ResolveFormat(name, declared string, data []byte) (Format, error) {
	var (
		detected Format
		err      error
	)
	if declared != "" {
		detected, err = ParseFormat(declared)
	} else {
		detected, err = SniffFormat(data)
	}
	if err != nil {
		return FormatUnknown, err
	}

	ext := extension(name)
	if ext == "" {
		return detected, nil
	}

	fromExt, err := ParseFormat(ext)
	if err != nil {
		return FormatUnknown, fmt.Errorf("%w: ext %s / mime %s", ErrUnsupportedFormat, ext, detected.MimeType())
	}
	if fromExt != detected {
		return FormatUnknown, fmt.Errorf("%w: ext %s / mime %s", ErrFormatMismatch, ext, detected.MimeType())
	}
	return detected, nil
}

// extension returns the lowercase extension of name without the dot. A leading
// dot (".png") is treated as a hidden file name, not an extension.
func extension(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	i := strings.LastIndexByte(base, '.')
	if i <= 0 {
		return ""
	}
	return strings.ToLower(base[i+1:])
}

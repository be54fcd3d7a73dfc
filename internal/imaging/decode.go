package imaging

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"golang.org/x/image/webp"

	"github.com/ironsheep/image-blockhash-mcp/internal/blockhash"
)

// Decoded is an image decoded into the pixel layout the hash engine consumes.
type Decoded struct {
	// Grid holds non-premultiplied RGBA pixels, row-major, no padding.
	Grid blockhash.PixelGrid

	// Format is the container the pixels were decoded from.
	Format Format

	// HasAlpha is true when at least one pixel is not fully opaque.
	HasAlpha bool
}

// Decode decodes PNG, JPEG or WebP data into a pixel grid.
//
// Parameters:
//   - data: Encoded image bytes.
//   - format: The format chosen by ResolveFormat.
//
// Returns:
//   - *Decoded: Pixels normalised to 8-bit non-premultiplied RGBA.
//   - error: ErrUnsupportedFormat for an unknown format, ErrDecode when the bytes
//     are corrupt or hold a different format than requested.
//
// PNG and JPEG are decoded with disintegration/imaging, WebP with
// golang.org/x/image/webp. Every decoded image is converted with imaging.Clone so the
// hash engine always sees the same byte layout, whatever the source colour model.
func Decode(data []byte, format Format) (*Decoded, error) {
	if format.MimeType() == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(format))
	}
	if actual, err := SniffFormat(data); err == nil && actual != format {
		return nil, fmt.Errorf("%w: content is %s, not %s", ErrDecode, actual, format)
	}

	var (
		img image.Image
		err error
	)
	switch format {
	case FormatPNG, FormatJPEG:
		img, err = imaging.Decode(bytes.NewReader(data))
	case FormatWebP:
		img, err = webp.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, format, err)
	}

	return FromImage(img, format), nil
}

// FromImage converts an already decoded image into a Decoded value.
func FromImage(img image.Image, format Format) *Decoded {
	nrgba := imaging.Clone(img)

	hasAlpha := false
	for i := 3; i < len(nrgba.Pix); i += 4 {
		if nrgba.Pix[i] != 0xFF {
			hasAlpha = true
			break
		}
	}

	return &Decoded{
		Grid: blockhash.PixelGrid{
			Width:  nrgba.Rect.Dx(),
			Height: nrgba.Rect.Dy(),
			Pix:    nrgba.Pix,
		},
		Format:   format,
		HasAlpha: hasAlpha,
	}
}

package blockhash

import "fmt"

// MaxIntensity is the largest value an IntensityGrid sample can hold (3 × 255).
const MaxIntensity = 765

// PixelGrid is a borrowed view of decoded, non-premultiplied RGBA pixels.
//
// Pix holds Width*Height samples of 4 bytes each (R, G, B, A) in row-major order
// with no row padding. The grid is never modified by this package.
type PixelGrid struct {
	Width  int
	Height int
	Pix    []byte
}

// Validate checks that the buffer length matches the declared dimensions.
func (p PixelGrid) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d must be positive", ErrMalformedBuffer, p.Width, p.Height)
	}
	if want := p.Width * p.Height * 4; len(p.Pix) != want {
		return fmt.Errorf("%w: %d bytes for %dx%d RGBA pixels, want %d",
			ErrMalformedBuffer, len(p.Pix), p.Width, p.Height, want)
	}
	return nil
}

// IntensityGrid holds one intensity sample per pixel, row-major.
//
// Each value is the unweighted sum R+G+B of the source pixel, in the range
// 0 to MaxIntensity. Sums are kept as integers so block reduction has no
// intermediate rounding.
type IntensityGrid struct {
	Width  int
	Height int
	Values []uint16
}

// Validate checks that the value count matches the declared dimensions.
func (g *IntensityGrid) Validate() error {
	if g == nil {
		return fmt.Errorf("%w: nil intensity grid", ErrMalformedBuffer)
	}
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d must be positive", ErrMalformedBuffer, g.Width, g.Height)
	}
	if want := g.Width * g.Height; len(g.Values) != want {
		return fmt.Errorf("%w: %d intensity samples for %dx%d grid, want %d",
			ErrMalformedBuffer, len(g.Values), g.Width, g.Height, want)
	}
	return nil
}

// At returns the intensity at (x, y). Coordinates are not bounds-checked.
func (g *IntensityGrid) At(x, y int) uint16 {
	return g.Values[y*g.Width+x]
}

// Sample converts an RGBA pixel grid into an intensity grid.
//
// Parameters:
//   - p: Decoded pixels. Width and Height must be positive and len(p.Pix) must be
//     exactly Width*Height*4.
//
// Returns:
//   - *IntensityGrid: A freshly allocated grid with one R+G+B sum per pixel.
//   - error: ErrMalformedBuffer if the buffer does not match the dimensions.
//
// The alpha channel is ignored, so a fully transparent pixel samples the same as a
// fully opaque pixel of the same colour.
func Sample(p PixelGrid) (*IntensityGrid, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	values := make([]uint16, p.Width*p.Height)
	for i := range values {
		px := p.Pix[i*4 : i*4+3 : i*4+3]
		values[i] = uint16(px[0]) + uint16(px[1]) + uint16(px[2])
	}

	return &IntensityGrid{Width: p.Width, Height: p.Height, Values: values}, nil
}
